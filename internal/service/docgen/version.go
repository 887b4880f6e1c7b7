package docgen

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"
	"unicode/utf8"

	"folio/internal/domain"
	crmModels "folio/internal/domain/models/crm"
	models "folio/internal/domain/models/docgen"
	"folio/internal/domain/repositories"
	crmRepo "folio/internal/domain/repositories/crm"
	docgenRepo "folio/internal/domain/repositories/docgen"
	crmSvc "folio/internal/domain/services/crm"
	docgenSvc "folio/internal/domain/services/docgen"

	"github.com/cespare/xxhash/v2"
)

// versionService implements the VersionService interface
type versionService struct {
	docRepo     docgenRepo.DocumentRepository
	versionRepo docgenRepo.VersionRepository
	userRepo    crmRepo.UserRepository
	txManager   repositories.TransactionManager
	activity    crmSvc.ActivityRecorder
	logger      *slog.Logger
}

// NewVersionService creates a new version service
func NewVersionService(
	docRepo docgenRepo.DocumentRepository,
	versionRepo docgenRepo.VersionRepository,
	userRepo crmRepo.UserRepository,
	txManager repositories.TransactionManager,
	activity crmSvc.ActivityRecorder,
	logger *slog.Logger,
) docgenSvc.VersionService {
	return &versionService{
		docRepo:     docRepo,
		versionRepo: versionRepo,
		userRepo:    userRepo,
		txManager:   txManager,
		activity:    activity,
		logger:      logger,
	}
}

// Snapshot records the document's current content as a new version.
// The document row is locked for the duration so concurrent snapshots
// of one document get consecutive numbers.
func (s *versionService) Snapshot(ctx context.Context, userID, documentID string, changeNotes *string) (*models.DocumentVersion, error) {
	createdBy, err := s.authorName(ctx, userID)
	if err != nil {
		return nil, err
	}

	var version *models.DocumentVersion
	err = s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		doc, err := s.docRepo.GetForUpdate(txCtx, documentID, userID)
		if err != nil {
			return err
		}

		if doc.Content == "" {
			return &domain.ValidationError{Field: "content", Message: "document has no content to snapshot"}
		}

		version, err = createVersion(txCtx, s.versionRepo, doc, createdBy, changeNotes)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("version created",
		"document_id", documentID,
		"version", version.VersionNumber,
		"hash", version.ContentHash,
	)

	return version, nil
}

// Restore overwrites the document with a stored version. The current state
// is snapshotted first, even when its content is empty, and the restored
// state after, so every restore can itself be undone.
func (s *versionService) Restore(ctx context.Context, userID, documentID, versionID string) (*models.Document, error) {
	createdBy, err := s.authorName(ctx, userID)
	if err != nil {
		return nil, err
	}

	var doc *models.Document
	var target *models.DocumentVersion
	err = s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		var err error
		doc, err = s.docRepo.GetForUpdate(txCtx, documentID, userID)
		if err != nil {
			return err
		}

		target, err = s.versionRepo.GetByID(txCtx, documentID, versionID)
		if err != nil {
			return err
		}

		label := "v" + strconv.Itoa(target.VersionNumber)

		backupNote := "Backup before restoring to " + label
		if _, err := createVersion(txCtx, s.versionRepo, doc, createdBy, &backupNote); err != nil {
			return fmt.Errorf("backup before restore: %w", err)
		}

		doc.Content = target.Content
		doc.Size = utf8.RuneCountInString(target.Content)
		doc.VariableValues = target.VariableValues.Clone()
		doc.UpdatedAt = time.Now()
		if err := s.docRepo.Update(txCtx, doc); err != nil {
			return err
		}

		restoredNote := "Restored to " + label
		if _, err := createVersion(txCtx, s.versionRepo, doc, createdBy, &restoredNote); err != nil {
			return fmt.Errorf("record restore: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("document restored",
		"document_id", documentID,
		"version", target.VersionNumber,
	)

	s.activity.Record(ctx, &crmModels.Activity{
		OwnerID:     userID,
		Kind:        crmModels.ActivityDocumentRestored,
		Description: fmt.Sprintf("Restored %q to version %d", doc.Name, target.VersionNumber),
		ClientID:    doc.ClientID,
		ProjectID:   doc.ProjectID,
		DocumentID:  &doc.ID,
	})

	return doc, nil
}

// List returns the document's versions newest first
func (s *versionService) List(ctx context.Context, userID, documentID string) ([]models.DocumentVersion, error) {
	// Ownership check
	if _, err := s.docRepo.GetByID(ctx, documentID, userID); err != nil {
		return nil, err
	}

	return s.versionRepo.ListByDocument(ctx, documentID)
}

// authorName resolves the caller's display name (or email) for createdBy
func (s *versionService) authorName(ctx context.Context, userID string) (string, error) {
	return resolveAuthor(ctx, s.userRepo, userID)
}

func resolveAuthor(ctx context.Context, userRepo crmRepo.UserRepository, userID string) (string, error) {
	user, err := userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", fmt.Errorf("%w: no profile for user %s", domain.ErrUnauthorized, userID)
		}
		return "", fmt.Errorf("resolve user: %w", err)
	}
	return user.DisplayName(), nil
}

// createVersion snapshots doc through repo; the repository assigns the number.
// Callers decide whether empty content may be versioned.
func createVersion(
	ctx context.Context,
	repo docgenRepo.VersionRepository,
	doc *models.Document,
	createdBy string,
	changeNotes *string,
) (*models.DocumentVersion, error) {
	version := &models.DocumentVersion{
		DocumentID:     doc.ID,
		Content:        doc.Content,
		VariableValues: doc.VariableValues.Clone(),
		ContentHash:    ContentHash(doc.Content),
		ChangeNotes:    changeNotes,
		Metrics:        CalculateMetrics(doc.Content),
		CreatedBy:      createdBy,
		CreatedAt:      time.Now(),
	}

	if err := repo.Create(ctx, version); err != nil {
		return nil, err
	}
	return version, nil
}

// ContentHash fingerprints content for change detection (not for security)
func ContentHash(content string) string {
	return fmt.Sprintf("%016x", xxhash.Sum64String(content))
}
