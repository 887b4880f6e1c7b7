package docgen

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"folio/internal/config"
	"folio/internal/domain"
	crmModels "folio/internal/domain/models/crm"
	models "folio/internal/domain/models/docgen"
	"folio/internal/domain/repositories"
	crmRepo "folio/internal/domain/repositories/crm"
	docgenRepo "folio/internal/domain/repositories/docgen"
	crmSvc "folio/internal/domain/services/crm"
	docgenSvc "folio/internal/domain/services/docgen"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// documentService implements the DocumentService interface
type documentService struct {
	docRepo     docgenRepo.DocumentRepository
	clientRepo  crmRepo.ClientRepository
	projectRepo crmRepo.ProjectRepository
	txManager   repositories.TransactionManager
	activity    crmSvc.ActivityRecorder
	revalidator crmSvc.Revalidator
	logger      *slog.Logger
	now         func() time.Time
}

// NewDocumentService creates a new document service
func NewDocumentService(
	docRepo docgenRepo.DocumentRepository,
	clientRepo crmRepo.ClientRepository,
	projectRepo crmRepo.ProjectRepository,
	txManager repositories.TransactionManager,
	activity crmSvc.ActivityRecorder,
	revalidator crmSvc.Revalidator,
	logger *slog.Logger,
) docgenSvc.DocumentService {
	return &documentService{
		docRepo:     docRepo,
		clientRepo:  clientRepo,
		projectRepo: projectRepo,
		txManager:   txManager,
		activity:    activity,
		revalidator: revalidator,
		logger:      logger,
		now:         time.Now,
	}
}

// ListDocuments returns the caller's documents, most recently updated first
func (s *documentService) ListDocuments(ctx context.Context, userID string, filter models.DocumentFilter) ([]models.Document, error) {
	if filter.Status != nil {
		if err := validation.Validate(*filter.Status, validation.In(models.DocumentStatuses...)); err != nil {
			return nil, &domain.ValidationError{Field: "status", Message: err.Error()}
		}
	}
	return s.docRepo.List(ctx, userID, filter)
}

// GetDocument retrieves a document owned by the caller
func (s *documentService) GetDocument(ctx context.Context, userID, documentID string) (*models.Document, error) {
	return s.docRepo.GetByID(ctx, documentID, userID)
}

// CreateDocument stores freestanding content
func (s *documentService) CreateDocument(ctx context.Context, req *docgenSvc.CreateDocumentRequest) (*models.Document, error) {
	req.Name = strings.TrimSpace(req.Name)
	err := validation.ValidateStruct(req,
		validation.Field(&req.Name, validation.Required, validation.Length(1, config.MaxDocumentNameLength)),
		validation.Field(&req.Type, validation.Required, validation.In(models.TemplateTypes...)),
		validation.Field(&req.Status, validation.NilOrNotEmpty, validation.In(models.DocumentStatuses...)),
		validation.Field(&req.Content, validation.Length(0, config.MaxTemplateContentLength)),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	clientID, projectID := normalizeID(req.ClientID), normalizeID(req.ProjectID)
	if err := checkReferences(ctx, s.clientRepo, s.projectRepo, req.UserID, clientID, projectID); err != nil {
		return nil, err
	}

	status := models.DocumentStatusDraft
	if req.Status != nil {
		status = *req.Status
	}

	now := s.now()
	doc := &models.Document{
		Name:           req.Name,
		Type:           req.Type,
		Status:         status,
		ClientID:       clientID,
		ProjectID:      projectID,
		VariableValues: models.NewVariableBag(nil),
		OwnerID:        req.UserID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	setContent(doc, req.Content)

	if err := s.docRepo.Create(ctx, doc); err != nil {
		return nil, err
	}

	s.logger.Info("document created", "id", doc.ID, "size", doc.Size)
	s.revalidator.Revalidate(ctx, "/documents")

	return doc, nil
}

// UpdateDocument edits name, type or content; size and metrics follow content
func (s *documentService) UpdateDocument(ctx context.Context, userID, documentID string, req *docgenSvc.UpdateDocumentRequest) (*models.Document, error) {
	err := validation.ValidateStruct(req,
		validation.Field(&req.Name, validation.NilOrNotEmpty, validation.Length(1, config.MaxDocumentNameLength)),
		validation.Field(&req.Type, validation.NilOrNotEmpty, validation.In(models.TemplateTypes...)),
		validation.Field(&req.Content, validation.Length(0, config.MaxTemplateContentLength)),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	var doc *models.Document
	err = s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		var err error
		doc, err = s.docRepo.GetForUpdate(txCtx, documentID, userID)
		if err != nil {
			return err
		}

		if req.Name != nil {
			doc.Name = strings.TrimSpace(*req.Name)
		}
		if req.Type != nil {
			doc.Type = *req.Type
		}
		if req.Content != nil {
			setContent(doc, *req.Content)
		}
		doc.UpdatedAt = s.now()

		return s.docRepo.Update(txCtx, doc)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("document updated", "id", doc.ID)
	s.revalidator.Revalidate(ctx, "/documents/"+doc.ID)

	return doc, nil
}

// ChangeStatus sets any status and appends the change to the status history
func (s *documentService) ChangeStatus(ctx context.Context, userID, documentID string, req *docgenSvc.ChangeStatusRequest) (*models.Document, error) {
	err := validation.ValidateStruct(req,
		validation.Field(&req.Status, validation.Required, validation.In(models.DocumentStatuses...)),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	var doc *models.Document
	var from models.DocumentStatus
	err = s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		var err error
		doc, err = s.docRepo.GetForUpdate(txCtx, documentID, userID)
		if err != nil {
			return err
		}

		now := s.now()
		from = doc.Status
		doc.VariableValues.StatusHistory = append(doc.VariableValues.StatusHistory, models.StatusChange{
			From:      from,
			To:        req.Status,
			ChangedBy: userID,
			ChangedAt: now,
			Notes:     req.Notes,
		})
		doc.Status = req.Status
		doc.UpdatedAt = now

		return s.docRepo.Update(txCtx, doc)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("document status changed",
		"id", doc.ID,
		"from", from,
		"to", doc.Status,
	)

	s.activity.Record(ctx, &crmModels.Activity{
		OwnerID:     userID,
		Kind:        crmModels.ActivityDocumentStatusChanged,
		Description: fmt.Sprintf("%q moved from %s to %s", doc.Name, from, doc.Status),
		ClientID:    doc.ClientID,
		ProjectID:   doc.ProjectID,
		DocumentID:  &doc.ID,
	})
	s.revalidator.Revalidate(ctx, "/documents/"+doc.ID)

	return doc, nil
}

// DeleteDocument removes a document and its versions
func (s *documentService) DeleteDocument(ctx context.Context, userID, documentID string) error {
	if err := s.docRepo.Delete(ctx, documentID, userID); err != nil {
		return err
	}

	s.logger.Info("document deleted", "id", documentID)
	s.revalidator.Revalidate(ctx, "/documents")

	return nil
}

// ExportDocument renders the document for download
func (s *documentService) ExportDocument(ctx context.Context, userID, documentID string, format docgenSvc.ExportFormat) (*docgenSvc.ExportResult, error) {
	doc, err := s.docRepo.GetByID(ctx, documentID, userID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	switch format {
	case docgenSvc.ExportFormatHTML:
		return &docgenSvc.ExportResult{
			Filename:    Filename(doc.Name, "html", now),
			ContentType: "text/html; charset=utf-8",
			Body:        []byte(ToHTML(doc.Content, doc.Name)),
		}, nil
	case docgenSvc.ExportFormatText:
		return &docgenSvc.ExportResult{
			Filename:    Filename(doc.Name, "txt", now),
			ContentType: "text/plain; charset=utf-8",
			Body:        []byte(ToText(doc.Content)),
		}, nil
	case docgenSvc.ExportFormatPDF:
		return &docgenSvc.ExportResult{
			Filename:    Filename(doc.Name, "html", now),
			ContentType: "text/html; charset=utf-8",
			Body:        []byte(ToPrintableHTML(doc.Content, doc.Name)),
		}, nil
	default:
		return nil, &domain.ValidationError{Field: "format", Message: fmt.Sprintf("unsupported export format %q", format)}
	}
}

// checkReferences verifies the caller owns the referenced client and project
func checkReferences(
	ctx context.Context,
	clients crmRepo.ClientRepository,
	projects crmRepo.ProjectRepository,
	userID string,
	clientID, projectID *string,
) error {
	if clientID != nil {
		if _, err := clients.GetByID(ctx, *clientID, userID); err != nil {
			return err
		}
	}
	if projectID != nil {
		if _, err := projects.GetByID(ctx, *projectID, userID); err != nil {
			return err
		}
	}
	return nil
}

// setContent updates content together with its derived size and metrics
func setContent(doc *models.Document, content string) {
	doc.Content = content
	doc.Size = utf8.RuneCountInString(content)
	metrics := CalculateMetrics(content)
	doc.VariableValues.Metrics = &metrics
}
