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

const initialVersionNote = "Initial version"

// GeneratorDeps bundles the collaborators of the document generator
type GeneratorDeps struct {
	Templates   docgenRepo.TemplateRepository
	Documents   docgenRepo.DocumentRepository
	Versions    docgenRepo.VersionRepository
	Users       crmRepo.UserRepository
	Clients     crmRepo.ClientRepository
	Projects    crmRepo.ProjectRepository
	TxManager   repositories.TransactionManager
	Activity    crmSvc.ActivityRecorder
	Revalidator crmSvc.Revalidator
	Logger      *slog.Logger
}

// documentGenerator implements the DocumentGenerator interface
type documentGenerator struct {
	GeneratorDeps
	now func() time.Time
}

// NewDocumentGenerator creates a new document generator
func NewDocumentGenerator(deps GeneratorDeps) docgenSvc.DocumentGenerator {
	return &documentGenerator{GeneratorDeps: deps, now: time.Now}
}

// generation is the common input of both generation paths
type generation struct {
	userID        string
	templateID    string
	name          string
	values        models.Variables
	clientID      *string
	projectID     *string
	status        models.DocumentStatus
	createVersion bool
}

// Generate substitutes the caller's values into a template and stores the result
func (g *documentGenerator) Generate(ctx context.Context, req *docgenSvc.GenerateRequest) (*models.Document, error) {
	err := validation.ValidateStruct(req,
		validation.Field(&req.TemplateID, validation.Required),
		validation.Field(&req.Name, validation.Required, validation.Length(1, config.MaxDocumentNameLength)),
		validation.Field(&req.Status, validation.NilOrNotEmpty, validation.In(models.DocumentStatuses...)),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	status := models.DocumentStatusDraft
	if req.Status != nil {
		status = *req.Status
	}

	return g.generate(ctx, generation{
		userID:        req.UserID,
		templateID:    req.TemplateID,
		name:          req.Name,
		values:        req.VariableValues,
		clientID:      normalizeID(req.ClientID),
		projectID:     normalizeID(req.ProjectID),
		status:        status,
		createVersion: req.CreateVersion,
	})
}

// GenerateFromTemplate is the gallery path: a draft named after the template
// unless the caller names it
func (g *documentGenerator) GenerateFromTemplate(ctx context.Context, req *docgenSvc.GenerateFromTemplateRequest) (*models.Document, error) {
	err := validation.ValidateStruct(req,
		validation.Field(&req.TemplateID, validation.Required),
		validation.Field(&req.Name, validation.Length(0, config.MaxDocumentNameLength)),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	return g.generate(ctx, generation{
		userID:     req.UserID,
		templateID: req.TemplateID,
		name:       req.Name,
		values:     req.VariableValues,
		clientID:   normalizeID(req.ClientID),
		projectID:  normalizeID(req.ProjectID),
		status:     models.DocumentStatusDraft,
	})
}

func (g *documentGenerator) generate(ctx context.Context, in generation) (*models.Document, error) {
	if in.userID == "" {
		return nil, fmt.Errorf("%w: no caller identity", domain.ErrUnauthorized)
	}

	tpl, err := g.Templates.GetVisible(ctx, in.templateID, in.userID)
	if err != nil {
		return nil, err
	}

	values, err := CoerceValues(tpl, in.values)
	if err != nil {
		return nil, err
	}

	if err := checkReferences(ctx, g.Clients, g.Projects, in.userID, in.clientID, in.projectID); err != nil {
		return nil, err
	}

	name := in.name
	if name == "" {
		name = tpl.Name
	}

	content := SubstituteDeclared(tpl, values)
	if in.createVersion && content == "" {
		return nil, &domain.ValidationError{Field: "createVersion", Message: "generated content is empty, nothing to version"}
	}
	metrics := CalculateMetrics(content)
	now := g.now()
	templateUpdatedAt := tpl.UpdatedAt

	bag := models.NewVariableBag(values)
	bag.Metrics = &metrics
	bag.GeneratedAt = &now
	bag.TemplateUpdatedAt = &templateUpdatedAt

	doc := &models.Document{
		Name:           name,
		Type:           tpl.Type,
		Status:         in.status,
		Content:        content,
		Size:           utf8.RuneCountInString(content),
		ClientID:       in.clientID,
		ProjectID:      in.projectID,
		TemplateID:     &tpl.ID,
		VariableValues: bag,
		IsTemplate:     false,
		OwnerID:        in.userID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	var createdBy string
	if in.createVersion {
		if createdBy, err = resolveAuthor(ctx, g.Users, in.userID); err != nil {
			return nil, err
		}
	}

	err = g.TxManager.ExecTx(ctx, func(txCtx context.Context) error {
		if err := g.Documents.Create(txCtx, doc); err != nil {
			return err
		}

		if createdBy != "" {
			note := initialVersionNote
			if _, err := createVersion(txCtx, g.Versions, doc, createdBy, &note); err != nil {
				return fmt.Errorf("initial version: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	g.Logger.Info("document generated",
		"id", doc.ID,
		"template_id", tpl.ID,
		"words", metrics.WordCount,
		"versioned", createdBy != "",
	)

	g.Activity.Record(ctx, &crmModels.Activity{
		OwnerID:     in.userID,
		Kind:        crmModels.ActivityDocumentGenerated,
		Description: fmt.Sprintf("Generated %q from template %q", doc.Name, tpl.Name),
		ClientID:    doc.ClientID,
		ProjectID:   doc.ProjectID,
		DocumentID:  &doc.ID,
	})
	g.Revalidator.Revalidate(ctx, "/documents")

	return doc, nil
}

// CoerceValues validates each value that has a definition on tpl and returns
// the normalized mapping. Undeclared keys pass through unchanged. A required
// variable needs a non-blank value or a default.
func CoerceValues(tpl *models.Template, values models.Variables) (models.Variables, error) {
	for _, def := range tpl.Variables {
		if v := values[def.Key]; !def.Required || strings.TrimSpace(v.String()) != "" {
			continue
		}
		if def.DefaultValue == nil || strings.TrimSpace(*def.DefaultValue) == "" {
			return nil, &domain.ValidationError{Field: "variableValues." + def.Key, Message: def.Label + " is required"}
		}
	}

	out := make(models.Variables, len(values))
	for key, raw := range values {
		def := tpl.Definition(key)
		if def == nil {
			out[key] = raw
			continue
		}

		value, err := def.Coerce(raw)
		if err != nil {
			return nil, &domain.ValidationError{Field: "variableValues." + key, Message: err.Error()}
		}
		out[key] = value
	}
	return out, nil
}

// normalizeID treats an empty reference as absent
func normalizeID(id *string) *string {
	if id == nil || *id == "" {
		return nil
	}
	return id
}
