package docgen

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"folio/internal/config"
	"folio/internal/domain"
	models "folio/internal/domain/models/docgen"
	docgenRepo "folio/internal/domain/repositories/docgen"
	crmSvc "folio/internal/domain/services/crm"
	docgenSvc "folio/internal/domain/services/docgen"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// variableKeyPattern is the snake_case identifier rule for placeholder keys
var variableKeyPattern = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// FileConverter converts an uploaded file to template content by extension
type FileConverter interface {
	Convert(ctx context.Context, filename string, content []byte) (string, error)
}

// templateService implements the TemplateService interface
type templateService struct {
	templateRepo docgenRepo.TemplateRepository
	converter    FileConverter
	revalidator  crmSvc.Revalidator
	logger       *slog.Logger
}

// NewTemplateService creates a new template service
func NewTemplateService(
	templateRepo docgenRepo.TemplateRepository,
	converter FileConverter,
	revalidator crmSvc.Revalidator,
	logger *slog.Logger,
) docgenSvc.TemplateService {
	return &templateService{
		templateRepo: templateRepo,
		converter:    converter,
		revalidator:  revalidator,
		logger:       logger,
	}
}

// ListTemplates returns the caller's templates plus global ones
func (s *templateService) ListTemplates(ctx context.Context, userID string, filter models.TemplateFilter) ([]models.Template, error) {
	if filter.Type != nil {
		if err := validation.Validate(*filter.Type, validation.In(models.TemplateTypes...)); err != nil {
			return nil, &domain.ValidationError{Field: "type", Message: err.Error()}
		}
	}
	return s.templateRepo.List(ctx, userID, filter)
}

// GetTemplate retrieves a template the caller owns or a global one
func (s *templateService) GetTemplate(ctx context.Context, userID, templateID string) (*models.Template, error) {
	return s.templateRepo.GetVisible(ctx, templateID, userID)
}

// CreateTemplate validates and stores a user-owned template
func (s *templateService) CreateTemplate(ctx context.Context, req *docgenSvc.CreateTemplateRequest) (*models.Template, error) {
	now := time.Now()
	tpl := &models.Template{
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		Type:        req.Type,
		Content:     req.Content,
		Variables:   normalizeDefinitions(req.Variables),
		IsDefault:   req.IsDefault,
		IsGlobal:    false,
		OwnerID:     &req.UserID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := ValidateTemplate(tpl); err != nil {
		return nil, err
	}

	if err := s.templateRepo.Create(ctx, tpl); err != nil {
		return nil, err
	}

	s.logger.Info("template created",
		"id", tpl.ID,
		"name", tpl.Name,
		"variables", len(tpl.Variables),
	)
	s.revalidator.Revalidate(ctx, "/templates")

	return tpl, nil
}

// UpdateTemplate applies a partial update. Global templates are read-only.
func (s *templateService) UpdateTemplate(ctx context.Context, userID, templateID string, req *docgenSvc.UpdateTemplateRequest) (*models.Template, error) {
	tpl, err := s.ownedTemplate(ctx, userID, templateID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		tpl.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description.Present {
		tpl.Description = req.Description.Value
	}
	if req.Type != nil {
		tpl.Type = *req.Type
	}
	if req.Content != nil {
		tpl.Content = *req.Content
	}
	if req.Variables != nil {
		tpl.Variables = normalizeDefinitions(*req.Variables)
	}
	if req.IsDefault != nil {
		tpl.IsDefault = *req.IsDefault
	}
	tpl.UpdatedAt = time.Now()

	if err := ValidateTemplate(tpl); err != nil {
		return nil, err
	}

	if err := s.templateRepo.Update(ctx, tpl); err != nil {
		return nil, err
	}

	s.logger.Info("template updated", "id", tpl.ID)
	s.revalidator.Revalidate(ctx, "/templates")

	return tpl, nil
}

// DeleteTemplate removes a template the caller owns. Documents generated
// from it keep their templateId.
func (s *templateService) DeleteTemplate(ctx context.Context, userID, templateID string) error {
	if _, err := s.ownedTemplate(ctx, userID, templateID); err != nil {
		return err
	}

	if err := s.templateRepo.Delete(ctx, templateID, userID); err != nil {
		return err
	}

	s.logger.Info("template deleted", "id", templateID)
	s.revalidator.Revalidate(ctx, "/templates")

	return nil
}

// ImportTemplate converts an uploaded file into a new template. Placeholders
// found in the content become manual text variables.
func (s *templateService) ImportTemplate(ctx context.Context, req *docgenSvc.ImportTemplateRequest) (*models.Template, error) {
	if len(req.Data) == 0 {
		return nil, &domain.ValidationError{Field: "file", Message: "file is empty"}
	}
	if len(req.Data) > config.MaxImportFileSize {
		return nil, &domain.ValidationError{Field: "file", Message: fmt.Sprintf("file exceeds %d bytes", config.MaxImportFileSize)}
	}

	content, err := s.converter.Convert(ctx, req.Filename, req.Data)
	if err != nil {
		return nil, &domain.ValidationError{Field: "file", Message: err.Error()}
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = strings.TrimSuffix(filepath.Base(req.Filename), filepath.Ext(req.Filename))
	}

	templateType := req.Type
	if templateType == "" {
		templateType = models.TemplateTypeOther
	}

	s.logger.Debug("template file converted",
		"filename", req.Filename,
		"bytes", len(req.Data),
	)

	return s.CreateTemplate(ctx, &docgenSvc.CreateTemplateRequest{
		UserID:    req.UserID,
		Name:      name,
		Type:      templateType,
		Content:   content,
		Variables: DefinitionsFromContent(content),
	})
}

// ownedTemplate loads a visible template and rejects global ones
func (s *templateService) ownedTemplate(ctx context.Context, userID, templateID string) (*models.Template, error) {
	tpl, err := s.templateRepo.GetVisible(ctx, templateID, userID)
	if err != nil {
		return nil, err
	}
	if tpl.IsGlobal {
		return nil, fmt.Errorf("%w: global templates are read-only", domain.ErrForbidden)
	}
	return tpl, nil
}

// ValidateTemplate checks template fields and variable definitions. Keys must
// be unique snake_case identifiers and may not collide with reserved keys.
func ValidateTemplate(tpl *models.Template) error {
	err := validation.ValidateStruct(tpl,
		validation.Field(&tpl.Name, validation.Required, validation.Length(1, config.MaxTemplateNameLength)),
		validation.Field(&tpl.Description, validation.NilOrNotEmpty, validation.Length(0, config.MaxDescriptionLength)),
		validation.Field(&tpl.Type, validation.Required, validation.In(models.TemplateTypes...)),
		validation.Field(&tpl.Content, validation.Required, validation.Length(1, config.MaxTemplateContentLength)),
		validation.Field(&tpl.Variables, validation.Length(0, config.MaxTemplateVariables)),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	seen := make(map[string]bool, len(tpl.Variables))
	for i := range tpl.Variables {
		def := &tpl.Variables[i]
		field := fmt.Sprintf("variables[%d]", i)

		if err := validateDefinition(def); err != nil {
			var verr *domain.ValidationError
			if errors.As(err, &verr) {
				verr.Field = field + "." + verr.Field
				return verr
			}
			return fmt.Errorf("%w: %s: %v", domain.ErrValidation, field, err)
		}

		if models.IsReservedKey(def.Key) {
			return &domain.ValidationError{Field: field + ".key", Message: fmt.Sprintf("%q is reserved", def.Key)}
		}
		if seen[def.Key] {
			return &domain.ValidationError{Field: field + ".key", Message: fmt.Sprintf("duplicate key %q", def.Key)}
		}
		seen[def.Key] = true
	}

	return nil
}

func validateDefinition(def *models.VariableDefinition) error {
	err := validation.ValidateStruct(def,
		validation.Field(&def.Key,
			validation.Required,
			validation.Length(1, config.MaxVariableKeyLength),
			validation.Match(variableKeyPattern).Error("must be a snake_case identifier"),
		),
		validation.Field(&def.Label, validation.Required),
		validation.Field(&def.Type, validation.Required, validation.In(models.VariableTypes...)),
		validation.Field(&def.Source, validation.Required, validation.In(models.VariableSources...)),
		validation.Field(&def.Options,
			validation.When(def.Type == models.VariableTypeSelect, validation.Required.Error("required for select variables")),
		),
	)
	if err != nil {
		return err
	}

	// The default must satisfy the variable's own type
	if def.DefaultValue != nil && *def.DefaultValue != "" {
		if _, err := def.Coerce(models.Text(*def.DefaultValue)); err != nil {
			return &domain.ValidationError{Field: "defaultValue", Message: err.Error()}
		}
	}
	return nil
}

// normalizeDefinitions fills defaults the UI may omit
func normalizeDefinitions(defs []models.VariableDefinition) []models.VariableDefinition {
	out := make([]models.VariableDefinition, len(defs))
	for i, def := range defs {
		def.Key = strings.TrimSpace(def.Key)
		if def.Label == "" {
			def.Label = labelFromKey(def.Key)
		}
		if def.Type == "" {
			def.Type = models.VariableTypeText
		}
		if def.Source == "" {
			def.Source = models.VariableSourceManual
		}
		out[i] = def
	}
	return out
}

// DefinitionsFromContent declares a manual text variable for every valid
// placeholder key in content
func DefinitionsFromContent(content string) []models.VariableDefinition {
	var defs []models.VariableDefinition
	for _, key := range DetectPlaceholders(content) {
		if !variableKeyPattern.MatchString(key) || models.IsReservedKey(key) {
			continue
		}
		defs = append(defs, models.VariableDefinition{
			Key:    key,
			Label:  labelFromKey(key),
			Type:   models.VariableTypeText,
			Source: models.VariableSourceManual,
		})
		if len(defs) == config.MaxTemplateVariables {
			break
		}
	}
	return defs
}

// labelFromKey turns "client_first_name" into "Client First Name"
func labelFromKey(key string) string {
	words := strings.Fields(strings.ReplaceAll(key, "_", " "))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
