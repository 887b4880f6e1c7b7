package docgen

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"
	"time"

	models "folio/internal/domain/models/docgen"
	docgenRepo "folio/internal/domain/repositories/docgen"

	"gopkg.in/yaml.v3"
)

//go:embed templates.yaml
var defaultTemplatesYAML []byte

type seedFile struct {
	Templates []seedTemplate `yaml:"templates"`
}

type seedTemplate struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Type        string         `yaml:"type"`
	IsDefault   bool           `yaml:"isDefault"`
	Content     string         `yaml:"content"`
	Variables   []seedVariable `yaml:"variables"`
}

type seedVariable struct {
	Key          string   `yaml:"key"`
	Label        string   `yaml:"label"`
	Type         string   `yaml:"type"`
	Source       string   `yaml:"source"`
	Required     bool     `yaml:"required"`
	DefaultValue *string  `yaml:"defaultValue"`
	Description  *string  `yaml:"description"`
	Options      []string `yaml:"options"`
}

// ParseSeedTemplates decodes and validates a seed file into global templates
func ParseSeedTemplates(data []byte) ([]models.Template, error) {
	var file seedFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("decode seed templates: %w", err)
	}

	templates := make([]models.Template, 0, len(file.Templates))
	for _, st := range file.Templates {
		tpl := models.Template{
			Name:      st.Name,
			Type:      models.TemplateType(st.Type),
			Content:   st.Content,
			IsDefault: st.IsDefault,
			IsGlobal:  true,
		}
		if st.Description != "" {
			description := st.Description
			tpl.Description = &description
		}

		defs := make([]models.VariableDefinition, 0, len(st.Variables))
		for _, sv := range st.Variables {
			defs = append(defs, models.VariableDefinition{
				Key:          sv.Key,
				Label:        sv.Label,
				Type:         models.VariableType(sv.Type),
				Source:       models.VariableSource(sv.Source),
				Required:     sv.Required,
				DefaultValue: sv.DefaultValue,
				Description:  sv.Description,
				Options:      sv.Options,
			})
		}
		tpl.Variables = normalizeDefinitions(defs)

		if err := ValidateTemplate(&tpl); err != nil {
			return nil, fmt.Errorf("seed template %q: %w", st.Name, err)
		}
		templates = append(templates, tpl)
	}

	return templates, nil
}

// DefaultTemplates returns the built-in global templates
func DefaultTemplates() ([]models.Template, error) {
	return ParseSeedTemplates(defaultTemplatesYAML)
}

// TemplateSeeder installs the built-in global templates
type TemplateSeeder struct {
	templateRepo docgenRepo.TemplateRepository
	logger       *slog.Logger
}

// NewTemplateSeeder creates a new template seeder
func NewTemplateSeeder(templateRepo docgenRepo.TemplateRepository, logger *slog.Logger) *TemplateSeeder {
	return &TemplateSeeder{templateRepo: templateRepo, logger: logger}
}

// Seed upserts every default template by name. Running it again refreshes
// the templates in place instead of duplicating them.
func (s *TemplateSeeder) Seed(ctx context.Context) (int, error) {
	templates, err := DefaultTemplates()
	if err != nil {
		return 0, err
	}

	now := time.Now()
	for i := range templates {
		tpl := &templates[i]
		tpl.CreatedAt = now
		tpl.UpdatedAt = now

		if err := s.templateRepo.UpsertGlobal(ctx, tpl); err != nil {
			return i, fmt.Errorf("upsert template %q: %w", tpl.Name, err)
		}

		s.logger.Info("global template seeded",
			"id", tpl.ID,
			"name", tpl.Name,
			"type", tpl.Type,
		)
	}

	return len(templates), nil
}
