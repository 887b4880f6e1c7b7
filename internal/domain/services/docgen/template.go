package docgen

import (
	"context"

	"folio/internal/domain/models/docgen"
)

// TemplateService handles template business logic
type TemplateService interface {
	// ListTemplates returns the caller's templates plus global ones
	ListTemplates(ctx context.Context, userID string, filter docgen.TemplateFilter) ([]docgen.Template, error)

	// GetTemplate retrieves a template the caller owns or a global one
	GetTemplate(ctx context.Context, userID, templateID string) (*docgen.Template, error)

	// CreateTemplate validates and stores a user-owned template
	CreateTemplate(ctx context.Context, req *CreateTemplateRequest) (*docgen.Template, error)

	// UpdateTemplate applies a partial update to a template the caller owns
	UpdateTemplate(ctx context.Context, userID, templateID string, req *UpdateTemplateRequest) (*docgen.Template, error)

	// DeleteTemplate removes a template the caller owns
	DeleteTemplate(ctx context.Context, userID, templateID string) error

	// ImportTemplate converts an uploaded file into a new template
	ImportTemplate(ctx context.Context, req *ImportTemplateRequest) (*docgen.Template, error)
}

// CreateTemplateRequest represents a template creation request
type CreateTemplateRequest struct {
	UserID      string                      `json:"-"` // Set by handler from auth context
	Name        string                      `json:"name"`
	Description *string                     `json:"description,omitempty"`
	Type        docgen.TemplateType         `json:"type"`
	Content     string                      `json:"content"`
	Variables   []docgen.VariableDefinition `json:"variables"`
	IsDefault   bool                        `json:"isDefault"`
}

// OptionalDescription tracks tri-state semantics for description updates (RFC 7396 PATCH).
// Transport-agnostic: the handler maps it from httputil.OptionalString.
//   - Present=false: don't change
//   - Present=true, Value=nil: clear
//   - Present=true, Value!=nil: set
type OptionalDescription struct {
	Present bool
	Value   *string
}

// UpdateTemplateRequest represents a partial template update
type UpdateTemplateRequest struct {
	Name        *string
	Description OptionalDescription
	Type        *docgen.TemplateType
	Content     *string
	Variables   *[]docgen.VariableDefinition
	IsDefault   *bool
}

// ImportTemplateRequest carries an uploaded template file
type ImportTemplateRequest struct {
	UserID   string
	Filename string
	Data     []byte
	Name     string // optional; defaults to the file name without extension
	Type     docgen.TemplateType
}

// ContentConverter converts uploaded file content to markdown.
// Implementations are stateless and safe for concurrent use.
type ContentConverter interface {
	Convert(ctx context.Context, input []byte) (markdown string, err error)

	// SupportedExtensions returns extensions with the leading dot (".html")
	SupportedExtensions() []string

	Name() string
}
