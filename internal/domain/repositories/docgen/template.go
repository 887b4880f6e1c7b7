package docgen

import (
	"context"

	"folio/internal/domain/models/docgen"
)

// TemplateRepository defines data access operations for templates.
// Reads are scoped to what userID can see: own templates plus global ones.
type TemplateRepository interface {
	// Create inserts a user-owned template
	Create(ctx context.Context, tpl *docgen.Template) error

	// GetVisible retrieves a template owned by userID or global.
	// Returns domain.ErrNotFound for missing and invisible templates alike.
	GetVisible(ctx context.Context, id, userID string) (*docgen.Template, error)

	// List returns own and global templates, global first, then by name
	List(ctx context.Context, userID string, filter docgen.TemplateFilter) ([]docgen.Template, error)

	// Update overwrites a template owned by tpl.OwnerID
	Update(ctx context.Context, tpl *docgen.Template) error

	// Delete removes a template owned by userID
	Delete(ctx context.Context, id, userID string) error

	// UpsertGlobal inserts or refreshes a global template keyed by name
	UpsertGlobal(ctx context.Context, tpl *docgen.Template) error
}
