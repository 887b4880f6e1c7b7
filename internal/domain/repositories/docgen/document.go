package docgen

import (
	"context"

	"folio/internal/domain/models/docgen"
)

// DocumentRepository defines data access operations for documents.
// Every operation is scoped by owner.
type DocumentRepository interface {
	// Create inserts a document and fills in ID and timestamps
	Create(ctx context.Context, doc *docgen.Document) error

	// GetByID retrieves a document owned by userID
	GetByID(ctx context.Context, id, userID string) (*docgen.Document, error)

	// GetForUpdate retrieves a document and locks its row until the
	// surrounding transaction ends
	GetForUpdate(ctx context.Context, id, userID string) (*docgen.Document, error)

	// List returns the owner's documents, most recently updated first
	List(ctx context.Context, userID string, filter docgen.DocumentFilter) ([]docgen.Document, error)

	// Update overwrites name, type, status, content, size and variable values
	Update(ctx context.Context, doc *docgen.Document) error

	// Delete removes a document (and, by cascade, its versions)
	Delete(ctx context.Context, id, userID string) error
}
