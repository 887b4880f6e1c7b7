package docgen

import (
	"context"

	"folio/internal/domain/models/docgen"
)

// VersionRepository defines data access operations for document versions.
// Versions are append-only; there is no update or delete.
type VersionRepository interface {
	// Create appends a version numbered one past the current maximum for
	// the document and fills in ID, VersionNumber and CreatedAt
	Create(ctx context.Context, version *docgen.DocumentVersion) error

	// GetByID retrieves a version of the given document
	GetByID(ctx context.Context, documentID, versionID string) (*docgen.DocumentVersion, error)

	// ListByDocument returns versions newest first
	ListByDocument(ctx context.Context, documentID string) ([]docgen.DocumentVersion, error)
}
