package docgen

import (
	"context"

	"folio/internal/domain/models/docgen"
)

// VersionService manages document version history
type VersionService interface {
	// Snapshot records the document's current state as a new version
	Snapshot(ctx context.Context, userID, documentID string, changeNotes *string) (*docgen.DocumentVersion, error)

	// Restore overwrites the document with a stored version, snapshotting
	// before and after
	Restore(ctx context.Context, userID, documentID, versionID string) (*docgen.Document, error)

	// List returns the document's versions newest first
	List(ctx context.Context, userID, documentID string) ([]docgen.DocumentVersion, error)
}
