package crm

import (
	"context"

	"folio/internal/domain/models/crm"
)

// ProjectRepository defines data access operations for projects
type ProjectRepository interface {
	Create(ctx context.Context, project *crm.Project) error
	GetByID(ctx context.Context, id, ownerID string) (*crm.Project, error)

	// List returns the owner's projects; clientID narrows to one client when set
	List(ctx context.Context, ownerID string, clientID *string) ([]crm.Project, error)

	Update(ctx context.Context, project *crm.Project) error
	Delete(ctx context.Context, id, ownerID string) error
}
