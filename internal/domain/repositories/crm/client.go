package crm

import (
	"context"

	"folio/internal/domain/models/crm"
)

// ClientRepository defines data access operations for clients
type ClientRepository interface {
	Create(ctx context.Context, client *crm.Client) error
	GetByID(ctx context.Context, id, ownerID string) (*crm.Client, error)
	List(ctx context.Context, ownerID string) ([]crm.Client, error)
	Update(ctx context.Context, client *crm.Client) error
	Delete(ctx context.Context, id, ownerID string) error
}
