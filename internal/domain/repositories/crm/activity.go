package crm

import (
	"context"

	"folio/internal/domain/models/crm"
)

// ActivityRepository stores timeline entries
type ActivityRepository interface {
	Create(ctx context.Context, activity *crm.Activity) error

	// List returns the newest entries first, at most limit of them
	List(ctx context.Context, ownerID string, clientID *string, limit int) ([]crm.Activity, error)
}
