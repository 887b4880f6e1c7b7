package crm

import (
	"context"

	"folio/internal/domain/models/crm"
)

// UserRepository defines data access operations for user profiles
type UserRepository interface {
	// GetByID retrieves a user profile; domain.ErrNotFound if none exists
	GetByID(ctx context.Context, id string) (*crm.User, error)

	// Upsert creates the profile or updates email, name and business name
	Upsert(ctx context.Context, user *crm.User) error
}
