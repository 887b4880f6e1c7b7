package crm

import (
	"context"
	"time"

	"folio/internal/domain/models/crm"
)

// ClientService handles client business logic
type ClientService interface {
	ListClients(ctx context.Context, userID string) ([]crm.Client, error)
	GetClient(ctx context.Context, userID, clientID string) (*crm.Client, error)
	CreateClient(ctx context.Context, req *ClientRequest) (*crm.Client, error)
	UpdateClient(ctx context.Context, userID, clientID string, req *ClientRequest) (*crm.Client, error)
	DeleteClient(ctx context.Context, userID, clientID string) error
}

// ClientRequest is used for both creation and full updates
type ClientRequest struct {
	UserID  string  `json:"-"`
	Name    string  `json:"name"`
	Email   *string `json:"email,omitempty"`
	Phone   *string `json:"phone,omitempty"`
	Company *string `json:"company,omitempty"`
	Notes   *string `json:"notes,omitempty"`
}

// ProjectService handles project business logic
type ProjectService interface {
	ListProjects(ctx context.Context, userID string, clientID *string) ([]crm.Project, error)
	GetProject(ctx context.Context, userID, projectID string) (*crm.Project, error)
	CreateProject(ctx context.Context, req *ProjectRequest) (*crm.Project, error)
	UpdateProject(ctx context.Context, userID, projectID string, req *ProjectRequest) (*crm.Project, error)
	DeleteProject(ctx context.Context, userID, projectID string) error
}

// ProjectRequest is used for both creation and full updates
type ProjectRequest struct {
	UserID      string             `json:"-"`
	ClientID    *string            `json:"clientId,omitempty"`
	Name        string             `json:"name"`
	Description *string            `json:"description,omitempty"`
	Status      *crm.ProjectStatus `json:"status,omitempty"`
	StartDate   *time.Time         `json:"startDate,omitempty"`
	EndDate     *time.Time         `json:"endDate,omitempty"`
}

// Identity is the authenticated caller as seen by the auth middleware
type Identity struct {
	UserID string
	Email  string
	Name   string
}

// UserService handles user profiles
type UserService interface {
	// GetProfile returns the caller's profile, creating it on first access
	GetProfile(ctx context.Context, identity Identity) (*crm.User, error)

	UpdateProfile(ctx context.Context, userID string, req *UpdateProfileRequest) (*crm.User, error)
}

// UpdateProfileRequest represents a profile update
type UpdateProfileRequest struct {
	Name         *string `json:"name,omitempty"`
	BusinessName *string `json:"businessName,omitempty"`
}

// ActivityRecorder writes timeline entries best-effort.
// Failures are logged by the implementation and never returned.
type ActivityRecorder interface {
	Record(ctx context.Context, activity *crm.Activity)
}

// ActivityService exposes the timeline
type ActivityService interface {
	ListActivity(ctx context.Context, userID string, clientID *string, limit int) ([]crm.Activity, error)
}

// Revalidator is a fire-and-forget notification that a logical page's data is stale
type Revalidator interface {
	Revalidate(ctx context.Context, path string)
}
