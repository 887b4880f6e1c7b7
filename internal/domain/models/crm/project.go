package crm

import (
	"time"
)

// ProjectStatus is the delivery status of a project
type ProjectStatus string

const (
	ProjectStatusPlanning  ProjectStatus = "PLANNING"
	ProjectStatusActive    ProjectStatus = "ACTIVE"
	ProjectStatusOnHold    ProjectStatus = "ON_HOLD"
	ProjectStatusCompleted ProjectStatus = "COMPLETED"
	ProjectStatusCancelled ProjectStatus = "CANCELLED"
)

// ProjectStatuses lists every valid ProjectStatus
var ProjectStatuses = []interface{}{
	ProjectStatusPlanning,
	ProjectStatusActive,
	ProjectStatusOnHold,
	ProjectStatusCompleted,
	ProjectStatusCancelled,
}

// Project is a piece of work, optionally for a client
type Project struct {
	ID          string        `json:"id" db:"id"`
	OwnerID     string        `json:"ownerId" db:"owner_id"`
	ClientID    *string       `json:"clientId,omitempty" db:"client_id"`
	Name        string        `json:"name" db:"name"`
	Description *string       `json:"description,omitempty" db:"description"`
	Status      ProjectStatus `json:"status" db:"status"`
	StartDate   *time.Time    `json:"startDate,omitempty" db:"start_date"`
	EndDate     *time.Time    `json:"endDate,omitempty" db:"end_date"`
	CreatedAt   time.Time     `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time     `json:"updatedAt" db:"updated_at"`
}
