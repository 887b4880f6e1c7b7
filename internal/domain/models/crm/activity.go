package crm

import (
	"time"
)

// ActivityKind names a timeline event
type ActivityKind string

const (
	ActivityDocumentGenerated     ActivityKind = "DOCUMENT_GENERATED"
	ActivityDocumentStatusChanged ActivityKind = "DOCUMENT_STATUS_CHANGED"
	ActivityDocumentRestored      ActivityKind = "DOCUMENT_RESTORED"
)

// Activity is a timeline entry. Entries are written best-effort.
type Activity struct {
	ID          string       `json:"id" db:"id"`
	OwnerID     string       `json:"ownerId" db:"owner_id"`
	Kind        ActivityKind `json:"kind" db:"kind"`
	Description string       `json:"description" db:"description"`
	ClientID    *string      `json:"clientId,omitempty" db:"client_id"`
	ProjectID   *string      `json:"projectId,omitempty" db:"project_id"`
	DocumentID  *string      `json:"documentId,omitempty" db:"document_id"`
	CreatedAt   time.Time    `json:"createdAt" db:"created_at"`
}
