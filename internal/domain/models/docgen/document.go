package docgen

import (
	"encoding/json"
	"fmt"
	"time"
)

// DocumentStatus is the lifecycle status of a document.
// There is no enforced transition graph; any status can follow any other.
type DocumentStatus string

const (
	DocumentStatusDraft    DocumentStatus = "DRAFT"
	DocumentStatusSent     DocumentStatus = "SENT"
	DocumentStatusApproved DocumentStatus = "APPROVED"
	DocumentStatusRejected DocumentStatus = "REJECTED"
	DocumentStatusArchived DocumentStatus = "ARCHIVED"
)

// DocumentStatuses lists every valid DocumentStatus
var DocumentStatuses = []interface{}{
	DocumentStatusDraft,
	DocumentStatusSent,
	DocumentStatusApproved,
	DocumentStatusRejected,
	DocumentStatusArchived,
}

// Document is a generated (or freestanding) piece of content with a lifecycle status.
// An empty Content means the document has no content yet.
type Document struct {
	ID             string         `json:"id" db:"id"`
	Name           string         `json:"name" db:"name"`
	Type           TemplateType   `json:"type" db:"type"`
	Status         DocumentStatus `json:"status" db:"status"`
	Content        string         `json:"content,omitempty" db:"content"`
	Size           int            `json:"size" db:"size"`
	ClientID       *string        `json:"clientId,omitempty" db:"client_id"`
	ProjectID      *string        `json:"projectId,omitempty" db:"project_id"`
	TemplateID     *string        `json:"templateId,omitempty" db:"template_id"`
	VariableValues VariableBag    `json:"variableValues" db:"variable_values"`
	IsTemplate     bool           `json:"isTemplate" db:"is_template"`
	OwnerID        string         `json:"ownerId" db:"owner_id"`
	CreatedAt      time.Time      `json:"createdAt" db:"created_at"`
	UpdatedAt      time.Time      `json:"updatedAt" db:"updated_at"`
}

// DocumentFilter narrows document listings
type DocumentFilter struct {
	Status    *DocumentStatus
	ClientID  *string
	ProjectID *string
}

// StatusChange is one entry of a document's status history
type StatusChange struct {
	From      DocumentStatus `json:"from"`
	To        DocumentStatus `json:"to"`
	ChangedBy string         `json:"changedBy"`
	ChangedAt time.Time      `json:"changedAt"`
	Notes     *string        `json:"notes,omitempty"`
}

// Reserved keys of the variable-values blob. They hold document metadata and
// can never be used as template variable keys.
const (
	BagKeyMetrics           = "metrics"
	BagKeyGeneratedAt       = "generatedAt"
	BagKeyTemplateUpdatedAt = "templateUpdatedAt"
	BagKeyStatusHistory     = "statusHistory"
)

// IsReservedKey reports whether key is one of the reserved blob keys
func IsReservedKey(key string) bool {
	switch key {
	case BagKeyMetrics, BagKeyGeneratedAt, BagKeyTemplateUpdatedAt, BagKeyStatusHistory:
		return true
	}
	return false
}

// VariableBag is the variable-values blob stored with a document and each version.
// On the wire (and in the JSONB column) it is one flat object holding the
// variable keys next to the reserved metadata keys.
type VariableBag struct {
	Values            Variables
	Metrics           *Metrics
	GeneratedAt       *time.Time
	TemplateUpdatedAt *time.Time
	StatusHistory     []StatusChange
}

// NewVariableBag wraps values in a bag with no metadata
func NewVariableBag(values Variables) VariableBag {
	if values == nil {
		values = Variables{}
	}
	return VariableBag{Values: values}
}

// Clone deep-copies the bag so snapshots never share state with the live document
func (b VariableBag) Clone() VariableBag {
	out := VariableBag{Values: b.Values.Clone()}
	if b.Metrics != nil {
		m := *b.Metrics
		out.Metrics = &m
	}
	if b.GeneratedAt != nil {
		t := *b.GeneratedAt
		out.GeneratedAt = &t
	}
	if b.TemplateUpdatedAt != nil {
		t := *b.TemplateUpdatedAt
		out.TemplateUpdatedAt = &t
	}
	if b.StatusHistory != nil {
		out.StatusHistory = append([]StatusChange(nil), b.StatusHistory...)
	}
	return out
}

// MarshalJSON flattens values and metadata into one object
func (b VariableBag) MarshalJSON() ([]byte, error) {
	flat := make(map[string]interface{}, len(b.Values)+4)
	for k, v := range b.Values {
		flat[k] = v
	}
	if b.Metrics != nil {
		flat[BagKeyMetrics] = b.Metrics
	}
	if b.GeneratedAt != nil {
		flat[BagKeyGeneratedAt] = b.GeneratedAt
	}
	if b.TemplateUpdatedAt != nil {
		flat[BagKeyTemplateUpdatedAt] = b.TemplateUpdatedAt
	}
	if len(b.StatusHistory) > 0 {
		flat[BagKeyStatusHistory] = b.StatusHistory
	}
	return json.Marshal(flat)
}

// UnmarshalJSON splits a flat object back into values and metadata
func (b *VariableBag) UnmarshalJSON(data []byte) error {
	var flat map[string]json.RawMessage
	if err := json.Unmarshal(data, &flat); err != nil {
		return err
	}

	*b = VariableBag{Values: make(Variables, len(flat))}
	for key, raw := range flat {
		var err error
		switch key {
		case BagKeyMetrics:
			err = json.Unmarshal(raw, &b.Metrics)
		case BagKeyGeneratedAt:
			err = json.Unmarshal(raw, &b.GeneratedAt)
		case BagKeyTemplateUpdatedAt:
			err = json.Unmarshal(raw, &b.TemplateUpdatedAt)
		case BagKeyStatusHistory:
			err = json.Unmarshal(raw, &b.StatusHistory)
		default:
			var v Value
			err = json.Unmarshal(raw, &v)
			b.Values[key] = v
		}
		if err != nil {
			return fmt.Errorf("variable %q: %w", key, err)
		}
	}
	return nil
}
