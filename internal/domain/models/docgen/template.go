package docgen

import (
	"time"
)

// TemplateType classifies both templates and the documents generated from them
type TemplateType string

const (
	TemplateTypeProposal TemplateType = "PROPOSAL"
	TemplateTypeContract TemplateType = "CONTRACT"
	TemplateTypeInvoice  TemplateType = "INVOICE"
	TemplateTypeReport   TemplateType = "REPORT"
	TemplateTypeOther    TemplateType = "OTHER"
)

// TemplateTypes lists every valid TemplateType (used by validation rules)
var TemplateTypes = []interface{}{
	TemplateTypeProposal,
	TemplateTypeContract,
	TemplateTypeInvoice,
	TemplateTypeReport,
	TemplateTypeOther,
}

// Template is reusable text with {{key}} placeholders plus declared variable metadata.
// A global template has no owner and is visible to every user.
type Template struct {
	ID          string               `json:"id" db:"id"`
	Name        string               `json:"name" db:"name"`
	Description *string              `json:"description,omitempty" db:"description"`
	Type        TemplateType         `json:"type" db:"type"`
	Content     string               `json:"content" db:"content"`
	Variables   []VariableDefinition `json:"variables" db:"variables"`
	IsDefault   bool                 `json:"isDefault" db:"is_default"`
	IsGlobal    bool                 `json:"isGlobal" db:"is_global"`
	OwnerID     *string              `json:"ownerId,omitempty" db:"owner_id"`
	CreatedAt   time.Time            `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time            `json:"updatedAt" db:"updated_at"`
}

// VisibleTo reports whether userID may read the template.
func (t *Template) VisibleTo(userID string) bool {
	if t.IsGlobal {
		return true
	}
	return t.OwnerID != nil && *t.OwnerID == userID
}

// Definition returns the variable definition for key, or nil.
// Keys are unique per template; with legacy duplicates the last one wins.
func (t *Template) Definition(key string) *VariableDefinition {
	var found *VariableDefinition
	for i := range t.Variables {
		if t.Variables[i].Key == key {
			found = &t.Variables[i]
		}
	}
	return found
}

// TemplateFilter narrows template listings
type TemplateFilter struct {
	Type *TemplateType
}
