package docgen

import (
	"time"
)

// Metrics are derived from a document's content
type Metrics struct {
	WordCount         int `json:"wordCount"`
	CharacterCount    int `json:"characterCount"`
	EstimatedReadTime int `json:"estimatedReadTime"` // minutes
	PageCount         int `json:"pageCount"`
}

// DocumentVersion is an immutable snapshot of a document
type DocumentVersion struct {
	ID             string      `json:"id" db:"id"`
	DocumentID     string      `json:"documentId" db:"document_id"`
	VersionNumber  int         `json:"versionNumber" db:"version_number"`
	Content        string      `json:"content" db:"content"`
	VariableValues VariableBag `json:"variableValues" db:"variable_values"`
	ContentHash    string      `json:"contentHash" db:"content_hash"`
	ChangeNotes    *string     `json:"changeNotes,omitempty" db:"change_notes"`
	Metrics        Metrics     `json:"metrics" db:"metrics"`
	CreatedBy      string      `json:"createdBy" db:"created_by"`
	CreatedAt      time.Time   `json:"createdAt" db:"created_at"`
}
