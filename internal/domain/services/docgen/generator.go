package docgen

import (
	"context"

	"folio/internal/domain/models/docgen"
)

// DocumentGenerator turns templates into documents
type DocumentGenerator interface {
	// Generate substitutes the caller-supplied values into a template and
	// persists the result, optionally snapshotting version 1
	Generate(ctx context.Context, req *GenerateRequest) (*docgen.Document, error)

	// GenerateFromTemplate is the template-gallery path
	GenerateFromTemplate(ctx context.Context, req *GenerateFromTemplateRequest) (*docgen.Document, error)
}

// GenerateRequest represents a document generation request
type GenerateRequest struct {
	UserID         string                 `json:"-"`
	TemplateID     string                 `json:"templateId"`
	Name           string                 `json:"name"`
	VariableValues docgen.Variables       `json:"variableValues"`
	ClientID       *string                `json:"clientId,omitempty"`
	ProjectID      *string                `json:"projectId,omitempty"`
	Status         *docgen.DocumentStatus `json:"status,omitempty"`
	CreateVersion  bool                   `json:"createVersion"`
}

// GenerateFromTemplateRequest represents a gallery generation request
type GenerateFromTemplateRequest struct {
	UserID         string           `json:"-"`
	TemplateID     string           `json:"-"` // From the URL
	Name           string           `json:"name"`
	VariableValues docgen.Variables `json:"variableValues"`
	ClientID       *string          `json:"clientId,omitempty"`
	ProjectID      *string          `json:"projectId,omitempty"`
}

// VariableResolver builds the auto-populated variable mapping
type VariableResolver interface {
	// Resolve returns system, user, client and project variables.
	// Missing client or project references are silently omitted.
	Resolve(ctx context.Context, userID string, clientID, projectID *string) (docgen.Variables, error)
}
