package docgen

import (
	"context"

	"folio/internal/domain/models/docgen"
)

// DocumentService handles document business logic outside generation
type DocumentService interface {
	ListDocuments(ctx context.Context, userID string, filter docgen.DocumentFilter) ([]docgen.Document, error)
	GetDocument(ctx context.Context, userID, documentID string) (*docgen.Document, error)

	// CreateDocument stores a freestanding document (not generated from a template)
	CreateDocument(ctx context.Context, req *CreateDocumentRequest) (*docgen.Document, error)

	UpdateDocument(ctx context.Context, userID, documentID string, req *UpdateDocumentRequest) (*docgen.Document, error)

	// ChangeStatus sets the status and appends an entry to the status history
	ChangeStatus(ctx context.Context, userID, documentID string, req *ChangeStatusRequest) (*docgen.Document, error)

	DeleteDocument(ctx context.Context, userID, documentID string) error

	// ExportDocument renders the document in the requested format
	ExportDocument(ctx context.Context, userID, documentID string, format ExportFormat) (*ExportResult, error)
}

// CreateDocumentRequest represents a freestanding document creation request
type CreateDocumentRequest struct {
	UserID    string                 `json:"-"`
	Name      string                 `json:"name"`
	Type      docgen.TemplateType    `json:"type"`
	Status    *docgen.DocumentStatus `json:"status,omitempty"`
	Content   string                 `json:"content"`
	ClientID  *string                `json:"clientId,omitempty"`
	ProjectID *string                `json:"projectId,omitempty"`
}

// UpdateDocumentRequest represents a document edit
type UpdateDocumentRequest struct {
	Name    *string              `json:"name,omitempty"`
	Type    *docgen.TemplateType `json:"type,omitempty"`
	Content *string              `json:"content,omitempty"`
}

// ChangeStatusRequest represents a status change
type ChangeStatusRequest struct {
	Status docgen.DocumentStatus `json:"status"`
	Notes  *string               `json:"notes,omitempty"`
}

// ExportFormat selects an export representation
type ExportFormat string

const (
	ExportFormatHTML ExportFormat = "html"
	ExportFormatText ExportFormat = "text"
	ExportFormatPDF  ExportFormat = "pdf" // print-ready HTML that opens the print dialog
)

// ExportResult is a rendered document ready to be downloaded
type ExportResult struct {
	Filename    string
	ContentType string
	Body        []byte
}
