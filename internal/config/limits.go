package config

const (
	// MaxTemplateNameLength is the maximum length for template names.
	// Limited to 255 to fit in PostgreSQL VARCHAR(255) and provide
	// reasonable UX (names should be short and descriptive).
	MaxTemplateNameLength = 255

	// MaxDocumentNameLength is the maximum length for document names.
	// Same as template names for consistency.
	MaxDocumentNameLength = 255

	// MaxClientNameLength is the maximum length for client and project names.
	MaxClientNameLength = 255

	// MaxDescriptionLength caps template and project descriptions.
	MaxDescriptionLength = 2000

	// MaxTemplateContentLength caps template and document content (1 MiB of text).
	// Generated documents inherit the bound from their template.
	MaxTemplateContentLength = 1 << 20

	// MaxTemplateVariables caps declared variables per template.
	MaxTemplateVariables = 100

	// MaxVariableKeyLength caps placeholder keys.
	MaxVariableKeyLength = 64

	// MaxImportFileSize is the largest accepted template upload (5 MiB).
	MaxImportFileSize = 5 << 20

	// DefaultActivityLimit and MaxActivityLimit bound timeline listings.
	DefaultActivityLimit = 50
	MaxActivityLimit     = 200
)
