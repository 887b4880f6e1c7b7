package converter

import (
	"context"
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	docgenSvc "folio/internal/domain/services/docgen"
)

// ConverterRegistry picks the converter for an uploaded template file by its
// extension. Safe for concurrent use.
type ConverterRegistry struct {
	mu     sync.RWMutex
	byExt  map[string]docgenSvc.ContentConverter
	byName map[string]docgenSvc.ContentConverter
}

// NewConverterRegistry returns a registry that accepts markdown, plain text and HTML
func NewConverterRegistry() *ConverterRegistry {
	r := &ConverterRegistry{
		byExt:  make(map[string]docgenSvc.ContentConverter),
		byName: make(map[string]docgenSvc.ContentConverter),
	}
	for _, c := range []docgenSvc.ContentConverter{
		NewMarkdownConverter(),
		NewTextConverter(),
		NewHTMLConverter(),
	} {
		if err := r.Register(c); err != nil {
			panic(err)
		}
	}
	return r
}

// Register adds a converter. An extension may belong to one converter only.
func (r *ConverterRegistry) Register(c docgenSvc.ContentConverter) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	exts := make([]string, 0, len(c.SupportedExtensions()))
	for _, ext := range c.SupportedExtensions() {
		ext = normalizeExt(ext)
		if owner, taken := r.byExt[ext]; taken {
			return fmt.Errorf("extension %s already handled by %s", ext, owner.Name())
		}
		exts = append(exts, ext)
	}

	for _, ext := range exts {
		r.byExt[ext] = c
	}
	r.byName[c.Name()] = c
	return nil
}

// GetConverter returns the converter for ext (with or without the dot, any
// case), or nil
func (r *ConverterRegistry) GetConverter(ext string) docgenSvc.ContentConverter {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.byExt[normalizeExt(ext)]
}

// Convert runs the converter matching filename's extension
func (r *ConverterRegistry) Convert(ctx context.Context, filename string, content []byte) (string, error) {
	ext := filepath.Ext(filename)
	c := r.GetConverter(ext)
	if c == nil {
		return "", &UnsupportedTypeError{Extension: ext, Supported: r.SupportedExtensions()}
	}
	return c.Convert(ctx, content)
}

// SupportedExtensions lists registered extensions in sorted order
func (r *ConverterRegistry) SupportedExtensions() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	exts := make([]string, 0, len(r.byExt))
	for ext := range r.byExt {
		exts = append(exts, ext)
	}
	slices.Sort(exts)
	return exts
}

func normalizeExt(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}
