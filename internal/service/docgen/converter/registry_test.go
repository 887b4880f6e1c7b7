package converter

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConverterRegistry_Lookup(t *testing.T) {
	registry := NewConverterRegistry()

	assert.Equal(t, []string{".htm", ".html", ".markdown", ".md", ".text", ".txt"}, registry.SupportedExtensions())
	assert.Equal(t, "html", registry.GetConverter(".HTML").Name())
	assert.Equal(t, "markdown", registry.GetConverter(".md").Name())
	assert.Nil(t, registry.GetConverter(".docx"))
}

func TestConverterRegistry_Convert(t *testing.T) {
	registry := NewConverterRegistry()
	ctx := context.Background()

	t.Run("markdown passes through", func(t *testing.T) {
		out, err := registry.Convert(ctx, "proposal.MD", []byte("\uFEFF# Hi {{total}}\r\nline"))
		require.NoError(t, err)
		assert.Equal(t, "# Hi {{total}}\nline", out)
	})

	t.Run("html becomes markdown", func(t *testing.T) {
		out, err := registry.Convert(ctx, "invoice.html",
			[]byte(`<h1>Invoice</h1><p onclick="steal()">Total {{total}}</p><script>alert(1)</script>`))
		require.NoError(t, err)
		assert.Contains(t, out, "# Invoice")
		assert.Contains(t, out, "Total {{total}}")
		assert.NotContains(t, out, "alert")
		assert.NotContains(t, out, "onclick")
	})

	t.Run("unsupported extension", func(t *testing.T) {
		_, err := registry.Convert(ctx, "scan.pdf", []byte("%PDF-1.7"))
		var unsupported *UnsupportedTypeError
		require.ErrorAs(t, err, &unsupported)
		assert.Equal(t, ".pdf", unsupported.Extension)
		assert.Contains(t, err.Error(), ".md")
	})

	t.Run("html keeps placeholders intact", func(t *testing.T) {
		out, err := registry.Convert(ctx, "letter.html",
			[]byte(`<p>Dear <b>{{client_name}}</b>, due {{due_date}}.</p><ul><li>{{line_item_1}}</li></ul>`))
		require.NoError(t, err)
		assert.Contains(t, out, "{{client_name}}")
		assert.Contains(t, out, "{{due_date}}")
		assert.Contains(t, out, "{{line_item_1}}")
		assert.NotContains(t, out, "FOLIOVAR")
	})

	t.Run("invalid utf-8", func(t *testing.T) {
		_, err := registry.Convert(ctx, "notes.txt", []byte{0xff, 0xfe, 0x00})
		assert.ErrorIs(t, err, errInvalidEncoding)
	})
}

func TestConverterRegistry_RegisterRejectsDuplicateExtension(t *testing.T) {
	registry := NewConverterRegistry()

	err := registry.Register(&passthroughConverter{name: "notes", extensions: []string{"TXT"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "plaintext")
	assert.Equal(t, "plaintext", registry.GetConverter("txt").Name())
}

func TestPlaceholderTokens_DoNotCollide(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 12; i++ {
		fmt.Fprintf(&b, "{{v%d}} ", i)
	}
	protected, found := protectPlaceholders(b.String())
	require.Len(t, found, 12)
	assert.NotContains(t, protected, "{{")
	assert.Equal(t, b.String(), restorePlaceholders(protected, found))
}
