package docgen

import (
	"strings"
	"testing"

	models "folio/internal/domain/models/docgen"

	"github.com/stretchr/testify/assert"
)

func TestSubstitute(t *testing.T) {
	tests := []struct {
		name    string
		content string
		vars    models.Variables
		want    string
	}{
		{
			name:    "simple generation",
			content: "Hi {{client_name}}, total due {{total}}",
			vars:    models.Variables{"client_name": models.Text("Acme"), "total": models.Text("$500")},
			want:    "Hi Acme, total due $500",
		},
		{
			name:    "missing key is marked",
			content: "Hello {{x}}",
			vars:    models.Variables{},
			want:    "Hello " + MissingValue,
		},
		{
			name:    "no recursive expansion",
			content: "{{a}}",
			vars:    models.Variables{"a": models.Text("{{b}}"), "b": models.Text("c")},
			want:    "{{b}}",
		},
		{
			name:    "unused key is a no-op",
			content: "Plain {{a}}",
			vars:    models.Variables{"a": models.Text("text"), "unused": models.Text("x")},
			want:    "Plain text",
		},
		{
			name:    "empty content",
			content: "",
			vars:    models.Variables{"a": models.Text("x")},
			want:    "",
		},
		{
			name:    "no placeholders",
			content: "Nothing to see { here }",
			vars:    nil,
			want:    "Nothing to see { here }",
		},
		{
			name:    "repeated placeholder",
			content: "{{n}} and {{n}}",
			vars:    models.Variables{"n": models.Text("one")},
			want:    "one and one",
		},
		{
			name:    "numbers and booleans",
			content: "{{qty}} items, paid: {{paid}}, rate {{rate}}",
			vars:    models.Variables{"qty": models.Number(3), "paid": models.Bool(true), "rate": models.Number(1.5)},
			want:    "3 items, paid: true, rate 1.5",
		},
		{
			name:    "null value renders empty",
			content: "[{{note}}]",
			vars:    models.Variables{"note": {}},
			want:    "[]",
		},
		{
			name:    "stray leading brace is kept",
			content: "{{{a}}",
			vars:    models.Variables{"a": models.Text("x")},
			want:    "{x",
		},
		{
			name:    "keys are literal, whitespace included",
			content: "{{ a }}",
			vars:    models.Variables{"a": models.Text("x")},
			want:    MissingValue,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Substitute(tt.content, tt.vars))
		})
	}
}

func TestSubstitute_Completeness(t *testing.T) {
	contents := []string{
		"{{a}}{{b}}{{c}}",
		"Dear {{name}},\n\n{{body}}\n\n-- {{sig}}",
		"{{a}} {{a}} {{b}}",
		"<p>{{x}}</p><p>{{y}}</p>",
	}

	for _, content := range contents {
		vars := models.Variables{}
		for _, key := range DetectPlaceholders(content) {
			vars[key] = models.Text(strings.ToUpper(key))
		}

		got := Substitute(content, vars)
		assert.NotContains(t, got, "{{", "content %q", content)
		assert.NotContains(t, got, MissingValue, "content %q", content)
	}
}

func TestSubstitute_OrderIndependent(t *testing.T) {
	content := "{{a}}-{{b}}"
	vars := models.Variables{"a": models.Text("{{b}}"), "b": models.Text("{{a}}")}

	// Every run must produce the same result regardless of map iteration order
	for i := 0; i < 20; i++ {
		assert.Equal(t, "{{b}}-{{a}}", Substitute(content, vars))
	}
}

func TestEffectiveVariables(t *testing.T) {
	tpl := &models.Template{
		Variables: []models.VariableDefinition{
			{Key: "terms", DefaultValue: strPtr("Net 30")},
			{Key: "title", DefaultValue: strPtr("Proposal")},
			{Key: "client_name"},
		},
	}

	got := EffectiveVariables(tpl, models.Variables{
		"title":       models.Text("Custom"),
		"terms":       models.Text(""),
		"client_name": models.Text("Acme"),
		"extra":       models.Text("kept"),
	})

	assert.Equal(t, "Net 30", got["terms"].String(), "blank caller value must not hide default")
	assert.Equal(t, "Custom", got["title"].String())
	assert.Equal(t, "Acme", got["client_name"].String())
	assert.Equal(t, "kept", got["extra"].String())
}

func TestSubstituteDeclared_UsesDefaults(t *testing.T) {
	tpl := &models.Template{
		Content: "Terms: {{terms}}. Client: {{client_name}}. Other: {{undeclared}}",
		Variables: []models.VariableDefinition{
			{Key: "terms", DefaultValue: strPtr("Net 30")},
			{Key: "client_name"},
		},
	}

	got := SubstituteDeclared(tpl, models.Variables{
		"client_name": models.Text("Acme"),
		"undeclared":  models.Text("also substituted"),
	})

	assert.Equal(t, "Terms: Net 30. Client: Acme. Other: also substituted", got)
}

func TestDetectPlaceholders(t *testing.T) {
	got := DetectPlaceholders("{{b}} {{a}} {{b}} {{ c }} {{}} {{a}}")
	assert.Equal(t, []string{"b", "a", "c"}, got)

	assert.Empty(t, DetectPlaceholders("no placeholders"))
}
