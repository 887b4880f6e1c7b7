package docgen

import (
	"regexp"
	"strings"

	models "folio/internal/domain/models/docgen"
)

// MissingValue replaces placeholders that have no value in the mapping
const MissingValue = "[MISSING_VALUE]"

// placeholderPattern matches {{key}} where key is any run of non-'}' characters
var placeholderPattern = regexp.MustCompile(`\{\{([^}]+)\}\}`)

// Substitute replaces every {{key}} in content with the string form of
// vars[key]. Placeholders without a value become MissingValue.
//
// Substitution is a single scan over content: inserted values are never
// re-scanned, so a value containing {{other}} is emitted verbatim.
func Substitute(content string, vars models.Variables) string {
	if content == "" || !strings.Contains(content, "{{") {
		return content
	}

	return placeholderPattern.ReplaceAllStringFunc(content, func(match string) string {
		key := match[2 : len(match)-2]

		// "{{{a}}" holds the literal "{{a}}" behind a stray brace
		for i := 0; i < len(key); i++ {
			if v, ok := vars[key[i:]]; ok {
				return key[:i] + v.String()
			}
			if key[i] != '{' {
				break
			}
		}
		return MissingValue
	})
}

// EffectiveVariables returns the mapping used to render tpl: each declared
// variable's default value, overlaid by every caller-supplied value. An empty
// caller value does not hide a default.
func EffectiveVariables(tpl *models.Template, vars models.Variables) models.Variables {
	effective := make(models.Variables, len(tpl.Variables)+len(vars))
	for _, def := range tpl.Variables {
		if def.DefaultValue != nil {
			effective[def.Key] = models.Text(*def.DefaultValue)
		}
	}

	for key, value := range vars {
		if _, hasDefault := effective[key]; hasDefault && isBlank(value) {
			continue
		}
		effective[key] = value
	}

	return effective
}

// SubstituteDeclared renders a template with EffectiveVariables
func SubstituteDeclared(tpl *models.Template, vars models.Variables) string {
	return Substitute(tpl.Content, EffectiveVariables(tpl, vars))
}

// DetectPlaceholders returns the distinct placeholder keys of content in
// order of first appearance
func DetectPlaceholders(content string) []string {
	matches := placeholderPattern.FindAllStringSubmatch(content, -1)

	seen := make(map[string]bool, len(matches))
	keys := make([]string, 0, len(matches))
	for _, m := range matches {
		key := strings.TrimSpace(m[1])
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		keys = append(keys, key)
	}
	return keys
}

func isBlank(v models.Value) bool {
	return v.IsNull() || (v.Kind == models.ValueKindText && v.Text == "")
}
