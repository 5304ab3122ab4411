package render

import (
	"strings"
	"unicode"

	"github.com/armature-io/armature/pkg/types"
)

// Transforms returns the fixed table of case transforms available to
// placeholder expressions. The table is rebuilt per call so a caller can
// never mutate the shared set.
func Transforms() map[string]types.Transform {
	return map[string]types.Transform{
		"snakeCase":    SnakeCase,
		"pascalCase":   PascalCase,
		"camelCase":    CamelCase,
		"kebabCase":    KebabCase,
		"titleCase":    TitleCase,
		"constantCase": ConstantCase,
		"upperCase":    strings.ToUpper,
		"lowerCase":    strings.ToLower,
	}
}

// NewContext builds a RenderContext over a validated value set with the
// standard transform table.
func NewContext(values types.ValueSet) *types.RenderContext {
	return &types.RenderContext{
		Values:     values,
		Transforms: Transforms(),
	}
}

// splitWords breaks an identifier-like string into its words. Underscores,
// hyphens, and spaces separate words, and every uppercase letter starts a
// new word. Uppercase runs are NOT grouped into acronyms: PascalCase marks
// each word with exactly one capital, so "AB" must split back into "a", "b"
// or single-letter words would not survive a pascal/snake round trip.
func splitWords(s string) []string {
	var words []string
	var cur []rune
	flush := func() {
		if len(cur) > 0 {
			words = append(words, string(cur))
			cur = nil
		}
	}

	for _, r := range s {
		switch {
		case r == '_' || r == '-' || r == ' ':
			flush()
		case unicode.IsUpper(r):
			flush()
			cur = append(cur, unicode.ToLower(r))
		default:
			cur = append(cur, r)
		}
	}
	flush()
	return words
}

func capitalize(word string) string {
	if word == "" {
		return word
	}
	runes := []rune(word)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

// SnakeCase converts an identifier to lower_snake_case.
func SnakeCase(s string) string {
	return strings.Join(splitWords(s), "_")
}

// PascalCase converts an identifier to PascalCase.
func PascalCase(s string) string {
	words := splitWords(s)
	for i, w := range words {
		words[i] = capitalize(w)
	}
	return strings.Join(words, "")
}

// CamelCase converts an identifier to camelCase.
func CamelCase(s string) string {
	words := splitWords(s)
	for i, w := range words {
		if i == 0 {
			continue
		}
		words[i] = capitalize(w)
	}
	return strings.Join(words, "")
}

// KebabCase converts an identifier to kebab-case.
func KebabCase(s string) string {
	return strings.Join(splitWords(s), "-")
}

// TitleCase converts an identifier to Title Case with space separators.
func TitleCase(s string) string {
	words := splitWords(s)
	for i, w := range words {
		words[i] = capitalize(w)
	}
	return strings.Join(words, " ")
}

// ConstantCase converts an identifier to UPPER_SNAKE_CASE.
func ConstantCase(s string) string {
	return strings.ToUpper(SnakeCase(s))
}
