// Package normalize turns raw CTI values into display text.
package normalize

import (
	"strings"

	"github.com/dgallion1/ctidoc/internal/ctijson"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// NotSpecified stands in for absent or empty values.
const NotSpecified = "Not specified"

// bulletinPrefix is the filler some vendor advisories put before their text.
const bulletinPrefix = ": "

// Clean trims s, drops one leading bulletin prefix and collapses every
// whitespace run, newlines included, to a single space.
func Clean(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, bulletinPrefix)
	return strings.Join(strings.Fields(s), " ")
}

// Text is Clean with the placeholder for an empty result.
func Text(s string) string {
	if c := Clean(s); c != "" {
		return c
	}
	return NotSpecified
}

// Value renders any value as cleaned text. Falsy values read as NotSpecified,
// and that includes a numeric 0 and a boolean false.
func Value(v ctijson.Value) string {
	if !v.Truthy() {
		return NotSpecified
	}
	return Text(v.Text())
}

// List renders items as "- item" lines, skipping falsy items. A non-array
// value is treated as a one-item list.
func List(v ctijson.Value) string {
	items := v.Items()
	if !v.IsArray() {
		items = []ctijson.Value{v}
	}
	lines := make([]string, 0, len(items))
	for _, item := range items {
		if !item.Truthy() {
			continue
		}
		lines = append(lines, "- "+Value(item))
	}
	if len(lines) == 0 {
		return NotSpecified
	}
	return strings.Join(lines, "\n")
}

// Title upper-cases the first letter of every word and lower-cases the rest.
func Title(s string) string {
	// Casers keep state, so each call gets its own.
	return cases.Title(language.Und).String(s)
}
