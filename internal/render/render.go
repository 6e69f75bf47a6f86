// Package render assembles resolved CTI fields into Markdown documents.
package render

import (
	"fmt"
	"strings"

	"github.com/dgallion1/ctidoc/internal/ctijson"
	"github.com/dgallion1/ctidoc/internal/fields"
	"github.com/dgallion1/ctidoc/internal/normalize"
	"github.com/dgallion1/ctidoc/internal/schema"
)

// Mode selects how a document is built.
type Mode string

const (
	// ModeFields renders the canonical field set of the record's format.
	ModeFields Mode = "fields"
	// ModeComprehensive renders a fixed set of raw sections plus the whole
	// extracted record.
	ModeComprehensive Mode = "comprehensive"
	// ModeMitre renders ATT&CK objects with a layout per object family.
	ModeMitre Mode = "mitre"
)

// ParseMode accepts a mode name; empty means comprehensive.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeFields:
		return ModeFields, nil
	case ModeMitre:
		return ModeMitre, nil
	case ModeComprehensive, "":
		return ModeComprehensive, nil
	}
	return "", fmt.Errorf("unknown render mode %q", s)
}

// unknownName titles a comprehensive document whose record has no name.
const unknownName = "Unknown Object"

// title builds "# {id}: {name}", or "# {name}" when id is empty or equal to name.
func title(id, name string) string {
	if id != "" && id != name {
		return "# " + id + ": " + name
	}
	return "# " + name
}

func nameOf(set fields.Set) string {
	if v, ok := set.Get(fields.Name); ok {
		return normalize.Value(v)
	}
	return unknownName
}

func typeOf(set fields.Set) string {
	if v, ok := set.Get(fields.Type); ok {
		return v.Text()
	}
	return "unknown"
}

func header(titleLine, description, objType string) string {
	return titleLine + "\n\n## Overview\n" + description + "\n\n## Object Type\n" + objType + "\n"
}

func footer(tag schema.Tag) string {
	return "*Generated from " + tag.Title() + " CTI data*"
}

// hasItems reports whether v would render at least one list line.
func hasItems(v ctijson.Value) bool {
	if !v.IsArray() {
		return v.Truthy()
	}
	for _, item := range v.Items() {
		if item.Truthy() {
			return true
		}
	}
	return false
}
