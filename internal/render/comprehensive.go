package render

import (
	"strings"

	"github.com/dgallion1/ctidoc/internal/ctijson"
	"github.com/dgallion1/ctidoc/internal/extract"
	"github.com/dgallion1/ctidoc/internal/fields"
	"github.com/dgallion1/ctidoc/internal/normalize"
	"github.com/dgallion1/ctidoc/internal/schema"
)

// RawSection maps a heading to a top-level key of the extracted record.
type RawSection struct {
	Heading string
	Key     string
}

// RawSections are emitted in this order when the record carries the key.
var RawSections = []RawSection{
	{"Country", "country"},
	{"MITRE ID", "mitre_id"},
	{"MISP ID", "misp_id"},
	{"Malpedia URL", "malpedia_url"},
	{"URLs", "urls"},
	{"CVE References", "cve"},
	{"Vendor Names for Threat Actors", "vendor_names_for_threat_actors"},
	{"Associated MITRE Attack Techniques", "associated_mitre_attack_techniques"},
	{"Vendors and Products Targeted", "vendors_and_products_targeted"},
	{"MITRE Attack Group", "mitre_attack_group"},
	{"MISP Threat Actor", "misp_threat_actor"},
	{"Related Actors", "related_actors"},
	{"Targeted Countries", "targeted_countries"},
	{"Targeted Industries", "targeted_industries"},
}

const (
	completeHeading = "## Complete Data Structure"
	completeIntro   = "The following section contains all available data from the original JSON:\n"
	completeFooter  = "*All available data from the original JSON has been included above*"
)

// Comprehensive renders a document that carries every surviving value of
// the record. structured comes from fields.Structured and tree from
// extract.Extract on the same record.
func Comprehensive(structured fields.Set, tree *extract.Node, tag schema.Tag) string {
	description := normalize.NotSpecified
	if v, ok := structured.Get(fields.Description); ok {
		description = normalize.Value(v)
	}

	parts := []string{
		header(title(structured.Lookup(fields.ID).Text(), nameOf(structured)), description, typeOf(structured)),
	}

	for _, s := range RawSections {
		node := tree.Child(s.Key)
		if node == nil || (!node.IsContainer() && !node.Scalar.Truthy()) {
			continue
		}
		parts = append(parts, "## "+s.Heading+"\n"+sectionBody(node)+"\n")
	}

	parts = append(parts,
		completeHeading,
		completeIntro,
		"```",
		Bullets(tree),
		"```\n",
	)

	var meta []string
	if v, ok := structured.Get(fields.Created); ok {
		meta = append(meta, "**Created:** "+v.Text())
	}
	if v, ok := structured.Get(fields.Modified); ok {
		meta = append(meta, "**Modified:** "+v.Text())
	}
	if added := tree.Child("date_added"); added != nil && added.Value().Truthy() {
		meta = append(meta, "**Date Added:** "+added.Value().Text())
	}
	if len(meta) > 0 {
		parts = append(parts, "## Metadata", strings.Join(meta, "\n")+"\n")
	}

	parts = append(parts, "---", footer(tag), completeFooter)
	return strings.Join(parts, "\n")
}

// sectionBody formats one raw section: arrays as a bullet list, objects as
// a bullet tree, scalars as cleaned text.
func sectionBody(n *extract.Node) string {
	switch n.Kind {
	case ctijson.Array:
		return normalize.List(n.Value())
	case ctijson.Object:
		return Bullets(n)
	}
	return normalize.Value(n.Scalar)
}
