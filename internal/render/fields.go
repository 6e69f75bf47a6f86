package render

import (
	"strings"

	"github.com/dgallion1/ctidoc/internal/fields"
	"github.com/dgallion1/ctidoc/internal/normalize"
	"github.com/dgallion1/ctidoc/internal/schema"
)

type listSection struct {
	heading string
	key     fields.Key
}

// Sections after Country, in emission order.
var fieldSections = []listSection{
	{"Targeted Vendors/Products", fields.Targets},
	{"Platforms", fields.Platforms},
	{"Tactics", fields.Tactics},
	{"Data Sources", fields.DataSources},
	{"Detection", fields.Detection},
	{"Techniques/TTPs", fields.Techniques},
	{"Indicators", fields.Indicators},
	{"Labels", fields.Labels},
	{"Known Aliases", fields.Aliases},
	{"URLs", fields.URLs},
}

var metadataLines = []struct {
	label string
	key   fields.Key
}{
	{"Created", fields.Created},
	{"Modified", fields.Modified},
	{"Confidence", fields.Confidence},
	{"Severity", fields.Severity},
	{"Attribution", fields.Attribution},
	{"Version", fields.Version},
}

const noReferences = "No external references available"

// Fields renders the field-driven document for a resolved field set. A
// record without a name is titled with the Not specified placeholder.
func Fields(set fields.Set, tag schema.Tag) string {
	name := normalize.NotSpecified
	if v, ok := set.Get(fields.Name); ok {
		name = normalize.Value(v)
	}
	id := set.Lookup(fields.ID).Text()
	if mitreID, ok := set.Get(fields.MitreID); ok {
		id = mitreID.Text()
	}

	var b strings.Builder
	b.WriteString(header(title(id, name), normalize.Value(set.Lookup(fields.Description)), typeOf(set)))

	section := func(heading, body string) {
		b.WriteString("\n## " + heading + "\n" + body + "\n")
	}

	if v, ok := set.Get(fields.Country); ok {
		section("Country", normalize.Value(v))
	}
	for _, s := range fieldSections {
		v, ok := set.Get(s.key)
		if !ok || !hasItems(v) {
			continue
		}
		if s.key == fields.Detection {
			section(s.heading, normalize.Value(v))
			continue
		}
		section(s.heading, normalize.List(v))
	}

	var meta []string
	for _, m := range metadataLines {
		if v, ok := set.Get(m.key); ok {
			meta = append(meta, "**"+m.label+":** "+v.Text())
		}
	}
	if v, ok := set.Get(fields.Pattern); ok {
		meta = append(meta, "**Pattern:** `"+v.Text()+"`")
	}
	if len(meta) > 0 {
		section("Metadata", strings.Join(meta, "\n"))
	}

	if v, ok := set.Get(fields.References); ok && hasItems(v) {
		section("External References", normalize.List(v))
	} else {
		section("External References", noReferences)
	}

	b.WriteString("\n---\n" + footer(tag) + "\n")
	return b.String()
}
