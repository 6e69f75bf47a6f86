package render

import (
	"strings"

	"github.com/dgallion1/ctidoc/internal/ctijson"
	"github.com/dgallion1/ctidoc/internal/normalize"
	"github.com/dgallion1/ctidoc/internal/schema"
)

const mitreFooter = "---\n*Generated from MITRE ATT&CK JSON data*\n"

var mitreUnknownNames = map[schema.MitreKind]string{
	schema.MitreTechnique:  "Unknown Technique",
	schema.MitreMitigation: "Unknown Mitigation",
	schema.MitreGroup:      "Unknown Group",
	schema.MitreSoftware:   "Unknown Software",
	schema.MitreTactic:     "Unknown Tactic",
}

// Kill chains whose phases are listed as technique tactics.
var mitreKillChains = map[string]bool{
	"mitre-attack":        true,
	"mitre-ics-attack":    true,
	"mitre-mobile-attack": true,
}

type mitreSection struct {
	heading string
	body    string
}

// Mitre renders an ATT&CK object with the layout of its family. obj is the
// subject returned by schema.MitreSubject. Matrices and unknown objects get
// a generic overview.
func Mitre(obj ctijson.Value, kind schema.MitreKind) string {
	defaultName, known := mitreUnknownNames[kind]
	if !known {
		return mitreDocument("# "+mitreName(obj, unknownName), []mitreSection{
			{"Overview", normalize.Value(obj.Lookup("description"))},
			{"Object Type", orDefault(obj.Lookup("type"), "unknown")},
			{"External References", mitreReferences(obj)},
		})
	}

	titleLine := "# " + mitreID(obj) + ": " + mitreName(obj, defaultName)
	description := normalize.Value(obj.Lookup("description"))

	var sections []mitreSection
	switch kind {
	case schema.MitreTechnique:
		detection := normalize.Value(obj.Lookup("x_mitre_detection"))
		if detection == normalize.NotSpecified {
			detection = "No specific detection methods documented"
		}
		sections = []mitreSection{
			{"Technique Overview", description},
			{"Tactics", mitreList(mitreTactics(obj), normalize.NotSpecified)},
			{"Platforms Affected", mitreList(obj.Lookup("x_mitre_platforms"), normalize.NotSpecified)},
			{"Data Sources", mitreList(obj.Lookup("x_mitre_data_sources"), normalize.NotSpecified)},
			{"Detection Methods", detection},
		}
	case schema.MitreMitigation:
		sections = []mitreSection{{"Mitigation Overview", description}}
	case schema.MitreGroup:
		sections = []mitreSection{
			{"Group Overview", description},
			{"Known Aliases", mitreList(obj.Lookup("aliases"), "No known aliases")},
		}
	case schema.MitreSoftware:
		sections = []mitreSection{
			{"Software Overview", description},
			{"Type", mitreList(obj.Lookup("labels"), normalize.NotSpecified)},
			{"Platforms", mitreList(obj.Lookup("x_mitre_platforms"), normalize.NotSpecified)},
		}
	case schema.MitreTactic:
		sections = []mitreSection{
			{"Tactic Overview", description},
			{"Short Name", orDefault(obj.Lookup("x_mitre_shortname"), normalize.NotSpecified)},
		}
	}
	sections = append(sections, mitreSection{"External References", mitreReferences(obj)})
	return mitreDocument(titleLine, sections)
}

func mitreDocument(titleLine string, sections []mitreSection) string {
	var b strings.Builder
	b.WriteString(titleLine + "\n\n")
	for _, s := range sections {
		b.WriteString("## " + s.heading + "\n" + s.body + "\n\n")
	}
	b.WriteString(mitreFooter)
	return b.String()
}

// mitreName keeps a present name as written, even an empty one.
func mitreName(obj ctijson.Value, fallback string) string {
	if v, ok := obj.Get("name"); ok && !v.IsNull() {
		return v.Text()
	}
	return fallback
}

// mitreID is the external_id of the first reference.
func mitreID(obj ctijson.Value) string {
	ref := obj.Lookup("external_references").Index(0)
	if v, ok := ref.Get("external_id"); ok && !v.IsNull() {
		return v.Text()
	}
	return "Unknown ID"
}

func orDefault(v ctijson.Value, fallback string) string {
	if v.Truthy() {
		return v.Text()
	}
	return fallback
}

// mitreTactics turns kill chain phase names into titled tactic names,
// e.g. "inhibit-response-function" becomes "Inhibit Response Function".
func mitreTactics(obj ctijson.Value) ctijson.Value {
	var tactics []ctijson.Value
	for _, phase := range obj.Lookup("kill_chain_phases").Items() {
		if !mitreKillChains[phase.Lookup("kill_chain_name").Text()] {
			continue
		}
		name := strings.ReplaceAll(phase.Lookup("phase_name").Text(), "-", " ")
		tactics = append(tactics, ctijson.StringValue(normalize.Title(name)))
	}
	return ctijson.ArrayValue(tactics...)
}

func mitreList(v ctijson.Value, empty string) string {
	if !hasItems(v) {
		return empty
	}
	return normalize.List(v)
}

func mitreReferences(obj ctijson.Value) string {
	var lines []string
	for _, ref := range obj.Lookup("external_references").Items() {
		src, ok := ref.Get("source_name")
		if !ok {
			continue
		}
		if url, ok := ref.Get("url"); ok {
			lines = append(lines, "- ["+src.Text()+"]("+url.Text()+")")
		} else {
			lines = append(lines, "- "+src.Text())
		}
	}
	if len(lines) == 0 {
		return noReferences
	}
	return strings.Join(lines, "\n")
}
