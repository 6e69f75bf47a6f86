package schema

import (
	"path/filepath"
	"strings"

	"github.com/dgallion1/ctidoc/internal/ctijson"
)

// MitreKind is the ATT&CK object family a record describes.
type MitreKind string

const (
	MitreTechnique  MitreKind = "technique"
	MitreMitigation MitreKind = "mitigation"
	MitreGroup      MitreKind = "group"
	MitreSoftware   MitreKind = "software"
	MitreTactic     MitreKind = "tactic"
	MitreMatrix     MitreKind = "matrix"
	MitreUnknown    MitreKind = "unknown"
)

var mitreTypes = map[string]MitreKind{
	"attack-pattern":   MitreTechnique,
	"course-of-action": MitreMitigation,
	"intrusion-set":    MitreGroup,
	"malware":          MitreSoftware,
	"tool":             MitreSoftware,
	"x-mitre-tactic":   MitreTactic,
	"x-mitre-matrix":   MitreMatrix,
}

// Checked in order against every lowercased path component.
var mitrePathHints = []struct {
	kind  MitreKind
	words []string
}{
	{MitreTechnique, []string{"technique"}},
	{MitreMitigation, []string{"mitigation"}},
	{MitreGroup, []string{"group"}},
	{MitreSoftware, []string{"software", "tool", "malware"}},
	{MitreTactic, []string{"tactic"}},
}

// Checked in order against the first letter of each external_id.
var mitreIDPrefixes = []struct {
	prefix string
	kind   MitreKind
}{
	{"T", MitreTechnique},
	{"M", MitreMitigation},
	{"G", MitreGroup},
	{"S", MitreSoftware},
}

// MitreSubject returns the object a MITRE document describes: the first
// entry of a bundle's objects array, or the record itself when it is a bare
// STIX object. Anything else yields null.
func MitreSubject(rec ctijson.Value) ctijson.Value {
	if objs := rec.Lookup("objects"); objs.IsArray() && objs.Len() > 0 {
		return objs.Index(0)
	}
	if rec.IsObject() && rec.Lookup("type").IsString() {
		return rec
	}
	return ctijson.NullValue()
}

// DetectMitre resolves the ATT&CK family of rec. The STIX type of the
// subject wins, then words in the source path, then the external ID prefix.
// Tactic IDs ("TA0001") match the technique prefix and read as techniques
// unless the type or path says otherwise.
func DetectMitre(rec ctijson.Value, source string) MitreKind {
	subject := MitreSubject(rec)
	if !subject.IsObject() {
		return MitreUnknown
	}
	if kind, ok := mitreTypes[subject.Lookup("type").Text()]; ok {
		return kind
	}
	if kind := mitreKindFromPath(source); kind != MitreUnknown {
		return kind
	}
	for _, ref := range subject.Lookup("external_references").Items() {
		id := ref.Lookup("external_id").Text()
		for _, p := range mitreIDPrefixes {
			if strings.HasPrefix(id, p.prefix) {
				return p.kind
			}
		}
	}
	return MitreUnknown
}

func mitreKindFromPath(source string) MitreKind {
	if source == "" {
		return MitreUnknown
	}
	parts := strings.Split(strings.ToLower(filepath.ToSlash(source)), "/")
	for _, hint := range mitrePathHints {
		for _, part := range parts {
			for _, word := range hint.words {
				if strings.Contains(part, word) {
					return hint.kind
				}
			}
		}
	}
	return MitreUnknown
}
