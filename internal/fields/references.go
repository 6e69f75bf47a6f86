package fields

import "github.com/dgallion1/ctidoc/internal/ctijson"

// ExternalReferences renders STIX external_references as readable lines:
// "source: external_id" when both exist, else the url, else the source.
// Entries offering none of these are dropped.
func ExternalReferences(refs ctijson.Value) []string {
	var out []string
	for _, ref := range refs.Items() {
		if !ref.IsObject() {
			continue
		}
		source := ref.Lookup("source_name")
		url := ref.Lookup("url")
		externalID := ref.Lookup("external_id")
		switch {
		case externalID.Truthy() && source.Truthy():
			out = append(out, source.Text()+": "+externalID.Text())
		case url.Truthy():
			out = append(out, url.Text())
		case source.Truthy():
			out = append(out, source.Text())
		}
	}
	return out
}

var mitreSources = map[string]bool{
	"mitre-attack":     true,
	"mitre-ics-attack": true,
}

// MitreExternalID returns the ATT&CK id (e.g. T1059) from the first
// reference whose source is an ATT&CK matrix.
func MitreExternalID(refs ctijson.Value) string {
	for _, ref := range refs.Items() {
		if mitreSources[ref.Lookup("source_name").Str()] {
			return ref.Lookup("external_id").Text()
		}
	}
	return ""
}
