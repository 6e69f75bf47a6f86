// Package schema recognizes which CTI export format a record came from.
package schema

import (
	"strings"

	"github.com/dgallion1/ctidoc/internal/ctijson"
	"github.com/dgallion1/ctidoc/internal/normalize"
)

// Tag names a recognized record format.
type Tag string

const (
	ThreatActor      Tag = "threat_actor"
	StixBundle       Tag = "stix_bundle"
	StixObjects      Tag = "stix_objects"
	StixObject       Tag = "stix_object"
	MitreAttack      Tag = "mitre_attack"
	OpenCTI          Tag = "opencti"
	SecurityBulletin Tag = "security_bulletin"
	GenericThreat    Tag = "generic_threat"
	Generic          Tag = "generic"
)

// Tags lists every tag in classification priority order.
var Tags = []Tag{
	ThreatActor, SecurityBulletin, MitreAttack, StixObjects, StixBundle,
	OpenCTI, GenericThreat, StixObject, Generic,
}

// Valid reports whether t is one of the known tags.
func (t Tag) Valid() bool {
	for _, known := range Tags {
		if t == known {
			return true
		}
	}
	return false
}

// Title is the human form used in document footers, e.g. "Stix Bundle".
func (t Tag) Title() string {
	return normalize.Title(strings.ReplaceAll(string(t), "_", " "))
}

// MitreMarker is the key prefix MITRE ATT&CK adds to its STIX extensions.
const MitreMarker = "x_mitre"

var stixTypes = map[string]bool{
	"indicator":      true,
	"malware":        true,
	"attack-pattern": true,
	"intrusion-set":  true,
}

var threatKeys = []string{"threat_type", "indicators", "ttps", "iocs"}

// Classify assigns exactly one tag to rec. The first matching rule wins;
// anything unrecognized, including non-object values, is Generic.
func Classify(rec ctijson.Value) Tag {
	if rec.Has("threat_actor_name") {
		return ThreatActor
	}
	if isBulletin(rec) {
		return SecurityBulletin
	}
	// A bundle envelope is left to the bundle rule below.
	if objects, ok := rec.Get("objects"); ok && objects.IsArray() && !isBundle(rec) {
		if objects.Len() > 0 && objects.Index(0).Contains(MitreMarker) {
			return MitreAttack
		}
		return StixObjects
	}
	if isBundle(rec) && rec.Has("objects") {
		return StixBundle
	}
	if rec.Has("entity_type") || rec.Has("standard_id") {
		return OpenCTI
	}
	for _, key := range threatKeys {
		if rec.Has(key) {
			return GenericThreat
		}
	}
	if stixTypes[rec.Lookup("type").Str()] && rec.Has("id") {
		return StixObject
	}
	return Generic
}

func isBulletin(rec ctijson.Value) bool {
	return rec.Has("title") && rec.Has("summary") && (rec.Has("url") || rec.Has("cve"))
}

func isBundle(rec ctijson.Value) bool {
	return rec.Lookup("type").Str() == "bundle"
}
