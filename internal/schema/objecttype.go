package schema

import (
	"strings"

	"github.com/dgallion1/ctidoc/internal/ctijson"
)

// FallbackObjectType is reported when nothing about a record gives its type away.
const FallbackObjectType = "cti-object"

var typeKeys = []string{"type", "entity_type", "category", "threat_type"}

// ObjectType infers the object type shown by the comprehensive renderer.
// An explicit type field wins; otherwise structural hints are tried in order.
//
// This is a separate resolution path from Classify and the two can disagree:
// a bundle of MITRE objects classifies as a bundle but reads "bundle" here,
// while a typeless record mentioning a technique classifies as Generic and
// reads "attack-pattern" here.
func ObjectType(rec ctijson.Value) string {
	for _, key := range typeKeys {
		if v := rec.Lookup(key); v.Truthy() {
			return v.Text()
		}
	}
	if isBulletin(rec) {
		return "security-bulletin"
	}
	if rec.Has("threat_actor_name") {
		return "threat-actor"
	}
	text := rec.JSON()
	if strings.Contains(text, MitreMarker) {
		return "mitre-object"
	}
	if strings.Contains(text, "attack-pattern") || strings.Contains(strings.ToLower(text), "technique") {
		return "attack-pattern"
	}
	if rec.Has("indicators") || rec.Has("iocs") {
		return "indicator"
	}
	return FallbackObjectType
}
