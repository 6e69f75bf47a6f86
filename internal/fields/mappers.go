package fields

import (
	"strings"

	"github.com/dgallion1/ctidoc/internal/ctijson"
	"github.com/dgallion1/ctidoc/internal/normalize"
	"github.com/dgallion1/ctidoc/internal/schema"
)

// Map resolves the canonical fields of rec using the rules for tag.
// Missing source keys are tolerated; the result only holds what resolved.
func Map(rec ctijson.Value, tag schema.Tag) Set {
	switch tag {
	case schema.StixBundle, schema.StixObjects:
		return stixFields(firstObject(rec))
	case schema.MitreAttack:
		return mitreFields(firstObject(rec))
	case schema.StixObject:
		return stixFields(rec)
	case schema.OpenCTI:
		return openCTIFields(rec)
	case schema.ThreatActor:
		return threatActorFields(rec)
	case schema.GenericThreat:
		return genericThreatFields(rec)
	case schema.SecurityBulletin:
		return bulletinFields(rec)
	default:
		return genericFields(rec)
	}
}

// firstObject is the element STIX-shaped containers are described by.
func firstObject(rec ctijson.Value) ctijson.Value {
	if obj := rec.Lookup("objects").Index(0); obj.IsObject() {
		return obj
	}
	return ctijson.ObjectValue()
}

func stixFields(obj ctijson.Value) Set {
	var s Set
	s.put(Name, obj.Lookup("name"))
	s.put(Description, obj.Lookup("description"))
	s.put(Type, obj.Lookup("type"))
	s.put(ID, obj.Lookup("id"))
	s.put(Labels, obj.Lookup("labels"))
	s.put(Created, obj.Lookup("created"))
	s.put(Modified, obj.Lookup("modified"))
	s.put(Pattern, obj.Lookup("pattern"))
	s.put(Confidence, obj.Lookup("confidence"))
	s.put(References, strs(ExternalReferences(obj.Lookup("external_references"))))
	s.put(Platforms, first(obj, "x_mitre_platforms", "platforms"))
	s.put(Aliases, first(obj, "aliases", "x_mitre_aliases"))
	return s
}

func mitreFields(obj ctijson.Value) Set {
	var s Set
	s.put(Name, obj.Lookup("name"))
	s.put(Description, obj.Lookup("description"))
	s.put(Type, obj.Lookup("type"))
	s.put(ID, obj.Lookup("id"))
	s.put(MitreID, ctijson.StringValue(MitreExternalID(obj.Lookup("external_references"))))
	s.put(Platforms, obj.Lookup("x_mitre_platforms"))
	s.put(Tactics, strs(mitreTactics(obj.Lookup("kill_chain_phases"))))
	s.put(DataSources, first(obj, "x_mitre_data_sources", "x_mitre_data_source_refs"))
	s.put(Detection, obj.Lookup("x_mitre_detection"))
	s.put(Aliases, obj.Lookup("x_mitre_aliases"))
	s.put(References, strs(ExternalReferences(obj.Lookup("external_references"))))
	s.put(Created, obj.Lookup("created"))
	s.put(Modified, obj.Lookup("modified"))
	s.put(Version, obj.Lookup("x_mitre_version"))
	return s
}

// mitreTactics turns ATT&CK kill chain phases into tactic names,
// "defense-evasion" becoming "Defense Evasion".
func mitreTactics(phases ctijson.Value) []string {
	var out []string
	for _, phase := range phases.Items() {
		if !strings.Contains(phase.Lookup("kill_chain_name").Str(), "mitre") {
			continue
		}
		name := phase.Lookup("phase_name").Text()
		if name == "" {
			continue
		}
		out = append(out, normalize.Title(strings.ReplaceAll(name, "-", " ")))
	}
	return out
}

func openCTIFields(rec ctijson.Value) Set {
	var s Set
	s.put(Name, rec.Lookup("name"))
	s.put(Description, rec.Lookup("description"))
	s.put(Type, rec.Lookup("entity_type"))
	s.put(ID, first(rec, "standard_id", "id"))
	s.put(Labels, rec.Lookup("labels"))
	s.put(Platforms, rec.Lookup("platforms"))
	s.put(Confidence, rec.Lookup("confidence"))
	s.put(Created, rec.Lookup("created"))
	s.put(Modified, rec.Lookup("modified"))
	return s
}

func threatActorFields(rec ctijson.Value) Set {
	since := "unknown date"
	if added := rec.Lookup("date_added"); added.Truthy() {
		since = added.Text()
	}

	var s Set
	s.put(Name, rec.Lookup("threat_actor_name"))
	s.put(Description, ctijson.StringValue("Threat actor active since "+since))
	s.put(Type, ctijson.StringValue("threat-actor"))
	s.put(ID, first(rec, "mitre_id", "misp_id"))
	s.put(Country, rec.Lookup("country"))
	s.put(References, strs(cveReferences(rec.Lookup("cve_references"))))
	s.put(Techniques, strs(actorTechniques(rec.Lookup("associated_mitre_attack_techniques"))))
	s.put(Targets, strs(actorTargets(rec.Lookup("vendors_and_products_targeted"))))
	s.put(Created, rec.Lookup("date_added"))
	s.put(Aliases, strs(actorAliases(rec.Lookup("vendor_names_for_threat_actors"))))
	return s
}

// cveReferences renders {"cve": [...], "url": ...} entries as
// "CVE-1, CVE-2 (url)", or just the CVEs without a url.
func cveReferences(refs ctijson.Value) []string {
	var out []string
	for _, ref := range refs.Items() {
		cves := joinText(ref.Lookup("cve"), ", ")
		if cves == "" {
			continue
		}
		if url := ref.Lookup("url"); url.Truthy() {
			cves += " (" + url.Text() + ")"
		}
		out = append(out, cves)
	}
	return out
}

func actorTechniques(techs ctijson.Value) []string {
	var out []string
	for _, tech := range techs.Items() {
		if line := pair(tech.Lookup("id"), tech.Lookup("name"), " - "); line != "" {
			out = append(out, line)
		}
	}
	return out
}

func actorTargets(targets ctijson.Value) []string {
	var out []string
	for _, target := range targets.Items() {
		if line := pair(target.Lookup("vendor"), target.Lookup("product"), " "); line != "" {
			out = append(out, line)
		}
	}
	return out
}

func actorAliases(names ctijson.Value) []string {
	var out []string
	for _, n := range names.Items() {
		if alias := n.Lookup("threat_actor_name"); alias.Truthy() {
			out = append(out, alias.Text())
		}
	}
	return out
}

func genericThreatFields(rec ctijson.Value) Set {
	var s Set
	s.put(Name, rec.Lookup("name"))
	s.put(Description, rec.Lookup("description"))
	s.put(Type, first(rec, "threat_type", "type"))
	s.put(ID, rec.Lookup("id"))
	s.put(Indicators, first(rec, "indicators", "iocs"))
	s.put(Techniques, first(rec, "ttps", "techniques"))
	s.put(Attribution, rec.Lookup("attribution"))
	s.put(Created, first(rec, "first_seen", "created"))
	s.put(Modified, first(rec, "last_seen", "modified"))
	return s
}

func bulletinFields(rec ctijson.Value) Set {
	var s Set
	s.put(Name, first(rec, "title", "name"))
	s.put(Description, first(rec, "summary", "description", "details"))
	s.put(Type, ctijson.StringValue("security-bulletin"))
	s.put(ID, first(rec, "id", "advisory_id"))
	s.put(References, asList(rec.Lookup("cve")))
	s.put(URLs, asList(first(rec, "urls", "url")))
	s.put(Severity, rec.Lookup("severity"))
	s.put(Created, first(rec, "published", "date", "created"))
	s.put(Modified, first(rec, "updated", "modified"))
	return s
}

func genericFields(rec ctijson.Value) Set {
	var s Set
	s.put(Name, first(rec, "name", "title"))
	s.put(Description, first(rec, "description", "summary"))
	s.put(Type, first(rec, "type", "category"))
	s.put(ID, first(rec, "id", "identifier"))
	return s
}

// pair joins a and b with sep when both are set, else returns whichever is.
func pair(a, b ctijson.Value, sep string) string {
	switch {
	case a.Truthy() && b.Truthy():
		return a.Text() + sep + b.Text()
	case a.Truthy():
		return a.Text()
	case b.Truthy():
		return b.Text()
	}
	return ""
}

// joinText joins the truthy items of an array, or returns a scalar's text.
func joinText(v ctijson.Value, sep string) string {
	if !v.IsArray() {
		if !v.Truthy() {
			return ""
		}
		return v.Text()
	}
	parts := make([]string, 0, v.Len())
	for _, item := range v.Items() {
		if item.Truthy() {
			parts = append(parts, item.Text())
		}
	}
	return strings.Join(parts, sep)
}

// asList wraps a truthy scalar in a one-element array.
func asList(v ctijson.Value) ctijson.Value {
	if v.IsArray() || !v.Truthy() {
		return v
	}
	return ctijson.ArrayValue(v)
}
