package fields

import (
	"strings"
	"testing"

	"github.com/dgallion1/ctidoc/internal/ctijson"
	"github.com/dgallion1/ctidoc/internal/schema"
)

func mapJSON(t *testing.T, in string) (Set, schema.Tag) {
	t.Helper()
	rec := ctijson.MustParse(in)
	tag := schema.Classify(rec)
	return Map(rec, tag), tag
}

func texts(v ctijson.Value) []string {
	var out []string
	for _, item := range v.Items() {
		out = append(out, item.Text())
	}
	return out
}

func TestMap_ThreatActor(t *testing.T) {
	s, tag := mapJSON(t, `{
		"threat_actor_name": "APT-X",
		"description": "ignored",
		"date_added": "2020-01-01",
		"country": "RU",
		"misp_id": "misp-1",
		"cve_references": [
			{"cve": ["CVE-2021-1", "CVE-2021-2"], "url": "https://nvd.example/1"},
			{"cve": ["CVE-2022-9"]},
			{"url": "https://orphan.example"}
		],
		"associated_mitre_attack_techniques": [{"id": "T1059", "name": "Command Interpreter"}, {"id": "T1105"}],
		"vendors_and_products_targeted": [{"vendor": "Acme", "product": "VPN"}, {"product": "Router"}, {}],
		"vendor_names_for_threat_actors": [{"threat_actor_name": "Fancy Cat"}, {"vendor": "x"}]
	}`)
	if tag != schema.ThreatActor {
		t.Fatalf("expected %q, got %q", schema.ThreatActor, tag)
	}
	if got := s.Lookup(Description).Str(); got != "Threat actor active since 2020-01-01" {
		t.Errorf("unexpected description %q", got)
	}
	if got := s.Lookup(ID).Str(); got != "misp-1" {
		t.Errorf("expected id from misp_id, got %q", got)
	}
	if got := s.Lookup(Type).Str(); got != "threat-actor" {
		t.Errorf("expected type threat-actor, got %q", got)
	}
	refs := strings.Join(texts(s.Lookup(References)), "|")
	if refs != "CVE-2021-1, CVE-2021-2 (https://nvd.example/1)|CVE-2022-9" {
		t.Errorf("unexpected references %q", refs)
	}
	techs := strings.Join(texts(s.Lookup(Techniques)), "|")
	if techs != "T1059 - Command Interpreter|T1105" {
		t.Errorf("unexpected techniques %q", techs)
	}
	targets := strings.Join(texts(s.Lookup(Targets)), "|")
	if targets != "Acme VPN|Router" {
		t.Errorf("unexpected targets %q", targets)
	}
	if aliases := texts(s.Lookup(Aliases)); len(aliases) != 1 || aliases[0] != "Fancy Cat" {
		t.Errorf("unexpected aliases %v", aliases)
	}
	if got := s.Lookup(Created).Str(); got != "2020-01-01" {
		t.Errorf("expected created from date_added, got %q", got)
	}
}

func TestMap_ThreatActorUnknownDate(t *testing.T) {
	s, _ := mapJSON(t, `{"threat_actor_name": "Quiet", "date_added": ""}`)
	if got := s.Lookup(Description).Str(); got != "Threat actor active since unknown date" {
		t.Errorf("unexpected description %q", got)
	}
	if s.Has(Created) {
		t.Error("expected empty date_added to leave created absent")
	}
}

func TestMap_StixBundleUsesFirstObject(t *testing.T) {
	s, tag := mapJSON(t, `{"type":"bundle","objects":[{"type":"attack-pattern","name":"T1","x_mitre_platforms":["Windows"]}]}`)
	if tag != schema.StixBundle {
		t.Fatalf("expected %q, got %q", schema.StixBundle, tag)
	}
	if got := texts(s.Lookup(Platforms)); len(got) != 1 || got[0] != "Windows" {
		t.Errorf("expected platforms [Windows], got %v", got)
	}
	if got := s.Lookup(Name).Str(); got != "T1" {
		t.Errorf("expected name T1, got %q", got)
	}
}

func TestMap_StixReferences(t *testing.T) {
	s, tag := mapJSON(t, `{
		"type": "malware", "id": "malware--1", "name": "Emotet", "confidence": 0,
		"external_references": [
			{"source_name": "mitre-attack", "external_id": "S0367", "url": "https://attack.example/S0367"},
			{"url": "https://blog.example/emotet"},
			{"source_name": "vendor-report"},
			{"description": "no usable fields"},
			"not an object"
		]
	}`)
	if tag != schema.StixObject {
		t.Fatalf("expected %q, got %q", schema.StixObject, tag)
	}
	refs := texts(s.Lookup(References))
	want := []string{"mitre-attack: S0367", "https://blog.example/emotet", "vendor-report"}
	if strings.Join(refs, "|") != strings.Join(want, "|") {
		t.Errorf("expected %v, got %v", want, refs)
	}
	if s.Has(Confidence) {
		t.Error("expected confidence 0 to be treated as absent")
	}
}

func TestMap_Mitre(t *testing.T) {
	s, tag := mapJSON(t, `{"objects":[{
		"type": "attack-pattern",
		"id": "attack-pattern--7",
		"name": "PowerShell",
		"kill_chain_phases": [
			{"kill_chain_name": "mitre-attack", "phase_name": "defense-evasion"},
			{"kill_chain_name": "lockheed", "phase_name": "delivery"},
			{"kill_chain_name": "mitre-ics-attack", "phase_name": "execution"}
		],
		"external_references": [
			{"source_name": "capec", "external_id": "CAPEC-1"},
			{"source_name": "mitre-attack", "external_id": "T1059.001"},
			{"source_name": "mitre-ics-attack", "external_id": "T0807"}
		],
		"x_mitre_data_sources": [],
		"x_mitre_data_source_refs": ["x-mitre-data-component--1"],
		"x_mitre_detection": "Watch script block logs.",
		"x_mitre_platforms": ["Windows"],
		"x_mitre_version": "1.4"
	}]}`)
	if tag != schema.MitreAttack {
		t.Fatalf("expected %q, got %q", schema.MitreAttack, tag)
	}
	if got := s.Lookup(MitreID).Str(); got != "T1059.001" {
		t.Errorf("expected mitre id T1059.001, got %q", got)
	}
	if got := strings.Join(texts(s.Lookup(Tactics)), "|"); got != "Defense Evasion|Execution" {
		t.Errorf("unexpected tactics %q", got)
	}
	if got := texts(s.Lookup(DataSources)); len(got) != 1 || got[0] != "x-mitre-data-component--1" {
		t.Errorf("expected data source fallback, got %v", got)
	}
	if got := s.Lookup(Version).Text(); got != "1.4" {
		t.Errorf("expected version 1.4, got %q", got)
	}
	if got := s.Lookup(Detection).Text(); got != "Watch script block logs." {
		t.Errorf("unexpected detection %q", got)
	}
}

func TestMap_OpenCTI(t *testing.T) {
	s, tag := mapJSON(t, `{"entity_type":"Malware","id":"internal-9","standard_id":"malware--9","name":"Qakbot","confidence":75}`)
	if tag != schema.OpenCTI {
		t.Fatalf("expected %q, got %q", schema.OpenCTI, tag)
	}
	if got := s.Lookup(ID).Str(); got != "malware--9" {
		t.Errorf("expected standard_id to win, got %q", got)
	}
	if got := s.Lookup(Type).Str(); got != "Malware" {
		t.Errorf("expected type from entity_type, got %q", got)
	}
	if got := s.Lookup(Confidence).Text(); got != "75" {
		t.Errorf("expected confidence 75, got %q", got)
	}
}

func TestMap_GenericThreatPrecedence(t *testing.T) {
	s, tag := mapJSON(t, `{
		"name": "Loader wave",
		"type": "campaign", "threat_type": "loader",
		"indicators": [], "iocs": ["evil.example"],
		"ttps": ["T1204"], "techniques": ["ignored"],
		"created": "2023-01-01", "first_seen": "2022-12-30",
		"modified": "2023-02-01"
	}`)
	if tag != schema.GenericThreat {
		t.Fatalf("expected %q, got %q", schema.GenericThreat, tag)
	}
	if got := s.Lookup(Type).Str(); got != "loader" {
		t.Errorf("expected threat_type to win, got %q", got)
	}
	if got := texts(s.Lookup(Indicators)); len(got) != 1 || got[0] != "evil.example" {
		t.Errorf("expected empty indicators to fall back to iocs, got %v", got)
	}
	if got := texts(s.Lookup(Techniques)); len(got) != 1 || got[0] != "T1204" {
		t.Errorf("expected ttps to win, got %v", got)
	}
	if got := s.Lookup(Created).Str(); got != "2022-12-30" {
		t.Errorf("expected first_seen to win, got %q", got)
	}
	if got := s.Lookup(Modified).Str(); got != "2023-02-01" {
		t.Errorf("expected modified fallback, got %q", got)
	}
}

func TestMap_SecurityBulletin(t *testing.T) {
	s, tag := mapJSON(t, `{"title":"TS-2024-004","summary":": Auth bypass in admin panel","url":"https://example.com/ts-2024-004","cve":"CVE-2024-1111","severity":"high"}`)
	if tag != schema.SecurityBulletin {
		t.Fatalf("expected %q, got %q", schema.SecurityBulletin, tag)
	}
	if got := s.Lookup(Name).Str(); got != "TS-2024-004" {
		t.Errorf("expected title as name, got %q", got)
	}
	if got := texts(s.Lookup(References)); len(got) != 1 || got[0] != "CVE-2024-1111" {
		t.Errorf("expected cve reference, got %v", got)
	}
	if got := texts(s.Lookup(URLs)); len(got) != 1 || got[0] != "https://example.com/ts-2024-004" {
		t.Errorf("expected url list, got %v", got)
	}
}

func TestMap_Generic(t *testing.T) {
	s, _ := mapJSON(t, `{"name":"","title":"Fallback title","summary":"Short","category":"note","identifier":"n-1"}`)
	if got := s.Lookup(Name).Str(); got != "Fallback title" {
		t.Errorf("expected empty name to fall back to title, got %q", got)
	}
	if got := s.Lookup(ID).Str(); got != "n-1" {
		t.Errorf("expected identifier, got %q", got)
	}
	if s.Has(Aliases) || s.Has(References) {
		t.Error("expected unresolved fields to be absent")
	}
}

func TestMap_EmptyObjectsContainer(t *testing.T) {
	s, tag := mapJSON(t, `{"objects":[]}`)
	if tag != schema.StixObjects {
		t.Fatalf("expected %q, got %q", schema.StixObjects, tag)
	}
	if s.Len() != 0 {
		t.Errorf("expected no fields, got %v", s.Keys())
	}
}

func TestSet_KeysInCanonicalOrder(t *testing.T) {
	s, _ := mapJSON(t, `{"threat_actor_name":"A","country":"RU","date_added":"2020"}`)
	keys := s.Keys()
	want := []Key{Name, Type, Description, Created, Country}
	if len(keys) != len(want) {
		t.Fatalf("expected %v, got %v", want, keys)
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Errorf("key %d: expected %q, got %q", i, want[i], keys[i])
		}
	}
}
