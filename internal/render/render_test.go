package render

import (
	"strings"
	"testing"

	"github.com/dgallion1/ctidoc/internal/ctijson"
	"github.com/dgallion1/ctidoc/internal/extract"
	"github.com/dgallion1/ctidoc/internal/fields"
	"github.com/dgallion1/ctidoc/internal/schema"
)

const actorRecord = `{"threat_actor_name": "APT-X", "date_added": "2020-01-01", "country": "RU"}`

func renderFields(t *testing.T, in string) string {
	t.Helper()
	rec := ctijson.MustParse(in)
	tag := schema.Classify(rec)
	return Fields(fields.Map(rec, tag), tag)
}

func renderComprehensive(t *testing.T, in string) string {
	t.Helper()
	rec := ctijson.MustParse(in)
	return Comprehensive(fields.Structured(rec), extract.Extract(rec), schema.Classify(rec))
}

func TestFields_ThreatActor(t *testing.T) {
	got := renderFields(t, actorRecord)
	want := "# APT-X\n" +
		"\n## Overview\nThreat actor active since 2020-01-01\n" +
		"\n## Object Type\nthreat-actor\n" +
		"\n## Country\nRU\n" +
		"\n## Metadata\n**Created:** 2020-01-01\n" +
		"\n## External References\nNo external references available\n" +
		"\n---\n*Generated from Threat Actor CTI data*\n"
	if got != want {
		t.Errorf("unexpected document:\n%s\nwant:\n%s", got, want)
	}
}

func TestFields_EmptySetHasOnlyFixedSections(t *testing.T) {
	got := Fields(fields.Set{}, schema.Generic)
	want := "# Not specified\n" +
		"\n## Overview\nNot specified\n" +
		"\n## Object Type\nunknown\n" +
		"\n## External References\nNo external references available\n" +
		"\n---\n*Generated from Generic CTI data*\n"
	if got != want {
		t.Errorf("unexpected document:\n%s\nwant:\n%s", got, want)
	}
}

func TestFields_BundlePlatforms(t *testing.T) {
	got := renderFields(t, `{"type":"bundle","objects":[{"type":"attack-pattern","name":"T1","x_mitre_platforms":["Windows"]}]}`)
	if !strings.Contains(got, "\n## Platforms\n- Windows\n") {
		t.Errorf("expected platforms section, got:\n%s", got)
	}
	if !strings.HasSuffix(got, "*Generated from Stix Bundle CTI data*\n") {
		t.Errorf("expected stix bundle footer, got:\n%s", got)
	}
}

func TestFields_MitreIDTakesTitle(t *testing.T) {
	got := renderFields(t, `{"objects":[{
		"type": "attack-pattern", "id": "attack-pattern--1", "name": "PowerShell",
		"external_references": [{"source_name": "mitre-attack", "external_id": "T1059.001"}],
		"kill_chain_phases": [{"kill_chain_name": "mitre-attack", "phase_name": "execution"}],
		"x_mitre_detection": "Monitor\n  script logs",
		"x_mitre_version": "1.2"
	}]}`)
	if !strings.HasPrefix(got, "# T1059.001: PowerShell\n") {
		t.Errorf("expected MITRE id in title, got:\n%s", got)
	}
	for _, want := range []string{
		"\n## Tactics\n- Execution\n",
		"\n## Detection\nMonitor script logs\n",
		"**Version:** 1.2",
		"\n## External References\n- mitre-attack: T1059.001\n",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("expected %q in:\n%s", want, got)
		}
	}
}

func TestFields_TitleWithoutDuplicateID(t *testing.T) {
	got := renderFields(t, `{"name": "same", "id": "same"}`)
	if !strings.HasPrefix(got, "# same\n") {
		t.Errorf("expected bare title, got %q", strings.SplitN(got, "\n", 2)[0])
	}
	got = renderFields(t, `{"name": "Report", "id": "r-1"}`)
	if !strings.HasPrefix(got, "# r-1: Report\n") {
		t.Errorf("expected id title, got %q", strings.SplitN(got, "\n", 2)[0])
	}
}

func TestFields_SectionOrder(t *testing.T) {
	got := renderFields(t, `{
		"name": "Wave", "threat_type": "loader",
		"iocs": ["evil.example"], "ttps": ["T1204"],
		"attribution": "FIN7", "first_seen": "2024-01-01"
	}`)
	order := []string{"## Overview", "## Object Type", "## Techniques/TTPs", "## Indicators", "## Metadata", "## External References", "---"}
	last := -1
	for _, h := range order {
		i := strings.Index(got, h)
		if i < 0 {
			t.Fatalf("missing %q in:\n%s", h, got)
		}
		if i < last {
			t.Errorf("%q out of order in:\n%s", h, got)
		}
		last = i
	}
	if !strings.Contains(got, "**Created:** 2024-01-01\n**Attribution:** FIN7") {
		t.Errorf("unexpected metadata in:\n%s", got)
	}
}

func TestFields_PatternInCode(t *testing.T) {
	got := renderFields(t, `{"type":"indicator","id":"indicator--1","name":"bad ip","pattern":"[ipv4-addr:value = '10.0.0.1']"}`)
	if !strings.Contains(got, "**Pattern:** `[ipv4-addr:value = '10.0.0.1']`") {
		t.Errorf("expected pattern line in:\n%s", got)
	}
}

func TestComprehensive_ThreatActor(t *testing.T) {
	got := renderComprehensive(t, actorRecord)
	want := "# APT-X\n\n## Overview\nNot specified\n\n## Object Type\nthreat-actor\n" +
		"\n## Country\nRU\n" +
		"\n## Complete Data Structure\n" +
		"The following section contains all available data from the original JSON:\n" +
		"\n```\n" +
		"- **threat_actor_name:** APT-X\n" +
		"- **date_added:** 2020-01-01\n" +
		"- **country:** RU\n" +
		"```\n" +
		"\n## Metadata\n**Created:** 2020-01-01\n**Date Added:** 2020-01-01\n" +
		"\n---\n*Generated from Threat Actor CTI data*\n" +
		"*All available data from the original JSON has been included above*"
	if got != want {
		t.Errorf("unexpected document:\n%s\nwant:\n%s", got, want)
	}
}

func TestComprehensive_RawSections(t *testing.T) {
	got := renderComprehensive(t, `{
		"threat_actor_name": "APT-X",
		"mitre_id": "G0007",
		"cve": ["CVE-2024-1", ""],
		"vendor_names_for_threat_actors": [{"vendor": "Acme", "threat_actor_name": "Fancy Cat"}],
		"targeted_countries": [],
		"related_actors": {"primary": "APT-Y"}
	}`)
	for _, want := range []string{
		"## MITRE ID\nG0007\n",
		"## CVE References\n- CVE-2024-1\n",
		`## Vendor Names for Threat Actors` + "\n" + `- {"vendor":"Acme","threat_actor_name":"Fancy Cat"}` + "\n",
		"## Related Actors\n- **primary:** APT-Y\n",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("expected %q in:\n%s", want, got)
		}
	}
	if strings.Contains(got, "## Targeted Countries") {
		t.Errorf("expected empty section to be skipped:\n%s", got)
	}
	if !strings.HasPrefix(got, "# G0007: APT-X\n") {
		t.Errorf("expected id title, got %q", strings.SplitN(got, "\n", 2)[0])
	}
}

func TestComprehensive_DescriptionAndType(t *testing.T) {
	got := renderComprehensive(t, `{"title":"TS-1","summary":": Token leak in\nclient","url":"https://example.com/ts-1"}`)
	if !strings.Contains(got, "## Overview\nToken leak in client\n") {
		t.Errorf("expected cleaned overview in:\n%s", got)
	}
	if !strings.Contains(got, "## Object Type\nsecurity-bulletin\n") {
		t.Errorf("expected inferred type in:\n%s", got)
	}
	if strings.Contains(got, "## URLs") {
		t.Error("expected urls section to be absent for a bare url key")
	}
}

func TestMissingNameTitles(t *testing.T) {
	if got := renderFields(t, `{"description": "orphan"}`); !strings.HasPrefix(got, "# Not specified\n") {
		t.Errorf("expected Not specified title in fields mode, got:\n%s", got)
	}
	if got := renderComprehensive(t, `{"description": "orphan"}`); !strings.HasPrefix(got, "# Unknown Object\n") {
		t.Errorf("expected Unknown Object title in comprehensive mode, got:\n%s", got)
	}
}

func TestBullets(t *testing.T) {
	tree := extract.Extract(ctijson.MustParse(`{
		"name": "x",
		"refs": [{"source_name": "mitre", "external_id": "T1"}, "plain"],
		"meta": {"a": {"b": 1}},
		"flag": false
	}`))
	want := strings.Join([]string{
		"- **name:** x",
		"- **refs:**",
		"  - - **source_name:** mitre",
		"    - **external_id:** T1",
		"  - plain",
		"- **meta:**",
		"  - **a:**",
		"    - **b:** 1",
		"- **flag:** False",
	}, "\n")
	if got := Bullets(tree); got != want {
		t.Errorf("unexpected bullets:\n%s\nwant:\n%s", got, want)
	}
}

func TestBullets_Empty(t *testing.T) {
	if got := Bullets(nil); got != "No data available" {
		t.Errorf("expected placeholder, got %q", got)
	}
}

func TestParseMode(t *testing.T) {
	for in, want := range map[string]Mode{"": ModeComprehensive, "Fields": ModeFields, " comprehensive ": ModeComprehensive, "MITRE": ModeMitre} {
		got, err := ParseMode(in)
		if err != nil || got != want {
			t.Errorf("ParseMode(%q): expected %q, got %q (%v)", in, want, got, err)
		}
	}
	if _, err := ParseMode("pdf"); err == nil {
		t.Error("expected error for unknown mode")
	}
}
