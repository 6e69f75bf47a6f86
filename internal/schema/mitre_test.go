package schema

import (
	"testing"

	"github.com/dgallion1/ctidoc/internal/ctijson"
)

func TestDetectMitre(t *testing.T) {
	cases := []struct {
		name   string
		in     string
		source string
		want   MitreKind
	}{
		{"attack pattern", `{"objects":[{"type":"attack-pattern"}]}`, "", MitreTechnique},
		{"course of action", `{"objects":[{"type":"course-of-action"}]}`, "", MitreMitigation},
		{"intrusion set", `{"objects":[{"type":"intrusion-set"}]}`, "", MitreGroup},
		{"malware", `{"objects":[{"type":"malware"}]}`, "", MitreSoftware},
		{"tool", `{"objects":[{"type":"tool"}]}`, "", MitreSoftware},
		{"tactic", `{"objects":[{"type":"x-mitre-tactic"}]}`, "", MitreTactic},
		{"matrix", `{"objects":[{"type":"x-mitre-matrix"}]}`, "", MitreMatrix},
		{"bare object", `{"type":"tool","name":"PsExec"}`, "", MitreSoftware},
		{"first object only", `{"objects":[{"type":"malware"},{"type":"attack-pattern"}]}`, "", MitreSoftware},
		{"type beats path", `{"objects":[{"type":"intrusion-set"}]}`, "techniques/x.json", MitreGroup},

		{"technique path", `{"objects":[{"type":"x-custom"}]}`, "ics/techniques/x.json", MitreTechnique},
		{"mitigation path", `{"objects":[{"type":"x-custom"}]}`, "mitigations/x.json", MitreMitigation},
		{"group path case", `{"objects":[{"type":"x-custom"}]}`, "Groups/x.json", MitreGroup},
		{"tool path", `{"objects":[{"type":"x-custom"}]}`, "tools/x.json", MitreSoftware},
		{"malware path", `{"objects":[{"type":"x-custom"}]}`, "malware/x.json", MitreSoftware},
		{"tactic path", `{"objects":[{"type":"x-custom"}]}`, "tactics/x.json", MitreTactic},
		{"file name hint", `{"objects":[{"type":"x-custom"}]}`, "data/mitigation_list.json", MitreMitigation},
		{"technique hint checked first", `{"objects":[{"type":"x-custom"}]}`, "groups/techniques/x.json", MitreTechnique},
		{"path beats id", `{"objects":[{"type":"x-custom","external_references":[{"external_id":"G0001"}]}]}`, "tactics/x.json", MitreTactic},

		{"group id", `{"objects":[{"type":"x-custom","external_references":[{"external_id":"G0007"}]}]}`, "x.json", MitreGroup},
		{"mitigation id", `{"objects":[{"external_references":[{"external_id":"M0930"}]}]}`, "x.json", MitreMitigation},
		{"tactic id reads as technique", `{"objects":[{"external_references":[{"external_id":"TA0001"}]}]}`, "x.json", MitreTechnique},
		{"later reference", `{"objects":[{"external_references":[{"source_name":"capec"},{"external_id":"S0002"}]}]}`, "x.json", MitreSoftware},
		{"unrecognized id", `{"objects":[{"external_references":[{"external_id":"CAPEC-1"}]}]}`, "x.json", MitreUnknown},

		{"empty objects", `{"objects":[]}`, "techniques/x.json", MitreUnknown},
		{"no subject", `{"name":"x"}`, "techniques/x.json", MitreUnknown},
		{"scalar subject", `{"objects":["attack-pattern"]}`, "", MitreUnknown},
		{"nothing matches", `{"objects":[{"type":"x-custom"}]}`, "x.json", MitreUnknown},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := DetectMitre(ctijson.MustParse(c.in), c.source); got != c.want {
				t.Errorf("expected %q, got %q", c.want, got)
			}
		})
	}
}

func TestMitreSubject(t *testing.T) {
	got := MitreSubject(ctijson.MustParse(`{"type":"bundle","objects":[{"type":"tool","name":"PsExec"}]}`))
	if got.Lookup("name").Text() != "PsExec" {
		t.Errorf("expected first bundle object, got %s", got.JSON())
	}
	if got := MitreSubject(ctijson.MustParse(`{"name":"typeless"}`)); !got.IsNull() {
		t.Errorf("expected null subject, got %s", got.JSON())
	}
}
