package pipeline

import (
	"bytes"
	"strings"
	"testing"
)

func TestSummary_Add(t *testing.T) {
	s := NewSummary()
	s.Add(JobSnapshot{
		Status: StatusCompleted,
		Progress: Progress{
			Records: 3, Documents: 3, Chunks: 2, Written: 4,
			Tags: map[string]int{"threat_actor": 2, "generic": 1},
		},
	})
	s.Add(JobSnapshot{Status: StatusFailed, Progress: Progress{Errors: []string{"parse: invalid json"}}})
	s.Add(JobSnapshot{Status: StatusCached, Progress: Progress{Records: 1, Documents: 1, Tags: map[string]int{"generic": 1}}})

	snap := s.Snapshot()
	if snap.Files != 3 || snap.FailedFiles != 1 || snap.CachedFiles != 1 {
		t.Errorf("unexpected file counts: %+v", snap)
	}
	if snap.Records != 4 || snap.Written != 4 || snap.Chunks != 2 || snap.Errors != 1 {
		t.Errorf("unexpected totals: %+v", snap)
	}
	if snap.Tags["generic"] != 2 || snap.Tags["threat_actor"] != 2 {
		t.Errorf("unexpected tags: %v", snap.Tags)
	}
}

func TestSummarySnapshot_Print(t *testing.T) {
	snap := SummarySnapshot{
		Files:   2,
		Records: 4,
		Tags:    map[string]int{"generic": 1, "threat_actor": 3},
	}
	var buf bytes.Buffer
	snap.Print(&buf)
	out := buf.String()

	if !strings.Contains(out, "CONVERSION STATISTICS") {
		t.Errorf("expected header, got:\n%s", out)
	}
	actor := strings.Index(out, "threat_actor: 3 (75.0%)")
	generic := strings.Index(out, "generic: 1 (25.0%)")
	if actor < 0 || generic < 0 {
		t.Fatalf("expected per-tag lines, got:\n%s", out)
	}
	if actor > generic {
		t.Error("expected busiest tag first")
	}
}
