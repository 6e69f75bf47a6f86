package pipeline

import (
	"fmt"
	"io"
	"maps"
	"sort"
	"sync"
	"time"
)

// Summary accumulates batch totals across finished jobs.
type Summary struct {
	mu      sync.Mutex
	started time.Time
	totals  SummarySnapshot
}

// SummarySnapshot is a copy of the totals.
type SummarySnapshot struct {
	Files       int            `json:"files"`
	FailedFiles int            `json:"failed_files"`
	CachedFiles int            `json:"cached_files"`
	Records     int            `json:"records"`
	Skipped     int            `json:"skipped"`
	Documents   int            `json:"documents"`
	Chunks      int            `json:"chunks"`
	Written     int            `json:"written"`
	Errors      int            `json:"errors"`
	Tags        map[string]int `json:"tags"`
	ElapsedMs   int64          `json:"elapsed_ms"`
}

func NewSummary() *Summary {
	return &Summary{
		started: time.Now(),
		totals:  SummarySnapshot{Tags: map[string]int{}},
	}
}

// Add folds one finished job into the totals.
func (s *Summary) Add(job JobSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &s.totals
	t.Files++
	switch job.Status {
	case StatusFailed:
		t.FailedFiles++
	case StatusCached:
		t.CachedFiles++
	}
	t.Records += job.Progress.Records
	t.Skipped += job.Progress.Skipped
	t.Documents += job.Progress.Documents
	t.Chunks += job.Progress.Chunks
	t.Written += job.Progress.Written
	t.Errors += len(job.Progress.Errors)
	for tag, n := range job.Progress.Tags {
		t.Tags[tag] += n
	}
}

func (s *Summary) Snapshot() SummarySnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := s.totals
	snap.Tags = maps.Clone(s.totals.Tags)
	snap.ElapsedMs = time.Since(s.started).Milliseconds()
	return snap
}

// Print writes a human-readable report, busiest tags first.
func (snap SummarySnapshot) Print(w io.Writer) {
	rule := "============================================================"
	fmt.Fprintln(w, rule)
	fmt.Fprintln(w, "CONVERSION STATISTICS")
	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "Files processed:   %d (%d failed, %d cached)\n", snap.Files, snap.FailedFiles, snap.CachedFiles)
	fmt.Fprintf(w, "Records converted: %d (%d skipped)\n", snap.Records, snap.Skipped)
	fmt.Fprintf(w, "Documents:         %d\n", snap.Documents)
	fmt.Fprintf(w, "Chunks:            %d\n", snap.Chunks)
	fmt.Fprintf(w, "Files written:     %d\n", snap.Written)
	fmt.Fprintf(w, "Errors:            %d\n", snap.Errors)
	fmt.Fprintf(w, "Elapsed:           %s\n", time.Duration(snap.ElapsedMs)*time.Millisecond)

	if len(snap.Tags) > 0 {
		tags := make([]string, 0, len(snap.Tags))
		for tag := range snap.Tags {
			tags = append(tags, tag)
		}
		sort.Slice(tags, func(i, j int) bool {
			if snap.Tags[tags[i]] != snap.Tags[tags[j]] {
				return snap.Tags[tags[i]] > snap.Tags[tags[j]]
			}
			return tags[i] < tags[j]
		})
		fmt.Fprintln(w, "\nRecords per format:")
		for _, tag := range tags {
			pct := float64(snap.Tags[tag]) / float64(snap.Records) * 100
			fmt.Fprintf(w, "  %s: %d (%.1f%%)\n", tag, snap.Tags[tag], pct)
		}
	}
	fmt.Fprintln(w, rule)
}
