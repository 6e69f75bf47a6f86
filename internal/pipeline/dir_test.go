package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestSubmitDir(t *testing.T) {
	root := t.TempDir()
	files := map[string]string{
		"actors/apt.json":  actorJSON,
		"feeds/feed.jsonl": `{"threat_actor_name": "Alpha"}` + "\n",
		"notes.txt":        "ignored",
	}
	for rel, content := range files {
		path := filepath.Join(root, rel)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	s := newRecordingSink()
	o := NewOrchestrator(newTestWorker(s, nil), 1, 10, time.Hour, testLogger())
	o.Start(context.Background())
	defer o.Stop()

	queued, err := o.SubmitDir(root, []string{"actors/**"})
	if err != nil {
		t.Fatalf("SubmitDir: %v", err)
	}
	if queued != 1 {
		t.Fatalf("expected 1 queued file, got %d", queued)
	}

	deadline := time.Now().Add(5 * time.Second)
	for o.Summary().Files < 1 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	s.mu.Lock()
	_, ok := s.written["actors/apt.md"]
	s.mu.Unlock()
	if !ok {
		t.Error("expected actors/apt.md to be written")
	}
}

func TestSubmitDir_MissingRoot(t *testing.T) {
	o := NewOrchestrator(newTestWorker(newRecordingSink(), nil), 1, 10, time.Hour, testLogger())
	if _, err := o.SubmitDir(filepath.Join(t.TempDir(), "missing"), nil); err == nil {
		t.Error("expected error for missing root")
	}
}
