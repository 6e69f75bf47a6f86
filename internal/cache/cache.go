// Package cache remembers which inputs were already converted with the same
// settings, so unchanged files are not rendered and written again.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"
	"time"
)

// Entry summarizes a finished conversion.
type Entry struct {
	Documents int            `json:"documents"`
	Chunks    int            `json:"chunks"`
	Outputs   []string       `json:"outputs"`
	Tags      map[string]int `json:"tags,omitempty"`
}

// Cache stores entries by key.
type Cache interface {
	Get(ctx context.Context, key string) (*Entry, bool, error)
	Set(ctx context.Context, key string, e *Entry) error
	Close() error
}

// Settings are the conversion options that change the output.
type Settings struct {
	Mode         string
	Chunking     bool
	MaxTokens    int
	OverlapRatio float64
}

// ContentHash is the hex SHA-256 of data.
func ContentHash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Key combines the content hash with the source name, which output file
// names derive from, and the output-affecting settings. The source goes
// last so names containing ':' cannot collide with another key.
func Key(hash, source string, s Settings) string {
	if !s.Chunking {
		return fmt.Sprintf("ctidoc:%s:%s:whole:%s", hash, s.Mode, source)
	}
	return fmt.Sprintf("ctidoc:%s:%s:%d:%g:%s", hash, s.Mode, s.MaxTokens, s.OverlapRatio, source)
}

type memoryItem struct {
	entry   Entry
	expires time.Time
}

// Memory is an in-process cache with per-entry expiry.
type Memory struct {
	mu    sync.Mutex
	items map[string]memoryItem
	ttl   time.Duration
	now   func() time.Time
}

// NewMemory creates a cache. A ttl of zero keeps entries forever.
func NewMemory(ttl time.Duration) *Memory {
	return &Memory{
		items: make(map[string]memoryItem),
		ttl:   ttl,
		now:   time.Now,
	}
}

func (m *Memory) Get(_ context.Context, key string) (*Entry, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	item, ok := m.items[key]
	if !ok {
		return nil, false, nil
	}
	if !item.expires.IsZero() && m.now().After(item.expires) {
		delete(m.items, key)
		return nil, false, nil
	}
	e := item.entry
	return &e, true, nil
}

func (m *Memory) Set(_ context.Context, key string, e *Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	item := memoryItem{entry: *e}
	if m.ttl > 0 {
		item.expires = m.now().Add(m.ttl)
	}
	m.items[key] = item
	return nil
}

func (m *Memory) Close() error { return nil }
