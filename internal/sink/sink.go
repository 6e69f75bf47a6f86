// Package sink delivers rendered documents to their destinations.
package sink

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Object is one rendered file to deliver.
type Object struct {
	Key     string // Relative output path, e.g. "mitre/T1059_chunk_2.md"
	Content string
	Tag     string // Schema tag of the source record
	Source  string // Input file name
}

// Sink is an output destination.
type Sink interface {
	Name() string
	Write(ctx context.Context, obj Object) error
	Close() error
}

// RetryableError indicates a transient failure that can be retried.
type RetryableError struct {
	Sink       string
	StatusCode int
	Message    string
}

func (e *RetryableError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("%s: retryable error: %s", e.Sink, truncate(e.Message, 200))
	}
	return fmt.Sprintf("%s: retryable error (status %d): %s", e.Sink, e.StatusCode, truncate(e.Message, 200))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// Multi writes every object to all of its sinks concurrently.
type Multi struct {
	sinks []Sink
}

// NewMulti combines sinks. Nil entries are ignored.
func NewMulti(sinks ...Sink) *Multi {
	m := &Multi{}
	for _, s := range sinks {
		if s != nil {
			m.sinks = append(m.sinks, s)
		}
	}
	return m
}

func (m *Multi) Name() string { return "multi" }

// Len is the number of configured sinks.
func (m *Multi) Len() int { return len(m.sinks) }

// Write delivers obj to every sink. One sink failing does not stop the
// others; all failures are returned joined.
func (m *Multi) Write(ctx context.Context, obj Object) error {
	errs := make([]error, len(m.sinks))
	var g errgroup.Group
	for i, s := range m.sinks {
		g.Go(func() error {
			if err := s.Write(ctx, obj); err != nil {
				errs[i] = fmt.Errorf("%s: %w", s.Name(), err)
			}
			return nil
		})
	}
	_ = g.Wait()
	return errors.Join(errs...)
}

// Close closes every sink.
func (m *Multi) Close() error {
	var errs []error
	for _, s := range m.sinks {
		if err := s.Close(); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", s.Name(), err))
		}
	}
	return errors.Join(errs...)
}
