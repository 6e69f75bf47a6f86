package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgallion1/ctidoc/internal/cache"
	"github.com/dgallion1/ctidoc/internal/convert"
	"github.com/dgallion1/ctidoc/internal/metrics"
	"github.com/dgallion1/ctidoc/internal/parser"
	"github.com/dgallion1/ctidoc/internal/sink"
)

// Worker converts one job's file and delivers the outputs.
type Worker struct {
	sink    sink.Sink
	cache   cache.Cache
	metrics *metrics.Metrics
	stats   *ConversionStats
	log     *slog.Logger
	opts    convert.Options
	backoff func(attempt int) time.Duration
}

// NewWorker wires a worker. cache, m and stats may be nil.
func NewWorker(s sink.Sink, c cache.Cache, m *metrics.Metrics, stats *ConversionStats, log *slog.Logger, opts convert.Options) *Worker {
	return &Worker{
		sink:    s,
		cache:   c,
		metrics: m,
		stats:   stats,
		log:     log,
		opts:    opts,
		backoff: Backoff,
	}
}

// Options returns the conversion options the worker applies.
func (w *Worker) Options() convert.Options {
	return w.opts
}

// Process runs parse, convert and write for a job. Per-record and
// per-output failures are recorded on the job and do not stop the rest.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "file", job.Filename)
	defer job.releaseData()

	// Phase 1: Parse
	job.SetStatus(StatusParsing, "parsing")
	data := job.FileData()
	start := time.Now()

	in, err := parser.ParseBytes(data, job.Filename)
	if err != nil {
		log.Error("parse failed", "error", err)
		job.AddError(fmt.Sprintf("parse: %s", err))
		w.finish(job, StatusFailed, "parsing")
		w.countError("parse")
		return
	}
	for _, recErr := range in.Errors {
		log.Warn("record skipped", "error", recErr)
		job.AddError(fmt.Sprintf("parse: %s", recErr))
		w.countError("parse")
	}

	hash := cache.ContentHash(data)
	job.SetContentHash(hash)
	key := cache.Key(hash, job.Filename, w.settings())

	// Phase 1.5: Cache check
	if w.cache != nil {
		entry, ok, err := w.cache.Get(ctx, key)
		if err != nil {
			log.Warn("cache lookup failed, proceeding", "error", err)
			w.countError("cache")
		} else if ok {
			log.Info("unchanged input, skipping", "documents", entry.Documents)
			job.SetConverted(entry.Documents, 0, entry.Documents, entry.Chunks, entry.Tags)
			w.finish(job, StatusCached, "cache")
			return
		}
	}

	// Phase 2: Convert
	job.SetStatus(StatusConverting, "converting")
	res := convert.Input(in, w.opts)

	tags := make(map[string]int)
	for _, doc := range res.Documents {
		tags[string(doc.Tag)]++
		if w.metrics != nil {
			w.metrics.Record(string(doc.Tag))
		}
	}
	job.SetConverted(len(res.Documents), res.Skipped, len(res.Documents), res.Chunks(), tags)

	elapsed := time.Since(start)
	if w.stats != nil {
		w.stats.Record(elapsed, len(res.Documents))
	}
	if w.metrics != nil {
		w.metrics.Observe(elapsed)
	}
	log.Info("converted", "records", len(res.Documents), "skipped", res.Skipped, "chunks", res.Chunks(), "duration_ms", elapsed.Milliseconds())

	if len(res.Documents) == 0 {
		job.AddError("no convertible records")
		w.finish(job, StatusFailed, "converting")
		return
	}

	// Phase 3: Write
	job.SetStatus(StatusWriting, "writing")
	for _, doc := range res.Documents {
		chunked := len(doc.Outputs) > 1
		for _, out := range doc.Outputs {
			obj := sink.Object{
				Key:     out.Filename,
				Content: out.Content,
				Tag:     string(doc.Tag),
				Source:  job.Filename,
			}
			if err := w.writeWithRetry(ctx, obj, log); err != nil {
				log.Error("write failed", "output", out.Filename, "error", err)
				job.AddError(fmt.Sprintf("write %s: %s", out.Filename, err))
				w.countError("write")
				continue
			}
			job.AddOutput(out.Filename)
			if w.metrics != nil {
				chunks := 0
				if chunked {
					chunks = 1
				}
				w.metrics.Written(1, chunks)
			}
		}
	}

	written := len(job.Outputs())
	hadErrors := job.ErrorCount() > 0
	switch {
	case hadErrors && written > 0:
		w.finish(job, StatusPartial, "done")
	case hadErrors:
		w.finish(job, StatusFailed, "writing")
	default:
		w.remember(ctx, key, job, res, tags, log)
		w.finish(job, StatusCompleted, "done")
	}
}

// writeWithRetry retries transient sink failures with backoff.
func (w *Worker) writeWithRetry(ctx context.Context, obj sink.Object, log *slog.Logger) error {
	return retry(ctx, w.backoff,
		func() error { return w.sink.Write(ctx, obj) },
		func(attempt int, err error) {
			log.Warn("retryable write error", "output", obj.Key, "attempt", attempt, "error", err)
		})
}

// remember caches a clean conversion so the same input is skipped next time.
func (w *Worker) remember(ctx context.Context, key string, job *Job, res *convert.Result, tags map[string]int, log *slog.Logger) {
	if w.cache == nil {
		return
	}
	entry := &cache.Entry{
		Documents: len(res.Documents),
		Chunks:    res.Chunks(),
		Outputs:   job.Outputs(),
		Tags:      tags,
	}
	if err := w.cache.Set(ctx, key, entry); err != nil {
		log.Warn("cache store failed", "error", err)
		w.countError("cache")
	}
}

func (w *Worker) finish(job *Job, status JobStatus, phase string) {
	job.SetStatus(status, phase)
	if w.metrics != nil {
		w.metrics.FileDone(string(status))
	}
}

func (w *Worker) countError(stage string) {
	if w.metrics != nil {
		w.metrics.Error(stage)
	}
}

func (w *Worker) settings() cache.Settings {
	return cache.Settings{
		Mode:         string(w.opts.Mode),
		Chunking:     w.opts.Chunking,
		MaxTokens:    w.opts.Chunk.MaxTokens,
		OverlapRatio: w.opts.Chunk.OverlapRatio,
	}
}
