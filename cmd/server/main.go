package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/dgallion1/ctidoc/internal/api"
	"github.com/dgallion1/ctidoc/internal/cache"
	"github.com/dgallion1/ctidoc/internal/chunker"
	"github.com/dgallion1/ctidoc/internal/config"
	"github.com/dgallion1/ctidoc/internal/convert"
	"github.com/dgallion1/ctidoc/internal/metrics"
	"github.com/dgallion1/ctidoc/internal/pipeline"
	"github.com/dgallion1/ctidoc/internal/render"
	"github.com/dgallion1/ctidoc/internal/sink"
	"github.com/robfig/cron/v3"
)

const defaultOutputDir = "output"

func main() {
	cfg := config.Load()
	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: parseLevel(cfg.LogLevel)}))

	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize sinks and cache.
	out, err := buildSinks(ctx, cfg, log)
	if err != nil {
		log.Error("sink setup failed", "error", err)
		os.Exit(1)
	}
	convCache := buildCache(ctx, cfg, log)

	// Initialize pipeline.
	mode, _ := render.ParseMode(cfg.RenderMode)
	opts := convert.Options{
		Mode:     mode,
		Chunking: cfg.ChunkingEnabled,
		Chunk:    chunker.Config{MaxTokens: cfg.MaxTokens, OverlapRatio: cfg.OverlapRatio},
	}
	m := metrics.New()
	worker := pipeline.NewWorker(out, convCache, m, pipeline.NewConversionStats(time.Hour), log, opts)
	orch := pipeline.NewOrchestrator(worker, cfg.WorkerCount, cfg.MaxQueueSize, cfg.JobTTL, log)
	orch.Start(ctx)

	scheduler := startWatch(cfg, orch, log)

	// Initialize HTTP server.
	srv := api.NewServer(orch, m, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		if scheduler != nil {
			<-scheduler.Stop().Done()
		}
		orch.Stop()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)

		out.Close()
		convCache.Close()
	}()

	log.Info("starting ctidoc", "port", cfg.Port, "mode", opts.Mode, "chunking", opts.Chunking, "sinks", out.Len())
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}

// buildSinks opens every configured destination. With none configured,
// documents go to ./output.
func buildSinks(ctx context.Context, cfg config.Config, log *slog.Logger) (*sink.Multi, error) {
	var sinks []sink.Sink

	dir := cfg.OutputDir
	if dir == "" && cfg.MinIOEndpoint == "" && len(cfg.KafkaBrokers) == 0 && cfg.IndexerURL == "" {
		log.Warn("no sink configured, writing to local directory", "dir", defaultOutputDir)
		dir = defaultOutputDir
	}
	if dir != "" {
		fs, err := sink.NewFS(dir)
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, fs)
	}

	if cfg.MinIOEndpoint != "" {
		mc, err := sink.NewMinIO(ctx, sink.MinIOConfig{
			Endpoint:  cfg.MinIOEndpoint,
			AccessKey: cfg.MinIOAccessKey,
			SecretKey: cfg.MinIOSecretKey,
			Bucket:    cfg.MinIOBucket,
			UseSSL:    cfg.MinIOUseSSL,
		})
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, mc)
	}

	if len(cfg.KafkaBrokers) > 0 {
		sinks = append(sinks, sink.NewKafka(cfg.KafkaBrokers, cfg.KafkaTopic))
	}

	if cfg.IndexerURL != "" {
		sinks = append(sinks, sink.NewIndexer(cfg.IndexerURL, cfg.IndexerAPIKey))
	}

	return sink.NewMulti(sinks...), nil
}

// buildCache prefers Redis and falls back to an in-process cache when
// Redis is unset or unreachable.
func buildCache(ctx context.Context, cfg config.Config, log *slog.Logger) cache.Cache {
	if cfg.RedisAddr != "" {
		rc, err := cache.NewRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.CacheTTL)
		if err == nil {
			return rc
		}
		log.Warn("redis unavailable, using in-memory cache", "addr", cfg.RedisAddr, "error", err)
	}
	return cache.NewMemory(cfg.CacheTTL)
}

// startWatch schedules conversion of WATCH_DIR. Unchanged files come back
// as cache hits, so rescans are cheap.
func startWatch(cfg config.Config, orch *pipeline.Orchestrator, log *slog.Logger) *cron.Cron {
	if cfg.WatchDir == "" {
		return nil
	}
	scheduler := cron.New()
	_, err := scheduler.AddFunc(cfg.WatchSchedule, func() {
		log.Info("running scheduled directory conversion", "dir", cfg.WatchDir)
		queued, err := orch.SubmitDir(cfg.WatchDir, cfg.WatchInclude)
		if err != nil {
			log.Error("scheduled conversion failed", "dir", cfg.WatchDir, "error", err)
			return
		}
		log.Info("scheduled conversion queued", "files", queued)
	})
	if err != nil {
		log.Error("invalid WATCH_SCHEDULE, directory watch disabled", "schedule", cfg.WatchSchedule, "error", err)
		return nil
	}
	scheduler.Start()
	return scheduler
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}
