package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port     string
	LogLevel string

	// Auth
	APIKey      string
	RequireAuth bool

	// Rendering and chunking
	RenderMode      string
	ChunkingEnabled bool
	MaxTokens       int
	OverlapRatio    float64

	// Worker pool
	WorkerCount  int
	MaxQueueSize int

	// Upload limits
	MaxUploadBytes int64

	// Job state
	JobTTL time.Duration

	// Sinks
	OutputDir      string
	MinIOEndpoint  string
	MinIOAccessKey string
	MinIOSecretKey string
	MinIOBucket    string
	MinIOUseSSL    bool
	KafkaBrokers   []string
	KafkaTopic     string
	IndexerURL     string
	IndexerAPIKey  string

	// Conversion cache
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	CacheTTL      time.Duration

	// Scheduled directory conversion
	WatchDir      string
	WatchSchedule string
	WatchInclude  []string
}

// Load reads the environment, after merging an optional .env file.
// Variables already set in the environment win over the file.
func Load() Config {
	_ = godotenv.Load()

	cfg := Config{
		Port:     envOr("PORT", "8090"),
		LogLevel: envOr("LOG_LEVEL", "info"),

		APIKey:      os.Getenv("CTIDOC_API_KEY"),
		RequireAuth: envBool("REQUIRE_AUTH", true),

		RenderMode:      envOr("RENDER_MODE", "comprehensive"),
		ChunkingEnabled: envBool("CHUNKING_ENABLED", true),
		MaxTokens:       envInt("MAX_TOKENS", 800),
		OverlapRatio:    envFloat("OVERLAP_RATIO", 0.22),

		WorkerCount:  envInt("WORKER_COUNT", 4),
		MaxQueueSize: envInt("MAX_QUEUE_SIZE", 100),

		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", 52428800), // 50MB

		JobTTL: envDuration("JOB_TTL", 1*time.Hour),

		OutputDir:      os.Getenv("OUTPUT_DIR"),
		MinIOEndpoint:  os.Getenv("MINIO_ENDPOINT"),
		MinIOAccessKey: os.Getenv("MINIO_ACCESS_KEY"),
		MinIOSecretKey: os.Getenv("MINIO_SECRET_KEY"),
		MinIOBucket:    os.Getenv("MINIO_BUCKET"),
		MinIOUseSSL:    envBool("MINIO_USE_SSL", false),
		KafkaBrokers:   envList("KAFKA_BROKERS"),
		KafkaTopic:     os.Getenv("KAFKA_TOPIC"),
		IndexerURL:     os.Getenv("INDEXER_URL"),
		IndexerAPIKey:  os.Getenv("INDEXER_API_KEY"),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       envInt("REDIS_DB", 0),
		CacheTTL:      envDuration("CACHE_TTL", 24*time.Hour),

		WatchDir:      os.Getenv("WATCH_DIR"),
		WatchSchedule: envOr("WATCH_SCHEDULE", "@every 15m"),
		WatchInclude:  envList("WATCH_INCLUDE"),
	}

	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 4
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = 100
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 52428800
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = 1 * time.Hour
	}

	return cfg
}

func (c Config) Validate() error {
	if c.RequireAuth && c.APIKey == "" {
		return fmt.Errorf("CTIDOC_API_KEY is required")
	}
	switch c.RenderMode {
	case "fields", "comprehensive", "mitre":
	default:
		return fmt.Errorf("RENDER_MODE must be fields, comprehensive or mitre, got %q", c.RenderMode)
	}
	if c.MaxTokens <= 0 {
		return fmt.Errorf("MAX_TOKENS must be positive, got %d", c.MaxTokens)
	}
	if c.OverlapRatio < 0 || c.OverlapRatio >= 1 {
		return fmt.Errorf("OVERLAP_RATIO must be in [0,1), got %g", c.OverlapRatio)
	}
	if c.MinIOEndpoint != "" && c.MinIOBucket == "" {
		return fmt.Errorf("MINIO_BUCKET is required when MINIO_ENDPOINT is set")
	}
	if len(c.KafkaBrokers) > 0 && c.KafkaTopic == "" {
		return fmt.Errorf("KAFKA_TOPIC is required when KAFKA_BROKERS is set")
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

// envList splits a comma-separated value, dropping blanks.
func envList(key string) []string {
	var out []string
	for _, s := range strings.Split(os.Getenv(key), ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
