package config

import (
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// RunMode selects real or in-process fake providers.
type RunMode string

const (
	RunModeReal RunMode = "real"
	RunModeFake RunMode = "fake"
)

type Config struct {
	Port  string `envconfig:"PORT" default:"8080"`
	Debug bool   `envconfig:"DEBUG" default:"false"`

	// RunMode "fake" swaps every external provider for a deterministic
	// in-process stand-in; only the database is still required.
	RunMode RunMode `envconfig:"RUN_MODE" default:"real"`

	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`

	SentryDSN string `envconfig:"SENTRY_DSN"`

	S3Endpoint  string `envconfig:"S3_ENDPOINT"`
	S3AccessKey string `envconfig:"S3_ACCESS_KEY_ID"`
	S3SecretKey string `envconfig:"S3_SECRET_ACCESS_KEY"`
	S3Bucket    string `envconfig:"S3_BUCKET" default:"ocrlab-files"`
	S3Region    string `envconfig:"S3_REGION" default:"us-east-1"`

	OpenAIAPIKey string `envconfig:"OPENAI_API_KEY"`

	DocIntelEndpoint string `envconfig:"DOCINTEL_ENDPOINT"`
	DocIntelAPIKey   string `envconfig:"DOCINTEL_API_KEY"`
	DocIntelModelID  string `envconfig:"DOCINTEL_MODEL_ID" default:"prebuilt-layout"`

	ChunkMaxSize  int `envconfig:"CHUNK_MAX_SIZE" default:"1500"`
	ChunkMinSize  int `envconfig:"CHUNK_MIN_SIZE" default:"100"`
	ChunkOverlap  int `envconfig:"CHUNK_OVERLAP" default:"200"`
	MaxUploadSize int `envconfig:"MAX_UPLOAD_SIZE" default:"52428800"`

	EmbedDelay time.Duration `envconfig:"EMBED_DELAY" default:"2s"`

	MaxRetryAttempts  int           `envconfig:"MAX_RETRY_ATTEMPTS" default:"3"`
	RetryMaxAge       time.Duration `envconfig:"RETRY_MAX_AGE" default:"24h"`
	RetryPollInterval time.Duration `envconfig:"RETRY_POLL_INTERVAL" default:"15m"`

	WorkerPollInterval time.Duration `envconfig:"WORKER_POLL_INTERVAL" default:"5s"`
	WorkerBatchSize    int           `envconfig:"WORKER_BATCH_SIZE" default:"5"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("OCRLAB", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	if cfg.RunMode != RunModeReal && cfg.RunMode != RunModeFake {
		return nil, fmt.Errorf("invalid run mode %q, expected real or fake", cfg.RunMode)
	}

	return &cfg, nil
}

func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	return cfg
}

func (c *Config) HasS3() bool {
	return c.S3Endpoint != "" && c.S3AccessKey != "" && c.S3SecretKey != ""
}

func (c *Config) HasOpenAI() bool {
	return c.OpenAIAPIKey != ""
}

func (c *Config) HasDocIntel() bool {
	return c.DocIntelEndpoint != "" && c.DocIntelAPIKey != ""
}
