package config

import (
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Port  string `envconfig:"PORT" default:"8080"`
	Debug bool   `envconfig:"DEBUG" default:"false"`

	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`

	S3Endpoint  string `envconfig:"S3_ENDPOINT"`
	S3AccessKey string `envconfig:"S3_ACCESS_KEY_ID"`
	S3SecretKey string `envconfig:"S3_SECRET_ACCESS_KEY"`
	S3Bucket    string `envconfig:"S3_BUCKET" default:"paperbase-documents"`
	S3Region    string `envconfig:"S3_REGION" default:"us-east-1"`

	OpenAIAPIKey string `envconfig:"OPENAI_API_KEY"`

	// Chunking knobs. Defaults match the chunker's built-in configuration.
	ChunkTargetChars int `envconfig:"CHUNK_TARGET_CHARS" default:"800"`
	ChunkMinChars    int `envconfig:"CHUNK_MIN_CHARS" default:"200"`
	ChunkMaxChars    int `envconfig:"CHUNK_MAX_CHARS" default:"1200"`
	ChunkOverlap     int `envconfig:"CHUNK_OVERLAP" default:"100"`

	KeywordCount int `envconfig:"KEYWORD_COUNT" default:"10"`

	SearchLimit int `envconfig:"SEARCH_LIMIT" default:"3"`

	EmbedTimeout   time.Duration `envconfig:"EMBED_TIMEOUT" default:"10s"`
	ExtractTimeout time.Duration `envconfig:"EXTRACT_TIMEOUT" default:"30s"`
	EmbedFanOut    int           `envconfig:"EMBED_FAN_OUT" default:"4"`

	// BackfillInterval controls how often the embedding backfill worker
	// scans for chunks with missing embeddings. Zero disables the worker.
	BackfillInterval time.Duration `envconfig:"BACKFILL_INTERVAL" default:"60s"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("PAPERBASE", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
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
