package config

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Port  string `envconfig:"PORT" default:"8080"`
	Debug bool   `envconfig:"DEBUG" default:"false"`

	// DatabaseURL selects the pgvector-backed index; when empty the
	// server runs on the in-memory store.
	DatabaseURL string `envconfig:"DATABASE_URL"`

	OpenAIAPIKey        string `envconfig:"OPENAI_API_KEY"`
	EmbeddingDimensions int    `envconfig:"EMBEDDING_DIMENSIONS" default:"1536"`

	// Ticket metadata source and status-key derivation.
	MetadataCSVPath     string `envconfig:"METADATA_CSV"`
	MetadataIDColumn    string `envconfig:"METADATA_ID_COLUMN" default:"ticket_id"`
	MetadataStatusField string `envconfig:"METADATA_STATUS_FIELD" default:"status"`
	// StatusKeyMap is a JSON object mapping raw field values to status
	// keys, e.g. {"PAID_NOT_REFLECTED": "paid_not_reflected"}.
	StatusKeyMap string `envconfig:"STATUS_KEY_MAP"`

	// Confidence policy.
	HighThreshold    float64 `envconfig:"HIGH_THRESHOLD" default:"0.80"`
	MediumThreshold  float64 `envconfig:"MEDIUM_THRESHOLD" default:"0.60"`
	TopK             int     `envconfig:"TOP_K" default:"5"`
	DefaultStatusKey string  `envconfig:"DEFAULT_STATUS_KEY" default:"general"`
	SentinelResponse string  `envconfig:"SENTINEL_RESPONSE" default:"No relevant response found."`

	// PartitionOverrides is a JSON object remapping sanitized category
	// names, for stores whose identifier limits truncate long names.
	PartitionOverrides string `envconfig:"PARTITION_OVERRIDES"`

	// Knowledge-base sources for ingestion.
	KnowledgeDir string `envconfig:"KNOWLEDGE_DIR"`

	S3Endpoint  string `envconfig:"S3_ENDPOINT"`
	S3AccessKey string `envconfig:"S3_ACCESS_KEY_ID"`
	S3SecretKey string `envconfig:"S3_SECRET_ACCESS_KEY"`
	S3Bucket    string `envconfig:"S3_BUCKET" default:"resolvd-knowledge"`
	S3Region    string `envconfig:"S3_REGION" default:"us-east-1"`
	S3Prefix    string `envconfig:"S3_PREFIX" default:"kb/"`

	// External-call budget.
	CallTimeout       time.Duration `envconfig:"CALL_TIMEOUT" default:"10s"`
	RetryMaxAttempts  int           `envconfig:"RETRY_MAX_ATTEMPTS" default:"3"`
	RetryInitialDelay time.Duration `envconfig:"RETRY_INITIAL_DELAY" default:"100ms"`
	RetryMaxDelay     time.Duration `envconfig:"RETRY_MAX_DELAY" default:"2s"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("RESOLVD", &cfg); err != nil {
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

func (c *Config) HasDatabase() bool {
	return c.DatabaseURL != ""
}

func (c *Config) HasOpenAI() bool {
	return c.OpenAIAPIKey != ""
}

func (c *Config) HasS3() bool {
	return c.S3Endpoint != "" && c.S3AccessKey != "" && c.S3SecretKey != ""
}

// ParseStatusKeyMap decodes the STATUS_KEY_MAP JSON object. An empty
// setting yields an empty map; callers decide whether that is fatal.
func (c *Config) ParseStatusKeyMap() (map[string]string, error) {
	return parseJSONMap(c.StatusKeyMap, "STATUS_KEY_MAP")
}

// ParsePartitionOverrides decodes the PARTITION_OVERRIDES JSON object.
func (c *Config) ParsePartitionOverrides() (map[string]string, error) {
	return parseJSONMap(c.PartitionOverrides, "PARTITION_OVERRIDES")
}

func parseJSONMap(raw, name string) (map[string]string, error) {
	if raw == "" {
		return map[string]string{}, nil
	}
	m := make(map[string]string)
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", name, err)
	}
	return m, nil
}
