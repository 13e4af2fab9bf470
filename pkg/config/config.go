package config

import (
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Pipeline strategies. The fused Gemini call is primary; AssemblyAI keeps
// transcription and structuring as two separate steps.
const (
	StrategyGemini     = "gemini"
	StrategyAssemblyAI = "assemblyai"
)

// Config holds application configuration
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Gemini   GeminiConfig
	Assembly AssemblyAIConfig
	Storage  StorageConfig
	Cache    CacheConfig
	Pipeline PipelineConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string   `envconfig:"HOST" default:"0.0.0.0"`
	Port            string   `envconfig:"PORT" default:"8080"`
	Environment     string   `envconfig:"ENVIRONMENT" default:"development"`
	AllowedOrigins  []string `envconfig:"ALLOWED_ORIGINS" default:"*"`
	ShutdownTimeout int      `envconfig:"SHUTDOWN_TIMEOUT" default:"10"`
}

// DatabaseConfig holds database configuration. The sqlite driver is the
// default; postgres is available for shared deployments.
type DatabaseConfig struct {
	Driver   string `envconfig:"DB_DRIVER" default:"sqlite"`
	Path     string `envconfig:"DB_PATH" default:"meetings.db"`
	Host     string `envconfig:"DB_HOST" default:"localhost"`
	Port     string `envconfig:"DB_PORT" default:"5432"`
	User     string `envconfig:"DB_USER" default:"postgres"`
	Password string `envconfig:"DB_PASSWORD" default:"postgres"`
	Name     string `envconfig:"DB_NAME" default:"meeting_tools"`
	SSLMode  string `envconfig:"DB_SSLMODE" default:"disable"`
	MaxConns int    `envconfig:"DB_MAX_CONNS" default:"25"`
	MinConns int    `envconfig:"DB_MIN_CONNS" default:"5"`
}

// GeminiConfig holds the language-understanding service configuration.
// An empty APIKey degrades structured analysis instead of failing ingestion.
type GeminiConfig struct {
	APIKey     string        `envconfig:"GEMINI_API_KEY"`
	BaseURL    string        `envconfig:"GEMINI_BASE_URL" default:"https://generativelanguage.googleapis.com"`
	TextModel  string        `envconfig:"GEMINI_TEXT_MODEL" default:"gemini-2.5-flash"`
	AudioModel string        `envconfig:"GEMINI_AUDIO_MODEL" default:"gemini-1.5-flash"`
	Timeout    time.Duration `envconfig:"GEMINI_TIMEOUT" default:"120s"`
}

// AssemblyAIConfig holds the standalone transcription backend configuration.
type AssemblyAIConfig struct {
	APIKey       string        `envconfig:"ASSEMBLYAI_API_KEY"`
	BaseURL      string        `envconfig:"ASSEMBLYAI_BASE_URL"`
	PollInterval time.Duration `envconfig:"ASSEMBLYAI_POLL_INTERVAL" default:"3s"`
}

// StorageConfig holds generated-document storage configuration
type StorageConfig struct {
	Backend         string `envconfig:"STORAGE_BACKEND" default:"local"`
	DownloadDir     string `envconfig:"STORAGE_DOWNLOAD_DIR" default:"downloads"`
	Endpoint        string `envconfig:"STORAGE_ENDPOINT" default:"localhost:9000"`
	AccessKeyID     string `envconfig:"STORAGE_ACCESS_KEY" default:"minioadmin"`
	SecretAccessKey string `envconfig:"STORAGE_SECRET_KEY" default:"minioadmin"`
	BucketName      string `envconfig:"STORAGE_BUCKET" default:"meeting-tools"`
	UseSSL          bool   `envconfig:"STORAGE_USE_SSL" default:"false"`
}

// CacheConfig holds the read-cache configuration for meeting details
type CacheConfig struct {
	Backend       string        `envconfig:"CACHE_BACKEND" default:"memory"`
	RedisAddr     string        `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	RedisPassword string        `envconfig:"REDIS_PASSWORD"`
	RedisDB       int           `envconfig:"REDIS_DB" default:"0"`
	TTL           time.Duration `envconfig:"CACHE_TTL" default:"5m"`
}

// PipelineConfig holds pipeline-run configuration
type PipelineConfig struct {
	Strategy  string `envconfig:"PIPELINE_STRATEGY" default:"gemini"`
	UploadDir string `envconfig:"PIPELINE_UPLOAD_DIR" default:"uploads"`
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if exists (ignore error if file doesn't exist)
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables or defaults")
	}

	var config Config
	if err := envconfig.Process("", &config); err != nil {
		return nil, fmt.Errorf("failed to process environment: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q (want sqlite or postgres)", c.Database.Driver)
	}
	switch c.Pipeline.Strategy {
	case StrategyGemini, StrategyAssemblyAI:
	default:
		return fmt.Errorf("unsupported PIPELINE_STRATEGY %q (want %s or %s)", c.Pipeline.Strategy, StrategyGemini, StrategyAssemblyAI)
	}
	switch c.Storage.Backend {
	case "local", "minio":
	default:
		return fmt.Errorf("unsupported STORAGE_BACKEND %q (want local or minio)", c.Storage.Backend)
	}
	switch c.Cache.Backend {
	case "memory", "redis":
	default:
		return fmt.Errorf("unsupported CACHE_BACKEND %q (want memory or redis)", c.Cache.Backend)
	}
	return nil
}

// GetDatabaseDSN returns the postgres connection string
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
		c.Database.SSLMode,
	)
}
