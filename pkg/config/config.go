package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds application configuration
type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	Storage    StorageConfig
	Groq       GroqConfig
	Assembly   AssemblyAIConfig
	Classifier ClassifierConfig
	Audit      AuditConfig
	Pipeline   PipelineConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port            string
	Host            string
	Environment     string
	AllowedOrigins  []string
	ShutdownTimeout int
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Enabled     bool
	Host        string
	Port        string
	User        string
	Password    string
	Name        string
	SSLMode     string
	MaxConns    int
	MinConns    int
	AutoMigrate bool
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     string
	Password string
	DB       int
}

// StorageConfig holds storage configuration
type StorageConfig struct {
	Enabled         bool
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	BucketName      string
	UseSSL          bool
}

// GroqConfig configures the text generation backend.
type GroqConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
}

// AssemblyAIConfig configures speech-to-text.
type AssemblyAIConfig struct {
	APIKey       string
	BaseURL      string
	LanguageCode string
}

// ClassifierConfig points at the BERT inference server.
type ClassifierConfig struct {
	URL      string
	Timeout  time.Duration
	CacheTTL time.Duration
}

// AuditConfig selects where discarded utterances are written.
type AuditConfig struct {
	FilePath   string
	ToDatabase bool
	ToRedis    bool
	ToStorage  bool
}

// PipelineConfig holds the filtering and chunking knobs.
type PipelineConfig struct {
	MaxContextTokens     int           `envconfig:"MAX_CONTEXT_TOKENS" default:"32768"`
	SafetyMarginTokens   int           `envconfig:"SAFETY_MARGIN_TOKENS" default:"4000"`
	OverlapTokens        int           `envconfig:"OVERLAP_TOKENS" default:"200"`
	BatchSize            int           `envconfig:"BATCH_SIZE" default:"16"`
	MaxInputRunes        int           `envconfig:"MAX_INPUT_RUNES" default:"512"`
	RecordStages         bool          `envconfig:"RECORD_STAGES" default:"false"`
	PromptsFile          string        `envconfig:"PROMPTS_FILE"`
	GenerationMaxElapsed time.Duration `envconfig:"GENERATION_MAX_ELAPSED" default:"60s"`
}

// MaxInputTokens is the per-request budget left for transcript text.
func (p PipelineConfig) MaxInputTokens() int {
	return p.MaxContextTokens - p.SafetyMarginTokens
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if exists (ignore error if file doesn't exist)
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables or defaults")
	}

	config := &Config{
		Server: ServerConfig{
			Port:            getEnv("PORT", "8080"),
			Host:            getEnv("HOST", "0.0.0.0"),
			Environment:     getEnv("ENVIRONMENT", "development"),
			AllowedOrigins:  getEnvAsSlice("ALLOWED_ORIGINS", "http://localhost:3000"),
			ShutdownTimeout: getEnvAsInt("SHUTDOWN_TIMEOUT", 10),
		},
		Database: DatabaseConfig{
			Enabled:     getEnvAsBool("DB_ENABLED", false),
			Host:        getEnv("DB_HOST", "localhost"),
			Port:        getEnv("DB_PORT", "5432"),
			User:        getEnv("DB_USER", "postgres"),
			Password:    getEnv("DB_PASSWORD", "postgres"),
			Name:        getEnv("DB_NAME", "meeting_filter"),
			SSLMode:     getEnv("DB_SSLMODE", "disable"),
			MaxConns:    getEnvAsInt("DB_MAX_CONNS", 25),
			MinConns:    getEnvAsInt("DB_MIN_CONNS", 5),
			AutoMigrate: getEnvAsBool("DB_AUTO_MIGRATE", false),
		},
		Redis: RedisConfig{
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Storage: StorageConfig{
			Enabled:         getEnvAsBool("STORAGE_ENABLED", false),
			Endpoint:        getEnv("STORAGE_ENDPOINT", "localhost:9000"),
			AccessKeyID:     getEnv("STORAGE_ACCESS_KEY", "minioadmin"),
			SecretAccessKey: getEnv("STORAGE_SECRET_KEY", "minioadmin"),
			BucketName:      getEnv("STORAGE_BUCKET", "meeting-filter"),
			UseSSL:          getEnvAsBool("STORAGE_USE_SSL", false),
		},
		Groq: GroqConfig{
			APIKey:      getEnv("GROQ_API_KEY", ""),
			BaseURL:     getEnv("GROQ_API_URL", "https://api.groq.com"),
			Model:       getEnv("GROQ_MODEL", "llama-3.3-70b-versatile"),
			Temperature: getEnvAsFloat("GROQ_TEMPERATURE", 0.3),
			MaxTokens:   getEnvAsInt("GROQ_MAX_TOKENS", 4000),
			Timeout:     getEnvAsDuration("GROQ_TIMEOUT", "120s"),
		},
		Assembly: AssemblyAIConfig{
			APIKey:       getEnv("ASSEMBLYAI_API_KEY", ""),
			BaseURL:      getEnv("ASSEMBLYAI_API_URL", ""),
			LanguageCode: getEnv("ASSEMBLYAI_LANGUAGE_CODE", "ko"),
		},
		Classifier: ClassifierConfig{
			URL:      getEnv("CLASSIFIER_URL", "http://localhost:8001"),
			Timeout:  getEnvAsDuration("CLASSIFIER_TIMEOUT", "30s"),
			CacheTTL: getEnvAsDuration("CLASSIFIER_CACHE_TTL", "24h"),
		},
		Audit: AuditConfig{
			FilePath:   getEnv("AUDIT_FILE", "noise_log.jsonl"),
			ToDatabase: getEnvAsBool("AUDIT_TO_DATABASE", false),
			ToRedis:    getEnvAsBool("AUDIT_TO_REDIS", false),
			ToStorage:  getEnvAsBool("AUDIT_TO_STORAGE", false),
		},
	}

	if err := envconfig.Process("PIPELINE", &config.Pipeline); err != nil {
		return nil, fmt.Errorf("failed to read pipeline config: %w", err)
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	p := c.Pipeline
	if p.MaxInputTokens() <= 0 {
		return fmt.Errorf("PIPELINE_MAX_CONTEXT_TOKENS (%d) must exceed PIPELINE_SAFETY_MARGIN_TOKENS (%d)",
			p.MaxContextTokens, p.SafetyMarginTokens)
	}
	if p.OverlapTokens < 0 {
		return fmt.Errorf("PIPELINE_OVERLAP_TOKENS must not be negative")
	}
	if p.OverlapTokens >= p.MaxInputTokens() {
		return fmt.Errorf("PIPELINE_OVERLAP_TOKENS must be smaller than the input budget")
	}
	if p.BatchSize <= 0 {
		return fmt.Errorf("PIPELINE_BATCH_SIZE must be positive")
	}
	if p.MaxInputRunes <= 0 {
		return fmt.Errorf("PIPELINE_MAX_INPUT_RUNES must be positive")
	}
	if c.Audit.ToDatabase && !c.Database.Enabled {
		return fmt.Errorf("AUDIT_TO_DATABASE requires DB_ENABLED")
	}
	if c.Audit.ToRedis && !c.Redis.Enabled {
		return fmt.Errorf("AUDIT_TO_REDIS requires REDIS_ENABLED")
	}
	if (c.Audit.ToStorage || p.RecordStages) && !c.Storage.Enabled {
		return fmt.Errorf("AUDIT_TO_STORAGE and PIPELINE_RECORD_STAGES require STORAGE_ENABLED")
	}
	return nil
}

// GetDatabaseDSN returns the database connection string
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

// GetRedisAddr returns the Redis address
func (c *Config) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", c.Redis.Host, c.Redis.Port)
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := getEnv(key, defaultValue)
	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		duration, _ = time.ParseDuration(defaultValue)
	}
	return duration
}

func getEnvAsSlice(key string, defaultValue string) []string {
	var out []string
	for _, part := range strings.Split(getEnv(key, defaultValue), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
