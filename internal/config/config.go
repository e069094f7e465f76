package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Qdrant   QdrantConfig
	Gemini   GeminiConfig
	Storage  StorageConfig
	Worker   WorkerConfig
	Session  SessionConfig
	Broker   BrokerConfig
	Analysis AnalysisConfig
}

type ServerConfig struct {
	Port string
	Env  string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
}

type QdrantConfig struct {
	URL        string
	APIKey     string
	Collection string
	Enabled    bool
}

type GeminiConfig struct {
	APIKey     string
	Model      string
	EmbedModel string
}

type StorageConfig struct {
	Driver      string
	UploadPath  string
	MaxFileSize int64
	S3          S3Config
}

type S3Config struct {
	Bucket    string
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
}

type WorkerConfig struct {
	Concurrency       int
	RetryMaxAttempts  int
	RetryInitialDelay time.Duration
	PollInterval      time.Duration
}

type SessionConfig struct {
	TTL           time.Duration
	MaxEntries    int
	HistoryWindow int
}

type BrokerConfig struct {
	URL      string
	Exchange string
}

type AnalysisConfig struct {
	ResumeTextLimit     int
	JobDescriptionLimit int
}

const (
	StorageDriverLocal = "local"
	StorageDriverS3    = "s3"
)

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found. Using default values.")
	}

	return &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "3000"),
			Env:  getEnv("ENV", "development"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "jobbuddy"),
		},
		Qdrant: QdrantConfig{
			URL:        getEnv("QDRANT_URL", "http://localhost:6333"),
			APIKey:     getEnv("QDRANT_API_KEY", ""),
			Collection: getEnv("QDRANT_COLLECTION", "career_guides"),
			Enabled:    getEnvAsBool("QDRANT_ENABLED", true),
		},
		Gemini: GeminiConfig{
			APIKey:     getEnv("GEMINI_API_KEY", ""),
			Model:      getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
			EmbedModel: getEnv("GEMINI_EMBED_MODEL", "text-embedding-004"),
		},
		Storage: StorageConfig{
			Driver:      getEnv("STORAGE_DRIVER", StorageDriverLocal),
			UploadPath:  getEnv("UPLOAD_PATH", "./uploads"),
			MaxFileSize: getEnvAsInt64("MAX_FILE_SIZE", 10485760),
			S3: S3Config{
				Bucket:    getEnv("S3_BUCKET", ""),
				Endpoint:  getEnv("S3_ENDPOINT", ""),
				Region:    getEnv("S3_REGION", "auto"),
				AccessKey: getEnv("S3_ACCESS_KEY", ""),
				SecretKey: getEnv("S3_SECRET_KEY", ""),
			},
		},
		Worker: WorkerConfig{
			Concurrency:       getEnvAsInt("WORKER_CONCURRENCY", 3),
			RetryMaxAttempts:  getEnvAsInt("RETRY_MAX_ATTEMPTS", 3),
			RetryInitialDelay: getEnvAsDuration("RETRY_INITIAL_DELAY", "2s"),
			PollInterval:      getEnvAsDuration("WORKER_POLL_INTERVAL", "10s"),
		},
		Session: SessionConfig{
			TTL:           getEnvAsDuration("SESSION_TTL", "30m"),
			MaxEntries:    getEnvAsInt("SESSION_MAX_ENTRIES", 1000),
			HistoryWindow: getEnvAsInt("CHAT_HISTORY_WINDOW", 10),
		},
		Broker: BrokerConfig{
			URL:      getEnv("RABBITMQ_URL", ""),
			Exchange: getEnv("RABBITMQ_EXCHANGE", "analysis_updates"),
		},
		Analysis: AnalysisConfig{
			ResumeTextLimit:     getEnvAsInt("RESUME_TEXT_LIMIT", 4000),
			JobDescriptionLimit: getEnvAsInt("JOB_DESCRIPTION_LIMIT", 2000),
		},
	}
}

// Validate reports settings the server cannot start without.
func (c *Config) Validate() error {
	if c.Gemini.APIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY is required")
	}

	switch c.Storage.Driver {
	case StorageDriverLocal:
	case StorageDriverS3:
		if c.Storage.S3.Bucket == "" {
			return fmt.Errorf("S3_BUCKET is required when STORAGE_DRIVER=s3")
		}
	default:
		return fmt.Errorf("unknown STORAGE_DRIVER %q", c.Storage.Driver)
	}

	if c.Worker.Concurrency < 1 {
		return fmt.Errorf("WORKER_CONCURRENCY must be at least 1")
	}

	return nil
}

func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.DBName,
	)
}

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

func getEnvAsInt64(key string, defaultValue int64) int64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseInt(valueStr, 10, 64); err == nil {
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
	if duration, err := time.ParseDuration(valueStr); err == nil {
		return duration
	}
	duration, _ := time.ParseDuration(defaultValue)
	return duration
}
