package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	App       AppConfig
	Log       LogConfig
	Cache     CacheConfig
	Engine    EngineConfig
	Storage   StorageConfig
	OCR       OCRConfig
	Kafka     KafkaConfig
	Scheduler SchedulerConfig
	Drive     DriveConfig
}

type ServerConfig struct {
	Port           string
	Mode           string
	ReadTimeout    int
	WriteTimeout   int
	AllowedOrigins []string
}

type DatabaseConfig struct {
	// URL takes precedence over the discrete fields when set.
	URL            string
	Host           string
	Port           string
	User           string
	Password       string
	DBName         string
	SSLMode        string
	MaxConcurrency int64
}

// DSN returns a pgx-compatible connection string.
func (c DatabaseConfig) DSN() string {
	if c.URL != "" {
		return c.URL
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

type AppConfig struct {
	UploadDir string
	DataDir   string
	// DefaultUserID is used when a request carries no user_id.
	DefaultUserID int64
}

type LogConfig struct {
	Level  string
	Format string
}

type CacheConfig struct {
	Enabled            bool
	RedisURL           string
	RedisHost          string
	RedisPort          string
	RedisPassword      string
	RedisDB            int
	AnalysisTTLSeconds int
}

type StorageConfig struct {
	Enabled   bool
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	Region    string
}

type OCRConfig struct {
	Enabled bool
	APIKey  string
	Model   string
	Timeout time.Duration
}

type KafkaConfig struct {
	Enabled bool
	Brokers []string
	Topic   string
}

type SchedulerConfig struct {
	Enabled bool
	// LiquiditySpec is a standard five-field cron expression.
	LiquiditySpec string
	SweepWorkers  int
}

type DriveConfig struct {
	CredentialsJSON string
	FolderPath      string
	// SyncSpec schedules folder syncs; empty disables them.
	SyncSpec string
	Port     string
}

var (
	once     sync.Once
	instance *Config
)

func Load() *Config {
	once.Do(func() {
		// Load .env file if it exists
		_ = godotenv.Load()

		cfg, err := build(viper.GetViper())
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}

		ensureDir(cfg.App.UploadDir)
		ensureDir(cfg.App.DataDir)
		instance = cfg
	})

	return instance
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("SERVER_MODE", "debug")
	v.SetDefault("SERVER_READ_TIMEOUT", 15)
	v.SetDefault("SERVER_WRITE_TIMEOUT", 30)
	v.SetDefault("SERVER_ALLOWED_ORIGINS", []string{"*"})
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "spivot")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_MAX_CONCURRENCY", 10)
	v.SetDefault("APP_UPLOAD_DIR", "./data/uploads")
	v.SetDefault("APP_DATA_DIR", "./data/output")
	v.SetDefault("APP_DEFAULT_USER_ID", 1)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "console")
	v.SetDefault("CACHE_ENABLED", false)
	v.SetDefault("REDIS_URL", "")
	v.SetDefault("REDIS_HOST", "127.0.0.1")
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("CACHE_ANALYSIS_TTL_SECONDS", 300)
	v.SetDefault("ENGINE_POLICY_FILE", "")
	v.SetDefault("FORECAST_SEED", 0)
	v.SetDefault("STORAGE_ENABLED", false)
	v.SetDefault("MINIO_ENDPOINT", "localhost:9000")
	v.SetDefault("MINIO_ACCESS_KEY", "")
	v.SetDefault("MINIO_SECRET_KEY", "")
	v.SetDefault("MINIO_BUCKET", "spivot-documents")
	v.SetDefault("MINIO_USE_SSL", false)
	v.SetDefault("MINIO_REGION", "")
	v.SetDefault("GEMINI_API_KEY", "")
	v.SetDefault("GEMINI_MODEL", "gemini-2.0-flash")
	v.SetDefault("OCR_TIMEOUT", "60s")
	v.SetDefault("KAFKA_BROKERS", []string{})
	v.SetDefault("KAFKA_TOPIC", "spivot.agent-events")
	v.SetDefault("SCHEDULER_ENABLED", true)
	v.SetDefault("SCHEDULER_LIQUIDITY_SPEC", "0 6 * * *")
	v.SetDefault("SCHEDULER_SWEEP_WORKERS", 4)
	v.SetDefault("GOOGLE_DRIVE_CREDENTIALS_JSON", "")
	v.SetDefault("GOOGLE_DRIVE_FOLDER_PATH", "")
	v.SetDefault("GOOGLE_DRIVE_SYNC_SPEC", "*/30 * * * *")
	v.SetDefault("INGEST_PORT", "8081")
}

func build(v *viper.Viper) (*Config, error) {
	setDefaults(v)

	// Read from environment variables
	v.AutomaticEnv()

	engine, err := loadEngine(v)
	if err != nil {
		return nil, err
	}

	brokers := splitList(v.GetStringSlice("KAFKA_BROKERS"))

	return &Config{
		Server: ServerConfig{
			Port:           v.GetString("SERVER_PORT"),
			Mode:           v.GetString("SERVER_MODE"),
			ReadTimeout:    v.GetInt("SERVER_READ_TIMEOUT"),
			WriteTimeout:   v.GetInt("SERVER_WRITE_TIMEOUT"),
			AllowedOrigins: v.GetStringSlice("SERVER_ALLOWED_ORIGINS"),
		},
		Database: DatabaseConfig{
			URL:            v.GetString("DATABASE_URL"),
			Host:           v.GetString("DB_HOST"),
			Port:           v.GetString("DB_PORT"),
			User:           v.GetString("DB_USER"),
			Password:       v.GetString("DB_PASSWORD"),
			DBName:         v.GetString("DB_NAME"),
			SSLMode:        v.GetString("DB_SSLMODE"),
			MaxConcurrency: v.GetInt64("DB_MAX_CONCURRENCY"),
		},
		App: AppConfig{
			UploadDir:     v.GetString("APP_UPLOAD_DIR"),
			DataDir:       v.GetString("APP_DATA_DIR"),
			DefaultUserID: v.GetInt64("APP_DEFAULT_USER_ID"),
		},
		Log: LogConfig{
			Level:  v.GetString("LOG_LEVEL"),
			Format: v.GetString("LOG_FORMAT"),
		},
		Cache: CacheConfig{
			Enabled:            v.GetBool("CACHE_ENABLED"),
			RedisURL:           v.GetString("REDIS_URL"),
			RedisHost:          v.GetString("REDIS_HOST"),
			RedisPort:          v.GetString("REDIS_PORT"),
			RedisPassword:      v.GetString("REDIS_PASSWORD"),
			RedisDB:            v.GetInt("REDIS_DB"),
			AnalysisTTLSeconds: v.GetInt("CACHE_ANALYSIS_TTL_SECONDS"),
		},
		Engine: engine,
		Storage: StorageConfig{
			Enabled:   v.GetBool("STORAGE_ENABLED"),
			Endpoint:  v.GetString("MINIO_ENDPOINT"),
			AccessKey: v.GetString("MINIO_ACCESS_KEY"),
			SecretKey: v.GetString("MINIO_SECRET_KEY"),
			Bucket:    v.GetString("MINIO_BUCKET"),
			UseSSL:    v.GetBool("MINIO_USE_SSL"),
			Region:    v.GetString("MINIO_REGION"),
		},
		OCR: OCRConfig{
			Enabled: v.GetString("GEMINI_API_KEY") != "",
			APIKey:  v.GetString("GEMINI_API_KEY"),
			Model:   v.GetString("GEMINI_MODEL"),
			Timeout: v.GetDuration("OCR_TIMEOUT"),
		},
		Kafka: KafkaConfig{
			Enabled: len(brokers) > 0,
			Brokers: brokers,
			Topic:   v.GetString("KAFKA_TOPIC"),
		},
		Scheduler: SchedulerConfig{
			Enabled:       v.GetBool("SCHEDULER_ENABLED"),
			LiquiditySpec: v.GetString("SCHEDULER_LIQUIDITY_SPEC"),
			SweepWorkers:  v.GetInt("SCHEDULER_SWEEP_WORKERS"),
		},
		Drive: DriveConfig{
			CredentialsJSON: v.GetString("GOOGLE_DRIVE_CREDENTIALS_JSON"),
			FolderPath:      v.GetString("GOOGLE_DRIVE_FOLDER_PATH"),
			SyncSpec:        v.GetString("GOOGLE_DRIVE_SYNC_SPEC"),
			Port:            v.GetString("INGEST_PORT"),
		},
	}, nil
}

// splitList accepts both repeated values and a single comma-separated value.
func splitList(values []string) []string {
	var out []string
	for _, value := range values {
		for _, part := range strings.Split(value, ",") {
			if trimmed := strings.TrimSpace(part); trimmed != "" {
				out = append(out, trimmed)
			}
		}
	}
	return out
}

func ensureDir(dir string) {
	if dir == "" {
		return
	}
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err := os.MkdirAll(dir, 0755); err != nil {
			log.Fatalf("Failed to create directory %s: %v", dir, err)
		}
	}
}
