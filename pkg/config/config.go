package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database      DatabaseConfig
	Redis         RedisConfig
	JWT           JWTConfig
	CORS          CORSConfig
	Log           LogConfig
	Documents     DocumentsConfig
	Verification  VerificationConfig
	Notifications NotificationsConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type JWTConfig struct {
	Secret string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// DocumentsConfig governs issuance behaviour and artifact storage.
type DocumentsConfig struct {
	StorageDir      string
	Bucket          string
	OfferValidity   time.Duration
	UploadTimeout   time.Duration
	PersistTimeout  time.Duration
	SignedURLSecret string
	SignedURLTTL    time.Duration
	PublicArtifacts bool
	PublicBaseURL   string
}

// VerificationConfig tunes the public verification endpoint.
type VerificationConfig struct {
	CacheTTL        time.Duration
	RateLimit       int
	RateLimitWindow time.Duration
}

// NotificationsConfig configures outbound email delivery.
type NotificationsConfig struct {
	Enabled           bool
	SendGridAPIKey    string
	FromEmail         string
	FromName          string
	WorkerConcurrency int
	WorkerRetries     int
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.JWT = JWTConfig{
		Secret: v.GetString("JWT_SECRET"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Documents = DocumentsConfig{
		StorageDir:      v.GetString("DOCUMENTS_STORAGE_DIR"),
		Bucket:          v.GetString("DOCUMENTS_BUCKET"),
		OfferValidity:   parseDuration(v.GetString("DOCUMENTS_OFFER_VALIDITY"), 90*24*time.Hour),
		UploadTimeout:   parseDuration(v.GetString("DOCUMENTS_UPLOAD_TIMEOUT"), 15*time.Second),
		PersistTimeout:  parseDuration(v.GetString("DOCUMENTS_PERSIST_TIMEOUT"), 5*time.Second),
		SignedURLSecret: v.GetString("DOCUMENTS_SIGNED_URL_SECRET"),
		SignedURLTTL:    parseDuration(v.GetString("DOCUMENTS_SIGNED_URL_TTL"), 24*time.Hour),
		PublicArtifacts: v.GetBool("DOCUMENTS_PUBLIC_ARTIFACTS"),
		PublicBaseURL:   v.GetString("DOCUMENTS_PUBLIC_BASE_URL"),
	}

	cfg.Verification = VerificationConfig{
		CacheTTL:        parseDuration(v.GetString("VERIFY_CACHE_TTL"), time.Minute),
		RateLimit:       v.GetInt("VERIFY_RATE_LIMIT"),
		RateLimitWindow: parseDuration(v.GetString("VERIFY_RATE_LIMIT_WINDOW"), time.Minute),
	}

	cfg.Notifications = NotificationsConfig{
		Enabled:           v.GetBool("ENABLE_NOTIFICATIONS"),
		SendGridAPIKey:    v.GetString("SENDGRID_API_KEY"),
		FromEmail:         v.GetString("NOTIFICATIONS_FROM_EMAIL"),
		FromName:          v.GetString("NOTIFICATIONS_FROM_NAME"),
		WorkerConcurrency: v.GetInt("NOTIFICATIONS_WORKER_CONCURRENCY"),
		WorkerRetries:     v.GetInt("NOTIFICATIONS_WORKER_RETRIES"),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "internship_docs")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "dev_secret")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("DOCUMENTS_STORAGE_DIR", "./data")
	v.SetDefault("DOCUMENTS_BUCKET", "documents")
	v.SetDefault("DOCUMENTS_OFFER_VALIDITY", "2160h")
	v.SetDefault("DOCUMENTS_UPLOAD_TIMEOUT", "15s")
	v.SetDefault("DOCUMENTS_PERSIST_TIMEOUT", "5s")
	v.SetDefault("DOCUMENTS_SIGNED_URL_SECRET", "dev_documents_secret")
	v.SetDefault("DOCUMENTS_SIGNED_URL_TTL", "24h")
	v.SetDefault("DOCUMENTS_PUBLIC_ARTIFACTS", false)
	v.SetDefault("DOCUMENTS_PUBLIC_BASE_URL", "")

	v.SetDefault("VERIFY_CACHE_TTL", "1m")
	v.SetDefault("VERIFY_RATE_LIMIT", 30)
	v.SetDefault("VERIFY_RATE_LIMIT_WINDOW", "1m")

	v.SetDefault("ENABLE_NOTIFICATIONS", false)
	v.SetDefault("SENDGRID_API_KEY", "")
	v.SetDefault("NOTIFICATIONS_FROM_EMAIL", "no-reply@example.com")
	v.SetDefault("NOTIFICATIONS_FROM_NAME", "Internship Portal")
	v.SetDefault("NOTIFICATIONS_WORKER_CONCURRENCY", 1)
	v.SetDefault("NOTIFICATIONS_WORKER_RETRIES", 3)
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
