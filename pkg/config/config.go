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
	BaseURL   string

	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	CORS      CORSConfig
	Log       LogConfig
	SMTP      SMTPConfig
	Session   SessionConfig
	Uploads   UploadsConfig
	Documents DocumentsConfig
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

// SMTPConfig configures the outbound mail relay.
type SMTPConfig struct {
	Host      string
	Port      int
	User      string
	Password  string
	From      string
	FromName  string
	Timeout   time.Duration
	BCCSender bool
}

// SessionConfig governs the submission-session inactivity window.
type SessionConfig struct {
	Timeout time.Duration
}

// UploadsConfig controls the staging area and upload validation.
type UploadsConfig struct {
	StagingDir       string
	MaxFileSizeBytes int64
	SweepInterval    time.Duration
	SweepTTL         time.Duration
}

// DocumentsConfig controls document assembly and downloads.
type DocumentsConfig struct {
	TemplatePath        string
	OutputDir           string
	DownloadTokenSecret string
	DownloadTokenTTL    time.Duration
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
	cfg.BaseURL = v.GetString("BASE_URL")

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

	cfg.SMTP = SMTPConfig{
		Host:      v.GetString("SMTP_HOST"),
		Port:      v.GetInt("SMTP_PORT"),
		User:      v.GetString("SMTP_USER"),
		Password:  v.GetString("SMTP_PASSWORD"),
		From:      v.GetString("SMTP_FROM"),
		FromName:  v.GetString("SMTP_FROM_NAME"),
		Timeout:   parseDuration(v.GetString("SMTP_TIMEOUT"), 30*time.Second),
		BCCSender: v.GetBool("SMTP_BCC_SENDER"),
	}
	if cfg.SMTP.From == "" {
		cfg.SMTP.From = cfg.SMTP.User
	}

	cfg.Session = SessionConfig{
		Timeout: parseDuration(v.GetString("SESSION_TIMEOUT"), 30*time.Minute),
	}

	maxUploadSize := v.GetInt64("UPLOADS_MAX_FILE_SIZE")
	if maxUploadSize <= 0 {
		maxUploadSize = 10 * 1024 * 1024
	}
	cfg.Uploads = UploadsConfig{
		StagingDir:       v.GetString("UPLOADS_STAGING_DIR"),
		MaxFileSizeBytes: maxUploadSize,
		SweepInterval:    parseDuration(v.GetString("UPLOADS_SWEEP_INTERVAL"), time.Hour),
		SweepTTL:         parseDuration(v.GetString("UPLOADS_SWEEP_TTL"), 2*time.Hour),
	}

	cfg.Documents = DocumentsConfig{
		TemplatePath:        v.GetString("DOCUMENTS_TEMPLATE_PATH"),
		OutputDir:           v.GetString("DOCUMENTS_OUTPUT_DIR"),
		DownloadTokenSecret: v.GetString("DOCUMENTS_DOWNLOAD_SECRET"),
		DownloadTokenTTL:    parseDuration(v.GetString("DOCUMENTS_DOWNLOAD_TTL"), 30*time.Minute),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")
	v.SetDefault("BASE_URL", "http://localhost:8080")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "wpbr_intake")
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

	v.SetDefault("SMTP_HOST", "localhost")
	v.SetDefault("SMTP_PORT", 587)
	v.SetDefault("SMTP_USER", "")
	v.SetDefault("SMTP_PASSWORD", "")
	v.SetDefault("SMTP_FROM", "")
	v.SetDefault("SMTP_FROM_NAME", "WPBR Intake")
	v.SetDefault("SMTP_TIMEOUT", "30s")
	v.SetDefault("SMTP_BCC_SENDER", true)

	v.SetDefault("SESSION_TIMEOUT", "30m")

	v.SetDefault("UPLOADS_STAGING_DIR", "./uploads")
	v.SetDefault("UPLOADS_MAX_FILE_SIZE", 10*1024*1024)
	v.SetDefault("UPLOADS_SWEEP_INTERVAL", "1h")
	v.SetDefault("UPLOADS_SWEEP_TTL", "2h")

	v.SetDefault("DOCUMENTS_TEMPLATE_PATH", "./templates/aanvraagformulier.docx")
	v.SetDefault("DOCUMENTS_OUTPUT_DIR", "./documents")
	v.SetDefault("DOCUMENTS_DOWNLOAD_SECRET", "dev_documents_secret")
	v.SetDefault("DOCUMENTS_DOWNLOAD_TTL", "30m")
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
