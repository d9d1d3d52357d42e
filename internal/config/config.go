package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultHTTPAddr           = ":8080"
	defaultDatabaseURL        = "course.db"
	defaultJWTSecret          = "change-me-jwt-secret"
	defaultSigningSecret      = "change-me-storage-signing-secret"
	defaultLogLevel           = "info"
	defaultStorageBackend     = "local"
	defaultStorageLocalDir    = "./uploads"
	defaultStoragePublicBase  = "/files"
	defaultPresignTTL         = "1h"
	defaultMaxUploadSize      = "524288000" // 500 MB
	defaultCleanupConcurrency = "8"
	defaultS3Region           = "auto"
	defaultJWTTTL             = "24h"
)

const (
	BackendLocal  = "local"
	BackendMinIO  = "minio"
	BackendS3     = "s3"
	BackendMemory = "memory"
)

type Config struct {
	AppEnv             string
	HTTPAddr           string
	DatabaseURL        string
	JWTSecret          string
	JWTTTL             time.Duration
	CORSAllowedOrigins []string
	LogLevel           string
	LogFormat          string
	MaxUploadSize      int64
	CleanupConcurrency int
	Storage            StorageConfig
}

type StorageConfig struct {
	Backend       string
	LocalDir      string
	PublicBaseURL string
	SigningSecret string
	PresignTTL    time.Duration
	MinIO         MinIOConfig
	S3            S3Config
}

type MinIOConfig struct {
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	UseSSL          bool
	Bucket          string
}

type S3Config struct {
	Endpoint        string
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
	UsePathStyle    bool
}

// Load reads configuration from the environment. A .env file in the working
// directory is applied first when present; real environment variables win.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	appEnv := strings.TrimSpace(os.Getenv("APP_ENV"))
	if appEnv == "" {
		appEnv = strings.TrimSpace(os.Getenv("ENV"))
	}
	if appEnv == "" {
		appEnv = "dev"
	}
	cfg.AppEnv = strings.ToLower(appEnv)

	cfg.HTTPAddr = strings.TrimSpace(getEnv("HTTP_ADDR", defaultHTTPAddr))
	cfg.DatabaseURL = strings.TrimSpace(getEnv("DATABASE_URL", defaultDatabaseURL))
	cfg.JWTSecret = strings.TrimSpace(getEnv("JWT_SECRET", defaultJWTSecret))
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(getEnv("LOG_LEVEL", defaultLogLevel)))
	cfg.LogFormat = strings.ToLower(strings.TrimSpace(getEnv("LOG_FORMAT", defaultLogFormat(cfg.AppEnv))))

	var err error
	cfg.JWTTTL, err = parseDurationEnv("JWT_TTL", defaultJWTTTL)
	if err != nil {
		return nil, err
	}
	cfg.CORSAllowedOrigins = parseListEnv("CORS_ALLOWED_ORIGINS")

	cfg.MaxUploadSize, err = parseInt64Env("MAX_UPLOAD_SIZE", defaultMaxUploadSize)
	if err != nil {
		return nil, err
	}
	concurrency, err := parseInt64Env("CLEANUP_CONCURRENCY", defaultCleanupConcurrency)
	if err != nil {
		return nil, err
	}
	cfg.CleanupConcurrency = int(concurrency)

	st := &cfg.Storage
	st.Backend = strings.ToLower(strings.TrimSpace(getEnv("STORAGE_BACKEND", defaultStorageBackend)))
	st.LocalDir = strings.TrimSpace(getEnv("STORAGE_LOCAL_DIR", defaultStorageLocalDir))
	st.PublicBaseURL = strings.TrimRight(strings.TrimSpace(getEnv("STORAGE_PUBLIC_BASE_URL", defaultStoragePublicBase)), "/")
	st.SigningSecret = strings.TrimSpace(getEnv("STORAGE_SIGNING_SECRET", defaultSigningSecret))
	st.PresignTTL, err = parseDurationEnv("PRESIGN_TTL", defaultPresignTTL)
	if err != nil {
		return nil, err
	}

	st.MinIO = MinIOConfig{
		Endpoint:        strings.TrimSpace(os.Getenv("MINIO_ENDPOINT")),
		AccessKeyID:     strings.TrimSpace(os.Getenv("MINIO_ACCESS_KEY")),
		SecretAccessKey: strings.TrimSpace(os.Getenv("MINIO_SECRET_KEY")),
		UseSSL:          parseBoolEnv("MINIO_USE_SSL", "false"),
		Bucket:          strings.TrimSpace(os.Getenv("MINIO_BUCKET")),
	}
	st.S3 = S3Config{
		Endpoint:        strings.TrimSpace(os.Getenv("S3_ENDPOINT")),
		Region:          strings.TrimSpace(getEnv("S3_REGION", defaultS3Region)),
		AccessKeyID:     strings.TrimSpace(os.Getenv("S3_ACCESS_KEY_ID")),
		SecretAccessKey: strings.TrimSpace(os.Getenv("S3_SECRET_ACCESS_KEY")),
		Bucket:          strings.TrimSpace(os.Getenv("S3_BUCKET")),
		UsePathStyle:    parseBoolEnv("S3_USE_PATH_STYLE", "true"),
	}

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// IsProduction reports whether the app runs in a prod-like environment.
func (c *Config) IsProduction() bool { return isProdLike(c.AppEnv) }

func validateConfig(cfg *Config) error {
	if cfg.HTTPAddr == "" {
		return fmt.Errorf("HTTP_ADDR must not be empty")
	}
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL must not be empty")
	}
	if cfg.JWTTTL <= 0 {
		return fmt.Errorf("JWT_TTL must be > 0")
	}
	if cfg.MaxUploadSize <= 0 {
		return fmt.Errorf("MAX_UPLOAD_SIZE must be > 0")
	}
	if cfg.CleanupConcurrency <= 0 {
		return fmt.Errorf("CLEANUP_CONCURRENCY must be > 0")
	}
	switch cfg.LogLevel {
	case "trace", "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("LOG_LEVEL must be one of: trace, debug, info, warn, error")
	}
	if cfg.LogFormat != "json" && cfg.LogFormat != "text" {
		return fmt.Errorf("LOG_FORMAT must be json or text")
	}

	st := cfg.Storage
	if st.PresignTTL <= 0 {
		return fmt.Errorf("PRESIGN_TTL must be > 0")
	}
	switch st.Backend {
	case BackendLocal:
		if st.LocalDir == "" {
			return fmt.Errorf("STORAGE_LOCAL_DIR must not be empty for the local backend")
		}
	case BackendMinIO:
		if st.MinIO.Endpoint == "" || st.MinIO.Bucket == "" {
			return fmt.Errorf("MINIO_ENDPOINT and MINIO_BUCKET must be set for the minio backend")
		}
		if st.MinIO.AccessKeyID == "" || st.MinIO.SecretAccessKey == "" {
			return fmt.Errorf("MINIO_ACCESS_KEY and MINIO_SECRET_KEY must be set for the minio backend")
		}
	case BackendS3:
		if st.S3.Bucket == "" {
			return fmt.Errorf("S3_BUCKET must be set for the s3 backend")
		}
		if st.S3.AccessKeyID == "" || st.S3.SecretAccessKey == "" {
			return fmt.Errorf("S3_ACCESS_KEY_ID and S3_SECRET_ACCESS_KEY must be set for the s3 backend")
		}
	case BackendMemory:
		if isProdLike(cfg.AppEnv) {
			return fmt.Errorf("in prod/release STORAGE_BACKEND must not be memory")
		}
	default:
		return fmt.Errorf("STORAGE_BACKEND must be one of: local, minio, s3, memory")
	}

	if isProdLike(cfg.AppEnv) {
		if isEmptyOrDefault(cfg.JWTSecret, defaultJWTSecret) {
			return fmt.Errorf("in prod/release JWT_SECRET must be set and not default")
		}
		if st.Backend == BackendLocal && isEmptyOrDefault(st.SigningSecret, defaultSigningSecret) {
			return fmt.Errorf("in prod/release STORAGE_SIGNING_SECRET must be set and not default")
		}
	}

	return nil
}

func defaultLogFormat(env string) string {
	if isProdLike(env) {
		return "json"
	}
	return "text"
}

func isProdLike(env string) bool {
	env = strings.ToLower(strings.TrimSpace(env))
	return env == "prod" || env == "production" || env == "release"
}

func isEmptyOrDefault(v, def string) bool {
	trimmed := strings.TrimSpace(v)
	return trimmed == "" || trimmed == def
}

func parseDurationEnv(name, fallback string) (time.Duration, error) {
	value := strings.TrimSpace(getEnv(name, fallback))
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", name, value, err)
	}
	return d, nil
}

func parseInt64Env(name, fallback string) (int64, error) {
	value := strings.TrimSpace(getEnv(name, fallback))
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", name, value, err)
	}
	return n, nil
}

func parseListEnv(name string) []string {
	var out []string
	for _, item := range strings.Split(os.Getenv(name), ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func parseBoolEnv(name, fallback string) bool {
	value := strings.ToLower(strings.TrimSpace(getEnv(name, fallback)))
	return value == "1" || value == "true" || value == "yes" || value == "on"
}

func getEnv(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}
