package config

import (
	"net/url"
	"strings"

	"toy-catalog/internal/logger"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const (
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"

	ImageStoreLocal = "local"
	ImageStoreS3    = "s3"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Mongo     MongoConfig
	Redis     RedisConfig
	RateLimit RateLimitConfig
	Uploads   UploadsConfig
	S3        S3Config
}

type ServerConfig struct {
	Port           string
	Env            string
	LogLevel       string
	AllowedOrigins []string
}

// DatabaseConfig selects the persistence backend. Host..Schema only apply to postgres.
type DatabaseConfig struct {
	Driver   string
	Host     string
	Port     string
	User     string
	Password string
	Database string
	Schema   string
}

type MongoConfig struct {
	URI      string
	Database string
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     string
	Password string
	DB       int
}

type RateLimitConfig struct {
	Requests      int
	WindowSeconds int
}

// UploadsConfig holds the image store and upload boundary settings.
type UploadsConfig struct {
	Store       string
	Dir         string
	PublicPath  string
	MaxFileSize int64 // in bytes
	MaxFiles    int
}

type S3Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

func (c *Config) IsProduction() bool {
	return c.Server.Env == "production"
}

// ImagePublicPath is the prefix image references are built from. The local
// store serves UPLOADS_PATH itself. Objects in S3 live at the bucket URL, so
// unless UPLOADS_PATH is already an absolute URL (a CDN, say) the prefix is
// derived from the endpoint and bucket.
func (c *Config) ImagePublicPath() string {
	if c.Uploads.Store != ImageStoreS3 {
		return c.Uploads.PublicPath
	}
	if u, err := url.Parse(c.Uploads.PublicPath); err == nil && u.Scheme != "" && u.Host != "" {
		return c.Uploads.PublicPath
	}

	scheme := "http"
	if c.S3.UseSSL {
		scheme = "https"
	}
	return (&url.URL{Scheme: scheme, Host: c.S3.Endpoint, Path: "/" + c.S3.Bucket}).String()
}

func Load() *Config {
	// A missing .env is fine, the process environment still applies.
	if err := godotenv.Load(); err != nil {
		logger.NewWithDefaults().Warn("Could not load .env file", zap.Error(err))
	}

	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	return fromViper(v)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("SERVER_ENV", "development")
	v.SetDefault("LOG_LEVEL", "")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "*")
	v.SetDefault("DB_DRIVER", DriverMongo)
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_SCHEMA", "public")
	v.SetDefault("MONGO_URI", "mongodb://localhost:27017")
	v.SetDefault("MONGO_DATABASE", "toys")
	v.SetDefault("REDIS_ENABLED", false)
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("RATE_LIMIT_REQUESTS", 100)
	v.SetDefault("RATE_LIMIT_WINDOW_SECONDS", 60)
	v.SetDefault("IMAGE_STORE", ImageStoreLocal)
	v.SetDefault("UPLOADS_DIR", "./uploads/toys")
	v.SetDefault("UPLOADS_PATH", "/uploads/toys")
	v.SetDefault("MAX_FILE_SIZE", 5*1024*1024)
	v.SetDefault("MAX_FILES", 5)
	v.SetDefault("S3_BUCKET", "toys")
	v.SetDefault("S3_USE_SSL", false)
}

func fromViper(v *viper.Viper) *Config {
	cfg := &Config{
		Server: ServerConfig{
			Port:           v.GetString("SERVER_PORT"),
			Env:            v.GetString("SERVER_ENV"),
			LogLevel:       v.GetString("LOG_LEVEL"),
			AllowedOrigins: splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
		},
		Database: DatabaseConfig{
			Driver:   strings.ToLower(v.GetString("DB_DRIVER")),
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetString("DB_PORT"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			Database: v.GetString("DB_DATABASE"),
			Schema:   v.GetString("DB_SCHEMA"),
		},
		Mongo: MongoConfig{
			URI:      v.GetString("MONGO_URI"),
			Database: v.GetString("MONGO_DATABASE"),
		},
		Redis: RedisConfig{
			Enabled:  v.GetBool("REDIS_ENABLED"),
			Host:     v.GetString("REDIS_HOST"),
			Port:     v.GetString("REDIS_PORT"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		RateLimit: RateLimitConfig{
			Requests:      v.GetInt("RATE_LIMIT_REQUESTS"),
			WindowSeconds: v.GetInt("RATE_LIMIT_WINDOW_SECONDS"),
		},
		Uploads: UploadsConfig{
			Store:       strings.ToLower(v.GetString("IMAGE_STORE")),
			Dir:         v.GetString("UPLOADS_DIR"),
			PublicPath:  strings.TrimRight(v.GetString("UPLOADS_PATH"), "/"),
			MaxFileSize: v.GetInt64("MAX_FILE_SIZE"),
			MaxFiles:    v.GetInt("MAX_FILES"),
		},
		S3: S3Config{
			Endpoint:  v.GetString("S3_ENDPOINT"),
			AccessKey: v.GetString("S3_ACCESS_KEY"),
			SecretKey: v.GetString("S3_SECRET_KEY"),
			Bucket:    v.GetString("S3_BUCKET"),
			UseSSL:    v.GetBool("S3_USE_SSL"),
		},
	}

	// Zero or negative limits fall back to the defaults instead of disabling uploads.
	if cfg.Uploads.MaxFileSize <= 0 {
		cfg.Uploads.MaxFileSize = 5 * 1024 * 1024
	}
	if cfg.Uploads.MaxFiles <= 0 {
		cfg.Uploads.MaxFiles = 5
	}

	return cfg
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
