// Package config loads application configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all runtime configuration for the service.
type Config struct {
	Server   ServerConfig
	Storage  StorageConfig
	Database DatabaseConfig
	Auth     AuthConfig
}

// ServerConfig controls the HTTP/WebSocket listener.
type ServerConfig struct {
	Port           string
	AppEnv         string
	LogLevel       string
	UploadDir      string
	AllowedOrigins []string
}

// StorageConfig describes the object storage target. Bucket and ObjectKey are
// fixed for the lifetime of the process and never taken from client messages.
type StorageConfig struct {
	Driver       string // "s3" or "minio"
	Bucket       string
	ObjectKey    string
	AccessKey    string
	SecretKey    string
	Region       string
	Endpoint     string // empty means the provider default (AWS S3)
	UseSSL       bool
	CreateBucket bool
}

// DatabaseConfig enables upload history when URL is non-empty.
type DatabaseConfig struct {
	URL string
}

// AuthConfig enables token checks on the socket route when JWTSecret is non-empty.
type AuthConfig struct {
	JWTSecret string
}

// Load reads configuration from a .env file (if present) and environment variables,
// and makes sure the upload directory exists.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	cfg := &Config{
		Server: ServerConfig{
			Port:           v.GetString("PORT"),
			AppEnv:         v.GetString("APP_ENV"),
			LogLevel:       v.GetString("LOG_LEVEL"),
			UploadDir:      v.GetString("UPLOAD_DIR"),
			AllowedOrigins: splitList(v.GetString("WS_ALLOWED_ORIGINS")),
		},
		Storage: StorageConfig{
			Driver:       strings.ToLower(v.GetString("STORAGE_DRIVER")),
			Bucket:       v.GetString("STORAGE_BUCKET"),
			ObjectKey:    v.GetString("STORAGE_OBJECT_KEY"),
			AccessKey:    v.GetString("AWS_ACCESS_KEY"),
			SecretKey:    v.GetString("AWS_SECRET_KEY"),
			Region:       v.GetString("AWS_REGION"),
			Endpoint:     v.GetString("STORAGE_ENDPOINT"),
			UseSSL:       v.GetBool("STORAGE_USE_SSL"),
			CreateBucket: v.GetBool("STORAGE_CREATE_BUCKET"),
		},
		Database: DatabaseConfig{
			URL: v.GetString("DATABASE_URL"),
		},
		Auth: AuthConfig{
			JWTSecret: v.GetString("AUTH_JWT_SECRET"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(cfg.Server.UploadDir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir %q: %w", cfg.Server.UploadDir, err)
	}
	return cfg, nil
}

// IsProduction returns true when the app is running in production mode.
func (c *Config) IsProduction() bool {
	return c.Server.AppEnv == "production"
}

func (c *Config) validate() error {
	switch c.Storage.Driver {
	case "s3":
	case "minio":
		if c.Storage.Endpoint == "" {
			return fmt.Errorf("STORAGE_ENDPOINT is required for the minio driver")
		}
	default:
		return fmt.Errorf("unknown STORAGE_DRIVER %q", c.Storage.Driver)
	}
	if c.Storage.Bucket == "" || c.Storage.ObjectKey == "" {
		return fmt.Errorf("STORAGE_BUCKET and STORAGE_OBJECT_KEY must not be empty")
	}
	if c.Server.UploadDir == "" {
		return fmt.Errorf("UPLOAD_DIR must not be empty")
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "8080")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("UPLOAD_DIR", "uploads")
	v.SetDefault("WS_ALLOWED_ORIGINS", "*")

	v.SetDefault("STORAGE_DRIVER", "s3")
	v.SetDefault("STORAGE_BUCKET", "pooja-websocket-files")
	v.SetDefault("STORAGE_OBJECT_KEY", "parrot_sound.wav")
	v.SetDefault("AWS_ACCESS_KEY", "")
	v.SetDefault("AWS_SECRET_KEY", "")
	v.SetDefault("AWS_REGION", "us-east-1")
	v.SetDefault("STORAGE_ENDPOINT", "")
	v.SetDefault("STORAGE_USE_SSL", true)
	v.SetDefault("STORAGE_CREATE_BUCKET", false)

	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("AUTH_JWT_SECRET", "")
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
