package config

import (
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
	"golang.org/x/crypto/bcrypt"
)

const (
	sslModeDisable = "disable"
	sslModeRequire = "require"

	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type (
	Config struct {
		Host       string `mapstructure:"HOST"`
		Port       string `mapstructure:"PORT"`
		GRPCPort   string `mapstructure:"GRPC_PORT"`
		DBDriver   string `mapstructure:"DB_DRIVER"`
		DBHost     string `mapstructure:"DB_HOST"`
		DBPort     string `mapstructure:"DB_PORT"`
		DBUser     string `mapstructure:"DB_USER"`
		DBPassword string `mapstructure:"DB_PASSWORD"`
		DBName     string `mapstructure:"DB_NAME"`
		DBSSLMode  string `mapstructure:"DB_SSL_MODE"`
		DBLogLevel string `mapstructure:"DB_LOG_LEVEL"`

		SecretKey  string        `mapstructure:"SECRET_KEY"`
		LinkTTL    time.Duration `mapstructure:"LINK_TTL"`
		BcryptCost int           `mapstructure:"BCRYPT_COST"`
		PageSize   int           `mapstructure:"PAGE_SIZE"`

		SMTPHost     string `mapstructure:"SMTP_HOST"`
		SMTPPort     int    `mapstructure:"SMTP_PORT"`
		SMTPUser     string `mapstructure:"SMTP_USER"`
		SMTPPassword string `mapstructure:"SMTP_PASSWORD"`
		SMTPFrom     string `mapstructure:"SMTP_FROM"`
		ClientURL    string `mapstructure:"CLIENT_URL"`

		LogDevelopment bool `mapstructure:"LOG_DEVELOPMENT"`
	}
)

var envs = []string{
	"HOST", "PORT", "GRPC_PORT",
	"DB_DRIVER", "DB_HOST", "DB_PORT", "DB_USER", "DB_PASSWORD", "DB_NAME", "DB_SSL_MODE", "DB_LOG_LEVEL",
	"SECRET_KEY", "LINK_TTL", "BCRYPT_COST", "PAGE_SIZE",
	"SMTP_HOST", "SMTP_PORT", "SMTP_USER", "SMTP_PASSWORD", "SMTP_FROM", "CLIENT_URL",
	"LOG_DEVELOPMENT",
}

func NewConfig() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("PLANNER")

	v.SetDefault("HOST", "0.0.0.0")
	v.SetDefault("PORT", "1323")
	v.SetDefault("GRPC_PORT", "9000")
	v.SetDefault("DB_DRIVER", DriverPostgres)
	v.SetDefault("DB_HOST", "0.0.0.0")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "user")
	v.SetDefault("DB_PASSWORD", "password")
	v.SetDefault("DB_NAME", "db")
	v.SetDefault("DB_SSL_MODE", sslModeDisable)
	v.SetDefault("DB_LOG_LEVEL", "warn")
	v.SetDefault("SECRET_KEY", "change-me")
	v.SetDefault("LINK_TTL", 72*time.Hour)
	v.SetDefault("BCRYPT_COST", 14)
	v.SetDefault("PAGE_SIZE", 10)
	v.SetDefault("SMTP_HOST", "localhost")
	v.SetDefault("SMTP_PORT", 587)
	v.SetDefault("SMTP_USER", "")
	v.SetDefault("SMTP_PASSWORD", "")
	v.SetDefault("SMTP_FROM", "noreply@planner.local")
	v.SetDefault("CLIENT_URL", "http://localhost:1323")
	v.SetDefault("LOG_DEVELOPMENT", false)

	for _, key := range envs {
		if err := v.BindEnv(key); err != nil {
			return nil, err
		}
	}

	cfg := Config{}
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if err := validate(&cfg); err != nil {
		return nil, errors.Wrap(err, "config validation failed")
	}

	return &cfg, nil
}

func validate(cfg *Config) error {
	if !oneOf(cfg.DBSSLMode, sslModeDisable, sslModeRequire) {
		return errors.New(fmt.Sprintf("DB SSL mode is invalid: %s", cfg.DBSSLMode))
	}
	if !oneOf(cfg.DBDriver, DriverPostgres, DriverSQLite) {
		return errors.New(fmt.Sprintf("DB driver is invalid: %s", cfg.DBDriver))
	}
	if !oneOf(cfg.DBLogLevel, "silent", "error", "warn", "info") {
		return errors.New(fmt.Sprintf("DB log level is invalid: %s", cfg.DBLogLevel))
	}
	if cfg.SecretKey == "" {
		return errors.New("secret key is empty")
	}
	if cfg.PageSize <= 0 {
		return errors.New(fmt.Sprintf("page size must be positive: %d", cfg.PageSize))
	}
	if cfg.BcryptCost < bcrypt.MinCost || cfg.BcryptCost > bcrypt.MaxCost {
		return errors.New(fmt.Sprintf("bcrypt cost is out of range: %d", cfg.BcryptCost))
	}
	if cfg.LinkTTL <= 0 {
		return errors.New("link ttl must be positive")
	}
	return nil
}

func oneOf(value string, valid ...string) bool {
	for _, v := range valid {
		if value == v {
			return true
		}
	}
	return false
}
