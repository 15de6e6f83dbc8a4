package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

var ErrMissingEnvironmentVariables = errors.New("missing required environment variables")

// Config holds application configuration loaded from files and environment variables.
type Config struct {
	Env      string `mapstructure:"env"`       // current application environment (local, dev, prod etc)
	HTTPAddr string `mapstructure:"http_addr"` // listen address for the API server

	JWTSecret string `mapstructure:"-"` // HMAC secret for bearer tokens, loaded from environment

	DB     DB     `mapstructure:"database"`
	Redis  Redis  `mapstructure:"redis"`
	Gemini Gemini `mapstructure:"gemini"`
}

// DB contains database-related configuration parameters.
type DB struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"-"` // loaded from environment
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"ssl_mode"`
}

// DSN returns the postgres connection string.
func (db DB) DSN() string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		db.Host, db.User, db.Password, db.Name, db.Port, db.SSLMode,
	)
}

type Redis struct {
	Addr string `mapstructure:"addr"`
}

// Gemini configures the external generation service.
type Gemini struct {
	APIKey  string        `mapstructure:"-"` // loaded from environment
	BaseURL string        `mapstructure:"base_url"`
	Model   string        `mapstructure:"model"`
	Timeout time.Duration `mapstructure:"timeout"` // client-side cap on one generation call
}

// Load reads configuration from config files and environment variables.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")

	v.SetDefault("env", "local")
	v.SetDefault("http_addr", ":8080")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.name", "quizforge")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("gemini.base_url", "https://generativelanguage.googleapis.com")
	v.SetDefault("gemini.model", "gemini-2.0-flash")
	v.SetDefault("gemini.timeout", "60s")

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_")) // map nested keys to ENV style names
	v.AutomaticEnv()

	_ = v.BindEnv("jwt_secret", "JWT_SECRET")
	_ = v.BindEnv("db_password", "DB_PASSWORD")
	_ = v.BindEnv("gemini_api_key", "GEMINI_API_KEY")
	_ = v.BindEnv("database.host", "DB_HOST")
	_ = v.BindEnv("database.port", "DB_PORT")
	_ = v.BindEnv("database.user", "DB_USER")
	_ = v.BindEnv("database.name", "DB_NAME")
	_ = v.BindEnv("redis.addr", "REDIS_ADDR")
	_ = v.BindEnv("env", "APP_ENV")

	if err := v.ReadInConfig(); err != nil {
		var fileLookupErr viper.ConfigFileNotFoundError
		if !errors.As(err, &fileLookupErr) {
			return nil, fmt.Errorf("error loading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}

	// Load sensitive values from environment variables.
	cfg.JWTSecret = v.GetString("jwt_secret")
	cfg.DB.Password = v.GetString("db_password")
	cfg.Gemini.APIKey = v.GetString("gemini_api_key")

	if cfg.JWTSecret == "" || cfg.Gemini.APIKey == "" {
		return nil, ErrMissingEnvironmentVariables
	}

	return &cfg, nil
}
