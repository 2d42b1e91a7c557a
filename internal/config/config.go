package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

var (
	ErrMissingEnvironmentVariables = errors.New("missing required environment variables")
	ErrInvalidConfig               = errors.New("invalid configuration")
)

// Question generator providers.
const (
	ProviderAPI    = "api"
	ProviderOpenAI = "openai"
)

// Result storage backends.
const (
	BackendAPI      = "api"
	BackendPostgres = "postgres"
)

// Identity storage backends.
const (
	IdentityMemory = "memory"
	IdentityRedis  = "redis"
)

// Config holds application configuration loaded from files and environment variables.
type Config struct {
	Env              string    `mapstructure:"env"`       // current application environment (local, dev, production etc)
	LogLevel         string    `mapstructure:"log_level"` // optional zap level override (debug, info, warn, error)
	TelegramAPIToken string    `mapstructure:"-"`         // Telegram API token loaded from environment
	API              API       `mapstructure:"api"`
	Quiz             Quiz      `mapstructure:"quiz"`
	Generator        Generator `mapstructure:"generator"`
	Results          Results   `mapstructure:"results"`
	Identity         Identity  `mapstructure:"identity"`
	DB               DB        `mapstructure:"database"`
}

// API describes the quiz backend (question generation, results, profiles and auth).
type API struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// Quiz contains quiz session limits.
type Quiz struct {
	DefaultQuestions int           `mapstructure:"default_questions"`
	MaxQuestions     int           `mapstructure:"max_questions"`
	SessionTTL       time.Duration `mapstructure:"session_ttl"` // idle sessions older than this are evicted
	SweepSpec        string        `mapstructure:"sweep_spec"`  // cron spec for the idle session sweep
}

// Generator selects where questions come from.
type Generator struct {
	Provider     string `mapstructure:"provider"` // "api" or "openai"
	Model        string `mapstructure:"model"`
	OpenAIAPIKey string `mapstructure:"-"`
}

// Results selects where finished quizzes are stored.
type Results struct {
	Backend      string `mapstructure:"backend"` // "api" or "postgres"
	HistoryLimit int    `mapstructure:"history_limit"`
}

// Identity selects where logged-in users are kept.
type Identity struct {
	Backend  string `mapstructure:"backend"` // "memory" or "redis"
	RedisURL string `mapstructure:"-"`
}

// DB contains database-related configuration parameters.
type DB struct {
	URL             string        `mapstructure:"-"`                 // database connection string loaded from environment
	MaxConnections  int           `mapstructure:"max_connections"`   // maximum number of open connections in the pool
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"` // maximum lifetime of a single connection
}

// DSN returns the database connection string if it is configured.
func (db DB) DSN() (string, error) {
	if db.URL == "" {
		return "", ErrMissingEnvironmentVariables
	}
	return db.URL, nil
}

// Load reads configuration from .env, config files and environment variables.
func Load() (*Config, error) {
	// Local runs keep secrets in .env; in containers the file is usually absent.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")

	v.SetDefault("env", "local")
	v.SetDefault("log_level", "")
	v.SetDefault("api.base_url", "")
	v.SetDefault("api.timeout", "30s")
	v.SetDefault("quiz.default_questions", 5)
	v.SetDefault("quiz.max_questions", 20)
	v.SetDefault("quiz.session_ttl", "30m")
	v.SetDefault("quiz.sweep_spec", "@every 5m")
	v.SetDefault("generator.provider", ProviderAPI)
	v.SetDefault("generator.model", "gpt-4o")
	v.SetDefault("results.backend", BackendAPI)
	v.SetDefault("results.history_limit", 20)
	v.SetDefault("identity.backend", IdentityMemory)
	v.SetDefault("database.max_connections", 20)
	v.SetDefault("database.max_conn_lifetime", "30s")

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_")) // map nested keys to ENV style names
	v.AutomaticEnv()

	_ = v.BindEnv("telegram_api_token", "TELEGRAM_API_TOKEN")
	_ = v.BindEnv("openai_api_key", "OPENAI_API_KEY")
	_ = v.BindEnv("database_url", "DATABASE_URL")
	_ = v.BindEnv("redis_url", "REDIS_URL")
	_ = v.BindEnv("api.base_url", "QUIZ_API_URL", "API_BASE_URL")
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

	cfg.TelegramAPIToken = v.GetString("telegram_api_token")
	cfg.Generator.OpenAIAPIKey = v.GetString("openai_api_key")
	cfg.DB.URL = v.GetString("database_url")
	cfg.Identity.RedisURL = v.GetString("redis_url")

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	if c.TelegramAPIToken == "" {
		return fmt.Errorf("%w: TELEGRAM_API_TOKEN", ErrMissingEnvironmentVariables)
	}
	if c.API.BaseURL == "" {
		return fmt.Errorf("%w: QUIZ_API_URL", ErrMissingEnvironmentVariables)
	}

	switch c.Generator.Provider {
	case ProviderAPI:
	case ProviderOpenAI:
		if c.Generator.OpenAIAPIKey == "" {
			return fmt.Errorf("%w: OPENAI_API_KEY", ErrMissingEnvironmentVariables)
		}
	default:
		return fmt.Errorf("%w: unknown generator provider %q", ErrInvalidConfig, c.Generator.Provider)
	}

	switch c.Results.Backend {
	case BackendAPI:
	case BackendPostgres:
		if c.DB.URL == "" {
			return fmt.Errorf("%w: DATABASE_URL", ErrMissingEnvironmentVariables)
		}
	default:
		return fmt.Errorf("%w: unknown results backend %q", ErrInvalidConfig, c.Results.Backend)
	}

	switch c.Identity.Backend {
	case IdentityMemory:
	case IdentityRedis:
		if c.Identity.RedisURL == "" {
			return fmt.Errorf("%w: REDIS_URL", ErrMissingEnvironmentVariables)
		}
	default:
		return fmt.Errorf("%w: unknown identity backend %q", ErrInvalidConfig, c.Identity.Backend)
	}

	if c.Quiz.MaxQuestions < 1 {
		return fmt.Errorf("%w: quiz.max_questions must be positive", ErrInvalidConfig)
	}
	if c.Quiz.DefaultQuestions < 1 || c.Quiz.DefaultQuestions > c.Quiz.MaxQuestions {
		return fmt.Errorf("%w: quiz.default_questions must be within 1..%d", ErrInvalidConfig, c.Quiz.MaxQuestions)
	}

	return nil
}
