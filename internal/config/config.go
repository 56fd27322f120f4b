package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Типы хранилища
const (
	StoragePostgres = "postgres"
	StorageMemory   = "in-memory"
)

// Config содержит конфигурацию приложения
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Storage  StorageConfig
	Reddit   RedditConfig
	LLM      LLMConfig
	Export   ExportConfig
}

// ServerConfig содержит настройки HTTP сервера
type ServerConfig struct {
	Host string
	Port string
}

// DatabaseConfig содержит настройки базы данных
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// StorageConfig выбирает реализацию репозитория
type StorageConfig struct {
	Type string
}

// RedditConfig содержит настройки сборщика
type RedditConfig struct {
	BaseURL           string
	UserAgent         string
	PostsPerSubreddit int
	PostSort          string
	CommentDepth      int
	CommentLimit      int
	RequestInterval   time.Duration
	InitialBackoff    time.Duration
	MaxBackoff        time.Duration
	MaxRetries        int
	SubredditsFile    string
	DataFolder        string
}

// LLMConfig содержит настройки пула LLM
type LLMConfig struct {
	ModelsFile  string
	MaxFailures int
	RetryWait   time.Duration
	Timeout     time.Duration
}

// ExportConfig содержит настройки экспорта и анализа
type ExportConfig struct {
	ChunkSize   int
	Concurrency int
}

// Load загружает конфигурацию из переменных окружения
// Приоритет: переменные окружения системы > .env файл > значения по умолчанию
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "localhost"),
			Port: getEnv("SERVER_PORT", "8080"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "threaddigest"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Storage: StorageConfig{
			Type: strings.ToLower(getEnv("STORAGE_TYPE", StoragePostgres)),
		},
		Reddit: RedditConfig{
			BaseURL:           getEnv("REDDIT_BASE_URL", "https://www.reddit.com"),
			UserAgent:         getEnv("REDDIT_USER_AGENT", "threaddigest/1.0"),
			PostsPerSubreddit: getEnvInt("POSTS_PER_SUBREDDIT", 40),
			PostSort:          getEnv("REDDIT_POST_SORT", "new"),
			CommentDepth:      getEnvInt("REDDIT_COMMENT_DEPTH", 8),
			CommentLimit:      getEnvInt("REDDIT_COMMENT_LIMIT", 2000),
			RequestInterval:   getEnvDuration("REDDIT_REQUEST_INTERVAL", time.Second),
			InitialBackoff:    getEnvDuration("REDDIT_INITIAL_BACKOFF", 61*time.Second),
			MaxBackoff:        getEnvDuration("REDDIT_MAX_BACKOFF", time.Hour),
			MaxRetries:        getEnvInt("REDDIT_MAX_RETRIES", 5),
			SubredditsFile:    getEnv("SUBREDDITS_FILE", "subreddits.txt"),
			DataFolder:        getEnv("TEXT_DATA_FOLDER", "data"),
		},
		LLM: LLMConfig{
			ModelsFile:  getEnv("MODELS_JSON", "models.json"),
			MaxFailures: getEnvInt("LLM_MAX_FAILURES", 2),
			RetryWait:   getEnvDuration("LLM_RETRY_WAIT", 5*time.Second),
			Timeout:     getEnvDuration("LLM_TIMEOUT", 180*time.Second),
		},
		Export: ExportConfig{
			ChunkSize:   getEnvInt("DEFAULT_POSTS_PER_API_CALL", 5),
			Concurrency: getEnvInt("EXPORT_CONCURRENCY", 4),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Storage.Type {
	case StoragePostgres, StorageMemory:
	default:
		return fmt.Errorf("unsupported STORAGE_TYPE %q", c.Storage.Type)
	}
	if c.Reddit.PostsPerSubreddit <= 0 {
		return fmt.Errorf("POSTS_PER_SUBREDDIT must be positive, got %d", c.Reddit.PostsPerSubreddit)
	}
	if c.Export.ChunkSize <= 0 {
		return fmt.Errorf("DEFAULT_POSTS_PER_API_CALL must be positive, got %d", c.Export.ChunkSize)
	}
	return nil
}

// DSN возвращает строку подключения к PostgreSQL
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

// Addr возвращает адрес, который слушает HTTP сервер
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		slog.Warn("invalid integer in environment, using default", "key", key, "value", value, "default", defaultValue)
		return defaultValue
	}
	return n
}

// getEnvDuration понимает как "1m30s", так и целое число секунд
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		slog.Warn("invalid duration in environment, using default", "key", key, "value", value, "default", defaultValue)
		return defaultValue
	}
	return d
}
