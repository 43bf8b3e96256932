package config

import (
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	DBDriver   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBPath     string
	DBLogLevel string

	SessionStore  string
	RedisHost     string
	RedisPort     string
	SessionSecret string

	GinMode   string
	Port      string
	LogLevel  string
	LogFormat string

	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string

	OpenAIAPIKey  string
	OpenAIBaseURL string

	// browser UI
	APIBaseURL      string
	WebPort         string
	CookiesPassword string
}

// Load reads an optional .env file and then the environment.
func Load() *Config {
	return LoadFrom(".env")
}

// LoadFrom is Load with an explicit dotenv path. A missing file is not an error.
func LoadFrom(path string) *Config {
	if path != "" {
		if err := godotenv.Load(path); err != nil && !os.IsNotExist(err) {
			slog.Warn("failed to read env file, using process environment", "path", path, "error", err)
		}
	}

	return &Config{
		DBDriver:   strings.ToLower(getEnv("DB_DRIVER", "mysql")),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "3306"),
		DBUser:     getEnv("DB_USER", "taskuser"),
		DBPassword: getEnv("DB_PASSWORD", "taskpassword"),
		DBName:     getEnv("DB_NAME", "task_board"),
		DBPath:     getEnv("DB_PATH", "data/task_board.db"),
		DBLogLevel: getEnv("DB_LOG_LEVEL", "warn"),

		SessionStore:  strings.ToLower(getEnv("SESSION_STORE", "cookie")),
		RedisHost:     getEnv("REDIS_HOST", "localhost"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		SessionSecret: getEnv("SESSION_SECRET", "default-secret-key-change-me"),

		GinMode:   getEnv("GIN_MODE", "debug"),
		Port:      getEnv("PORT", "8000"),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),

		AllowedOrigins: getEnvFields("ALLOW_ORIGINS", []string{"*"}),
		AllowedMethods: getEnvFields("ALLOW_METHODS", []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		AllowedHeaders: getEnvFields("ALLOW_HEADERS", []string{"Origin", "Content-Type", "Accept", "X-Request-ID"}),

		OpenAIAPIKey:  getEnv("OPENAI_API_KEY", ""),
		OpenAIBaseURL: getEnv("OPENAI_BASE_URL", ""),

		APIBaseURL:      strings.TrimRight(getEnv("API_BASE_URL", "http://localhost:8000"), "/"),
		WebPort:         getEnv("WEB_PORT", "8501"),
		CookiesPassword: getEnv("COOKIES_PASSWORD", "My secret password"),
	}
}

// IsProduction reports whether cookies should be marked Secure.
func (c *Config) IsProduction() bool {
	return c.GinMode == "release"
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvFields(key string, defaultValue []string) []string {
	value, exists := os.LookupEnv(key)
	if !exists || strings.TrimSpace(value) == "" {
		return defaultValue
	}

	fields := make([]string, 0)
	for _, f := range strings.Split(value, ",") {
		if f = strings.TrimSpace(f); f != "" {
			fields = append(fields, f)
		}
	}
	return fields
}
