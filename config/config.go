package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port            string
	DatabaseURL     string
	AllowOrigins    string
	JWTSecret       string
	JWTTTL          time.Duration
	RedisAddr       string
	RedisPassword   string
	RedisDB         int
	CacheTTL        time.Duration
	RabbitMQURL     string
	ProductExchange string
	ProductQueue    string
	StaticDir       string
	LogLevel        slog.Level
}

// Load reads .env when present, then the environment. Secrets may be given
// through a *_FILE variable naming a file that holds the value.
func Load() *Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("could not load .env", "error", err)
	}

	return &Config{
		Port:            getEnv("PORT", "8080"),
		DatabaseURL:     getEnvFromFile("DATABASE_URL_FILE", "DATABASE_URL", ""),
		AllowOrigins:    getEnv("ALLOW_ORIGINS", "http://127.0.0.1:5173,http://localhost:5173,http://localhost:3000"),
		JWTSecret:       getEnvFromFile("JWT_SECRET_FILE", "JWT_SECRET", "dev-secret-change-me"),
		JWTTTL:          getDuration("JWT_TTL", 7*24*time.Hour),
		RedisAddr:       getEnv("REDIS_ADDR", ""),
		RedisPassword:   getEnvFromFile("REDIS_PASSWORD_FILE", "REDIS_PASSWORD", ""),
		RedisDB:         getInt("REDIS_DB", 0),
		CacheTTL:        getDuration("CACHE_TTL", 5*time.Minute),
		RabbitMQURL:     getEnvFromFile("RABBITMQ_URL_FILE", "RABBITMQ_URL", ""),
		ProductExchange: getEnv("PRODUCT_EXCHANGE", "product_exchange"),
		ProductQueue:    getEnv("PRODUCT_QUEUE", "product_events"),
		StaticDir:       getEnv("STATIC_DIR", "./static"),
		LogLevel:        getLevel("LOG_LEVEL", slog.LevelInfo),
	}
}

func getEnv(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getEnvFromFile(fileKey, envKey, defaultValue string) string {
	if filePath := os.Getenv(fileKey); filePath != "" {
		if content, err := os.ReadFile(filePath); err == nil {
			return strings.TrimSpace(string(content))
		}
		slog.Warn("could not read secret file, falling back", "var", fileKey)
	}
	return getEnv(envKey, defaultValue)
}

func getInt(key string, defaultValue int) int {
	v, err := strconv.Atoi(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return v
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	d, err := time.ParseDuration(getEnv(key, ""))
	if err != nil || d <= 0 {
		return defaultValue
	}
	return d
}

func getLevel(key string, defaultValue slog.Level) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(getEnv(key, ""))); err != nil {
		return defaultValue
	}
	return level
}
