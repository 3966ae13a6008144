// config/config.go
package config

import (
	"os"

	"github.com/go-redis/redis/v8"
)

// Storage backends selectable via STORAGE_BACKEND.
const (
	StorageMemory = "memory"
	StorageMongo  = "mongo"
	StorageRedis  = "redis"
)

type Config struct {
	Environment string
	Port        string

	// Storage
	StorageBackend string
	DatabaseURL    string
	DatabaseName   string
	RedisURL       string
}

func Load() *Config {
	return &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		Port:        getEnv("PORT", "8080"),

		StorageBackend: getEnv("STORAGE_BACKEND", StorageMemory),
		DatabaseURL:    getEnv("DATABASE_URL", "mongodb://localhost:27017"),
		DatabaseName:   getEnv("DATABASE_NAME", "zonetrack"),
		RedisURL:       getEnv("REDIS_URL", "redis://localhost:6379"),
	}
}

func InitRedis(cfg *Config) *redis.Client {
	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		// Fallback to default config
		opt = &redis.Options{
			Addr:     "localhost:6379",
			Password: "",
			DB:       0,
		}
	}

	return redis.NewClient(opt)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
