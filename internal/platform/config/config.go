package config

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
	StorageMongo    = "mongo"
)

// Config is centralized process configuration.
// Keep infra values here and pass typed config into builders.
type Config struct {
	ServiceName   string
	HTTPPort      string
	StorageDriver string
	PostgresDSN   string
	MongoURI      string
	MongoDatabase string

	TokenSecret  string
	TokenTTL     time.Duration
	StoreTimeout time.Duration

	AdminEmail    string
	AdminUsername string
	AdminPassword string
}

func Load() (Config, error) {
	// Optional; real deployments set the environment directly.
	_ = godotenv.Load()

	service := os.Getenv("SERVICE_NAME")
	if service == "" {
		service = "tasktrack"
	}

	port := os.Getenv("HTTP_PORT")
	if port == "" {
		port = "8080"
	}

	driver := strings.TrimSpace(strings.ToLower(os.Getenv("STORAGE_DRIVER")))
	switch driver {
	case StorageMemory, StoragePostgres, StorageMongo:
	default:
		driver = StorageMemory
	}

	mongoDB := os.Getenv("MONGO_DB")
	if mongoDB == "" {
		mongoDB = "tasktrack"
	}

	return Config{
		ServiceName:   service,
		HTTPPort:      port,
		StorageDriver: driver,
		PostgresDSN:   os.Getenv("POSTGRES_DSN"),
		MongoURI:      os.Getenv("MONGO_URI"),
		MongoDatabase: mongoDB,

		TokenSecret:  os.Getenv("JWT_SECRET"),
		TokenTTL:     envDuration("TOKEN_TTL", 8*time.Hour),
		StoreTimeout: envDuration("STORE_TIMEOUT", 5*time.Second),

		AdminEmail:    os.Getenv("ADMIN_EMAIL"),
		AdminUsername: os.Getenv("ADMIN_USERNAME"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
	}, nil
}

func envDuration(name string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback
	}
	value, err := time.ParseDuration(raw)
	if err != nil || value <= 0 {
		return fallback
	}
	return value
}
