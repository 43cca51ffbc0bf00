package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

var DefaultEnvConfig *envConfig

// Store backends selectable through STORE_BACKEND.
const (
	BackendMemory    = "memory"
	BackendDatastore = "datastore"
	BackendMongo     = "mongo"
	BackendPostgres  = "postgres"
)

type envConfig struct {
	APP_PORT string
	// store selection
	STORE_BACKEND string
	// datastore config
	DATASTORE_PROJECT_ID string
	// mongo config
	MONGO_URI      string
	MONGO_DATABASE string
	// postgres config
	DB_HOST              string
	DB_PORT              int
	DB_USER              string
	DB_PASSWORD          string
	DB_NAME              string
	DB_SSL_MODE          string
	DB_CONN_MAX_LIFETIME time.Duration
	DB_MAX_IDLE_CONNS    int
	DB_MAX_OPEN_CONNS    int
	// ownership index
	ES_URL   string
	ES_INDEX string
	// core tuning
	SWEEP_WORKERS               int
	READ_RETRY_MAX              int
	READ_RETRY_INITIAL_INTERVAL time.Duration
	// logger config
	LOG_FILE_PATH string
	LOG_LEVEL     string
}

// LoadEnvConfig reads an optional .env file and the process environment.
func LoadEnvConfig() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}

	DefaultEnvConfig = &envConfig{
		APP_PORT:                    getEnvString("APP_PORT", "8080"),
		STORE_BACKEND:               getEnvString("STORE_BACKEND", BackendMemory),
		DATASTORE_PROJECT_ID:        getEnvString("DATASTORE_PROJECT_ID", ""),
		MONGO_URI:                   getEnvString("MONGO_URI", "mongodb://localhost:27017"),
		MONGO_DATABASE:              getEnvString("MONGO_DATABASE", "assets"),
		DB_HOST:                     getEnvString("DB_HOST", "localhost"),
		DB_PORT:                     getEnvInt("DB_PORT", 5432),
		DB_USER:                     getEnvString("DB_USER", "postgres"),
		DB_PASSWORD:                 getEnvString("DB_PASSWORD", "postgres"),
		DB_NAME:                     getEnvString("DB_NAME", "postgres"),
		DB_SSL_MODE:                 getEnvString("DB_SSL_MODE", "disable"),
		DB_CONN_MAX_LIFETIME:        getEnvDuration("DB_CONN_MAX_LIFETIME", 20*time.Minute),
		DB_MAX_IDLE_CONNS:           getEnvInt("DB_MAX_IDLE_CONNS", 10),
		DB_MAX_OPEN_CONNS:           getEnvInt("DB_MAX_OPEN_CONNS", 100),
		ES_URL:                      getEnvString("ES_URL", ""),
		ES_INDEX:                    getEnvString("ES_INDEX", "asset_ownership"),
		SWEEP_WORKERS:               getEnvInt("SWEEP_WORKERS", 4),
		READ_RETRY_MAX:              getEnvInt("READ_RETRY_MAX", 3),
		READ_RETRY_INITIAL_INTERVAL: getEnvDuration("READ_RETRY_INITIAL_INTERVAL", 50*time.Millisecond),
		LOG_FILE_PATH:               getEnvString("LOG_FILE_PATH", ""),
		LOG_LEVEL:                   getEnvString("LOG_LEVEL", "info"),
	}
	return nil
}

func getEnvString(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
		if i, err := strconv.Atoi(val); err == nil {
			return time.Duration(i) * time.Second
		}
	}
	return fallback
}
