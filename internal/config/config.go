package config

import (
	"errors"
	"log"
	"time"

	"github.com/joho/godotenv"
)

const (
	BackendMongo  = "mongo"
	BackendMemory = "memory"
)

type Config struct {
	MongoURI       string
	DBName         string
	JWTSecret      string
	Port           string
	StoreBackend   string
	RequestTimeout time.Duration
	CORSOrigins    []string
	GinMode        string
}

// Load reads .env (if present) and the process environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("[CONFIG] [INFO] .env not loaded:", err)
	}
	cfg := Config{
		MongoURI:       getEnvOrDefault("MONGO_URI", "mongodb://localhost:27017/"),
		DBName:         getEnvOrDefault("DB_NAME", "tabserv"),
		JWTSecret:      getEnvOrDefault("JWT_SECRET", ""),
		Port:           getEnvOrDefault("PORT", "8080"),
		StoreBackend:   getEnvOrDefault("STORE_BACKEND", BackendMongo),
		RequestTimeout: getDurationEnv("REQUEST_TIMEOUT", 5, time.Second),
		CORSOrigins:    getListEnv("CORS_ORIGINS", []string{"http://localhost:8081", "http://localhost:3000"}),
		GinMode:        getEnvOrDefault("GIN_MODE", "release"),
	}
	return cfg, cfg.validate()
}

func (c Config) validate() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	switch c.StoreBackend {
	case BackendMongo:
		if c.MongoURI == "" {
			return errors.New("MONGO_URI is required for the mongo backend")
		}
	case BackendMemory:
	default:
		return errors.New("STORE_BACKEND must be mongo or memory")
	}
	return nil
}
