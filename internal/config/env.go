package config

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/joho/godotenv"
)

const devJWTSecret = "classnotes-development-secret"

var dotEnvOnce sync.Once

// loadDotEnv loads .env from the working directory once. A missing file is
// fine; variables already set in the environment win.
func loadDotEnv() {
	dotEnvOnce.Do(func() {
		_ = godotenv.Load(".env")
	})
}

// Daemon is the runtime configuration of classnotesd.
type Daemon struct {
	JWTSecret   []byte
	TokenTTL    time.Duration
	Addr        string
	Environment string
}

// LoadDaemon reads classnotesd settings from the environment.
func LoadDaemon() (*Daemon, error) {
	loadDotEnv()
	cfg := &Daemon{
		Addr:        os.Getenv("CLASSNOTES_ADDR"),
		Environment: os.Getenv("CLASSNOTES_ENV"),
		TokenTTL:    7 * 24 * time.Hour,
	}
	if cfg.Environment == "" {
		cfg.Environment = "development"
	}
	if v := os.Getenv("CLASSNOTES_TOKEN_TTL"); v != "" {
		ttl, err := time.ParseDuration(v)
		if err != nil || ttl <= 0 {
			return nil, fmt.Errorf("CLASSNOTES_TOKEN_TTL: invalid duration %q", v)
		}
		cfg.TokenTTL = ttl
	}
	secret := os.Getenv("CLASSNOTES_JWT_SECRET")
	switch {
	case secret != "":
		cfg.JWTSecret = []byte(secret)
	case cfg.Environment == "development":
		cfg.JWTSecret = []byte(devJWTSecret)
	default:
		return nil, fmt.Errorf("CLASSNOTES_JWT_SECRET is required but not set")
	}
	return cfg, nil
}

// School is the runtime configuration of schoold.
type School struct {
	DBDSN       string
	Addr        string
	Environment string
	// Storage is "postgres" (default) or "memory".
	Storage string
}

// LoadSchool reads schoold settings from the environment.
func LoadSchool() (*School, error) {
	loadDotEnv()
	cfg := &School{
		DBDSN:       os.Getenv("SCHOOL_DB_DSN"),
		Addr:        os.Getenv("SCHOOL_ADDR"),
		Environment: os.Getenv("ENV"),
		Storage:     os.Getenv("SCHOOL_STORAGE"),
	}
	if cfg.Storage == "" {
		cfg.Storage = "postgres"
	}
	if cfg.Addr == "" {
		cfg.Addr = ":8081"
	}
	if cfg.Environment == "" {
		cfg.Environment = "development"
	}
	switch cfg.Storage {
	case "memory":
	case "postgres":
		if cfg.DBDSN == "" {
			return nil, fmt.Errorf("SCHOOL_DB_DSN is required but not set")
		}
	default:
		return nil, fmt.Errorf("SCHOOL_STORAGE: unknown backend %q", cfg.Storage)
	}
	return cfg, nil
}
