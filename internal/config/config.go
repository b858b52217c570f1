// Package config loads process configuration from the environment, with
// .env support for local development via godotenv.
package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Addr                  string
	DatabaseURL           string
	DefaultRoundDuration  int
	DefaultMaxPlayers     int
}

// Load reads .env if present (a missing file is not an error — production
// deployments set real environment variables instead) and applies
// defaults for anything unset.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Printf("[config] no .env file loaded: %v", err)
	}

	return &Config{
		Addr:                 getEnv("ADDR", "127.0.0.1:3000"),
		DatabaseURL:          os.Getenv("DATABASE_URL"),
		DefaultRoundDuration: getEnvInt("DEFAULT_ROUND_DURATION", 80),
		DefaultMaxPlayers:    getEnvInt("DEFAULT_MAX_PLAYERS", 8),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("[config] invalid %s=%q, using default %d", key, v, fallback)
		return fallback
	}
	return n
}
