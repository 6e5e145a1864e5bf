package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

// Load reads .env when present; production deployments rely on real
// environment variables instead.
func Load() {
	if err := godotenv.Load(".env"); err != nil {
		log.Println("⚠️  no .env file found — using system environment variables")
	} else {
		log.Println("✅ .env loaded")
	}
}

// Get returns the value of an environment variable or the given fallback.
func Get(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
