package utils

import (
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// EnvFiles returns the .env files to load: ENV_FILE when set, otherwise ".env"
func EnvFiles() []string {
	if file := os.Getenv("ENV_FILE"); file != "" {
		return []string{file}
	}
	return []string{".env"}
}

// LoadEnv loads environment variables from multiple .env files
// Returns a map of environment variables. Variables already present in the
// process environment are never overwritten by a file.
func LoadEnv(files ...string) map[string]string {
	config := make(map[string]string)

	// Load each file in order
	for _, file := range files {
		if _, err := os.Stat(file); err == nil {
			if err := godotenv.Load(file); err != nil {
				log.Printf("[UTILS]: Warning, could not load %s: %v", file, err)
			}
		}
	}

	// Read all environment variables into map
	for _, env := range os.Environ() {
		key, value, ok := strings.Cut(env, "=")
		if ok && key != "" {
			config[key] = value
		}
	}

	return config
}
