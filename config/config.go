package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

// DefaultEnvFiles are read in order; a key set by an earlier file or the
// real environment is never overridden.
var DefaultEnvFiles = []string{"/opt/timetracking/.env", ".env"}

// LoadEnvFiles loads every existing file. Missing files are skipped.
func LoadEnvFiles(paths ...string) {
	for _, path := range paths {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			log.Printf("Warning: could not read %s: %v", path, err)
		}
	}
}
