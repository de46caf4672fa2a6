// Package config loads the application configuration from defaults, an optional
// YAML file, a .env file and environment variables.
package config

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/joho/godotenv"
)

var once sync.Once

// LoadEnv loads environment variables from a .env file if one exists in the
// current or parent directory. Variables already set in the environment win.
// It returns the file that was loaded, or "" when none was found.
func LoadEnv() (string, error) {
	var (
		loaded  string
		loadErr error
	)
	once.Do(func() {
		envFile := ".env"
		if _, err := os.Stat(envFile); os.IsNotExist(err) {
			envFile = filepath.Join("..", ".env")
			if _, err := os.Stat(envFile); os.IsNotExist(err) {
				return
			}
		}

		if err := godotenv.Load(envFile); err != nil {
			loadErr = err
			return
		}
		loaded = envFile
	})
	return loaded, loadErr
}
