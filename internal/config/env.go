package config

import (
	"errors"
	"io/fs"
	"log/slog"
	"path/filepath"

	"github.com/joho/godotenv"
)

// envFiles are tried in order; the first readable file wins.
var envFiles = []string{".env", ".env.local"}

// loadEnvFile loads KEY=VALUE pairs from dir without overriding the process
// environment.
func loadEnvFile(dir string) {
	for _, name := range envFiles {
		p := filepath.Join(dir, name)
		err := godotenv.Load(p)
		if err == nil {
			slog.Debug("Loaded environment file", slog.String("path", p))
			return
		}
		if !errors.Is(err, fs.ErrNotExist) {
			slog.Warn("Ignoring unreadable environment file", slog.String("path", p), slog.String("error", err.Error()))
		}
	}
}
