package config

import (
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/prettymuchbryce/fmtcheck/internal/pathutil"

	"github.com/spf13/afero"
)

//go:embed config-example.yaml
var defaultConfigContent string

// DefaultContent returns the commented default configuration file.
func DefaultContent() string {
	return defaultConfigContent
}

// WriteDefault writes the default config file to path. An existing file is
// only replaced when force is set.
func WriteDefault(afs afero.Fs, path string, force bool) (string, error) {
	expanded := pathutil.ExpandTilde(path)

	if _, err := afs.Stat(expanded); err == nil && !force {
		return "", fmt.Errorf("config file %s already exists: %w", expanded, os.ErrExist)
	}

	dir := filepath.Dir(expanded)
	if err := afs.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create config directory %s: %w", dir, err)
	}

	if err := afero.WriteFile(afs, expanded, []byte(defaultConfigContent), 0644); err != nil {
		return "", fmt.Errorf("failed to write config %s: %w", expanded, err)
	}

	slog.Info("created config", "path", expanded)
	return expanded, nil
}

// IsDefaultConfig checks if the file at the given path matches the default config.
func IsDefaultConfig(afs afero.Fs, path string) bool {
	content, err := afero.ReadFile(afs, path)
	if err != nil {
		return false
	}
	return string(content) == defaultConfigContent
}
