package pathutil

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/spf13/afero"
)

// LocalConfigName is the per-project config file looked up in the working directory.
const LocalConfigName = ".fmtcheck.yaml"

// DefaultConfigPath returns the platform-appropriate user config file path.
func DefaultConfigPath() (string, error) {
	switch runtime.GOOS {
	case "windows":
		appData := os.Getenv("APPDATA")
		if appData == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf("APPDATA not set and cannot determine home directory: %w", err)
			}
			appData = filepath.Join(home, "AppData", "Roaming")
		}
		return filepath.Join(appData, "fmtcheck", "config.yaml"), nil
	default:
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, "fmtcheck", "config.yaml"), nil
		}
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("cannot determine home directory: %w", err)
		}
		return filepath.Join(home, ".config", "fmtcheck", "config.yaml"), nil
	}
}

// FindConfig picks the config file for a run. An explicit path always wins
// and must exist. Otherwise LocalConfigName in dir is used, then the user
// config. An empty result means no file was found and defaults apply.
func FindConfig(afs afero.Fs, explicit, dir string) (string, error) {
	if explicit != "" {
		expanded := ExpandTilde(explicit)
		if _, err := afs.Stat(expanded); err != nil {
			return "", fmt.Errorf("config file not found: %w", err)
		}
		return expanded, nil
	}

	candidates := []string{filepath.Join(dir, LocalConfigName)}
	if user, err := DefaultConfigPath(); err == nil {
		candidates = append(candidates, user)
	}

	for _, c := range candidates {
		if info, err := afs.Stat(c); err == nil && !info.IsDir() {
			return c, nil
		}
	}
	return "", nil
}
