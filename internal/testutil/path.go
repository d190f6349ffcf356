package testutil

import (
	"path/filepath"
	"runtime"
)

// Path joins parts into a fixture path. A leading "/" part makes the result
// absolute on every platform: "/" on Unix, C:\ on Windows, so
// Path("/", "src", "a.c") is "/src/a.c" or "C:\src\a.c".
func Path(parts ...string) string {
	if len(parts) == 0 || parts[0] != "/" {
		return filepath.Join(parts...)
	}

	root := string(filepath.Separator)
	if runtime.GOOS == "windows" {
		root = `C:\`
	}
	return filepath.Join(append([]string{root}, parts[1:]...)...)
}
