package pathutil

import (
	"os"
	"path/filepath"
	"strings"
)

// ExpandTilde replaces a leading "~" path element with the user's home
// directory. Another user's home ("~bob/src") is not resolved.
func ExpandTilde(path string) string {
	rest, ok := strings.CutPrefix(path, "~")
	if !ok || (rest != "" && rest[0] != '/' && !os.IsPathSeparator(rest[0])) {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, rest)
}

// RootPath turns a path argument into a walk root. An empty argument is the
// working directory.
func RootPath(arg string) string {
	if arg == "" {
		return "."
	}
	return filepath.Clean(ExpandTilde(arg))
}
