package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
)

// FileEntry describes a file or directory to create in a test tree.
type FileEntry struct {
	Path    string      // relative path using forward slashes (e.g., "src/main.c")
	IsDir   bool        // true for directories
	Content string      // file content
	Mode    os.FileMode // defaults to 0644 for files and 0755 for directories
}

// File creates a FileEntry for a file at the given path.
// Path should use forward slashes regardless of OS.
func File(path string) FileEntry {
	return FileEntry{Path: path}
}

// Dir creates a FileEntry for a directory at the given path.
// Path should use forward slashes regardless of OS.
func Dir(path string) FileEntry {
	return FileEntry{Path: path, IsDir: true}
}

// WithContent sets the file content.
func (f FileEntry) WithContent(content string) FileEntry {
	f.Content = content
	return f
}

// WithMode sets the permission bits.
func (f FileEntry) WithMode(mode os.FileMode) FileEntry {
	f.Mode = mode
	return f
}

// Build creates the entries under root on fs.
func Build(t *testing.T, fs afero.Fs, root string, entries ...FileEntry) {
	t.Helper()

	if err := fs.MkdirAll(root, 0755); err != nil {
		t.Fatalf("failed to create root %s: %v", root, err)
	}

	for _, e := range entries {
		path := filepath.Join(root, filepath.FromSlash(e.Path))

		if e.IsDir {
			mode := e.Mode
			if mode == 0 {
				mode = 0755
			}
			if err := fs.MkdirAll(path, mode); err != nil {
				t.Fatalf("failed to create directory %s: %v", e.Path, err)
			}
			continue
		}

		if err := fs.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatalf("failed to create parent directory for %s: %v", e.Path, err)
		}

		mode := e.Mode
		if mode == 0 {
			mode = 0644
		}
		if err := afero.WriteFile(fs, path, []byte(e.Content), mode); err != nil {
			t.Fatalf("failed to create file %s: %v", e.Path, err)
		}
		// WriteFile only applies perm on creation and is subject to umask on the OS.
		if err := fs.Chmod(path, mode); err != nil {
			t.Fatalf("failed to chmod %s: %v", e.Path, err)
		}
	}
}

// ReadFile returns the content of path or fails the test.
func ReadFile(t *testing.T, fs afero.Fs, path string) string {
	t.Helper()

	data, err := afero.ReadFile(fs, path)
	if err != nil {
		t.Fatalf("failed to read %s: %v", path, err)
	}
	return string(data)
}

// Exists reports whether path exists on fs.
func Exists(fs afero.Fs, path string) bool {
	_, err := fs.Stat(path)
	return err == nil
}
