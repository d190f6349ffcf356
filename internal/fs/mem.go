package fs

import (
	"os"

	"github.com/spf13/afero"
)

// MemFileSystem is an in-memory filesystem for testing.
// Unlike DryRunFileSystem, it performs no logging.
type MemFileSystem struct {
	afero.Fs
}

// Copy copies a file from src to dst.
func (m *MemFileSystem) Copy(src, dst string) error {
	srcInfo, err := m.Fs.Stat(src)
	if err != nil {
		return err
	}
	return copyFile(m.Fs, src, dst, srcInfo.Mode().Perm())
}

// Replace replaces the content of path.
func (m *MemFileSystem) Replace(path string, data []byte, perm os.FileMode) error {
	return replaceFile(m.Fs, path, data, perm)
}
