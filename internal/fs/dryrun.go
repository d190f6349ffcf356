package fs

import (
	"log/slog"
	"os"

	"github.com/spf13/afero"
)

// DryRunFileSystem simulates writes without modifying the real filesystem.
// Uses CopyOnWriteFs so writes land in memory and later reads observe them.
type DryRunFileSystem struct {
	afero.Fs
}

// Chmod records the mode change in the memory layer.
func (d *DryRunFileSystem) Chmod(name string, mode os.FileMode) error {
	slog.Info("would change mode", "path", name, "mode", mode)
	return d.Fs.Chmod(name, mode)
}

// Copy performs the copy in memory so subsequent reads see it.
func (d *DryRunFileSystem) Copy(src, dst string) error {
	slog.Info("would copy", "from", src, "to", dst)
	srcInfo, err := d.Fs.Stat(src)
	if err != nil {
		return err
	}
	return copyFile(d.Fs, src, dst, srcInfo.Mode().Perm())
}

// Replace writes the new content to the memory layer only.
// CoW doesn't support renaming files that only exist in the base layer,
// so the content is written in place rather than through a temporary file.
func (d *DryRunFileSystem) Replace(path string, data []byte, perm os.FileMode) error {
	slog.Info("would write", "path", path, "bytes", len(data))
	if err := afero.WriteFile(d.Fs, path, data, perm.Perm()); err != nil {
		return err
	}
	return d.Fs.Chmod(path, perm.Perm())
}
