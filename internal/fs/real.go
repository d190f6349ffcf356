package fs

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// RealFileSystem performs actual filesystem operations.
type RealFileSystem struct {
	afero.Fs
}

// Rename performs the rename operation.
func (r *RealFileSystem) Rename(oldname, newname string) error {
	slog.Debug("renaming", "from", oldname, "to", newname)
	return r.Fs.Rename(oldname, newname)
}

// Chmod performs the permission change.
func (r *RealFileSystem) Chmod(name string, mode os.FileMode) error {
	slog.Debug("changing mode", "path", name, "mode", mode)
	return r.Fs.Chmod(name, mode)
}

// Copy copies a file from src to dst.
func (r *RealFileSystem) Copy(src, dst string) error {
	slog.Debug("copying", "from", src, "to", dst)
	srcInfo, err := r.Fs.Stat(src)
	if err != nil {
		return err
	}
	return copyFile(r.Fs, src, dst, srcInfo.Mode().Perm())
}

// Replace atomically replaces the content of path. A symlink is resolved
// first so that its target is rewritten and the link survives.
func (r *RealFileSystem) Replace(path string, data []byte, perm os.FileMode) error {
	target, err := filepath.EvalSymlinks(path)
	if err != nil {
		return err
	}
	if target != filepath.Clean(path) {
		slog.Debug("writing through symlink", "path", path, "target", target)
	}
	slog.Debug("writing", "path", target, "bytes", len(data))
	return replaceFile(r.Fs, target, data, perm)
}
