package fs

import (
	"fmt"
	"os"

	"github.com/spf13/afero"
)

// ReadOnlyFileSystem rejects every write. The check runner is handed one so
// a scan can never modify the tree it inspects.
type ReadOnlyFileSystem struct {
	afero.Fs
}

// NewReadOnly wraps base so that every write fails.
func NewReadOnly(base afero.Fs) FileSystem {
	return &ReadOnlyFileSystem{Fs: afero.NewReadOnlyFs(base)}
}

// Copy always fails.
func (r *ReadOnlyFileSystem) Copy(src, dst string) error {
	return &os.PathError{Op: "copy", Path: dst, Err: fmt.Errorf("read-only filesystem: %w", os.ErrPermission)}
}

// Replace always fails.
func (r *ReadOnlyFileSystem) Replace(path string, data []byte, perm os.FileMode) error {
	return &os.PathError{Op: "replace", Path: path, Err: fmt.Errorf("read-only filesystem: %w", os.ErrPermission)}
}
