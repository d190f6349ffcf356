package fs

import (
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// BackupSuffix is appended to a file's path to name its backup copy.
const BackupSuffix = ".bak"

// FileSystem extends afero.Fs with the write operations fixes need.
type FileSystem interface {
	afero.Fs

	// Copy copies the file at src to dst, overwriting dst.
	Copy(src, dst string) error

	// Replace swaps the content of path for data in one step. The file ends
	// up with permissions perm.
	Replace(path string, data []byte, perm os.FileMode) error
}

// NewReal creates a FileSystem that performs actual filesystem operations.
func NewReal() FileSystem {
	return &RealFileSystem{
		Fs: afero.NewOsFs(),
	}
}

// NewDryRun creates a FileSystem that logs writes without modifying the real filesystem.
// Uses CopyOnWriteFs so content written earlier in a run can be read back.
func NewDryRun() FileSystem {
	return NewDryRunOver(afero.NewOsFs())
}

// NewDryRunOver creates a dry-run FileSystem reading from base.
func NewDryRunOver(base afero.Fs) FileSystem {
	layer := afero.NewMemMapFs()
	cow := afero.NewCopyOnWriteFs(afero.NewReadOnlyFs(base), layer)
	return &DryRunFileSystem{Fs: cow}
}

// NewMem creates an in-memory FileSystem for testing.
// Unlike DryRunFileSystem, it performs no logging.
func NewMem() FileSystem {
	return &MemFileSystem{Fs: afero.NewMemMapFs()}
}

// NewMemOver wraps an existing afero.Fs, typically a MemMapFs shared with a test.
func NewMemOver(afs afero.Fs) FileSystem {
	return &MemFileSystem{Fs: afs}
}

// BackupPath returns where the backup of path is written.
func BackupPath(path string) string {
	return path + BackupSuffix
}

// copyFile copies a single file.
func copyFile(afs afero.Fs, src, dst string, mode os.FileMode) error {
	srcFile, err := afs.Open(src)
	if err != nil {
		return err
	}
	defer srcFile.Close()

	dstFile, err := afs.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode)
	if err != nil {
		return err
	}

	if _, err := io.Copy(dstFile, srcFile); err != nil {
		dstFile.Close()
		return err
	}

	return dstFile.Close()
}

// replaceFile writes data to a temporary file next to path and renames it
// over path, so readers never observe a partially written file.
func replaceFile(afs afero.Fs, path string, data []byte, perm os.FileMode) error {
	tmp, err := afero.TempFile(afs, filepath.Dir(path), "."+filepath.Base(path)+".tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		afs.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		afs.Remove(tmpName)
		return err
	}
	if err := afs.Chmod(tmpName, perm.Perm()); err != nil {
		afs.Remove(tmpName)
		return err
	}
	if err := afs.Rename(tmpName, path); err != nil {
		afs.Remove(tmpName)
		return err
	}
	return nil
}
