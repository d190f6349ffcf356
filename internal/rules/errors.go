package rules

import (
	"errors"
	"log/slog"
	"os"
)

var (
	// ErrFailFast reports that a check run stopped at its first failure.
	// It is a control signal, not a fault.
	ErrFailFast = errors.New("check failed, fail-fast")

	// ErrCheckFailed reports that at least one file failed a check.
	ErrCheckFailed = errors.New("check failed")

	// ErrFilesFailed reports that at least one file could not be processed.
	ErrFilesFailed = errors.New("some files could not be processed")
)

// isFilesystemError returns true if the error is a filesystem-related error.
// These errors should be logged as warnings rather than stopping execution.
func isFilesystemError(err error) bool {
	var pathErr *os.PathError
	var linkErr *os.LinkError
	return errors.As(err, &pathErr) || errors.As(err, &linkErr)
}

// logFileError logs a per-file error. Filesystem errors are expected in a
// tree walk and are logged as warnings; anything else is an error.
func logFileError(msg, path string, err error) {
	if isFilesystemError(err) {
		slog.Warn(msg, "path", path, "error", err)
		return
	}
	slog.Error(msg, "path", path, "error", err)
}
