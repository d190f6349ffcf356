package cmd

import (
	"errors"
	"fmt"
	"io"

	"github.com/prettymuchbryce/fmtcheck/internal/rules"
)

// Exit statuses.
const (
	ExitOK       = 0
	ExitFailure  = 1
	ExitFailFast = 2
)

// ExitError carries the exit status of a run whose outcome the reporter has
// already printed.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// resultError maps the aggregate error of a runner to an ExitError.
func resultError(err error) error {
	if err == nil {
		return nil
	}
	code := ExitFailure
	if rules.IsFailFast(err) {
		code = ExitFailFast
	}
	return &ExitError{Code: code, Err: err}
}

// ExitCode returns the process exit status for err.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// printError reports errors the reporter has not shown.
func printError(w io.Writer, err error) {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return
	}
	fmt.Fprintf(w, "Error: %v\n", err)
}
