package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/benefits-incoming/internal/errors"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Run completed, possibly with localized failures
	ExitFailure      = 1 // Unexpected error
	ExitCommandError = 2 // Usage or configuration error
)

// ExitError is an error carrying the process exit code.
type ExitError struct {
	Code    int
	Message string
	Err     error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// WrapExitError wraps err with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error, ExitFailure when none is set.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// OutputFormatter prints command results as text or JSON.
type OutputFormatter struct {
	Format string
	Writer io.Writer
}

// Success writes data; text mode uses data's String method when it has one.
func (f *OutputFormatter) Success(data any) error {
	if f.Format == FormatJSON {
		return json.NewEncoder(f.Writer).Encode(map[string]any{
			"status": "ok",
			"data":   data,
		})
	}
	_, err := fmt.Fprintln(f.Writer, data)
	return err
}
