package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/otiai10/recipebox/internal/app"
	"github.com/otiai10/recipebox/internal/asset"
	"github.com/otiai10/recipebox/internal/auth"
	"github.com/otiai10/recipebox/internal/cache"
	"github.com/otiai10/recipebox/internal/security"
	"github.com/otiai10/recipebox/internal/store"
	"github.com/otiai10/recipebox/internal/user"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // The operation was rejected or failed
	ExitCommandError = 2 // Bad flags, arguments or configuration
)

// Error codes reported in JSON output
const (
	CodeUnauthenticated = "unauthenticated"
	CodeForbidden       = "forbidden"
	CodeNotFound        = "not_found"
	CodeInvalid         = "invalid"
	CodeConflict        = "conflict"
	CodeUploadFailed    = "upload_failed"
	CodeRemote          = "remote"
	CodeUsage           = "usage"
	CodeGeneric         = "error"
)

// ExitError represents an error with a specific exit code.
type ExitError struct {
	Code    int    // Exit code (use ExitFailure or ExitCommandError)
	Message string // Error message
	Err     error  // Underlying error (optional)
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

// NewExitError creates a new ExitError with the given code and message.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError wraps an existing error with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error.
// Returns ExitFailure (1) if the error is not an ExitError.
func GetExitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// classifyError maps an error to its JSON error code and message
func classifyError(err error) (string, string) {
	var (
		exitErr *ExitError
		valErrs validation.Errors
	)
	switch {
	case errors.Is(err, auth.ErrUnauthenticated), errors.Is(err, auth.ErrMissingToken):
		return CodeUnauthenticated, err.Error()
	case errors.Is(err, cache.ErrNotAuthor), errors.Is(err, cache.ErrProfileIncomplete),
		errors.Is(err, app.ErrImpersonationDisabled):
		return CodeForbidden, err.Error()
	case errors.Is(err, store.ErrNotFound), errors.Is(err, user.ErrNotFound):
		return CodeNotFound, err.Error()
	case errors.As(err, &valErrs), errors.Is(err, security.ErrUnsafeURL):
		return CodeInvalid, err.Error()
	case errors.Is(err, user.ErrUsernameTaken), errors.Is(err, user.ErrProfileAlreadyComplete):
		return CodeConflict, err.Error()
	case errors.Is(err, asset.ErrUploadFailed):
		return CodeUploadFailed, err.Error()
	case errors.Is(err, store.ErrRemote):
		return CodeRemote, err.Error()
	case errors.As(err, &exitErr) && exitErr.Code == ExitCommandError:
		return CodeUsage, err.Error()
	default:
		return CodeGeneric, err.Error()
	}
}

// OutputFormatter handles JSON vs text output for CLI commands.
type OutputFormatter struct {
	Format string
	Writer io.Writer
}

// CLIResponse is the standard JSON response format for CLI output.
type CLIResponse struct {
	Status string    `json:"status"`          // "ok" or "error"
	Data   any       `json:"data,omitempty"`  // success payload
	Error  *CLIError `json:"error,omitempty"` // error details
}

// CLIError is the error structure for CLI responses.
type CLIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// Success outputs data as JSON, or calls text to render it for humans.
func (f *OutputFormatter) Success(data any, text func(w io.Writer)) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "ok",
			Data:   data,
		})
	}

	text(f.Writer)
	return nil
}

// Error outputs an error in the configured format.
func (f *OutputFormatter) Error(code, message string, details any) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "error",
			Error: &CLIError{
				Code:    code,
				Message: message,
				Details: details,
			},
		})
	}

	fmt.Fprintf(f.Writer, "Error [%s]: %s\n", code, message)
	return nil
}
