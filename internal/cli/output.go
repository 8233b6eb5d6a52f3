package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/roach88/horizonte/internal/atomicfile"
	"github.com/roach88/horizonte/internal/mirror"
	"github.com/roach88/horizonte/internal/model"
	"github.com/roach88/horizonte/internal/store"
	"github.com/roach88/horizonte/internal/suggest"
	"github.com/roach88/horizonte/internal/tracker"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // The operation failed (storage, network)
	ExitCommandError = 2 // Bad input: unknown goal, invalid flag value, ...
)

// Error codes reported in JSON responses.
const (
	ErrCodeGeneric     = "E001"
	ErrCodeNotFound    = "E002"
	ErrCodeInvalid     = "E003"
	ErrCodeUnavailable = "E004"
	ErrCodeStorage     = "E005"
	ErrCodeSettings    = "E006"
	ErrCodeLocked      = "E007"
)

// ExitError is an error carrying the process exit code.
type ExitError struct {
	Code    int    // ExitFailure or ExitCommandError
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

// OutputFormatter handles JSON vs text output for CLI commands.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer // Verbose and diagnostic output (defaults to Writer)
	Verbose   bool
}

// CLIResponse is the JSON envelope of every command.
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

// Success outputs a successful result in the configured format.
func (f *OutputFormatter) Success(data any) error {
	if f.Format == "json" {
		return f.encode(CLIResponse{Status: "ok", Data: data})
	}
	fmt.Fprintln(f.Writer, data)
	return nil
}

// Emit writes text in text mode and data in JSON mode.
func (f *OutputFormatter) Emit(text string, data any) error {
	if f.Format == "json" {
		return f.encode(CLIResponse{Status: "ok", Data: data})
	}
	_, err := io.WriteString(f.Writer, text)
	return err
}

// Error outputs an error in the configured format.
func (f *OutputFormatter) Error(code, message string, details any) error {
	if f.Format == "json" {
		return f.encode(CLIResponse{
			Status: "error",
			Error:  &CLIError{Code: code, Message: message, Details: details},
		})
	}

	fmt.Fprintf(f.GetErrWriter(), "Error [%s]: %s\n", code, message)
	if f.Verbose && details != nil {
		fmt.Fprintf(f.GetErrWriter(), "Details: %v\n", details)
	}
	return nil
}

func (f *OutputFormatter) encode(resp CLIResponse) error {
	enc := json.NewEncoder(f.Writer)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(resp)
}

// VerboseLog outputs a message only if verbose mode is enabled. It goes to
// ErrWriter so JSON output stays parseable.
func (f *OutputFormatter) VerboseLog(format string, args ...any) {
	if !f.Verbose {
		return
	}
	fmt.Fprintf(f.GetErrWriter(), format+"\n", args...)
}

// GetErrWriter returns ErrWriter if set, otherwise Writer.
func (f *OutputFormatter) GetErrWriter() io.Writer {
	if f.ErrWriter != nil {
		return f.ErrWriter
	}
	return f.Writer
}

// Fail reports err and returns the matching ExitError. Input mistakes are
// shown as they are; storage failures are summarized and only detailed with
// --verbose.
func (f *OutputFormatter) Fail(err error) error {
	code, exit, message := classify(err)
	var details any
	if f.Verbose && message != err.Error() {
		details = err.Error()
	}
	_ = f.Error(code, message, details)
	return WrapExitError(exit, message, err)
}

func classify(err error) (code string, exit int, message string) {
	switch {
	case errors.Is(err, store.ErrGoalNotFound),
		errors.Is(err, tracker.ErrNoGoals),
		errors.Is(err, tracker.ErrMilestoneNotFound),
		errors.Is(err, tracker.ErrUnknownBackup),
		errors.Is(err, os.ErrNotExist):
		return ErrCodeNotFound, ExitCommandError, err.Error()
	case errors.Is(err, store.ErrInvalidGoal),
		errors.Is(err, model.ErrUnknownValue),
		errors.Is(err, tracker.ErrAmbiguousRef),
		errors.Is(err, tracker.ErrNoActiveGoals),
		errors.Is(err, errUsage):
		return ErrCodeInvalid, ExitCommandError, err.Error()
	case errors.Is(err, suggest.ErrUnavailable):
		return ErrCodeUnavailable, ExitFailure, err.Error()
	case errors.Is(err, errSettings), errors.Is(err, mirror.ErrNotConfigured):
		return ErrCodeSettings, ExitCommandError, err.Error()
	case errors.Is(err, atomicfile.ErrLocked):
		return ErrCodeLocked, ExitFailure, "data root is locked by another process"
	default:
		return ErrCodeStorage, ExitFailure, "operation failed"
	}
}
