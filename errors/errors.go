package errors

import (
	stderrors "errors"
	"fmt"
	"time"
)

// AppError is the unified harness error type.
type AppError struct {
	// Code is a machine-readable error code.
	Code ErrorCode `json:"code"`
	// Message is a human-readable error message.
	Message string `json:"message"`
	// Fatal indicates the error stops the run.
	Fatal bool `json:"fatal"`
	// Details contains additional context for the error.
	Details map[string]any `json:"details,omitempty"`
	// Cause is the underlying error that caused this error.
	Cause error `json:"-"`
}

// Error returns the string representation of the error.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *AppError) Unwrap() error { return e.Cause }

// WithCause sets the underlying cause of the error and returns the receiver.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithDetails merges the provided details into the error and returns the receiver.
func (e *AppError) WithDetails(details map[string]any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	for k, v := range details {
		e.Details[k] = v
	}
	return e
}

// WithDetail sets a single detail key-value pair and returns the receiver.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New creates a new AppError with severity derived from the code.
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Fatal:   IsFatalCode(code),
	}
}

// --- Constructors ---

// DiscoveryFailure creates an error for a task root that cannot be enumerated.
func DiscoveryFailure(root string, cause error) *AppError {
	return &AppError{
		Code: ErrCodeDiscoveryFailure, Message: fmt.Sprintf("task root %s could not be enumerated", root),
		Fatal: true, Details: map[string]any{"root": root}, Cause: cause,
	}
}

// BootstrapFailure creates an error for a failed dependency resolution step.
func BootstrapFailure(task string, cause error) *AppError {
	return &AppError{
		Code: ErrCodeBootstrapFailure, Message: fmt.Sprintf("dependency bootstrap failed for %s", task),
		Details: map[string]any{"task": task}, Cause: cause,
	}
}

// LaunchFailure creates an error for an entry command that could not be started.
func LaunchFailure(task string, cause error) *AppError {
	return &AppError{
		Code: ErrCodeLaunchFailure, Message: fmt.Sprintf("could not start %s", task),
		Details: map[string]any{"task": task}, Cause: cause,
	}
}

// Timeout creates an error for a task that exceeded its budget.
func Timeout(task string, budget time.Duration) *AppError {
	return &AppError{
		Code: ErrCodeTimeout, Message: fmt.Sprintf("%s did not finish within %s", task, budget),
		Details: map[string]any{"task": task, "budget": budget.String()},
	}
}

// NonZeroExit creates an error for a task that exited with a failure code.
func NonZeroExit(task string, code int) *AppError {
	return &AppError{
		Code: ErrCodeNonZeroExit, Message: fmt.Sprintf("%s exited with code %d", task, code),
		Details: map[string]any{"task": task, "exit_code": code},
	}
}

// HarvestFailure creates an error for an unreadable output store.
func HarvestFailure(task, store string, cause error) *AppError {
	return &AppError{
		Code: ErrCodeHarvestFailure, Message: fmt.Sprintf("output store of %s is unreadable", task),
		Details: map[string]any{"task": task, "store": store}, Cause: cause,
	}
}

// ExportFailure creates an error for an export that failed including its fallback.
func ExportFailure(path string, cause error) *AppError {
	return &AppError{
		Code: ErrCodeExportFailure, Message: fmt.Sprintf("could not write export %s", path),
		Fatal: true, Details: map[string]any{"path": path}, Cause: cause,
	}
}

// PublishFailure creates an error for an artifact upload that failed.
func PublishFailure(provider, path string, cause error) *AppError {
	return &AppError{
		Code: ErrCodePublishFailure, Message: fmt.Sprintf("could not publish %s via %s", path, provider),
		Details: map[string]any{"provider": provider, "path": path}, Cause: cause,
	}
}

// InvalidConfig creates an error for a configuration that failed validation.
func InvalidConfig(message string) *AppError {
	return &AppError{
		Code: ErrCodeInvalidConfig, Message: message, Fatal: true,
	}
}

// Internal creates an error for an unexpected harness failure.
func Internal(cause error) *AppError {
	return &AppError{
		Code: ErrCodeInternal, Message: "an unexpected error occurred", Fatal: true, Cause: cause,
	}
}

// --- Inspection ---

// IsAppError checks if an error is an AppError.
func IsAppError(err error) bool {
	var appErr *AppError
	return stderrors.As(err, &appErr)
}

// AsAppError converts an error to an AppError if possible.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// HasCode reports whether err is an AppError carrying the given code.
func HasCode(err error, code ErrorCode) bool {
	appErr, ok := AsAppError(err)
	return ok && appErr.Code == code
}

// IsFatal reports whether err should stop the run. Errors that are not
// AppErrors are treated as fatal.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}
	appErr, ok := AsAppError(err)
	if !ok {
		return true
	}
	return appErr.Fatal
}
