package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents a quickmr error code.
type ErrorCode string

const (
	ErrInvalidRequest       ErrorCode = "INVALID_REQUEST"       // 400
	ErrNoPendingTemplate    ErrorCode = "NO_PENDING_TEMPLATE"   // 404
	ErrSourceFetchFailed    ErrorCode = "SOURCE_FETCH_FAILED"   // 502
	ErrClipboardUnavailable ErrorCode = "CLIPBOARD_UNAVAILABLE" // 503
	ErrStorageFault         ErrorCode = "STORAGE_FAULT"         // 507
	ErrInternal             ErrorCode = "INTERNAL"              // 500
)

// QuickError represents a structured error with code, status, and details.
type QuickError struct {
	Code    ErrorCode
	Status  int
	Message string
	Details map[string]any
}

// Error implements the error interface.
func (e *QuickError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewInvalidRequest creates a 400 error for invalid request parameters.
func NewInvalidRequest(msg string) *QuickError {
	return &QuickError{
		Code:    ErrInvalidRequest,
		Status:  400,
		Message: msg,
	}
}

// NewNoPendingTemplate creates a 404 error for actions that need a pending template.
// state is the apply session state the action was attempted in.
func NewNoPendingTemplate(state string) *QuickError {
	return &QuickError{
		Code:    ErrNoPendingTemplate,
		Status:  404,
		Message: "no pending MR template",
		Details: map[string]any{"state": state},
	}
}

// NewSourceFetchFailed creates a 502 error when the issue source cannot be read.
func NewSourceFetchFailed(url string, err error) *QuickError {
	msg := fmt.Sprintf("failed to fetch %s", url)
	if err != nil {
		msg = fmt.Sprintf("%s: %v", msg, err)
	}
	return &QuickError{
		Code:    ErrSourceFetchFailed,
		Status:  502,
		Message: msg,
		Details: map[string]any{"url": url},
	}
}

// NewClipboardUnavailable creates a 503 error when no clipboard strategy succeeded.
func NewClipboardUnavailable() *QuickError {
	return &QuickError{
		Code:    ErrClipboardUnavailable,
		Status:  503,
		Message: "could not write to clipboard",
	}
}

// NewStorageFault creates a 507 error when the handoff store cannot be written.
// The underlying error is kept in Details for logging.
func NewStorageFault(err error) *QuickError {
	details := map[string]any{}
	msg := "failed to save MR template"
	if err != nil {
		details["storage_error"] = err.Error()
		msg = fmt.Sprintf("%s: %v", msg, err)
	}
	return &QuickError{
		Code:    ErrStorageFault,
		Status:  507,
		Message: msg,
		Details: details,
	}
}

// NewInternal creates a 500 error for unexpected internal errors.
// The message stays generic; the original error is kept in Details for logging.
func NewInternal(err error) *QuickError {
	details := map[string]any{}
	if err != nil {
		details["internal_error"] = err.Error()
	}
	return &QuickError{
		Code:    ErrInternal,
		Status:  500,
		Message: "an internal error occurred",
		Details: details,
	}
}

// Is checks if an error (or anything it wraps) is a QuickError with the given code.
func Is(err error, code ErrorCode) bool {
	var qErr *QuickError
	if stderrors.As(err, &qErr) {
		return qErr.Code == code
	}
	return false
}
