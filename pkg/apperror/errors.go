package apperror

import (
	"fmt"
	"net/http"
)

// AppError is a structured error that maps to HTTP responses.
type AppError struct {
	Code       string `json:"error_code"`
	Message    string `json:"detail"`
	HTTPStatus int    `json:"-"`
	Err        error  `json:"-"` // Wrapped internal error (not exposed to client)
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is matches any *AppError carrying the same code, so callers can write
// errors.Is(err, apperror.ErrTemplateLoadFailed(nil)).
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// New creates a new AppError.
func New(code string, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// Wrap wraps an internal error with an AppError.
func Wrap(code string, message string, httpStatus int, err error) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

// ---- Validation (VAL) ----

func ErrMissingField() *AppError {
	return New("VAL_001", "Please fill in all required fields", http.StatusBadRequest)
}

func ErrNoPaymentMethod() *AppError {
	return New("VAL_002", "At least one payment method must be selected", http.StatusBadRequest)
}

func ErrMissingChequeNumber() *AppError {
	return New("VAL_003", "Cheque number is required when cheque payment is selected", http.StatusBadRequest)
}

func ErrInvalidAmount() *AppError {
	return New("VAL_004", "Amount must be a number greater than 0", http.StatusBadRequest)
}

// Validation returns a generic VAL_000 error for malformed input.
func Validation(message string) *AppError {
	return New("VAL_000", message, http.StatusBadRequest)
}

// ---- Rendering (RND) ----

func ErrTemplateLoadFailed(err error) *AppError {
	return Wrap("RND_001", "Receipt template could not be loaded", http.StatusInternalServerError, err)
}

func ErrEncodingFailed(err error) *AppError {
	return Wrap("RND_002", "Receipt image could not be encoded", http.StatusInternalServerError, err)
}

// ---- Remote renderer (REM) ----

// ErrRemote reports a failure returned by a remote generation endpoint.
// The remote detail is passed through verbatim when present. Client errors
// keep the remote status; anything else surfaces as 502.
func ErrRemote(status int, detail string) *AppError {
	if detail == "" {
		detail = fmt.Sprintf("remote renderer returned HTTP %d", status)
	}
	httpStatus := http.StatusBadGateway
	if status >= 400 && status < 500 {
		httpStatus = status
	}
	return Wrap("REM_001", detail, httpStatus, &RemoteStatusError{Status: status})
}

// RemoteStatusError carries the upstream status behind a REM_001 error.
type RemoteStatusError struct {
	Status int
}

func (e *RemoteStatusError) Error() string {
	return fmt.Sprintf("remote renderer status %d", e.Status)
}

func ErrRemoteUnavailable(err error) *AppError {
	return Wrap("REM_002", "Remote renderer unavailable", http.StatusBadGateway, err)
}

// ---- Sequence counter (SEQ) ----

func ErrCounterFailure(err error) *AppError {
	return Wrap("SEQ_001", "Receipt counter unavailable", http.StatusServiceUnavailable, err)
}

// ---- Rate Limiting (RATE) ----

func ErrRateLimitExceeded() *AppError {
	return New("RATE_001", "Rate limit exceeded", http.StatusTooManyRequests)
}

// ---- System & Infrastructure (SYS) ----

// InternalError wraps an internal error as a SYS_001 error.
func InternalError(err error) *AppError {
	return Wrap("SYS_001", "Internal server error", http.StatusInternalServerError, err)
}

func ErrPayloadTooLarge() *AppError {
	return New("SYS_002", "Request body too large", http.StatusRequestEntityTooLarge)
}
