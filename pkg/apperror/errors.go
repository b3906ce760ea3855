package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError is a structured error that maps to HTTP responses.
type AppError struct {
	Code       string         `json:"error_code"`
	Message    string         `json:"message"`
	HTTPStatus int            `json:"-"`
	Details    map[string]any `json:"details,omitempty"`
	Err        error          `json:"-"` // Wrapped internal error (not exposed to client)
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

// WithDetail attaches a client-visible detail to the error and returns it.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any, 1)
	}
	e.Details[key] = value
	return e
}

// Is reports whether err carries an AppError with the given code.
func Is(err error, code string) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// StatusDetail returns the "status" detail carried by DuplicateRequest and
// AlreadyResolved errors.
func StatusDetail(err error) (string, bool) {
	var appErr *AppError
	if !errors.As(err, &appErr) || appErr.Details == nil {
		return "", false
	}
	s, ok := appErr.Details["status"].(string)
	return s, ok
}

// Error codes.
const (
	CodePaymentNotFound      = "RFD_001"
	CodeNotAuthorized        = "RFD_002"
	CodeDuplicateRequest     = "RFD_003"
	CodeForbidden            = "RFD_004"
	CodeNotFound             = "RFD_005"
	CodeAlreadyResolved      = "RFD_006"
	CodeValidation           = "RFD_007"
	CodeGateway              = "RFD_008"
	CodeRefundInProgress     = "RFD_009"
	CodePaymentNotRefundable = "RFD_010"

	CodeInvalidToken = "AUTH_001"
	CodeRateLimit    = "RATE_001"
	CodeInternal     = "SYS_001"
	CodeUnavailable  = "SYS_002"
)

// ---- Refund workflow (RFD) ----

func ErrPaymentNotFound() *AppError {
	return New(CodePaymentNotFound, "Payment not found", http.StatusNotFound)
}

func ErrNotAuthorized() *AppError {
	return New(CodeNotAuthorized, "Payment does not belong to the caller", http.StatusForbidden)
}

func ErrDuplicateRequest(status string) *AppError {
	return New(CodeDuplicateRequest, "A refund request already exists for this payment", http.StatusConflict).
		WithDetail("status", status)
}

func ErrForbidden() *AppError {
	return New(CodeForbidden, "Admin privileges required", http.StatusForbidden)
}

func ErrNotFound(entity string) *AppError {
	return New(CodeNotFound, fmt.Sprintf("%s not found", entity), http.StatusNotFound)
}

func ErrAlreadyResolved(status string) *AppError {
	return New(CodeAlreadyResolved, "Refund request has already been resolved", http.StatusConflict).
		WithDetail("status", status)
}

// Validation returns a RFD_007 validation error.
func Validation(message string) *AppError {
	return New(CodeValidation, message, http.StatusBadRequest)
}

func ErrGateway(err error) *AppError {
	return Wrap(CodeGateway, "Payment gateway request failed", http.StatusBadGateway, err)
}

func ErrRefundInProgress() *AppError {
	return New(CodeRefundInProgress, "Another refund operation for this payment is in progress", http.StatusConflict)
}

func ErrPaymentNotRefundable(gatewayStatus string) *AppError {
	return New(CodePaymentNotRefundable, "Payment is not in a refundable state", http.StatusUnprocessableEntity).
		WithDetail("gateway_status", gatewayStatus)
}

// ---- Authentication (AUTH) ----

func ErrInvalidToken() *AppError {
	return New(CodeInvalidToken, "Invalid or expired token", http.StatusUnauthorized)
}

// ---- Rate Limiting (RATE) ----

func ErrRateLimitExceeded() *AppError {
	return New(CodeRateLimit, "Rate limit exceeded", http.StatusTooManyRequests)
}

// ---- System & Infrastructure (SYS) ----

// InternalError wraps an internal error as a SYS_001 error.
func InternalError(err error) *AppError {
	return Wrap(CodeInternal, "Internal server error", http.StatusInternalServerError, err)
}

func ErrLockUnavailable(err error) *AppError {
	return Wrap(CodeUnavailable, "Lock service unavailable", http.StatusServiceUnavailable, err)
}
