package errors

import (
	"fmt"
	"net/http"
)

const (
	CodeValidation       = "VALIDATION_ERROR"
	CodeInvalidInput     = "INVALID_INPUT"
	CodeClassNotFound    = "CLASS_NOT_FOUND"
	CodeBookingNotFound  = "BOOKING_NOT_FOUND"
	CodeDuplicateBooking = "DUPLICATE_BOOKING"
	CodeNotFound         = "NOT_FOUND"
	CodeConflict         = "CONFLICT"
	CodeDatabase         = "DATABASE_ERROR"
	CodeInternal         = "INTERNAL_ERROR"
	CodeTimeout          = "TIMEOUT"
)

// AppError is the single error type crossing service boundaries. The Code
// field is the machine-readable kind; handlers dispatch on it (via HTTPStatus)
// rather than on concrete error types.
type AppError struct {
	Code       string         `json:"code"`
	Message    string         `json:"message"`
	HTTPStatus int            `json:"-"`
	Details    map[string]any `json:"details,omitempty"`
	Err        error          `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func (e *AppError) StatusCode() int {
	return e.HTTPStatus
}

func (e *AppError) WithDetails(details map[string]any) *AppError {
	e.Details = details
	return e
}

func New(code, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

func Validation(message string, details map[string]any) *AppError {
	return &AppError{
		Code:       CodeValidation,
		Message:    message,
		HTTPStatus: http.StatusBadRequest,
		Details:    details,
	}
}

func InvalidInput(message string) *AppError {
	return &AppError{
		Code:       CodeInvalidInput,
		Message:    message,
		HTTPStatus: http.StatusBadRequest,
	}
}

func ClassNotFound(classID string) *AppError {
	return &AppError{
		Code:       CodeClassNotFound,
		Message:    fmt.Sprintf("Class with ID %s not found", classID),
		HTTPStatus: http.StatusNotFound,
		Details:    map[string]any{"class_id": classID},
	}
}

func BookingNotFound(bookingID string) *AppError {
	return &AppError{
		Code:       CodeBookingNotFound,
		Message:    fmt.Sprintf("Booking with ID %s not found", bookingID),
		HTTPStatus: http.StatusNotFound,
		Details:    map[string]any{"booking_id": bookingID},
	}
}

func DuplicateBooking(classID, clientEmail string) *AppError {
	return &AppError{
		Code:       CodeDuplicateBooking,
		Message:    fmt.Sprintf("Client %s has already booked this class", clientEmail),
		HTTPStatus: http.StatusConflict,
		Details: map[string]any{
			"class_id":     classID,
			"client_email": clientEmail,
		},
	}
}

func NotFoundWithID(resource, id string) *AppError {
	return &AppError{
		Code:       CodeNotFound,
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
		Details: map[string]any{
			"resource": resource,
			"id":       id,
		},
	}
}

func Conflict(message string) *AppError {
	return &AppError{
		Code:       CodeConflict,
		Message:    message,
		HTTPStatus: http.StatusConflict,
	}
}

// Database wraps a storage failure. The failing operation name is kept in the
// details so it reaches the logs at the boundary.
func Database(message, operation string, err error) *AppError {
	return &AppError{
		Code:       CodeDatabase,
		Message:    fmt.Sprintf("Database error: %s", message),
		HTTPStatus: http.StatusInternalServerError,
		Details:    map[string]any{"operation": operation},
		Err:        err,
	}
}

func Internal(message string, err error) *AppError {
	return &AppError{
		Code:       CodeInternal,
		Message:    message,
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

func Timeout(message string) *AppError {
	return &AppError{
		Code:       CodeTimeout,
		Message:    message,
		HTTPStatus: http.StatusGatewayTimeout,
	}
}

func IsAppError(err error) bool {
	_, ok := err.(*AppError)
	return ok
}

func AsAppError(err error) *AppError {
	if appErr, ok := err.(*AppError); ok {
		return appErr
	}
	return Internal("An unexpected error occurred", err)
}
