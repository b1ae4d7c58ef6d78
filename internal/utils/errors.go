package utils

import (
	"errors"
	"net/http"
)

type AppError struct {
	Code    string
	Message string
	Origin  error // Original error that caused this error, if any
}

func (appErr *AppError) Error() string {
	if appErr.Origin != nil {
		return appErr.Message + ": " + appErr.Origin.Error()
	}
	return appErr.Message
}

func (appErr *AppError) Unwrap() error {
	return appErr.Origin
}

// Standard error codes for the application
const (
	// Request shape errors
	ErrInvalidInput = "INVALID_INPUT"
	ErrValidation   = "VALIDATION_FAILED"

	// Resource errors
	ErrNotFound        = "NOT_FOUND"
	ErrUserNotFound    = "USER_NOT_FOUND"
	ErrThoughtNotFound = "THOUGHT_NOT_FOUND"

	// Username and email uniqueness is enforced by the store and reported as a
	// validation failure, not a conflict.
	ErrUniqueViolation = "UNIQUE_VIOLATION"

	// Friend-specific errors
	ErrAlreadyFriends = "ALREADY_FRIENDS"

	// Actor communication errors
	ErrActorTimeout    = "ACTOR_TIMEOUT"
	ErrMessageRejected = "MESSAGE_REJECTED"

	ErrDatabase = "database_error"
)

// Error creation helper functions
func NewAppError(code string, message string, originalErr error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Origin:  originalErr,
	}
}

func NewValidationError(message string) *AppError {
	return &AppError{
		Code:    ErrValidation,
		Message: message,
	}
}

func NewUserNotFoundError(userID string) *AppError {
	return &AppError{
		Code:    ErrUserNotFound,
		Message: "User not found: " + userID,
	}
}

func NewThoughtNotFoundError(thoughtID string) *AppError {
	return &AppError{
		Code:    ErrThoughtNotFound,
		Message: "No thought found with this ID: " + thoughtID,
	}
}

func NewDatabaseError(message string, originalErr error) *AppError {
	return &AppError{
		Code:    ErrDatabase,
		Message: message,
		Origin:  originalErr,
	}
}

func NewActorTimeoutError(actorName string) *AppError {
	return &AppError{
		Code:    ErrActorTimeout,
		Message: "Actor communication timeout: " + actorName,
	}
}

// AsAppError finds the first AppError in err's chain.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// Helper method to check if an error is of a specific type
func IsErrorCode(err error, code string) bool {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Code == code
	}
	return false
}

// IsNotFound reports whether err carries any of the not-found codes.
func IsNotFound(err error) bool {
	return IsErrorCode(err, ErrNotFound) ||
		IsErrorCode(err, ErrUserNotFound) ||
		IsErrorCode(err, ErrThoughtNotFound)
}

// AppErrorToHTTPStatus converts an AppError code to an HTTP status code.
func AppErrorToHTTPStatus(errorCode string) int {
	switch errorCode {
	case ErrNotFound, ErrUserNotFound, ErrThoughtNotFound:
		return http.StatusNotFound
	case ErrInvalidInput, ErrValidation, ErrUniqueViolation:
		return http.StatusBadRequest
	case ErrAlreadyFriends:
		return http.StatusConflict
	case ErrDatabase, ErrActorTimeout, ErrMessageRejected:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// HTTPStatus maps any error to a status; errors without an AppError are 500.
func HTTPStatus(err error) int {
	if appErr, ok := AsAppError(err); ok {
		return AppErrorToHTTPStatus(appErr.Code)
	}
	return http.StatusInternalServerError
}

// PublicMessage is the text safe to return to clients for err.
func PublicMessage(err error) string {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Message
	}
	return "Internal server error"
}
