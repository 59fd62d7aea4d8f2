package errors

import (
	"errors"
	"net/http"
)

var (
	// ErrMarathonNotFound is returned when a marathon id does not resolve.
	ErrMarathonNotFound = errors.New("marathon not found")
	// ErrCategoryNotFound is returned when a category does not belong to the marathon.
	ErrCategoryNotFound = errors.New("category not found for this marathon")
	// ErrParticipationNotFound is returned when no registration exists for the pair.
	ErrParticipationNotFound = errors.New("participation not found")
	// ErrUserNotFound is returned when a user id does not resolve.
	ErrUserNotFound = errors.New("user not found")
	// ErrForbidden is returned when the caller is authenticated but not authorized.
	ErrForbidden = errors.New("forbidden")
	// ErrAuthRequired is returned when an anonymous caller hits an authenticated resource.
	ErrAuthRequired = errors.New("authentication required")
	// ErrDuplicateRegistration is returned when the uniqueness guard rejects a second registration.
	ErrDuplicateRegistration = errors.New("already registered for this marathon")
	// ErrInvitationCodeTaken is returned when an invitation code is already in use.
	ErrInvitationCodeTaken = errors.New("invitation code is already in use")
	// ErrUnusedInvitationExists is returned when an unused invitation already exists for the email.
	ErrUnusedInvitationExists = errors.New("an unused invitation already exists for this email")
	// ErrInvalidInvitation is returned when a signup code is missing, used, or bound to another email.
	ErrInvalidInvitation = errors.New("invalid or used invitation code")
)

// ValidationError carries a human-readable message for malformed input.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError creates a ValidationError with the given message.
func NewValidationError(message string) *ValidationError {
	return &ValidationError{Message: message}
}

// ErrorResponse represents a standardized error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
	Code       string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message, code string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		Code:       code,
	}
}

// ToErrorResponse converts an HTTPError to ErrorResponse.
func (e *HTTPError) ToErrorResponse() ErrorResponse {
	return ErrorResponse{
		Error: e.Message,
		Code:  e.Code,
	}
}

// MapErrorToHTTP maps domain errors to HTTP errors. Internal details never
// reach the caller; unknown errors collapse to a generic 500.
func MapErrorToHTTP(err error) *HTTPError {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return NewHTTPError(http.StatusBadRequest, ve.Message, "VALIDATION_ERROR")
	}

	switch {
	case errors.Is(err, ErrMarathonNotFound):
		return NewHTTPError(http.StatusNotFound, err.Error(), "MARATHON_NOT_FOUND")
	case errors.Is(err, ErrCategoryNotFound):
		return NewHTTPError(http.StatusNotFound, err.Error(), "CATEGORY_NOT_FOUND")
	case errors.Is(err, ErrParticipationNotFound):
		return NewHTTPError(http.StatusNotFound, err.Error(), "PARTICIPATION_NOT_FOUND")
	case errors.Is(err, ErrUserNotFound):
		return NewHTTPError(http.StatusNotFound, err.Error(), "USER_NOT_FOUND")
	case errors.Is(err, ErrAuthRequired):
		return NewHTTPError(http.StatusUnauthorized, err.Error(), "AUTH_REQUIRED")
	case errors.Is(err, ErrForbidden):
		return NewHTTPError(http.StatusForbidden, err.Error(), "FORBIDDEN")
	case errors.Is(err, ErrDuplicateRegistration):
		return NewHTTPError(http.StatusConflict, err.Error(), "ALREADY_REGISTERED")
	case errors.Is(err, ErrInvitationCodeTaken):
		return NewHTTPError(http.StatusConflict, err.Error(), "CODE_TAKEN")
	case errors.Is(err, ErrUnusedInvitationExists):
		return NewHTTPError(http.StatusConflict, err.Error(), "INVITATION_EXISTS")
	case errors.Is(err, ErrInvalidInvitation):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "INVALID_INVITATION")
	default:
		return NewHTTPError(http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
	}
}
