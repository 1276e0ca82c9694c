package model

// ErrorResponse represents a standardised error response.
type ErrorResponse struct {
	Error   string   `json:"error"`
	Message string   `json:"message"`
	Details []string `json:"details,omitempty"`
}

// Standard error codes for API responses
const (
	ErrCodeInvalidJSON         = "INVALID_JSON"
	ErrCodeFlyerNotFound       = "FLYER_NOT_FOUND"
	ErrCodeInvalidPrice        = "INVALID_PRICE"
	ErrCodeMaxReached          = "MAX_REACHED"
	ErrCodeMinReached          = "MIN_REACHED"
	ErrCodeIndexOutOfRange     = "INDEX_OUT_OF_RANGE"
	ErrCodePhotoNotSupported   = "PHOTO_NOT_SUPPORTED"
	ErrCodeUnknownField        = "UNKNOWN_FIELD"
	ErrCodeUnknownOption       = "UNKNOWN_OPTION"
	ErrCodeFormNotLoaded       = "FORM_NOT_LOADED"
	ErrCodeValidationFailed    = "VALIDATION_FAILED"
	ErrCodeSubmissionInFlight  = "SUBMISSION_IN_FLIGHT"
	ErrCodeTogglePending       = "TOGGLE_PENDING"
	ErrCodeUnauthorised        = "UNAUTHORIZED"
	ErrCodeInvalidInput        = "INVALID_INPUT"
	ErrCodeAccountNotFound     = "ACCOUNT_NOT_FOUND"
	ErrCodeWrongCredentials    = "WRONG_CREDENTIALS"
	ErrCodeEmailNotVerified    = "EMAIL_NOT_VERIFIED"
	ErrCodeRateLimited         = "RATE_LIMITED"
	ErrCodeNetwork             = "NETWORK_ERROR"
	ErrCodeAccountExists       = "ACCOUNT_EXISTS"
	ErrCodeInvalidCode         = "INVALID_CODE"
	ErrCodeExpiredCode         = "EXPIRED_CODE"
	ErrCodeWeakPassword        = "WEAK_PASSWORD"
	ErrCodeProvider            = "PROVIDER_ERROR"
	ErrCodeUpstreamUnavailable = "UPSTREAM_UNAVAILABLE"
	ErrCodeInternalError       = "INTERNAL_ERROR"
)

// DomainError is a business error carrying a stable code and a user-facing message.
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

// Is matches domain errors by code so wrapped copies compare equal to the sentinels.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrFlyerNotFound       = NewDomainError(ErrCodeFlyerNotFound, "Flyer not found")
	ErrInvalidPrice        = NewDomainError(ErrCodeInvalidPrice, "Flyer price is missing or malformed")
	ErrMaxReached          = NewDomainError(ErrCodeMaxReached, "Maximum number of entries reached")
	ErrMinReached          = NewDomainError(ErrCodeMinReached, "At least one entry is required")
	ErrIndexOutOfRange     = NewDomainError(ErrCodeIndexOutOfRange, "Entry does not exist")
	ErrPhotoNotSupported   = NewDomainError(ErrCodePhotoNotSupported, "This slot does not accept photos")
	ErrUnknownField        = NewDomainError(ErrCodeUnknownField, "Unknown form field")
	ErrUnknownOption       = NewDomainError(ErrCodeUnknownOption, "Unknown option")
	ErrFormNotLoaded       = NewDomainError(ErrCodeFormNotLoaded, "No flyer selected")
	ErrValidationFailed    = NewDomainError(ErrCodeValidationFailed, "Please complete the required fields")
	ErrSubmissionInFlight  = NewDomainError(ErrCodeSubmissionInFlight, "Your order is already being submitted")
	ErrTogglePending       = NewDomainError(ErrCodeTogglePending, "Favorite update already in progress")
	ErrNotAuthenticated    = NewDomainError(ErrCodeUnauthorised, "Please sign in to continue")
	ErrUpstreamUnavailable = NewDomainError(ErrCodeUpstreamUnavailable, "Service temporarily unavailable")
)
