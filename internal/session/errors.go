package session

import (
	"context"
	"errors"
	"net"
	"strings"

	"github.com/aws/smithy-go"

	"flyer-kart/internal/model"
)

// Auth errors shown to the customer.
var (
	ErrAccountNotFound  = model.NewDomainError(model.ErrCodeAccountNotFound, "No account found with this email")
	ErrWrongCredentials = model.NewDomainError(model.ErrCodeWrongCredentials, "Incorrect email or password")
	ErrEmailNotVerified = model.NewDomainError(model.ErrCodeEmailNotVerified, "Please verify your email before signing in")
	ErrRateLimited      = model.NewDomainError(model.ErrCodeRateLimited, "Too many attempts. Please try again later")
	ErrNetwork          = model.NewDomainError(model.ErrCodeNetwork, "Network error. Please check your connection and try again")
	ErrAccountExists    = model.NewDomainError(model.ErrCodeAccountExists, "An account with this email already exists")
	ErrInvalidCode      = model.NewDomainError(model.ErrCodeInvalidCode, "Invalid verification code")
	ErrExpiredCode      = model.NewDomainError(model.ErrCodeExpiredCode, "Verification code has expired. Please request a new one")
	ErrWeakPassword     = model.NewDomainError(model.ErrCodeWeakPassword, "Password does not meet the requirements")
)

var errorsByCode = map[string]*model.DomainError{
	"UserNotFoundException":          ErrAccountNotFound,
	"NotAuthorizedException":         ErrWrongCredentials,
	"UserNotConfirmedException":      ErrEmailNotVerified,
	"PasswordResetRequiredException": ErrWrongCredentials,
	"TooManyRequestsException":       ErrRateLimited,
	"TooManyFailedAttemptsException": ErrRateLimited,
	"LimitExceededException":         ErrRateLimited,
	"UsernameExistsException":        ErrAccountExists,
	"AliasExistsException":           ErrAccountExists,
	"CodeMismatchException":          ErrInvalidCode,
	"ExpiredCodeException":           ErrExpiredCode,
	"InvalidPasswordException":       ErrWeakPassword,
}

// Cognito reuses some codes for different conditions; these messages
// override the code mapping.
var errorsByCodeMessage = []struct {
	code   string
	needle string
	err    *model.DomainError
}{
	{"NotAuthorizedException", "attempts exceeded", ErrRateLimited},
}

// Ordered so that more specific phrases are checked first.
var errorsBySubstring = []struct {
	needle string
	err    *model.DomainError
}{
	{"user does not exist", ErrAccountNotFound},
	{"user not found", ErrAccountNotFound},
	{"not confirmed", ErrEmailNotVerified},
	{"not verified", ErrEmailNotVerified},
	{"incorrect username or password", ErrWrongCredentials},
	{"invalid credentials", ErrWrongCredentials},
	{"not authorized", ErrWrongCredentials},
	{"too many", ErrRateLimited},
	{"attempts exceeded", ErrRateLimited},
	{"limit exceeded", ErrRateLimited},
	{"rate limit", ErrRateLimited},
	{"already exists", ErrAccountExists},
	{"invalid verification code", ErrInvalidCode},
	{"code mismatch", ErrInvalidCode},
	{"expired", ErrExpiredCode},
	{"password did not conform", ErrWeakPassword},
	{"password policy", ErrWeakPassword},
	{"network", ErrNetwork},
	{"connection refused", ErrNetwork},
	{"no such host", ErrNetwork},
}

// translate rewrites a provider error into the fixed auth vocabulary.
// Unrecognized errors keep the provider's message. Context errors pass through.
func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	var domainErr *model.DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		lower := strings.ToLower(apiErr.ErrorMessage())
		for _, m := range errorsByCodeMessage {
			if apiErr.ErrorCode() == m.code && strings.Contains(lower, m.needle) {
				return m.err
			}
		}
		if mapped, ok := errorsByCode[apiErr.ErrorCode()]; ok {
			return mapped
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return ErrNetwork
	}

	msg := err.Error()
	if apiErr != nil && apiErr.ErrorMessage() != "" {
		msg = apiErr.ErrorMessage()
	}

	lower := strings.ToLower(msg)
	for _, m := range errorsBySubstring {
		if strings.Contains(lower, m.needle) {
			return m.err
		}
	}

	return model.NewDomainError(model.ErrCodeProvider, msg)
}
