package session

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"

	"flyer-kart/internal/model"
)

// Credentials are the login form.
type Credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Registration is the sign-up form.
type Registration struct {
	FullName string `json:"fullname" validate:"required,min=2"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// OTPRequest starts a password reset.
type OTPRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// OTPVerification completes a password reset.
type OTPVerification struct {
	Email       string `json:"email" validate:"required,email"`
	Code        string `json:"code" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,min=8"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

var fieldLabels = map[string]string{
	"Email":       "Email",
	"Password":    "Password",
	"FullName":    "Name",
	"Code":        "Verification code",
	"NewPassword": "New password",
}

// checkInput validates v and reports the first failure as an INVALID_INPUT
// domain error.
func checkInput(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return model.NewDomainError(model.ErrCodeInvalidInput, err.Error())
	}

	fe := verrs[0]
	label := fieldLabels[fe.Field()]
	if label == "" {
		label = fe.Field()
	}

	var msg string
	switch fe.Tag() {
	case "required":
		msg = label + " is required"
	case "email":
		msg = "Please enter a valid email address"
	case "min":
		msg = label + " must be at least " + fe.Param() + " characters"
	default:
		msg = label + " is invalid"
	}
	return model.NewDomainError(model.ErrCodeInvalidInput, msg)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
