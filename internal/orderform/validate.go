package orderform

import (
	"strings"

	"flyer-kart/internal/model"
)

// Validation is the outcome of ValidateForm.
type Validation struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors"`
}

// ValidationError carries the failed checks of a submission.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return model.ErrValidationFailed.Message + ": " + strings.Join(e.Errors, "; ")
}

func (e *ValidationError) Unwrap() error {
	return model.ErrValidationFailed
}

// validate checks the only two mandatory fields. Everything else may be
// left for staff to fill in.
func validate(s *State) Validation {
	v := Validation{Errors: []string{}}

	if strings.TrimSpace(s.Event.Date) == "" {
		v.Errors = append(v.Errors, "Event date is required")
	}
	if s.Delivery == "" {
		v.Errors = append(v.Errors, "Please select a delivery time")
	}

	v.Valid = len(v.Errors) == 0
	return v
}
