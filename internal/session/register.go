package session

import (
	"strings"

	"github.com/carbontrack/internal/errors"
	"github.com/carbontrack/internal/models"
)

// MinPasswordLength is the shortest password the registration form accepts
const MinPasswordLength = 8

// RegistrationForm is the sign-up form as the user filled it in
type RegistrationForm struct {
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
	Organization    string `json:"organization,omitempty"`
	AcceptTerms     bool   `json:"accept_terms"`
}

// Validate returns the first problem with the form
func (f RegistrationForm) Validate() error {
	switch {
	case strings.TrimSpace(f.FirstName) == "":
		return errors.NewValidationError("first_name", "first name is required")
	case strings.TrimSpace(f.LastName) == "":
		return errors.NewValidationError("last_name", "last name is required")
	case strings.TrimSpace(f.Email) == "" || !strings.Contains(f.Email, "@"):
		return errors.NewValidationError("email", "a valid email is required")
	case len(f.Password) < MinPasswordLength:
		return errors.NewValidationError("password", "password must be at least 8 characters")
	case f.Password != f.ConfirmPassword:
		return errors.NewValidationError("confirm_password", "passwords do not match")
	case !f.AcceptTerms:
		return errors.NewValidationError("accept_terms", "the terms must be accepted")
	}
	return nil
}

// Request converts the form into the API payload
func (f RegistrationForm) Request() models.RegistrationRequest {
	return models.RegistrationRequest{
		FirstName:    strings.TrimSpace(f.FirstName),
		LastName:     strings.TrimSpace(f.LastName),
		Email:        strings.TrimSpace(f.Email),
		Password:     f.Password,
		Organization: strings.TrimSpace(f.Organization),
	}
}
