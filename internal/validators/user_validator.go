package validators

import (
	"regexp"
	"strings"

	apperrors "homeinsight-listings/internal/errors"
	"homeinsight-listings/internal/models"
)

var (
	emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	phonePattern = regexp.MustCompile(`^(\+\d{1,3}[- ]?)?\d{10}$`)
)

type userValidator struct{}

func NewUserValidator() UserValidator {
	return &userValidator{}
}

func (v *userValidator) ValidateRegister(user *models.User) error {
	user.FullName = strings.TrimSpace(user.FullName)
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))

	if user.FullName == "" || user.Email == "" || user.Password == "" {
		return apperrors.InvalidInput("full name, email, and password are required")
	}
	if len(user.FullName) < 2 || len(user.FullName) > 100 {
		return apperrors.InvalidInput("full name must be between 2 and 100 characters")
	}
	if len(user.Password) < 6 || len(user.Password) > 100 {
		return apperrors.InvalidInput("password must be between 6 and 100 characters")
	}
	if !emailPattern.MatchString(user.Email) {
		return apperrors.InvalidInput("invalid email format")
	}
	if user.Phone != "" && !phonePattern.MatchString(user.Phone) {
		return apperrors.InvalidInput("invalid phone format")
	}
	return nil
}

func (v *userValidator) ValidateLogin(email, password string) error {
	if email == "" || password == "" {
		return apperrors.InvalidInput("email and password are required")
	}
	if !emailPattern.MatchString(email) {
		return apperrors.InvalidInput("invalid email format")
	}
	return nil
}
