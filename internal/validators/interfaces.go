package validators

import (
	"homeinsight-listings/internal/models"
)

type ListingValidator interface {
	ValidateCreate(input *models.ListingInput) error
	ValidatePatch(patch *models.ListingPatch) error
}

type UserValidator interface {
	ValidateRegister(user *models.User) error
	ValidateLogin(email, password string) error
}
