package dto

import (
	"time"

	"github.com/yukikurage/gatehouse-api/internal/constants"
	"github.com/yukikurage/gatehouse-api/internal/models"
)

// UserDTO represents a user in API responses
type UserDTO struct {
	ID                 uint64  `json:"id"`
	Email              string  `json:"email"`
	FirstName          string  `json:"first_name"`
	LastName           string  `json:"last_name"`
	DateOfBirth        *string `json:"date_of_birth,omitempty"`
	MainOrganizationID *uint64 `json:"main_organization_id"`
}

// ToUserDTO converts a User model to UserDTO
func ToUserDTO(user models.User) UserDTO {
	return UserDTO{
		ID:                 user.ID,
		Email:              user.Email,
		FirstName:          user.Profile.FirstName,
		LastName:           user.Profile.LastName,
		DateOfBirth:        formatDate(user.Profile.DateOfBirth),
		MainOrganizationID: user.Profile.MainOrganizationID,
	}
}

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(constants.DateOfBirthLayout)
	return &s
}
