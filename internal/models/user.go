package models

import (
	"time"
)

type User struct {
	ID           uint64    `gorm:"primarykey" json:"id"`
	Email        string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"type:varchar(255);not null" json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	// Relations
	Profile       Profile              `gorm:"foreignKey:UserID" json:"profile,omitempty"`
	Organizations []OrganizationMember `gorm:"foreignKey:UserID" json:"-"`
}

// Profile is the locally owned identity data of an account.
type Profile struct {
	UserID             uint64     `gorm:"primarykey;autoIncrement:false" json:"user_id"`
	FirstName          string     `gorm:"type:varchar(100)" json:"first_name"`
	LastName           string     `gorm:"type:varchar(100)" json:"last_name"`
	DateOfBirth        *time.Time `json:"date_of_birth"`
	MainOrganizationID *uint64    `json:"main_organization_id"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}
