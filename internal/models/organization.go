package models

import (
	"time"
)

type OrganizationType string

const (
	OrganizationTypeResidential OrganizationType = "residential"
	OrganizationTypeCondominium OrganizationType = "condominium"
	OrganizationTypeOffice      OrganizationType = "office"
	OrganizationTypeOther       OrganizationType = "other"
)

// Valid reports whether t is a known organization type.
func (t OrganizationType) Valid() bool {
	switch t {
	case OrganizationTypeResidential, OrganizationTypeCondominium, OrganizationTypeOffice, OrganizationTypeOther:
		return true
	}
	return false
}

type Organization struct {
	ID        uint64           `gorm:"primarykey" json:"id"`
	Name      string           `gorm:"type:varchar(255);not null" json:"name"`
	Type      OrganizationType `gorm:"type:varchar(50);not null;default:'residential'" json:"type"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`

	// Relations
	Roles   []OrganizationRole   `gorm:"foreignKey:OrganizationID" json:"roles,omitempty"`
	Members []OrganizationMember `gorm:"foreignKey:OrganizationID" json:"members,omitempty"`
}
