package models

import "time"

// Seat names created with every organization.
const (
	RoleNameAdmin         = "admin"
	RoleNameResident      = "resident"
	RoleNameSecurityStaff = "security_staff"
)

// OrganizationRole is a named seat scoped to one organization.
type OrganizationRole struct {
	ID             uint64    `gorm:"primarykey" json:"id"`
	OrganizationID uint64    `gorm:"not null;uniqueIndex:idx_org_roles_name,priority:1" json:"organization_id"`
	Name           string    `gorm:"type:varchar(100);not null;uniqueIndex:idx_org_roles_name,priority:2" json:"name"`
	Description    string    `gorm:"type:varchar(500)" json:"description"`
	IsAdmin        bool      `gorm:"not null;default:false" json:"is_admin"`
	CreatedAt      time.Time `json:"created_at"`
}

// DefaultRoles returns the seats seeded into a new organization.
func DefaultRoles(organizationID uint64) []OrganizationRole {
	return []OrganizationRole{
		{OrganizationID: organizationID, Name: RoleNameAdmin, Description: "Manages members, invitations and settings", IsAdmin: true},
		{OrganizationID: organizationID, Name: RoleNameResident, Description: "Lives in the property and registers visitors"},
		{OrganizationID: organizationID, Name: RoleNameSecurityStaff, Description: "Validates visitor passes at the gate"},
	}
}
