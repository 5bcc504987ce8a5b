package models

import "time"

type OrganizationMember struct {
	OrganizationID uint64    `gorm:"primarykey" json:"organization_id"`
	UserID         uint64    `gorm:"primarykey;index" json:"user_id"`
	RoleID         uint64    `gorm:"not null;index" json:"role_id"`
	InvitedByID    *uint64   `json:"invited_by_id"`
	JoinedAt       time.Time `json:"joined_at"`

	// Relations
	Organization Organization     `gorm:"foreignKey:OrganizationID" json:"organization,omitempty"`
	User         User             `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Role         OrganizationRole `gorm:"foreignKey:RoleID" json:"role,omitempty"`
}
