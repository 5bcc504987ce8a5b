package models

import "time"

// GeneralInviteLink is a reusable, role-bound token.
type GeneralInviteLink struct {
	ID               uint64     `gorm:"primarykey" json:"id"`
	OrganizationID   uint64     `gorm:"not null;index" json:"organization_id"`
	RoleID           uint64     `gorm:"not null" json:"role_id"`
	Token            string     `gorm:"type:varchar(64);uniqueIndex;not null" json:"-"`
	RequiresApproval bool       `gorm:"not null;default:false" json:"requires_approval"`
	ExpiresAt        *time.Time `json:"expires_at"`
	CreatedByID      uint64     `gorm:"not null" json:"created_by_id"`
	CreatedAt        time.Time  `json:"created_at"`

	// Relations
	Organization Organization     `gorm:"foreignKey:OrganizationID" json:"organization,omitempty"`
	Role         OrganizationRole `gorm:"foreignKey:RoleID" json:"role,omitempty"`
}

// IsExpired reports whether the link has an expiry that lies before now.
func (l *GeneralInviteLink) IsExpired(now time.Time) bool {
	return l.ExpiresAt != nil && now.After(*l.ExpiresAt)
}
