package models

import "time"

type NotificationKind string

const (
	NotificationMembershipRequested NotificationKind = "membership_requested"
	NotificationMembershipApproved  NotificationKind = "membership_approved"
	NotificationInvitationAccepted  NotificationKind = "invitation_accepted"
)

type Notification struct {
	ID             uint64           `gorm:"primarykey" json:"id"`
	UserID         uint64           `gorm:"not null;index" json:"user_id"`
	OrganizationID uint64           `gorm:"not null" json:"organization_id"`
	Kind           NotificationKind `gorm:"type:varchar(50);not null" json:"kind"`
	InvitationID   *uint64          `json:"invitation_id"`
	Email          string           `gorm:"type:varchar(255)" json:"email"`
	ReadAt         *time.Time       `json:"read_at"`
	CreatedAt      time.Time        `gorm:"index" json:"created_at"`

	// Relations
	Organization Organization `gorm:"foreignKey:OrganizationID" json:"organization,omitempty"`
}
