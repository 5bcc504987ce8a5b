package models

import (
	"time"
)

type InvitationStatus string

const (
	InvitationStatusPending         InvitationStatus = "pending"
	InvitationStatusPendingApproval InvitationStatus = "pending_approval"
	InvitationStatusAccepted        InvitationStatus = "accepted"
	InvitationStatusCancelled       InvitationStatus = "cancelled"
)

// IsOpen reports whether the status still waits for admission.
func (s InvitationStatus) IsOpen() bool {
	return s == InvitationStatusPending || s == InvitationStatusPendingApproval
}

const (
	slotOpen     = "open"
	slotAccepted = "accepted"
)

// Invitation admits one email address into an organization. Personal
// invitations are issued by an admin; the rest are spawned by a general link.
//
// OpenSlot and AcceptedSlot back the composite unique indexes: a row holds a
// non-NULL slot only while it is open or accepted, so at most one open and one
// accepted invitation can exist per (organization, email).
type Invitation struct {
	ID             uint64           `gorm:"primarykey" json:"id"`
	OrganizationID uint64           `gorm:"not null;uniqueIndex:idx_invitations_open,priority:1;uniqueIndex:idx_invitations_accepted,priority:1" json:"organization_id"`
	Email          string           `gorm:"type:varchar(255);not null;uniqueIndex:idx_invitations_open,priority:2;uniqueIndex:idx_invitations_accepted,priority:2" json:"email"`
	FirstName      string           `gorm:"type:varchar(100)" json:"first_name"`
	LastName       string           `gorm:"type:varchar(100)" json:"last_name"`
	RoleID         uint64           `gorm:"not null" json:"role_id"`
	InvitedByID    uint64           `gorm:"not null" json:"invited_by_id"`
	UserID         *uint64          `json:"user_id"`
	LinkID         *uint64          `gorm:"index" json:"link_id"`
	TokenHash      string           `gorm:"type:varchar(64);uniqueIndex;not null" json:"-"`
	Status         InvitationStatus `gorm:"type:varchar(20);not null;index" json:"status"`
	OpenSlot       *string          `gorm:"type:varchar(10);uniqueIndex:idx_invitations_open,priority:3" json:"-"`
	AcceptedSlot   *string          `gorm:"type:varchar(10);uniqueIndex:idx_invitations_accepted,priority:3" json:"-"`
	ExpiresAt      time.Time        `gorm:"not null" json:"expires_at"`
	AcceptedAt     *time.Time       `json:"accepted_at"`
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`

	// Relations
	Organization Organization     `gorm:"foreignKey:OrganizationID" json:"organization,omitempty"`
	Role         OrganizationRole `gorm:"foreignKey:RoleID" json:"role,omitempty"`
}

// SetStatus changes the status and keeps the uniqueness slots in sync.
func (i *Invitation) SetStatus(status InvitationStatus) {
	i.Status = status
	i.OpenSlot, i.AcceptedSlot = StatusSlots(status)
}

// IsExpired derives expiry at read time; it is never stored.
func (i *Invitation) IsExpired(now time.Time) bool {
	return now.After(i.ExpiresAt)
}

// StatusSlots returns the slot values matching a status.
func StatusSlots(status InvitationStatus) (open *string, accepted *string) {
	switch {
	case status.IsOpen():
		s := slotOpen
		return &s, nil
	case status == InvitationStatusAccepted:
		s := slotAccepted
		return nil, &s
	default:
		return nil, nil
	}
}

// StatusColumns returns the column updates for a status transition.
func StatusColumns(status InvitationStatus) map[string]interface{} {
	open, accepted := StatusSlots(status)
	return map[string]interface{}{
		"status":        status,
		"open_slot":     open,
		"accepted_slot": accepted,
	}
}
