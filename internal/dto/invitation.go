package dto

import (
	"time"

	"github.com/yukikurage/gatehouse-api/internal/models"
)

// InvitationDTO represents an invitation in organization-facing responses
type InvitationDTO struct {
	ID             uint64                  `json:"id"`
	OrganizationID uint64                  `json:"organization_id"`
	Email          string                  `json:"email"`
	FirstName      string                  `json:"first_name"`
	LastName       string                  `json:"last_name"`
	Role           RoleDTO                 `json:"role"`
	InvitedByID    uint64                  `json:"invited_by_id"`
	UserID         *uint64                 `json:"user_id"`
	LinkID         *uint64                 `json:"link_id"`
	Status         models.InvitationStatus `json:"status"`
	IsExpired      bool                    `json:"is_expired"`
	ExpiresAt      time.Time               `json:"expires_at"`
	AcceptedAt     *time.Time              `json:"accepted_at"`
	CreatedAt      time.Time               `json:"created_at"`
}

// InvitationResolutionDTO is what a token holder sees when opening a deep link
type InvitationResolutionDTO struct {
	Email            string                  `json:"email"`
	FirstName        string                  `json:"first_name"`
	LastName         string                  `json:"last_name"`
	OrganizationID   uint64                  `json:"organization_id"`
	OrganizationName string                  `json:"organization_name"`
	RoleName         string                  `json:"role_name"`
	Status           models.InvitationStatus `json:"status"`
	ExpiresAt        time.Time               `json:"expires_at"`
	IsExpired        bool                    `json:"is_expired"`
}

// AcceptanceDTO is returned by the accept endpoints
type AcceptanceDTO struct {
	InvitationID     uint64                  `json:"invitation_id"`
	OrganizationID   uint64                  `json:"organization_id"`
	OrganizationName string                  `json:"organization_name,omitempty"`
	RoleName         string                  `json:"role_name,omitempty"`
	Status           models.InvitationStatus `json:"status"`
	AccountCreated   bool                    `json:"account_created"`
	User             UserDTO                 `json:"user"`
}

// InviteLinkDTO represents a general invite link
type InviteLinkDTO struct {
	ID               uint64     `json:"id"`
	OrganizationID   uint64     `json:"organization_id"`
	Role             RoleDTO    `json:"role"`
	Token            string     `json:"token"`
	URL              string     `json:"url"`
	RequiresApproval bool       `json:"requires_approval"`
	ExpiresAt        *time.Time `json:"expires_at"`
	IsExpired        bool       `json:"is_expired"`
	UsageCount       int64      `json:"usage_count"`
	CreatedByID      uint64     `json:"created_by_id"`
	CreatedAt        time.Time  `json:"created_at"`
}

// InviteLinkResolutionDTO is what a link holder sees when opening it
type InviteLinkResolutionDTO struct {
	OrganizationID   uint64     `json:"organization_id"`
	OrganizationName string     `json:"organization_name"`
	RoleName         string     `json:"role_name"`
	RequiresApproval bool       `json:"requires_approval"`
	ExpiresAt        *time.Time `json:"expires_at"`
	IsExpired        bool       `json:"is_expired"`
}

// ToInvitationDTO converts an invitation with its derived expiry flag
func ToInvitationDTO(inv models.Invitation, isExpired bool) InvitationDTO {
	return InvitationDTO{
		ID:             inv.ID,
		OrganizationID: inv.OrganizationID,
		Email:          inv.Email,
		FirstName:      inv.FirstName,
		LastName:       inv.LastName,
		Role:           ToRoleDTO(inv.Role),
		InvitedByID:    inv.InvitedByID,
		UserID:         inv.UserID,
		LinkID:         inv.LinkID,
		Status:         inv.Status,
		IsExpired:      isExpired,
		ExpiresAt:      inv.ExpiresAt,
		AcceptedAt:     inv.AcceptedAt,
		CreatedAt:      inv.CreatedAt,
	}
}

// ToInvitationResolutionDTO converts a resolved invitation
func ToInvitationResolutionDTO(inv models.Invitation, isExpired bool) InvitationResolutionDTO {
	return InvitationResolutionDTO{
		Email:            inv.Email,
		FirstName:        inv.FirstName,
		LastName:         inv.LastName,
		OrganizationID:   inv.OrganizationID,
		OrganizationName: inv.Organization.Name,
		RoleName:         inv.Role.Name,
		Status:           inv.Status,
		ExpiresAt:        inv.ExpiresAt,
		IsExpired:        isExpired,
	}
}

// ToAcceptanceDTO converts the outcome of an acceptance
func ToAcceptanceDTO(inv models.Invitation, user models.User, accountCreated bool) AcceptanceDTO {
	return AcceptanceDTO{
		InvitationID:     inv.ID,
		OrganizationID:   inv.OrganizationID,
		OrganizationName: inv.Organization.Name,
		RoleName:         inv.Role.Name,
		Status:           inv.Status,
		AccountCreated:   accountCreated,
		User:             ToUserDTO(user),
	}
}

// ToInviteLinkDTO converts a link with derived fields
func ToInviteLinkDTO(link models.GeneralInviteLink, url string, usage int64, isExpired bool) InviteLinkDTO {
	return InviteLinkDTO{
		ID:               link.ID,
		OrganizationID:   link.OrganizationID,
		Role:             ToRoleDTO(link.Role),
		Token:            link.Token,
		URL:              url,
		RequiresApproval: link.RequiresApproval,
		ExpiresAt:        link.ExpiresAt,
		IsExpired:        isExpired,
		UsageCount:       usage,
		CreatedByID:      link.CreatedByID,
		CreatedAt:        link.CreatedAt,
	}
}

// ToInviteLinkResolutionDTO converts a resolved link
func ToInviteLinkResolutionDTO(link models.GeneralInviteLink, isExpired bool) InviteLinkResolutionDTO {
	return InviteLinkResolutionDTO{
		OrganizationID:   link.OrganizationID,
		OrganizationName: link.Organization.Name,
		RoleName:         link.Role.Name,
		RequiresApproval: link.RequiresApproval,
		ExpiresAt:        link.ExpiresAt,
		IsExpired:        isExpired,
	}
}
