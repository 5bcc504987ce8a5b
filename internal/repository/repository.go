package repository

import (
	"context"
	"time"

	"github.com/yukikurage/gatehouse-api/internal/models"
	"github.com/yukikurage/gatehouse-api/internal/utils"
)

// OrganizationRepository defines the interface for organization, seat and
// membership data access
type OrganizationRepository interface {
	// CreateWithFounder creates the organization, seeds its default roles and
	// admits the founder as admin in a single transaction
	CreateWithFounder(ctx context.Context, org *models.Organization, founderID uint64, joinedAt time.Time) error

	// FindByID finds an organization by ID
	FindByID(ctx context.Context, id uint64) (*models.Organization, error)

	// Delete deletes an organization and everything scoped to it
	Delete(ctx context.Context, id uint64) error

	// FindRole finds a role that belongs to the organization
	FindRole(ctx context.Context, organizationID, roleID uint64) (*models.OrganizationRole, error)

	// ListRoles lists the roles of an organization
	ListRoles(ctx context.Context, organizationID uint64) ([]models.OrganizationRole, error)

	// FindMember finds a specific organization member, role preloaded
	FindMember(ctx context.Context, organizationID, userID uint64) (*models.OrganizationMember, error)

	// ListMembers lists all members of an organization
	ListMembers(ctx context.Context, organizationID uint64) ([]models.OrganizationMember, error)

	// ListMembershipsByUserID lists all organizations a user is a member of
	ListMembershipsByUserID(ctx context.Context, userID uint64) ([]models.OrganizationMember, error)

	// ListAdminUserIDs lists the users holding an admin role
	ListAdminUserIDs(ctx context.Context, organizationID uint64) ([]uint64, error)

	// CountMembers counts the members of an organization
	CountMembers(ctx context.Context, organizationID uint64) (int64, error)

	// RemoveMember removes a member unless that would leave no admin
	RemoveMember(ctx context.Context, organizationID, userID uint64) error
}

// UserRepository defines the interface for account data access
type UserRepository interface {
	// CreateWithProfile creates a user and its profile within a single transaction
	CreateWithProfile(ctx context.Context, user *models.User, profile *models.Profile) error

	// FindByID finds a user by ID with the profile preloaded
	FindByID(ctx context.Context, id uint64) (*models.User, error)

	// FindByEmail finds a user by normalized email
	FindByEmail(ctx context.Context, email string) (*models.User, error)

	// FindProfile finds the profile of a user
	FindProfile(ctx context.Context, userID uint64) (*models.Profile, error)

	// SetMainOrganization updates the main organization pointer; nil clears it
	SetMainOrganization(ctx context.Context, userID uint64, organizationID *uint64) error
}

// InvitationRepository defines the interface for invitation data access
type InvitationRepository interface {
	// Create stores a new invitation
	Create(ctx context.Context, invitation *models.Invitation) error

	// FindByID finds an invitation by ID
	FindByID(ctx context.Context, id uint64) (*models.Invitation, error)

	// FindByTokenHash finds an invitation by token fingerprint with organization and role preloaded
	FindByTokenHash(ctx context.Context, tokenHash string) (*models.Invitation, error)

	// FindOpen finds invitations waiting for admission for an email
	FindOpen(ctx context.Context, organizationID uint64, email string) ([]models.Invitation, error)

	// ListByOrganization lists all invitations of an organization, newest first
	ListByOrganization(ctx context.Context, organizationID uint64) ([]models.Invitation, error)

	// UpdateStatus sets the status of the given invitations
	UpdateStatus(ctx context.Context, ids []uint64, status models.InvitationStatus) error

	// Transition moves one invitation from one status to another. It fails
	// with ErrInvitationNotAdmissible when the invitation is no longer in from.
	Transition(ctx context.Context, id uint64, from, to models.InvitationStatus) error

	// Delete hard deletes an invitation
	Delete(ctx context.Context, id uint64) error

	// CancelStaleAccepted cancels other accepted invitations for the same
	// organization and email that are visible to the user
	CancelStaleAccepted(ctx context.Context, organizationID uint64, email string, exceptID, visibleTo uint64) (int64, error)

	// PurgeStaleAccepted deletes other accepted invitations for the same
	// organization and email regardless of visibility
	PurgeStaleAccepted(ctx context.Context, organizationID uint64, email string, exceptID uint64) (int64, error)

	// CountByLinks counts the invitations spawned from each link
	CountByLinks(ctx context.Context, linkIDs []uint64) (map[uint64]int64, error)
}

// InviteLinkRepository defines the interface for general invite link data access
type InviteLinkRepository interface {
	// Create stores a new link
	Create(ctx context.Context, link *models.GeneralInviteLink) error

	// FindByToken finds a link by token with organization and role preloaded
	FindByToken(ctx context.Context, token string) (*models.GeneralInviteLink, error)

	// FindByID finds a link of an organization
	FindByID(ctx context.Context, organizationID, id uint64) (*models.GeneralInviteLink, error)

	// ListByOrganization lists the links of an organization, newest first
	ListByOrganization(ctx context.Context, organizationID uint64) ([]models.GeneralInviteLink, error)

	// Delete deletes a link
	Delete(ctx context.Context, id uint64) error
}

// AdmitParams describes one admission attempt.
type AdmitParams struct {
	InvitationID uint64
	UserID       uint64
	// FromStatuses lists the statuses the invitation may be admitted from.
	FromStatuses []models.InvitationStatus
	Now          time.Time
}

// AdmissionRepository runs the atomic admission step: re-validate the
// invitation, flip it to accepted and insert the membership, all or nothing.
type AdmissionRepository interface {
	Admit(ctx context.Context, params AdmitParams) (*models.Invitation, *models.OrganizationMember, error)
}

// NotificationRepository defines the interface for notification data access
type NotificationRepository interface {
	// CreateBatch stores notifications
	CreateBatch(ctx context.Context, notifications []models.Notification) error

	// List retrieves notifications with filtering and pagination
	List(ctx context.Context, filter NotificationFilter) ([]models.Notification, int64, error)

	// MarkRead marks a notification of the user as read
	MarkRead(ctx context.Context, id, userID uint64, at time.Time) error
}

// NotificationFilter holds filtering options for listing notifications
type NotificationFilter struct {
	UserID     uint64
	UnreadOnly bool
	Pagination utils.PaginationParams
}
