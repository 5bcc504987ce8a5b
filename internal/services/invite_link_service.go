package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/yukikurage/gatehouse-api/internal/database"
	"github.com/yukikurage/gatehouse-api/internal/models"
	"github.com/yukikurage/gatehouse-api/internal/repository"
	"github.com/yukikurage/gatehouse-api/internal/utils"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrLinkNotFound     = errors.New("invite link not found")
	ErrLinkExpired      = errors.New("invite link expired")
	ErrLinkExpiryInPast = errors.New("invite link expiry must be in the future")
)

// InviteLinkService manages reusable general invite links and the requests
// made through them.
type InviteLinkService struct {
	orgRepo        repository.OrganizationRepository
	linkRepo       repository.InviteLinkRepository
	invitationRepo repository.InvitationRepository
	accounts       *AuthService
	admitter       *Admitter
	notifications  *NotificationService
	settings       InvitationSettings
	logger         *zap.Logger
	now            func() time.Time
}

// InviteLinkServiceDeps groups the collaborators of InviteLinkService.
type InviteLinkServiceDeps struct {
	OrgRepo        repository.OrganizationRepository
	LinkRepo       repository.InviteLinkRepository
	InvitationRepo repository.InvitationRepository
	Accounts       *AuthService
	Admitter       *Admitter
	Notifications  *NotificationService
	Settings       InvitationSettings
	Logger         *zap.Logger
	Now            func() time.Time
}

// NewInviteLinkService creates a new InviteLinkService.
func NewInviteLinkService(deps InviteLinkServiceDeps) *InviteLinkService {
	return &InviteLinkService{
		orgRepo:        deps.OrgRepo,
		linkRepo:       deps.LinkRepo,
		invitationRepo: deps.InvitationRepo,
		accounts:       deps.Accounts,
		admitter:       deps.Admitter,
		notifications:  deps.Notifications,
		settings:       deps.Settings,
		logger:         deps.Logger,
		now:            deps.Now,
	}
}

// LinkView is a link with its derived usage count and expiry flag.
type LinkView struct {
	Link       *models.GeneralInviteLink
	UsageCount int64
	IsExpired  bool
}

// CreateLinkInput represents parameters to create a general invite link.
type CreateLinkInput struct {
	OrganizationID   uint64
	CreatorID        uint64
	RoleID           uint64
	RequiresApproval bool
	ExpiresAt        *time.Time
}

// Create mints a new general invite link.
func (s *InviteLinkService) Create(ctx context.Context, input CreateLinkInput) (*LinkView, error) {
	org, err := s.orgRepo.FindByID(ctx, input.OrganizationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrganizationNotFound
		}
		return nil, fmt.Errorf("failed to find organization: %w", err)
	}

	role, err := s.orgRepo.FindRole(ctx, org.ID, input.RoleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRoleNotFound
		}
		return nil, fmt.Errorf("failed to find role: %w", err)
	}

	now := s.now()
	var expiresAt *time.Time
	if input.ExpiresAt != nil {
		if !input.ExpiresAt.After(now) {
			return nil, ErrLinkExpiryInPast
		}
		utc := input.ExpiresAt.UTC()
		expiresAt = &utc
	}

	token, err := utils.GenerateToken()
	if err != nil {
		return nil, ErrTokenGenerationFailed
	}

	link := &models.GeneralInviteLink{
		OrganizationID:   org.ID,
		RoleID:           role.ID,
		Token:            token,
		RequiresApproval: input.RequiresApproval,
		ExpiresAt:        expiresAt,
		CreatedByID:      input.CreatorID,
		CreatedAt:        now,
	}
	if err := s.linkRepo.Create(ctx, link); err != nil {
		return nil, fmt.Errorf("failed to create invite link: %w", err)
	}
	link.Role = *role

	s.logger.Info("invite link created",
		zap.Uint64("organization_id", org.ID),
		zap.Uint64("link_id", link.ID),
		zap.Bool("requires_approval", link.RequiresApproval),
	)
	return &LinkView{Link: link}, nil
}

// List returns the links of an organization with usage counts.
func (s *InviteLinkService) List(ctx context.Context, orgID uint64) ([]LinkView, error) {
	links, err := s.linkRepo.ListByOrganization(ctx, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to list invite links: %w", err)
	}

	ids := make([]uint64, len(links))
	for i, link := range links {
		ids[i] = link.ID
	}
	counts, err := s.invitationRepo.CountByLinks(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to count link usage: %w", err)
	}

	now := s.now()
	views := make([]LinkView, len(links))
	for i := range links {
		views[i] = LinkView{
			Link:       &links[i],
			UsageCount: counts[links[i].ID],
			IsExpired:  links[i].IsExpired(now),
		}
	}
	return views, nil
}

// Delete removes a link. Members admitted through it are unaffected.
func (s *InviteLinkService) Delete(ctx context.Context, orgID, linkID, actorID uint64) error {
	link, err := s.linkRepo.FindByID(ctx, orgID, linkID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrLinkNotFound
		}
		return fmt.Errorf("failed to find invite link: %w", err)
	}

	if err := s.linkRepo.Delete(ctx, link.ID); err != nil {
		return fmt.Errorf("failed to delete invite link: %w", err)
	}

	s.logger.Info("invite link deleted",
		zap.Uint64("organization_id", orgID),
		zap.Uint64("link_id", linkID),
		zap.Uint64("deleted_by", actorID),
	)
	return nil
}

// Resolve looks a link up by token without changing it.
func (s *InviteLinkService) Resolve(ctx context.Context, token string) (*LinkView, error) {
	link, err := s.linkRepo.FindByToken(ctx, token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLinkNotFound
		}
		return nil, fmt.Errorf("failed to find invite link: %w", err)
	}

	counts, err := s.invitationRepo.CountByLinks(ctx, []uint64{link.ID})
	if err != nil {
		return nil, fmt.Errorf("failed to count link usage: %w", err)
	}

	return &LinkView{
		Link:       link,
		UsageCount: counts[link.ID],
		IsExpired:  link.IsExpired(s.now()),
	}, nil
}

// AcceptLinkInput carries the data submitted on a general invite link.
type AcceptLinkInput struct {
	Token         string
	Email         string
	FirstName     string
	LastName      string
	Password      string
	DateOfBirth   string
	SessionUserID *uint64
}

// AcceptLink creates an invitation derived from the link for the submitted
// account. Without approval the account is admitted right away; an admission
// failure at that point is logged and leaves the invitation pending. A signed-in
// caller may only submit the session account's email.
func (s *InviteLinkService) AcceptLink(ctx context.Context, input AcceptLinkInput) (*AcceptResult, error) {
	resolved, err := s.Resolve(ctx, input.Token)
	if err != nil {
		return nil, err
	}
	if resolved.IsExpired {
		return nil, ErrLinkExpired
	}
	link := resolved.Link
	email := NormalizeEmail(input.Email)

	account, err := s.resolveAccount(ctx, email, input)
	if err != nil {
		return nil, err
	}

	open, err := s.admitter.SupersedeExpired(ctx, link.OrganizationID, email)
	if err != nil {
		return nil, err
	}
	if len(open) > 0 {
		return nil, ErrInvitationDuplicate
	}
	if _, err := s.orgRepo.FindMember(ctx, link.OrganizationID, account.User.ID); err == nil {
		return nil, ErrAlreadyMember
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to verify membership: %w", err)
	}

	token, err := utils.GenerateToken()
	if err != nil {
		return nil, ErrTokenGenerationFailed
	}

	status := models.InvitationStatusPending
	if link.RequiresApproval {
		status = models.InvitationStatusPendingApproval
	}

	userID := account.User.ID
	linkID := link.ID
	invitation := &models.Invitation{
		OrganizationID: link.OrganizationID,
		Email:          email,
		FirstName:      account.User.Profile.FirstName,
		LastName:       account.User.Profile.LastName,
		RoleID:         link.RoleID,
		InvitedByID:    link.CreatedByID,
		UserID:         &userID,
		LinkID:         &linkID,
		TokenHash:      utils.FingerprintToken(token),
		Status:         status,
		ExpiresAt:      s.now().Add(s.settings.TTL),
	}
	if err := s.invitationRepo.Create(ctx, invitation); err != nil {
		if database.IsDuplicateError(err) {
			return nil, ErrInvitationDuplicate
		}
		return nil, fmt.Errorf("failed to create invitation: %w", err)
	}

	log := s.logger.With(
		zap.Uint64("organization_id", link.OrganizationID),
		zap.Uint64("invitation_id", invitation.ID),
		zap.Uint64("link_id", link.ID),
		zap.String("email", email),
	)

	if link.RequiresApproval {
		log.Info("membership requested through invite link")
		s.notifications.NotifyAdmins(ctx, models.NotificationMembershipRequested, invitation)
	} else {
		admitted, err := s.admitter.Admit(ctx, invitation, userID, models.InvitationStatusPending)
		if err != nil {
			// The account stays; the pending invitation is left for manual reconciliation.
			log.Error("auto admission after invite link failed", zap.Error(err))
		} else {
			invitation = admitted
			account.User = s.accounts.reload(ctx, account.User)
		}
	}

	invitation.Organization = link.Organization
	invitation.Role = link.Role
	return &AcceptResult{
		Invitation:     invitation,
		User:           account.User,
		AccountCreated: account.Created,
	}, nil
}

func (s *InviteLinkService) resolveAccount(ctx context.Context, email string, input AcceptLinkInput) (*AccountResult, error) {
	if input.SessionUserID != nil {
		user, err := s.accounts.GetUser(ctx, *input.SessionUserID)
		if err != nil {
			return nil, err
		}
		if user.Email != email {
			return nil, ErrInvitationEmailMismatch
		}
		return &AccountResult{User: user}, nil
	}

	return s.accounts.ResolveAccount(ctx, SignupInput{
		Email:       email,
		Password:    input.Password,
		FirstName:   strings.TrimSpace(input.FirstName),
		LastName:    strings.TrimSpace(input.LastName),
		DateOfBirth: input.DateOfBirth,
	})
}
