package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/yukikurage/gatehouse-api/internal/database"
	"github.com/yukikurage/gatehouse-api/internal/i18n"
	"github.com/yukikurage/gatehouse-api/internal/mailer"
	"github.com/yukikurage/gatehouse-api/internal/models"
	"github.com/yukikurage/gatehouse-api/internal/repository"
	"github.com/yukikurage/gatehouse-api/internal/utils"
	"go.uber.org/zap"
	"golang.org/x/text/language"
	"gorm.io/gorm"
)

var (
	ErrInvitationDuplicate     = errors.New("an open invitation already exists for this email")
	ErrInvitationEmailFailed   = errors.New("invitation email could not be delivered")
	ErrInvitationEmailMismatch = errors.New("invitation belongs to a different email")
	ErrTokenGenerationFailed   = errors.New("failed to generate token")
)

// InvitationSettings holds the deployment values used when issuing invitations.
type InvitationSettings struct {
	FrontendURL string
	MailFrom    string
	TTL         time.Duration
}

// InvitationService issues, resolves and accepts personal invitations and
// moderates requests that arrived through general invite links.
type InvitationService struct {
	orgRepo        repository.OrganizationRepository
	userRepo       repository.UserRepository
	invitationRepo repository.InvitationRepository
	accounts       *AuthService
	admitter       *Admitter
	notifications  *NotificationService
	sender         mailer.Sender
	settings       InvitationSettings
	logger         *zap.Logger
	now            func() time.Time
}

// InvitationServiceDeps groups the collaborators of InvitationService.
type InvitationServiceDeps struct {
	OrgRepo        repository.OrganizationRepository
	UserRepo       repository.UserRepository
	InvitationRepo repository.InvitationRepository
	Accounts       *AuthService
	Admitter       *Admitter
	Notifications  *NotificationService
	Sender         mailer.Sender
	Settings       InvitationSettings
	Logger         *zap.Logger
	Now            func() time.Time
}

// NewInvitationService creates a new InvitationService.
func NewInvitationService(deps InvitationServiceDeps) *InvitationService {
	return &InvitationService{
		orgRepo:        deps.OrgRepo,
		userRepo:       deps.UserRepo,
		invitationRepo: deps.InvitationRepo,
		accounts:       deps.Accounts,
		admitter:       deps.Admitter,
		notifications:  deps.Notifications,
		sender:         deps.Sender,
		settings:       deps.Settings,
		logger:         deps.Logger,
		now:            deps.Now,
	}
}

// IssueInvitationInput represents parameters to invite someone by email.
type IssueInvitationInput struct {
	OrganizationID uint64
	InviterID      uint64
	Email          string
	FirstName      string
	LastName       string
	RoleID         uint64
	Locale         language.Tag
}

// Issue persists a personal invitation and emails its deep link. When the
// email cannot be delivered the invitation is deleted again.
func (s *InvitationService) Issue(ctx context.Context, input IssueInvitationInput) (*models.Invitation, error) {
	email := NormalizeEmail(input.Email)

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

	open, err := s.admitter.SupersedeExpired(ctx, org.ID, email)
	if err != nil {
		return nil, err
	}
	if len(open) > 0 {
		return nil, ErrInvitationDuplicate
	}

	if err := s.ensureNotMember(ctx, org.ID, email); err != nil {
		return nil, err
	}

	token, err := utils.GenerateToken()
	if err != nil {
		return nil, ErrTokenGenerationFailed
	}

	now := s.now()
	invitation := &models.Invitation{
		OrganizationID: org.ID,
		Email:          email,
		FirstName:      strings.TrimSpace(input.FirstName),
		LastName:       strings.TrimSpace(input.LastName),
		RoleID:         role.ID,
		InvitedByID:    input.InviterID,
		TokenHash:      utils.FingerprintToken(token),
		Status:         models.InvitationStatusPending,
		ExpiresAt:      now.Add(s.settings.TTL),
	}

	if err := s.invitationRepo.Create(ctx, invitation); err != nil {
		if database.IsDuplicateError(err) {
			return nil, ErrInvitationDuplicate
		}
		return nil, fmt.Errorf("failed to create invitation: %w", err)
	}

	log := s.logger.With(
		zap.Uint64("organization_id", org.ID),
		zap.Uint64("invitation_id", invitation.ID),
		zap.String("email", email),
	)

	if err := s.sendInvitationEmail(ctx, invitation, org, role, token, input.Locale, now); err != nil {
		log.Error("invitation email failed, deleting invitation", zap.Error(err))
		if delErr := s.invitationRepo.Delete(ctx, invitation.ID); delErr != nil {
			log.Error("failed to delete undeliverable invitation", zap.Error(delErr))
		}
		return nil, fmt.Errorf("%w: %w", ErrInvitationEmailFailed, err)
	}

	log.Info("invitation issued", zap.Uint64("inviter_id", input.InviterID))
	invitation.Organization = *org
	invitation.Role = *role
	return invitation, nil
}

func (s *InvitationService) ensureNotMember(ctx context.Context, orgID uint64, email string) error {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return fmt.Errorf("failed to find user: %w", err)
	}

	if _, err := s.orgRepo.FindMember(ctx, orgID, user.ID); err == nil {
		return ErrAlreadyMember
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("failed to verify membership: %w", err)
	}
	return nil
}

func (s *InvitationService) sendInvitationEmail(ctx context.Context, invitation *models.Invitation, org *models.Organization, role *models.OrganizationRole, token string, locale language.Tag, now time.Time) error {
	inviterName := "A member"
	if inviter, err := s.userRepo.FindByID(ctx, invitation.InvitedByID); err == nil {
		inviterName = displayName(inviter)
	}

	if locale == language.Und {
		locale = i18n.Default()
	}
	segment := i18n.Segment(locale)
	msg, err := mailer.ComposeInvitation(s.settings.MailFrom, mailer.Invitation{
		To:               invitation.Email,
		FirstName:        invitation.FirstName,
		InviterName:      inviterName,
		OrganizationName: org.Name,
		RoleName:         role.Name,
		InvitationURL:    InvitationURL(s.settings.FrontendURL, segment, token),
		ExpiresAt:        invitation.ExpiresAt,
		Locale:           segment,
	}, now)
	if err != nil {
		return err
	}

	return s.sender.Send(ctx, msg)
}

// InvitationURL builds the localized deep link of a personal invitation.
func InvitationURL(frontendURL, locale, token string) string {
	return fmt.Sprintf("%s/%s/invitations/%s", frontendURL, locale, token)
}

func displayName(user *models.User) string {
	name := strings.TrimSpace(user.Profile.FirstName + " " + user.Profile.LastName)
	if name == "" {
		return user.Email
	}
	return name
}

// ResolvedInvitation is an invitation with its read-time expiry flag.
type ResolvedInvitation struct {
	Invitation *models.Invitation
	IsExpired  bool
}

// Resolve looks an invitation up by token without changing it.
func (s *InvitationService) Resolve(ctx context.Context, token string) (*ResolvedInvitation, error) {
	invitation, err := s.invitationRepo.FindByTokenHash(ctx, utils.FingerprintToken(token))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvitationNotFound
		}
		return nil, fmt.Errorf("failed to find invitation: %w", err)
	}

	return &ResolvedInvitation{
		Invitation: invitation,
		IsExpired:  invitation.IsExpired(s.now()),
	}, nil
}

// AcceptInvitationInput carries the submitted account data. SessionUserID is
// set when the caller is already signed in.
type AcceptInvitationInput struct {
	Token         string
	Password      string
	FirstName     string
	LastName      string
	DateOfBirth   string
	SessionUserID *uint64
}

// AcceptResult is the outcome of an acceptance.
type AcceptResult struct {
	Invitation     *models.Invitation
	User           *models.User
	AccountCreated bool
}

// Accept admits the invitee into the organization, creating or signing in
// the account first when the caller has no session.
func (s *InvitationService) Accept(ctx context.Context, input AcceptInvitationInput) (*AcceptResult, error) {
	resolved, err := s.Resolve(ctx, input.Token)
	if err != nil {
		return nil, err
	}
	invitation := resolved.Invitation
	if resolved.IsExpired {
		return nil, ErrInvitationExpired
	}
	if invitation.Status != models.InvitationStatusPending {
		return nil, ErrInvitationNotPending
	}

	var account *AccountResult
	if input.SessionUserID != nil {
		user, err := s.accounts.GetUser(ctx, *input.SessionUserID)
		if err != nil {
			return nil, err
		}
		if user.Email != invitation.Email {
			return nil, ErrInvitationEmailMismatch
		}
		account = &AccountResult{User: user}
	} else {
		firstName, lastName := input.FirstName, input.LastName
		if strings.TrimSpace(firstName) == "" && strings.TrimSpace(lastName) == "" {
			firstName, lastName = invitation.FirstName, invitation.LastName
		}
		account, err = s.accounts.ResolveAccount(ctx, SignupInput{
			Email:       invitation.Email,
			Password:    input.Password,
			FirstName:   firstName,
			LastName:    lastName,
			DateOfBirth: input.DateOfBirth,
		})
		if err != nil {
			return nil, err
		}
	}

	admitted, err := s.admitter.Admit(ctx, invitation, account.User.ID, models.InvitationStatusPending)
	if err != nil {
		return nil, err
	}

	s.notifications.NotifyUser(ctx, admitted.InvitedByID, models.NotificationInvitationAccepted, admitted)
	account.User = s.accounts.reload(ctx, account.User)

	admitted.Organization = invitation.Organization
	admitted.Role = invitation.Role
	return &AcceptResult{
		Invitation:     admitted,
		User:           account.User,
		AccountCreated: account.Created,
	}, nil
}

// AcceptLoggedIn accepts an invitation for the signed-in user.
func (s *InvitationService) AcceptLoggedIn(ctx context.Context, token string, userID uint64) (*AcceptResult, error) {
	return s.Accept(ctx, AcceptInvitationInput{Token: token, SessionUserID: &userID})
}

// ListForOrganization lists personal and link-derived invitations of an organization.
func (s *InvitationService) ListForOrganization(ctx context.Context, orgID uint64) ([]ResolvedInvitation, error) {
	invitations, err := s.invitationRepo.ListByOrganization(ctx, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to list invitations: %w", err)
	}

	now := s.now()
	resolved := make([]ResolvedInvitation, len(invitations))
	for i := range invitations {
		resolved[i] = ResolvedInvitation{
			Invitation: &invitations[i],
			IsExpired:  invitations[i].IsExpired(now),
		}
	}
	return resolved, nil
}

func (s *InvitationService) findInOrganization(ctx context.Context, orgID, invitationID uint64) (*models.Invitation, error) {
	invitation, err := s.invitationRepo.FindByID(ctx, invitationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvitationNotFound
		}
		return nil, fmt.Errorf("failed to find invitation: %w", err)
	}
	if invitation.OrganizationID != orgID {
		return nil, ErrInvitationNotFound
	}
	return invitation, nil
}

// Delete hard deletes an invitation of the organization.
func (s *InvitationService) Delete(ctx context.Context, orgID, invitationID, actorID uint64) error {
	invitation, err := s.findInOrganization(ctx, orgID, invitationID)
	if err != nil {
		return err
	}

	if err := s.invitationRepo.Delete(ctx, invitation.ID); err != nil {
		return fmt.Errorf("failed to delete invitation: %w", err)
	}

	s.logger.Info("invitation deleted",
		zap.Uint64("organization_id", orgID),
		zap.Uint64("invitation_id", invitationID),
		zap.Uint64("deleted_by", actorID),
	)
	return nil
}

// Approve admits the requester of a pending_approval invitation.
func (s *InvitationService) Approve(ctx context.Context, orgID, invitationID, approverID uint64) (*models.Invitation, error) {
	invitation, err := s.findInOrganization(ctx, orgID, invitationID)
	if err != nil {
		return nil, err
	}
	if invitation.Status != models.InvitationStatusPendingApproval || invitation.UserID == nil {
		return nil, ErrInvitationNotPending
	}

	admitted, err := s.admitter.Admit(ctx, invitation, *invitation.UserID, models.InvitationStatusPendingApproval)
	if err != nil {
		return nil, err
	}

	s.notifications.NotifyUser(ctx, *admitted.UserID, models.NotificationMembershipApproved, admitted)
	s.logger.Info("membership request approved",
		zap.Uint64("organization_id", orgID),
		zap.Uint64("invitation_id", invitationID),
		zap.Uint64("approved_by", approverID),
	)

	admitted.Role = invitation.Role
	return admitted, nil
}

// Reject cancels a pending_approval invitation.
func (s *InvitationService) Reject(ctx context.Context, orgID, invitationID, actorID uint64) error {
	invitation, err := s.findInOrganization(ctx, orgID, invitationID)
	if err != nil {
		return err
	}

	err = s.invitationRepo.Transition(ctx, invitation.ID, models.InvitationStatusPendingApproval, models.InvitationStatusCancelled)
	if err != nil {
		if errors.Is(err, repository.ErrInvitationNotAdmissible) {
			return ErrInvitationNotPending
		}
		return fmt.Errorf("failed to reject invitation: %w", err)
	}

	s.logger.Info("membership request rejected",
		zap.Uint64("organization_id", orgID),
		zap.Uint64("invitation_id", invitationID),
		zap.Uint64("rejected_by", actorID),
	)
	return nil
}
