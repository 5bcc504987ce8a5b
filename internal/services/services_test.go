package services

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/yukikurage/gatehouse-api/internal/models"
	"github.com/yukikurage/gatehouse-api/internal/repository"
	"github.com/yukikurage/gatehouse-api/internal/testutil"
	"go.uber.org/zap/zaptest"
	"golang.org/x/text/language"
	"gorm.io/gorm"
)

var tokenInURL = regexp.MustCompile(`/invitations/([A-Za-z0-9_-]{43})`)

type serviceEnv struct {
	db            *gorm.DB
	clock         *testutil.Clock
	mailbox       *testutil.Mailbox
	auth          *AuthService
	orgs          *OrganizationService
	invitations   *InvitationService
	links         *InviteLinkService
	notifications *NotificationService
	mainOrg       *MainOrganizationSelector
	admin         *models.User
	org           testutil.Organization
}

func setupServiceEnv(t *testing.T) *serviceEnv {
	return setupServiceEnvWithAdmission(t, nil)
}

func setupServiceEnvWithAdmission(t *testing.T, admission repository.AdmissionRepository) *serviceEnv {
	t.Helper()

	db := testutil.NewDB(t)
	logger := zaptest.NewLogger(t)
	clock := testutil.NewClock(time.Date(2025, 10, 1, 9, 0, 0, 0, time.UTC))
	mailbox := &testutil.Mailbox{}

	orgRepo := repository.NewOrganizationRepository(db)
	userRepo := repository.NewUserRepository(db)
	invitationRepo := repository.NewInvitationRepository(db)
	if admission == nil {
		admission = repository.NewAdmissionRepository(db)
	}

	settings := InvitationSettings{
		FrontendURL: "https://app.example.com",
		MailFrom:    "no-reply@example.com",
		TTL:         7 * 24 * time.Hour,
	}

	auth := NewAuthService(userRepo, logger, clock.Now)
	mainOrg := NewMainOrganizationSelector(userRepo, orgRepo, logger)
	notifications := NewNotificationService(repository.NewNotificationRepository(db), orgRepo, logger, clock.Now)
	admitter := NewAdmitter(invitationRepo, admission, mainOrg, logger, clock.Now)

	admin := testutil.CreateUser(t, db, "admin@example.com")

	return &serviceEnv{
		db:      db,
		clock:   clock,
		mailbox: mailbox,
		auth:    auth,
		orgs:    NewOrganizationService(orgRepo, mainOrg, logger, clock.Now),
		invitations: NewInvitationService(InvitationServiceDeps{
			OrgRepo:        orgRepo,
			UserRepo:       userRepo,
			InvitationRepo: invitationRepo,
			Accounts:       auth,
			Admitter:       admitter,
			Notifications:  notifications,
			Sender:         mailbox,
			Settings:       settings,
			Logger:         logger,
			Now:            clock.Now,
		}),
		links: NewInviteLinkService(InviteLinkServiceDeps{
			OrgRepo:        orgRepo,
			LinkRepo:       repository.NewInviteLinkRepository(db),
			InvitationRepo: invitationRepo,
			Accounts:       auth,
			Admitter:       admitter,
			Notifications:  notifications,
			Settings:       settings,
			Logger:         logger,
			Now:            clock.Now,
		}),
		notifications: notifications,
		mainOrg:       mainOrg,
		admin:         admin,
		org:           testutil.CreateOrganization(t, db, "Maple Court", admin),
	}
}

func (e *serviceEnv) issue(t *testing.T, email string) string {
	t.Helper()
	_, err := e.invitations.Issue(context.Background(), IssueInvitationInput{
		OrganizationID: e.org.ID,
		InviterID:      e.admin.ID,
		Email:          email,
		FirstName:      "Alice",
		LastName:       "Smith",
		RoleID:         e.org.Roles[models.RoleNameResident].ID,
		Locale:         language.Spanish,
	})
	require.NoError(t, err)

	sent := e.mailbox.Sent()
	require.NotEmpty(t, sent)
	match := tokenInURL.FindStringSubmatch(sent[len(sent)-1].PlainBody)
	require.Len(t, match, 2)
	return match[1]
}

func (e *serviceEnv) isMember(t *testing.T, userID uint64) bool {
	t.Helper()
	var count int64
	require.NoError(t, e.db.Model(&models.OrganizationMember{}).
		Where("organization_id = ? AND user_id = ?", e.org.ID, userID).
		Count(&count).Error)
	return count == 1
}

func (e *serviceEnv) invitationCount(t *testing.T, email string) int64 {
	t.Helper()
	var count int64
	require.NoError(t, e.db.Model(&models.Invitation{}).Where("email = ?", email).Count(&count).Error)
	return count
}

func TestPersonalInvitationHappyPath(t *testing.T) {
	env := setupServiceEnv(t)
	token := env.issue(t, "Alice@Example.com")

	sent := env.mailbox.Sent()
	require.Len(t, sent, 1)
	require.Equal(t, []string{"alice@example.com"}, sent[0].To)
	require.Contains(t, sent[0].PlainBody, "https://app.example.com/es/invitations/"+token)

	result, err := env.invitations.Accept(context.Background(), AcceptInvitationInput{
		Token:       token,
		Password:    "s3cret-password",
		DateOfBirth: "1990-04-12",
	})
	require.NoError(t, err)
	require.True(t, result.AccountCreated)
	require.Equal(t, models.InvitationStatusAccepted, result.Invitation.Status)
	require.True(t, env.isMember(t, result.User.ID))

	profile, err := repository.NewUserRepository(env.db).FindProfile(context.Background(), result.User.ID)
	require.NoError(t, err)
	require.NotNil(t, profile.MainOrganizationID)
	require.Equal(t, env.org.ID, *profile.MainOrganizationID)
	require.Equal(t, "Alice", profile.FirstName)

	notifications, total, err := env.notifications.List(context.Background(), ListNotificationsInput{UserID: env.admin.ID})
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	require.Equal(t, models.NotificationInvitationAccepted, notifications[0].Kind)

	_, err = env.invitations.Accept(context.Background(), AcceptInvitationInput{Token: token, Password: "s3cret-password"})
	require.ErrorIs(t, err, ErrInvitationNotPending)
}

func TestIssueRejectsDuplicateOpenInvitation(t *testing.T) {
	env := setupServiceEnv(t)
	env.issue(t, "alice@example.com")

	_, err := env.invitations.Issue(context.Background(), IssueInvitationInput{
		OrganizationID: env.org.ID,
		InviterID:      env.admin.ID,
		Email:          "alice@example.com",
		RoleID:         env.org.Roles[models.RoleNameResident].ID,
	})
	require.ErrorIs(t, err, ErrInvitationDuplicate)
	require.EqualValues(t, 1, env.invitationCount(t, "alice@example.com"))
	require.Len(t, env.mailbox.Sent(), 1)
}

func TestIssueSupersedesExpiredInvitation(t *testing.T) {
	env := setupServiceEnv(t)
	first := env.issue(t, "alice@example.com")

	env.clock.Advance(8 * 24 * time.Hour)
	second := env.issue(t, "alice@example.com")
	require.NotEqual(t, first, second)

	old, err := env.invitations.Resolve(context.Background(), first)
	require.NoError(t, err)
	require.Equal(t, models.InvitationStatusCancelled, old.Invitation.Status)
	require.True(t, old.IsExpired)
}

func TestIssueValidatesRoleAndMembership(t *testing.T) {
	env := setupServiceEnv(t)

	_, err := env.invitations.Issue(context.Background(), IssueInvitationInput{
		OrganizationID: env.org.ID,
		InviterID:      env.admin.ID,
		Email:          "alice@example.com",
		RoleID:         9999,
	})
	require.ErrorIs(t, err, ErrRoleNotFound)

	_, err = env.invitations.Issue(context.Background(), IssueInvitationInput{
		OrganizationID: 9999,
		InviterID:      env.admin.ID,
		Email:          "alice@example.com",
		RoleID:         env.org.Roles[models.RoleNameResident].ID,
	})
	require.ErrorIs(t, err, ErrOrganizationNotFound)

	_, err = env.invitations.Issue(context.Background(), IssueInvitationInput{
		OrganizationID: env.org.ID,
		InviterID:      env.admin.ID,
		Email:          env.admin.Email,
		RoleID:         env.org.Roles[models.RoleNameResident].ID,
	})
	require.ErrorIs(t, err, ErrAlreadyMember)
}

func TestIssueDeletesInvitationWhenEmailFails(t *testing.T) {
	env := setupServiceEnv(t)
	env.mailbox.Fail(errors.New("relay down"))

	_, err := env.invitations.Issue(context.Background(), IssueInvitationInput{
		OrganizationID: env.org.ID,
		InviterID:      env.admin.ID,
		Email:          "alice@example.com",
		RoleID:         env.org.Roles[models.RoleNameResident].ID,
	})
	require.ErrorIs(t, err, ErrInvitationEmailFailed)
	require.Zero(t, env.invitationCount(t, "alice@example.com"))

	refused := env.mailbox.Refused()
	require.Len(t, refused, 1)
	match := tokenInURL.FindStringSubmatch(refused[0].PlainBody)
	require.Len(t, match, 2)
	_, err = env.invitations.Resolve(context.Background(), match[1])
	require.ErrorIs(t, err, ErrInvitationNotFound)

	env.mailbox.Fail(nil)
	token := env.issue(t, "alice@example.com")
	_, err = env.invitations.Resolve(context.Background(), token)
	require.NoError(t, err)
}

func TestResolveDerivesExpiryAtReadTime(t *testing.T) {
	env := setupServiceEnv(t)
	token := env.issue(t, "alice@example.com")

	first, err := env.invitations.Resolve(context.Background(), token)
	require.NoError(t, err)
	second, err := env.invitations.Resolve(context.Background(), token)
	require.NoError(t, err)
	require.Equal(t, first.Invitation.ID, second.Invitation.ID)
	require.Equal(t, first.Invitation.Status, second.Invitation.Status)
	require.False(t, first.IsExpired)
	require.Equal(t, "Maple Court", first.Invitation.Organization.Name)
	require.Equal(t, models.RoleNameResident, first.Invitation.Role.Name)

	env.clock.Advance(7*24*time.Hour + time.Second)
	third, err := env.invitations.Resolve(context.Background(), token)
	require.NoError(t, err)
	require.True(t, third.IsExpired)
	require.Equal(t, models.InvitationStatusPending, third.Invitation.Status)

	_, err = env.invitations.Resolve(context.Background(), "unknown-token")
	require.ErrorIs(t, err, ErrInvitationNotFound)
}

func TestAcceptExpiredInvitationHasNoSideEffects(t *testing.T) {
	env := setupServiceEnv(t)
	token := env.issue(t, "alice@example.com")

	require.NoError(t, env.db.Model(&models.Invitation{}).
		Where("email = ?", "alice@example.com").
		Update("expires_at", env.clock.Now().Add(-time.Minute)).Error)

	_, err := env.invitations.Accept(context.Background(), AcceptInvitationInput{Token: token, Password: "s3cret-password"})
	require.ErrorIs(t, err, ErrInvitationExpired)

	_, err = repository.NewUserRepository(env.db).FindByEmail(context.Background(), "alice@example.com")
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestAcceptWithExistingAccount(t *testing.T) {
	env := setupServiceEnv(t)
	alice := testutil.CreateUser(t, env.db, "alice@example.com")
	token := env.issue(t, "alice@example.com")

	_, err := env.invitations.Accept(context.Background(), AcceptInvitationInput{Token: token, Password: "wrong-password"})
	require.ErrorIs(t, err, ErrCheckPassword)
	require.False(t, env.isMember(t, alice.ID))

	result, err := env.invitations.Accept(context.Background(), AcceptInvitationInput{Token: token, Password: testutil.Password})
	require.NoError(t, err)
	require.False(t, result.AccountCreated)
	require.Equal(t, alice.ID, result.User.ID)
	require.True(t, env.isMember(t, alice.ID))
}

func TestAcceptLoggedInRequiresMatchingEmail(t *testing.T) {
	env := setupServiceEnv(t)
	bob := testutil.CreateUser(t, env.db, "bob@example.com")
	alice := testutil.CreateUser(t, env.db, "alice@example.com")
	token := env.issue(t, "alice@example.com")

	_, err := env.invitations.AcceptLoggedIn(context.Background(), token, bob.ID)
	require.ErrorIs(t, err, ErrInvitationEmailMismatch)

	result, err := env.invitations.AcceptLoggedIn(context.Background(), token, alice.ID)
	require.NoError(t, err)
	require.Equal(t, models.InvitationStatusAccepted, result.Invitation.Status)
}

func TestAcceptPurgesStaleAcceptedInvitation(t *testing.T) {
	env := setupServiceEnv(t)

	// A previous cycle was accepted but the membership was removed afterwards.
	require.NoError(t, repository.NewInvitationRepository(env.db).Create(context.Background(), &models.Invitation{
		OrganizationID: env.org.ID,
		Email:          "alice@example.com",
		RoleID:         env.org.Roles[models.RoleNameResident].ID,
		InvitedByID:    env.admin.ID,
		TokenHash:      "stale",
		Status:         models.InvitationStatusAccepted,
		ExpiresAt:      env.clock.Now().Add(-30 * 24 * time.Hour),
	}))

	token := env.issue(t, "alice@example.com")
	result, err := env.invitations.Accept(context.Background(), AcceptInvitationInput{Token: token, Password: "s3cret-password"})
	require.NoError(t, err)
	require.Equal(t, models.InvitationStatusAccepted, result.Invitation.Status)
	require.EqualValues(t, 1, env.invitationCount(t, "alice@example.com"))
}

func TestGeneralLinkWithoutApprovalAdmitsImmediately(t *testing.T) {
	env := setupServiceEnv(t)
	link, err := env.links.Create(context.Background(), CreateLinkInput{
		OrganizationID: env.org.ID,
		CreatorID:      env.admin.ID,
		RoleID:         env.org.Roles[models.RoleNameResident].ID,
	})
	require.NoError(t, err)

	result, err := env.links.AcceptLink(context.Background(), AcceptLinkInput{
		Token:     link.Link.Token,
		Email:     "carol@example.com",
		FirstName: "Carol",
		Password:  "s3cret-password",
	})
	require.NoError(t, err)
	require.True(t, result.AccountCreated)
	require.Equal(t, models.InvitationStatusAccepted, result.Invitation.Status)
	require.Equal(t, env.admin.ID, result.Invitation.InvitedByID)
	require.True(t, env.isMember(t, result.User.ID))

	views, err := env.links.List(context.Background(), env.org.ID)
	require.NoError(t, err)
	require.Len(t, views, 1)
	require.EqualValues(t, 1, views[0].UsageCount)

	_, err = env.links.AcceptLink(context.Background(), AcceptLinkInput{
		Token:    link.Link.Token,
		Email:    "carol@example.com",
		Password: "s3cret-password",
	})
	require.ErrorIs(t, err, ErrAlreadyMember)
}

func TestGeneralLinkWithApprovalWaitsForAdmin(t *testing.T) {
	env := setupServiceEnv(t)
	link, err := env.links.Create(context.Background(), CreateLinkInput{
		OrganizationID:   env.org.ID,
		CreatorID:        env.admin.ID,
		RoleID:           env.org.Roles[models.RoleNameSecurityStaff].ID,
		RequiresApproval: true,
	})
	require.NoError(t, err)

	result, err := env.links.AcceptLink(context.Background(), AcceptLinkInput{
		Token:    link.Link.Token,
		Email:    "dave@example.com",
		Password: "s3cret-password",
	})
	require.NoError(t, err)
	require.Equal(t, models.InvitationStatusPendingApproval, result.Invitation.Status)
	require.False(t, env.isMember(t, result.User.ID))

	notifications, _, err := env.notifications.List(context.Background(), ListNotificationsInput{UserID: env.admin.ID})
	require.NoError(t, err)
	require.Len(t, notifications, 1)
	require.Equal(t, models.NotificationMembershipRequested, notifications[0].Kind)

	_, err = env.links.AcceptLink(context.Background(), AcceptLinkInput{
		Token:    link.Link.Token,
		Email:    "dave@example.com",
		Password: "s3cret-password",
	})
	require.ErrorIs(t, err, ErrInvitationDuplicate)

	approved, err := env.invitations.Approve(context.Background(), env.org.ID, result.Invitation.ID, env.admin.ID)
	require.NoError(t, err)
	require.Equal(t, models.InvitationStatusAccepted, approved.Status)
	require.True(t, env.isMember(t, result.User.ID))

	err = env.invitations.Reject(context.Background(), env.org.ID, result.Invitation.ID, env.admin.ID)
	require.ErrorIs(t, err, ErrInvitationNotPending)
}

func TestRejectCancelsRequest(t *testing.T) {
	env := setupServiceEnv(t)
	link, err := env.links.Create(context.Background(), CreateLinkInput{
		OrganizationID:   env.org.ID,
		CreatorID:        env.admin.ID,
		RoleID:           env.org.Roles[models.RoleNameResident].ID,
		RequiresApproval: true,
	})
	require.NoError(t, err)

	result, err := env.links.AcceptLink(context.Background(), AcceptLinkInput{
		Token:    link.Link.Token,
		Email:    "erin@example.com",
		Password: "s3cret-password",
	})
	require.NoError(t, err)

	require.NoError(t, env.invitations.Reject(context.Background(), env.org.ID, result.Invitation.ID, env.admin.ID))

	_, err = env.invitations.Approve(context.Background(), env.org.ID, result.Invitation.ID, env.admin.ID)
	require.ErrorIs(t, err, ErrInvitationNotPending)
	require.False(t, env.isMember(t, result.User.ID))
}

func TestGeneralLinkExpiry(t *testing.T) {
	env := setupServiceEnv(t)
	past := env.clock.Now().Add(-time.Hour)
	_, err := env.links.Create(context.Background(), CreateLinkInput{
		OrganizationID: env.org.ID,
		CreatorID:      env.admin.ID,
		RoleID:         env.org.Roles[models.RoleNameResident].ID,
		ExpiresAt:      &past,
	})
	require.ErrorIs(t, err, ErrLinkExpiryInPast)

	future := env.clock.Now().Add(time.Hour)
	link, err := env.links.Create(context.Background(), CreateLinkInput{
		OrganizationID: env.org.ID,
		CreatorID:      env.admin.ID,
		RoleID:         env.org.Roles[models.RoleNameResident].ID,
		ExpiresAt:      &future,
	})
	require.NoError(t, err)

	env.clock.Advance(2 * time.Hour)
	_, err = env.links.AcceptLink(context.Background(), AcceptLinkInput{
		Token:    link.Link.Token,
		Email:    "frank@example.com",
		Password: "s3cret-password",
	})
	require.ErrorIs(t, err, ErrLinkExpired)

	require.NoError(t, env.links.Delete(context.Background(), env.org.ID, link.Link.ID, env.admin.ID))
	_, err = env.links.Resolve(context.Background(), link.Link.Token)
	require.ErrorIs(t, err, ErrLinkNotFound)
}

func TestGeneralLinkRejectsSessionForAnotherEmail(t *testing.T) {
	env := setupServiceEnv(t)
	link, err := env.links.Create(context.Background(), CreateLinkInput{
		OrganizationID: env.org.ID,
		CreatorID:      env.admin.ID,
		RoleID:         env.org.Roles[models.RoleNameResident].ID,
	})
	require.NoError(t, err)

	bob := testutil.CreateUser(t, env.db, "bob@example.com")
	_, err = env.links.AcceptLink(context.Background(), AcceptLinkInput{
		Token:         link.Link.Token,
		Email:         "mallory@example.com",
		Password:      "s3cret-password",
		SessionUserID: &bob.ID,
	})
	require.ErrorIs(t, err, ErrInvitationEmailMismatch)

	var accounts int64
	require.NoError(t, env.db.Model(&models.User{}).Where("email = ?", "mallory@example.com").Count(&accounts).Error)
	require.Zero(t, accounts)
	require.Zero(t, env.invitationCount(t, "mallory@example.com"))
}

type failingAdmission struct{}

func (failingAdmission) Admit(context.Context, repository.AdmitParams) (*models.Invitation, *models.OrganizationMember, error) {
	return nil, nil, errors.New("storage unavailable")
}

func TestGeneralLinkAutoAdmissionFailureIsSwallowed(t *testing.T) {
	env := setupServiceEnvWithAdmission(t, failingAdmission{})
	link, err := env.links.Create(context.Background(), CreateLinkInput{
		OrganizationID: env.org.ID,
		CreatorID:      env.admin.ID,
		RoleID:         env.org.Roles[models.RoleNameResident].ID,
	})
	require.NoError(t, err)

	result, err := env.links.AcceptLink(context.Background(), AcceptLinkInput{
		Token:    link.Link.Token,
		Email:    "gina@example.com",
		Password: "s3cret-password",
	})
	require.NoError(t, err)
	require.True(t, result.AccountCreated)
	require.Equal(t, models.InvitationStatusPending, result.Invitation.Status)
	require.False(t, env.isMember(t, result.User.ID))
}

func TestRemoveMemberRecalculatesMainOrganization(t *testing.T) {
	env := setupServiceEnv(t)
	alice := testutil.CreateUser(t, env.db, "alice@example.com")
	other := testutil.CreateOrganization(t, env.db, "Birch House", env.admin)
	testutil.AddMember(t, env.db, env.org.ID, alice.ID, env.org.Roles[models.RoleNameResident].ID)
	testutil.AddMember(t, env.db, other.ID, alice.ID, other.Roles[models.RoleNameResident].ID)
	require.NoError(t, env.orgs.SetMainOrganization(context.Background(), alice.ID, env.org.ID))

	require.ErrorIs(t, env.orgs.RemoveMember(context.Background(), env.org.ID, env.admin.ID, env.admin.ID), ErrCannotRemoveYourself)
	require.NoError(t, env.orgs.RemoveMember(context.Background(), env.org.ID, env.admin.ID, alice.ID))

	profile, err := repository.NewUserRepository(env.db).FindProfile(context.Background(), alice.ID)
	require.NoError(t, err)
	require.NotNil(t, profile.MainOrganizationID)
	require.Equal(t, other.ID, *profile.MainOrganizationID)

	require.ErrorIs(t, env.orgs.SetMainOrganization(context.Background(), alice.ID, env.org.ID), ErrNotOrganizationMember)
}

func TestDeleteOrganizationRequiresNoOtherMembers(t *testing.T) {
	env := setupServiceEnv(t)
	alice := testutil.CreateUser(t, env.db, "alice@example.com")
	testutil.AddMember(t, env.db, env.org.ID, alice.ID, env.org.Roles[models.RoleNameResident].ID)

	require.ErrorIs(t, env.orgs.DeleteOrganization(context.Background(), env.org.ID, env.admin.ID), ErrOrganizationHasMembers)

	require.NoError(t, env.orgs.RemoveMember(context.Background(), env.org.ID, env.admin.ID, alice.ID))
	require.NoError(t, env.orgs.DeleteOrganization(context.Background(), env.org.ID, env.admin.ID))

	_, _, err := env.orgs.GetOrganizationWithMembers(context.Background(), env.org.ID)
	require.ErrorIs(t, err, ErrOrganizationNotFound)
}

func TestCreateOrganizationSetsMainOrganization(t *testing.T) {
	env := setupServiceEnv(t)
	founder := testutil.CreateUser(t, env.db, "founder@example.com")

	_, err := env.orgs.CreateOrganization(context.Background(), CreateOrganizationInput{Name: "  ", FounderID: founder.ID})
	require.ErrorIs(t, err, ErrInvalidOrganization)

	org, err := env.orgs.CreateOrganization(context.Background(), CreateOrganizationInput{
		Name:      "Cedar Lofts",
		Type:      models.OrganizationTypeOffice,
		FounderID: founder.ID,
	})
	require.NoError(t, err)

	profile, err := repository.NewUserRepository(env.db).FindProfile(context.Background(), founder.ID)
	require.NoError(t, err)
	require.Equal(t, org.ID, *profile.MainOrganizationID)
}

func TestSignupAndLogin(t *testing.T) {
	env := setupServiceEnv(t)

	_, err := env.auth.Signup(context.Background(), SignupInput{Email: "new@example.com", Password: "short"})
	require.ErrorIs(t, err, ErrPasswordTooShort)

	_, err = env.auth.Signup(context.Background(), SignupInput{Email: "new@example.com", Password: "long-enough", DateOfBirth: "12/04/1990"})
	require.ErrorIs(t, err, ErrInvalidDateOfBirth)

	user, err := env.auth.Signup(context.Background(), SignupInput{Email: " New@Example.com ", Password: "long-enough", DateOfBirth: "1990-04-12"})
	require.NoError(t, err)
	require.Equal(t, "new@example.com", user.Email)

	_, err = env.auth.Signup(context.Background(), SignupInput{Email: "new@example.com", Password: "long-enough"})
	require.ErrorIs(t, err, ErrEmailTaken)

	_, err = env.auth.Login(context.Background(), LoginInput{Email: "new@example.com", Password: "wrong-password"})
	require.ErrorIs(t, err, ErrInvalidCredentials)

	loggedIn, err := env.auth.Login(context.Background(), LoginInput{Email: "NEW@example.com", Password: "long-enough"})
	require.NoError(t, err)
	require.Equal(t, user.ID, loggedIn.ID)
}

func TestNotificationsMarkRead(t *testing.T) {
	env := setupServiceEnv(t)
	env.notifications.NotifyUser(context.Background(), env.admin.ID, models.NotificationMembershipApproved, &models.Invitation{
		ID:             1,
		OrganizationID: env.org.ID,
		Email:          "alice@example.com",
	})

	list, total, err := env.notifications.List(context.Background(), ListNotificationsInput{UserID: env.admin.ID, UnreadOnly: true})
	require.NoError(t, err)
	require.EqualValues(t, 1, total)

	require.NoError(t, env.notifications.MarkRead(context.Background(), list[0].ID, env.admin.ID))
	require.ErrorIs(t, env.notifications.MarkRead(context.Background(), list[0].ID, env.admin.ID+100), ErrNotificationNotFound)

	_, total, err = env.notifications.List(context.Background(), ListNotificationsInput{UserID: env.admin.ID, UnreadOnly: true})
	require.NoError(t, err)
	require.Zero(t, total)
}
