package repository_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	mysqldriver "github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/gatehouse-api/internal/database"
	"github.com/yukikurage/gatehouse-api/internal/models"
	"github.com/yukikurage/gatehouse-api/internal/repository"
	"github.com/yukikurage/gatehouse-api/internal/testutil"
	"github.com/yukikurage/gatehouse-api/internal/utils"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

type admissionFixture struct {
	db          *gorm.DB
	org         testutil.Organization
	admin       *models.User
	invitations repository.InvitationRepository
	admission   repository.AdmissionRepository
	now         time.Time
}

func setupAdmissionTest(t *testing.T) *admissionFixture {
	t.Helper()
	db := testutil.NewDB(t)
	admin := testutil.CreateUser(t, db, "admin@example.com")
	return &admissionFixture{
		db:          db,
		org:         testutil.CreateOrganization(t, db, "Maple Court", admin),
		admin:       admin,
		invitations: repository.NewInvitationRepository(db),
		admission:   repository.NewAdmissionRepository(db),
		now:         time.Date(2025, 10, 1, 12, 0, 0, 0, time.UTC),
	}
}

func (f *admissionFixture) invite(t *testing.T, email string, status models.InvitationStatus, expiresAt time.Time) *models.Invitation {
	t.Helper()
	token, err := utils.GenerateToken()
	require.NoError(t, err)

	inv := &models.Invitation{
		OrganizationID: f.org.ID,
		Email:          email,
		RoleID:         f.org.Roles[models.RoleNameResident].ID,
		InvitedByID:    f.admin.ID,
		TokenHash:      utils.FingerprintToken(token),
		Status:         status,
		ExpiresAt:      expiresAt,
	}
	require.NoError(t, f.invitations.Create(context.Background(), inv))
	return inv
}

func (f *admissionFixture) memberCount(t *testing.T, userID uint64) int64 {
	t.Helper()
	var count int64
	require.NoError(t, f.db.Model(&models.OrganizationMember{}).
		Where("organization_id = ? AND user_id = ?", f.org.ID, userID).
		Count(&count).Error)
	return count
}

func TestAdmitAcceptsPendingInvitation(t *testing.T) {
	f := setupAdmissionTest(t)
	alice := testutil.CreateUser(t, f.db, "alice@example.com")
	inv := f.invite(t, alice.Email, models.InvitationStatusPending, f.now.Add(time.Hour))

	admitted, member, err := f.admission.Admit(context.Background(), repository.AdmitParams{
		InvitationID: inv.ID,
		UserID:       alice.ID,
		FromStatuses: []models.InvitationStatus{models.InvitationStatusPending},
		Now:          f.now,
	})
	require.NoError(t, err)
	require.Equal(t, models.InvitationStatusAccepted, admitted.Status)
	require.Equal(t, f.org.Roles[models.RoleNameResident].ID, member.RoleID)
	require.NotNil(t, member.InvitedByID)
	require.Equal(t, f.admin.ID, *member.InvitedByID)

	stored, err := f.invitations.FindByID(context.Background(), inv.ID)
	require.NoError(t, err)
	require.Equal(t, models.InvitationStatusAccepted, stored.Status)
	require.Nil(t, stored.OpenSlot)
	require.NotNil(t, stored.AcceptedSlot)
	require.NotNil(t, stored.UserID)
	require.Equal(t, alice.ID, *stored.UserID)
	require.EqualValues(t, 1, f.memberCount(t, alice.ID))
}

func TestAdmitRejectsIneligibleInvitations(t *testing.T) {
	f := setupAdmissionTest(t)
	alice := testutil.CreateUser(t, f.db, "alice@example.com")

	tests := []struct {
		name    string
		status  models.InvitationStatus
		expires time.Time
		wantErr error
	}{
		{"expired", models.InvitationStatusPending, f.now.Add(-time.Minute), repository.ErrInvitationExpired},
		{"cancelled", models.InvitationStatusCancelled, f.now.Add(time.Hour), repository.ErrInvitationNotAdmissible},
		{"awaiting approval", models.InvitationStatusPendingApproval, f.now.Add(time.Hour), repository.ErrInvitationNotAdmissible},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv := f.invite(t, alice.Email, tt.status, tt.expires)
			t.Cleanup(func() { _ = f.invitations.Delete(context.Background(), inv.ID) })

			_, _, err := f.admission.Admit(context.Background(), repository.AdmitParams{
				InvitationID: inv.ID,
				UserID:       alice.ID,
				FromStatuses: []models.InvitationStatus{models.InvitationStatusPending},
				Now:          f.now,
			})
			require.ErrorIs(t, err, tt.wantErr)
			require.Zero(t, f.memberCount(t, alice.ID))

			stored, err := f.invitations.FindByID(context.Background(), inv.ID)
			require.NoError(t, err)
			require.Equal(t, tt.status, stored.Status)
		})
	}
}

func TestAdmitMissingInvitation(t *testing.T) {
	f := setupAdmissionTest(t)

	_, _, err := f.admission.Admit(context.Background(), repository.AdmitParams{
		InvitationID: 999,
		UserID:       f.admin.ID,
		FromStatuses: []models.InvitationStatus{models.InvitationStatusPending},
		Now:          f.now,
	})
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestAdmitExistingMemberLeavesInvitationOpen(t *testing.T) {
	f := setupAdmissionTest(t)
	alice := testutil.CreateUser(t, f.db, "alice@example.com")
	testutil.AddMember(t, f.db, f.org.ID, alice.ID, f.org.Roles[models.RoleNameResident].ID)
	inv := f.invite(t, alice.Email, models.InvitationStatusPending, f.now.Add(time.Hour))

	_, _, err := f.admission.Admit(context.Background(), repository.AdmitParams{
		InvitationID: inv.ID,
		UserID:       alice.ID,
		FromStatuses: []models.InvitationStatus{models.InvitationStatusPending},
		Now:          f.now,
	})
	require.ErrorIs(t, err, repository.ErrAlreadyMember)

	stored, err := f.invitations.FindByID(context.Background(), inv.ID)
	require.NoError(t, err)
	require.Equal(t, models.InvitationStatusPending, stored.Status)
}

func TestAdmitStaleAcceptedRowThenPurge(t *testing.T) {
	f := setupAdmissionTest(t)
	alice := testutil.CreateUser(t, f.db, "alice@example.com")

	// An earlier cycle was accepted by an account that no longer holds the membership.
	stale := f.invite(t, alice.Email, models.InvitationStatusAccepted, f.now.Add(-24*time.Hour))
	inv := f.invite(t, alice.Email, models.InvitationStatusPending, f.now.Add(time.Hour))

	params := repository.AdmitParams{
		InvitationID: inv.ID,
		UserID:       alice.ID,
		FromStatuses: []models.InvitationStatus{models.InvitationStatusPending},
		Now:          f.now,
	}

	_, _, err := f.admission.Admit(context.Background(), params)
	require.ErrorIs(t, err, repository.ErrStaleAcceptedInvitation)
	require.Zero(t, f.memberCount(t, alice.ID))

	cancelled, err := f.invitations.CancelStaleAccepted(context.Background(), f.org.ID, alice.Email, inv.ID, alice.ID)
	require.NoError(t, err)
	require.Zero(t, cancelled, "the stale row is bound to no account and stays invisible")

	purged, err := f.invitations.PurgeStaleAccepted(context.Background(), f.org.ID, alice.Email, inv.ID)
	require.NoError(t, err)
	require.EqualValues(t, 1, purged)

	_, err = f.invitations.FindByID(context.Background(), stale.ID)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)

	admitted, _, err := f.admission.Admit(context.Background(), params)
	require.NoError(t, err)
	require.Equal(t, models.InvitationStatusAccepted, admitted.Status)
	require.EqualValues(t, 1, f.memberCount(t, alice.ID))
}

func TestAdmitConcurrentAttemptsAdmitOnce(t *testing.T) {
	f := setupAdmissionTest(t)
	alice := testutil.CreateUser(t, f.db, "alice@example.com")
	inv := f.invite(t, alice.Email, models.InvitationStatusPending, f.now.Add(time.Hour))

	const attempts = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		failures  []error
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := f.admission.Admit(context.Background(), repository.AdmitParams{
				InvitationID: inv.ID,
				UserID:       alice.ID,
				FromStatuses: []models.InvitationStatus{models.InvitationStatusPending},
				Now:          f.now,
			})
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				successes++
				return
			}
			failures = append(failures, err)
		}()
	}
	wg.Wait()

	require.Equal(t, 1, successes)
	for _, err := range failures {
		require.True(t,
			errors.Is(err, repository.ErrInvitationNotAdmissible) || errors.Is(err, repository.ErrAlreadyMember),
			"unexpected error: %v", err)
	}
	require.EqualValues(t, 1, f.memberCount(t, alice.ID))
}

func TestAdmitTranslatesMySQLDuplicateOnStatusFlip(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	db, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), database.Options())
	require.NoError(t, err)

	now := time.Date(2025, 10, 1, 12, 0, 0, 0, time.UTC)
	invitationRows := sqlmock.NewRows([]string{"id", "organization_id", "email", "role_id", "invited_by_id", "status", "expires_at"}).
		AddRow(7, 1, "alice@example.com", 2, 1, "pending", now.Add(time.Hour))

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT \\* FROM `invitations`").WillReturnRows(invitationRows)
	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `organization_members`").
		WillReturnRows(sqlmock.NewRows([]string{"count(*)"}).AddRow(0))
	mock.ExpectExec("UPDATE `invitations` SET").
		WillReturnError(&mysqldriver.MySQLError{Number: 1062, Message: "Duplicate entry for key 'idx_invitations_accepted'"})
	mock.ExpectRollback()

	_, _, err = repository.NewAdmissionRepository(db).Admit(context.Background(), repository.AdmitParams{
		InvitationID: 7,
		UserID:       3,
		FromStatuses: []models.InvitationStatus{models.InvitationStatusPending},
		Now:          now,
	})
	require.ErrorIs(t, err, repository.ErrStaleAcceptedInvitation)
	require.NoError(t, mock.ExpectationsWereMet())
}
