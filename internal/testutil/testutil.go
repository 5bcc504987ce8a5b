// Package testutil holds fixtures shared by repository, service and handler tests.
package testutil

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/yukikurage/gatehouse-api/internal/database"
	"github.com/yukikurage/gatehouse-api/internal/mailer"
	"github.com/yukikurage/gatehouse-api/internal/models"
	"github.com/yukikurage/gatehouse-api/internal/repository"
	"go.uber.org/zap/zaptest"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// Password is the plain password of every account created by CreateUser.
const Password = "correct-horse"

// NewDB opens a migrated in-memory SQLite database on a single connection.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), database.Options())
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.Migrate(db, zaptest.NewLogger(t)))
	return db
}

// Clock is a settable time source.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

// NewClock returns a clock fixed at now.
func NewClock(now time.Time) *Clock {
	return &Clock{now: now.UTC()}
}

// Now returns the current fake time.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward.
func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// Mailbox records sent messages and can be told to fail.
type Mailbox struct {
	mu       sync.Mutex
	messages []mailer.Message
	refused  []mailer.Message
	err      error
}

// Send implements mailer.Sender.
func (m *Mailbox) Send(_ context.Context, msg mailer.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		m.refused = append(m.refused, msg)
		return m.err
	}
	m.messages = append(m.messages, msg)
	return nil
}

// Fail makes every following Send return err. A nil err restores delivery.
func (m *Mailbox) Fail(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Sent returns a copy of the delivered messages.
func (m *Mailbox) Sent() []mailer.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]mailer.Message, len(m.messages))
	copy(out, m.messages)
	return out
}

// CreateUser stores an account with a profile and the shared test password.
func CreateUser(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(Password), bcrypt.MinCost)
	require.NoError(t, err)

	user := &models.User{Email: email, PasswordHash: string(hash)}
	profile := &models.Profile{FirstName: "Test", LastName: "User"}
	require.NoError(t, repository.NewUserRepository(db).CreateWithProfile(context.Background(), user, profile))
	return user
}

// Organization is a seeded organization with its default roles by name.
type Organization struct {
	*models.Organization
	Roles map[string]models.OrganizationRole
}

// CreateOrganization stores an organization founded by founder.
func CreateOrganization(t *testing.T, db *gorm.DB, name string, founder *models.User) Organization {
	t.Helper()

	org := &models.Organization{Name: name, Type: models.OrganizationTypeResidential}
	require.NoError(t, repository.NewOrganizationRepository(db).CreateWithFounder(context.Background(), org, founder.ID, time.Now().UTC()))

	roles := make(map[string]models.OrganizationRole, len(org.Roles))
	for _, role := range org.Roles {
		roles[role.Name] = role
	}
	return Organization{Organization: org, Roles: roles}
}

// AddMember inserts a membership directly.
func AddMember(t *testing.T, db *gorm.DB, orgID, userID, roleID uint64) {
	t.Helper()
	require.NoError(t, db.Create(&models.OrganizationMember{
		OrganizationID: orgID,
		UserID:         userID,
		RoleID:         roleID,
		JoinedAt:       time.Now().UTC(),
	}).Error)
}

// Refused returns a copy of the messages rejected while failing.
func (m *Mailbox) Refused() []mailer.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]mailer.Message, len(m.refused))
	copy(out, m.refused)
	return out
}
