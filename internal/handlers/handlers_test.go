package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strconv"
	"testing"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/gatehouse-api/internal/constants"
	"github.com/yukikurage/gatehouse-api/internal/database"
	"github.com/yukikurage/gatehouse-api/internal/i18n"
	"github.com/yukikurage/gatehouse-api/internal/middleware"
	"github.com/yukikurage/gatehouse-api/internal/models"
	"github.com/yukikurage/gatehouse-api/internal/repository"
	"github.com/yukikurage/gatehouse-api/internal/services"
	"github.com/yukikurage/gatehouse-api/internal/testutil"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"
)

const testFrontendURL = "https://app.example.com"

var invitationTokenInURL = regexp.MustCompile(`/(en|es)/invitations/([A-Za-z0-9_-]{43})`)

type handlerTestEnv struct {
	db       *gorm.DB
	clock    *testutil.Clock
	mailbox  *testutil.Mailbox
	router   *gin.Engine
	handlers Handlers
	admin    *models.User
	org      testutil.Organization
}

type envelope struct {
	Error   bool            `json:"error"`
	Code    string          `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func setupHandlerTestEnv(t *testing.T) *handlerTestEnv {
	return setupHandlerTestEnvWithLimit(t, 1000)
}

func setupHandlerTestEnvWithLimit(t *testing.T, tokenRequestsPerMinute int) *handlerTestEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.NewDB(t)
	database.SetDB(db)

	logger := zaptest.NewLogger(t)
	clock := testutil.NewClock(time.Now())
	mailbox := &testutil.Mailbox{}

	orgRepo := repository.NewOrganizationRepository(db)
	userRepo := repository.NewUserRepository(db)
	invitationRepo := repository.NewInvitationRepository(db)

	settings := services.InvitationSettings{
		FrontendURL: testFrontendURL,
		MailFrom:    "no-reply@example.com",
		TTL:         constants.DefaultInvitationTTL,
	}
	authService := services.NewAuthService(userRepo, logger, clock.Now)
	mainOrg := services.NewMainOrganizationSelector(userRepo, orgRepo, logger)
	orgService := services.NewOrganizationService(orgRepo, mainOrg, logger, clock.Now)
	notificationService := services.NewNotificationService(repository.NewNotificationRepository(db), orgRepo, logger, clock.Now)
	admitter := services.NewAdmitter(invitationRepo, repository.NewAdmissionRepository(db), mainOrg, logger, clock.Now)

	h := Handlers{
		Auth:          NewAuthHandler(authService, orgService),
		Organizations: NewOrganizationHandler(orgService),
		Invitations: NewInvitationHandler(services.NewInvitationService(services.InvitationServiceDeps{
			OrgRepo:        orgRepo,
			UserRepo:       userRepo,
			InvitationRepo: invitationRepo,
			Accounts:       authService,
			Admitter:       admitter,
			Notifications:  notificationService,
			Sender:         mailbox,
			Settings:       settings,
			Logger:         logger,
			Now:            clock.Now,
		})),
		InviteLinks: NewInviteLinkHandler(services.NewInviteLinkService(services.InviteLinkServiceDeps{
			OrgRepo:        orgRepo,
			LinkRepo:       repository.NewInviteLinkRepository(db),
			InvitationRepo: invitationRepo,
			Accounts:       authService,
			Admitter:       admitter,
			Notifications:  notificationService,
			Settings:       settings,
			Logger:         logger,
			Now:            clock.Now,
		}), testFrontendURL),
		Notifications: NewNotificationHandler(notificationService),
	}

	r := gin.New()
	r.Use(sessions.Sessions(constants.SessionCookieName, cookie.NewStore([]byte("test-secret"))))
	r.Use(i18n.Middleware())
	RegisterRoutes(r, h, middleware.NewIPRateLimiter(tokenRequestsPerMinute, time.Minute))

	admin := testutil.CreateUser(t, db, "admin@example.com")

	return &handlerTestEnv{
		db:       db,
		clock:    clock,
		mailbox:  mailbox,
		router:   r,
		handlers: h,
		admin:    admin,
		org:      testutil.CreateOrganization(t, db, "Maple Court", admin),
	}
}

// request sends a JSON request through the full router.
func (e *handlerTestEnv) request(t *testing.T, method, path string, body interface{}, cookies []*http.Cookie, headers ...string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *handlerTestEnv) login(t *testing.T, email string) []*http.Cookie {
	t.Helper()

	w := e.request(t, http.MethodPost, "/api/auth/login", gin.H{
		"email":    email,
		"password": testutil.Password,
	}, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies)
	return cookies
}

// issue creates a resident invitation as the admin and returns the emailed token.
func (e *handlerTestEnv) issue(t *testing.T, adminCookies []*http.Cookie, email string) string {
	t.Helper()

	w := e.request(t, http.MethodPost, e.orgPath("/invitations"), gin.H{
		"email":      email,
		"first_name": "Alice",
		"last_name":  "Smith",
		"role_id":    e.org.Roles[models.RoleNameResident].ID,
	}, adminCookies)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	sent := e.mailbox.Sent()
	require.NotEmpty(t, sent)
	match := invitationTokenInURL.FindStringSubmatch(sent[len(sent)-1].PlainBody)
	require.Len(t, match, 3)
	return match[2]
}

func (e *handlerTestEnv) orgPath(suffix string) string {
	return "/api/organizations/" + uitoa(e.org.ID) + suffix
}

func uitoa(id uint64) string {
	return strconv.FormatUint(id, 10)
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder, data interface{}) envelope {
	t.Helper()

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	if data != nil {
		require.NoError(t, json.Unmarshal(env.Data, data))
	}
	return env
}

func requireAPIError(t *testing.T, w *httptest.ResponseRecorder, status int, code string) {
	t.Helper()

	require.Equal(t, status, w.Code, w.Body.String())
	env := decodeEnvelope(t, w, nil)
	require.True(t, env.Error)
	require.Equal(t, code, env.Code)
	require.NotEmpty(t, env.Message)
}

func (e *handlerTestEnv) memberCount(t *testing.T) int64 {
	t.Helper()

	var count int64
	require.NoError(t, e.db.Model(&models.OrganizationMember{}).Where("organization_id = ?", e.org.ID).Count(&count).Error)
	return count
}

func TestHealth(t *testing.T) {
	env := setupHandlerTestEnv(t)

	w := env.request(t, http.MethodGet, "/health", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
}
