package constants

import "time"

const (
	// ContextKeyUserID is the key under which the authenticated user id is stored
	// both in the session and in the gin context.
	ContextKeyUserID = "user_id"

	// ContextKeyOrganization and ContextKeyOrganizationMember are set by the
	// organization access middleware.
	ContextKeyOrganization       = "organization"
	ContextKeyOrganizationMember = "organization_member"

	// ContextKeyLocale holds the negotiated language tag.
	ContextKeyLocale = "locale"

	// ContextKeyRequestID holds the request correlation id.
	ContextKeyRequestID = "request_id"

	SessionCookieName = "gatehouse_session"
	RequestIDHeader   = "X-Request-ID"
)

const (
	MinPasswordLength = 8

	MinPageSize     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100

	// DefaultInvitationTTL is the personal invitation validity window.
	DefaultInvitationTTL = 7 * 24 * time.Hour

	// DateOfBirthLayout is the accepted format for dates of birth.
	DateOfBirthLayout = "2006-01-02"
)
