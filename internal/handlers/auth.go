package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/yukikurage/gatehouse-api/internal/constants"
	"github.com/yukikurage/gatehouse-api/internal/dto"
	apierrors "github.com/yukikurage/gatehouse-api/internal/errors"
	"github.com/yukikurage/gatehouse-api/internal/i18n"
	"github.com/yukikurage/gatehouse-api/internal/middleware"
	"github.com/yukikurage/gatehouse-api/internal/services"
)

// AuthHandler coordinates authentication-related HTTP handlers.
type AuthHandler struct {
	authService *services.AuthService
	orgService  *services.OrganizationService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService, orgService *services.OrganizationService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		orgService:  orgService,
	}
}

// Signup registers a new account and signs it in.
func (h *AuthHandler) Signup(c *gin.Context) {
	type SignupRequest struct {
		Email       string `json:"email" binding:"required,email,max=255"`
		Password    string `json:"password" binding:"required"`
		FirstName   string `json:"first_name" binding:"max=100"`
		LastName    string `json:"last_name" binding:"max=100"`
		DateOfBirth string `json:"date_of_birth"`
	}

	var req SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, i18n.T(c, i18n.MsgInvalidRequest))
		return
	}

	user, err := h.authService.Signup(c.Request.Context(), services.SignupInput{
		Email:       req.Email,
		Password:    req.Password,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		DateOfBirth: req.DateOfBirth,
	})
	if err != nil {
		respondAuthError(c, err)
		return
	}

	if err := startSession(c, user.ID); err != nil {
		_ = c.Error(err)
		apierrors.DependencyFailure(c, i18n.T(c, i18n.MsgSessionFailed))
		return
	}

	apierrors.Respond(c, http.StatusCreated, i18n.T(c, i18n.MsgOK), dto.ToUserDTO(*user))
}

// Login authenticates a user and initializes the session.
func (h *AuthHandler) Login(c *gin.Context) {
	type LoginRequest struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}

	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, i18n.T(c, i18n.MsgInvalidRequest))
		return
	}

	user, err := h.authService.Login(c.Request.Context(), services.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		respondAuthError(c, err)
		return
	}

	if err := startSession(c, user.ID); err != nil {
		_ = c.Error(err)
		apierrors.DependencyFailure(c, i18n.T(c, i18n.MsgSessionFailed))
		return
	}

	apierrors.Respond(c, http.StatusOK, i18n.T(c, i18n.MsgOK), dto.ToUserDTO(*user))
}

// Logout removes the authentication session.
func (h *AuthHandler) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	if err := session.Save(); err != nil {
		_ = c.Error(err)
		apierrors.DependencyFailure(c, i18n.T(c, i18n.MsgSessionFailed))
		return
	}

	apierrors.Respond(c, http.StatusOK, i18n.T(c, i18n.MsgLoggedOut), nil)
}

// GetCurrentUser returns the authenticated user.
func (h *AuthHandler) GetCurrentUser(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthenticated(c, i18n.T(c, i18n.MsgAuthRequired))
		return
	}

	user, err := h.authService.GetUser(c.Request.Context(), userID)
	if err != nil {
		respondAuthError(c, err)
		return
	}

	apierrors.Respond(c, http.StatusOK, i18n.T(c, i18n.MsgOK), dto.ToUserDTO(*user))
}

// SetMainOrganization points the caller's profile at one of their organizations.
func (h *AuthHandler) SetMainOrganization(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthenticated(c, i18n.T(c, i18n.MsgAuthRequired))
		return
	}

	type MainOrganizationRequest struct {
		OrganizationID uint64 `json:"organization_id" binding:"required"`
	}

	var req MainOrganizationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, i18n.T(c, i18n.MsgInvalidRequest))
		return
	}

	if err := h.orgService.SetMainOrganization(c.Request.Context(), userID, req.OrganizationID); err != nil {
		respondAuthError(c, err)
		return
	}

	apierrors.Respond(c, http.StatusOK, i18n.T(c, i18n.MsgMainOrganizationSet), gin.H{
		"main_organization_id": req.OrganizationID,
	})
}

func respondAuthError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrPasswordTooShort):
		apierrors.BadRequest(c, i18n.T(c, i18n.MsgPasswordTooShort, constants.MinPasswordLength))
	case errors.Is(err, services.ErrInvalidDateOfBirth):
		apierrors.BadRequest(c, i18n.T(c, i18n.MsgInvalidDateOfBirth))
	case errors.Is(err, services.ErrEmailTaken):
		apierrors.Conflict(c, i18n.T(c, i18n.MsgEmailTaken))
	case errors.Is(err, services.ErrInvalidCredentials):
		apierrors.Unauthenticated(c, i18n.T(c, i18n.MsgInvalidCredentials))
	case errors.Is(err, services.ErrUserNotFound):
		apierrors.NotFound(c, i18n.T(c, i18n.MsgUserNotFound))
	case errors.Is(err, services.ErrNotOrganizationMember):
		apierrors.Unauthorized(c, i18n.T(c, i18n.MsgNotAMember))
	default:
		respondInternalError(c, err)
	}
}

// respondInternalError hides err from the client and attaches it to the
// context for the request logger.
func respondInternalError(c *gin.Context, err error) {
	_ = c.Error(err)
	apierrors.DependencyFailure(c, i18n.T(c, i18n.MsgInternalError))
}
