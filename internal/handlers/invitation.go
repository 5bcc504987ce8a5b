package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/gatehouse-api/internal/constants"
	"github.com/yukikurage/gatehouse-api/internal/dto"
	apierrors "github.com/yukikurage/gatehouse-api/internal/errors"
	"github.com/yukikurage/gatehouse-api/internal/i18n"
	"github.com/yukikurage/gatehouse-api/internal/middleware"
	"github.com/yukikurage/gatehouse-api/internal/services"
)

// InvitationHandler serves personal invitations and the moderation of
// requests made through general invite links.
type InvitationHandler struct {
	invitationService *services.InvitationService
}

func NewInvitationHandler(invitationService *services.InvitationService) *InvitationHandler {
	return &InvitationHandler{invitationService: invitationService}
}

// CreateInvitation issues a personal invitation and emails its deep link
func (h *InvitationHandler) CreateInvitation(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	org, ok := middleware.GetOrganization(c)
	if !ok {
		apierrors.Unauthorized(c, i18n.T(c, i18n.MsgNotAMember))
		return
	}

	type CreateInvitationRequest struct {
		Email     string `json:"email" binding:"required,email,max=255"`
		FirstName string `json:"first_name" binding:"max=100"`
		LastName  string `json:"last_name" binding:"max=100"`
		RoleID    uint64 `json:"role_id" binding:"required"`
	}

	var req CreateInvitationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, i18n.T(c, i18n.MsgInvalidRequest))
		return
	}

	invitation, err := h.invitationService.Issue(c.Request.Context(), services.IssueInvitationInput{
		OrganizationID: org.ID,
		InviterID:      userID,
		Email:          req.Email,
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		RoleID:         req.RoleID,
		Locale:         i18n.FromContext(c),
	})
	if err != nil {
		respondInvitationError(c, err)
		return
	}

	apierrors.Respond(c, http.StatusCreated, i18n.T(c, i18n.MsgInvitationSent), dto.ToInvitationDTO(*invitation, false))
}

// ListInvitations lists personal and link-derived invitations of the organization
func (h *InvitationHandler) ListInvitations(c *gin.Context) {
	org, ok := middleware.GetOrganization(c)
	if !ok {
		apierrors.Unauthorized(c, i18n.T(c, i18n.MsgNotAMember))
		return
	}

	resolved, err := h.invitationService.ListForOrganization(c.Request.Context(), org.ID)
	if err != nil {
		respondInvitationError(c, err)
		return
	}

	invitations := make([]dto.InvitationDTO, len(resolved))
	for i, r := range resolved {
		invitations[i] = dto.ToInvitationDTO(*r.Invitation, r.IsExpired)
	}

	apierrors.Respond(c, http.StatusOK, i18n.T(c, i18n.MsgOK), invitations)
}

// DeleteInvitation hard deletes an invitation
func (h *InvitationHandler) DeleteInvitation(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	org, ok := middleware.GetOrganization(c)
	if !ok {
		apierrors.Unauthorized(c, i18n.T(c, i18n.MsgNotAMember))
		return
	}
	invitationID, ok := parseIDParam(c, "invitation_id")
	if !ok {
		return
	}

	if err := h.invitationService.Delete(c.Request.Context(), org.ID, invitationID, userID); err != nil {
		respondInvitationError(c, err)
		return
	}

	apierrors.Respond(c, http.StatusOK, i18n.T(c, i18n.MsgInvitationDeleted), nil)
}

// ApproveInvitation admits the requester of a pending_approval invitation
func (h *InvitationHandler) ApproveInvitation(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	org, ok := middleware.GetOrganization(c)
	if !ok {
		apierrors.Unauthorized(c, i18n.T(c, i18n.MsgNotAMember))
		return
	}
	invitationID, ok := parseIDParam(c, "invitation_id")
	if !ok {
		return
	}

	invitation, err := h.invitationService.Approve(c.Request.Context(), org.ID, invitationID, userID)
	if err != nil {
		respondInvitationError(c, err)
		return
	}

	apierrors.Respond(c, http.StatusOK, i18n.T(c, i18n.MsgInvitationApproved), dto.ToInvitationDTO(*invitation, false))
}

// RejectInvitation cancels a pending_approval invitation
func (h *InvitationHandler) RejectInvitation(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	org, ok := middleware.GetOrganization(c)
	if !ok {
		apierrors.Unauthorized(c, i18n.T(c, i18n.MsgNotAMember))
		return
	}
	invitationID, ok := parseIDParam(c, "invitation_id")
	if !ok {
		return
	}

	if err := h.invitationService.Reject(c.Request.Context(), org.ID, invitationID, userID); err != nil {
		respondInvitationError(c, err)
		return
	}

	apierrors.Respond(c, http.StatusOK, i18n.T(c, i18n.MsgInvitationRejected), nil)
}

// ResolveInvitation shows the invitation behind a token without changing it
func (h *InvitationHandler) ResolveInvitation(c *gin.Context) {
	resolved, err := h.invitationService.Resolve(c.Request.Context(), c.Param("token"))
	if err != nil {
		respondInvitationError(c, err)
		return
	}

	apierrors.Respond(c, http.StatusOK, i18n.T(c, i18n.MsgOK),
		dto.ToInvitationResolutionDTO(*resolved.Invitation, resolved.IsExpired))
}

// AcceptInvitation accepts a personal invitation for an anonymous caller,
// creating the account or checking the password of the existing one
func (h *InvitationHandler) AcceptInvitation(c *gin.Context) {
	type AcceptInvitationRequest struct {
		Password    string `json:"password"`
		FirstName   string `json:"first_name" binding:"max=100"`
		LastName    string `json:"last_name" binding:"max=100"`
		DateOfBirth string `json:"date_of_birth"`
	}

	var req AcceptInvitationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, i18n.T(c, i18n.MsgInvalidRequest))
		return
	}

	result, err := h.invitationService.Accept(c.Request.Context(), services.AcceptInvitationInput{
		Token:       c.Param("token"),
		Password:    req.Password,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		DateOfBirth: req.DateOfBirth,
	})
	if err != nil {
		respondInvitationError(c, err)
		return
	}

	if err := startSession(c, result.User.ID); err != nil {
		_ = c.Error(err)
		apierrors.DependencyFailure(c, i18n.T(c, i18n.MsgSessionFailed))
		return
	}

	apierrors.Respond(c, http.StatusOK, i18n.T(c, i18n.MsgInvitationAccepted),
		dto.ToAcceptanceDTO(*result.Invitation, *result.User, result.AccountCreated))
}

// AcceptInvitationLoggedIn accepts a personal invitation for the session user
func (h *InvitationHandler) AcceptInvitationLoggedIn(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthenticated(c, i18n.T(c, i18n.MsgAuthRequired))
		return
	}

	result, err := h.invitationService.AcceptLoggedIn(c.Request.Context(), c.Param("token"), userID)
	if err != nil {
		respondInvitationError(c, err)
		return
	}

	apierrors.Respond(c, http.StatusOK, i18n.T(c, i18n.MsgInvitationAccepted),
		dto.ToAcceptanceDTO(*result.Invitation, *result.User, result.AccountCreated))
}

// respondInvitationError maps issuance, acceptance and moderation errors.
func respondInvitationError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrOrganizationNotFound):
		apierrors.NotFound(c, i18n.T(c, i18n.MsgOrganizationNotFound))
	case errors.Is(err, services.ErrInvitationNotFound):
		apierrors.NotFound(c, i18n.T(c, i18n.MsgInvitationNotFound))
	case errors.Is(err, services.ErrRoleNotFound):
		apierrors.BadRequest(c, i18n.T(c, i18n.MsgRoleNotFound))
	case errors.Is(err, services.ErrInvitationExpired):
		apierrors.Expired(c, i18n.T(c, i18n.MsgInvitationExpired))
	case errors.Is(err, services.ErrInvitationNotPending):
		apierrors.InvalidState(c, i18n.T(c, i18n.MsgInvitationNotPending))
	case errors.Is(err, services.ErrInvitationDuplicate):
		apierrors.Conflict(c, i18n.T(c, i18n.MsgInvitationDuplicate))
	case errors.Is(err, services.ErrAlreadyMember):
		apierrors.Conflict(c, i18n.T(c, i18n.MsgAlreadyMember))
	case errors.Is(err, services.ErrMembershipConflict):
		apierrors.Conflict(c, i18n.T(c, i18n.MsgMembershipConflict))
	case errors.Is(err, services.ErrInvitationEmailMismatch):
		apierrors.Unauthorized(c, i18n.T(c, i18n.MsgInvitationEmailBound))
	case errors.Is(err, services.ErrCheckPassword):
		apierrors.BadRequest(c, i18n.T(c, i18n.MsgCheckPassword))
	case errors.Is(err, services.ErrPasswordTooShort):
		apierrors.BadRequest(c, i18n.T(c, i18n.MsgPasswordTooShort, constants.MinPasswordLength))
	case errors.Is(err, services.ErrInvalidDateOfBirth):
		apierrors.BadRequest(c, i18n.T(c, i18n.MsgInvalidDateOfBirth))
	case errors.Is(err, services.ErrUserNotFound):
		apierrors.Unauthenticated(c, i18n.T(c, i18n.MsgAuthRequired))
	case errors.Is(err, services.ErrInvitationEmailFailed):
		_ = c.Error(err)
		apierrors.DependencyFailure(c, i18n.T(c, i18n.MsgInvitationEmailFailed))
	default:
		respondInternalError(c, err)
	}
}
