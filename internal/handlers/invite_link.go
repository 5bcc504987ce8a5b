package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/gatehouse-api/internal/dto"
	apierrors "github.com/yukikurage/gatehouse-api/internal/errors"
	"github.com/yukikurage/gatehouse-api/internal/i18n"
	"github.com/yukikurage/gatehouse-api/internal/middleware"
	"github.com/yukikurage/gatehouse-api/internal/models"
	"github.com/yukikurage/gatehouse-api/internal/services"
)

// InviteLinkHandler serves general invite links.
type InviteLinkHandler struct {
	linkService *services.InviteLinkService
	frontendURL string
}

func NewInviteLinkHandler(linkService *services.InviteLinkService, frontendURL string) *InviteLinkHandler {
	return &InviteLinkHandler{
		linkService: linkService,
		frontendURL: frontendURL,
	}
}

// linkURL is the deep link a link holder opens in the frontend.
func (h *InviteLinkHandler) linkURL(c *gin.Context, token string) string {
	return fmt.Sprintf("%s/%s/general-invite-links/%s", h.frontendURL, i18n.Segment(i18n.FromContext(c)), token)
}

func (h *InviteLinkHandler) toDTO(c *gin.Context, view services.LinkView) dto.InviteLinkDTO {
	return dto.ToInviteLinkDTO(*view.Link, h.linkURL(c, view.Link.Token), view.UsageCount, view.IsExpired)
}

// CreateLink mints a general invite link
func (h *InviteLinkHandler) CreateLink(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	org, ok := middleware.GetOrganization(c)
	if !ok {
		apierrors.Unauthorized(c, i18n.T(c, i18n.MsgNotAMember))
		return
	}

	type CreateLinkRequest struct {
		RoleID           uint64     `json:"role_id" binding:"required"`
		RequiresApproval bool       `json:"requires_approval"`
		ExpiresAt        *time.Time `json:"expires_at"`
	}

	var req CreateLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, i18n.T(c, i18n.MsgInvalidRequest))
		return
	}

	view, err := h.linkService.Create(c.Request.Context(), services.CreateLinkInput{
		OrganizationID:   org.ID,
		CreatorID:        userID,
		RoleID:           req.RoleID,
		RequiresApproval: req.RequiresApproval,
		ExpiresAt:        req.ExpiresAt,
	})
	if err != nil {
		respondInviteLinkError(c, err)
		return
	}

	apierrors.Respond(c, http.StatusCreated, i18n.T(c, i18n.MsgLinkCreated), h.toDTO(c, *view))
}

// ListLinks lists the links of the organization with usage counts
func (h *InviteLinkHandler) ListLinks(c *gin.Context) {
	org, ok := middleware.GetOrganization(c)
	if !ok {
		apierrors.Unauthorized(c, i18n.T(c, i18n.MsgNotAMember))
		return
	}

	views, err := h.linkService.List(c.Request.Context(), org.ID)
	if err != nil {
		respondInviteLinkError(c, err)
		return
	}

	links := make([]dto.InviteLinkDTO, len(views))
	for i, view := range views {
		links[i] = h.toDTO(c, view)
	}

	apierrors.Respond(c, http.StatusOK, i18n.T(c, i18n.MsgOK), links)
}

// DeleteLink deletes a link. Memberships created through it stay.
func (h *InviteLinkHandler) DeleteLink(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	org, ok := middleware.GetOrganization(c)
	if !ok {
		apierrors.Unauthorized(c, i18n.T(c, i18n.MsgNotAMember))
		return
	}
	linkID, ok := parseIDParam(c, "link_id")
	if !ok {
		return
	}

	if err := h.linkService.Delete(c.Request.Context(), org.ID, linkID, userID); err != nil {
		respondInviteLinkError(c, err)
		return
	}

	apierrors.Respond(c, http.StatusOK, i18n.T(c, i18n.MsgLinkDeleted), nil)
}

// ResolveLink shows the organization and seat behind a link token
func (h *InviteLinkHandler) ResolveLink(c *gin.Context) {
	view, err := h.linkService.Resolve(c.Request.Context(), c.Param("token"))
	if err != nil {
		respondInviteLinkError(c, err)
		return
	}

	apierrors.Respond(c, http.StatusOK, i18n.T(c, i18n.MsgOK), dto.ToInviteLinkResolutionDTO(*view.Link, view.IsExpired))
}

// AcceptLink joins, or asks to join, the organization behind a link
func (h *InviteLinkHandler) AcceptLink(c *gin.Context) {
	type AcceptLinkRequest struct {
		Email       string `json:"email" binding:"required,email,max=255"`
		Password    string `json:"password"`
		FirstName   string `json:"first_name" binding:"max=100"`
		LastName    string `json:"last_name" binding:"max=100"`
		DateOfBirth string `json:"date_of_birth"`
	}

	var req AcceptLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, i18n.T(c, i18n.MsgInvalidRequest))
		return
	}

	result, err := h.linkService.AcceptLink(c.Request.Context(), services.AcceptLinkInput{
		Token:         c.Param("token"),
		Email:         req.Email,
		FirstName:     req.FirstName,
		LastName:      req.LastName,
		Password:      req.Password,
		DateOfBirth:   req.DateOfBirth,
		SessionUserID: middleware.SessionUserID(c),
	})
	if err != nil {
		respondInviteLinkError(c, err)
		return
	}

	if err := startSession(c, result.User.ID); err != nil {
		_ = c.Error(err)
		apierrors.DependencyFailure(c, i18n.T(c, i18n.MsgSessionFailed))
		return
	}

	message := i18n.MsgRequestPending
	if result.Invitation.Status == models.InvitationStatusAccepted {
		message = i18n.MsgJoinedOrganization
	}

	apierrors.Respond(c, http.StatusCreated, i18n.T(c, message),
		dto.ToAcceptanceDTO(*result.Invitation, *result.User, result.AccountCreated))
}

func respondInviteLinkError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrLinkNotFound):
		apierrors.NotFound(c, i18n.T(c, i18n.MsgLinkNotFound))
	case errors.Is(err, services.ErrLinkExpired):
		apierrors.Expired(c, i18n.T(c, i18n.MsgLinkExpired))
	case errors.Is(err, services.ErrLinkExpiryInPast):
		apierrors.BadRequest(c, i18n.T(c, i18n.MsgLinkExpiryInPast))
	default:
		respondInvitationError(c, err)
	}
}
