package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/gatehouse-api/internal/dto"
	apierrors "github.com/yukikurage/gatehouse-api/internal/errors"
	"github.com/yukikurage/gatehouse-api/internal/i18n"
	"github.com/yukikurage/gatehouse-api/internal/middleware"
	"github.com/yukikurage/gatehouse-api/internal/models"
	"github.com/yukikurage/gatehouse-api/internal/services"
)

type OrganizationHandler struct {
	orgService *services.OrganizationService
}

func NewOrganizationHandler(orgService *services.OrganizationService) *OrganizationHandler {
	return &OrganizationHandler{orgService: orgService}
}

// CreateOrganization creates a new organization
func (h *OrganizationHandler) CreateOrganization(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthenticated(c, i18n.T(c, i18n.MsgAuthRequired))
		return
	}

	type CreateOrgRequest struct {
		Name string                  `json:"name" binding:"required,max=255"`
		Type models.OrganizationType `json:"type"`
	}

	var req CreateOrgRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, i18n.T(c, i18n.MsgInvalidRequest))
		return
	}

	org, err := h.orgService.CreateOrganization(c.Request.Context(), services.CreateOrganizationInput{
		Name:      req.Name,
		Type:      req.Type,
		FounderID: userID,
	})
	if err != nil {
		respondOrganizationError(c, err)
		return
	}

	apierrors.Respond(c, http.StatusCreated, i18n.T(c, i18n.MsgOrganizationCreated), dto.ToOrganizationDTO(*org))
}

// ListOrganizations returns all organizations the user is a member of
func (h *OrganizationHandler) ListOrganizations(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthenticated(c, i18n.T(c, i18n.MsgAuthRequired))
		return
	}

	memberships, err := h.orgService.ListOrganizationsForUser(c.Request.Context(), userID)
	if err != nil {
		respondOrganizationError(c, err)
		return
	}

	orgs := make([]dto.OrganizationWithRoleDTO, len(memberships))
	for i, membership := range memberships {
		orgs[i] = dto.ToOrganizationWithRoleDTO(membership)
	}

	apierrors.Respond(c, http.StatusOK, i18n.T(c, i18n.MsgOK), orgs)
}

// GetOrganization returns organization details with members and seats
func (h *OrganizationHandler) GetOrganization(c *gin.Context) {
	member, ok := middleware.GetOrganizationMember(c)
	if !ok {
		apierrors.Unauthorized(c, i18n.T(c, i18n.MsgNotAMember))
		return
	}

	ctx := c.Request.Context()
	org, members, err := h.orgService.GetOrganizationWithMembers(ctx, member.OrganizationID)
	if err != nil {
		respondOrganizationError(c, err)
		return
	}

	roles, err := h.orgService.ListRoles(ctx, org.ID)
	if err != nil {
		respondOrganizationError(c, err)
		return
	}
	org.Roles = roles

	apierrors.Respond(c, http.StatusOK, i18n.T(c, i18n.MsgOK), dto.ToOrganizationDetailDTO(*org, members, member.Role))
}

// ListRoles returns the seats of the organization
func (h *OrganizationHandler) ListRoles(c *gin.Context) {
	org, ok := middleware.GetOrganization(c)
	if !ok {
		apierrors.Unauthorized(c, i18n.T(c, i18n.MsgNotAMember))
		return
	}

	roles, err := h.orgService.ListRoles(c.Request.Context(), org.ID)
	if err != nil {
		respondOrganizationError(c, err)
		return
	}

	apierrors.Respond(c, http.StatusOK, i18n.T(c, i18n.MsgOK), dto.ToRoleDTOs(roles))
}

// DeleteOrganization deletes an organization once the caller is its last member
func (h *OrganizationHandler) DeleteOrganization(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	org, ok := middleware.GetOrganization(c)
	if !ok {
		apierrors.Unauthorized(c, i18n.T(c, i18n.MsgNotAMember))
		return
	}

	if err := h.orgService.DeleteOrganization(c.Request.Context(), org.ID, userID); err != nil {
		respondOrganizationError(c, err)
		return
	}

	apierrors.Respond(c, http.StatusOK, i18n.T(c, i18n.MsgOrganizationDeleted), nil)
}

// RemoveMember removes a member from the organization
func (h *OrganizationHandler) RemoveMember(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	org, ok := middleware.GetOrganization(c)
	if !ok {
		apierrors.Unauthorized(c, i18n.T(c, i18n.MsgNotAMember))
		return
	}

	targetID, ok := parseIDParam(c, "user_id")
	if !ok {
		return
	}

	if err := h.orgService.RemoveMember(c.Request.Context(), org.ID, userID, targetID); err != nil {
		respondOrganizationError(c, err)
		return
	}

	apierrors.Respond(c, http.StatusOK, i18n.T(c, i18n.MsgMemberRemoved), nil)
}

func respondOrganizationError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrInvalidOrganization):
		apierrors.BadRequest(c, i18n.T(c, i18n.MsgInvalidOrganization))
	case errors.Is(err, services.ErrOrganizationNotFound):
		apierrors.NotFound(c, i18n.T(c, i18n.MsgOrganizationNotFound))
	case errors.Is(err, services.ErrOrganizationHasMembers):
		apierrors.Conflict(c, i18n.T(c, i18n.MsgOrganizationHasMember))
	case errors.Is(err, services.ErrCannotRemoveYourself):
		apierrors.BadRequest(c, i18n.T(c, i18n.MsgCannotRemoveYourself))
	case errors.Is(err, services.ErrOrganizationMemberNotFound):
		apierrors.NotFound(c, i18n.T(c, i18n.MsgMemberNotFound))
	case errors.Is(err, services.ErrLastAdmin):
		apierrors.Conflict(c, i18n.T(c, i18n.MsgLastAdmin))
	default:
		respondInternalError(c, err)
	}
}

// parseIDParam reads a numeric path parameter.
func parseIDParam(c *gin.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, i18n.T(c, i18n.MsgInvalidRequest))
		return 0, false
	}
	return id, true
}
