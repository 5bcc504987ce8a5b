package middleware

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/gatehouse-api/internal/constants"
	"github.com/yukikurage/gatehouse-api/internal/database"
	apierrors "github.com/yukikurage/gatehouse-api/internal/errors"
	"github.com/yukikurage/gatehouse-api/internal/i18n"
	"github.com/yukikurage/gatehouse-api/internal/models"
)

// RequireOrganizationAccess checks if the user is a member of the organization
func RequireOrganizationAccess() gin.HandlerFunc {
	return func(c *gin.Context) {
		orgID, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil {
			apierrors.Abort(c, apierrors.ErrCodeValidationFailed, i18n.T(c, i18n.MsgInvalidRequest))
			return
		}

		userID, exists := GetUserID(c)
		if !exists {
			apierrors.Abort(c, apierrors.ErrCodeUnauthenticated, i18n.T(c, i18n.MsgAuthRequired))
			return
		}

		db := database.GetDB().WithContext(c.Request.Context())

		var org models.Organization
		if err := db.First(&org, orgID).Error; err != nil {
			if database.IsNotFound(err) {
				apierrors.Abort(c, apierrors.ErrCodeNotFound, i18n.T(c, i18n.MsgOrganizationNotFound))
				return
			}
			apierrors.Abort(c, apierrors.ErrCodeDependencyFailure, i18n.T(c, i18n.MsgInternalError))
			return
		}

		var member models.OrganizationMember
		err = db.Preload("Role").
			Where("organization_id = ? AND user_id = ?", orgID, userID).
			First(&member).Error
		if err != nil {
			if database.IsNotFound(err) {
				apierrors.Abort(c, apierrors.ErrCodeUnauthorized, i18n.T(c, i18n.MsgNotAMember))
				return
			}
			apierrors.Abort(c, apierrors.ErrCodeDependencyFailure, i18n.T(c, i18n.MsgInternalError))
			return
		}

		c.Set(constants.ContextKeyOrganization, org)
		c.Set(constants.ContextKeyOrganizationMember, member)
		c.Next()
	}
}

// RequireOrganizationAdmin checks if the member holds an admin seat
func RequireOrganizationAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		member, ok := GetOrganizationMember(c)
		if !ok {
			apierrors.Abort(c, apierrors.ErrCodeUnauthorized, i18n.T(c, i18n.MsgAccessDenied))
			return
		}

		if !member.Role.IsAdmin {
			apierrors.Abort(c, apierrors.ErrCodeUnauthorized, i18n.T(c, i18n.MsgAccessDenied))
			return
		}

		c.Next()
	}
}

// GetOrganization returns the organization loaded by RequireOrganizationAccess
func GetOrganization(c *gin.Context) (models.Organization, bool) {
	v, exists := c.Get(constants.ContextKeyOrganization)
	if !exists {
		return models.Organization{}, false
	}
	org, ok := v.(models.Organization)
	return org, ok
}

// GetOrganizationMember returns the membership loaded by RequireOrganizationAccess
func GetOrganizationMember(c *gin.Context) (models.OrganizationMember, bool) {
	v, exists := c.Get(constants.ContextKeyOrganizationMember)
	if !exists {
		return models.OrganizationMember{}, false
	}
	member, ok := v.(models.OrganizationMember)
	return member, ok
}
