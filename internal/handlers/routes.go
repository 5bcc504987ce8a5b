package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/gatehouse-api/internal/middleware"
)

// Handlers groups the HTTP handlers mounted by RegisterRoutes.
type Handlers struct {
	Auth          *AuthHandler
	Organizations *OrganizationHandler
	Invitations   *InvitationHandler
	InviteLinks   *InviteLinkHandler
	Notifications *NotificationHandler
}

// RegisterRoutes mounts the API on r. tokenLimiter guards the anonymous
// token endpoints.
func RegisterRoutes(r *gin.Engine, h Handlers, tokenLimiter *middleware.IPRateLimiter) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "Gatehouse API is running",
		})
	})

	api := r.Group("/api")
	{
		// Auth routes (public)
		auth := api.Group("/auth")
		{
			auth.POST("/signup", h.Auth.Signup)
			auth.POST("/login", h.Auth.Login)
			auth.POST("/logout", h.Auth.Logout)
			auth.GET("/me", middleware.RequireAuth(), h.Auth.GetCurrentUser)
			auth.PUT("/me/main-organization", middleware.RequireAuth(), h.Auth.SetMainOrganization)
		}

		// Organization routes (protected)
		orgs := api.Group("/organizations")
		orgs.Use(middleware.RequireAuth())
		{
			orgs.POST("", h.Organizations.CreateOrganization)
			orgs.GET("", h.Organizations.ListOrganizations)

			member := orgs.Group("/:id", middleware.RequireOrganizationAccess())
			member.GET("", h.Organizations.GetOrganization)
			member.GET("/roles", h.Organizations.ListRoles)

			admin := member.Group("", middleware.RequireOrganizationAdmin())
			admin.DELETE("", h.Organizations.DeleteOrganization)
			admin.DELETE("/members/:user_id", h.Organizations.RemoveMember)
			admin.POST("/invitations", h.Invitations.CreateInvitation)
			admin.GET("/invitations", h.Invitations.ListInvitations)
			admin.DELETE("/invitations/:invitation_id", h.Invitations.DeleteInvitation)
			admin.POST("/invitations/:invitation_id/approve", h.Invitations.ApproveInvitation)
			admin.POST("/invitations/:invitation_id/reject", h.Invitations.RejectInvitation)
			admin.POST("/general-invite-links", h.InviteLinks.CreateLink)
			admin.GET("/general-invite-links", h.InviteLinks.ListLinks)
			admin.DELETE("/general-invite-links/:link_id", h.InviteLinks.DeleteLink)
		}

		// Token routes (anonymous, rate limited)
		invitations := api.Group("/invitations/:token", tokenLimiter.Middleware())
		{
			invitations.GET("", h.Invitations.ResolveInvitation)
			invitations.POST("/accept", h.Invitations.AcceptInvitation)
			invitations.POST("/accept-logged-in", middleware.RequireAuth(), h.Invitations.AcceptInvitationLoggedIn)
		}

		links := api.Group("/general-invite-links/:token", tokenLimiter.Middleware())
		{
			links.GET("", h.InviteLinks.ResolveLink)
			links.POST("/accept", middleware.OptionalAuth(), h.InviteLinks.AcceptLink)
		}

		notifications := api.Group("/notifications")
		notifications.Use(middleware.RequireAuth())
		{
			notifications.GET("", h.Notifications.ListNotifications)
			notifications.POST("/:notification_id/read", h.Notifications.MarkRead)
		}
	}
}
