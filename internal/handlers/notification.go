package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/gatehouse-api/internal/dto"
	apierrors "github.com/yukikurage/gatehouse-api/internal/errors"
	"github.com/yukikurage/gatehouse-api/internal/i18n"
	"github.com/yukikurage/gatehouse-api/internal/middleware"
	"github.com/yukikurage/gatehouse-api/internal/services"
	"github.com/yukikurage/gatehouse-api/internal/utils"
)

type NotificationHandler struct {
	notificationService *services.NotificationService
}

func NewNotificationHandler(notificationService *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService}
}

// ListNotifications returns the caller's notifications, newest first
func (h *NotificationHandler) ListNotifications(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthenticated(c, i18n.T(c, i18n.MsgAuthRequired))
		return
	}

	pagination := utils.GetPaginationParams(c)
	notifications, total, err := h.notificationService.List(c.Request.Context(), services.ListNotificationsInput{
		UserID:     userID,
		UnreadOnly: c.Query("unread") == "true",
		Pagination: pagination,
	})
	if err != nil {
		respondInternalError(c, err)
		return
	}

	items := make([]dto.NotificationDTO, len(notifications))
	for i, n := range notifications {
		items[i] = dto.ToNotificationDTO(n)
	}

	apierrors.Respond(c, http.StatusOK, i18n.T(c, i18n.MsgOK), dto.NotificationListResponse{
		Notifications: items,
		Pagination: utils.PaginationResponse{
			Page:  pagination.Page,
			Limit: pagination.Limit,
			Total: total,
		},
	})
}

// MarkRead marks one of the caller's notifications as read
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthenticated(c, i18n.T(c, i18n.MsgAuthRequired))
		return
	}
	notificationID, ok := parseIDParam(c, "notification_id")
	if !ok {
		return
	}

	if err := h.notificationService.MarkRead(c.Request.Context(), notificationID, userID); err != nil {
		if errors.Is(err, services.ErrNotificationNotFound) {
			apierrors.NotFound(c, i18n.T(c, i18n.MsgNotificationNotFound))
			return
		}
		respondInternalError(c, err)
		return
	}

	apierrors.Respond(c, http.StatusOK, i18n.T(c, i18n.MsgOK), nil)
}
