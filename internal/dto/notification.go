package dto

import (
	"time"

	"github.com/yukikurage/gatehouse-api/internal/models"
	"github.com/yukikurage/gatehouse-api/internal/utils"
)

// NotificationDTO represents a notification in API responses
type NotificationDTO struct {
	ID               uint64                  `json:"id"`
	Kind             models.NotificationKind `json:"kind"`
	OrganizationID   uint64                  `json:"organization_id"`
	OrganizationName string                  `json:"organization_name"`
	InvitationID     *uint64                 `json:"invitation_id"`
	Email            string                  `json:"email"`
	Read             bool                    `json:"read"`
	CreatedAt        time.Time               `json:"created_at"`
}

// NotificationListResponse represents a paginated list of notifications
type NotificationListResponse struct {
	Notifications []NotificationDTO        `json:"notifications"`
	Pagination    utils.PaginationResponse `json:"pagination"`
}

// ToNotificationDTO converts a Notification model to DTO
func ToNotificationDTO(n models.Notification) NotificationDTO {
	return NotificationDTO{
		ID:               n.ID,
		Kind:             n.Kind,
		OrganizationID:   n.OrganizationID,
		OrganizationName: n.Organization.Name,
		InvitationID:     n.InvitationID,
		Email:            n.Email,
		Read:             n.ReadAt != nil,
		CreatedAt:        n.CreatedAt,
	}
}
