package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/yukikurage/gatehouse-api/internal/models"
	"github.com/yukikurage/gatehouse-api/internal/repository"
	"github.com/yukikurage/gatehouse-api/internal/utils"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var ErrNotificationNotFound = errors.New("notification not found")

// NotificationService stores in-app notifications about membership events.
type NotificationService struct {
	notificationRepo repository.NotificationRepository
	orgRepo          repository.OrganizationRepository
	logger           *zap.Logger
	now              func() time.Time
}

// NewNotificationService creates a new NotificationService.
func NewNotificationService(notificationRepo repository.NotificationRepository, orgRepo repository.OrganizationRepository, logger *zap.Logger, now func() time.Time) *NotificationService {
	return &NotificationService{
		notificationRepo: notificationRepo,
		orgRepo:          orgRepo,
		logger:           logger,
		now:              now,
	}
}

// NotifyUser records a notification for one user. Failures are logged only.
func (s *NotificationService) NotifyUser(ctx context.Context, userID uint64, kind models.NotificationKind, invitation *models.Invitation) {
	s.store(ctx, []uint64{userID}, kind, invitation)
}

// NotifyAdmins records a notification for every admin of the invitation's
// organization. Failures are logged only.
func (s *NotificationService) NotifyAdmins(ctx context.Context, kind models.NotificationKind, invitation *models.Invitation) {
	adminIDs, err := s.orgRepo.ListAdminUserIDs(ctx, invitation.OrganizationID)
	if err != nil {
		s.logger.Warn("failed to list organization admins",
			zap.Uint64("organization_id", invitation.OrganizationID),
			zap.Error(err),
		)
		return
	}
	s.store(ctx, adminIDs, kind, invitation)
}

func (s *NotificationService) store(ctx context.Context, userIDs []uint64, kind models.NotificationKind, invitation *models.Invitation) {
	invitationID := invitation.ID
	notifications := make([]models.Notification, len(userIDs))
	for i, userID := range userIDs {
		notifications[i] = models.Notification{
			UserID:         userID,
			OrganizationID: invitation.OrganizationID,
			Kind:           kind,
			InvitationID:   &invitationID,
			Email:          invitation.Email,
			CreatedAt:      s.now(),
		}
	}

	if err := s.notificationRepo.CreateBatch(ctx, notifications); err != nil {
		s.logger.Warn("failed to store notifications",
			zap.String("kind", string(kind)),
			zap.Uint64("organization_id", invitation.OrganizationID),
			zap.Uint64("invitation_id", invitation.ID),
			zap.Error(err),
		)
	}
}

// ListNotificationsInput represents filters for listing notifications
type ListNotificationsInput struct {
	UserID     uint64
	UnreadOnly bool
	Pagination utils.PaginationParams
}

// List returns the notifications of a user, newest first.
func (s *NotificationService) List(ctx context.Context, input ListNotificationsInput) ([]models.Notification, int64, error) {
	notifications, total, err := s.notificationRepo.List(ctx, repository.NotificationFilter{
		UserID:     input.UserID,
		UnreadOnly: input.UnreadOnly,
		Pagination: input.Pagination,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list notifications: %w", err)
	}
	return notifications, total, nil
}

// MarkRead marks a notification of the user as read.
func (s *NotificationService) MarkRead(ctx context.Context, id, userID uint64) error {
	if err := s.notificationRepo.MarkRead(ctx, id, userID, s.now()); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotificationNotFound
		}
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	return nil
}
