package repository

import (
	"context"

	"github.com/yukikurage/gatehouse-api/internal/models"
	"gorm.io/gorm"
)

// GormInvitationRepository is a GORM implementation of InvitationRepository
type GormInvitationRepository struct {
	db *gorm.DB
}

// NewInvitationRepository creates a new InvitationRepository
func NewInvitationRepository(db *gorm.DB) InvitationRepository {
	return &GormInvitationRepository{db: db}
}

// Create stores a new invitation
func (r *GormInvitationRepository) Create(ctx context.Context, invitation *models.Invitation) error {
	invitation.SetStatus(invitation.Status)
	return r.db.WithContext(ctx).Create(invitation).Error
}

// FindByID finds an invitation by ID
func (r *GormInvitationRepository) FindByID(ctx context.Context, id uint64) (*models.Invitation, error) {
	var invitation models.Invitation
	if err := r.db.WithContext(ctx).Preload("Role").First(&invitation, id).Error; err != nil {
		return nil, err
	}
	return &invitation, nil
}

// FindByTokenHash finds an invitation by token fingerprint
func (r *GormInvitationRepository) FindByTokenHash(ctx context.Context, tokenHash string) (*models.Invitation, error) {
	var invitation models.Invitation
	if err := r.db.WithContext(ctx).
		Preload("Organization").
		Preload("Role").
		Where("token_hash = ?", tokenHash).
		First(&invitation).Error; err != nil {
		return nil, err
	}
	return &invitation, nil
}

// FindOpen finds open invitations for an email
func (r *GormInvitationRepository) FindOpen(ctx context.Context, organizationID uint64, email string) ([]models.Invitation, error) {
	var invitations []models.Invitation
	if err := r.db.WithContext(ctx).
		Where("organization_id = ? AND email = ? AND status IN ?", organizationID, email,
			[]models.InvitationStatus{models.InvitationStatusPending, models.InvitationStatusPendingApproval}).
		Find(&invitations).Error; err != nil {
		return nil, err
	}
	return invitations, nil
}

// ListByOrganization lists all invitations of an organization
func (r *GormInvitationRepository) ListByOrganization(ctx context.Context, organizationID uint64) ([]models.Invitation, error) {
	var invitations []models.Invitation
	if err := r.db.WithContext(ctx).
		Preload("Role").
		Where("organization_id = ?", organizationID).
		Order("created_at DESC, id DESC").
		Find(&invitations).Error; err != nil {
		return nil, err
	}
	return invitations, nil
}

// UpdateStatus sets the status of the given invitations
func (r *GormInvitationRepository) UpdateStatus(ctx context.Context, ids []uint64, status models.InvitationStatus) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&models.Invitation{}).
		Where("id IN ?", ids).
		Updates(models.StatusColumns(status)).Error
}

// Transition moves one invitation between statuses with a compare-and-swap on the status column.
func (r *GormInvitationRepository) Transition(ctx context.Context, id uint64, from, to models.InvitationStatus) error {
	res := r.db.WithContext(ctx).
		Model(&models.Invitation{}).
		Where("id = ? AND status = ?", id, from).
		Updates(models.StatusColumns(to))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrInvitationNotAdmissible
	}
	return nil
}

// Delete hard deletes an invitation
func (r *GormInvitationRepository) Delete(ctx context.Context, id uint64) error {
	return r.db.WithContext(ctx).Delete(&models.Invitation{}, id).Error
}

// CancelStaleAccepted cancels accepted duplicates bound to the accepting account.
// Rows accepted by another account stay invisible to the caller.
func (r *GormInvitationRepository) CancelStaleAccepted(ctx context.Context, organizationID uint64, email string, exceptID, visibleTo uint64) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Invitation{}).
		Where("organization_id = ? AND email = ? AND status = ? AND id <> ?",
			organizationID, email, models.InvitationStatusAccepted, exceptID).
		Where("user_id = ?", visibleTo).
		Updates(models.StatusColumns(models.InvitationStatusCancelled))
	return res.RowsAffected, res.Error
}

// PurgeStaleAccepted hard deletes accepted duplicates regardless of which account accepted them.
func (r *GormInvitationRepository) PurgeStaleAccepted(ctx context.Context, organizationID uint64, email string, exceptID uint64) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("organization_id = ? AND email = ? AND status = ? AND id <> ?",
			organizationID, email, models.InvitationStatusAccepted, exceptID).
		Delete(&models.Invitation{})
	return res.RowsAffected, res.Error
}

type linkCount struct {
	LinkID uint64
	Total  int64
}

// CountByLinks counts the invitations spawned from each link
func (r *GormInvitationRepository) CountByLinks(ctx context.Context, linkIDs []uint64) (map[uint64]int64, error) {
	counts := make(map[uint64]int64, len(linkIDs))
	if len(linkIDs) == 0 {
		return counts, nil
	}

	var rows []linkCount
	if err := r.db.WithContext(ctx).
		Model(&models.Invitation{}).
		Select("link_id, COUNT(*) AS total").
		Where("link_id IN ?", linkIDs).
		Group("link_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	for _, row := range rows {
		counts[row.LinkID] = row.Total
	}
	return counts, nil
}
