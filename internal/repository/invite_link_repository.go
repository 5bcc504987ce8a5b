package repository

import (
	"context"

	"github.com/yukikurage/gatehouse-api/internal/models"
	"gorm.io/gorm"
)

// GormInviteLinkRepository is a GORM implementation of InviteLinkRepository
type GormInviteLinkRepository struct {
	db *gorm.DB
}

// NewInviteLinkRepository creates a new InviteLinkRepository
func NewInviteLinkRepository(db *gorm.DB) InviteLinkRepository {
	return &GormInviteLinkRepository{db: db}
}

// Create stores a new link
func (r *GormInviteLinkRepository) Create(ctx context.Context, link *models.GeneralInviteLink) error {
	return r.db.WithContext(ctx).Create(link).Error
}

// FindByToken finds a link by token
func (r *GormInviteLinkRepository) FindByToken(ctx context.Context, token string) (*models.GeneralInviteLink, error) {
	var link models.GeneralInviteLink
	if err := r.db.WithContext(ctx).
		Preload("Organization").
		Preload("Role").
		Where("token = ?", token).
		First(&link).Error; err != nil {
		return nil, err
	}
	return &link, nil
}

// FindByID finds a link of an organization
func (r *GormInviteLinkRepository) FindByID(ctx context.Context, organizationID, id uint64) (*models.GeneralInviteLink, error) {
	var link models.GeneralInviteLink
	if err := r.db.WithContext(ctx).
		Where("organization_id = ? AND id = ?", organizationID, id).
		First(&link).Error; err != nil {
		return nil, err
	}
	return &link, nil
}

// ListByOrganization lists the links of an organization
func (r *GormInviteLinkRepository) ListByOrganization(ctx context.Context, organizationID uint64) ([]models.GeneralInviteLink, error) {
	var links []models.GeneralInviteLink
	if err := r.db.WithContext(ctx).
		Preload("Role").
		Where("organization_id = ?", organizationID).
		Order("created_at DESC, id DESC").
		Find(&links).Error; err != nil {
		return nil, err
	}
	return links, nil
}

// Delete deletes a link. Invitations already spawned from it keep their link_id.
func (r *GormInviteLinkRepository) Delete(ctx context.Context, id uint64) error {
	return r.db.WithContext(ctx).Delete(&models.GeneralInviteLink{}, id).Error
}
