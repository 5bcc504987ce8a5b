package repository

import (
	"context"
	"errors"
	"time"

	"github.com/yukikurage/gatehouse-api/internal/models"
	"gorm.io/gorm"
)

// ErrLastAdmin is returned when removing a member would leave the organization without an admin.
var ErrLastAdmin = errors.New("organization repository: last admin")

// GormOrganizationRepository is a GORM implementation of OrganizationRepository
type GormOrganizationRepository struct {
	db *gorm.DB
}

// NewOrganizationRepository creates a new OrganizationRepository
func NewOrganizationRepository(db *gorm.DB) OrganizationRepository {
	return &GormOrganizationRepository{db: db}
}

// CreateWithFounder creates the organization, its default roles and the founder membership.
func (r *GormOrganizationRepository) CreateWithFounder(ctx context.Context, org *models.Organization, founderID uint64, joinedAt time.Time) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(org).Error; err != nil {
			return err
		}

		roles := models.DefaultRoles(org.ID)
		if err := tx.Create(&roles).Error; err != nil {
			return err
		}
		org.Roles = roles

		var adminRoleID uint64
		for _, role := range roles {
			if role.IsAdmin {
				adminRoleID = role.ID
			}
		}

		member := models.OrganizationMember{
			OrganizationID: org.ID,
			UserID:         founderID,
			RoleID:         adminRoleID,
			JoinedAt:       joinedAt,
		}
		return tx.Create(&member).Error
	})
}

// FindByID finds an organization by ID
func (r *GormOrganizationRepository) FindByID(ctx context.Context, id uint64) (*models.Organization, error) {
	var org models.Organization
	if err := r.db.WithContext(ctx).First(&org, id).Error; err != nil {
		return nil, err
	}
	return &org, nil
}

// Delete deletes an organization and all related data in a transaction
func (r *GormOrganizationRepository) Delete(ctx context.Context, id uint64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		scoped := []interface{}{
			&models.Notification{},
			&models.Invitation{},
			&models.GeneralInviteLink{},
			&models.OrganizationMember{},
			&models.OrganizationRole{},
		}
		for _, model := range scoped {
			if err := tx.Where("organization_id = ?", id).Delete(model).Error; err != nil {
				return err
			}
		}

		// Profiles pointing at the organization lose their main organization.
		if err := tx.Model(&models.Profile{}).
			Where("main_organization_id = ?", id).
			Update("main_organization_id", nil).Error; err != nil {
			return err
		}

		return tx.Delete(&models.Organization{}, id).Error
	})
}

// FindRole finds a role that belongs to the organization
func (r *GormOrganizationRepository) FindRole(ctx context.Context, organizationID, roleID uint64) (*models.OrganizationRole, error) {
	var role models.OrganizationRole
	if err := r.db.WithContext(ctx).
		Where("organization_id = ? AND id = ?", organizationID, roleID).
		First(&role).Error; err != nil {
		return nil, err
	}
	return &role, nil
}

// ListRoles lists the roles of an organization
func (r *GormOrganizationRepository) ListRoles(ctx context.Context, organizationID uint64) ([]models.OrganizationRole, error) {
	var roles []models.OrganizationRole
	if err := r.db.WithContext(ctx).
		Where("organization_id = ?", organizationID).
		Order("id ASC").
		Find(&roles).Error; err != nil {
		return nil, err
	}
	return roles, nil
}

// FindMember finds a specific organization member
func (r *GormOrganizationRepository) FindMember(ctx context.Context, organizationID, userID uint64) (*models.OrganizationMember, error) {
	var member models.OrganizationMember
	if err := r.db.WithContext(ctx).
		Preload("Role").
		Where("organization_id = ? AND user_id = ?", organizationID, userID).
		First(&member).Error; err != nil {
		return nil, err
	}
	return &member, nil
}

// ListMembers lists all members of an organization
func (r *GormOrganizationRepository) ListMembers(ctx context.Context, organizationID uint64) ([]models.OrganizationMember, error) {
	var members []models.OrganizationMember
	if err := r.db.WithContext(ctx).
		Preload("User").
		Preload("User.Profile").
		Preload("Role").
		Where("organization_id = ?", organizationID).
		Order("joined_at ASC").
		Find(&members).Error; err != nil {
		return nil, err
	}
	return members, nil
}

// ListMembershipsByUserID lists all organizations a user is a member of
func (r *GormOrganizationRepository) ListMembershipsByUserID(ctx context.Context, userID uint64) ([]models.OrganizationMember, error) {
	var memberships []models.OrganizationMember
	if err := r.db.WithContext(ctx).
		Preload("Organization").
		Preload("Role").
		Where("user_id = ?", userID).
		Order("joined_at ASC").
		Find(&memberships).Error; err != nil {
		return nil, err
	}
	return memberships, nil
}

// ListAdminUserIDs lists the users holding an admin role
func (r *GormOrganizationRepository) ListAdminUserIDs(ctx context.Context, organizationID uint64) ([]uint64, error) {
	var ids []uint64
	err := r.db.WithContext(ctx).
		Model(&models.OrganizationMember{}).
		Joins("JOIN organization_roles ON organization_roles.id = organization_members.role_id").
		Where("organization_members.organization_id = ? AND organization_roles.is_admin = ?", organizationID, true).
		Pluck("organization_members.user_id", &ids).Error
	return ids, err
}

// CountMembers counts the members of an organization
func (r *GormOrganizationRepository) CountMembers(ctx context.Context, organizationID uint64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.OrganizationMember{}).
		Where("organization_id = ?", organizationID).
		Count(&count).Error
	return count, err
}

// RemoveMember removes a member from an organization. The admin count is
// checked inside the same transaction as the delete.
func (r *GormOrganizationRepository) RemoveMember(ctx context.Context, organizationID, userID uint64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var member models.OrganizationMember
		if err := tx.Preload("Role").
			Where("organization_id = ? AND user_id = ?", organizationID, userID).
			First(&member).Error; err != nil {
			return err
		}

		if member.Role.IsAdmin {
			var admins int64
			if err := tx.Model(&models.OrganizationMember{}).
				Joins("JOIN organization_roles ON organization_roles.id = organization_members.role_id").
				Where("organization_members.organization_id = ? AND organization_roles.is_admin = ?", organizationID, true).
				Count(&admins).Error; err != nil {
				return err
			}
			if admins <= 1 {
				return ErrLastAdmin
			}
		}

		return tx.Where("organization_id = ? AND user_id = ?", organizationID, userID).
			Delete(&models.OrganizationMember{}).Error
	})
}
