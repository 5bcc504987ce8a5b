package repository

import (
	"context"
	"errors"

	"github.com/yukikurage/gatehouse-api/internal/database"
	"github.com/yukikurage/gatehouse-api/internal/models"
	"gorm.io/gorm"
)

// Admission outcomes. gorm.ErrRecordNotFound is returned when the invitation is gone.
var (
	ErrInvitationNotAdmissible = errors.New("admission: invitation status not eligible")
	ErrInvitationExpired       = errors.New("admission: invitation expired")
	ErrAlreadyMember           = errors.New("admission: already a member")
	ErrStaleAcceptedInvitation = errors.New("admission: stale accepted invitation")
)

// GormAdmissionRepository is a GORM implementation of AdmissionRepository
type GormAdmissionRepository struct {
	db *gorm.DB
}

// NewAdmissionRepository creates a new AdmissionRepository
func NewAdmissionRepository(db *gorm.DB) AdmissionRepository {
	return &GormAdmissionRepository{db: db}
}

// Admit re-reads the invitation, flips it to accepted keyed on the status it
// was read with, and inserts the membership. Everything happens in one transaction.
func (r *GormAdmissionRepository) Admit(ctx context.Context, params AdmitParams) (*models.Invitation, *models.OrganizationMember, error) {
	var invitation models.Invitation
	var member models.OrganizationMember

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&invitation, params.InvitationID).Error; err != nil {
			return err
		}

		if !statusIn(invitation.Status, params.FromStatuses) {
			return ErrInvitationNotAdmissible
		}
		if invitation.IsExpired(params.Now) {
			return ErrInvitationExpired
		}

		var existing int64
		if err := tx.Model(&models.OrganizationMember{}).
			Where("organization_id = ? AND user_id = ?", invitation.OrganizationID, params.UserID).
			Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return ErrAlreadyMember
		}

		updates := models.StatusColumns(models.InvitationStatusAccepted)
		updates["accepted_at"] = params.Now
		updates["user_id"] = params.UserID

		res := tx.Model(&models.Invitation{}).
			Where("id = ? AND status = ?", invitation.ID, invitation.Status).
			Updates(updates)
		if res.Error != nil {
			if database.IsDuplicateError(res.Error) {
				return ErrStaleAcceptedInvitation
			}
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrInvitationNotAdmissible
		}

		invitedBy := invitation.InvitedByID
		member = models.OrganizationMember{
			OrganizationID: invitation.OrganizationID,
			UserID:         params.UserID,
			RoleID:         invitation.RoleID,
			InvitedByID:    &invitedBy,
			JoinedAt:       params.Now,
		}
		if err := tx.Create(&member).Error; err != nil {
			if database.IsDuplicateError(err) {
				return ErrAlreadyMember
			}
			return err
		}

		acceptedAt := params.Now
		userID := params.UserID
		invitation.SetStatus(models.InvitationStatusAccepted)
		invitation.AcceptedAt = &acceptedAt
		invitation.UserID = &userID
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	return &invitation, &member, nil
}

func statusIn(status models.InvitationStatus, allowed []models.InvitationStatus) bool {
	for _, s := range allowed {
		if s == status {
			return true
		}
	}
	return false
}
