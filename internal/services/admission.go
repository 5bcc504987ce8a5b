package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/yukikurage/gatehouse-api/internal/models"
	"github.com/yukikurage/gatehouse-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrInvitationNotFound   = errors.New("invitation not found")
	ErrInvitationExpired    = errors.New("invitation expired")
	ErrInvitationNotPending = errors.New("invitation is no longer pending")
	ErrAlreadyMember        = errors.New("user is already a member of this organization")
	ErrMembershipConflict   = errors.New("membership conflicts with a stale accepted invitation")
)

// Admitter turns an open invitation into a membership.
type Admitter struct {
	invitationRepo repository.InvitationRepository
	admissionRepo  repository.AdmissionRepository
	mainOrg        *MainOrganizationSelector
	logger         *zap.Logger
	now            func() time.Time
}

// NewAdmitter creates a new Admitter.
func NewAdmitter(invitationRepo repository.InvitationRepository, admissionRepo repository.AdmissionRepository, mainOrg *MainOrganizationSelector, logger *zap.Logger, now func() time.Time) *Admitter {
	return &Admitter{
		invitationRepo: invitationRepo,
		admissionRepo:  admissionRepo,
		mainOrg:        mainOrg,
		logger:         logger,
		now:            now,
	}
}

// Admit admits userID through invitation, which must currently be in one of
// from. Stale accepted rows for the same email are cancelled first; when that
// is not enough the rows are purged and admission is retried exactly once.
// On success the main organization of the user is updated.
func (a *Admitter) Admit(ctx context.Context, invitation *models.Invitation, userID uint64, from ...models.InvitationStatus) (*models.Invitation, error) {
	log := a.logger.With(
		zap.Uint64("organization_id", invitation.OrganizationID),
		zap.Uint64("invitation_id", invitation.ID),
		zap.String("email", invitation.Email),
	)

	if n, err := a.invitationRepo.CancelStaleAccepted(ctx, invitation.OrganizationID, invitation.Email, invitation.ID, userID); err != nil {
		log.Warn("stale invitation cleanup failed", zap.Error(err))
	} else if n > 0 {
		log.Info("cancelled stale accepted invitations", zap.Int64("count", n))
	}

	params := repository.AdmitParams{
		InvitationID: invitation.ID,
		UserID:       userID,
		FromStatuses: from,
		Now:          a.now(),
	}

	admitted, _, err := a.admissionRepo.Admit(ctx, params)
	if errors.Is(err, repository.ErrStaleAcceptedInvitation) {
		log.Warn("admission blocked by stale accepted invitation, purging and retrying once")

		purged, purgeErr := a.invitationRepo.PurgeStaleAccepted(ctx, invitation.OrganizationID, invitation.Email, invitation.ID)
		if purgeErr != nil {
			log.Error("failed to purge stale accepted invitations", zap.Error(purgeErr))
			return nil, ErrMembershipConflict
		}
		log.Info("purged stale accepted invitations", zap.Int64("count", purged))

		params.Now = a.now()
		admitted, _, err = a.admissionRepo.Admit(ctx, params)
		if errors.Is(err, repository.ErrStaleAcceptedInvitation) {
			log.Error("admission still conflicting after purge")
			return nil, ErrMembershipConflict
		}
	}
	if err != nil {
		return nil, translateAdmissionError(err)
	}

	if err := a.mainOrg.AfterAdmission(ctx, userID, admitted.OrganizationID); err != nil {
		log.Warn("failed to update main organization", zap.Uint64("user_id", userID), zap.Error(err))
	}

	log.Info("invitation accepted", zap.Uint64("user_id", userID))
	return admitted, nil
}

// SupersedeExpired cancels expired open invitations for (orgID, email) and
// returns the ones that are still open.
func (a *Admitter) SupersedeExpired(ctx context.Context, orgID uint64, email string) ([]models.Invitation, error) {
	open, err := a.invitationRepo.FindOpen(ctx, orgID, email)
	if err != nil {
		return nil, fmt.Errorf("failed to find open invitations: %w", err)
	}

	now := a.now()
	var expired []uint64
	var live []models.Invitation
	for _, inv := range open {
		if inv.IsExpired(now) {
			expired = append(expired, inv.ID)
			continue
		}
		live = append(live, inv)
	}

	if len(expired) > 0 {
		if err := a.invitationRepo.UpdateStatus(ctx, expired, models.InvitationStatusCancelled); err != nil {
			return nil, fmt.Errorf("failed to cancel expired invitations: %w", err)
		}
		a.logger.Info("cancelled expired invitations",
			zap.Uint64("organization_id", orgID),
			zap.String("email", email),
			zap.Int("count", len(expired)),
		)
	}

	return live, nil
}

func translateAdmissionError(err error) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrInvitationNotFound
	case errors.Is(err, repository.ErrInvitationExpired):
		return ErrInvitationExpired
	case errors.Is(err, repository.ErrInvitationNotAdmissible):
		return ErrInvitationNotPending
	case errors.Is(err, repository.ErrAlreadyMember):
		return ErrAlreadyMember
	default:
		return fmt.Errorf("failed to admit member: %w", err)
	}
}
