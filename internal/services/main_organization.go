package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/yukikurage/gatehouse-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// MainOrganizationSelector keeps the advisory main organization pointer of a
// profile pointing at an organization the user belongs to.
type MainOrganizationSelector struct {
	userRepo repository.UserRepository
	orgRepo  repository.OrganizationRepository
	logger   *zap.Logger
}

// NewMainOrganizationSelector creates a new MainOrganizationSelector.
func NewMainOrganizationSelector(userRepo repository.UserRepository, orgRepo repository.OrganizationRepository, logger *zap.Logger) *MainOrganizationSelector {
	return &MainOrganizationSelector{
		userRepo: userRepo,
		orgRepo:  orgRepo,
		logger:   logger,
	}
}

// AfterAdmission points the main organization at orgID when none is set or
// the current one no longer has the user as a member.
func (s *MainOrganizationSelector) AfterAdmission(ctx context.Context, userID, orgID uint64) error {
	profile, err := s.userRepo.FindProfile(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to load profile: %w", err)
	}

	if profile.MainOrganizationID != nil {
		if *profile.MainOrganizationID == orgID {
			return nil
		}
		stillMember, err := s.isMember(ctx, *profile.MainOrganizationID, userID)
		if err != nil {
			return err
		}
		if stillMember {
			return nil
		}
	}

	if err := s.userRepo.SetMainOrganization(ctx, userID, &orgID); err != nil {
		return fmt.Errorf("failed to set main organization: %w", err)
	}
	return nil
}

// Recalculate keeps a valid main organization, or falls back to the earliest
// remaining membership, or clears the pointer.
func (s *MainOrganizationSelector) Recalculate(ctx context.Context, userID uint64) error {
	profile, err := s.userRepo.FindProfile(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to load profile: %w", err)
	}

	if profile.MainOrganizationID != nil {
		stillMember, err := s.isMember(ctx, *profile.MainOrganizationID, userID)
		if err != nil {
			return err
		}
		if stillMember {
			return nil
		}
	}

	memberships, err := s.orgRepo.ListMembershipsByUserID(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to list memberships: %w", err)
	}

	var next *uint64
	if len(memberships) > 0 {
		id := memberships[0].OrganizationID
		next = &id
	}

	if err := s.userRepo.SetMainOrganization(ctx, userID, next); err != nil {
		return fmt.Errorf("failed to set main organization: %w", err)
	}
	return nil
}

// RecalculateBestEffort runs Recalculate and only logs a failure.
func (s *MainOrganizationSelector) RecalculateBestEffort(ctx context.Context, userID uint64) {
	if err := s.Recalculate(ctx, userID); err != nil {
		s.logger.Warn("main organization recalculation failed",
			zap.Uint64("user_id", userID),
			zap.Error(err),
		)
	}
}

func (s *MainOrganizationSelector) isMember(ctx context.Context, orgID, userID uint64) (bool, error) {
	_, err := s.orgRepo.FindMember(ctx, orgID, userID)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return false, nil
	default:
		return false, fmt.Errorf("failed to check membership: %w", err)
	}
}
