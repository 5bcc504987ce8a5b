package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/yukikurage/gatehouse-api/internal/models"
	"github.com/yukikurage/gatehouse-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrOrganizationNotFound       = errors.New("organization not found")
	ErrInvalidOrganization        = errors.New("organization name and type are required")
	ErrOrganizationHasMembers     = errors.New("organization still has members")
	ErrRoleNotFound               = errors.New("role not found in organization")
	ErrCannotRemoveYourself       = errors.New("cannot remove yourself from the organization")
	ErrOrganizationMemberNotFound = errors.New("organization member not found")
	ErrLastAdmin                  = errors.New("organization must keep at least one admin")
	ErrNotOrganizationMember      = errors.New("user is not a member of the organization")
)

// OrganizationService provides business logic for organization operations.
type OrganizationService struct {
	orgRepo repository.OrganizationRepository
	mainOrg *MainOrganizationSelector
	logger  *zap.Logger
	now     func() time.Time
}

// NewOrganizationService creates a new OrganizationService.
func NewOrganizationService(orgRepo repository.OrganizationRepository, mainOrg *MainOrganizationSelector, logger *zap.Logger, now func() time.Time) *OrganizationService {
	return &OrganizationService{
		orgRepo: orgRepo,
		mainOrg: mainOrg,
		logger:  logger,
		now:     now,
	}
}

// CreateOrganizationInput represents parameters to create a new organization.
type CreateOrganizationInput struct {
	Name      string
	Type      models.OrganizationType
	FounderID uint64
}

// CreateOrganization creates a new organization with its default roles and
// the founder as admin.
func (s *OrganizationService) CreateOrganization(ctx context.Context, input CreateOrganizationInput) (*models.Organization, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrInvalidOrganization
	}
	if input.Type == "" {
		input.Type = models.OrganizationTypeResidential
	}
	if !input.Type.Valid() {
		return nil, ErrInvalidOrganization
	}

	org := &models.Organization{
		Name: name,
		Type: input.Type,
	}

	if err := s.orgRepo.CreateWithFounder(ctx, org, input.FounderID, s.now()); err != nil {
		return nil, fmt.Errorf("failed to create organization: %w", err)
	}

	if err := s.mainOrg.AfterAdmission(ctx, input.FounderID, org.ID); err != nil {
		s.logger.Warn("failed to set main organization after creation",
			zap.Uint64("organization_id", org.ID),
			zap.Uint64("user_id", input.FounderID),
			zap.Error(err),
		)
	}

	s.logger.Info("organization created",
		zap.Uint64("organization_id", org.ID),
		zap.Uint64("founder_id", input.FounderID),
	)
	return org, nil
}

// ListOrganizationsForUser returns organizations the user belongs to.
func (s *OrganizationService) ListOrganizationsForUser(ctx context.Context, userID uint64) ([]models.OrganizationMember, error) {
	memberships, err := s.orgRepo.ListMembershipsByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list organizations: %w", err)
	}
	return memberships, nil
}

// GetOrganizationWithMembers returns an organization and all of its members.
func (s *OrganizationService) GetOrganizationWithMembers(ctx context.Context, orgID uint64) (*models.Organization, []models.OrganizationMember, error) {
	org, err := s.orgRepo.FindByID(ctx, orgID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrOrganizationNotFound
		}
		return nil, nil, fmt.Errorf("failed to find organization: %w", err)
	}

	members, err := s.orgRepo.ListMembers(ctx, orgID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list organization members: %w", err)
	}

	return org, members, nil
}

// ListRoles returns the seats of an organization.
func (s *OrganizationService) ListRoles(ctx context.Context, orgID uint64) ([]models.OrganizationRole, error) {
	roles, err := s.orgRepo.ListRoles(ctx, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to list roles: %w", err)
	}
	return roles, nil
}

// DeleteOrganization removes an organization once the requesting admin is its
// only remaining member.
func (s *OrganizationService) DeleteOrganization(ctx context.Context, orgID, requesterID uint64) error {
	if _, err := s.orgRepo.FindByID(ctx, orgID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrOrganizationNotFound
		}
		return fmt.Errorf("failed to find organization: %w", err)
	}

	count, err := s.orgRepo.CountMembers(ctx, orgID)
	if err != nil {
		return fmt.Errorf("failed to count members: %w", err)
	}

	remaining := count
	if _, err := s.orgRepo.FindMember(ctx, orgID, requesterID); err == nil {
		remaining--
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("failed to find requester membership: %w", err)
	}
	if remaining > 0 {
		return ErrOrganizationHasMembers
	}

	if err := s.orgRepo.Delete(ctx, orgID); err != nil {
		return fmt.Errorf("failed to delete organization: %w", err)
	}

	s.mainOrg.RecalculateBestEffort(ctx, requesterID)
	s.logger.Info("organization deleted", zap.Uint64("organization_id", orgID), zap.Uint64("user_id", requesterID))
	return nil
}

// RemoveMember removes a member from the organization.
func (s *OrganizationService) RemoveMember(ctx context.Context, orgID, actorID, targetID uint64) error {
	if targetID == actorID {
		return ErrCannotRemoveYourself
	}

	if err := s.orgRepo.RemoveMember(ctx, orgID, targetID); err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return ErrOrganizationMemberNotFound
		case errors.Is(err, repository.ErrLastAdmin):
			return ErrLastAdmin
		default:
			return fmt.Errorf("failed to remove member: %w", err)
		}
	}

	s.mainOrg.RecalculateBestEffort(ctx, targetID)
	s.logger.Info("member removed",
		zap.Uint64("organization_id", orgID),
		zap.Uint64("user_id", targetID),
		zap.Uint64("removed_by", actorID),
	)
	return nil
}

// SetMainOrganization sets the main organization explicitly.
func (s *OrganizationService) SetMainOrganization(ctx context.Context, userID, orgID uint64) error {
	if _, err := s.orgRepo.FindMember(ctx, orgID, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotOrganizationMember
		}
		return fmt.Errorf("failed to verify membership: %w", err)
	}

	if err := s.mainOrg.userRepo.SetMainOrganization(ctx, userID, &orgID); err != nil {
		return fmt.Errorf("failed to set main organization: %w", err)
	}
	return nil
}
