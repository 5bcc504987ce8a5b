package dto

import (
	"time"

	"github.com/yukikurage/gatehouse-api/internal/models"
)

// OrganizationDTO represents an organization in API responses
type OrganizationDTO struct {
	ID        uint64                  `json:"id"`
	Name      string                  `json:"name"`
	Type      models.OrganizationType `json:"type"`
	CreatedAt time.Time               `json:"created_at"`
}

// RoleDTO represents a seat in API responses
type RoleDTO struct {
	ID          uint64 `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	IsAdmin     bool   `json:"is_admin"`
}

// OrganizationWithRoleDTO represents an organization with the user's role
type OrganizationWithRoleDTO struct {
	OrganizationDTO
	Role RoleDTO `json:"role"`
}

// OrganizationMemberDTO represents a member in an organization
type OrganizationMemberDTO struct {
	User        UserDTO   `json:"user"`
	Role        RoleDTO   `json:"role"`
	InvitedByID *uint64   `json:"invited_by_id"`
	JoinedAt    time.Time `json:"joined_at"`
}

// OrganizationDetailDTO represents detailed organization information
type OrganizationDetailDTO struct {
	OrganizationDTO
	Roles    []RoleDTO               `json:"roles,omitempty"`
	Members  []OrganizationMemberDTO `json:"members"`
	YourRole RoleDTO                 `json:"your_role"`
}

// ToOrganizationDTO converts an Organization model to OrganizationDTO
func ToOrganizationDTO(org models.Organization) OrganizationDTO {
	return OrganizationDTO{
		ID:        org.ID,
		Name:      org.Name,
		Type:      org.Type,
		CreatedAt: org.CreatedAt,
	}
}

// ToRoleDTO converts a role model to DTO
func ToRoleDTO(role models.OrganizationRole) RoleDTO {
	return RoleDTO{
		ID:          role.ID,
		Name:        role.Name,
		Description: role.Description,
		IsAdmin:     role.IsAdmin,
	}
}

// ToRoleDTOs converts a list of roles
func ToRoleDTOs(roles []models.OrganizationRole) []RoleDTO {
	dtos := make([]RoleDTO, len(roles))
	for i, role := range roles {
		dtos[i] = ToRoleDTO(role)
	}
	return dtos
}

// ToOrganizationWithRoleDTO converts an organization member to DTO with role
func ToOrganizationWithRoleDTO(member models.OrganizationMember) OrganizationWithRoleDTO {
	return OrganizationWithRoleDTO{
		OrganizationDTO: ToOrganizationDTO(member.Organization),
		Role:            ToRoleDTO(member.Role),
	}
}

// ToOrganizationMemberDTO converts a member to DTO
func ToOrganizationMemberDTO(member models.OrganizationMember) OrganizationMemberDTO {
	return OrganizationMemberDTO{
		User:        ToUserDTO(member.User),
		Role:        ToRoleDTO(member.Role),
		InvitedByID: member.InvitedByID,
		JoinedAt:    member.JoinedAt,
	}
}

// ToOrganizationDetailDTO converts organization with members to detailed DTO
func ToOrganizationDetailDTO(org models.Organization, members []models.OrganizationMember, yourRole models.OrganizationRole) OrganizationDetailDTO {
	memberDTOs := make([]OrganizationMemberDTO, len(members))
	for i, member := range members {
		memberDTOs[i] = ToOrganizationMemberDTO(member)
	}

	return OrganizationDetailDTO{
		OrganizationDTO: ToOrganizationDTO(org),
		Roles:           ToRoleDTOs(org.Roles),
		Members:         memberDTOs,
		YourRole:        ToRoleDTO(yourRole),
	}
}
