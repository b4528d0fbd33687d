package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/i11iaore1/to-do-list-pet-backend/internal/authz"
	"github.com/i11iaore1/to-do-list-pet-backend/internal/models"
	"github.com/i11iaore1/to-do-list-pet-backend/internal/repository"
	"gorm.io/gorm"
)

// MembershipService handles group and membership business logic: group CRUD,
// member management and the single-owner invariant.
type MembershipService struct {
	groupRepo repository.GroupRepository
	userRepo  repository.UserRepository
}

// NewMembershipService creates a new MembershipService.
func NewMembershipService(groupRepo repository.GroupRepository, userRepo repository.UserRepository) *MembershipService {
	return &MembershipService{
		groupRepo: groupRepo,
		userRepo:  userRepo,
	}
}

// CreateGroup creates a group whose first member is the actor with the owner
// role.
func (s *MembershipService) CreateGroup(actor authz.Actor, name string) (*models.Group, error) {
	if strings.TrimSpace(name) == "" {
		return nil, &ValidationError{Field: "name", Message: "name is required"}
	}

	group := &models.Group{Name: name}
	if _, err := s.groupRepo.CreateWithOwner(group, actor.ID); err != nil {
		return nil, fmt.Errorf("failed to create group: %w", err)
	}
	return group, nil
}

// ListGroups returns the memberships (with groups) of the target user.
// Listing another user's groups requires staff.
func (s *MembershipService) ListGroups(actor authz.Actor, targetUserID uint64) ([]models.Member, error) {
	targetID := actor.ID
	if targetUserID != 0 && targetUserID != actor.ID {
		if !actor.IsStaff {
			return nil, ErrPermissionDenied
		}
		targetID = targetUserID
	}

	memberships, err := s.groupRepo.ListByUserID(targetID)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}
	return memberships, nil
}

// GetGroup returns a group with its members. Hidden groups report NotFound.
func (s *MembershipService) GetGroup(actor authz.Actor, groupID uint64) (*models.Group, []models.Member, error) {
	group, _, err := s.visibleGroup(actor, groupID)
	if err != nil {
		return nil, nil, err
	}

	members, _, err := s.groupRepo.ListMembers(groupID, repository.MemberFilter{})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list group members: %w", err)
	}
	return group, members, nil
}

// ListMembers lists a group's members with optional role filtering.
func (s *MembershipService) ListMembers(actor authz.Actor, groupID uint64, filter repository.MemberFilter) ([]models.Member, int64, error) {
	if _, _, err := s.visibleGroup(actor, groupID); err != nil {
		return nil, 0, err
	}

	members, total, err := s.groupRepo.ListMembers(groupID, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list group members: %w", err)
	}
	return members, total, nil
}

// UpdateGroup renames a group. Requires the admin or owner role.
func (s *MembershipService) UpdateGroup(actor authz.Actor, groupID uint64, name string) (*models.Group, error) {
	if strings.TrimSpace(name) == "" {
		return nil, &ValidationError{Field: "name", Message: "name is required"}
	}

	group, membership, err := s.visibleGroup(actor, groupID)
	if err != nil {
		return nil, err
	}
	if !authz.CanActOnGroup(actor, membership, authz.CapabilityAdmin) {
		return nil, ErrPermissionDenied
	}

	group.Name = name
	if err := s.groupRepo.Update(group); err != nil {
		return nil, fmt.Errorf("failed to update group: %w", err)
	}
	return group, nil
}

// DeleteGroup removes a group with all its members and tasks. Owner only.
func (s *MembershipService) DeleteGroup(actor authz.Actor, groupID uint64) error {
	_, membership, err := s.visibleGroup(actor, groupID)
	if err != nil {
		return err
	}
	if !authz.CanActOnGroup(actor, membership, authz.CapabilityOwner) {
		return ErrPermissionDenied
	}

	if err := s.groupRepo.Delete(groupID); err != nil {
		return fmt.Errorf("failed to delete group: %w", err)
	}
	return nil
}

// CreateMemberInput represents input for adding a member to a group.
type CreateMemberInput struct {
	GroupID      uint64
	TargetUserID uint64
	Role         models.MemberRole
}

// CreateMember adds a user to a group. Non-staff actors must hold the admin
// or owner role; admins cannot assign the admin or owner role. Assigning the
// owner role transfers ownership rather than creating a second owner.
func (s *MembershipService) CreateMember(actor authz.Actor, input CreateMemberInput) (*models.Member, error) {
	switch input.Role {
	case models.RoleDefault, models.RoleAdmin, models.RoleOwner:
	default:
		return nil, &ValidationError{Field: "role", Message: "role must be default, admin or owner"}
	}

	if _, err := s.groupRepo.FindByID(input.GroupID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find group: %w", err)
	}

	if !actor.IsStaff {
		membership, err := s.membershipOf(actor, input.GroupID)
		if err != nil {
			return nil, err
		}
		if membership == nil {
			return nil, ErrPermissionDenied
		}
		if !models.IsAdminRole(membership.Role) {
			return nil, ErrPermissionDenied
		}
		if membership.Role == models.RoleAdmin && models.IsAdminRole(input.Role) {
			return nil, ErrPermissionDenied
		}
	}

	if _, err := s.userRepo.FindByID(input.TargetUserID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &ValidationError{Field: "user_id", Message: "target user does not exist"}
		}
		return nil, fmt.Errorf("failed to find target user: %w", err)
	}

	if _, err := s.groupRepo.FindMember(input.GroupID, input.TargetUserID); err == nil {
		return nil, &ValidationError{Field: "user_id", Message: "user is already a member of this group"}
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check membership: %w", err)
	}

	member := &models.Member{
		UserID:  input.TargetUserID,
		GroupID: input.GroupID,
		Role:    input.Role,
	}
	if err := s.groupRepo.AddMemberWithOwnership(member); err != nil {
		// The membership pre-check races with concurrent inserts; the unique
		// (user_id, group_id) constraint is the authority.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, &ValidationError{Field: "user_id", Message: "user is already a member of this group"}
		}
		return nil, fmt.Errorf("failed to add member: %w", err)
	}
	return member, nil
}

// GetMember returns a member record visible to the actor.
func (s *MembershipService) GetMember(actor authz.Actor, memberID uint64) (*models.Member, error) {
	target, err := s.groupRepo.FindMemberByID(memberID, "User", "Group")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find member: %w", err)
	}

	membership, err := s.membershipOf(actor, target.GroupID)
	if err != nil {
		return nil, err
	}
	if !authz.CanActOnMember(actor, membership, target, authz.CapabilityMember, true) {
		return nil, ErrNotFound
	}
	return target, nil
}

// UpdateMemberRole changes a member's role. Only the group owner (or staff)
// may manage roles. Demoting the current owner is rejected; promoting another
// member to owner transfers ownership atomically.
func (s *MembershipService) UpdateMemberRole(actor authz.Actor, memberID uint64, role models.MemberRole) (*models.Member, error) {
	switch role {
	case models.RoleDefault, models.RoleAdmin, models.RoleOwner:
	default:
		return nil, &ValidationError{Field: "role", Message: "role must be default, admin or owner"}
	}

	target, err := s.groupRepo.FindMemberByID(memberID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find member: %w", err)
	}

	if !actor.IsStaff {
		membership, err := s.membershipOf(actor, target.GroupID)
		if err != nil {
			return nil, err
		}
		if membership == nil {
			return nil, ErrPermissionDenied
		}
		if membership.Role != models.RoleOwner {
			return nil, ErrPermissionDenied
		}
	}

	// The owner guard runs on the locked re-read so a transfer committed
	// after the lookup above cannot slip a demotion past it.
	member, err := s.groupRepo.MutateMemberLocked(target.ID, func(member *models.Member) error {
		if member.Role == models.RoleOwner && role != models.RoleOwner {
			return ErrMustHaveOwner
		}
		member.Role = role
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		if errors.Is(err, ErrMustHaveOwner) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to update member: %w", err)
	}
	return member, nil
}

// DeleteMember removes a member from its group. A member may always leave
// unless they are the owner; otherwise admin rights are required, and admins
// cannot remove admins or the owner. Removing the owner is always rejected.
func (s *MembershipService) DeleteMember(actor authz.Actor, memberID uint64) error {
	target, err := s.groupRepo.FindMemberByID(memberID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to find member: %w", err)
	}

	isLeaving := target.UserID == actor.ID
	var membership *models.Member
	if !isLeaving && !actor.IsStaff {
		membership, err = s.membershipOf(actor, target.GroupID)
		if err != nil {
			return err
		}
		if membership == nil {
			return ErrPermissionDenied
		}
		if !models.IsAdminRole(membership.Role) {
			return ErrPermissionDenied
		}
	}

	// Role guards run on the locked re-read so a concurrent promotion cannot
	// let a stale read remove the group's owner.
	err = s.groupRepo.RemoveMemberLocked(target.ID, func(member *models.Member) error {
		if !isLeaving && !actor.IsStaff &&
			membership.Role == models.RoleAdmin && models.IsAdminRole(member.Role) {
			return ErrPermissionDenied
		}
		if member.Role == models.RoleOwner {
			return ErrMustHaveOwner
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		if errors.Is(err, ErrMustHaveOwner) || errors.Is(err, ErrPermissionDenied) {
			return err
		}
		return fmt.Errorf("failed to remove member: %w", err)
	}
	return nil
}

// visibleGroup loads a group and the actor's membership in it, reporting
// NotFound when the group does not exist or the actor has no visibility.
func (s *MembershipService) visibleGroup(actor authz.Actor, groupID uint64) (*models.Group, *models.Member, error) {
	group, err := s.groupRepo.FindByID(groupID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, fmt.Errorf("failed to find group: %w", err)
	}

	membership, err := s.membershipOf(actor, groupID)
	if err != nil {
		return nil, nil, err
	}
	if !authz.CanActOnGroup(actor, membership, authz.CapabilityMember) {
		return nil, nil, ErrNotFound
	}
	return group, membership, nil
}

// membershipOf resolves the actor's membership in a group, nil when absent.
func (s *MembershipService) membershipOf(actor authz.Actor, groupID uint64) (*models.Member, error) {
	membership, err := s.groupRepo.FindMember(groupID, actor.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to resolve membership: %w", err)
	}
	return membership, nil
}
