package services

import (
	"errors"
	"fmt"

	"github.com/i11iaore1/to-do-list-pet-backend/internal/authz"
	"github.com/i11iaore1/to-do-list-pet-backend/internal/models"
	"github.com/i11iaore1/to-do-list-pet-backend/internal/repository"
	"gorm.io/gorm"
)

// RelationService manages the per-member edit grants on group tasks.
type RelationService struct {
	taskRepo  repository.GroupTaskRepository
	groupRepo repository.GroupRepository
}

// NewRelationService creates a new RelationService.
func NewRelationService(taskRepo repository.GroupTaskRepository, groupRepo repository.GroupRepository) *RelationService {
	return &RelationService{
		taskRepo:  taskRepo,
		groupRepo: groupRepo,
	}
}

// Create grants a member a relation to a group task. Only staff, group
// admins and the task's creator may grant; the target member must belong to
// the task's group and must not hold a relation already.
func (s *RelationService) Create(actor authz.Actor, taskID, targetMemberID uint64, canEdit bool) (*models.MemberTaskRelation, error) {
	task, err := s.authorizeManage(actor, taskID)
	if err != nil {
		return nil, err
	}

	target, err := s.groupRepo.FindMemberByID(targetMemberID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find member: %w", err)
	}
	if target.GroupID != task.GroupID {
		return nil, &GroupError{
			Message:   "member belongs to another group",
			GroupCode: GroupCodeAnotherGroupMember,
		}
	}

	if _, err := s.taskRepo.FindRelation(target.ID, task.ID); err == nil {
		return nil, &GroupError{
			Message:   "member already has a relation to this task",
			GroupCode: GroupCodeAlreadyHasPermission,
		}
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check existing relation: %w", err)
	}

	relation := &models.MemberTaskRelation{
		MemberID:    target.ID,
		GroupTaskID: task.ID,
		CanEdit:     canEdit,
	}
	if err := s.taskRepo.CreateRelation(relation); err != nil {
		// The pre-check races with concurrent grants; the unique
		// (member_id, group_task_id) constraint is the authority.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, &GroupError{
				Message:   "member already has a relation to this task",
				GroupCode: GroupCodeAlreadyHasPermission,
			}
		}
		return nil, fmt.Errorf("failed to create relation: %w", err)
	}
	relation.Member = *target
	return relation, nil
}

// ListRelationsInput represents filters for listing a task's relations.
type ListRelationsInput struct {
	TaskID   uint64
	CanEdit  *bool
	Page     int
	PageSize int
}

// List returns the relations of a group task visible to the actor.
func (s *RelationService) List(actor authz.Actor, input ListRelationsInput) ([]models.MemberTaskRelation, int64, error) {
	task, membership, relation, err := s.resolve(actor, input.TaskID)
	if err != nil {
		return nil, 0, err
	}
	if !authz.CanActOnGroupTask(actor, membership, task, relation, authz.TaskRelated) {
		return nil, 0, ErrNotFound
	}

	relations, total, err := s.taskRepo.ListRelations(task.ID, repository.RelationFilter{
		CanEdit:  input.CanEdit,
		Page:     input.Page,
		PageSize: input.PageSize,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list relations: %w", err)
	}
	return relations, total, nil
}

// Get returns a single relation if the actor can see its task.
func (s *RelationService) Get(actor authz.Actor, relationID uint64) (*models.MemberTaskRelation, error) {
	relation, err := s.findRelation(relationID)
	if err != nil {
		return nil, err
	}
	task, membership, actorRelation, err := s.resolve(actor, relation.GroupTaskID)
	if err != nil {
		return nil, err
	}
	if !authz.CanActOnGroupTask(actor, membership, task, actorRelation, authz.TaskRelated) {
		return nil, ErrNotFound
	}
	return relation, nil
}

// Update changes the can_edit flag of a relation under an exclusive row
// lock. Only staff, group admins and the task's creator may change grants.
func (s *RelationService) Update(actor authz.Actor, relationID uint64, canEdit bool) (*models.MemberTaskRelation, error) {
	relation, err := s.findRelation(relationID)
	if err != nil {
		return nil, err
	}
	task, membership, actorRelation, err := s.resolve(actor, relation.GroupTaskID)
	if err != nil {
		return nil, err
	}
	if !authz.CanActOnGroupTask(actor, membership, task, actorRelation, authz.TaskRelated) {
		return nil, ErrNotFound
	}
	if !authz.CanUpdateRelation(actor, membership, task) {
		return nil, ErrPermissionDenied
	}

	updated, err := s.taskRepo.UpdateRelationLocked(relationID, func(relation *models.MemberTaskRelation) error {
		relation.CanEdit = canEdit
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return updated, nil
}

// Delete revokes a relation. Grant managers may revoke any relation; a
// member may also drop their own.
func (s *RelationService) Delete(actor authz.Actor, relationID uint64) error {
	relation, err := s.findRelation(relationID)
	if err != nil {
		return err
	}
	task, membership, actorRelation, err := s.resolve(actor, relation.GroupTaskID)
	if err != nil {
		return err
	}
	if !authz.CanActOnGroupTask(actor, membership, task, actorRelation, authz.TaskRelated) {
		return ErrNotFound
	}
	if !authz.CanDeleteRelation(actor, membership, task, relation) {
		return ErrPermissionDenied
	}

	if err := s.taskRepo.DeleteRelation(relationID); err != nil {
		return fmt.Errorf("failed to delete relation: %w", err)
	}
	return nil
}

// authorizeManage checks that the actor may grant relations on the task:
// visible-but-insufficient actors get PermissionDenied, invisible NotFound.
func (s *RelationService) authorizeManage(actor authz.Actor, taskID uint64) (*models.GroupTask, error) {
	task, membership, relation, err := s.resolve(actor, taskID)
	if err != nil {
		return nil, err
	}
	if !authz.CanActOnGroupTask(actor, membership, task, relation, authz.TaskRelated) {
		return nil, ErrNotFound
	}
	if !authz.CanUpdateRelation(actor, membership, task) {
		return nil, ErrPermissionDenied
	}
	return task, nil
}

func (s *RelationService) findRelation(relationID uint64) (*models.MemberTaskRelation, error) {
	relation, err := s.taskRepo.FindRelationByID(relationID, "Member", "Member.User")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find relation: %w", err)
	}
	return relation, nil
}

func (s *RelationService) resolve(actor authz.Actor, taskID uint64) (*models.GroupTask, *models.Member, *models.MemberTaskRelation, error) {
	task, err := s.taskRepo.FindByID(taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, nil, ErrNotFound
		}
		return nil, nil, nil, fmt.Errorf("failed to find group task: %w", err)
	}

	membership, err := s.groupRepo.FindMember(task.GroupID, actor.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			membership = nil
		} else {
			return nil, nil, nil, fmt.Errorf("failed to resolve membership: %w", err)
		}
	}

	var relation *models.MemberTaskRelation
	if membership != nil {
		rel, err := s.taskRepo.FindRelation(membership.ID, task.ID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, nil, fmt.Errorf("failed to resolve task relation: %w", err)
		}
		relation = rel
	}
	return task, membership, relation, nil
}
