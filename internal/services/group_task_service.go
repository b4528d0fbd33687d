package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/i11iaore1/to-do-list-pet-backend/internal/authz"
	"github.com/i11iaore1/to-do-list-pet-backend/internal/models"
	"github.com/i11iaore1/to-do-list-pet-backend/internal/repository"
	"gorm.io/gorm"
)

// GroupTaskService handles group task business logic: creation with the
// creator's automatic edit relation, relation-scoped listing and the
// lifecycle transitions guarded by editor/creator capabilities.
type GroupTaskService struct {
	taskRepo  repository.GroupTaskRepository
	groupRepo repository.GroupRepository
}

// NewGroupTaskService creates a new GroupTaskService.
func NewGroupTaskService(taskRepo repository.GroupTaskRepository, groupRepo repository.GroupRepository) *GroupTaskService {
	return &GroupTaskService{
		taskRepo:  taskRepo,
		groupRepo: groupRepo,
	}
}

// CreateGroupTaskInput represents input for creating a group task.
type CreateGroupTaskInput struct {
	GroupID     uint64
	Description string
	DueDate     *time.Time
}

// Create creates a group task. The creating member is recorded as creator
// and granted an edit relation in the same transaction; a staff actor who is
// not a member leaves the creator null.
func (s *GroupTaskService) Create(actor authz.Actor, input CreateGroupTaskInput) (*models.GroupTask, error) {
	if strings.TrimSpace(input.Description) == "" {
		return nil, &ValidationError{Field: "description", Message: "description is required"}
	}
	if err := ValidateFutureDueDate(input.DueDate, time.Now()); err != nil {
		return nil, err
	}

	if _, err := s.groupRepo.FindByID(input.GroupID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find group: %w", err)
	}

	membership, err := s.membershipOf(actor, input.GroupID)
	if err != nil {
		return nil, err
	}
	if !actor.IsStaff && membership == nil {
		return nil, ErrNotFound
	}

	task := &models.GroupTask{
		Task: models.Task{
			Description: input.Description,
			Status:      models.TaskStatusIssued,
			DueDate:     input.DueDate,
		},
		GroupID: input.GroupID,
	}
	if err := s.taskRepo.CreateWithCreatorRelation(task, membership); err != nil {
		return nil, fmt.Errorf("failed to create group task: %w", err)
	}
	return task, nil
}

// ListGroupTasksInput represents filters for listing a group's tasks.
type ListGroupTasksInput struct {
	GroupID       uint64
	Closed        *bool
	Current       *bool
	DueFrom       *time.Time
	DueTo         *time.Time
	CreatorID     *uint64
	SortByDueDate bool
	Page          int
	PageSize      int
}

// List returns a group's tasks. Staff and group admins see every task;
// plain members see only tasks they hold a relation for. The restriction is
// part of the query, not a post-hoc filter.
func (s *GroupTaskService) List(actor authz.Actor, input ListGroupTasksInput) ([]models.GroupTask, int64, error) {
	if _, err := s.groupRepo.FindByID(input.GroupID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, 0, ErrNotFound
		}
		return nil, 0, fmt.Errorf("failed to find group: %w", err)
	}

	membership, err := s.membershipOf(actor, input.GroupID)
	if err != nil {
		return nil, 0, err
	}
	if !authz.CanActOnGroup(actor, membership, authz.CapabilityMember) {
		return nil, 0, ErrNotFound
	}

	filter := repository.GroupTaskFilter{
		GroupID:       input.GroupID,
		Closed:        input.Closed,
		Current:       input.Current,
		DueFrom:       input.DueFrom,
		DueTo:         input.DueTo,
		CreatorID:     input.CreatorID,
		Now:           time.Now(),
		SortByDueDate: input.SortByDueDate,
		Page:          input.Page,
		PageSize:      input.PageSize,
	}
	if membership != nil && !models.IsAdminRole(membership.Role) {
		filter.RelatedMemberID = &membership.ID
	}

	tasks, total, err := s.taskRepo.List(filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list group tasks: %w", err)
	}
	return tasks, total, nil
}

// Get returns a group task the actor can see: staff, group admins, or
// members holding a relation. Others get NotFound.
func (s *GroupTaskService) Get(actor authz.Actor, taskID uint64) (*models.GroupTask, error) {
	task, membership, relation, err := s.resolve(actor, taskID, "Creator", "Creator.User")
	if err != nil {
		return nil, err
	}
	if !authz.CanActOnGroupTask(actor, membership, task, relation, authz.TaskRelated) {
		return nil, ErrNotFound
	}
	return task, nil
}

// Update applies a partial update under an exclusive row lock. Requires the
// editor capability.
func (s *GroupTaskService) Update(actor authz.Actor, taskID uint64, changes TaskChanges) (*models.GroupTask, error) {
	if err := ValidateFutureDueDate(changes.DueDate, time.Now()); err != nil {
		return nil, err
	}
	if err := s.authorize(actor, taskID, authz.TaskEditor); err != nil {
		return nil, err
	}

	task, err := s.taskRepo.MutateLocked(taskID, func(task *models.GroupTask) error {
		return ApplyTaskUpdate(&task.Task, changes, time.Now())
	})
	if err != nil {
		return nil, s.mutationError(err)
	}
	return task, nil
}

// Close marks a group task as done. Requires the editor capability.
func (s *GroupTaskService) Close(actor authz.Actor, taskID uint64) (*models.GroupTask, error) {
	if err := s.authorize(actor, taskID, authz.TaskEditor); err != nil {
		return nil, err
	}

	task, err := s.taskRepo.MutateLocked(taskID, func(task *models.GroupTask) error {
		return CloseTask(&task.Task, time.Now())
	})
	if err != nil {
		return nil, s.mutationError(err)
	}
	return task, nil
}

// Reissue reopens a closed or expired group task with a new due date.
// Requires the editor capability.
func (s *GroupTaskService) Reissue(actor authz.Actor, taskID uint64, newDueDate *time.Time) (*models.GroupTask, error) {
	if err := ValidateFutureDueDate(newDueDate, time.Now()); err != nil {
		return nil, err
	}
	if err := s.authorize(actor, taskID, authz.TaskEditor); err != nil {
		return nil, err
	}

	task, err := s.taskRepo.MutateLocked(taskID, func(task *models.GroupTask) error {
		return ReissueTask(&task.Task, newDueDate, time.Now())
	})
	if err != nil {
		return nil, s.mutationError(err)
	}
	return task, nil
}

// Delete removes a group task with its relations. Requires the creator
// capability; expired tasks are not deletable.
func (s *GroupTaskService) Delete(actor authz.Actor, taskID uint64) error {
	if err := s.authorize(actor, taskID, authz.TaskCreator); err != nil {
		return err
	}

	err := s.taskRepo.DeleteLocked(taskID, func(task *models.GroupTask) error {
		return EnsureTaskDeletable(&task.Task, time.Now())
	})
	if err != nil {
		return s.mutationError(err)
	}
	return nil
}

// authorize resolves the actor's standing on a task and checks the required
// capability. Actors who could not even see the task get NotFound; actors
// who can see it but lack the capability get PermissionDenied.
func (s *GroupTaskService) authorize(actor authz.Actor, taskID uint64, capability authz.TaskCapability) error {
	task, membership, relation, err := s.resolve(actor, taskID)
	if err != nil {
		return err
	}
	if !authz.CanActOnGroupTask(actor, membership, task, relation, authz.TaskRelated) {
		return ErrNotFound
	}
	if !authz.CanActOnGroupTask(actor, membership, task, relation, capability) {
		return ErrPermissionDenied
	}
	return nil
}

// resolve loads a task together with the actor's membership and relation.
func (s *GroupTaskService) resolve(actor authz.Actor, taskID uint64, preload ...string) (*models.GroupTask, *models.Member, *models.MemberTaskRelation, error) {
	task, err := s.taskRepo.FindByID(taskID, preload...)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, nil, ErrNotFound
		}
		return nil, nil, nil, fmt.Errorf("failed to find group task: %w", err)
	}

	membership, err := s.membershipOf(actor, task.GroupID)
	if err != nil {
		return nil, nil, nil, err
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

func (s *GroupTaskService) membershipOf(actor authz.Actor, groupID uint64) (*models.Member, error) {
	membership, err := s.groupRepo.FindMember(groupID, actor.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to resolve membership: %w", err)
	}
	return membership, nil
}

func (s *GroupTaskService) mutationError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
