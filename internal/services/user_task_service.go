package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/i11iaore1/to-do-list-pet-backend/internal/authz"
	"github.com/i11iaore1/to-do-list-pet-backend/internal/cache"
	"github.com/i11iaore1/to-do-list-pet-backend/internal/constants"
	"github.com/i11iaore1/to-do-list-pet-backend/internal/models"
	"github.com/i11iaore1/to-do-list-pet-backend/internal/repository"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

// UserTaskService handles personal task business logic.
type UserTaskService struct {
	taskRepo repository.UserTaskRepository
	userRepo repository.UserRepository
	cache    *cache.UserTaskCache
	flight   singleflight.Group
}

// NewUserTaskService creates a new UserTaskService. taskCache may be nil,
// which disables caching.
func NewUserTaskService(taskRepo repository.UserTaskRepository, userRepo repository.UserRepository, taskCache *cache.UserTaskCache) *UserTaskService {
	return &UserTaskService{
		taskRepo: taskRepo,
		userRepo: userRepo,
		cache:    taskCache,
	}
}

// ListUserTasksInput represents filters for listing personal tasks.
type ListUserTasksInput struct {
	// TargetUserID selects another user's tasks; zero means the actor's own.
	// Listing someone else's tasks requires staff.
	TargetUserID uint64
	Status       string
	Page         int
	PageSize     int
}

// List returns the target user's tasks partitioned by derived status.
func (s *UserTaskService) List(ctx context.Context, actor authz.Actor, input ListUserTasksInput) ([]models.UserTask, int64, error) {
	targetID := actor.ID
	if input.TargetUserID != 0 && input.TargetUserID != actor.ID {
		if !actor.IsStaff {
			return nil, 0, ErrPermissionDenied
		}
		targetID = input.TargetUserID
	}

	switch input.Status {
	case "", "issued", "expired", "closed":
	default:
		return nil, 0, &ValidationError{Field: "status", Message: "status must be issued, expired or closed"}
	}

	filter := repository.UserTaskFilter{
		UserID:   targetID,
		Status:   input.Status,
		Now:      time.Now(),
		Page:     input.Page,
		PageSize: input.PageSize,
	}

	// Only the default first page is cached; other pages go straight to the
	// store.
	if s.cache == nil || input.Page != constants.MinPageSize || input.PageSize != constants.DefaultPageSize {
		tasks, total, err := s.taskRepo.List(filter)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to list tasks: %w", err)
		}
		return tasks, total, nil
	}

	if entry, err := s.cache.GetList(ctx, targetID, input.Status); err == nil && entry != nil {
		return entry.Tasks, entry.Total, nil
	} else if err != nil {
		log.Printf("task cache read failed: %v", err)
	}

	key := fmt.Sprintf("%d:%s", targetID, input.Status)
	v, err, _ := s.flight.Do(key, func() (interface{}, error) {
		tasks, total, err := s.taskRepo.List(filter)
		if err != nil {
			return nil, fmt.Errorf("failed to list tasks: %w", err)
		}
		entry := cache.ListEntry{Tasks: tasks, Total: total}
		if err := s.cache.SetList(ctx, targetID, input.Status, entry); err != nil {
			log.Printf("task cache write failed: %v", err)
		}
		return entry, nil
	})
	if err != nil {
		return nil, 0, err
	}

	entry := v.(cache.ListEntry)
	return entry.Tasks, entry.Total, nil
}

// CreateUserTaskInput represents input for creating a personal task.
type CreateUserTaskInput struct {
	// TargetUserID assigns the task to another user; zero means the actor.
	// Creating for someone else requires staff.
	TargetUserID uint64
	Description  string
	DueDate      *time.Time
}

// Create creates a new personal task.
func (s *UserTaskService) Create(ctx context.Context, actor authz.Actor, input CreateUserTaskInput) (*models.UserTask, error) {
	if strings.TrimSpace(input.Description) == "" {
		return nil, &ValidationError{Field: "description", Message: "description is required"}
	}
	if err := ValidateFutureDueDate(input.DueDate, time.Now()); err != nil {
		return nil, err
	}

	targetID := actor.ID
	if input.TargetUserID != 0 && input.TargetUserID != actor.ID {
		if !actor.IsStaff {
			return nil, ErrPermissionDenied
		}
		if _, err := s.userRepo.FindByID(input.TargetUserID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrNotFound
			}
			return nil, fmt.Errorf("failed to find target user: %w", err)
		}
		targetID = input.TargetUserID
	}

	task := &models.UserTask{
		Task: models.Task{
			Description: input.Description,
			Status:      models.TaskStatusIssued,
			DueDate:     input.DueDate,
		},
		UserID: targetID,
	}
	if err := s.taskRepo.Create(task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	s.invalidate(ctx, targetID)
	return task, nil
}

// Get returns a personal task visible to the actor. Another user's task
// reports NotFound rather than revealing its existence.
func (s *UserTaskService) Get(actor authz.Actor, taskID uint64) (*models.UserTask, error) {
	task, err := s.taskRepo.FindByID(taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	if task.UserID != actor.ID && !actor.IsStaff {
		return nil, ErrNotFound
	}
	return task, nil
}

// Update applies a partial update to a task under an exclusive row lock.
func (s *UserTaskService) Update(ctx context.Context, actor authz.Actor, taskID uint64, changes TaskChanges) (*models.UserTask, error) {
	if err := ValidateFutureDueDate(changes.DueDate, time.Now()); err != nil {
		return nil, err
	}

	task, err := s.taskRepo.MutateLocked(taskID, func(task *models.UserTask) error {
		if task.UserID != actor.ID && !actor.IsStaff {
			return ErrNotFound
		}
		return ApplyTaskUpdate(&task.Task, changes, time.Now())
	})
	if err != nil {
		return nil, s.mutationError(err)
	}

	s.invalidate(ctx, task.UserID)
	return task, nil
}

// Close marks a task as done under an exclusive row lock, so that of two
// concurrent close calls exactly one succeeds.
func (s *UserTaskService) Close(ctx context.Context, actor authz.Actor, taskID uint64) (*models.UserTask, error) {
	task, err := s.taskRepo.MutateLocked(taskID, func(task *models.UserTask) error {
		if task.UserID != actor.ID && !actor.IsStaff {
			return ErrNotFound
		}
		return CloseTask(&task.Task, time.Now())
	})
	if err != nil {
		return nil, s.mutationError(err)
	}

	s.invalidate(ctx, task.UserID)
	return task, nil
}

// Reissue reopens a closed or expired task with a new due date.
func (s *UserTaskService) Reissue(ctx context.Context, actor authz.Actor, taskID uint64, newDueDate *time.Time) (*models.UserTask, error) {
	if err := ValidateFutureDueDate(newDueDate, time.Now()); err != nil {
		return nil, err
	}

	task, err := s.taskRepo.MutateLocked(taskID, func(task *models.UserTask) error {
		if task.UserID != actor.ID && !actor.IsStaff {
			return ErrNotFound
		}
		return ReissueTask(&task.Task, newDueDate, time.Now())
	})
	if err != nil {
		return nil, s.mutationError(err)
	}

	s.invalidate(ctx, task.UserID)
	return task, nil
}

// Delete removes a task. Expired tasks are not deletable.
func (s *UserTaskService) Delete(ctx context.Context, actor authz.Actor, taskID uint64) error {
	var ownerID uint64
	err := s.taskRepo.DeleteLocked(taskID, func(task *models.UserTask) error {
		if task.UserID != actor.ID && !actor.IsStaff {
			return ErrNotFound
		}
		ownerID = task.UserID
		return EnsureTaskDeletable(&task.Task, time.Now())
	})
	if err != nil {
		return s.mutationError(err)
	}

	s.invalidate(ctx, ownerID)
	return nil
}

func (s *UserTaskService) invalidate(ctx context.Context, userID uint64) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, userID); err != nil {
		log.Printf("task cache invalidation failed: %v", err)
	}
}

// mutationError translates store-level not-found into the service taxonomy
// while keeping guard errors intact.
func (s *UserTaskService) mutationError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
