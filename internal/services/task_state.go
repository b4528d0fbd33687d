package services

import (
	"time"

	"github.com/i11iaore1/to-do-list-pet-backend/internal/models"
)

// TaskChanges carries the fields of a partial task update. Status is accepted
// so the guard can reject attempts to change it through a generic update.
type TaskChanges struct {
	Description  *string
	DueDate      *time.Time
	ClearDueDate bool
	Status       *models.TaskStatus
}

// IsEmpty reports whether no field change was requested.
func (ch TaskChanges) IsEmpty() bool {
	return ch.Description == nil && ch.DueDate == nil && !ch.ClearDueDate && ch.Status == nil
}

// ApplyTaskUpdate applies a partial update to a task. Closed and expired
// tasks cannot be updated; they must be reissued first. The status field can
// only change through Close and Reissue. An empty update is a no-op.
func ApplyTaskUpdate(task *models.Task, ch TaskChanges, now time.Time) error {
	if ch.IsEmpty() {
		return nil
	}

	if task.IsClosed() {
		return &TaskStatusError{
			Message: "task is closed and can not be updated, reissue this task to update it",
			Status:  TaskStatusClosed,
		}
	}
	if task.IsExpired(now) {
		return &TaskStatusError{
			Message: "task is expired and can not be updated, reissue this task to update it",
			Status:  TaskStatusExpired,
		}
	}
	if ch.Status != nil {
		return &TaskError{Message: "task status can not be changed manually"}
	}

	if ch.Description != nil {
		task.Description = *ch.Description
	}
	if ch.ClearDueDate {
		task.DueDate = nil
	} else if ch.DueDate != nil {
		task.DueDate = ch.DueDate
	}

	return nil
}

// CloseTask marks an issued task as done. Closing an already closed task or
// an expired one is rejected.
func CloseTask(task *models.Task, now time.Time) error {
	if task.IsClosed() {
		return &TaskStatusError{
			Message: "task is already closed",
			Status:  TaskStatusClosed,
		}
	}
	if task.IsExpired(now) {
		return &TaskStatusError{
			Message: "task is expired and can not be closed, reissue this task instead",
			Status:  TaskStatusExpired,
		}
	}

	task.Status = models.TaskStatusClosed
	return nil
}

// ReissueTask reopens a closed or expired task with a new due date. An active
// issued task must not be reissued.
func ReissueTask(task *models.Task, newDueDate *time.Time, now time.Time) error {
	if !task.IsClosed() && !task.IsExpired(now) {
		return &TaskStatusError{
			Message: "task is currently active and can not be reissued",
			Status:  TaskStatusActive,
		}
	}

	task.Status = models.TaskStatusIssued
	task.DueDate = newDueDate
	return nil
}

// EnsureTaskDeletable guards the delete path: expired tasks are not deletable
// until reissued.
func EnsureTaskDeletable(task *models.Task, now time.Time) error {
	if task.IsExpired(now) {
		return &TaskStatusError{
			Message: "task is expired and can not be deleted",
			Status:  TaskStatusExpired,
		}
	}
	return nil
}

// ValidateFutureDueDate rejects a due date that is not strictly in the
// future. A nil due date is always valid.
func ValidateFutureDueDate(dueDate *time.Time, now time.Time) error {
	if dueDate != nil && !dueDate.After(now) {
		return &ValidationError{Field: "due_date", Message: "due date must be in the future"}
	}
	return nil
}
