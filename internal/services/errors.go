package services

import (
	"errors"
	"fmt"
)

// Status codes carried by TaskStatusError.
const (
	TaskStatusClosed  = "closed"
	TaskStatusExpired = "expired"
	TaskStatusActive  = "active"
)

// Codes carried by GroupError.
const (
	GroupCodeAnotherGroupMember   = "another_group_member"
	GroupCodeAlreadyHasPermission = "already_has_permission"
)

var (
	// ErrPermissionDenied is returned when the actor lacks the role or
	// relation required for an operation.
	ErrPermissionDenied = errors.New("you do not have permission to perform this action")

	// ErrMustHaveOwner is returned when an operation would leave a group
	// without an owner.
	ErrMustHaveOwner = errors.New("a group should always have an owner")

	// ErrNotFound is returned when an entity does not exist or the actor has
	// no visibility into it.
	ErrNotFound = errors.New("resource not found")
)

// TaskError is a task lifecycle guard violation, such as attempting to set
// the status through a generic update.
type TaskError struct {
	Message string
}

func (e *TaskError) Error() string { return e.Message }

// Code returns the machine-readable error code.
func (e *TaskError) Code() string { return "task_error" }

// TaskStatusError is a task guard violation tied to the task's current
// lifecycle state.
type TaskStatusError struct {
	Message string
	Status  string
}

func (e *TaskStatusError) Error() string { return e.Message }

// Code returns the machine-readable error code, e.g. "task_closed".
func (e *TaskStatusError) Code() string { return "task_" + e.Status }

// GroupError is a relation-creation guard violation.
type GroupError struct {
	Message   string
	GroupCode string
}

func (e *GroupError) Error() string { return e.Message }

// Code returns the machine-readable error code.
func (e *GroupError) Code() string { return e.GroupCode }

// ValidationError rejects malformed or out-of-range input before any state
// mutation.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}
