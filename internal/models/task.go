package models

import "time"

type TaskStatus string

const (
	TaskStatusIssued TaskStatus = "issued"
	TaskStatusClosed TaskStatus = "closed"
)

// Task is the shared value type embedded into UserTask and GroupTask.
// "expired" is never stored; it is derived from due_date at read time.
type Task struct {
	Description string     `gorm:"type:text;not null" json:"description"`
	Status      TaskStatus `gorm:"type:varchar(10);not null;default:'issued'" json:"status"`
	DueDate     *time.Time `json:"due_date"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// IsClosed reports whether the task has been marked done.
func (t *Task) IsClosed() bool {
	return t.Status == TaskStatusClosed
}

// IsExpired reports whether the task is issued with a due date strictly in the
// past. A due date exactly equal to now is not expired, and a closed task is
// never expired.
func (t *Task) IsExpired(now time.Time) bool {
	return t.DueDate != nil && t.DueDate.Before(now) && t.Status != TaskStatusClosed
}
