package models

import "time"

// MemberTaskRelation grants a member visibility of a group task, and edit
// rights when CanEdit is set. A member holds at most one relation per task.
type MemberTaskRelation struct {
	ID          uint64    `gorm:"primarykey" json:"id"`
	MemberID    uint64    `gorm:"not null;uniqueIndex:idx_relations_member_task" json:"member_id"`
	GroupTaskID uint64    `gorm:"not null;uniqueIndex:idx_relations_member_task" json:"group_task_id"`
	CanEdit     bool      `gorm:"not null;default:false" json:"can_edit"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Relations
	Member    Member    `gorm:"foreignKey:MemberID" json:"member,omitempty"`
	GroupTask GroupTask `gorm:"foreignKey:GroupTaskID" json:"group_task,omitempty"`
}
