package dto

import (
	"time"

	"github.com/i11iaore1/to-do-list-pet-backend/internal/models"
)

// UserTaskDTO represents a personal task in API responses
type UserTaskDTO struct {
	ID          uint64            `json:"id"`
	Description string            `json:"description"`
	Status      models.TaskStatus `json:"status"`
	DueDate     *time.Time        `json:"due_date"`
	IsExpired   bool              `json:"is_expired"`
	UserID      uint64            `json:"user_id"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// UserTaskListResponse represents a paginated list of personal tasks
type UserTaskListResponse struct {
	Tasks      []UserTaskDTO `json:"tasks"`
	Page       int           `json:"page"`
	PageSize   int           `json:"page_size"`
	TotalCount int64         `json:"total_count"`
	TotalPages int           `json:"total_pages"`
}

// GroupTaskDTO represents a group task in API responses
type GroupTaskDTO struct {
	ID          uint64            `json:"id"`
	Description string            `json:"description"`
	Status      models.TaskStatus `json:"status"`
	DueDate     *time.Time        `json:"due_date"`
	IsExpired   bool              `json:"is_expired"`
	GroupID     uint64            `json:"group_id"`
	CreatorID   *uint64           `json:"creator_id"`
	Creator     *MemberDTO        `json:"creator,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// GroupTaskListResponse represents a paginated list of group tasks
type GroupTaskListResponse struct {
	Tasks      []GroupTaskDTO `json:"tasks"`
	Page       int            `json:"page"`
	PageSize   int            `json:"page_size"`
	TotalCount int64          `json:"total_count"`
	TotalPages int            `json:"total_pages"`
}

// RelationDTO represents a member's edit grant on a group task
type RelationDTO struct {
	ID          uint64     `json:"id"`
	GroupTaskID uint64     `json:"group_task_id"`
	MemberID    uint64     `json:"member_id"`
	CanEdit     bool       `json:"can_edit"`
	Member      *MemberDTO `json:"member,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// RelationListResponse represents a paginated list of task relations
type RelationListResponse struct {
	Relations  []RelationDTO `json:"relations"`
	Page       int           `json:"page"`
	PageSize   int           `json:"page_size"`
	TotalCount int64         `json:"total_count"`
	TotalPages int           `json:"total_pages"`
}

// ToUserTaskDTO converts a UserTask model to UserTaskDTO. Expiry is derived
// from the due date at conversion time, never stored.
func ToUserTaskDTO(task models.UserTask, now time.Time) UserTaskDTO {
	return UserTaskDTO{
		ID:          task.ID,
		Description: task.Description,
		Status:      task.Status,
		DueDate:     task.DueDate,
		IsExpired:   task.Task.IsExpired(now),
		UserID:      task.UserID,
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
	}
}

// ToUserTaskListResponse converts a slice of personal tasks to UserTaskListResponse
func ToUserTaskListResponse(tasks []models.UserTask, page, pageSize int, totalCount int64) UserTaskListResponse {
	now := time.Now()
	items := make([]UserTaskDTO, len(tasks))
	for i, task := range tasks {
		items[i] = ToUserTaskDTO(task, now)
	}

	return UserTaskListResponse{
		Tasks:      items,
		Page:       page,
		PageSize:   pageSize,
		TotalCount: totalCount,
		TotalPages: totalPages(totalCount, pageSize),
	}
}

// ToGroupTaskDTO converts a GroupTask model to GroupTaskDTO
func ToGroupTaskDTO(task models.GroupTask, now time.Time) GroupTaskDTO {
	dto := GroupTaskDTO{
		ID:          task.ID,
		Description: task.Description,
		Status:      task.Status,
		DueDate:     task.DueDate,
		IsExpired:   task.Task.IsExpired(now),
		GroupID:     task.GroupID,
		CreatorID:   task.CreatorID,
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
	}

	// Include creator if preloaded
	if task.Creator != nil && task.Creator.ID != 0 {
		creator := ToMemberDTO(*task.Creator)
		dto.Creator = &creator
	}

	return dto
}

// ToGroupTaskListResponse converts a slice of group tasks to GroupTaskListResponse
func ToGroupTaskListResponse(tasks []models.GroupTask, page, pageSize int, totalCount int64) GroupTaskListResponse {
	now := time.Now()
	items := make([]GroupTaskDTO, len(tasks))
	for i, task := range tasks {
		items[i] = ToGroupTaskDTO(task, now)
	}

	return GroupTaskListResponse{
		Tasks:      items,
		Page:       page,
		PageSize:   pageSize,
		TotalCount: totalCount,
		TotalPages: totalPages(totalCount, pageSize),
	}
}

// ToRelationDTO converts a MemberTaskRelation model to RelationDTO
func ToRelationDTO(relation models.MemberTaskRelation) RelationDTO {
	dto := RelationDTO{
		ID:          relation.ID,
		GroupTaskID: relation.GroupTaskID,
		MemberID:    relation.MemberID,
		CanEdit:     relation.CanEdit,
		CreatedAt:   relation.CreatedAt,
	}

	// Include member if preloaded
	if relation.Member.ID != 0 {
		member := ToMemberDTO(relation.Member)
		dto.Member = &member
	}

	return dto
}

// ToRelationListResponse converts a slice of relations to RelationListResponse
func ToRelationListResponse(relations []models.MemberTaskRelation, page, pageSize int, totalCount int64) RelationListResponse {
	items := make([]RelationDTO, len(relations))
	for i, relation := range relations {
		items[i] = ToRelationDTO(relation)
	}

	return RelationListResponse{
		Relations:  items,
		Page:       page,
		PageSize:   pageSize,
		TotalCount: totalCount,
		TotalPages: totalPages(totalCount, pageSize),
	}
}

func totalPages(totalCount int64, pageSize int) int {
	if pageSize <= 0 {
		return 0
	}
	pages := int(totalCount) / pageSize
	if int(totalCount)%pageSize > 0 {
		pages++
	}
	return pages
}
