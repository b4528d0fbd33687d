package repository

import (
	"time"

	"github.com/i11iaore1/to-do-list-pet-backend/internal/models"
	"gorm.io/gorm"
)

// GormUserTaskRepository is a GORM implementation of UserTaskRepository
type GormUserTaskRepository struct {
	db *gorm.DB
}

// NewUserTaskRepository creates a new UserTaskRepository
func NewUserTaskRepository(db *gorm.DB) UserTaskRepository {
	return &GormUserTaskRepository{db: db}
}

// Create creates a new task
func (r *GormUserTaskRepository) Create(task *models.UserTask) error {
	return r.db.Create(task).Error
}

// FindByID finds a task by ID with optional preloading
func (r *GormUserTaskRepository) FindByID(id uint64, preload ...string) (*models.UserTask, error) {
	var task models.UserTask
	query := r.db
	for _, p := range preload {
		query = query.Preload(p)
	}
	if err := query.First(&task, id).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

// applyStatusPartition narrows the query to one of the derived status
// partitions: closed, issued (open and not yet due) or expired (open with a
// due date strictly in the past).
func applyStatusPartition(query *gorm.DB, status string, now time.Time) *gorm.DB {
	switch status {
	case "closed":
		return query.Where("status = ?", models.TaskStatusClosed)
	case "issued":
		return query.Where("status <> ?", models.TaskStatusClosed).
			Where("due_date IS NULL OR due_date >= ?", now)
	case "expired":
		return query.Where("status <> ?", models.TaskStatusClosed).
			Where("due_date < ?", now)
	default:
		return query
	}
}

// List retrieves tasks with status partitioning and pagination
func (r *GormUserTaskRepository) List(filter UserTaskFilter) ([]models.UserTask, int64, error) {
	query := r.db.Model(&models.UserTask{}).Where("user_id = ?", filter.UserID)
	query = applyStatusPartition(query, filter.Status, filter.Now)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	listQuery := query.Order("created_at DESC")
	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		listQuery = listQuery.Offset(offset).Limit(filter.PageSize)
	}

	var tasks []models.UserTask
	if err := listQuery.Find(&tasks).Error; err != nil {
		return nil, 0, err
	}
	return tasks, total, nil
}

// MutateLocked re-reads the task under an exclusive row lock, applies fn and
// saves within one transaction
func (r *GormUserTaskRepository) MutateLocked(id uint64, fn func(task *models.UserTask) error) (*models.UserTask, error) {
	var task models.UserTask
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := lockForUpdate(tx).First(&task, id).Error; err != nil {
			return err
		}
		if err := fn(&task); err != nil {
			return err
		}
		return tx.Save(&task).Error
	})
	if err != nil {
		return nil, err
	}
	return &task, nil
}

// DeleteLocked re-reads the task under an exclusive row lock, runs the guard
// fn and deletes within one transaction
func (r *GormUserTaskRepository) DeleteLocked(id uint64, fn func(task *models.UserTask) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var task models.UserTask
		if err := lockForUpdate(tx).First(&task, id).Error; err != nil {
			return err
		}
		if err := fn(&task); err != nil {
			return err
		}
		return tx.Delete(&models.UserTask{}, id).Error
	})
}
