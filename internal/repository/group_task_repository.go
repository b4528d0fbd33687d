package repository

import (
	"github.com/i11iaore1/to-do-list-pet-backend/internal/models"
	"gorm.io/gorm"
)

// GormGroupTaskRepository is a GORM implementation of GroupTaskRepository
type GormGroupTaskRepository struct {
	db *gorm.DB
}

// NewGroupTaskRepository creates a new GroupTaskRepository
func NewGroupTaskRepository(db *gorm.DB) GroupTaskRepository {
	return &GormGroupTaskRepository{db: db}
}

// CreateWithCreatorRelation creates a group task and, when creator is
// non-nil, an editor relation for it, in one transaction. This guarantees a
// member-created task is immediately editable by its creator.
func (r *GormGroupTaskRepository) CreateWithCreatorRelation(task *models.GroupTask, creator *models.Member) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if creator != nil {
			task.CreatorID = &creator.ID
		}
		if err := tx.Create(task).Error; err != nil {
			return err
		}
		if creator == nil {
			return nil
		}
		relation := models.MemberTaskRelation{
			MemberID:    creator.ID,
			GroupTaskID: task.ID,
			CanEdit:     true,
		}
		return tx.Create(&relation).Error
	})
}

// FindByID finds a group task by ID with optional preloading
func (r *GormGroupTaskRepository) FindByID(id uint64, preload ...string) (*models.GroupTask, error) {
	var task models.GroupTask
	query := r.db
	for _, p := range preload {
		query = query.Preload(p)
	}
	if err := query.First(&task, id).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

// List retrieves group tasks with filtering and pagination. When
// RelatedMemberID is set the query itself is restricted to tasks that member
// holds a relation for, so restricted listings and object-level checks share
// one condition.
func (r *GormGroupTaskRepository) List(filter GroupTaskFilter) ([]models.GroupTask, int64, error) {
	query := r.db.Model(&models.GroupTask{}).
		Where("group_tasks.group_id = ?", filter.GroupID)

	if filter.RelatedMemberID != nil {
		relationSubQuery := r.db.Model(&models.MemberTaskRelation{}).
			Select("1").
			Where("member_task_relations.group_task_id = group_tasks.id").
			Where("member_task_relations.member_id = ?", *filter.RelatedMemberID)
		query = query.Where("EXISTS (?)", relationSubQuery)
	}
	if filter.Closed != nil {
		if *filter.Closed {
			query = query.Where("group_tasks.status = ?", models.TaskStatusClosed)
		} else {
			query = query.Where("group_tasks.status <> ?", models.TaskStatusClosed)
		}
	}
	if filter.Current != nil {
		if *filter.Current {
			query = query.Where("group_tasks.due_date IS NULL OR group_tasks.due_date >= ?", filter.Now)
		} else {
			query = query.Where("group_tasks.due_date < ?", filter.Now)
		}
	}
	if filter.DueFrom != nil {
		query = query.Where("group_tasks.due_date >= ?", *filter.DueFrom)
	}
	if filter.DueTo != nil {
		query = query.Where("group_tasks.due_date < ?", *filter.DueTo)
	}
	if filter.CreatorID != nil {
		query = query.Where("group_tasks.creator_id = ?", *filter.CreatorID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	listQuery := query
	if filter.SortByDueDate {
		listQuery = listQuery.Order("CASE WHEN group_tasks.due_date IS NULL THEN 1 ELSE 0 END, group_tasks.due_date ASC")
	} else {
		listQuery = listQuery.Order("group_tasks.created_at DESC")
	}
	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		listQuery = listQuery.Offset(offset).Limit(filter.PageSize)
	}

	var tasks []models.GroupTask
	if err := listQuery.Preload("Creator").Preload("Creator.User").Find(&tasks).Error; err != nil {
		return nil, 0, err
	}
	return tasks, total, nil
}

// MutateLocked re-reads the task under an exclusive row lock, applies fn and
// saves within one transaction
func (r *GormGroupTaskRepository) MutateLocked(id uint64, fn func(task *models.GroupTask) error) (*models.GroupTask, error) {
	var task models.GroupTask
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
// fn and deletes the task with its relations
func (r *GormGroupTaskRepository) DeleteLocked(id uint64, fn func(task *models.GroupTask) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var task models.GroupTask
		if err := lockForUpdate(tx).First(&task, id).Error; err != nil {
			return err
		}
		if err := fn(&task); err != nil {
			return err
		}
		if err := tx.Where("group_task_id = ?", id).
			Delete(&models.MemberTaskRelation{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.GroupTask{}, id).Error
	})
}

// CreateRelation creates a member-task relation
func (r *GormGroupTaskRepository) CreateRelation(relation *models.MemberTaskRelation) error {
	return r.db.Create(relation).Error
}

// FindRelation finds the relation of a member to a task
func (r *GormGroupTaskRepository) FindRelation(memberID, groupTaskID uint64) (*models.MemberTaskRelation, error) {
	var relation models.MemberTaskRelation
	if err := r.db.Where("member_id = ? AND group_task_id = ?", memberID, groupTaskID).
		First(&relation).Error; err != nil {
		return nil, err
	}
	return &relation, nil
}

// FindRelationByID finds a relation by ID with optional preloading
func (r *GormGroupTaskRepository) FindRelationByID(id uint64, preload ...string) (*models.MemberTaskRelation, error) {
	var relation models.MemberTaskRelation
	query := r.db
	for _, p := range preload {
		query = query.Preload(p)
	}
	if err := query.First(&relation, id).Error; err != nil {
		return nil, err
	}
	return &relation, nil
}

// ListRelations lists the relations of a group task
func (r *GormGroupTaskRepository) ListRelations(groupTaskID uint64, filter RelationFilter) ([]models.MemberTaskRelation, int64, error) {
	query := r.db.Model(&models.MemberTaskRelation{}).
		Where("group_task_id = ?", groupTaskID)
	if filter.CanEdit != nil {
		query = query.Where("can_edit = ?", *filter.CanEdit)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	listQuery := query.Preload("Member").Preload("Member.User").Order("created_at ASC")
	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		listQuery = listQuery.Offset(offset).Limit(filter.PageSize)
	}

	var relations []models.MemberTaskRelation
	if err := listQuery.Find(&relations).Error; err != nil {
		return nil, 0, err
	}
	return relations, total, nil
}

// UpdateRelationLocked re-reads the relation under an exclusive row lock,
// applies fn and saves
func (r *GormGroupTaskRepository) UpdateRelationLocked(id uint64, fn func(relation *models.MemberTaskRelation) error) (*models.MemberTaskRelation, error) {
	var relation models.MemberTaskRelation
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := lockForUpdate(tx).First(&relation, id).Error; err != nil {
			return err
		}
		if err := fn(&relation); err != nil {
			return err
		}
		return tx.Save(&relation).Error
	})
	if err != nil {
		return nil, err
	}
	return &relation, nil
}

// DeleteRelation deletes a relation
func (r *GormGroupTaskRepository) DeleteRelation(id uint64) error {
	return r.db.Delete(&models.MemberTaskRelation{}, id).Error
}
