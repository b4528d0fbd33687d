package repository

import (
	"errors"

	"github.com/i11iaore1/to-do-list-pet-backend/internal/models"
	"gorm.io/gorm"
)

// GormGroupRepository is a GORM implementation of GroupRepository
type GormGroupRepository struct {
	db *gorm.DB
}

// NewGroupRepository creates a new GroupRepository
func NewGroupRepository(db *gorm.DB) GroupRepository {
	return &GormGroupRepository{db: db}
}

// CreateWithOwner creates a group and its first member with the owner role
// in one transaction
func (r *GormGroupRepository) CreateWithOwner(group *models.Group, ownerUserID uint64) (*models.Member, error) {
	var owner models.Member
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(group).Error; err != nil {
			return err
		}
		owner = models.Member{
			UserID:  ownerUserID,
			GroupID: group.ID,
			Role:    models.RoleOwner,
		}
		return tx.Create(&owner).Error
	})
	if err != nil {
		return nil, err
	}
	return &owner, nil
}

// FindByID finds a group by ID
func (r *GormGroupRepository) FindByID(id uint64) (*models.Group, error) {
	var group models.Group
	if err := r.db.First(&group, id).Error; err != nil {
		return nil, err
	}
	return &group, nil
}

// Update updates a group
func (r *GormGroupRepository) Update(group *models.Group) error {
	return r.db.Save(group).Error
}

// Delete deletes a group together with its members, tasks and relations
func (r *GormGroupRepository) Delete(id uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		taskIDs := tx.Model(&models.GroupTask{}).Select("id").Where("group_id = ?", id)
		if err := tx.Where("group_task_id IN (?)", taskIDs).
			Delete(&models.MemberTaskRelation{}).Error; err != nil {
			return err
		}
		if err := tx.Where("group_id = ?", id).Delete(&models.GroupTask{}).Error; err != nil {
			return err
		}
		if err := tx.Where("group_id = ?", id).Delete(&models.Member{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Group{}, id).Error
	})
}

// ListByUserID lists the memberships of a user with groups preloaded
func (r *GormGroupRepository) ListByUserID(userID uint64) ([]models.Member, error) {
	var memberships []models.Member
	if err := r.db.Preload("Group").
		Where("user_id = ?", userID).
		Order("joined_at DESC").
		Find(&memberships).Error; err != nil {
		return nil, err
	}
	return memberships, nil
}

// AddMemberWithOwnership adds a member and, if the role is owner, transfers
// ownership to it within the same transaction
func (r *GormGroupRepository) AddMemberWithOwnership(member *models.Member) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if member.Role == models.RoleOwner {
			// Create without the owner role first so the owner-row lock in
			// the transfer sees exactly one owner.
			member.Role = models.RoleDefault
			if err := tx.Create(member).Error; err != nil {
				return err
			}
			return transferOwnershipTx(tx, member)
		}
		return tx.Create(member).Error
	})
}

// FindMember finds the membership of a user in a group
func (r *GormGroupRepository) FindMember(groupID, userID uint64) (*models.Member, error) {
	var member models.Member
	if err := r.db.Where("group_id = ? AND user_id = ?", groupID, userID).
		First(&member).Error; err != nil {
		return nil, err
	}
	return &member, nil
}

// FindMemberByID finds a member by ID with optional preloading
func (r *GormGroupRepository) FindMemberByID(id uint64, preload ...string) (*models.Member, error) {
	var member models.Member
	query := r.db
	for _, p := range preload {
		query = query.Preload(p)
	}
	if err := query.First(&member, id).Error; err != nil {
		return nil, err
	}
	return &member, nil
}

// ListMembers lists the members of a group
func (r *GormGroupRepository) ListMembers(groupID uint64, filter MemberFilter) ([]models.Member, int64, error) {
	query := r.db.Model(&models.Member{}).Where("group_id = ?", groupID)
	if filter.Role != nil {
		query = query.Where("role = ?", *filter.Role)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	listQuery := query.Preload("User").Order("joined_at ASC")
	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		listQuery = listQuery.Offset(offset).Limit(filter.PageSize)
	}

	var members []models.Member
	if err := listQuery.Find(&members).Error; err != nil {
		return nil, 0, err
	}
	return members, total, nil
}

// MutateMemberLocked re-reads the member under an exclusive row lock, applies
// fn and saves within one transaction. Role guards evaluated inside fn see the
// committed state of concurrent ownership transfers, never a stale read. When
// fn promotes the member to owner, the current owner row is locked and demoted
// in the same transaction.
func (r *GormGroupRepository) MutateMemberLocked(id uint64, fn func(member *models.Member) error) (*models.Member, error) {
	var member models.Member
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := lockForUpdate(tx).First(&member, id).Error; err != nil {
			return err
		}
		prevRole := member.Role
		if err := fn(&member); err != nil {
			return err
		}
		if member.Role == models.RoleOwner && prevRole != models.RoleOwner {
			member.Role = prevRole
			return transferOwnershipTx(tx, &member)
		}
		return tx.Save(&member).Error
	})
	if err != nil {
		return nil, err
	}
	return &member, nil
}

// RemoveMemberLocked re-reads the member under an exclusive row lock, runs the
// guard fn and deletes it, detaching the tasks it created and removing its
// task relations, all within one transaction
func (r *GormGroupRepository) RemoveMemberLocked(id uint64, fn func(member *models.Member) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var member models.Member
		if err := lockForUpdate(tx).First(&member, id).Error; err != nil {
			return err
		}
		if err := fn(&member); err != nil {
			return err
		}
		if err := tx.Model(&models.GroupTask{}).
			Where("creator_id = ?", member.ID).
			Update("creator_id", nil).Error; err != nil {
			return err
		}
		if err := tx.Where("member_id = ?", member.ID).
			Delete(&models.MemberTaskRelation{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Member{}, member.ID).Error
	})
}

// transferOwnershipTx serializes concurrent transfers on the owner row: both
// contenders block on the same SELECT ... FOR UPDATE, so the loser re-reads
// the winner's demotion and the group keeps exactly one owner.
func transferOwnershipTx(tx *gorm.DB, newOwner *models.Member) error {
	var currentOwner models.Member
	err := lockForUpdate(tx).
		Where("group_id = ? AND role = ?", newOwner.GroupID, models.RoleOwner).
		First(&currentOwner).Error
	if err == nil {
		currentOwner.Role = models.RoleAdmin
		if err := tx.Save(&currentOwner).Error; err != nil {
			return err
		}
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	newOwner.Role = models.RoleOwner
	return tx.Model(&models.Member{}).
		Where("id = ?", newOwner.ID).
		Update("role", models.RoleOwner).Error
}
