package services

import (
	"time"

	"github.com/i11iaore1/to-do-list-pet-backend/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// openTestDB creates an in-memory SQLite database with the full schema.
func openTestDB() (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, err
	}
	err = db.AutoMigrate(
		&models.User{},
		&models.UserTask{},
		&models.Group{},
		&models.Member{},
		&models.GroupTask{},
		&models.MemberTaskRelation{},
	)
	if err != nil {
		return nil, err
	}
	return db, nil
}

func createUser(db *gorm.DB, email string, staff bool) *models.User {
	user := &models.User{
		Email:        email,
		Nickname:     email,
		PasswordHash: "hashedpassword",
		IsStaff:      staff,
		IsActive:     true,
	}
	db.Create(user)
	return user
}

func createGroup(db *gorm.DB, name string) *models.Group {
	group := &models.Group{Name: name}
	db.Create(group)
	return group
}

func createMember(db *gorm.DB, userID, groupID uint64, role models.MemberRole) *models.Member {
	member := &models.Member{
		UserID:  userID,
		GroupID: groupID,
		Role:    role,
	}
	db.Create(member)
	return member
}

func createUserTask(db *gorm.DB, userID uint64, status models.TaskStatus, dueDate *time.Time) *models.UserTask {
	task := &models.UserTask{
		Task: models.Task{
			Description: "test task",
			Status:      status,
			DueDate:     dueDate,
		},
		UserID: userID,
	}
	db.Create(task)
	return task
}

func createGroupTask(db *gorm.DB, groupID uint64, creatorID *uint64, status models.TaskStatus, dueDate *time.Time) *models.GroupTask {
	task := &models.GroupTask{
		Task: models.Task{
			Description: "group task",
			Status:      status,
			DueDate:     dueDate,
		},
		GroupID:   groupID,
		CreatorID: creatorID,
	}
	db.Create(task)
	return task
}

func createRelation(db *gorm.DB, memberID, taskID uint64, canEdit bool) *models.MemberTaskRelation {
	relation := &models.MemberTaskRelation{
		MemberID:    memberID,
		GroupTaskID: taskID,
		CanEdit:     canEdit,
	}
	db.Create(relation)
	return relation
}

func timePtr(t time.Time) *time.Time {
	return &t
}
