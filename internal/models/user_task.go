package models

// UserTask is a task owned exclusively by a single user.
type UserTask struct {
	ID     uint64 `gorm:"primarykey" json:"id"`
	Task   `gorm:"embedded"`
	UserID uint64 `gorm:"not null;index" json:"user_id"`

	// Relations
	User User `gorm:"foreignKey:UserID" json:"-"`
}
