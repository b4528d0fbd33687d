package models

import "time"

type User struct {
	ID           uint64    `gorm:"primarykey" json:"id"`
	Email        string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Nickname     string    `gorm:"type:varchar(255)" json:"nickname"`
	PasswordHash string    `gorm:"type:varchar(255);not null" json:"-"`
	IsStaff      bool      `gorm:"not null;default:false" json:"-"`
	IsActive     bool      `gorm:"not null;default:true" json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	// Relations
	Tasks       []UserTask `gorm:"foreignKey:UserID" json:"-"`
	Memberships []Member   `gorm:"foreignKey:UserID" json:"-"`
}
