package models

import "time"

type Group struct {
	ID        uint64    `gorm:"primarykey" json:"id"`
	Name      string    `gorm:"type:varchar(255);not null" json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Members []Member    `gorm:"foreignKey:GroupID" json:"members,omitempty"`
	Tasks   []GroupTask `gorm:"foreignKey:GroupID" json:"tasks,omitempty"`
}
