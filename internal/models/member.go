package models

import "time"

type MemberRole string

const (
	RoleDefault MemberRole = "default"
	RoleAdmin   MemberRole = "admin"
	RoleOwner   MemberRole = "owner"
)

// IsAdminRole reports whether the role carries group administration rights.
func IsAdminRole(role MemberRole) bool {
	return role == RoleAdmin || role == RoleOwner
}

// Member represents a user's membership in a group. A user joins a group at
// most once.
type Member struct {
	ID        uint64     `gorm:"primarykey" json:"id"`
	UserID    uint64     `gorm:"not null;uniqueIndex:idx_members_user_group" json:"user_id"`
	GroupID   uint64     `gorm:"not null;uniqueIndex:idx_members_user_group" json:"group_id"`
	Role      MemberRole `gorm:"type:varchar(10);not null;default:'default'" json:"role"`
	JoinedAt  time.Time  `gorm:"autoCreateTime" json:"joined_at"`
	UpdatedAt time.Time  `json:"updated_at"`

	// Relations
	User  User  `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Group Group `gorm:"foreignKey:GroupID" json:"group,omitempty"`
}
