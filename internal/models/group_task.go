package models

// GroupTask is a task owned by a group. CreatorID is the membership that
// created it and becomes null when that member leaves the group.
type GroupTask struct {
	ID        uint64 `gorm:"primarykey" json:"id"`
	Task      `gorm:"embedded"`
	GroupID   uint64  `gorm:"not null;index" json:"group_id"`
	CreatorID *uint64 `gorm:"index" json:"creator_id"`

	// Relations
	Group     Group                `gorm:"foreignKey:GroupID" json:"group,omitempty"`
	Creator   *Member              `gorm:"foreignKey:CreatorID" json:"creator,omitempty"`
	Relations []MemberTaskRelation `gorm:"foreignKey:GroupTaskID" json:"relations,omitempty"`
}
