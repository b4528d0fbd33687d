package database

import (
	"fmt"
	"log"

	"gorm.io/gorm"
)

// AddIndexes adds performance-critical indexes to the database
func AddIndexes(db *gorm.DB) error {
	indexes := []struct {
		table   string
		name    string
		columns string
	}{
		// Task indexes for status partitioning and sorting
		{"user_tasks", "idx_user_tasks_user_id", "user_id"},
		{"user_tasks", "idx_user_tasks_status", "status"},
		{"user_tasks", "idx_user_tasks_due_date", "due_date"},
		{"group_tasks", "idx_group_tasks_group_id", "group_id"},
		{"group_tasks", "idx_group_tasks_creator_id", "creator_id"},
		{"group_tasks", "idx_group_tasks_due_date", "due_date"},

		// Membership and relation lookups
		{"members", "idx_members_group_id", "group_id"},
		{"members", "idx_members_user_id", "user_id"},
		{"member_task_relations", "idx_relations_group_task_id", "group_task_id"},
		{"member_task_relations", "idx_relations_member_id", "member_id"},
	}

	for _, idx := range indexes {
		var count int64
		err := db.Raw(`
			SELECT COUNT(*)
			FROM pg_indexes
			WHERE tablename = ? AND indexname = ?
		`, idx.table, idx.name).Count(&count).Error
		if err != nil {
			return fmt.Errorf("failed to check index %s: %w", idx.name, err)
		}
		if count > 0 {
			continue
		}

		sql := fmt.Sprintf("CREATE INDEX %s ON %s (%s)", idx.name, idx.table, idx.columns)
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}
		log.Printf("Created index %s on %s(%s)", idx.name, idx.table, idx.columns)
	}

	return nil
}
