package repository

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// lockForUpdate adds a SELECT ... FOR UPDATE clause to the query. SQLite has
// no row-level locking syntax; its single-writer transaction lock already
// serializes the mutation, so the clause is skipped there (tests run on an
// in-memory SQLite database).
func lockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "sqlite" {
		return tx
	}
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}
