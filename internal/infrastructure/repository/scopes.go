package repository

import (
	"gorm.io/gorm"
)

// NotArchived returns a GORM scope that hides archived rows unless the
// caller explicitly asked for them. Applies to runs and guitars, which use
// an archived flag on top of soft deletes.
func NotArchived(includeArchived bool) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if includeArchived {
			return db
		}
		return db.Where("archived = ?", false)
	}
}
