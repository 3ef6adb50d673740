package database

import "rewear/internal/models"

// PersistentModels returns the authoritative set of schema-managed GORM models.
func PersistentModels() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Item{},
		&models.ItemImage{},
		&models.Like{},
		&models.Swap{},
	}
}
