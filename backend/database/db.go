package database

import (
	"taskmanager/backend/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var DB *gorm.DB

func Init(path string) error {
	var err error
	DB, err = gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		return err
	}
	return nil
}

// Migrate creates the schema. Callers treat a failure here as non-fatal
// and log it, matching the startup policy for schema errors.
func Migrate() error {
	return DB.AutoMigrate(&models.User{}, &models.Task{}, &models.LogEntry{})
}
