package database

import (
	"time"

	"taskmanager/backend/models"
)

func ptr(v uint) *uint { return &v }

// Seed inserts the default admin user and sample tasks on a fresh database.
// It is a no-op once any user exists.
func Seed() error {
	var count int64
	if err := DB.Model(&models.User{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	admin := models.User{
		Username: "admin",
		Email:    "admin@example.com",
		// SHA-256 of "admin123"
		PasswordHash: "240be518fabd2724ddb6f04eeb1da5967448d7e831c08c8fa822809f74c720a9",
		Role:         "Admin",
	}
	if err := DB.Create(&admin).Error; err != nil {
		return err
	}

	tasks := []models.Task{
		{
			Title:       "Deploy new version of the application",
			Description: "Update the system to version 2.0 with all the new features",
			Priority:    models.PriorityHigh,
			DueDate:     time.Date(2025, 8, 15, 0, 0, 0, 0, time.UTC),
			Status:      models.StatusPending,
			UserID:      ptr(admin.ID),
		},
		{
			Title:       "Update API documentation",
			Description: "Complete the updated API documentation for version 2.0",
			Priority:    models.PriorityMedium,
			DueDate:     time.Date(2025, 8, 4, 0, 0, 0, 0, time.UTC),
			Status:      models.StatusInProgress,
			UserID:      ptr(admin.ID),
		},
		{
			Title:       "Research new libraries",
			Description: "Investigate new libraries for potential inclusion in the project",
			Priority:    models.PriorityLow,
			DueDate:     time.Date(2025, 7, 28, 0, 0, 0, 0, time.UTC),
			Status:      models.StatusCompleted,
			UserID:      ptr(admin.ID),
		},
	}
	return DB.Create(&tasks).Error
}
