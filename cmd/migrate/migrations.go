package main

import (
	"gorm.io/gorm"

	"github.com/taskhive/engine/internal/models"
)

// registerModels returns all models that need migration
func registerModels() []interface{} {
	return []interface{}{
		// User Management
		&models.User{},

		// Projects & Memberships
		&models.Project{},
		&models.ProjectMember{},

		// Task Aggregate
		&models.Task{},
		&models.Subtask{},
		&models.Tag{},
		&models.TaskTag{},

		// Audit Trail
		&models.ActivityLog{},

		// Quick Capture
		&models.QuickNote{},
	}
}

// runMigrations executes all database migrations
func runMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(registerModels()...); err != nil {
		return err
	}
	return runCustomMigrations(db)
}

// runCustomMigrations handles schema changes AutoMigrate can't handle
func runCustomMigrations(db *gorm.DB) error {
	migrations := []func(*gorm.DB) error{
		enableUUIDExtension,
		addTaskListIndexes,
	}
	for _, migration := range migrations {
		if err := migration(db); err != nil {
			return err
		}
	}
	return nil
}

// enableUUIDExtension ensures UUID generation is available
func enableUUIDExtension(db *gorm.DB) error {
	return db.Exec(`CREATE EXTENSION IF NOT EXISTS "pgcrypto"`).Error
}

// addTaskListIndexes adds composite indexes for the hot list queries
func addTaskListIndexes(db *gorm.DB) error {
	if err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_tasks_owner_status
		ON tasks(owner_id, status)
		WHERE deleted_at IS NULL
	`).Error; err != nil {
		return err
	}
	return db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_tasks_owner_completed
		ON tasks(owner_id, is_completed)
		WHERE deleted_at IS NULL
	`).Error
}
