package database

import (
	"os"

	applog "github.com/P3chys/classroom-api/internal/logger"
	"github.com/P3chys/classroom-api/internal/models"
	"github.com/P3chys/classroom-api/internal/utils"
	"gorm.io/gorm"
)

// SeedTeacher creates a default teacher account if no teacher exists yet.
func SeedTeacher(db *gorm.DB, log *applog.Logger) error {
	var count int64
	if err := db.Model(&models.User{}).Where("role = ?", models.RoleTeacher).Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		log.Info("Teacher account already exists, skipping seed")
		return nil
	}

	email := os.Getenv("TEACHER_EMAIL")
	if email == "" {
		email = "teacher@classroom.local"
	}

	password := os.Getenv("TEACHER_PASSWORD")
	if password == "" {
		password = "TeacherPassword123!"
	}

	username := os.Getenv("TEACHER_USERNAME")
	if username == "" {
		username = "teacher"
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return err
	}

	teacher := models.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Role:         models.RoleTeacher,
	}
	if err := db.Create(&teacher).Error; err != nil {
		return err
	}

	log.Info("Created default teacher account", "email", email)
	return nil
}
