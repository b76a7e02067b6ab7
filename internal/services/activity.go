package services

import (
	"context"
	"encoding/json"

	"github.com/P3chys/classroom-api/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ActivityService struct {
	db *gorm.DB
}

func NewActivityService(db *gorm.DB) *ActivityService {
	return &ActivityService{
		db: db,
	}
}

func (s *ActivityService) CreateActivity(ctx context.Context, userID uuid.UUID, activityType models.ActivityType, classroomID uuid.UUID, documentID *uuid.UUID, metadata map[string]interface{}) error {
	metadataJSON := "{}"
	if len(metadata) > 0 {
		bytes, err := json.Marshal(metadata)
		if err == nil {
			metadataJSON = string(bytes)
		}
	}

	activity := models.Activity{
		UserID:       userID,
		ActivityType: activityType,
		ClassroomID:  classroomID,
		DocumentID:   documentID,
		Metadata:     metadataJSON,
	}

	return s.db.WithContext(ctx).Create(&activity).Error
}

func (s *ActivityService) GetRecentActivities(ctx context.Context, classroomID uuid.UUID, limit int) ([]models.Activity, error) {
	var activities []models.Activity
	err := s.db.WithContext(ctx).Preload("User").
		Where("classroom_id = ?", classroomID).
		Order("created_at desc").
		Limit(limit).
		Find(&activities).Error
	return activities, err
}
