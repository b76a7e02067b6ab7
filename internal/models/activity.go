package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ActivityType string

const (
	ActivityDocumentUploaded ActivityType = "document_uploaded"
	ActivityDocumentDeleted  ActivityType = "document_deleted"
	ActivityPostCreated      ActivityType = "post_created"
	ActivityHomeworkCreated  ActivityType = "homework_created"
)

type Activity struct {
	ID           uuid.UUID    `gorm:"type:uuid;primary_key" json:"id"`
	UserID       uuid.UUID    `gorm:"type:uuid;not null;index" json:"user_id"`
	ActivityType ActivityType `gorm:"type:varchar(50);not null;index" json:"activity_type"`
	ClassroomID  uuid.UUID    `gorm:"type:uuid;not null;index" json:"classroom_id"`
	DocumentID   *uuid.UUID   `gorm:"type:uuid;index" json:"document_id,omitempty"`
	Metadata     string       `gorm:"type:text" json:"metadata,omitempty"`
	CreatedAt    time.Time    `gorm:"index" json:"created_at"`

	// Relations
	User *Author `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (Activity) TableName() string {
	return "activities"
}

func (a *Activity) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now()
	}
	return nil
}
