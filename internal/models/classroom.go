package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// TopicEntry is one named group in a classroom's document index. Documents
// are kept in append order.
type TopicEntry struct {
	ID        uuid.UUID   `json:"id"`
	Topic     string      `json:"topic"`
	Documents []uuid.UUID `json:"documents"`
}

type Classroom struct {
	ID            uuid.UUID                       `gorm:"type:uuid;primary_key" json:"id"`
	Name          string                          `gorm:"size:200;not null" json:"name"`
	OwnerID       uuid.UUID                       `gorm:"type:uuid;not null;index" json:"owner_id"`
	JoinCode      string                          `gorm:"size:64;uniqueIndex" json:"join_code,omitempty"`
	TopicDocument datatypes.JSONSlice[TopicEntry] `gorm:"column:topic_document" json:"topic_document"`
	PostIDs       datatypes.JSONSlice[uuid.UUID]  `gorm:"column:post_ids" json:"post_ids"`
	StudentIDs    datatypes.JSONSlice[uuid.UUID]  `gorm:"column:student_ids" json:"student_ids"`
	Version       int                             `gorm:"not null;default:0" json:"-"`
	CreatedAt     time.Time                       `json:"created_at"`
	UpdatedAt     time.Time                       `json:"updated_at"`
}

func (Classroom) TableName() string {
	return "classrooms"
}

func (c *Classroom) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.TopicDocument == nil {
		c.TopicDocument = datatypes.JSONSlice[TopicEntry]{}
	}
	if c.PostIDs == nil {
		c.PostIDs = datatypes.JSONSlice[uuid.UUID]{}
	}
	if c.StudentIDs == nil {
		c.StudentIDs = datatypes.JSONSlice[uuid.UUID]{}
	}
	return nil
}

// HasMember reports whether userID owns or is enrolled in the classroom.
func (c *Classroom) HasMember(userID uuid.UUID) bool {
	if c.OwnerID == userID {
		return true
	}
	for _, id := range c.StudentIDs {
		if id == userID {
			return true
		}
	}
	return false
}
