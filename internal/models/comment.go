package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Comment struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	PostID      uuid.UUID `gorm:"type:uuid;not null;index" json:"post_id"`
	CommentedBy uuid.UUID `gorm:"type:uuid;not null" json:"commented_by"`
	Body        string    `gorm:"type:text;not null" json:"body"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Relations
	Author *Author `gorm:"foreignKey:CommentedBy" json:"author,omitempty"`
}

func (Comment) TableName() string {
	return "comments"
}

func (c *Comment) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
