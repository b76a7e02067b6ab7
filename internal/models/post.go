package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Post struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	ClassroomID uuid.UUID `gorm:"type:uuid;not null;index" json:"classroom_id"`
	Title       string    `gorm:"size:255;not null" json:"title"`
	Body        string    `gorm:"type:text;not null" json:"body"`
	PostedBy    uuid.UUID `gorm:"type:uuid;not null;index" json:"posted_by"`
	CreatedAt   time.Time `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Relations
	Author   *Author   `gorm:"foreignKey:PostedBy" json:"author,omitempty"`
	Comments []Comment `gorm:"foreignKey:PostID" json:"list_comment"`
}

func (Post) TableName() string {
	return "posts"
}

func (p *Post) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
