package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// FileAttribute describes an attached file. Size is human readable ("1.46 MB").
type FileAttribute struct {
	Name      string `json:"name"`
	Size      string `json:"size"`
	Extension string `json:"extension"`
}

type Document struct {
	ID             uuid.UUID                          `gorm:"type:uuid;primary_key" json:"id"`
	ClassroomID    uuid.UUID                          `gorm:"type:uuid;not null;index" json:"classroom_id"`
	Title          string                             `gorm:"size:255;not null" json:"title"`
	Description    string                             `gorm:"type:text" json:"description"`
	CreatorID      uuid.UUID                          `gorm:"type:uuid;not null;index" json:"creator_id"`
	AttachedFiles  datatypes.JSONSlice[string]        `gorm:"column:attached_files" json:"attached_files"`
	FileAttributes datatypes.JSONSlice[FileAttribute] `gorm:"column:file_attributes" json:"file_attributes"`
	Topic          string                             `gorm:"size:255;not null" json:"topic"`
	ContentText    string                             `gorm:"type:text" json:"-"`
	CreatedAt      time.Time                          `gorm:"index" json:"created_at"`
	UpdatedAt      time.Time                          `json:"updated_at"`
}

func (Document) TableName() string {
	return "documents"
}

func (d *Document) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	if d.AttachedFiles == nil {
		d.AttachedFiles = datatypes.JSONSlice[string]{}
	}
	if d.FileAttributes == nil {
		d.FileAttributes = datatypes.JSONSlice[FileAttribute]{}
	}
	return nil
}

// DocumentSummary is the projection listed under each topic.
type DocumentSummary struct {
	ID             uuid.UUID       `json:"id"`
	Title          string          `json:"title"`
	CreatedAt      time.Time       `json:"created_at"`
	FileAttributes []FileAttribute `json:"file_attributes"`
}

// TopicView is a topic entry with its documents resolved to summaries.
type TopicView struct {
	ID        uuid.UUID         `json:"id"`
	Topic     string            `json:"topic"`
	Documents []DocumentSummary `json:"documents"`
}
