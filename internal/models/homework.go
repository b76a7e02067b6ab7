package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Homework struct {
	ID             uuid.UUID                          `gorm:"type:uuid;primary_key" json:"id"`
	ClassroomID    uuid.UUID                          `gorm:"type:uuid;not null;index" json:"classroom_id"`
	Title          string                             `gorm:"size:255;not null" json:"title"`
	Description    string                             `gorm:"type:text" json:"description"`
	CreatorID      uuid.UUID                          `gorm:"type:uuid;not null" json:"creator_id"`
	Deadline       time.Time                          `gorm:"not null" json:"deadline"`
	AttachedFiles  datatypes.JSONSlice[string]        `gorm:"column:attached_files" json:"attached_files"`
	FileAttributes datatypes.JSONSlice[FileAttribute] `gorm:"column:file_attributes" json:"file_attributes"`
	CreatedAt      time.Time                          `gorm:"index" json:"created_at"`
	UpdatedAt      time.Time                          `json:"updated_at"`
}

func (Homework) TableName() string {
	return "homework"
}

func (h *Homework) BeforeCreate(tx *gorm.DB) error {
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	if h.AttachedFiles == nil {
		h.AttachedFiles = datatypes.JSONSlice[string]{}
	}
	if h.FileAttributes == nil {
		h.FileAttributes = datatypes.JSONSlice[FileAttribute]{}
	}
	return nil
}
