package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type SubmissionStatus string

const (
	SubmissionToDo    SubmissionStatus = "TO DO"
	SubmissionDone    SubmissionStatus = "DONE"
	SubmissionOverdue SubmissionStatus = "OVERDUE"
)

type Submission struct {
	ID            uuid.UUID                   `gorm:"type:uuid;primary_key" json:"id"`
	ClassroomID   uuid.UUID                   `gorm:"type:uuid;not null;index" json:"classroom_id"`
	HomeworkID    uuid.UUID                   `gorm:"type:uuid;not null;index" json:"homework_id"`
	Title         string                      `gorm:"size:255" json:"title"`
	StudentID     uuid.UUID                   `gorm:"type:uuid;not null;index" json:"student_id"`
	Status        SubmissionStatus            `gorm:"type:varchar(20);not null" json:"status"`
	AttachedFiles datatypes.JSONSlice[string] `gorm:"column:attached_files" json:"attached_files"`
	Comment       string                      `gorm:"type:text" json:"comment"`
	Score         *float64                    `json:"score,omitempty"`
	CreatedAt     time.Time                   `json:"created_at"`
	UpdatedAt     time.Time                   `json:"updated_at"`
}

func (Submission) TableName() string {
	return "submissions"
}

func (s *Submission) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	if s.AttachedFiles == nil {
		s.AttachedFiles = datatypes.JSONSlice[string]{}
	}
	return nil
}

// EffectiveStatus reports OVERDUE for unfinished work past the deadline.
func (s *Submission) EffectiveStatus(deadline, now time.Time) SubmissionStatus {
	if s.Status == SubmissionToDo && now.After(deadline) {
		return SubmissionOverdue
	}
	return s.Status
}
