package services

import (
	"context"
	"errors"

	"github.com/P3chys/classroom-api/internal/apperr"
	"github.com/P3chys/classroom-api/internal/models"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Submit stores file as the student's answer to a homework, replacing any
// earlier upload, and marks the submission DONE. Students who joined after
// the homework was created get their submission on first upload.
func (s *HomeworkService) Submit(ctx context.Context, homeworkID, studentID uuid.UUID, file *FileUpload) (*models.Submission, error) {
	if file == nil {
		return nil, apperr.NoFile()
	}

	var hw models.Homework
	if err := s.db.WithContext(ctx).First(&hw, "id = ?", homeworkID).Error; err != nil {
		return nil, homeworkLookupError(err)
	}
	classroom, err := loadClassroom(ctx, s.db, hw.ClassroomID)
	if err != nil {
		return nil, err
	}
	if classroom.OwnerID == studentID || !classroom.HasMember(studentID) {
		return nil, apperr.Unauthorized("Only enrolled students can submit homework")
	}

	var sub models.Submission
	err = s.db.WithContext(ctx).Where("homework_id = ? AND student_id = ?", hw.ID, studentID).First(&sub).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		sub = models.Submission{
			ClassroomID: hw.ClassroomID,
			HomeworkID:  hw.ID,
			Title:       hw.Title,
			StudentID:   studentID,
			Status:      models.SubmissionToDo,
		}
		if err := s.db.WithContext(ctx).Create(&sub).Error; err != nil {
			return nil, apperr.Internal("failed to create submission", err)
		}
	case err != nil:
		return nil, apperr.Internal("failed to load submission", err)
	}

	if err := s.store.DeletePrefix(ctx, objectPrefix(submissionObjectKind, sub.ID)); err != nil {
		return nil, apperr.Internal("failed to remove previous submission file", err)
	}
	url, _, err := storeAttachment(ctx, s.store, submissionObjectKind, sub.ID, file)
	if err != nil {
		return nil, apperr.Internal("failed to store submission file", err)
	}

	sub.AttachedFiles = datatypes.JSONSlice[string]{url}
	sub.Status = models.SubmissionDone
	err = s.db.WithContext(ctx).Model(&sub).Updates(map[string]interface{}{
		"attached_files": sub.AttachedFiles,
		"status":         sub.Status,
	}).Error
	if err != nil {
		return nil, apperr.Internal("failed to save submission", err)
	}
	return &sub, nil
}

// ListSubmissions returns every submission of a homework, oldest first, with
// unfinished work past the deadline reported as OVERDUE.
func (s *HomeworkService) ListSubmissions(ctx context.Context, homeworkID, requesterID uuid.UUID) ([]models.Submission, error) {
	var hw models.Homework
	if err := s.loadOwned(ctx, s.db, &hw, homeworkID, requesterID); err != nil {
		return nil, err
	}

	subs := []models.Submission{}
	if err := s.db.WithContext(ctx).Where("homework_id = ?", hw.ID).Order("created_at asc").Find(&subs).Error; err != nil {
		return nil, apperr.Internal("failed to load submissions", err)
	}
	now := s.now()
	for i := range subs {
		subs[i].Status = subs[i].EffectiveStatus(hw.Deadline, now)
	}
	return subs, nil
}

// Grade records a score between 0 and 100 and an optional comment.
func (s *HomeworkService) Grade(ctx context.Context, submissionID uuid.UUID, score float64, comment string, requesterID uuid.UUID) (*models.Submission, error) {
	if score < 0 || score > 100 {
		return nil, apperr.Validation("Score must be between 0 and 100")
	}

	var sub models.Submission
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&sub, "id = ?", submissionID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("Submission not found")
			}
			return apperr.Internal("failed to load submission", err)
		}
		var hw models.Homework
		if err := s.loadOwned(ctx, tx, &hw, sub.HomeworkID, requesterID); err != nil {
			return err
		}
		if err := tx.Model(&sub).Updates(map[string]interface{}{
			"score":   score,
			"comment": comment,
		}).Error; err != nil {
			return apperr.Internal("failed to grade submission", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sub.Score = &score
	sub.Comment = comment
	return &sub, nil
}
