package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/P3chys/classroom-api/internal/apperr"
	"github.com/P3chys/classroom-api/internal/logger"
	"github.com/P3chys/classroom-api/internal/models"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	homeworkObjectKind   = "homework"
	submissionObjectKind = "submission"
)

var errHomeworkNotFound = apperr.NotFound("Homework does not exist or has been deleted")

type HomeworkService struct {
	db       *gorm.DB
	store    ObjectStore
	activity *ActivityService
	log      *logger.Logger
	now      func() time.Time
}

func NewHomeworkService(db *gorm.DB, store ObjectStore, activity *ActivityService, log *logger.Logger) *HomeworkService {
	if log == nil {
		log = logger.Nop()
	}
	return &HomeworkService{
		db:       db,
		store:    store,
		activity: activity,
		log:      log.With("service", "HomeworkService"),
		now:      time.Now,
	}
}

type CreateHomeworkInput struct {
	ClassroomID uuid.UUID
	Title       string
	Description string
	Deadline    time.Time
	CreatorID   uuid.UUID
	File        *FileUpload
}

// HomeworkSummary is the listing view of a homework.
type HomeworkSummary struct {
	ID             uuid.UUID              `json:"id"`
	Title          string                 `json:"title"`
	Deadline       time.Time              `json:"deadline"`
	CreatedAt      time.Time              `json:"created_at"`
	FileAttributes []models.FileAttribute `json:"file_attributes"`
}

// Create stores a homework and seeds a TO DO submission for every student
// enrolled at that moment. Only the classroom owner may create homework.
func (s *HomeworkService) Create(ctx context.Context, in CreateHomeworkInput) (*models.Homework, error) {
	if strings.TrimSpace(in.Title) == "" {
		return nil, apperr.Validation("Homework title is required")
	}
	if in.Deadline.IsZero() {
		return nil, apperr.Validation("Homework deadline is required")
	}

	hw := models.Homework{
		ID:          uuid.New(),
		ClassroomID: in.ClassroomID,
		Title:       in.Title,
		Description: in.Description,
		CreatorID:   in.CreatorID,
		Deadline:    in.Deadline,
	}
	uploaded := false

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		classroom, err := loadClassroom(ctx, tx, in.ClassroomID)
		if err != nil {
			return err
		}
		if classroom.OwnerID != in.CreatorID {
			return apperr.Unauthorized("Only the classroom owner can create homework")
		}

		if in.File != nil {
			url, attr, err := storeAttachment(ctx, s.store, homeworkObjectKind, hw.ID, in.File)
			if err != nil {
				return apperr.Internal("failed to store homework file", err)
			}
			uploaded = true
			hw.AttachedFiles = datatypes.JSONSlice[string]{url}
			hw.FileAttributes = datatypes.JSONSlice[models.FileAttribute]{attr}
		}

		if err := tx.Create(&hw).Error; err != nil {
			return apperr.Internal("failed to save homework", err)
		}

		if len(classroom.StudentIDs) == 0 {
			return nil
		}
		submissions := make([]models.Submission, 0, len(classroom.StudentIDs))
		for _, studentID := range classroom.StudentIDs {
			submissions = append(submissions, models.Submission{
				ClassroomID: in.ClassroomID,
				HomeworkID:  hw.ID,
				Title:       hw.Title,
				StudentID:   studentID,
				Status:      models.SubmissionToDo,
			})
		}
		if err := tx.Create(&submissions).Error; err != nil {
			return apperr.Internal("failed to seed submissions", err)
		}
		return nil
	})
	if err != nil {
		if uploaded {
			if cleanupErr := s.store.DeletePrefix(ctx, objectPrefix(homeworkObjectKind, hw.ID)); cleanupErr != nil {
				s.log.Warn("Failed to clean up orphaned upload", "homework_id", hw.ID, "error", cleanupErr)
			}
		}
		return nil, err
	}

	if s.activity != nil {
		err := s.activity.CreateActivity(ctx, in.CreatorID, models.ActivityHomeworkCreated, in.ClassroomID, nil, map[string]interface{}{
			"title":    hw.Title,
			"deadline": hw.Deadline,
		})
		if err != nil {
			s.log.Warn("Failed to record activity", "homework_id", hw.ID, "error", err)
		}
	}
	return &hw, nil
}

// Remove deletes a homework with all of its submissions and their files.
func (s *HomeworkService) Remove(ctx context.Context, homeworkID, requesterID uuid.UUID) error {
	var hw models.Homework
	var submissionIDs []uuid.UUID

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.loadOwned(ctx, tx, &hw, homeworkID, requesterID); err != nil {
			return err
		}
		if err := tx.Model(&models.Submission{}).Where("homework_id = ?", hw.ID).Pluck("id", &submissionIDs).Error; err != nil {
			return apperr.Internal("failed to load submissions", err)
		}
		if err := tx.Where("homework_id = ?", hw.ID).Delete(&models.Submission{}).Error; err != nil {
			return apperr.Internal("failed to delete submissions", err)
		}
		if err := tx.Delete(&models.Homework{}, "id = ?", hw.ID).Error; err != nil {
			return apperr.Internal("failed to delete homework", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	prefixes := []string{objectPrefix(homeworkObjectKind, hw.ID)}
	for _, id := range submissionIDs {
		prefixes = append(prefixes, objectPrefix(submissionObjectKind, id))
	}
	for _, prefix := range prefixes {
		if err := s.store.DeletePrefix(ctx, prefix); err != nil {
			s.log.Error("Failed to delete homework objects", "prefix", prefix, "error", err)
		}
	}
	return nil
}

// ListMetadata returns the classroom's homework newest first.
func (s *HomeworkService) ListMetadata(ctx context.Context, classroomID uuid.UUID) ([]HomeworkSummary, error) {
	if _, err := loadClassroom(ctx, s.db, classroomID); err != nil {
		return nil, err
	}

	var rows []models.Homework
	err := s.db.WithContext(ctx).
		Select("id", "title", "deadline", "created_at", "file_attributes").
		Where("classroom_id = ?", classroomID).
		Order("created_at desc").
		Find(&rows).Error
	if err != nil {
		return nil, apperr.Internal("failed to load homework", err)
	}

	out := make([]HomeworkSummary, 0, len(rows))
	for _, hw := range rows {
		attrs := []models.FileAttribute(hw.FileAttributes)
		if attrs == nil {
			attrs = []models.FileAttribute{}
		}
		out = append(out, HomeworkSummary{
			ID:             hw.ID,
			Title:          hw.Title,
			Deadline:       hw.Deadline,
			CreatedAt:      hw.CreatedAt,
			FileAttributes: attrs,
		})
	}
	return out, nil
}

// Detail returns the homework and the display filename of its attachment,
// or nil when it has none.
func (s *HomeworkService) Detail(ctx context.Context, homeworkID uuid.UUID) (*models.Homework, *string, error) {
	var hw models.Homework
	if err := s.db.WithContext(ctx).First(&hw, "id = ?", homeworkID).Error; err != nil {
		return nil, nil, homeworkLookupError(err)
	}
	if len(hw.AttachedFiles) == 0 {
		return &hw, nil, nil
	}
	filename := FilenameFromURL(hw.AttachedFiles[0])
	return &hw, &filename, nil
}

func (s *HomeworkService) ChangeDeadline(ctx context.Context, homeworkID uuid.UUID, deadline time.Time, requesterID uuid.UUID) (*models.Homework, error) {
	if deadline.IsZero() {
		return nil, apperr.Validation("Homework deadline is required")
	}

	var hw models.Homework
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.loadOwned(ctx, tx, &hw, homeworkID, requesterID); err != nil {
			return err
		}
		if err := tx.Model(&hw).Update("deadline", deadline).Error; err != nil {
			return apperr.Internal("failed to update deadline", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	hw.Deadline = deadline
	return &hw, nil
}

// loadOwned loads the homework into hw and checks that requesterID owns its
// classroom.
func (s *HomeworkService) loadOwned(ctx context.Context, db *gorm.DB, hw *models.Homework, homeworkID, requesterID uuid.UUID) error {
	if err := db.WithContext(ctx).First(hw, "id = ?", homeworkID).Error; err != nil {
		return homeworkLookupError(err)
	}
	classroom, err := loadClassroom(ctx, db, hw.ClassroomID)
	if err != nil {
		return err
	}
	if classroom.OwnerID != requesterID {
		return apperr.Unauthorized("Only the classroom owner can manage this homework")
	}
	return nil
}

func homeworkLookupError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errHomeworkNotFound
	}
	return apperr.Internal("failed to load homework", err)
}
