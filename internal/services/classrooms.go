package services

import (
	"context"
	"errors"
	"strings"

	"github.com/P3chys/classroom-api/internal/apperr"
	"github.com/P3chys/classroom-api/internal/models"
	"github.com/P3chys/classroom-api/internal/utils"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ClassroomService struct {
	db *gorm.DB
}

func NewClassroomService(db *gorm.DB) *ClassroomService {
	return &ClassroomService{db: db}
}

func (s *ClassroomService) Create(ctx context.Context, ownerID uuid.UUID, name string) (*models.Classroom, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperr.Validation("Classroom name is required")
	}

	code, err := utils.GenerateSecureToken(6)
	if err != nil {
		return nil, apperr.Internal("failed to generate join code", err)
	}

	classroom := models.Classroom{
		Name:     name,
		OwnerID:  ownerID,
		JoinCode: code,
	}
	if err := s.db.WithContext(ctx).Create(&classroom).Error; err != nil {
		return nil, apperr.Internal("failed to create classroom", err)
	}
	return &classroom, nil
}

func (s *ClassroomService) Get(ctx context.Context, classroomID uuid.UUID) (*models.Classroom, error) {
	return loadClassroom(ctx, s.db, classroomID)
}

// Join enrolls studentID in the classroom owning joinCode. Joining twice is a no-op.
func (s *ClassroomService) Join(ctx context.Context, joinCode string, studentID uuid.UUID) (*models.Classroom, error) {
	joinCode = strings.TrimSpace(joinCode)
	if joinCode == "" {
		return nil, apperr.Validation("Join code is required")
	}

	var classroom models.Classroom
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("join_code = ?", joinCode).First(&classroom).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("Classroom not found")
			}
			return apperr.Internal("failed to load classroom", err)
		}
		if classroom.HasMember(studentID) {
			return nil
		}
		classroom.StudentIDs = append(classroom.StudentIDs, studentID)
		return saveClassroom(ctx, tx, &classroom)
	})
	if err != nil {
		return nil, err
	}
	return &classroom, nil
}

func loadClassroom(ctx context.Context, db *gorm.DB, classroomID uuid.UUID) (*models.Classroom, error) {
	var classroom models.Classroom
	if err := db.WithContext(ctx).First(&classroom, "id = ?", classroomID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Classroom not found")
		}
		return nil, apperr.Internal("failed to load classroom", err)
	}
	return &classroom, nil
}

// saveClassroom writes the embedded lists of c, failing with a conflict when
// another writer bumped the version since c was loaded.
func saveClassroom(ctx context.Context, db *gorm.DB, c *models.Classroom) error {
	res := db.WithContext(ctx).Model(&models.Classroom{}).
		Where("id = ? AND version = ?", c.ID, c.Version).
		Updates(map[string]interface{}{
			"topic_document": c.TopicDocument,
			"post_ids":       c.PostIDs,
			"student_ids":    c.StudentIDs,
			"version":        c.Version + 1,
		})
	if res.Error != nil {
		return apperr.Internal("failed to save classroom", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.Conflict("Classroom was modified concurrently, please retry")
	}
	c.Version++
	return nil
}

func removeUUID(ids []uuid.UUID, target uuid.UUID) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if id != target {
			out = append(out, id)
		}
	}
	return out
}
