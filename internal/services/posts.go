package services

import (
	"context"
	"errors"
	"strings"

	"github.com/P3chys/classroom-api/internal/apperr"
	"github.com/P3chys/classroom-api/internal/logger"
	"github.com/P3chys/classroom-api/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var errPostNotOwned = apperr.Unauthorized("Post not found or user not authorized")

type PostService struct {
	db       *gorm.DB
	activity *ActivityService
	log      *logger.Logger
}

func NewPostService(db *gorm.DB, activity *ActivityService, log *logger.Logger) *PostService {
	if log == nil {
		log = logger.Nop()
	}
	return &PostService{db: db, activity: activity, log: log.With("service", "PostService")}
}

// PostChanges holds the fields of an update; nil fields are left as they are.
type PostChanges struct {
	Title *string
	Body  *string
}

// List returns the classroom's posts newest first, each with its author and
// its comments (newest first, with their authors).
func (s *PostService) List(ctx context.Context, classroomID uuid.UUID) ([]models.Post, error) {
	classroom, err := loadClassroom(ctx, s.db, classroomID)
	if err != nil {
		return nil, err
	}
	posts := []models.Post{}
	if len(classroom.PostIDs) == 0 {
		return posts, nil
	}

	err = s.db.WithContext(ctx).
		Preload("Author").
		Preload("Comments", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at desc")
		}).
		Preload("Comments.Author").
		Where("id IN ?", []uuid.UUID(classroom.PostIDs)).
		Order("created_at desc").
		Find(&posts).Error
	if err != nil {
		return nil, apperr.Internal("failed to load posts", err)
	}
	return posts, nil
}

// Create stores a post and appends it to the classroom's post list.
func (s *PostService) Create(ctx context.Context, classroomID, authorID uuid.UUID, title, body string) (*models.Post, *models.Classroom, error) {
	if strings.TrimSpace(title) == "" || strings.TrimSpace(body) == "" {
		return nil, nil, apperr.Validation("Please add all the fields")
	}

	post := models.Post{
		ClassroomID: classroomID,
		Title:       title,
		Body:        body,
		PostedBy:    authorID,
	}
	var classroom *models.Classroom

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		classroom, err = loadClassroom(ctx, tx, classroomID)
		if err != nil {
			return err
		}
		if err := tx.Create(&post).Error; err != nil {
			return apperr.Internal("failed to create post", err)
		}
		classroom.PostIDs = append(classroom.PostIDs, post.ID)
		return saveClassroom(ctx, tx, classroom)
	})
	if err != nil {
		return nil, nil, err
	}

	if s.activity != nil {
		if err := s.activity.CreateActivity(ctx, authorID, models.ActivityPostCreated, classroomID, nil, map[string]interface{}{"title": title}); err != nil {
			s.log.Warn("Failed to record activity", "post_id", post.ID, "error", err)
		}
	}
	return &post, classroom, nil
}

// Update edits a post owned by authorID. A missing post and a post owned by
// someone else are reported the same way.
func (s *PostService) Update(ctx context.Context, postID, authorID uuid.UUID, changes PostChanges) (*models.Post, error) {
	var post models.Post

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ? AND posted_by = ?", postID, authorID).First(&post).Error; err != nil {
			return postLookupError(err)
		}

		updates := map[string]interface{}{}
		if changes.Title != nil {
			updates["title"] = *changes.Title
		}
		if changes.Body != nil {
			updates["body"] = *changes.Body
		}
		if len(updates) == 0 {
			return nil
		}
		if err := tx.Model(&post).Updates(updates).Error; err != nil {
			return apperr.Internal("failed to update post", err)
		}
		if changes.Title != nil {
			post.Title = *changes.Title
		}
		if changes.Body != nil {
			post.Body = *changes.Body
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// Delete removes a post owned by authorID together with its comments and its
// entry in the classroom's post list. Ownership is checked before anything
// is touched.
func (s *PostService) Delete(ctx context.Context, postID, classroomID, authorID uuid.UUID) (*models.Post, *models.Classroom, error) {
	var post models.Post
	var classroom *models.Classroom

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ? AND posted_by = ?", postID, authorID).First(&post).Error; err != nil {
			return postLookupError(err)
		}

		if err := tx.Where("post_id = ?", postID).Delete(&models.Comment{}).Error; err != nil {
			return apperr.Internal("failed to delete comments", err)
		}

		var err error
		classroom, err = loadClassroom(ctx, tx, classroomID)
		if err != nil {
			return err
		}
		classroom.PostIDs = removeUUID(classroom.PostIDs, postID)
		if err := saveClassroom(ctx, tx, classroom); err != nil {
			return err
		}

		if err := tx.Delete(&models.Post{}, "id = ?", postID).Error; err != nil {
			return apperr.Internal("failed to delete post", err)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return &post, classroom, nil
}

func postLookupError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errPostNotOwned
	}
	return apperr.Internal("failed to load post", err)
}
