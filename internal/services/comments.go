package services

import (
	"context"
	"errors"
	"strings"

	"github.com/P3chys/classroom-api/internal/apperr"
	"github.com/P3chys/classroom-api/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CommentService struct {
	db *gorm.DB
}

func NewCommentService(db *gorm.DB) *CommentService {
	return &CommentService{db: db}
}

func (s *CommentService) Create(ctx context.Context, postID, authorID uuid.UUID, body string) (*models.Comment, error) {
	if strings.TrimSpace(body) == "" {
		return nil, apperr.Validation("Comment body is required")
	}

	var post models.Post
	if err := s.db.WithContext(ctx).Select("id").First(&post, "id = ?", postID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Post not found")
		}
		return nil, apperr.Internal("failed to load post", err)
	}

	comment := models.Comment{
		PostID:      postID,
		CommentedBy: authorID,
		Body:        body,
	}
	if err := s.db.WithContext(ctx).Create(&comment).Error; err != nil {
		return nil, apperr.Internal("failed to create comment", err)
	}

	// Fetch created comment with author details
	var created models.Comment
	if err := s.db.WithContext(ctx).Preload("Author").First(&created, "id = ?", comment.ID).Error; err != nil {
		return nil, apperr.Internal("failed to fetch created comment", err)
	}
	return &created, nil
}

func (s *CommentService) Delete(ctx context.Context, commentID, authorID uuid.UUID) error {
	var comment models.Comment
	if err := s.db.WithContext(ctx).First(&comment, "id = ?", commentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("Comment not found")
		}
		return apperr.Internal("failed to load comment", err)
	}

	if comment.CommentedBy != authorID {
		return apperr.Unauthorized("Not authorized to delete this comment")
	}

	if err := s.db.WithContext(ctx).Delete(&comment).Error; err != nil {
		return apperr.Internal("failed to delete comment", err)
	}
	return nil
}
