package handlers

import (
	"net/http"

	"github.com/P3chys/classroom-api/internal/apperr"
	"github.com/P3chys/classroom-api/internal/logger"
	"github.com/P3chys/classroom-api/internal/services"
	"github.com/gin-gonic/gin"
)

type CreateCommentRequest struct {
	Body string `json:"body" binding:"required"`
}

func CreateComment(comments *services.CommentService, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := currentUser(c)
		if err != nil {
			failWithStatus(c, log, err)
			return
		}
		postID, err := parseID(c.Param("postId"), "postId")
		if err != nil {
			failWithStatus(c, log, err)
			return
		}
		var req CreateCommentRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			failWithStatus(c, log, apperr.Validation("Comment body is required"))
			return
		}

		comment, err := comments.Create(c.Request.Context(), postID, userID, req.Body)
		if err != nil {
			failWithStatus(c, log, err)
			return
		}

		c.JSON(http.StatusCreated, gin.H{"success": true, "comment": comment})
	}
}

func DeleteComment(comments *services.CommentService, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := currentUser(c)
		if err != nil {
			failWithStatus(c, log, err)
			return
		}
		commentID, err := parseID(c.Param("commentId"), "commentId")
		if err != nil {
			failWithStatus(c, log, err)
			return
		}

		if err := comments.Delete(c.Request.Context(), commentID, userID); err != nil {
			failWithStatus(c, log, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Comment deleted"})
	}
}
