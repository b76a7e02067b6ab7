package handlers

import (
	"net/http"

	"github.com/P3chys/classroom-api/internal/apperr"
	"github.com/P3chys/classroom-api/internal/logger"
	"github.com/P3chys/classroom-api/internal/services"
	"github.com/gin-gonic/gin"
)

type CreatePostRequest struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

type UpdatePostRequest struct {
	Title *string `json:"title"`
	Body  *string `json:"body"`
}

func ListPosts(posts *services.PostService, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		classroomID, err := parseID(c.Param("classroomId"), "classroomId")
		if err != nil {
			failWithStatus(c, log, err)
			return
		}

		list, err := posts.List(c.Request.Context(), classroomID)
		if err != nil {
			failWithStatus(c, log, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true, "posts": list})
	}
}

func CreatePost(posts *services.PostService, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := currentUser(c)
		if err != nil {
			failWithStatus(c, log, err)
			return
		}
		classroomID, err := parseID(c.Param("classroomId"), "classroomId")
		if err != nil {
			failWithStatus(c, log, err)
			return
		}
		var req CreatePostRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			failWithStatus(c, log, apperr.Validation("Please add all the fields"))
			return
		}

		post, classroom, err := posts.Create(c.Request.Context(), classroomID, userID, req.Title, req.Body)
		if err != nil {
			failWithStatus(c, log, err)
			return
		}

		c.JSON(http.StatusCreated, gin.H{
			"success":   true,
			"message":   "Post created successfully",
			"post":      post,
			"classroom": classroom,
		})
	}
}

func UpdatePost(posts *services.PostService, log *logger.Logger) gin.HandlerFunc {
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
		var req UpdatePostRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			failWithStatus(c, log, apperr.Validation("Invalid request body"))
			return
		}

		post, err := posts.Update(c.Request.Context(), postID, userID, services.PostChanges{Title: req.Title, Body: req.Body})
		if err != nil {
			failWithStatus(c, log, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Post updated successfully", "post": post})
	}
}

func DeletePost(posts *services.PostService, log *logger.Logger) gin.HandlerFunc {
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
		classroomID, err := parseID(c.Param("classroomId"), "classroomId")
		if err != nil {
			failWithStatus(c, log, err)
			return
		}

		post, classroom, err := posts.Delete(c.Request.Context(), postID, classroomID, userID)
		if err != nil {
			failWithStatus(c, log, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true, "post": post, "classroom": classroom})
	}
}
