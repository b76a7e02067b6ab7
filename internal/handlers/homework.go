package handlers

import (
	"net/http"
	"time"

	"github.com/P3chys/classroom-api/internal/apperr"
	"github.com/P3chys/classroom-api/internal/config"
	"github.com/P3chys/classroom-api/internal/logger"
	"github.com/P3chys/classroom-api/internal/services"
	"github.com/gin-gonic/gin"
)

type CreateHomeworkRequest struct {
	ClassroomID string `form:"classroomId" json:"classroomId" binding:"required"`
	Title       string `form:"title" json:"title" binding:"required"`
	Description string `form:"description" json:"description"`
	Deadline    string `form:"deadline" json:"deadline" binding:"required"`
}

type HomeworkIDRequest struct {
	HomeworkID string `form:"homeworkId" json:"homeworkId" binding:"required"`
}

type ChangeDeadlineRequest struct {
	HomeworkID string `json:"homeworkId" binding:"required"`
	Deadline   string `json:"deadline" binding:"required"`
}

type GradeSubmissionRequest struct {
	SubmissionID string   `json:"submissionId" binding:"required"`
	Score        *float64 `json:"score" binding:"required"`
	Comment      string   `json:"comment"`
}

// parseDeadline accepts RFC 3339 timestamps.
func parseDeadline(raw string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, apperr.Validation("Deadline must be an RFC 3339 timestamp")
	}
	return t, nil
}

func CreateHomework(homework *services.HomeworkService, cfg *config.Config, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateHomeworkRequest
		if err := c.ShouldBind(&req); err != nil {
			failWithCode(c, log, apperr.Validation("Please add all the fields"))
			return
		}
		userID, err := currentUser(c)
		if err != nil {
			failWithCode(c, log, err)
			return
		}
		classroomID, err := parseID(req.ClassroomID, "classroomId")
		if err != nil {
			failWithCode(c, log, err)
			return
		}
		deadline, err := parseDeadline(req.Deadline)
		if err != nil {
			failWithCode(c, log, err)
			return
		}

		file, closeFile, err := formFile(c, cfg.MaxUploadSize)
		if err != nil {
			failWithCode(c, log, err)
			return
		}
		defer closeFile()

		hw, err := homework.Create(c.Request.Context(), services.CreateHomeworkInput{
			ClassroomID: classroomID,
			Title:       req.Title,
			Description: req.Description,
			Deadline:    deadline,
			CreatorID:   userID,
			File:        file,
		})
		if err != nil {
			failWithCode(c, log, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Homework created successfully", "homework": hw})
	}
}

func RemoveHomework(homework *services.HomeworkService, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req HomeworkIDRequest
		if err := c.ShouldBind(&req); err != nil {
			failWithCode(c, log, apperr.Validation("homeworkId is required"))
			return
		}
		userID, err := currentUser(c)
		if err != nil {
			failWithCode(c, log, err)
			return
		}
		homeworkID, err := parseID(req.HomeworkID, "homeworkId")
		if err != nil {
			failWithCode(c, log, err)
			return
		}

		if err := homework.Remove(c.Request.Context(), homeworkID, userID); err != nil {
			failWithCode(c, log, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Homework removed successfully"})
	}
}

func ListHomeworkMetadata(homework *services.HomeworkService, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ClassroomIDRequest
		if err := c.ShouldBind(&req); err != nil {
			failWithCode(c, log, apperr.Validation("classroomId is required"))
			return
		}
		classroomID, err := parseID(req.ClassroomID, "classroomId")
		if err != nil {
			failWithCode(c, log, err)
			return
		}

		list, err := homework.ListMetadata(c.Request.Context(), classroomID)
		if err != nil {
			failWithCode(c, log, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true, "homework": list})
	}
}

func HomeworkDetail(homework *services.HomeworkService, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req HomeworkIDRequest
		if err := c.ShouldBind(&req); err != nil {
			failWithCode(c, log, apperr.Validation("homeworkId is required"))
			return
		}
		homeworkID, err := parseID(req.HomeworkID, "homeworkId")
		if err != nil {
			failWithCode(c, log, err)
			return
		}

		hw, filename, err := homework.Detail(c.Request.Context(), homeworkID)
		if err != nil {
			failWithCode(c, log, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true, "homework": hw, "filename": filename})
	}
}

func ChangeHomeworkDeadline(homework *services.HomeworkService, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ChangeDeadlineRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			failWithCode(c, log, apperr.Validation("Please add all the fields"))
			return
		}
		userID, err := currentUser(c)
		if err != nil {
			failWithCode(c, log, err)
			return
		}
		homeworkID, err := parseID(req.HomeworkID, "homeworkId")
		if err != nil {
			failWithCode(c, log, err)
			return
		}
		deadline, err := parseDeadline(req.Deadline)
		if err != nil {
			failWithCode(c, log, err)
			return
		}

		hw, err := homework.ChangeDeadline(c.Request.Context(), homeworkID, deadline, userID)
		if err != nil {
			failWithCode(c, log, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Deadline updated successfully", "homework": hw})
	}
}

func SubmitHomework(homework *services.HomeworkService, cfg *config.Config, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req HomeworkIDRequest
		if err := c.ShouldBind(&req); err != nil {
			failWithCode(c, log, apperr.Validation("homeworkId is required"))
			return
		}
		userID, err := currentUser(c)
		if err != nil {
			failWithCode(c, log, err)
			return
		}
		homeworkID, err := parseID(req.HomeworkID, "homeworkId")
		if err != nil {
			failWithCode(c, log, err)
			return
		}

		file, closeFile, err := formFile(c, cfg.MaxUploadSize)
		if err != nil {
			failWithCode(c, log, err)
			return
		}
		defer closeFile()

		sub, err := homework.Submit(c.Request.Context(), homeworkID, userID, file)
		if err != nil {
			failWithCode(c, log, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Homework submitted successfully", "submission": sub})
	}
}

func ListSubmissions(homework *services.HomeworkService, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req HomeworkIDRequest
		if err := c.ShouldBind(&req); err != nil {
			failWithCode(c, log, apperr.Validation("homeworkId is required"))
			return
		}
		userID, err := currentUser(c)
		if err != nil {
			failWithCode(c, log, err)
			return
		}
		homeworkID, err := parseID(req.HomeworkID, "homeworkId")
		if err != nil {
			failWithCode(c, log, err)
			return
		}

		subs, err := homework.ListSubmissions(c.Request.Context(), homeworkID, userID)
		if err != nil {
			failWithCode(c, log, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true, "submissions": subs})
	}
}

func GradeSubmission(homework *services.HomeworkService, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req GradeSubmissionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			failWithCode(c, log, apperr.Validation("submissionId and score are required"))
			return
		}
		userID, err := currentUser(c)
		if err != nil {
			failWithCode(c, log, err)
			return
		}
		submissionID, err := parseID(req.SubmissionID, "submissionId")
		if err != nil {
			failWithCode(c, log, err)
			return
		}

		sub, err := homework.Grade(c.Request.Context(), submissionID, *req.Score, req.Comment, userID)
		if err != nil {
			failWithCode(c, log, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Submission graded", "submission": sub})
	}
}
