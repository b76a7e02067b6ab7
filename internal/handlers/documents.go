package handlers

import (
	"net/http"

	"github.com/P3chys/classroom-api/internal/apperr"
	"github.com/P3chys/classroom-api/internal/config"
	"github.com/P3chys/classroom-api/internal/logger"
	"github.com/P3chys/classroom-api/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/meilisearch/meilisearch-go"
)

type UploadDocumentRequest struct {
	ClassroomID string `form:"classroomId" json:"classroomId" binding:"required"`
	Title       string `form:"title" json:"title" binding:"required"`
	Description string `form:"description" json:"description"`
	Topic       string `form:"topic" json:"topic" binding:"required"`
}

type DocumentIDRequest struct {
	DocumentID string `form:"documentId" json:"documentId" binding:"required"`
}

type ChangeDocumentRequest struct {
	DocumentID  string `form:"documentId" json:"documentId" binding:"required"`
	Title       string `form:"title" json:"title" binding:"required"`
	Description string `form:"description" json:"description"`
	Topic       string `form:"topic" json:"topic" binding:"required"`
}

type ClassroomIDRequest struct {
	ClassroomID string `form:"classroomId" json:"classroomId" binding:"required"`
}

// DocumentSearcher runs a full-text query within one classroom.
type DocumentSearcher interface {
	Search(query string, classroomID string) (*meilisearch.SearchResponse, error)
}

func UploadDocument(documents *services.DocumentService, cfg *config.Config, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req UploadDocumentRequest
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

		file, closeFile, err := formFile(c, cfg.MaxUploadSize)
		if err != nil {
			failWithCode(c, log, err)
			return
		}
		defer closeFile()

		_, err = documents.Create(c.Request.Context(), services.CreateDocumentInput{
			ClassroomID: classroomID,
			Title:       req.Title,
			Description: req.Description,
			CreatorID:   userID,
			Topic:       req.Topic,
			File:        file,
		})
		if err != nil {
			failWithCode(c, log, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Document uploaded successfully"})
	}
}

func DownloadDocument(documents *services.DocumentService, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req DocumentIDRequest
		if err := c.ShouldBind(&req); err != nil {
			failWithCode(c, log, apperr.Validation("documentId is required"))
			return
		}
		documentID, err := parseID(req.DocumentID, "documentId")
		if err != nil {
			failWithCode(c, log, err)
			return
		}

		doc, filename, err := documents.Fetch(c.Request.Context(), documentID)
		if err != nil {
			failWithCode(c, log, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true, "document": doc, "filename": filename})
	}
}

func ListDocumentMetadata(documents *services.DocumentService, log *logger.Logger) gin.HandlerFunc {
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

		topics, err := documents.ListByClassroom(c.Request.Context(), classroomID)
		if err != nil {
			failWithCode(c, log, err)
			return
		}

		c.JSON(http.StatusOK, topics)
	}
}

func ChangeDocument(documents *services.DocumentService, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ChangeDocumentRequest
		if err := c.ShouldBind(&req); err != nil {
			failWithCode(c, log, apperr.Validation("Please add all the fields"))
			return
		}
		documentID, err := parseID(req.DocumentID, "documentId")
		if err != nil {
			failWithCode(c, log, err)
			return
		}

		_, err = documents.Update(c.Request.Context(), services.UpdateDocumentInput{
			DocumentID:  documentID,
			Title:       req.Title,
			Description: req.Description,
			Topic:       req.Topic,
		})
		if err != nil {
			failWithCode(c, log, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Document updated successfully"})
	}
}

func ChangeDocumentFile(documents *services.DocumentService, cfg *config.Config, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req DocumentIDRequest
		if err := c.ShouldBind(&req); err != nil {
			failWithCode(c, log, apperr.Validation("documentId is required"))
			return
		}
		documentID, err := parseID(req.DocumentID, "documentId")
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

		if _, err := documents.ReplaceFile(c.Request.Context(), documentID, file); err != nil {
			failWithCode(c, log, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Document file replaced successfully"})
	}
}

func DeleteDocument(documents *services.DocumentService, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req DocumentIDRequest
		if err := c.ShouldBind(&req); err != nil {
			failWithCode(c, log, apperr.Validation("documentId is required"))
			return
		}
		userID, err := currentUser(c)
		if err != nil {
			failWithCode(c, log, err)
			return
		}
		documentID, err := parseID(req.DocumentID, "documentId")
		if err != nil {
			failWithCode(c, log, err)
			return
		}

		if err := documents.Delete(c.Request.Context(), documentID, userID); err != nil {
			failWithCode(c, log, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Document deleted successfully"})
	}
}

func SearchDocuments(search DocumentSearcher, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		query := c.Query("q")
		classroomID, err := parseID(c.Query("classroomId"), "classroomId")
		if err != nil {
			failWithCode(c, log, err)
			return
		}
		if search == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"success": false, "message": "Search is not available"})
			return
		}

		results, err := search.Search(query, classroomID.String())
		if err != nil {
			failWithCode(c, log, apperr.Internal("search failed", err))
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true, "data": results.Hits, "total": results.EstimatedTotalHits})
	}
}
