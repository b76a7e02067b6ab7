package handlers

import (
	"net/http"

	"github.com/P3chys/classroom-api/internal/apperr"
	"github.com/P3chys/classroom-api/internal/logger"
	"github.com/P3chys/classroom-api/internal/services"
	"github.com/gin-gonic/gin"
)

type CreateClassroomRequest struct {
	Name string `json:"name" binding:"required"`
}

type JoinClassroomRequest struct {
	JoinCode string `json:"joinCode" binding:"required"`
}

func CreateClassroom(classrooms *services.ClassroomService, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := currentUser(c)
		if err != nil {
			failWithStatus(c, log, err)
			return
		}
		var req CreateClassroomRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			failWithStatus(c, log, apperr.Validation("Classroom name is required"))
			return
		}

		classroom, err := classrooms.Create(c.Request.Context(), userID, req.Name)
		if err != nil {
			failWithStatus(c, log, err)
			return
		}

		c.JSON(http.StatusCreated, gin.H{"success": true, "classroom": classroom})
	}
}

func JoinClassroom(classrooms *services.ClassroomService, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := currentUser(c)
		if err != nil {
			failWithStatus(c, log, err)
			return
		}
		var req JoinClassroomRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			failWithStatus(c, log, apperr.Validation("Join code is required"))
			return
		}

		classroom, err := classrooms.Join(c.Request.Context(), req.JoinCode, userID)
		if err != nil {
			failWithStatus(c, log, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true, "classroom": classroom})
	}
}

func GetClassroom(classrooms *services.ClassroomService, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := currentUser(c)
		if err != nil {
			failWithStatus(c, log, err)
			return
		}
		classroomID, err := parseID(c.Param("id"), "classroom id")
		if err != nil {
			failWithStatus(c, log, err)
			return
		}

		classroom, err := classrooms.Get(c.Request.Context(), classroomID)
		if err != nil {
			failWithStatus(c, log, err)
			return
		}
		if !classroom.HasMember(userID) {
			failWithStatus(c, log, apperr.Unauthorized("Not a member of this classroom"))
			return
		}
		// Only the owner hands out the join code.
		if classroom.OwnerID != userID {
			classroom.JoinCode = ""
		}

		c.JSON(http.StatusOK, gin.H{"success": true, "classroom": classroom})
	}
}
