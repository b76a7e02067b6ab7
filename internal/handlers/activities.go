package handlers

import (
	"net/http"
	"strconv"

	"github.com/P3chys/classroom-api/internal/logger"
	"github.com/P3chys/classroom-api/internal/services"
	"github.com/gin-gonic/gin"
)

func GetRecentActivities(activity *services.ActivityService, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		classroomID, err := parseID(c.Query("classroomId"), "classroomId")
		if err != nil {
			failWithStatus(c, log, err)
			return
		}
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
		if limit <= 0 {
			limit = 10
		}
		if limit > 50 {
			limit = 50
		}

		activities, err := activity.GetRecentActivities(c.Request.Context(), classroomID, limit)
		if err != nil {
			log.Error("Failed to fetch activities", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to fetch activities"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true, "data": activities})
	}
}
