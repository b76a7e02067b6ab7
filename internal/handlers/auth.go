package handlers

import (
	"errors"
	"net/http"

	"github.com/P3chys/classroom-api/internal/config"
	"github.com/P3chys/classroom-api/internal/logger"
	"github.com/P3chys/classroom-api/internal/models"
	"github.com/P3chys/classroom-api/internal/utils"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=3,max=100"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Role     string `json:"role" binding:"omitempty,oneof=student teacher"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type AuthResponse struct {
	User         *models.User `json:"user"`
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
}

func authError(c *gin.Context, status int, code, message string) {
	c.JSON(status, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}

func Register(db *gorm.DB, cfg *config.Config, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RegisterRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			authError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
			return
		}

		var existing models.User
		err := db.WithContext(c.Request.Context()).
			Where("email = ? OR username = ?", req.Email, req.Username).
			First(&existing).Error
		if err == nil {
			authError(c, http.StatusConflict, "CONFLICT", "Email or username already exists")
			return
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Error("Failed to look up user", "error", err)
			authError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create user")
			return
		}

		hash, err := utils.HashPassword(req.Password)
		if err != nil {
			authError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to hash password")
			return
		}

		role := models.RoleStudent
		if req.Role == string(models.RoleTeacher) {
			role = models.RoleTeacher
		}
		user := models.User{
			Username:     req.Username,
			Email:        req.Email,
			PasswordHash: hash,
			Role:         role,
		}
		if err := db.WithContext(c.Request.Context()).Create(&user).Error; err != nil {
			log.Error("Failed to create user", "error", err)
			authError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create user")
			return
		}

		resp, err := issueTokens(&user, cfg)
		if err != nil {
			authError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to generate token")
			return
		}

		c.JSON(http.StatusCreated, gin.H{"success": true, "data": resp})
	}
}

func Login(db *gorm.DB, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			authError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
			return
		}

		var user models.User
		if err := db.WithContext(c.Request.Context()).Where("email = ?", req.Email).First(&user).Error; err != nil {
			authError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid credentials")
			return
		}
		if !utils.CheckPassword(user.PasswordHash, req.Password) {
			authError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid credentials")
			return
		}

		resp, err := issueTokens(&user, cfg)
		if err != nil {
			authError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to generate token")
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true, "data": resp})
	}
}

func GetCurrentUser(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString("user_id")

		var user models.User
		if err := db.WithContext(c.Request.Context()).First(&user, "id = ?", userID).Error; err != nil {
			authError(c, http.StatusNotFound, "NOT_FOUND", "User not found")
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true, "data": user})
	}
}

func issueTokens(user *models.User, cfg *config.Config) (*AuthResponse, error) {
	access, err := utils.GenerateToken(user.ID, string(user.Role), cfg.JWTSecret, cfg.JWTAccessExpiry)
	if err != nil {
		return nil, err
	}
	refresh, err := utils.GenerateToken(user.ID, string(user.Role), cfg.JWTSecret, cfg.JWTRefreshExpiry)
	if err != nil {
		return nil, err
	}
	return &AuthResponse{User: user, AccessToken: access, RefreshToken: refresh}, nil
}
