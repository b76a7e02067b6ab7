package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/P3chys/classroom-api/internal/config"
	"github.com/P3chys/classroom-api/internal/models"
	"github.com/P3chys/classroom-api/internal/utils"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newAuthEngine(cfg *config.Config) *gin.Engine {
	r := gin.New()
	r.GET("/me", AuthRequired(cfg), func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString("user_id")+" "+c.GetString("role"))
	})
	r.GET("/teachers", AuthRequired(cfg), RoleRequired(models.RoleTeacher), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return r
}

func get(r *gin.Engine, path, authorization string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthRequired(t *testing.T) {
	cfg := &config.Config{JWTSecret: "test-secret"}
	r := newAuthEngine(cfg)
	userID := uuid.New()

	token, err := utils.GenerateToken(userID, string(models.RoleStudent), cfg.JWTSecret, "1h")
	if err != nil {
		t.Fatal(err)
	}
	w := get(r, "/me", "Bearer "+token)
	if w.Code != http.StatusOK || w.Body.String() != userID.String()+" student" {
		t.Fatalf("valid token = %d %s", w.Code, w.Body.String())
	}

	forged, err := utils.GenerateToken(userID, string(models.RoleTeacher), "other-secret", "1h")
	if err != nil {
		t.Fatal(err)
	}
	expired, err := utils.GenerateToken(userID, string(models.RoleStudent), cfg.JWTSecret, "-1m")
	if err != nil {
		t.Fatal(err)
	}

	cases := map[string]string{
		"missing header": "",
		"no bearer":      token,
		"garbage":        "Bearer not.a.token",
		"wrong secret":   "Bearer " + forged,
		"expired":        "Bearer " + expired,
	}
	for name, header := range cases {
		t.Run(name, func(t *testing.T) {
			if w := get(r, "/me", header); w.Code != http.StatusUnauthorized {
				t.Fatalf("status = %d", w.Code)
			}
		})
	}
}

func TestRoleRequired(t *testing.T) {
	cfg := &config.Config{JWTSecret: "test-secret"}
	r := newAuthEngine(cfg)

	student, _ := utils.GenerateToken(uuid.New(), string(models.RoleStudent), cfg.JWTSecret, "1h")
	if w := get(r, "/teachers", "Bearer "+student); w.Code != http.StatusForbidden {
		t.Fatalf("student = %d", w.Code)
	}

	teacher, _ := utils.GenerateToken(uuid.New(), string(models.RoleTeacher), cfg.JWTSecret, "1h")
	if w := get(r, "/teachers", "Bearer "+teacher); w.Code != http.StatusNoContent {
		t.Fatalf("teacher = %d", w.Code)
	}
}
