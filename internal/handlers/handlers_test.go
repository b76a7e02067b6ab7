package handlers

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/P3chys/classroom-api/internal/config"
	"github.com/P3chys/classroom-api/internal/logger"
	"github.com/P3chys/classroom-api/internal/models"
	"github.com/P3chys/classroom-api/internal/services"
	"github.com/P3chys/classroom-api/internal/testutil"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testServer struct {
	db        *gorm.DB
	store     *testutil.MemStore
	engine    *gin.Engine
	teacher   *models.User
	student   *models.User
	classroom *models.Classroom
}

// newTestServer wires the handlers the way the router does, with the user
// taken from the X-Test-User header instead of a token.
func newTestServer(t *testing.T) *testServer {
	t.Helper()
	db := testutil.NewDB(t)
	store := testutil.NewMemStore()
	log := logger.Nop()
	cfg := &config.Config{MaxUploadSize: 1024}

	teacher := testutil.SeedUser(t, db, "teacher", models.RoleTeacher)
	student := testutil.SeedUser(t, db, "student", models.RoleStudent)
	classroom := testutil.SeedClassroom(t, db, teacher.ID, student.ID)

	activity := services.NewActivityService(db)
	documents := services.NewDocumentService(services.DocumentServiceDeps{DB: db, Store: store, Activity: activity, Log: log})
	posts := services.NewPostService(db, activity, log)
	homework := services.NewHomeworkService(db, store, activity, log)

	r := gin.New()
	r.Use(func(c *gin.Context) {
		if id := c.GetHeader("X-Test-User"); id != "" {
			c.Set("user_id", id)
		}
		c.Next()
	})
	api := r.Group("/api/v1")
	api.POST("/documents/upload-document", UploadDocument(documents, cfg, log))
	api.POST("/documents/download-document", DownloadDocument(documents, log))
	api.POST("/documents/list-document-metadata", ListDocumentMetadata(documents, log))
	api.POST("/documents/change-document-file", ChangeDocumentFile(documents, cfg, log))
	api.POST("/documents/delete-document", DeleteDocument(documents, log))
	api.GET("/documents/search", SearchDocuments(nil, log))
	api.GET("/posts/:classroomId", ListPosts(posts, log))
	api.POST("/posts/:classroomId", CreatePost(posts, log))
	api.PUT("/posts/:postId", UpdatePost(posts, log))
	api.DELETE("/posts/:postId/:classroomId", DeletePost(posts, log))
	api.POST("/homework/create-homework", CreateHomework(homework, cfg, log))
	api.POST("/homework/submit", SubmitHomework(homework, cfg, log))
	api.POST("/homework/grade-submission", GradeSubmission(homework, log))

	return &testServer{
		db:        db,
		store:     store,
		engine:    r,
		teacher:   teacher,
		student:   student,
		classroom: classroom,
	}
}

func (s *testServer) do(t *testing.T, req *http.Request, user *models.User) (int, map[string]interface{}) {
	t.Helper()
	if user != nil {
		req.Header.Set("X-Test-User", user.ID.String())
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)

	var body map[string]interface{}
	if w.Body.Len() > 0 && w.Body.Bytes()[0] == '{' {
		if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
			t.Fatalf("decode %s: %v", w.Body.String(), err)
		}
	}
	return w.Code, body
}

func (s *testServer) doRaw(t *testing.T, req *http.Request, user *models.User) *httptest.ResponseRecorder {
	t.Helper()
	if user != nil {
		req.Header.Set("X-Test-User", user.ID.String())
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w
}

func jsonRequest(t *testing.T, method, path string, payload interface{}) *http.Request {
	t.Helper()
	data, err := json.Marshal(payload)
	if err != nil {
		t.Fatal(err)
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	return req
}

// multipartRequest builds a form post; file is attached under "file" when
// filename is not empty.
func multipartRequest(t *testing.T, path string, fields map[string]string, filename, content string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			t.Fatal(err)
		}
	}
	if filename != "" {
		part, err := w.CreateFormFile("file", filename)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := part.Write([]byte(content)); err != nil {
			t.Fatal(err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func deadlineIn(d time.Duration) string {
	return time.Now().Add(d).UTC().Format(time.RFC3339)
}

func newID() string {
	return uuid.NewString()
}
