package router

import (
	"time"

	"github.com/P3chys/classroom-api/internal/config"
	"github.com/P3chys/classroom-api/internal/handlers"
	"github.com/P3chys/classroom-api/internal/logger"
	"github.com/P3chys/classroom-api/internal/middleware"
	"github.com/P3chys/classroom-api/internal/models"
	"github.com/P3chys/classroom-api/internal/services"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"
)

// Deps are the long-lived clients the API is built on. Search, Extractor
// and Limiter are optional.
type Deps struct {
	DB        *gorm.DB
	Config    *config.Config
	Log       *logger.Logger
	Store     services.ObjectStore
	Search    *services.SearchService
	Extractor services.TextExtractor
	Limiter   *middleware.RateLimiter
}

func Setup(deps Deps) *gin.Engine {
	cfg, db, log := deps.Config, deps.DB, deps.Log
	if log == nil {
		log = logger.Nop()
	}

	var indexer services.DocumentIndexer
	var searcher handlers.DocumentSearcher
	if deps.Search != nil {
		indexer = deps.Search
		searcher = deps.Search
	}

	// Initialize Services
	activityService := services.NewActivityService(db)
	classroomService := services.NewClassroomService(db)
	documentService := services.NewDocumentService(services.DocumentServiceDeps{
		DB:        db,
		Store:     deps.Store,
		Indexer:   indexer,
		Extractor: deps.Extractor,
		Activity:  activityService,
		Log:       log,
	})
	postService := services.NewPostService(db, activityService, log)
	commentService := services.NewCommentService(db)
	homeworkService := services.NewHomeworkService(db, deps.Store, activityService, log)

	// Set Gin mode
	gin.SetMode(cfg.GinMode)

	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(log), middleware.Metrics())
	r.MaxMultipartMemory = 8 << 20

	// CORS middleware
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Accept-Language"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
	}))

	r.GET("/health", handlers.HealthCheck(db, cfg.StorageBackend))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	var authLimit, uploadLimit gin.HandlerFunc = passThrough, passThrough
	if deps.Limiter != nil {
		authLimit = deps.Limiter.RateLimitByIP(cfg.AuthRateLimit, time.Hour)
		uploadLimit = deps.Limiter.RateLimitByUser(cfg.UploadRateLimit, time.Hour)
	}

	// API v1 routes
	api := r.Group("/api/v1")
	{
		// Public routes
		auth := api.Group("/auth")
		auth.Use(authLimit)
		{
			auth.POST("/register", handlers.Register(db, cfg, log))
			auth.POST("/login", handlers.Login(db, cfg))
		}

		// Protected routes
		protected := api.Group("")
		protected.Use(middleware.AuthRequired(cfg))
		{
			protected.GET("/auth/me", handlers.GetCurrentUser(db))

			// Classrooms
			protected.POST("/classrooms", middleware.RoleRequired(models.RoleTeacher), handlers.CreateClassroom(classroomService, log))
			protected.POST("/classrooms/join", handlers.JoinClassroom(classroomService, log))
			protected.GET("/classrooms/:id", handlers.GetClassroom(classroomService, log))

			// Documents
			documents := protected.Group("/documents")
			{
				documents.POST("/upload-document", uploadLimit, handlers.UploadDocument(documentService, cfg, log))
				documents.POST("/download-document", handlers.DownloadDocument(documentService, log))
				documents.POST("/list-document-metadata", handlers.ListDocumentMetadata(documentService, log))
				documents.POST("/change-document", handlers.ChangeDocument(documentService, log))
				documents.POST("/change-document-file", uploadLimit, handlers.ChangeDocumentFile(documentService, cfg, log))
				documents.POST("/delete-document", handlers.DeleteDocument(documentService, log))
				documents.GET("/search", handlers.SearchDocuments(searcher, log))
			}

			// Posts
			protected.GET("/posts/:classroomId", handlers.ListPosts(postService, log))
			protected.POST("/posts/:classroomId", handlers.CreatePost(postService, log))
			protected.PUT("/posts/:postId", handlers.UpdatePost(postService, log))
			protected.DELETE("/posts/:postId/:classroomId", handlers.DeletePost(postService, log))

			// Comments
			protected.POST("/comments/:postId", handlers.CreateComment(commentService, log))
			protected.DELETE("/comments/:commentId", handlers.DeleteComment(commentService, log))

			// Homework
			homework := protected.Group("/homework")
			{
				homework.POST("/create-homework", uploadLimit, handlers.CreateHomework(homeworkService, cfg, log))
				homework.POST("/remove-homework", handlers.RemoveHomework(homeworkService, log))
				homework.POST("/list-homework-metadata", handlers.ListHomeworkMetadata(homeworkService, log))
				homework.POST("/homework-detail", handlers.HomeworkDetail(homeworkService, log))
				homework.POST("/change-homework-deadline", handlers.ChangeHomeworkDeadline(homeworkService, log))
				homework.POST("/submit", uploadLimit, handlers.SubmitHomework(homeworkService, cfg, log))
				homework.POST("/list-submissions", handlers.ListSubmissions(homeworkService, log))
				homework.POST("/grade-submission", handlers.GradeSubmission(homeworkService, log))
			}

			// Activities
			protected.GET("/activities/recent", handlers.GetRecentActivities(activityService, log))
		}
	}

	return r
}

func passThrough(c *gin.Context) { c.Next() }
