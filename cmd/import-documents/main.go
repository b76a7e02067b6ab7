// Command import-documents bulk-loads a directory tree into a classroom.
// Each first-level directory is a topic; every file below it becomes a
// document titled after its path relative to the topic directory.
package main

import (
	"context"
	"flag"
	"io/fs"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/P3chys/classroom-api/internal/apperr"
	"github.com/P3chys/classroom-api/internal/config"
	"github.com/P3chys/classroom-api/internal/database"
	"github.com/P3chys/classroom-api/internal/logger"
	"github.com/P3chys/classroom-api/internal/models"
	"github.com/P3chys/classroom-api/internal/services"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

func main() {
	dir := flag.String("dir", "", "directory laid out as <topic>/<file>")
	classroomFlag := flag.String("classroom", "", "target classroom id")
	flag.Parse()

	envErr := godotenv.Load()

	cfg := config.Load()

	log, err := logger.New(cfg.LogMode)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	if envErr != nil {
		log.Info("No .env file found")
	}
	if *dir == "" || *classroomFlag == "" {
		log.Fatal("Both -dir and -classroom are required")
	}
	classroomID, err := uuid.Parse(*classroomFlag)
	if err != nil {
		log.Fatal("Invalid classroom id", "classroom", *classroomFlag, "error", err)
	}

	db, err := database.Connect(cfg.DatabaseURL, log)
	if err != nil {
		log.Fatal("Failed to connect to database", "error", err)
	}

	ctx := context.Background()
	classroom, err := services.NewClassroomService(db).Get(ctx, classroomID)
	if err != nil {
		log.Fatal("Failed to load classroom", "classroom", classroomID, "error", err)
	}

	store, err := services.NewObjectStore(ctx, cfg, log)
	if err != nil {
		log.Fatal("Failed to initialize object storage", "error", err)
	}

	documents := services.NewDocumentService(services.DocumentServiceDeps{
		DB:        db,
		Store:     store,
		Indexer:   services.NewSearchService(cfg, log),
		Extractor: services.NewTextExtractionService(cfg),
		Activity:  services.NewActivityService(db),
		Log:       log,
	})

	summary := importTree(ctx, log, documents, classroom, *dir)
	log.Info("Import completed",
		"imported", summary.imported,
		"skipped", summary.skipped,
		"failed", summary.failed,
	)
}

type importSummary struct {
	imported int
	skipped  int
	failed   int
}

func importTree(ctx context.Context, log *logger.Logger, documents *services.DocumentService, classroom *models.Classroom, baseDir string) importSummary {
	var summary importSummary

	entries, err := os.ReadDir(baseDir)
	if err != nil {
		log.Fatal("Failed to read directory", "dir", baseDir, "error", err)
	}

	for _, entry := range entries {
		if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		topic := entry.Name()
		topicDir := filepath.Join(baseDir, topic)

		err := filepath.WalkDir(topicDir, func(path string, d fs.DirEntry, err error) error {
			if err != nil || d.IsDir() {
				return nil
			}

			rel, err := filepath.Rel(topicDir, path)
			if err != nil {
				rel = d.Name()
			}
			title := strings.TrimSuffix(filepath.ToSlash(rel), filepath.Ext(rel))

			switch err := importFile(ctx, documents, classroom, topic, title, path); {
			case err == nil:
				summary.imported++
				log.Info("Imported document", "topic", topic, "title", title)
			case apperr.Is(err, apperr.KindDuplicateTitle):
				summary.skipped++
				log.Info("Document already exists, skipping", "topic", topic, "title", title)
			default:
				summary.failed++
				log.Warn("Failed to import document", "path", path, "error", err)
			}
			return nil
		})
		if err != nil {
			log.Warn("Error walking directory", "dir", topicDir, "error", err)
		}
	}
	return summary
}

func importFile(ctx context.Context, documents *services.DocumentService, classroom *models.Classroom, topic, title, path string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return err
	}

	contentType := mime.TypeByExtension(filepath.Ext(path))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	_, err = documents.Create(ctx, services.CreateDocumentInput{
		ClassroomID: classroom.ID,
		Title:       title,
		CreatorID:   classroom.OwnerID,
		Topic:       topic,
		File: &services.FileUpload{
			Filename:    filepath.Base(path),
			Size:        info.Size(),
			ContentType: contentType,
			Reader:      file,
		},
	})
	return err
}
