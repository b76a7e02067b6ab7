package main

import (
	"time"

	"github.com/P3chys/classroom-api/internal/config"
	"github.com/P3chys/classroom-api/internal/database"
	"github.com/P3chys/classroom-api/internal/logger"
	"github.com/P3chys/classroom-api/internal/models"
	"github.com/P3chys/classroom-api/internal/services"
	"github.com/joho/godotenv"
)

func main() {
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

	db, err := database.Connect(cfg.DatabaseURL, log)
	if err != nil {
		log.Fatal("Failed to connect to database", "error", err)
	}

	searchService := services.NewSearchService(cfg, log)
	log.Info("Meilisearch service initialized")

	var dbCount int64
	if err := db.Model(&models.Document{}).Count(&dbCount).Error; err != nil {
		log.Fatal("Failed to get document count from DB", "error", err)
	}

	meiliCount, err := searchService.GetDocumentCount()
	if err != nil {
		log.Fatal("Failed to get document count from Meilisearch", "error", err)
	}

	log.Info("Document counts", "database", dbCount, "meilisearch", meiliCount)
	if meiliCount == dbCount {
		log.Info("Counts match. Verifying all documents are indexed...")
	} else {
		log.Info("Counts do not match. Reindexing all documents...")
	}

	batchSize := 100
	var offset int
	totalIndexed := 0

	for {
		var documents []models.Document
		if err := db.Order("created_at").Limit(batchSize).Offset(offset).Find(&documents).Error; err != nil {
			log.Fatal("Failed to fetch documents", "error", err)
		}

		if len(documents) == 0 {
			break
		}

		batch := make([]services.SearchDocument, 0, len(documents))
		for _, doc := range documents {
			batch = append(batch, services.NewSearchDocument(doc))
		}

		if err := searchService.IndexDocuments(batch); err != nil {
			log.Warn("Failed to index batch", "offset", offset, "error", err)
		} else {
			totalIndexed += len(documents)
			log.Info("Indexed batch", "size", len(documents), "total", totalIndexed)
		}

		offset += batchSize
		time.Sleep(100 * time.Millisecond) // Meilisearch indexes asynchronously
	}

	finalMeiliCount, err := searchService.GetDocumentCount()
	if err != nil {
		log.Warn("Failed to get final count", "error", err)
	}

	log.Info("Reindexing completed", "meilisearch_count", finalMeiliCount)
}
