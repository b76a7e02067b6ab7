package services

import (
	"fmt"
	"time"

	"github.com/P3chys/classroom-api/internal/config"
	"github.com/P3chys/classroom-api/internal/logger"
	"github.com/P3chys/classroom-api/internal/models"
	"github.com/meilisearch/meilisearch-go"
)

const documentsIndex = "documents"

// DocumentIndexer keeps the full-text index in step with document writes.
type DocumentIndexer interface {
	IndexDocument(doc SearchDocument) error
	DeleteDocument(docID string) error
}

// SearchDocument is the indexed projection of a document.
type SearchDocument struct {
	ID          string `json:"id"`
	ClassroomID string `json:"classroom_id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Topic       string `json:"topic"`
	ContentText string `json:"content_text,omitempty"`
	CreatedAt   int64  `json:"created_at"`
}

func NewSearchDocument(doc models.Document) SearchDocument {
	return SearchDocument{
		ID:          doc.ID.String(),
		ClassroomID: doc.ClassroomID.String(),
		Title:       doc.Title,
		Description: doc.Description,
		Topic:       doc.Topic,
		ContentText: doc.ContentText,
		CreatedAt:   doc.CreatedAt.Unix(),
	}
}

type SearchService struct {
	client *meilisearch.Client
	index  string
}

func NewSearchService(cfg *config.Config, log *logger.Logger) *SearchService {
	client := meilisearch.NewClient(meilisearch.ClientConfig{
		Host:    cfg.MeiliURL,
		APIKey:  cfg.MeiliAPIKey,
		Timeout: 10 * time.Second,
	})

	// Ensure documents index exists (best effort)
	_, err := client.GetIndex(documentsIndex)
	if err != nil {
		_, err = client.CreateIndex(&meilisearch.IndexConfig{
			Uid:        documentsIndex,
			PrimaryKey: "id",
		})
		if err != nil {
			log.Warn("Failed to create meilisearch documents index", "error", err)
		}

		_, err = client.Index(documentsIndex).UpdateFilterableAttributes(&[]string{"classroom_id", "topic"})
		if err != nil {
			log.Warn("Failed to update filterable attributes", "error", err)
		}

		_, err = client.Index(documentsIndex).UpdateSortableAttributes(&[]string{"created_at"})
		if err != nil {
			log.Warn("Failed to update sortable attributes", "error", err)
		}

		_, err = client.Index(documentsIndex).UpdateSearchableAttributes(&[]string{"title", "description", "topic", "content_text"})
		if err != nil {
			log.Warn("Failed to update searchable attributes", "error", err)
		}
	}

	return &SearchService{
		client: client,
		index:  documentsIndex,
	}
}

func (s *SearchService) IndexDocument(doc SearchDocument) error {
	_, err := s.client.Index(s.index).AddDocuments([]SearchDocument{doc})
	return err
}

func (s *SearchService) IndexDocuments(docs []SearchDocument) error {
	if len(docs) == 0 {
		return nil
	}
	_, err := s.client.Index(s.index).AddDocuments(docs)
	return err
}

func (s *SearchService) DeleteDocument(docID string) error {
	_, err := s.client.Index(s.index).DeleteDocument(docID)
	return err
}

// Search runs query restricted to one classroom.
func (s *SearchService) Search(query string, classroomID string) (*meilisearch.SearchResponse, error) {
	request := &meilisearch.SearchRequest{
		Limit:  20,
		Filter: fmt.Sprintf("classroom_id = %q", classroomID),
	}
	return s.client.Index(s.index).Search(query, request)
}

func (s *SearchService) GetDocumentCount() (int64, error) {
	stats, err := s.client.Index(s.index).GetStats()
	if err != nil {
		return 0, err
	}
	return stats.NumberOfDocuments, nil
}
