package services

import (
	"context"
	"errors"
	"time"

	"github.com/P3chys/classroom-api/internal/apperr"
	"github.com/P3chys/classroom-api/internal/logger"
	"github.com/P3chys/classroom-api/internal/metrics"
	"github.com/P3chys/classroom-api/internal/models"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const documentObjectKind = "document"

var errDocumentNotFound = apperr.NotFound("Document does not exist or has been deleted")

type DocumentService struct {
	db        *gorm.DB
	store     ObjectStore
	topics    *TopicIndex
	indexer   DocumentIndexer
	extractor TextExtractor
	activity  *ActivityService
	log       *logger.Logger
}

type DocumentServiceDeps struct {
	DB        *gorm.DB
	Store     ObjectStore
	Indexer   DocumentIndexer
	Extractor TextExtractor
	Activity  *ActivityService
	Log       *logger.Logger
}

func NewDocumentService(deps DocumentServiceDeps) *DocumentService {
	log := deps.Log
	if log == nil {
		log = logger.Nop()
	}
	return &DocumentService{
		db:        deps.DB,
		store:     deps.Store,
		topics:    NewTopicIndex(deps.DB),
		indexer:   deps.Indexer,
		extractor: deps.Extractor,
		activity:  deps.Activity,
		log:       log.With("service", "DocumentService"),
	}
}

type CreateDocumentInput struct {
	ClassroomID uuid.UUID
	Title       string
	Description string
	CreatorID   uuid.UUID
	Topic       string
	File        *FileUpload
}

type UpdateDocumentInput struct {
	DocumentID  uuid.UUID
	Title       string
	Description string
	Topic       string
}

// Create stores a new document in its topic, creating the topic when needed.
// The title check runs before any topic is created or file uploaded.
func (s *DocumentService) Create(ctx context.Context, in CreateDocumentInput) (*models.Document, error) {
	doc := models.Document{
		ID:          uuid.New(),
		ClassroomID: in.ClassroomID,
		Title:       in.Title,
		Description: in.Description,
		CreatorID:   in.CreatorID,
		Topic:       in.Topic,
	}
	uploaded := false

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		topics := s.topics.WithTx(tx)

		lookup, err := topics.FindTopic(ctx, in.ClassroomID, in.Topic)
		if err != nil {
			return err
		}
		if TitleConflict(lookup.Topics, in.Title, uuid.Nil) {
			return apperr.DuplicateTitle()
		}

		topicID := lookup.TopicID
		if topicID == nil {
			id, err := topics.CreateTopic(ctx, in.ClassroomID, in.Topic)
			if err != nil {
				return err
			}
			topicID = &id
		}

		if in.File != nil {
			url, attr, err := storeAttachment(ctx, s.store, documentObjectKind, doc.ID, in.File)
			if err != nil {
				return apperr.Internal("failed to store document file", err)
			}
			uploaded = true
			doc.AttachedFiles = datatypes.JSONSlice[string]{url}
			doc.FileAttributes = datatypes.JSONSlice[models.FileAttribute]{attr}
		}

		if err := tx.Create(&doc).Error; err != nil {
			return apperr.Internal("failed to save document", err)
		}
		return topics.AddDocumentToTopic(ctx, in.ClassroomID, *topicID, doc.ID)
	})
	metrics.RecordDocumentOperation("create", err)
	if err != nil {
		if uploaded {
			if cleanupErr := s.store.DeletePrefix(ctx, objectPrefix(documentObjectKind, doc.ID)); cleanupErr != nil {
				s.log.Warn("Failed to clean up orphaned upload", "document_id", doc.ID, "error", cleanupErr)
			}
		}
		return nil, err
	}

	s.extractContent(ctx, &doc, in.File)
	s.reindex(doc)
	s.recordActivity(ctx, in.CreatorID, models.ActivityDocumentUploaded, &doc)
	return &doc, nil
}

// Update changes title, description and topic. A document whose recorded
// topic is missing from the index is reported as an internal error rather
// than repaired.
func (s *DocumentService) Update(ctx context.Context, in UpdateDocumentInput) (*models.Document, error) {
	var doc models.Document

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&doc, "id = ?", in.DocumentID).Error; err != nil {
			return documentLookupError(err)
		}

		topics := s.topics.WithTx(tx)
		lookup, err := topics.FindTopic(ctx, doc.ClassroomID, doc.Topic)
		if err != nil {
			return err
		}
		if TitleConflict(lookup.Topics, in.Title, doc.ID) {
			return apperr.DuplicateTitle()
		}
		if lookup.TopicID == nil {
			return apperr.Internal("document topic is missing from the classroom index", nil)
		}

		if doc.Topic != in.Topic {
			newTopicID := TopicIDByName(lookup.Topics, in.Topic)
			if err := topics.MoveDocument(ctx, *lookup.TopicID, newTopicID, in.Topic, doc.ID, doc.ClassroomID, lookup.IsSoleDocument); err != nil {
				return err
			}
		}

		err = tx.Model(&doc).Updates(map[string]interface{}{
			"title":       in.Title,
			"description": in.Description,
			"topic":       in.Topic,
		}).Error
		if err != nil {
			return apperr.Internal("failed to update document", err)
		}
		return nil
	})
	metrics.RecordDocumentOperation("update", err)
	if err != nil {
		return nil, err
	}

	doc.Title, doc.Description, doc.Topic = in.Title, in.Description, in.Topic
	s.reindex(doc)
	return &doc, nil
}

// ReplaceFile swaps the document's attachment for file. Previous objects
// under the document's prefix are removed first.
func (s *DocumentService) ReplaceFile(ctx context.Context, documentID uuid.UUID, file *FileUpload) (*models.Document, error) {
	var doc models.Document
	if err := s.db.WithContext(ctx).First(&doc, "id = ?", documentID).Error; err != nil {
		return nil, documentLookupError(err)
	}
	if file == nil {
		return nil, apperr.NoFile()
	}

	if err := s.store.DeletePrefix(ctx, objectPrefix(documentObjectKind, doc.ID)); err != nil {
		metrics.RecordDocumentOperation("replace_file", err)
		return nil, apperr.Internal("failed to remove previous file", err)
	}
	url, attr, err := storeAttachment(ctx, s.store, documentObjectKind, doc.ID, file)
	if err != nil {
		metrics.RecordDocumentOperation("replace_file", err)
		return nil, apperr.Internal("failed to store document file", err)
	}

	doc.AttachedFiles = datatypes.JSONSlice[string]{url}
	doc.FileAttributes = datatypes.JSONSlice[models.FileAttribute]{attr}
	err = s.db.WithContext(ctx).Model(&doc).Updates(map[string]interface{}{
		"attached_files":  doc.AttachedFiles,
		"file_attributes": doc.FileAttributes,
		"content_text":    "",
	}).Error
	metrics.RecordDocumentOperation("replace_file", err)
	if err != nil {
		return nil, apperr.Internal("failed to save document file", err)
	}

	doc.ContentText = ""
	s.extractContent(ctx, &doc, file)
	s.reindex(doc)
	return &doc, nil
}

// Delete drops the document from its topic and removes the record, then
// deletes its stored objects.
func (s *DocumentService) Delete(ctx context.Context, documentID, requesterID uuid.UUID) error {
	var doc models.Document

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Select("id", "classroom_id", "title", "topic").First(&doc, "id = ?", documentID).Error; err != nil {
			return documentLookupError(err)
		}

		topics := s.topics.WithTx(tx)
		lookup, err := topics.FindTopic(ctx, doc.ClassroomID, doc.Topic)
		if err != nil {
			return err
		}
		if lookup.TopicID != nil {
			if err := topics.RemoveDocumentFromTopic(ctx, *lookup.TopicID, doc.ID, doc.ClassroomID, lookup.IsSoleDocument); err != nil {
				return err
			}
		} else {
			s.log.Warn("Deleting document whose topic is missing from the index", "document_id", doc.ID, "topic", doc.Topic)
		}

		if err := tx.Delete(&models.Document{}, "id = ?", doc.ID).Error; err != nil {
			return apperr.Internal("failed to delete document", err)
		}
		return nil
	})
	metrics.RecordDocumentOperation("delete", err)
	if err != nil {
		return err
	}

	// The index no longer references the document, so a failure here only
	// leaves unreachable bytes behind.
	if err := s.store.DeletePrefix(ctx, objectPrefix(documentObjectKind, doc.ID)); err != nil {
		s.log.Error("Failed to delete document objects", "document_id", doc.ID, "error", err)
	}

	if s.indexer != nil {
		go func(id string) {
			if err := s.indexer.DeleteDocument(id); err != nil {
				s.log.Warn("Failed to remove document from search index", "document_id", id, "error", err)
			}
		}(doc.ID.String())
	}
	s.recordActivity(ctx, requesterID, models.ActivityDocumentDeleted, &doc)
	return nil
}

// Fetch returns the document and the display filename of its first
// attachment, or nil when it has none.
func (s *DocumentService) Fetch(ctx context.Context, documentID uuid.UUID) (*models.Document, *string, error) {
	var doc models.Document
	if err := s.db.WithContext(ctx).First(&doc, "id = ?", documentID).Error; err != nil {
		return nil, nil, documentLookupError(err)
	}
	if len(doc.AttachedFiles) == 0 {
		return &doc, nil, nil
	}
	filename := FilenameFromURL(doc.AttachedFiles[0])
	return &doc, &filename, nil
}

// ListByClassroom returns the classroom's topics newest first, each with its
// documents newest first.
func (s *DocumentService) ListByClassroom(ctx context.Context, classroomID uuid.UUID) ([]models.TopicView, error) {
	classroom, err := loadClassroom(ctx, s.db, classroomID)
	if err != nil {
		return nil, err
	}
	topics, err := s.topics.Populate(ctx, classroom)
	if err != nil {
		return nil, err
	}
	return DisplayOrder(topics), nil
}

func (s *DocumentService) extractContent(ctx context.Context, doc *models.Document, file *FileUpload) {
	if s.extractor == nil || file == nil || !IsTextExtractable(file.ContentType) {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	text, err := s.extractor.ExtractText(ctx, file.Reader)
	if err != nil {
		s.log.Warn("Text extraction failed", "document_id", doc.ID, "error", err)
		return
	}
	if err := s.db.WithContext(ctx).Model(doc).Update("content_text", text).Error; err != nil {
		s.log.Warn("Failed to store extracted text", "document_id", doc.ID, "error", err)
		return
	}
	doc.ContentText = text
}

func (s *DocumentService) reindex(doc models.Document) {
	if s.indexer == nil {
		return
	}
	entry := NewSearchDocument(doc)
	go func() {
		if err := s.indexer.IndexDocument(entry); err != nil {
			s.log.Warn("Failed to index document", "document_id", entry.ID, "error", err)
		}
	}()
}

func (s *DocumentService) recordActivity(ctx context.Context, userID uuid.UUID, activityType models.ActivityType, doc *models.Document) {
	if s.activity == nil {
		return
	}
	docID := doc.ID
	err := s.activity.CreateActivity(ctx, userID, activityType, doc.ClassroomID, &docID, map[string]interface{}{
		"title": doc.Title,
		"topic": doc.Topic,
	})
	if err != nil {
		s.log.Warn("Failed to record activity", "type", activityType, "error", err)
	}
}

func documentLookupError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errDocumentNotFound
	}
	return apperr.Internal("failed to load document", err)
}
