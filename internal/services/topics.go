package services

import (
	"context"

	"github.com/P3chys/classroom-api/internal/apperr"
	"github.com/P3chys/classroom-api/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TopicIndex maintains the per-classroom grouping of documents into named
// topics. Topics and documents are stored in append order; DisplayOrder
// reverses them on read so the newest comes first.
type TopicIndex struct {
	db *gorm.DB
}

func NewTopicIndex(db *gorm.DB) *TopicIndex {
	return &TopicIndex{db: db}
}

// WithTx returns an index bound to tx.
func (ix *TopicIndex) WithTx(tx *gorm.DB) *TopicIndex {
	return &TopicIndex{db: tx}
}

// TopicLookup is the result of FindTopic. TopicID is nil when the classroom
// has no topic with the requested name.
type TopicLookup struct {
	TopicID        *uuid.UUID
	Topics         []models.TopicView
	IsSoleDocument bool
}

// FindTopic loads the classroom's index with document summaries and locates
// the topic called name.
func (ix *TopicIndex) FindTopic(ctx context.Context, classroomID uuid.UUID, name string) (*TopicLookup, error) {
	classroom, err := loadClassroom(ctx, ix.db, classroomID)
	if err != nil {
		return nil, err
	}
	topics, err := ix.Populate(ctx, classroom)
	if err != nil {
		return nil, err
	}

	lookup := &TopicLookup{Topics: topics}
	for _, entry := range classroom.TopicDocument {
		if entry.Topic == name {
			id := entry.ID
			lookup.TopicID = &id
			lookup.IsSoleDocument = len(entry.Documents) == 1
			break
		}
	}
	return lookup, nil
}

// CreateTopic appends an empty topic. Callers check for an existing topic
// with FindTopic first.
func (ix *TopicIndex) CreateTopic(ctx context.Context, classroomID uuid.UUID, name string) (uuid.UUID, error) {
	classroom, err := loadClassroom(ctx, ix.db, classroomID)
	if err != nil {
		return uuid.Nil, err
	}
	id := uuid.New()
	classroom.TopicDocument = append(classroom.TopicDocument, models.TopicEntry{
		ID:        id,
		Topic:     name,
		Documents: []uuid.UUID{},
	})
	if err := saveClassroom(ctx, ix.db, classroom); err != nil {
		return uuid.Nil, err
	}
	return id, nil
}

func (ix *TopicIndex) AddDocumentToTopic(ctx context.Context, classroomID, topicID, documentID uuid.UUID) error {
	classroom, err := loadClassroom(ctx, ix.db, classroomID)
	if err != nil {
		return err
	}
	i := topicPosition(classroom.TopicDocument, topicID)
	if i < 0 {
		return apperr.Internal("topic is missing from the classroom index", nil)
	}
	classroom.TopicDocument[i].Documents = append(classroom.TopicDocument[i].Documents, documentID)
	return saveClassroom(ctx, ix.db, classroom)
}

// RemoveDocumentFromTopic pulls documentID from its topic. When it is the
// topic's only document the whole topic entry is dropped.
func (ix *TopicIndex) RemoveDocumentFromTopic(ctx context.Context, topicID, documentID, classroomID uuid.UUID, isSoleDocument bool) error {
	classroom, err := loadClassroom(ctx, ix.db, classroomID)
	if err != nil {
		return err
	}
	i := topicPosition(classroom.TopicDocument, topicID)
	if i < 0 {
		return nil
	}
	if isSoleDocument {
		classroom.TopicDocument = append(classroom.TopicDocument[:i:i], classroom.TopicDocument[i+1:]...)
	} else {
		classroom.TopicDocument[i].Documents = removeUUID(classroom.TopicDocument[i].Documents, documentID)
	}
	return saveClassroom(ctx, ix.db, classroom)
}

// MoveDocument takes documentID out of oldTopicID and appends it to
// newTopicID, creating a topic named newTopicName when newTopicID is nil.
func (ix *TopicIndex) MoveDocument(ctx context.Context, oldTopicID uuid.UUID, newTopicID *uuid.UUID, newTopicName string, documentID, classroomID uuid.UUID, isSoleDocumentOfOldTopic bool) error {
	if err := ix.RemoveDocumentFromTopic(ctx, oldTopicID, documentID, classroomID, isSoleDocumentOfOldTopic); err != nil {
		return err
	}
	var dest uuid.UUID
	if newTopicID != nil {
		dest = *newTopicID
	} else {
		id, err := ix.CreateTopic(ctx, classroomID, newTopicName)
		if err != nil {
			return err
		}
		dest = id
	}
	return ix.AddDocumentToTopic(ctx, classroomID, dest, documentID)
}

// Populate resolves every document id in the classroom's index to a summary.
// Ids whose document no longer exists are skipped.
func (ix *TopicIndex) Populate(ctx context.Context, classroom *models.Classroom) ([]models.TopicView, error) {
	var docs []models.Document
	err := ix.db.WithContext(ctx).
		Select("id", "title", "created_at", "file_attributes").
		Where("classroom_id = ?", classroom.ID).
		Find(&docs).Error
	if err != nil {
		return nil, apperr.Internal("failed to load documents", err)
	}

	byID := make(map[uuid.UUID]models.Document, len(docs))
	for _, d := range docs {
		byID[d.ID] = d
	}

	topics := make([]models.TopicView, 0, len(classroom.TopicDocument))
	for _, entry := range classroom.TopicDocument {
		view := models.TopicView{
			ID:        entry.ID,
			Topic:     entry.Topic,
			Documents: make([]models.DocumentSummary, 0, len(entry.Documents)),
		}
		for _, docID := range entry.Documents {
			d, ok := byID[docID]
			if !ok {
				continue
			}
			attrs := []models.FileAttribute(d.FileAttributes)
			if attrs == nil {
				attrs = []models.FileAttribute{}
			}
			view.Documents = append(view.Documents, models.DocumentSummary{
				ID:             d.ID,
				Title:          d.Title,
				CreatedAt:      d.CreatedAt,
				FileAttributes: attrs,
			})
		}
		topics = append(topics, view)
	}
	return topics, nil
}

// TitleConflict reports whether any document other than excludeID already
// uses title.
func TitleConflict(topics []models.TopicView, title string, excludeID uuid.UUID) bool {
	for _, topic := range topics {
		for _, doc := range topic.Documents {
			if doc.Title == title && doc.ID != excludeID {
				return true
			}
		}
	}
	return false
}

// TopicIDByName returns the id of the topic called name, or nil.
func TopicIDByName(topics []models.TopicView, name string) *uuid.UUID {
	for _, topic := range topics {
		if topic.Topic == name {
			id := topic.ID
			return &id
		}
	}
	return nil
}

// DisplayOrder returns a copy of topics with both the topics and the
// documents inside each reversed. The input is left untouched.
func DisplayOrder(topics []models.TopicView) []models.TopicView {
	if len(topics) == 0 {
		return topics
	}
	out := make([]models.TopicView, len(topics))
	for i, topic := range topics {
		docs := make([]models.DocumentSummary, len(topic.Documents))
		for j, doc := range topic.Documents {
			docs[len(docs)-1-j] = doc
		}
		topic.Documents = docs
		out[len(out)-1-i] = topic
	}
	return out
}

func topicPosition(entries []models.TopicEntry, topicID uuid.UUID) int {
	for i, entry := range entries {
		if entry.ID == topicID {
			return i
		}
	}
	return -1
}
