package services

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/P3chys/classroom-api/internal/models"
	"github.com/P3chys/classroom-api/internal/testutil"
	"gorm.io/gorm"
)

type fakeIndexer struct {
	indexed chan SearchDocument
	deleted chan string
}

func newFakeIndexer() *fakeIndexer {
	return &fakeIndexer{
		indexed: make(chan SearchDocument, 16),
		deleted: make(chan string, 16),
	}
}

func (f *fakeIndexer) IndexDocument(doc SearchDocument) error {
	f.indexed <- doc
	return nil
}

func (f *fakeIndexer) DeleteDocument(id string) error {
	f.deleted <- id
	return nil
}

type fakeExtractor struct {
	text string
}

func (f fakeExtractor) ExtractText(ctx context.Context, file io.ReadSeeker) (string, error) {
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return "", err
	}
	body, err := io.ReadAll(file)
	if err != nil {
		return "", err
	}
	return f.text + string(body), nil
}

func newUpload(name, content string) *FileUpload {
	return &FileUpload{
		Filename:    name,
		Size:        int64(len(content)),
		ContentType: "text/plain",
		Reader:      strings.NewReader(content),
	}
}

type documentFixture struct {
	db        *gorm.DB
	store     *testutil.MemStore
	indexer   *fakeIndexer
	svc       *DocumentService
	owner     *models.User
	classroom *models.Classroom
}

func newDocumentFixture(t *testing.T) *documentFixture {
	t.Helper()
	db := testutil.NewDB(t)
	store := testutil.NewMemStore()
	indexer := newFakeIndexer()
	owner := testutil.SeedUser(t, db, "teacher", models.RoleTeacher)
	classroom := testutil.SeedClassroom(t, db, owner.ID)

	svc := NewDocumentService(DocumentServiceDeps{
		DB:        db,
		Store:     store,
		Indexer:   indexer,
		Extractor: fakeExtractor{text: "extracted:"},
		Activity:  NewActivityService(db),
	})
	return &documentFixture{
		db:        db,
		store:     store,
		indexer:   indexer,
		svc:       svc,
		owner:     owner,
		classroom: classroom,
	}
}

func (f *documentFixture) create(t *testing.T, title, topic string, file *FileUpload) *models.Document {
	t.Helper()
	doc, err := f.svc.Create(context.Background(), CreateDocumentInput{
		ClassroomID: f.classroom.ID,
		Title:       title,
		Description: "description of " + title,
		CreatorID:   f.owner.ID,
		Topic:       topic,
		File:        file,
	})
	if err != nil {
		t.Fatalf("create %q: %v", title, err)
	}
	return doc
}

func (f *documentFixture) topicIndex(t *testing.T) []models.TopicEntry {
	t.Helper()
	return testutil.LoadClassroom(t, f.db, f.classroom.ID).TopicDocument
}

func waitIndexed(t *testing.T, ch <-chan SearchDocument) SearchDocument {
	t.Helper()
	select {
	case doc := <-ch:
		return doc
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for search index update")
		return SearchDocument{}
	}
}

func waitTimeout() <-chan time.Time {
	return time.After(2 * time.Second)
}
