package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/P3chys/classroom-api/internal/apperr"
	"github.com/P3chys/classroom-api/internal/models"
	"github.com/google/uuid"
)

func TestDocumentTitleReuseAfterDelete(t *testing.T) {
	ctx := context.Background()
	f := newDocumentFixture(t)

	first := f.create(t, "A", "Math", nil)
	entries := f.topicIndex(t)
	if len(entries) != 1 || entries[0].Topic != "Math" || len(entries[0].Documents) != 1 || entries[0].Documents[0] != first.ID {
		t.Fatalf("index after first create: %+v", entries)
	}
	mathID := entries[0].ID

	_, err := f.svc.Create(ctx, CreateDocumentInput{
		ClassroomID: f.classroom.ID,
		Title:       "A",
		CreatorID:   f.owner.ID,
		Topic:       "Physics",
	})
	if !apperr.Is(err, apperr.KindDuplicateTitle) {
		t.Fatalf("second create err = %v, want duplicate title", err)
	}
	if entries := f.topicIndex(t); len(entries) != 1 {
		t.Fatalf("duplicate create must not add a topic, got %+v", entries)
	}

	if err := f.svc.Delete(ctx, first.ID, f.owner.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if entries := f.topicIndex(t); len(entries) != 0 {
		t.Fatalf("sole-document topic should be gone, got %+v", entries)
	}

	again := f.create(t, "A", "Math", nil)
	entries = f.topicIndex(t)
	if len(entries) != 1 || entries[0].Documents[0] != again.ID {
		t.Fatalf("index after re-create: %+v", entries)
	}
	if entries[0].ID == mathID {
		t.Error("re-created topic should have a new id")
	}
}

func TestCreateDocumentWithFile(t *testing.T) {
	f := newDocumentFixture(t)

	doc := f.create(t, "Week 1", "Lectures", newUpload("week 1 notes.txt", "hello"))

	key := "document/" + doc.ID.String() + "/week 1 notes.txt"
	if data, ok := f.store.Object(key); !ok || string(data) != "hello" {
		t.Fatalf("object %q = %q, %v", key, data, ok)
	}
	if len(doc.AttachedFiles) != 1 || !strings.Contains(doc.AttachedFiles[0], "week%201%20notes.txt") {
		t.Fatalf("attached files = %v", doc.AttachedFiles)
	}
	want := models.FileAttribute{Name: "week 1 notes.txt", Size: "5 B", Extension: "txt"}
	if len(doc.FileAttributes) != 1 || doc.FileAttributes[0] != want {
		t.Fatalf("file attributes = %+v, want %+v", doc.FileAttributes, want)
	}
	if doc.ContentText != "extracted:hello" {
		t.Errorf("content text = %q", doc.ContentText)
	}

	indexed := waitIndexed(t, f.indexer.indexed)
	if indexed.ID != doc.ID.String() || indexed.ContentText != "extracted:hello" {
		t.Errorf("indexed = %+v", indexed)
	}

	_, filename, err := f.svc.Fetch(context.Background(), doc.ID)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if filename == nil || *filename != "week 1 notes.txt" {
		t.Fatalf("filename = %v", filename)
	}
}

func TestCreateDocumentUploadFailureLeavesNoTrace(t *testing.T) {
	f := newDocumentFixture(t)
	f.store.UploadErr = errors.New("bucket unavailable")

	_, err := f.svc.Create(context.Background(), CreateDocumentInput{
		ClassroomID: f.classroom.ID,
		Title:       "Broken",
		CreatorID:   f.owner.ID,
		Topic:       "New topic",
		File:        newUpload("a.txt", "x"),
	})
	if !apperr.Is(err, apperr.KindInternal) {
		t.Fatalf("err = %v, want internal", err)
	}
	if entries := f.topicIndex(t); len(entries) != 0 {
		t.Fatalf("topic created by failed upload was not rolled back: %+v", entries)
	}
	var count int64
	f.db.Model(&models.Document{}).Count(&count)
	if count != 0 {
		t.Fatalf("documents = %d, want 0", count)
	}
}

func TestFetchWithoutFile(t *testing.T) {
	f := newDocumentFixture(t)
	doc := f.create(t, "Syllabus", "General", nil)

	got, filename, err := f.svc.Fetch(context.Background(), doc.ID)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if got.Title != "Syllabus" || filename != nil {
		t.Fatalf("fetch = %+v, %v", got, filename)
	}

	_, _, err = f.svc.Fetch(context.Background(), uuid.New())
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("missing document err = %v, want not found", err)
	}
}

func TestUpdateDocumentMovesTopic(t *testing.T) {
	ctx := context.Background()
	f := newDocumentFixture(t)
	a := f.create(t, "A", "Math", nil)
	b := f.create(t, "B", "Math", nil)
	c := f.create(t, "C", "Physics", nil)

	// Moving into an existing topic appends there.
	if _, err := f.svc.Update(ctx, UpdateDocumentInput{DocumentID: a.ID, Title: "A", Description: "moved", Topic: "Physics"}); err != nil {
		t.Fatalf("update: %v", err)
	}
	entries := f.topicIndex(t)
	if len(entries) != 2 {
		t.Fatalf("entries = %+v", entries)
	}
	if got := entries[0].Documents; len(got) != 1 || got[0] != b.ID {
		t.Errorf("Math documents = %v, want [%v]", got, b.ID)
	}
	if got := entries[1].Documents; len(got) != 2 || got[0] != c.ID || got[1] != a.ID {
		t.Errorf("Physics documents = %v, want [%v %v]", got, c.ID, a.ID)
	}

	// Moving the last document out drops the topic and creates the new one.
	if _, err := f.svc.Update(ctx, UpdateDocumentInput{DocumentID: b.ID, Title: "B2", Topic: "Chemistry"}); err != nil {
		t.Fatalf("update: %v", err)
	}
	entries = f.topicIndex(t)
	if len(entries) != 2 || entries[0].Topic != "Physics" || entries[1].Topic != "Chemistry" {
		t.Fatalf("entries = %+v", entries)
	}

	var stored models.Document
	if err := f.db.First(&stored, "id = ?", b.ID).Error; err != nil {
		t.Fatal(err)
	}
	if stored.Title != "B2" || stored.Topic != "Chemistry" {
		t.Errorf("stored = %+v", stored)
	}
}

func TestUpdateDocumentRules(t *testing.T) {
	ctx := context.Background()
	f := newDocumentFixture(t)
	a := f.create(t, "A", "Math", nil)
	f.create(t, "B", "Math", nil)

	// Keeping its own title is not a conflict.
	if _, err := f.svc.Update(ctx, UpdateDocumentInput{DocumentID: a.ID, Title: "A", Description: "new", Topic: "Math"}); err != nil {
		t.Fatalf("update keeping title: %v", err)
	}

	_, err := f.svc.Update(ctx, UpdateDocumentInput{DocumentID: a.ID, Title: "B", Topic: "Math"})
	if !apperr.Is(err, apperr.KindDuplicateTitle) {
		t.Fatalf("err = %v, want duplicate title", err)
	}

	_, err = f.svc.Update(ctx, UpdateDocumentInput{DocumentID: uuid.New(), Title: "X", Topic: "Math"})
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("err = %v, want not found", err)
	}
}

func TestUpdateDocumentWithMissingTopicEntry(t *testing.T) {
	f := newDocumentFixture(t)
	a := f.create(t, "A", "Math", nil)
	if err := f.db.Model(&models.Document{}).Where("id = ?", a.ID).Update("topic", "Ghost").Error; err != nil {
		t.Fatal(err)
	}

	_, err := f.svc.Update(context.Background(), UpdateDocumentInput{DocumentID: a.ID, Title: "A", Topic: "Math"})
	if !apperr.Is(err, apperr.KindInternal) {
		t.Fatalf("err = %v, want internal", err)
	}
}

func TestReplaceFile(t *testing.T) {
	ctx := context.Background()
	f := newDocumentFixture(t)
	doc := f.create(t, "Slides", "Lectures", newUpload("v1.txt", "one"))
	waitIndexed(t, f.indexer.indexed)

	if _, err := f.svc.ReplaceFile(ctx, doc.ID, nil); !apperr.Is(err, apperr.KindNoFile) {
		t.Fatalf("nil file err = %v, want no file", err)
	}
	if _, err := f.svc.ReplaceFile(ctx, uuid.New(), newUpload("x.txt", "x")); !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("missing document err = %v, want not found", err)
	}

	updated, err := f.svc.ReplaceFile(ctx, doc.ID, newUpload("v2.txt", "second"))
	if err != nil {
		t.Fatalf("replace: %v", err)
	}
	prefix := "document/" + doc.ID.String() + "/"
	keys := f.store.Keys()
	if len(keys) != 1 || keys[0] != prefix+"v2.txt" {
		t.Fatalf("stored keys = %v, want only the new file", keys)
	}
	if updated.FileAttributes[0].Name != "v2.txt" || updated.FileAttributes[0].Size != "6 B" {
		t.Errorf("file attributes = %+v", updated.FileAttributes)
	}
	if indexed := waitIndexed(t, f.indexer.indexed); indexed.ContentText != "extracted:second" {
		t.Errorf("reindexed content = %q", indexed.ContentText)
	}
}

func TestDeleteDocumentRemovesObjectsAndIndexEntry(t *testing.T) {
	ctx := context.Background()
	f := newDocumentFixture(t)
	keep := f.create(t, "Keep", "Math", nil)
	gone := f.create(t, "Gone", "Math", newUpload("gone.txt", "bye"))

	if err := f.svc.Delete(ctx, gone.ID, f.owner.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if keys := f.store.Keys(); len(keys) != 0 {
		t.Errorf("objects left behind: %v", keys)
	}
	entries := f.topicIndex(t)
	if len(entries) != 1 || len(entries[0].Documents) != 1 || entries[0].Documents[0] != keep.ID {
		t.Fatalf("entries = %+v", entries)
	}

	select {
	case id := <-f.indexer.deleted:
		if id != gone.ID.String() {
			t.Errorf("deleted from index = %s, want %s", id, gone.ID)
		}
	case <-waitTimeout():
		t.Fatal("document was not removed from the search index")
	}

	if err := f.svc.Delete(ctx, gone.ID, f.owner.ID); !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("second delete err = %v, want not found", err)
	}
}

func TestListByClassroomNewestFirst(t *testing.T) {
	ctx := context.Background()
	f := newDocumentFixture(t)
	f.create(t, "m1", "Math", newUpload("m1.pdf", "12345"))
	f.create(t, "p1", "Physics", nil)
	f.create(t, "m2", "Math", nil)

	topics, err := f.svc.ListByClassroom(ctx, f.classroom.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(topics) != 2 || topics[0].Topic != "Physics" || topics[1].Topic != "Math" {
		t.Fatalf("topics = %+v", topics)
	}
	math := topics[1].Documents
	if len(math) != 2 || math[0].Title != "m2" || math[1].Title != "m1" {
		t.Fatalf("math documents = %+v", math)
	}
	if len(math[1].FileAttributes) != 1 || math[1].FileAttributes[0].Extension != "pdf" {
		t.Errorf("file attributes = %+v", math[1].FileAttributes)
	}

	if _, err := f.svc.ListByClassroom(ctx, uuid.New()); !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("unknown classroom err = %v, want not found", err)
	}
}

func TestCreateDocumentRecordsActivity(t *testing.T) {
	f := newDocumentFixture(t)
	f.create(t, "Notes", "Math", nil)

	activities, err := NewActivityService(f.db).GetRecentActivities(context.Background(), f.classroom.ID, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(activities) != 1 || activities[0].ActivityType != models.ActivityDocumentUploaded {
		t.Fatalf("activities = %+v", activities)
	}
	if activities[0].User == nil || activities[0].User.Username != "teacher" {
		t.Errorf("activity user = %+v", activities[0].User)
	}
}
