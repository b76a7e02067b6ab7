package services

import (
	"context"
	"testing"
	"time"

	"github.com/P3chys/classroom-api/internal/apperr"
	"github.com/P3chys/classroom-api/internal/models"
	"github.com/P3chys/classroom-api/internal/testutil"
	"github.com/google/uuid"
)

func summary(title string) models.DocumentSummary {
	return models.DocumentSummary{ID: uuid.New(), Title: title, CreatedAt: time.Now()}
}

func TestDisplayOrderReversesTopicsAndDocuments(t *testing.T) {
	in := []models.TopicView{
		{ID: uuid.New(), Topic: "Algebra", Documents: []models.DocumentSummary{summary("a1"), summary("a2")}},
		{ID: uuid.New(), Topic: "Geometry", Documents: []models.DocumentSummary{summary("g1")}},
		{ID: uuid.New(), Topic: "Calculus", Documents: []models.DocumentSummary{summary("c1"), summary("c2"), summary("c3")}},
	}

	out := DisplayOrder(in)

	gotTopics := []string{out[0].Topic, out[1].Topic, out[2].Topic}
	wantTopics := []string{"Calculus", "Geometry", "Algebra"}
	for i := range wantTopics {
		if gotTopics[i] != wantTopics[i] {
			t.Fatalf("topic order = %v, want %v", gotTopics, wantTopics)
		}
	}
	if out[0].Documents[0].Title != "c3" || out[0].Documents[2].Title != "c1" {
		t.Errorf("documents not reversed: %+v", out[0].Documents)
	}
	if out[2].Documents[0].Title != "a2" {
		t.Errorf("documents not reversed: %+v", out[2].Documents)
	}

	// The input keeps its storage order.
	if in[0].Topic != "Algebra" || in[0].Documents[0].Title != "a1" {
		t.Errorf("input was modified: %+v", in[0])
	}
}

func TestDisplayOrderEmpty(t *testing.T) {
	if got := DisplayOrder(nil); got != nil {
		t.Errorf("DisplayOrder(nil) = %v, want nil", got)
	}
	empty := []models.TopicView{}
	if got := DisplayOrder(empty); len(got) != 0 {
		t.Errorf("DisplayOrder(empty) = %v, want empty", got)
	}
}

func TestTitleConflict(t *testing.T) {
	a := summary("Intro")
	topics := []models.TopicView{
		{Topic: "Math", Documents: []models.DocumentSummary{a, summary("Fractions")}},
		{Topic: "Physics", Documents: []models.DocumentSummary{summary("Motion")}},
	}

	if !TitleConflict(topics, "Motion", uuid.Nil) {
		t.Error("expected conflict for title used in another topic")
	}
	if TitleConflict(topics, "Intro", a.ID) {
		t.Error("a document must not conflict with itself")
	}
	if TitleConflict(topics, "intro", uuid.Nil) {
		t.Error("titles are compared case-sensitively")
	}
	if TitleConflict(nil, "anything", uuid.Nil) {
		t.Error("no topics means no conflict")
	}
}

func TestTopicIDByName(t *testing.T) {
	id := uuid.New()
	topics := []models.TopicView{{ID: id, Topic: "Math"}}

	if got := TopicIDByName(topics, "Math"); got == nil || *got != id {
		t.Errorf("TopicIDByName(Math) = %v, want %v", got, id)
	}
	if got := TopicIDByName(topics, "Art"); got != nil {
		t.Errorf("TopicIDByName(Art) = %v, want nil", got)
	}
}

func TestTopicIndexLifecycle(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	owner := testutil.SeedUser(t, db, "teacher", models.RoleTeacher)
	classroom := testutil.SeedClassroom(t, db, owner.ID)
	ix := NewTopicIndex(db)

	lookup, err := ix.FindTopic(ctx, classroom.ID, "Math")
	if err != nil {
		t.Fatalf("FindTopic: %v", err)
	}
	if lookup.TopicID != nil {
		t.Fatalf("expected no topic, got %v", *lookup.TopicID)
	}

	topicID, err := ix.CreateTopic(ctx, classroom.ID, "Math")
	if err != nil {
		t.Fatalf("CreateTopic: %v", err)
	}
	first, second := uuid.New(), uuid.New()
	if err := ix.AddDocumentToTopic(ctx, classroom.ID, topicID, first); err != nil {
		t.Fatalf("AddDocumentToTopic: %v", err)
	}
	if err := ix.AddDocumentToTopic(ctx, classroom.ID, topicID, second); err != nil {
		t.Fatalf("AddDocumentToTopic: %v", err)
	}

	lookup, err = ix.FindTopic(ctx, classroom.ID, "Math")
	if err != nil {
		t.Fatalf("FindTopic: %v", err)
	}
	if lookup.TopicID == nil || *lookup.TopicID != topicID {
		t.Fatalf("FindTopic id = %v, want %v", lookup.TopicID, topicID)
	}
	if lookup.IsSoleDocument {
		t.Error("topic with two documents reported as sole")
	}

	if err := ix.RemoveDocumentFromTopic(ctx, topicID, first, classroom.ID, false); err != nil {
		t.Fatalf("RemoveDocumentFromTopic: %v", err)
	}
	entries := testutil.LoadClassroom(t, db, classroom.ID).TopicDocument
	if len(entries) != 1 || len(entries[0].Documents) != 1 || entries[0].Documents[0] != second {
		t.Fatalf("after removing one document: %+v", entries)
	}

	if err := ix.RemoveDocumentFromTopic(ctx, topicID, second, classroom.ID, true); err != nil {
		t.Fatalf("RemoveDocumentFromTopic: %v", err)
	}
	if entries := testutil.LoadClassroom(t, db, classroom.ID).TopicDocument; len(entries) != 0 {
		t.Fatalf("sole-document topic should be dropped, got %+v", entries)
	}
}

func TestAddDocumentToMissingTopic(t *testing.T) {
	db := testutil.NewDB(t)
	owner := testutil.SeedUser(t, db, "teacher", models.RoleTeacher)
	classroom := testutil.SeedClassroom(t, db, owner.ID)

	err := NewTopicIndex(db).AddDocumentToTopic(context.Background(), classroom.ID, uuid.New(), uuid.New())
	if !apperr.Is(err, apperr.KindInternal) {
		t.Fatalf("err = %v, want internal", err)
	}
}

func TestFindTopicUnknownClassroom(t *testing.T) {
	db := testutil.NewDB(t)

	_, err := NewTopicIndex(db).FindTopic(context.Background(), uuid.New(), "Math")
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("err = %v, want not found", err)
	}
}

func TestSaveClassroomDetectsStaleVersion(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	owner := testutil.SeedUser(t, db, "teacher", models.RoleTeacher)
	seeded := testutil.SeedClassroom(t, db, owner.ID)

	a, err := loadClassroom(ctx, db, seeded.ID)
	if err != nil {
		t.Fatal(err)
	}
	b, err := loadClassroom(ctx, db, seeded.ID)
	if err != nil {
		t.Fatal(err)
	}

	a.PostIDs = append(a.PostIDs, uuid.New())
	if err := saveClassroom(ctx, db, a); err != nil {
		t.Fatalf("first save: %v", err)
	}
	b.PostIDs = append(b.PostIDs, uuid.New())
	if err := saveClassroom(ctx, db, b); !apperr.Is(err, apperr.KindConflict) {
		t.Fatalf("stale save err = %v, want conflict", err)
	}

	if got := testutil.LoadClassroom(t, db, seeded.ID); len(got.PostIDs) != 1 || got.PostIDs[0] != a.PostIDs[0] {
		t.Fatalf("post ids = %v, want only the first writer's id", got.PostIDs)
	}
}
