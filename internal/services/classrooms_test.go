package services

import (
	"context"
	"testing"

	"github.com/P3chys/classroom-api/internal/apperr"
	"github.com/P3chys/classroom-api/internal/models"
	"github.com/P3chys/classroom-api/internal/testutil"
	"github.com/google/uuid"
)

func TestClassroomCreateAndJoin(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	teacher := testutil.SeedUser(t, db, "teacher", models.RoleTeacher)
	student := testutil.SeedUser(t, db, "student", models.RoleStudent)
	svc := NewClassroomService(db)

	if _, err := svc.Create(ctx, teacher.ID, "   "); !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("err = %v, want validation", err)
	}

	classroom, err := svc.Create(ctx, teacher.ID, "Biology 101")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if classroom.JoinCode == "" || classroom.OwnerID != teacher.ID {
		t.Fatalf("classroom = %+v", classroom)
	}
	if classroom.TopicDocument == nil || classroom.PostIDs == nil || classroom.StudentIDs == nil {
		t.Error("embedded lists must start empty, not null")
	}

	joined, err := svc.Join(ctx, classroom.JoinCode, student.ID)
	if err != nil {
		t.Fatalf("join: %v", err)
	}
	if !joined.HasMember(student.ID) {
		t.Fatal("student not enrolled")
	}
	again, err := svc.Join(ctx, classroom.JoinCode, student.ID)
	if err != nil {
		t.Fatalf("second join: %v", err)
	}
	if len(again.StudentIDs) != 1 {
		t.Errorf("student ids = %v, want one entry", again.StudentIDs)
	}

	if _, err := svc.Join(ctx, "nope", student.ID); !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("err = %v, want not found", err)
	}
	if _, err := svc.Get(ctx, uuid.New()); !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("err = %v, want not found", err)
	}
}
