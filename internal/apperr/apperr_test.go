package apperr

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindOf(t *testing.T) {
	wrapped := fmt.Errorf("loading: %w", NotFound("Classroom not found"))

	if got := KindOf(wrapped); got != KindNotFound {
		t.Errorf("KindOf(wrapped) = %s, want %s", got, KindNotFound)
	}
	if got := KindOf(errors.New("boom")); got != KindInternal {
		t.Errorf("KindOf(untagged) = %s, want %s", got, KindInternal)
	}
	if !Is(DuplicateTitle(), KindDuplicateTitle) {
		t.Error("Is(DuplicateTitle) = false")
	}
}

func TestMessageOf(t *testing.T) {
	if got := MessageOf(Validation("Please add all the fields"), "ERROR"); got != "Please add all the fields" {
		t.Errorf("MessageOf(validation) = %q", got)
	}
	if got := MessageOf(Internal("db down", errors.New("dial tcp")), "ERROR"); got != "ERROR" {
		t.Errorf("internal details leaked: %q", got)
	}
	if got := MessageOf(errors.New("raw"), "ERROR"); got != "ERROR" {
		t.Errorf("MessageOf(untagged) = %q", got)
	}
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("dial tcp")
	err := Internal("failed to save", cause)

	if !errors.Is(err, cause) {
		t.Error("cause not reachable through Unwrap")
	}
	if err.Error() != "failed to save: dial tcp" {
		t.Errorf("Error() = %q", err.Error())
	}
}
