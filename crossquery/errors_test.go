package crossquery

import (
	"errors"
	"fmt"
	"testing"
)

func TestNewErrorKind(t *testing.T) {
	err := NewError(ErrRejected, "empty kind")
	if !IsKind(err, ErrRejected) {
		t.Fatalf("IsKind(ErrRejected) = false for %v", err)
	}
	if IsKind(err, ErrConfig) {
		t.Fatalf("IsKind(ErrConfig) = true for %v", err)
	}
	if got := err.Error(); got != "rejected: empty kind" {
		t.Fatalf("Error() = %q", got)
	}
}

func TestSessionAndErrorConstructorsCoexist(t *testing.T) {
	q := New(nil, "widgets")
	if q.Kind() != "widgets" {
		t.Fatalf("Kind() = %q, want widgets", q.Kind())
	}
	if e := NewError(ErrStore, "boom"); e.Kind != ErrStore {
		t.Fatalf("Kind = %q, want %q", e.Kind, ErrStore)
	}
}

func TestWrapUnwrapsToCause(t *testing.T) {
	cause := fmt.Errorf("disk full")
	err := Wrap(ErrIO, "write failed", cause)
	if !errors.Is(err, cause) {
		t.Fatalf("errors.Is(err, cause) = false for %v", err)
	}
	if !IsKind(err, ErrIO) {
		t.Fatalf("IsKind(ErrIO) = false for %v", err)
	}
}
