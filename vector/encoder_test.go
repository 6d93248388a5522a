package vector

import (
	"testing"

	"github.com/rushteam/animerec/core"
)

func TestEncoder_RoundTrip(t *testing.T) {
	ids := []int64{42, 7, 1001, 3}
	enc, err := NewEncoder(core.SpaceUser, ids)
	if err != nil {
		t.Fatalf("NewEncoder() error = %v", err)
	}

	for _, id := range ids {
		i, err := enc.Encode(id)
		if err != nil {
			t.Fatalf("Encode(%d) error = %v", id, err)
		}
		got, err := enc.Decode(i)
		if err != nil {
			t.Fatalf("Decode(%d) error = %v", i, err)
		}
		if got != id {
			t.Errorf("Decode(Encode(%d)) = %d", id, got)
		}
	}

	for i := 0; i < enc.Len(); i++ {
		id, err := enc.Decode(i)
		if err != nil {
			t.Fatalf("Decode(%d) error = %v", i, err)
		}
		got, err := enc.Encode(id)
		if err != nil {
			t.Fatalf("Encode(%d) error = %v", id, err)
		}
		if got != i {
			t.Errorf("Encode(Decode(%d)) = %d", i, got)
		}
	}
}

func TestEncoder_NotFound(t *testing.T) {
	enc, err := NewEncoder(core.SpaceItem, []int64{1, 2})
	if err != nil {
		t.Fatalf("NewEncoder() error = %v", err)
	}

	if _, err := enc.Encode(99); !core.IsNotFound(err) {
		t.Errorf("Encode(99) error = %v, want NOT_FOUND", err)
	}
	for _, i := range []int{-1, 2, 100} {
		if _, err := enc.Decode(i); !core.IsNotFound(err) {
			t.Errorf("Decode(%d) error = %v, want NOT_FOUND", i, err)
		}
	}
	if enc.Contains(99) {
		t.Error("Contains(99) = true")
	}
}

func TestEncoder_RejectsDuplicates(t *testing.T) {
	_, err := NewEncoder(core.SpaceUser, []int64{1, 2, 1})
	if !core.IsInvalidInput(err) {
		t.Fatalf("NewEncoder() error = %v, want INVALID_INPUT", err)
	}
}
