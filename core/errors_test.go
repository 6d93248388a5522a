package core

import (
	"errors"
	"fmt"
	"io"
	"testing"
)

func TestDomainError_Is(t *testing.T) {
	indexNotFound := NewDomainError(ModuleIndex, ErrorCodeNotFound, "index: user id 7 not found")
	wrapped := fmt.Errorf("recall.u2u: %w", indexNotFound)
	unavailable := WrapDomainError(ModuleDataset, ErrorCodeUnavailable, io.ErrUnexpectedEOF, "dataset: load %s", "ratings")

	tests := []struct {
		name   string
		err    error
		target error
		want   bool
	}{
		{name: "sentinel matches any module", err: wrapped, target: ErrNotFound, want: true},
		{name: "code mismatch", err: wrapped, target: ErrDataUnavailable, want: false},
		{name: "module mismatch", err: wrapped, target: ErrStoreNotFound, want: false},
		{name: "store sentinel", err: fmt.Errorf("get: %w", ErrStoreNotFound), target: ErrStoreNotFound, want: true},
		{name: "unavailable", err: unavailable, target: ErrDataUnavailable, want: true},
		{name: "underlying error", err: unavailable, target: io.ErrUnexpectedEOF, want: true},
		{name: "plain error", err: errors.New("boom"), target: ErrNotFound, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := errors.Is(tt.err, tt.target); got != tt.want {
				t.Errorf("errors.Is() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDomainError_Helpers(t *testing.T) {
	err := WrapDomainError(ModuleDataset, ErrorCodeUnavailable, io.EOF, "dataset: read %s", "anime.csv")
	if got := err.Error(); got != "dataset: read anime.csv: EOF" {
		t.Errorf("Error() = %q", got)
	}
	if !IsUnavailable(err) || IsNotFound(err) || IsInvalidInput(err) {
		t.Errorf("classification wrong for %v", err)
	}
	if !IsStoreNotFound(fmt.Errorf("x: %w", ErrStoreNotFound)) {
		t.Error("IsStoreNotFound() = false for store sentinel")
	}
	if IsStoreNotFound(NewDomainError(ModuleIndex, ErrorCodeNotFound, "index")) {
		t.Error("IsStoreNotFound() = true for index error")
	}
	if IsDomainError(errors.New("plain")) || GetDomainError(nil) != nil {
		t.Error("plain errors are not domain errors")
	}
}
