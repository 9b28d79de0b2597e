package uuid

import (
	"slices"
	"testing"

	googleuuid "github.com/google/uuid"
)

func TestNew(t *testing.T) {
	t.Run("version_7", func(t *testing.T) {
		id := New()
		parsed, err := googleuuid.Parse(id)
		if err != nil {
			t.Fatalf("expected valid uuid, got %q: %v", id, err)
		}
		if parsed.Version() != 7 {
			t.Errorf("expected version 7, got %d", parsed.Version())
		}
	})

	t.Run("sorted_by_creation", func(t *testing.T) {
		ids := make([]string, 1000)
		for i := range ids {
			ids[i] = New()
		}
		if !slices.IsSorted(ids) {
			t.Error("expected ids to sort in creation order")
		}
		if len(slices.Compact(slices.Clone(ids))) != len(ids) {
			t.Error("expected unique ids")
		}
	})
}

func TestIsValid(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want bool
	}{
		{"generated", New(), true},
		{"uppercase", "0190A5E2-7B4C-7D2E-8F00-123456789ABC", false},
		{"braced", "{0190a5e2-7b4c-7d2e-8f00-123456789abc}", false},
		{"garbage", "not-a-uuid", false},
		{"empty", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsValid(tt.in); got != tt.want {
				t.Errorf("IsValid(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}
