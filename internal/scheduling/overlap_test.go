package scheduling

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func at(hour, minute int) time.Time {
	return time.Date(2026, time.March, 2, hour, minute, 0, 0, time.UTC)
}

func TestOverlaps(t *testing.T) {
	tests := []struct {
		name                   string
		aStart, aEnd           time.Time
		bStart, bEnd           time.Time
		want                   bool
	}{
		{"identical", at(14, 0), at(14, 30), at(14, 0), at(14, 30), true},
		{"partial overlap", at(14, 0), at(14, 30), at(14, 15), at(14, 45), true},
		{"contained", at(14, 0), at(15, 0), at(14, 15), at(14, 30), true},
		{"back to back", at(14, 0), at(14, 30), at(14, 30), at(15, 0), false},
		{"disjoint", at(14, 0), at(14, 30), at(16, 0), at(16, 30), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Overlaps(tt.aStart, tt.aEnd, tt.bStart, tt.bEnd); got != tt.want {
				t.Fatalf("Overlaps = %v, want %v", got, tt.want)
			}
			// Overlap is symmetric.
			if got := Overlaps(tt.bStart, tt.bEnd, tt.aStart, tt.aEnd); got != tt.want {
				t.Fatalf("Overlaps (swapped) = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFindOverlapping(t *testing.T) {
	first := Range{ID: uuid.New(), Start: at(9, 0), End: at(9, 30)}
	second := Range{ID: uuid.New(), Start: at(14, 0), End: at(14, 30)}
	existing := []Range{first, second}

	got := FindOverlapping(at(14, 15), at(14, 45), existing)
	if got == nil || got.ID != second.ID {
		t.Fatalf("FindOverlapping = %+v, want range %s", got, second.ID)
	}

	if got := FindOverlapping(at(10, 0), at(10, 30), existing); got != nil {
		t.Fatalf("expected no overlap, got %+v", got)
	}

	if got := FindOverlapping(at(9, 30), at(14, 0), existing); got != nil {
		t.Fatalf("boundary touch should not overlap, got %+v", got)
	}

	if HasOverlap(at(9, 15), at(9, 45), existing) != true {
		t.Fatal("HasOverlap should report the collision")
	}
	if HasOverlap(at(11, 0), at(11, 30), nil) {
		t.Fatal("HasOverlap on an empty set should be false")
	}
}
