package scheduling

import (
	"time"

	"github.com/google/uuid"
)

// Range is a half-open [Start, End) booking interval tagged with the
// appointment it belongs to.
type Range struct {
	ID    uuid.UUID
	Start time.Time
	End   time.Time
}

// Overlaps reports whether two half-open intervals intersect. Equal
// boundaries do not overlap, so back-to-back appointments are allowed.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && aEnd.After(bStart)
}

// HasOverlap reports whether the candidate interval collides with any of
// the existing ranges. Callers pre-filter the ranges: canceled appointments
// and, on updates, the appointment being modified are excluded.
func HasOverlap(start, end time.Time, existing []Range) bool {
	return FindOverlapping(start, end, existing) != nil
}

// FindOverlapping returns the first existing range that collides with the
// candidate interval, or nil. Used when the conflicting record itself is
// needed, such as locating the appointment to reschedule.
func FindOverlapping(start, end time.Time, existing []Range) *Range {
	for i := range existing {
		if Overlaps(start, end, existing[i].Start, existing[i].End) {
			return &existing[i]
		}
	}
	return nil
}
