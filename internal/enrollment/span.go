package enrollment

import (
	"time"

	"github.com/edusync/edusync/internal/canonical"
)

// Span is a student's enrollment period at a school.
type Span struct {
	ID           string     `json:"id"`
	StudentID    string     `json:"student_id"`
	SchoolID     string     `json:"school_id"`
	SchoolName   string     `json:"school_name"`
	GradeLevel   int        `json:"grade_level"`
	StartDate    time.Time  `json:"start_date"`
	EndDate      *time.Time `json:"end_date,omitempty"`
	Status       string     `json:"status"`
	EntryReason  string     `json:"entry_reason,omitempty"`
	ExitReason   string     `json:"exit_reason,omitempty"`
	SourceSystem string     `json:"source_system,omitempty"`
}

// ActiveOn reports whether the span covers the given date.
func (s Span) ActiveOn(asOf time.Time) bool {
	if asOf.Before(s.StartDate) {
		return false
	}
	return s.EndDate == nil || !asOf.After(*s.EndDate)
}

// OverlapsWith reports whether two spans overlap and by how many days.
// When both spans are open-ended the overlap is only flagged for the same
// school, with zero days.
func (s Span) OverlapsWith(other Span, today time.Time) (bool, int) {
	if s.EndDate == nil && other.EndDate == nil {
		return s.SchoolID == other.SchoolID, 0
	}

	sEnd := endOr(s.EndDate, today)
	otherEnd := endOr(other.EndDate, today)

	if !s.StartDate.After(otherEnd) && !other.StartDate.After(sEnd) {
		overlapStart := maxDate(s.StartDate, other.StartDate)
		overlapEnd := minDate(sEnd, otherEnd)
		return true, canonical.DaysBetween(overlapStart, overlapEnd) + 1
	}
	return false, 0
}

// GapWith reports whether full days separate two closed spans and how many.
func (s Span) GapWith(other Span) (bool, int) {
	if s.EndDate == nil || other.EndDate == nil {
		return false, 0
	}
	if s.EndDate.Before(other.StartDate) {
		days := canonical.DaysBetween(*s.EndDate, other.StartDate) - 1
		return days > 0, days
	}
	if other.EndDate.Before(s.StartDate) {
		days := canonical.DaysBetween(*other.EndDate, s.StartDate) - 1
		return days > 0, days
	}
	return false, 0
}

func endOr(end *time.Time, fallback time.Time) time.Time {
	if end != nil {
		return *end
	}
	return fallback
}

func maxDate(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}

func minDate(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}
