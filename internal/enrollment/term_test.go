package enrollment

import (
	"testing"
	"time"

	"github.com/edusync/edusync/internal/canonical"
)

func TestNormalizeTermName(t *testing.T) {
	t.Parallel()
	c := NewCalendar()

	tests := []struct {
		in       string
		wantName string
		wantType TermType
	}{
		{"FALL", "Fall", TermSemester},
		{"autumn", "Fall", TermSemester},
		{" q3 ", "Quarter 3", TermQuarter},
		{"tri2", "Trimester 2", TermTrimester},
		{"full year", "Full Year", TermYear},
		{"summer school", "Summer", TermSummer},
		{"winter intensive", "Winter Intensive", TermSemester},
	}
	for _, tc := range tests {
		name, termType := c.NormalizeTermName(tc.in)
		if name != tc.wantName || termType != tc.wantType {
			t.Fatalf("NormalizeTermName(%q) = %q/%s, want %q/%s", tc.in, name, termType, tc.wantName, tc.wantType)
		}
	}
}

func TestParseSchoolYear(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"2023-2024", "2023-2024"},
		{"2023", "2023-2024"},
		{"23-24", "2023-2024"},
		{"98-99", "1998-1999"},
		{"next year", "next year"},
	}
	for _, tc := range tests {
		if got := ParseSchoolYear(tc.in); got != tc.want {
			t.Fatalf("ParseSchoolYear(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestStandardCalendarSemesters(t *testing.T) {
	t.Parallel()
	c := NewCalendar()

	terms := c.StandardCalendar("2023-2024", TermSemester)
	if len(terms) != 2 {
		t.Fatalf("terms = %d, want 2", len(terms))
	}
	fall := terms[0]
	if fall.ID != "2023-2024-FALL" {
		t.Fatalf("fall id = %q", fall.ID)
	}
	if !fall.StartDate.Equal(canonical.Date(2023, time.August, 15)) {
		t.Fatalf("fall start = %s", fall.StartDate)
	}
	spring := terms[1]
	if !spring.EndDate.Equal(canonical.Date(2024, time.May, 25)) {
		t.Fatalf("spring end = %s", spring.EndDate)
	}
	if fall.OverlapsWith(spring) {
		t.Fatal("semesters should not overlap")
	}
}

func TestStandardCalendarQuarters(t *testing.T) {
	t.Parallel()
	c := NewCalendar()

	terms := c.StandardCalendar("2023-2024", TermQuarter)
	if len(terms) != 4 {
		t.Fatalf("terms = %d, want 4", len(terms))
	}
	q3 := terms[2]
	if q3.ID != "2023-2024-Q3" {
		t.Fatalf("q3 id = %q", q3.ID)
	}
	if q3.StartDate.Year() != 2024 {
		t.Fatalf("q3 should start in the end year, got %d", q3.StartDate.Year())
	}
	if !q3.ContainsDate(canonical.Date(2024, time.February, 1)) {
		t.Fatal("expected q3 to contain Feb 1")
	}
}

func TestCrosswalkTerm(t *testing.T) {
	t.Parallel()
	c := NewCalendar()
	calendar := c.StandardCalendar("2023-2024", TermSemester)

	term, ok := c.CrosswalkTerm("fall sem", calendar)
	if !ok || term.Name != "Fall" {
		t.Fatalf("crosswalk fall sem = %+v ok=%v", term, ok)
	}

	// Substring fallback.
	term, ok = c.CrosswalkTerm("Late Spring", calendar)
	if !ok || term.Name != "Spring" {
		t.Fatalf("crosswalk late spring = %+v ok=%v", term, ok)
	}

	if _, ok := c.CrosswalkTerm("q9", calendar); ok {
		t.Fatal("expected unknown term to miss")
	}
}

func TestAcademicTermDurationDays(t *testing.T) {
	t.Parallel()

	term := AcademicTerm{
		StartDate: canonical.Date(2023, time.August, 15),
		EndDate:   canonical.Date(2023, time.August, 19),
	}
	if got := term.DurationDays(); got != 5 {
		t.Fatalf("DurationDays = %d, want 5", got)
	}
}
