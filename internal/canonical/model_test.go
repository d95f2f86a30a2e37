package canonical

import (
	"testing"
	"time"
)

func TestPersonFullName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		person Person
		want   string
	}{
		{
			name:   "with middle name",
			person: Person{FirstName: "Maria", MiddleName: "Elena", LastName: "Garcia"},
			want:   "Maria Elena Garcia",
		},
		{
			name:   "without middle name",
			person: Person{FirstName: "James", LastName: "Wilson"},
			want:   "James Wilson",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := tc.person.FullName(); got != tc.want {
				t.Fatalf("FullName() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestPersonIntegrityHashIsStable(t *testing.T) {
	t.Parallel()

	dob := Date(2010, time.March, 15)
	p := Person{ID: "P-1", FirstName: "Maria", LastName: "Garcia", DateOfBirth: &dob}

	first := p.IntegrityHash()
	if len(first) != 16 {
		t.Fatalf("hash length = %d, want 16", len(first))
	}
	if second := p.IntegrityHash(); second != first {
		t.Fatalf("hash not stable: %q vs %q", first, second)
	}

	changed := p
	changed.LastName = "Lopez"
	if changed.IntegrityHash() == first {
		t.Fatal("expected hash to change with identity fields")
	}
}

func TestEnrollmentActiveOn(t *testing.T) {
	t.Parallel()

	end := Date(2024, time.May, 25)
	bounded := Enrollment{
		StartDate: Date(2023, time.August, 15),
		EndDate:   &end,
		Status:    EnrollmentWithdrawn,
	}
	if !bounded.ActiveOn(Date(2024, time.January, 10)) {
		t.Fatal("expected bounded enrollment active inside window")
	}
	if bounded.ActiveOn(Date(2024, time.June, 1)) {
		t.Fatal("expected bounded enrollment inactive after end")
	}

	open := Enrollment{StartDate: Date(2023, time.August, 15), Status: EnrollmentActive}
	if !open.ActiveOn(Date(2024, time.June, 1)) {
		t.Fatal("expected open active enrollment to stay active")
	}
	open.Status = EnrollmentWithdrawn
	if open.ActiveOn(Date(2024, time.June, 1)) {
		t.Fatal("expected open withdrawn enrollment to be inactive")
	}
}

func TestHouseholdAddMemberDeduplicates(t *testing.T) {
	t.Parallel()

	h := &Household{ID: "H-1", Name: "Garcia"}
	h.AddMember("P-1")
	h.AddMember("P-2")
	h.AddMember("P-1")
	if len(h.MemberIDs) != 2 {
		t.Fatalf("member count = %d, want 2", len(h.MemberIDs))
	}
}

func TestAttendanceEventIsPresent(t *testing.T) {
	t.Parallel()

	tests := []struct {
		status AttendanceStatus
		want   bool
	}{
		{AttendancePresent, true},
		{AttendanceTardy, true},
		{AttendanceRemote, true},
		{AttendanceAbsent, false},
		{AttendanceExcusedAbsent, false},
	}
	for _, tc := range tests {
		event := AttendanceEvent{Status: tc.status}
		if got := event.IsPresent(); got != tc.want {
			t.Fatalf("IsPresent(%s) = %v, want %v", tc.status, got, tc.want)
		}
	}
}

func TestCalculateGradePoints(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		course TranscriptCourse
		want   float64
	}{
		{
			name:   "plain letter grade",
			course: TranscriptCourse{LetterGrade: "B", CreditsAttempted: 1},
			want:   3.0,
		},
		{
			name:   "weighted honors grade",
			course: TranscriptCourse{LetterGrade: "A", CreditsAttempted: 1, IsWeighted: true},
			want:   4.5,
		},
		{
			name:   "half credit course",
			course: TranscriptCourse{LetterGrade: "A-", CreditsAttempted: 0.5},
			want:   1.85,
		},
		{
			name:   "no letter grade",
			course: TranscriptCourse{CreditsAttempted: 1},
			want:   0,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := tc.course.CalculateGradePoints(); got != tc.want {
				t.Fatalf("CalculateGradePoints() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestLetterGradePoints(t *testing.T) {
	t.Parallel()

	if points, ok := LetterGradePoints(" a+ "); !ok || points != 4.0 {
		t.Fatalf("LetterGradePoints(a+) = %v, %v", points, ok)
	}
	if _, ok := LetterGradePoints("Z"); ok {
		t.Fatal("expected unknown letter to be rejected")
	}
	// Withdrawn and incomplete letters carry no points.
	if _, ok := LetterGradePoints("W"); ok {
		t.Fatal("expected W to be rejected")
	}
	if _, ok := LetterGradePoints("I"); ok {
		t.Fatal("expected I to be rejected")
	}
}
