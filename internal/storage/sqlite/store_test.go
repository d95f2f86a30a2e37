package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/edusync/edusync/internal/storage"
)

func TestOpenRequiresPath(t *testing.T) {
	t.Parallel()

	if _, err := Open(""); err == nil {
		t.Fatal("expected empty path error")
	}
}

func TestCreateGetPersonRoundTrip(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	now := time.Date(2026, time.August, 12, 9, 30, 0, 0, time.UTC)
	input := storage.Person{
		GoldenID:      "GR-ABC123DEF456",
		PrimarySource: "sqlserver-sis",
		FirstName:     "Maria",
		LastName:      "Garcia",
		DateOfBirth:   "2008-03-14",
		Email:         "maria.garcia@student.example.edu",
		StateID:       "TX-00042",
		Confidence:    0.97,
		SourceIDs: map[string]string{
			"sqlserver-sis":   "S-1001",
			"cobol-mainframe": "STU00042",
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := store.CreatePerson(context.Background(), input); err != nil {
		t.Fatalf("create person: %v", err)
	}

	got, err := store.Person(context.Background(), "GR-ABC123DEF456")
	if err != nil {
		t.Fatalf("get person: %v", err)
	}
	if got.FirstName != input.FirstName || got.LastName != input.LastName {
		t.Fatalf("name = %q %q, want %q %q", got.FirstName, got.LastName, input.FirstName, input.LastName)
	}
	if got.SourceIDs["cobol-mainframe"] != "STU00042" {
		t.Fatalf("source ids = %v, want cobol-mainframe mapping", got.SourceIDs)
	}
	if !got.CreatedAt.Equal(now) {
		t.Fatalf("created_at = %v, want %v", got.CreatedAt, now)
	}
}

func TestGetPersonReturnsNotFound(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	_, err := store.Person(context.Background(), "GR-MISSING")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("missing person error = %v, want %v", err, storage.ErrNotFound)
	}
}

func TestCreatePersonReturnsAlreadyExistsOnDuplicate(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	input := storage.Person{
		GoldenID:      "GR-DUP",
		PrimarySource: "csv-guardians",
		FirstName:     "Sam",
		LastName:      "Nguyen",
	}
	if err := store.CreatePerson(context.Background(), input); err != nil {
		t.Fatalf("create initial person: %v", err)
	}
	err := store.CreatePerson(context.Background(), input)
	if !errors.Is(err, storage.ErrAlreadyExists) {
		t.Fatalf("duplicate create error = %v, want %v", err, storage.ErrAlreadyExists)
	}
}

func TestListPersonsPaginates(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	for _, id := range []string{"GR-001", "GR-002", "GR-003"} {
		if err := store.CreatePerson(context.Background(), storage.Person{
			GoldenID:      id,
			PrimarySource: "sqlserver-sis",
			FirstName:     "Student",
			LastName:      id,
		}); err != nil {
			t.Fatalf("create person %s: %v", id, err)
		}
	}

	pageOne, err := store.ListPersons(context.Background(), 2, "")
	if err != nil {
		t.Fatalf("list page one: %v", err)
	}
	if len(pageOne.Persons) != 2 {
		t.Fatalf("page one len = %d, want 2", len(pageOne.Persons))
	}
	if pageOne.NextPageToken == "" {
		t.Fatal("expected page one next token")
	}

	pageTwo, err := store.ListPersons(context.Background(), 2, pageOne.NextPageToken)
	if err != nil {
		t.Fatalf("list page two: %v", err)
	}
	if len(pageTwo.Persons) != 1 {
		t.Fatalf("page two len = %d, want 1", len(pageTwo.Persons))
	}
	if pageTwo.Persons[0].GoldenID != "GR-003" {
		t.Fatalf("page two record = %q, want GR-003", pageTwo.Persons[0].GoldenID)
	}
	if pageTwo.NextPageToken != "" {
		t.Fatalf("page two token = %q, want empty", pageTwo.NextPageToken)
	}
}

func TestEnrollmentRoundTripKeepsOpenEndDate(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	start := time.Date(2023, time.August, 21, 0, 0, 0, 0, time.UTC)
	priorEnd := time.Date(2023, time.August, 10, 0, 0, 0, 0, time.UTC)
	priorStart := time.Date(2022, time.August, 22, 0, 0, 0, 0, time.UTC)

	if err := store.CreateEnrollment(context.Background(), storage.Enrollment{
		ID:         "enr-prior",
		StudentID:  "GR-001",
		SchoolID:   "SCH009",
		SchoolName: "Eastside Middle School",
		GradeLevel: 9,
		StartDate:  priorStart,
		EndDate:    &priorEnd,
		Status:     "inactive",
		ExitReason: "Transfer",
	}); err != nil {
		t.Fatalf("create prior enrollment: %v", err)
	}
	if err := store.CreateEnrollment(context.Background(), storage.Enrollment{
		ID:         "enr-current",
		StudentID:  "GR-001",
		SchoolID:   "SCH001",
		SchoolName: "Lincoln High School",
		GradeLevel: 10,
		StartDate:  start,
		Status:     "active",
	}); err != nil {
		t.Fatalf("create current enrollment: %v", err)
	}

	spans, err := store.Enrollments(context.Background(), "GR-001")
	if err != nil {
		t.Fatalf("list enrollments: %v", err)
	}
	if len(spans) != 2 {
		t.Fatalf("enrollments len = %d, want 2", len(spans))
	}
	if spans[0].ID != "enr-prior" {
		t.Fatalf("first span = %q, want enr-prior ordered by start date", spans[0].ID)
	}
	if spans[0].EndDate == nil || !spans[0].EndDate.Equal(priorEnd) {
		t.Fatalf("prior end date = %v, want %v", spans[0].EndDate, priorEnd)
	}
	if spans[1].EndDate != nil {
		t.Fatalf("current end date = %v, want open", spans[1].EndDate)
	}
}

func TestGradeRecordRoundTrip(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	if err := store.CreateGradeRecord(context.Background(), storage.GradeRecord{
		ID:               "grd-1",
		StudentID:        "GR-001",
		CourseCode:       "MATH101",
		CourseName:       "Algebra I Honors",
		Term:             "Fall",
		SchoolYear:       "2023-2024",
		LetterGrade:      "B+",
		NumericGrade:     3.3,
		HasNumericGrade:  true,
		CreditsAttempted: 1,
		CreditsEarned:    1,
		GradePoints:      3.8,
		Status:           "valid",
		SourceSystem:     "fortran-grades",
	}); err != nil {
		t.Fatalf("create grade record: %v", err)
	}

	grades, err := store.GradeRecords(context.Background(), "GR-001")
	if err != nil {
		t.Fatalf("list grade records: %v", err)
	}
	if len(grades) != 1 {
		t.Fatalf("grades len = %d, want 1", len(grades))
	}
	got := grades[0]
	if got.LetterGrade != "B+" || !got.HasNumericGrade || got.NumericGrade != 3.3 {
		t.Fatalf("grade = %+v, want B+ with numeric 3.3", got)
	}
	if got.GradePoints != 3.8 {
		t.Fatalf("grade points = %v, want 3.8", got.GradePoints)
	}
}

func TestAttendanceEventRoundTrip(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	day := time.Date(2024, time.January, 8, 0, 0, 0, 0, time.UTC)
	if err := store.CreateAttendanceEvent(context.Background(), storage.AttendanceEvent{
		ID:           "att-1",
		StudentID:    "GR-001",
		Date:         day,
		Status:       "tardy",
		Period:       3,
		TeacherName:  "Ms. Chen",
		SourceCode:   "T",
		SourceSystem: "postgres-attendance",
	}); err != nil {
		t.Fatalf("create attendance event: %v", err)
	}

	events, err := store.AttendanceEvents(context.Background(), "GR-001")
	if err != nil {
		t.Fatalf("list attendance events: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("events len = %d, want 1", len(events))
	}
	got := events[0]
	if !got.Date.Equal(day) {
		t.Fatalf("event date = %v, want %v", got.Date, day)
	}
	if got.Status != "tardy" || got.Period != 3 {
		t.Fatalf("event = %+v, want tardy period 3", got)
	}
}

func TestCountsReflectInserts(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx := context.Background()
	if err := store.CreatePerson(ctx, storage.Person{
		GoldenID: "GR-001", PrimarySource: "sqlserver-sis",
		FirstName: "A", LastName: "One",
	}); err != nil {
		t.Fatalf("create person: %v", err)
	}
	if err := store.CreatePerson(ctx, storage.Person{
		GoldenID: "GR-002", PrimarySource: "sqlserver-sis",
		FirstName: "B", LastName: "Two",
	}); err != nil {
		t.Fatalf("create person: %v", err)
	}
	if err := store.CreateGradeRecord(ctx, storage.GradeRecord{
		ID: "grd-1", StudentID: "GR-001", CourseCode: "ENG101",
	}); err != nil {
		t.Fatalf("create grade record: %v", err)
	}

	counts, err := store.Counts(ctx)
	if err != nil {
		t.Fatalf("counts: %v", err)
	}
	if counts.Persons != 2 {
		t.Fatalf("persons count = %d, want 2", counts.Persons)
	}
	if counts.Grades != 1 {
		t.Fatalf("grades count = %d, want 1", counts.Grades)
	}
	if counts.Enrollments != 0 || counts.Attendance != 0 {
		t.Fatalf("counts = %+v, want zero enrollments and attendance", counts)
	}
}

func openTempStore(t *testing.T) *Store {
	t.Helper()

	store, err := Open(filepath.Join(t.TempDir(), "edusync.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Fatalf("close store: %v", err)
		}
	})
	return store
}
