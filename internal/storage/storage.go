// Package storage defines persistence contracts for migrated school data.
package storage

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound indicates a requested record is missing.
	ErrNotFound = errors.New("record not found")
	// ErrAlreadyExists indicates a uniqueness-constrained record already exists.
	ErrAlreadyExists = errors.New("record already exists")
)

// Person stores one migrated golden identity record.
type Person struct {
	GoldenID      string
	PrimarySource string
	FirstName     string
	LastName      string
	DateOfBirth   string
	Email         string
	StateID       string
	Confidence    float64
	SourceIDs     map[string]string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Enrollment stores one migrated enrollment span.
type Enrollment struct {
	ID           string
	StudentID    string
	SchoolID     string
	SchoolName   string
	GradeLevel   int
	StartDate    time.Time
	EndDate      *time.Time
	Status       string
	ExitReason   string
	SourceSystem string
}

// GradeRecord stores one migrated course grade.
type GradeRecord struct {
	ID               string
	StudentID        string
	CourseCode       string
	CourseName       string
	Term             string
	SchoolYear       string
	LetterGrade      string
	NumericGrade     float64
	HasNumericGrade  bool
	CreditsAttempted float64
	CreditsEarned    float64
	GradePoints      float64
	Status           string
	SourceSystem     string
}

// AttendanceEvent stores one migrated attendance event.
type AttendanceEvent struct {
	ID           string
	StudentID    string
	Date         time.Time
	Status       string
	Period       int
	TeacherName  string
	SourceCode   string
	SourceSystem string
}

// PersonPage stores one page of person records.
type PersonPage struct {
	Persons       []Person
	NextPageToken string
}

// Counts reports how many records of each kind the store holds.
type Counts struct {
	Persons     int
	Enrollments int
	Grades      int
	Attendance  int
}

// MigrationStore persists migrated records and answers the count queries the
// reconciliation checks run against the target side.
type MigrationStore interface {
	CreatePerson(ctx context.Context, person Person) error
	Person(ctx context.Context, goldenID string) (Person, error)
	ListPersons(ctx context.Context, pageSize int, pageToken string) (PersonPage, error)
	CreateEnrollment(ctx context.Context, enrollment Enrollment) error
	Enrollments(ctx context.Context, studentID string) ([]Enrollment, error)
	CreateGradeRecord(ctx context.Context, grade GradeRecord) error
	GradeRecords(ctx context.Context, studentID string) ([]GradeRecord, error)
	CreateAttendanceEvent(ctx context.Context, event AttendanceEvent) error
	AttendanceEvents(ctx context.Context, studentID string) ([]AttendanceEvent, error)
	Counts(ctx context.Context) (Counts, error)
}
