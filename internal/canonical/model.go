// Package canonical defines the canonical entities migrated school data is
// normalized into: persons with their roles and relationships, households,
// enrollments, the course catalog, attendance events and transcript rows.
package canonical

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

// Person is a natural person with identifiers. It is the core entity
// representing any individual in the system.
type Person struct {
	ID          string
	FirstName   string
	LastName    string
	MiddleName  string
	DateOfBirth *time.Time
	Email       string
	Phone       string
	Address     string

	// Multiple identifiers, golden identifier strategy.
	StateID   string
	LocalID   string
	SourceIDs map[string]string

	CreatedAt    time.Time
	UpdatedAt    time.Time
	SourceSystem string
}

// FullName returns the person's name with the middle name when present.
func (p Person) FullName() string {
	parts := []string{p.FirstName}
	if p.MiddleName != "" {
		parts = append(parts, p.MiddleName)
	}
	parts = append(parts, p.LastName)
	return strings.Join(parts, " ")
}

// IntegrityHash returns a short hash over identity fields for verification.
func (p Person) IntegrityHash() string {
	dob := ""
	if p.DateOfBirth != nil {
		dob = p.DateOfBirth.Format("2006-01-02")
	}
	data := fmt.Sprintf("%s|%s|%s|%s", p.ID, p.FirstName, p.LastName, dob)
	sum := sha256.Sum256([]byte(data))
	return hex.EncodeToString(sum[:])[:16]
}

// PersonRole is a time-bounded role for a person. A person can hold multiple
// roles with different time periods.
type PersonRole struct {
	ID             string
	PersonID       string
	RoleType       RoleType
	OrganizationID string
	StartDate      time.Time
	EndDate        *time.Time
	IsPrimary      bool
	GradeLevel     int    // students
	Title          string // staff
}

// ActiveOn reports whether the role is in effect on the given date.
func (r PersonRole) ActiveOn(asOf time.Time) bool {
	return activeOn(r.StartDate, r.EndDate, asOf)
}

// Household groups persons living together. It links students to guardians
// and carries shared contact information.
type Household struct {
	ID        string
	Name      string
	Address   string
	Phone     string
	MemberIDs []string
	IsPrimary bool
}

// AddMember records a person as a household member. Adding an existing member
// is a no-op.
func (h *Household) AddMember(personID string) {
	if h == nil {
		return
	}
	for _, id := range h.MemberIDs {
		if id == personID {
			return
		}
	}
	h.MemberIDs = append(h.MemberIDs, personID)
}

// Relationship links a guardian to a student with custody constraints.
type Relationship struct {
	ID                 string
	PersonID           string // guardian or parent
	RelatedPersonID    string // student
	RelationshipType   RelationshipType
	CustodyType        CustodyType
	IsEmergencyContact bool
	EmergencyPriority  int // 1 = primary, 2 = secondary
	CanPickup          bool
	ReceivesMail       bool
	ReceivesGrades     bool
}

// Enrollment is a student's enrollment at a school with start and end dates.
type Enrollment struct {
	ID          string
	StudentID   string
	SchoolID    string
	SchoolName  string
	GradeLevel  int
	StartDate   time.Time
	EndDate     *time.Time
	Status      EnrollmentStatus
	EntryReason string
	ExitReason  string
	IsPrimary   bool
}

// ActiveOn reports whether the enrollment is in effect on the given date.
// Open-ended enrollments are active only while their status is active.
func (e Enrollment) ActiveOn(asOf time.Time) bool {
	if e.EndDate != nil {
		return activeOn(e.StartDate, e.EndDate, asOf)
	}
	return !asOf.Before(e.StartDate) && e.Status == EnrollmentActive
}

// Course is an entry in the course catalog.
type Course struct {
	ID          string
	Code        string
	Name        string
	Description string
	Credits     float64
	GradeLevels []int
	SubjectArea string
	IsHonors    bool
	IsAP        bool
}

// AttendanceEvent is a daily or period attendance outcome for a student.
type AttendanceEvent struct {
	ID          string
	StudentID   string
	Date        time.Time
	Status      AttendanceStatus
	Period      int // 0 for daily attendance
	SectionID   string
	TeacherID   string
	TeacherName string
	Notes       string
	SourceCode  string // original code from the source system
}

// IsPresent reports whether the status counts as attendance.
func (a AttendanceEvent) IsPresent() bool {
	switch a.Status {
	case AttendancePresent, AttendanceTardy, AttendanceRemote:
		return true
	}
	return false
}

// TranscriptCourse is a course on a student's transcript with its grade.
type TranscriptCourse struct {
	ID               string
	StudentID        string
	CourseID         string
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
	IsWeighted       bool
	InstructorName   string
}

// letterPoints maps a letter grade to unweighted grade points. Letters that
// carry no GPA impact (P, NP, I, W) are absent.
var letterPoints = map[string]float64{
	"A+": 4.0, "A": 4.0, "A-": 3.7,
	"B+": 3.3, "B": 3.0, "B-": 2.7,
	"C+": 2.3, "C": 2.0, "C-": 1.7,
	"D+": 1.3, "D": 1.0, "D-": 0.7,
	"F": 0,
}

// LetterGradePoints returns the grade points for a letter grade, or false
// when the letter carries no points on the scale.
func LetterGradePoints(letter string) (float64, bool) {
	points, ok := letterPoints[strings.ToUpper(strings.TrimSpace(letter))]
	return points, ok
}

// CalculateGradePoints returns grade points earned across the attempted
// credits. Honors and AP courses carry a half point weight boost.
func (t TranscriptCourse) CalculateGradePoints() float64 {
	if t.LetterGrade == "" {
		return 0
	}
	points, _ := LetterGradePoints(t.LetterGrade)
	if t.IsWeighted {
		points += 0.5
	}
	return points * t.CreditsAttempted
}

func activeOn(start time.Time, end *time.Time, asOf time.Time) bool {
	if asOf.Before(start) {
		return false
	}
	if end != nil && asOf.After(*end) {
		return false
	}
	return true
}
