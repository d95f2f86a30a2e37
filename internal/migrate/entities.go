package migrate

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/edusync/edusync/internal/attendance"
	"github.com/edusync/edusync/internal/canonical"
	"github.com/edusync/edusync/internal/enrollment"
	"github.com/edusync/edusync/internal/grades"
	"github.com/edusync/edusync/internal/identity"
)

// Entities is the typed canonical view of one migration, materialized by
// the load step. The evidence pack fingerprints each slice so drift between
// the pack and the loaded data is detectable.
type Entities struct {
	Persons       []canonical.Person
	Roles         []canonical.PersonRole
	Households    []canonical.Household
	Relationships []canonical.Relationship
	Courses       []canonical.Course
	Enrollments   []canonical.Enrollment
	Attendance    []canonical.AttendanceEvent
	Transcript    []canonical.TranscriptCourse
}

// personEntity types a golden record. The raw date of birth stays on the
// golden record when no layout parses it.
func personEntity(golden *identity.GoldenRecord, now time.Time) canonical.Person {
	p := canonical.Person{
		ID:           golden.GoldenID,
		FirstName:    golden.FirstName,
		LastName:     golden.LastName,
		Email:        golden.Email,
		StateID:      golden.StateID,
		SourceIDs:    golden.SourceIDs,
		SourceSystem: golden.PrimarySource,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if dob, ok := canonical.ParseDate(golden.DateOfBirth); ok {
		p.DateOfBirth = &dob
	}
	return p
}

func enrollmentEntity(span enrollment.Span) canonical.Enrollment {
	return canonical.Enrollment{
		ID:         valueOr(span.ID, uuid.NewString()),
		StudentID:  span.StudentID,
		SchoolID:   span.SchoolID,
		SchoolName: span.SchoolName,
		GradeLevel: span.GradeLevel,
		StartDate:  span.StartDate,
		EndDate:    span.EndDate,
		Status:     canonical.EnrollmentStatus(strings.ToLower(strings.TrimSpace(span.Status))),
		ExitReason: span.ExitReason,
	}
}

// studentRole derives the time-bounded student role an enrollment implies.
func studentRole(e canonical.Enrollment) canonical.PersonRole {
	return canonical.PersonRole{
		ID:             "ROLE-" + e.ID,
		PersonID:       e.StudentID,
		RoleType:       canonical.RoleStudent,
		OrganizationID: e.SchoolID,
		StartDate:      e.StartDate,
		EndDate:        e.EndDate,
		GradeLevel:     e.GradeLevel,
		IsPrimary:      e.Status == canonical.EnrollmentActive,
	}
}

// attendanceStatuses maps the processor's normalized outcomes onto the
// canonical scale. Half days count as present, matching the summary math.
var attendanceStatuses = map[attendance.Status]canonical.AttendanceStatus{
	attendance.StatusPresent:        canonical.AttendancePresent,
	attendance.StatusAbsent:         canonical.AttendanceAbsent,
	attendance.StatusTardy:          canonical.AttendanceTardy,
	attendance.StatusExcused:        canonical.AttendanceExcusedAbsent,
	attendance.StatusUnexcused:      canonical.AttendanceUnexcusedAbsent,
	attendance.StatusRemote:         canonical.AttendanceRemote,
	attendance.StatusEarlyDeparture: canonical.AttendanceEarlyDeparture,
	attendance.StatusHalfDay:        canonical.AttendancePresent,
}

func attendanceEntity(rec attendance.Record) canonical.AttendanceEvent {
	status, ok := attendanceStatuses[rec.Status]
	if !ok {
		status = canonical.AttendanceAbsent
	}
	return canonical.AttendanceEvent{
		ID:          valueOr(rec.ID, uuid.NewString()),
		StudentID:   rec.StudentID,
		Date:        rec.Date,
		Status:      status,
		Period:      rec.Period,
		SectionID:   rec.SectionID,
		TeacherName: rec.TeacherName,
		Notes:       rec.Notes,
		SourceCode:  rec.SourceCode,
	}
}

// transcriptEntity types a processed grade as a transcript row. Transcript
// grade points are credit-weighted, unlike the per-letter points the grade
// processor reports.
func transcriptEntity(g grades.Record) canonical.TranscriptCourse {
	t := canonical.TranscriptCourse{
		ID:               valueOr(g.ID, uuid.NewString()),
		StudentID:        g.StudentID,
		CourseCode:       g.CourseCode,
		CourseName:       g.CourseName,
		Term:             g.Term,
		SchoolYear:       g.SchoolYear,
		LetterGrade:      g.LetterGrade,
		NumericGrade:     g.NumericGrade,
		HasNumericGrade:  g.HasNumericGrade,
		CreditsAttempted: g.CreditsAttempted,
		CreditsEarned:    g.CreditsEarned,
		IsWeighted:       g.IsWeighted,
		InstructorName:   g.InstructorName,
	}
	t.GradePoints = t.CalculateGradePoints()
	return t
}

// courseEntities derives the typed course catalog from the processed grades,
// one course per code in code order.
func courseEntities(list []grades.Record) []canonical.Course {
	seen := map[string]canonical.Course{}
	for _, g := range list {
		if g.CourseCode == "" {
			continue
		}
		if _, ok := seen[g.CourseCode]; ok {
			continue
		}
		seen[g.CourseCode] = canonical.Course{
			ID:       "CRS-" + g.CourseCode,
			Code:     g.CourseCode,
			Name:     g.CourseName,
			Credits:  g.CreditsAttempted,
			IsHonors: g.IsHonors,
			IsAP:     g.IsAP,
		}
	}
	codes := make([]string, 0, len(seen))
	for code := range seen {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	out := make([]canonical.Course, 0, len(codes))
	for _, code := range codes {
		out = append(out, seen[code])
	}
	return out
}

// relationshipEntities types the flattened guardian links and groups them
// into households, one household per guardian.
func relationshipEntities(records []canonical.Record) ([]canonical.Relationship, []canonical.Household) {
	byGuardian := map[string]*canonical.Household{}
	var order []string
	rels := make([]canonical.Relationship, 0, len(records))
	for _, rec := range records {
		guardianID := rec.Get("id")
		studentID := rec.Get("student_id")
		rels = append(rels, canonical.Relationship{
			ID:               fmt.Sprintf("REL-%s-%s", guardianID, studentID),
			PersonID:         guardianID,
			RelatedPersonID:  studentID,
			RelationshipType: canonical.RelationshipType(strings.ToLower(rec.Get("relationship"))),
			CustodyType:      canonical.CustodyType(strings.ToLower(rec.Get("custody"))),
		})

		household, ok := byGuardian[guardianID]
		if !ok {
			household = &canonical.Household{ID: "HH-" + guardianID}
			byGuardian[guardianID] = household
			order = append(order, guardianID)
		}
		household.AddMember(guardianID)
		household.AddMember(studentID)
	}
	households := make([]canonical.Household, 0, len(order))
	for _, id := range order {
		households = append(households, *byGuardian[id])
	}
	return rels, households
}

// dataHashes fingerprints every entity slice. The person digest folds in
// each per-person integrity hash so an altered identity row changes the
// domain fingerprint, and the attendance digest carries the present count.
func dataHashes(e *Entities) map[string]string {
	persons := make([]string, 0, len(e.Persons))
	for _, p := range e.Persons {
		persons = append(persons, p.IntegrityHash())
	}

	roles := make([]string, 0, len(e.Roles))
	for _, r := range e.Roles {
		roles = append(roles, fmt.Sprintf("%s|%s|%s", r.ID, r.PersonID, r.RoleType))
	}

	households := make([]string, 0, len(e.Households))
	for _, h := range e.Households {
		households = append(households, fmt.Sprintf("%s|%d", h.ID, len(h.MemberIDs)))
	}

	rels := make([]string, 0, len(e.Relationships))
	for _, r := range e.Relationships {
		rels = append(rels, fmt.Sprintf("%s|%s|%s", r.PersonID, r.RelatedPersonID, r.RelationshipType))
	}

	courses := make([]string, 0, len(e.Courses))
	for _, c := range e.Courses {
		courses = append(courses, fmt.Sprintf("%s|%s", c.Code, c.Name))
	}

	enrollments := make([]string, 0, len(e.Enrollments))
	for _, enr := range e.Enrollments {
		enrollments = append(enrollments, fmt.Sprintf("%s|%s|%s", enr.ID, enr.StudentID, enr.Status))
	}

	var present int
	events := make([]string, 0, len(e.Attendance)+1)
	for _, a := range e.Attendance {
		if a.IsPresent() {
			present++
		}
		events = append(events, fmt.Sprintf("%s|%s|%s", a.ID, a.Date.Format("2006-01-02"), a.Status))
	}
	events = append(events, fmt.Sprintf("present=%d", present))

	transcript := make([]string, 0, len(e.Transcript))
	for _, t := range e.Transcript {
		transcript = append(transcript, fmt.Sprintf("%s|%s|%.2f", t.ID, t.LetterGrade, t.GradePoints))
	}

	return map[string]string{
		"persons":       digest(persons),
		"roles":         digest(roles),
		"households":    digest(households),
		"relationships": digest(rels),
		"courses":       digest(courses),
		"enrollments":   digest(enrollments),
		"attendance":    digest(events),
		"grades":        digest(transcript),
	}
}

// digest hashes the parts order-independently.
func digest(parts []string) string {
	sorted := append([]string{}, parts...)
	sort.Strings(sorted)
	sum := sha256.Sum256([]byte(strings.Join(sorted, "\n")))
	return hex.EncodeToString(sum[:])
}
