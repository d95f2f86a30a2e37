package edfi

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/edusync/edusync/internal/canonical"
)

func TestGradeLevelDescriptor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		grade int
		want  string
	}{
		{0, "uri://ed-fi.org/GradeLevelDescriptor#Kindergarten"},
		{9, "uri://ed-fi.org/GradeLevelDescriptor#Ninth grade"},
		{12, "uri://ed-fi.org/GradeLevelDescriptor#Twelfth grade"},
		{14, "uri://ed-fi.org/GradeLevelDescriptor#Grade 14"},
	}
	for _, tt := range tests {
		if got := GradeLevelDescriptor(tt.grade); got != tt.want {
			t.Fatalf("GradeLevelDescriptor(%d) = %q, want %q", tt.grade, got, tt.want)
		}
	}
}

func TestAttendanceDescriptor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		status string
		want   string
	}{
		{"Present", "uri://ed-fi.org/AttendanceEventCategoryDescriptor#In Attendance"},
		{"tardy", "uri://ed-fi.org/AttendanceEventCategoryDescriptor#Tardy"},
		{"EXCUSED", "uri://ed-fi.org/AttendanceEventCategoryDescriptor#Excused Absence"},
		{"mystery", "uri://ed-fi.org/AttendanceEventCategoryDescriptor#In Attendance"},
	}
	for _, tt := range tests {
		if got := AttendanceDescriptor(tt.status); got != tt.want {
			t.Fatalf("AttendanceDescriptor(%q) = %q, want %q", tt.status, got, tt.want)
		}
	}
}

func TestAddStudentBuildsAssociation(t *testing.T) {
	t.Parallel()

	e := NewExporter("255901001", 2024)
	student := e.AddStudent(canonical.Record{
		"student_id":      "1001",
		"first_name":      "MARIA",
		"last_name":       "garcia",
		"date_of_birth":   "2008-03-14",
		"email":           "maria@school.edu",
		"phone":           "555-0101",
		"state_id":        "TX-12345",
		"grade":           "10",
		"enrollment_date": "2023-08-15",
	})

	if student.FirstName != "Maria" || student.LastSurname != "Garcia" {
		t.Fatalf("name = %q %q, want Maria Garcia", student.FirstName, student.LastSurname)
	}
	if len(student.ElectronicMails) != 1 || len(student.Telephones) != 1 {
		t.Fatalf("contacts = %+v", student)
	}
	if len(student.IdentificationCodes) != 1 || student.IdentificationCodes[0].Code != "TX-12345" {
		t.Fatalf("identification = %+v", student.IdentificationCodes)
	}

	stats := e.Stats()
	if stats.StudentSchoolAssociations != 1 {
		t.Fatalf("associations = %d, want 1", stats.StudentSchoolAssociations)
	}
	assoc := e.schoolAssociations[0]
	if assoc.EntryDate != "2023-08-15" {
		t.Fatalf("entryDate = %q, want 2023-08-15", assoc.EntryDate)
	}
	if assoc.EntryGradeLevelDescriptor != GradeLevelDescriptor(10) {
		t.Fatalf("grade descriptor = %q", assoc.EntryGradeLevelDescriptor)
	}
}

func TestAddStudentDefaultsGradeToNinth(t *testing.T) {
	t.Parallel()

	e := NewExporter("", 0)
	e.AddStudent(canonical.Record{
		"student_id": "1002",
		"first_name": "Jim",
		"last_name":  "Lee",
		"grade":      "sophomore",
	})
	assoc := e.schoolAssociations[0]
	if assoc.EntryGradeLevelDescriptor != GradeLevelDescriptor(9) {
		t.Fatalf("grade descriptor = %q, want ninth grade", assoc.EntryGradeLevelDescriptor)
	}
	if assoc.EntryDate == "" {
		t.Fatal("entryDate should default to today")
	}
}

func TestAddCourseLevelCharacteristics(t *testing.T) {
	t.Parallel()

	e := NewExporter("", 0)
	honors := e.AddCourse(canonical.Record{"code": "ENG301", "name": "honors english", "is_honors": "true"})
	if len(honors.LevelCharacteristics) != 1 || !strings.HasSuffix(honors.LevelCharacteristics[0].Descriptor, "#Honors") {
		t.Fatalf("honors characteristics = %+v", honors.LevelCharacteristics)
	}

	ap := e.AddCourse(canonical.Record{"code": "HIST400", "name": "ap us history", "is_ap": "true"})
	if len(ap.LevelCharacteristics) != 1 || !strings.HasSuffix(ap.LevelCharacteristics[0].Descriptor, "#Advanced Placement") {
		t.Fatalf("ap characteristics = %+v", ap.LevelCharacteristics)
	}

	plain := e.AddCourse(canonical.Record{"code": "MATH101", "name": "algebra i"})
	if len(plain.LevelCharacteristics) != 0 {
		t.Fatalf("plain characteristics = %+v", plain.LevelCharacteristics)
	}
}

func TestAddGrade(t *testing.T) {
	t.Parallel()

	e := NewExporter("255901001", 2024)
	grade := e.AddGrade(canonical.Record{
		"student_id":    "1001",
		"course_code":   "MATH101",
		"term":          "Fall",
		"letter_grade":  "B+",
		"numeric_grade": "3.3",
	})
	if grade.LetterGradeEarned != "B+" {
		t.Fatalf("letter = %q, want B+", grade.LetterGradeEarned)
	}
	if grade.NumericGradeEarned != 3.3 {
		t.Fatalf("numeric = %v, want 3.3", grade.NumericGradeEarned)
	}
	ref := grade.StudentSectionAssociationReference
	if ref.SchoolYear != 2024 || ref.SessionName != "Fall" {
		t.Fatalf("reference = %+v", ref)
	}
}

func TestAddAttendanceEvent(t *testing.T) {
	t.Parallel()

	e := NewExporter("255901001", 2024)
	event := e.AddAttendanceEvent(canonical.Record{
		"student_id": "1001",
		"date":       "2024-01-16",
		"status":     "Tardy",
		"notes":      "bus delay",
	})
	if event.CategoryDescriptor != AttendanceDescriptor("tardy") {
		t.Fatalf("descriptor = %q", event.CategoryDescriptor)
	}
	if event.SessionReference.SessionName != "2023-2024" {
		t.Fatalf("session = %q, want 2023-2024", event.SessionReference.SessionName)
	}
	if event.Reason != "bus delay" {
		t.Fatalf("reason = %q", event.Reason)
	}
}

func TestExportAllAndCombined(t *testing.T) {
	t.Parallel()

	e := NewExporter("", 0)
	e.AddStudent(canonical.Record{"student_id": "1001", "first_name": "Maria", "last_name": "Garcia"})
	e.AddStaff(canonical.Record{"id": "T-1", "name": "sarah chen", "email": "chen@school.edu"})
	e.AddCourse(canonical.Record{"code": "MATH101", "name": "algebra i"})

	files, err := e.ExportAll()
	if err != nil {
		t.Fatalf("ExportAll: %v", err)
	}
	for _, name := range []string{
		"students.json", "studentSchoolAssociations.json", "staff.json",
		"courses.json", "grades.json", "studentSchoolAttendanceEvents.json",
	} {
		if _, ok := files[name]; !ok {
			t.Fatalf("missing %s", name)
		}
	}

	var students []map[string]any
	if err := json.Unmarshal(files["students.json"], &students); err != nil {
		t.Fatalf("unmarshal students: %v", err)
	}
	if len(students) != 1 || students[0]["studentUniqueId"] != "1001" {
		t.Fatalf("students = %+v", students)
	}
	if _, ok := students[0]["middleName"]; ok {
		t.Fatal("empty middleName should be omitted")
	}

	combined, err := e.ExportCombined()
	if err != nil {
		t.Fatalf("ExportCombined: %v", err)
	}
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(combined, &doc); err != nil {
		t.Fatalf("unmarshal combined: %v", err)
	}
	if _, ok := doc["students"]; !ok {
		t.Fatal("combined export missing students")
	}
	if _, ok := doc["studentSchoolAttendanceEvents"]; !ok {
		t.Fatal("combined export missing attendance events")
	}
}

func TestStaffNameSplit(t *testing.T) {
	t.Parallel()

	e := NewExporter("", 0)
	staff := e.AddStaff(canonical.Record{"name": "maria del carmen lopez"})
	if staff.FirstName != "Maria" || staff.LastSurname != "Lopez" {
		t.Fatalf("name = %q %q, want Maria Lopez", staff.FirstName, staff.LastSurname)
	}
	if staff.StaffUniqueID != "maria" {
		t.Fatalf("staff ID = %q, want maria", staff.StaffUniqueID)
	}
}
