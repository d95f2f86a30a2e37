// Package edfi renders migrated data as Ed-Fi data standard JSON for
// state reporting: students, school associations, staff, courses, grades,
// and attendance events, with the descriptor URIs the standard requires.
package edfi

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/edusync/edusync/internal/canonical"
)

// ElectronicMail is an Ed-Fi email entry.
type ElectronicMail struct {
	Address        string `json:"electronicMailAddress"`
	TypeDescriptor string `json:"electronicMailTypeDescriptor"`
}

// Telephone is an Ed-Fi phone entry.
type Telephone struct {
	Number         string `json:"telephoneNumber"`
	TypeDescriptor string `json:"telephoneNumberTypeDescriptor"`
}

// IdentificationCode is an Ed-Fi student identification entry.
type IdentificationCode struct {
	Code             string `json:"identificationCode"`
	SystemDescriptor string `json:"studentIdentificationSystemDescriptor"`
}

// Student is an Ed-Fi student resource.
type Student struct {
	StudentUniqueID     string               `json:"studentUniqueId"`
	FirstName           string               `json:"firstName"`
	LastSurname         string               `json:"lastSurname"`
	MiddleName          string               `json:"middleName,omitempty"`
	BirthDate           string               `json:"birthDate"`
	ElectronicMails     []ElectronicMail     `json:"electronicMails,omitempty"`
	Telephones          []Telephone          `json:"telephones,omitempty"`
	IdentificationCodes []IdentificationCode `json:"identificationCodes,omitempty"`
}

// StudentReference points at a student by its unique ID.
type StudentReference struct {
	StudentUniqueID string `json:"studentUniqueId"`
}

// SchoolReference points at a school by its ID.
type SchoolReference struct {
	SchoolID string `json:"schoolId"`
}

// StudentSchoolAssociation enrolls a student at a school.
type StudentSchoolAssociation struct {
	StudentReference          StudentReference `json:"studentReference"`
	SchoolReference           SchoolReference  `json:"schoolReference"`
	EntryDate                 string           `json:"entryDate"`
	EntryGradeLevelDescriptor string           `json:"entryGradeLevelDescriptor"`
	ExitWithdrawDate          string           `json:"exitWithdrawDate,omitempty"`
}

// Staff is an Ed-Fi staff resource.
type Staff struct {
	StaffUniqueID   string           `json:"staffUniqueId"`
	FirstName       string           `json:"firstName"`
	LastSurname     string           `json:"lastSurname"`
	MiddleName      string           `json:"middleName,omitempty"`
	ElectronicMails []ElectronicMail `json:"electronicMails,omitempty"`
}

// EducationOrganizationReference points at an education organization.
type EducationOrganizationReference struct {
	EducationOrganizationID string `json:"educationOrganizationId"`
}

// LevelCharacteristic marks a course as honors, AP, and so on.
type LevelCharacteristic struct {
	Descriptor string `json:"courseLevelCharacteristicDescriptor"`
}

// Course is an Ed-Fi course resource.
type Course struct {
	CourseCode                     string                         `json:"courseCode"`
	CourseTitle                    string                         `json:"courseTitle"`
	EducationOrganizationReference EducationOrganizationReference `json:"educationOrganizationReference"`
	NumberOfParts                  int                            `json:"numberOfParts"`
	LevelCharacteristics           []LevelCharacteristic          `json:"levelCharacteristics,omitempty"`
}

// StudentSectionAssociationReference identifies the section a grade
// belongs to.
type StudentSectionAssociationReference struct {
	StudentUniqueID   string `json:"studentUniqueId"`
	SectionIdentifier string `json:"sectionIdentifier"`
	LocalCourseCode   string `json:"localCourseCode"`
	SchoolID          string `json:"schoolId"`
	SchoolYear        int    `json:"schoolYear"`
	SessionName       string `json:"sessionName"`
}

// GradingPeriodReference identifies the grading period of a grade.
type GradingPeriodReference struct {
	Descriptor     string `json:"gradingPeriodDescriptor"`
	PeriodSequence int    `json:"periodSequence"`
	SchoolID       string `json:"schoolId"`
	SchoolYear     int    `json:"schoolYear"`
}

// Grade is an Ed-Fi grade resource.
type Grade struct {
	StudentSectionAssociationReference StudentSectionAssociationReference `json:"studentSectionAssociationReference"`
	GradingPeriodReference             GradingPeriodReference             `json:"gradingPeriodReference"`
	GradeTypeDescriptor                string                             `json:"gradeTypeDescriptor"`
	LetterGradeEarned                  string                             `json:"letterGradeEarned,omitempty"`
	NumericGradeEarned                 float64                            `json:"numericGradeEarned,omitempty"`
}

// SessionReference identifies the session of an attendance event.
type SessionReference struct {
	SchoolID    string `json:"schoolId"`
	SchoolYear  int    `json:"schoolYear"`
	SessionName string `json:"sessionName"`
}

// AttendanceEvent is an Ed-Fi student school attendance event resource.
type AttendanceEvent struct {
	StudentReference   StudentReference `json:"studentReference"`
	SchoolReference    SchoolReference  `json:"schoolReference"`
	EventDate          string           `json:"eventDate"`
	SessionReference   SessionReference `json:"sessionReference"`
	CategoryDescriptor string           `json:"attendanceEventCategoryDescriptor"`
	Reason             string           `json:"attendanceEventReason,omitempty"`
}

var gradeLevelDescriptors = map[int]string{
	-1: "uri://ed-fi.org/GradeLevelDescriptor#Preschool/Prekindergarten",
	0:  "uri://ed-fi.org/GradeLevelDescriptor#Kindergarten",
	1:  "uri://ed-fi.org/GradeLevelDescriptor#First grade",
	2:  "uri://ed-fi.org/GradeLevelDescriptor#Second grade",
	3:  "uri://ed-fi.org/GradeLevelDescriptor#Third grade",
	4:  "uri://ed-fi.org/GradeLevelDescriptor#Fourth grade",
	5:  "uri://ed-fi.org/GradeLevelDescriptor#Fifth grade",
	6:  "uri://ed-fi.org/GradeLevelDescriptor#Sixth grade",
	7:  "uri://ed-fi.org/GradeLevelDescriptor#Seventh grade",
	8:  "uri://ed-fi.org/GradeLevelDescriptor#Eighth grade",
	9:  "uri://ed-fi.org/GradeLevelDescriptor#Ninth grade",
	10: "uri://ed-fi.org/GradeLevelDescriptor#Tenth grade",
	11: "uri://ed-fi.org/GradeLevelDescriptor#Eleventh grade",
	12: "uri://ed-fi.org/GradeLevelDescriptor#Twelfth grade",
}

var attendanceDescriptors = map[string]string{
	"present":   "uri://ed-fi.org/AttendanceEventCategoryDescriptor#In Attendance",
	"absent":    "uri://ed-fi.org/AttendanceEventCategoryDescriptor#Unexcused Absence",
	"tardy":     "uri://ed-fi.org/AttendanceEventCategoryDescriptor#Tardy",
	"excused":   "uri://ed-fi.org/AttendanceEventCategoryDescriptor#Excused Absence",
	"unexcused": "uri://ed-fi.org/AttendanceEventCategoryDescriptor#Unexcused Absence",
}

// GradeLevelDescriptor returns the descriptor URI for a grade level.
func GradeLevelDescriptor(grade int) string {
	if d, ok := gradeLevelDescriptors[grade]; ok {
		return d
	}
	return fmt.Sprintf("uri://ed-fi.org/GradeLevelDescriptor#Grade %d", grade)
}

// AttendanceDescriptor returns the descriptor URI for an attendance
// status, defaulting to In Attendance for unknown statuses.
func AttendanceDescriptor(status string) string {
	if d, ok := attendanceDescriptors[strings.ToLower(status)]; ok {
		return d
	}
	return "uri://ed-fi.org/AttendanceEventCategoryDescriptor#In Attendance"
}

// Exporter accumulates Ed-Fi resources for one school and school year.
type Exporter struct {
	schoolID   string
	schoolYear int

	students           []Student
	schoolAssociations []StudentSchoolAssociation
	staff              []Staff
	courses            []Course
	grades             []Grade
	attendanceEvents   []AttendanceEvent

	titler cases.Caser
	now    func() time.Time
}

// NewExporter returns an Exporter scoped to a school and school year.
// Empty or zero arguments fall back to a demo school and the 2024 year.
func NewExporter(schoolID string, schoolYear int) *Exporter {
	if schoolID == "" {
		schoolID = "255901001"
	}
	if schoolYear == 0 {
		schoolYear = 2024
	}
	return &Exporter{
		schoolID:   schoolID,
		schoolYear: schoolYear,
		titler:     cases.Title(language.AmericanEnglish),
		now:        time.Now,
	}
}

// AddStudent maps a cleaned student record to an Ed-Fi student and its
// school association. A grade level that fails to parse defaults to ninth
// grade; a missing enrollment date defaults to today.
func (e *Exporter) AddStudent(rec canonical.Record) Student {
	student := Student{
		StudentUniqueID: rec.Get("student_id"),
		FirstName:       e.titler.String(strings.ToLower(rec.Get("first_name"))),
		LastSurname:     e.titler.String(strings.ToLower(rec.Get("last_name"))),
		MiddleName:      e.titler.String(strings.ToLower(rec.Get("middle_name"))),
		BirthDate:       rec.Get("date_of_birth"),
	}

	if email := rec.Get("email"); email != "" {
		student.ElectronicMails = append(student.ElectronicMails, ElectronicMail{
			Address:        email,
			TypeDescriptor: "uri://ed-fi.org/ElectronicMailTypeDescriptor#Home/Personal",
		})
	}
	if phone := rec.Get("phone"); phone != "" {
		student.Telephones = append(student.Telephones, Telephone{
			Number:         phone,
			TypeDescriptor: "uri://ed-fi.org/TelephoneNumberTypeDescriptor#Home",
		})
	}
	if stateID := rec.Get("state_id"); stateID != "" {
		student.IdentificationCodes = append(student.IdentificationCodes, IdentificationCode{
			Code:             stateID,
			SystemDescriptor: "uri://ed-fi.org/StudentIdentificationSystemDescriptor#State",
		})
	}
	e.students = append(e.students, student)

	grade, err := strconv.Atoi(rec.Get("grade"))
	if err != nil {
		grade = 9
	}
	entryDate := rec.Get("enrollment_date")
	if entryDate == "" {
		entryDate = e.now().UTC().Format("2006-01-02")
	}
	e.schoolAssociations = append(e.schoolAssociations, StudentSchoolAssociation{
		StudentReference:          StudentReference{StudentUniqueID: student.StudentUniqueID},
		SchoolReference:           SchoolReference{SchoolID: e.schoolID},
		EntryDate:                 entryDate,
		EntryGradeLevelDescriptor: GradeLevelDescriptor(grade),
	})
	return student
}

// AddStaff maps a staff record, splitting a single name field.
func (e *Exporter) AddStaff(rec canonical.Record) Staff {
	var first, last string
	parts := strings.Fields(rec.Get("name"))
	if len(parts) > 0 {
		first = parts[0]
	}
	if len(parts) > 1 {
		last = parts[len(parts)-1]
	}

	id := rec.Get("id")
	if id == "" {
		id = strings.ToLower(first)
	}
	staff := Staff{
		StaffUniqueID: id,
		FirstName:     e.titler.String(strings.ToLower(first)),
		LastSurname:   e.titler.String(strings.ToLower(last)),
	}
	if email := rec.Get("email"); email != "" {
		staff.ElectronicMails = append(staff.ElectronicMails, ElectronicMail{
			Address:        email,
			TypeDescriptor: "uri://ed-fi.org/ElectronicMailTypeDescriptor#Work",
		})
	}
	e.staff = append(e.staff, staff)
	return staff
}

// AddCourse maps a course record, attaching honors or AP level
// characteristics when flagged.
func (e *Exporter) AddCourse(rec canonical.Record) Course {
	course := Course{
		CourseCode:                     rec.Get("code"),
		CourseTitle:                    e.titler.String(strings.ToLower(rec.Get("name"))),
		EducationOrganizationReference: EducationOrganizationReference{EducationOrganizationID: e.schoolID},
		NumberOfParts:                  1,
	}
	if flagSet(rec, "is_honors") {
		course.LevelCharacteristics = append(course.LevelCharacteristics, LevelCharacteristic{
			Descriptor: "uri://ed-fi.org/CourseLevelCharacteristicDescriptor#Honors",
		})
	} else if flagSet(rec, "is_ap") {
		course.LevelCharacteristics = append(course.LevelCharacteristics, LevelCharacteristic{
			Descriptor: "uri://ed-fi.org/CourseLevelCharacteristicDescriptor#Advanced Placement",
		})
	}
	e.courses = append(e.courses, course)
	return course
}

// AddGrade maps a processed grade record.
func (e *Exporter) AddGrade(rec canonical.Record) Grade {
	numeric, _ := strconv.ParseFloat(rec.Get("numeric_grade"), 64)
	grade := Grade{
		StudentSectionAssociationReference: StudentSectionAssociationReference{
			StudentUniqueID:   rec.Get("student_id"),
			SectionIdentifier: rec.Get("course_code"),
			LocalCourseCode:   rec.Get("course_code"),
			SchoolID:          e.schoolID,
			SchoolYear:        e.schoolYear,
			SessionName:       valueOr(rec.Get("term"), "Fall"),
		},
		GradingPeriodReference: GradingPeriodReference{
			Descriptor:     "uri://ed-fi.org/GradingPeriodDescriptor#End of Year",
			PeriodSequence: 1,
			SchoolID:       e.schoolID,
			SchoolYear:     e.schoolYear,
		},
		GradeTypeDescriptor: "uri://ed-fi.org/GradeTypeDescriptor#Semester",
		LetterGradeEarned:   rec.Get("letter_grade"),
		NumericGradeEarned:  numeric,
	}
	e.grades = append(e.grades, grade)
	return grade
}

// AddAttendanceEvent maps a processed attendance record.
func (e *Exporter) AddAttendanceEvent(rec canonical.Record) AttendanceEvent {
	sessionName := fmt.Sprintf("%d-%d", e.schoolYear-1, e.schoolYear)
	event := AttendanceEvent{
		StudentReference: StudentReference{StudentUniqueID: rec.Get("student_id")},
		SchoolReference:  SchoolReference{SchoolID: e.schoolID},
		EventDate:        rec.Get("date"),
		SessionReference: SessionReference{
			SchoolID:    e.schoolID,
			SchoolYear:  e.schoolYear,
			SessionName: sessionName,
		},
		CategoryDescriptor: AttendanceDescriptor(valueOr(rec.Get("status"), "present")),
		Reason:             rec.Get("notes"),
	}
	e.attendanceEvents = append(e.attendanceEvents, event)
	return event
}

// ExportAll renders every resource collection as indented JSON, keyed by
// its Ed-Fi filename.
func (e *Exporter) ExportAll() (map[string][]byte, error) {
	collections := map[string]any{
		"students.json":                      e.students,
		"studentSchoolAssociations.json":     e.schoolAssociations,
		"staff.json":                         e.staff,
		"courses.json":                       e.courses,
		"grades.json":                        e.grades,
		"studentSchoolAttendanceEvents.json": e.attendanceEvents,
	}
	out := make(map[string][]byte, len(collections))
	for name, collection := range collections {
		raw, err := json.MarshalIndent(collection, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("export %s: %w", name, err)
		}
		out[name] = raw
	}
	return out, nil
}

// ExportCombined renders every resource collection in one JSON document.
func (e *Exporter) ExportCombined() ([]byte, error) {
	doc := map[string]any{
		"students":                      e.students,
		"studentSchoolAssociations":     e.schoolAssociations,
		"staff":                         e.staff,
		"courses":                       e.courses,
		"grades":                        e.grades,
		"studentSchoolAttendanceEvents": e.attendanceEvents,
	}
	raw, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("export combined: %w", err)
	}
	return raw, nil
}

// Stats counts the resources staged for export.
type Stats struct {
	Students                  int `json:"students"`
	StudentSchoolAssociations int `json:"student_school_associations"`
	Staff                     int `json:"staff"`
	Courses                   int `json:"courses"`
	Grades                    int `json:"grades"`
	AttendanceEvents          int `json:"attendance_events"`
}

// Stats reports how many of each resource have been added.
func (e *Exporter) Stats() Stats {
	return Stats{
		Students:                  len(e.students),
		StudentSchoolAssociations: len(e.schoolAssociations),
		Staff:                     len(e.staff),
		Courses:                   len(e.courses),
		Grades:                    len(e.grades),
		AttendanceEvents:          len(e.attendanceEvents),
	}
}

func flagSet(rec canonical.Record, key string) bool {
	switch strings.ToLower(rec.Get(key)) {
	case "true", "1", "yes", "y":
		return true
	}
	return false
}

func valueOr(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
