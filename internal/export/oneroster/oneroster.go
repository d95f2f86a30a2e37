// Package oneroster renders migrated roster data as OneRoster 1.2 bulk
// CSV files: users, orgs, courses, classes, enrollments, and academic
// sessions, plus the manifest consumers use to discover them.
package oneroster

import (
	"encoding/csv"
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/edusync/edusync/internal/canonical"
)

// DefaultOrgID is used when a record carries no organization of its own.
const DefaultOrgID = "SCH001"

// User is a OneRoster user row covering students, teachers, and guardians.
type User struct {
	SourcedID        string
	Status           string
	DateLastModified string
	EnabledUser      string
	Role             string
	Username         string
	GivenName        string
	FamilyName       string
	MiddleName       string
	Email            string
	Phone            string
	Grades           string
	OrgSourcedIDs    string
	Identifier       string
}

// Org is a OneRoster organization row (district or school).
type Org struct {
	SourcedID        string
	Status           string
	DateLastModified string
	Name             string
	Type             string
	Identifier       string
	ParentSourcedID  string
}

// Course is a OneRoster course catalog row.
type Course struct {
	SourcedID        string
	Status           string
	DateLastModified string
	Title            string
	CourseCode       string
	Grades           string
	OrgSourcedID     string
	SubjectCodes     string
}

// Class is a OneRoster class (section) row.
type Class struct {
	SourcedID        string
	Status           string
	DateLastModified string
	Title            string
	ClassCode        string
	ClassType        string
	CourseSourcedID  string
	SchoolSourcedID  string
	TermSourcedIDs   string
	Grades           string
	Periods          string
	Location         string
}

// Enrollment is a OneRoster enrollment row linking a user to a class.
type Enrollment struct {
	SourcedID        string
	Status           string
	DateLastModified string
	ClassSourcedID   string
	SchoolSourcedID  string
	UserSourcedID    string
	Role             string
	Primary          string
	BeginDate        string
	EndDate          string
}

// AcademicSession is a OneRoster term, semester, or school-year row.
type AcademicSession struct {
	SourcedID        string
	Status           string
	DateLastModified string
	Title            string
	Type             string
	StartDate        string
	EndDate          string
	ParentSourcedID  string
	SchoolYear       string
}

// Exporter accumulates roster entities and renders them as CSV.
type Exporter struct {
	users       []User
	orgs        []Org
	courses     []Course
	classes     []Class
	enrollments []Enrollment
	sessions    []AcademicSession

	titler cases.Caser
	now    func() time.Time
}

// NewExporter returns an empty Exporter.
func NewExporter() *Exporter {
	return &Exporter{
		titler: cases.Title(language.AmericanEnglish),
		now:    time.Now,
	}
}

func (e *Exporter) modified() string {
	return e.now().UTC().Format(time.RFC3339)
}

// AddStudent maps a cleaned student record to a OneRoster user. Students
// whose source status is not active are marked tobedeleted so the target
// system retires them.
func (e *Exporter) AddStudent(rec canonical.Record, orgID string) User {
	if orgID == "" {
		orgID = DefaultOrgID
	}

	email := rec.Get("email")
	var username string
	if at := strings.Index(email, "@"); at > 0 {
		username = email[:at]
	}

	status := "tobedeleted"
	if strings.EqualFold(rec.Get("status"), "active") {
		status = "active"
	}

	user := User{
		SourcedID:        "STU-" + rec.Get("student_id"),
		Status:           status,
		DateLastModified: e.modified(),
		EnabledUser:      "true",
		Role:             "student",
		Username:         username,
		GivenName:        e.titler.String(strings.ToLower(rec.Get("first_name"))),
		FamilyName:       e.titler.String(strings.ToLower(rec.Get("last_name"))),
		Email:            email,
		Phone:            rec.Get("phone"),
		Grades:           rec.Get("grade"),
		OrgSourcedIDs:    orgID,
		Identifier:       rec.Get("student_id"),
	}
	e.users = append(e.users, user)
	return user
}

// AddGuardian maps a guardian record to a OneRoster user.
func (e *Exporter) AddGuardian(rec canonical.Record, orgID string) User {
	if orgID == "" {
		orgID = DefaultOrgID
	}
	user := User{
		SourcedID:        "GRD-" + rec.Get("guardian_id"),
		Status:           "active",
		DateLastModified: e.modified(),
		EnabledUser:      "true",
		Role:             "guardian",
		GivenName:        e.titler.String(strings.ToLower(rec.Get("first_name"))),
		FamilyName:       e.titler.String(strings.ToLower(rec.Get("last_name"))),
		Email:            rec.Get("email"),
		Phone:            rec.Get("phone"),
		OrgSourcedIDs:    orgID,
	}
	e.users = append(e.users, user)
	return user
}

// AddTeacher maps a teacher record to a OneRoster user, splitting a single
// name field into given and family names.
func (e *Exporter) AddTeacher(rec canonical.Record, orgID string) User {
	if orgID == "" {
		orgID = DefaultOrgID
	}

	var given, family string
	parts := strings.Fields(rec.Get("name"))
	if len(parts) > 0 {
		given = parts[0]
	}
	if len(parts) > 1 {
		family = parts[len(parts)-1]
	}

	id := rec.Get("id")
	if id == "" {
		id = given
	}
	user := User{
		SourcedID:        "TCH-" + id,
		Status:           "active",
		DateLastModified: e.modified(),
		EnabledUser:      "true",
		Role:             "teacher",
		GivenName:        e.titler.String(strings.ToLower(given)),
		FamilyName:       e.titler.String(strings.ToLower(family)),
		OrgSourcedIDs:    orgID,
	}
	e.users = append(e.users, user)
	return user
}

// AddOrganization adds a school or district.
func (e *Exporter) AddOrganization(rec canonical.Record) Org {
	org := Org{
		SourcedID:        valueOr(rec.Get("id"), DefaultOrgID),
		Status:           "active",
		DateLastModified: e.modified(),
		Name:             valueOr(rec.Get("name"), "Default School"),
		Type:             valueOr(rec.Get("type"), "school"),
		Identifier:       rec.Get("identifier"),
		ParentSourcedID:  rec.Get("parent_id"),
	}
	e.orgs = append(e.orgs, org)
	return org
}

// AddCourse adds a course catalog entry.
func (e *Exporter) AddCourse(rec canonical.Record, orgID string) Course {
	if orgID == "" {
		orgID = DefaultOrgID
	}
	course := Course{
		SourcedID:        "CRS-" + rec.Get("code"),
		Status:           "active",
		DateLastModified: e.modified(),
		Title:            rec.Get("name"),
		CourseCode:       rec.Get("code"),
		OrgSourcedID:     orgID,
		SubjectCodes:     rec.Get("subject"),
	}
	e.courses = append(e.courses, course)
	return course
}

// AddClass adds a scheduled section of a course.
func (e *Exporter) AddClass(rec canonical.Record, courseID, schoolID, termID string) Class {
	cls := Class{
		SourcedID:        "CLS-" + rec.Get("id"),
		Status:           "active",
		DateLastModified: e.modified(),
		Title:            rec.Get("name"),
		ClassCode:        rec.Get("section_code"),
		ClassType:        "scheduled",
		CourseSourcedID:  courseID,
		SchoolSourcedID:  schoolID,
		TermSourcedIDs:   termID,
		Periods:          rec.Get("period"),
		Location:         rec.Get("room"),
	}
	e.classes = append(e.classes, cls)
	return cls
}

// AddEnrollment links a user to a class.
func (e *Exporter) AddEnrollment(userID, classID, schoolID, role, beginDate, endDate string) Enrollment {
	if role == "" {
		role = "student"
	}
	enr := Enrollment{
		SourcedID:        fmt.Sprintf("ENR-%s-%s", userID, classID),
		Status:           "active",
		DateLastModified: e.modified(),
		ClassSourcedID:   classID,
		SchoolSourcedID:  schoolID,
		UserSourcedID:    userID,
		Role:             role,
		Primary:          "true",
		BeginDate:        beginDate,
		EndDate:          endDate,
	}
	e.enrollments = append(e.enrollments, enr)
	return enr
}

// AddAcademicSession adds a term, semester, or school year.
func (e *Exporter) AddAcademicSession(rec canonical.Record) AcademicSession {
	s := AcademicSession{
		SourcedID:        rec.Get("id"),
		Status:           "active",
		DateLastModified: e.modified(),
		Title:            rec.Get("name"),
		Type:             valueOr(rec.Get("type"), "term"),
		StartDate:        rec.Get("start_date"),
		EndDate:          rec.Get("end_date"),
		ParentSourcedID:  rec.Get("parent_id"),
		SchoolYear:       rec.Get("school_year"),
	}
	e.sessions = append(e.sessions, s)
	return s
}

func writeCSV(headers []string, rows [][]string) (string, error) {
	var b strings.Builder
	w := csv.NewWriter(&b)
	if err := w.Write(headers); err != nil {
		return "", fmt.Errorf("write header: %w", err)
	}
	if err := w.WriteAll(rows); err != nil {
		return "", fmt.Errorf("write rows: %w", err)
	}
	return b.String(), nil
}

// ExportUsersCSV renders users.csv.
func (e *Exporter) ExportUsersCSV() (string, error) {
	headers := []string{
		"sourcedId", "status", "dateLastModified", "enabledUser", "role",
		"username", "givenName", "familyName", "middleName", "email",
		"phone", "grades", "orgSourcedIds", "identifier",
	}
	rows := make([][]string, 0, len(e.users))
	for _, u := range e.users {
		rows = append(rows, []string{
			u.SourcedID, u.Status, u.DateLastModified, u.EnabledUser, u.Role,
			u.Username, u.GivenName, u.FamilyName, u.MiddleName, u.Email,
			u.Phone, u.Grades, u.OrgSourcedIDs, u.Identifier,
		})
	}
	return writeCSV(headers, rows)
}

// ExportOrgsCSV renders orgs.csv.
func (e *Exporter) ExportOrgsCSV() (string, error) {
	headers := []string{
		"sourcedId", "status", "dateLastModified", "name", "type",
		"identifier", "parentSourcedId",
	}
	rows := make([][]string, 0, len(e.orgs))
	for _, o := range e.orgs {
		rows = append(rows, []string{
			o.SourcedID, o.Status, o.DateLastModified, o.Name, o.Type,
			o.Identifier, o.ParentSourcedID,
		})
	}
	return writeCSV(headers, rows)
}

// ExportCoursesCSV renders courses.csv.
func (e *Exporter) ExportCoursesCSV() (string, error) {
	headers := []string{
		"sourcedId", "status", "dateLastModified", "title", "courseCode",
		"grades", "orgSourcedId", "subjectCodes",
	}
	rows := make([][]string, 0, len(e.courses))
	for _, c := range e.courses {
		rows = append(rows, []string{
			c.SourcedID, c.Status, c.DateLastModified, c.Title, c.CourseCode,
			c.Grades, c.OrgSourcedID, c.SubjectCodes,
		})
	}
	return writeCSV(headers, rows)
}

// ExportClassesCSV renders classes.csv.
func (e *Exporter) ExportClassesCSV() (string, error) {
	headers := []string{
		"sourcedId", "status", "dateLastModified", "title", "classCode",
		"classType", "courseSourcedId", "schoolSourcedId", "termSourcedIds",
		"grades", "periods", "location",
	}
	rows := make([][]string, 0, len(e.classes))
	for _, c := range e.classes {
		rows = append(rows, []string{
			c.SourcedID, c.Status, c.DateLastModified, c.Title, c.ClassCode,
			c.ClassType, c.CourseSourcedID, c.SchoolSourcedID, c.TermSourcedIDs,
			c.Grades, c.Periods, c.Location,
		})
	}
	return writeCSV(headers, rows)
}

// ExportEnrollmentsCSV renders enrollments.csv.
func (e *Exporter) ExportEnrollmentsCSV() (string, error) {
	headers := []string{
		"sourcedId", "status", "dateLastModified", "classSourcedId",
		"schoolSourcedId", "userSourcedId", "role", "primary",
		"beginDate", "endDate",
	}
	rows := make([][]string, 0, len(e.enrollments))
	for _, en := range e.enrollments {
		rows = append(rows, []string{
			en.SourcedID, en.Status, en.DateLastModified, en.ClassSourcedID,
			en.SchoolSourcedID, en.UserSourcedID, en.Role, en.Primary,
			en.BeginDate, en.EndDate,
		})
	}
	return writeCSV(headers, rows)
}

// ExportAcademicSessionsCSV renders academicSessions.csv.
func (e *Exporter) ExportAcademicSessionsCSV() (string, error) {
	headers := []string{
		"sourcedId", "status", "dateLastModified", "title", "type",
		"startDate", "endDate", "parentSourcedId", "schoolYear",
	}
	rows := make([][]string, 0, len(e.sessions))
	for _, s := range e.sessions {
		rows = append(rows, []string{
			s.SourcedID, s.Status, s.DateLastModified, s.Title, s.Type,
			s.StartDate, s.EndDate, s.ParentSourcedID, s.SchoolYear,
		})
	}
	return writeCSV(headers, rows)
}

// ExportAll renders every bulk file, keyed by its OneRoster filename.
func (e *Exporter) ExportAll() (map[string]string, error) {
	files := map[string]func() (string, error){
		"users.csv":            e.ExportUsersCSV,
		"orgs.csv":             e.ExportOrgsCSV,
		"courses.csv":          e.ExportCoursesCSV,
		"classes.csv":          e.ExportClassesCSV,
		"enrollments.csv":      e.ExportEnrollmentsCSV,
		"academicSessions.csv": e.ExportAcademicSessionsCSV,
	}
	out := make(map[string]string, len(files))
	for name, export := range files {
		content, err := export()
		if err != nil {
			return nil, fmt.Errorf("export %s: %w", name, err)
		}
		out[name] = content
	}
	return out, nil
}

// Manifest describes which bulk files the export carries.
func (e *Exporter) Manifest() map[string]string {
	return map[string]string{
		"manifest.version":                  "1.0",
		"oneroster.version":                 "1.2",
		"file.academicSessions":             bulkOrAbsent(len(e.sessions)),
		"file.categories":                   "absent",
		"file.classes":                      bulkOrAbsent(len(e.classes)),
		"file.classResources":               "absent",
		"file.courses":                      bulkOrAbsent(len(e.courses)),
		"file.courseResources":              "absent",
		"file.demographics":                 "absent",
		"file.enrollments":                  bulkOrAbsent(len(e.enrollments)),
		"file.lineItemLearningObjectiveIds": "absent",
		"file.lineItems":                    "absent",
		"file.orgs":                         bulkOrAbsent(len(e.orgs)),
		"file.resources":                    "absent",
		"file.results":                      "absent",
		"file.resultLearningObjectiveIds":   "absent",
		"file.users":                        bulkOrAbsent(len(e.users)),
		"file.userProfiles":                 "absent",
		"file.userResources":                "absent",
	}
}

func bulkOrAbsent(n int) string {
	if n > 0 {
		return "bulk"
	}
	return "absent"
}

// Stats counts the entities staged for export.
type Stats struct {
	Users            int `json:"users"`
	Students         int `json:"students"`
	Guardians        int `json:"guardians"`
	Teachers         int `json:"teachers"`
	Organizations    int `json:"organizations"`
	Courses          int `json:"courses"`
	Classes          int `json:"classes"`
	Enrollments      int `json:"enrollments"`
	AcademicSessions int `json:"academic_sessions"`
}

// Stats reports how many of each entity have been added.
func (e *Exporter) Stats() Stats {
	s := Stats{
		Users:            len(e.users),
		Organizations:    len(e.orgs),
		Courses:          len(e.courses),
		Classes:          len(e.classes),
		Enrollments:      len(e.enrollments),
		AcademicSessions: len(e.sessions),
	}
	for _, u := range e.users {
		switch u.Role {
		case "student":
			s.Students++
		case "guardian":
			s.Guardians++
		case "teacher":
			s.Teachers++
		}
	}
	return s
}

func valueOr(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
