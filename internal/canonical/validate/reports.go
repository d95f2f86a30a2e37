package validate

import (
	"fmt"
	"strings"
	"time"

	"github.com/edusync/edusync/internal/canonical"
)

func (v *Validator) newReport(recordID, recordType string) *Report {
	if recordID == "" {
		recordID = "unknown"
	}
	return &Report{RecordID: recordID, RecordType: recordType, Timestamp: time.Now().UTC()}
}

func (v *Validator) addIf(report *Report, result *Result) {
	if result != nil {
		report.Add(*result)
	}
}

func (v *Validator) applyCustomRules(report *Report, record canonical.Record) {
	for _, rule := range v.customRules {
		report.Results = append(report.Results, rule(record)...)
	}
}

// StudentReport validates a raw student record.
func (v *Validator) StudentReport(record canonical.Record) *Report {
	report := v.newReport(record.Get("student_id"), "student")

	for _, field := range []string{"student_id", "first_name", "last_name"} {
		v.addIf(report, v.Required(record[field], field))
	}
	if record.Has("first_name") {
		v.addIf(report, v.Name(record["first_name"], "first_name"))
	}
	if record.Has("last_name") {
		v.addIf(report, v.Name(record["last_name"], "last_name"))
	}
	if record.Has("email") {
		v.addIf(report, v.Email(record.Get("email"), "email"))
	}
	if record.Has("phone") {
		v.addIf(report, v.Phone(record.Get("phone"), "phone"))
	}
	if record.Has("grade") {
		v.addIf(report, v.GradeLevel(record.Get("grade"), "grade"))
	}
	if record.Has("gpa") {
		v.addIf(report, v.GPA(record.Get("gpa"), "gpa"))
	}
	if record.Has("enrollment_date") {
		v.addIf(report, v.DateField(record.Get("enrollment_date"), "enrollment_date"))
	}

	v.applyCustomRules(report, record)
	return report
}

// GuardianReport validates a raw guardian record.
func (v *Validator) GuardianReport(record canonical.Record) *Report {
	report := v.newReport(record.Get("guardian_id"), "guardian")

	for _, field := range []string{"guardian_id", "first_name", "last_name"} {
		v.addIf(report, v.Required(record[field], field))
	}
	if record.Has("email") {
		v.addIf(report, v.Email(record.Get("email"), "email"))
	}
	if record.Has("phone") {
		v.addIf(report, v.Phone(record.Get("phone"), "phone"))
	}
	if !record.Has("student_ids") {
		report.Add(Result{
			Field:    "student_ids",
			Message:  "Guardian has no linked students",
			Severity: SeverityWarning,
			RuleID:   "GUARDIAN_NO_STUDENTS",
		})
	}

	v.applyCustomRules(report, record)
	return report
}

// EnrollmentReport validates a raw enrollment record.
func (v *Validator) EnrollmentReport(record canonical.Record) *Report {
	report := v.newReport(record.Get("enrollment_id"), "enrollment")

	for _, field := range []string{"enrollment_id", "student_id", "school_id", "start_date"} {
		v.addIf(report, v.Required(record[field], field))
	}
	if record.Has("start_date") {
		v.addIf(report, v.DateField(record.Get("start_date"), "start_date"))
	}
	if record.Has("end_date") {
		v.addIf(report, v.DateField(record.Get("end_date"), "end_date"))
	}
	if record.Has("grade_level") {
		v.addIf(report, v.GradeLevel(record.Get("grade_level"), "grade_level"))
	}

	v.applyCustomRules(report, record)
	return report
}

// AttendanceReport validates a raw attendance record.
func (v *Validator) AttendanceReport(record canonical.Record) *Report {
	report := v.newReport(record.Get("ID"), "attendance")

	for _, field := range []string{"StudentID", "Date", "Status"} {
		v.addIf(report, v.Required(record[field], field))
	}
	if record.Has("Date") {
		v.addIf(report, v.DateField(record.Get("Date"), "Date"))
	}

	v.applyCustomRules(report, record)
	return report
}

// standardGrades lists the letter values accepted without a finding.
var standardGrades = map[string]bool{
	"A+": true, "A": true, "A-": true,
	"B+": true, "B": true, "B-": true,
	"C+": true, "C": true, "C-": true,
	"D+": true, "D": true, "D-": true,
	"F": true, "I": true, "W": true, "P": true, "NP": true,
}

// GradeReport validates a raw grade or transcript record.
func (v *Validator) GradeReport(record canonical.Record) *Report {
	id := fmt.Sprintf("%s-%s", orUnknown(record.Get("STUDENT_ID")), orUnknown(record.Get("COURSE_CODE")))
	report := v.newReport(id, "grade")

	for _, field := range []string{"STUDENT_ID", "COURSE_CODE", "COURSE_NAME"} {
		v.addIf(report, v.Required(record[field], field))
	}
	if grade := record.Get("GRADE"); grade != "" {
		if !standardGrades[strings.ToUpper(grade)] {
			report.Add(Result{
				Field:    "GRADE",
				Message:  fmt.Sprintf("Non-standard grade: %s", grade),
				Severity: SeverityWarning,
				Value:    grade,
				RuleID:   "GRADE_NONSTANDARD",
			})
		}
	}

	v.applyCustomRules(report, record)
	return report
}

func orUnknown(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
