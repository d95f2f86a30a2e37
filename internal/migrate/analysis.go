package migrate

import (
	"fmt"
	"strings"
	"time"

	"github.com/edusync/edusync/internal/attendance"
	"github.com/edusync/edusync/internal/canonical"
	"github.com/edusync/edusync/internal/enrollment"
	"github.com/edusync/edusync/internal/grades"
	"github.com/edusync/edusync/internal/identity"
)

// Severity ranks how urgently a finding needs attention before migration.
type Severity string

const (
	SeverityHigh   Severity = "high"
	SeverityMedium Severity = "medium"
	SeverityLow    Severity = "low"
)

// Finding is one issue type detected in a domain, with an occurrence count.
type Finding struct {
	Type     string   `json:"type"`
	Count    int      `json:"count"`
	Severity Severity `json:"severity"`
	Details  string   `json:"details"`
}

// DomainFindings groups the findings and recommendations for one data domain.
type DomainFindings struct {
	Domain          string    `json:"domain"`
	Name            string    `json:"name"`
	Icon            string    `json:"icon"`
	Findings        []Finding `json:"findings"`
	Recommendations []string  `json:"recommendations"`
}

// IssueCount sums the occurrences across the domain's findings.
func (d DomainFindings) IssueCount() int {
	total := 0
	for _, f := range d.Findings {
		total += f.Count
	}
	return total
}

// HighPriorityCount sums occurrences of high severity findings.
func (d DomainFindings) HighPriorityCount() int {
	total := 0
	for _, f := range d.Findings {
		if f.Severity == SeverityHigh {
			total += f.Count
		}
	}
	return total
}

// AnalysisReport is the outcome of the pre-migration analysis pass.
type AnalysisReport struct {
	Domains          []DomainFindings `json:"domains"`
	TotalIssues      int              `json:"total_issues"`
	HighPriority     int              `json:"high_priority"`
	ReadyForCleaning bool             `json:"ready_for_cleaning"`
	GeneratedAt      time.Time        `json:"generated_at"`
}

// analyzeDataset inspects the raw records and reports per-domain findings.
// The detection is deterministic: the same dataset always yields the same
// report.
func analyzeDataset(data Dataset, now time.Time) *AnalysisReport {
	report := &AnalysisReport{
		Domains: []DomainFindings{
			analyzeIdentity(data),
			analyzeEnrollment(data),
			analyzeGrades(data),
			analyzeAttendance(data),
		},
		GeneratedAt: now,
	}
	for _, domain := range report.Domains {
		report.TotalIssues += domain.IssueCount()
		report.HighPriority += domain.HighPriorityCount()
	}
	report.ReadyForCleaning = report.HighPriority < 10
	return report
}

func analyzeIdentity(data Dataset) DomainFindings {
	resolver := identity.NewResolver()
	duplicates := len(resolver.FindDuplicates(data.Students, "legacy"))

	guarded := map[string]bool{}
	for _, g := range data.Guardians {
		for _, id := range strings.Split(g.Get("student_ids"), ",") {
			guarded[strings.TrimSpace(id)] = true
		}
	}
	missingGuardian := 0
	nameFormat := 0
	badEmail := 0
	for _, s := range data.Students {
		if !guarded[s.Get("student_id")] {
			missingGuardian++
		}
		first, last := s["first_name"], s["last_name"]
		if first != strings.TrimSpace(first) || last != strings.TrimSpace(last) ||
			isShouting(first) || isShouting(last) {
			nameFormat++
		}
		if email := s.Get("email"); email != "" &&
			(strings.Contains(email, "@@") || !strings.Contains(email, "@")) {
			badEmail++
		}
	}

	domain := DomainFindings{
		Domain: "identity",
		Name:   "Identity & Relationships",
		Icon:   "users",
		Recommendations: []string{
			"Merge duplicate student records",
			"Link students to guardians",
			"Standardize name formatting",
		},
	}
	domain.Findings = appendFinding(domain.Findings, "Duplicate Students", duplicates, SeverityHigh,
		"Records across sources appear to describe the same student")
	domain.Findings = appendFinding(domain.Findings, "Missing Guardian Link", missingGuardian, SeverityMedium,
		"Students with no guardian records")
	domain.Findings = appendFinding(domain.Findings, "Name Format Issues", nameFormat, SeverityLow,
		"Inconsistent casing, whitespace in names")
	domain.Findings = appendFinding(domain.Findings, "Invalid Email Format", badEmail, SeverityMedium,
		"Malformed email addresses detected")
	return domain
}

func analyzeEnrollment(data Dataset) DomainFindings {
	processor := enrollment.NewProcessor()
	students := map[string]bool{}
	for _, rec := range data.Enrollments {
		students[rec.Get("student_id")] = true
		processor.Add(rec, rec.Get("source"))
	}
	overlaps := 0
	for id := range students {
		overlaps += len(processor.FindOverlaps(id))
	}

	dateFormat := 0
	missingReason := 0
	for _, rec := range data.Enrollments {
		if start := rec.Get("start_date"); start != "" && !isISODate(start) {
			dateFormat++
		}
		if rec.Get("entry_reason") == "" && rec.Get("exit_reason") == "" &&
			!strings.EqualFold(rec.Get("status"), "active") {
			missingReason++
		}
	}

	domain := DomainFindings{
		Domain: "enrollment",
		Name:   "Enrollment & Calendar",
		Icon:   "calendar",
		Recommendations: []string{
			"Resolve overlapping spans",
			"Normalize date formats",
			"Add missing entry reasons",
		},
	}
	domain.Findings = appendFinding(domain.Findings, "Overlapping Enrollments", overlaps, SeverityHigh,
		"Students with overlapping enrollment periods")
	domain.Findings = appendFinding(domain.Findings, "Date Format Inconsistency", dateFormat, SeverityLow,
		"Multiple date formats detected across enrollment records")
	domain.Findings = appendFinding(domain.Findings, "Missing Entry Reason", missingReason, SeverityLow,
		"Closed enrollments lack an entry or exit reason")
	return domain
}

func analyzeGrades(data Dataset) DomainFindings {
	processor := grades.NewProcessor()
	students := map[string]bool{}
	for _, rec := range data.Grades {
		id := gradeStudentID(rec)
		students[id] = true
		processor.Process(rec, rec.Get("source"))
	}
	duplicates := 0
	for id := range students {
		duplicates += len(processor.FindDuplicates(id))
	}

	missing := 0
	courseCase := map[string]map[string]bool{}
	for _, rec := range data.Grades {
		grade := firstRecordValue(rec, "GRADE", "grade")
		if grade == "" || isNullToken(grade) {
			missing++
		}
		name := firstRecordValue(rec, "COURSE_NAME", "course_name")
		if name != "" {
			key := strings.ToLower(name)
			if courseCase[key] == nil {
				courseCase[key] = map[string]bool{}
			}
			courseCase[key][name] = true
		}
	}
	inconsistentCourses := 0
	for _, variants := range courseCase {
		if len(variants) > 1 {
			inconsistentCourses++
		}
	}

	invalidGPA := 0
	for _, s := range data.Students {
		gpa := s.Get("gpa")
		if gpa == "" || isNullToken(gpa) {
			continue
		}
		var value float64
		if _, err := fmt.Sscanf(gpa, "%f", &value); err == nil {
			if value < 0 || value > 4.0 {
				invalidGPA++
			}
		}
	}

	domain := DomainFindings{
		Domain: "grades",
		Name:   "Grades & Transcripts",
		Icon:   "graduation-cap",
		Recommendations: []string{
			"Deduplicate grade records",
			"Fill missing grades",
			"Fix invalid GPA values",
		},
	}
	domain.Findings = appendFinding(domain.Findings, "Duplicate Grade Records", duplicates, SeverityHigh,
		"Students with repeated grades for the same course and term")
	domain.Findings = appendFinding(domain.Findings, "Missing Grades", missing, SeverityMedium,
		"Grade records with an empty or null grade value")
	domain.Findings = appendFinding(domain.Findings, "Inconsistent Course Names", inconsistentCourses, SeverityLow,
		"Same course with different capitalizations")
	domain.Findings = appendFinding(domain.Findings, "Invalid GPA Values", invalidGPA, SeverityHigh,
		"GPA values outside valid range (0-4.0)")
	return domain
}

func analyzeAttendance(data Dataset) DomainFindings {
	processor := attendance.NewProcessor()
	students := map[string]bool{}
	for _, rec := range data.Attendance {
		id := firstRecordValue(rec, "StudentID", "student_id")
		students[id] = true
		processor.Process(rec, rec.Get("source"))
	}
	duplicates := 0
	for id := range students {
		duplicates += len(processor.FindDuplicates(id))
	}

	oddCodes := 0
	dateFormat := 0
	for _, rec := range data.Attendance {
		code := firstRecordValue(rec, "Status", "status")
		if len(code) != 1 || code != strings.ToUpper(code) {
			oddCodes++
		}
		if date := firstRecordValue(rec, "Date", "date"); date != "" && !isISODate(date) {
			dateFormat++
		}
	}

	domain := DomainFindings{
		Domain: "attendance",
		Name:   "Attendance",
		Icon:   "clock",
		Recommendations: []string{
			"Remove duplicate events",
			"Map codes to canonical form",
			"Standardize date formats",
		},
	}
	domain.Findings = appendFinding(domain.Findings, "Duplicate Attendance", duplicates, SeverityMedium,
		"Students with repeated events for the same date and period")
	domain.Findings = appendFinding(domain.Findings, "Inconsistent Status Codes", oddCodes, SeverityLow,
		"Status codes outside the single-letter convention")
	domain.Findings = appendFinding(domain.Findings, "Date Format Variation", dateFormat, SeverityLow,
		"Dates in different formats across records")
	return domain
}

func appendFinding(findings []Finding, kind string, count int, severity Severity, details string) []Finding {
	if count == 0 {
		return findings
	}
	return append(findings, Finding{Type: kind, Count: count, Severity: severity, Details: details})
}

func isShouting(value string) bool {
	trimmed := strings.TrimSpace(value)
	return len(trimmed) > 1 && trimmed == strings.ToUpper(trimmed) && trimmed != strings.ToLower(trimmed)
}

func isISODate(value string) bool {
	if _, err := time.Parse("2006-01-02", strings.TrimSpace(value)); err != nil {
		return false
	}
	return true
}

func isNullToken(value string) bool {
	switch strings.ToUpper(strings.TrimSpace(value)) {
	case "NULL", "N/A", "NONE", "NIL", "-":
		return true
	}
	return false
}

func gradeStudentID(rec canonical.Record) string {
	return firstRecordValue(rec, "STUDENT_ID", "student_id")
}

func firstRecordValue(rec canonical.Record, keys ...string) string {
	for _, key := range keys {
		if value := rec.Get(key); value != "" {
			return value
		}
	}
	return ""
}
