package validate

import (
	"testing"

	"github.com/edusync/edusync/internal/canonical"
)

func findRule(t *testing.T, report *Report, ruleID string) *Result {
	t.Helper()
	for i := range report.Results {
		if report.Results[i].RuleID == ruleID {
			return &report.Results[i]
		}
	}
	return nil
}

func TestEmail(t *testing.T) {
	t.Parallel()
	v := New()

	tests := []struct {
		name     string
		email    string
		wantRule string
	}{
		{"valid", "maria.garcia@example.com", ""},
		{"missing", "", "EMAIL_MISSING"},
		{"null token", "NULL", "EMAIL_MISSING"},
		{"double at", "maria@@example.com", "EMAIL_DOUBLE_AT"},
		{"no domain", "maria.garcia", "EMAIL_INVALID_FORMAT"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			result := v.Email(tc.email, "email")
			if tc.wantRule == "" {
				if result != nil {
					t.Fatalf("Email(%q) = %+v, want nil", tc.email, result)
				}
				return
			}
			if result == nil || result.RuleID != tc.wantRule {
				t.Fatalf("Email(%q) = %+v, want rule %s", tc.email, result, tc.wantRule)
			}
		})
	}
}

func TestEmailDoubleAtSuggestsFix(t *testing.T) {
	t.Parallel()
	v := New()

	result := v.Email("maria@@example.com", "email")
	if result == nil || result.SuggestedFix != "maria@example.com" {
		t.Fatalf("expected collapsed @@ suggestion, got %+v", result)
	}
}

func TestPhone(t *testing.T) {
	t.Parallel()
	v := New()

	if result := v.Phone("(555) 123-4567", "phone"); result != nil {
		t.Fatalf("valid phone flagged: %+v", result)
	}
	if result := v.Phone("555-1234", "phone"); result == nil || result.RuleID != "PHONE_TOO_SHORT" {
		t.Fatalf("short phone = %+v, want PHONE_TOO_SHORT", result)
	}
	if result := v.Phone("N/A", "phone"); result == nil || result.Severity != SeverityWarning {
		t.Fatalf("missing phone = %+v, want warning", result)
	}
}

func TestGradeLevel(t *testing.T) {
	t.Parallel()
	v := New()

	if result := v.GradeLevel("-1", "grade"); result != nil {
		t.Fatalf("pre-K grade flagged: %+v", result)
	}
	if result := v.GradeLevel("13", "grade"); result == nil || result.RuleID != "GRADE_OUT_OF_RANGE" {
		t.Fatalf("grade 13 = %+v, want GRADE_OUT_OF_RANGE", result)
	}
	if result := v.GradeLevel("tenth", "grade"); result == nil || result.RuleID != "GRADE_NOT_NUMERIC" {
		t.Fatalf("verbal grade = %+v, want GRADE_NOT_NUMERIC", result)
	}
}

func TestGPA(t *testing.T) {
	t.Parallel()
	v := New()

	if result := v.GPA("3.85", "gpa"); result != nil {
		t.Fatalf("valid gpa flagged: %+v", result)
	}
	if result := v.GPA("4.8", "gpa"); result != nil {
		t.Fatalf("weighted gpa flagged: %+v", result)
	}
	if result := v.GPA("-0.5", "gpa"); result == nil || result.RuleID != "GPA_NEGATIVE" {
		t.Fatalf("negative gpa = %+v, want GPA_NEGATIVE", result)
	}
	if result := v.GPA("5.5", "gpa"); result == nil || result.RuleID != "GPA_TOO_HIGH" {
		t.Fatalf("high gpa = %+v, want GPA_TOO_HIGH", result)
	}
}

func TestDateField(t *testing.T) {
	t.Parallel()
	v := New()

	if result := v.DateField("2023-08-15", "start_date"); result != nil {
		t.Fatalf("valid date flagged: %+v", result)
	}
	if result := v.DateField("soon", "start_date"); result == nil || result.RuleID != "DATE_INVALID_FORMAT" {
		t.Fatalf("bad date = %+v, want DATE_INVALID_FORMAT", result)
	}
	if result := v.DateField("1850-01-01", "start_date"); result == nil || result.RuleID != "DATE_YEAR_INVALID" {
		t.Fatalf("ancient date = %+v, want DATE_YEAR_INVALID", result)
	}
}

func TestName(t *testing.T) {
	t.Parallel()
	v := New()

	if result := v.Name("Maria Garcia", "first_name"); result != nil {
		t.Fatalf("clean name flagged: %+v", result)
	}
	result := v.Name("  maria  garcia ", "first_name")
	if result == nil || result.RuleID != "NAME_WHITESPACE" {
		t.Fatalf("messy name = %+v, want NAME_WHITESPACE", result)
	}
	if result.SuggestedFix != "maria garcia" {
		t.Fatalf("whitespace fix = %q", result.SuggestedFix)
	}

	result = v.Name("MARIA", "first_name")
	if result == nil || result.RuleID != "NAME_CASING" {
		t.Fatalf("shouting name = %+v, want NAME_CASING", result)
	}
	if result.SuggestedFix != "Maria" {
		t.Fatalf("casing fix = %q", result.SuggestedFix)
	}
}

func TestStudentReport(t *testing.T) {
	t.Parallel()
	v := New()

	report := v.StudentReport(canonical.Record{
		"student_id": "S-1001",
		"first_name": "MARIA",
		"last_name":  "Garcia",
		"email":      "maria@@example.com",
		"grade":      "9",
		"gpa":        "3.7",
	})
	if report.RecordID != "S-1001" || report.RecordType != "student" {
		t.Fatalf("report identity = %s/%s", report.RecordID, report.RecordType)
	}
	if report.IsValid() {
		t.Fatal("expected email error to invalidate the record")
	}
	if findRule(t, report, "EMAIL_DOUBLE_AT") == nil {
		t.Fatal("expected EMAIL_DOUBLE_AT finding")
	}
	if findRule(t, report, "NAME_CASING") == nil {
		t.Fatal("expected NAME_CASING finding")
	}
}

func TestStudentReportMissingRequired(t *testing.T) {
	t.Parallel()
	v := New()

	report := v.StudentReport(canonical.Record{"first_name": "Maria"})
	if report.RecordID != "unknown" {
		t.Fatalf("record id = %q, want unknown", report.RecordID)
	}
	if report.ErrorCount() < 2 {
		t.Fatalf("error count = %d, want at least 2 required-field errors", report.ErrorCount())
	}
}

func TestGuardianReportFlagsUnlinkedGuardian(t *testing.T) {
	t.Parallel()
	v := New()

	report := v.GuardianReport(canonical.Record{
		"guardian_id": "G-1",
		"first_name":  "Carlos",
		"last_name":   "Garcia",
	})
	if !report.IsValid() {
		t.Fatalf("expected valid report, errors: %+v", report.Results)
	}
	if findRule(t, report, "GUARDIAN_NO_STUDENTS") == nil {
		t.Fatal("expected GUARDIAN_NO_STUDENTS warning")
	}
}

func TestGradeReportNonStandardGrade(t *testing.T) {
	t.Parallel()
	v := New()

	report := v.GradeReport(canonical.Record{
		"STUDENT_ID":  "S-1",
		"COURSE_CODE": "MATH101",
		"COURSE_NAME": "Algebra I",
		"GRADE":       "Excellent",
	})
	if report.RecordID != "S-1-MATH101" {
		t.Fatalf("record id = %q", report.RecordID)
	}
	if findRule(t, report, "GRADE_NONSTANDARD") == nil {
		t.Fatal("expected GRADE_NONSTANDARD warning")
	}
}

func TestCustomRulesRun(t *testing.T) {
	t.Parallel()
	v := New()
	v.AddRule(func(record canonical.Record) []Result {
		if record.Get("district") == "" {
			return []Result{{Field: "district", Message: "Missing district", Severity: SeverityInfo, RuleID: "DISTRICT_MISSING"}}
		}
		return nil
	})

	report := v.StudentReport(canonical.Record{
		"student_id": "S-1",
		"first_name": "Maria",
		"last_name":  "Garcia",
	})
	if findRule(t, report, "DISTRICT_MISSING") == nil {
		t.Fatal("expected custom rule finding")
	}
}
