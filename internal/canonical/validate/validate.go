// Package validate checks legacy source records against the data quality
// rules records must satisfy before migration.
package validate

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/edusync/edusync/internal/canonical"
)

// Severity classifies how a validation finding affects migration.
type Severity string

// Severities. Errors must be fixed before migration, warnings should be
// reviewed, info findings are advisory.
const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// Result is a single validation finding on one field.
type Result struct {
	Field        string   `json:"field"`
	Message      string   `json:"message"`
	Severity     Severity `json:"severity"`
	Value        string   `json:"value,omitempty"`
	SuggestedFix string   `json:"suggested_fix,omitempty"`
	RuleID       string   `json:"rule_id"`
}

// Report collects the validation findings for one record.
type Report struct {
	RecordID   string    `json:"record_id"`
	RecordType string    `json:"record_type"`
	Results    []Result  `json:"results"`
	Timestamp  time.Time `json:"timestamp"`
}

// Add appends a finding to the report.
func (r *Report) Add(result Result) {
	if r == nil {
		return
	}
	r.Results = append(r.Results, result)
}

// IsValid reports whether the record is free of error findings.
func (r Report) IsValid() bool {
	return r.ErrorCount() == 0
}

// ErrorCount returns the number of error findings.
func (r Report) ErrorCount() int {
	return r.countBySeverity(SeverityError)
}

// WarningCount returns the number of warning findings.
func (r Report) WarningCount() int {
	return r.countBySeverity(SeverityWarning)
}

func (r Report) countBySeverity(severity Severity) int {
	count := 0
	for _, result := range r.Results {
		if result.Severity == severity {
			count++
		}
	}
	return count
}

var (
	emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	nonDigit     = regexp.MustCompile(`[^\d]`)
)

// Rule is a custom validation applied to a whole record.
type Rule func(canonical.Record) []Result

// Validator runs the built-in field rules plus any registered custom rules.
type Validator struct {
	customRules []Rule
	titler      cases.Caser
}

// New returns a Validator with the built-in rule set.
func New() *Validator {
	return &Validator{titler: cases.Title(language.AmericanEnglish)}
}

// AddRule registers a custom rule applied by every report builder.
func (v *Validator) AddRule(rule Rule) {
	if v == nil || rule == nil {
		return
	}
	v.customRules = append(v.customRules, rule)
}

// Email checks an email address. A nil result means the value passed.
func (v *Validator) Email(email, field string) *Result {
	if isNullish(email) {
		return &Result{
			Field:        field,
			Message:      "Missing email address",
			Severity:     SeverityWarning,
			Value:        email,
			SuggestedFix: "Add valid email address",
			RuleID:       "EMAIL_MISSING",
		}
	}
	if strings.Count(email, "@") > 1 {
		return &Result{
			Field:        field,
			Message:      "Invalid email: multiple @ symbols",
			Severity:     SeverityError,
			Value:        email,
			SuggestedFix: strings.ReplaceAll(email, "@@", "@"),
			RuleID:       "EMAIL_DOUBLE_AT",
		}
	}
	if !emailPattern.MatchString(email) {
		return &Result{
			Field:    field,
			Message:  "Invalid email format",
			Severity: SeverityError,
			Value:    email,
			RuleID:   "EMAIL_INVALID_FORMAT",
		}
	}
	return nil
}

// Phone checks a phone number holds at least ten digits.
func (v *Validator) Phone(phone, field string) *Result {
	if isNullish(phone) {
		return &Result{
			Field:    field,
			Message:  "Missing phone number",
			Severity: SeverityWarning,
			Value:    phone,
			RuleID:   "PHONE_MISSING",
		}
	}
	digits := nonDigit.ReplaceAllString(phone, "")
	if len(digits) < 10 {
		return &Result{
			Field:        field,
			Message:      "Phone number too short",
			Severity:     SeverityError,
			Value:        phone,
			SuggestedFix: fmt.Sprintf("Expected 10 digits, got %d", len(digits)),
			RuleID:       "PHONE_TOO_SHORT",
		}
	}
	return nil
}

// GradeLevel checks a grade level is numeric and between -1 (Pre-K) and 12.
func (v *Validator) GradeLevel(grade, field string) *Result {
	value, err := strconv.Atoi(strings.TrimSpace(grade))
	if err != nil {
		return &Result{
			Field:    field,
			Message:  fmt.Sprintf("Non-numeric grade level: %s", grade),
			Severity: SeverityError,
			Value:    grade,
			RuleID:   "GRADE_NOT_NUMERIC",
		}
	}
	if value < -1 || value > 12 {
		return &Result{
			Field:        field,
			Message:      fmt.Sprintf("Invalid grade level: %d", value),
			Severity:     SeverityError,
			Value:        grade,
			SuggestedFix: "Grade should be -1 (Pre-K) to 12",
			RuleID:       "GRADE_OUT_OF_RANGE",
		}
	}
	return nil
}

// GPA checks a GPA is numeric and within 0.0 to 5.0 (weighted ceiling).
func (v *Validator) GPA(gpa, field string) *Result {
	if isNullish(gpa) {
		return &Result{
			Field:    field,
			Message:  "Missing GPA",
			Severity: SeverityWarning,
			Value:    gpa,
			RuleID:   "GPA_MISSING",
		}
	}
	value, err := strconv.ParseFloat(strings.TrimSpace(gpa), 64)
	if err != nil {
		return &Result{
			Field:    field,
			Message:  fmt.Sprintf("Non-numeric GPA: %s", gpa),
			Severity: SeverityError,
			Value:    gpa,
			RuleID:   "GPA_NOT_NUMERIC",
		}
	}
	if value < 0 {
		return &Result{
			Field:        field,
			Message:      fmt.Sprintf("Negative GPA: %v", value),
			Severity:     SeverityError,
			Value:        gpa,
			SuggestedFix: "Replace with valid GPA (0.0-4.0)",
			RuleID:       "GPA_NEGATIVE",
		}
	}
	if value > 5.0 {
		return &Result{
			Field:        field,
			Message:      fmt.Sprintf("GPA exceeds maximum: %v", value),
			Severity:     SeverityError,
			Value:        gpa,
			SuggestedFix: "Maximum GPA is typically 4.0 (or 5.0 weighted)",
			RuleID:       "GPA_TOO_HIGH",
		}
	}
	return nil
}

// DateField checks a date parses and falls in a plausible year range.
func (v *Validator) DateField(value, field string) *Result {
	if isNullish(value) {
		return &Result{
			Field:    field,
			Message:  "Missing date",
			Severity: SeverityWarning,
			Value:    value,
			RuleID:   "DATE_MISSING",
		}
	}
	parsed, ok := canonical.ParseDate(value)
	if !ok {
		return &Result{
			Field:        field,
			Message:      fmt.Sprintf("Unrecognized date format: %s", value),
			Severity:     SeverityError,
			Value:        value,
			SuggestedFix: "Use YYYY-MM-DD format",
			RuleID:       "DATE_INVALID_FORMAT",
		}
	}
	if parsed.Year() < 1900 || parsed.Year() > 2100 {
		return &Result{
			Field:    field,
			Message:  fmt.Sprintf("Date year out of range: %d", parsed.Year()),
			Severity: SeverityError,
			Value:    value,
			RuleID:   "DATE_YEAR_INVALID",
		}
	}
	return nil
}

// Required checks a field carries a real value.
func (v *Validator) Required(value, field string) *Result {
	if isNullish(value) {
		return &Result{
			Field:    field,
			Message:  fmt.Sprintf("Required field missing: %s", field),
			Severity: SeverityError,
			Value:    value,
			RuleID:   "REQUIRED_MISSING",
		}
	}
	return nil
}

// Name flags whitespace and casing problems in a name field.
func (v *Validator) Name(name, field string) *Result {
	cleaned := strings.TrimSpace(name)
	if cleaned == "" {
		return &Result{
			Field:    field,
			Message:  "Missing name",
			Severity: SeverityError,
			Value:    name,
			RuleID:   "NAME_MISSING",
		}
	}
	if strings.Contains(cleaned, "  ") || cleaned != name {
		return &Result{
			Field:        field,
			Message:      "Name has whitespace issues",
			Severity:     SeverityWarning,
			Value:        name,
			SuggestedFix: strings.Join(strings.Fields(cleaned), " "),
			RuleID:       "NAME_WHITESPACE",
		}
	}
	if cleaned == strings.ToUpper(cleaned) || cleaned == strings.ToLower(cleaned) {
		return &Result{
			Field:        field,
			Message:      "Name casing may need normalization",
			Severity:     SeverityInfo,
			Value:        name,
			SuggestedFix: v.titler.String(strings.ToLower(cleaned)),
			RuleID:       "NAME_CASING",
		}
	}
	return nil
}

func isNullish(value string) bool {
	value = strings.ToUpper(strings.TrimSpace(value))
	return value == "" || value == "NULL" || value == "N/A" || value == "NONE"
}
