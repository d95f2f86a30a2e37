// Package reconcile verifies migrated data against its sources. It runs
// count, referential, completeness, sampling, and hash checks, and bundles
// the outcomes into evidence packs suitable for sign-off.
package reconcile

import "time"

// Status reports the outcome of a single check.
type Status string

const (
	StatusPassed  Status = "passed"
	StatusFailed  Status = "failed"
	StatusWarning Status = "warning"
	StatusSkipped Status = "skipped"
)

// Category groups checks by the property they verify.
type Category string

const (
	CategoryCount        Category = "count"
	CategoryReferential  Category = "referential"
	CategoryCompleteness Category = "completeness"
	CategorySampling     Category = "sampling"
	CategoryIntegrity    Category = "integrity"
)

// Check describes a verification to run against migrated data. Blocking
// checks stop a migration from completing when they fail.
type Check struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Category    Category `json:"category"`
	Description string   `json:"description"`
	Threshold   float64  `json:"threshold"`
	Blocking    bool     `json:"is_blocking"`
}

// Result is the outcome of running one Check.
type Result struct {
	CheckID     string         `json:"check_id"`
	CheckName   string         `json:"check_name"`
	Category    Category       `json:"category"`
	Status      Status         `json:"status"`
	Message     string         `json:"message"`
	SourceValue any            `json:"source_value,omitempty"`
	TargetValue any            `json:"target_value,omitempty"`
	Threshold   float64        `json:"threshold,omitempty"`
	ActualValue float64        `json:"actual_value,omitempty"`
	Details     map[string]any `json:"details,omitempty"`
	Timestamp   time.Time      `json:"timestamp"`
}

// defaultChecks is the standard verification suite. Count checks for grades
// and attendance allow a 1% variance to absorb deduplication; the rest
// demand an exact match.
func defaultChecks() []Check {
	return []Check{
		{
			ID:          "count_students",
			Name:        "Student Count Match",
			Category:    CategoryCount,
			Description: "Verify source and target student counts match",
			Threshold:   1.0,
			Blocking:    true,
		},
		{
			ID:          "count_guardians",
			Name:        "Guardian Count Match",
			Category:    CategoryCount,
			Description: "Verify source and target guardian counts match",
			Threshold:   1.0,
		},
		{
			ID:          "count_enrollments",
			Name:        "Enrollment Count Match",
			Category:    CategoryCount,
			Description: "Verify enrollment record counts match",
			Threshold:   1.0,
		},
		{
			ID:          "count_grades",
			Name:        "Grade Record Count Match",
			Category:    CategoryCount,
			Description: "Verify grade record counts match",
			Threshold:   0.99,
		},
		{
			ID:          "count_attendance",
			Name:        "Attendance Record Count Match",
			Category:    CategoryCount,
			Description: "Verify attendance record counts match",
			Threshold:   0.99,
		},
		{
			ID:          "ref_enrollment_student",
			Name:        "Enrollment-Student Reference",
			Category:    CategoryReferential,
			Description: "All enrollments reference valid students",
			Threshold:   1.0,
			Blocking:    true,
		},
		{
			ID:          "ref_grade_student",
			Name:        "Grade-Student Reference",
			Category:    CategoryReferential,
			Description: "All grades reference valid students",
			Threshold:   1.0,
			Blocking:    true,
		},
		{
			ID:          "ref_attendance_student",
			Name:        "Attendance-Student Reference",
			Category:    CategoryReferential,
			Description: "All attendance records reference valid students",
			Threshold:   1.0,
			Blocking:    true,
		},
		{
			ID:          "ref_guardian_student",
			Name:        "Guardian-Student Relationship",
			Category:    CategoryReferential,
			Description: "All guardian relationships reference valid students",
			Threshold:   1.0,
		},
		{
			ID:          "complete_student_guardian",
			Name:        "Student Guardian Coverage",
			Category:    CategoryCompleteness,
			Description: "99.5%+ students have at least one guardian",
			Threshold:   0.995,
		},
		{
			ID:          "complete_student_contact",
			Name:        "Student Contact Info",
			Category:    CategoryCompleteness,
			Description: "99%+ students have contact information",
			Threshold:   0.99,
		},
		{
			ID:          "complete_student_enrollment",
			Name:        "Student Enrollment",
			Category:    CategoryCompleteness,
			Description: "All students have at least one enrollment",
			Threshold:   1.0,
		},
		{
			ID:          "sample_student_data",
			Name:        "Student Data Sampling",
			Category:    CategorySampling,
			Description: "Random sample verification of student records",
			Threshold:   0.99,
		},
		{
			ID:          "sample_grade_data",
			Name:        "Grade Data Sampling",
			Category:    CategorySampling,
			Description: "Random sample verification of grade records",
			Threshold:   0.99,
		},
		{
			ID:          "integrity_hash",
			Name:        "Data Hash Verification",
			Category:    CategoryIntegrity,
			Description: "Verify data integrity via hash comparison",
			Threshold:   1.0,
			Blocking:    true,
		},
	}
}
