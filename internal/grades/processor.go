package grades

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/edusync/edusync/internal/canonical"
)

// Record is a normalized grade for one course attempt.
type Record struct {
	ID               string  `json:"id"`
	StudentID        string  `json:"student_id"`
	CourseCode       string  `json:"course_code"`
	CourseName       string  `json:"course_name"`
	Term             string  `json:"term"`
	SchoolYear       string  `json:"school_year"`
	RawGrade         string  `json:"raw_grade"`
	LetterGrade      string  `json:"letter_grade,omitempty"`
	NumericGrade     float64 `json:"numeric_grade,omitempty"`
	HasNumericGrade  bool    `json:"-"`
	CreditsAttempted float64 `json:"credits_attempted"`
	CreditsEarned    float64 `json:"credits_earned"`
	GradePoints      float64 `json:"grade_points"`
	IsWeighted       bool    `json:"is_weighted"`
	IsHonors         bool    `json:"is_honors"`
	IsAP             bool    `json:"is_ap"`
	InstructorName   string  `json:"instructor_name,omitempty"`
	Status           Status  `json:"status"`
	SourceSystem     string  `json:"source_system,omitempty"`
}

// Issue records a problem found while processing grades.
type Issue struct {
	Type       string `json:"type"`
	StudentID  string `json:"student_id"`
	CourseCode string `json:"course_code"`
	Term       string `json:"term,omitempty"`
	RawGrade   string `json:"raw_grade,omitempty"`
}

// Processor normalizes grade data from legacy sources.
type Processor struct {
	grades      map[string][]Record
	issues      []Issue
	transcripts map[string]*Transcript
	titler      cases.Caser
}

// NewProcessor returns an empty grade processor.
func NewProcessor() *Processor {
	return &Processor{
		grades:      map[string][]Record{},
		transcripts: map[string]*Transcript{},
		titler:      cases.Title(language.AmericanEnglish),
	}
}

// Process normalizes a raw grade record. The raw value is translated onto
// the letter scale, credits parsed, and honors/AP weighting inferred from
// the course name. Untranslatable grades are logged as issues.
func (p *Processor) Process(record canonical.Record, source string) Record {
	studentID := firstOf(record, "STUDENT_ID", "student_id")
	rawGrade := firstOf(record, "GRADE", "grade")

	var letterGrade string
	var numericGrade float64
	hasNumeric := false

	switch DetectGradeType(rawGrade) {
	case canonical.ScalePercentage:
		if value, err := strconv.ParseFloat(strings.TrimSuffix(strings.TrimSpace(rawGrade), "%"), 64); err == nil {
			letterGrade = PercentageToLetter(value)
			numericGrade = value
			hasNumeric = true
		}
	case canonical.ScaleNumeric:
		if value, err := strconv.ParseFloat(strings.TrimSpace(rawGrade), 64); err == nil {
			letterGrade = NumericToLetter(value)
			numericGrade = value
			hasNumeric = true
		}
	default:
		if normalized, ok := NormalizeLetterGrade(rawGrade); ok {
			letterGrade = normalized
			if points, ok := canonical.LetterGradePoints(normalized); ok {
				numericGrade = points
				hasNumeric = true
			}
		}
	}

	gradePoints := 0.0
	if letterGrade != "" {
		if points, ok := LetterToPoints(letterGrade); ok {
			gradePoints = points
		}
	}

	credits := 0.0
	if value, err := strconv.ParseFloat(firstOf(record, "CREDITS", "credits"), 64); err == nil {
		credits = value
	}

	courseName := firstOf(record, "COURSE_NAME", "course_name")
	upperName := strings.ToUpper(courseName)
	isHonors := strings.Contains(upperName, "HONORS") || strings.Contains(upperName, "HON")
	isAP := strings.Contains(upperName, "AP ") || strings.HasPrefix(upperName, "AP")

	term := p.titler.String(strings.ToLower(firstOf(record, "SEMESTER", "term")))
	courseCode := strings.ToUpper(firstOf(record, "COURSE_CODE", "course_code"))
	if courseCode == "" {
		courseCode = "UNKNOWN"
	}

	grade := Record{
		ID:               fmt.Sprintf("%s-%s-%s", studentID, courseCode, term),
		StudentID:        studentID,
		CourseCode:       courseCode,
		CourseName:       p.titler.String(strings.ToLower(courseName)),
		Term:             term,
		SchoolYear:       firstOf(record, "YEAR", "year"),
		RawGrade:         rawGrade,
		LetterGrade:      letterGrade,
		NumericGrade:     numericGrade,
		HasNumericGrade:  hasNumeric,
		CreditsAttempted: credits,
		GradePoints:      gradePoints,
		IsWeighted:       isHonors || isAP,
		IsHonors:         isHonors,
		IsAP:             isAP,
		InstructorName:   p.titler.String(strings.ToLower(firstOf(record, "INSTRUCTOR", "instructor"))),
		Status:           StatusFinal,
		SourceSystem:     source,
	}
	if letterGrade != "" && letterGrade != "F" && letterGrade != "I" && letterGrade != "W" {
		grade.CreditsEarned = credits
	}

	if letterGrade == "" && rawGrade != "" {
		p.issues = append(p.issues, Issue{
			Type:       "invalid_grade",
			StudentID:  studentID,
			CourseCode: grade.CourseCode,
			RawGrade:   rawGrade,
		})
	}

	p.grades[studentID] = append(p.grades[studentID], grade)
	return grade
}

// FindDuplicates returns grade pairs for the same course, term and year and
// logs each as an issue.
func (p *Processor) FindDuplicates(studentID string) [][2]Record {
	var duplicates [][2]Record
	grades := p.grades[studentID]
	for i, a := range grades {
		for _, b := range grades[i+1:] {
			if a.CourseCode == b.CourseCode && a.Term == b.Term && a.SchoolYear == b.SchoolYear {
				duplicates = append(duplicates, [2]Record{a, b})
				p.issues = append(p.issues, Issue{
					Type:       "duplicate_grade",
					StudentID:  studentID,
					CourseCode: a.CourseCode,
					Term:       a.Term,
				})
			}
		}
	}
	return duplicates
}

// Grades returns the processed grades for a student.
func (p *Processor) Grades(studentID string) []Record {
	return p.grades[studentID]
}

// StudentIDs returns every student with processed grades.
func (p *Processor) StudentIDs() []string {
	ids := make([]string, 0, len(p.grades))
	for id := range p.grades {
		ids = append(ids, id)
	}
	return ids
}

// Issues returns every issue logged so far.
func (p *Processor) Issues() []Issue {
	return p.issues
}

func firstOf(record canonical.Record, keys ...string) string {
	for _, key := range keys {
		if value := record.Get(key); value != "" {
			return value
		}
	}
	return ""
}
