// Package enrollment normalizes academic calendars, terms and student
// enrollment spans from legacy source systems.
package enrollment

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

// TermType classifies an academic term.
type TermType string

// Term types.
const (
	TermYear         TermType = "year"
	TermSemester     TermType = "semester"
	TermTrimester    TermType = "trimester"
	TermQuarter      TermType = "quarter"
	TermSummer       TermType = "summer"
	TermIntersession TermType = "intersession"
)

// AcademicTerm is an academic term or session within a school year.
type AcademicTerm struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	TermType     TermType  `json:"term_type"`
	StartDate    time.Time `json:"start_date"`
	EndDate      time.Time `json:"end_date"`
	SchoolYear   string    `json:"school_year"`
	IsPrimary    bool      `json:"is_primary"`
	ParentTermID string    `json:"parent_term_id,omitempty"`
}

// DurationDays returns the term length in days, inclusive of both ends.
func (t AcademicTerm) DurationDays() int {
	return canonical.DaysBetween(t.StartDate, t.EndDate) + 1
}

// ContainsDate reports whether a date falls within the term.
func (t AcademicTerm) ContainsDate(day time.Time) bool {
	return !day.Before(t.StartDate) && !day.After(t.EndDate)
}

// OverlapsWith reports whether two terms share any days.
func (t AcademicTerm) OverlapsWith(other AcademicTerm) bool {
	return !t.StartDate.After(other.EndDate) && !other.StartDate.After(t.EndDate)
}

// termMappings crosswalks the term names legacy systems use to canonical
// names and types.
var termMappings = map[string]struct {
	Name string
	Type TermType
}{
	"fall":            {"Fall", TermSemester},
	"fall semester":   {"Fall", TermSemester},
	"fall sem":        {"Fall", TermSemester},
	"autumn":          {"Fall", TermSemester},
	"spring":          {"Spring", TermSemester},
	"spring semester": {"Spring", TermSemester},
	"spring sem":      {"Spring", TermSemester},
	"q1":              {"Quarter 1", TermQuarter},
	"q2":              {"Quarter 2", TermQuarter},
	"q3":              {"Quarter 3", TermQuarter},
	"q4":              {"Quarter 4", TermQuarter},
	"quarter 1":       {"Quarter 1", TermQuarter},
	"quarter 2":       {"Quarter 2", TermQuarter},
	"quarter 3":       {"Quarter 3", TermQuarter},
	"quarter 4":       {"Quarter 4", TermQuarter},
	"t1":              {"Trimester 1", TermTrimester},
	"t2":              {"Trimester 2", TermTrimester},
	"t3":              {"Trimester 3", TermTrimester},
	"tri1":            {"Trimester 1", TermTrimester},
	"tri2":            {"Trimester 2", TermTrimester},
	"tri3":            {"Trimester 3", TermTrimester},
	"year":            {"Full Year", TermYear},
	"full year":       {"Full Year", TermYear},
	"annual":          {"Full Year", TermYear},
	"summer":          {"Summer", TermSummer},
	"summer session":  {"Summer", TermSummer},
	"summer school":   {"Summer", TermSummer},
}

var (
	fullYearPattern  = regexp.MustCompile(`^\d{4}-\d{4}$`)
	startYearPattern = regexp.MustCompile(`^\d{4}$`)
	shortYearPattern = regexp.MustCompile(`^(\d{2})-(\d{2})$`)
)

// Calendar normalizes term and calendar data from legacy sources.
type Calendar struct {
	terms  map[string]AcademicTerm
	titler cases.Caser
}

// NewCalendar returns an empty calendar normalizer.
func NewCalendar() *Calendar {
	return &Calendar{terms: map[string]AcademicTerm{}, titler: cases.Title(language.AmericanEnglish)}
}

// NormalizeTermName maps a source term name to its canonical name and type.
// Unknown names are title-cased and assumed to be semesters.
func (c *Calendar) NormalizeTermName(term string) (string, TermType) {
	normalized := strings.ToLower(strings.TrimSpace(term))
	if mapping, ok := termMappings[normalized]; ok {
		return mapping.Name, mapping.Type
	}
	return c.titler.String(normalized), TermSemester
}

// ParseSchoolYear normalizes school year spellings to YYYY-YYYY. Values it
// cannot interpret come back unchanged.
func ParseSchoolYear(year string) string {
	year = strings.TrimSpace(year)

	if fullYearPattern.MatchString(year) {
		return year
	}
	if startYearPattern.MatchString(year) {
		start, _ := strconv.Atoi(year)
		return fmt.Sprintf("%d-%d", start, start+1)
	}
	if m := shortYearPattern.FindStringSubmatch(year); m != nil {
		century := "20"
		if start, _ := strconv.Atoi(m[1]); start >= 50 {
			century = "19"
		}
		return fmt.Sprintf("%s%s-%s%s", century, m[1], century, m[2])
	}
	return year
}

// StandardCalendar builds the standard term set for a school year. Semester
// calendars run Aug 15 to Dec 20 and Jan 5 to May 25; quarter calendars
// split those windows in four.
func (c *Calendar) StandardCalendar(schoolYear string, termType TermType) []AcademicTerm {
	parts := strings.Split(schoolYear, "-")
	startYear, _ := strconv.Atoi(parts[0])
	endYear := startYear + 1
	if len(parts) > 1 {
		if parsed, err := strconv.Atoi(parts[1]); err == nil {
			endYear = parsed
		}
	}

	var terms []AcademicTerm
	switch termType {
	case TermSemester:
		terms = []AcademicTerm{
			{
				ID:         schoolYear + "-FALL",
				Name:       "Fall",
				TermType:   TermSemester,
				StartDate:  canonical.Date(startYear, time.August, 15),
				EndDate:    canonical.Date(startYear, time.December, 20),
				SchoolYear: schoolYear,
			},
			{
				ID:         schoolYear + "-SPRING",
				Name:       "Spring",
				TermType:   TermSemester,
				StartDate:  canonical.Date(endYear, time.January, 5),
				EndDate:    canonical.Date(endYear, time.May, 25),
				SchoolYear: schoolYear,
			},
		}
	case TermQuarter:
		bounds := []struct {
			name       string
			start, end [2]int
		}{
			{"Quarter 1", [2]int{8, 15}, [2]int{10, 15}},
			{"Quarter 2", [2]int{10, 16}, [2]int{12, 20}},
			{"Quarter 3", [2]int{1, 5}, [2]int{3, 15}},
			{"Quarter 4", [2]int{3, 16}, [2]int{5, 25}},
		}
		for i, b := range bounds {
			year := startYear
			if i >= 2 {
				year = endYear
			}
			terms = append(terms, AcademicTerm{
				ID:         fmt.Sprintf("%s-Q%d", schoolYear, i+1),
				Name:       b.name,
				TermType:   TermQuarter,
				StartDate:  canonical.Date(year, time.Month(b.start[0]), b.start[1]),
				EndDate:    canonical.Date(year, time.Month(b.end[0]), b.end[1]),
				SchoolYear: schoolYear,
			})
		}
	}

	for _, term := range terms {
		c.terms[term.ID] = term
	}
	return terms
}

// CrosswalkTerm maps a source term onto a target calendar term by canonical
// name, falling back to a substring match.
func (c *Calendar) CrosswalkTerm(sourceTerm string, targetCalendar []AcademicTerm) (AcademicTerm, bool) {
	canonicalName, _ := c.NormalizeTermName(sourceTerm)
	for _, term := range targetCalendar {
		if strings.EqualFold(term.Name, canonicalName) {
			return term, true
		}
	}

	sourceLower := strings.ToLower(sourceTerm)
	for _, term := range targetCalendar {
		nameLower := strings.ToLower(term.Name)
		if strings.Contains(nameLower, sourceLower) || strings.Contains(sourceLower, nameLower) {
			return term, true
		}
	}
	return AcademicTerm{}, false
}
