// Package grades normalizes grade data across scales and builds student
// transcripts with unweighted and weighted GPAs.
package grades

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/edusync/edusync/internal/canonical"
)

// Status classifies a grade record's lifecycle state.
type Status string

// Grade statuses.
const (
	StatusFinal      Status = "final"
	StatusInProgress Status = "in_progress"
	StatusIncomplete Status = "incomplete"
	StatusWithdrawn  Status = "withdrawn"
	StatusTransfer   Status = "transfer"
)

var letterGradePattern = regexp.MustCompile(`^[A-F][+-]?$`)

// gradeLadder is a descending threshold table mapping values to letters.
type gradeLadder []struct {
	threshold float64
	letter    string
}

var percentageLadder = gradeLadder{
	{97, "A+"}, {93, "A"}, {90, "A-"},
	{87, "B+"}, {83, "B"}, {80, "B-"},
	{77, "C+"}, {73, "C"}, {70, "C-"},
	{67, "D+"}, {63, "D"}, {60, "D-"},
	{0, "F"},
}

var numericLadder = gradeLadder{
	{4.0, "A"}, {3.7, "A-"},
	{3.3, "B+"}, {3.0, "B"}, {2.7, "B-"},
	{2.3, "C+"}, {2.0, "C"}, {1.7, "C-"},
	{1.3, "D+"}, {1.0, "D"}, {0.7, "D-"},
	{0, "F"},
}

func (l gradeLadder) letterFor(value float64) string {
	for _, step := range l {
		if value >= step.threshold {
			return step.letter
		}
	}
	return "F"
}

// letterVariations maps verbal and single-letter spellings onto standard
// letters.
var letterVariations = map[string]string{
	"A PLUS": "A+", "A MINUS": "A-",
	"B PLUS": "B+", "B MINUS": "B-",
	"C PLUS": "C+", "C MINUS": "C-",
	"D PLUS": "D+", "D MINUS": "D-",
	"PASS": "P", "FAIL": "F",
	"SATISFACTORY": "P", "UNSATISFACTORY": "F",
	"S": "P", "U": "F",
}

var passFailValues = map[string]bool{
	"P": true, "NP": true, "PASS": true, "FAIL": true, "S": true, "U": true,
}

// DetectGradeType classifies a raw grade value by its shape. Values between
// 0 and 5 read as numeric, 0 to 100 as percentage.
func DetectGradeType(grade string) canonical.GradeScale {
	grade = strings.ToUpper(strings.TrimSpace(grade))
	if grade == "" || grade == "NULL" || grade == "N/A" {
		return canonical.ScaleLetter
	}
	if letterGradePattern.MatchString(grade) {
		return canonical.ScaleLetter
	}
	if passFailValues[grade] {
		return canonical.ScalePassFail
	}
	if value, err := strconv.ParseFloat(strings.TrimSuffix(grade, "%"), 64); err == nil {
		if value >= 0 && value <= 5 {
			return canonical.ScaleNumeric
		}
		if value >= 0 && value <= 100 {
			return canonical.ScalePercentage
		}
	}
	return canonical.ScaleLetter
}

// NormalizeLetterGrade maps a raw letter grade, including verbal variants,
// onto its standard form. Unrecognized values return ok=false.
func NormalizeLetterGrade(grade string) (string, bool) {
	grade = strings.ToUpper(strings.TrimSpace(grade))
	if grade == "" || grade == "NULL" || grade == "N/A" {
		return "", false
	}
	if standard, ok := letterVariations[grade]; ok {
		return standard, true
	}
	if letterGradePattern.MatchString(grade) {
		return grade, true
	}
	return "", false
}

// PercentageToLetter converts a percentage to a letter grade.
func PercentageToLetter(percentage float64) string {
	return percentageLadder.letterFor(percentage)
}

// NumericToLetter converts a 4.0-scale value to a letter grade.
func NumericToLetter(numeric float64) string {
	return numericLadder.letterFor(numeric)
}

// LetterToPoints converts a letter grade to grade points on the shared
// canonical scale. Pass/fail and incomplete letters return ok=false since
// they carry no GPA impact.
func LetterToPoints(letter string) (float64, bool) {
	normalized, ok := NormalizeLetterGrade(letter)
	if !ok {
		return 0, false
	}
	return canonical.LetterGradePoints(normalized)
}
