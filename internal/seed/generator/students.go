package generator

import (
	"fmt"
	"strings"
	"time"

	"github.com/edusync/edusync/internal/canonical"
)

var nullTokens = []string{"NULL", "N/A", "NONE", ""}

var dateFormats = []string{"2006-01-02", "01/02/2006", "02-Jan-2006", "January 2, 2006"}

// generateStudent builds one student row as the legacy SIS would export it,
// with a chance of casing, whitespace, and null-token defects.
func (g *Generator) generateStudent(index int, cfg PresetConfig) canonical.Record {
	first := g.pick(firstNames)
	last := g.pick(lastNames)
	id := fmt.Sprintf("%d", 1001+index)

	year := 2006 + g.rng.Intn(6)
	dob := canonical.Date(year, time.Month(1+g.rng.Intn(12)), 1+g.rng.Intn(28))
	grade := 2024 - year - 6

	email := fmt.Sprintf("%s.%s@school.edu", strings.ToLower(first), strings.ToLower(last))
	phone := fmt.Sprintf("555-%04d", g.rng.Intn(10000))

	rec := canonical.Record{
		"student_id":      id,
		"first_name":      first,
		"last_name":       last,
		"date_of_birth":   dob.Format("2006-01-02"),
		"email":           email,
		"phone":           phone,
		"grade":           fmt.Sprintf("%d", grade),
		"gpa":             fmt.Sprintf("%.2f", 2.0+g.rng.Float64()*2.0),
		"enrollment_date": fmt.Sprintf("2023-08-%02d", 15+g.rng.Intn(10)),
		"status":          "Active",
		"state_id":        fmt.Sprintf("TX-%05d", 10000+index),
	}

	if g.messy(cfg) {
		switch g.rng.Intn(6) {
		case 0:
			rec["first_name"] = strings.ToUpper(first)
			rec["last_name"] = strings.ToUpper(last)
		case 1:
			rec["first_name"] = "  " + first + " "
		case 2:
			rec["email"] = strings.Replace(email, "@", "@@", 1)
		case 3:
			rec["phone"] = g.pick(nullTokens)
		case 4:
			rec["date_of_birth"] = dob.Format(g.pick(dateFormats))
		case 5:
			rec["gpa"] = g.pick(nullTokens)
		}
	}
	return rec
}

// duplicateStudent re-emits a student as a second source would report it:
// a different row ID, reformatted fields, same identity underneath.
func (g *Generator) duplicateStudent(student canonical.Record) canonical.Record {
	dup := student.Clone()
	dup["student_id"] = "D-" + student.Get("student_id")
	dup["first_name"] = strings.ToUpper(student.Get("first_name"))
	dup["last_name"] = strings.ToUpper(student.Get("last_name"))
	if dob, ok := canonical.ParseDate(student.Get("date_of_birth")); ok {
		dup["date_of_birth"] = dob.Format("01/02/2006")
	}
	dup["phone"] = strings.ReplaceAll(student.Get("phone"), "-", "")
	return dup
}

// generateGuardian builds a guardian row linked to a student. Guardians
// usually share the student's surname; the first listed gets priority 1.
func (g *Generator) generateGuardian(student canonical.Record, studentIndex, guardianIndex int) canonical.Record {
	first := g.pick(firstNames)
	last := student.Get("last_name")
	if g.rng.Intn(4) == 0 {
		last = g.pick(lastNames)
	}

	return canonical.Record{
		"guardian_id":  fmt.Sprintf("G-%d-%d", 1001+studentIndex, guardianIndex+1),
		"first_name":   first,
		"last_name":    last,
		"email":        fmt.Sprintf("%s.%s@example.com", strings.ToLower(first), strings.ToLower(last)),
		"phone":        fmt.Sprintf("555-%04d", g.rng.Intn(10000)),
		"relationship": g.pick(relationships),
		"custody":      g.pick(custodyTypes),
		"student_ids":  student.Get("student_id"),
		"priority":     fmt.Sprintf("%d", guardianIndex+1),
	}
}
