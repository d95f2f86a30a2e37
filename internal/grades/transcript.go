package grades

import (
	"fmt"
	"math"
	"sort"
)

// Entry is a transcript line combining course and grade information.
type Entry struct {
	CourseCode       string  `json:"course_code"`
	CourseName       string  `json:"course_name"`
	Term             string  `json:"term"`
	SchoolYear       string  `json:"school_year"`
	LetterGrade      string  `json:"letter_grade"`
	CreditsAttempted float64 `json:"credits_attempted"`
	CreditsEarned    float64 `json:"credits_earned"`
	GradePoints      float64 `json:"grade_points"`
	IsWeighted       bool    `json:"is_weighted"`
}

// QualityPoints returns the entry's contribution to GPA numerators.
func (e Entry) QualityPoints() float64 {
	return e.GradePoints * e.CreditsAttempted
}

// Transcript is a student's complete course history with GPAs.
type Transcript struct {
	StudentID             string  `json:"student_id"`
	Entries               []Entry `json:"entries"`
	CumulativeGPA         float64 `json:"cumulative_gpa"`
	WeightedGPA           float64 `json:"weighted_gpa"`
	TotalCreditsAttempted float64 `json:"total_credits_attempted"`
	TotalCreditsEarned    float64 `json:"total_credits_earned"`
}

// CalculateGPA recomputes the cumulative and weighted GPA from the entries.
// Weighted entries contribute a half point bonus. Both values round to three
// decimals.
func (t *Transcript) CalculateGPA() (float64, float64) {
	if t == nil || len(t.Entries) == 0 {
		return 0, 0
	}

	var qualityPoints, weightedQualityPoints, totalCredits float64
	for _, entry := range t.Entries {
		if entry.CreditsAttempted <= 0 {
			continue
		}
		qualityPoints += entry.GradePoints * entry.CreditsAttempted
		bonus := 0.0
		if entry.IsWeighted {
			bonus = 0.5
		}
		weightedQualityPoints += (entry.GradePoints + bonus) * entry.CreditsAttempted
		totalCredits += entry.CreditsAttempted
	}

	t.TotalCreditsAttempted = totalCredits
	if totalCredits > 0 {
		t.CumulativeGPA = round3(qualityPoints / totalCredits)
		t.WeightedGPA = round3(weightedQualityPoints / totalCredits)
	} else {
		t.CumulativeGPA = 0
		t.WeightedGPA = 0
	}
	return t.CumulativeGPA, t.WeightedGPA
}

// GPASummary is a compact transcript summary.
type GPASummary struct {
	StudentID     string  `json:"student_id"`
	CumulativeGPA float64 `json:"cumulative_gpa"`
	WeightedGPA   float64 `json:"weighted_gpa"`
	TotalCredits  float64 `json:"total_credits"`
	CreditsEarned float64 `json:"credits_earned"`
	CourseCount   int     `json:"course_count"`
}

// Stats summarizes grade processing.
type Stats struct {
	Students         int `json:"total_students"`
	Grades           int `json:"total_grades"`
	TranscriptsBuilt int `json:"transcripts_built"`
	IssuesFound      int `json:"issues_found"`
	InvalidGrades    int `json:"invalid_grades"`
	DuplicateGrades  int `json:"duplicate_grades"`
}

// TranscriptBuilder assembles official transcripts from processed grades.
type TranscriptBuilder struct {
	processor *Processor
}

// NewTranscriptBuilder returns a builder over the given processor.
func NewTranscriptBuilder(processor *Processor) *TranscriptBuilder {
	return &TranscriptBuilder{processor: processor}
}

// Build assembles a student's transcript. Duplicate course attempts collapse
// to the highest grade; only final grades with a letter make the transcript.
func (b *TranscriptBuilder) Build(studentID string) *Transcript {
	transcript := &Transcript{StudentID: studentID}

	unique := map[string]Record{}
	var order []string
	for _, grade := range b.processor.Grades(studentID) {
		key := fmt.Sprintf("%s-%s-%s", grade.CourseCode, grade.Term, grade.SchoolYear)
		existing, seen := unique[key]
		if !seen {
			unique[key] = grade
			order = append(order, key)
		} else if grade.GradePoints > existing.GradePoints {
			unique[key] = grade
		}
	}

	for _, key := range order {
		grade := unique[key]
		if grade.Status != StatusFinal || grade.LetterGrade == "" {
			continue
		}
		entry := Entry{
			CourseCode:       grade.CourseCode,
			CourseName:       grade.CourseName,
			Term:             grade.Term,
			SchoolYear:       grade.SchoolYear,
			LetterGrade:      grade.LetterGrade,
			CreditsAttempted: grade.CreditsAttempted,
			CreditsEarned:    grade.CreditsEarned,
			GradePoints:      grade.GradePoints,
			IsWeighted:       grade.IsWeighted,
		}
		transcript.Entries = append(transcript.Entries, entry)
		transcript.TotalCreditsEarned += entry.CreditsEarned
	}

	transcript.CalculateGPA()
	b.processor.transcripts[studentID] = transcript
	return transcript
}

// GPASummary returns the GPA summary, building the transcript if needed.
func (b *TranscriptBuilder) GPASummary(studentID string) GPASummary {
	transcript, ok := b.processor.transcripts[studentID]
	if !ok {
		transcript = b.Build(studentID)
	}
	return GPASummary{
		StudentID:     studentID,
		CumulativeGPA: transcript.CumulativeGPA,
		WeightedGPA:   transcript.WeightedGPA,
		TotalCredits:  transcript.TotalCreditsAttempted,
		CreditsEarned: transcript.TotalCreditsEarned,
		CourseCount:   len(transcript.Entries),
	}
}

// Stats returns grade processing statistics.
func (b *TranscriptBuilder) Stats() Stats {
	stats := Stats{
		Students:         len(b.processor.grades),
		TranscriptsBuilt: len(b.processor.transcripts),
		IssuesFound:      len(b.processor.issues),
	}
	for _, grades := range b.processor.grades {
		stats.Grades += len(grades)
	}
	for _, issue := range b.processor.issues {
		switch issue.Type {
		case "invalid_grade":
			stats.InvalidGrades++
		case "duplicate_grade":
			stats.DuplicateGrades++
		}
	}
	return stats
}

// Transcripts returns every built transcript ordered by student ID.
func (b *TranscriptBuilder) Transcripts() []*Transcript {
	out := make([]*Transcript, 0, len(b.processor.transcripts))
	for _, transcript := range b.processor.transcripts {
		out = append(out, transcript)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StudentID < out[j].StudentID })
	return out
}

func round3(value float64) float64 {
	return math.Round(value*1000) / 1000
}
