package enrollment

import (
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/edusync/edusync/internal/canonical"
)

// Gaps shorter than this between consecutive enrollments are not flagged.
const gapThresholdDays = 5

// Issue records an overlap or gap found between two spans.
type Issue struct {
	Type        string `json:"type"`
	StudentID   string `json:"student_id"`
	Enrollment1 string `json:"enrollment1"`
	Enrollment2 string `json:"enrollment2"`
	Days        int    `json:"days"`
}

// Stats summarizes enrollment processing.
type Stats struct {
	Students    int `json:"total_students"`
	Enrollments int `json:"total_enrollments"`
	IssuesFound int `json:"issues_found"`
	Overlaps    int `json:"overlaps"`
	Gaps        int `json:"gaps"`
}

// Processor normalizes enrollment data per student.
type Processor struct {
	spans    map[string][]Span
	issues   []Issue
	calendar *Calendar
	today    time.Time
}

// NewProcessor returns an empty enrollment processor.
func NewProcessor() *Processor {
	return &Processor{
		spans:    map[string][]Span{},
		calendar: NewCalendar(),
		today:    time.Now().UTC().Truncate(24 * time.Hour),
	}
}

// Calendar returns the processor's calendar normalizer.
func (p *Processor) Calendar() *Calendar {
	return p.calendar
}

// Add parses a raw enrollment record and registers its span. Unparseable
// start dates default to today so the span stays visible for review.
func (p *Processor) Add(record canonical.Record, source string) Span {
	studentID := record.Get("student_id")
	start, startOK := canonical.ParseDate(record.Get("start_date"))
	if !startOK {
		start = p.today
	}

	span := Span{
		ID:           record.Get("enrollment_id"),
		StudentID:    studentID,
		SchoolID:     record.Get("school_id"),
		SchoolName:   record.Get("school_name"),
		StartDate:    start,
		Status:       record.Get("status"),
		EntryReason:  record.Get("entry_reason"),
		ExitReason:   record.Get("exit_reason"),
		SourceSystem: source,
	}
	if span.ID == "" {
		span.ID = fmt.Sprintf("%s-%s", studentID, source)
	}
	if span.Status == "" {
		span.Status = "Active"
	}
	if grade, err := strconv.Atoi(record.Get("grade_level")); err == nil {
		span.GradeLevel = grade
	}
	if end, ok := canonical.ParseDate(record.Get("end_date")); ok {
		span.EndDate = &end
	}

	p.spans[studentID] = append(p.spans[studentID], span)
	return span
}

// FindOverlaps returns overlapping span pairs for a student and logs each as
// an issue.
func (p *Processor) FindOverlaps(studentID string) []Issue {
	var overlaps []Issue
	spans := p.spans[studentID]
	for i, a := range spans {
		for _, b := range spans[i+1:] {
			if ok, days := a.OverlapsWith(b, p.today); ok && days > 0 {
				issue := Issue{
					Type:        "overlap",
					StudentID:   studentID,
					Enrollment1: a.ID,
					Enrollment2: b.ID,
					Days:        days,
				}
				overlaps = append(overlaps, issue)
				p.issues = append(p.issues, issue)
			}
		}
	}
	return overlaps
}

// FindGaps returns gaps longer than the threshold between a student's
// consecutive spans and logs each as an issue.
func (p *Processor) FindGaps(studentID string) []Issue {
	spans := p.sortedSpans(studentID)

	var gaps []Issue
	for i := 0; i+1 < len(spans); i++ {
		if ok, days := spans[i].GapWith(spans[i+1]); ok && days > gapThresholdDays {
			issue := Issue{
				Type:        "gap",
				StudentID:   studentID,
				Enrollment1: spans[i].ID,
				Enrollment2: spans[i+1].ID,
				Days:        days,
			}
			gaps = append(gaps, issue)
			p.issues = append(p.issues, issue)
		}
	}
	return gaps
}

// Normalize resolves a student's overlapping spans. Same-school overlaps are
// merged by extending the earlier span; cross-school overlaps are kept for
// review.
func (p *Processor) Normalize(studentID string) []Span {
	spans := p.sortedSpans(studentID)
	if len(spans) == 0 {
		return nil
	}

	resolved := spans[:1]
	for _, span := range spans[1:] {
		last := &resolved[len(resolved)-1]
		overlaps, _ := last.OverlapsWith(span, p.today)
		if overlaps && last.SchoolID == span.SchoolID {
			if span.EndDate != nil && (last.EndDate == nil || span.EndDate.After(*last.EndDate)) {
				last.EndDate = span.EndDate
			}
			continue
		}
		resolved = append(resolved, span)
	}

	p.spans[studentID] = resolved
	return resolved
}

// ActiveEnrollment returns the student's span active on the given date.
func (p *Processor) ActiveEnrollment(studentID string, asOf time.Time) (Span, bool) {
	for _, span := range p.spans[studentID] {
		if span.ActiveOn(asOf) {
			return span, true
		}
	}
	return Span{}, false
}

// History returns the student's spans ordered by start date.
func (p *Processor) History(studentID string) []Span {
	return p.sortedSpans(studentID)
}

// Issues returns every overlap and gap logged so far.
func (p *Processor) Issues() []Issue {
	return p.issues
}

// Stats returns processing statistics.
func (p *Processor) Stats() Stats {
	stats := Stats{Students: len(p.spans), IssuesFound: len(p.issues)}
	for _, spans := range p.spans {
		stats.Enrollments += len(spans)
	}
	for _, issue := range p.issues {
		switch issue.Type {
		case "overlap":
			stats.Overlaps++
		case "gap":
			stats.Gaps++
		}
	}
	return stats
}

func (p *Processor) sortedSpans(studentID string) []Span {
	spans := append([]Span(nil), p.spans[studentID]...)
	sort.Slice(spans, func(i, j int) bool { return spans[i].StartDate.Before(spans[j].StartDate) })
	return spans
}
