package attendance

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/edusync/edusync/internal/canonical"
)

// Record is a normalized attendance event.
type Record struct {
	ID           string     `json:"id"`
	StudentID    string     `json:"student_id"`
	Date         time.Time  `json:"date"`
	Status       Status     `json:"status"`
	Type         RecordType `json:"attendance_type"`
	Period       int        `json:"period,omitempty"`
	SectionID    string     `json:"section_id,omitempty"`
	TeacherName  string     `json:"teacher_name,omitempty"`
	Notes        string     `json:"notes,omitempty"`
	SourceCode   string     `json:"source_code,omitempty"`
	SourceSystem string     `json:"source_system,omitempty"`
}

// IsPresent reports whether the status counts as attendance.
func (r Record) IsPresent() bool {
	switch r.Status {
	case StatusPresent, StatusTardy, StatusRemote, StatusHalfDay:
		return true
	}
	return false
}

// IsAbsent reports whether the status counts as an absence.
func (r Record) IsAbsent() bool {
	switch r.Status {
	case StatusAbsent, StatusExcused, StatusUnexcused:
		return true
	}
	return false
}

// Issue records a problem found while processing attendance.
type Issue struct {
	Type      string `json:"type"`
	StudentID string `json:"student_id"`
	Date      string `json:"date,omitempty"`
	Code      string `json:"code,omitempty"`
	Period    int    `json:"period,omitempty"`
}

// Processor normalizes attendance data from legacy sources.
type Processor struct {
	records    map[string][]Record
	summaries  map[string]map[time.Time]*DailySummary
	aggregates map[string]*Aggregate
	issues     []Issue
	mapper     *CodeMapper
	titler     cases.Caser
	today      time.Time
}

// NewProcessor returns an empty attendance processor.
func NewProcessor() *Processor {
	return &Processor{
		records:    map[string][]Record{},
		summaries:  map[string]map[time.Time]*DailySummary{},
		aggregates: map[string]*Aggregate{},
		mapper:     NewCodeMapper(),
		titler:     cases.Title(language.AmericanEnglish),
		today:      time.Now().UTC().Truncate(24 * time.Hour),
	}
}

// Mapper returns the processor's code mapper so callers can register
// custom mappings before processing.
func (p *Processor) Mapper() *CodeMapper {
	return p.mapper
}

// Process normalizes a raw attendance record. The source code is mapped
// through the taxonomy; unmapped codes are logged as issues. A numeric
// Period field makes the record period-based.
func (p *Processor) Process(record canonical.Record, source string) Record {
	studentID := firstOf(record, "StudentID", "student_id")
	day, dayOK := canonical.ParseDate(firstOf(record, "Date", "date"))
	if !dayOK {
		day = p.today
	}
	rawCode := firstOf(record, "Status", "status")

	status, mapped := p.mapper.MapCode(rawCode)
	if !mapped && rawCode != "" {
		p.issues = append(p.issues, Issue{
			Type:      "unmapped_code",
			StudentID: studentID,
			Date:      day.Format("2006-01-02"),
			Code:      rawCode,
		})
	}

	recordType := TypeDaily
	period := 0
	if raw := firstOf(record, "Period", "period"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			period = parsed
			recordType = TypePeriod
		}
	}

	out := Record{
		ID:           firstOf(record, "ID", "id"),
		StudentID:    studentID,
		Date:         day,
		Status:       status,
		Type:         recordType,
		Period:       period,
		TeacherName:  p.titler.String(strings.ToLower(firstOf(record, "Teacher", "teacher"))),
		Notes:        firstOf(record, "Notes", "notes"),
		SourceCode:   rawCode,
		SourceSystem: source,
	}
	if out.ID == "" {
		out.ID = fmt.Sprintf("%s-%s-%d", studentID, day.Format("2006-01-02"), period)
	}

	p.records[studentID] = append(p.records[studentID], out)
	return out
}

// FindDuplicates returns record pairs sharing a date and period and logs
// each as an issue.
func (p *Processor) FindDuplicates(studentID string) [][2]Record {
	var duplicates [][2]Record
	seen := map[string]Record{}
	for _, record := range p.records[studentID] {
		key := fmt.Sprintf("%s-%d", record.Date.Format("2006-01-02"), record.Period)
		if earlier, ok := seen[key]; ok {
			duplicates = append(duplicates, [2]Record{earlier, record})
			p.issues = append(p.issues, Issue{
				Type:      "duplicate_attendance",
				StudentID: studentID,
				Date:      record.Date.Format("2006-01-02"),
				Period:    record.Period,
			})
			continue
		}
		seen[key] = record
	}
	return duplicates
}

// Records returns the processed records for a student.
func (p *Processor) Records(studentID string) []Record {
	return p.records[studentID]
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
