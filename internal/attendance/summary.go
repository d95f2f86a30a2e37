package attendance

import (
	"math"
	"time"
)

// DailySummary rolls a student's period records up to one day.
type DailySummary struct {
	StudentID      string    `json:"student_id"`
	Date           time.Time `json:"date"`
	PeriodsPresent int       `json:"periods_present"`
	PeriodsAbsent  int       `json:"periods_absent"`
	PeriodsTardy   int       `json:"periods_tardy"`
	TotalPeriods   int       `json:"total_periods"`
	DailyStatus    Status    `json:"daily_status"`
	PeriodRecords  []Record  `json:"-"`
}

// CalculateDailyStatus derives the day's status from the period records.
// A day with every period absent is absent; an absent majority is a half
// day; any tardy with no absences makes the day tardy.
func (s *DailySummary) CalculateDailyStatus() Status {
	if s == nil {
		return StatusPresent
	}
	if len(s.PeriodRecords) == 0 {
		return s.DailyStatus
	}

	s.TotalPeriods = len(s.PeriodRecords)
	s.PeriodsPresent = 0
	s.PeriodsAbsent = 0
	s.PeriodsTardy = 0
	for _, record := range s.PeriodRecords {
		if record.IsPresent() {
			s.PeriodsPresent++
		}
		if record.IsAbsent() {
			s.PeriodsAbsent++
		}
		if record.Status == StatusTardy {
			s.PeriodsTardy++
		}
	}

	switch {
	case s.PeriodsAbsent == s.TotalPeriods:
		s.DailyStatus = StatusAbsent
	case float64(s.PeriodsAbsent) > float64(s.TotalPeriods)/2:
		s.DailyStatus = StatusHalfDay
	case s.PeriodsTardy > 0 && s.PeriodsAbsent == 0:
		s.DailyStatus = StatusTardy
	default:
		s.DailyStatus = StatusPresent
	}
	return s.DailyStatus
}

// Aggregate is a student's attendance totals over a date range.
type Aggregate struct {
	StudentID      string    `json:"student_id"`
	StartDate      time.Time `json:"start_date"`
	EndDate        time.Time `json:"end_date"`
	DaysPresent    int       `json:"days_present"`
	DaysAbsent     int       `json:"days_absent"`
	DaysTardy      int       `json:"days_tardy"`
	DaysExcused    int       `json:"days_excused"`
	DaysUnexcused  int       `json:"days_unexcused"`
	TotalDays      int       `json:"total_days"`
	AttendanceRate float64   `json:"attendance_rate"`
}

// CalculateRate recomputes the attendance rate percentage, two decimals.
// Tardy days count as attended.
func (a *Aggregate) CalculateRate() float64 {
	if a == nil || a.TotalDays == 0 {
		return 0
	}
	a.AttendanceRate = math.Round(float64(a.DaysPresent+a.DaysTardy)/float64(a.TotalDays)*10000) / 100
	return a.AttendanceRate
}

// BuildDailySummary builds and stores a day's summary from the student's
// records on that date.
func (p *Processor) BuildDailySummary(studentID string, day time.Time) *DailySummary {
	summary := &DailySummary{StudentID: studentID, Date: day, DailyStatus: StatusPresent}
	for _, record := range p.records[studentID] {
		if record.Date.Equal(day) {
			summary.PeriodRecords = append(summary.PeriodRecords, record)
		}
	}
	summary.CalculateDailyStatus()

	if p.summaries[studentID] == nil {
		p.summaries[studentID] = map[time.Time]*DailySummary{}
	}
	p.summaries[studentID][day] = summary
	return summary
}

// CalculateAggregate totals a student's attendance over a date range, one
// daily status per calendar day.
func (p *Processor) CalculateAggregate(studentID string, start, end time.Time) *Aggregate {
	byDate := map[time.Time]bool{}
	for _, record := range p.records[studentID] {
		if record.Date.Before(start) || record.Date.After(end) {
			continue
		}
		byDate[record.Date] = true
	}

	aggregate := &Aggregate{
		StudentID: studentID,
		StartDate: start,
		EndDate:   end,
		TotalDays: len(byDate),
	}

	for day := range byDate {
		switch p.BuildDailySummary(studentID, day).DailyStatus {
		case StatusPresent:
			aggregate.DaysPresent++
		case StatusTardy:
			aggregate.DaysTardy++
		case StatusExcused:
			aggregate.DaysExcused++
		case StatusUnexcused:
			aggregate.DaysUnexcused++
		case StatusAbsent, StatusHalfDay:
			aggregate.DaysAbsent++
		}
	}

	aggregate.CalculateRate()
	p.aggregates[studentID] = aggregate
	return aggregate
}

// Verification is the outcome of checking totals against a source system.
type Verification struct {
	Verified        bool   `json:"verified"`
	Error           string `json:"error,omitempty"`
	ExpectedPresent int    `json:"expected_present"`
	ActualPresent   int    `json:"actual_present"`
	PresentMatch    bool   `json:"present_match"`
	ExpectedAbsent  int    `json:"expected_absent"`
	ActualAbsent    int    `json:"actual_absent"`
	AbsentMatch     bool   `json:"absent_match"`
}

// VerifyTotals checks a student's aggregate against the totals the source
// system reports. Mismatches are logged as issues.
func (p *Processor) VerifyTotals(studentID string, expectedPresent, expectedAbsent int) Verification {
	aggregate, ok := p.aggregates[studentID]
	if !ok {
		return Verification{Error: "No aggregate data found"}
	}

	actualPresent := aggregate.DaysPresent + aggregate.DaysTardy
	actualAbsent := aggregate.DaysAbsent + aggregate.DaysExcused + aggregate.DaysUnexcused
	result := Verification{
		Verified:        actualPresent == expectedPresent && actualAbsent == expectedAbsent,
		ExpectedPresent: expectedPresent,
		ActualPresent:   actualPresent,
		PresentMatch:    actualPresent == expectedPresent,
		ExpectedAbsent:  expectedAbsent,
		ActualAbsent:    aggregate.DaysAbsent,
		AbsentMatch:     actualAbsent == expectedAbsent,
	}

	if !result.Verified {
		p.issues = append(p.issues, Issue{Type: "total_mismatch", StudentID: studentID})
	}
	return result
}

// Stats summarizes attendance processing.
type Stats struct {
	Students             int      `json:"total_students"`
	Records              int      `json:"total_records"`
	DailySummaries       int      `json:"daily_summaries"`
	AggregatesCalculated int      `json:"aggregates_calculated"`
	IssuesFound          int      `json:"issues_found"`
	UnmappedCodes        []string `json:"unmapped_codes"`
}

// Stats returns attendance processing statistics.
func (p *Processor) Stats() Stats {
	stats := Stats{
		Students:             len(p.records),
		AggregatesCalculated: len(p.aggregates),
		IssuesFound:          len(p.issues),
		UnmappedCodes:        p.mapper.UnmappedCodes(),
	}
	for _, records := range p.records {
		stats.Records += len(records)
	}
	for _, summaries := range p.summaries {
		stats.DailySummaries += len(summaries)
	}
	return stats
}
