package attendance

import (
	"testing"
	"time"

	"github.com/edusync/edusync/internal/canonical"
)

func TestMapCode(t *testing.T) {
	t.Parallel()
	m := NewCodeMapper()

	tests := []struct {
		code       string
		want       Status
		wantMapped bool
	}{
		{"P", StatusPresent, true},
		{"present", StatusPresent, true},
		{"1", StatusPresent, true},
		{"y", StatusPresent, true},
		{" ABS ", StatusAbsent, true},
		{"0", StatusAbsent, true},
		{"late", StatusTardy, true},
		{"EX", StatusExcused, true},
		{"ua", StatusUnexcused, true},
		{"virtual", StatusRemote, true},
		{"left early", StatusEarlyDeparture, true},
		{"XYZ", StatusAbsent, false},
		{"", StatusAbsent, false},
	}
	for _, tc := range tests {
		status, mapped := m.MapCode(tc.code)
		if status != tc.want || mapped != tc.wantMapped {
			t.Fatalf("MapCode(%q) = %s/%v, want %s/%v", tc.code, status, mapped, tc.want, tc.wantMapped)
		}
	}

	unmapped := m.UnmappedCodes()
	if len(unmapped) != 1 || unmapped[0] != "XYZ" {
		t.Fatalf("unmapped = %v", unmapped)
	}
}

func TestCustomMappingWins(t *testing.T) {
	t.Parallel()
	m := NewCodeMapper()
	m.AddCustomMapping("P", StatusRemote)

	status, mapped := m.MapCode("p")
	if !mapped || status != StatusRemote {
		t.Fatalf("custom mapping = %s/%v", status, mapped)
	}
}

func TestProcessDailyRecord(t *testing.T) {
	t.Parallel()
	p := NewProcessor()

	record := p.Process(canonical.Record{
		"StudentID": "S-1",
		"Date":      "2023-09-05",
		"Status":    "T",
		"Teacher":   "mr. lopez",
	}, "legacy")

	if record.Status != StatusTardy || record.Type != TypeDaily {
		t.Fatalf("record = %+v", record)
	}
	if record.ID != "S-1-2023-09-05-0" {
		t.Fatalf("id = %q", record.ID)
	}
	if record.TeacherName != "Mr. Lopez" {
		t.Fatalf("teacher = %q", record.TeacherName)
	}
	if record.SourceCode != "T" {
		t.Fatalf("source code = %q", record.SourceCode)
	}
}

func TestProcessPeriodRecord(t *testing.T) {
	t.Parallel()
	p := NewProcessor()

	record := p.Process(canonical.Record{
		"student_id": "S-1",
		"date":       "09/05/2023",
		"status":     "A",
		"period":     "3",
	}, "legacy")
	if record.Type != TypePeriod || record.Period != 3 {
		t.Fatalf("record = %+v", record)
	}
}

func TestProcessUnmappedCodeLogsIssue(t *testing.T) {
	t.Parallel()
	p := NewProcessor()

	record := p.Process(canonical.Record{
		"StudentID": "S-1",
		"Date":      "2023-09-05",
		"Status":    "Q7",
	}, "legacy")
	if record.Status != StatusAbsent {
		t.Fatalf("unmapped status = %s, want default absent", record.Status)
	}
	issues := p.Issues()
	if len(issues) != 1 || issues[0].Type != "unmapped_code" || issues[0].Code != "Q7" {
		t.Fatalf("issues = %+v", issues)
	}
}

func TestFindDuplicates(t *testing.T) {
	t.Parallel()
	p := NewProcessor()

	base := canonical.Record{"StudentID": "S-1", "Date": "2023-09-05", "Status": "P"}
	p.Process(base, "sis")
	p.Process(base.Clone(), "state")
	p.Process(canonical.Record{"StudentID": "S-1", "Date": "2023-09-06", "Status": "P"}, "sis")

	duplicates := p.FindDuplicates("S-1")
	if len(duplicates) != 1 {
		t.Fatalf("duplicates = %d, want 1", len(duplicates))
	}
}

func TestCalculateDailyStatus(t *testing.T) {
	t.Parallel()

	day := canonical.Date(2023, time.September, 5)
	tests := []struct {
		name     string
		statuses []Status
		want     Status
	}{
		{"all present", []Status{StatusPresent, StatusPresent}, StatusPresent},
		{"all absent", []Status{StatusAbsent, StatusAbsent}, StatusAbsent},
		{"absent majority", []Status{StatusAbsent, StatusAbsent, StatusPresent}, StatusHalfDay},
		{"tardy no absences", []Status{StatusTardy, StatusPresent}, StatusTardy},
		{"mixed minor absence", []Status{StatusAbsent, StatusPresent, StatusPresent}, StatusPresent},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			summary := &DailySummary{StudentID: "S-1", Date: day}
			for i, status := range tc.statuses {
				summary.PeriodRecords = append(summary.PeriodRecords, Record{
					StudentID: "S-1", Date: day, Status: status, Period: i + 1,
				})
			}
			if got := summary.CalculateDailyStatus(); got != tc.want {
				t.Fatalf("daily status = %s, want %s", got, tc.want)
			}
		})
	}
}

func TestCalculateAggregateAndVerify(t *testing.T) {
	t.Parallel()
	p := NewProcessor()

	days := []struct {
		date   string
		status string
	}{
		{"2023-09-05", "P"},
		{"2023-09-06", "P"},
		{"2023-09-07", "T"},
		{"2023-09-08", "A"},
		{"2023-09-09", "E"},
	}
	for _, d := range days {
		p.Process(canonical.Record{"StudentID": "S-1", "Date": d.date, "Status": d.status}, "sis")
	}

	aggregate := p.CalculateAggregate("S-1",
		canonical.Date(2023, time.September, 1), canonical.Date(2023, time.September, 30))
	if aggregate.TotalDays != 5 {
		t.Fatalf("total days = %d, want 5", aggregate.TotalDays)
	}
	if aggregate.DaysPresent != 2 || aggregate.DaysTardy != 1 || aggregate.DaysAbsent != 1 || aggregate.DaysExcused != 1 {
		t.Fatalf("aggregate = %+v", aggregate)
	}
	if aggregate.AttendanceRate != 60 {
		t.Fatalf("rate = %v, want 60", aggregate.AttendanceRate)
	}

	result := p.VerifyTotals("S-1", 3, 2)
	if !result.Verified {
		t.Fatalf("verification = %+v", result)
	}

	mismatch := p.VerifyTotals("S-1", 4, 1)
	if mismatch.Verified || mismatch.PresentMatch {
		t.Fatalf("expected mismatch, got %+v", mismatch)
	}

	missing := p.VerifyTotals("S-404", 0, 0)
	if missing.Error == "" {
		t.Fatal("expected missing aggregate error")
	}

	stats := p.Stats()
	if stats.Students != 1 || stats.Records != 5 || stats.AggregatesCalculated != 1 {
		t.Fatalf("stats = %+v", stats)
	}
}
