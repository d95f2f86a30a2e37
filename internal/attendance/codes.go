// Package attendance normalizes attendance events: code taxonomy mapping,
// daily and period records, summaries and aggregate verification.
package attendance

import (
	"sort"
	"strings"
)

// Status is the normalized attendance outcome for a day or period.
type Status string

// Attendance statuses.
const (
	StatusPresent        Status = "Present"
	StatusAbsent         Status = "Absent"
	StatusTardy          Status = "Tardy"
	StatusExcused        Status = "Excused"
	StatusUnexcused      Status = "Unexcused"
	StatusRemote         Status = "Remote"
	StatusEarlyDeparture Status = "Early Departure"
	StatusHalfDay        Status = "Half Day"
)

// RecordType distinguishes daily from period attendance.
type RecordType string

// Record types.
const (
	TypeDaily  RecordType = "daily"
	TypePeriod RecordType = "period"
)

// codeMappings crosswalks the attendance codes legacy systems use onto
// canonical statuses.
var codeMappings = map[string]Status{
	"p": StatusPresent, "present": StatusPresent, "pres": StatusPresent,
	"pr": StatusPresent, "1": StatusPresent, "y": StatusPresent,
	"yes": StatusPresent, "in": StatusPresent,

	"a": StatusAbsent, "absent": StatusAbsent, "abs": StatusAbsent,
	"ab": StatusAbsent, "0": StatusAbsent, "n": StatusAbsent,
	"no": StatusAbsent, "out": StatusAbsent,

	"t": StatusTardy, "tardy": StatusTardy, "late": StatusTardy,
	"l": StatusTardy, "lt": StatusTardy,

	"e": StatusExcused, "excused": StatusExcused, "exc": StatusExcused,
	"ex": StatusExcused, "ea": StatusExcused, "excused absence": StatusExcused,

	"u": StatusUnexcused, "unexcused": StatusUnexcused, "unex": StatusUnexcused,
	"ua": StatusUnexcused, "unexcused absence": StatusUnexcused,

	"r": StatusRemote, "remote": StatusRemote, "virtual": StatusRemote,
	"v": StatusRemote, "online": StatusRemote,

	"ed": StatusEarlyDeparture, "early": StatusEarlyDeparture,
	"early departure": StatusEarlyDeparture, "left early": StatusEarlyDeparture,
}

// CodeMapper maps source attendance codes onto canonical statuses and
// tracks codes it could not map.
type CodeMapper struct {
	unmapped map[string]bool
	custom   map[string]Status
}

// NewCodeMapper returns a mapper with the standard taxonomy.
func NewCodeMapper() *CodeMapper {
	return &CodeMapper{unmapped: map[string]bool{}, custom: map[string]Status{}}
}

// AddCustomMapping registers a source-specific code. Custom mappings win
// over the standard taxonomy.
func (m *CodeMapper) AddCustomMapping(code string, status Status) {
	if m == nil {
		return
	}
	m.custom[strings.ToLower(strings.TrimSpace(code))] = status
}

// MapCode translates a source code to a canonical status. Unknown codes are
// tracked and default to absent with mapped=false.
func (m *CodeMapper) MapCode(code string) (Status, bool) {
	if code == "" {
		return StatusAbsent, false
	}
	normalized := strings.ToLower(strings.TrimSpace(code))
	if status, ok := m.custom[normalized]; ok {
		return status, true
	}
	if status, ok := codeMappings[normalized]; ok {
		return status, true
	}
	m.unmapped[code] = true
	return StatusAbsent, false
}

// UnmappedCodes returns the source codes that could not be mapped, sorted.
func (m *CodeMapper) UnmappedCodes() []string {
	codes := make([]string, 0, len(m.unmapped))
	for code := range m.unmapped {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}
