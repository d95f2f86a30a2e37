package reconcile

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"time"

	"github.com/edusync/edusync/internal/canonical"
)

// Engine runs reconciliation checks over source and target datasets, keyed
// by entity type ("students", "grades", ...).
type Engine struct {
	checks  []Check
	results []Result
	source  map[string][]canonical.Record
	target  map[string][]canonical.Record
	rng     *rand.Rand
}

// NewEngine returns an Engine with the default check suite registered.
func NewEngine() *Engine {
	return &Engine{
		checks: defaultChecks(),
		source: make(map[string][]canonical.Record),
		target: make(map[string][]canonical.Record),
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// RegisterCheck adds a check to the suite.
func (e *Engine) RegisterCheck(c Check) {
	e.checks = append(e.checks, c)
}

// Checks returns the registered check definitions.
func (e *Engine) Checks() []Check {
	return e.checks
}

// SetSourceData records the pre-migration dataset for an entity type.
func (e *Engine) SetSourceData(entityType string, records []canonical.Record) {
	e.source[entityType] = records
}

// SetTargetData records the post-migration dataset for an entity type.
func (e *Engine) SetTargetData(entityType string, records []canonical.Record) {
	e.target[entityType] = records
}

// RunAllChecks executes every registered check and returns the results.
// Previous results are discarded.
func (e *Engine) RunAllChecks() []Result {
	e.results = e.results[:0]
	for _, c := range e.checks {
		e.results = append(e.results, e.run(c))
	}
	return e.results
}

// Results returns the outcomes of the most recent RunAllChecks call.
func (e *Engine) Results() []Result {
	return e.results
}

func (e *Engine) run(c Check) Result {
	switch c.ID {
	case "count_students":
		return e.runCountCheck("students", c)
	case "count_guardians":
		return e.runCountCheck("guardians", c)
	case "count_enrollments":
		return e.runCountCheck("enrollments", c)
	case "count_grades":
		return e.runCountCheck("grades", c)
	case "count_attendance":
		return e.runCountCheck("attendance", c)
	case "ref_enrollment_student":
		return e.runReferentialCheck("enrollments", "students", "student_id", c)
	case "ref_grade_student":
		return e.runReferentialCheck("grades", "students", "student_id", c)
	case "ref_attendance_student":
		return e.runReferentialCheck("attendance", "students", "student_id", c)
	case "ref_guardian_student":
		return e.runReferentialCheck("relationships", "students", "student_id", c)
	case "complete_student_guardian":
		return e.runCompletenessCheck("students", "guardian_id", c)
	case "complete_student_contact":
		return e.runCompletenessCheck("students", "email", c)
	case "complete_student_enrollment":
		return e.runCompletenessCheck("students", "enrollment_id", c)
	case "sample_student_data":
		return e.runSamplingCheck("students", 10, c)
	case "sample_grade_data":
		return e.runSamplingCheck("grades", 20, c)
	case "integrity_hash":
		return e.runHashCheck("students", c)
	}
	return skipped(c, "Check not implemented")
}

func (e *Engine) runCountCheck(entityType string, c Check) Result {
	sourceCount := len(e.source[entityType])
	targetCount := len(e.target[entityType])

	if sourceCount == 0 {
		r := skipped(c, fmt.Sprintf("No source data for %s", entityType))
		r.SourceValue = 0
		r.TargetValue = 0
		return r
	}

	matchRate := float64(targetCount) / float64(sourceCount)
	return Result{
		CheckID:     c.ID,
		CheckName:   c.Name,
		Category:    c.Category,
		Status:      passFail(matchRate >= c.Threshold),
		Message:     fmt.Sprintf("%s: %d/%d records (%.1f%%)", entityType, targetCount, sourceCount, matchRate*100),
		SourceValue: sourceCount,
		TargetValue: targetCount,
		Threshold:   c.Threshold,
		ActualValue: matchRate,
		Details: map[string]any{
			"entity_type": entityType,
			"difference":  sourceCount - targetCount,
		},
		Timestamp: time.Now(),
	}
}

func (e *Engine) runReferentialCheck(childType, parentType, foreignKey string, c Check) Result {
	children := e.target[childType]
	parents := e.target[parentType]

	if len(children) == 0 {
		return skipped(c, fmt.Sprintf("No %s data to check", childType))
	}

	parentIDs := make(map[string]struct{}, len(parents))
	for _, p := range parents {
		if id := recordKey(p); id != "" {
			parentIDs[id] = struct{}{}
		}
	}

	var valid int
	var invalid []map[string]any
	for _, child := range children {
		fk := child.Get(foreignKey)
		if _, ok := parentIDs[fk]; fk != "" && ok {
			valid++
			continue
		}
		invalid = append(invalid, map[string]any{
			"record": valueOr(child.Get("id"), "unknown"),
			"fk":     fk,
		})
	}

	matchRate := float64(valid) / float64(len(children))
	return Result{
		CheckID:     c.ID,
		CheckName:   c.Name,
		Category:    c.Category,
		Status:      passFail(matchRate >= c.Threshold),
		Message:     fmt.Sprintf("%d/%d valid references (%.1f%%)", valid, len(children), matchRate*100),
		SourceValue: len(children),
		TargetValue: valid,
		Threshold:   c.Threshold,
		ActualValue: matchRate,
		Details: map[string]any{
			"invalid_count":  len(invalid),
			"sample_invalid": headAny(invalid, 5),
		},
		Timestamp: time.Now(),
	}
}

func (e *Engine) runCompletenessCheck(entityType, requiredField string, c Check) Result {
	entities := e.target[entityType]
	if len(entities) == 0 {
		return skipped(c, fmt.Sprintf("No %s data to check", entityType))
	}

	var complete int
	var incomplete []string
	for _, entity := range entities {
		if entity.Has(requiredField) {
			complete++
			continue
		}
		incomplete = append(incomplete, recordKey(entity))
	}

	rate := float64(complete) / float64(len(entities))
	status := StatusPassed
	if rate < c.Threshold {
		status = StatusWarning
	}
	return Result{
		CheckID:     c.ID,
		CheckName:   c.Name,
		Category:    c.Category,
		Status:      status,
		Message:     fmt.Sprintf("%d/%d have %s (%.1f%%)", complete, len(entities), requiredField, rate*100),
		SourceValue: len(entities),
		TargetValue: complete,
		Threshold:   c.Threshold,
		ActualValue: rate,
		Details: map[string]any{
			"incomplete_count":  len(incomplete),
			"sample_incomplete": headStrings(incomplete, 10),
		},
		Timestamp: time.Now(),
	}
}

func (e *Engine) runSamplingCheck(entityType string, sampleSize int, c Check) Result {
	source := e.source[entityType]
	target := e.target[entityType]

	if len(source) == 0 || len(target) == 0 {
		return skipped(c, "Insufficient data for sampling")
	}

	lookup := make(map[string]canonical.Record, len(target))
	for _, rec := range target {
		if key := recordKey(rec); key != "" {
			lookup[key] = rec
		}
	}

	sample := e.sample(source, sampleSize)
	var matches int
	var mismatches []string
	for _, rec := range sample {
		key := recordKey(rec)
		if other, ok := lookup[key]; ok && recordsMatch(rec, other) {
			matches++
		} else {
			mismatches = append(mismatches, key)
		}
	}

	matchRate := float64(matches) / float64(len(sample))
	return Result{
		CheckID:     c.ID,
		CheckName:   c.Name,
		Category:    c.Category,
		Status:      passFail(matchRate >= c.Threshold),
		Message:     fmt.Sprintf("Sample: %d/%d verified (%.1f%%)", matches, len(sample), matchRate*100),
		SourceValue: len(sample),
		TargetValue: matches,
		Threshold:   c.Threshold,
		ActualValue: matchRate,
		Details: map[string]any{
			"sample_size": len(sample),
			"mismatches":  headStrings(mismatches, 5),
		},
		Timestamp: time.Now(),
	}
}

func (e *Engine) runHashCheck(entityType string, c Check) Result {
	source := e.source[entityType]
	target := e.target[entityType]

	if len(source) == 0 || len(target) == 0 {
		return skipped(c, "Insufficient data for hash verification")
	}

	sourceHash := collectionHash(source)
	targetHash := collectionHash(target)
	passed := sourceHash == targetHash

	status := StatusWarning
	message := "Hash mismatch (may be due to transformations)"
	if passed {
		status = StatusPassed
		message = "Data integrity verified"
	}
	return Result{
		CheckID:     c.ID,
		CheckName:   c.Name,
		Category:    c.Category,
		Status:      status,
		Message:     message,
		SourceValue: sourceHash[:16],
		TargetValue: targetHash[:16],
		Details: map[string]any{
			"source_hash": sourceHash,
			"target_hash": targetHash,
		},
		Timestamp: time.Now(),
	}
}

// sample returns up to n records drawn without replacement.
func (e *Engine) sample(records []canonical.Record, n int) []canonical.Record {
	if n >= len(records) {
		out := make([]canonical.Record, len(records))
		copy(out, records)
		return out
	}
	perm := e.rng.Perm(len(records))
	out := make([]canonical.Record, 0, n)
	for _, idx := range perm[:n] {
		out = append(out, records[idx])
	}
	return out
}

// recordsMatch compares two records on the fields migrations are expected
// to preserve. Fields absent or blank on either side are not compared.
func recordsMatch(source, target canonical.Record) bool {
	for _, field := range []string{"first_name", "last_name", "email", "grade", "status"} {
		s := strings.ToLower(source.Get(field))
		t := strings.ToLower(target.Get(field))
		if s != "" && t != "" && s != t {
			return false
		}
	}
	return true
}

// collectionHash fingerprints a dataset by its IDs and names, independent
// of record order.
func collectionHash(records []canonical.Record) string {
	keys := make([]string, 0, len(records))
	byKey := make(map[string]canonical.Record, len(records))
	for _, rec := range records {
		key := recordKey(rec)
		keys = append(keys, key)
		byKey[key] = rec
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, key := range keys {
		rec := byKey[key]
		fmt.Fprintf(&b, "%s|%s%s|", key, rec.Get("first_name"), rec.Get("last_name"))
	}
	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}

// Summary rolls up the latest run into headline numbers.
type Summary struct {
	TotalChecks      int     `json:"total_checks"`
	Passed           int     `json:"passed"`
	Failed           int     `json:"failed"`
	Warnings         int     `json:"warnings"`
	Skipped          int     `json:"skipped"`
	BlockingFailures int     `json:"blocking_failures"`
	OverallStatus    string  `json:"overall_status"`
	PassRate         float64 `json:"pass_rate"`
}

// Summarize aggregates the results of the most recent run.
func (e *Engine) Summarize() Summary {
	blocking := make(map[string]bool, len(e.checks))
	for _, c := range e.checks {
		if c.Blocking {
			blocking[c.ID] = true
		}
	}

	var s Summary
	s.TotalChecks = len(e.results)
	for _, r := range e.results {
		switch r.Status {
		case StatusPassed:
			s.Passed++
		case StatusFailed:
			s.Failed++
			if blocking[r.CheckID] {
				s.BlockingFailures++
			}
		case StatusWarning:
			s.Warnings++
		case StatusSkipped:
			s.Skipped++
		}
	}

	switch {
	case s.Failed == 0:
		s.OverallStatus = "PASSED"
	case s.BlockingFailures > 0:
		s.OverallStatus = "BLOCKED"
	default:
		s.OverallStatus = "WARNING"
	}
	if s.TotalChecks > 0 {
		s.PassRate = float64(s.Passed) / float64(s.TotalChecks)
	}
	return s
}

// ResultsByCategory groups the latest run's results by check category.
func (e *Engine) ResultsByCategory() map[Category][]Result {
	grouped := make(map[Category][]Result)
	for _, r := range e.results {
		grouped[r.Category] = append(grouped[r.Category], r)
	}
	return grouped
}

// recordKey picks the identifier used to line up source and target rows.
func recordKey(rec canonical.Record) string {
	if id := rec.Get("student_id"); id != "" {
		return id
	}
	if id := rec.Get("id"); id != "" {
		return id
	}
	return rec.Get("guardian_id")
}

func skipped(c Check, message string) Result {
	return Result{
		CheckID:   c.ID,
		CheckName: c.Name,
		Category:  c.Category,
		Status:    StatusSkipped,
		Message:   message,
		Timestamp: time.Now(),
	}
}

func passFail(ok bool) Status {
	if ok {
		return StatusPassed
	}
	return StatusFailed
}

func headStrings(values []string, n int) []string {
	if len(values) > n {
		return values[:n]
	}
	return values
}

func headAny(values []map[string]any, n int) []map[string]any {
	if len(values) > n {
		return values[:n]
	}
	return values
}

func valueOr(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
