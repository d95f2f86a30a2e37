package identity

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/edusync/edusync/internal/canonical"
)

var titler = cases.Title(language.AmericanEnglish)

// GoldenRecord is a unified identity across source systems.
type GoldenRecord struct {
	GoldenID      string            `json:"golden_id"`
	PrimarySource string            `json:"primary_source"`
	SourceIDs     map[string]string `json:"source_ids"`
	FirstName     string            `json:"first_name"`
	LastName      string            `json:"last_name"`
	DateOfBirth   string            `json:"date_of_birth,omitempty"`
	Email         string            `json:"email,omitempty"`
	StateID       string            `json:"state_id,omitempty"`
	MergedFrom    []string          `json:"merged_from"`
	Confidence    float64           `json:"confidence"`
}

// AddSourceID records the identifier a source system uses for this person.
func (g *GoldenRecord) AddSourceID(source, sourceID string) {
	if g == nil {
		return
	}
	if g.SourceIDs == nil {
		g.SourceIDs = map[string]string{}
	}
	g.SourceIDs[source] = sourceID
	for _, s := range g.MergedFrom {
		if s == source {
			return
		}
	}
	g.MergedFrom = append(g.MergedFrom, source)
}

// GenerateGoldenID derives the golden identifier from key attributes.
func (g GoldenRecord) GenerateGoldenID() string {
	key := fmt.Sprintf("%s|%s|%s|%s", g.FirstName, g.LastName, g.DateOfBirth, g.StateID)
	sum := md5.Sum([]byte(key))
	return "GR-" + strings.ToUpper(hex.EncodeToString(sum[:])[:12])
}

// Resolver is the identity resolution engine for cross-source matching.
type Resolver struct {
	goldenRecords  map[string]*GoldenRecord
	sourceToGolden map[string]map[string]string
	duplicates     []MatchResult
	households     *HouseholdGraph
}

// NewResolver returns an empty resolution engine.
func NewResolver() *Resolver {
	return &Resolver{
		goldenRecords:  map[string]*GoldenRecord{},
		sourceToGolden: map[string]map[string]string{},
		households:     NewHouseholdGraph(),
	}
}

// Resolve maps a record onto a golden record, merging with an existing one on
// an exact or high confidence match and creating a new one otherwise. The
// second return reports whether a new golden record was created.
func (r *Resolver) Resolve(record canonical.Record, source string) (string, bool) {
	sourceID := recordID(record)
	if mapped, ok := r.sourceToGolden[source][sourceID]; ok {
		return mapped, false
	}

	for goldenID, golden := range r.goldenRecords {
		candidate := canonical.Record{
			"first_name":    golden.FirstName,
			"last_name":     golden.LastName,
			"email":         golden.Email,
			"state_id":      golden.StateID,
			"date_of_birth": golden.DateOfBirth,
		}
		result := MatchRecords(record, candidate, source, "golden")
		if result.Confidence == ConfidenceExact || result.Confidence == ConfidenceHigh {
			golden.AddSourceID(source, sourceID)
			r.mapSource(source, sourceID, goldenID)
			return goldenID, false
		}
	}

	golden := &GoldenRecord{
		PrimarySource: source,
		FirstName:     titleName(record.Get("first_name")),
		LastName:      titleName(record.Get("last_name")),
		Email:         record.Get("email"),
		StateID:       record.Get("state_id"),
		DateOfBirth:   dateOfBirth(record),
		Confidence:    1,
	}
	golden.AddSourceID(source, sourceID)
	golden.GoldenID = golden.GenerateGoldenID()

	r.goldenRecords[golden.GoldenID] = golden
	r.mapSource(source, sourceID, golden.GoldenID)
	return golden.GoldenID, true
}

func (r *Resolver) mapSource(source, sourceID, goldenID string) {
	if r.sourceToGolden[source] == nil {
		r.sourceToGolden[source] = map[string]string{}
	}
	r.sourceToGolden[source][sourceID] = goldenID
}

// FindDuplicates compares every record pair within a dataset and returns the
// pairs matching at medium confidence or better.
func (r *Resolver) FindDuplicates(records []canonical.Record, source string) []MatchResult {
	var duplicates []MatchResult
	for i, a := range records {
		for _, b := range records[i+1:] {
			result := MatchRecords(a, b, source, source)
			switch result.Confidence {
			case ConfidenceExact, ConfidenceHigh, ConfidenceMedium:
				duplicates = append(duplicates, result)
			}
		}
	}
	r.duplicates = append(r.duplicates, duplicates...)
	return duplicates
}

// Duplicates returns every duplicate pair found so far.
func (r *Resolver) Duplicates() []MatchResult {
	return r.duplicates
}

// GoldenRecord returns a golden record by ID.
func (r *Resolver) GoldenRecord(goldenID string) (*GoldenRecord, bool) {
	golden, ok := r.goldenRecords[goldenID]
	return golden, ok
}

// GoldenRecords returns every golden record ordered by ID.
func (r *Resolver) GoldenRecords() []*GoldenRecord {
	out := make([]*GoldenRecord, 0, len(r.goldenRecords))
	for _, golden := range r.goldenRecords {
		out = append(out, golden)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].GoldenID < out[j].GoldenID })
	return out
}

// Households returns the guardian-student household graph.
func (r *Resolver) Households() *HouseholdGraph {
	return r.households
}

// BuildHouseholdGraph links students to guardians from raw guardian records.
// The student_ids field may be a comma-separated list.
func (r *Resolver) BuildHouseholdGraph(guardians []canonical.Record) *HouseholdGraph {
	for _, guardian := range guardians {
		guardianID := guardian.Get("guardian_id")
		relationship := valueOr(guardian.Get("relationship"), "Guardian")
		custody := valueOr(guardian.Get("custody_type"), "Full")
		priority := 0
		fmt.Sscanf(guardian.Get("emergency_priority"), "%d", &priority)

		for _, studentID := range strings.Split(guardian.Get("student_ids"), ",") {
			studentID = strings.TrimSpace(studentID)
			if studentID == "" {
				continue
			}
			r.households.AddRelationship(Relationship{
				GuardianID:        guardianID,
				StudentID:         studentID,
				RelationshipType:  relationship,
				CustodyType:       custody,
				EmergencyPriority: priority,
			})
		}
	}
	return r.households
}

// Stats summarizes identity resolution progress.
type Stats struct {
	GoldenRecords         int      `json:"total_golden_records"`
	SourceMappings        int      `json:"total_source_mappings"`
	SourcesProcessed      []string `json:"sources_processed"`
	DuplicatesFound       int      `json:"duplicates_found"`
	HighConfidenceMatches int      `json:"high_confidence_matches"`
	Relationships         int      `json:"relationships"`
}

// Stats returns resolution statistics.
func (r *Resolver) Stats() Stats {
	stats := Stats{
		GoldenRecords:   len(r.goldenRecords),
		DuplicatesFound: len(r.duplicates),
		Relationships:   len(r.households.Relationships),
	}
	for source, mappings := range r.sourceToGolden {
		stats.SourcesProcessed = append(stats.SourcesProcessed, source)
		stats.SourceMappings += len(mappings)
	}
	sort.Strings(stats.SourcesProcessed)
	for _, d := range r.duplicates {
		if d.Confidence == ConfidenceExact || d.Confidence == ConfidenceHigh {
			stats.HighConfidenceMatches++
		}
	}
	return stats
}

func titleName(name string) string {
	return titler.String(strings.ToLower(strings.TrimSpace(name)))
}

func valueOr(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
