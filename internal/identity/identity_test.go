package identity

import (
	"strings"
	"testing"

	"github.com/edusync/edusync/internal/canonical"
)

func TestNormalizeName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"  Maria   GARCIA ", "maria garcia"},
		{"O'Brien", "obrien"},
		{"", ""},
		{"Smith-Jones", "smithjones"},
	}
	for _, tc := range tests {
		if got := NormalizeName(tc.in); got != tc.want {
			t.Fatalf("NormalizeName(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestNormalizePhone(t *testing.T) {
	t.Parallel()

	if got := NormalizePhone("(555) 123-4567"); got != "5551234567" {
		t.Fatalf("NormalizePhone = %q", got)
	}
}

func TestNameSimilarity(t *testing.T) {
	t.Parallel()

	if got := NameSimilarity("Maria", "MARIA "); got != 1 {
		t.Fatalf("identical names = %v, want 1", got)
	}
	if got := NameSimilarity("Maria", ""); got != 0 {
		t.Fatalf("empty name = %v, want 0", got)
	}
	partial := NameSimilarity("Maria", "Mario")
	if partial <= 0 || partial >= 1 {
		t.Fatalf("partial similarity = %v, want between 0 and 1", partial)
	}
}

func TestMatchRecordsStateIDIsExact(t *testing.T) {
	t.Parallel()

	a := canonical.Record{"student_id": "1", "state_id": "TX-100", "first_name": "Maria"}
	b := canonical.Record{"student_id": "2", "state_id": "TX-100", "first_name": "Mari"}

	result := MatchRecords(a, b, "sis", "state")
	if result.Confidence != ConfidenceExact {
		t.Fatalf("confidence = %s, want exact", result.Confidence)
	}
	if result.SourceID != "sis:1" || result.TargetID != "state:2" {
		t.Fatalf("ids = %s / %s", result.SourceID, result.TargetID)
	}
}

func TestMatchRecordsScoresFields(t *testing.T) {
	t.Parallel()

	a := canonical.Record{
		"student_id": "1",
		"first_name": "Maria",
		"last_name":  "Garcia",
		"email":      "Maria.Garcia@Example.com",
		"dob":        "2010-03-15",
		"phone":      "+1 555 123 4567",
	}
	b := canonical.Record{
		"student_id":    "2",
		"first_name":    "MARIA",
		"last_name":     "garcia",
		"email":         "maria.garcia@example.com",
		"date_of_birth": "2010-03-15",
		"phone":         "(555) 123-4567",
	}

	result := MatchRecords(a, b, "a", "b")
	if result.Confidence != ConfidenceHigh {
		t.Fatalf("confidence = %s (score %v), want high", result.Confidence, result.Score)
	}
	want := 0.25 + 0.15 + 0.15 + 0.15 + 0.1
	if result.Score < want-1e-9 || result.Score > want+1e-9 {
		t.Fatalf("score = %v, want %v", result.Score, want)
	}
}

func TestMatchRecordsNoMatch(t *testing.T) {
	t.Parallel()

	a := canonical.Record{"student_id": "1", "first_name": "Maria", "last_name": "Garcia"}
	b := canonical.Record{"student_id": "2", "first_name": "James", "last_name": "Wilson"}

	result := MatchRecords(a, b, "a", "b")
	if result.Confidence != ConfidenceNoMatch {
		t.Fatalf("confidence = %s, want no_match", result.Confidence)
	}
	if len(result.MismatchedFields) != 2 {
		t.Fatalf("mismatched = %v", result.MismatchedFields)
	}
}

func TestGenerateGoldenID(t *testing.T) {
	t.Parallel()

	golden := GoldenRecord{FirstName: "Maria", LastName: "Garcia", DateOfBirth: "2010-03-15", StateID: "TX-100"}
	id := golden.GenerateGoldenID()
	if !strings.HasPrefix(id, "GR-") || len(id) != 15 {
		t.Fatalf("golden id = %q", id)
	}
	if id != strings.ToUpper(id) {
		t.Fatalf("golden id not uppercase: %q", id)
	}
	if other := golden.GenerateGoldenID(); other != id {
		t.Fatalf("golden id not deterministic: %q vs %q", other, id)
	}
}

func TestResolveCreatesAndMerges(t *testing.T) {
	t.Parallel()

	r := NewResolver()
	first := canonical.Record{
		"student_id": "SIS-1",
		"first_name": "maria",
		"last_name":  "GARCIA",
		"state_id":   "TX-100",
		"dob":        "2010-03-15",
	}
	goldenID, created := r.Resolve(first, "sis")
	if !created {
		t.Fatal("expected first resolve to create a golden record")
	}

	golden, ok := r.GoldenRecord(goldenID)
	if !ok {
		t.Fatalf("golden record %s missing", goldenID)
	}
	if golden.FirstName != "Maria" || golden.LastName != "Garcia" {
		t.Fatalf("golden names = %s %s, want title case", golden.FirstName, golden.LastName)
	}

	// Same person from another source matches on state id.
	second := canonical.Record{
		"student_id": "ST-77",
		"first_name": "Maria",
		"last_name":  "Garcia",
		"state_id":   "TX-100",
	}
	mergedID, created := r.Resolve(second, "state")
	if created {
		t.Fatal("expected state record to merge, not create")
	}
	if mergedID != goldenID {
		t.Fatalf("merged id = %s, want %s", mergedID, goldenID)
	}
	if golden.SourceIDs["state"] != "ST-77" {
		t.Fatalf("source ids = %v", golden.SourceIDs)
	}

	// Resolving the same source record again reuses the mapping.
	againID, created := r.Resolve(second, "state")
	if created || againID != goldenID {
		t.Fatalf("repeat resolve = %s created=%v", againID, created)
	}

	stats := r.Stats()
	if stats.GoldenRecords != 1 || stats.SourceMappings != 2 {
		t.Fatalf("stats = %+v", stats)
	}
}

func TestFindDuplicates(t *testing.T) {
	t.Parallel()

	r := NewResolver()
	records := []canonical.Record{
		{"student_id": "1", "first_name": "Maria", "last_name": "Garcia", "email": "mg@example.com", "dob": "2010-03-15"},
		{"student_id": "2", "first_name": "MARIA", "last_name": "garcia", "email": "mg@example.com", "dob": "2010-03-15"},
		{"student_id": "3", "first_name": "James", "last_name": "Wilson"},
	}
	duplicates := r.FindDuplicates(records, "sis")
	if len(duplicates) != 1 {
		t.Fatalf("duplicates = %d, want 1", len(duplicates))
	}
	if r.Stats().HighConfidenceMatches != 1 {
		t.Fatalf("stats = %+v", r.Stats())
	}
}

func TestBuildHouseholdGraph(t *testing.T) {
	t.Parallel()

	r := NewResolver()
	guardians := []canonical.Record{
		{
			"guardian_id":        "G-1",
			"student_ids":        "S-1, S-2",
			"relationship":       "Mother",
			"custody_type":       "Joint",
			"emergency_priority": "1",
		},
		{"guardian_id": "G-2", "student_ids": "S-1"},
	}
	graph := r.BuildHouseholdGraph(guardians)

	if len(graph.Relationships) != 3 {
		t.Fatalf("relationships = %d, want 3", len(graph.Relationships))
	}
	forStudent := graph.GuardiansForStudent("S-1")
	if len(forStudent) != 2 {
		t.Fatalf("guardians for S-1 = %d, want 2", len(forStudent))
	}
	forGuardian := graph.StudentsForGuardian("G-1")
	if len(forGuardian) != 2 {
		t.Fatalf("students for G-1 = %d, want 2", len(forGuardian))
	}
	if forGuardian[0].RelationshipType != "Mother" || forGuardian[0].CustodyType != "Joint" {
		t.Fatalf("relationship = %+v", forGuardian[0])
	}
	if defaulted := graph.GuardiansForStudent("S-1")[1]; defaulted.RelationshipType != "Guardian" || defaulted.CustodyType != "Full" {
		t.Fatalf("defaults = %+v", defaulted)
	}
}
