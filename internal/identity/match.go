package identity

import (
	"fmt"

	"github.com/edusync/edusync/internal/canonical"
)

// Confidence grades how certain a match between two records is.
type Confidence string

// Confidence tiers. Exact means a unique identifier matched; low matches
// need manual review.
const (
	ConfidenceExact   Confidence = "exact"
	ConfidenceHigh    Confidence = "high"
	ConfidenceMedium  Confidence = "medium"
	ConfidenceLow     Confidence = "low"
	ConfidenceNoMatch Confidence = "no_match"
)

// Field weights for the deterministic match rules.
const (
	weightStateID   = 0.4
	weightEmail     = 0.25
	weightFirstName = 0.15
	weightLastName  = 0.15
	weightDOB       = 0.15
	weightPhone     = 0.1
)

// MatchResult is the outcome of comparing two records.
type MatchResult struct {
	SourceID         string     `json:"source_id"`
	TargetID         string     `json:"target_id"`
	Confidence       Confidence `json:"confidence"`
	Score            float64    `json:"match_score"`
	MatchedFields    []string   `json:"matched_fields"`
	MismatchedFields []string   `json:"mismatched_fields,omitempty"`
	Notes            string     `json:"notes,omitempty"`
}

// MatchRecords compares two records with the deterministic rule set and
// scores how likely they describe the same person. Fields absent from either
// record neither match nor mismatch.
func MatchRecords(a, b canonical.Record, sourceA, sourceB string) MatchResult {
	var matched, mismatched []string
	score := 0.0

	// State ID carries the highest weight and forces an exact match.
	stateA, stateB := a.Get("state_id"), b.Get("state_id")
	if stateA != "" && stateB != "" {
		if stateA == stateB {
			matched = append(matched, "state_id")
			score += weightStateID
		} else {
			mismatched = append(mismatched, "state_id")
		}
	}

	emailA := NormalizeEmail(a.Get("email"))
	emailB := NormalizeEmail(b.Get("email"))
	if emailA != "" && emailB != "" {
		if emailA == emailB {
			matched = append(matched, "email")
			score += weightEmail
		} else {
			mismatched = append(mismatched, "email")
		}
	}

	firstA, firstB := NormalizeName(a.Get("first_name")), NormalizeName(b.Get("first_name"))
	switch {
	case firstA != "" && firstA == firstB:
		matched = append(matched, "first_name")
		score += weightFirstName
	case firstA != "" && firstB != "":
		mismatched = append(mismatched, "first_name")
	}

	lastA, lastB := NormalizeName(a.Get("last_name")), NormalizeName(b.Get("last_name"))
	switch {
	case lastA != "" && lastA == lastB:
		matched = append(matched, "last_name")
		score += weightLastName
	case lastA != "" && lastB != "":
		mismatched = append(mismatched, "last_name")
	}

	dobA, dobB := dateOfBirth(a), dateOfBirth(b)
	if dobA != "" && dobB != "" {
		if dobA == dobB {
			matched = append(matched, "date_of_birth")
			score += weightDOB
		} else {
			mismatched = append(mismatched, "date_of_birth")
		}
	}

	// Phones match on the last ten digits so country prefixes don't matter.
	phoneA := NormalizePhone(a.Get("phone"))
	phoneB := NormalizePhone(b.Get("phone"))
	if len(phoneA) >= 10 && len(phoneB) >= 10 && phoneA[len(phoneA)-10:] == phoneB[len(phoneB)-10:] {
		matched = append(matched, "phone")
		score += weightPhone
	}

	return MatchResult{
		SourceID:         fmt.Sprintf("%s:%s", sourceA, recordID(a)),
		TargetID:         fmt.Sprintf("%s:%s", sourceB, recordID(b)),
		Confidence:       confidenceFor(score, matched),
		Score:            score,
		MatchedFields:    matched,
		MismatchedFields: mismatched,
	}
}

func confidenceFor(score float64, matched []string) Confidence {
	for _, field := range matched {
		if field == "state_id" {
			return ConfidenceExact
		}
	}
	switch {
	case score >= 0.8:
		return ConfidenceHigh
	case score >= 0.5:
		return ConfidenceMedium
	case score >= 0.3:
		return ConfidenceLow
	}
	return ConfidenceNoMatch
}

func dateOfBirth(r canonical.Record) string {
	if dob := r.Get("date_of_birth"); dob != "" {
		return dob
	}
	return r.Get("dob")
}

func recordID(r canonical.Record) string {
	if id := r.Get("student_id"); id != "" {
		return id
	}
	if id := r.Get("id"); id != "" {
		return id
	}
	return "unknown"
}
