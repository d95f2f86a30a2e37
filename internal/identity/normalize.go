// Package identity resolves person identities across legacy source systems:
// normalization, deterministic matching, golden records and the household
// graph linking guardians to students.
package identity

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
)

var (
	nonWord    = regexp.MustCompile(`[^\w\s]`)
	whitespace = regexp.MustCompile(`\s+`)
	nonDigit   = regexp.MustCompile(`[^\d]`)
)

var folder = cases.Fold()

// NormalizeName lowercases a name with Unicode case folding, strips
// punctuation and collapses whitespace.
func NormalizeName(name string) string {
	if name == "" {
		return ""
	}
	normalized := folder.String(strings.TrimSpace(name))
	normalized = nonWord.ReplaceAllString(normalized, "")
	normalized = whitespace.ReplaceAllString(normalized, " ")
	return strings.TrimSpace(normalized)
}

// NormalizeEmail lowercases and trims an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NormalizePhone strips a phone number down to its digits.
func NormalizePhone(phone string) string {
	return nonDigit.ReplaceAllString(phone, "")
}

// NameSimilarity scores two names from 0 to 1. Equal normalized names score
// 1; otherwise the score is the Jaccard overlap of their character sets.
func NameSimilarity(a, b string) float64 {
	na := NormalizeName(a)
	nb := NormalizeName(b)
	if na == nb {
		if na == "" {
			return 0
		}
		return 1
	}
	if na == "" || nb == "" {
		return 0
	}

	setA := map[rune]bool{}
	for _, r := range na {
		setA[r] = true
	}
	setB := map[rune]bool{}
	for _, r := range nb {
		setB[r] = true
	}
	intersection := 0
	for r := range setA {
		if setB[r] {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}
