// Package rules applies record-cleaning transforms during the migration's
// cleaning stage. Built-in rules cover the defects every legacy source
// shares; districts add their own as Lua scripts.
package rules

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/edusync/edusync/internal/canonical"
)

// Rule is one named transform over a raw source record.
type Rule struct {
	Name  string
	Apply func(canonical.Record) canonical.Record
}

var nameFields = []string{"first_name", "last_name", "middle_name"}

var nullTokens = map[string]struct{}{
	"NULL": {},
	"N/A":  {},
	"NONE": {},
	"NIL":  {},
	"-":    {},
}

// TrimWhitespace collapses surrounding and doubled spaces in every field.
func TrimWhitespace() Rule {
	return Rule{
		Name: "trim-whitespace",
		Apply: func(rec canonical.Record) canonical.Record {
			out := rec.Clone()
			for k, v := range out {
				out[k] = strings.Join(strings.Fields(v), " ")
			}
			return out
		},
	}
}

// TitleCaseNames normalizes name fields to title case.
func TitleCaseNames() Rule {
	titler := cases.Title(language.AmericanEnglish)
	return Rule{
		Name: "title-case-names",
		Apply: func(rec canonical.Record) canonical.Record {
			out := rec.Clone()
			for _, field := range nameFields {
				if v, ok := out[field]; ok && v != "" {
					out[field] = titler.String(strings.ToLower(v))
				}
			}
			return out
		},
	}
}

// ScrubNullTokens blanks the placeholder values legacy exports use for
// missing data.
func ScrubNullTokens() Rule {
	return Rule{
		Name: "scrub-null-tokens",
		Apply: func(rec canonical.Record) canonical.Record {
			out := rec.Clone()
			for k, v := range out {
				if _, null := nullTokens[strings.ToUpper(strings.TrimSpace(v))]; null {
					out[k] = ""
				}
			}
			return out
		},
	}
}

// FixDoubledEmailAt repairs the "@@" typo common in hand-keyed emails.
func FixDoubledEmailAt() Rule {
	return Rule{
		Name: "fix-doubled-email-at",
		Apply: func(rec canonical.Record) canonical.Record {
			out := rec.Clone()
			if email, ok := out["email"]; ok {
				out["email"] = strings.Replace(email, "@@", "@", 1)
			}
			return out
		},
	}
}

// DefaultRules is the transform chain applied to every record before
// validation and identity resolution.
func DefaultRules() []Rule {
	return []Rule{
		TrimWhitespace(),
		ScrubNullTokens(),
		TitleCaseNames(),
		FixDoubledEmailAt(),
	}
}

// Engine runs an ordered rule chain over records.
type Engine struct {
	rules []Rule
}

// NewEngine returns an Engine loaded with the default rules.
func NewEngine() *Engine {
	return &Engine{rules: DefaultRules()}
}

// NewEmptyEngine returns an Engine with no rules registered.
func NewEmptyEngine() *Engine {
	return &Engine{}
}

// Add appends a rule to the chain.
func (e *Engine) Add(rule Rule) {
	e.rules = append(e.rules, rule)
}

// Rules returns the names of the registered rules in order.
func (e *Engine) Rules() []string {
	names := make([]string, 0, len(e.rules))
	for _, r := range e.rules {
		names = append(names, r.Name)
	}
	return names
}

// Apply runs the chain over one record. The input is not modified.
func (e *Engine) Apply(rec canonical.Record) canonical.Record {
	out := rec.Clone()
	for _, rule := range e.rules {
		out = rule.Apply(out)
	}
	return out
}

// ApplyAll runs the chain over a batch of records.
func (e *Engine) ApplyAll(records []canonical.Record) []canonical.Record {
	out := make([]canonical.Record, 0, len(records))
	for _, rec := range records {
		out = append(out, e.Apply(rec))
	}
	return out
}
