package rules

import (
	"testing"

	"github.com/edusync/edusync/internal/canonical"
)

func TestTrimWhitespace(t *testing.T) {
	t.Parallel()

	rule := TrimWhitespace()
	got := rule.Apply(canonical.Record{
		"first_name": "  Maria   Elena ",
		"email":      "maria@school.edu",
	})
	if got["first_name"] != "Maria Elena" {
		t.Fatalf("first_name = %q, want %q", got["first_name"], "Maria Elena")
	}
	if got["email"] != "maria@school.edu" {
		t.Fatalf("email = %q, should be untouched", got["email"])
	}
}

func TestTitleCaseNames(t *testing.T) {
	t.Parallel()

	rule := TitleCaseNames()
	got := rule.Apply(canonical.Record{
		"first_name": "MARIA",
		"last_name":  "garcia",
		"email":      "MARIA@SCHOOL.EDU",
	})
	if got["first_name"] != "Maria" || got["last_name"] != "Garcia" {
		t.Fatalf("names = %q %q, want Maria Garcia", got["first_name"], got["last_name"])
	}
	if got["email"] != "MARIA@SCHOOL.EDU" {
		t.Fatalf("email = %q, should be untouched", got["email"])
	}
}

func TestScrubNullTokens(t *testing.T) {
	t.Parallel()

	rule := ScrubNullTokens()
	got := rule.Apply(canonical.Record{
		"phone": "NULL",
		"gpa":   "n/a",
		"email": "maria@school.edu",
	})
	if got["phone"] != "" || got["gpa"] != "" {
		t.Fatalf("null tokens should be blanked: %v", got)
	}
	if got["email"] != "maria@school.edu" {
		t.Fatalf("email = %q, should be untouched", got["email"])
	}
}

func TestFixDoubledEmailAt(t *testing.T) {
	t.Parallel()

	rule := FixDoubledEmailAt()
	got := rule.Apply(canonical.Record{"email": "maria@@school.edu"})
	if got["email"] != "maria@school.edu" {
		t.Fatalf("email = %q, want maria@school.edu", got["email"])
	}
}

func TestEngineDefaultChain(t *testing.T) {
	t.Parallel()

	e := NewEngine()
	got := e.Apply(canonical.Record{
		"first_name": "  MARIA ",
		"last_name":  "garcia",
		"email":      "maria@@school.edu",
		"phone":      "N/A",
	})
	if got["first_name"] != "Maria" {
		t.Fatalf("first_name = %q, want Maria", got["first_name"])
	}
	if got["email"] != "maria@school.edu" {
		t.Fatalf("email = %q, want maria@school.edu", got["email"])
	}
	if got["phone"] != "" {
		t.Fatalf("phone = %q, want blank", got["phone"])
	}
}

func TestEngineDoesNotMutateInput(t *testing.T) {
	t.Parallel()

	in := canonical.Record{"first_name": "  MARIA "}
	NewEngine().Apply(in)
	if in["first_name"] != "  MARIA " {
		t.Fatalf("input mutated: %q", in["first_name"])
	}
}

func TestApplyAll(t *testing.T) {
	t.Parallel()

	e := NewEngine()
	out := e.ApplyAll([]canonical.Record{
		{"first_name": "JANE"},
		{"first_name": "bob"},
	})
	if len(out) != 2 {
		t.Fatalf("records = %d, want 2", len(out))
	}
	if out[0]["first_name"] != "Jane" || out[1]["first_name"] != "Bob" {
		t.Fatalf("names = %q %q", out[0]["first_name"], out[1]["first_name"])
	}
}

func TestRuleNames(t *testing.T) {
	t.Parallel()

	e := NewEngine()
	names := e.Rules()
	if len(names) != 4 {
		t.Fatalf("rules = %v, want 4 defaults", names)
	}
	if names[0] != "trim-whitespace" {
		t.Fatalf("first rule = %q, want trim-whitespace", names[0])
	}
}

func TestScriptRule(t *testing.T) {
	t.Parallel()

	rule, err := NewScriptRule("uppercase-state-id", `
		return function(record)
			if record.state_id ~= nil then
				record.state_id = string.upper(record.state_id)
			end
			record.cleaned = "true"
			return record
		end
	`)
	if err != nil {
		t.Fatalf("NewScriptRule: %v", err)
	}

	got := rule.Apply(canonical.Record{"state_id": "tx-12345", "first_name": "Maria"})
	if got["state_id"] != "TX-12345" {
		t.Fatalf("state_id = %q, want TX-12345", got["state_id"])
	}
	if got["cleaned"] != "true" {
		t.Fatalf("cleaned = %q, want true", got["cleaned"])
	}
	if got["first_name"] != "Maria" {
		t.Fatalf("first_name = %q, should carry through", got["first_name"])
	}
}

func TestScriptRuleInEngineChain(t *testing.T) {
	t.Parallel()

	e := NewEngine()
	rule, err := NewScriptRule("default-status", `
		return function(record)
			if record.status == nil or record.status == "" then
				record.status = "Active"
			end
			return record
		end
	`)
	if err != nil {
		t.Fatalf("NewScriptRule: %v", err)
	}
	e.Add(rule)

	got := e.Apply(canonical.Record{"first_name": "BOB", "status": ""})
	if got["status"] != "Active" {
		t.Fatalf("status = %q, want Active", got["status"])
	}
	if got["first_name"] != "Bob" {
		t.Fatalf("first_name = %q, want Bob", got["first_name"])
	}
}

func TestScriptRuleRejectsNonFunction(t *testing.T) {
	t.Parallel()

	if _, err := NewScriptRule("bad", `return 42`); err == nil {
		t.Fatal("expected error for script returning a number")
	}
	if _, err := NewScriptRule("broken", `this is not lua`); err == nil {
		t.Fatal("expected error for invalid syntax")
	}
}

func TestScriptRuleErrorFallsBackToInput(t *testing.T) {
	t.Parallel()

	rule, err := NewScriptRule("explode", `
		return function(record)
			error("boom")
		end
	`)
	if err != nil {
		t.Fatalf("NewScriptRule: %v", err)
	}

	in := canonical.Record{"first_name": "Maria"}
	got := rule.Apply(in)
	if got["first_name"] != "Maria" {
		t.Fatalf("record should pass through on script error: %v", got)
	}
}
