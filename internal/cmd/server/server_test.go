package server

import (
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/edusync/edusync/internal/canonical"
)

func TestParseConfigDefaults(t *testing.T) {
	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, nil)
	if err != nil {
		t.Fatalf("ParseConfig() = %v", err)
	}
	if cfg.Addr != "localhost:8501" {
		t.Errorf("Addr = %q, want %q", cfg.Addr, "localhost:8501")
	}
	if cfg.DBPath != "edusync.db" {
		t.Errorf("DBPath = %q, want %q", cfg.DBPath, "edusync.db")
	}
	if !cfg.Headless {
		t.Error("Headless = false, want true")
	}
	if cfg.Preset != "demo" {
		t.Errorf("Preset = %q, want %q", cfg.Preset, "demo")
	}
}

func TestParseConfigEnvOverride(t *testing.T) {
	t.Setenv("EDUSYNC_SERVER_ADDR", "localhost:9000")
	t.Setenv("EDUSYNC_SERVER_DB", "/tmp/demo.db")

	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, nil)
	if err != nil {
		t.Fatalf("ParseConfig() = %v", err)
	}
	if cfg.Addr != "localhost:9000" {
		t.Errorf("Addr = %q, want %q", cfg.Addr, "localhost:9000")
	}
	if cfg.DBPath != "/tmp/demo.db" {
		t.Errorf("DBPath = %q, want %q", cfg.DBPath, "/tmp/demo.db")
	}
}

func TestParseConfigFlagsWinOverEnv(t *testing.T) {
	t.Setenv("EDUSYNC_SERVER_ADDR", "localhost:9000")

	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, []string{"-addr", "localhost:9100", "-headless=false"})
	if err != nil {
		t.Fatalf("ParseConfig() = %v", err)
	}
	if cfg.Addr != "localhost:9100" {
		t.Errorf("Addr = %q, want %q", cfg.Addr, "localhost:9100")
	}
	if cfg.Headless {
		t.Error("Headless = true, want false")
	}
}

func TestParseConfigRulesScript(t *testing.T) {
	t.Setenv("EDUSYNC_SERVER_RULES", "district.lua")

	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, nil)
	if err != nil {
		t.Fatalf("ParseConfig() = %v", err)
	}
	if cfg.RulesScript != "district.lua" {
		t.Errorf("RulesScript = %q, want %q", cfg.RulesScript, "district.lua")
	}

	fs = flag.NewFlagSet("server", flag.ContinueOnError)
	cfg, err = ParseConfig(fs, []string{"-rules-script", "override.lua"})
	if err != nil {
		t.Fatalf("ParseConfig() = %v", err)
	}
	if cfg.RulesScript != "override.lua" {
		t.Errorf("RulesScript = %q, want %q", cfg.RulesScript, "override.lua")
	}
}

func TestLoadRulesScript(t *testing.T) {
	path := filepath.Join(t.TempDir(), "uppercase-status.lua")
	script := `return function(record)
    record.status = string.upper(record.status or "")
    return record
end`
	if err := os.WriteFile(path, []byte(script), 0o644); err != nil {
		t.Fatalf("write script: %v", err)
	}

	rule, err := loadRulesScript(path)
	if err != nil {
		t.Fatalf("loadRulesScript() = %v", err)
	}
	if rule.Name != "uppercase-status" {
		t.Errorf("rule name = %q, want %q", rule.Name, "uppercase-status")
	}
	out := rule.Apply(canonical.Record{"status": "active"})
	if out["status"] != "ACTIVE" {
		t.Errorf("status = %q, want %q", out["status"], "ACTIVE")
	}
}

func TestLoadRulesScriptMissingFile(t *testing.T) {
	if _, err := loadRulesScript(filepath.Join(t.TempDir(), "missing.lua")); err == nil {
		t.Fatal("expected an error for a missing script")
	}
}
