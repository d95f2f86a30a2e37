package bootstrap

import (
	"flag"
	"testing"
)

func TestParseConfigDefaults(t *testing.T) {
	fs := flag.NewFlagSet("bootstrap", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, nil)
	if err != nil {
		t.Fatalf("ParseConfig() = %v", err)
	}
	if cfg.EnvDir != "venv" {
		t.Errorf("EnvDir = %q, want %q", cfg.EnvDir, "venv")
	}
	if cfg.Manifest != "requirements.txt" {
		t.Errorf("Manifest = %q, want %q", cfg.Manifest, "requirements.txt")
	}
	if cfg.Interpreter != "python3" {
		t.Errorf("Interpreter = %q, want %q", cfg.Interpreter, "python3")
	}
	if cfg.ServerCmd != "" {
		t.Errorf("ServerCmd = %q, want empty", cfg.ServerCmd)
	}
	if cfg.Port != 8501 {
		t.Errorf("Port = %d, want 8501", cfg.Port)
	}
}

func TestParseConfigEnvOverride(t *testing.T) {
	t.Setenv("EDUSYNC_BOOTSTRAP_ENV_DIR", ".venv")
	t.Setenv("EDUSYNC_BOOTSTRAP_SERVER_CMD", "edusync-server -headless=true")

	fs := flag.NewFlagSet("bootstrap", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, nil)
	if err != nil {
		t.Fatalf("ParseConfig() = %v", err)
	}
	if cfg.EnvDir != ".venv" {
		t.Errorf("EnvDir = %q, want %q", cfg.EnvDir, ".venv")
	}
	if cfg.ServerCmd != "edusync-server -headless=true" {
		t.Errorf("ServerCmd = %q", cfg.ServerCmd)
	}
}

func TestParseConfigFlagsWinOverEnv(t *testing.T) {
	t.Setenv("EDUSYNC_BOOTSTRAP_INTERPRETER", "python3.11")

	fs := flag.NewFlagSet("bootstrap", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, []string{"-interpreter", "python3.12", "-verify"})
	if err != nil {
		t.Fatalf("ParseConfig() = %v", err)
	}
	if cfg.Interpreter != "python3.12" {
		t.Errorf("Interpreter = %q, want %q", cfg.Interpreter, "python3.12")
	}
	if !cfg.Verify {
		t.Error("Verify = false, want true")
	}
}
