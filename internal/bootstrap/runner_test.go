package bootstrap

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type fakeRunner struct {
	commands []Command
	fail     map[string]error
	onRun    func(cmd Command)
}

func (f *fakeRunner) Run(_ context.Context, cmd Command) error {
	f.commands = append(f.commands, cmd)
	if f.onRun != nil {
		f.onRun(cmd)
	}
	if err, ok := f.fail[cmd.Name]; ok {
		return err
	}
	return nil
}

func (f *fakeRunner) names() []string {
	out := make([]string, 0, len(f.commands))
	for _, cmd := range f.commands {
		out = append(out, cmd.Name)
	}
	return out
}

func writeManifest(t *testing.T, dir string) string {
	t.Helper()

	path := filepath.Join(dir, "requirements.txt")
	if err := os.WriteFile(path, []byte("streamlit==1.31.0\npandas==2.1.4\n"), 0o644); err != nil {
		t.Fatalf("write manifest: %v", err)
	}
	return path
}

func TestRunFreshCheckoutCreatesInstallsLaunches(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	manifest := writeManifest(t, dir)
	envDir := filepath.Join(dir, "venv")

	fake := &fakeRunner{
		onRun: func(cmd Command) {
			if cmd.Name == "python3" {
				if err := os.MkdirAll(filepath.Join(envDir, "bin"), 0o755); err != nil {
					t.Errorf("create env dir: %v", err)
				}
			}
		},
	}
	var out bytes.Buffer
	runner := NewRunner(Options{EnvDir: envDir, Manifest: manifest, Stdout: &out}, fake)

	if err := runner.Run(context.Background()); err != nil {
		t.Fatalf("Run() = %v, want nil", err)
	}

	want := []string{"python3", "pip", "streamlit"}
	if got := fake.names(); len(got) != len(want) {
		t.Fatalf("commands = %v, want %v", got, want)
	} else {
		for i := range want {
			if got[i] != want[i] {
				t.Fatalf("commands = %v, want %v", got, want)
			}
		}
	}

	create := fake.commands[0]
	if len(create.Args) != 3 || create.Args[0] != "-m" || create.Args[1] != "venv" || create.Args[2] != envDir {
		t.Errorf("create args = %v", create.Args)
	}
}

func TestRunReusesExistingEnvironment(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	manifest := writeManifest(t, dir)
	envDir := filepath.Join(dir, "venv")
	if err := os.MkdirAll(filepath.Join(envDir, "bin"), 0o755); err != nil {
		t.Fatalf("create env dir: %v", err)
	}

	fake := &fakeRunner{}
	var out bytes.Buffer
	runner := NewRunner(Options{EnvDir: envDir, Manifest: manifest, Stdout: &out}, fake)

	if err := runner.Run(context.Background()); err != nil {
		t.Fatalf("Run() = %v, want nil", err)
	}

	for _, cmd := range fake.commands {
		if cmd.Name == "python3" {
			t.Fatalf("environment was recreated: %v", fake.names())
		}
	}
	if !strings.Contains(out.String(), "Using existing virtual environment") {
		t.Errorf("missing reuse banner in %q", out.String())
	}
}

func TestRunMissingManifestNeverLaunches(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	envDir := filepath.Join(dir, "venv")
	if err := os.MkdirAll(filepath.Join(envDir, "bin"), 0o755); err != nil {
		t.Fatalf("create env dir: %v", err)
	}

	fake := &fakeRunner{}
	runner := NewRunner(Options{
		EnvDir:   envDir,
		Manifest: filepath.Join(dir, "requirements.txt"),
		Stdout:   io.Discard,
	}, fake)

	err := runner.Run(context.Background())
	if !errors.Is(err, ErrInstall) {
		t.Fatalf("Run() = %v, want ErrInstall", err)
	}
	if len(fake.commands) != 0 {
		t.Errorf("commands ran despite missing manifest: %v", fake.names())
	}
}

func TestRunInstallFailureStopsBeforeLaunch(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	manifest := writeManifest(t, dir)
	envDir := filepath.Join(dir, "venv")
	if err := os.MkdirAll(filepath.Join(envDir, "bin"), 0o755); err != nil {
		t.Fatalf("create env dir: %v", err)
	}

	fake := &fakeRunner{fail: map[string]error{"pip": errors.New("resolver conflict")}}
	runner := NewRunner(Options{EnvDir: envDir, Manifest: manifest, Stdout: io.Discard}, fake)

	err := runner.Run(context.Background())
	if !errors.Is(err, ErrInstall) {
		t.Fatalf("Run() = %v, want ErrInstall", err)
	}
	for _, cmd := range fake.commands {
		if cmd.Name == "streamlit" {
			t.Fatal("server launched after failed install")
		}
	}
}

func TestRunEnvironmentCreationFailure(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	manifest := writeManifest(t, dir)

	fake := &fakeRunner{fail: map[string]error{"python3": errors.New("interpreter not found")}}
	runner := NewRunner(Options{
		EnvDir:   filepath.Join(dir, "venv"),
		Manifest: manifest,
		Stdout:   io.Discard,
	}, fake)

	err := runner.Run(context.Background())
	if !errors.Is(err, ErrEnsureEnv) {
		t.Fatalf("Run() = %v, want ErrEnsureEnv", err)
	}
	if len(fake.commands) != 1 {
		t.Errorf("commands = %v, want only the create attempt", fake.names())
	}
}

func TestRunLaunchIsHeadlessAndQuietInstall(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	manifest := writeManifest(t, dir)
	envDir := filepath.Join(dir, "venv")
	if err := os.MkdirAll(filepath.Join(envDir, "bin"), 0o755); err != nil {
		t.Fatalf("create env dir: %v", err)
	}

	fake := &fakeRunner{}
	var out bytes.Buffer
	runner := NewRunner(Options{EnvDir: envDir, Manifest: manifest, Stdout: &out}, fake)

	if err := runner.Run(context.Background()); err != nil {
		t.Fatalf("Run() = %v, want nil", err)
	}

	var install, launch *Command
	for i := range fake.commands {
		switch fake.commands[i].Name {
		case "pip":
			install = &fake.commands[i]
		case "streamlit":
			launch = &fake.commands[i]
		}
	}
	if install == nil || launch == nil {
		t.Fatalf("commands = %v, want pip and streamlit", fake.names())
	}
	if install.Stdout != io.Discard {
		t.Error("install stdout is not suppressed")
	}
	quiet := false
	for _, arg := range install.Args {
		if arg == "-q" {
			quiet = true
		}
	}
	if !quiet {
		t.Errorf("install args = %v, want -q", install.Args)
	}

	headless := false
	for _, arg := range launch.Args {
		if arg == "--server.headless=true" {
			headless = true
		}
	}
	if !headless {
		t.Errorf("launch args = %v, want --server.headless=true", launch.Args)
	}
	if launch.BinDir != filepath.Join(envDir, "bin") {
		t.Errorf("launch bin dir = %q", launch.BinDir)
	}
	if !strings.Contains(out.String(), "http://localhost:8501") {
		t.Errorf("banner %q does not name the demo URL", out.String())
	}
}

func TestRunVerifyEnvRejectsBrokenEnvironment(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	manifest := writeManifest(t, dir)
	envDir := filepath.Join(dir, "venv")
	if err := os.MkdirAll(envDir, 0o755); err != nil {
		t.Fatalf("create env dir: %v", err)
	}

	fake := &fakeRunner{}
	runner := NewRunner(Options{
		EnvDir:    envDir,
		Manifest:  manifest,
		VerifyEnv: true,
		Stdout:    io.Discard,
	}, fake)

	err := runner.Run(context.Background())
	if !errors.Is(err, ErrEnsureEnv) {
		t.Fatalf("Run() = %v, want ErrEnsureEnv", err)
	}
	if len(fake.commands) != 0 {
		t.Errorf("commands ran against a broken environment: %v", fake.names())
	}
}

func TestRunCustomServerCommand(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	manifest := writeManifest(t, dir)
	envDir := filepath.Join(dir, "venv")
	if err := os.MkdirAll(filepath.Join(envDir, "bin"), 0o755); err != nil {
		t.Fatalf("create env dir: %v", err)
	}

	fake := &fakeRunner{}
	runner := NewRunner(Options{
		EnvDir:    envDir,
		Manifest:  manifest,
		ServerCmd: []string{"/usr/local/bin/edusync-server", "--headless=true"},
		Port:      9000,
		Stdout:    io.Discard,
	}, fake)

	if err := runner.Run(context.Background()); err != nil {
		t.Fatalf("Run() = %v, want nil", err)
	}

	last := fake.commands[len(fake.commands)-1]
	if last.Name != "/usr/local/bin/edusync-server" {
		t.Errorf("launch command = %q", last.Name)
	}
	if len(last.Args) != 1 || last.Args[0] != "--headless=true" {
		t.Errorf("launch args = %v", last.Args)
	}
}
