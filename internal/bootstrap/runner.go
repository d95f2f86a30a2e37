// Package bootstrap provisions the demo's runtime environment and hands
// control to the demo server process. The stages run in a fixed order and
// abort on the first failure.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

var (
	// ErrEnsureEnv indicates the runtime environment could not be created
	// or verified.
	ErrEnsureEnv = errors.New("environment setup failed")
	// ErrInstall indicates the dependency install stage failed.
	ErrInstall = errors.New("dependency install failed")
	// ErrLaunch indicates the demo server could not be launched or exited
	// with an error.
	ErrLaunch = errors.New("server launch failed")
)

// Options configure the bootstrap runner.
type Options struct {
	// EnvDir is the isolated environment directory. Defaults to "venv".
	EnvDir string
	// Manifest is the dependency manifest. Defaults to "requirements.txt".
	Manifest string
	// Interpreter creates the environment. Defaults to "python3".
	Interpreter string
	// ServerCmd launches the demo. Defaults to streamlit in headless mode.
	// Relative command names resolve against the environment's bin dir.
	ServerCmd []string
	// Port is the demo server's port, used for the banner only.
	Port int
	// VerifyEnv probes an existing environment directory for the
	// interpreter before reusing it.
	VerifyEnv bool
	// Stdout receives the stage banners. Defaults to os.Stdout.
	Stdout io.Writer
}

func (o Options) withDefaults() Options {
	if o.EnvDir == "" {
		o.EnvDir = "venv"
	}
	if o.Manifest == "" {
		o.Manifest = "requirements.txt"
	}
	if o.Interpreter == "" {
		o.Interpreter = "python3"
	}
	if len(o.ServerCmd) == 0 {
		o.ServerCmd = []string{"streamlit", "run", "app.py", "--server.headless=true"}
	}
	if o.Port == 0 {
		o.Port = 8501
	}
	if o.Stdout == nil {
		o.Stdout = os.Stdout
	}
	return o
}

// Command is one external invocation. BinDir is the environment's
// executable directory, threaded explicitly instead of mutating the
// process environment.
type Command struct {
	Name   string
	Args   []string
	BinDir string
	Stdout io.Writer
	Stderr io.Writer
	EnvDir string
}

// CommandRunner executes one external command and blocks until it exits.
type CommandRunner interface {
	Run(ctx context.Context, cmd Command) error
}

// Runner executes the bootstrap stages.
type Runner struct {
	opts Options
	exec CommandRunner
	stat func(string) (os.FileInfo, error)
}

// NewRunner returns a runner over the given command executor.
func NewRunner(opts Options, exec CommandRunner) *Runner {
	return &Runner{
		opts: opts.withDefaults(),
		exec: exec,
		stat: os.Stat,
	}
}

// Run executes ensure, install, and launch in order. The launch stage
// blocks until the server exits or the context is cancelled.
func (r *Runner) Run(ctx context.Context) error {
	binDir, err := r.ensureEnv(ctx)
	if err != nil {
		return err
	}
	if err := r.install(ctx, binDir); err != nil {
		return err
	}
	return r.launch(ctx, binDir)
}

// ensureEnv creates the environment directory when absent and returns the
// resolved executable directory.
func (r *Runner) ensureEnv(ctx context.Context) (string, error) {
	binDir := filepath.Join(r.opts.EnvDir, "bin")

	info, err := r.stat(r.opts.EnvDir)
	switch {
	case err == nil && info.IsDir():
		if r.opts.VerifyEnv {
			if _, err := r.stat(filepath.Join(binDir, filepath.Base(r.opts.Interpreter))); err != nil {
				return "", fmt.Errorf("%s exists but holds no %s: %w", r.opts.EnvDir, r.opts.Interpreter, ErrEnsureEnv)
			}
		}
		fmt.Fprintln(r.opts.Stdout, "✅ Using existing virtual environment")
		return binDir, nil
	case err == nil:
		return "", fmt.Errorf("%s exists and is not a directory: %w", r.opts.EnvDir, ErrEnsureEnv)
	case !os.IsNotExist(err):
		return "", fmt.Errorf("inspect %s: %v: %w", r.opts.EnvDir, err, ErrEnsureEnv)
	}

	fmt.Fprintln(r.opts.Stdout, "📦 Creating virtual environment...")
	create := Command{
		Name:   r.opts.Interpreter,
		Args:   []string{"-m", "venv", r.opts.EnvDir},
		Stdout: r.opts.Stdout,
		Stderr: os.Stderr,
		EnvDir: r.opts.EnvDir,
	}
	if err := r.exec.Run(ctx, create); err != nil {
		return "", fmt.Errorf("create environment: %v: %w", err, ErrEnsureEnv)
	}
	return binDir, nil
}

// install runs the environment's installer against the manifest with
// stdout suppressed. A missing manifest aborts before the installer runs.
func (r *Runner) install(ctx context.Context, binDir string) error {
	if _, err := r.stat(r.opts.Manifest); err != nil {
		return fmt.Errorf("manifest %s: %v: %w", r.opts.Manifest, err, ErrInstall)
	}

	fmt.Fprintln(r.opts.Stdout, "📚 Installing dependencies...")
	install := Command{
		Name:   "pip",
		Args:   []string{"install", "-q", "-r", r.opts.Manifest},
		BinDir: binDir,
		Stdout: io.Discard,
		Stderr: os.Stderr,
		EnvDir: r.opts.EnvDir,
	}
	if err := r.exec.Run(ctx, install); err != nil {
		return fmt.Errorf("install dependencies: %v: %w", err, ErrInstall)
	}
	return nil
}

// launch starts the demo server and blocks for its lifetime.
func (r *Runner) launch(ctx context.Context, binDir string) error {
	fmt.Fprintln(r.opts.Stdout, "🚀 Launching demo server...")
	fmt.Fprintf(r.opts.Stdout, "🌐 Open http://localhost:%d in your browser (Ctrl+C to stop)\n", r.opts.Port)

	serve := Command{
		Name:   r.opts.ServerCmd[0],
		Args:   r.opts.ServerCmd[1:],
		BinDir: binDir,
		Stdout: r.opts.Stdout,
		Stderr: os.Stderr,
		EnvDir: r.opts.EnvDir,
	}
	if err := r.exec.Run(ctx, serve); err != nil {
		return fmt.Errorf("run demo server: %v: %w", err, ErrLaunch)
	}
	return nil
}
