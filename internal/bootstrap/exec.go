package bootstrap

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"syscall"
	"time"
)

// killWait bounds how long a child may linger after SIGTERM before it is
// killed outright.
const killWait = 10 * time.Second

// ExecRunner runs commands with os/exec. Children inherit the writers
// from the command and receive SIGTERM when the context is cancelled.
type ExecRunner struct{}

// Run implements CommandRunner.
func (ExecRunner) Run(ctx context.Context, cmd Command) error {
	child := exec.CommandContext(ctx, resolveExecutable(cmd), cmd.Args...)
	child.Stdout = cmd.Stdout
	child.Stderr = cmd.Stderr
	child.Env = childEnv(cmd)
	child.Cancel = func() error {
		return child.Process.Signal(syscall.SIGTERM)
	}
	child.WaitDelay = killWait
	return child.Run()
}

// resolveExecutable prefers the environment's own binary when the command
// names a bare executable and the bin dir carries it.
func resolveExecutable(cmd Command) string {
	if cmd.BinDir == "" || strings.ContainsRune(cmd.Name, os.PathSeparator) {
		return cmd.Name
	}
	local := filepath.Join(cmd.BinDir, cmd.Name)
	if _, err := os.Stat(local); err == nil {
		return local
	}
	return cmd.Name
}

// childEnv mirrors environment activation for the child only. The parent
// process environment is never mutated.
func childEnv(cmd Command) []string {
	env := os.Environ()
	if cmd.EnvDir == "" {
		return env
	}
	absEnv, err := filepath.Abs(cmd.EnvDir)
	if err != nil {
		absEnv = cmd.EnvDir
	}
	env = append(env, "VIRTUAL_ENV="+absEnv)
	if cmd.BinDir != "" {
		absBin, err := filepath.Abs(cmd.BinDir)
		if err != nil {
			absBin = cmd.BinDir
		}
		env = append(env, "PATH="+absBin+string(os.PathListSeparator)+os.Getenv("PATH"))
	}
	return env
}
