// Package bootstrap parses configuration for the demo bootstrap command.
package bootstrap

import (
	"context"
	"flag"
	"io"
	"strings"

	bootstraprun "github.com/edusync/edusync/internal/bootstrap"
	platformcmd "github.com/edusync/edusync/internal/platform/cmd"
)

// Config holds bootstrap command configuration.
type Config struct {
	EnvDir      string `env:"EDUSYNC_BOOTSTRAP_ENV_DIR"`
	Manifest    string `env:"EDUSYNC_BOOTSTRAP_MANIFEST"`
	Interpreter string `env:"EDUSYNC_BOOTSTRAP_INTERPRETER"`
	ServerCmd   string `env:"EDUSYNC_BOOTSTRAP_SERVER_CMD"`
	Port        int    `env:"EDUSYNC_BOOTSTRAP_PORT"`
	Verify      bool   `env:"EDUSYNC_BOOTSTRAP_VERIFY"`
}

// ParseConfig loads environment defaults and then parses flags.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	cfg := Config{
		EnvDir:      "venv",
		Manifest:    "requirements.txt",
		Interpreter: "python3",
		Port:        8501,
	}
	if err := platformcmd.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}

	fs.StringVar(&cfg.EnvDir, "env-dir", cfg.EnvDir, "isolated environment directory")
	fs.StringVar(&cfg.Manifest, "requirements", cfg.Manifest, "dependency manifest path")
	fs.StringVar(&cfg.Interpreter, "interpreter", cfg.Interpreter, "interpreter used to create the environment")
	fs.StringVar(&cfg.ServerCmd, "server-cmd", cfg.ServerCmd, "demo server command override, space separated")
	fs.IntVar(&cfg.Port, "port", cfg.Port, "demo server port shown in the banner")
	fs.BoolVar(&cfg.Verify, "verify", cfg.Verify, "probe an existing environment before reusing it")
	if err := platformcmd.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run provisions the environment and blocks on the demo server.
func Run(ctx context.Context, cfg Config, out io.Writer) error {
	runner := bootstraprun.NewRunner(bootstraprun.Options{
		EnvDir:      cfg.EnvDir,
		Manifest:    cfg.Manifest,
		Interpreter: cfg.Interpreter,
		ServerCmd:   strings.Fields(cfg.ServerCmd),
		Port:        cfg.Port,
		VerifyEnv:   cfg.Verify,
		Stdout:      out,
	}, bootstraprun.ExecRunner{})
	return runner.Run(ctx)
}
