// Package seed generates sample legacy district data for the demo.
package seed

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/edusync/edusync/internal/canonical"
	platformcmd "github.com/edusync/edusync/internal/platform/cmd"
	"github.com/edusync/edusync/internal/seed/generator"
)

// Config holds seed command configuration.
type Config struct {
	Preset   string `env:"EDUSYNC_SEED_PRESET"`
	Seed     int64  `env:"EDUSYNC_SEED_VALUE"`
	Students int    `env:"EDUSYNC_SEED_STUDENTS"`
	OutDir   string `env:"EDUSYNC_SEED_OUT"`
	List     bool
	Verbose  bool
}

// ParseConfig loads environment defaults and then parses flags.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	cfg := Config{
		Preset: string(generator.PresetDemo),
		OutDir: "seed-data",
	}
	if err := platformcmd.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}

	fs.StringVar(&cfg.Preset, "preset", cfg.Preset, "generation preset (demo, variety, stress-test)")
	fs.Int64Var(&cfg.Seed, "seed", cfg.Seed, "random seed for reproducibility (0 = random)")
	fs.IntVar(&cfg.Students, "students", cfg.Students, "student count override (0 = preset default)")
	fs.StringVar(&cfg.OutDir, "out", cfg.OutDir, "output directory for generated files")
	fs.BoolVar(&cfg.List, "list", cfg.List, "list available presets")
	fs.BoolVar(&cfg.Verbose, "v", cfg.Verbose, "verbose output")
	if err := platformcmd.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// validatePreset rejects preset names the generator does not know.
func validatePreset(preset generator.Preset) error {
	switch preset {
	case generator.PresetDemo, generator.PresetVariety, generator.PresetStressTest:
		return nil
	default:
		return fmt.Errorf("unknown preset %q (valid: demo, variety, stress-test)", preset)
	}
}

// Run generates a dataset and writes one JSON file per source entity.
func Run(ctx context.Context, cfg Config, out io.Writer) error {
	if out == nil {
		out = io.Discard
	}

	if cfg.List {
		fmt.Fprintln(out, "Available presets:")
		fmt.Fprintln(out, "  demo        - Small district with visible data-quality issues")
		fmt.Fprintln(out, "  variety     - Mid-size district exercising every issue type")
		fmt.Fprintln(out, "  stress-test - Large district for load testing")
		return nil
	}

	preset := generator.Preset(cfg.Preset)
	if err := validatePreset(preset); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	data := generator.New(generator.Config{
		Preset:   preset,
		Seed:     cfg.Seed,
		Students: cfg.Students,
		Verbose:  cfg.Verbose,
	}).Run()

	if err := os.MkdirAll(cfg.OutDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	files := []struct {
		name    string
		records []canonical.Record
	}{
		{"students.json", data.Students},
		{"guardians.json", data.Guardians},
		{"enrollments.json", data.Enrollments},
		{"grades.json", data.Grades},
		{"attendance.json", data.Attendance},
	}
	for _, file := range files {
		payload, err := json.MarshalIndent(file.records, "", "  ")
		if err != nil {
			return fmt.Errorf("encode %s: %w", file.name, err)
		}
		path := filepath.Join(cfg.OutDir, file.name)
		if err := os.WriteFile(path, payload, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", file.name, err)
		}
		fmt.Fprintf(out, "wrote %s (%d records)\n", path, len(file.records))
	}
	return nil
}
