// Package server wires the demo web service from configuration.
package server

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/edusync/edusync/internal/migrate"
	platformcmd "github.com/edusync/edusync/internal/platform/cmd"
	"github.com/edusync/edusync/internal/rules"
	"github.com/edusync/edusync/internal/seed/generator"
	"github.com/edusync/edusync/internal/sources"
	"github.com/edusync/edusync/internal/storage/sqlite"
	"github.com/edusync/edusync/internal/web"
)

// Config holds server command configuration.
type Config struct {
	Addr        string `env:"EDUSYNC_SERVER_ADDR"`
	DBPath      string `env:"EDUSYNC_SERVER_DB"`
	Headless    bool   `env:"EDUSYNC_SERVER_HEADLESS"`
	RulesScript string `env:"EDUSYNC_SERVER_RULES"`
	Preset      string `env:"EDUSYNC_SEED_PRESET"`
	Seed        int64  `env:"EDUSYNC_SEED_VALUE"`
	Students    int    `env:"EDUSYNC_SEED_STUDENTS"`
}

// ParseConfig loads environment defaults and then parses flags.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	cfg := Config{
		Addr:     web.DefaultAddr,
		DBPath:   "edusync.db",
		Headless: true,
		Preset:   string(generator.PresetDemo),
	}
	if err := platformcmd.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}

	fs.StringVar(&cfg.Addr, "addr", cfg.Addr, "listen address")
	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "target database path")
	fs.BoolVar(&cfg.Headless, "headless", cfg.Headless, "do not open a browser on startup")
	fs.StringVar(&cfg.RulesScript, "rules-script", cfg.RulesScript, "Lua cleaning script applied after the built-in rules")
	fs.StringVar(&cfg.Preset, "preset", cfg.Preset, "sample data preset (demo, variety, stress-test)")
	fs.Int64Var(&cfg.Seed, "seed", cfg.Seed, "random seed for sample data (0 = random)")
	fs.IntVar(&cfg.Students, "students", cfg.Students, "student count override (0 = preset default)")
	if err := platformcmd.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run serves the demo until the context ends.
func Run(ctx context.Context, cfg Config) error {
	store, err := sqlite.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open target store: %w", err)
	}
	defer store.Close()

	catalog, err := sources.LoadCatalog()
	if err != nil {
		return fmt.Errorf("load source catalog: %w", err)
	}

	session := migrate.NewSession(catalog, store)
	if cfg.RulesScript != "" {
		rule, err := loadRulesScript(cfg.RulesScript)
		if err != nil {
			return fmt.Errorf("load cleaning script: %w", err)
		}
		session.AddRule(rule)
	}
	load := func() migrate.Dataset {
		data := generator.New(generator.Config{
			Preset:   generator.Preset(cfg.Preset),
			Seed:     cfg.Seed,
			Students: cfg.Students,
		}).Run()
		return migrate.Dataset{
			Students:    data.Students,
			Guardians:   data.Guardians,
			Enrollments: data.Enrollments,
			Grades:      data.Grades,
			Attendance:  data.Attendance,
		}
	}

	handler := web.NewHandler(session, catalog, load)
	server, err := web.NewServer(web.Config{Addr: cfg.Addr, Headless: cfg.Headless}, handler)
	if err != nil {
		return err
	}
	return server.ListenAndServe(ctx)
}

// loadRulesScript compiles a district cleaning script into a rule named
// after the file.
func loadRulesScript(path string) (rules.Rule, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return rules.Rule{}, err
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return rules.NewScriptRule(name, string(source))
}
