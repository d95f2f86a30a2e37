// Package generator produces deliberately messy sample district data for
// the migration demo: the records carry the casing, whitespace, format,
// and duplication defects the cleaning pipeline exists to fix.
package generator

import (
	"fmt"
	"math/rand"
	"os"

	"github.com/edusync/edusync/internal/canonical"
)

// Config holds configuration for the generator.
type Config struct {
	Preset   Preset
	Seed     int64
	Students int // Override preset's student count (0 = use preset default)
	Verbose  bool
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Preset:  PresetDemo,
		Seed:    0,
		Verbose: false,
	}
}

// Dataset is one generated district's worth of legacy source records,
// keyed the way each source system keys them.
type Dataset struct {
	Students    []canonical.Record
	Guardians   []canonical.Record
	Enrollments []canonical.Record
	Grades      []canonical.Record
	Attendance  []canonical.Record
}

// Generator orchestrates sample data generation.
type Generator struct {
	config Config
	rng    *rand.Rand
}

// New creates a new Generator with the given configuration.
func New(cfg Config) *Generator {
	return &Generator{
		config: cfg,
		rng:    NewSeededRNG(cfg.Seed, cfg.Verbose),
	}
}

// Run generates a full dataset based on the configured preset.
func (g *Generator) Run() Dataset {
	presetCfg := GetPresetConfig(g.config.Preset)

	numStudents := presetCfg.Students
	if g.config.Students > 0 {
		numStudents = g.config.Students
	}

	if g.config.Verbose {
		fmt.Fprintf(os.Stderr, "Running preset %q: %d student(s)\n",
			g.config.Preset, numStudents)
	}

	var ds Dataset
	for i := 0; i < numStudents; i++ {
		student := g.generateStudent(i, presetCfg)
		ds.Students = append(ds.Students, student)

		numGuardians := g.randomRange(presetCfg.GuardiansMin, presetCfg.GuardiansMax)
		for j := 0; j < numGuardians; j++ {
			ds.Guardians = append(ds.Guardians, g.generateGuardian(student, i, j))
		}

		ds.Enrollments = append(ds.Enrollments, g.generateEnrollments(student)...)

		numGrades := g.randomRange(presetCfg.GradesMin, presetCfg.GradesMax)
		for j := 0; j < numGrades; j++ {
			ds.Grades = append(ds.Grades, g.generateGrade(student, j))
		}

		ds.Attendance = append(ds.Attendance, g.generateAttendance(student, presetCfg.AttendanceDays)...)

		if g.rng.Float64() < presetCfg.DuplicateRate {
			ds.Students = append(ds.Students, g.duplicateStudent(student))
		}
	}

	if g.config.Verbose {
		fmt.Fprintf(os.Stderr, "Generation complete: %d student(s), %d guardian(s), %d grade(s)\n",
			len(ds.Students), len(ds.Guardians), len(ds.Grades))
	}
	return ds
}

// randomRange returns a random number in [min, max].
func (g *Generator) randomRange(min, max int) int {
	if min >= max {
		return min
	}
	return min + g.rng.Intn(max-min+1)
}

func (g *Generator) pick(values []string) string {
	return values[g.rng.Intn(len(values))]
}

func (g *Generator) messy(cfg PresetConfig) bool {
	return g.rng.Float64() < cfg.MessRate
}
