package generator

// Preset defines a named configuration for sample data generation.
type Preset string

const (
	// PresetDemo creates a small district with visible data-quality issues.
	PresetDemo Preset = "demo"

	// PresetVariety creates a mid-size district exercising every issue type.
	PresetVariety Preset = "variety"

	// PresetStressTest creates a large district for load testing.
	PresetStressTest Preset = "stress-test"
)

// PresetConfig holds the generation parameters for a preset.
type PresetConfig struct {
	// Number of students to generate
	Students int

	// Guardians per student (min, max)
	GuardiansMin int
	GuardiansMax int

	// Grade records per student (min, max)
	GradesMin int
	GradesMax int

	// School days of attendance per student
	AttendanceDays int

	// Fraction of records that receive a quality defect
	MessRate float64

	// Fraction of students duplicated across sources
	DuplicateRate float64
}

// GetPresetConfig returns the configuration for a preset.
func GetPresetConfig(preset Preset) PresetConfig {
	switch preset {
	case PresetVariety:
		return PresetConfig{
			Students:       200,
			GuardiansMin:   1,
			GuardiansMax:   3,
			GradesMin:      4,
			GradesMax:      8,
			AttendanceDays: 20,
			MessRate:       0.4,
			DuplicateRate:  0.15,
		}

	case PresetStressTest:
		return PresetConfig{
			Students:       1000,
			GuardiansMin:   1,
			GuardiansMax:   2,
			GradesMin:      2,
			GradesMax:      4,
			AttendanceDays: 10,
			MessRate:       0.3,
			DuplicateRate:  0.1,
		}

	default: // PresetDemo
		return PresetConfig{
			Students:       50,
			GuardiansMin:   1,
			GuardiansMax:   2,
			GradesMin:      3,
			GradesMax:      6,
			AttendanceDays: 15,
			MessRate:       0.35,
			DuplicateRate:  0.12,
		}
	}
}
