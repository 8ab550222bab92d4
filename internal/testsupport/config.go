// Package testsupport provides per-test configuration and raw-file
// fixtures so reader, converter, batch, and ingest tests exercise the
// same byte formats the pipeline consumes in production.
package testsupport

import (
	"path/filepath"
	"testing"

	"labnwb/internal/config"
	"labnwb/internal/metadata"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Paths.OutputDir = filepath.Join(base, "output")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Paths.MetadataPath = filepath.Join(base, "metadata.yml")
	cfg.Paths.DatabasePath = filepath.Join(base, "spyglass.db")

	for _, opt := range opts {
		opt(&cfg)
	}
	return &cfg
}

// WithWorkers sets the conversion worker count on the test config.
func WithWorkers(n int) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Conversion.Workers = n
	}
}

// WithOverwrite sets the existing-output policy on the test config.
func WithOverwrite(policy string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Conversion.Overwrite = policy
	}
}

// NewMetadata builds a minimal valid dataset document covering one
// subject, one tetrode group, a run and a sleep task, and two DIO events.
func NewMetadata() *metadata.Document {
	return &metadata.Document{
		SessionDescription: "test recording",
		Experimenter:       []string{"Tester, Unit"},
		Lab:                "Test Lab",
		Institution:        "Test University",
		Subjects: []metadata.Subject{
			{SubjectID: "SL18", Species: "Rattus norvegicus", Sex: "M"},
		},
		Devices: []metadata.Device{
			{Name: "trodes_rig", Description: "acquisition system", Manufacturer: "SpikeGadgets"},
		},
		ElectrodeGroups: []metadata.ElectrodeGroup{
			{Name: "nTrode1", Location: "CA1", Device: "trodes_rig"},
			{Name: "nTrode2", Location: "PFC", Device: "trodes_rig"},
		},
		Cameras: []metadata.Camera{
			{ID: 0, Name: "box camera", MetersPerPixel: 0.001},
			{ID: 1, Name: "track camera", MetersPerPixel: 0.002},
		},
		Tasks: []metadata.Task{
			{
				Name:             "run",
				Description:      "track running",
				Environment:      "track",
				CameraIDs:        []int{1},
				LEDConfiguration: "2 LEDs",
				LEDList:          []string{"red", "green"},
				LEDPositions:     []string{"front", "back"},
				NamePatterns:     []string{"RUN"},
			},
			{
				Name:         "sleep",
				Description:  "rest in box",
				Environment:  "box",
				CameraIDs:    []int{0},
				NamePatterns: []string{"SLP"},
			},
		},
		Behavior: metadata.Behavior{
			ModuleName:        "behavior",
			ModuleDescription: "behavioral events",
			Events: []metadata.Event{
				{ID: "Din1", Name: "poke_1", Description: "well 1 beam break"},
				{ID: "Din2", Name: "poke_2", Description: "well 2 beam break"},
			},
		},
		Pose: metadata.Pose{
			BodyParts:           []string{"nose", "tail"},
			LikelihoodThreshold: 0.9,
		},
	}
}
