package nwb

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"labnwb/internal/services"
)

func validFile() *File {
	return &File{
		Identifier: NewIdentifier("SL18", "D19"),
		SessionID:  "SL18_D19",
		Subject:    Subject{SubjectID: "SL18"},
		ElectrodeGroups: []ElectrodeGroup{
			{Name: "nTrode1", Location: "CA1"},
		},
		Electrodes: []Electrode{
			{ID: 0, HWChan: "0", Group: "nTrode1"},
		},
		Acquisition: []TimeSeries{
			{
				Name:         "e-series",
				Unit:         "volts",
				RateHz:       30000,
				StartingTime: 0,
				SampleCount:  30000 * 60,
				ExternalFile: "SL18_D19.rec",
			},
		},
		Epochs: []Epoch{
			{Number: 1, Start: 1, Stop: 20, Tags: []string{"01"}},
			{Number: 2, Start: 25, Stop: 50, Tags: []string{"02"}},
		},
	}
}

func TestNewIdentifierDeterministic(t *testing.T) {
	a := NewIdentifier("SL18", "D19")
	b := NewIdentifier("SL18", "D19")
	if a != b {
		t.Fatalf("identifiers differ: %s vs %s", a, b)
	}
	if a == NewIdentifier("SL18", "D20") {
		t.Fatal("different sessions must get different identifiers")
	}
}

func TestWriteReadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub-SL18_ses-D19.nwb")
	file := validFile()
	file.Processing.Behavior = &BehaviorModule{
		Name: "behavior",
		Events: []EventSeries{
			{Name: "poke_1", Timestamps: []float64{2, 3.5, 7}},
		},
	}

	if err := file.Write(path, false); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := Read(path)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if got.Identifier != file.Identifier || got.SessionID != file.SessionID {
		t.Fatalf("round trip identity mismatch: %+v", got)
	}
	if got.EventCount() != 3 {
		t.Fatalf("EventCount = %d, want 3", got.EventCount())
	}
	if len(got.Epochs) != 2 || got.Epochs[1].Stop != 50 {
		t.Fatalf("epochs = %+v", got.Epochs)
	}
}

func TestWriteIsDeterministic(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "a.nwb")
	second := filepath.Join(dir, "b.nwb")

	if err := validFile().Write(first, false); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := validFile().Write(second, false); err != nil {
		t.Fatalf("Write: %v", err)
	}

	a, err := os.ReadFile(first)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	b, err := os.ReadFile(second)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !bytes.Equal(a, b) {
		t.Fatal("two conversions of identical content produced different bytes")
	}
}

func TestWriteConflictPolicy(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.nwb")
	if err := validFile().Write(path, false); err != nil {
		t.Fatalf("Write: %v", err)
	}

	err := validFile().Write(path, false)
	if !errors.Is(err, services.ErrConflict) {
		t.Fatalf("error = %v, want ErrConflict", err)
	}

	if err := validFile().Write(path, true); err != nil {
		t.Fatalf("overwrite Write: %v", err)
	}
}

func TestWriteLeavesNoPartialFileOnValidationFailure(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.nwb")

	file := validFile()
	file.Epochs = nil
	err := file.Write(path, false)
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("error = %v, want ErrValidation", err)
	}

	entries, readErr := os.ReadDir(dir)
	if readErr != nil {
		t.Fatalf("ReadDir: %v", readErr)
	}
	if len(entries) != 0 {
		t.Fatalf("output directory not empty: %v", entries)
	}
}

func TestValidateRejections(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*File)
		detail string
	}{
		{
			name:   "zero epochs",
			mutate: func(f *File) { f.Epochs = nil },
			detail: "zero detected epochs",
		},
		{
			name: "overlapping epochs",
			mutate: func(f *File) {
				f.Epochs[1].Start = f.Epochs[0].Stop - 1
			},
			detail: "overlaps",
		},
		{
			name: "epoch stops before start",
			mutate: func(f *File) {
				f.Epochs[0].Stop = f.Epochs[0].Start - 1
			},
			detail: "stops before it starts",
		},
		{
			name: "epoch outside recording bounds",
			mutate: func(f *File) {
				f.Epochs[1].Stop = 1e9
			},
			detail: "outside recording bounds",
		},
		{
			name: "non-monotonic events",
			mutate: func(f *File) {
				f.Processing.Behavior = &BehaviorModule{
					Name:   "behavior",
					Events: []EventSeries{{Name: "poke_1", Timestamps: []float64{5, 4}}},
				}
			},
			detail: "poke_1",
		},
		{
			name: "electrode references unknown group",
			mutate: func(f *File) {
				f.Electrodes[0].Group = "ghost"
			},
			detail: "unknown group",
		},
		{
			name: "pose series length disagrees",
			mutate: func(f *File) {
				f.Processing.Pose = []PoseEstimation{{
					Name:       "pose_S01",
					Timestamps: []float64{1, 2, 3},
					Series:     []PoseSeries{{BodyPart: "nose", X: []float64{1}, Y: []float64{1}}},
				}}
			},
			detail: "length disagrees",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			file := validFile()
			tc.mutate(file)
			err := file.Validate()
			if !errors.Is(err, services.ErrValidation) {
				t.Fatalf("error = %v, want ErrValidation", err)
			}
			if !strings.Contains(err.Error(), tc.detail) {
				t.Fatalf("error %q missing %q", err, tc.detail)
			}
		})
	}
}

func TestRecordingBounds(t *testing.T) {
	file := validFile()
	start, stop, ok := file.RecordingBounds()
	if !ok || start != 0 || stop != 60 {
		t.Fatalf("RecordingBounds = %g, %g, %v", start, stop, ok)
	}

	file.Acquisition = nil
	if _, _, ok := file.RecordingBounds(); ok {
		t.Fatal("RecordingBounds must report absence without a rate-sampled series")
	}
}
