package spyglass_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"labnwb/internal/nwb"
	"labnwb/internal/services"
	"labnwb/internal/spyglass"
	"labnwb/internal/testsupport"
)

func openStore(t *testing.T) *spyglass.Store {
	t.Helper()
	store, err := spyglass.Open(testsupport.NewConfig(t))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func sampleContainer() *nwb.File {
	return &nwb.File{
		Identifier:       nwb.NewIdentifier("SL18", "D19"),
		SessionID:        "SL18_D19",
		SessionStartTime: "1683112002000",
		Lab:              "Test Lab",
		Institution:      "Test University",
		Subject:          nwb.Subject{SubjectID: "SL18", Species: "Rattus norvegicus"},
		ElectrodeGroups: []nwb.ElectrodeGroup{
			{Name: "nTrode1", Location: "CA1"},
			{Name: "nTrode2", Location: "PFC"},
		},
		Electrodes: []nwb.Electrode{
			{ID: 0, HWChan: "0", Group: "nTrode1", HasLFP: true},
			{ID: 1, HWChan: "1", Group: "nTrode1"},
			{ID: 2, HWChan: "2", Group: "nTrode2"},
		},
		Acquisition: []nwb.TimeSeries{
			{Name: "e-series", RateHz: 30000, SampleCount: 90000, ExternalFile: "SL18_D19.rec"},
		},
		Processing: nwb.Processing{
			Behavior: &nwb.BehaviorModule{
				Name: "behavior",
				Events: []nwb.EventSeries{
					{Name: "poke_1", Timestamps: []float64{0.1, 0.3, 0.5}},
				},
			},
			LFP: []nwb.TimeSeries{
				{Name: "lfp_nt1ch1", Timestamps: []float64{0, 0.1, 0.2}},
			},
			Tasks: []nwb.TaskTable{
				{
					Name:         "run",
					Environment:  "track",
					LEDList:      []string{"red", "green"},
					LEDPositions: []string{"front", "back"},
					TaskEpochs:   []int{2},
				},
				{Name: "sleep", Environment: "box", TaskEpochs: []int{1}},
			},
		},
		Epochs: []nwb.Epoch{
			{Number: 1, Start: 0, Stop: 0.5, Tags: []string{"01"}},
			{Number: 2, Start: 2, Stop: 2.5, Tags: []string{"02"}},
		},
		Units: []nwb.Unit{
			{ID: 0, NTrode: "nTrode1", UnitInd: 1, SpikeTimes: []float64{0.1, 0.2}},
		},
	}
}

func TestInsertAndVerifySession(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	file := sampleContainer()

	if err := store.InsertSession(ctx, file, "sub-SL18_ses-D19.nwb"); err != nil {
		t.Fatalf("InsertSession: %v", err)
	}

	report, err := store.VerifySession(ctx, file, "sub-SL18_ses-D19.nwb")
	if err != nil {
		t.Fatalf("VerifySession: %v", err)
	}
	if !report.OK() {
		t.Fatalf("verification findings: %v", report.Findings)
	}
}

func TestInsertRejectsDuplicate(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	file := sampleContainer()

	if err := store.InsertSession(ctx, file, "a.nwb"); err != nil {
		t.Fatalf("InsertSession: %v", err)
	}
	err := store.InsertSession(ctx, file, "a.nwb")
	if !errors.Is(err, services.ErrConflict) {
		t.Fatalf("error = %v, want ErrConflict", err)
	}
}

func TestVerifyDetectsCountDrift(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	file := sampleContainer()

	if err := store.InsertSession(ctx, file, "a.nwb"); err != nil {
		t.Fatalf("InsertSession: %v", err)
	}

	// Grow the in-memory container past what was inserted; verification
	// must notice the row-count disagreement.
	file.Units = append(file.Units, nwb.Unit{ID: 1, NTrode: "nTrode2", SpikeTimes: []float64{0.4}})

	report, err := store.VerifySession(ctx, file, "a.nwb")
	if err != nil {
		t.Fatalf("VerifySession: %v", err)
	}
	if report.OK() {
		t.Fatal("verification must flag the missing unit row")
	}
}

func TestVerifyUnknownFile(t *testing.T) {
	store := openStore(t)
	report, err := store.VerifySession(context.Background(), sampleContainer(), "ghost.nwb")
	if err != nil {
		t.Fatalf("VerifySession: %v", err)
	}
	if report.OK() {
		t.Fatal("verification must flag a never-inserted file")
	}
}

func TestInsertAllIsolatesFailures(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store, err := spyglass.Open(cfg)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	good := filepath.Join(cfg.Paths.OutputDir, "sub-SL18_ses-D19.nwb")
	if err := sampleContainer().Write(good, false); err != nil {
		t.Fatalf("write container: %v", err)
	}
	bad := filepath.Join(cfg.Paths.OutputDir, "sub-SL18_ses-D20.nwb")
	testsupport.WriteGarbage(t, bad)

	result, err := store.InsertAll(context.Background(), cfg.Paths.OutputDir)
	if err != nil {
		t.Fatalf("InsertAll: %v", err)
	}
	if result.Inserted != 1 {
		t.Fatalf("Inserted = %d, want 1", result.Inserted)
	}
	if len(result.Failed) != 1 {
		t.Fatalf("Failed = %v", result.Failed)
	}
	if _, ok := result.Failed["sub-SL18_ses-D20.nwb"]; !ok {
		t.Fatalf("Failed = %v", result.Failed)
	}
}

func TestSchemaVersionGuard(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store, err := spyglass.Open(cfg)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	store.Close()

	// Reopening the same database succeeds while the version matches.
	store, err = spyglass.Open(cfg)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	store.Close()
}
