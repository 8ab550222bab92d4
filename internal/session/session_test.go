package session_test

import (
	"os"
	"path/filepath"
	"testing"

	"labnwb/internal/session"
	"labnwb/internal/testsupport"
)

func TestDiscover(t *testing.T) {
	dataDir := t.TempDir()
	doc := testsupport.NewMetadata()
	doc.SkipSessions = map[string]string{"SL18_D20": "corrupted rec file"}

	first := testsupport.NewSessionDir(t, dataDir, "SL18", "D19")
	first.WriteRec(testsupport.RecSpec{
		SamplingRate:   30000,
		SystemTime:     "1683112002000",
		FirstSample:    1000,
		SampleCount:    10,
		NTrodeChannels: map[string][]string{"1": {"0"}},
	})
	first.AddDIO("Din1", 30000, []uint32{2000}, []uint8{1})
	first.AddEpoch(testsupport.EpochSpec{
		Number: 1, Env: "BOX", Condition: "SLP",
		Clockrate: 30000,
		Samples:   testsupport.SampleRange(1000, 5, 100),
		WithVideo: true, PoseFrames: 5,
	})
	first.AddEpoch(testsupport.EpochSpec{
		Number: 2, Env: "TRK", Condition: "RUN",
		Clockrate: 30000,
		Samples:   testsupport.SampleRange(2000, 5, 100),
	})

	testsupport.NewSessionDir(t, dataDir, "SL18", "D20")

	sessions, err := session.Discover(dataDir, "*_*", doc)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if len(sessions) != 2 {
		t.Fatalf("found %d sessions, want 2", len(sessions))
	}

	d19 := sessions[0]
	if d19.Name() != "SL18_D19" {
		t.Fatalf("first session = %s, want SL18_D19 (sorted)", d19.Name())
	}
	if d19.RecFile == "" || d19.DIODir == "" {
		t.Fatalf("session files not collected: %+v", d19)
	}
	if d19.LFPDir != "" || d19.SortingDir != "" {
		t.Fatalf("unexpected optional dirs: %+v", d19)
	}
	if len(d19.Epochs) != 2 {
		t.Fatalf("epochs = %+v", d19.Epochs)
	}
	if d19.Epochs[0].Number != 1 || d19.Epochs[0].Name != "S01_F01_BOX_SLP" {
		t.Fatalf("epoch 1 = %+v", d19.Epochs[0])
	}
	if d19.Epochs[0].VideoFile == "" || d19.Epochs[0].PoseFile == "" {
		t.Fatalf("epoch 1 companion files missing: %+v", d19.Epochs[0])
	}
	if d19.Epochs[1].VideoFile != "" || d19.Epochs[1].PoseFile != "" {
		t.Fatalf("epoch 2 must have no companions: %+v", d19.Epochs[1])
	}

	d20 := sessions[1]
	if d20.SkipReason != "corrupted rec file" {
		t.Fatalf("skip reason = %q", d20.SkipReason)
	}
}

func TestDiscoverIgnoresNonMatchingDirs(t *testing.T) {
	dataDir := t.TempDir()
	testsupport.NewSessionDir(t, dataDir, "SL18", "D19")
	if err := os.MkdirAll(filepath.Join(dataDir, "notasession"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	sessions, err := session.Discover(dataDir, "*_*", nil)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if len(sessions) != 1 {
		t.Fatalf("found %d sessions, want 1", len(sessions))
	}
}

func TestFromDir(t *testing.T) {
	dataDir := t.TempDir()
	fixture := testsupport.NewSessionDir(t, dataDir, "SL18", "D19")
	fixture.AddEpoch(testsupport.EpochSpec{
		Number: 1, Env: "BOX", Condition: "SLP",
		Clockrate: 30000,
		Samples:   testsupport.SampleRange(1000, 3, 100),
	})

	sess, err := session.FromDir(fixture.Dir, nil)
	if err != nil {
		t.Fatalf("FromDir: %v", err)
	}
	if sess.SubjectID != "SL18" || sess.SessionID != "D19" {
		t.Fatalf("session = %+v", sess)
	}
	if len(sess.Epochs) != 1 {
		t.Fatalf("epochs = %+v", sess.Epochs)
	}

	if _, err := session.FromDir(filepath.Join(dataDir, "missing_dir_x"), nil); err == nil {
		t.Fatal("FromDir must fail for a missing directory")
	}
}

func TestParseEpochName(t *testing.T) {
	name, number, err := session.ParseEpochName("SL18_D19_S01_F01_BOX_SLP_20230503_112642")
	if err != nil {
		t.Fatalf("ParseEpochName: %v", err)
	}
	if name != "S01_F01_BOX_SLP" || number != 1 {
		t.Fatalf("got %q, %d", name, number)
	}

	name, number, err = session.ParseEpochName("SL18_D19_S12_F02_TRK_RUN")
	if err != nil {
		t.Fatalf("ParseEpochName: %v", err)
	}
	if name != "S12_F02_TRK_RUN" || number != 12 {
		t.Fatalf("got %q, %d", name, number)
	}

	if _, _, err := session.ParseEpochName("tooshort"); err == nil {
		t.Fatal("expected error for malformed name")
	}
	if _, _, err := session.ParseEpochName("SL18_D19_X01_F01_BOX_SLP"); err == nil {
		t.Fatal("expected error for missing epoch token")
	}
}
