package dlc_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"labnwb/internal/dlc"
	"labnwb/internal/services"
	"labnwb/internal/testsupport"
)

func TestReadPoseCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pose.csv")
	testsupport.WritePoseCSV(t, path, "DLC_resnet50_test", []string{"nose", "tail"}, 5)

	pose, err := dlc.ReadPoseCSV(path)
	if err != nil {
		t.Fatalf("ReadPoseCSV: %v", err)
	}
	if pose.Scorer != "DLC_resnet50_test" {
		t.Fatalf("Scorer = %q", pose.Scorer)
	}
	if pose.FrameCount != 5 {
		t.Fatalf("FrameCount = %d, want 5", pose.FrameCount)
	}
	if len(pose.Parts) != 2 || pose.Parts[0].Name != "nose" || pose.Parts[1].Name != "tail" {
		t.Fatalf("Parts = %+v", pose.Parts)
	}
	nose := pose.Parts[0]
	if len(nose.X) != 5 || len(nose.Y) != 5 || len(nose.Likelihood) != 5 {
		t.Fatalf("nose series lengths %d/%d/%d", len(nose.X), len(nose.Y), len(nose.Likelihood))
	}
	if nose.X[0] != 100 || nose.Y[0] != 200 || nose.Likelihood[0] != 0.99 {
		t.Fatalf("nose frame 0 = %g,%g,%g", nose.X[0], nose.Y[0], nose.Likelihood[0])
	}
}

func TestReadPoseCSVShortHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pose.csv")
	if err := os.WriteFile(path, []byte("scorer,x\nbodyparts,nose\n"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	_, err := dlc.ReadPoseCSV(path)
	if !errors.Is(err, services.ErrCorruptInput) {
		t.Fatalf("error = %v, want ErrCorruptInput", err)
	}
}

func TestReadPoseCSVBadFrameRow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pose.csv")
	content := "scorer,s,s,s\n" +
		"bodyparts,nose,nose,nose\n" +
		"coords,x,y,likelihood\n" +
		"0,1.0,2.0,not-a-number\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	_, err := dlc.ReadPoseCSV(path)
	if !errors.Is(err, services.ErrCorruptInput) {
		t.Fatalf("error = %v, want ErrCorruptInput", err)
	}
}

func TestFilterParts(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pose.csv")
	testsupport.WritePoseCSV(t, path, "scorer", []string{"nose", "tail", "ear"}, 2)

	pose, err := dlc.ReadPoseCSV(path)
	if err != nil {
		t.Fatalf("ReadPoseCSV: %v", err)
	}

	pose.FilterParts([]string{"tail"})
	if len(pose.Parts) != 1 || pose.Parts[0].Name != "tail" {
		t.Fatalf("filtered parts = %+v", pose.Parts)
	}

	pose.FilterParts(nil)
	if len(pose.Parts) != 1 {
		t.Fatalf("empty keep list must not drop parts")
	}
}
