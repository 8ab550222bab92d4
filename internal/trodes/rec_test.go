package trodes_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"labnwb/internal/services"
	"labnwb/internal/testsupport"
	"labnwb/internal/trodes"
)

func recFixture() testsupport.RecSpec {
	return testsupport.RecSpec{
		SamplingRate: 30000,
		SystemTime:   "1683112002000",
		FirstSample:  90000,
		SampleCount:  50,
		NTrodeChannels: map[string][]string{
			"1": {"0", "1"},
			"2": {"2", "3"},
		},
		NTrodeOrder: []string{"1", "2"},
	}
}

func TestReadRecHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.rec")
	testsupport.WriteRecFile(t, path, recFixture())

	header, err := trodes.ReadRecHeader(path)
	if err != nil {
		t.Fatalf("ReadRecHeader: %v", err)
	}
	if header.SamplingRateHz != 30000 {
		t.Fatalf("SamplingRateHz = %g, want 30000", header.SamplingRateHz)
	}
	if header.NumChannels != 4 {
		t.Fatalf("NumChannels = %d, want 4", header.NumChannels)
	}
	if header.SystemTimeAtCreation != "1683112002000" {
		t.Fatalf("SystemTimeAtCreation = %q", header.SystemTimeAtCreation)
	}
	if header.FirstSample != 90000 {
		t.Fatalf("FirstSample = %d, want 90000", header.FirstSample)
	}
	if header.SampleCount != 50 {
		t.Fatalf("SampleCount = %d, want 50", header.SampleCount)
	}

	ids := header.NTrodeIDs()
	if len(ids) != 2 || ids[0] != "1" || ids[1] != "2" {
		t.Fatalf("NTrodeIDs = %v", ids)
	}
	groups := header.ChannelsByNTrode()
	if got := groups["1"]; len(got) != 2 || got[0] != "0" || got[1] != "1" {
		t.Fatalf("ChannelsByNTrode[1] = %v", got)
	}
}

func TestReadRecHeaderNoTerminator(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.rec")
	if err := os.WriteFile(path, []byte("<Configuration>\n<Hardware"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	_, err := trodes.ReadRecHeader(path)
	if !errors.Is(err, services.ErrCorruptInput) {
		t.Fatalf("error = %v, want ErrCorruptInput", err)
	}
}

func TestReadRecHeaderBadSync(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.rec")
	testsupport.WriteRecFile(t, path, recFixture())

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read fixture: %v", err)
	}
	// Corrupt the first packet's sync byte. The payload starts right
	// after the terminator line.
	offset := len(raw) - (1+4+2*4)*50
	raw[offset] = 0x00
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		t.Fatalf("rewrite fixture: %v", err)
	}

	_, err = trodes.ReadRecHeader(path)
	if !errors.Is(err, services.ErrCorruptInput) {
		t.Fatalf("error = %v, want ErrCorruptInput", err)
	}
}

func TestReadRecHeaderPartialPacket(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.rec")
	testsupport.WriteRecFile(t, path, recFixture())

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read fixture: %v", err)
	}
	if err := os.WriteFile(path, raw[:len(raw)-3], 0o644); err != nil {
		t.Fatalf("truncate fixture: %v", err)
	}

	_, err = trodes.ReadRecHeader(path)
	if !errors.Is(err, services.ErrCorruptInput) {
		t.Fatalf("error = %v, want ErrCorruptInput", err)
	}
}

func TestReadCameraTimestamps(t *testing.T) {
	path := filepath.Join(t.TempDir(), "epoch.videoTimeStamps")
	testsupport.WriteCameraSidecar(t, path, 30000, []uint32{90000, 91000, 92000})

	sidecar, err := trodes.ReadCameraTimestamps(path)
	if err != nil {
		t.Fatalf("ReadCameraTimestamps: %v", err)
	}
	if sidecar.FrameCount != 3 || sidecar.RateHz != 30000 {
		t.Fatalf("sidecar = %+v", sidecar)
	}
	if sidecar.Samples[2] != 92000 {
		t.Fatalf("Samples = %v", sidecar.Samples)
	}
}

func TestReadCameraTimestampsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "epoch.videoTimeStamps")
	testsupport.WriteCameraSidecar(t, path, 30000, nil)

	_, err := trodes.ReadCameraTimestamps(path)
	if !errors.Is(err, services.ErrCorruptInput) {
		t.Fatalf("error = %v, want ErrCorruptInput", err)
	}
}
