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

func TestReadExtractedFileDIO(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dio.dat")
	testsupport.WriteDIOFile(t, path, "Din1", 30000,
		[]uint32{1000, 2000, 3000, 4000},
		[]uint8{0, 1, 0, 1},
	)

	file, err := trodes.ReadExtractedFile(path)
	if err != nil {
		t.Fatalf("ReadExtractedFile: %v", err)
	}
	if got := file.NumRecords(); got != 4 {
		t.Fatalf("NumRecords = %d, want 4", got)
	}
	if got := file.ID(); got != "Din1" {
		t.Fatalf("ID = %q, want Din1", got)
	}
	rate, err := file.Clockrate()
	if err != nil || rate != 30000 {
		t.Fatalf("Clockrate = %v, %v; want 30000", rate, err)
	}

	times, err := file.Int64Column("time")
	if err != nil {
		t.Fatalf("Int64Column(time): %v", err)
	}
	want := []int64{1000, 2000, 3000, 4000}
	for i, v := range want {
		if times[i] != v {
			t.Fatalf("time[%d] = %d, want %d", i, times[i], v)
		}
	}

	states, err := file.Int64Column("state")
	if err != nil {
		t.Fatalf("Int64Column(state): %v", err)
	}
	if states[0] != 0 || states[1] != 1 || states[3] != 1 {
		t.Fatalf("unexpected states %v", states)
	}
}

func TestReadExtractedFileFloatColumn(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lfp.dat")
	testsupport.WriteLFPFile(t, path, "nt1ch1", 1500,
		[]uint32{100, 200},
		[]float32{0.25, -0.5},
	)

	file, err := trodes.ReadExtractedFile(path)
	if err != nil {
		t.Fatalf("ReadExtractedFile: %v", err)
	}
	voltages, err := file.Float64Column("voltage")
	if err != nil {
		t.Fatalf("Float64Column: %v", err)
	}
	if voltages[0] != 0.25 || voltages[1] != -0.5 {
		t.Fatalf("voltages = %v", voltages)
	}
}

func TestReadExtractedFileMissing(t *testing.T) {
	_, err := trodes.ReadExtractedFile(filepath.Join(t.TempDir(), "nope.dat"))
	if !errors.Is(err, services.ErrMissingInput) {
		t.Fatalf("error = %v, want ErrMissingInput", err)
	}
}

func TestReadExtractedFileTruncatedRecords(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "dio.dat")
	testsupport.WriteDIOFile(t, path, "Din1", 30000, []uint32{1000}, []uint8{1})

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read fixture: %v", err)
	}
	if err := os.WriteFile(path, raw[:len(raw)-2], 0o644); err != nil {
		t.Fatalf("truncate fixture: %v", err)
	}

	_, err = trodes.ReadExtractedFile(path)
	if !errors.Is(err, services.ErrCorruptInput) {
		t.Fatalf("error = %v, want ErrCorruptInput", err)
	}
}

func TestParseFields(t *testing.T) {
	cases := []struct {
		spec    string
		names   []string
		repeats []int
		wantErr bool
	}{
		{spec: "<time uint32><state uint8>", names: []string{"time", "state"}, repeats: []int{1, 1}},
		{spec: "<time uint32><waveform 40*int16>", names: []string{"time", "waveform"}, repeats: []int{1, 40}},
		{spec: "<time uint32><waveform int16*40>", names: []string{"time", "waveform"}, repeats: []int{1, 40}},
		{spec: "", wantErr: true},
		{spec: "<time notatype>", wantErr: true},
		{spec: "<dangling>", wantErr: true},
	}
	for _, tc := range cases {
		fields, err := trodes.ParseFields(tc.spec)
		if tc.wantErr {
			if err == nil {
				t.Fatalf("ParseFields(%q): expected error", tc.spec)
			}
			continue
		}
		if err != nil {
			t.Fatalf("ParseFields(%q): %v", tc.spec, err)
		}
		for i, name := range tc.names {
			if fields[i].Name != name || fields[i].Repeat != tc.repeats[i] {
				t.Fatalf("ParseFields(%q)[%d] = %+v, want name %s repeat %d",
					tc.spec, i, fields[i], name, tc.repeats[i])
			}
		}
	}
}
