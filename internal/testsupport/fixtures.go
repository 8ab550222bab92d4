package testsupport

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// mustWrite creates parent directories and writes the file, failing the
// test on error.
func mustWrite(t testing.TB, path string, data []byte) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// WriteGarbage writes a file that no pipeline reader can decode.
func WriteGarbage(t testing.TB, path string) {
	t.Helper()
	mustWrite(t, path, []byte("not a container"))
}

// settingsBlock renders a Trodes extracted-file settings header. Pairs
// are emitted in order so fixtures are byte-stable.
func settingsBlock(pairs [][2]string) []byte {
	var buf bytes.Buffer
	buf.WriteString("<Start settings>\n")
	for _, pair := range pairs {
		fmt.Fprintf(&buf, "%s: %s\n", pair[0], pair[1])
	}
	buf.WriteString("<End settings>\n")
	return buf.Bytes()
}

// WriteDIOFile writes an extracted DIO event log: uint32 sample clocks
// with a uint8 state per record. States alternate per the given slice.
func WriteDIOFile(t testing.TB, path, id string, clockrate float64, samples []uint32, states []uint8) {
	t.Helper()
	if len(samples) != len(states) {
		t.Fatalf("WriteDIOFile: %d samples but %d states", len(samples), len(states))
	}

	var buf bytes.Buffer
	buf.Write(settingsBlock([][2]string{
		{"Description", "Digital input state changes"},
		{"Direction", "input"},
		{"ID", id},
		{"Clockrate", fmt.Sprintf("%.0f", clockrate)},
		{"Fields", "<time uint32><state uint8>"},
	}))
	for i, sample := range samples {
		_ = binary.Write(&buf, binary.LittleEndian, sample)
		buf.WriteByte(states[i])
	}
	mustWrite(t, path, buf.Bytes())
}

// WriteCameraSidecar writes a .videoTimeStamps sidecar holding the given
// per-frame sample clocks.
func WriteCameraSidecar(t testing.TB, path string, clockrate float64, samples []uint32) {
	t.Helper()

	var buf bytes.Buffer
	buf.Write(settingsBlock([][2]string{
		{"Description", "Camera frame timestamps"},
		{"Clockrate", fmt.Sprintf("%.0f", clockrate)},
		{"Fields", "<PosTimestamp uint32>"},
	}))
	for _, sample := range samples {
		_ = binary.Write(&buf, binary.LittleEndian, sample)
	}
	mustWrite(t, path, buf.Bytes())
}

// WriteLFPFile writes an extracted LFP channel: sample clocks paired with
// float32 voltages, identified by channel ID such as "nt1ch1".
func WriteLFPFile(t testing.TB, path, id string, clockrate float64, samples []uint32, voltages []float32) {
	t.Helper()
	if len(samples) != len(voltages) {
		t.Fatalf("WriteLFPFile: %d samples but %d voltages", len(samples), len(voltages))
	}

	var buf bytes.Buffer
	buf.Write(settingsBlock([][2]string{
		{"Description", "LFP channel"},
		{"ID", id},
		{"Clockrate", fmt.Sprintf("%.0f", clockrate)},
		{"Fields", "<time uint32><voltage float32>"},
	}))
	for i, sample := range samples {
		_ = binary.Write(&buf, binary.LittleEndian, sample)
		_ = binary.Write(&buf, binary.LittleEndian, voltages[i])
	}
	mustWrite(t, path, buf.Bytes())
}

// WriteSortingFile writes one sorted unit's spike sample clocks with its
// provenance in the settings block.
func WriteSortingFile(t testing.TB, path, ntrode string, unitInd int, samples []uint32) {
	t.Helper()

	var buf bytes.Buffer
	buf.Write(settingsBlock([][2]string{
		{"Description", "Sorted unit spike times"},
		{"NTrode", ntrode},
		{"UnitInd", fmt.Sprintf("%d", unitInd)},
		{"GlobalID", fmt.Sprintf("%s-u%d", ntrode, unitInd)},
		{"NWaveforms", fmt.Sprintf("%d", len(samples))},
		{"WaveformFWHM", "0.21"},
		{"WaveformPeakMinusTrough", "118.5"},
		{"Fields", "<time uint32>"},
	}))
	for _, sample := range samples {
		_ = binary.Write(&buf, binary.LittleEndian, sample)
	}
	mustWrite(t, path, buf.Bytes())
}

// RecSpec describes a synthetic .rec recording.
type RecSpec struct {
	SamplingRate int
	SystemTime   string
	FirstSample  uint32
	SampleCount  int
	// NTrodeChannels maps nTrode IDs to their hardware channel IDs; the
	// total channel count is the sum of the lists.
	NTrodeChannels map[string][]string
	NTrodeOrder    []string
}

// WriteRecFile writes a .rec file: an XML workspace header terminated by
// </Configuration> on its own line, then one packet per sample (sync
// byte, uint32 sample clock, int16 zero per channel).
func WriteRecFile(t testing.TB, path string, spec RecSpec) {
	t.Helper()

	numChannels := 0
	for _, channels := range spec.NTrodeChannels {
		numChannels += len(channels)
	}

	var buf bytes.Buffer
	buf.WriteString("<Configuration>\n")
	fmt.Fprintf(&buf, " <GlobalConfiguration systemTimeAtCreation=%q/>\n", spec.SystemTime)
	fmt.Fprintf(&buf, " <HardwareConfiguration samplingRate=\"%d\" numChannels=\"%d\"/>\n",
		spec.SamplingRate, numChannels)
	buf.WriteString(" <SpikeConfiguration>\n")
	order := spec.NTrodeOrder
	if len(order) == 0 {
		for id := range spec.NTrodeChannels {
			order = append(order, id)
		}
	}
	for _, id := range order {
		fmt.Fprintf(&buf, "  <SpikeNTrode id=%q>\n", id)
		for _, hwChan := range spec.NTrodeChannels[id] {
			fmt.Fprintf(&buf, "   <SpikeChannel hwChan=%q/>\n", hwChan)
		}
		buf.WriteString("  </SpikeNTrode>\n")
	}
	buf.WriteString(" </SpikeConfiguration>\n")
	buf.WriteString("</Configuration>\n")

	for i := 0; i < spec.SampleCount; i++ {
		buf.WriteByte(0x55)
		_ = binary.Write(&buf, binary.LittleEndian, spec.FirstSample+uint32(i))
		for c := 0; c < numChannels; c++ {
			_ = binary.Write(&buf, binary.LittleEndian, int16(0))
		}
	}
	mustWrite(t, path, buf.Bytes())
}

// WritePoseCSV writes a DeepLabCut output CSV with the three header rows
// and one x/y/likelihood triple per body part per frame.
func WritePoseCSV(t testing.TB, path, scorer string, parts []string, frames int) {
	t.Helper()

	var buf bytes.Buffer
	scorerRow := []string{"scorer"}
	partsRow := []string{"bodyparts"}
	coordsRow := []string{"coords"}
	for _, part := range parts {
		for _, coord := range []string{"x", "y", "likelihood"} {
			scorerRow = append(scorerRow, scorer)
			partsRow = append(partsRow, part)
			coordsRow = append(coordsRow, coord)
		}
	}
	buf.WriteString(strings.Join(scorerRow, ",") + "\n")
	buf.WriteString(strings.Join(partsRow, ",") + "\n")
	buf.WriteString(strings.Join(coordsRow, ",") + "\n")

	for frame := 0; frame < frames; frame++ {
		row := []string{fmt.Sprintf("%d", frame)}
		for range parts {
			row = append(row,
				fmt.Sprintf("%.1f", float64(100+frame)),
				fmt.Sprintf("%.1f", float64(200+frame)),
				"0.99",
			)
		}
		buf.WriteString(strings.Join(row, ",") + "\n")
	}
	mustWrite(t, path, buf.Bytes())
}
