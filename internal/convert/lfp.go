package convert

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"labnwb/internal/metadata"
	"labnwb/internal/nwb"
	"labnwb/internal/timebase"
	"labnwb/internal/trodes"
)

// LFPInterface adds the processed local field potential channels. Each
// extracted .dat carries one filtered channel identified by its nTrode;
// the matching electrode table rows are flagged hasLFP and referenced by
// the series' electrode region.
type LFPInterface struct {
	dir string
}

func NewLFPInterface(dir string) *LFPInterface {
	return &LFPInterface{dir: dir}
}

func (l *LFPInterface) Name() string { return "lfp" }

func (l *LFPInterface) AddToFile(_ context.Context, file *nwb.File, _ *metadata.Document, clock timebase.Clock) error {
	paths, err := filepath.Glob(filepath.Join(l.dir, "*.dat"))
	if err != nil {
		return err
	}
	sort.Strings(paths)

	for _, path := range paths {
		extracted, err := trodes.ReadExtractedFile(path)
		if err != nil {
			return err
		}
		samples, err := extracted.Int64Column("time")
		if err != nil {
			return err
		}
		voltages, err := extracted.Float64Column("voltage")
		if err != nil {
			return err
		}
		timestamps, err := clock.Rebase(samples)
		if err != nil {
			return err
		}
		if err := timebase.CheckMonotonic(timestamps); err != nil {
			return err
		}

		ntrode := ntrodeFromChannelID(extracted.ID())
		electrodeIDs := markLFPElectrodes(file, ntrode)

		series := nwb.TimeSeries{
			Name:         fmt.Sprintf("lfp_%s", extracted.ID()),
			Description:  "low-pass filtered extracellular signal",
			Unit:         "volts",
			Timestamps:   timestamps,
			Data:         voltages,
			ElectrodeIDs: electrodeIDs,
		}
		if len(timestamps) > 0 {
			series.StartingTime = timestamps[0]
			series.SampleCount = int64(len(timestamps))
		}
		file.Processing.LFP = append(file.Processing.LFP, series)
	}
	return nil
}

// ntrodeFromChannelID maps an extracted channel ID such as "nt4ch1" to
// its electrode group name.
func ntrodeFromChannelID(id string) string {
	trimmed := strings.TrimPrefix(strings.ToLower(id), "nt")
	digits := trimmed
	if idx := strings.IndexFunc(trimmed, func(r rune) bool { return r < '0' || r > '9' }); idx >= 0 {
		digits = trimmed[:idx]
	}
	if digits == "" {
		return ""
	}
	return "nTrode" + digits
}

func markLFPElectrodes(file *nwb.File, group string) []int {
	var ids []int
	for i := range file.Electrodes {
		if file.Electrodes[i].Group == group {
			file.Electrodes[i].HasLFP = true
			ids = append(ids, file.Electrodes[i].ID)
		}
	}
	return ids
}
