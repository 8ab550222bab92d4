package convert

import (
	"context"
	"path/filepath"
	"sort"
	"strconv"

	"labnwb/internal/metadata"
	"labnwb/internal/nwb"
	"labnwb/internal/timebase"
	"labnwb/internal/trodes"
)

// SortingInterface adds the sorted units. The upstream sorter exports one
// extracted .dat per unit holding the spike sample clocks, with the unit's
// provenance and waveform summary statistics in the settings block.
type SortingInterface struct {
	dir string
}

func NewSortingInterface(dir string) *SortingInterface {
	return &SortingInterface{dir: dir}
}

func (s *SortingInterface) Name() string { return "sorting" }

func (s *SortingInterface) AddToFile(_ context.Context, file *nwb.File, _ *metadata.Document, clock timebase.Clock) error {
	paths, err := filepath.Glob(filepath.Join(s.dir, "*.dat"))
	if err != nil {
		return err
	}
	sort.Strings(paths)

	for i, path := range paths {
		extracted, err := trodes.ReadExtractedFile(path)
		if err != nil {
			return err
		}
		samples, err := extracted.Int64Column("time")
		if err != nil {
			return err
		}
		spikeTimes, err := clock.Rebase(samples)
		if err != nil {
			return err
		}
		if err := timebase.CheckMonotonic(spikeTimes); err != nil {
			return err
		}

		unit := nwb.Unit{
			ID:         i,
			NTrode:     ntrodeFromChannelID(extracted.Settings["ntrode"]),
			GlobalID:   extracted.Settings["globalid"],
			SpikeTimes: spikeTimes,
		}
		if raw, ok := extracted.Settings["unitind"]; ok {
			if value, err := strconv.Atoi(raw); err == nil {
				unit.UnitInd = value
			}
		}
		if raw, ok := extracted.Settings["nwaveforms"]; ok {
			if value, err := strconv.Atoi(raw); err == nil {
				unit.NWaveforms = value
			}
		}
		if raw, ok := extracted.Settings["waveformfwhm"]; ok {
			if value, err := strconv.ParseFloat(raw, 64); err == nil {
				unit.WaveformFWHM = value
			}
		}
		if raw, ok := extracted.Settings["waveformpeakminustrough"]; ok {
			if value, err := strconv.ParseFloat(raw, 64); err == nil {
				unit.WaveformPeakMinusTrough = value
			}
		}
		file.Units = append(file.Units, unit)
	}
	return nil
}
