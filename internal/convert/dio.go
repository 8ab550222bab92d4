package convert

import (
	"context"
	"path/filepath"
	"sort"

	"labnwb/internal/metadata"
	"labnwb/internal/nwb"
	"labnwb/internal/timebase"
	"labnwb/internal/trodes"
)

// DIOInterface converts extracted digital-I/O event logs into named
// behavioral event streams. Each .dat file carries one channel; rising
// edges (state transitions to 1) become event occurrences, named through
// the metadata document's event map.
type DIOInterface struct {
	dir    string
	report *Report
}

func NewDIOInterface(dir string, report *Report) *DIOInterface {
	return &DIOInterface{dir: dir, report: report}
}

func (d *DIOInterface) Name() string { return "dio" }

func (d *DIOInterface) AddToFile(_ context.Context, file *nwb.File, doc *metadata.Document, clock timebase.Clock) error {
	paths, err := filepath.Glob(filepath.Join(d.dir, "*.dat"))
	if err != nil {
		return err
	}
	sort.Strings(paths)

	module := &nwb.BehaviorModule{
		Name:        doc.Behavior.ModuleName,
		Description: doc.Behavior.ModuleDescription,
	}
	if module.Name == "" {
		module.Name = "behavior"
	}

	for _, path := range paths {
		extracted, err := trodes.ReadExtractedFile(path)
		if err != nil {
			return err
		}
		times, err := extracted.Int64Column("time")
		if err != nil {
			return err
		}
		states, err := extracted.Int64Column("state")
		if err != nil {
			return err
		}

		var samples []int64
		for i := range times {
			if states[i] == 1 {
				samples = append(samples, times[i])
			}
		}
		// Channels that never fired are omitted, matching the source data
		// convention of only materializing active event streams.
		if len(samples) == 0 {
			continue
		}

		channelID := extracted.ID()
		event, ok := doc.EventByID(channelID)
		if !ok {
			d.report.Warnf("DIO channel %q in %s has no event mapping; stream skipped",
				channelID, filepath.Base(path))
			continue
		}

		timestamps, err := clock.Rebase(samples)
		if err != nil {
			return err
		}
		if err := timebase.CheckMonotonic(timestamps); err != nil {
			return err
		}

		module.Events = append(module.Events, nwb.EventSeries{
			Name:        event.Name,
			Description: event.Description,
			Timestamps:  timestamps,
		})
	}

	sort.Slice(module.Events, func(i, j int) bool { return module.Events[i].Name < module.Events[j].Name })
	file.Processing.Behavior = module
	return nil
}
