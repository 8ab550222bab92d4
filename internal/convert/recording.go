package convert

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"

	"labnwb/internal/metadata"
	"labnwb/internal/nwb"
	"labnwb/internal/timebase"
	"labnwb/internal/trodes"
)

// RecordingInterface adds the raw ephys recording: devices, electrode
// groups derived from the workspace's nTrode layout, the electrode table,
// and the raw acquisition series descriptor. Sample payloads stay in the
// .rec file and are referenced by name.
type RecordingInterface struct {
	path   string
	header *trodes.RecHeader
}

func NewRecordingInterface(path string, header *trodes.RecHeader) *RecordingInterface {
	return &RecordingInterface{path: path, header: header}
}

func (r *RecordingInterface) Name() string { return "recording" }

func (r *RecordingInterface) AddToFile(_ context.Context, file *nwb.File, doc *metadata.Document, clock timebase.Clock) error {
	for _, dev := range doc.Devices {
		file.Devices = append(file.Devices, nwb.Device{
			Name:         dev.Name,
			Description:  dev.Description,
			Manufacturer: dev.Manufacturer,
		})
	}

	groupDevice := ""
	if len(doc.Devices) > 0 {
		groupDevice = doc.Devices[0].Name
	}

	channelsByNTrode := r.header.ChannelsByNTrode()
	electrodeID := 0
	for _, ntrodeID := range r.header.NTrodeIDs() {
		groupName := fmt.Sprintf("nTrode%s", ntrodeID)
		group := nwb.ElectrodeGroup{Name: groupName, Device: groupDevice}
		if meta, ok := groupByName(doc, groupName); ok {
			group.Location = meta.Location
			if meta.Device != "" {
				group.Device = meta.Device
			}
		}
		file.ElectrodeGroups = append(file.ElectrodeGroups, group)

		for _, hwChan := range channelsByNTrode[ntrodeID] {
			file.Electrodes = append(file.Electrodes, nwb.Electrode{
				ID:     electrodeID,
				HWChan: hwChan,
				Group:  groupName,
			})
			electrodeID++
		}
	}
	sort.Slice(file.Electrodes, func(i, j int) bool { return file.Electrodes[i].ID < file.Electrodes[j].ID })

	file.Acquisition = append(file.Acquisition, nwb.TimeSeries{
		Name:         "e-series",
		Description:  "raw extracellular recording",
		Unit:         "volts",
		RateHz:       r.header.SamplingRateHz,
		StartingTime: clock.Seconds(r.header.FirstSample),
		SampleCount:  r.header.SampleCount,
		ExternalFile: filepath.Base(r.path),
	})
	return nil
}

func groupByName(doc *metadata.Document, name string) (metadata.ElectrodeGroup, bool) {
	for _, group := range doc.ElectrodeGroups {
		if group.Name == name {
			return group, true
		}
	}
	return metadata.ElectrodeGroup{}, false
}
