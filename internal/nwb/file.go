package nwb

import (
	"github.com/google/uuid"
)

// identifierNamespace seeds deterministic container identifiers so that
// re-converting identical inputs reproduces the same file bytes.
var identifierNamespace = uuid.MustParse("8d9c1a52-3f6e-4b41-9a87-5f0c2d7e6a11")

// NewIdentifier derives the container identifier from the session identity.
func NewIdentifier(subjectID, sessionID string) string {
	return uuid.NewSHA1(identifierNamespace, []byte(subjectID+"/"+sessionID)).String()
}

// Subject describes the experimental animal.
type Subject struct {
	SubjectID   string `json:"subject_id"`
	Species     string `json:"species,omitempty"`
	Sex         string `json:"sex,omitempty"`
	Description string `json:"description,omitempty"`
	Weight      string `json:"weight,omitempty"`
}

// Device describes one piece of acquisition hardware.
type Device struct {
	Name         string `json:"name"`
	Description  string `json:"description,omitempty"`
	Manufacturer string `json:"manufacturer,omitempty"`
}

// ElectrodeGroup is a named set of electrodes sharing a brain location.
type ElectrodeGroup struct {
	Name     string `json:"name"`
	Location string `json:"location,omitempty"`
	Device   string `json:"device,omitempty"`
}

// Electrode is one row of the electrode table.
type Electrode struct {
	ID     int    `json:"id"`
	HWChan string `json:"hw_chan"`
	Group  string `json:"group"`
	HasLFP bool   `json:"has_lfp"`
}

// TimeSeries is a timestamped signal. Bulk payloads reference their
// source file instead of embedding samples.
type TimeSeries struct {
	Name         string    `json:"name"`
	Description  string    `json:"description,omitempty"`
	Unit         string    `json:"unit,omitempty"`
	RateHz       float64   `json:"rate_hz,omitempty"`
	StartingTime float64   `json:"starting_time"`
	SampleCount  int64     `json:"sample_count,omitempty"`
	Timestamps   []float64 `json:"timestamps,omitempty"`
	Data         []float64 `json:"data,omitempty"`
	ExternalFile string    `json:"external_file,omitempty"`
	Continuity   string    `json:"continuity,omitempty"`
	// ElectrodeIDs is the electrode table region this series covers.
	ElectrodeIDs []int `json:"electrode_ids,omitempty"`
}

// EventSeries is one named behavioral event stream: a timestamp per
// discrete occurrence.
type EventSeries struct {
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Timestamps  []float64 `json:"timestamps"`
}

// BehaviorModule groups the behavioral event streams.
type BehaviorModule struct {
	Name        string        `json:"name"`
	Description string        `json:"description,omitempty"`
	Events      []EventSeries `json:"events"`
}

// PoseSeries is one tracked body part's aligned coordinate series.
type PoseSeries struct {
	BodyPart   string    `json:"body_part"`
	X          []float64 `json:"x"`
	Y          []float64 `json:"y"`
	Likelihood []float64 `json:"likelihood,omitempty"`
}

// PoseEstimation holds all body parts tracked during one epoch, sharing
// one timestamp array.
type PoseEstimation struct {
	Name       string       `json:"name"`
	Scorer     string       `json:"scorer,omitempty"`
	CameraID   int          `json:"camera_id,omitempty"`
	Timestamps []float64    `json:"timestamps"`
	Series     []PoseSeries `json:"series"`
}

// TaskTable is one task descriptor row in the tasks processing module.
type TaskTable struct {
	Name             string   `json:"name"`
	Description      string   `json:"description,omitempty"`
	Environment      string   `json:"environment,omitempty"`
	CameraIDs        []int    `json:"camera_id,omitempty"`
	LEDConfiguration string   `json:"led_configuration,omitempty"`
	LEDList          []string `json:"led_list,omitempty"`
	LEDPositions     []string `json:"led_positions,omitempty"`
	TaskEpochs       []int    `json:"task_epochs"`
}

// Epoch is one contiguous recording interval.
type Epoch struct {
	Number int      `json:"number"`
	Start  float64  `json:"start_time"`
	Stop   float64  `json:"stop_time"`
	Tags   []string `json:"tags,omitempty"`
}

// Unit is one sorted spike train plus waveform summary statistics.
type Unit struct {
	ID                      int       `json:"id"`
	NTrode                  string    `json:"ntrode"`
	UnitInd                 int       `json:"unit_ind"`
	GlobalID                string    `json:"global_id,omitempty"`
	SpikeTimes              []float64 `json:"spike_times"`
	NWaveforms              int       `json:"n_waveforms,omitempty"`
	WaveformFWHM            float64   `json:"waveform_fwhm,omitempty"`
	WaveformPeakMinusTrough float64   `json:"waveform_peak_minus_trough,omitempty"`
}

// Processing groups the derived-data modules.
type Processing struct {
	Behavior *BehaviorModule  `json:"behavior,omitempty"`
	Pose     []PoseEstimation `json:"pose,omitempty"`
	Tasks    []TaskTable      `json:"tasks,omitempty"`
	LFP      []TimeSeries     `json:"lfp,omitempty"`
}

// File is the in-memory session container assembled by the converter and
// serialized once at the end of a successful conversion.
type File struct {
	Identifier         string  `json:"identifier"`
	SessionID          string  `json:"session_id"`
	SessionDescription string  `json:"session_description,omitempty"`
	SessionStartTime   string  `json:"session_start_time,omitempty"`
	Experimenter       []string `json:"experimenter,omitempty"`
	Lab                string  `json:"lab,omitempty"`
	Institution        string  `json:"institution,omitempty"`

	Subject         Subject          `json:"subject"`
	Devices         []Device         `json:"devices,omitempty"`
	ElectrodeGroups []ElectrodeGroup `json:"electrode_groups,omitempty"`
	Electrodes      []Electrode      `json:"electrodes,omitempty"`

	Acquisition []TimeSeries `json:"acquisition,omitempty"`
	Processing  Processing   `json:"processing"`
	Epochs      []Epoch      `json:"epochs"`
	Units       []Unit       `json:"units,omitempty"`
}

// EventCount returns the total number of behavioral event occurrences.
func (f *File) EventCount() int {
	if f.Processing.Behavior == nil {
		return 0
	}
	total := 0
	for _, ev := range f.Processing.Behavior.Events {
		total += len(ev.Timestamps)
	}
	return total
}

// RecordingBounds returns the overall start and stop of the raw
// recording, derived from the first rate-sampled acquisition series. The
// boolean is false when no such series exists.
func (f *File) RecordingBounds() (float64, float64, bool) {
	for _, series := range f.Acquisition {
		if series.RateHz > 0 && series.SampleCount > 0 {
			start := series.StartingTime
			stop := start + float64(series.SampleCount)/series.RateHz
			return start, stop, true
		}
	}
	return 0, 0, false
}

// SessionBounds returns the overall start and stop of the session's
// epochs. The boolean is false when no epochs exist.
func (f *File) SessionBounds() (float64, float64, bool) {
	if len(f.Epochs) == 0 {
		return 0, 0, false
	}
	start, stop := f.Epochs[0].Start, f.Epochs[0].Stop
	for _, ep := range f.Epochs[1:] {
		if ep.Start < start {
			start = ep.Start
		}
		if ep.Stop > stop {
			stop = ep.Stop
		}
	}
	return start, stop, true
}
