package nwb

import (
	"fmt"
	"sort"
	"strings"

	"labnwb/internal/services"
	"labnwb/internal/timebase"
)

// Validate runs the schema checks that gate persisting a container. A
// failing container is never written (the session conversion aborts).
func (f *File) Validate() error {
	var problems []string

	if f.Identifier == "" {
		problems = append(problems, "identifier is empty")
	}
	if f.SessionID == "" {
		problems = append(problems, "session_id is empty")
	}
	if f.Subject.SubjectID == "" {
		problems = append(problems, "subject.subject_id is empty")
	}

	// A session with zero detected epochs is rejected outright rather
	// than producing an empty container.
	if len(f.Epochs) == 0 {
		problems = append(problems, "session has zero detected epochs")
	}

	recStart, recStop, haveRecBounds := f.RecordingBounds()

	ordered := append([]Epoch(nil), f.Epochs...)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Start < ordered[j].Start })
	for i, ep := range ordered {
		if ep.Stop < ep.Start {
			problems = append(problems, fmt.Sprintf("epoch %d stops before it starts", ep.Number))
		}
		if i > 0 && ep.Start < ordered[i-1].Stop {
			problems = append(problems, fmt.Sprintf("epoch %d overlaps epoch %d", ep.Number, ordered[i-1].Number))
		}
		if haveRecBounds && (ep.Start < recStart || ep.Stop > recStop) {
			problems = append(problems, fmt.Sprintf("epoch %d [%g, %g] lies outside recording bounds [%g, %g]",
				ep.Number, ep.Start, ep.Stop, recStart, recStop))
		}
	}

	checkSeries := func(kind, name string, ts []float64) {
		if err := timebase.CheckMonotonic(ts); err != nil {
			problems = append(problems, fmt.Sprintf("%s %q: %v", kind, name, err))
			return
		}
		if haveRecBounds && len(ts) > 0 {
			if ts[0] < recStart || ts[len(ts)-1] > recStop {
				problems = append(problems, fmt.Sprintf("%s %q: timestamps [%g, %g] outside recording bounds [%g, %g]",
					kind, name, ts[0], ts[len(ts)-1], recStart, recStop))
			}
		}
	}

	for _, series := range f.Acquisition {
		checkSeries("acquisition series", series.Name, series.Timestamps)
	}
	if f.Processing.Behavior != nil {
		for _, ev := range f.Processing.Behavior.Events {
			checkSeries("behavioral event", ev.Name, ev.Timestamps)
		}
	}
	for _, pose := range f.Processing.Pose {
		checkSeries("pose estimation", pose.Name, pose.Timestamps)
		for _, series := range pose.Series {
			if len(series.X) != len(pose.Timestamps) || len(series.Y) != len(pose.Timestamps) {
				problems = append(problems, fmt.Sprintf("pose estimation %q body part %q length disagrees with timestamps",
					pose.Name, series.BodyPart))
			}
		}
	}
	for _, series := range f.Processing.LFP {
		checkSeries("lfp series", series.Name, series.Timestamps)
	}
	for _, unit := range f.Units {
		checkSeries("unit", fmt.Sprintf("%d", unit.ID), unit.SpikeTimes)
	}

	groupNames := make(map[string]bool, len(f.ElectrodeGroups))
	for _, group := range f.ElectrodeGroups {
		groupNames[group.Name] = true
	}
	for _, electrode := range f.Electrodes {
		if !groupNames[electrode.Group] {
			problems = append(problems, fmt.Sprintf("electrode %d references unknown group %q", electrode.ID, electrode.Group))
		}
	}
	for _, unit := range f.Units {
		if unit.NTrode != "" && !groupNames[unit.NTrode] {
			problems = append(problems, fmt.Sprintf("unit %d references unknown electrode group %q", unit.ID, unit.NTrode))
		}
	}

	if len(problems) > 0 {
		return services.Wrap(services.ErrValidation, "nwb", "validate",
			strings.Join(problems, "; "), nil)
	}
	return nil
}
