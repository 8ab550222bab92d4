package metadata

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"labnwb/internal/services"
)

// Subject describes the experimental animal.
type Subject struct {
	SubjectID   string `yaml:"subject_id"`
	Species     string `yaml:"species"`
	Sex         string `yaml:"sex"`
	Description string `yaml:"description"`
	Weight      string `yaml:"weight"`
}

// Device describes the acquisition hardware.
type Device struct {
	Name         string `yaml:"name"`
	Description  string `yaml:"description"`
	Manufacturer string `yaml:"manufacturer"`
}

// ElectrodeGroup names a set of electrodes sharing a brain location.
// Groups are immutable per dataset; the recording header maps hardware
// channels onto them by nTrode ID.
type ElectrodeGroup struct {
	Name     string `yaml:"name"`
	Location string `yaml:"location"`
	Device   string `yaml:"device"`
	Targeted string `yaml:"targeted_location"`
}

// Camera describes one video camera.
type Camera struct {
	ID             int     `yaml:"id"`
	Name           string  `yaml:"camera_name"`
	Manufacturer   string  `yaml:"manufacturer"`
	Model          string  `yaml:"model"`
	MetersPerPixel float64 `yaml:"meters_per_pixel"`
}

// Task describes one behavioral task, including the LED setup the custom
// task_leds extension table is populated from. NamePatterns are matched
// against epoch names during classification; an epoch whose name contains
// any pattern is assigned to this task.
type Task struct {
	Name             string   `yaml:"name"`
	Description      string   `yaml:"description"`
	Environment      string   `yaml:"environment"`
	CameraIDs        []int    `yaml:"camera_id"`
	LEDConfiguration string   `yaml:"led_configuration"`
	LEDList          []string `yaml:"led_list"`
	LEDPositions     []string `yaml:"led_positions"`
	NamePatterns     []string `yaml:"name_patterns"`
}

// Event maps a DIO channel ID to a semantic event name.
type Event struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

// Behavior groups the behavioral-events module description and event map.
type Behavior struct {
	ModuleName        string  `yaml:"module_name"`
	ModuleDescription string  `yaml:"module_description"`
	Events            []Event `yaml:"events"`
}

// Pose configures body-part handling for DeepLabCut output.
type Pose struct {
	BodyParts           []string `yaml:"body_parts"`
	LikelihoodThreshold float64  `yaml:"likelihood_threshold"`
}

// Document is the full per-dataset metadata document.
type Document struct {
	SessionDescription string           `yaml:"session_description"`
	Experimenter       []string         `yaml:"experimenter"`
	Lab                string           `yaml:"lab"`
	Institution        string           `yaml:"institution"`
	Subjects           []Subject        `yaml:"subjects"`
	Devices            []Device         `yaml:"devices"`
	ElectrodeGroups    []ElectrodeGroup `yaml:"electrode_groups"`
	Cameras            []Camera         `yaml:"cameras"`
	Tasks              []Task           `yaml:"tasks"`
	Behavior           Behavior         `yaml:"behavior"`
	Pose               Pose             `yaml:"pose"`

	// SkipSessions lists session IDs excluded from conversion, with the
	// reason documented alongside (corrupted inputs are excluded here
	// rather than partially recovered).
	SkipSessions map[string]string `yaml:"skip_sessions"`

	// EpochTaskOverrides force the task assignment for epochs the naming
	// heuristics misclassify, keyed "session_id/epoch_number".
	EpochTaskOverrides map[string]string `yaml:"epoch_task_overrides"`
}

// Load reads and validates a dataset metadata document.
func Load(path string) (*Document, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "metadata", "load", path, err)
	}
	var doc Document
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "metadata", "parse", path, err)
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Validate checks internal consistency of the document.
func (d *Document) Validate() error {
	var problems []string

	if len(d.Subjects) == 0 {
		problems = append(problems, "at least one subject is required")
	}
	for _, s := range d.Subjects {
		if s.SubjectID == "" {
			problems = append(problems, "subject with empty subject_id")
		}
	}

	deviceNames := map[string]bool{}
	for _, dev := range d.Devices {
		deviceNames[dev.Name] = true
	}
	groupNames := map[string]bool{}
	for _, g := range d.ElectrodeGroups {
		if g.Name == "" {
			problems = append(problems, "electrode group with empty name")
			continue
		}
		if groupNames[g.Name] {
			problems = append(problems, fmt.Sprintf("duplicate electrode group %q", g.Name))
		}
		groupNames[g.Name] = true
		if g.Device != "" && !deviceNames[g.Device] {
			problems = append(problems, fmt.Sprintf("electrode group %q references unknown device %q", g.Name, g.Device))
		}
	}

	cameraIDs := map[int]bool{}
	for _, cam := range d.Cameras {
		if cameraIDs[cam.ID] {
			problems = append(problems, fmt.Sprintf("duplicate camera id %d", cam.ID))
		}
		cameraIDs[cam.ID] = true
	}

	taskNames := map[string]bool{}
	for _, task := range d.Tasks {
		if task.Name == "" {
			problems = append(problems, "task with empty name")
			continue
		}
		if taskNames[task.Name] {
			problems = append(problems, fmt.Sprintf("duplicate task %q", task.Name))
		}
		taskNames[task.Name] = true
		for _, id := range task.CameraIDs {
			if len(d.Cameras) > 0 && !cameraIDs[id] {
				problems = append(problems, fmt.Sprintf("task %q references unknown camera id %d", task.Name, id))
			}
		}
		if len(task.LEDList) != len(task.LEDPositions) {
			problems = append(problems, fmt.Sprintf("task %q has %d LEDs but %d LED positions",
				task.Name, len(task.LEDList), len(task.LEDPositions)))
		}
	}

	eventIDs := map[string]bool{}
	for _, ev := range d.Behavior.Events {
		if ev.ID == "" || ev.Name == "" {
			problems = append(problems, "behavior event with empty id or name")
			continue
		}
		if eventIDs[ev.ID] {
			problems = append(problems, fmt.Sprintf("duplicate behavior event id %q", ev.ID))
		}
		eventIDs[ev.ID] = true
	}

	for key, task := range d.EpochTaskOverrides {
		if !strings.Contains(key, "/") {
			problems = append(problems, fmt.Sprintf("epoch task override key %q is not session_id/epoch", key))
		}
		if !taskNames[task] {
			problems = append(problems, fmt.Sprintf("epoch task override %q references unknown task %q", key, task))
		}
	}

	if len(problems) > 0 {
		return services.Wrap(services.ErrValidation, "metadata", "validate",
			strings.Join(problems, "; "), nil)
	}
	return nil
}

// SubjectByID returns the subject entry matching id.
func (d *Document) SubjectByID(id string) (Subject, bool) {
	for _, s := range d.Subjects {
		if s.SubjectID == id {
			return s, true
		}
	}
	return Subject{}, false
}

// EventByID returns the behavior event entry for a DIO channel ID.
func (d *Document) EventByID(id string) (Event, bool) {
	for _, ev := range d.Behavior.Events {
		if ev.ID == id {
			return ev, true
		}
	}
	return Event{}, false
}

// TaskByName returns the task entry matching name.
func (d *Document) TaskByName(name string) (Task, bool) {
	for _, task := range d.Tasks {
		if task.Name == name {
			return task, true
		}
	}
	return Task{}, false
}

// SkipReason reports whether the session is on the documented skip list.
func (d *Document) SkipReason(sessionID string) (string, bool) {
	reason, ok := d.SkipSessions[sessionID]
	return reason, ok
}

// TaskOverride returns the manual task assignment for an epoch, if any.
func (d *Document) TaskOverride(sessionID string, epoch int) (string, bool) {
	task, ok := d.EpochTaskOverrides[fmt.Sprintf("%s/%d", sessionID, epoch)]
	return task, ok
}
