package convert

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"labnwb/internal/metadata"
	"labnwb/internal/nwb"
	"labnwb/internal/session"
	"labnwb/internal/timebase"
	"labnwb/internal/trodes"
)

// sleepEpochMaxSeconds is the duration heuristic fallback: an epoch this
// short with no matching name pattern is assumed to be a rest interval.
const sleepEpochMaxSeconds = 30 * 60

// EpochInterface derives the epochs table from the camera timestamp
// sidecars and assigns each epoch to a task. Classification order:
// manual override from the metadata document, then task name patterns
// matched against the epoch name, then a duration heuristic. Gaps inside
// one sidecar larger than the configured threshold split the interval
// into segments; the epoch spans first segment start to last segment
// stop, with the interior gaps reported.
type EpochInterface struct {
	sessionName string
	epochs      []session.EpochFiles
	gapSeconds  float64
	report      *Report
}

func NewEpochInterface(sessionName string, epochs []session.EpochFiles, gapSeconds float64, report *Report) *EpochInterface {
	return &EpochInterface{
		sessionName: sessionName,
		epochs:      epochs,
		gapSeconds:  gapSeconds,
		report:      report,
	}
}

func (e *EpochInterface) Name() string { return "epochs" }

func (e *EpochInterface) AddToFile(_ context.Context, file *nwb.File, doc *metadata.Document, clock timebase.Clock) error {
	taskEpochs := map[string][]int{}

	for _, epoch := range e.epochs {
		sidecar, err := trodes.ReadCameraTimestamps(epoch.TimestampsFile)
		if err != nil {
			return err
		}
		timestamps, err := clock.Rebase(sidecar.Samples)
		if err != nil {
			return err
		}
		if err := timebase.CheckMonotonic(timestamps); err != nil {
			return err
		}

		segments := splitOnGaps(timestamps, e.gapSeconds)
		if len(segments) > 1 {
			e.report.Warnf("epoch %d has %d recording segments separated by gaps over %.2fs",
				epoch.Number, len(segments), e.gapSeconds)
		}

		start := timestamps[0]
		stop := timestamps[len(timestamps)-1]
		tag := fmt.Sprintf("%02d", epoch.Number)

		taskName := e.classify(doc, epoch, stop-start)
		if taskName != "" {
			taskEpochs[taskName] = append(taskEpochs[taskName], epoch.Number)
		}

		file.Epochs = append(file.Epochs, nwb.Epoch{
			Number: epoch.Number,
			Start:  start,
			Stop:   stop,
			Tags:   []string{tag},
		})
	}

	sort.Slice(file.Epochs, func(i, j int) bool { return file.Epochs[i].Number < file.Epochs[j].Number })

	// Tasks with no epochs are omitted rather than emitted as empty rows.
	for _, task := range doc.Tasks {
		epochs := taskEpochs[task.Name]
		if len(epochs) == 0 {
			continue
		}
		sort.Ints(epochs)
		file.Processing.Tasks = append(file.Processing.Tasks, nwb.TaskTable{
			Name:             task.Name,
			Description:      task.Description,
			Environment:      task.Environment,
			CameraIDs:        task.CameraIDs,
			LEDConfiguration: task.LEDConfiguration,
			LEDList:          task.LEDList,
			LEDPositions:     task.LEDPositions,
			TaskEpochs:       epochs,
		})
	}
	return nil
}

func (e *EpochInterface) classify(doc *metadata.Document, epoch session.EpochFiles, duration float64) string {
	if override, ok := doc.TaskOverride(e.sessionName, epoch.Number); ok {
		return override
	}
	if task, ok := classifyByPatterns(doc, epoch.Name); ok {
		return task.Name
	}
	if duration < sleepEpochMaxSeconds {
		for _, task := range doc.Tasks {
			if strings.EqualFold(task.Name, "sleep") {
				e.report.Warnf("epoch %d (%s) classified as %s by duration heuristic; add a name pattern or override to pin it",
					epoch.Number, epoch.Name, task.Name)
				return task.Name
			}
		}
	}
	e.report.Warnf("epoch %d (%s) matched no task; epoch is tagged but unassigned", epoch.Number, epoch.Name)
	return ""
}

func classifyByPatterns(doc *metadata.Document, epochName string) (metadata.Task, bool) {
	for _, task := range doc.Tasks {
		for _, pattern := range task.NamePatterns {
			if pattern != "" && strings.Contains(epochName, pattern) {
				return task, true
			}
		}
	}
	return metadata.Task{}, false
}

// splitOnGaps partitions a timestamp stream at jumps exceeding the
// configured gap threshold.
func splitOnGaps(ts []float64, gapSeconds float64) [][]float64 {
	if len(ts) == 0 {
		return nil
	}
	var segments [][]float64
	begin := 0
	for i := 1; i < len(ts); i++ {
		if ts[i]-ts[i-1] > gapSeconds {
			segments = append(segments, ts[begin:i])
			begin = i
		}
	}
	return append(segments, ts[begin:])
}
