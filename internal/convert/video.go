package convert

import (
	"context"
	"fmt"
	"path/filepath"

	"labnwb/internal/metadata"
	"labnwb/internal/nwb"
	"labnwb/internal/session"
	"labnwb/internal/timebase"
	"labnwb/internal/trodes"
)

// VideoInterface adds one external-file video series per epoch, with the
// per-frame timestamps from the camera hardware sync sidecar rebased onto
// the session clock. Frame payloads stay in the source video files.
type VideoInterface struct {
	epochs []session.EpochFiles
	report *Report
}

func NewVideoInterface(epochs []session.EpochFiles, report *Report) *VideoInterface {
	return &VideoInterface{epochs: epochs, report: report}
}

func (v *VideoInterface) Name() string { return "video" }

func (v *VideoInterface) AddToFile(_ context.Context, file *nwb.File, doc *metadata.Document, clock timebase.Clock) error {
	for _, epoch := range v.epochs {
		if epoch.VideoFile == "" {
			v.report.Warnf("epoch %d has a timestamp sidecar but no video file", epoch.Number)
			continue
		}
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

		series := nwb.TimeSeries{
			Name:         fmt.Sprintf("video_%s", epoch.Name),
			Description:  "behavioral video",
			StartingTime: timestamps[0],
			SampleCount:  int64(len(timestamps)),
			Timestamps:   timestamps,
			ExternalFile: filepath.Base(epoch.VideoFile),
		}
		if camera, ok := cameraForEpoch(doc, epoch.Name); ok {
			series.Description = fmt.Sprintf("behavioral video (%s)", camera.Name)
		}
		file.Acquisition = append(file.Acquisition, series)
	}
	return nil
}

// cameraForEpoch resolves the camera assigned to the task this epoch's
// name matches, if the document declares one.
func cameraForEpoch(doc *metadata.Document, epochName string) (metadata.Camera, bool) {
	task, ok := classifyByPatterns(doc, epochName)
	if !ok || len(task.CameraIDs) == 0 {
		return metadata.Camera{}, false
	}
	for _, cam := range doc.Cameras {
		if cam.ID == task.CameraIDs[0] {
			return cam, true
		}
	}
	return metadata.Camera{}, false
}
