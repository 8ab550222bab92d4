package trodes

import (
	"fmt"

	"labnwb/internal/services"
)

// CameraTimestamps holds the per-frame sample clocks recorded by the
// camera module alongside a video file.
type CameraTimestamps struct {
	Samples    []int64
	RateHz     float64
	FrameCount int
}

// cameraTimeFields lists the field names camera sidecars have used across
// Trodes versions, in preference order.
var cameraTimeFields = []string{"PosTimestamp", "HWTimestamp", "time"}

// ReadCameraTimestamps reads a .videoTimeStamps sidecar and returns the
// per-frame sample clocks in acquisition units.
func ReadCameraTimestamps(path string) (*CameraTimestamps, error) {
	file, err := ReadExtractedFile(path)
	if err != nil {
		return nil, err
	}
	rate, err := file.Clockrate()
	if err != nil {
		return nil, services.Wrap(services.ErrCorruptInput, "trodes", "camera timestamps", path, err)
	}

	var samples []int64
	var readErr error
	for _, name := range cameraTimeFields {
		samples, readErr = file.Int64Column(name)
		if readErr == nil {
			break
		}
	}
	if readErr != nil {
		return nil, services.Wrap(services.ErrCorruptInput, "trodes", "camera timestamps",
			fmt.Sprintf("%s: no timestamp field among %v", path, cameraTimeFields), nil)
	}
	if len(samples) == 0 {
		return nil, services.Wrap(services.ErrCorruptInput, "trodes", "camera timestamps",
			fmt.Sprintf("%s: sidecar holds zero frames", path), nil)
	}

	return &CameraTimestamps{
		Samples:    samples,
		RateHz:     rate,
		FrameCount: len(samples),
	}, nil
}
