package convert

import (
	"context"
	"fmt"
	"path/filepath"

	"labnwb/internal/dlc"
	"labnwb/internal/metadata"
	"labnwb/internal/nwb"
	"labnwb/internal/session"
	"labnwb/internal/timebase"
	"labnwb/internal/trodes"
)

// PoseInterface adds DeepLabCut pose estimation per epoch, aligned to the
// epoch's camera timestamps. When frame counts disagree between video and
// pose the shorter stream wins and the mismatch is recorded as a warning,
// never silently repaired.
type PoseInterface struct {
	epochs []session.EpochFiles
	report *Report
}

func NewPoseInterface(epochs []session.EpochFiles, report *Report) *PoseInterface {
	return &PoseInterface{epochs: epochs, report: report}
}

func (p *PoseInterface) Name() string { return "pose" }

func (p *PoseInterface) AddToFile(_ context.Context, file *nwb.File, doc *metadata.Document, clock timebase.Clock) error {
	for _, epoch := range p.epochs {
		if epoch.PoseFile == "" {
			continue
		}
		pose, err := dlc.ReadPoseCSV(epoch.PoseFile)
		if err != nil {
			return err
		}
		pose.FilterParts(doc.Pose.BodyParts)
		if len(pose.Parts) == 0 {
			p.report.Warnf("epoch %d pose file %s has no requested body parts",
				epoch.Number, filepath.Base(epoch.PoseFile))
			continue
		}

		sidecar, err := trodes.ReadCameraTimestamps(epoch.TimestampsFile)
		if err != nil {
			return err
		}
		videoTimestamps, err := clock.Rebase(sidecar.Samples)
		if err != nil {
			return err
		}

		poseTimestamps := make([]float64, pose.FrameCount)
		n, mismatch := timebase.AlignPair(
			fmt.Sprintf("epoch %d video", epoch.Number), videoTimestamps,
			fmt.Sprintf("epoch %d pose", epoch.Number), poseTimestamps,
		)
		if mismatch != nil {
			p.report.Warnf("%s", mismatch)
		}

		aligned := videoTimestamps[:n]
		estimation := nwb.PoseEstimation{
			Name:       fmt.Sprintf("pose_%s", epoch.Name),
			Scorer:     pose.Scorer,
			Timestamps: aligned,
		}
		if camera, ok := cameraForEpoch(doc, epoch.Name); ok {
			estimation.CameraID = camera.ID
		}
		for _, part := range pose.Parts {
			series := nwb.PoseSeries{
				BodyPart:   part.Name,
				X:          part.X[:n],
				Y:          part.Y[:n],
				Likelihood: part.Likelihood[:n],
			}
			if doc.Pose.LikelihoodThreshold > 0 {
				low := 0
				for _, value := range part.Likelihood[:n] {
					if value < doc.Pose.LikelihoodThreshold {
						low++
					}
				}
				if low > 0 && low*4 > n {
					p.report.Warnf("epoch %d body part %s: %d of %d frames below likelihood %.2f",
						epoch.Number, part.Name, low, n, doc.Pose.LikelihoodThreshold)
				}
			}
			estimation.Series = append(estimation.Series, series)
		}
		file.Processing.Pose = append(file.Processing.Pose, estimation)
	}
	return nil
}
