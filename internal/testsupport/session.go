package testsupport

import (
	"fmt"
	"path/filepath"
	"testing"
)

// SessionFixture assembles a session directory laid out the way the
// acquisition rig exports it: a .rec file at the top, DIO/LFP/sorting
// subdirectories, and per-epoch camera sidecars with video and pose files.
type SessionFixture struct {
	t testing.TB

	SubjectID string
	SessionID string
	Dir       string
}

// NewSessionDir creates an empty {subject}_{session} directory under dataDir.
func NewSessionDir(t testing.TB, dataDir, subjectID, sessionID string) *SessionFixture {
	t.Helper()
	fixture := &SessionFixture{
		t:         t,
		SubjectID: subjectID,
		SessionID: sessionID,
		Dir:       filepath.Join(dataDir, subjectID+"_"+sessionID),
	}
	mustWrite(t, filepath.Join(fixture.Dir, ".keep"), nil)
	return fixture
}

// Name returns the {subject_id}_{session_id} identifier.
func (f *SessionFixture) Name() string {
	return f.SubjectID + "_" + f.SessionID
}

// WriteRec writes the session's .rec recording.
func (f *SessionFixture) WriteRec(spec RecSpec) {
	f.t.Helper()
	WriteRecFile(f.t, filepath.Join(f.Dir, f.Name()+".rec"), spec)
}

// AddDIO writes one extracted DIO channel log under DIO/.
func (f *SessionFixture) AddDIO(id string, clockrate float64, samples []uint32, states []uint8) {
	f.t.Helper()
	name := fmt.Sprintf("%s.dio_%s.dat", f.Name(), id)
	WriteDIOFile(f.t, filepath.Join(f.Dir, "DIO", name), id, clockrate, samples, states)
}

// AddLFP writes one extracted LFP channel under LFP/.
func (f *SessionFixture) AddLFP(id string, clockrate float64, samples []uint32, voltages []float32) {
	f.t.Helper()
	name := fmt.Sprintf("%s.LFP_%s.dat", f.Name(), id)
	WriteLFPFile(f.t, filepath.Join(f.Dir, "LFP", name), id, clockrate, samples, voltages)
}

// AddUnit writes one sorted unit under sorting/.
func (f *SessionFixture) AddUnit(ntrode string, unitInd int, samples []uint32) {
	f.t.Helper()
	name := fmt.Sprintf("%s.unit_%s_%d.dat", f.Name(), ntrode, unitInd)
	WriteSortingFile(f.t, filepath.Join(f.Dir, "sorting", name), ntrode, unitInd, samples)
}

// EpochSpec describes one epoch's camera-aligned files.
type EpochSpec struct {
	Number    int
	Fragment  int
	Env       string
	Condition string

	Clockrate float64
	Samples   []uint32

	// WithVideo also writes the .h264 the sidecar points at.
	WithVideo bool
	// PoseFrames > 0 writes a DLC CSV with that many rows.
	PoseFrames int
	PoseParts  []string
	PoseScorer string
}

// AddEpoch writes one epoch's sidecar plus optional video and pose files,
// named per the {subject}_{session}_{S##}_{F##}_{ENV}_{COND} convention.
func (f *SessionFixture) AddEpoch(spec EpochSpec) {
	f.t.Helper()
	if spec.Fragment == 0 {
		spec.Fragment = 1
	}
	base := fmt.Sprintf("%s_S%02d_F%02d_%s_%s_20230503_112642",
		f.Name(), spec.Number, spec.Fragment, spec.Env, spec.Condition)

	sidecar := filepath.Join(f.Dir, base+".1.videoTimeStamps")
	WriteCameraSidecar(f.t, sidecar, spec.Clockrate, spec.Samples)

	if spec.WithVideo {
		mustWrite(f.t, filepath.Join(f.Dir, base+".1.h264"), []byte("h264"))
	}
	if spec.PoseFrames > 0 {
		parts := spec.PoseParts
		if len(parts) == 0 {
			parts = []string{"nose", "tail"}
		}
		scorer := spec.PoseScorer
		if scorer == "" {
			scorer = "DLC_resnet50_test"
		}
		WritePoseCSV(f.t, filepath.Join(f.Dir, base+"DLC_resnet50.csv"), scorer, parts, spec.PoseFrames)
	}
}

// SampleRange returns count consecutive sample clocks spaced step apart
// starting at start. Handy for building monotonic timestamp fixtures.
func SampleRange(start uint32, count int, step uint32) []uint32 {
	out := make([]uint32, count)
	for i := range out {
		out[i] = start + uint32(i)*step
	}
	return out
}
