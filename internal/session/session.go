// Package session discovers candidate recording sessions on disk.
//
// A session directory is named {subject_id}_{session_id} and holds the
// raw-file set for every epoch recorded that day: one SpikeGadgets .rec
// file, a DIO/ directory of extracted event logs, optional LFP/ and
// sorting/ directories, and per-epoch camera timestamp sidecars with
// their video files and DeepLabCut pose CSVs. Discovery only inspects
// names; decoding and error reporting happen when a session is converted.
package session

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"labnwb/internal/metadata"
	"labnwb/internal/services"
)

// EpochFiles is the raw-file set for one contiguous recording interval.
type EpochFiles struct {
	// Name is the epoch descriptor parsed from the sidecar file name,
	// e.g. "S01_F01_BOX_SLP".
	Name   string
	Number int

	TimestampsFile string
	VideoFile      string
	PoseFile       string
}

// Session is one discovered animal-day recording.
type Session struct {
	SubjectID string
	SessionID string
	Dir       string

	RecFile    string
	DIODir     string
	LFPDir     string
	SortingDir string

	Epochs []EpochFiles

	// SkipReason is non-empty when the dataset metadata excludes this
	// session (documented per-session skip list).
	SkipReason string
}

// Name returns the {subject_id}_{session_id} identifier.
func (s *Session) Name() string {
	return s.SubjectID + "_" + s.SessionID
}

// Discover scans dataDir for session directories matching pattern and
// assembles each session's raw-file sets. Results are ordered by name so
// batch runs are deterministic.
func Discover(dataDir, pattern string, doc *metadata.Document) ([]Session, error) {
	entries, err := os.ReadDir(dataDir)
	if err != nil {
		return nil, services.Wrap(services.ErrMissingInput, "session", "discover", dataDir, err)
	}

	var sessions []Session
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		name := entry.Name()
		if matched, _ := filepath.Match(pattern, name); !matched {
			continue
		}
		subjectID, sessionID, ok := strings.Cut(name, "_")
		if !ok {
			continue
		}
		sess := Session{
			SubjectID: subjectID,
			SessionID: sessionID,
			Dir:       filepath.Join(dataDir, name),
		}
		if doc != nil {
			if reason, skip := doc.SkipReason(name); skip {
				sess.SkipReason = reason
			}
		}
		if err := sess.collectFiles(); err != nil {
			return nil, err
		}
		sessions = append(sessions, sess)
	}

	sort.Slice(sessions, func(i, j int) bool { return sessions[i].Name() < sessions[j].Name() })
	return sessions, nil
}

// FromDir loads a single session directory without scanning its parent.
// The directory base name must follow the {subject_id}_{session_id}
// convention.
func FromDir(dir string, doc *metadata.Document) (*Session, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(abs)
	if err != nil || !info.IsDir() {
		return nil, services.Wrap(services.ErrMissingInput, "session", "load", abs, err)
	}
	name := filepath.Base(abs)
	subjectID, sessionID, ok := strings.Cut(name, "_")
	if !ok {
		return nil, services.Wrap(services.ErrValidation, "session", "load",
			fmt.Sprintf("directory %q is not named subject_session", name), nil)
	}
	sess := &Session{
		SubjectID: subjectID,
		SessionID: sessionID,
		Dir:       abs,
	}
	if doc != nil {
		if reason, skip := doc.SkipReason(name); skip {
			sess.SkipReason = reason
		}
	}
	if err := sess.collectFiles(); err != nil {
		return nil, err
	}
	return sess, nil
}

func (s *Session) collectFiles() error {
	recFiles, err := filepath.Glob(filepath.Join(s.Dir, "*.rec"))
	if err != nil {
		return err
	}
	sort.Strings(recFiles)
	if len(recFiles) > 0 {
		s.RecFile = recFiles[0]
	}

	for _, sub := range []struct {
		name string
		dest *string
	}{
		{"DIO", &s.DIODir},
		{"LFP", &s.LFPDir},
		{"sorting", &s.SortingDir},
	} {
		dir := filepath.Join(s.Dir, sub.name)
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			*sub.dest = dir
		}
	}

	sidecars, err := filepath.Glob(filepath.Join(s.Dir, "*.videoTimeStamps"))
	if err != nil {
		return err
	}
	sort.Strings(sidecars)

	poseFiles, err := filepath.Glob(filepath.Join(s.Dir, "*.csv"))
	if err != nil {
		return err
	}
	sort.Strings(poseFiles)

	for _, sidecar := range sidecars {
		base := trimSegmentExtensions(filepath.Base(sidecar))
		epochName, number, err := ParseEpochName(base)
		if err != nil {
			return services.Wrap(services.ErrValidation, "session", "epoch name",
				fmt.Sprintf("%s: %v", sidecar, err), nil)
		}
		files := EpochFiles{
			Name:           epochName,
			Number:         number,
			TimestampsFile: sidecar,
		}
		if video := strings.TrimSuffix(sidecar, ".videoTimeStamps") + ".h264"; fileExists(video) {
			files.VideoFile = video
		}
		for _, pose := range poseFiles {
			if strings.HasPrefix(filepath.Base(pose), base) {
				files.PoseFile = pose
				break
			}
		}
		s.Epochs = append(s.Epochs, files)
	}
	sort.Slice(s.Epochs, func(i, j int) bool { return s.Epochs[i].Number < s.Epochs[j].Number })
	return nil
}

// ParseEpochName extracts the epoch descriptor and 1-based epoch number
// from a file base name following the {subject}_{session}_{S##}_{...}
// convention, e.g. "SL18_D19_S01_F01_BOX_SLP_20230503_112642" yields
// ("S01_F01_BOX_SLP", 1).
func ParseEpochName(base string) (string, int, error) {
	parts := strings.Split(base, "_")
	if len(parts) < 4 {
		return "", 0, fmt.Errorf("name %q has too few segments", base)
	}
	end := 6
	if end > len(parts) {
		end = len(parts)
	}
	epochName := strings.Join(parts[2:end], "_")

	token := parts[2]
	if len(token) < 2 || (token[0] != 'S' && token[0] != 's') {
		return "", 0, fmt.Errorf("segment %q is not an epoch token", token)
	}
	number, err := strconv.Atoi(token[1:])
	if err != nil || number < 1 {
		return "", 0, fmt.Errorf("segment %q has no epoch number", token)
	}
	return epochName, number, nil
}

// trimSegmentExtensions strips trailing extensions including the video
// segment index, e.g. "name.1.videoTimeStamps" -> "name".
func trimSegmentExtensions(name string) string {
	for {
		ext := filepath.Ext(name)
		if ext == "" {
			return name
		}
		trimmed := strings.TrimSuffix(name, ext)
		if trimmed == "" {
			return name
		}
		// Stop once nothing extension-like remains.
		if !looksLikeExtension(ext) {
			return name
		}
		name = trimmed
	}
}

func looksLikeExtension(ext string) bool {
	if len(ext) < 2 {
		return false
	}
	body := ext[1:]
	if _, err := strconv.Atoi(body); err == nil {
		return true
	}
	switch strings.ToLower(body) {
	case "videotimestamps", "h264", "csv", "dat", "rec", "nwb":
		return true
	default:
		return false
	}
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
