package spyglass

import (
	"context"
	"fmt"
	"path/filepath"

	"labnwb/internal/nwb"
)

// VerifyReport lists integrity findings for one inserted file. An empty
// Findings slice means the database agrees with the container.
type VerifyReport struct {
	FileName string
	Findings []string
}

// OK reports whether verification found no problems.
func (r *VerifyReport) OK() bool { return len(r.Findings) == 0 }

func (r *VerifyReport) addf(format string, args ...any) {
	r.Findings = append(r.Findings, fmt.Sprintf(format, args...))
}

// VerifySession re-checks an inserted file against its container: row
// counts per table must match the container's contents and no row may
// reference a missing parent. Problems are reported, never repaired.
func (s *Store) VerifySession(ctx context.Context, file *nwb.File, fileName string) (*VerifyReport, error) {
	ctx = ensureContext(ctx)
	report := &VerifyReport{FileName: fileName}

	count := func(query string, args ...any) (int, error) {
		var n int
		err := s.db.QueryRowContext(ctx, query, args...).Scan(&n)
		return n, err
	}

	n, err := count("SELECT COUNT(1) FROM nwbfile WHERE nwb_file_name = ?", fileName)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		report.addf("file %s has no nwbfile row", fileName)
		return report, nil
	}

	expectEvents := 0
	if file.Processing.Behavior != nil {
		expectEvents = len(file.Processing.Behavior.Events)
	}
	taskEpochs := 0
	taskLEDs := 0
	for _, task := range file.Processing.Tasks {
		taskEpochs += len(task.TaskEpochs)
		taskLEDs += len(task.LEDList)
	}

	rowChecks := []struct {
		table string
		want  int
	}{
		{"session", 1},
		{"electrode_group", len(file.ElectrodeGroups)},
		{"electrode", len(file.Electrodes)},
		{"raw_ephys", len(file.Acquisition)},
		{"lfp", len(file.Processing.LFP)},
		{"unit", len(file.Units)},
		{"dio_event", expectEvents},
		{"task", len(file.Processing.Tasks)},
		{"task_epoch", taskEpochs},
		{"task_leds", taskLEDs},
		{"epoch_interval_list_info", len(file.Epochs)},
	}
	for _, check := range rowChecks {
		got, err := count(
			fmt.Sprintf("SELECT COUNT(1) FROM %s WHERE nwb_file_name = ?", check.table), fileName)
		if err != nil {
			return nil, fmt.Errorf("count %s: %w", check.table, err)
		}
		if got != check.want {
			report.addf("table %s has %d rows, container has %d", check.table, got, check.want)
		}
	}

	orphanChecks := []struct {
		name  string
		query string
	}{
		{"electrode rows with missing group",
			`SELECT COUNT(1) FROM electrode e
			 WHERE e.nwb_file_name = ?
			   AND NOT EXISTS (SELECT 1 FROM electrode_group g
			     WHERE g.nwb_file_name = e.nwb_file_name AND g.group_name = e.group_name)`},
		{"task_epoch rows with missing task",
			`SELECT COUNT(1) FROM task_epoch te
			 WHERE te.nwb_file_name = ?
			   AND NOT EXISTS (SELECT 1 FROM task t
			     WHERE t.nwb_file_name = te.nwb_file_name AND t.task_name = te.task_name)`},
		{"task_epoch rows with missing epoch interval",
			`SELECT COUNT(1) FROM task_epoch te
			 WHERE te.nwb_file_name = ?
			   AND NOT EXISTS (SELECT 1 FROM epoch_interval_list_info ep
			     WHERE ep.nwb_file_name = te.nwb_file_name AND ep.epoch = te.epoch)`},
		{"session rows with missing subject",
			`SELECT COUNT(1) FROM session s
			 WHERE s.nwb_file_name = ?
			   AND NOT EXISTS (SELECT 1 FROM subject sub WHERE sub.subject_id = s.subject_id)`},
	}
	for _, check := range orphanChecks {
		got, err := count(check.query, fileName)
		if err != nil {
			return nil, fmt.Errorf("orphan check %q: %w", check.name, err)
		}
		if got > 0 {
			report.addf("%d %s", got, check.name)
		}
	}

	return report, nil
}

// VerifyFile reads a container from disk and verifies its inserted rows.
func (s *Store) VerifyFile(ctx context.Context, path string) (*VerifyReport, error) {
	file, err := nwb.Read(path)
	if err != nil {
		return nil, err
	}
	return s.VerifySession(ctx, file, filepath.Base(path))
}
