package spyglass

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"sort"
	"time"

	"labnwb/internal/nwb"
	"labnwb/internal/services"
)

// InsertSession ingests one container in a single transaction, writing
// tables in dependency order so foreign keys always resolve. Re-inserting
// a file name that already has rows is a conflict.
func (s *Store) InsertSession(ctx context.Context, file *nwb.File, fileName string) error {
	ctx = ensureContext(ctx)

	return retryOnBusy(ctx, func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin insert tx: %w", err)
		}
		defer func() { _ = tx.Rollback() }()

		var existing int
		if err := tx.QueryRowContext(ctx,
			"SELECT COUNT(1) FROM nwbfile WHERE nwb_file_name = ?", fileName,
		).Scan(&existing); err != nil {
			return fmt.Errorf("check existing file: %w", err)
		}
		if existing > 0 {
			return services.Wrap(services.ErrConflict, "spyglass", "insert",
				fmt.Sprintf("file %s is already inserted", fileName), nil)
		}

		if err := insertRows(ctx, tx, file, fileName); err != nil {
			return err
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit insert: %w", err)
		}
		return nil
	})
}

func insertRows(ctx context.Context, tx *sql.Tx, file *nwb.File, fileName string) error {
	exec := func(op, query string, args ...any) error {
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		return nil
	}

	if err := exec("insert subject",
		`INSERT INTO subject (subject_id, species, sex, description)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(subject_id) DO NOTHING`,
		file.Subject.SubjectID, file.Subject.Species, file.Subject.Sex, file.Subject.Description,
	); err != nil {
		return err
	}

	if err := exec("insert nwbfile",
		"INSERT INTO nwbfile (nwb_file_name, identifier, inserted_at) VALUES (?, ?, ?)",
		fileName, file.Identifier, time.Now().UTC().Format(time.RFC3339),
	); err != nil {
		return err
	}

	if err := exec("insert session",
		`INSERT INTO session (nwb_file_name, subject_id, session_id, session_description,
		 session_start_time, lab, institution) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		fileName, file.Subject.SubjectID, file.SessionID, file.SessionDescription,
		file.SessionStartTime, file.Lab, file.Institution,
	); err != nil {
		return err
	}

	for _, group := range file.ElectrodeGroups {
		if err := exec("insert electrode_group",
			"INSERT INTO electrode_group (nwb_file_name, group_name, location, device) VALUES (?, ?, ?, ?)",
			fileName, group.Name, group.Location, group.Device,
		); err != nil {
			return err
		}
	}
	for _, electrode := range file.Electrodes {
		if err := exec("insert electrode",
			`INSERT INTO electrode (nwb_file_name, electrode_id, hw_chan, group_name, has_lfp)
			 VALUES (?, ?, ?, ?, ?)`,
			fileName, electrode.ID, electrode.HWChan, electrode.Group, electrode.HasLFP,
		); err != nil {
			return err
		}
	}

	for _, series := range file.Acquisition {
		if err := exec("insert raw_ephys",
			`INSERT INTO raw_ephys (nwb_file_name, series_name, rate_hz, starting_time,
			 sample_count, external_file) VALUES (?, ?, ?, ?, ?, ?)`,
			fileName, series.Name, series.RateHz, series.StartingTime,
			series.SampleCount, series.ExternalFile,
		); err != nil {
			return err
		}
	}
	for _, series := range file.Processing.LFP {
		if err := exec("insert lfp",
			"INSERT INTO lfp (nwb_file_name, series_name, sample_count, starting_time) VALUES (?, ?, ?, ?)",
			fileName, series.Name, len(series.Timestamps), series.StartingTime,
		); err != nil {
			return err
		}
	}
	for _, unit := range file.Units {
		if err := exec("insert unit",
			`INSERT INTO unit (nwb_file_name, unit_id, group_name, global_id, spike_count)
			 VALUES (?, ?, ?, ?, ?)`,
			fileName, unit.ID, unit.NTrode, unit.GlobalID, len(unit.SpikeTimes),
		); err != nil {
			return err
		}
	}
	if file.Processing.Behavior != nil {
		for _, event := range file.Processing.Behavior.Events {
			if err := exec("insert dio_event",
				"INSERT INTO dio_event (nwb_file_name, event_name, event_count) VALUES (?, ?, ?)",
				fileName, event.Name, len(event.Timestamps),
			); err != nil {
				return err
			}
		}
	}

	for _, task := range file.Processing.Tasks {
		if err := exec("insert task",
			`INSERT INTO task (nwb_file_name, task_name, description, environment, led_configuration)
			 VALUES (?, ?, ?, ?, ?)`,
			fileName, task.Name, task.Description, task.Environment, task.LEDConfiguration,
		); err != nil {
			return err
		}
		epochs := append([]int(nil), task.TaskEpochs...)
		sort.Ints(epochs)
		for _, epoch := range epochs {
			if err := exec("insert task_epoch",
				"INSERT INTO task_epoch (nwb_file_name, task_name, epoch) VALUES (?, ?, ?)",
				fileName, task.Name, epoch,
			); err != nil {
				return err
			}
		}
		for i, led := range task.LEDList {
			position := ""
			if i < len(task.LEDPositions) {
				position = task.LEDPositions[i]
			}
			if err := exec("insert task_leds",
				"INSERT INTO task_leds (nwb_file_name, task_name, led_name, led_position) VALUES (?, ?, ?, ?)",
				fileName, task.Name, led, position,
			); err != nil {
				return err
			}
		}
	}

	for _, epoch := range file.Epochs {
		tag := ""
		if len(epoch.Tags) > 0 {
			tag = epoch.Tags[0]
		}
		if err := exec("insert epoch_interval_list_info",
			`INSERT INTO epoch_interval_list_info (nwb_file_name, epoch, start_time, stop_time, tag)
			 VALUES (?, ?, ?, ?, ?)`,
			fileName, epoch.Number, epoch.Start, epoch.Stop, tag,
		); err != nil {
			return err
		}
	}
	return nil
}

// InsertFile reads a container from disk and inserts it, keyed by its
// base file name.
func (s *Store) InsertFile(ctx context.Context, path string) error {
	file, err := nwb.Read(path)
	if err != nil {
		return err
	}
	return s.InsertSession(ctx, file, filepath.Base(path))
}

// InsertAllResult summarizes a directory ingest.
type InsertAllResult struct {
	Inserted int
	Failed   map[string]error
}

// InsertAll ingests every .nwb container under dir. A failing file is
// recorded and skipped; the rest of the directory still inserts.
func (s *Store) InsertAll(ctx context.Context, dir string) (*InsertAllResult, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.nwb"))
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)

	result := &InsertAllResult{Failed: make(map[string]error)}
	for _, path := range paths {
		if ctx.Err() != nil {
			return result, ctx.Err()
		}
		if err := s.InsertFile(ctx, path); err != nil {
			result.Failed[filepath.Base(path)] = err
			continue
		}
		result.Inserted++
	}
	return result, nil
}
