// Package batch converts many sessions with failure isolation at session
// granularity: a bounded worker pool runs one converter per session, and
// a failing session is logged and reported without aborting the rest.
// Sessions are fully independent (distinct input directories, distinct
// output files) so no state is shared beyond the counters.
package batch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"labnwb/internal/config"
	"labnwb/internal/convert"
	"labnwb/internal/logging"
	"labnwb/internal/metadata"
	"labnwb/internal/services"
	"labnwb/internal/session"
)

// SessionOutcome records how one session fared.
type SessionOutcome struct {
	Session  string
	Output   string
	Err      error
	Warnings []string
	Skipped  bool
}

// Summary aggregates a batch run.
type Summary struct {
	RunID     string
	Converted int
	Skipped   int
	Failed    int
	Outcomes  []SessionOutcome
}

// Runner drives batch conversion.
type Runner struct {
	cfg    *config.Config
	doc    *metadata.Document
	logger *slog.Logger
}

// NewRunner constructs a batch runner.
func NewRunner(cfg *config.Config, doc *metadata.Document, logger *slog.Logger) *Runner {
	return &Runner{
		cfg:    cfg,
		doc:    doc,
		logger: logging.NewComponentLogger(logger, "batch"),
	}
}

// Run converts every discovered session using up to workers parallel
// conversions. The output directory is guarded with a file lock so two
// batch runs cannot interleave writes.
func (r *Runner) Run(ctx context.Context, sessions []session.Session) (*Summary, error) {
	if err := r.cfg.EnsureDirectories(); err != nil {
		return nil, err
	}

	lock := flock.New(filepath.Join(r.cfg.Paths.OutputDir, ".labnwb.lock"))
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire output lock: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("another conversion run holds the output directory lock")
	}
	defer func() { _ = lock.Unlock() }()

	runID := uuid.NewString()
	ctx = services.WithRunID(ctx, runID)
	logger := logging.WithContext(ctx, r.logger)

	workers := r.cfg.Conversion.Workers
	if workers < 1 {
		workers = 1
	}
	logger.Info("starting batch conversion",
		logging.Int("sessions", len(sessions)),
		logging.Int("workers", workers),
	)

	outcomes := make([]SessionOutcome, len(sessions))
	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup

	for i := range sessions {
		if ctx.Err() != nil {
			break
		}
		wg.Add(1)
		sem <- struct{}{}
		go func(idx int) {
			defer wg.Done()
			defer func() { <-sem }()
			outcomes[idx] = r.convertOne(ctx, &sessions[idx])
		}(i)
	}
	wg.Wait()

	summary := &Summary{RunID: runID, Outcomes: outcomes}
	for _, outcome := range outcomes {
		switch {
		case outcome.Skipped:
			summary.Skipped++
		case outcome.Err != nil:
			summary.Failed++
		default:
			summary.Converted++
		}
	}
	logger.Info("batch conversion finished",
		logging.Int("converted", summary.Converted),
		logging.Int("skipped", summary.Skipped),
		logging.Int("failed", summary.Failed),
	)
	return summary, ctx.Err()
}

// convertOne isolates a single session: any failure (including a panic in
// a reader) is captured into the outcome and its report file.
func (r *Runner) convertOne(ctx context.Context, sess *session.Session) (outcome SessionOutcome) {
	outcome.Session = sess.Name()
	logger := logging.WithContext(services.WithSession(ctx, sess.Name()), r.logger)

	defer func() {
		if rec := recover(); rec != nil {
			outcome.Err = fmt.Errorf("panic converting %s: %v", sess.Name(), rec)
		}
		if outcome.Err != nil && !outcome.Skipped {
			logger.Error("session conversion failed", logging.Error(outcome.Err))
			r.writeReport("errors", "ERROR", sess, outcome.Err.Error())
		}
		if len(outcome.Warnings) > 0 {
			r.writeReport("warnings", "WARNINGS", sess, strings.Join(outcome.Warnings, "\n"))
		}
	}()

	if reason := sess.SkipReason; reason != "" {
		outcome.Skipped = true
		logger.Info("session skipped", logging.String("reason", reason))
		return outcome
	}

	converter := convert.New(r.cfg, r.doc, sess, r.logger)
	result, err := converter.Run(ctx)
	if err != nil {
		outcome.Err = err
		return outcome
	}
	outcome.Output = result.OutputPath
	outcome.Warnings = result.Warnings
	return outcome
}

// writeReport persists a per-session error or warning report under the
// log directory, mirroring the container's file name.
func (r *Runner) writeReport(subdir, prefix string, sess *session.Session, body string) {
	dir := filepath.Join(r.cfg.Paths.LogDir, subdir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		r.logger.Warn("cannot create report directory", logging.Error(err))
		return
	}
	name := fmt.Sprintf("%s_sub-%s_ses-%s.txt", prefix, sess.SubjectID, sess.SessionID)
	content := fmt.Sprintf("session: %s\ndirectory: %s\n\n%s\n", sess.Name(), sess.Dir, body)
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		r.logger.Warn("cannot write report file", logging.Error(err))
	}
}
