package convert

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"labnwb/internal/config"
	"labnwb/internal/logging"
	"labnwb/internal/metadata"
	"labnwb/internal/nwb"
	"labnwb/internal/services"
	"labnwb/internal/session"
	"labnwb/internal/timebase"
	"labnwb/internal/trodes"
)

// Result summarizes one successful session conversion.
type Result struct {
	OutputPath string
	EpochCount int
	EventCount int
	Warnings   []string
}

// Converter runs the ordered interface set for one session and persists
// the combined container.
type Converter struct {
	cfg    *config.Config
	doc    *metadata.Document
	sess   *session.Session
	logger *slog.Logger
	report *Report
}

// New constructs a converter for one discovered session.
func New(cfg *config.Config, doc *metadata.Document, sess *session.Session, logger *slog.Logger) *Converter {
	return &Converter{
		cfg:    cfg,
		doc:    doc,
		sess:   sess,
		logger: logging.NewComponentLogger(logger, "converter"),
		report: &Report{},
	}
}

// OutputPath returns the container path this converter writes.
func (c *Converter) OutputPath() string {
	name := fmt.Sprintf("sub-%s_ses-%s.nwb", c.sess.SubjectID, c.sess.SessionID)
	return filepath.Join(c.cfg.Paths.OutputDir, name)
}

// Run converts the session. The shared time origin is resolved once from
// the first recording sample; every interface rebases onto it before
// populating the container, and the container is written atomically at
// the end. Any interface failure aborts the whole session.
func (c *Converter) Run(ctx context.Context) (*Result, error) {
	sess := c.sess
	ctx = services.WithSession(ctx, sess.Name())
	logger := logging.WithContext(ctx, c.logger)

	if reason := sess.SkipReason; reason != "" {
		return nil, services.Wrap(services.ErrValidation, "converter", "run",
			fmt.Sprintf("session %s is on the skip list: %s", sess.Name(), reason), nil)
	}
	if sess.RecFile == "" {
		return nil, services.Wrap(services.ErrMissingInput, "converter", "run",
			fmt.Sprintf("session %s has no .rec recording", sess.Name()), nil)
	}

	header, err := trodes.ReadRecHeader(sess.RecFile)
	if err != nil {
		return nil, err
	}
	clock, err := timebase.NewClock(header.SamplingRateHz, header.FirstSample)
	if err != nil {
		return nil, err
	}
	logger.Info("resolved session timebase",
		logging.Float64("rate_hz", clock.RateHz),
		logging.Int64("origin_sample", clock.OriginSample),
	)

	file := c.newFile(header)

	for _, iface := range c.interfaces(header) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		ifaceCtx := services.WithInterface(ctx, iface.Name())
		if err := iface.AddToFile(ifaceCtx, file, c.doc, clock); err != nil {
			return nil, fmt.Errorf("interface %s: %w", iface.Name(), err)
		}
		logging.WithContext(ifaceCtx, c.logger).Debug("interface populated container")
	}

	outputPath := c.OutputPath()
	overwrite := c.cfg.Conversion.Overwrite == config.OverwriteReplace
	if err := file.Write(outputPath, overwrite); err != nil {
		return nil, err
	}

	for _, warning := range c.report.Warnings {
		logger.Warn("conversion warning", logging.String("detail", warning))
	}
	logger.Info("session converted",
		logging.String("output", outputPath),
		logging.Int("epochs", len(file.Epochs)),
		logging.Int("events", file.EventCount()),
		logging.Int("warnings", len(c.report.Warnings)),
	)

	return &Result{
		OutputPath: outputPath,
		EpochCount: len(file.Epochs),
		EventCount: file.EventCount(),
		Warnings:   append([]string(nil), c.report.Warnings...),
	}, nil
}

func (c *Converter) newFile(header *trodes.RecHeader) *nwb.File {
	file := &nwb.File{
		Identifier:         nwb.NewIdentifier(c.sess.SubjectID, c.sess.SessionID),
		SessionID:          c.sess.Name(),
		SessionDescription: c.doc.SessionDescription,
		SessionStartTime:   header.SystemTimeAtCreation,
		Experimenter:       c.doc.Experimenter,
		Lab:                c.doc.Lab,
		Institution:        c.doc.Institution,
		Subject:            nwb.Subject{SubjectID: c.sess.SubjectID},
	}
	if subject, ok := c.doc.SubjectByID(c.sess.SubjectID); ok {
		file.Subject = nwb.Subject{
			SubjectID:   subject.SubjectID,
			Species:     subject.Species,
			Sex:         subject.Sex,
			Description: subject.Description,
			Weight:      subject.Weight,
		}
	} else {
		c.report.Warnf("subject %s has no entry in the metadata document", c.sess.SubjectID)
	}
	return file
}

// interfaces assembles the ordered interface set for this session. Only
// modalities whose raw files exist get an interface; the recording is
// mandatory and already validated by Run.
func (c *Converter) interfaces(header *trodes.RecHeader) []Interface {
	sess := c.sess
	ifaces := []Interface{
		NewRecordingInterface(sess.RecFile, header),
	}
	if sess.LFPDir != "" {
		ifaces = append(ifaces, NewLFPInterface(sess.LFPDir))
	}
	if sess.DIODir != "" {
		ifaces = append(ifaces, NewDIOInterface(sess.DIODir, c.report))
	}
	ifaces = append(ifaces,
		NewVideoInterface(sess.Epochs, c.report),
		NewPoseInterface(sess.Epochs, c.report),
		NewEpochInterface(sess.Name(), sess.Epochs, c.cfg.Conversion.EpochGapSeconds, c.report),
	)
	if sess.SortingDir != "" {
		ifaces = append(ifaces, NewSortingInterface(sess.SortingDir))
	}
	return ifaces
}
