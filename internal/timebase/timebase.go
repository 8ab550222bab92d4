// Package timebase rebases per-stream sample clocks onto the shared
// session timebase. Every signal in a session (ephys, DIO, video, pose)
// is stamped by the acquisition hardware in samples of the same clock;
// the converter fixes the origin at the first recording sample and all
// interfaces express their timestamps relative to it, in seconds.
package timebase

import (
	"fmt"

	"labnwb/internal/services"
)

// Clock is the shared session timebase: a sample rate and the origin
// sample that maps to t=0.
type Clock struct {
	RateHz       float64
	OriginSample int64
}

// NewClock validates and constructs a Clock.
func NewClock(rateHz float64, originSample int64) (Clock, error) {
	if rateHz <= 0 {
		return Clock{}, services.Wrap(services.ErrValidation, "timebase", "clock",
			fmt.Sprintf("sample rate must be positive, got %g", rateHz), nil)
	}
	return Clock{RateHz: rateHz, OriginSample: originSample}, nil
}

// Seconds rebases a raw sample index onto the session timebase.
func (c Clock) Seconds(sample int64) float64 {
	return float64(sample-c.OriginSample) / c.RateHz
}

// Rebase converts raw sample indices to session seconds. Samples that
// precede the origin indicate a stream/recording mismatch and are
// rejected rather than clamped.
func (c Clock) Rebase(samples []int64) ([]float64, error) {
	out := make([]float64, len(samples))
	for i, s := range samples {
		if s < c.OriginSample {
			return nil, services.Wrap(services.ErrValidation, "timebase", "rebase",
				fmt.Sprintf("sample %d precedes time origin %d", s, c.OriginSample), nil)
		}
		out[i] = c.Seconds(s)
	}
	return out, nil
}

// CheckMonotonic verifies timestamps never decrease.
func CheckMonotonic(ts []float64) error {
	for i := 1; i < len(ts); i++ {
		if ts[i] < ts[i-1] {
			return services.Wrap(services.ErrValidation, "timebase", "monotonic",
				fmt.Sprintf("timestamp %g at index %d precedes %g", ts[i], i, ts[i-1]), nil)
		}
	}
	return nil
}

// Mismatch describes a timestamp-count disagreement between two paired
// streams. It is surfaced as a warning, never an error: the converted
// data uses the shorter stream's length (a documented limitation, not a
// silent fix).
type Mismatch struct {
	Primary   string
	Secondary string
	PrimaryN  int
	SecondN   int
}

func (m Mismatch) String() string {
	return fmt.Sprintf("%s has %d timestamps but %s has %d; truncating to %d",
		m.Primary, m.PrimaryN, m.Secondary, m.SecondN, min(m.PrimaryN, m.SecondN))
}

// AlignPair truncates two paired timestamp streams to their common length.
// When the counts disagree the returned Mismatch is non-nil.
func AlignPair(primaryName string, primary []float64, secondaryName string, secondary []float64) (int, *Mismatch) {
	n := min(len(primary), len(secondary))
	if len(primary) == len(secondary) {
		return n, nil
	}
	return n, &Mismatch{
		Primary:   primaryName,
		Secondary: secondaryName,
		PrimaryN:  len(primary),
		SecondN:   len(secondary),
	}
}
