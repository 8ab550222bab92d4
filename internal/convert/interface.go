package convert

import (
	"context"
	"fmt"

	"labnwb/internal/metadata"
	"labnwb/internal/nwb"
	"labnwb/internal/timebase"
)

// Interface is the contract every data interface satisfies: read one raw
// format, rebase its timestamps onto the shared session clock, and add
// the result to the output container.
type Interface interface {
	Name() string
	AddToFile(ctx context.Context, file *nwb.File, doc *metadata.Document, clock timebase.Clock) error
}

// Report accumulates the non-fatal findings of one session conversion.
// Warnings never fail a conversion; they are logged and persisted next to
// the output so known limitations stay documented per session.
type Report struct {
	Warnings []string
}

// Warnf records one warning.
func (r *Report) Warnf(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}
