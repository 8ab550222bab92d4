package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMissingInput marks a raw file or directory that should exist but does not.
	ErrMissingInput = errors.New("missing input")
	// ErrCorruptInput marks a raw file whose on-disk layout could not be decoded.
	ErrCorruptInput = errors.New("corrupt input")
	// ErrValidation marks a container or metadata document that failed schema checks.
	ErrValidation = errors.New("validation error")
	// ErrConflict marks an output path that already exists under the fail policy.
	ErrConflict = errors.New("output conflict")
	// ErrConfiguration marks an unusable application config or metadata document.
	ErrConfiguration = errors.New("configuration error")
	// ErrTransient marks failures with no more specific classification.
	ErrTransient = errors.New("transient failure")
)

// Wrap builds an error message that includes component context while tagging
// it with the provided marker for later classification. The marker should be
// one of the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrTransient
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// SkipsSession reports whether the error means the whole session should be
// skipped and logged rather than surfaced as a pipeline bug. Every reader
// failure falls in this bucket; sessions are never retried.
func SkipsSession(err error) bool {
	return errors.Is(err, ErrMissingInput) ||
		errors.Is(err, ErrCorruptInput) ||
		errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrConflict)
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
