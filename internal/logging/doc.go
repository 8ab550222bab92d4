// Package logging constructs the slog loggers used across the pipeline.
//
// Two output formats are supported: a console handler that renders
// single-line "TIME LEVEL component: message key=value" records for
// interactive use, and a JSON handler for log files. Helpers standardize
// the component attribute and the structured field names shared by the
// converter, batch runner, and ingest store.
package logging
