// Package services defines shared utilities consumed by the conversion
// interfaces and the batch/ingest entry points.
//
// Key responsibilities:
//   - Context helpers that stamp session IDs, interface names, and batch
//     correlation identifiers for logging.
//   - Structured error markers plus the Wrap helper that classify failures
//     into the pipeline's skip-and-report categories (missing input,
//     corrupt input, validation, conflict).
//
// Use these helpers when wiring new interface logic so operational
// behaviour stays uniform across the pipeline.
package services
