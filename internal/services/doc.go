// Package services defines shared utilities consumed by the sort pipeline and
// its external integrations.
//
// Key responsibilities:
//   - Context helpers that stamp run IDs, source paths, and pipeline stage
//     names for logging and tracing.
//   - Structured error markers plus the Wrap helper that translate failures
//     into the error kinds reported per file (unparsable, metadata not found,
//     IO failure) and the fatal configuration kind.
//
// Use these helpers when wiring new pipeline logic so operational behaviour
// (error classification, observability) stays uniform across the sorter.
package services
