// Package logging assembles structured slog loggers and formatting helpers used
// across mediasorter.
//
// It owns the configurable console/JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so sorter code can tag log lines
// with run IDs, source files, and pipeline stages. The package also provides a
// no-op logger for tests and wiring code that cannot fail.
package logging
