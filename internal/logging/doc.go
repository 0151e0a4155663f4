// Package logging assembles structured slog loggers and formatting helpers
// used across Carol components.
//
// It centralizes level and output plumbing for console and JSON formats,
// exposes attribute constructor helpers, and provides a no-op logger for
// tests and wiring code that cannot fail.
//
// Prefer these constructors over hand-rolled slog setup so every component
// emits data with the same shape.
package logging
