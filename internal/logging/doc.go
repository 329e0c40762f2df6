// Package logging assembles structured slog loggers for the discflight stages.
//
// It owns the console and JSON handlers, picks between them automatically when
// the format is "auto", and exposes context-aware helpers so stage code tags
// every line with the stage name and run ID. A no-op logger is provided for
// tests and wiring code that cannot fail.
package logging
