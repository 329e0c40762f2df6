// Package logs reads the discflight log file for the CLI.
//
// Tail returns the last lines with bounded memory, ReadFrom continues from a
// byte offset, and Follow polls for appended lines until its context ends.
// Filter narrows JSON log lines by run ID, stage, event type, or minimum
// level; console-format lines fall back to substring matching.
package logs
