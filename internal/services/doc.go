// Package services defines shared utilities consumed by the pipeline stages.
//
// Key responsibilities:
//   - Context helpers that stamp run IDs, stage names, and request
//     correlation identifiers for logging.
//   - Structured error markers for the pipeline failure taxonomy plus the
//     Wrap helper, so callers can classify failures with errors.Is and map
//     them to trigger responses.
package services
