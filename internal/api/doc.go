// Package api defines the wire-format types shared by the stage HTTP servers
// and the CLI's JSON output. Converters translate store records into these
// DTOs so handlers and commands never serialize internal types directly.
//
// Timestamps use RFC3339 with milliseconds in UTC. Prediction payloads keep
// the persisted record shape: raw measurement strings plus upper-case SPEED,
// GLIDE, TURN and FADE fields and the published flag.
package api
