// Package config loads, normalizes, and validates discflight configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// DISCFLIGHT_API_KEY and the TWITTER_* credentials. The Config type carries
// every knob the stage servers and the CLI need so secrets and timeouts are
// discovered in one pass.
package config
