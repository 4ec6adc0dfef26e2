// Package config loads, normalizes, and validates stylegen configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// GEMINI_API_KEY, REDIS_PASSWORD, and DATABASE_URL. The Config type
// centralizes every knob the CLI and pipeline need so state directories,
// cache backends, and export naming are discovered in one pass.
package config
