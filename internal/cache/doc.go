// Package cache stores per-stage analysis results keyed by image fingerprint.
//
// Store is the swappable byte-level backend (memory, JSON file, SQLite,
// Redis, Postgres). Gateway sits in front of a Store, handles JSON encoding,
// and turns every backend or decode failure into a logged miss so a broken
// cache can slow the pipeline down but never fail it.
package cache
