// Package store persists the most recent batch in SQLite so a later
// invocation can pick up where the previous one stopped: per-image outcomes,
// selection states, the chosen alternative, and whether the batch was
// finalized.
//
// Only one batch is kept. SaveBatch replaces whatever was stored before,
// matching the single-session workflow of the CLI. The database runs in WAL
// mode and every write goes through sqlitedb.RetryOnBusy so the status
// command can read while a run is writing.
package store
