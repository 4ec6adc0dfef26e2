// Package progress owns batch progress state.
//
// Tracker is the only structure that concurrent workers mutate. Every write
// happens under one mutex and observers only ever receive copies, either by
// polling Snapshot or by subscribing to a channel that always holds the most
// recent state.
package progress
