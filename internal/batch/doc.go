// Package batch fans a set of images out over a bounded worker pool, runs
// each through the stage pipeline, and collects per-image outcomes in input
// order.
//
// Progress is reported through a progress.Tracker: the counter advances as
// images reach a terminal state (success or failure), stage runners update
// the label in between, and the tracker is completed exactly once when the
// batch ends. Per-image failures are values in the returned outcomes; the
// orchestrator itself never fails a batch because one image failed.
//
// Start runs a batch in the background and returns a Handle for polling,
// subscribing, awaiting, and cancelling it.
package batch
