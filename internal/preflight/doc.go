// Package preflight provides readiness checks for the directories, catalog,
// credentials, and cache backend that a stylegen batch depends on.
//
// These checks run in two contexts:
//   - "stylegen run" calls RunAll before starting a batch and refuses to
//     start when a required check fails, so a doomed batch never reaches the
//     analysis API.
//   - "stylegen status" prints the same results alongside the stored batch.
//
// Checks for optional features (salon data) are skipped when unconfigured.
package preflight
