// Package session is the entry point the CLI drives: it starts a batch,
// exposes progress, loads finished outcomes into the selection state
// machine, records human choices, and renders exports.
//
// A Session holds one batch at a time. Starting a new batch discards the
// previous one. When a store is configured the batch, its selection states,
// and each choice are written through so Resume can rebuild the session in a
// later process.
package session
