// Command stylegen analyses batches of hairstyle photos, proposes a catalog
// template for each one, lets the operator confirm or override the choice,
// and exports the confirmed results.
//
// Typical session:
//
//	stylegen run photos/*.jpg
//	stylegen results
//	stylegen choose a.jpg 2
//	stylegen confirm
//	stylegen export
//
// Supporting commands: status, cache stats|clear, config init|show, and logs.
//
// Batch state lives in the state directory, so each command can run as a
// separate process.
package main
