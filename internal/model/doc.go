// Package model holds the value types that flow through the pipeline: image
// references, analysis results, catalog templates, salon reference data, the
// per-image ProcessResult aggregate, and the batch progress snapshot.
//
// Types here carry no behaviour beyond small accessors so every other package
// can depend on them without import cycles.
package model
