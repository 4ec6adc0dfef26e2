// Package stage runs the fixed per-image analysis pipeline.
//
// A Runner takes one image through load, style_analysis, template_match,
// stylist_select, and title_generate in order. Each stage consults the cache
// gateway first, calls its collaborator under a per-call timeout on a miss,
// and either advances or aborts the image with a model.StageError naming the
// stage and failure kind. Failures never escape as panics or batch-level
// errors; the orchestrator collects them as per-image outcomes.
package stage
