package preflight

import (
	"context"

	"stylegen/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
	// Optional failures are reported but do not block a run.
	Optional bool
}

// RunAll executes all applicable preflight checks for the given config.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckDirectoryAccess("State directory", cfg.Paths.StateDir),
		CheckDirectoryAccess("Output directory", cfg.Paths.OutputDir),
		CheckTemplateCatalog(cfg.Paths.TemplateCSV),
		CheckGeminiKey(cfg.Gemini.APIKey),
		CheckCache(ctx, cfg),
	}

	if cfg.Salon.URL != "" || cfg.Salon.DataFile != "" {
		results = append(results, CheckSalonData(ctx, cfg.Salon.URL, cfg.Salon.DataFile))
	}

	return results
}

// Blocking returns the failed checks that must stop a run.
func Blocking(results []Result) []Result {
	var failed []Result
	for _, r := range results {
		if !r.Passed && !r.Optional {
			failed = append(failed, r)
		}
	}
	return failed
}
