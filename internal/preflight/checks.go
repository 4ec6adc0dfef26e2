package preflight

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"golang.org/x/sys/unix"

	"stylegen/internal/cache"
	"stylegen/internal/config"
	"stylegen/internal/logging"
	"stylegen/internal/salon"
	"stylegen/internal/templates"
)

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	if strings.TrimSpace(path) == "" {
		return Result{Name: name, Detail: "not configured"}
	}
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckTemplateCatalog verifies that the catalog file parses and is not empty.
func CheckTemplateCatalog(path string) Result {
	const name = "Template catalog"

	if strings.TrimSpace(path) == "" {
		return Result{Name: name, Detail: "template_csv not configured"}
	}
	if err := unix.Access(path, unix.R_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: not readable: %v)", path, err)}
	}
	parsed, err := templates.LoadFile(path)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (%d templates)", path, len(parsed))}
}

// CheckGeminiKey reports whether an API key is configured. The key is not
// validated against the API.
func CheckGeminiKey(apiKey string) Result {
	const name = "Gemini API key"
	if strings.TrimSpace(apiKey) == "" {
		return Result{Name: name, Detail: "missing (set gemini.api_key or GEMINI_API_KEY)"}
	}
	return Result{Name: name, Passed: true, Detail: "configured"}
}

// CheckCache opens the configured cache backend and reads its stats. A
// failing cache only degrades to recomputation, so the result is optional.
func CheckCache(ctx context.Context, cfg *config.Config) Result {
	name := "Cache (" + cfg.Cache.Backend + ")"

	checkCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	store, err := cache.Open(checkCtx, cfg, logging.NewNop())
	if err != nil {
		return Result{Name: name, Optional: true, Detail: fmt.Sprintf("unavailable (%v)", err)}
	}
	defer store.Close()

	stats, err := store.Stats(checkCtx)
	if err != nil {
		return Result{Name: name, Optional: true, Detail: fmt.Sprintf("stats failed (%v)", err)}
	}
	return Result{Name: name, Passed: true, Optional: true, Detail: fmt.Sprintf("%d entries", stats.Entries)}
}

// CheckSalonData validates the salon URL and loads the data file.
func CheckSalonData(ctx context.Context, salonURL, dataFile string) Result {
	const name = "Salon data"

	if err := salon.ValidateURL(salonURL); err != nil {
		return Result{Name: name, Optional: true, Detail: err.Error()}
	}
	data, err := salon.NewFileSource(dataFile).FetchAll(ctx, salonURL)
	if err != nil {
		return Result{Name: name, Optional: true, Detail: err.Error()}
	}
	return Result{
		Name:     name,
		Passed:   true,
		Optional: true,
		Detail:   fmt.Sprintf("%d stylists, %d coupons", len(data.Stylists), len(data.Coupons)),
	}
}
