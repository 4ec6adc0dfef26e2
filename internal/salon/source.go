package salon

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"stylegen/internal/model"
	"stylegen/internal/services"
)

// HotPepperPrefix is the only accepted salon URL prefix.
const HotPepperPrefix = "https://beauty.hotpepper.jp/"

// Data is the reference data for one salon.
type Data struct {
	URL      string              `json:"url" yaml:"url"`
	Stylists []model.StylistInfo `json:"stylists" yaml:"stylists"`
	Coupons  []model.CouponInfo  `json:"coupons" yaml:"coupons"`
}

// Source fetches salon data for a URL.
type Source interface {
	FetchAll(ctx context.Context, salonURL string) (Data, error)
}

// FetchError reports a failed salon data fetch.
type FetchError struct {
	URL   string
	Cause error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch salon data %s: %v", e.URL, e.Cause)
}

// Unwrap exposes the fetch marker and the cause.
func (e *FetchError) Unwrap() []error {
	return []error{services.ErrFetch, e.Cause}
}

// ValidateURL checks that salonURL is a HotPepper Beauty page.
func ValidateURL(salonURL string) error {
	trimmed := strings.TrimSpace(salonURL)
	if trimmed == "" {
		return errors.New("salon url is required")
	}
	if !strings.HasPrefix(trimmed, HotPepperPrefix) {
		return fmt.Errorf("salon url must start with %s", HotPepperPrefix)
	}
	if _, err := url.Parse(trimmed); err != nil {
		return fmt.Errorf("salon url: %w", err)
	}
	return nil
}

// FileSource reads salon data from a YAML or JSON file. YAML is a superset of
// JSON, so one decoder handles both.
type FileSource struct {
	Path string
}

// NewFileSource returns a FileSource for path.
func NewFileSource(path string) *FileSource {
	return &FileSource{Path: path}
}

func (s *FileSource) FetchAll(ctx context.Context, salonURL string) (Data, error) {
	if err := ctx.Err(); err != nil {
		return Data{}, &FetchError{URL: salonURL, Cause: err}
	}
	if err := ValidateURL(salonURL); err != nil {
		return Data{}, &FetchError{URL: salonURL, Cause: err}
	}
	raw, err := os.ReadFile(s.Path)
	if err != nil {
		return Data{}, &FetchError{URL: salonURL, Cause: err}
	}
	var data Data
	if err := yaml.Unmarshal(raw, &data); err != nil {
		return Data{}, &FetchError{URL: salonURL, Cause: fmt.Errorf("parse %s: %w", filepath.Base(s.Path), err)}
	}
	if data.URL != "" && strings.TrimRight(data.URL, "/") != strings.TrimRight(strings.TrimSpace(salonURL), "/") {
		return Data{}, &FetchError{URL: salonURL, Cause: fmt.Errorf("%s describes %s", filepath.Base(s.Path), data.URL)}
	}
	data.URL = strings.TrimSpace(salonURL)
	data.Stylists = compactStylists(data.Stylists)
	data.Coupons = compactCoupons(data.Coupons)
	return data, nil
}

func compactStylists(in []model.StylistInfo) []model.StylistInfo {
	out := in[:0]
	for _, s := range in {
		s.Name = strings.TrimSpace(s.Name)
		if s.Name == "" {
			continue
		}
		out = append(out, s)
	}
	return out
}

func compactCoupons(in []model.CouponInfo) []model.CouponInfo {
	out := in[:0]
	for _, c := range in {
		c.Name = strings.TrimSpace(c.Name)
		if c.Name == "" {
			continue
		}
		out = append(out, c)
	}
	return out
}
