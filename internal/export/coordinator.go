package export

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"stylegen/internal/fileutil"
	"stylegen/internal/model"
	"stylegen/internal/textutil"
)

// DefaultPrefix names exported files when no prefix is configured.
const DefaultPrefix = "hairstyle_analysis"

// ErrUnsupportedFormat is returned for unknown document formats.
var ErrUnsupportedFormat = errors.New("unsupported export format")

// Document is a rendered export ready to be written or served.
type Document struct {
	Filename    string
	ContentType string
	Data        []byte
	Rows        int
	Excluded    int
}

// Report is what renderers receive.
type Report struct {
	Table   Table
	Entries []Entry
}

// Renderer encodes a report in one format.
type Renderer interface {
	Extension() string
	ContentType() string
	Render(buf *bytes.Buffer, report Report) error
}

var renderers = map[string]Renderer{
	"xlsx":    xlsxRenderer{},
	"csv":     csvRenderer{},
	"parquet": parquetRenderer{},
	"txt":     textRenderer{},
	"yaml":    yamlRenderer{},
}

// Formats lists the supported format names.
func Formats() []string {
	out := make([]string, 0, len(renderers))
	for name := range renderers {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Coordinator renders documents with a shared naming scheme.
type Coordinator struct {
	prefix string
	now    func() time.Time
}

// Option customizes a Coordinator.
type Option func(*Coordinator)

// WithClock overrides the timestamp source for filenames.
func WithClock(now func() time.Time) Option {
	return func(c *Coordinator) {
		if now != nil {
			c.now = now
		}
	}
}

// NewCoordinator returns a Coordinator naming files with prefix.
func NewCoordinator(prefix string, opts ...Option) *Coordinator {
	prefix = textutil.SanitizeFileName(strings.TrimSpace(prefix))
	if prefix == "" {
		prefix = DefaultPrefix
	}
	c := &Coordinator{prefix: prefix, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Document renders outcomes in format. An empty or all-failed batch yields a
// well-formed empty document.
func (c *Coordinator) Document(outcomes []model.Outcome, format string) (Document, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	renderer, ok := renderers[format]
	if !ok {
		return Document{}, fmt.Errorf("%w: %q (supported: %s)", ErrUnsupportedFormat, format, strings.Join(Formats(), ", "))
	}
	entries, _ := Entries(outcomes)
	report := Report{Table: ToTable(outcomes), Entries: entries}

	var buf bytes.Buffer
	if err := renderer.Render(&buf, report); err != nil {
		return Document{}, fmt.Errorf("render %s: %w", format, err)
	}
	return Document{
		Filename:    c.Filename(renderer.Extension()),
		ContentType: renderer.ContentType(),
		Data:        buf.Bytes(),
		Rows:        len(report.Table.Rows),
		Excluded:    report.Table.Excluded,
	}, nil
}

// Filename returns <prefix>_<YYYYMMDD_HHMMSS>.<ext> for the current time.
func (c *Coordinator) Filename(ext string) string {
	return fmt.Sprintf("%s_%s.%s", c.prefix, c.now().Format("20060102_150405"), strings.TrimPrefix(ext, "."))
}

// Save writes doc into dir atomically and returns the final path.
func Save(dir string, doc Document) (string, error) {
	path := filepath.Join(dir, doc.Filename)
	if err := fileutil.WriteAtomic(path, doc.Data, 0o644); err != nil {
		return "", fmt.Errorf("write export: %w", err)
	}
	return path, nil
}
