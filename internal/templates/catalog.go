package templates

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/text/unicode/norm"

	"stylegen/internal/model"
)

// ErrEmptyCatalog is returned when a catalog has no usable rows.
var ErrEmptyCatalog = errors.New("template catalog is empty")

var headerAliases = map[string]string{
	"category": "category",
	"カテゴリ":     "category",
	"カテゴリー":    "category",
	"title":    "title",
	"タイトル":     "title",
	"スタイル":     "title",
	"menu":     "menu",
	"メニュー":     "menu",
	"comment":  "comment",
	"コメント":     "comment",
	"hashtag":  "hashtag",
	"hashtags": "hashtag",
	"ハッシュタグ":   "hashtag",
}

// LoadFile reads a catalog CSV from disk.
func LoadFile(path string) ([]model.Template, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open template catalog: %w", err)
	}
	defer f.Close()
	templates, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return templates, nil
}

// Parse reads catalog rows. The first row must be a header naming at least
// the category and title columns; unknown columns are ignored.
func Parse(r io.Reader) ([]model.Template, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrEmptyCatalog
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	columns := make(map[string]int, len(header))
	for i, name := range header {
		key := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		if field, ok := headerAliases[key]; ok {
			if _, dup := columns[field]; !dup {
				columns[field] = i
			}
		}
	}
	for _, required := range []string{"category", "title"} {
		if _, ok := columns[required]; !ok {
			return nil, fmt.Errorf("missing %q column", required)
		}
	}

	field := func(record []string, name string) string {
		idx, ok := columns[name]
		if !ok || idx >= len(record) {
			return ""
		}
		return strings.TrimSpace(norm.NFC.String(record[idx]))
	}

	var templates []model.Template
	line := 1
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", line, err)
		}
		tmpl := model.Template{
			Category: field(record, "category"),
			Title:    field(record, "title"),
			Menu:     field(record, "menu"),
			Comment:  field(record, "comment"),
			Hashtag:  field(record, "hashtag"),
		}
		if tmpl.Category == "" || tmpl.Title == "" {
			continue
		}
		templates = append(templates, tmpl)
	}
	if len(templates) == 0 {
		return nil, ErrEmptyCatalog
	}
	return templates, nil
}
