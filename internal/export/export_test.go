package export

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/parquet-go/parquet-go"
	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v3"

	"stylegen/internal/model"
)

func fixedClock() time.Time {
	return time.Date(2026, 3, 7, 9, 4, 5, 0, time.UTC)
}

func sampleOutcomes() []model.Outcome {
	bob := model.Template{Category: "ボブ", Title: "外ハネボブ", Menu: "カット+カラー", Comment: "軽やか", Hashtag: "#ボブ"}
	wolf := model.Template{Category: "ミディアム", Title: "ウルフ", Menu: "カット", Comment: "", Hashtag: "#ウルフ"}
	override := model.Template{Category: "ボブ", Title: "切りっぱなしボブ", Menu: "カット", Comment: "透明感", Hashtag: "#切りっぱなし"}

	return []model.Outcome{
		{
			Image: model.ImageFromBytes("a.png", nil),
			Result: &model.ProcessResult{
				ImageName:            "a.png",
				SelectedTemplate:     bob,
				AlternativeTemplates: []model.Template{override},
				UserSelectedTemplate: &override,
				SelectedStylist:      &model.StylistInfo{Name: "佐藤"},
				TemplateReason:       "ボブの特徴が一致",
			},
		},
		{
			Image: model.ImageFromBytes("b.png", nil),
			Err:   &model.StageError{Image: "b.png", Stage: "load", Kind: model.ValidationFailure, Message: "not an image"},
		},
		{
			Image: model.ImageFromBytes("c.png", nil),
			Result: &model.ProcessResult{
				ImageName:        "c.png",
				SelectedTemplate: wolf,
				SelectedCoupon:   &model.CouponInfo{Name: "カット50%OFF"},
			},
		},
	}
}

func TestToTableExcludesFailures(t *testing.T) {
	table := ToTable(sampleOutcomes())

	if len(table.Rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(table.Rows))
	}
	if table.Excluded != 1 || len(table.ExcludedImages) != 1 || table.ExcludedImages[0] != "b.png" {
		t.Fatalf("excluded = %d %v, want 1 [b.png]", table.Excluded, table.ExcludedImages)
	}
	if got := len(table.Headers); got != len(table.Rows[0]) {
		t.Fatalf("header width %d != row width %d", got, len(table.Rows[0]))
	}

	first := table.Rows[0]
	if first[0] != "a.png" || first[2] != "切りっぱなしボブ" {
		t.Fatalf("first row should use the override, got %v", first)
	}
	if first[6] != "佐藤" || first[7] != Placeholder {
		t.Fatalf("stylist/coupon columns = %q/%q", first[6], first[7])
	}

	second := table.Rows[1]
	if second[4] != Placeholder {
		t.Fatalf("empty comment should render placeholder, got %q", second[4])
	}
	if second[7] != "カット50%OFF" {
		t.Fatalf("coupon column = %q", second[7])
	}
}

func TestToTableEmpty(t *testing.T) {
	table := ToTable(nil)
	if len(table.Rows) != 0 || table.Excluded != 0 {
		t.Fatalf("unexpected table %+v", table)
	}
	if len(table.Headers) != len(Headers) {
		t.Fatalf("headers missing from empty table")
	}
}

func TestDocumentFilename(t *testing.T) {
	tests := []struct {
		prefix string
		format string
		want   string
	}{
		{"", "xlsx", "hairstyle_analysis_20260307_090405.xlsx"},
		{"salon-a", "csv", "salon-a_20260307_090405.csv"},
		{"  ", "TXT", "hairstyle_analysis_20260307_090405.txt"},
		{"", "yaml", "hairstyle_analysis_20260307_090405.yaml"},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			c := NewCoordinator(tt.prefix, WithClock(fixedClock))
			doc, err := c.Document(sampleOutcomes(), tt.format)
			if err != nil {
				t.Fatalf("Document: %v", err)
			}
			if doc.Filename != tt.want {
				t.Fatalf("filename = %q, want %q", doc.Filename, tt.want)
			}
			if doc.Rows != 2 || doc.Excluded != 1 {
				t.Fatalf("rows/excluded = %d/%d", doc.Rows, doc.Excluded)
			}
		})
	}
}

func TestDocumentUnsupportedFormat(t *testing.T) {
	_, err := NewCoordinator("").Document(sampleOutcomes(), "pdf")
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestXLSXRoundTrip(t *testing.T) {
	doc, err := NewCoordinator("", WithClock(fixedClock)).Document(sampleOutcomes(), "xlsx")
	if err != nil {
		t.Fatalf("Document: %v", err)
	}
	f, err := excelize.OpenReader(bytes.NewReader(doc.Data))
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(sheetName)
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("sheet rows = %d, want header + 2", len(rows))
	}
	if rows[0][1] != "カテゴリ" {
		t.Fatalf("header = %v", rows[0])
	}
	if rows[2][2] != "ウルフ" {
		t.Fatalf("second data row = %v", rows[2])
	}
}

func TestXLSXEmptyIsWellFormed(t *testing.T) {
	doc, err := NewCoordinator("").Document(nil, "xlsx")
	if err != nil {
		t.Fatalf("Document: %v", err)
	}
	f, err := excelize.OpenReader(bytes.NewReader(doc.Data))
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	defer f.Close()
	rows, err := f.GetRows(sheetName)
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected header only, got %d rows", len(rows))
	}
}

func TestCSVDocument(t *testing.T) {
	doc, err := NewCoordinator("").Document(sampleOutcomes(), "csv")
	if err != nil {
		t.Fatalf("Document: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(doc.Data)), "\n")
	if len(lines) != 3 {
		t.Fatalf("csv lines = %d, want 3:\n%s", len(lines), doc.Data)
	}
	if !strings.HasPrefix(lines[0], "画像,カテゴリ,タイトル") {
		t.Fatalf("csv header = %q", lines[0])
	}
	if !strings.Contains(lines[2], "ウルフ") {
		t.Fatalf("csv row = %q", lines[2])
	}
}

func TestParquetRoundTrip(t *testing.T) {
	doc, err := NewCoordinator("").Document(sampleOutcomes(), "parquet")
	if err != nil {
		t.Fatalf("Document: %v", err)
	}
	pf, err := parquet.OpenFile(bytes.NewReader(doc.Data), int64(len(doc.Data)))
	if err != nil {
		t.Fatalf("OpenFile: %v", err)
	}
	reader := parquet.NewGenericReader[parquetRow](pf)
	defer reader.Close()

	rows := make([]parquetRow, 4)
	n, err := reader.Read(rows)
	if err != nil && !errors.Is(err, io.EOF) {
		t.Fatalf("Read: %v", err)
	}
	if n != 2 {
		t.Fatalf("rows read = %d, want 2", n)
	}
	if rows[0].Title != "切りっぱなしボブ" || rows[0].Stylist != "佐藤" {
		t.Fatalf("first row = %+v", rows[0])
	}
	// Parquet keeps empty values empty rather than the display placeholder.
	if rows[1].Comment != "" {
		t.Fatalf("comment = %q, want empty", rows[1].Comment)
	}
}

func TestTextDocument(t *testing.T) {
	doc, err := NewCoordinator("").Document(sampleOutcomes(), "txt")
	if err != nil {
		t.Fatalf("Document: %v", err)
	}
	text := string(doc.Data)
	for _, want := range []string{"【a.png】", "タイトル: 切りっぱなしボブ", "選定理由: ボブの特徴が一致", "【c.png】", "コメント: " + Placeholder} {
		if !strings.Contains(text, want) {
			t.Errorf("text report missing %q:\n%s", want, text)
		}
	}
	if strings.Contains(text, "b.png") {
		t.Errorf("failed image leaked into report:\n%s", text)
	}
}

func TestYAMLDocument(t *testing.T) {
	doc, err := NewCoordinator("").Document(sampleOutcomes(), "yaml")
	if err != nil {
		t.Fatalf("Document: %v", err)
	}
	var entries []yamlEntry
	if err := yaml.Unmarshal(doc.Data, &entries); err != nil {
		t.Fatalf("decode yaml: %v", err)
	}
	if len(entries) != 2 || entries[0].Reason != "ボブの特徴が一致" || entries[1].Coupon != "カット50%OFF" {
		t.Fatalf("entries = %+v", entries)
	}
}

func TestSaveWritesAtomically(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "exports")
	doc := Document{Filename: "out.txt", Data: []byte("hello")}

	path, err := Save(dir, doc)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil || string(data) != "hello" {
		t.Fatalf("read back = %q, %v", data, err)
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Fatalf("temp file left behind: %v", err)
	}
}
