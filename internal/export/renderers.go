package export

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/parquet-go/parquet-go"
	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v3"
)

const sheetName = "スタイル"

type xlsxRenderer struct{}

func (xlsxRenderer) Extension() string { return "xlsx" }

func (xlsxRenderer) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

func (xlsxRenderer) Render(buf *bytes.Buffer, report Report) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), sheetName); err != nil {
		return fmt.Errorf("name sheet: %w", err)
	}
	if err := f.SetSheetRow(sheetName, "A1", toAnyRow(report.Table.Headers)); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, row := range report.Table.Rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheetName, cell, toAnyRow(row)); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}
	if err := f.SetColWidth(sheetName, "A", "H", 24); err != nil {
		return fmt.Errorf("set column width: %w", err)
	}
	if _, err := f.WriteTo(buf); err != nil {
		return fmt.Errorf("encode workbook: %w", err)
	}
	return nil
}

func toAnyRow(row []string) *[]any {
	out := make([]any, len(row))
	for i, v := range row {
		out[i] = v
	}
	return &out
}

type csvRenderer struct{}

func (csvRenderer) Extension() string { return "csv" }

func (csvRenderer) ContentType() string { return "text/csv; charset=utf-8" }

func (csvRenderer) Render(buf *bytes.Buffer, report Report) error {
	tw := table.NewWriter()
	header := make(table.Row, len(report.Table.Headers))
	for i, h := range report.Table.Headers {
		header[i] = h
	}
	tw.AppendHeader(header)
	for _, row := range report.Table.Rows {
		r := make(table.Row, len(row))
		for i, v := range row {
			r[i] = v
		}
		tw.AppendRow(r)
	}
	buf.WriteString(tw.RenderCSV())
	buf.WriteByte('\n')
	return nil
}

type parquetRow struct {
	Image    string `parquet:"image"`
	Category string `parquet:"category"`
	Title    string `parquet:"title"`
	Menu     string `parquet:"menu"`
	Comment  string `parquet:"comment"`
	Hashtag  string `parquet:"hashtag"`
	Stylist  string `parquet:"stylist"`
	Coupon   string `parquet:"coupon"`
}

type parquetRenderer struct{}

func (parquetRenderer) Extension() string { return "parquet" }

func (parquetRenderer) ContentType() string { return "application/vnd.apache.parquet" }

func (parquetRenderer) Render(buf *bytes.Buffer, report Report) error {
	rows := make([]parquetRow, 0, len(report.Entries))
	for _, e := range report.Entries {
		rows = append(rows, parquetRow{
			Image:    e.Image,
			Category: e.Template.Category,
			Title:    e.Template.Title,
			Menu:     e.Template.Menu,
			Comment:  e.Template.Comment,
			Hashtag:  e.Template.Hashtag,
			Stylist:  e.Stylist,
			Coupon:   e.Coupon,
		})
	}
	w := parquet.NewGenericWriter[parquetRow](buf)
	if len(rows) > 0 {
		if _, err := w.Write(rows); err != nil {
			return fmt.Errorf("write rows: %w", err)
		}
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("close writer: %w", err)
	}
	return nil
}

type textRenderer struct{}

func (textRenderer) Extension() string { return "txt" }

func (textRenderer) ContentType() string { return "text/plain; charset=utf-8" }

// Render writes one block per image, separated by blank lines.
func (textRenderer) Render(buf *bytes.Buffer, report Report) error {
	for i, e := range report.Entries {
		if i > 0 {
			buf.WriteString("\n")
		}
		fmt.Fprintf(buf, "【%s】\n", e.Image)
		for j, value := range e.row()[1:] {
			fmt.Fprintf(buf, "%s: %s\n", report.Table.Headers[j+1], strings.TrimSpace(value))
		}
		if e.Result != nil && e.Result.TemplateReason != "" {
			fmt.Fprintf(buf, "選定理由: %s\n", e.Result.TemplateReason)
		}
	}
	return nil
}

type yamlEntry struct {
	Image    string   `yaml:"image"`
	Category string   `yaml:"category"`
	Title    string   `yaml:"title"`
	Menu     string   `yaml:"menu"`
	Comment  string   `yaml:"comment"`
	Hashtag  string   `yaml:"hashtag"`
	Stylist  string   `yaml:"stylist,omitempty"`
	Coupon   string   `yaml:"coupon,omitempty"`
	Reason   string   `yaml:"reason,omitempty"`
	Keywords []string `yaml:"keywords,omitempty"`
}

type yamlRenderer struct{}

func (yamlRenderer) Extension() string { return "yaml" }

func (yamlRenderer) ContentType() string { return "application/yaml" }

func (yamlRenderer) Render(buf *bytes.Buffer, report Report) error {
	entries := make([]yamlEntry, 0, len(report.Entries))
	for _, e := range report.Entries {
		entry := yamlEntry{
			Image:    e.Image,
			Category: e.Template.Category,
			Title:    e.Template.Title,
			Menu:     e.Template.Menu,
			Comment:  e.Template.Comment,
			Hashtag:  e.Template.Hashtag,
			Stylist:  e.Stylist,
			Coupon:   e.Coupon,
		}
		if e.Result != nil {
			entry.Reason = e.Result.TemplateReason
			entry.Keywords = e.Result.StyleAnalysis.Keywords
		}
		entries = append(entries, entry)
	}
	enc := yaml.NewEncoder(buf)
	enc.SetIndent(2)
	if err := enc.Encode(entries); err != nil {
		return err
	}
	return enc.Close()
}
