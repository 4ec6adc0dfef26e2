package export

import (
	"strings"

	"stylegen/internal/model"
)

// Placeholder is rendered for fields with no value.
const Placeholder = "未設定"

// Headers are the table columns in order.
var Headers = []string{"画像", "カテゴリ", "タイトル", "メニュー", "コメント", "ハッシュタグ", "スタイリスト", "クーポン"}

// Table is the flattened export view of a batch.
type Table struct {
	Headers        []string
	Rows           [][]string
	Excluded       int
	ExcludedImages []string
}

// Entry is one exported image with its effective template resolved.
type Entry struct {
	Image    string
	Template model.Template
	Stylist  string
	Coupon   string
	Result   *model.ProcessResult
}

// Entries resolves the effective template of every successful outcome.
func Entries(outcomes []model.Outcome) ([]Entry, []string) {
	entries := make([]Entry, 0, len(outcomes))
	var excluded []string
	for _, o := range outcomes {
		if !o.OK() {
			excluded = append(excluded, o.Image.Name)
			continue
		}
		e := Entry{
			Image:    o.Result.ImageName,
			Template: o.Result.EffectiveTemplate(),
			Result:   o.Result,
		}
		if e.Image == "" {
			e.Image = o.Image.Name
		}
		if o.Result.SelectedStylist != nil {
			e.Stylist = o.Result.SelectedStylist.Name
		}
		if o.Result.SelectedCoupon != nil {
			e.Coupon = o.Result.SelectedCoupon.Name
		}
		entries = append(entries, e)
	}
	return entries, excluded
}

// ToTable builds the export table. Failed outcomes are excluded and counted.
func ToTable(outcomes []model.Outcome) Table {
	entries, excluded := Entries(outcomes)
	table := Table{
		Headers:        append([]string(nil), Headers...),
		Rows:           make([][]string, 0, len(entries)),
		Excluded:       len(excluded),
		ExcludedImages: excluded,
	}
	for _, e := range entries {
		table.Rows = append(table.Rows, e.row())
	}
	return table
}

func (e Entry) row() []string {
	return []string{
		orPlaceholder(e.Image),
		orPlaceholder(e.Template.Category),
		orPlaceholder(e.Template.Title),
		orPlaceholder(e.Template.Menu),
		orPlaceholder(e.Template.Comment),
		orPlaceholder(e.Template.Hashtag),
		orPlaceholder(e.Stylist),
		orPlaceholder(e.Coupon),
	}
}

func orPlaceholder(s string) string {
	if strings.TrimSpace(s) == "" {
		return Placeholder
	}
	return s
}
