package templates

import (
	"context"
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"

	"stylegen/internal/model"
	"stylegen/internal/textutil"
)

// categoryBonus dominates any cosine score so same-category templates always
// outrank the rest.
const categoryBonus = 1.0

// Match is the outcome of matching one analysis against the catalog.
type Match struct {
	Best         model.Template   `json:"best"`
	Alternatives []model.Template `json:"alternatives"`
	Score        float64          `json:"score"`
}

// Catalog is an immutable, pre-indexed template set.
type Catalog struct {
	templates       []model.Template
	fingerprints    []*textutil.Fingerprint
	idf             map[string]float64
	maxAlternatives int
}

// NewCatalog indexes templates. maxAlternatives bounds the alternatives
// returned by Match; values below zero are treated as zero.
func NewCatalog(templates []model.Template, maxAlternatives int) (*Catalog, error) {
	if len(templates) == 0 {
		return nil, ErrEmptyCatalog
	}
	c := &Catalog{
		templates:       append([]model.Template(nil), templates...),
		fingerprints:    make([]*textutil.Fingerprint, len(templates)),
		maxAlternatives: max(maxAlternatives, 0),
	}
	corpus := textutil.NewCorpus()
	raw := make([]*textutil.Fingerprint, len(templates))
	for i, tmpl := range c.templates {
		raw[i] = textutil.NewFingerprint(templateText(tmpl))
		corpus.Add(raw[i])
	}
	c.idf = corpus.IDF()
	for i, fp := range raw {
		c.fingerprints[i] = fp.WithIDF(c.idf)
	}
	return c, nil
}

// Len returns the number of templates.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.templates)
}

// Templates returns a copy of the catalog rows.
func (c *Catalog) Templates() []model.Template {
	if c == nil {
		return nil
	}
	return append([]model.Template(nil), c.templates...)
}

// Categories lists distinct categories in catalog order.
func (c *Catalog) Categories() []string {
	if c == nil {
		return nil
	}
	seen := make(map[string]struct{})
	var out []string
	for _, tmpl := range c.templates {
		if _, ok := seen[tmpl.Category]; ok {
			continue
		}
		seen[tmpl.Category] = struct{}{}
		out = append(out, tmpl.Category)
	}
	return out
}

// Match ranks the catalog for analysis. Ties keep catalog order.
func (c *Catalog) Match(ctx context.Context, analysis model.StyleAnalysis) (Match, error) {
	if c == nil || len(c.templates) == 0 {
		return Match{}, ErrEmptyCatalog
	}
	if err := ctx.Err(); err != nil {
		return Match{}, err
	}

	query := textutil.NewFingerprint(analysis.Describe()).WithIDF(c.idf)
	category := normalizeCategory(analysis.Category)

	type scored struct {
		index int
		score float64
	}
	ranked := make([]scored, len(c.templates))
	for i, tmpl := range c.templates {
		score := textutil.CosineSimilarity(query, c.fingerprints[i])
		if category != "" && normalizeCategory(tmpl.Category) == category {
			score += categoryBonus
		}
		ranked[i] = scored{index: i, score: score}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score > ranked[j].score
	})

	result := Match{
		Best:  c.templates[ranked[0].index],
		Score: ranked[0].score,
	}
	limit := min(c.maxAlternatives, len(ranked)-1)
	for _, r := range ranked[1 : 1+limit] {
		result.Alternatives = append(result.Alternatives, c.templates[r.index])
	}
	return result, nil
}

func templateText(t model.Template) string {
	return strings.Join([]string{t.Category, t.Title, t.Menu, t.Comment, t.Hashtag}, " ")
}

func normalizeCategory(s string) string {
	return strings.ToLower(strings.TrimSpace(norm.NFKC.String(s)))
}
