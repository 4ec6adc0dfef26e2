package matching

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"stylegen/internal/model"
	"stylegen/internal/textutil"
)

// ErrNoCandidates is returned when selection is asked to choose from nothing.
var ErrNoCandidates = errors.New("no candidates to choose from")

// Keyword selects stylists, coupons, and templates by fingerprint similarity.
type Keyword struct{}

// NewKeyword returns the heuristic matcher.
func NewKeyword() *Keyword {
	return &Keyword{}
}

// SelectStylist picks the stylist whose specialties and description best
// match the analysis. Ties keep list order.
func (k *Keyword) SelectStylist(ctx context.Context, stylists []model.StylistInfo, analysis model.StyleAnalysis) (model.StylistInfo, string, error) {
	if len(stylists) == 0 {
		return model.StylistInfo{}, "", ErrNoCandidates
	}
	if err := ctx.Err(); err != nil {
		return model.StylistInfo{}, "", err
	}
	texts := make([]string, len(stylists))
	for i, s := range stylists {
		texts[i] = s.Specialties + " " + s.Description
	}
	idx, score := bestMatch(analysis.Describe(), texts)
	chosen := stylists[idx]
	return chosen, reason(chosen.Name, score, analysis), nil
}

// SelectCoupon picks the coupon whose name and description best match.
func (k *Keyword) SelectCoupon(ctx context.Context, coupons []model.CouponInfo, analysis model.StyleAnalysis) (model.CouponInfo, string, error) {
	if len(coupons) == 0 {
		return model.CouponInfo{}, "", ErrNoCandidates
	}
	if err := ctx.Err(); err != nil {
		return model.CouponInfo{}, "", err
	}
	texts := make([]string, len(coupons))
	for i, c := range coupons {
		texts[i] = c.Name + " " + c.Description
	}
	idx, score := bestMatch(analysis.Describe(), texts)
	chosen := coupons[idx]
	return chosen, reason(chosen.Name, score, analysis), nil
}

// Rank returns the index of the candidate that best fits the analysis and
// attributes. Length and sex terms are added to the query so that, among
// same-category templates, the one mentioning the right length wins.
func (k *Keyword) Rank(ctx context.Context, analysis model.StyleAnalysis, attrs model.AttributeAnalysis, candidates []model.Template) (int, string, error) {
	if len(candidates) == 0 {
		return 0, "", ErrNoCandidates
	}
	if err := ctx.Err(); err != nil {
		return 0, "", err
	}
	query := strings.Join([]string{analysis.Describe(), attrs.Length, attrs.Sex}, " ")
	texts := make([]string, len(candidates))
	for i, c := range candidates {
		texts[i] = strings.Join([]string{c.Category, c.Title, c.Comment, c.Hashtag}, " ")
	}
	idx, score := bestMatch(query, texts)
	if score == 0 {
		return 0, "no candidate shares terms with the analysis; keeping catalog order", nil
	}
	return idx, fmt.Sprintf("%q matches the analysed style (similarity %.2f)", candidates[idx].Title, score), nil
}

// bestMatch returns the index with the highest cosine similarity, preferring
// the earliest on ties.
func bestMatch(query string, texts []string) (int, float64) {
	corpus := textutil.NewCorpus()
	fps := make([]*textutil.Fingerprint, len(texts))
	for i, text := range texts {
		fps[i] = textutil.NewFingerprint(text)
		corpus.Add(fps[i])
	}
	idf := corpus.IDF()
	q := textutil.NewFingerprint(query).WithIDF(idf)

	best, bestScore := 0, -1.0
	for i, fp := range fps {
		score := textutil.CosineSimilarity(q, fp.WithIDF(idf))
		if score > bestScore {
			best, bestScore = i, score
		}
	}
	return best, max(bestScore, 0)
}

func reason(name string, score float64, analysis model.StyleAnalysis) string {
	if score == 0 {
		return fmt.Sprintf("%s chosen as the default; no profile terms overlap with %s", name, analysis.Category)
	}
	return fmt.Sprintf("%s matches the %s style (similarity %.2f)", name, analysis.Category, score)
}
