package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"

	"stylegen/internal/model"
)

// Analyzer implements the image analysis and selection collaborators on top
// of a Client.
type Analyzer struct {
	client     *Client
	categories []string
}

// NewAnalyzer returns an Analyzer that constrains style categories to the
// supplied list (normally the template catalog's categories).
func NewAnalyzer(client *Client, categories []string) *Analyzer {
	return &Analyzer{client: client, categories: append([]string(nil), categories...)}
}

// AnalyzeStyle extracts the category, features, and keywords of a hairstyle.
func (a *Analyzer) AnalyzeStyle(ctx context.Context, data []byte, mimeType string) (model.StyleAnalysis, error) {
	var out model.StyleAnalysis
	if len(data) == 0 {
		return out, errors.New("style analysis: empty image")
	}
	categories := "any common Japanese hairstyle category"
	if len(a.categories) > 0 {
		categories = strings.Join(a.categories, ", ")
	}
	prompt := fmt.Sprintf(stylePrompt, categories)
	if err := a.client.generateJSON(ctx, "style analysis", &out, genai.ImageData(imageFormat(mimeType), data), genai.Text(prompt)); err != nil {
		return model.StyleAnalysis{}, err
	}
	out.Category = strings.TrimSpace(out.Category)
	return out, nil
}

// AnalyzeAttributes classifies apparent sex and hair length.
func (a *Analyzer) AnalyzeAttributes(ctx context.Context, data []byte, mimeType string) (model.AttributeAnalysis, error) {
	var out model.AttributeAnalysis
	if len(data) == 0 {
		return out, errors.New("attribute analysis: empty image")
	}
	if err := a.client.generateJSON(ctx, "attribute analysis", &out, genai.ImageData(imageFormat(mimeType), data), genai.Text(attributePrompt)); err != nil {
		return model.AttributeAnalysis{}, err
	}
	return out, nil
}

type indexChoice struct {
	Index  int    `json:"index"`
	Reason string `json:"reason"`
}

// SelectStylist asks the model to pick a stylist for the analysed style.
func (a *Analyzer) SelectStylist(ctx context.Context, stylists []model.StylistInfo, analysis model.StyleAnalysis) (model.StylistInfo, string, error) {
	if len(stylists) == 0 {
		return model.StylistInfo{}, "", errors.New("stylist selection: no stylists")
	}
	var lines []string
	for i, s := range stylists {
		lines = append(lines, fmt.Sprintf("%d: %s / %s / %s", i, s.Name, s.Specialties, s.Description))
	}
	choice, err := a.choose(ctx, "stylist selection", fmt.Sprintf(stylistPrompt, analysis.Describe(), strings.Join(lines, "\n")), len(stylists))
	if err != nil {
		return model.StylistInfo{}, "", err
	}
	return stylists[choice.Index], choice.Reason, nil
}

// SelectCoupon asks the model to pick a coupon for the analysed style.
func (a *Analyzer) SelectCoupon(ctx context.Context, coupons []model.CouponInfo, analysis model.StyleAnalysis) (model.CouponInfo, string, error) {
	if len(coupons) == 0 {
		return model.CouponInfo{}, "", errors.New("coupon selection: no coupons")
	}
	var lines []string
	for i, c := range coupons {
		lines = append(lines, fmt.Sprintf("%d: %s / %s / %s", i, c.Name, c.Price, c.Description))
	}
	choice, err := a.choose(ctx, "coupon selection", fmt.Sprintf(couponPrompt, analysis.Describe(), strings.Join(lines, "\n")), len(coupons))
	if err != nil {
		return model.CouponInfo{}, "", err
	}
	return coupons[choice.Index], choice.Reason, nil
}

// Rank asks the model which candidate template fits best.
func (a *Analyzer) Rank(ctx context.Context, analysis model.StyleAnalysis, attrs model.AttributeAnalysis, candidates []model.Template) (int, string, error) {
	if len(candidates) == 0 {
		return 0, "", errors.New("template ranking: no candidates")
	}
	var lines []string
	for i, t := range candidates {
		lines = append(lines, fmt.Sprintf("%d: %s / %s / %s", i, t.Category, t.Title, t.Comment))
	}
	prompt := fmt.Sprintf(rankPrompt, analysis.Describe(), attrs.Sex, attrs.Length, strings.Join(lines, "\n"))
	choice, err := a.choose(ctx, "template ranking", prompt, len(candidates))
	if err != nil {
		return 0, "", err
	}
	return choice.Index, choice.Reason, nil
}

func (a *Analyzer) choose(ctx context.Context, op, prompt string, n int) (indexChoice, error) {
	var choice indexChoice
	if err := a.client.generateJSON(ctx, op, &choice, genai.Text(prompt)); err != nil {
		return indexChoice{}, err
	}
	if choice.Index < 0 || choice.Index >= n {
		return indexChoice{}, fmt.Errorf("%s: model returned index %d outside [0,%d)", op, choice.Index, n)
	}
	choice.Reason = strings.TrimSpace(choice.Reason)
	return choice, nil
}

// imageFormat converts a MIME type into the short format genai expects.
func imageFormat(mimeType string) string {
	format := strings.TrimPrefix(strings.ToLower(strings.TrimSpace(mimeType)), "image/")
	if format == "" {
		return "jpeg"
	}
	return format
}
