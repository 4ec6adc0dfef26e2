package model

import "strings"

// StyleFeatures are the free-text attributes extracted from an image.
type StyleFeatures struct {
	Color        string `json:"color" yaml:"color"`
	CutTechnique string `json:"cut_technique" yaml:"cut_technique"`
	Styling      string `json:"styling" yaml:"styling"`
	Impression   string `json:"impression" yaml:"impression"`
}

// StyleAnalysis is produced once per image by the analysis stage.
type StyleAnalysis struct {
	Category string        `json:"category" yaml:"category"`
	Features StyleFeatures `json:"features" yaml:"features"`
	Keywords []string      `json:"keywords" yaml:"keywords"`
}

// Describe flattens the analysis into one string for text matching.
func (a StyleAnalysis) Describe() string {
	parts := []string{
		a.Category,
		a.Features.Color,
		a.Features.CutTechnique,
		a.Features.Styling,
		a.Features.Impression,
	}
	parts = append(parts, a.Keywords...)
	return strings.Join(parts, " ")
}

// AttributeAnalysis is the coarse sex/length classification.
type AttributeAnalysis struct {
	Sex    string `json:"sex" yaml:"sex"`
	Length string `json:"length" yaml:"length"`
}

// StylistInfo is salon reference data for one stylist.
type StylistInfo struct {
	Name        string `json:"name" yaml:"name"`
	Specialties string `json:"specialties" yaml:"specialties"`
	Description string `json:"description" yaml:"description"`
}

// CouponInfo is salon reference data for one coupon.
type CouponInfo struct {
	Name        string `json:"name" yaml:"name"`
	Price       string `json:"price" yaml:"price"`
	Description string `json:"description" yaml:"description"`
}
