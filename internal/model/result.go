package model

// ProcessResult is the per-image aggregate. StageRunner creates it; the
// selection state machine only ever sets UserSelectedTemplate afterwards.
type ProcessResult struct {
	ImageName            string            `json:"image_name"`
	ImagePath            string            `json:"image_path,omitempty"`
	Fingerprint          string            `json:"fingerprint,omitempty"`
	StyleAnalysis        StyleAnalysis     `json:"style_analysis"`
	AttributeAnalysis    AttributeAnalysis `json:"attribute_analysis"`
	SelectedTemplate     Template          `json:"selected_template"`
	AlternativeTemplates []Template        `json:"alternative_templates"`
	UserSelectedTemplate *Template         `json:"user_selected_template,omitempty"`
	SelectedStylist      *StylistInfo      `json:"selected_stylist,omitempty"`
	SelectedCoupon       *CouponInfo       `json:"selected_coupon,omitempty"`
	StylistReason        string            `json:"stylist_reason,omitempty"`
	CouponReason         string            `json:"coupon_reason,omitempty"`
	TemplateReason       string            `json:"template_reason,omitempty"`
}

// Choices lists the selectable templates: the AI choice at index 0 followed
// by the ranked alternatives.
func (r *ProcessResult) Choices() []Template {
	if r == nil {
		return nil
	}
	choices := make([]Template, 0, len(r.AlternativeTemplates)+1)
	choices = append(choices, r.SelectedTemplate)
	return append(choices, r.AlternativeTemplates...)
}

// EffectiveTemplate returns the human override when present, else the AI choice.
func (r *ProcessResult) EffectiveTemplate() Template {
	if r == nil {
		return Template{}
	}
	if r.UserSelectedTemplate != nil {
		return *r.UserSelectedTemplate
	}
	return r.SelectedTemplate
}

// Clone returns a deep copy so callers can hand results out without sharing
// mutable pointers.
func (r *ProcessResult) Clone() *ProcessResult {
	if r == nil {
		return nil
	}
	cp := *r
	cp.StyleAnalysis.Keywords = append([]string(nil), r.StyleAnalysis.Keywords...)
	cp.AlternativeTemplates = append([]Template(nil), r.AlternativeTemplates...)
	if r.UserSelectedTemplate != nil {
		t := *r.UserSelectedTemplate
		cp.UserSelectedTemplate = &t
	}
	if r.SelectedStylist != nil {
		s := *r.SelectedStylist
		cp.SelectedStylist = &s
	}
	if r.SelectedCoupon != nil {
		c := *r.SelectedCoupon
		cp.SelectedCoupon = &c
	}
	return &cp
}
