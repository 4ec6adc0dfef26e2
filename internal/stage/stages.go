package stage

// Stage names, in execution order. They double as cache key namespaces.
const (
	Load          = "load"
	StyleAnalysis = "style_analysis"
	TemplateMatch = "template_match"
	StylistSelect = "stylist_select"
	TitleGenerate = "title_generate"

	// attributeAnalysis is cached separately from style analysis but runs
	// inside the style_analysis stage.
	attributeAnalysis = "attribute_analysis"
)

// Order lists the stages in execution order.
var Order = []string{Load, StyleAnalysis, TemplateMatch, StylistSelect, TitleGenerate}

var labels = map[string]string{
	Load:          "Loading image",
	StyleAnalysis: "Analyzing style",
	TemplateMatch: "Matching templates",
	StylistSelect: "Selecting stylist",
	TitleGenerate: "Generating title",
}

// Label returns the human-readable progress label for a stage.
func Label(stage string) string {
	if label, ok := labels[stage]; ok {
		return label
	}
	return stage
}
