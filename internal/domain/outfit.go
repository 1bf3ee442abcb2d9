package domain

// DetectedItem is one garment or accessory the vision model found in an image
type DetectedItem struct {
	Category    string   `json:"category"`
	Description string   `json:"description"`
	Color       string   `json:"color"`
	Style       string   `json:"style"`
	Confidence  float64  `json:"confidence"` // 0.0-1.0, as reported by the model
	Attributes  []string `json:"attributes"`
}

// OutfitContext describes the outfit as a whole
type OutfitContext struct {
	Occasion string `json:"occasion"`
	Style    string `json:"style"`
	Season   string `json:"season"`
}

// ModelContext holds optional observations about the person wearing the outfit
type ModelContext struct {
	BodyType        string `json:"bodyType,omitempty"`
	SkinTone        string `json:"skinTone,omitempty"`
	StylePreference string `json:"stylePreference,omitempty"`
}

// AnalysisResult is the structured description of one outfit image
type AnalysisResult struct {
	DetectedItems []DetectedItem `json:"detectedItems"`
	OutfitContext OutfitContext  `json:"outfitContext"`
	ModelContext  ModelContext   `json:"modelContext"`

	// Fallback marks the generic result substituted for a failed analysis.
	Fallback bool `json:"-"`
}

// FallbackAnalysis returns the generic result used whenever the vision model
// call fails or its response cannot be parsed.
func FallbackAnalysis() *AnalysisResult {
	return &AnalysisResult{
		DetectedItems: []DetectedItem{
			{
				Category:    "tops",
				Description: "Clothing item detected",
				Color:       "neutral",
				Style:       "casual",
				Confidence:  0.5,
				Attributes:  []string{"basic"},
			},
		},
		OutfitContext: OutfitContext{
			Occasion: "casual",
			Style:    "everyday",
			Season:   "all-season",
		},
		ModelContext: ModelContext{},
		Fallback:     true,
	}
}
