package domain

import "strings"

// Product is a catalog entry. The commerce subsystem owns it; matching only reads it.
type Product struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Category    string   `json:"category"`
	Description string   `json:"description"`
	Price       *float64 `json:"price,omitempty"`
	Brand       string   `json:"brand,omitempty"`
	ImageURL    string   `json:"image_url,omitempty"`
	IsExternal  bool     `json:"isExternal,omitempty"`
	URL         string   `json:"url,omitempty"` // required when IsExternal

	// Availability flags. Nil means the source did not record the field.
	StockQuantity *int  `json:"stock_quantity,omitempty"`
	IsActive      *bool `json:"is_active,omitempty"`
}

// IsAvailable reports whether a product may be suggested from the internal catalog.
// Missing stock or active flags default to available.
func IsAvailable(p *Product) bool {
	if p == nil {
		return false
	}
	inStock := p.StockQuantity == nil || *p.StockQuantity > 0
	active := p.IsActive == nil || *p.IsActive
	return inStock && active
}

// SearchText returns the lowercased name and description used for text similarity
func (p *Product) SearchText() string {
	return strings.ToLower(p.Name + " " + p.Description)
}

// Similarity is the per-factor score of one product against one detected item
type Similarity struct {
	Category float64 `json:"category"`
	Color    float64 `json:"color"`
	Style    float64 `json:"style"`
	Overall  float64 `json:"overall"`
}

// ProductMatch is one ranked recommendation
type ProductMatch struct {
	Product     *Product   `json:"product"`
	Confidence  float64    `json:"confidence"` // equals Similarity.Overall
	MatchReason string     `json:"matchReason"`
	Label       string     `json:"label"`
	Similarity  Similarity `json:"similarity"`
}

// OutfitMatches pairs an analysis with the products matched against it
type OutfitMatches struct {
	Analysis *AnalysisResult `json:"analysis"`
	Matches  []ProductMatch  `json:"matches"`
}
