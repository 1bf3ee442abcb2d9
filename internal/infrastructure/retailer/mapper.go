package retailer

import "github.com/trendly/backend/internal/domain"

// SearchResponse is the retailer search API payload
type SearchResponse struct {
	Products []Product `json:"products"`
	Total    int       `json:"total"`
}

// Product is one product as returned by the retailer API
type Product struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Category    string   `json:"category"`
	Description string   `json:"description"`
	Price       *float64 `json:"price"`
	Brand       string   `json:"brand"`
	ImageURL    string   `json:"image_url"`
	URL         string   `json:"url"`
	InStock     *bool    `json:"in_stock"`
}

// MapToProduct converts a retailer product to our domain Product model
func MapToProduct(p *Product) domain.Product {
	return domain.Product{
		ID:          "ext-" + p.ID,
		Name:        p.Title,
		Category:    p.Category,
		Description: p.Description,
		Price:       p.Price,
		Brand:       p.Brand,
		ImageURL:    p.ImageURL,
		IsExternal:  true,
		URL:         p.URL,
	}
}

// MapToProducts converts retailer products, skipping entries that cannot be
// linked to or are out of stock
func MapToProducts(products []Product) []domain.Product {
	out := make([]domain.Product, 0, len(products))
	for i := range products {
		p := &products[i]
		if p.ID == "" || p.URL == "" {
			continue
		}
		if p.InStock != nil && !*p.InStock {
			continue
		}
		out = append(out, MapToProduct(p))
	}
	return out
}
