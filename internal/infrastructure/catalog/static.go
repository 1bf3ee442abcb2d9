package catalog

import (
	"context"

	"github.com/trendly/backend/internal/domain"
)

// StaticCatalog serves a fixed product list from memory
type StaticCatalog struct {
	products []domain.Product
}

// NewStaticCatalog creates a catalog over products. A nil list selects DefaultProducts.
func NewStaticCatalog(products []domain.Product) *StaticCatalog {
	if products == nil {
		products = DefaultProducts()
	}
	return &StaticCatalog{products: products}
}

// ListProducts returns a copy of the catalog
func (c *StaticCatalog) ListProducts(ctx context.Context) ([]domain.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := make([]domain.Product, len(c.products))
	copy(out, c.products)
	return out, nil
}

func price(v float64) *float64 { return &v }
func stock(v int) *int         { return &v }
func active(v bool) *bool      { return &v }

// DefaultProducts returns the built-in seed catalog
func DefaultProducts() []domain.Product {
	return []domain.Product{
		{
			ID:            "tr-001",
			Name:          "Classic White Tee",
			Category:      "tops",
			Description:   "casual white cotton t-shirt with short sleeve",
			Price:         price(19.99),
			Brand:         "Trendly Basics",
			ImageURL:      "https://cdn.trendly.app/products/tr-001.jpg",
			StockQuantity: stock(42),
			IsActive:      active(true),
		},
		{
			ID:            "tr-002",
			Name:          "Navy Oxford Shirt",
			Category:      "tops",
			Description:   "formal navy blue button-up oxford shirt",
			Price:         price(49.50),
			Brand:         "Atelier North",
			ImageURL:      "https://cdn.trendly.app/products/tr-002.jpg",
			StockQuantity: stock(12),
			IsActive:      active(true),
		},
		{
			ID:          "tr-003",
			Name:        "Charcoal Hoodie",
			Category:    "tops",
			Description: "streetwear black hooded sweatshirt",
			Price:       price(64.00),
			Brand:       "Cityline",
			ImageURL:    "https://cdn.trendly.app/products/tr-003.jpg",
		},
		{
			ID:            "tr-004",
			Name:          "Ivory Silk Blouse",
			Category:      "tops",
			Description:   "elegant cream silk blouse for office and evening",
			Price:         price(89.00),
			Brand:         "Maison Lys",
			ImageURL:      "https://cdn.trendly.app/products/tr-004.jpg",
			StockQuantity: stock(0),
			IsActive:      active(true),
		},
		{
			ID:            "tr-005",
			Name:          "Relaxed Blue Jeans",
			Category:      "bottoms",
			Description:   "casual blue denim jeans with relaxed fit",
			Price:         price(59.99),
			Brand:         "Trendly Denim",
			ImageURL:      "https://cdn.trendly.app/products/tr-005.jpg",
			StockQuantity: stock(30),
		},
		{
			ID:          "tr-006",
			Name:        "Black Tailored Trousers",
			Category:    "bottoms",
			Description: "formal black wool trousers",
			Price:       price(79.00),
			Brand:       "Atelier North",
			ImageURL:    "https://cdn.trendly.app/products/tr-006.jpg",
			IsActive:    active(false),
		},
		{
			ID:            "tr-007",
			Name:          "White Canvas Sneakers",
			Category:      "footwear",
			Description:   "casual white low-top canvas sneakers",
			Price:         price(45.00),
			Brand:         "Stride",
			ImageURL:      "https://cdn.trendly.app/products/tr-007.jpg",
			StockQuantity: stock(25),
			IsActive:      active(true),
		},
		{
			ID:            "tr-008",
			Name:          "Tan Leather Boots",
			Category:      "footwear",
			Description:   "brown leather ankle boots",
			Price:         price(129.00),
			Brand:         "Stride",
			ImageURL:      "https://cdn.trendly.app/products/tr-008.jpg",
			StockQuantity: stock(7),
		},
		{
			ID:          "tr-009",
			Name:        "Gold Hoop Earrings",
			Category:    "accessories",
			Description: "minimal gold jewelry hoops",
			Price:       price(24.00),
			Brand:       "Lumen",
			ImageURL:    "https://cdn.trendly.app/products/tr-009.jpg",
		},
		{
			ID:            "tr-010",
			Name:          "Crimson Embroidered Kurta",
			Category:      "ethnic_wear",
			Description:   "traditional red cotton kurta with embroidery",
			Price:         price(54.00),
			Brand:         "Rangrez",
			ImageURL:      "https://cdn.trendly.app/products/tr-010.jpg",
			StockQuantity: stock(15),
			IsActive:      active(true),
		},
		{
			ID:            "tr-011",
			Name:          "Olive Utility Jacket",
			Category:      "tops",
			Description:   "casual green cotton jacket with pockets",
			Price:         price(99.00),
			Brand:         "Cityline",
			ImageURL:      "https://cdn.trendly.app/products/tr-011.jpg",
			StockQuantity: stock(9),
		},
		{
			ID:          "tr-012",
			Name:        "Pleated Midi Skirt",
			Category:    "bottoms",
			Description: "bohemian pink pleated skirt",
			Price:       price(47.00),
			Brand:       "Maison Lys",
			ImageURL:    "https://cdn.trendly.app/products/tr-012.jpg",
		},
	}
}
