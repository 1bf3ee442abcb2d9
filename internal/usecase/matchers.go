package usecase

import (
	"context"
	"fmt"

	"github.com/trendly/backend/internal/domain"
)

// Match thresholds
const (
	DefaultInternalMatchThreshold = 0.4
	DefaultExternalMatchThreshold = 0.2
	exactMatchScore               = 0.95 // Above this no substitution is suggested
	substitutionMinScore          = 0.4
)

// Match reasons that do not come from GenerateMatchReason
const (
	SubstitutionReason  = "Substitution: original item unavailable, best alternative suggested"
	ExternalMatchReason = "Similar item found on an external site."
)

// ProductMatcher maps the detected items of an analysis to product suggestions
// from a single product source.
type ProductMatcher interface {
	Name() string
	FindMatches(ctx context.Context, analysis *domain.AnalysisResult) ([]domain.ProductMatch, error)
}

// InternalMatcher matches against the store's own catalog
type InternalMatcher struct {
	catalog   domain.CatalogRepository
	threshold float64
}

// NewInternalMatcher creates an internal catalog matcher.
// A non-positive threshold selects the default.
func NewInternalMatcher(catalog domain.CatalogRepository, threshold float64) *InternalMatcher {
	if threshold <= 0 {
		threshold = DefaultInternalMatchThreshold
	}
	return &InternalMatcher{catalog: catalog, threshold: threshold}
}

// Name identifies the matcher in logs
func (m *InternalMatcher) Name() string { return "internal" }

// FindMatches scores available, category-eligible products for each detected item.
// When nothing scores as an exact match, the best candidate is added once more
// as a substitution.
func (m *InternalMatcher) FindMatches(ctx context.Context, analysis *domain.AnalysisResult) ([]domain.ProductMatch, error) {
	products, err := m.catalog.ListProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrCatalogUnavailable, err)
	}

	available := make([]*domain.Product, 0, len(products))
	for i := range products {
		if domain.IsAvailable(&products[i]) {
			available = append(available, &products[i])
		}
	}

	var matches []domain.ProductMatch
	for i := range analysis.DetectedItems {
		item := &analysis.DetectedItems[i]
		candidates := categoryCandidates(available, item.Category)

		foundExact := false
		var (
			bestProduct    *domain.Product
			bestSimilarity domain.Similarity
		)

		for _, product := range candidates {
			similarity := CalculateSimilarity(product, item, analysis)
			if similarity.Overall > m.threshold {
				if similarity.Overall > exactMatchScore {
					foundExact = true
				}
				matches = append(matches, newMatch(product, similarity, GenerateMatchReason(similarity)))
			}

			// Strictly greater keeps the earliest candidate on ties
			if bestProduct == nil || similarity.Overall > bestSimilarity.Overall {
				bestProduct = product
				bestSimilarity = similarity
			}
		}

		if !foundExact && bestProduct != nil && bestSimilarity.Overall > substitutionMinScore {
			matches = append(matches, newMatch(bestProduct, bestSimilarity, SubstitutionReason))
		}
	}

	return matches, nil
}

// ExternalMatcher suggests loosely related products from outside retailers
type ExternalMatcher struct {
	retailer  domain.RetailerClient // nil selects the simulated product list
	products  []domain.Product
	threshold float64
}

// NewExternalMatcher creates an external matcher. With a nil retailer client it
// matches against a fixed simulated retailer list.
func NewExternalMatcher(retailer domain.RetailerClient, threshold float64) *ExternalMatcher {
	if threshold <= 0 {
		threshold = DefaultExternalMatchThreshold
	}
	return &ExternalMatcher{
		retailer:  retailer,
		products:  SimulatedExternalProducts(),
		threshold: threshold,
	}
}

// Name identifies the matcher in logs
func (m *ExternalMatcher) Name() string { return "external" }

// FindMatches scores external products per detected item. No substitution is made.
func (m *ExternalMatcher) FindMatches(ctx context.Context, analysis *domain.AnalysisResult) ([]domain.ProductMatch, error) {
	var matches []domain.ProductMatch
	fetched := make(map[string][]*domain.Product)

	for i := range analysis.DetectedItems {
		item := &analysis.DetectedItems[i]

		products, err := m.productsFor(ctx, item.Category, fetched)
		if err != nil {
			return nil, err
		}

		for _, product := range categoryCandidates(products, item.Category) {
			similarity := CalculateSimilarity(product, item, analysis)
			if similarity.Overall > m.threshold {
				matches = append(matches, newMatch(product, similarity, ExternalMatchReason))
			}
		}
	}

	return matches, nil
}

// productsFor returns the external products to consider for a detected category.
// Retailer results are fetched once per category per call.
func (m *ExternalMatcher) productsFor(ctx context.Context, category string, fetched map[string][]*domain.Product) ([]*domain.Product, error) {
	if m.retailer == nil {
		products := make([]*domain.Product, len(m.products))
		for i := range m.products {
			products[i] = &m.products[i]
		}
		return products, nil
	}

	if products, ok := fetched[category]; ok {
		return products, nil
	}

	found, err := m.retailer.SearchProducts(ctx, category)
	if err != nil {
		return nil, fmt.Errorf("external search for %q: %w", category, err)
	}

	products := make([]*domain.Product, len(found))
	for i := range found {
		found[i].IsExternal = true
		products[i] = &found[i]
	}
	fetched[category] = products
	return products, nil
}

// SimulatedExternalProducts returns the fixed product list used when no retailer API is configured
func SimulatedExternalProducts() []domain.Product {
	return []domain.Product{
		{
			ID:          "ext-1",
			Name:        "Classic White Tee",
			Category:    "tops",
			Description: "A classic white t-shirt from an external store.",
			IsExternal:  true,
			URL:         "https://example.com/white-tee",
		},
		{
			ID:          "ext-2",
			Name:        "Blue Denim Jeans",
			Category:    "bottoms",
			Description: "Stylish blue denim jeans from another retailer.",
			IsExternal:  true,
			URL:         "https://example.com/blue-jeans",
		},
	}
}

// categoryCandidates keeps the products whose category covers the detected category
func categoryCandidates(products []*domain.Product, detectedCategory string) []*domain.Product {
	var candidates []*domain.Product
	for _, product := range products {
		if MatchesCategory(product.Category, detectedCategory) {
			candidates = append(candidates, product)
		}
	}
	return candidates
}

func newMatch(product *domain.Product, similarity domain.Similarity, reason string) domain.ProductMatch {
	return domain.ProductMatch{
		Product:     product,
		Confidence:  similarity.Overall,
		MatchReason: reason,
		Label:       MatchLabel(similarity.Overall),
		Similarity:  similarity,
	}
}
