package usecase

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/bytedance/sonic"
	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"

	"github.com/trendly/backend/internal/domain"
)

// DefaultMaxResults caps the number of matches returned for one analysis
const DefaultMaxResults = 20

// AnalysisServiceConfig holds configuration for the analysis service
type AnalysisServiceConfig struct {
	CacheTTL   time.Duration
	MaxResults int
}

// AnalysisService is the entry point for outfit analysis and product matching
type AnalysisService struct {
	analyzer   *VisionAnalyzer
	matchers   []ProductMatcher
	cache      domain.CacheRepository
	cacheTTL   time.Duration
	maxResults int
	logger     *zap.Logger
}

// NewAnalysisService creates a new analysis service. Matchers run in a fixed
// order: internal catalog first, then external retailers. cache may be nil.
func NewAnalysisService(
	analyzer *VisionAnalyzer,
	internal *InternalMatcher,
	external *ExternalMatcher,
	cache domain.CacheRepository,
	config AnalysisServiceConfig,
	logger *zap.Logger,
) *AnalysisService {
	return newAnalysisService(analyzer, []ProductMatcher{internal, external}, cache, config, logger)
}

func newAnalysisService(
	analyzer *VisionAnalyzer,
	matchers []ProductMatcher,
	cache domain.CacheRepository,
	config AnalysisServiceConfig,
	logger *zap.Logger,
) *AnalysisService {
	cacheTTL := config.CacheTTL
	if cacheTTL == 0 {
		cacheTTL = 24 * time.Hour
	}

	maxResults := config.MaxResults
	if maxResults <= 0 || maxResults > DefaultMaxResults {
		maxResults = DefaultMaxResults
	}

	return &AnalysisService{
		analyzer:   analyzer,
		matchers:   matchers,
		cache:      cache,
		cacheTTL:   cacheTTL,
		maxResults: maxResults,
		logger:     logger.Named("analysis_service"),
	}
}

// AnalyzeOutfitImage encodes the image and describes the outfit in it.
// Only image read errors are returned; model failures yield the fallback analysis.
// Flow: encode -> check cache -> analyze -> cache -> return
func (s *AnalysisService) AnalyzeOutfitImage(ctx context.Context, file ImageFile) (*domain.AnalysisResult, error) {
	encoded, err := EncodeImage(ctx, file)
	if err != nil {
		return nil, err
	}

	cacheKey := analysisCacheKey(encoded.Digest)

	// Try cache first
	if cached, err := s.getFromCache(ctx, cacheKey); err == nil {
		s.logger.Debug("Analysis served from cache", zap.String("key", cacheKey))
		return cached, nil
	}

	result := s.analyzer.Analyze(ctx, encoded.Base64, encoded.MIMEType)

	// Fallback results are never cached so a later retry can succeed
	if !result.Fallback {
		if err := s.setInCache(ctx, cacheKey, result); err != nil {
			s.logger.Warn("Failed to cache analysis",
				zap.String("key", cacheKey),
				zap.Error(err))
		}
	}

	return result, nil
}

// FindMatchingProducts runs every matcher concurrently and returns their
// combined matches sorted by descending confidence and capped at the configured maximum.
// Any matcher failure fails the whole call.
func (s *AnalysisService) FindMatchingProducts(ctx context.Context, analysis *domain.AnalysisResult) ([]domain.ProductMatch, error) {
	if analysis == nil {
		return nil, domain.ErrInvalidRequest
	}

	start := time.Now()

	// Each matcher writes only its own slot so merge order follows registration order
	results := make([][]domain.ProductMatch, len(s.matchers))
	p := pool.New().WithContext(ctx).WithCancelOnError()

	for i, matcher := range s.matchers {
		p.Go(func(ctx context.Context) error {
			matches, err := matcher.FindMatches(ctx, analysis)
			if err != nil {
				return fmt.Errorf("%s matcher: %w", matcher.Name(), err)
			}
			results[i] = matches
			return nil
		})
	}

	if err := p.Wait(); err != nil {
		s.logger.Error("Product matching failed",
			zap.Duration("latency", time.Since(start)),
			zap.Error(err))
		return nil, fmt.Errorf("%w: %w", domain.ErrMatcherFailed, err)
	}

	matches := make([]domain.ProductMatch, 0)
	for _, r := range results {
		matches = append(matches, r...)
	}

	// Stable sort keeps matcher order, then per-matcher order, among equal confidences
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Confidence > matches[j].Confidence
	})

	if len(matches) > s.maxResults {
		matches = matches[:s.maxResults]
	}

	s.logger.Info("Found product matches",
		zap.Int("count", len(matches)),
		zap.Duration("latency", time.Since(start)))

	return matches, nil
}

// AnalyzeAndMatch analyzes an outfit image and finds matching products for it
func (s *AnalysisService) AnalyzeAndMatch(ctx context.Context, file ImageFile) (*domain.OutfitMatches, error) {
	analysis, err := s.AnalyzeOutfitImage(ctx, file)
	if err != nil {
		return nil, err
	}

	matches, err := s.FindMatchingProducts(ctx, analysis)
	if err != nil {
		return nil, err
	}

	return &domain.OutfitMatches{Analysis: analysis, Matches: matches}, nil
}

// FilterMatchesByCategory keeps matches whose product category covers the given category.
// An empty category keeps everything.
func FilterMatchesByCategory(matches []domain.ProductMatch, category string) []domain.ProductMatch {
	if category == "" {
		return matches
	}

	filtered := make([]domain.ProductMatch, 0, len(matches))
	for _, match := range matches {
		if match.Product != nil && MatchesCategory(match.Product.Category, category) {
			filtered = append(filtered, match)
		}
	}
	return filtered
}

// analysisCacheKey builds the cache key for an image digest.
// Format: "analysis:{sha256}"
func analysisCacheKey(digest string) string {
	return "analysis:" + digest
}

// getFromCache retrieves a cached analysis
func (s *AnalysisService) getFromCache(ctx context.Context, key string) (*domain.AnalysisResult, error) {
	if s.cache == nil {
		return nil, domain.ErrCacheMiss
	}

	data, err := s.cache.Get(ctx, key)
	if err != nil {
		return nil, err
	}

	var result domain.AnalysisResult
	if err := sonic.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("%w: corrupt entry: %v", domain.ErrCacheMiss, err)
	}
	if result.DetectedItems == nil {
		result.DetectedItems = []domain.DetectedItem{}
	}

	return &result, nil
}

// setInCache stores an analysis in cache
func (s *AnalysisService) setInCache(ctx context.Context, key string, result *domain.AnalysisResult) error {
	if s.cache == nil {
		return nil
	}

	data, err := sonic.Marshal(result)
	if err != nil {
		return err
	}
	return s.cache.Set(ctx, key, data, s.cacheTTL)
}
