package usecase

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"go.uber.org/zap"

	"github.com/trendly/backend/internal/domain"
)

const (
	// OutfitAnalysisPrompt instructs the vision model to describe an outfit as a JSON AnalysisResult.
	OutfitAnalysisPrompt = `Analyze this fashion outfit image and describe it in JSON.

Tasks:
1. Identify every visible clothing item and accessory
2. Determine the outfit context (occasion, style, season)
3. Describe the person wearing the outfit if visible
4. Name colors precisely and consistently

Color vocabulary:
- Base hues: white, black, blue, red, green, yellow, pink, purple, brown, gray, orange, teal
- Blue shades: navy blue, light blue, dark blue, royal blue, sky blue
- White shades: white, ivory, cream, off-white
- Black shades: black, charcoal, dark
- Use only these names for the "color" field

Output format:
{
  "detectedItems": [
    {
      "category": "tops|bottoms|footwear|accessories|outerwear|ethnic_wear",
      "description": "item details including color and cut",
      "color": "primary color from the vocabulary",
      "style": "casual|formal|bohemian|streetwear|...",
      "confidence": 0.0-1.0,
      "attributes": ["attribute1", "attribute2"]
    }
  ],
  "outfitContext": {
    "occasion": "casual|formal|party|business|athletic|...",
    "style": "overall style",
    "season": "spring|summer|fall|winter|all-season"
  },
  "modelContext": {
    "bodyType": "if visible",
    "skinTone": "if visible",
    "stylePreference": "inferred style preference"
  }
}

Focus on details that help match products from a fashion catalog.
Return only the JSON object.`
)

// Analysis failure categories used in logs
const (
	ErrorCategoryParse   = "parse_error"
	ErrorCategoryNetwork = "network_error"
	ErrorCategoryUnknown = "unknown_error"
)

// VisionAnalyzer turns an encoded outfit image into an AnalysisResult using a vision model
type VisionAnalyzer struct {
	generator domain.VisionGenerator
	logger    *zap.Logger
}

// NewVisionAnalyzer creates a new vision analyzer
func NewVisionAnalyzer(generator domain.VisionGenerator, logger *zap.Logger) *VisionAnalyzer {
	return &VisionAnalyzer{
		generator: generator,
		logger:    logger.Named("vision_analyzer"),
	}
}

// Analyze describes the outfit in a base64 image. It never fails: any model or
// parse error is logged and the fallback analysis is returned instead.
func (a *VisionAnalyzer) Analyze(ctx context.Context, imageBase64, mimeType string) *domain.AnalysisResult {
	start := time.Now()

	result, err := a.analyze(ctx, imageBase64, mimeType)
	if err != nil {
		a.logger.Error("Outfit analysis failed",
			zap.String("category", classifyAnalysisError(err)),
			zap.Duration("latency", time.Since(start)),
			zap.Error(err))
		return domain.FallbackAnalysis()
	}

	a.logger.Info("Outfit analysis completed",
		zap.Int("items", len(result.DetectedItems)),
		zap.Duration("latency", time.Since(start)))

	return result
}

func (a *VisionAnalyzer) analyze(ctx context.Context, imageBase64, mimeType string) (*domain.AnalysisResult, error) {
	image, err := base64.StdEncoding.DecodeString(StripDataURLPrefix(imageBase64))
	if err != nil {
		return nil, fmt.Errorf("%w: invalid base64 image: %v", domain.ErrImageRead, err)
	}

	text, err := a.generator.Generate(ctx, OutfitAnalysisPrompt, image, mimeType)
	if err != nil {
		return nil, err
	}

	return ParseAnalysisResponse(text)
}

// ParseAnalysisResponse decodes the JSON object spanning from the first '{'
// to the last '}' of a model response.
func ParseAnalysisResponse(text string) (*domain.AnalysisResult, error) {
	start := strings.IndexByte(text, '{')
	end := strings.LastIndexByte(text, '}')
	if start < 0 || end < start {
		return nil, fmt.Errorf("%w: no JSON object in response", domain.ErrResponseParse)
	}

	var result domain.AnalysisResult
	if err := sonic.UnmarshalString(text[start:end+1], &result); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrResponseParse, err)
	}

	if result.DetectedItems == nil {
		result.DetectedItems = []domain.DetectedItem{}
	}

	return &result, nil
}

// classifyAnalysisError maps an analysis failure to its log category
func classifyAnalysisError(err error) string {
	if errors.Is(err, domain.ErrResponseParse) {
		return ErrorCategoryParse
	}

	var netErr net.Error
	if errors.As(err, &netErr) ||
		errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, domain.ErrVisionUnavailable) ||
		strings.Contains(strings.ToLower(err.Error()), "network") {
		return ErrorCategoryNetwork
	}

	return ErrorCategoryUnknown
}
