package usecase

import (
	"math"
	"strings"
	"unicode/utf8"

	"github.com/trendly/backend/internal/domain"
)

// Factor weights for the overall similarity score.
// Tunable; kept at these values for compatibility with existing rankings.
const (
	categoryWeight    = 0.35
	colorWeight       = 0.35
	styleWeight       = 0.20
	productTypeWeight = 0.10
)

// Color scoring levels
const (
	exactColorScore       = 1.0 // Raw color or a same-family shade appears in product text
	primaryHueFloor       = 0.8 // Product text names the detected color's primary hue
	crossFamilyColorScore = 0.6 // Another primary hue lists the detected color as a shade
	partialColorFloor     = 0.52
	noColorMatchScore     = 0.1 // Never zero so low-confidence items still rank
)

// Style and product type scoring levels
const (
	neutralStyleScore         = 0.5 // No style keywords available
	productTypeMatchScore     = 1.0
	productTypeOverlapCap     = 0.8
	productTypeNoOverlapScore = 0.3
	minProductTypeWordLength  = 4 // Words of 3 characters or fewer are ignored
)

// colorFamily maps a primary hue to the shade names that normalize to it
type colorFamily struct {
	primary string
	shades  []string
}

// colorFamilies is ordered: the first family listing a shade wins normalization
// (charcoal is black, coral and peach are pink, indigo is blue).
var colorFamilies = []colorFamily{
	{"white", []string{"white", "ivory", "cream", "off-white", "pure white", "snow white", "pearl white", "bone", "chalk"}},
	{"black", []string{"black", "charcoal", "dark", "jet black", "onyx", "ebony", "midnight"}},
	{"blue", []string{"blue", "navy", "denim", "cobalt", "royal blue", "sky blue", "light blue", "dark blue", "navy blue", "azure", "sapphire", "teal", "turquoise", "aqua", "cerulean", "indigo"}},
	{"red", []string{"red", "crimson", "scarlet", "burgundy", "cherry red", "fire red", "ruby", "maroon", "vermilion"}},
	{"green", []string{"green", "emerald", "forest green", "olive green", "sage green", "mint green", "kelly green", "hunter green", "lime", "chartreuse", "jade"}},
	{"yellow", []string{"yellow", "gold", "mustard", "lemon", "canary", "amber", "saffron"}},
	{"pink", []string{"pink", "rose", "blush", "salmon", "fuchsia", "magenta", "hot pink", "coral", "peach"}},
	{"purple", []string{"purple", "violet", "lavender", "plum", "amethyst", "indigo", "mauve", "lilac"}},
	{"brown", []string{"brown", "tan", "beige", "khaki", "chocolate", "caramel", "mocha", "taupe", "sepia", "umber"}},
	{"gray", []string{"gray", "grey", "silver", "charcoal", "slate", "smoke", "pewter", "ash", "greige"}},
	{"orange", []string{"orange", "coral", "peach", "apricot", "tangerine", "rust", "terra cotta"}},
}

// categoryAliases maps a catalog category to every label that counts as the same category.
// Categories missing here only match themselves.
var categoryAliases = map[string][]string{
	"tops":        {"tops", "shirt", "blouse", "sweater", "hoodie", "jacket", "blazer", "tee", "t-shirt", "polo"},
	"bottoms":     {"bottoms", "pants", "jeans", "skirt", "shorts", "leggings"},
	"footwear":    {"footwear", "shoes", "boots", "sneakers", "sandals", "heels"},
	"accessories": {"accessories", "bag", "jewelry", "hat", "scarf", "belt", "watch"},
	"ethnic_wear": {"ethnic_wear", "lehenga", "sari", "kurta", "salwar", "traditional"},
}

// productTypeGroups lists garment types and the words that identify them
var productTypeGroups = []struct {
	name     string
	keywords []string
}{
	{"t-shirt", []string{"t-shirt", "tee", "tshirt", "tank", "crew neck", "v-neck"}},
	{"shirt", []string{"shirt", "button-up", "oxford", "polo", "henley"}},
	{"hoodie", []string{"hoodie", "hooded", "sweatshirt"}},
	{"sweater", []string{"sweater", "jumper", "pullover"}},
	{"blouse", []string{"blouse", "top", "tunic"}},
	{"jacket", []string{"jacket", "blazer", "coat"}},
}

// MatchesCategory reports whether a catalog category covers a detected category.
// Containment in either direction against any alias counts as a match.
func MatchesCategory(productCategory, detectedCategory string) bool {
	aliases, ok := categoryAliases[productCategory]
	if !ok {
		aliases = []string{productCategory}
	}

	detected := strings.ToLower(detectedCategory)
	for _, alias := range aliases {
		alias = strings.ToLower(alias)
		if strings.Contains(alias, detected) || strings.Contains(detected, alias) {
			return true
		}
	}
	return false
}

// CalculateSimilarity scores one product against one detected item.
// The analysis supplies outfit-level style context. The result is deterministic.
func CalculateSimilarity(product *domain.Product, item *domain.DetectedItem, analysis *domain.AnalysisResult) domain.Similarity {
	productText := product.SearchText()

	categoryScore := 0.0
	if MatchesCategory(product.Category, item.Category) {
		categoryScore = 1.0
	}

	colorScore := colorSimilarity(productText, item.Color)
	styleScore := styleSimilarity(productText, item, analysis)
	productTypeScore := productTypeSimilarity(productText, item.Description)

	overall := categoryScore*categoryWeight +
		colorScore*colorWeight +
		styleScore*styleWeight +
		productTypeScore*productTypeWeight

	return domain.Similarity{
		Category: categoryScore,
		Color:    colorScore,
		Style:    styleScore,
		Overall:  math.Min(overall, 1.0),
	}
}

// normalizeColor maps a lowercased color name to its color family.
// The second return value is false when no family lists the color.
func normalizeColor(color string) (colorFamily, bool) {
	for _, family := range colorFamilies {
		if containsString(family.shades, color) {
			return family, true
		}
	}
	return colorFamily{primary: color}, false
}

// colorSimilarity scores how well the product text reflects the detected color
func colorSimilarity(productText, detectedColor string) float64 {
	detected := strings.ToLower(detectedColor)
	family, known := normalizeColor(detected)

	if strings.Contains(productText, detected) {
		return exactColorScore
	}
	if known && containsAny(productText, family.shades) {
		return exactColorScore
	}

	// Fraction of the color's words present in the product text
	parts := strings.Split(detected, " ")
	matched := 0
	for _, part := range parts {
		if strings.Contains(productText, part) {
			matched++
		}
	}
	score := float64(matched) / float64(len(parts))

	if known && strings.Contains(productText, family.primary) {
		score = math.Max(score, primaryHueFloor)
	}

	if score == 0 && known {
		for _, other := range colorFamilies {
			if strings.Contains(productText, other.primary) && containsString(other.shades, family.primary) {
				score = crossFamilyColorScore
				break
			}
		}
	}

	if score > 0 {
		return math.Max(score, partialColorFloor)
	}
	return noColorMatchScore
}

// styleSimilarity returns the fraction of style keywords found in the product text
func styleSimilarity(productText string, item *domain.DetectedItem, analysis *domain.AnalysisResult) float64 {
	candidates := []string{item.Style}
	if analysis != nil {
		candidates = append(candidates, analysis.OutfitContext.Style, analysis.OutfitContext.Occasion)
	}
	candidates = append(candidates, item.Attributes...)

	keywords := candidates[:0]
	for _, keyword := range candidates {
		if keyword != "" {
			keywords = append(keywords, keyword)
		}
	}
	if len(keywords) == 0 {
		return neutralStyleScore
	}

	matches := 0
	for _, keyword := range keywords {
		if strings.Contains(productText, strings.ToLower(keyword)) {
			matches++
		}
	}
	return float64(matches) / float64(len(keywords))
}

// productTypeSimilarity compares garment types named in the product text and
// the detected item's description, falling back to shared long words.
func productTypeSimilarity(productText, detectedDescription string) float64 {
	detectedText := strings.ToLower(detectedDescription)

	for _, group := range productTypeGroups {
		if containsAny(productText, group.keywords) && containsAny(detectedText, group.keywords) {
			return productTypeMatchScore
		}
	}

	productWords := longWords(productText)
	detectedWords := longWords(detectedText)

	common := 0
	for _, word := range productWords {
		if containsString(detectedWords, word) {
			common++
		}
	}
	if common == 0 {
		return productTypeNoOverlapScore
	}

	return math.Min(float64(common)/float64(max(len(productWords), len(detectedWords))), productTypeOverlapCap)
}

// longWords splits on single spaces and keeps words long enough to be meaningful.
// Duplicates are kept.
func longWords(text string) []string {
	var words []string
	for _, word := range strings.Split(text, " ") {
		if utf8.RuneCountInString(word) >= minProductTypeWordLength {
			words = append(words, word)
		}
	}
	return words
}

// containsAny reports whether text contains any of the keywords
func containsAny(text string, keywords []string) bool {
	for _, keyword := range keywords {
		if strings.Contains(text, keyword) {
			return true
		}
	}
	return false
}

// containsString reports whether list holds s exactly
func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// GenerateMatchReason describes a similarity breakdown in words
func GenerateMatchReason(similarity domain.Similarity) string {
	var reasons []string

	switch {
	case similarity.Category > 0.8:
		reasons = append(reasons, "Perfect category match")
	case similarity.Category > 0.5:
		reasons = append(reasons, "Good category match")
	}

	switch {
	case similarity.Color > 0.8:
		reasons = append(reasons, "Exact color match")
	case similarity.Color > 0.6:
		reasons = append(reasons, "Similar color")
	}

	switch {
	case similarity.Style > 0.8:
		reasons = append(reasons, "Perfect style match")
	case similarity.Style > 0.5:
		reasons = append(reasons, "Similar style")
	}

	switch {
	case similarity.Overall > 0.8:
		reasons = append(reasons, "Highly similar product type")
	case similarity.Overall > 0.6:
		reasons = append(reasons, "Good alternative option")
	}

	if len(reasons) == 0 {
		return "Similar item found"
	}
	return strings.Join(reasons, ", ")
}

// MatchLabel buckets a confidence score for display
func MatchLabel(confidence float64) string {
	switch {
	case confidence >= 0.8:
		return "High Match"
	case confidence >= 0.6:
		return "Good Match"
	default:
		return "Possible Match"
	}
}
