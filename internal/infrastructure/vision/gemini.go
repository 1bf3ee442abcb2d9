package vision

import (
	"context"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/trendly/backend/internal/domain"
)

// ApplicationJSON is the response MIME type requested from Gemini
const ApplicationJSON = "application/json"

// DefaultGeminiModel is used when no model is configured
const DefaultGeminiModel = "gemini-1.5-flash"

// Gemini generates outfit descriptions with Google Gemini
type Gemini struct {
	client *genai.Client
	model  *genai.GenerativeModel
	gate   *gate
}

// NewGemini creates a Gemini generator
func NewGemini(ctx context.Context, apiKey, model string, limits Limits) (*Gemini, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	if model == "" {
		model = DefaultGeminiModel
	}

	generativeModel := client.GenerativeModel(model)
	generativeModel.ResponseMIMEType = ApplicationJSON
	generativeModel.ResponseSchema = analysisSchema
	generativeModel.Temperature = ptr(float32(0.2))
	generativeModel.TopP = ptr(float32(0.8))

	return &Gemini{
		client: client,
		model:  generativeModel,
		gate:   newGate(limits),
	}, nil
}

// Generate sends the prompt and image to Gemini and returns the text reply
func (g *Gemini) Generate(ctx context.Context, prompt string, image []byte, mimeType string) (string, error) {
	ctx, done, err := g.gate.enter(ctx)
	if err != nil {
		return "", err
	}
	defer done()

	resp, err := g.model.GenerateContent(ctx,
		genai.Text(prompt),
		genai.Blob{MIMEType: mimeType, Data: image},
	)
	if err != nil {
		return "", fmt.Errorf("gemini API error: %w", err)
	}

	return responseText(resp)
}

// Close releases the underlying client
func (g *Gemini) Close() error {
	return g.client.Close()
}

// responseText returns the first text part of the first candidate
func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("%w: no candidates", domain.ErrModelResponse)
	}

	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok && len(text) > 0 {
			return string(text), nil
		}
	}

	return "", fmt.Errorf("%w: no text part", domain.ErrModelResponse)
}

// analysisSchema mirrors the AnalysisResult JSON shape
var analysisSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"detectedItems": {
			Type: genai.TypeArray,
			Items: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"category":    {Type: genai.TypeString, Description: "Garment category such as tops, bottoms or footwear"},
					"description": {Type: genai.TypeString, Description: "Item details including color and cut"},
					"color":       {Type: genai.TypeString, Description: "Primary color from the allowed vocabulary"},
					"style":       {Type: genai.TypeString, Description: "Style label such as casual or formal"},
					"confidence":  {Type: genai.TypeNumber, Description: "Detection confidence between 0 and 1"},
					"attributes":  {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
				},
				Required: []string{"category", "description", "color", "style", "confidence", "attributes"},
			},
		},
		"outfitContext": {
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"occasion": {Type: genai.TypeString},
				"style":    {Type: genai.TypeString},
				"season":   {Type: genai.TypeString},
			},
			Required: []string{"occasion", "style", "season"},
		},
		"modelContext": {
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"bodyType":        {Type: genai.TypeString},
				"skinTone":        {Type: genai.TypeString},
				"stylePreference": {Type: genai.TypeString},
			},
		},
	},
	Required: []string{"detectedItems", "outfitContext"},
}

func ptr[T any](v T) *T { return &v }
