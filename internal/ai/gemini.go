package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"goride/internal/types"
)

// DefaultGeminiModel is used when no model name is configured.
const DefaultGeminiModel = "gemini-2.5-flash"

// GeminiOracle implements Oracle using Google's Gemini models.
type GeminiOracle struct {
	client  *genai.Client
	suggest *genai.GenerativeModel
	reverse *genai.GenerativeModel
	fares   *genai.GenerativeModel
}

// NewGeminiOracle initializes a Gemini client and one model per operation,
// each with its own response format.
func NewGeminiOracle(ctx context.Context, apiKey, modelName string) (*GeminiOracle, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	if modelName == "" {
		modelName = DefaultGeminiModel
	}

	suggest := client.GenerativeModel(modelName)
	suggest.ResponseMIMEType = "application/json"
	suggest.ResponseSchema = &genai.Schema{
		Type:  genai.TypeArray,
		Items: &genai.Schema{Type: genai.TypeString},
	}
	suggest.SetTemperature(0.4)

	// Reverse geocoding answers in plain text.
	reverse := client.GenerativeModel(modelName)
	reverse.SetTemperature(0.2)

	fares := client.GenerativeModel(modelName)
	fares.ResponseMIMEType = "application/json"
	fares.ResponseSchema = &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"options": {
				Type: genai.TypeArray,
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"type":  {Type: genai.TypeString},
						"price": {Type: genai.TypeInteger},
						"eta":   {Type: genai.TypeInteger, Description: "Estimated arrival in minutes"},
					},
					Required: []string{"type", "price", "eta"},
				},
			},
		},
	}
	fares.SetTemperature(0.4)

	return &GeminiOracle{
		client:  client,
		suggest: suggest,
		reverse: reverse,
		fares:   fares,
	}, nil
}

// Close cleans up the Gemini client resources.
func (g *GeminiOracle) Close() {
	g.client.Close()
}

func (g *GeminiOracle) Suggest(ctx context.Context, query string, near types.Point) ([]string, error) {
	prompt := fmt.Sprintf(`Generate 5 realistic street addresses or landmark names near location (%s) that match the search query: %q.
Focus on popular places, streets, or areas in India.
Return only a JSON array of strings.`, formatPoint(near), query)

	text, err := generate(ctx, g.suggest, prompt)
	if err != nil {
		return nil, err
	}
	return parseSuggestions(text)
}

func (g *GeminiOracle) ReverseGeocode(ctx context.Context, at types.Point) (string, error) {
	prompt := fmt.Sprintf(`Identify a short, realistic street address or landmark for the coordinates %s in India.
Return ONLY the address string, no JSON.`, formatPoint(at))

	text, err := generate(ctx, g.reverse, prompt)
	if err != nil {
		return "", err
	}
	addr := strings.TrimSpace(text)
	if addr == "" {
		return "", fmt.Errorf("%w: empty address", ErrMalformedResponse)
	}
	return addr, nil
}

func (g *GeminiOracle) PriceFares(ctx context.Context, pickup, dropoff string) ([]FareQuote, error) {
	prompt := fmt.Sprintf(`Estimate the distance and fair market price for a ride between %q and %q in India.
Assume a standard city ride pricing model in Indian Rupees (INR).
Return a JSON object with a list of options for Bike, Auto (Rickshaw/TukTuk), Cab (Standard), and Premium.
Ensure prices are realistic numbers (integers).`, pickup, dropoff)

	text, err := generate(ctx, g.fares, prompt)
	if err != nil {
		return nil, err
	}
	return parseFares(text)
}

// generate runs a single prompt and concatenates the text parts of the first candidate.
func generate(ctx context.Context, model *genai.GenerativeModel, prompt string) (string, error) {
	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("gemini generation error: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("%w: no response candidates from Gemini", ErrMalformedResponse)
	}

	var responseText strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			responseText.WriteString(string(txt))
		}
	}
	return responseText.String(), nil
}

// parseSuggestions decodes a JSON array of strings.
func parseSuggestions(text string) ([]string, error) {
	clean := cleanJSONString(text)
	if clean == "" {
		return nil, fmt.Errorf("%w: empty suggestion payload", ErrMalformedResponse)
	}
	var out []string
	if err := json.Unmarshal([]byte(clean), &out); err != nil {
		return nil, fmt.Errorf("%w: %v. Raw: %s", ErrMalformedResponse, err, clean)
	}
	return out, nil
}

// parseFares decodes {"options": [...]}. A missing or non-array options field
// is malformed; per-entry validation is left to the catalog loader.
func parseFares(text string) ([]FareQuote, error) {
	clean := cleanJSONString(text)
	var envelope struct {
		Options json.RawMessage `json:"options"`
	}
	if err := json.Unmarshal([]byte(clean), &envelope); err != nil {
		return nil, fmt.Errorf("%w: %v. Raw: %s", ErrMalformedResponse, err, clean)
	}
	raw := strings.TrimSpace(string(envelope.Options))
	if !strings.HasPrefix(raw, "[") {
		return nil, fmt.Errorf("%w: options is not a list", ErrMalformedResponse)
	}
	var quotes []FareQuote
	if err := json.Unmarshal([]byte(raw), &quotes); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return quotes, nil
}

func formatPoint(p types.Point) string {
	return fmt.Sprintf("%v, %v", p.Lat, p.Lng)
}

// cleanJSONString removes markdown code blocks if present (e.g. ```json ... ```)
func cleanJSONString(input string) string {
	input = strings.TrimSpace(input)
	input = strings.TrimPrefix(input, "```json")
	input = strings.TrimPrefix(input, "```")
	input = strings.TrimSuffix(input, "```")
	return strings.TrimSpace(input)
}
