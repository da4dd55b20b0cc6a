package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"verdebot/models"

	genai "github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

const extractionPrompt = `You extract structured booking info from customer messages to a gardening business.
Return JSON only, with keys: serviceCandidates (array of: hedge-trim, tree-prune, rope-prune, lawn-mow, garden-cleanup, leaf-collection, pest-treatment, green-waste-disposal), fieldHints (object mapping field names to string values), bookingSignal, affirmative, negative, cancelSignal (booleans), dayPreference (ISO date or null), partOfDay ("morning", "afternoon" or ""), startMinute (minutes from midnight or null).
Message: %s`

// GeminiExtractor parses messages with Gemini and falls back to the
// keyword extractor when the model is unreachable or returns garbage.
// It also serves as the advisory collaborator for informational turns.
type GeminiExtractor struct {
	model    *genai.GenerativeModel
	fallback *KeywordExtractor
	logger   *zap.Logger
}

// NewGeminiExtractor builds a Gemini-backed extractor.
func NewGeminiExtractor(apiKey string, fallback *KeywordExtractor, logger *zap.Logger) (*GeminiExtractor, error) {
	ctx := context.Background()
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	model := client.GenerativeModel("models/gemini-1.5-pro")
	return &GeminiExtractor{model: model, fallback: fallback, logger: logger}, nil
}

func (g *GeminiExtractor) Extract(ctx context.Context, text string, session *models.Session) (models.Extraction, error) {
	raw, err := g.generate(ctx, fmt.Sprintf(extractionPrompt, text))
	if err != nil {
		g.logger.Warn("gemini extraction failed, using keyword fallback", zap.Error(err))
		return g.fallback.Extract(ctx, text, session)
	}
	var ext models.Extraction
	if err := json.Unmarshal([]byte(stripCodeFences(raw)), &ext); err != nil {
		g.logger.Warn("gemini returned unparsable extraction", zap.Error(err))
		return g.fallback.Extract(ctx, text, session)
	}
	return ext, nil
}

// Advise answers an out-of-scope gardening question in a sentence or two.
func (g *GeminiExtractor) Advise(ctx context.Context, text string) (string, error) {
	prompt := "You are a practical gardener. Answer briefly and concretely.\nQuestion: " + text
	answer, err := g.generate(ctx, prompt)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(answer), nil
}

func (g *GeminiExtractor) generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("gemini generate error: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("gemini returned no candidates")
	}
	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if textPart, ok := part.(genai.Text); ok {
			sb.WriteString(string(textPart))
		}
	}
	return sb.String(), nil
}

func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
