package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"mealplanner/internal/recipe"
)

const (
	DefaultModel    = "gemini-2.0-flash"
	temperature     = 0.7
	maxOutputTokens = 16384
)

// ErrEmptyResponse is returned when Gemini answers without any text.
var ErrEmptyResponse = errors.New("empty response from Gemini")

// Client generates recipes with the Gemini API.
type Client struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

// NewClient creates a new Gemini client. An empty model name selects DefaultModel.
func NewClient(ctx context.Context, apiKey, modelName string) (*Client, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}
	if modelName == "" {
		modelName = DefaultModel
	}

	model := client.GenerativeModel(modelName)
	model.SetTemperature(temperature)
	model.SetMaxOutputTokens(maxOutputTokens)
	model.ResponseMIMEType = "application/json"

	return &Client{client: client, model: model}, nil
}

// Close releases the underlying Gemini client.
func (c *Client) Close() error {
	return c.client.Close()
}

// GenerateRecipes asks the model for a batch of recipes matching the
// preferences and validates the answer.
func (c *Client) GenerateRecipes(ctx context.Context, preferences string, favoriteIngredients []string) ([]recipe.Recipe, error) {
	prompt, err := recipe.BuildPrompt(preferences, favoriteIngredients)
	if err != nil {
		return nil, err
	}

	resp, err := c.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return nil, fmt.Errorf("gemini request failed: %w", err)
	}

	text, err := responseText(resp)
	if err != nil {
		return nil, err
	}

	result := recipe.ParseGenerated(text)
	if err := result.Err(); err != nil {
		return nil, err
	}
	return result.Recipes, nil
}

// responseText joins the text parts of the first candidate.
func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", ErrEmptyResponse
	}
	cand := resp.Candidates[0]
	if cand.Content == nil || len(cand.Content.Parts) == 0 {
		if cand.FinishReason != genai.FinishReasonUnspecified && cand.FinishReason != genai.FinishReasonStop {
			return "", fmt.Errorf("%w: finish reason %s", ErrEmptyResponse, cand.FinishReason)
		}
		return "", ErrEmptyResponse
	}

	var sb strings.Builder
	for _, part := range cand.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("unexpected response format from Gemini")
	}
	return sb.String(), nil
}
