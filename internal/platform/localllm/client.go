package localllm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"mealplanner/internal/recipe"
)

// Client talks to an OpenAI-compatible chat completions endpoint, such as
// one served by LM Studio or llama.cpp.
type Client struct {
	httpClient *http.Client
	apiURL     string
	model      string
}

// NewClient creates a new client for the local LLM.
func NewClient(apiURL, model string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 5 * time.Minute},
		apiURL:     apiURL,
		model:      model,
	}
}

// Request represents the request body for the local LLM.
type Request struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens"`
}

// Message represents a message in the request or the response.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Response represents the response from the local LLM.
type Response struct {
	Choices []Choice `json:"choices"`
}

// Choice represents a choice in the response.
type Choice struct {
	Message Message `json:"message"`
}

// GenerateContent sends a single user message and returns the first choice's text.
func (c *Client) GenerateContent(ctx context.Context, text string) (string, error) {
	reqBody := Request{
		Model:       c.model,
		Messages:    []Message{{Role: "user", Content: text}},
		Temperature: 0.7,
		MaxTokens:   16384,
	}

	reqBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(reqBytes))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("received non-OK status code %d: %s", resp.StatusCode, bytes.TrimSpace(body))
	}

	var llmResp Response
	if err := json.NewDecoder(resp.Body).Decode(&llmResp); err != nil {
		return "", fmt.Errorf("failed to decode response body: %w", err)
	}

	if len(llmResp.Choices) == 0 || llmResp.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("no content found in response")
	}
	return llmResp.Choices[0].Message.Content, nil
}

// GenerateRecipes renders the generation prompt, sends it and validates the answer.
func (c *Client) GenerateRecipes(ctx context.Context, preferences string, favoriteIngredients []string) ([]recipe.Recipe, error) {
	prompt, err := recipe.BuildPrompt(preferences, favoriteIngredients)
	if err != nil {
		return nil, err
	}

	text, err := c.GenerateContent(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("failed to generate content: %w", err)
	}

	result := recipe.ParseGenerated(text)
	if err := result.Err(); err != nil {
		return nil, err
	}
	return result.Recipes, nil
}
