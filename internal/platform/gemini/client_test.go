package gemini

import (
	"testing"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func candidate(parts ...genai.Part) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{Content: &genai.Content{Parts: parts}}},
	}
}

func TestResponseText(t *testing.T) {
	t.Run("JoinsTextParts", func(t *testing.T) {
		text, err := responseText(candidate(genai.Text(`[{"name":`), genai.Text(`"Soup"}]`)))
		require.NoError(t, err)
		assert.Equal(t, `[{"name":"Soup"}]`, text)
	})

	t.Run("NoCandidates", func(t *testing.T) {
		_, err := responseText(&genai.GenerateContentResponse{})
		assert.ErrorIs(t, err, ErrEmptyResponse)

		_, err = responseText(nil)
		assert.ErrorIs(t, err, ErrEmptyResponse)
	})

	t.Run("BlockedCandidate", func(t *testing.T) {
		resp := &genai.GenerateContentResponse{
			Candidates: []*genai.Candidate{{FinishReason: genai.FinishReasonSafety}},
		}
		_, err := responseText(resp)
		assert.ErrorIs(t, err, ErrEmptyResponse)
		assert.ErrorContains(t, err, "finish reason")
	})

	t.Run("NonTextParts", func(t *testing.T) {
		_, err := responseText(candidate(genai.Blob{MIMEType: "image/png", Data: []byte{1}}))
		assert.ErrorContains(t, err, "unexpected response format")
	})
}
