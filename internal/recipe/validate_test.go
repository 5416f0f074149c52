package recipe

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validBatch = `[
  {
    "id": "recipe-1",
    "name": "Garlic Pasta",
    "description": "Quick weeknight pasta.",
    "cookTimeMinutes": 20,
    "servings": 2,
    "ingredients": [
      {"name": "spaghetti", "quantity": 200, "unit": "g"},
      {"name": "garlic", "quantity": 0, "unit": "cloves"}
    ],
    "instructions": ["Boil pasta.", "Fry garlic."],
    "tags": ["quick", " Italian "]
  }
]`

func TestParseGenerated_Valid(t *testing.T) {
	res := ParseGenerated(validBatch)
	require.True(t, res.OK(), "unexpected errors: %v", res.Errors)
	require.NoError(t, res.Err())
	require.Len(t, res.Recipes, 1)

	r := res.Recipes[0]
	assert.Equal(t, "Garlic Pasta", r.Name)
	assert.Equal(t, 20, r.CookTimeMinutes)
	assert.Equal(t, 2, r.Servings)
	assert.Equal(t, []Ingredient{
		{Name: "spaghetti", Quantity: 200, Unit: "g"},
		{Name: "garlic", Quantity: 0, Unit: "cloves"},
	}, r.Ingredients)
	assert.Equal(t, []string{"quick", "Italian"}, r.Tags)
	assert.Empty(t, r.ID, "ids are assigned by the store, not the model")
}

func TestParseGenerated_CodeFences(t *testing.T) {
	for _, wrapped := range []string{
		"```json\n" + validBatch + "\n```",
		"```\n" + validBatch + "\n```",
		"Here you go:\n" + validBatch + "\nEnjoy!",
	} {
		res := ParseGenerated(wrapped)
		assert.True(t, res.OK(), "errors for %q: %v", wrapped[:10], res.Errors)
		assert.Len(t, res.Recipes, 1)
	}
}

func TestParseGenerated_EmptyArray(t *testing.T) {
	res := ParseGenerated("[]")
	assert.True(t, res.OK())
	assert.NotNil(t, res.Recipes)
	assert.Empty(t, res.Recipes)
}

func TestParseGenerated_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr string
	}{
		{
			name:    "not json",
			input:   "sorry, I cannot help with that",
			wantErr: "not a JSON array",
		},
		{
			name:    "object instead of array",
			input:   `{"name": "Soup"}`,
			wantErr: "not a JSON array",
		},
		{
			name:    "element is not an object",
			input:   `["soup"]`,
			wantErr: "recipes[0]: expected an object",
		},
		{
			name:    "missing ingredient quantity",
			input:   `[{"name":"Soup","description":"d","cookTimeMinutes":10,"servings":2,"ingredients":[{"name":"water","unit":"cup"}],"instructions":[],"tags":[]}]`,
			wantErr: "recipes[0].ingredients[0].quantity is required",
		},
		{
			name:    "quantity is a string",
			input:   `[{"name":"Soup","description":"d","cookTimeMinutes":10,"servings":2,"ingredients":[{"name":"water","quantity":"1","unit":"cup"}],"instructions":[],"tags":[]}]`,
			wantErr: "expected float64",
		},
		{
			name:    "missing instructions",
			input:   `[{"name":"Soup","description":"d","cookTimeMinutes":10,"servings":2,"ingredients":[],"tags":[]}]`,
			wantErr: "recipes[0].instructions is required",
		},
		{
			name:    "cook time out of range",
			input:   `[{"name":"Soup","description":"d","cookTimeMinutes":1e300,"servings":2,"ingredients":[],"instructions":[],"tags":[]}]`,
			wantErr: "recipes[0].cookTimeMinutes must be at most 10080",
		},
		{
			name:    "negative servings",
			input:   `[{"name":"Soup","description":"d","cookTimeMinutes":10,"servings":-3,"ingredients":[],"instructions":[],"tags":[]}]`,
			wantErr: "recipes[0].servings must be at least 0",
		},
		{
			name:    "null tag",
			input:   `[{"name":"Soup","description":"d","cookTimeMinutes":10,"servings":2,"ingredients":[],"instructions":["x"],"tags":[null]}]`,
			wantErr: "recipes[0].tags[0] is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := ParseGenerated(tt.input)
			require.False(t, res.OK())
			assert.Nil(t, res.Recipes)
			assert.ErrorIs(t, res.Err(), ErrInvalidRecipes)
			assert.Contains(t, res.Err().Error(), tt.wantErr)
		})
	}
}

func TestBuildPrompt(t *testing.T) {
	t.Run("preferences", func(t *testing.T) {
		prompt, err := BuildPrompt("  vegetarian, quick  ", nil)
		require.NoError(t, err)
		assert.Contains(t, prompt, "Generate recipes based on these preferences: vegetarian, quick\n")
		assert.NotContains(t, prompt, "favorite ingredients")
	})

	t.Run("blank preferences", func(t *testing.T) {
		prompt, err := BuildPrompt("   ", nil)
		require.NoError(t, err)
		assert.Contains(t, prompt, "Generate a diverse set of recipes suitable for a typical week.")
	})

	t.Run("favorite ingredients", func(t *testing.T) {
		prompt, err := BuildPrompt("", []string{"feta", " ", "lemon"})
		require.NoError(t, err)
		assert.Contains(t, prompt, "favorite ingredients are: feta, lemon.")
		assert.True(t, strings.HasSuffix(strings.TrimSpace(prompt), "no explanations."))
	})
}
