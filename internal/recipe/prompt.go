package recipe

import (
	"bytes"
	_ "embed"
	"fmt"
	"strings"
	"text/template"
)

//go:embed prompt.md
var generationPrompt string

var promptTemplate = template.Must(template.New("generate").
	Funcs(template.FuncMap{"join": strings.Join}).
	Parse(generationPrompt))

type promptData struct {
	Preferences         string
	FavoriteIngredients []string
}

// BuildPrompt renders the generation prompt for the given free-text preferences.
// Blank preferences ask for a varied week of recipes.
func BuildPrompt(preferences string, favoriteIngredients []string) (string, error) {
	var favorites []string
	for _, f := range favoriteIngredients {
		if f = strings.TrimSpace(f); f != "" {
			favorites = append(favorites, f)
		}
	}

	var buf bytes.Buffer
	err := promptTemplate.Execute(&buf, promptData{
		Preferences:         strings.TrimSpace(preferences),
		FavoriteIngredients: favorites,
	})
	if err != nil {
		return "", fmt.Errorf("failed to render generation prompt: %w", err)
	}
	return buf.String(), nil
}
