package recipe

import "time"

// Source records where a recipe came from.
type Source string

const (
	SourceAI     Source = "ai"
	SourceManual Source = "manual"
)

// Ingredient is a single line item of a recipe.
type Ingredient struct {
	Name     string  `json:"name"`
	Quantity float64 `json:"quantity"`
	Unit     string  `json:"unit"`
}

// Recipe represents a dish saved for a household.
type Recipe struct {
	ID              string       `json:"id"`
	Name            string       `json:"name"`
	Description     string       `json:"description"`
	CookTimeMinutes int          `json:"cookTimeMinutes"`
	Servings        int          `json:"servings"`
	Ingredients     []Ingredient `json:"ingredients"`
	Instructions    []string     `json:"instructions"`
	Tags            []string     `json:"tags"`
	HouseholdID     string       `json:"householdId,omitempty"`
	Source          Source       `json:"source,omitempty"`
	CreatedBy       string       `json:"createdBy,omitempty"`
	IsArchived      bool         `json:"isArchived"`
	CreatedAt       time.Time    `json:"createdAt"`
}
