package store

import (
	"context"
	"sort"

	"mealplanner/internal/recipe"
)

// GetRecipe returns the recipe with the given ID.
func (s *Store) GetRecipe(ctx context.Context, recipeID string) (*recipe.Recipe, error) {
	var out *recipe.Recipe
	err := s.view(ctx, func(db *Database) error {
		r, ok := db.Recipes[recipeID]
		if !ok {
			return notFound("recipe", recipeID)
		}
		out = r
		return nil
	})
	return out, err
}

// GetRecipesByHousehold lists a household's recipes, newest first.
func (s *Store) GetRecipesByHousehold(ctx context.Context, householdID string, includeArchived bool) ([]*recipe.Recipe, error) {
	out := []*recipe.Recipe{}
	err := s.view(ctx, func(db *Database) error {
		for _, r := range db.Recipes {
			if r.HouseholdID != householdID || (r.IsArchived && !includeArchived) {
				continue
			}
			out = append(out, r)
		}
		sort.SliceStable(out, func(i, j int) bool {
			if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
				return out[i].CreatedAt.After(out[j].CreatedAt)
			}
			return out[i].ID < out[j].ID
		})
		return nil
	})
	return out, err
}

// SaveRecipes stores the recipes under fresh IDs with a creation time and
// returns the stored copies in input order.
func (s *Store) SaveRecipes(ctx context.Context, recipes []recipe.Recipe) ([]recipe.Recipe, error) {
	saved := make([]recipe.Recipe, 0, len(recipes))
	err := s.update(ctx, func(db *Database) error {
		now := s.timestamp()
		for _, r := range recipes {
			r.ID = s.newID("recipe")
			r.CreatedAt = now
			stored := r
			db.Recipes[r.ID] = &stored
			saved = append(saved, r)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return saved, nil
}

// ArchiveRecipe hides a recipe from listings.
func (s *Store) ArchiveRecipe(ctx context.Context, recipeID string) (*recipe.Recipe, error) {
	var out *recipe.Recipe
	err := s.update(ctx, func(db *Database) error {
		r, ok := db.Recipes[recipeID]
		if !ok {
			return notFound("recipe", recipeID)
		}
		r.IsArchived = true
		out = r
		return nil
	})
	return out, err
}
