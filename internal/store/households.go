package store

import (
	"context"
	"fmt"
	"strings"

	"mealplanner/internal/grocery"
	"mealplanner/internal/recipe"
)

const defaultServings = 4

// GetHousehold returns the household with the given ID.
func (s *Store) GetHousehold(ctx context.Context, householdID string) (*Household, error) {
	var home *Household
	err := s.view(ctx, func(db *Database) error {
		h, ok := db.Households[householdID]
		if !ok {
			return notFound("household", householdID)
		}
		home = h
		return nil
	})
	return home, err
}

// CreateHousehold creates a household owned by ownerID, who becomes its
// first member.
func (s *Store) CreateHousehold(ctx context.Context, name, ownerID string) (*Household, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("home name is required: %w", ErrInvalid)
	}

	var home *Household
	err := s.update(ctx, func(db *Database) error {
		now := s.timestamp()
		home = &Household{
			ID:        s.newID("household"),
			Name:      name,
			CreatedAt: now,
			UpdatedAt: now,
			OwnerID:   ownerID,
			MemberIDs: []string{ownerID},
			Settings: HouseholdSettings{
				DefaultServings: defaultServings,
				Preferences:     []string{},
			},
			FavoriteIngredients: []string{},
			FavoriteRecipeIDs:   []string{},
		}
		db.Households[home.ID] = home

		if owner, ok := db.Users[ownerID]; ok {
			owner.HouseholdIDs = append(owner.HouseholdIDs, home.ID)
		}
		return nil
	})
	return home, err
}

// RenameHousehold sets a trimmed, non-empty name.
func (s *Store) RenameHousehold(ctx context.Context, householdID, name string) (*Household, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("home name is required: %w", ErrInvalid)
	}
	return s.updateHousehold(ctx, householdID, func(h *Household) {
		h.Name = name
	})
}

// updateHousehold applies fn to an existing household and bumps UpdatedAt.
func (s *Store) updateHousehold(ctx context.Context, householdID string, fn func(h *Household)) (*Household, error) {
	var home *Household
	err := s.update(ctx, func(db *Database) error {
		h, ok := db.Households[householdID]
		if !ok {
			return notFound("household", householdID)
		}
		fn(h)
		h.UpdatedAt = s.timestamp()
		home = h
		return nil
	})
	return home, err
}

// AddHouseholdMember adds userID to the household and the household to the user.
func (s *Store) AddHouseholdMember(ctx context.Context, householdID, userID string) (*Household, error) {
	var home *Household
	err := s.update(ctx, func(db *Database) error {
		h, ok := db.Households[householdID]
		if !ok {
			return notFound("household", householdID)
		}
		u, ok := db.Users[userID]
		if !ok {
			return notFound("user", userID)
		}
		if !contains(h.MemberIDs, userID) {
			h.MemberIDs = append(h.MemberIDs, userID)
			h.UpdatedAt = s.timestamp()
		}
		if !contains(u.HouseholdIDs, householdID) {
			u.HouseholdIDs = append(u.HouseholdIDs, householdID)
		}
		home = h
		return nil
	})
	return home, err
}

// RemoveHouseholdMember removes a member. The owner cannot be removed.
func (s *Store) RemoveHouseholdMember(ctx context.Context, householdID, userID string) (*Household, error) {
	var home *Household
	err := s.update(ctx, func(db *Database) error {
		h, ok := db.Households[householdID]
		if !ok {
			return notFound("household", householdID)
		}
		if h.OwnerID == userID {
			return fmt.Errorf("cannot remove household owner: %w", ErrConflict)
		}
		h.MemberIDs = without(h.MemberIDs, userID)
		h.UpdatedAt = s.timestamp()

		if u, ok := db.Users[userID]; ok {
			u.HouseholdIDs = without(u.HouseholdIDs, householdID)
			if u.CurrentHomeID == householdID {
				u.CurrentHomeID = ""
			}
		}
		home = h
		return nil
	})
	return home, err
}

// IsHouseholdOwner reports whether userID owns the household.
func (s *Store) IsHouseholdOwner(ctx context.Context, householdID, userID string) (bool, error) {
	var owner bool
	err := s.view(ctx, func(db *Database) error {
		if h, ok := db.Households[householdID]; ok {
			owner = h.OwnerID == userID
		}
		return nil
	})
	return owner, err
}

// IsHouseholdMember reports whether userID belongs to the household.
func (s *Store) IsHouseholdMember(ctx context.Context, householdID, userID string) (bool, error) {
	var member bool
	err := s.view(ctx, func(db *Database) error {
		if h, ok := db.Households[householdID]; ok {
			member = contains(h.MemberIDs, userID)
		}
		return nil
	})
	return member, err
}

// AddFavoriteRecipe is idempotent.
func (s *Store) AddFavoriteRecipe(ctx context.Context, householdID, recipeID string) (*Household, error) {
	return s.updateHousehold(ctx, householdID, func(h *Household) {
		if !contains(h.FavoriteRecipeIDs, recipeID) {
			h.FavoriteRecipeIDs = append(h.FavoriteRecipeIDs, recipeID)
		}
	})
}

// RemoveFavoriteRecipe unmarks a favorite recipe.
func (s *Store) RemoveFavoriteRecipe(ctx context.Context, householdID, recipeID string) (*Household, error) {
	return s.updateHousehold(ctx, householdID, func(h *Household) {
		h.FavoriteRecipeIDs = without(h.FavoriteRecipeIDs, recipeID)
	})
}

// AddFavoriteIngredient stores the ingredient trimmed and lowercased.
func (s *Store) AddFavoriteIngredient(ctx context.Context, householdID, ingredient string) (*Household, error) {
	name := grocery.NormalizeName(ingredient)
	if name == "" {
		return nil, fmt.Errorf("ingredient is required: %w", ErrInvalid)
	}
	return s.updateHousehold(ctx, householdID, func(h *Household) {
		if !contains(h.FavoriteIngredients, name) {
			h.FavoriteIngredients = append(h.FavoriteIngredients, name)
		}
	})
}

// RemoveFavoriteIngredient removes a normalized ingredient from the favorites.
func (s *Store) RemoveFavoriteIngredient(ctx context.Context, householdID, ingredient string) (*Household, error) {
	name := grocery.NormalizeName(ingredient)
	return s.updateHousehold(ctx, householdID, func(h *Household) {
		h.FavoriteIngredients = without(h.FavoriteIngredients, name)
	})
}

// GetFavoriteRecipes resolves a household's favorite recipe IDs, skipping
// recipes that are archived or no longer exist.
func (s *Store) GetFavoriteRecipes(ctx context.Context, householdID string) ([]*recipe.Recipe, error) {
	out := []*recipe.Recipe{}
	err := s.view(ctx, func(db *Database) error {
		h, ok := db.Households[householdID]
		if !ok {
			return nil
		}
		for _, id := range h.FavoriteRecipeIDs {
			if r, ok := db.Recipes[id]; ok && !r.IsArchived {
				out = append(out, r)
			}
		}
		return nil
	})
	return out, err
}
