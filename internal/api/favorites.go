package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"mealplanner/internal/recipe"
	"mealplanner/internal/store"
)

// GetFavoriteRecipes returns the household's favorite recipe IDs and the active recipes they refer to.
func (h *Handler) GetFavoriteRecipes(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), storeTimeout)
	defer cancel()

	householdID := h.householdID(c, "")
	home, err := h.Store.GetHousehold(ctx, householdID)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusOK, gin.H{"favoriteRecipeIds": []string{}, "recipes": []*recipe.Recipe{}})
		return
	}
	if err != nil {
		writeError(c, err)
		return
	}
	recipes, err := h.Store.GetFavoriteRecipes(ctx, householdID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"favoriteRecipeIds": home.FavoriteRecipeIDs, "recipes": recipes})
}

// AddFavoriteRecipe marks a recipe as a household favorite.
func (h *Handler) AddFavoriteRecipe(c *gin.Context) {
	h.changeFavoriteRecipe(c, h.Store.AddFavoriteRecipe)
}

// RemoveFavoriteRecipe unmarks a favorite recipe.
func (h *Handler) RemoveFavoriteRecipe(c *gin.Context) {
	h.changeFavoriteRecipe(c, h.Store.RemoveFavoriteRecipe)
}

type householdChange func(ctx context.Context, householdID, value string) (*store.Household, error)

func (h *Handler) changeFavoriteRecipe(c *gin.Context, change householdChange) {
	var req recipeRefRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Recipe ID is required")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), storeTimeout)
	defer cancel()

	home, err := change(ctx, h.householdID(c, req.HouseholdID), req.RecipeID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "favoriteRecipeIds": home.FavoriteRecipeIDs})
}

// GetFavoriteIngredients returns the household's favorite ingredients.
func (h *Handler) GetFavoriteIngredients(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), storeTimeout)
	defer cancel()

	home, err := h.Store.GetHousehold(ctx, h.householdID(c, ""))
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusOK, gin.H{"favoriteIngredients": []string{}})
		return
	}
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"favoriteIngredients": home.FavoriteIngredients})
}

type ingredientRequest struct {
	Ingredient  string `json:"ingredient" binding:"required"`
	HouseholdID string `json:"householdId"`
}

// AddFavoriteIngredient adds a normalized ingredient name to the favorites.
func (h *Handler) AddFavoriteIngredient(c *gin.Context) {
	h.changeFavoriteIngredient(c, h.Store.AddFavoriteIngredient)
}

// RemoveFavoriteIngredient removes an ingredient from the favorites.
func (h *Handler) RemoveFavoriteIngredient(c *gin.Context) {
	h.changeFavoriteIngredient(c, h.Store.RemoveFavoriteIngredient)
}

func (h *Handler) changeFavoriteIngredient(c *gin.Context, change householdChange) {
	var req ingredientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Ingredient is required")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), storeTimeout)
	defer cancel()

	home, err := change(ctx, h.householdID(c, req.HouseholdID), req.Ingredient)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "favoriteIngredients": home.FavoriteIngredients})
}
