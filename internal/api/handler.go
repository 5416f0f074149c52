package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"mealplanner/internal/grocery"
	"mealplanner/internal/platform/cache"
	"mealplanner/internal/platform/logger"
	"mealplanner/internal/platform/metrics"
	"mealplanner/internal/recipe"
	"mealplanner/internal/store"
)

const (
	DefaultHouseholdID = "default-household"
	DefaultUserID      = "default-user"

	storeTimeout      = 5 * time.Second
	generationTimeout = 90 * time.Second
)

// RecipeGenerator produces new recipes from free-text preferences.
type RecipeGenerator interface {
	GenerateRecipes(ctx context.Context, preferences string, favoriteIngredients []string) ([]recipe.Recipe, error)
}

// Store defines the persistence operations the handlers use.
type Store interface {
	LoginRecorder

	SetCurrentHome(ctx context.Context, userID, homeID string) (*store.User, error)
	GetUserHouseholds(ctx context.Context, userID string) ([]*store.Household, error)
	SendHomeInvite(ctx context.Context, homeID, inviterID, email string) (store.InviteResult, error)
	GetUserInvites(ctx context.Context, userID string) ([]*store.Household, error)
	AcceptHomeInvite(ctx context.Context, userID, homeID string) (*store.Household, error)
	DeclineHomeInvite(ctx context.Context, userID, homeID string) error

	GetHousehold(ctx context.Context, householdID string) (*store.Household, error)
	CreateHousehold(ctx context.Context, name, ownerID string) (*store.Household, error)
	AddFavoriteRecipe(ctx context.Context, householdID, recipeID string) (*store.Household, error)
	RemoveFavoriteRecipe(ctx context.Context, householdID, recipeID string) (*store.Household, error)
	AddFavoriteIngredient(ctx context.Context, householdID, ingredient string) (*store.Household, error)
	RemoveFavoriteIngredient(ctx context.Context, householdID, ingredient string) (*store.Household, error)
	GetFavoriteRecipes(ctx context.Context, householdID string) ([]*recipe.Recipe, error)

	GetRecipe(ctx context.Context, recipeID string) (*recipe.Recipe, error)
	GetRecipesByHousehold(ctx context.Context, householdID string, includeArchived bool) ([]*recipe.Recipe, error)
	SaveRecipes(ctx context.Context, recipes []recipe.Recipe) ([]recipe.Recipe, error)
	ArchiveRecipe(ctx context.Context, recipeID string) (*recipe.Recipe, error)

	GetCurrentWeekPlan(ctx context.Context, householdID string) (*store.WeekPlan, error)
	AddRecipeToWeekPlan(ctx context.Context, householdID, recipeID string, day store.DayOfWeek, meal store.MealType, addedBy string) (*store.WeekPlan, error)
	RemoveRecipeFromWeekPlan(ctx context.Context, householdID, recipeID string) (*store.WeekPlan, error)
	SetGroceryItemChecked(ctx context.Context, householdID, name string, checked bool) (*store.WeekPlan, error)

	Purge(ctx context.Context) error
	Stats(ctx context.Context) (store.Stats, error)
}

// Handler handles HTTP requests.
type Handler struct {
	Store      Store
	Generator  RecipeGenerator
	Provider   string
	Cache      cache.Cache
	CacheTTL   time.Duration
	Metrics    *metrics.Metrics
	Log        *logger.Logger
	Production bool
}

// NewHandler creates a new Handler. Cache and Metrics are optional.
func NewHandler(s Store, generator RecipeGenerator, log *logger.Logger) *Handler {
	return &Handler{Store: s, Generator: generator, Log: log}
}

// errGeneration marks failures of the upstream model.
var errGeneration = errors.New("recipe generation failed")

// writeError maps store and generator errors onto HTTP statuses.
func writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		status = http.StatusRequestTimeout
	case errors.Is(err, store.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, store.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, store.ErrInvalid):
		status = http.StatusBadRequest
	case errors.Is(err, store.ErrConflict):
		status = http.StatusConflict
	case errors.Is(err, errGeneration):
		status = http.StatusBadGateway
	}
	_ = c.Error(err)
	c.JSON(status, gin.H{"error": err.Error()})
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}

// householdID resolves the household a request acts on: the explicit ID,
// then the signed-in user's current home, then the shared default.
func (h *Handler) householdID(c *gin.Context, explicit string) string {
	if explicit != "" {
		return explicit
	}
	if q := c.Query("householdId"); q != "" {
		return q
	}
	if id, ok := identity(c); ok {
		user, err := h.Store.GetUser(c.Request.Context(), id.ID)
		if err == nil && user.CurrentHomeID != "" {
			return user.CurrentHomeID
		}
	}
	return DefaultHouseholdID
}

func userID(c *gin.Context) string {
	if id, ok := identity(c); ok {
		return id.ID
	}
	return DefaultUserID
}

// GetRecipes lists the household's active recipes, newest first.
func (h *Handler) GetRecipes(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), storeTimeout)
	defer cancel()

	recipes, err := h.Store.GetRecipesByHousehold(ctx, h.householdID(c, ""), false)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, recipes)
}

type generateRequest struct {
	Preferences         string   `json:"preferences"`
	FavoriteIngredients []string `json:"favoriteIngredients"`
	HouseholdID         string   `json:"householdId"`
	Fresh               bool     `json:"fresh"`
}

// GenerateRecipes asks the model for recipes, saves them to the household
// and returns the saved copies. Identical requests within the cache TTL
// reuse the previous model output unless fresh is set.
func (h *Handler) GenerateRecipes(c *gin.Context) {
	var req generateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body: "+err.Error())
		return
	}
	fresh := req.Fresh || c.Query("fresh") == "true"
	householdID := h.householdID(c, req.HouseholdID)

	ctx, cancel := context.WithTimeout(c.Request.Context(), generationTimeout)
	defer cancel()

	key := cache.GenerationKey(req.Preferences, req.FavoriteIngredients)
	generated, hit := h.cachedGeneration(ctx, key, fresh)
	if !hit {
		var err error
		generated, err = h.Generator.GenerateRecipes(ctx, req.Preferences, req.FavoriteIngredients)
		if err != nil {
			h.Metrics.GenerationFailed(h.Provider)
			h.Log.Error("Recipe generation failed", "provider", h.Provider, "household_id", householdID, "error", err)
			if !errors.Is(err, context.DeadlineExceeded) {
				err = fmt.Errorf("%w: %w", errGeneration, err)
			}
			writeError(c, err)
			return
		}
		h.storeGeneration(ctx, key, generated)
	}

	createdBy := userID(c)
	for i := range generated {
		generated[i].HouseholdID = householdID
		generated[i].Source = recipe.SourceAI
		generated[i].CreatedBy = createdBy
		generated[i].IsArchived = false
	}

	saved, err := h.Store.SaveRecipes(ctx, generated)
	if err != nil {
		writeError(c, err)
		return
	}
	h.Metrics.RecipeGenerated(h.Provider, len(saved))
	h.Log.Info("Recipes generated", "provider", h.Provider, "household_id", householdID, "count", len(saved), "cached", hit)
	c.JSON(http.StatusOK, saved)
}

// cachedGeneration returns a previous model output for key. Cache errors
// are logged and treated as a miss.
func (h *Handler) cachedGeneration(ctx context.Context, key string, fresh bool) ([]recipe.Recipe, bool) {
	if h.Cache == nil || fresh {
		return nil, false
	}
	data, ok, err := h.Cache.Get(ctx, key)
	if err != nil {
		h.Log.Warn("Generation cache lookup failed", "error", err)
		return nil, false
	}
	if !ok {
		return nil, false
	}
	var recipes []recipe.Recipe
	if err := json.Unmarshal(data, &recipes); err != nil {
		h.Log.Warn("Discarding unreadable cached generation", "error", err)
		return nil, false
	}
	h.Metrics.CacheHit()
	return recipes, true
}

func (h *Handler) storeGeneration(ctx context.Context, key string, recipes []recipe.Recipe) {
	if h.Cache == nil {
		return
	}
	data, err := json.Marshal(recipes)
	if err != nil {
		h.Log.Warn("Failed to encode generation for cache", "error", err)
		return
	}
	if err := h.Cache.Set(ctx, key, data, h.CacheTTL); err != nil {
		h.Log.Warn("Failed to cache generation", "error", err)
	}
}

// ArchiveRecipe hides a recipe from listings without deleting it.
func (h *Handler) ArchiveRecipe(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), storeTimeout)
	defer cancel()

	r, err := h.Store.ArchiveRecipe(ctx, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

type plannedRecipeView struct {
	store.PlannedRecipe
	Recipe *recipe.Recipe `json:"recipe"`
}

type weekPlanView struct {
	*store.WeekPlan
	Recipes []plannedRecipeView `json:"recipes"`
}

// withRecipes expands each plan entry with the recipe it refers to. Entries
// whose recipe is gone carry a null recipe.
func (h *Handler) withRecipes(ctx context.Context, plan *store.WeekPlan) (weekPlanView, error) {
	view := weekPlanView{WeekPlan: plan, Recipes: make([]plannedRecipeView, 0, len(plan.Recipes))}
	resolved := make(map[string]*recipe.Recipe)
	for _, e := range plan.Recipes {
		r, seen := resolved[e.RecipeID]
		if !seen {
			var err error
			r, err = h.Store.GetRecipe(ctx, e.RecipeID)
			if err != nil && !errors.Is(err, store.ErrNotFound) {
				return weekPlanView{}, err
			}
			resolved[e.RecipeID] = r
		}
		view.Recipes = append(view.Recipes, plannedRecipeView{PlannedRecipe: e, Recipe: r})
	}
	return view, nil
}

func (h *Handler) respondWithPlan(ctx context.Context, c *gin.Context, plan *store.WeekPlan) {
	view, err := h.withRecipes(ctx, plan)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// GetWeekPlan returns the current week's plan, or an empty plan shape when
// the household has none yet.
func (h *Handler) GetWeekPlan(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), storeTimeout)
	defer cancel()

	householdID := h.householdID(c, "")
	plan, err := h.Store.GetCurrentWeekPlan(ctx, householdID)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusOK, gin.H{
			"id":                   nil,
			"householdId":          householdID,
			"recipes":              []plannedRecipeView{},
			"generatedGroceryList": []grocery.Item{},
		})
		return
	}
	if err != nil {
		writeError(c, err)
		return
	}
	h.respondWithPlan(ctx, c, plan)
}

type addToPlanRequest struct {
	RecipeID    string `json:"recipeId" binding:"required"`
	HouseholdID string `json:"householdId"`
	DayOfWeek   string `json:"dayOfWeek" binding:"omitempty,oneof=monday tuesday wednesday thursday friday saturday sunday"`
	MealType    string `json:"mealType" binding:"omitempty,oneof=breakfast lunch dinner snack"`
}

// AddToWeekPlan schedules a recipe in the current week's plan.
func (h *Handler) AddToWeekPlan(c *gin.Context) {
	var req addToPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Recipe ID is required and day/meal must be valid: "+err.Error())
		return
	}
	day := store.Monday
	if req.DayOfWeek != "" {
		day = store.DayOfWeek(req.DayOfWeek)
	}
	meal := store.Dinner
	if req.MealType != "" {
		meal = store.MealType(req.MealType)
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), storeTimeout)
	defer cancel()

	plan, err := h.Store.AddRecipeToWeekPlan(ctx, h.householdID(c, req.HouseholdID), req.RecipeID, day, meal, userID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	h.respondWithPlan(ctx, c, plan)
}

type recipeRefRequest struct {
	RecipeID    string `json:"recipeId" binding:"required"`
	HouseholdID string `json:"householdId"`
}

// RemoveFromWeekPlan drops every entry of a recipe from the current week's plan.
func (h *Handler) RemoveFromWeekPlan(c *gin.Context) {
	var req recipeRefRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Recipe ID is required")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), storeTimeout)
	defer cancel()

	plan, err := h.Store.RemoveRecipeFromWeekPlan(ctx, h.householdID(c, req.HouseholdID), req.RecipeID)
	if err != nil {
		writeError(c, err)
		return
	}
	h.respondWithPlan(ctx, c, plan)
}

// GetGroceryList returns the current week's aggregated list.
func (h *Handler) GetGroceryList(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), storeTimeout)
	defer cancel()

	plan, err := h.Store.GetCurrentWeekPlan(ctx, h.householdID(c, ""))
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusOK, []grocery.Item{})
		return
	}
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, plan.GeneratedGroceryList)
}

type checkItemRequest struct {
	Name        string `json:"name" binding:"required"`
	Checked     *bool  `json:"checked" binding:"required"`
	HouseholdID string `json:"householdId"`
}

// CheckGroceryItem sets the checked-off state of one list item.
func (h *Handler) CheckGroceryItem(c *gin.Context) {
	var req checkItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "name and checked are required")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), storeTimeout)
	defer cancel()

	plan, err := h.Store.SetGroceryItemChecked(ctx, h.householdID(c, req.HouseholdID), req.Name, *req.Checked)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, plan.GeneratedGroceryList)
}
