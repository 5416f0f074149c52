package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"mealplanner/internal/grocery"
	"mealplanner/internal/recipe"
)

const dateLayout = "2006-01-02"

// WeekStart returns the Monday of t's week in UTC as YYYY-MM-DD.
func WeekStart(t time.Time) string {
	t = t.UTC()
	offset := (int(t.Weekday()) + 6) % 7
	return t.AddDate(0, 0, -offset).Format(dateLayout)
}

// WeekEnd returns the date six days after weekStart.
func WeekEnd(weekStart string) (string, error) {
	start, err := time.Parse(dateLayout, weekStart)
	if err != nil {
		return "", fmt.Errorf("week start %q: %w", weekStart, ErrInvalid)
	}
	return start.AddDate(0, 0, 6).Format(dateLayout), nil
}

func findWeekPlan(db *Database, householdID, weekStart string) *WeekPlan {
	for _, p := range db.WeekPlans {
		if p.HouseholdID == householdID && p.WeekStartDate == weekStart {
			return p
		}
	}
	return nil
}

// GetWeekPlan returns the household's plan for the week starting on weekStart.
func (s *Store) GetWeekPlan(ctx context.Context, householdID, weekStart string) (*WeekPlan, error) {
	var plan *WeekPlan
	err := s.view(ctx, func(db *Database) error {
		plan = findWeekPlan(db, householdID, weekStart)
		if plan == nil {
			return fmt.Errorf("week plan for %s starting %s: %w", householdID, weekStart, ErrNotFound)
		}
		return nil
	})
	return plan, err
}

// GetCurrentWeekPlan returns the plan for the week containing the store's
// current time.
func (s *Store) GetCurrentWeekPlan(ctx context.Context, householdID string) (*WeekPlan, error) {
	return s.GetWeekPlan(ctx, householdID, WeekStart(s.now()))
}

// AddRecipeToWeekPlan appends an entry to the current week's plan, creating
// the plan if needed, and rebuilds its grocery list.
func (s *Store) AddRecipeToWeekPlan(ctx context.Context, householdID, recipeID string, day DayOfWeek, meal MealType, addedBy string) (*WeekPlan, error) {
	if !day.Valid() {
		return nil, fmt.Errorf("day of week %q: %w", day, ErrInvalid)
	}
	if !meal.Valid() {
		return nil, fmt.Errorf("meal type %q: %w", meal, ErrInvalid)
	}

	var plan *WeekPlan
	err := s.update(ctx, func(db *Database) error {
		if _, ok := db.Recipes[recipeID]; !ok {
			return notFound("recipe", recipeID)
		}

		now := s.timestamp()
		weekStart := WeekStart(now)
		plan = findWeekPlan(db, householdID, weekStart)
		if plan == nil {
			weekEnd, err := WeekEnd(weekStart)
			if err != nil {
				return err
			}
			plan = &WeekPlan{
				ID:                   s.newID("weekplan"),
				HouseholdID:          householdID,
				WeekStartDate:        weekStart,
				WeekEndDate:          weekEnd,
				Recipes:              []PlannedRecipe{},
				GeneratedGroceryList: []grocery.Item{},
				CreatedAt:            now,
			}
			db.WeekPlans[plan.ID] = plan
		}

		plan.Recipes = append(plan.Recipes, PlannedRecipe{
			RecipeID:  recipeID,
			DayOfWeek: day,
			MealType:  meal,
			AddedBy:   addedBy,
			AddedAt:   now,
		})
		s.regenerateGroceryList(db, plan)
		plan.UpdatedAt = now
		return nil
	})
	return plan, err
}

// RemoveRecipeFromWeekPlan removes every entry for recipeID from the
// current week's plan and rebuilds its grocery list.
func (s *Store) RemoveRecipeFromWeekPlan(ctx context.Context, householdID, recipeID string) (*WeekPlan, error) {
	var plan *WeekPlan
	err := s.update(ctx, func(db *Database) error {
		now := s.timestamp()
		plan = findWeekPlan(db, householdID, WeekStart(now))
		if plan == nil {
			return fmt.Errorf("week plan for %s: %w", householdID, ErrNotFound)
		}

		kept := make([]PlannedRecipe, 0, len(plan.Recipes))
		for _, e := range plan.Recipes {
			if e.RecipeID != recipeID {
				kept = append(kept, e)
			}
		}
		plan.Recipes = kept
		s.regenerateGroceryList(db, plan)
		plan.UpdatedAt = now
		return nil
	})
	return plan, err
}

// regenerateGroceryList recomputes the plan's list from its entries. An
// entry whose recipe no longer exists contributes nothing; a recipe planned
// twice counts twice. Checked state is not carried over.
func (s *Store) regenerateGroceryList(db *Database, plan *WeekPlan) {
	recipes := make([]recipe.Recipe, 0, len(plan.Recipes))
	for _, e := range plan.Recipes {
		if r, ok := db.Recipes[e.RecipeID]; ok {
			recipes = append(recipes, *r)
		}
	}
	plan.GeneratedGroceryList = grocery.Aggregate(recipes)
	s.metrics.GroceryRegenerated()
}

// SetGroceryItemChecked marks the first item in the current week's list
// whose name matches case-insensitively. An unknown name leaves the plan
// unchanged.
func (s *Store) SetGroceryItemChecked(ctx context.Context, householdID, name string, checked bool) (*WeekPlan, error) {
	var plan *WeekPlan
	err := s.update(ctx, func(db *Database) error {
		now := s.timestamp()
		plan = findWeekPlan(db, householdID, WeekStart(now))
		if plan == nil {
			return fmt.Errorf("week plan for %s: %w", householdID, ErrNotFound)
		}

		target := strings.ToLower(name)
		for i := range plan.GeneratedGroceryList {
			if strings.ToLower(plan.GeneratedGroceryList[i].Name) == target {
				plan.GeneratedGroceryList[i].CheckedOff = checked
				plan.UpdatedAt = now
				break
			}
		}
		return nil
	})
	return plan, err
}
