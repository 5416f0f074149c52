package store

import (
	"time"

	"mealplanner/internal/grocery"
	"mealplanner/internal/recipe"
)

// DayOfWeek is a lowercase English weekday name.
type DayOfWeek string

const (
	Monday    DayOfWeek = "monday"
	Tuesday   DayOfWeek = "tuesday"
	Wednesday DayOfWeek = "wednesday"
	Thursday  DayOfWeek = "thursday"
	Friday    DayOfWeek = "friday"
	Saturday  DayOfWeek = "saturday"
	Sunday    DayOfWeek = "sunday"
)

// Valid reports whether d is one of the seven day names.
func (d DayOfWeek) Valid() bool {
	switch d {
	case Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday:
		return true
	}
	return false
}

// MealType is the slot a planned recipe occupies within a day.
type MealType string

const (
	Breakfast MealType = "breakfast"
	Lunch     MealType = "lunch"
	Dinner    MealType = "dinner"
	Snack     MealType = "snack"
)

// Valid reports whether m is a known meal type.
func (m MealType) Valid() bool {
	switch m {
	case Breakfast, Lunch, Dinner, Snack:
		return true
	}
	return false
}

// User is a signed-in account.
type User struct {
	ID            string    `json:"id"`
	Email         string    `json:"email"`
	Name          string    `json:"name"`
	Picture       string    `json:"picture,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	LastLoginAt   time.Time `json:"lastLoginAt"`
	HouseholdIDs  []string  `json:"householdIds"`
	HomeInvites   []string  `json:"homeInvites"`
	CurrentHomeID string    `json:"currentHomeId,omitempty"`
}

// HouseholdSettings holds per-household defaults.
type HouseholdSettings struct {
	DefaultServings int      `json:"defaultServings"`
	Preferences     []string `json:"preferences"`
}

// Household is a shared home with members, favorites and plans.
type Household struct {
	ID                  string            `json:"id"`
	Name                string            `json:"name"`
	CreatedAt           time.Time         `json:"createdAt"`
	UpdatedAt           time.Time         `json:"updatedAt"`
	OwnerID             string            `json:"ownerId"`
	MemberIDs           []string          `json:"memberIds"`
	Settings            HouseholdSettings `json:"settings"`
	FavoriteIngredients []string          `json:"favoriteIngredients"`
	FavoriteRecipeIDs   []string          `json:"favoriteRecipeIds"`
}

// PlannedRecipe places a recipe on a day and meal of a week plan.
type PlannedRecipe struct {
	RecipeID  string    `json:"recipeId"`
	DayOfWeek DayOfWeek `json:"dayOfWeek"`
	MealType  MealType  `json:"mealType"`
	AddedBy   string    `json:"addedBy"`
	AddedAt   time.Time `json:"addedAt"`
}

// WeekPlan is a household's schedule for one Monday-to-Sunday week.
type WeekPlan struct {
	ID                   string          `json:"id"`
	HouseholdID          string          `json:"householdId"`
	WeekStartDate        string          `json:"weekStartDate"`
	WeekEndDate          string          `json:"weekEndDate"`
	Recipes              []PlannedRecipe `json:"recipes"`
	GeneratedGroceryList []grocery.Item  `json:"generatedGroceryList"`
	CreatedAt            time.Time       `json:"createdAt"`
	UpdatedAt            time.Time       `json:"updatedAt"`
}

// Database is the whole persisted document.
type Database struct {
	Users      map[string]*User          `json:"users"`
	Households map[string]*Household     `json:"households"`
	Recipes    map[string]*recipe.Recipe `json:"recipes"`
	WeekPlans  map[string]*WeekPlan      `json:"weekPlans"`
}

func emptyDatabase() *Database {
	return &Database{
		Users:      map[string]*User{},
		Households: map[string]*Household{},
		Recipes:    map[string]*recipe.Recipe{},
		WeekPlans:  map[string]*WeekPlan{},
	}
}

// fill replaces missing collections with empty ones so documents written
// by older versions load cleanly.
func (db *Database) fill() {
	if db.Users == nil {
		db.Users = map[string]*User{}
	}
	if db.Households == nil {
		db.Households = map[string]*Household{}
	}
	if db.Recipes == nil {
		db.Recipes = map[string]*recipe.Recipe{}
	}
	if db.WeekPlans == nil {
		db.WeekPlans = map[string]*WeekPlan{}
	}
}

// Stats counts the documents in each collection.
type Stats struct {
	Users      int `json:"users"`
	Households int `json:"households"`
	Recipes    int `json:"recipes"`
	WeekPlans  int `json:"weekPlans"`
}
