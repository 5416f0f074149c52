// Package grocery derives a household grocery list from a set of recipes.
package grocery

import (
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"mealplanner/internal/recipe"
)

// Item is one aggregated line of a grocery list.
type Item struct {
	Name          string  `json:"name"`
	TotalQuantity float64 `json:"totalQuantity"`
	Unit          string  `json:"unit"`
	CheckedOff    bool    `json:"checkedOff,omitempty"`
}

type key struct {
	name string
	unit string
}

// NormalizeName is the form used to decide whether two ingredient names are the same.
func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Aggregate merges the ingredients of recipes into one list with a single
// entry per (normalized name, unit). Units are compared verbatim and never
// converted. Each entry keeps the name of the first ingredient seen for it,
// and the result is sorted by name, ignoring case.
func Aggregate(recipes []recipe.Recipe) []Item {
	items := []Item{}
	index := make(map[key]int)

	for _, r := range recipes {
		for _, ing := range r.Ingredients {
			k := key{name: NormalizeName(ing.Name), unit: ing.Unit}
			if i, ok := index[k]; ok {
				items[i].TotalQuantity += ing.Quantity
				continue
			}
			index[k] = len(items)
			items = append(items, Item{
				Name:          ing.Name,
				TotalQuantity: ing.Quantity,
				Unit:          ing.Unit,
			})
		}
	}

	// A Collator keeps internal buffers, so each call gets its own.
	c := collate.New(language.English, collate.IgnoreCase)
	sort.SliceStable(items, func(i, j int) bool {
		return c.CompareString(items[i].Name, items[j].Name) < 0
	})
	return items
}
