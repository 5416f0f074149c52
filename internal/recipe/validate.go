package recipe

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ErrInvalidRecipes is returned when a model's output fails validation.
var ErrInvalidRecipes = errors.New("generated recipes are invalid")

// ValidationResult is the outcome of checking a generated recipe batch.
// Exactly one of Recipes or Errors is populated.
type ValidationResult struct {
	Recipes []Recipe
	Errors  []string
}

// OK reports whether the batch passed validation.
func (r ValidationResult) OK() bool {
	return len(r.Errors) == 0
}

// Err folds the validation messages into a single error, or nil when OK.
func (r ValidationResult) Err() error {
	if r.OK() {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrInvalidRecipes, strings.Join(r.Errors, "; "))
}

// Pointer fields distinguish a missing value from its zero value.
type rawIngredient struct {
	Name     *string  `json:"name" validate:"required"`
	Quantity *float64 `json:"quantity" validate:"required"`
	Unit     *string  `json:"unit" validate:"required"`
}

type rawRecipe struct {
	Name            *string         `json:"name" validate:"required"`
	Description     *string         `json:"description" validate:"required"`
	CookTimeMinutes *float64        `json:"cookTimeMinutes" validate:"required,min=0,max=10080"`
	Servings        *float64        `json:"servings" validate:"required,min=0,max=1000"`
	Ingredients     []rawIngredient `json:"ingredients" validate:"required,dive"`
	Instructions    []*string       `json:"instructions" validate:"required,dive,required"`
	Tags            []*string       `json:"tags" validate:"required,dive,required"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ParseGenerated decodes and validates the raw text returned by a model.
// Markdown code fences around the JSON array are tolerated.
func ParseGenerated(raw string) ValidationResult {
	body := extractJSONArray(raw)

	var elements []json.RawMessage
	if err := json.Unmarshal([]byte(body), &elements); err != nil {
		return ValidationResult{Errors: []string{fmt.Sprintf("response is not a JSON array of recipes: %v", err)}}
	}

	var (
		recipes []Recipe
		errs    []string
	)
	for i, el := range elements {
		var rr rawRecipe
		if err := json.Unmarshal(el, &rr); err != nil {
			errs = append(errs, describeDecodeError(i, err))
			continue
		}
		if err := validate.Struct(rr); err != nil {
			errs = append(errs, describeValidationError(i, err)...)
			continue
		}
		recipes = append(recipes, rr.toRecipe())
	}

	if len(errs) > 0 {
		return ValidationResult{Errors: errs}
	}
	if recipes == nil {
		recipes = []Recipe{}
	}
	return ValidationResult{Recipes: recipes}
}

func (rr rawRecipe) toRecipe() Recipe {
	r := Recipe{
		Name:            *rr.Name,
		Description:     *rr.Description,
		CookTimeMinutes: int(math.Round(*rr.CookTimeMinutes)),
		Servings:        int(math.Round(*rr.Servings)),
		Ingredients:     make([]Ingredient, 0, len(rr.Ingredients)),
		Instructions:    make([]string, 0, len(rr.Instructions)),
		Tags:            make([]string, 0, len(rr.Tags)),
	}
	for _, ing := range rr.Ingredients {
		r.Ingredients = append(r.Ingredients, Ingredient{
			Name:     *ing.Name,
			Quantity: *ing.Quantity,
			Unit:     *ing.Unit,
		})
	}
	for _, step := range rr.Instructions {
		r.Instructions = append(r.Instructions, *step)
	}
	for _, tag := range rr.Tags {
		r.Tags = append(r.Tags, strings.TrimSpace(*tag))
	}
	return r
}

func extractJSONArray(raw string) string {
	text := strings.TrimSpace(raw)
	if strings.HasPrefix(text, "```") {
		if nl := strings.IndexByte(text, '\n'); nl != -1 {
			text = text[nl+1:]
		} else {
			text = strings.TrimPrefix(text, "```")
		}
		text = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(text), "```"))
	}
	if strings.HasPrefix(text, "[") {
		return text
	}

	start := strings.Index(text, "[")
	end := strings.LastIndex(text, "]")
	if start == -1 || end == -1 || start > end {
		return text
	}
	return text[start : end+1]
}

func describeDecodeError(i int, err error) string {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		if typeErr.Field == "" {
			return fmt.Sprintf("recipes[%d]: expected an object, got %s", i, typeErr.Value)
		}
		return fmt.Sprintf("recipes[%d].%s: expected %s, got %s", i, typeErr.Field, typeErr.Type, typeErr.Value)
	}
	return fmt.Sprintf("recipes[%d]: %v", i, err)
}

func describeValidationError(i int, err error) []string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []string{fmt.Sprintf("recipes[%d]: %v", i, err)}
	}

	out := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		path := fe.Namespace()
		if dot := strings.IndexByte(path, '.'); dot != -1 {
			path = path[dot+1:]
		}
		switch fe.Tag() {
		case "min":
			out = append(out, fmt.Sprintf("recipes[%d].%s must be at least %s", i, path, fe.Param()))
		case "max":
			out = append(out, fmt.Sprintf("recipes[%d].%s must be at most %s", i, path, fe.Param()))
		default:
			out = append(out, fmt.Sprintf("recipes[%d].%s is %s", i, path, fe.Tag()))
		}
	}
	return out
}
