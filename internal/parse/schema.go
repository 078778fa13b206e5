package parse

import (
	"encoding/json"
	"strings"
)

// recipeSchema constrains the structuring service's output. Quantities come
// back as the raw text the document used ("1 1/2", "2-3", "a pinch") so the
// unit normalizer owns all numeric interpretation.
const recipeSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["name", "ingredients"],
  "additionalProperties": false,
  "properties": {
    "name": {"type": "string", "minLength": 1},
    "description": {"type": "string"},
    "category": {"type": "string"},
    "servings": {"type": "integer", "minimum": 1},
    "prep_minutes": {"type": "integer", "minimum": 0},
    "cook_minutes": {"type": "integer", "minimum": 0},
    "ingredients": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["name"],
        "additionalProperties": false,
        "properties": {
          "name": {"type": "string", "minLength": 1},
          "quantity": {"type": "string"},
          "unit": {"type": "string"}
        }
      }
    },
    "instructions": {
      "type": "array",
      "items": {"type": "string"}
    },
    "allergens": {
      "type": "array",
      "items": {"type": "string"}
    }
  }
}`

// Schema returns the structuring response schema.
func Schema() json.RawMessage {
	return json.RawMessage(recipeSchema)
}

// Categories is the closed set of menu categories recipes are filed under.
var Categories = []string{
	"Appetizer",
	"Breakfast",
	"Dessert",
	"Entree",
	"Salad",
	"Sandwich",
	"Sauce",
	"Side",
	"Soup",
	"Other",
}

// categoryAliases maps common spellings onto the closed category set.
var categoryAliases = map[string]string{
	"appetizers": "Appetizer", "starter": "Appetizer", "starters": "Appetizer",
	"app": "Appetizer", "apps": "Appetizer",

	"breakfasts": "Breakfast", "brunch": "Breakfast",

	"desserts": "Dessert", "sweet": "Dessert", "sweets": "Dessert",

	"entrees": "Entree", "entrée": "Entree", "main": "Entree",
	"mains": "Entree", "main course": "Entree", "main dish": "Entree",
	"dinner": "Entree", "lunch": "Entree",

	"salads": "Salad",

	"sandwiches": "Sandwich", "wrap": "Sandwich", "wraps": "Sandwich",

	"sauces": "Sauce", "dressing": "Sauce", "dressings": "Sauce",
	"condiment": "Sauce", "condiments": "Sauce",

	"sides": "Side", "side dish": "Side", "side dishes": "Side",

	"soups": "Soup", "stew": "Soup", "stews": "Soup",
	"chili": "Soup", "bisque": "Soup",
}

// NormalizeCategory folds an arbitrary category label onto the closed set.
// Unknown or empty labels become "Other".
func NormalizeCategory(raw string) string {
	key := strings.ToLower(strings.TrimSpace(raw))
	if key == "" {
		return "Other"
	}
	for _, c := range Categories {
		if strings.ToLower(c) == key {
			return c
		}
	}
	if c, ok := categoryAliases[key]; ok {
		return c
	}
	return "Other"
}
