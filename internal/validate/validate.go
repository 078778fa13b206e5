// Package validate is the final gate before a draft recipe is persisted. A
// structural schema check runs first; semantic rules then separate hard
// failures from reviewer warnings.
package validate

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/recipeops/ladle/internal/recipe"
)

// recordSchema is the structural contract for a persisted recipe record.
const recordSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["id", "name", "category", "ingredients", "source"],
  "properties": {
    "id": {"type": "string", "minLength": 1},
    "name": {"type": "string"},
    "category": {"type": "string", "minLength": 1},
    "servings": {"type": "integer"},
    "ingredients": {"type": "array"},
    "total_cost": {"type": "number", "minimum": 0},
    "source": {
      "type": "object",
      "required": ["filename", "sha256"],
      "properties": {
        "filename": {"type": "string", "minLength": 1},
        "sha256": {"type": "string", "minLength": 64, "maxLength": 64}
      }
    }
  }
}`

var compiledRecordSchema = jsonschema.MustCompileString("record.json", recordSchema)

// Options tunes the warning rules.
type Options struct {
	// UnmappedWarnRatio is the fraction of unmapped ingredients above which
	// a warning is raised. Zero means any unmapped line warns.
	UnmappedWarnRatio float64 `mapstructure:"unmapped_warn_ratio" yaml:"unmapped_warn_ratio"`
}

// DefaultOptions returns the stock rule settings.
func DefaultOptions() Options {
	return Options{UnmappedWarnRatio: 0.5}
}

// Check runs the full validation pass and returns the verdict with messages
// in rule order. Hard failures make the draft invalid; warnings alone leave
// it saveable.
func Check(d *recipe.DraftRecipe, opts Options) recipe.ValidationResult {
	var hard, soft []string

	if msg := structural(d); msg != "" {
		hard = append(hard, msg)
	}

	if strings.TrimSpace(d.Name) == "" {
		hard = append(hard, "recipe name is empty")
	}
	if d.Servings < 1 {
		hard = append(hard, fmt.Sprintf("servings must be at least 1, got %d", d.Servings))
	}
	for i, ing := range d.Ingredients {
		if strings.TrimSpace(ing.Name) == "" {
			hard = append(hard, fmt.Sprintf("ingredient %d has an empty name", i+1))
		}
		if ing.QuantityOz != nil && *ing.QuantityOz < 0 {
			hard = append(hard, fmt.Sprintf("ingredient %q has negative quantity %.2f oz", ing.Name, *ing.QuantityOz))
		}
	}

	if len(d.Ingredients) == 0 {
		soft = append(soft, "recipe has no ingredients")
	} else {
		unmapped := d.UnmappedCount()
		ratio := float64(unmapped) / float64(len(d.Ingredients))
		if unmapped > 0 && ratio > opts.UnmappedWarnRatio {
			soft = append(soft, fmt.Sprintf("%d of %d ingredients are unmapped", unmapped, len(d.Ingredients)))
		}
		for _, ing := range d.Ingredients {
			if ing.Tier == recipe.TierReview {
				soft = append(soft, fmt.Sprintf("ingredient %q mapped to %q needs review (confidence %.0f)",
					ing.Name, deref(ing.Product), deref(ing.Confidence)))
			}
		}
	}

	switch {
	case len(hard) > 0:
		return recipe.ValidationResult{Status: recipe.StatusInvalid, Messages: append(hard, soft...)}
	case len(soft) > 0:
		return recipe.ValidationResult{Status: recipe.StatusWarnings, Messages: soft}
	default:
		return recipe.ValidationResult{Status: recipe.StatusValid}
	}
}

// structural checks the draft against the record schema. Returns a message
// on failure, "" on success.
func structural(d *recipe.DraftRecipe) string {
	raw, err := json.Marshal(d)
	if err != nil {
		return fmt.Sprintf("record not serializable: %v", err)
	}
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fmt.Sprintf("record not serializable: %v", err)
	}
	if err := compiledRecordSchema.Validate(doc); err != nil {
		return fmt.Sprintf("record fails structural check: %v", err)
	}
	return ""
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}
