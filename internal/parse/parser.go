// Package parse turns extracted page text into a structured recipe draft by
// way of the structuring service. Every ingredient line the service returns
// survives into the draft; lines the quantity parser cannot interpret keep a
// nil quantity instead of being dropped.
package parse

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/recipeops/ladle/internal/providers"
	"github.com/recipeops/ladle/internal/recipe"
	"github.com/recipeops/ladle/internal/units"
)

// ParseFailureError marks a file whose text could not be structured into a
// recipe. It is terminal for the file, not for the batch.
type ParseFailureError struct {
	SourceFile string
	Err        error
}

func (e *ParseFailureError) Error() string {
	return fmt.Sprintf("failed to structure %s: %v", e.SourceFile, e.Err)
}

func (e *ParseFailureError) Unwrap() error { return e.Err }

// Result pairs the recipe skeleton with its pre-normalization ingredient
// lines.
type Result struct {
	Draft       recipe.DraftRecipe
	Ingredients []recipe.ParsedIngredient
}

// Parser drives the structuring service.
type Parser struct {
	client providers.StructuringClient
	log    *slog.Logger
}

// New creates a Parser.
func New(client providers.StructuringClient, log *slog.Logger) *Parser {
	if log == nil {
		log = slog.Default()
	}
	return &Parser{client: client, log: log}
}

// llmRecipe mirrors the structuring response schema.
type llmRecipe struct {
	Name         string          `json:"name"`
	Description  string          `json:"description"`
	Category     string          `json:"category"`
	Servings     int             `json:"servings"`
	PrepMinutes  *int            `json:"prep_minutes"`
	CookMinutes  *int            `json:"cook_minutes"`
	Ingredients  []llmIngredient `json:"ingredients"`
	Instructions []string        `json:"instructions"`
	Allergens    []string        `json:"allergens"`
}

type llmIngredient struct {
	Name     string `json:"name"`
	Quantity string `json:"quantity"`
	Unit     string `json:"unit"`
}

// Parse structures the page texts of one source file into a draft skeleton.
// Pages are concatenated with markers so the service sees document order.
func (p *Parser) Parse(ctx context.Context, sourceName string, pages []recipe.RawPage) (*Result, error) {
	if len(pages) == 0 {
		return nil, &ParseFailureError{SourceFile: sourceName, Err: errors.New("no pages to parse")}
	}

	res, err := p.client.Structure(ctx, &providers.StructureRequest{
		Text:       joinPages(pages),
		SourceName: sourceName,
		Schema:     Schema(),
		RequestID:  uuid.NewString(),
	})
	if err != nil {
		return nil, &ParseFailureError{SourceFile: sourceName, Err: err}
	}

	var raw llmRecipe
	if err := json.Unmarshal(res.JSON, &raw); err != nil {
		return nil, &ParseFailureError{SourceFile: sourceName, Err: fmt.Errorf("failed to decode structured response: %w", err)}
	}
	if strings.TrimSpace(raw.Name) == "" {
		return nil, &ParseFailureError{SourceFile: sourceName, Err: errors.New("structured response has no recipe name")}
	}

	p.log.Debug("recipe structured",
		"file", sourceName, "provider", res.Provider, "model", res.Model,
		"attempts", res.Attempts, "ingredients", len(raw.Ingredients))

	ingredients := make([]recipe.ParsedIngredient, 0, len(raw.Ingredients))
	for _, ing := range raw.Ingredients {
		name := strings.TrimSpace(ing.Name)
		if name == "" {
			continue
		}
		parsed := recipe.ParsedIngredient{
			RawName: name,
			Unit:    strings.TrimSpace(ing.Unit),
		}
		qty, estimate, qErr := units.ParseQuantity(ing.Quantity)
		if qErr == nil {
			parsed.Quantity = recipe.Float64Ptr(qty)
			parsed.IsEstimate = estimate
		}
		ingredients = append(ingredients, parsed)
	}

	draft := recipe.DraftRecipe{
		ID:           uuid.NewString(),
		Name:         strings.TrimSpace(raw.Name),
		Description:  strings.TrimSpace(raw.Description),
		Category:     NormalizeCategory(raw.Category),
		Servings:     raw.Servings,
		PrepMinutes:  raw.PrepMinutes,
		CookMinutes:  raw.CookMinutes,
		Instructions: cleanLines(raw.Instructions),
		Allergens:    cleanLines(raw.Allergens),
	}

	return &Result{Draft: draft, Ingredients: ingredients}, nil
}

// joinPages concatenates page texts with markers preserving document order.
func joinPages(pages []recipe.RawPage) string {
	if len(pages) == 1 {
		return pages[0].Text
	}
	var b strings.Builder
	for i, page := range pages {
		if i > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "--- PAGE %d ---\n", page.PageIndex+1)
		b.WriteString(page.Text)
	}
	return b.String()
}

func cleanLines(in []string) []string {
	var out []string
	for _, s := range in {
		if t := strings.TrimSpace(s); t != "" {
			out = append(out, t)
		}
	}
	return out
}
