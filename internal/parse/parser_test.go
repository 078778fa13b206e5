package parse

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/recipeops/ladle/internal/providers"
	"github.com/recipeops/ladle/internal/recipe"
)

const pancakeJSON = `{
  "name": "Pancakes",
  "description": "Fluffy weekend pancakes.",
  "category": "brunch",
  "servings": 4,
  "prep_minutes": 10,
  "cook_minutes": 15,
  "ingredients": [
    {"name": "flour", "quantity": "2", "unit": "cups"},
    {"name": "milk", "quantity": "1 1/2", "unit": "cups"},
    {"name": "salt", "quantity": "", "unit": ""},
    {"name": "eggs", "quantity": "2-3", "unit": "each"}
  ],
  "instructions": ["Mix dry ingredients.", " Whisk in milk and eggs. ", ""],
  "allergens": ["gluten", "dairy", "egg"]
}`

func textPage(text string) recipe.RawPage {
	return recipe.RawPage{SourceFile: "pancakes.csv", Text: text, Method: recipe.MethodNative}
}

func TestParse(t *testing.T) {
	t.Run("full recipe", func(t *testing.T) {
		p := New(&providers.MockStructuring{ResponseJSON: json.RawMessage(pancakeJSON)}, nil)

		res, err := p.Parse(context.Background(), "pancakes.csv", []recipe.RawPage{textPage("...")})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		d := res.Draft
		if d.Name != "Pancakes" {
			t.Errorf("name = %q", d.Name)
		}
		if d.Category != "Breakfast" {
			t.Errorf("category = %q, want Breakfast (alias of brunch)", d.Category)
		}
		if d.Servings != 4 {
			t.Errorf("servings = %d", d.Servings)
		}
		if d.PrepMinutes == nil || *d.PrepMinutes != 10 {
			t.Errorf("prep_minutes = %v", d.PrepMinutes)
		}
		if d.ID == "" {
			t.Error("draft should get an ID")
		}
		if len(d.Instructions) != 2 {
			t.Errorf("instructions = %v, blank lines should be dropped", d.Instructions)
		}
		if len(d.Allergens) != 3 {
			t.Errorf("allergens = %v", d.Allergens)
		}

		ings := res.Ingredients
		if len(ings) != 4 {
			t.Fatalf("ingredients = %d, want 4 (no line may be dropped)", len(ings))
		}
		if ings[0].Quantity == nil || *ings[0].Quantity != 2 {
			t.Errorf("flour quantity = %v", ings[0].Quantity)
		}
		if ings[1].Quantity == nil || *ings[1].Quantity != 1.5 {
			t.Errorf("milk quantity = %v", ings[1].Quantity)
		}
		if ings[2].Quantity != nil {
			t.Errorf("salt quantity = %v, want nil for missing amount", ings[2].Quantity)
		}
		if ings[2].RawName != "salt" {
			t.Errorf("unquantified line must survive, got %q", ings[2].RawName)
		}
		if ings[3].Quantity == nil || *ings[3].Quantity != 2.5 {
			t.Errorf("eggs quantity = %v, want 2.5 (range midpoint)", ings[3].Quantity)
		}
		if !ings[3].IsEstimate {
			t.Error("range quantity should be flagged as estimate")
		}
	})

	t.Run("provider failure is a parse failure", func(t *testing.T) {
		p := New(&providers.MockStructuring{ShouldFail: true}, nil)

		_, err := p.Parse(context.Background(), "bad.csv", []recipe.RawPage{textPage("...")})
		var pf *ParseFailureError
		if !errors.As(err, &pf) {
			t.Fatalf("expected ParseFailureError, got %v", err)
		}
		if pf.SourceFile != "bad.csv" {
			t.Errorf("SourceFile = %q", pf.SourceFile)
		}
	})

	t.Run("missing name rejected", func(t *testing.T) {
		p := New(&providers.MockStructuring{
			ResponseJSON: json.RawMessage(`{"name": "  ", "ingredients": []}`),
		}, nil)

		_, err := p.Parse(context.Background(), "noname.csv", []recipe.RawPage{textPage("...")})
		var pf *ParseFailureError
		if !errors.As(err, &pf) {
			t.Fatalf("expected ParseFailureError, got %v", err)
		}
	})

	t.Run("no pages", func(t *testing.T) {
		p := New(&providers.MockStructuring{}, nil)
		_, err := p.Parse(context.Background(), "empty.pdf", nil)
		var pf *ParseFailureError
		if !errors.As(err, &pf) {
			t.Fatalf("expected ParseFailureError, got %v", err)
		}
	})
}

func TestJoinPages(t *testing.T) {
	t.Run("single page has no markers", func(t *testing.T) {
		got := joinPages([]recipe.RawPage{{Text: "hello"}})
		if got != "hello" {
			t.Errorf("got %q", got)
		}
	})

	t.Run("multi page markers preserve order", func(t *testing.T) {
		got := joinPages([]recipe.RawPage{
			{PageIndex: 0, Text: "first"},
			{PageIndex: 1, Text: "second"},
		})
		want := "--- PAGE 1 ---\nfirst\n\n--- PAGE 2 ---\nsecond"
		if got != want {
			t.Errorf("got %q, want %q", got, want)
		}
	})
}

func TestNormalizeCategory(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Entree", "Entree"},
		{"entree", "Entree"},
		{"MAIN COURSE", "Entree"},
		{"Stew", "Soup"},
		{"desserts", "Dessert"},
		{"", "Other"},
		{"molecular gastronomy", "Other"},
	}
	for _, tt := range tests {
		if got := NormalizeCategory(tt.in); got != tt.want {
			t.Errorf("NormalizeCategory(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
