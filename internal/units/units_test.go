package units

import (
	"errors"
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestParseQuantity(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		want     float64
		estimate bool
	}{
		{"integer", "2", 2, false},
		{"decimal", "2.5", 2.5, false},
		{"unicode half", "½", 0.5, false},
		{"unicode quarter", "¼", 0.25, false},
		{"unicode third", "⅓", 1.0 / 3.0, false},
		{"unicode eighth", "⅛", 0.125, false},
		{"ascii fraction", "3/4", 0.75, false},
		{"ascii fraction spaced", "3 / 4", 0.75, false},
		{"mixed number", "1 1/2", 1.5, false},
		{"glyph mixed number", "1½", 1.5, false},
		{"range dash", "1-2", 1.5, true},
		{"range en dash", "1–2", 1.5, true},
		{"range to", "1 to 2", 1.5, true},
		{"range decimals", "2.5-3.5", 3, true},
		{"quantity with unit text", "2 cups flour", 2, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, estimate, err := ParseQuantity(tt.input)
			if err != nil {
				t.Fatalf("ParseQuantity(%q) error: %v", tt.input, err)
			}
			if !almostEqual(got, tt.want) {
				t.Errorf("ParseQuantity(%q) = %v, want %v", tt.input, got, tt.want)
			}
			if estimate != tt.estimate {
				t.Errorf("ParseQuantity(%q) estimate = %v, want %v", tt.input, estimate, tt.estimate)
			}
		})
	}

	t.Run("no numeric token", func(t *testing.T) {
		_, _, err := ParseQuantity("to taste")
		if !errors.Is(err, ErrNoQuantity) {
			t.Errorf("expected ErrNoQuantity, got %v", err)
		}
	})

	t.Run("empty input", func(t *testing.T) {
		_, _, err := ParseQuantity("")
		if !errors.Is(err, ErrNoQuantity) {
			t.Errorf("expected ErrNoQuantity, got %v", err)
		}
	})

	t.Run("range mean property", func(t *testing.T) {
		got, estimate, err := ParseQuantity("3-7")
		if err != nil {
			t.Fatal(err)
		}
		if !estimate {
			t.Error("range should be flagged as estimate")
		}
		if !almostEqual(got, 5) {
			t.Errorf("mean of 3-7 = %v, want 5", got)
		}
	})
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"tablespoon", "tbsp"},
		{"Tablespoons", "tbsp"},
		{"tbs", "tbsp"},
		{"T", "tbsp"},
		{"t", "tsp"},
		{"teaspoons", "tsp"},
		{"OZ.", "oz"},
		{"ounces", "oz"},
		{"Pounds", "lb"},
		{"lbs", "lb"},
		{"fluid  ounces", "fl oz"},
		{"Litres", "liter"},
		{"pkg", "package"},
		{"", "each"},
		{"  ", "each"},
		{"smidgen", "smidgen"}, // unknown passes through, not an error
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := Normalize(tt.input); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}

	t.Run("idempotent on canonical codes", func(t *testing.T) {
		for _, code := range []string{"tsp", "tbsp", "oz", "fl oz", "cup", "lb", "g", "kg", "each", "dozen", "smidgen"} {
			once := Normalize(code)
			twice := Normalize(once)
			if once != twice {
				t.Errorf("Normalize not idempotent for %q: %q != %q", code, once, twice)
			}
		}
	})
}

func TestToOunces(t *testing.T) {
	tests := []struct {
		value float64
		code  string
		want  float64
	}{
		{1, "oz", 1},
		{1, "lb", 16},
		{2, "cup", 16},
		{1, "gallon", 128},
		{3, "tbsp", 1.5},
		{100, "g", 3.5274},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			got, err := ToOunces(tt.value, tt.code)
			if err != nil {
				t.Fatalf("ToOunces(%v, %q) error: %v", tt.value, tt.code, err)
			}
			if !almostEqual(got, tt.want) {
				t.Errorf("ToOunces(%v, %q) = %v, want %v", tt.value, tt.code, got, tt.want)
			}
		})
	}

	t.Run("linearity", func(t *testing.T) {
		for _, code := range []string{"oz", "cup", "lb", "ml", "dozen"} {
			single, err := ToOunces(3.3, code)
			if err != nil {
				t.Fatal(err)
			}
			double, err := ToOunces(6.6, code)
			if err != nil {
				t.Fatal(err)
			}
			if !almostEqual(double, 2*single) {
				t.Errorf("ToOunces not linear for %q: %v != 2*%v", code, double, single)
			}
		}
	})

	t.Run("unsupported unit", func(t *testing.T) {
		_, err := ToOunces(1, "smidgen")
		if !errors.Is(err, ErrUnsupportedUnit) {
			t.Errorf("expected ErrUnsupportedUnit, got %v", err)
		}
	})
}

func TestUOMHits(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  int
	}{
		{"empty", "", 0},
		{"no units", "preheat the oven and wait", 0},
		{"single", "2 cups flour", 1},
		{"several", "1 cup milk, 2 tbsp butter, 1 tsp salt", 3},
		{"case insensitive", "1 CUP sugar", 1},
		{"word boundary", "occupied bylbs", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := UOMHits(tt.input); got != tt.want {
				t.Errorf("UOMHits(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}
