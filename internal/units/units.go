// Package units provides pure quantity and unit-of-measure normalization.
// Everything here is deterministic: the same input always yields the same
// output, because results feed costing and costing must be reproducible.
package units

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ErrNoQuantity is returned when no numeric token can be found in the input.
// Callers decide whether a missing quantity is acceptable ("salt to taste").
var ErrNoQuantity = errors.New("no numeric quantity found")

// ErrUnsupportedUnit is returned by ToOunces for unit codes without a known
// conversion factor.
var ErrUnsupportedUnit = errors.New("unsupported unit")

// vulgarFractions maps Unicode fraction runes to numerator/denominator pairs.
// Kept as ratios rather than rounded decimals so ⅓ stays exactly 1/3.
var vulgarFractions = map[rune][2]int{
	'½': {1, 2}, '⅓': {1, 3}, '⅔': {2, 3}, '¼': {1, 4}, '¾': {3, 4},
	'⅕': {1, 5}, '⅖': {2, 5}, '⅗': {3, 5}, '⅘': {4, 5},
	'⅙': {1, 6}, '⅚': {5, 6}, '⅐': {1, 7},
	'⅛': {1, 8}, '⅜': {3, 8}, '⅝': {5, 8}, '⅞': {7, 8},
}

var (
	// numberToken matches a bare fraction, a mixed number, or a decimal.
	// The fraction alternative comes first: Go's regexp is leftmost-first,
	// and the decimal alternative would otherwise claim the numerator.
	numberToken = `\d+\s*/\s*\d+|\d+(?:\.\d+)?(?:\s+\d+\s*/\s*\d+)?`

	rangeRe  = regexp.MustCompile(`(?i)(` + numberToken + `)\s*(?:-|–|—|\bto\b)\s*(` + numberToken + `)`)
	numberRe = regexp.MustCompile(numberToken)
	mixedRe  = regexp.MustCompile(`^(\d+(?:\.\d+)?)\s+(\d+)\s*/\s*(\d+)$`)
	fracRe   = regexp.MustCompile(`^(\d+)\s*/\s*(\d+)$`)
)

// expandFractions rewrites Unicode vulgar fractions as ASCII a/b tokens so a
// glyph like "1½" parses as the mixed number "1 1/2".
func expandFractions(text string) string {
	var b strings.Builder
	for _, r := range text {
		if f, ok := vulgarFractions[r]; ok {
			b.WriteString(fmt.Sprintf(" %d/%d", f[0], f[1]))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// parseNumber parses a single token produced by numberToken.
func parseNumber(tok string) (float64, error) {
	tok = strings.TrimSpace(tok)
	if m := mixedRe.FindStringSubmatch(tok); m != nil {
		whole, _ := strconv.ParseFloat(m[1], 64)
		num, _ := strconv.ParseFloat(m[2], 64)
		den, _ := strconv.ParseFloat(m[3], 64)
		if den == 0 {
			return 0, fmt.Errorf("zero denominator in %q", tok)
		}
		return whole + num/den, nil
	}
	if m := fracRe.FindStringSubmatch(tok); m != nil {
		num, _ := strconv.ParseFloat(m[1], 64)
		den, _ := strconv.ParseFloat(m[2], 64)
		if den == 0 {
			return 0, fmt.Errorf("zero denominator in %q", tok)
		}
		return num / den, nil
	}
	return strconv.ParseFloat(tok, 64)
}

// ParseQuantity extracts a numeric quantity from free text.
//
// Supported forms: plain integers and decimals, Unicode vulgar fractions,
// ASCII fractions ("1/2"), mixed numbers ("1 1/2"), and ranges ("1-2",
// "1 to 2") which resolve to the arithmetic mean with estimate=true.
func ParseQuantity(text string) (value float64, estimate bool, err error) {
	expanded := expandFractions(text)

	if m := rangeRe.FindStringSubmatch(expanded); m != nil {
		lo, loErr := parseNumber(m[1])
		hi, hiErr := parseNumber(m[2])
		if loErr == nil && hiErr == nil {
			return (lo + hi) / 2, true, nil
		}
	}

	tok := numberRe.FindString(expanded)
	if tok == "" {
		return 0, false, ErrNoQuantity
	}
	v, err := parseNumber(tok)
	if err != nil {
		return 0, false, ErrNoQuantity
	}
	return v, false, nil
}

// unitSynonyms maps cleaned unit spellings to canonical codes.
var unitSynonyms = map[string]string{
	// Volume
	"teaspoon": "tsp", "teaspoons": "tsp",
	"tablespoon": "tbsp", "tablespoons": "tbsp", "tbs": "tbsp",
	"fluid ounce": "fl oz", "fluid ounces": "fl oz", "floz": "fl oz",
	"ounce": "oz", "ounces": "oz",
	"cups": "cup", "c": "cup",
	"pints": "pint", "pt": "pint",
	"quarts": "quart", "qt": "quart",
	"gallons": "gallon", "gal": "gallon",
	"milliliter": "ml", "milliliters": "ml", "millilitre": "ml", "millilitres": "ml",
	"liters": "liter", "litre": "liter", "litres": "liter", "l": "liter",

	// Mass
	"pound": "lb", "pounds": "lb", "lbs": "lb",
	"gram": "g", "grams": "g", "gr": "g",
	"kilogram": "kg", "kilograms": "kg", "kgs": "kg",

	// Count
	"doz": "dozen",
	"ea": "each", "piece": "each", "pieces": "each",
	"bunches": "bunch",
	"cases":   "case",
	"cans":    "can",
	"jars":    "jar",
	"bags":    "bag",
	"boxes":   "box",
	"packages": "package", "pkg": "package",
}

// Normalize maps a unit spelling to its canonical code. Unknown tokens pass
// through cleaned rather than failing; the mapper treats them as uncostable.
// Normalize is idempotent: canonical codes map to themselves.
func Normalize(unit string) string {
	trimmed := strings.TrimSpace(unit)
	if trimmed == "" {
		return "each"
	}
	// Single-letter T is tablespoon by culinary convention; lowercase t is
	// teaspoon. Check before case folding destroys the distinction.
	switch trimmed {
	case "T":
		return "tbsp"
	case "t":
		return "tsp"
	}

	cleaned := strings.ToLower(trimmed)
	cleaned = strings.ReplaceAll(cleaned, ".", "")
	cleaned = strings.Join(strings.Fields(cleaned), " ")

	if canonical, ok := unitSynonyms[cleaned]; ok {
		return canonical
	}
	return cleaned
}

// ouncesPerUnit holds conversion multipliers to ounces. Volume factors
// approximate standard culinary conversions (water/milk density); count
// factors are rough catalog-average estimates.
var ouncesPerUnit = map[string]float64{
	"oz": 1.0,
	"lb": 16.0,
	"g":  0.035274,
	"kg": 35.274,

	"tsp":    0.17,
	"tbsp":   0.5,
	"fl oz":  1.0,
	"cup":    8.0,
	"pint":   16.0,
	"quart":  32.0,
	"gallon": 128.0,
	"ml":     0.033814,
	"liter":  33.814,

	"dozen":   24.0,
	"each":    8.0,
	"bunch":   4.0,
	"case":    192.0,
	"can":     14.5,
	"jar":     16.0,
	"bag":     32.0,
	"box":     16.0,
	"package": 16.0,
}

// ToOunces converts a quantity in the given canonical unit code to ounces.
func ToOunces(value float64, code string) (float64, error) {
	factor, ok := ouncesPerUnit[code]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedUnit, code)
	}
	return value * factor, nil
}

// uomTokenRe matches any known unit token on word boundaries. Used only as a
// confidence signal for extraction routing, never for normalization.
var uomTokenRe = regexp.MustCompile(`(?i)\b(oz|lb|lbs|cup|cups|tsp|tbsp|tablespoon|teaspoon|gram|grams|kg|ml|liter|litre|quart|gallon|pint|each|bunch|case|dozen)\b`)

// UOMHits counts occurrences of known unit tokens in free text.
func UOMHits(text string) int {
	if text == "" {
		return 0
	}
	return len(uomTokenRe.FindAllStringIndex(text, -1))
}
