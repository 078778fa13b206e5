// Package mapper resolves parsed ingredient lines against the product
// catalog and costs them.
package mapper

import (
	"log/slog"
	"strings"

	"github.com/agext/levenshtein"

	"github.com/recipeops/ladle/internal/catalog"
	"github.com/recipeops/ladle/internal/recipe"
	"github.com/recipeops/ladle/internal/units"
)

// Tiers holds the confidence cutoffs for match classification, on a 0-100
// scale. Scores at or above Auto map silently; scores in [Review, Auto) map
// but are flagged; anything below Review stays unmapped.
type Tiers struct {
	Auto   float64 `mapstructure:"auto" yaml:"auto"`
	Review float64 `mapstructure:"review" yaml:"review"`
}

// DefaultTiers returns the stock cutoffs.
func DefaultTiers() Tiers {
	return Tiers{Auto: 90, Review: 70}
}

var matchParams = levenshtein.NewParams()

// Mapper matches ingredients to catalog products using normalized edit
// distance.
type Mapper struct {
	snap  *catalog.Snapshot
	tiers Tiers
	log   *slog.Logger
}

// New creates a Mapper over one catalog snapshot.
func New(snap *catalog.Snapshot, tiers Tiers, log *slog.Logger) *Mapper {
	if log == nil {
		log = slog.Default()
	}
	return &Mapper{snap: snap, tiers: tiers, log: log}
}

// Resolve maps and costs every parsed line. Output order matches input
// order and no line is ever dropped. The returned total is the sum of the
// non-nil line costs.
func (m *Mapper) Resolve(parsed []recipe.ParsedIngredient) ([]recipe.ResolvedIngredient, recipe.MappingStats, float64) {
	resolved := make([]recipe.ResolvedIngredient, 0, len(parsed))
	stats := recipe.MappingStats{Total: len(parsed)}
	total := 0.0

	for _, ing := range parsed {
		r := m.resolveOne(ing)
		switch r.Tier {
		case recipe.TierAuto:
			stats.Auto++
		case recipe.TierReview:
			stats.Review++
		default:
			stats.Unmapped++
		}
		if r.LineCost != nil {
			total += *r.LineCost
		}
		resolved = append(resolved, r)
	}

	if stats.Total > 0 {
		stats.MatchPct = float64(stats.Auto+stats.Review) / float64(stats.Total) * 100
	}

	return resolved, stats, total
}

func (m *Mapper) resolveOne(ing recipe.ParsedIngredient) recipe.ResolvedIngredient {
	unit := units.Normalize(ing.Unit)
	r := recipe.ResolvedIngredient{
		Name:       ing.RawName,
		Unit:       unit,
		IsEstimate: ing.IsEstimate,
		Tier:       recipe.TierUnmapped,
	}

	if ing.Quantity != nil {
		oz, err := units.ToOunces(*ing.Quantity, unit)
		if err == nil {
			r.QuantityOz = recipe.Float64Ptr(oz)
		} else {
			m.log.Debug("unit not convertible, leaving quantity unset",
				"ingredient", ing.RawName, "unit", unit)
		}
	}

	product, score := m.bestMatch(ing.RawName)
	if product == nil || score < m.tiers.Review {
		return r
	}

	r.Product = recipe.StringPtr(product.Name)
	r.Confidence = recipe.Float64Ptr(score)
	r.PricePerOz = recipe.Float64Ptr(product.PricePerOz)
	if r.QuantityOz != nil {
		r.LineCost = recipe.Float64Ptr(*r.QuantityOz * product.PricePerOz)
	}
	if score >= m.tiers.Auto {
		r.Tier = recipe.TierAuto
	} else {
		r.Tier = recipe.TierReview
	}
	return r
}

// bestMatch returns the highest-scoring catalog product for a raw ingredient
// name, scored 0-100. The snapshot is name-sorted, so ties resolve to the
// lexicographically first product and results are stable across runs.
func (m *Mapper) bestMatch(raw string) (*catalog.Product, float64) {
	needle := strings.ToLower(strings.TrimSpace(raw))
	if needle == "" {
		return nil, 0
	}

	var (
		best      *catalog.Product
		bestScore float64
	)
	products := m.snap.Products()
	for i := range products {
		score := levenshtein.Similarity(needle, strings.ToLower(products[i].Name), matchParams) * 100
		if score > bestScore {
			best = &products[i]
			bestScore = score
		}
	}
	return best, bestScore
}
