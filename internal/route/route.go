// Package route decides, per page, whether native text extraction is
// trustworthy or the page should be re-read by the vision service.
package route

import (
	"strings"
	"unicode/utf8"

	"github.com/recipeops/ladle/internal/recipe"
	"github.com/recipeops/ladle/internal/units"
)

// Thresholds are the minimums a page's native text must clear. They are
// engineering estimates, not measured calibration, so they live in config
// rather than constants.
type Thresholds struct {
	MinChars   int `mapstructure:"min_chars" yaml:"min_chars"`
	MinWords   int `mapstructure:"min_words" yaml:"min_words"`
	MinUOMHits int `mapstructure:"min_uom_hits" yaml:"min_uom_hits"`
}

// DefaultThresholds returns the stock routing thresholds.
func DefaultThresholds() Thresholds {
	return Thresholds{MinChars: 200, MinWords: 30, MinUOMHits: 2}
}

// Decision is the routing verdict for one page, with the raw metrics recorded
// for provenance and later threshold tuning.
type Decision struct {
	Method   recipe.ExtractionMethod `json:"method"`
	Metrics  recipe.PageMetrics      `json:"metrics"`
	Failures int                     `json:"failures"`
}

// Route scores a page's native text against the thresholds. The page goes to
// vision when two or more of the three metrics fail; a single failing metric
// still routes native. The majority rule avoids false-positiving on image-only
// pages that carry a little machine-readable boilerplate (headers, footers).
func Route(nativeText string, th Thresholds) Decision {
	metrics := recipe.PageMetrics{
		CharCount: utf8.RuneCountInString(nativeText),
		WordCount: len(strings.Fields(nativeText)),
		UOMHits:   units.UOMHits(nativeText),
	}

	failures := 0
	if metrics.CharCount < th.MinChars {
		failures++
	}
	if metrics.WordCount < th.MinWords {
		failures++
	}
	if metrics.UOMHits < th.MinUOMHits {
		failures++
	}

	method := recipe.MethodNative
	if failures >= 2 {
		method = recipe.MethodVision
	}

	return Decision{Method: method, Metrics: metrics, Failures: failures}
}
