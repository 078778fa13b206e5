package route

import (
	"strings"
	"testing"

	"github.com/recipeops/ladle/internal/recipe"
)

// pageText builds text with a controllable number of characters, words and
// unit-of-measure tokens.
func pageText(words, uomHits int) string {
	parts := make([]string, 0, words)
	for i := 0; i < uomHits; i++ {
		parts = append(parts, "cup")
	}
	for len(parts) < words {
		parts = append(parts, "word")
	}
	return strings.Join(parts, " ")
}

func TestRoute(t *testing.T) {
	th := DefaultThresholds()

	t.Run("all metrics pass routes native", func(t *testing.T) {
		// 60 words, 5 UOM hits, well over 200 chars.
		text := pageText(60, 5)
		d := Route(text, th)
		if d.Method != recipe.MethodNative {
			t.Errorf("method = %s, want native (metrics %+v)", d.Method, d.Metrics)
		}
		if d.Failures != 0 {
			t.Errorf("failures = %d, want 0", d.Failures)
		}
	})

	t.Run("all metrics fail routes vision", func(t *testing.T) {
		d := Route("10 chars ok", th)
		if d.Method != recipe.MethodVision {
			t.Errorf("method = %s, want vision (metrics %+v)", d.Method, d.Metrics)
		}
		if d.Failures != 3 {
			t.Errorf("failures = %d, want 3", d.Failures)
		}
	})

	t.Run("empty page routes vision", func(t *testing.T) {
		d := Route("", th)
		if d.Method != recipe.MethodVision {
			t.Errorf("method = %s, want vision", d.Method)
		}
	})

	t.Run("exactly one failing metric stays native", func(t *testing.T) {
		// Plenty of chars and words, zero UOM hits.
		text := pageText(60, 0)
		d := Route(text, th)
		if d.Metrics.UOMHits != 0 {
			t.Fatalf("test setup: UOMHits = %d, want 0", d.Metrics.UOMHits)
		}
		if d.Failures != 1 {
			t.Fatalf("failures = %d, want 1 (metrics %+v)", d.Failures, d.Metrics)
		}
		if d.Method != recipe.MethodNative {
			t.Errorf("method = %s, want native", d.Method)
		}
	})

	t.Run("two failing metrics route vision", func(t *testing.T) {
		// Short boilerplate with enough UOM tokens: chars and words fail.
		d := Route("oz oz oz", th)
		if d.Metrics.UOMHits < th.MinUOMHits {
			t.Fatalf("test setup: UOMHits = %d", d.Metrics.UOMHits)
		}
		if d.Failures != 2 {
			t.Fatalf("failures = %d, want 2 (metrics %+v)", d.Failures, d.Metrics)
		}
		if d.Method != recipe.MethodVision {
			t.Errorf("method = %s, want vision", d.Method)
		}
	})

	t.Run("characters counted as runes not bytes", func(t *testing.T) {
		// 100 three-byte runes: 300 bytes but only 100 characters, which is
		// under the 200-char minimum. Byte counting would wrongly pass it.
		text := strings.Repeat("釧", 100)
		d := Route(text, th)
		if d.Metrics.CharCount != 100 {
			t.Fatalf("char count = %d, want 100 runes", d.Metrics.CharCount)
		}
		if d.Method != recipe.MethodVision {
			t.Errorf("method = %s, want vision (metrics %+v)", d.Method, d.Metrics)
		}
	})

	t.Run("custom thresholds respected", func(t *testing.T) {
		loose := Thresholds{MinChars: 1, MinWords: 1, MinUOMHits: 0}
		d := Route("x", loose)
		if d.Method != recipe.MethodNative {
			t.Errorf("method = %s, want native with loose thresholds", d.Method)
		}
	})
}
