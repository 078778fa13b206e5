package extract

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"strings"
	"testing"

	"github.com/recipeops/ladle/internal/providers"
	"github.com/recipeops/ladle/internal/recipe"
	"github.com/recipeops/ladle/internal/route"
)

func testExtractor(vision providers.VisionProvider) *Extractor {
	if vision == nil {
		vision = &providers.MockVision{}
	}
	return New(vision, route.DefaultThresholds(), DefaultLimits(), nil)
}

func tinyPNG(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode test PNG: %v", err)
	}
	return buf.Bytes()
}

func TestGate(t *testing.T) {
	e := testExtractor(nil)

	t.Run("macro-enabled formats rejected regardless of MIME", func(t *testing.T) {
		for _, name := range []string{"r.xlsm", "r.docm", "r.xlsb"} {
			_, err := e.Extract(context.Background(), File{Name: name, Data: []byte("PK\x03\x04data")})
			var rejected *RejectedInputError
			if !errors.As(err, &rejected) {
				t.Errorf("%s: expected RejectedInputError, got %v", name, err)
			}
		}
	})

	t.Run("legacy office formats rejected with reason", func(t *testing.T) {
		ole2 := append([]byte{0xD0, 0xCF, 0x11, 0xE0}, []byte("legacy workbook")...)
		for _, name := range []string{"inventory.xls", "recipe.doc"} {
			_, err := e.Extract(context.Background(), File{Name: name, Data: ole2})
			var rejected *RejectedInputError
			if !errors.As(err, &rejected) {
				t.Fatalf("%s: expected RejectedInputError, got %v", name, err)
			}
			if !strings.Contains(rejected.Reason, "legacy") {
				t.Errorf("%s: reason = %q, want the legacy-format explanation", name, rejected.Reason)
			}
		}
	})

	t.Run("ole2 content behind an ooxml extension rejected", func(t *testing.T) {
		ole2 := append([]byte{0xD0, 0xCF, 0x11, 0xE0}, []byte("legacy workbook")...)
		_, err := e.Extract(context.Background(), File{Name: "renamed.xlsx", Data: ole2})
		var rejected *RejectedInputError
		if !errors.As(err, &rejected) {
			t.Fatalf("expected RejectedInputError, got %v", err)
		}
	})

	t.Run("unknown extension rejected", func(t *testing.T) {
		_, err := e.Extract(context.Background(), File{Name: "recipe.exe", Data: []byte("MZ")})
		var rejected *RejectedInputError
		if !errors.As(err, &rejected) {
			t.Fatalf("expected RejectedInputError, got %v", err)
		}
	})

	t.Run("empty file rejected", func(t *testing.T) {
		_, err := e.Extract(context.Background(), File{Name: "recipe.csv"})
		var rejected *RejectedInputError
		if !errors.As(err, &rejected) {
			t.Fatalf("expected RejectedInputError, got %v", err)
		}
	})

	t.Run("oversize file rejected", func(t *testing.T) {
		small := New(&providers.MockVision{}, route.DefaultThresholds(), Limits{MaxFileBytes: 8}, nil)
		_, err := small.Extract(context.Background(), File{Name: "recipe.csv", Data: []byte("ingredient,qty,uom\n")})
		var rejected *RejectedInputError
		if !errors.As(err, &rejected) {
			t.Fatalf("expected RejectedInputError, got %v", err)
		}
	})

	t.Run("declared MIME contradicting extension rejected", func(t *testing.T) {
		_, err := e.Extract(context.Background(), File{
			Name:         "recipe.csv",
			Data:         []byte("flour,16,oz\n"),
			DeclaredMIME: "application/pdf",
		})
		var rejected *RejectedInputError
		if !errors.As(err, &rejected) {
			t.Fatalf("expected RejectedInputError, got %v", err)
		}
	})

	t.Run("octet-stream declaration tolerated", func(t *testing.T) {
		res, err := e.Extract(context.Background(), File{
			Name:         "recipe.csv",
			Data:         []byte("flour,16,oz\n"),
			DeclaredMIME: "application/octet-stream",
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if res.FileType != recipe.FileTypeCSV {
			t.Errorf("file type = %s, want csv", res.FileType)
		}
	})

	t.Run("content magic verified", func(t *testing.T) {
		// .pdf extension but not PDF content
		_, err := e.Extract(context.Background(), File{Name: "recipe.pdf", Data: []byte("just text")})
		var rejected *RejectedInputError
		if !errors.As(err, &rejected) {
			t.Fatalf("expected RejectedInputError, got %v", err)
		}
	})

	t.Run("binary content in csv rejected", func(t *testing.T) {
		_, err := e.Extract(context.Background(), File{Name: "recipe.csv", Data: []byte{'a', 0x00, 'b'}})
		var rejected *RejectedInputError
		if !errors.As(err, &rejected) {
			t.Fatalf("expected RejectedInputError, got %v", err)
		}
	})

	t.Run("content hash recorded", func(t *testing.T) {
		res, err := e.Extract(context.Background(), File{Name: "recipe.csv", Data: []byte("flour,16,oz\n")})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(res.SHA256) != 64 {
			t.Errorf("SHA256 = %q, want 64 hex chars", res.SHA256)
		}
		if res.SizeBytes != int64(len("flour,16,oz\n")) {
			t.Errorf("SizeBytes = %d", res.SizeBytes)
		}
	})

	t.Run("image goes to vision with metadata stripped", func(t *testing.T) {
		vision := &providers.MockVision{ResponseText: "Pancakes\n2 cups flour"}
		e := testExtractor(vision)

		res, err := e.Extract(context.Background(), File{Name: "photo.png", Data: tinyPNG(t)})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(res.Pages) != 1 {
			t.Fatalf("pages = %d, want 1", len(res.Pages))
		}
		page := res.Pages[0]
		if page.Method != recipe.MethodVision {
			t.Errorf("method = %s, want vision", page.Method)
		}
		if page.Text != "Pancakes\n2 cups flour" {
			t.Errorf("text = %q", page.Text)
		}
		if vision.Requests() != 1 {
			t.Errorf("vision calls = %d, want 1", vision.Requests())
		}
	})
}
