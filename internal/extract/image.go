package extract

import (
	"bytes"
	"context"
	"fmt"
	"image/jpeg"
	"image/png"

	"github.com/recipeops/ladle/internal/providers"
	"github.com/recipeops/ladle/internal/recipe"
)

// stripImageMetadata decodes and re-encodes an image, dropping EXIF and any
// other ancillary chunks before the bytes leave the process boundary.
func stripImageMetadata(data []byte) ([]byte, error) {
	var buf bytes.Buffer

	if bytes.HasPrefix(data, []byte{0xFF, 0xD8, 0xFF}) {
		img, err := jpeg.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("failed to decode JPEG: %w", err)
		}
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 92}); err != nil {
			return nil, fmt.Errorf("failed to re-encode JPEG: %w", err)
		}
		return buf.Bytes(), nil
	}

	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode PNG: %w", err)
	}
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to re-encode PNG: %w", err)
	}
	return buf.Bytes(), nil
}

// extractImage sends a photograph straight to the vision service. There is no
// native-text path for an image.
func (e *Extractor) extractImage(ctx context.Context, name string, data []byte) ([]recipe.RawPage, error) {
	res, err := e.vision.ExtractText(ctx, &providers.VisionRequest{
		Image:   data,
		Context: "This is a recipe image.",
	})
	if err != nil {
		return nil, fmt.Errorf("vision extraction failed: %w", err)
	}

	e.log.Debug("image extracted via vision", "file", name, "chars", len(res.Text))

	return []recipe.RawPage{{
		SourceFile: name,
		PageIndex:  0,
		Text:       res.Text,
		Method:     recipe.MethodVision,
		Metrics:    textMetrics(res.Text),
		Provenance: "image/vision",
	}}, nil
}
