package extract

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"github.com/recipeops/ladle/internal/recipe"
)

// extractCSV reads delimited text with the same header-detection policy as
// the spreadsheet adapter. A CSV is a single non-paginated unit: one RawPage.
func (e *Extractor) extractCSV(name string, data []byte) ([]recipe.RawPage, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1 // ragged rows are common in hand-made files
	r.TrimLeadingSpace = true

	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse CSV: %w", err)
	}

	text, structured := rowsToText(rows)
	provenance := "csv/freetext"
	if structured {
		provenance = "csv/structured"
	}

	e.log.Debug("csv extracted", "file", name, "rows", len(rows), "structured", structured)

	return []recipe.RawPage{{
		SourceFile: name,
		PageIndex:  0,
		Text:       text,
		Method:     recipe.MethodNative,
		Metrics:    textMetrics(text),
		Provenance: provenance,
	}}, nil
}
