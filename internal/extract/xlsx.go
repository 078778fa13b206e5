package extract

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/recipeops/ladle/internal/recipe"
)

// extractXLSX reads a spreadsheet workbook. Each sheet is processed
// independently with header detection and becomes its own RawPage, in
// workbook sheet order.
func (e *Extractor) extractXLSX(name string, data []byte) ([]recipe.RawPage, error) {
	wb, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer wb.Close()

	var pages []recipe.RawPage
	for i, sheet := range wb.GetSheetList() {
		rows, err := wb.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
		}

		text, structured := rowsToText(rows)
		if text == "" {
			continue // empty sheet
		}

		provenance := "xlsx/freetext"
		if structured {
			provenance = "xlsx/structured"
		}

		e.log.Debug("sheet extracted", "file", name, "sheet", sheet, "rows", len(rows), "structured", structured)

		pages = append(pages, recipe.RawPage{
			SourceFile: name,
			PageIndex:  i,
			Text:       text,
			Method:     recipe.MethodNative,
			Metrics:    textMetrics(text),
			Provenance: provenance,
		})
	}

	if len(pages) == 0 {
		return nil, fmt.Errorf("workbook contains no readable sheets")
	}
	return pages, nil
}
