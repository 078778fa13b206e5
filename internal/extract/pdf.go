package extract

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/recipeops/ladle/internal/providers"
	"github.com/recipeops/ladle/internal/recipe"
	"github.com/recipeops/ladle/internal/route"
)

// extractPDF processes a paginated document page by page: native text first,
// then the confidence router decides whether the page is re-read by the
// vision service. A single document can legitimately mix methods across
// pages; the output preserves original page order.
func (e *Extractor) extractPDF(ctx context.Context, name string, data []byte) ([]recipe.RawPage, error) {
	pageCount, err := api.PageCount(bytes.NewReader(data), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to read page count: %w", err)
	}
	if e.limits.MaxPDFPages > 0 && pageCount > e.limits.MaxPDFPages {
		return nil, &RejectedInputError{
			Filename: name,
			Reason:   fmt.Sprintf("page count %d exceeds limit %d", pageCount, e.limits.MaxPDFPages),
		}
	}

	// Poppler tools work on paths, not readers.
	tmpDir, err := os.MkdirTemp("", "ladle-pdf-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	pdfPath := filepath.Join(tmpDir, "source.pdf")
	if err := os.WriteFile(pdfPath, data, 0o600); err != nil {
		return nil, fmt.Errorf("failed to write temp PDF: %w", err)
	}

	pages := make([]recipe.RawPage, 0, pageCount)
	for pageNum := 1; pageNum <= pageCount; pageNum++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		nativeText, err := pdfPageText(ctx, pdfPath, pageNum)
		if err != nil {
			// A page the text layer chokes on still gets a vision shot.
			e.log.Warn("native text extraction failed", "file", name, "page", pageNum, "error", err)
			nativeText = ""
		}

		decision := route.Route(nativeText, e.thresholds)
		page := recipe.RawPage{
			SourceFile: name,
			PageIndex:  pageNum - 1,
			Text:       nativeText,
			Method:     recipe.MethodNative,
			Metrics:    decision.Metrics,
			Provenance: "pdf/native",
		}

		if decision.Method == recipe.MethodVision {
			visionText, vErr := e.visionPage(ctx, pdfPath, tmpDir, pageNum)
			if vErr != nil {
				// Degrade to whatever native text we have rather than losing
				// the page; provenance records the fallback for the reviewer.
				e.log.Warn("vision extraction failed, keeping low-confidence text",
					"file", name, "page", pageNum, "error", vErr)
				page.Provenance = "pdf/native-fallback"
			} else {
				page.Text = visionText
				page.Method = recipe.MethodVision
				page.Provenance = "pdf/vision"
			}
		}

		e.log.Debug("page routed",
			"file", name, "page", pageNum, "method", page.Method,
			"chars", decision.Metrics.CharCount, "words", decision.Metrics.WordCount,
			"uom_hits", decision.Metrics.UOMHits)

		pages = append(pages, page)
	}

	return pages, nil
}

// pdfPageText extracts one page's embedded text layer using pdftotext
// (poppler-utils).
func pdfPageText(ctx context.Context, pdfPath string, pageNum int) (string, error) {
	pageStr := strconv.Itoa(pageNum)
	cmd := exec.CommandContext(ctx, "pdftotext",
		"-f", pageStr,
		"-l", pageStr,
		"-layout",
		pdfPath,
		"-", // stdout
	)

	var out, errBuf bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errBuf

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("pdftotext failed: %w (output: %s)", err, errBuf.String())
	}
	return strings.TrimSpace(out.String()), nil
}

// visionPage renders one page to PNG with pdftoppm and submits it to the
// vision service.
func (e *Extractor) visionPage(ctx context.Context, pdfPath, tmpDir string, pageNum int) (string, error) {
	img, err := renderPage(ctx, pdfPath, tmpDir, pageNum)
	if err != nil {
		return "", err
	}

	res, err := e.vision.ExtractText(ctx, &providers.VisionRequest{
		Image:     img,
		PageIndex: pageNum - 1,
		Context:   fmt.Sprintf("This is page %d of a recipe document.", pageNum),
	})
	if err != nil {
		return "", err
	}
	return res.Text, nil
}

// renderPage rasterizes a single PDF page using pdftoppm (poppler-utils).
func renderPage(ctx context.Context, pdfPath, tmpDir string, pageNum int) ([]byte, error) {
	outputPrefix := filepath.Join(tmpDir, fmt.Sprintf("page_%d", pageNum))
	pageStr := strconv.Itoa(pageNum)

	cmd := exec.CommandContext(ctx, "pdftoppm",
		"-png",
		"-f", pageStr,
		"-l", pageStr,
		"-r", "150",
		"-singlefile",
		pdfPath,
		outputPrefix,
	)

	output, err := cmd.CombinedOutput()
	if err != nil {
		return nil, fmt.Errorf("pdftoppm failed: %w (output: %s)", err, string(output))
	}

	imgPath := outputPrefix + ".png"
	data, err := os.ReadFile(imgPath)
	if err != nil {
		return nil, fmt.Errorf("pdftoppm did not produce expected output: %w", err)
	}
	return data, nil
}
