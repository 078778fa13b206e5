// Package extract turns uploaded recipe files into ordered RawPage sequences.
// A single ingress gate enforces format and hygiene rules before any adapter
// runs; adapters are a closed dispatch over the supported file types.
package extract

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/recipeops/ladle/internal/providers"
	"github.com/recipeops/ladle/internal/recipe"
	"github.com/recipeops/ladle/internal/route"
	"github.com/recipeops/ladle/internal/units"
)

// File is one uploaded source document.
type File struct {
	Name         string
	Data         []byte
	DeclaredMIME string // as declared by the uploader; verified against content
}

// Limits caps resource usage per file.
type Limits struct {
	MaxFileBytes int64 `mapstructure:"max_file_bytes" yaml:"max_file_bytes"`
	MaxPDFPages  int   `mapstructure:"max_pdf_pages" yaml:"max_pdf_pages"`
}

// DefaultLimits returns the stock per-file caps.
func DefaultLimits() Limits {
	return Limits{
		MaxFileBytes: 25 << 20, // 25 MiB
		MaxPDFPages:  50,
	}
}

// Result is the gate metadata plus the extracted pages for one file.
type Result struct {
	FileType  recipe.FileType
	SHA256    string
	SizeBytes int64
	Pages     []recipe.RawPage
}

// Extractor runs the gate and dispatches to the per-format adapters.
type Extractor struct {
	vision     providers.VisionProvider
	thresholds route.Thresholds
	limits     Limits
	log        *slog.Logger
}

// New creates an Extractor. The vision provider handles image files and PDF
// pages the confidence router sends its way.
func New(vision providers.VisionProvider, thresholds route.Thresholds, limits Limits, log *slog.Logger) *Extractor {
	if log == nil {
		log = slog.Default()
	}
	return &Extractor{vision: vision, thresholds: thresholds, limits: limits, log: log}
}

// Extract validates the file and produces its ordered page sequence. Gate
// failures return a *RejectedInputError and no pages; extraction failures
// after the gate are wrapped normally.
func (e *Extractor) Extract(ctx context.Context, f File) (*Result, error) {
	gated, err := e.gate(f)
	if err != nil {
		return nil, err
	}

	var pages []recipe.RawPage
	switch gated.fileType {
	case recipe.FileTypeCSV:
		pages, err = e.extractCSV(f.Name, gated.data)
	case recipe.FileTypeXLSX:
		pages, err = e.extractXLSX(f.Name, gated.data)
	case recipe.FileTypeDOCX:
		pages, err = e.extractDOCX(f.Name, gated.data)
	case recipe.FileTypePDF:
		pages, err = e.extractPDF(ctx, f.Name, gated.data)
	case recipe.FileTypeImage:
		pages, err = e.extractImage(ctx, f.Name, gated.data)
	default:
		return nil, &RejectedInputError{Filename: f.Name, Reason: fmt.Sprintf("unsupported file type %q", gated.fileType)}
	}
	if err != nil {
		return nil, fmt.Errorf("extraction failed for %s: %w", f.Name, err)
	}

	return &Result{
		FileType:  gated.fileType,
		SHA256:    gated.sha256,
		SizeBytes: gated.size,
		Pages:     pages,
	}, nil
}

// textMetrics computes the confidence metric bundle for a page. Characters
// are counted as runes so multibyte scripts score the same as ASCII.
func textMetrics(text string) recipe.PageMetrics {
	return recipe.PageMetrics{
		CharCount: utf8.RuneCountInString(text),
		WordCount: len(strings.Fields(text)),
		UOMHits:   units.UOMHits(text),
	}
}
