// Package recipe defines the types that flow through the import pipeline.
// Each stage owns the type it produces; upstream types are read-only inputs
// for everything downstream.
package recipe

import "time"

// ExtractionMethod records which path produced a page's text.
type ExtractionMethod string

const (
	MethodNative ExtractionMethod = "native"
	MethodVision ExtractionMethod = "vision"
)

// FileType is the closed set of supported source formats.
type FileType string

const (
	FileTypeCSV   FileType = "csv"
	FileTypeXLSX  FileType = "xlsx"
	FileTypeDOCX  FileType = "docx"
	FileTypePDF   FileType = "pdf"
	FileTypeImage FileType = "image"
)

// PageMetrics are the confidence signals computed over a page's native text.
type PageMetrics struct {
	CharCount int `json:"char_count" yaml:"char_count"`
	WordCount int `json:"word_count" yaml:"word_count"`
	UOMHits   int `json:"uom_hits" yaml:"uom_hits"`
}

// RawPage is one page (or one whole-document unit for non-paginated formats)
// of extracted content. Immutable once produced by an adapter.
type RawPage struct {
	SourceFile string           `json:"source_file"`
	PageIndex  int              `json:"page_index"` // 0 for non-paginated formats
	Text       string           `json:"text"`
	Method     ExtractionMethod `json:"method"`
	Metrics    PageMetrics      `json:"metrics"`
	Provenance string           `json:"provenance"` // e.g. "pdf/native", "pdf/vision-fallback"
}

// ParsedIngredient is one ingredient line as returned by the structuring
// service, before normalization and mapping.
type ParsedIngredient struct {
	RawName    string   `json:"raw_name"`
	Quantity   *float64 `json:"quantity"` // nil when the source has no explicit amount
	Unit       string   `json:"unit"`     // free text, pre-normalization
	IsEstimate bool     `json:"is_estimate"`
}

// MatchTier classifies a fuzzy-match result by confidence band.
type MatchTier string

const (
	TierAuto     MatchTier = "auto"     // >= auto threshold, accepted silently
	TierReview   MatchTier = "review"   // accepted but flagged for a human
	TierUnmapped MatchTier = "unmapped" // no product reference recorded
)

// ResolvedIngredient is a ParsedIngredient after unit normalization, catalog
// mapping and costing.
//
// Invariant: Product == nil implies Confidence, PricePerOz and LineCost are
// all nil. Product != nil implies Confidence and PricePerOz are set; LineCost
// is nil only when QuantityOz is nil.
type ResolvedIngredient struct {
	Name       string    `json:"name"`
	QuantityOz *float64  `json:"quantity_oz"` // nil when the unit could not be converted
	Unit       string    `json:"unit"`        // canonical unit code
	IsEstimate bool      `json:"is_estimate"`
	Product    *string   `json:"product"`
	Confidence *float64  `json:"confidence"`   // 0-100, nil when unmapped
	PricePerOz *float64  `json:"price_per_oz"` // copied from the matched product
	LineCost   *float64  `json:"line_cost"`    // QuantityOz * PricePerOz
	Tier       MatchTier `json:"tier"`
}

// ValidationStatus is the final gate verdict for a draft recipe.
type ValidationStatus string

const (
	StatusValid    ValidationStatus = "valid"
	StatusWarnings ValidationStatus = "warnings"
	StatusInvalid  ValidationStatus = "invalid"
)

// ValidationResult carries the verdict plus ordered human-readable messages.
type ValidationResult struct {
	Status   ValidationStatus `json:"status"`
	Messages []string         `json:"messages,omitempty"`
}

// PageTrail records how a single page was processed, for audit.
type PageTrail struct {
	PageIndex int              `json:"page_index"`
	Method    ExtractionMethod `json:"method"`
	Metrics   PageMetrics      `json:"metrics"`
}

// SourceInfo is the audit metadata attached to every imported recipe.
type SourceInfo struct {
	Filename   string      `json:"filename"`
	FileType   FileType    `json:"file_type"`
	SHA256     string      `json:"sha256"`
	SizeBytes  int64       `json:"size_bytes"`
	ImportedAt time.Time   `json:"imported_at"`
	Pages      []PageTrail `json:"pages,omitempty"`
}

// MappingStats summarizes mapping outcomes for the reviewer.
type MappingStats struct {
	Total    int     `json:"total"`
	Auto     int     `json:"auto"`
	Review   int     `json:"review"`
	Unmapped int     `json:"unmapped"`
	MatchPct float64 `json:"match_pct"`
}

// DraftRecipe is the progressively assembled import result. It becomes
// immutable and eligible for persistence only after validation.
type DraftRecipe struct {
	ID           string               `json:"id"`
	Name         string               `json:"name"`
	Description  string               `json:"description,omitempty"`
	Category     string               `json:"category"`
	Servings     int                  `json:"servings"`
	PrepMinutes  *int                 `json:"prep_minutes,omitempty"`
	CookMinutes  *int                 `json:"cook_minutes,omitempty"`
	Ingredients  []ResolvedIngredient `json:"ingredients"`
	Instructions []string             `json:"instructions"`
	Allergens    []string             `json:"allergens,omitempty"`
	TotalCost    float64              `json:"total_cost"`
	Stats        MappingStats         `json:"mapping_stats"`
	Validation   ValidationResult     `json:"validation"`
	Source       SourceInfo           `json:"source"`
}

// UnmappedCount returns the number of ingredients with no product reference.
func (r *DraftRecipe) UnmappedCount() int {
	n := 0
	for _, ing := range r.Ingredients {
		if ing.Product == nil {
			n++
		}
	}
	return n
}

// Float64Ptr returns a pointer to v. Keeps call sites with optional numeric
// fields readable.
func Float64Ptr(v float64) *float64 { return &v }

// IntPtr returns a pointer to v.
func IntPtr(v int) *int { return &v }

// StringPtr returns a pointer to v.
func StringPtr(v string) *string { return &v }
