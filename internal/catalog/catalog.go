// Package catalog loads and serves the product reference list that recipe
// ingredients are mapped against.
package catalog

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
)

// Product is one purchasable item in the reference catalog.
type Product struct {
	Name       string  `json:"name" yaml:"name"`
	Unit       string  `json:"unit" yaml:"unit"`
	PricePerOz float64 `json:"price_per_oz" yaml:"price_per_oz"`
}

// Snapshot is an immutable, name-sorted view of the catalog. A batch takes
// one snapshot up front so every file in the batch maps against the same
// product list.
type Snapshot struct {
	products []Product
}

// Load reads a catalog CSV from disk.
func Load(path string) (*Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog: %w", err)
	}
	defer f.Close()
	return Read(f)
}

// Read parses catalog CSV content. The expected header is
// name,unit,price_per_ounce; column order is taken from the header so extra
// columns are tolerated.
func Read(r io.Reader) (*Snapshot, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog header: %w", err)
	}

	nameIdx, unitIdx, priceIdx := -1, -1, -1
	for i, col := range header {
		switch strings.ToLower(strings.TrimSpace(col)) {
		case "name":
			nameIdx = i
		case "unit":
			unitIdx = i
		case "price_per_ounce", "price_per_oz":
			priceIdx = i
		}
	}
	if nameIdx < 0 || unitIdx < 0 || priceIdx < 0 {
		return nil, fmt.Errorf("catalog header missing required columns (have %v, need name, unit, price_per_ounce)", header)
	}

	var products []Product
	seen := map[string]bool{}
	line := 1
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("failed to read catalog line %d: %w", line, err)
		}

		name := strings.TrimSpace(row[nameIdx])
		if name == "" {
			continue
		}
		key := strings.ToLower(name)
		if seen[key] {
			return nil, fmt.Errorf("duplicate catalog product %q at line %d", name, line)
		}
		seen[key] = true

		price, err := strconv.ParseFloat(strings.TrimSpace(row[priceIdx]), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid price for %q at line %d: %w", name, line, err)
		}
		if price < 0 {
			return nil, fmt.Errorf("negative price for %q at line %d", name, line)
		}

		products = append(products, Product{
			Name:       name,
			Unit:       strings.TrimSpace(row[unitIdx]),
			PricePerOz: price,
		})
	}

	sort.Slice(products, func(i, j int) bool {
		return strings.ToLower(products[i].Name) < strings.ToLower(products[j].Name)
	})

	return &Snapshot{products: products}, nil
}

// Products returns the name-sorted product list. Callers must not mutate it.
func (s *Snapshot) Products() []Product { return s.products }

// Len returns the product count.
func (s *Snapshot) Len() int { return len(s.products) }
