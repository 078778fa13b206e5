package extract

import (
	"strings"
)

// columnRole identifies what a detected header column contains.
type columnRole string

const (
	colIngredient  columnRole = "ingredient"
	colQuantity    columnRole = "quantity"
	colUnit        columnRole = "uom"
	colInstruction columnRole = "instruction"
)

// headerTokens maps the recognized column-name spellings to their role.
var headerTokens = map[string]columnRole{
	"ingredient": colIngredient, "ingredients": colIngredient,
	"item": colIngredient, "product": colIngredient, "name": colIngredient,

	"quantity": colQuantity, "qty": colQuantity, "amount": colQuantity, "measure": colQuantity,

	"uom": colUnit, "unit": colUnit, "units": colUnit, "measurement": colUnit,

	"instruction": colInstruction, "instructions": colInstruction,
	"step": colInstruction, "steps": colInstruction, "directions": colInstruction,
}

// columnMap records which column index holds which role.
type columnMap map[columnRole]int

// detectHeader inspects a candidate header row. A row counts as a header only
// when it names an ingredient column; quantity/unit columns alone are too
// ambiguous.
func detectHeader(row []string) (columnMap, bool) {
	cols := columnMap{}
	for i, cell := range row {
		key := strings.ToLower(strings.TrimSpace(cell))
		role, ok := headerTokens[key]
		if !ok {
			continue
		}
		if _, taken := cols[role]; !taken {
			cols[role] = i
		}
	}
	_, hasIngredient := cols[colIngredient]
	return cols, hasIngredient
}

// cellAt returns the trimmed value for a role, or "" when the role was not
// detected or the row is short.
func (c columnMap) cellAt(row []string, role columnRole) string {
	idx, ok := c[role]
	if !ok || idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// rowsToText renders tabular rows as parser-ready text. With a detected
// header the ingredient rows become "qty uom name" lines under an
// INGREDIENTS: marker (and instruction cells their own section); without one
// every row is flattened to free text for the structuring service to sort out.
func rowsToText(rows [][]string) (text string, structured bool) {
	if len(rows) == 0 {
		return "", false
	}

	cols, ok := detectHeader(rows[0])
	if !ok {
		var lines []string
		for _, row := range rows {
			var vals []string
			for _, v := range row {
				if t := strings.TrimSpace(v); t != "" {
					vals = append(vals, t)
				}
			}
			if len(vals) > 0 {
				lines = append(lines, strings.Join(vals, " "))
			}
		}
		return strings.Join(lines, "\n"), false
	}

	var ingredients, instructions []string
	for _, row := range rows[1:] {
		if name := cols.cellAt(row, colIngredient); name != "" {
			var parts []string
			if qty := cols.cellAt(row, colQuantity); qty != "" {
				parts = append(parts, qty)
			}
			if uom := cols.cellAt(row, colUnit); uom != "" {
				parts = append(parts, uom)
			}
			parts = append(parts, name)
			ingredients = append(ingredients, strings.Join(parts, " "))
		}
		if step := cols.cellAt(row, colInstruction); step != "" {
			instructions = append(instructions, step)
		}
	}

	var b strings.Builder
	b.WriteString("INGREDIENTS:\n")
	b.WriteString(strings.Join(ingredients, "\n"))
	if len(instructions) > 0 {
		b.WriteString("\n\nINSTRUCTIONS:\n")
		b.WriteString(strings.Join(instructions, "\n"))
	}
	return b.String(), true
}
