// Package separator pivots extracted key records into a table with one row per
// key and one column per theme.
package separator

import (
	"github.com/kataras/figma-keytheme/pkg/extractor"
)

// KeyColumn is the header of the first column.
const KeyColumn = "key_id"

// Row is one key with one cell per theme, aligned with Table.Themes.
// A theme without a record for this key holds the empty string.
type Row struct {
	KeyID string
	Cells []string
}

// Table is the separated row set.
type Table struct {
	Themes []string
	Rows   []Row
}

// Columns returns the header: KeyColumn followed by the themes.
func (t *Table) Columns() []string {
	return append([]string{KeyColumn}, t.Themes...)
}

// Records returns the header and the rows as string slices, ready for serialization.
func (t *Table) Records() [][]string {
	out := make([][]string, 0, len(t.Rows)+1)
	out = append(out, t.Columns())
	for _, row := range t.Rows {
		out = append(out, append([]string{row.KeyID}, row.Cells...))
	}
	return out
}

// Conflict is a (key, theme) cell written more than once. The last value wins.
type Conflict struct {
	KeyID    string
	Theme    string
	Previous string
	Value    string
	NodeID   string // node that supplied the winning value
}

// Separate groups records by key id and theme. Themes and rows keep the order in
// which they were first seen. When a cell receives several records the later one
// overwrites the earlier; every overwrite is returned as a Conflict.
func Separate(records []extractor.Record) (*Table, []Conflict) {
	themeIdx := make(map[string]int)
	table := &Table{}
	for _, r := range records {
		if _, ok := themeIdx[r.Theme]; !ok {
			themeIdx[r.Theme] = len(table.Themes)
			table.Themes = append(table.Themes, r.Theme)
		}
	}

	type cell struct {
		value string
		set   bool
	}

	rowIdx := make(map[string]int)
	var cells [][]cell
	var conflicts []Conflict

	for _, r := range records {
		i, ok := rowIdx[r.KeyID]
		if !ok {
			i = len(table.Rows)
			rowIdx[r.KeyID] = i
			table.Rows = append(table.Rows, Row{KeyID: r.KeyID})
			cells = append(cells, make([]cell, len(table.Themes)))
		}

		c := &cells[i][themeIdx[r.Theme]]
		if c.set {
			conflicts = append(conflicts, Conflict{
				KeyID:    r.KeyID,
				Theme:    r.Theme,
				Previous: c.value,
				Value:    r.Value,
				NodeID:   r.NodeID,
			})
		}
		c.value = r.Value
		c.set = true
	}

	for i := range table.Rows {
		row := make([]string, len(table.Themes))
		for j, c := range cells[i] {
			row[j] = c.value
		}
		table.Rows[i].Cells = row
	}

	return table, conflicts
}

// Reorder moves the listed themes to the front in the given order. Names that are
// not themes of the table are ignored; the remaining themes keep their order.
func (t *Table) Reorder(order []string) {
	if len(order) == 0 {
		return
	}

	current := make(map[string]int, len(t.Themes))
	for i, theme := range t.Themes {
		current[theme] = i
	}

	perm := make([]int, 0, len(t.Themes))
	placed := make(map[int]bool, len(t.Themes))
	for _, theme := range order {
		if i, ok := current[theme]; ok && !placed[i] {
			perm = append(perm, i)
			placed[i] = true
		}
	}
	for i := range t.Themes {
		if !placed[i] {
			perm = append(perm, i)
		}
	}

	t.Themes = permute(t.Themes, perm)
	for i := range t.Rows {
		t.Rows[i].Cells = permute(t.Rows[i].Cells, perm)
	}
}

func permute(values []string, perm []int) []string {
	out := make([]string, len(perm))
	for i, j := range perm {
		out[i] = values[j]
	}
	return out
}
