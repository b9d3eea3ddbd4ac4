package models

import (
	"fmt"
	"strings"
)

// Grid is a 2D block of raw cell values as returned by a sheet reader.
// Cells are float64, int, string, bool or nil; rows may be ragged.
type Grid [][]interface{}

// Rows returns the number of rows in the grid
func (g Grid) Rows() int {
	return len(g)
}

// Cols returns the width of the widest row
func (g Grid) Cols() int {
	width := 0
	for _, row := range g {
		if len(row) > width {
			width = len(row)
		}
	}
	return width
}

// Cell returns the value at (row, col), or nil when out of range
func (g Grid) Cell(row, col int) interface{} {
	if row < 0 || row >= len(g) {
		return nil
	}
	if col < 0 || col >= len(g[row]) {
		return nil
	}
	return g[row][col]
}

// Text returns the trimmed string form of a cell; nil reads as ""
func (g Grid) Text(row, col int) string {
	switch v := g.Cell(row, col).(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}

// Layout addresses the header rows and the area column of a KPI sheet
type Layout struct {
	KPIRow       int
	DirectionRow int
	ViewRow      int
	AreaCol      int
}

// DefaultLayout is the sheet structure of the weekly analysis overview:
// KPI names on row 0, direction on row 1, view labels on row 2, areas in column 0.
func DefaultLayout() Layout {
	return Layout{KPIRow: 0, DirectionRow: 1, ViewRow: 2, AreaCol: 0}
}

// FirstDataRow is the row right after the last header row
func (l Layout) FirstDataRow() int {
	return max(l.KPIRow, l.DirectionRow, l.ViewRow) + 1
}

// FirstDataCol is the column right after the area column
func (l Layout) FirstDataCol() int {
	return l.AreaCol + 1
}

// View is one derived statistic reported for every KPI
type View struct {
	Name        string
	Description string
}

// DefaultViews returns the views in the order they appear inside each KPI block
func DefaultViews() []View {
	return []View{
		{
			Name:        "variation",
			Description: "Percentage of (max - min) / average for the observed period => identifies strong outliers. If combined with wow, it hints at a strong change",
		},
		{
			Name:        "wow",
			Description: "Percentage of average weekly change for the observed period => identifies consistent changes that are not outliers",
		},
	}
}
