// Package kpi turns a KPI sheet grid into flat records and provides the
// small set of record helpers the report pipeline needs.
package kpi

import (
	"math"
	"strconv"
	"strings"

	"kpireport/internal/errors"
	"kpireport/models"
)

// Extract walks the grid one KPI block at a time and emits a record for every
// data cell whose block has a KPI name and direction and whose column has a
// view label. Header cells holding 0, false or NaN count as missing. Blocks are viewCount columns wide and start at the first data
// column. Shape problems are returned as NO_DATA, HEADER_ONLY or
// COLUMN_MISALIGNED errors and no records are produced.
func Extract(grid models.Grid, layout models.Layout, viewCount int) ([]models.Record, error) {
	if viewCount <= 0 {
		return nil, errors.InvalidInput("view count must be positive")
	}

	firstDataRow := layout.FirstDataRow()
	firstDataCol := layout.FirstDataCol()
	lastRow := grid.Rows()
	lastCol := grid.Cols()

	switch {
	case lastRow < firstDataRow || lastCol < firstDataCol:
		return nil, errors.NoData()
	case lastRow == firstDataRow, lastCol == firstDataCol:
		return nil, errors.HeaderOnly()
	case (lastCol-firstDataCol)%viewCount != 0:
		return nil, errors.ColumnMisaligned(lastCol-firstDataCol, viewCount)
	}

	records := make([]models.Record, 0, (lastRow-firstDataRow)*(lastCol-firstDataCol))
	for row := firstDataRow; row < lastRow; row++ {
		area := grid.Text(row, layout.AreaCol)
		for col := firstDataCol; col < lastCol; col++ {
			blockStart := BlockStart(col, firstDataCol, viewCount)

			kpiCell := grid.Cell(layout.KPIRow, blockStart)
			directionCell := grid.Cell(layout.DirectionRow, blockStart)
			viewCell := grid.Cell(layout.ViewRow, col)
			if !truthy(kpiCell) || !truthy(directionCell) || !truthy(viewCell) {
				continue
			}

			records = append(records, models.Record{
				Area:      area,
				KPI:       grid.Text(layout.KPIRow, blockStart),
				Direction: grid.Text(layout.DirectionRow, blockStart),
				View:      grid.Text(layout.ViewRow, col),
				Value:     FormatPercent(grid.Cell(row, col)),
			})
		}
	}
	return records, nil
}

// BlockStart returns the first column of the KPI block containing col
func BlockStart(col, firstDataCol, viewCount int) int {
	return (col-firstDataCol)/viewCount*viewCount + firstDataCol
}

// FormatPercent scales a fractional cell value by 100, rounds half up and
// appends "%". Blank cells count as zero; anything non-numeric gives "NaN%".
func FormatPercent(cell interface{}) string {
	v := numericValue(cell)
	if math.IsNaN(v) {
		return "NaN%"
	}
	r := math.Floor(v*100 + 0.5)
	if r == 0 {
		r = 0 // drop the sign of negative zero
	}
	return strconv.FormatFloat(r, 'f', -1, 64) + "%"
}

// ParsePercent is the inverse of FormatPercent for the overview statistics
func ParsePercent(value string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSuffix(strings.TrimSpace(value), "%"), 64)
	if err != nil || math.IsNaN(v) {
		return 0, false
	}
	return v, true
}

func numericValue(cell interface{}) float64 {
	switch v := cell.(type) {
	case nil:
		return 0
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case bool:
		if v {
			return 1
		}
		return 0
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return 0
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsInf(f, 0) {
			return math.NaN()
		}
		return f
	default:
		return math.NaN()
	}
}

// truthy reports whether a header cell names something: nil, blank text,
// zero, NaN and false do not
func truthy(cell interface{}) bool {
	switch v := cell.(type) {
	case nil:
		return false
	case string:
		return strings.TrimSpace(v) != ""
	case bool:
		return v
	case float64:
		return v != 0 && !math.IsNaN(v)
	case float32:
		return v != 0 && !math.IsNaN(float64(v))
	case int:
		return v != 0
	case int64:
		return v != 0
	default:
		return true
	}
}
