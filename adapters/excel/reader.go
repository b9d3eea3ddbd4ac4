package excel

import (
	"context"
	"encoding/csv"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"kpireport/models"

	"github.com/xuri/excelize/v2"
)

// DataReader reads a KPI sheet from a local Excel workbook or CSV export
type DataReader struct {
	filePath string
	fileType string // "xlsx" or "csv"
}

// NewDataReader creates a new data reader that handles both Excel and CSV files
func NewDataReader(filePath string) *DataReader {
	ext := strings.ToLower(filepath.Ext(filePath))
	fileType := "xlsx"
	if ext == ".csv" {
		fileType = "csv"
	}
	return &DataReader{filePath: filePath, fileType: fileType}
}

// ReadSheet returns the used range of the named sheet as a grid. CSV files
// hold a single sheet, so the name is ignored for them.
func (r *DataReader) ReadSheet(ctx context.Context, name string) (models.Grid, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	log.Printf("[DataReader] Reading sheet %q from %s file: %s", name, r.fileType, r.filePath)

	if _, err := os.Stat(r.filePath); os.IsNotExist(err) {
		return nil, fmt.Errorf("%s file not found: %s", strings.ToUpper(r.fileType), r.filePath)
	}

	var (
		rows [][]string
		err  error
	)
	switch r.fileType {
	case "csv":
		rows, err = r.readCSVRows()
	case "xlsx":
		rows, err = r.readExcelRows(name)
	default:
		return nil, fmt.Errorf("unsupported file type: %s", r.fileType)
	}
	if err != nil {
		return nil, err
	}

	return toGrid(rows), nil
}

// readExcelRows reads raw (unformatted) cell values so that percentages
// arrive as fractions rather than display strings like "12.34%"
func (r *DataReader) readExcelRows(sheet string) ([][]string, error) {
	startTime := time.Now()
	f, err := excelize.OpenFile(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	if idx, err := f.GetSheetIndex(sheet); err != nil || idx < 0 {
		return nil, fmt.Errorf("sheet %q not found in %s", sheet, r.filePath)
	}

	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", sheet, err)
	}
	log.Printf("[DataReader] %s read in %.2fms (%d rows)", sheet, float64(time.Since(startTime).Nanoseconds())/1e6, len(rows))

	return rows, nil
}

// readCSVRows reads a CSV export; rows may have differing widths
func (r *DataReader) readCSVRows() ([][]string, error) {
	file, err := os.Open(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	readStart := time.Now()
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV file: %w", err)
	}
	log.Printf("[DataReader] CSV file read in %.2fms (%d rows)", float64(time.Since(readStart).Nanoseconds())/1e6, len(rows))

	return rows, nil
}

// toGrid converts string rows into typed cells: numbers become float64,
// blanks become nil, everything else stays a trimmed string. Trailing
// blank rows are dropped so the grid ends at the last used row.
func toGrid(rows [][]string) models.Grid {
	last := len(rows)
	for last > 0 && isBlankRow(rows[last-1]) {
		last--
	}

	grid := make(models.Grid, last)
	for i := 0; i < last; i++ {
		row := make([]interface{}, len(rows[i]))
		for j, raw := range rows[i] {
			row[j] = toCell(raw)
		}
		grid[i] = row
	}
	return grid
}

func toCell(raw string) interface{} {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return s
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
