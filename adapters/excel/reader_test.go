package excel

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"kpireport/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func writeWorkbook(t *testing.T, sheet string, rows [][]interface{}) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	require.NoError(t, f.SetSheetName("Sheet1", sheet))
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}

	path := filepath.Join(t.TempDir(), "kpis.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestDataReader_ReadSheetXLSX(t *testing.T) {
	path := writeWorkbook(t, "analysis_overview", [][]interface{}{
		{"", "nOrders", ""},
		{"", "more is better", ""},
		{"", "variation", "wow"},
		{"Berlin", 0.1234, -0.05},
	})

	grid, err := NewDataReader(path).ReadSheet(context.Background(), "analysis_overview")
	require.NoError(t, err)
	require.Equal(t, 4, grid.Rows())

	assert.Equal(t, "nOrders", grid.Text(0, 1))
	assert.Equal(t, "wow", grid.Text(2, 2))
	assert.Equal(t, "Berlin", grid.Cell(3, 0))
	assert.InDelta(t, 0.1234, grid.Cell(3, 1), 1e-9)
	assert.InDelta(t, -0.05, grid.Cell(3, 2), 1e-9)
}

func TestDataReader_MissingSheet(t *testing.T) {
	path := writeWorkbook(t, "other", [][]interface{}{{"a"}})

	_, err := NewDataReader(path).ReadSheet(context.Background(), "analysis_overview")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "analysis_overview")
}

func TestDataReader_MissingFile(t *testing.T) {
	_, err := NewDataReader(filepath.Join(t.TempDir(), "nope.xlsx")).ReadSheet(context.Background(), "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "file not found")
}

func TestDataReader_ReadSheetCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kpis.csv")
	content := ",nOrders,\n,more is better,\n,variation,wow\nMunich,0.5,n/a\n,,\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	grid, err := NewDataReader(path).ReadSheet(context.Background(), "ignored")
	require.NoError(t, err)

	assert.Equal(t, 4, grid.Rows(), "trailing blank row is dropped")
	assert.Nil(t, grid.Cell(0, 0))
	assert.Equal(t, 0.5, grid.Cell(3, 1))
	assert.Equal(t, "n/a", grid.Cell(3, 2))
}

func TestToGrid(t *testing.T) {
	grid := toGrid([][]string{{" 1.5 ", "", "x"}, {}, {" "}})
	assert.Equal(t, models.Grid{{1.5, nil, "x"}}, grid)
}
