// Package gsheets reads KPI sheets straight from Google Sheets.
package gsheets

import (
	"context"
	"fmt"
	"log"
	"time"

	"kpireport/internal/errors"
	"kpireport/models"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// ValuesGetter is the slice of the Sheets API the reader needs
type ValuesGetter interface {
	GetValues(ctx context.Context, spreadsheetID, sheetRange string) ([][]interface{}, error)
}

// Reader reads the used range of a sheet inside one spreadsheet
type Reader struct {
	spreadsheetID string
	values        ValuesGetter
}

// NewReader creates a reader backed by the Sheets API. credentialsFile is a
// service-account JSON key; when empty, application default credentials are used.
func NewReader(ctx context.Context, spreadsheetID, credentialsFile string) (*Reader, error) {
	if spreadsheetID == "" {
		return nil, errors.ConfigInvalid("spreadsheet ID is required")
	}

	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	opts = append(opts, option.WithScopes(sheets.SpreadsheetsReadonlyScope))

	svc, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, errors.ExternalServiceError("google sheets", err)
	}

	log.Printf("[SheetsReader] Google Sheets service initialized for spreadsheet %s", spreadsheetID)
	return NewReaderWithGetter(spreadsheetID, &apiGetter{svc: svc}), nil
}

// NewReaderWithGetter creates a reader over any ValuesGetter
func NewReaderWithGetter(spreadsheetID string, values ValuesGetter) *Reader {
	return &Reader{spreadsheetID: spreadsheetID, values: values}
}

// ReadSheet returns every value of the named sheet. Passing only the sheet
// name as the range makes the API return the sheet's used range.
func (r *Reader) ReadSheet(ctx context.Context, name string) (models.Grid, error) {
	start := time.Now()
	values, err := r.values.GetValues(ctx, r.spreadsheetID, name)
	if err != nil {
		return nil, errors.Wrapf(errors.ExternalServiceError("google sheets", err), "failed to read sheet %q", name)
	}
	log.Printf("[SheetsReader] %s read in %.2fms (%d rows)", name, float64(time.Since(start).Nanoseconds())/1e6, len(values))

	grid := make(models.Grid, len(values))
	for i, row := range values {
		grid[i] = row
	}
	return grid, nil
}

type apiGetter struct {
	svc *sheets.Service
}

// GetValues asks for unformatted values so percentages arrive as fractions
func (g *apiGetter) GetValues(ctx context.Context, spreadsheetID, sheetRange string) ([][]interface{}, error) {
	resp, err := g.svc.Spreadsheets.Values.Get(spreadsheetID, sheetRange).
		ValueRenderOption("UNFORMATTED_VALUE").
		MajorDimension("ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("values.get %s: %w", sheetRange, err)
	}
	return resp.Values, nil
}
