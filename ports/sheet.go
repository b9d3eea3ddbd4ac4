package ports

import (
	"context"

	"kpireport/models"
)

// SheetReader reads the full used range of a named sheet
type SheetReader interface {
	ReadSheet(ctx context.Context, name string) (models.Grid, error)
}
