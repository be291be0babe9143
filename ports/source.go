package ports

import (
	"context"

	"journeygrid/domain/journey"
)

// SourcePort supplies the raw journey table for a load
type SourcePort interface {
	Read(ctx context.Context) (journey.RawTable, error)
}
