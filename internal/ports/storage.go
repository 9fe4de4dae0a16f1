package ports

import (
	"context"
	"time"

	"github.com/alejandrodnm/optflow/internal/domain"
)

// Storage persiste las tablas de features generadas en cada run.
type Storage interface {
	// SaveTable persiste la tabla construida bajo el run dado.
	SaveTable(ctx context.Context, runID string, table *domain.FeatureTable) error

	// GetTable devuelve las filas guardadas de un ticker en el rango de fechas dado.
	GetTable(ctx context.Context, ticker string, from, to time.Time) (*domain.FeatureTable, error)

	// Close cierra la conexión a la base de datos limpiamente.
	Close() error
}
