package ports

import (
	"context"
	"time"

	"github.com/alejandrodnm/optflow/internal/domain"
)

// TradeProvider obtiene los trades históricos de un contrato dentro de un
// rango UTC [from, to). El provider no soporta rangos multi-día: el caller
// pide día a día. limit es un truncado duro en orden del provider.
type TradeProvider interface {
	ListTrades(ctx context.Context, contractID string, from, to time.Time, limit int) ([]domain.TradeRecord, error)
}
