package features

import (
	"context"
	"log/slog"
	"time"

	"github.com/alejandrodnm/optflow/internal/domain"
	"github.com/alejandrodnm/optflow/internal/ports"
)

// Fetcher obtiene los trades de un contrato en un día calendario concreto.
//
// El límite del día se expresa como el rango UTC half-open
// [día 00:00:00Z, día+1 00:00:00Z). El diseño original usaba extremos
// inclusive-inclusive, que puede contar dos veces un trade exactamente en la
// medianoche; aquí se resuelve con half-open y queda documentada la desviación.
type Fetcher struct {
	trades ports.TradeProvider
	limit  int
}

// NewFetcher crea un Fetcher con el límite de trades por contrato/día dado.
func NewFetcher(trades ports.TradeProvider, limit int) *Fetcher {
	return &Fetcher{trades: trades, limit: limit}
}

// FetchDay devuelve los trades de un (contract, day), como máximo limit, en
// el orden del provider. Cualquier fallo — rate limiting, auth, payload
// malformado — se absorbe a lista vacía: un contrato que falla nunca impide
// agregar los demás contratos del día.
func (f *Fetcher) FetchDay(ctx context.Context, contractID string, day time.Time) []domain.TradeRecord {
	from := dateOnly(day)
	to := from.AddDate(0, 0, 1)

	records, err := f.trades.ListTrades(ctx, contractID, from, to, f.limit)
	if err != nil {
		slog.Warn("trade fetch failed, treating as no trades",
			"contract", contractID,
			"day", from.Format("2006-01-02"),
			"err", err,
		)
		return nil
	}
	if len(records) > f.limit {
		records = records[:f.limit]
	}
	return records
}

// dateOnly trunca un timestamp a su medianoche UTC.
func dateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
