package features

// concurrent.go — worker pool para el fetch paralelo del cross-product
// (contract × day).
//
// Cada unidad de fetch es independiente e idempotente con inputs fijos, así
// que el workload es embarazosamente paralelo. El pool está acotado por
// FetchWorkers (los rate limits del provider mandan, no los cores). Los
// resultados llevan el índice de su unidad y se reensamblan en ese orden:
// el orden de finalización nunca afecta a la tabla final.

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/alejandrodnm/optflow/internal/domain"
)

// fetchUnit es una unidad de trabajo (contract, day) del cross-product.
type fetchUnit struct {
	dayIdx     int
	contractID string
	day        time.Time
}

// fetchUnits descarga todas las unidades con el pool de workers y devuelve
// los trades indexados por posición de unidad. Una unidad que falla ya viene
// absorbida por el fetcher como lista vacía — nunca bloquea a las demás.
func (b *Builder) fetchUnits(ctx context.Context, units []fetchUnit) [][]domain.TradeRecord {
	workers := b.cfg.FetchWorkers
	if workers <= 0 {
		workers = DefaultConfig().FetchWorkers
	}
	if workers > len(units) {
		workers = len(units)
	}

	type indexed struct {
		idx int
		u   fetchUnit
	}

	workCh := make(chan indexed, len(units))
	// Cada worker escribe en un índice distinto — no hace falta lock.
	out := make([][]domain.TradeRecord, len(units))

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for w := range workCh {
				out[w.idx] = b.fetcher.FetchDay(ctx, w.u.contractID, w.u.day)
			}
		}()
	}

	for i, u := range units {
		workCh <- indexed{idx: i, u: u}
	}
	close(workCh)
	wg.Wait()

	slog.Debug("fetch pool complete",
		"units", len(units),
		"workers", workers,
	)
	return out
}
