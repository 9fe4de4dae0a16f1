package features

// builder.go — construcción de la tabla diaria de features de opciones.
//
// Dos modos sobre el mismo núcleo por-día:
//   - Rolling: para cada día del rango, targetExpiry = día + daysToExpiry;
//     los contratos se resuelven por día.
//   - Fixed: el expiry viene dado; los contratos se resuelven UNA vez y el
//     rango es [expiry − daysBefore, expiry + daysAfter].
//
// Reconstruir con inputs idénticos contra un dataset sin cambios produce una
// tabla idéntica fila a fila: no hay aleatoriedad ni estado mutable oculto,
// y los trades se agrupan en orden de unidad (no de finalización) antes de
// agregar, para que la suma en coma flotante sea reproducible.

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/alejandrodnm/optflow/internal/aggregate"
	"github.com/alejandrodnm/optflow/internal/domain"
	"github.com/alejandrodnm/optflow/internal/ports"
)

// ErrInvalidRange se devuelve cuando endDate es anterior a startDate.
// Es un error de input fatal, detectado antes de cualquier llamada de red.
var ErrInvalidRange = errors.New("features: end date before start date")

// Config controla los límites del builder. Todos positivos.
type Config struct {
	ContractsLimit         int // máximo de contratos por (underlying, expiry)
	TradesLimitPerContract int // máximo de trades por contrato y día
	MinTradesPerDay        int // mínimo de trades para emitir la fila del día
	FetchWorkers           int // tamaño del pool de fetch; acotado por rate limits
}

// DefaultConfig devuelve los límites del diseño original.
func DefaultConfig() Config {
	return Config{
		ContractsLimit:         100,
		TradesLimitPerContract: 50000,
		MinTradesPerDay:        1,
		FetchWorkers:           4,
	}
}

// Builder arma tablas de features diarios de opciones.
type Builder struct {
	cfg      Config
	resolver *Resolver
	fetcher  *Fetcher
}

// New crea un Builder con los providers inyectados.
func New(cfg Config, contracts ports.ContractProvider, trades ports.TradeProvider) *Builder {
	return &Builder{
		cfg:      cfg,
		resolver: NewResolver(contracts, cfg.ContractsLimit),
		fetcher:  NewFetcher(trades, cfg.TradesLimitPerContract),
	}
}

// BuildRolling construye la tabla en modo rolling-expiry: itera los días de
// [start, end] inclusive y para cada día resuelve los contratos del expiry
// objetivo (día + daysToExpiry).
func (b *Builder) BuildRolling(ctx context.Context, underlying string, start, end time.Time, daysToExpiry int) (*domain.FeatureTable, error) {
	start, end = dateOnly(start), dateOnly(end)
	if end.Before(start) {
		return nil, fmt.Errorf("%w: start=%s end=%s",
			ErrInvalidRange, start.Format("2006-01-02"), end.Format("2006-01-02"))
	}

	days := enumerateDays(start, end)
	slog.Info("building feature table (rolling)",
		"underlying", underlying,
		"start", start.Format("2006-01-02"),
		"end", end.Format("2006-01-02"),
		"days", len(days),
		"days_to_expiry", daysToExpiry,
	)

	// Resolución por día: un expiry objetivo distinto para cada día del rango.
	// Los fallos de resolución ya vienen absorbidos (día sin contratos).
	var units []fetchUnit
	for i, day := range days {
		targetExpiry := day.AddDate(0, 0, daysToExpiry)
		for _, id := range b.resolver.Resolve(ctx, underlying, targetExpiry) {
			units = append(units, fetchUnit{dayIdx: i, contractID: id, day: day})
		}
	}

	rows := b.fetchAndReduce(ctx, underlying, days, units, time.Time{})

	table := &domain.FeatureTable{
		Ticker: underlying,
		Start:  start,
		End:    end,
		Rows:   rows,
	}
	table.SortByDate()
	return table, nil
}

// BuildFixed construye la tabla en modo fixed-expiry: los contratos se
// resuelven una sola vez y el rango de días es
// [expiry − daysBefore, expiry + daysAfter]. El expiry va en cada fila.
func (b *Builder) BuildFixed(ctx context.Context, underlying string, expiry time.Time, daysBefore, daysAfter int) (*domain.FeatureTable, error) {
	expiry = dateOnly(expiry)
	start := expiry.AddDate(0, 0, -daysBefore)
	end := expiry.AddDate(0, 0, daysAfter)

	days := enumerateDays(start, end)
	contractIDs := b.resolver.Resolve(ctx, underlying, expiry)
	slog.Info("building feature table (fixed expiry)",
		"underlying", underlying,
		"expiry", expiry.Format("2006-01-02"),
		"days", len(days),
		"contracts", len(contractIDs),
	)

	var units []fetchUnit
	for i, day := range days {
		for _, id := range contractIDs {
			units = append(units, fetchUnit{dayIdx: i, contractID: id, day: day})
		}
	}

	rows := b.fetchAndReduce(ctx, underlying, days, units, expiry)

	table := &domain.FeatureTable{
		Ticker:    underlying,
		HasExpiry: true,
		Start:     start,
		End:       end,
		Expiry:    expiry,
		Rows:      rows,
	}
	table.SortByDate()
	return table, nil
}

// fetchAndReduce ejecuta el pool de fetch sobre las unidades (contract × day),
// agrupa los trades por día en orden de unidad y reduce cada día a su fila.
// Los días bajo el umbral no emiten fila. expiry zero = modo rolling.
func (b *Builder) fetchAndReduce(ctx context.Context, underlying string, days []time.Time, units []fetchUnit, expiry time.Time) []domain.FeatureRow {
	unitTrades := b.fetchUnits(ctx, units)

	// Pool por día en orden de unidad, no de finalización: la agregación
	// en coma flotante debe ser reproducible entre runs.
	pooled := make([][]domain.TradeRecord, len(days))
	for i, u := range units {
		pooled[u.dayIdx] = append(pooled[u.dayIdx], unitTrades[i]...)
	}

	var rows []domain.FeatureRow
	for i, day := range days {
		stats, ok := aggregate.Aggregate(pooled[i], b.cfg.MinTradesPerDay)
		if !ok {
			continue
		}
		rows = append(rows, domain.FeatureRow{
			Date:        day,
			Ticker:      underlying,
			Expiry:      expiry,
			TradesCount: stats.TradesCount,
			Notional:    stats.Notional,
			AvgPrice:    stats.AvgPrice,
			PriceStdDev: stats.PriceStdDev,
			MinPrice:    stats.MinPrice,
			MaxPrice:    stats.MaxPrice,
		})
	}
	return rows
}

// enumerateDays devuelve los días calendario de [start, end] inclusive.
func enumerateDays(start, end time.Time) []time.Time {
	var days []time.Time
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}
