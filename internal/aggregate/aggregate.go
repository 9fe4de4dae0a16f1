package aggregate

// aggregate.go — reducción determinista de los trades de un día a estadísticas.
//
// La política más importante del sistema vive aquí: un día con menos de
// minTrades observaciones NO produce fila. Para el merge aguas abajo una fila
// ausente significa "sin actividad de opciones ese día"; una fila presente
// con count=0 sugeriría una medición intentada-pero-vacía, que es otra cosa.

import (
	"math"

	"github.com/alejandrodnm/optflow/internal/domain"
)

// DayStats son las estadísticas agregadas de los trades de un día,
// juntando todos los contratos del (underlying, expiry).
type DayStats struct {
	TradesCount int
	Notional    float64
	AvgPrice    float64
	PriceStdDev float64
	MinPrice    float64
	MaxPrice    float64
}

// Aggregate reduce los trades de un día a DayStats. Devuelve ok=false cuando
// hay menos de minTrades observaciones: el día queda excluido de la tabla.
//
// AvgPrice es la media simple sobre precios, NO ponderada por size. Es una
// simplificación intencionada del diseño original y se conserva tal cual.
// PriceStdDev usa varianza poblacional (ddof=0), no muestral.
func Aggregate(records []domain.TradeRecord, minTrades int) (DayStats, bool) {
	if len(records) < minTrades || len(records) == 0 {
		return DayStats{}, false
	}

	var (
		sum      float64
		notional float64
		minP     = records[0].Price
		maxP     = records[0].Price
	)
	for _, r := range records {
		sum += r.Price
		notional += r.Price * r.Size
		if r.Price < minP {
			minP = r.Price
		}
		if r.Price > maxP {
			maxP = r.Price
		}
	}

	n := float64(len(records))
	avg := sum / n

	var sqDiff float64
	for _, r := range records {
		d := r.Price - avg
		sqDiff += d * d
	}

	return DayStats{
		TradesCount: len(records),
		Notional:    notional,
		AvgPrice:    avg,
		PriceStdDev: math.Sqrt(sqDiff / n),
		MinPrice:    minP,
		MaxPrice:    maxP,
	}, true
}
