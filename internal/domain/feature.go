package domain

import (
	"sort"
	"time"
)

// FeatureRow es la fila diaria agregada de actividad de opciones para
// (date, ticker[, expiry]). Una fila existe solo si el día superó el umbral
// mínimo de trades — un día escaso se excluye de la tabla, nunca se emite
// como fila a cero.
type FeatureRow struct {
	Date        time.Time
	Ticker      string
	Expiry      time.Time // zero en modo rolling; la fecha del contrato en modo fixed
	TradesCount int
	Notional    float64
	AvgPrice    float64
	PriceStdDev float64
	MinPrice    float64
	MaxPrice    float64
}

// FeatureTable es la secuencia ordenada de filas diarias, ascendente por
// fecha. Puede estar vacía (cero filas, columnas correctas) pero nunca es
// nil para los consumidores: "vacía" y "sin actividad" son lo mismo.
type FeatureTable struct {
	Ticker    string
	HasExpiry bool      // true en modo fixed: la columna expiry va en el output
	Start     time.Time // primer día del rango consultado
	End       time.Time // último día del rango consultado
	Expiry    time.Time // expiry fijo (modo fixed), zero en rolling
	Rows      []FeatureRow
}

// Columns devuelve el orden fijo de columnas del artefacto de salida.
// El merge aguas abajo hace left-join por (date, ticker).
func (t *FeatureTable) Columns() []string {
	cols := []string{"date", "ticker"}
	if t.HasExpiry {
		cols = append(cols, "expiry")
	}
	return append(cols,
		"opt_trades_count",
		"opt_notional",
		"opt_avg_price",
		"opt_price_std",
		"opt_min_price",
		"opt_max_price",
	)
}

// SortByDate ordena las filas ascendente por fecha. El pool de workers
// completa en orden arbitrario; la emisión final siempre es ascendente.
func (t *FeatureTable) SortByDate() {
	sort.Slice(t.Rows, func(i, j int) bool {
		return t.Rows[i].Date.Before(t.Rows[j].Date)
	})
}
