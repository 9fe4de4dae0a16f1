package domain

import "time"

// TradeRecord es una ejecución individual de un contrato de opciones.
// Solo price y size se consumen aguas abajo; exchange, conditions y demás
// campos del payload se descartan en el adapter.
type TradeRecord struct {
	Price     float64
	Size      float64
	Timestamp time.Time
}
