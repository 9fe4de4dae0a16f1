package domain

import "time"

// ContractRef identifica un contrato de opciones devuelto por el provider
// para un (underlying, expiry) concreto. Se resuelve fresco en cada llamada
// y no se persiste entre días.
type ContractRef struct {
	ContractID     string
	Underlying     string
	ExpirationDate time.Time // solo fecha, en UTC
}
