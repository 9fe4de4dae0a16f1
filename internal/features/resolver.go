package features

import (
	"context"
	"log/slog"
	"time"

	"github.com/alejandrodnm/optflow/internal/ports"
)

// Resolver resuelve (underlying, expiry) a una lista acotada de contract IDs.
//
// El filtro por expiración del provider tiene una inconsistencia conocida:
// puede devolver contratos cuya expiración efectiva no coincide con la
// consultada. El resolver revalida el campo contra el valor pedido y descarta
// los que no coinciden.
type Resolver struct {
	contracts ports.ContractProvider
	limit     int
}

// NewResolver crea un Resolver con el límite de contratos dado.
func NewResolver(contracts ports.ContractProvider, limit int) *Resolver {
	return &Resolver{contracts: contracts, limit: limit}
}

// Resolve devuelve los contract IDs para (underlying, expiry), como máximo
// limit. Cualquier fallo del provider se absorbe a lista vacía: un expiry sin
// contratos descubribles se trata igual que "sin actividad de opciones", y
// nunca aborta al caller.
func (r *Resolver) Resolve(ctx context.Context, underlying string, expiry time.Time) []string {
	refs, err := r.contracts.ListContracts(ctx, underlying, expiry, r.limit)
	if err != nil {
		slog.Warn("contract listing failed, treating as no contracts",
			"underlying", underlying,
			"expiry", expiry.Format("2006-01-02"),
			"err", err,
		)
		return nil
	}

	ids := make([]string, 0, len(refs))
	for _, ref := range refs {
		if !sameDate(ref.ExpirationDate, expiry) {
			slog.Debug("dropping contract with mismatched expiration",
				"contract", ref.ContractID,
				"got", ref.ExpirationDate.Format("2006-01-02"),
				"want", expiry.Format("2006-01-02"),
			)
			continue
		}
		ids = append(ids, ref.ContractID)
		if len(ids) >= r.limit {
			break
		}
	}
	return ids
}

// sameDate compara dos timestamps solo por su fecha calendario UTC.
func sameDate(a, b time.Time) bool {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	return ay == by && am == bm && ad == bd
}
