package ports

import (
	"context"
	"time"

	"github.com/alejandrodnm/optflow/internal/domain"
)

// ContractProvider lista los contratos de opciones de un underlying con una
// fecha de expiración exacta. limit es un truncado duro en orden del provider.
type ContractProvider interface {
	ListContracts(ctx context.Context, underlying string, expiry time.Time, limit int) ([]domain.ContractRef, error)
}
