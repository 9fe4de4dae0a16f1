package ports

import (
	"context"

	"github.com/alejandrodnm/optflow/internal/domain"
)

// Notifier presenta la tabla construida al usuario.
type Notifier interface {
	Notify(ctx context.Context, table *domain.FeatureTable) error
}
