package polygon

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/alejandrodnm/optflow/internal/domain"
)

const (
	contractsPath    = "/v3/reference/options/contracts"
	contractsPerPage = 1000 // máximo por página del endpoint
)

// ListContracts lista los contratos de opciones de un underlying filtrados
// por fecha de expiración exacta, drenando el cursor next_url hasta limit.
//
// Ojo: el filtro expiration_date del provider puede devolver contratos cuya
// expiración efectiva difiere de la consultada (inconsistencia conocida).
// Este adapter devuelve lo que el provider dio; el resolver revalida.
func (c *Client) ListContracts(ctx context.Context, underlying string, expiry time.Time, limit int) ([]domain.ContractRef, error) {
	perPage := contractsPerPage
	if limit < perPage {
		perPage = limit
	}

	q := url.Values{}
	q.Set("underlying_ticker", underlying)
	q.Set("expiration_date", expiry.Format("2006-01-02"))
	q.Set("order", "asc")
	q.Set("limit", fmt.Sprintf("%d", perPage))
	next := contractsPath + "?" + q.Encode()

	var refs []domain.ContractRef
	for next != "" && len(refs) < limit {
		var resp contractsResponse
		if err := c.get(ctx, c.refLimiter, next, &resp); err != nil {
			return nil, fmt.Errorf("polygon.ListContracts: %w", err)
		}

		for _, rc := range resp.Results {
			if len(refs) >= limit {
				break
			}
			exp, err := time.ParseInLocation("2006-01-02", rc.ExpirationDate, time.UTC)
			if err != nil {
				slog.Debug("skipping contract with unparseable expiration",
					"contract", rc.Ticker,
					"expiration", rc.ExpirationDate,
				)
				continue
			}
			refs = append(refs, domain.ContractRef{
				ContractID:     rc.Ticker,
				Underlying:     rc.UnderlyingTicker,
				ExpirationDate: exp,
			})
		}

		next = resp.NextURL
	}

	slog.Debug("contracts listed",
		"underlying", underlying,
		"expiry", expiry.Format("2006-01-02"),
		"count", len(refs),
	)
	return refs, nil
}
