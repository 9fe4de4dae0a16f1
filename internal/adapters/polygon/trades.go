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
	tradesPathPrefix = "/v3/trades/"
	tradesPerPage    = 50000 // máximo por página del endpoint
)

// ListTrades obtiene los trades de un contrato en el rango UTC [from, to),
// drenando el cursor next_url hasta limit. El rango es half-open vía
// timestamp.gte / timestamp.lt: un trade exactamente en la medianoche
// pertenece a un único día. No se reordena nada — el orden emitido es el
// del provider (asc por secuencia).
func (c *Client) ListTrades(ctx context.Context, contractID string, from, to time.Time, limit int) ([]domain.TradeRecord, error) {
	perPage := tradesPerPage
	if limit < perPage {
		perPage = limit
	}

	q := url.Values{}
	q.Set("timestamp.gte", fmt.Sprintf("%d", from.UTC().UnixNano()))
	q.Set("timestamp.lt", fmt.Sprintf("%d", to.UTC().UnixNano()))
	q.Set("order", "asc")
	q.Set("limit", fmt.Sprintf("%d", perPage))
	next := tradesPathPrefix + url.PathEscape(contractID) + "?" + q.Encode()

	var records []domain.TradeRecord
	for next != "" && len(records) < limit {
		var resp tradesResponse
		if err := c.get(ctx, c.trdLimiter, next, &resp); err != nil {
			return nil, fmt.Errorf("polygon.ListTrades %s: %w", contractID, err)
		}

		for _, rt := range resp.Results {
			if len(records) >= limit {
				break
			}
			records = append(records, domain.TradeRecord{
				Price:     rt.Price,
				Size:      rt.Size,
				Timestamp: time.Unix(0, rt.SipTimestamp).UTC(),
			})
		}

		next = resp.NextURL
	}

	slog.Debug("trades listed",
		"contract", contractID,
		"from", from.Format("2006-01-02"),
		"count", len(records),
	)
	return records, nil
}
