package polygon_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func utcDay(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestListTrades_Success(t *testing.T) {
	data, err := os.ReadFile("../../../testdata/fixtures/polygon_trades.json")
	require.NoError(t, err)

	from := utcDay(2024, 1, 15)
	to := utcDay(2024, 1, 16)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v3/trades/O:AAPL240119C00150000", r.URL.Path)
		assert.Equal(t, strconv.FormatInt(from.UnixNano(), 10), r.URL.Query().Get("timestamp.gte"))
		assert.Equal(t, strconv.FormatInt(to.UnixNano(), 10), r.URL.Query().Get("timestamp.lt"))
		assert.Equal(t, "asc", r.URL.Query().Get("order"))
		w.Header().Set("Content-Type", "application/json")
		w.Write(data)
	}))
	defer srv.Close()

	client := newTestClient(t, srv)
	records, err := client.ListTrades(context.Background(), "O:AAPL240119C00150000", from, to, 50000)

	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.InDelta(t, 1.25, records[0].Price, 1e-9)
	assert.InDelta(t, 2.0, records[0].Size, 1e-9)
	assert.Equal(t, time.Unix(0, 1705329015000000000).UTC(), records[0].Timestamp)
	// Orden del provider intacto, sin re-sort
	assert.InDelta(t, 1.1, records[2].Price, 1e-9)
}

func TestListTrades_Pagination(t *testing.T) {
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Query().Get("cursor") == "" {
			fmt.Fprintf(w, `{
				"results": [
					{"price": 1.0, "size": 1, "sip_timestamp": 1705329015000000000},
					{"price": 1.1, "size": 2, "sip_timestamp": 1705329016000000000}
				],
				"next_url": "%s/v3/trades/O:X?cursor=page2"
			}`, srv.URL)
			return
		}
		fmt.Fprint(w, `{
			"results": [
				{"price": 1.2, "size": 3, "sip_timestamp": 1705329017000000000}
			]
		}`)
	}))
	defer srv.Close()

	client := newTestClient(t, srv)
	records, err := client.ListTrades(context.Background(), "O:X", utcDay(2024, 1, 15), utcDay(2024, 1, 16), 50000)

	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.InDelta(t, 1.2, records[2].Price, 1e-9)
}

func TestListTrades_TruncatesAtLimit(t *testing.T) {
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{
			"results": [
				{"price": 1.0, "size": 1, "sip_timestamp": 1705329015000000000},
				{"price": 1.1, "size": 1, "sip_timestamp": 1705329016000000000},
				{"price": 1.2, "size": 1, "sip_timestamp": 1705329017000000000}
			],
			"next_url": "%s/v3/trades/O:X?cursor=more"
		}`, srv.URL)
	}))
	defer srv.Close()

	client := newTestClient(t, srv)
	records, err := client.ListTrades(context.Background(), "O:X", utcDay(2024, 1, 15), utcDay(2024, 1, 16), 5)

	require.NoError(t, err)
	assert.Len(t, records, 5, "exactly the configured limit, never more")
}

func TestListTrades_UnknownContract(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, `{"status":"NOT_FOUND"}`, http.StatusNotFound)
	}))
	defer srv.Close()

	client := newTestClient(t, srv)
	_, err := client.ListTrades(context.Background(), "O:NOPE", utcDay(2024, 1, 15), utcDay(2024, 1, 16), 100)

	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load(), "permanent faults must not be retried")
}

func TestListTrades_RetriesTransientFault(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			http.Error(w, "gateway timeout", http.StatusGatewayTimeout)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"results": [{"price": 1.0, "size": 1, "sip_timestamp": 1705329015000000000}]}`)
	}))
	defer srv.Close()

	client := newTestClient(t, srv)
	records, err := client.ListTrades(context.Background(), "O:X", utcDay(2024, 1, 15), utcDay(2024, 1, 16), 100)

	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, int32(2), calls.Load())
}
