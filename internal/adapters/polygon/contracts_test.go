package polygon_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/alejandrodnm/optflow/internal/adapters/polygon"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, srv *httptest.Server) *polygon.Client {
	t.Helper()
	client, err := polygon.NewClient(srv.URL, "test-key")
	require.NoError(t, err)
	return client
}

func expiry(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.ParseInLocation("2006-01-02", s, time.UTC)
	require.NoError(t, err)
	return d
}

func TestNewClient_MissingAPIKey(t *testing.T) {
	t.Setenv("POLYGON_API_KEY", "")

	_, err := polygon.NewClient("", "")
	require.Error(t, err, "missing credentials must fail at construction, before any network call")
}

func TestNewClient_EnvFallback(t *testing.T) {
	t.Setenv("POLYGON_API_KEY", "from-env")

	_, err := polygon.NewClient("", "")
	assert.NoError(t, err)
}

func TestListContracts_Success(t *testing.T) {
	data, err := os.ReadFile("../../../testdata/fixtures/polygon_contracts.json")
	require.NoError(t, err)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v3/reference/options/contracts", r.URL.Path)
		assert.Equal(t, "AAPL", r.URL.Query().Get("underlying_ticker"))
		assert.Equal(t, "2024-01-19", r.URL.Query().Get("expiration_date"))
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		w.Write(data)
	}))
	defer srv.Close()

	client := newTestClient(t, srv)
	refs, err := client.ListContracts(context.Background(), "AAPL", expiry(t, "2024-01-19"), 100)

	require.NoError(t, err)
	// El adapter devuelve lo que el provider dio, incluidas las expiraciones
	// que no coinciden — revalidar es trabajo del resolver.
	require.Len(t, refs, 5)
	assert.Equal(t, "O:AAPL240119C00150000", refs[0].ContractID)
	assert.Equal(t, "AAPL", refs[0].Underlying)
	assert.Equal(t, expiry(t, "2024-01-19"), refs[0].ExpirationDate)
	assert.Equal(t, expiry(t, "2024-01-26"), refs[2].ExpirationDate)
}

func TestListContracts_Pagination(t *testing.T) {
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Query().Get("cursor") == "" {
			fmt.Fprintf(w, `{
				"results": [
					{"ticker": "O:A1", "underlying_ticker": "AAPL", "expiration_date": "2024-01-19"},
					{"ticker": "O:A2", "underlying_ticker": "AAPL", "expiration_date": "2024-01-19"}
				],
				"next_url": "%s/v3/reference/options/contracts?cursor=page2"
			}`, srv.URL)
			return
		}
		fmt.Fprint(w, `{
			"results": [
				{"ticker": "O:A3", "underlying_ticker": "AAPL", "expiration_date": "2024-01-19"}
			]
		}`)
	}))
	defer srv.Close()

	client := newTestClient(t, srv)
	refs, err := client.ListContracts(context.Background(), "AAPL", expiry(t, "2024-01-19"), 100)

	require.NoError(t, err)
	require.Len(t, refs, 3)
	assert.Equal(t, "O:A3", refs[2].ContractID)
}

func TestListContracts_LimitStopsPagination(t *testing.T) {
	pages := 0
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		pages++
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{
			"results": [
				{"ticker": "O:P%d-1", "underlying_ticker": "AAPL", "expiration_date": "2024-01-19"},
				{"ticker": "O:P%d-2", "underlying_ticker": "AAPL", "expiration_date": "2024-01-19"}
			],
			"next_url": "%s/v3/reference/options/contracts?cursor=more"
		}`, pages, pages, srv.URL)
	}))
	defer srv.Close()

	client := newTestClient(t, srv)
	refs, err := client.ListContracts(context.Background(), "AAPL", expiry(t, "2024-01-19"), 3)

	require.NoError(t, err)
	assert.Len(t, refs, 3, "hard truncation at limit")
	assert.Equal(t, 2, pages, "must stop draining the cursor once the limit is reached")
}

func TestListContracts_ClientError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"status":"NOT_AUTHORIZED"}`, http.StatusForbidden)
	}))
	defer srv.Close()

	client := newTestClient(t, srv)
	_, err := client.ListContracts(context.Background(), "AAPL", expiry(t, "2024-01-19"), 100)

	// 4xx es permanente: sin retries, error inmediato (el resolver lo absorbe)
	require.Error(t, err)
}

func TestListContracts_MalformedExpirationSkipped(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{
			"results": [
				{"ticker": "O:BAD", "underlying_ticker": "AAPL", "expiration_date": "not-a-date"},
				{"ticker": "O:GOOD", "underlying_ticker": "AAPL", "expiration_date": "2024-01-19"}
			]
		}`)
	}))
	defer srv.Close()

	client := newTestClient(t, srv)
	refs, err := client.ListContracts(context.Background(), "AAPL", expiry(t, "2024-01-19"), 100)

	require.NoError(t, err)
	require.Len(t, refs, 1)
	assert.Equal(t, "O:GOOD", refs[0].ContractID)
}
