package polygon

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"os"
	"time"

	"golang.org/x/time/rate"
)

const (
	defaultBaseURL = "https://api.polygon.io"

	// Variable de entorno consultada SOLO aquí, como fallback del api key
	// explícito. Ningún otro componente lee el entorno.
	apiKeyEnvVar = "POLYGON_API_KEY"

	// Rate limits conservadores bajo los límites documentados del plan
	// Options Starter (sin límite duro, pero 429 agresivo en ráfagas).
	referenceRatePerSec = 10
	tradesRatePerSec    = 20

	maxRetries    = 3
	baseRetryWait = 500 * time.Millisecond
)

// Client es el HTTP client de Polygon con rate limiting y retries.
// Los 429 y 5xx (fallos transitorios) se reintentan con backoff exponencial;
// los 4xx (contrato desconocido, auth) son permanentes y no se reintentan.
type Client struct {
	http       *http.Client
	baseURL    string
	apiKey     string
	refLimiter *rate.Limiter
	trdLimiter *rate.Limiter
}

// NewClient crea un Client contra el base URL dado (producción si está vacío).
// El api key explícito tiene prioridad; si falta se consulta POLYGON_API_KEY.
// Sin ninguno de los dos devuelve error — antes de cualquier actividad de red.
func NewClient(baseURL, apiKey string) (*Client, error) {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if apiKey == "" {
		apiKey = os.Getenv(apiKeyEnvVar)
	}
	if apiKey == "" {
		return nil, fmt.Errorf("polygon.NewClient: missing API key: set api.api_key in config or %s in the environment", apiKeyEnvVar)
	}
	return &Client{
		http:       &http.Client{Timeout: 30 * time.Second},
		baseURL:    baseURL,
		apiKey:     apiKey,
		refLimiter: rate.NewLimiter(referenceRatePerSec, 5),
		trdLimiter: rate.NewLimiter(tradesRatePerSec, 10),
	}, nil
}

// get hace un GET con rate limiting y retries. url puede ser absoluta
// (next_url de paginación) o un path relativo al base URL.
func (c *Client) get(ctx context.Context, limiter *rate.Limiter, url string, out any) error {
	if len(url) > 0 && url[0] == '/' {
		url = c.baseURL + url
	}
	return c.doWithRetry(ctx, limiter, func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
		return c.http.Do(req)
	}, out)
}

// doWithRetry ejecuta la función con backoff exponencial, respetando el contexto.
func (c *Client) doWithRetry(ctx context.Context, limiter *rate.Limiter, fn func() (*http.Response, error), out any) error {
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if err := limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter: %w", err)
		}

		resp, err := fn()
		if err != nil {
			if attempt == maxRetries {
				return fmt.Errorf("request failed after %d retries: %w", maxRetries, err)
			}
			c.sleep(ctx, attempt)
			continue
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			resp.Body.Close()
			slog.Warn("rate limited by API", "attempt", attempt+1)
			c.sleep(ctx, attempt)
			continue
		}

		if resp.StatusCode >= 500 {
			resp.Body.Close()
			if attempt == maxRetries {
				return fmt.Errorf("server error %d after %d retries", resp.StatusCode, maxRetries)
			}
			c.sleep(ctx, attempt)
			continue
		}

		if resp.StatusCode >= 400 {
			body, _ := io.ReadAll(resp.Body)
			resp.Body.Close()
			return fmt.Errorf("client error %d: %s", resp.StatusCode, string(body))
		}

		defer resp.Body.Close()
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
		return nil
	}
	return fmt.Errorf("exhausted %d retries", maxRetries)
}

// sleep espera con backoff exponencial, respetando el contexto.
func (c *Client) sleep(ctx context.Context, attempt int) {
	wait := time.Duration(math.Pow(2, float64(attempt))) * baseRetryWait
	select {
	case <-time.After(wait):
	case <-ctx.Done():
	}
}
