package polygon

// types.go — payloads crudos de los endpoints v3 de Polygon.

type contractsResponse struct {
	Results []rawContract `json:"results"`
	Status  string        `json:"status"`
	NextURL string        `json:"next_url"`
}

type rawContract struct {
	Ticker           string  `json:"ticker"`
	UnderlyingTicker string  `json:"underlying_ticker"`
	ExpirationDate   string  `json:"expiration_date"` // YYYY-MM-DD
	StrikePrice      float64 `json:"strike_price"`
	ContractType     string  `json:"contract_type"` // "call" | "put"
}

type tradesResponse struct {
	Results []rawTrade `json:"results"`
	Status  string     `json:"status"`
	NextURL string     `json:"next_url"`
}

// rawTrade conserva solo lo que consumimos. El payload real trae además
// exchange, conditions y sequence_number; granularidad diaria no los necesita.
type rawTrade struct {
	Price        float64 `json:"price"`
	Size         float64 `json:"size"`
	SipTimestamp int64   `json:"sip_timestamp"` // nanos Unix UTC
}
