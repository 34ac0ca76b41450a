package marketdata

// quoteEnvelope mirrors the proxy's quote endpoint payload (a trimmed
// Yahoo-style quote response).
type quoteEnvelope struct {
	Quotes []quoteSchema `json:"quotes"`
}

type quoteSchema struct {
	Symbol             string  `json:"symbol"`
	ShortName          string  `json:"shortName"`
	RegularMarketPrice float64 `json:"regularMarketPrice"`
	PreviousClose      float64 `json:"previousClose"`
	Source             string  `json:"source"`
}

type chartEnvelope struct {
	Symbol string        `json:"symbol"`
	Points []chartSchema `json:"points"`
}

type chartSchema struct {
	Timestamp int64   `json:"timestamp"`
	Close     float64 `json:"close"`
}
