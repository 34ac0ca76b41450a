package schemas

import (
	"time"

	"github.com/shopspring/decimal"
)

type QuoteResponse struct {
	Symbol        string          `json:"symbol"`
	Name          string          `json:"name"`
	Price         decimal.Decimal `json:"price"`
	PreviousClose decimal.Decimal `json:"previousClose"`
	Change        decimal.Decimal `json:"change"`
	Source        string          `json:"source"`
	FetchedAt     time.Time       `json:"fetchedAt"`
}

type ChartPoint struct {
	Ts    time.Time       `json:"ts"`
	Close decimal.Decimal `json:"close"`
}

type ChartResponse struct {
	Symbol string       `json:"symbol"`
	Points []ChartPoint `json:"points"`
}
