package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PriceSnapshot is the latest known quote for one symbol. Snapshots are
// written only by the price feed worker; the API reads them.
type PriceSnapshot struct {
	Symbol        string          `db:"symbol"`
	Name          string          `db:"name"`
	CurrentPrice  decimal.Decimal `db:"current_price"`
	PreviousClose decimal.Decimal `db:"previous_close"`
	Source        string          `db:"source"`
	FetchedAt     time.Time       `db:"fetched_at"`
}

// PricePoint is one element of a symbol's historical chart series.
type PricePoint struct {
	Symbol string          `db:"symbol"`
	Ts     time.Time       `db:"ts"`
	Close  decimal.Decimal `db:"close"`
}
