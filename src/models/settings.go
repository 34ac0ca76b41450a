package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// MarketSettings is the per-classroom trading configuration. ConversionRate
// is USD per one unit of local currency; fee rates are fractions in [0, 1).
type MarketSettings struct {
	ClassID         string          `db:"class_id"`
	ConversionRate  decimal.Decimal `db:"conversion_rate"`
	TradeFeeRate    decimal.Decimal `db:"trade_fee_rate"`
	ExchangeFeeRate decimal.Decimal `db:"exchange_fee_rate"`
	CurrencyUnit    string          `db:"currency_unit"`
	UpdatedAt       time.Time       `db:"updated_at"`
}

// GlobalSettings is the single shared configuration row: proxy endpoints the
// price feed worker fetches quotes and chart series from.
type GlobalSettings struct {
	ID            int       `db:"id"`
	QuoteProxyURL string    `db:"quote_proxy_url"`
	ChartProxyURL string    `db:"chart_proxy_url"`
	UpdatedAt     time.Time `db:"updated_at"`
}
