package schemas

import (
	"time"

	"github.com/shopspring/decimal"
)

type MarketSettingsResponse struct {
	ClassID         string          `json:"classId"`
	ConversionRate  decimal.Decimal `json:"conversionRate"`
	TradeFeeRate    decimal.Decimal `json:"tradeFeeRate"`
	ExchangeFeeRate decimal.Decimal `json:"exchangeFeeRate"`
	CurrencyUnit    string          `json:"currencyUnit"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

// MarketSettingsPatch is a merge-style update: nil fields are left untouched.
type MarketSettingsPatch struct {
	ConversionRate  *decimal.Decimal `json:"conversionRate,omitempty"`
	TradeFeeRate    *decimal.Decimal `json:"tradeFeeRate,omitempty"`
	ExchangeFeeRate *decimal.Decimal `json:"exchangeFeeRate,omitempty"`
	CurrencyUnit    *string          `json:"currencyUnit,omitempty"`
}

type GlobalSettingsResponse struct {
	QuoteProxyURL string    `json:"quoteProxyUrl"`
	ChartProxyURL string    `json:"chartProxyUrl"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

type GlobalSettingsPatch struct {
	QuoteProxyURL *string `json:"quoteProxyUrl,omitempty"`
	ChartProxyURL *string `json:"chartProxyUrl,omitempty"`
}
