package schemas

import (
	"github.com/shopspring/decimal"
)

// Exchange directions. LocalToUSD converts classroom currency into trading
// USD; USDToLocal converts back.
const (
	DirectionLocalToUSD = "localToUsd"
	DirectionUSDToLocal = "usdToLocal"
)

type TradeRequest struct {
	Symbol      string          `json:"symbol" validate:"required"`
	CompanyName string          `json:"companyName" validate:"required"`
	Quantity    int64           `json:"quantity" validate:"required,gt=0"`
	PriceUSD    decimal.Decimal `json:"priceUsd"`
}

// ExchangePreview is the client-side computed conversion the user confirmed.
// The server re-checks InputAmount against the submitted amount so a stale
// preview can never move a different amount than the user saw.
type ExchangePreview struct {
	InputAmount decimal.Decimal `json:"inputAmount"`
	Fee         decimal.Decimal `json:"fee"`
	Result      decimal.Decimal `json:"result"`
}

type ExchangeRequest struct {
	Direction        string          `json:"direction" validate:"required,oneof=localToUsd usdToLocal"`
	Amount           decimal.Decimal `json:"amount"`
	CalculatedResult ExchangePreview `json:"calculatedResult"`
}

// TradeResult is the uniform outcome shape for buy/sell/exchange. Handlers
// never branch on error types, only on Success.
type TradeResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	TradeID string `json:"tradeId,omitempty"`
}
