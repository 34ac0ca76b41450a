package schemas

import (
	"time"

	"github.com/shopspring/decimal"
)

type PositionResponse struct {
	Symbol       string           `json:"symbol"`
	CompanyName  string           `json:"companyName"`
	Quantity     int64            `json:"quantity"`
	AvgPriceUSD  decimal.Decimal  `json:"avgPriceUsd"`
	CurrentPrice decimal.Decimal  `json:"currentPrice"`
	PriceStale   bool             `json:"priceStale"`
	EvalAmount   decimal.Decimal  `json:"evalAmount"`
	ProfitLoss   decimal.Decimal  `json:"profitLoss"`
	ProfitRate   *decimal.Decimal `json:"profitRate,omitempty"`
}

type PortfolioSummary struct {
	Positions       []PositionResponse `json:"positions"`
	TotalCost       decimal.Decimal    `json:"totalCost"`
	TotalEval       decimal.Decimal    `json:"totalEval"`
	TotalProfitLoss decimal.Decimal    `json:"totalProfitLoss"`
	TotalProfitRate *decimal.Decimal   `json:"totalProfitRate,omitempty"`
	TotalEvalLocal  decimal.Decimal    `json:"totalEvalLocal"`
	CurrencyUnit    string             `json:"currencyUnit"`
}

type TradeHistoryItem struct {
	ID          string          `json:"id"`
	Kind        string          `json:"kind"`
	Symbol      string          `json:"symbol,omitempty"`
	CompanyName string          `json:"companyName,omitempty"`
	Quantity    int64           `json:"quantity,omitempty"`
	PriceUSD    decimal.Decimal `json:"priceUsd"`
	Fee         decimal.Decimal `json:"fee"`
	Total       decimal.Decimal `json:"total"`
	Currency    string          `json:"currency"`
	Description string          `json:"description"`
	CreatedAt   time.Time       `json:"createdAt"`
}
