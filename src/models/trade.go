package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type TradeKind string

const (
	TradeBuy      TradeKind = "buy"
	TradeSell     TradeKind = "sell"
	TradeExchange TradeKind = "exchange"
)

// RecordVersion tags every appended trade record with the schema revision
// it was written under.
const RecordVersion = "2"

// TradeRecord is the append-only audit row for an executed buy, sell or
// currency exchange. Rows are never updated or deleted.
type TradeRecord struct {
	ID          string          `db:"id"`
	ClassID     string          `db:"class_id"`
	StudentID   string          `db:"student_id"`
	StudentName string          `db:"student_name"`
	Kind        TradeKind       `db:"kind"`
	Symbol      string          `db:"symbol"`
	CompanyName string          `db:"company_name"`
	Quantity    int64           `db:"quantity"`
	PriceUSD    decimal.Decimal `db:"price_usd"`
	Fee         decimal.Decimal `db:"fee"`
	FeeLocal    decimal.Decimal `db:"fee_local"`
	Total       decimal.Decimal `db:"total"`
	Currency    string          `db:"currency"`
	Description string          `db:"description"`
	Version     string          `db:"version"`
	CreatedAt   time.Time       `db:"created_at"`
}
