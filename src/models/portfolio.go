package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PortfolioEntry is one held security for one student. An entry exists only
// while quantity > 0; selling the full position deletes the row.
type PortfolioEntry struct {
	StudentID   string          `db:"student_id"`
	Symbol      string          `db:"symbol"`
	CompanyName string          `db:"company_name"`
	Quantity    int64           `db:"quantity"`
	AvgPriceUSD decimal.Decimal `db:"avg_price_usd"`
	LastUpdated time.Time       `db:"last_updated"`
}
