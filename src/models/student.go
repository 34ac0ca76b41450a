package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Role string

const (
	RoleStudent Role = "student"
	RoleTeacher Role = "teacher"
	RoleAdmin   Role = "admin"
)

// Student is one classroom account. Money lives in two currencies: the
// classroom's local currency (CashBalance, plus Deposit/Loan positions held
// at the class bank) and USD used for stock trading.
type Student struct {
	ID            string          `db:"id"`
	ClassID       string          `db:"class_id"`
	Name          string          `db:"name"`
	StudentNumber int             `db:"student_number"`
	Role          Role            `db:"role"`
	CashBalance   decimal.Decimal `db:"cash_balance"`
	USDBalance    decimal.Decimal `db:"usd_balance"`
	Deposit       decimal.Decimal `db:"deposit"`
	Loan          decimal.Decimal `db:"loan"`
	StockValue    decimal.Decimal `db:"stock_value"`
	CreditScore   int             `db:"credit_score"`
	Active        bool            `db:"active"`
	CreatedAt     time.Time       `db:"created_at"`
	UpdatedAt     time.Time       `db:"updated_at"`
}
