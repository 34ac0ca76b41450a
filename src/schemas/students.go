package schemas

import (
	"github.com/shopspring/decimal"
)

type CreateStudentRequest struct {
	Name          string `json:"name" validate:"required"`
	StudentNumber int    `json:"studentNumber" validate:"required,gt=0"`
	Role          string `json:"role" validate:"omitempty,oneof=student teacher admin"`
}

type StudentResponse struct {
	ID            string          `json:"id"`
	ClassID       string          `json:"classId"`
	Name          string          `json:"name"`
	StudentNumber int             `json:"studentNumber"`
	Role          string          `json:"role"`
	CashBalance   decimal.Decimal `json:"cashBalance"`
	USDBalance    decimal.Decimal `json:"usdBalance"`
	Deposit       decimal.Decimal `json:"deposit"`
	Loan          decimal.Decimal `json:"loan"`
	StockValue    decimal.Decimal `json:"stockValue"`
	CreditScore   int             `json:"creditScore"`
}

type CreditAdjustRequest struct {
	Delta  int    `json:"delta" validate:"required"`
	Reason string `json:"reason" validate:"required"`
}

type RewardRequest struct {
	Amount decimal.Decimal `json:"amount"`
	Reason string          `json:"reason" validate:"required"`
}
