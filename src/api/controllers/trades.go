package controllers

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/rndosd/finclass/src/auth"
	"github.com/rndosd/finclass/src/database"
	"github.com/rndosd/finclass/src/models"
	"github.com/rndosd/finclass/src/repositories"
	"github.com/rndosd/finclass/src/schemas"
	"github.com/rndosd/finclass/src/utils"
	"github.com/rndosd/finclass/src/ws"
)

type TradesControllerI interface {
	Buy(ctx context.Context, actor *auth.Claims, req *schemas.TradeRequest) *schemas.TradeResult
	Sell(ctx context.Context, actor *auth.Claims, req *schemas.TradeRequest) *schemas.TradeResult
	Exchange(ctx context.Context, actor *auth.Claims, req *schemas.ExchangeRequest) *schemas.TradeResult
}

// TradesController executes buys, sells and currency exchanges. Every
// operation runs in one all-or-nothing transaction: balance check, balance
// mutation, portfolio upsert and history append commit together or not at
// all. The student row lock taken first serializes concurrent trades for
// the same student.
type TradesController struct {
	db         database.TxRunner
	students   repositories.StudentRepository
	portfolios repositories.PortfolioRepository
	trades     repositories.TradeRepository
	settings   repositories.SettingsRepository
	hub        ws.Broadcaster
	validate   *validator.Validate
}

func NewTradesController(
	db database.TxRunner,
	students repositories.StudentRepository,
	portfolios repositories.PortfolioRepository,
	trades repositories.TradeRepository,
	settings repositories.SettingsRepository,
	hub ws.Broadcaster,
) *TradesController {
	return &TradesController{
		db:         db,
		students:   students,
		portfolios: portfolios,
		trades:     trades,
		settings:   settings,
		hub:        hub,
		validate:   validator.New(),
	}
}

func tradeFailure(message string) *schemas.TradeResult {
	return &schemas.TradeResult{Success: false, Message: message}
}

// BuyTotals computes itemCost, fee and the rounded total debit for a buy.
func BuyTotals(price decimal.Decimal, quantity int64, feeRate decimal.Decimal) (itemCost, fee, total decimal.Decimal) {
	qty := decimal.NewFromInt(quantity)
	itemCost = price.Mul(qty)
	fee = itemCost.Mul(feeRate)
	total = utils.RoundUSD(itemCost.Add(fee))
	return itemCost, fee, total
}

// SellProceeds computes the fee and the rounded net credit for a sell.
func SellProceeds(price decimal.Decimal, quantity int64, feeRate decimal.Decimal) (fee, proceeds decimal.Decimal) {
	qty := decimal.NewFromInt(quantity)
	gross := price.Mul(qty)
	fee = gross.Mul(feeRate)
	proceeds = utils.RoundUSD(gross.Sub(fee))
	return fee, proceeds
}

// WeightedAverage folds a new purchase into an existing average cost basis.
func WeightedAverage(oldAvg decimal.Decimal, oldQty int64, price decimal.Decimal, qty int64) decimal.Decimal {
	total := decimal.NewFromInt(oldQty + qty)
	if total.IsZero() {
		return decimal.Zero
	}
	held := oldAvg.Mul(decimal.NewFromInt(oldQty))
	added := price.Mul(decimal.NewFromInt(qty))
	return held.Add(added).Div(total)
}

func (c *TradesController) validateTradeRequest(req *schemas.TradeRequest) error {
	if err := c.validate.Struct(req); err != nil {
		return err
	}
	if req.PriceUSD.IsNegative() {
		return fmt.Errorf("price must not be negative")
	}
	return nil
}

func (c *TradesController) loadSettings(ctx context.Context, classID string) (*models.MarketSettings, error) {
	settings, err := c.settings.GetClassSettings(ctx, classID)
	if err != nil {
		return nil, err
	}
	one := decimal.NewFromInt(1)
	if settings.TradeFeeRate.IsNegative() || settings.TradeFeeRate.GreaterThanOrEqual(one) ||
		settings.ExchangeFeeRate.IsNegative() || settings.ExchangeFeeRate.GreaterThanOrEqual(one) ||
		!settings.ConversionRate.IsPositive() {
		return nil, fmt.Errorf("market settings for class %s are out of range", classID)
	}
	return settings, nil
}

func (c *TradesController) Buy(ctx context.Context, actor *auth.Claims, req *schemas.TradeRequest) *schemas.TradeResult {
	logger := utils.LoggerFromContext(ctx)

	if err := c.validateTradeRequest(req); err != nil {
		return tradeFailure("invalid trade request: " + err.Error())
	}
	settings, err := c.loadSettings(ctx, actor.ClassID)
	if err != nil {
		logger.WithError(err).Error("buy: could not load market settings")
		return tradeFailure(genericTradeError)
	}

	itemCost, fee, total := BuyTotals(req.PriceUSD, req.Quantity, settings.TradeFeeRate)

	record := &models.TradeRecord{
		ID:          uuid.NewString(),
		ClassID:     actor.ClassID,
		StudentID:   actor.UserID,
		StudentName: actor.Name,
		Kind:        models.TradeBuy,
		Symbol:      req.Symbol,
		CompanyName: req.CompanyName,
		Quantity:    req.Quantity,
		PriceUSD:    req.PriceUSD,
		Fee:         utils.RoundUSD(fee),
		Total:       total,
		Currency:    "USD",
		Version:     models.RecordVersion,
		Description: fmt.Sprintf("%s bought %d %s @ $%s (fee $%s)",
			actor.Name, req.Quantity, req.Symbol, req.PriceUSD.StringFixed(2), utils.RoundUSD(fee).StringFixed(2)),
	}

	err = c.db.RunInTx(ctx, func(tx pgx.Tx) error {
		student, err := c.students.GetForUpdate(ctx, tx, actor.UserID)
		if errors.Is(err, repositories.ErrNotFound) {
			return errAccountNotFound
		}
		if err != nil {
			return err
		}
		if student.USDBalance.LessThan(total) {
			return errInsufficientFunds
		}

		var oldQty int64
		oldAvg := decimal.Zero
		entry, err := c.portfolios.GetEntry(ctx, tx, actor.UserID, req.Symbol)
		if err != nil && !errors.Is(err, repositories.ErrNotFound) {
			return err
		}
		if entry != nil {
			oldQty = entry.Quantity
			oldAvg = entry.AvgPriceUSD
		}

		newQty := oldQty + req.Quantity
		newAvg := WeightedAverage(oldAvg, oldQty, req.PriceUSD, req.Quantity)

		newUSD := student.USDBalance.Sub(total)
		if err := c.students.UpdateBalances(ctx, tx, student.ID, student.CashBalance, newUSD); err != nil {
			return err
		}
		newStockValue := student.StockValue.Add(itemCost)
		if err := c.students.UpdateStockValue(ctx, tx, student.ID, newStockValue); err != nil {
			return err
		}

		if err := c.portfolios.Upsert(ctx, &models.PortfolioEntry{
			StudentID:   student.ID,
			Symbol:      req.Symbol,
			CompanyName: req.CompanyName,
			Quantity:    newQty,
			AvgPriceUSD: newAvg,
		}, tx); err != nil {
			return err
		}

		return c.trades.Append(ctx, record, tx)
	})
	if err != nil {
		return c.tradeError(ctx, "buy", err)
	}

	c.broadcastTrade(record)
	return &schemas.TradeResult{Success: true, Message: "purchase completed", TradeID: record.ID}
}

func (c *TradesController) Sell(ctx context.Context, actor *auth.Claims, req *schemas.TradeRequest) *schemas.TradeResult {
	logger := utils.LoggerFromContext(ctx)

	if err := c.validateTradeRequest(req); err != nil {
		return tradeFailure("invalid trade request: " + err.Error())
	}
	settings, err := c.loadSettings(ctx, actor.ClassID)
	if err != nil {
		logger.WithError(err).Error("sell: could not load market settings")
		return tradeFailure(genericTradeError)
	}

	fee, proceeds := SellProceeds(req.PriceUSD, req.Quantity, settings.TradeFeeRate)

	record := &models.TradeRecord{
		ID:          uuid.NewString(),
		ClassID:     actor.ClassID,
		StudentID:   actor.UserID,
		StudentName: actor.Name,
		Kind:        models.TradeSell,
		Symbol:      req.Symbol,
		CompanyName: req.CompanyName,
		Quantity:    req.Quantity,
		PriceUSD:    req.PriceUSD,
		Fee:         utils.RoundUSD(fee),
		Total:       proceeds,
		Currency:    "USD",
		Version:     models.RecordVersion,
		Description: fmt.Sprintf("%s sold %d %s @ $%s (fee $%s)",
			actor.Name, req.Quantity, req.Symbol, req.PriceUSD.StringFixed(2), utils.RoundUSD(fee).StringFixed(2)),
	}

	err = c.db.RunInTx(ctx, func(tx pgx.Tx) error {
		student, err := c.students.GetForUpdate(ctx, tx, actor.UserID)
		if errors.Is(err, repositories.ErrNotFound) {
			return errAccountNotFound
		}
		if err != nil {
			return err
		}

		entry, err := c.portfolios.GetEntry(ctx, tx, actor.UserID, req.Symbol)
		if errors.Is(err, repositories.ErrNotFound) {
			return errNotHolding
		}
		if err != nil {
			return err
		}
		if entry.Quantity < req.Quantity {
			return errInsufficientHoldings
		}

		newUSD := student.USDBalance.Add(proceeds)
		if err := c.students.UpdateBalances(ctx, tx, student.ID, student.CashBalance, newUSD); err != nil {
			return err
		}
		soldBasis := entry.AvgPriceUSD.Mul(decimal.NewFromInt(req.Quantity))
		if err := c.students.UpdateStockValue(ctx, tx, student.ID, student.StockValue.Sub(soldBasis)); err != nil {
			return err
		}

		remaining := entry.Quantity - req.Quantity
		if remaining == 0 {
			if err := c.portfolios.Delete(ctx, tx, student.ID, req.Symbol); err != nil {
				return err
			}
		} else {
			// Average cost is intentionally not recomputed on a partial
			// sell; remaining shares keep the pre-sale basis.
			entry.Quantity = remaining
			if err := c.portfolios.Upsert(ctx, entry, tx); err != nil {
				return err
			}
		}

		return c.trades.Append(ctx, record, tx)
	})
	if err != nil {
		return c.tradeError(ctx, "sell", err)
	}

	c.broadcastTrade(record)
	return &schemas.TradeResult{Success: true, Message: "sale completed", TradeID: record.ID}
}

func (c *TradesController) Exchange(ctx context.Context, actor *auth.Claims, req *schemas.ExchangeRequest) *schemas.TradeResult {
	logger := utils.LoggerFromContext(ctx)

	if err := c.validate.Struct(req); err != nil {
		return tradeFailure("invalid exchange request: " + err.Error())
	}
	if !req.Amount.IsPositive() {
		return tradeFailure("invalid exchange request: amount must be positive")
	}
	// The preview the user confirmed must match what was submitted; a stale
	// preview would otherwise move a different amount than the user saw.
	if !utils.DecimalsEqual(req.CalculatedResult.InputAmount, req.Amount) {
		return tradeFailure("invalid exchange request: preview does not match submitted amount")
	}

	settings, err := c.loadSettings(ctx, actor.ClassID)
	if err != nil {
		logger.WithError(err).Error("exchange: could not load market settings")
		return tradeFailure(genericTradeError)
	}

	fee := req.Amount.Mul(settings.ExchangeFeeRate)
	net := req.Amount.Sub(fee)

	var received, feeLocal decimal.Decimal
	var description, currency string
	switch req.Direction {
	case schemas.DirectionLocalToUSD:
		received = net.Mul(settings.ConversionRate)
		feeLocal = fee
		currency = settings.CurrencyUnit
		description = fmt.Sprintf("%s exchanged %s %s into $%s (fee %s %s)",
			actor.Name, req.Amount.String(), settings.CurrencyUnit, received.String(), fee.String(), settings.CurrencyUnit)
	case schemas.DirectionUSDToLocal:
		received = net.Div(settings.ConversionRate)
		feeLocal = fee.Mul(settings.ConversionRate)
		currency = "USD"
		description = fmt.Sprintf("%s exchanged $%s into %s %s (fee $%s)",
			actor.Name, req.Amount.String(), received.String(), settings.CurrencyUnit, fee.String())
	default:
		return tradeFailure("invalid exchange request: unknown direction")
	}

	record := &models.TradeRecord{
		ID:          uuid.NewString(),
		ClassID:     actor.ClassID,
		StudentID:   actor.UserID,
		StudentName: actor.Name,
		Kind:        models.TradeExchange,
		Fee:         fee,
		FeeLocal:    feeLocal,
		Total:       received,
		Currency:    currency,
		Version:     models.RecordVersion,
		Description: description,
	}

	err = c.db.RunInTx(ctx, func(tx pgx.Tx) error {
		student, err := c.students.GetForUpdate(ctx, tx, actor.UserID)
		if errors.Is(err, repositories.ErrNotFound) {
			return errAccountNotFound
		}
		if err != nil {
			return err
		}

		var newCash, newUSD decimal.Decimal
		if req.Direction == schemas.DirectionLocalToUSD {
			if student.CashBalance.LessThan(req.Amount) {
				return errInsufficientFunds
			}
			newCash = student.CashBalance.Sub(req.Amount)
			newUSD = student.USDBalance.Add(received)
		} else {
			if student.USDBalance.LessThan(req.Amount) {
				return errInsufficientFunds
			}
			newUSD = student.USDBalance.Sub(req.Amount)
			newCash = student.CashBalance.Add(received)
		}

		if err := c.students.UpdateBalances(ctx, tx, student.ID, newCash, newUSD); err != nil {
			return err
		}
		return c.trades.Append(ctx, record, tx)
	})
	if err != nil {
		return c.tradeError(ctx, "exchange", err)
	}

	c.broadcastTrade(record)
	return &schemas.TradeResult{Success: true, Message: "exchange completed", TradeID: record.ID}
}

// tradeError maps a failed transaction to the uniform result shape:
// business-rule violations travel verbatim, everything else is logged and
// replaced with a generic message.
func (c *TradesController) tradeError(ctx context.Context, op string, err error) *schemas.TradeResult {
	switch {
	case errors.Is(err, errInsufficientFunds),
		errors.Is(err, errInsufficientHoldings),
		errors.Is(err, errNotHolding),
		errors.Is(err, errAccountNotFound):
		return tradeFailure(err.Error())
	default:
		utils.LoggerFromContext(ctx).WithError(err).Errorf("%s trade failed", op)
		return tradeFailure(genericTradeError)
	}
}

func (c *TradesController) broadcastTrade(record *models.TradeRecord) {
	if c.hub == nil {
		return
	}
	c.hub.Broadcast("trade_executed", map[string]interface{}{
		"tradeId":     record.ID,
		"studentId":   record.StudentID,
		"kind":        record.Kind,
		"symbol":      record.Symbol,
		"description": record.Description,
	})
}
