package controllers

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/rndosd/finclass/src/models"
	"github.com/rndosd/finclass/src/repositories"
	"github.com/rndosd/finclass/src/schemas"
)

type PortfolioControllerI interface {
	GetSummary(ctx context.Context, studentID, classID string) (*schemas.PortfolioSummary, error)
	GetTradeHistory(ctx context.Context, studentID string, limit, offset int) ([]schemas.TradeHistoryItem, error)
}

// PortfolioController is the read side: it never mutates holdings, it only
// values them against the latest price snapshots.
type PortfolioController struct {
	portfolios repositories.PortfolioRepository
	trades     repositories.TradeRepository
	prices     repositories.PriceRepository
	settings   repositories.SettingsRepository
}

func NewPortfolioController(
	portfolios repositories.PortfolioRepository,
	trades repositories.TradeRepository,
	prices repositories.PriceRepository,
	settings repositories.SettingsRepository,
) *PortfolioController {
	return &PortfolioController{
		portfolios: portfolios,
		trades:     trades,
		prices:     prices,
		settings:   settings,
	}
}

// ValuePosition prices one holding. When no snapshot exists the entry is
// valued at its average cost so the caller never sees a blank valuation;
// profit rate is omitted when the average cost is zero because the ratio is
// not finite.
func ValuePosition(entry *models.PortfolioEntry, snapshot *models.PriceSnapshot) schemas.PositionResponse {
	qty := decimal.NewFromInt(entry.Quantity)

	currentPrice := entry.AvgPriceUSD
	stale := true
	if snapshot != nil {
		currentPrice = snapshot.CurrentPrice
		stale = false
	}

	evalAmount := currentPrice.Mul(qty)
	costBasis := entry.AvgPriceUSD.Mul(qty)
	profitLoss := evalAmount.Sub(costBasis)

	position := schemas.PositionResponse{
		Symbol:       entry.Symbol,
		CompanyName:  entry.CompanyName,
		Quantity:     entry.Quantity,
		AvgPriceUSD:  entry.AvgPriceUSD,
		CurrentPrice: currentPrice,
		PriceStale:   stale,
		EvalAmount:   evalAmount,
		ProfitLoss:   profitLoss,
	}
	if !costBasis.IsZero() {
		rate := profitLoss.Div(costBasis)
		position.ProfitRate = &rate
	}
	return position
}

func (c *PortfolioController) GetSummary(ctx context.Context, studentID, classID string) (*schemas.PortfolioSummary, error) {
	entries, err := c.portfolios.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}
	settings, err := c.settings.GetClassSettings(ctx, classID)
	if err != nil {
		return nil, err
	}
	snapshots, err := c.prices.ListSnapshots(ctx)
	if err != nil {
		return nil, err
	}
	bySymbol := make(map[string]*models.PriceSnapshot, len(snapshots))
	for i := range snapshots {
		bySymbol[snapshots[i].Symbol] = &snapshots[i]
	}

	summary := &schemas.PortfolioSummary{
		Positions:    []schemas.PositionResponse{},
		CurrencyUnit: settings.CurrencyUnit,
	}
	for i := range entries {
		position := ValuePosition(&entries[i], bySymbol[entries[i].Symbol])
		summary.Positions = append(summary.Positions, position)
		summary.TotalEval = summary.TotalEval.Add(position.EvalAmount)
		summary.TotalCost = summary.TotalCost.Add(entries[i].AvgPriceUSD.Mul(decimal.NewFromInt(entries[i].Quantity)))
		summary.TotalProfitLoss = summary.TotalProfitLoss.Add(position.ProfitLoss)
	}
	if !summary.TotalCost.IsZero() {
		rate := summary.TotalProfitLoss.Div(summary.TotalCost)
		summary.TotalProfitRate = &rate
	}
	if settings.ConversionRate.IsPositive() {
		summary.TotalEvalLocal = summary.TotalEval.Div(settings.ConversionRate)
	}
	return summary, nil
}

func (c *PortfolioController) GetTradeHistory(ctx context.Context, studentID string, limit, offset int) ([]schemas.TradeHistoryItem, error) {
	records, err := c.trades.ListByStudent(ctx, studentID, limit, offset)
	if err != nil {
		return nil, err
	}
	items := make([]schemas.TradeHistoryItem, 0, len(records))
	for _, r := range records {
		items = append(items, schemas.TradeHistoryItem{
			ID:          r.ID,
			Kind:        string(r.Kind),
			Symbol:      r.Symbol,
			CompanyName: r.CompanyName,
			Quantity:    r.Quantity,
			PriceUSD:    r.PriceUSD,
			Fee:         r.Fee,
			Total:       r.Total,
			Currency:    r.Currency,
			Description: r.Description,
			CreatedAt:   r.CreatedAt,
		})
	}
	return items, nil
}
