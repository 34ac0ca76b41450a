package controllers

import (
	"context"
	"github.com/shopspring/decimal"

	"github.com/rndosd/finclass/src/repositories"
	"github.com/rndosd/finclass/src/schemas"
	"github.com/rndosd/finclass/src/utils"
	"github.com/rndosd/finclass/src/ws"
)

type SettingsControllerI interface {
	GetClassSettings(ctx context.Context, classID string) (*schemas.MarketSettingsResponse, error)
	UpdateClassSettings(ctx context.Context, classID string, patch schemas.MarketSettingsPatch) (*schemas.MarketSettingsResponse, error)
	GetGlobalSettings(ctx context.Context) (*schemas.GlobalSettingsResponse, error)
	UpdateGlobalSettings(ctx context.Context, patch schemas.GlobalSettingsPatch) (*schemas.GlobalSettingsResponse, error)
}

type SettingsController struct {
	settings repositories.SettingsRepository
	hub      ws.Broadcaster
}

func NewSettingsController(settings repositories.SettingsRepository, hub ws.Broadcaster) *SettingsController {
	return &SettingsController{settings: settings, hub: hub}
}

// ValidateSettingsPatch checks every provided field against its documented
// range before anything is written.
func ValidateSettingsPatch(patch schemas.MarketSettingsPatch) error {
	one := decimal.NewFromInt(1)
	if patch.ConversionRate != nil && !patch.ConversionRate.IsPositive() {
		return utils.UnprocessableEntity("conversion rate must be positive")
	}
	if patch.TradeFeeRate != nil &&
		(patch.TradeFeeRate.IsNegative() || patch.TradeFeeRate.GreaterThanOrEqual(one)) {
		return utils.UnprocessableEntity("trade fee rate must be in [0, 1)")
	}
	if patch.ExchangeFeeRate != nil &&
		(patch.ExchangeFeeRate.IsNegative() || patch.ExchangeFeeRate.GreaterThanOrEqual(one)) {
		return utils.UnprocessableEntity("exchange fee rate must be in [0, 1)")
	}
	if patch.CurrencyUnit != nil && *patch.CurrencyUnit == "" {
		return utils.UnprocessableEntity("currency unit must not be empty")
	}
	return nil
}

func (c *SettingsController) GetClassSettings(ctx context.Context, classID string) (*schemas.MarketSettingsResponse, error) {
	settings, err := c.settings.GetClassSettings(ctx, classID)
	if err != nil {
		return nil, err
	}
	return &schemas.MarketSettingsResponse{
		ClassID:         settings.ClassID,
		ConversionRate:  settings.ConversionRate,
		TradeFeeRate:    settings.TradeFeeRate,
		ExchangeFeeRate: settings.ExchangeFeeRate,
		CurrencyUnit:    settings.CurrencyUnit,
		UpdatedAt:       settings.UpdatedAt,
	}, nil
}

func (c *SettingsController) UpdateClassSettings(ctx context.Context, classID string, patch schemas.MarketSettingsPatch) (*schemas.MarketSettingsResponse, error) {
	if err := ValidateSettingsPatch(patch); err != nil {
		return nil, err
	}
	// Ensure the row exists so a first-ever save does not update nothing.
	if _, err := c.settings.GetClassSettings(ctx, classID); err != nil {
		return nil, err
	}
	updated, err := c.settings.UpdateClassSettings(ctx, classID, patch)
	if err != nil {
		return nil, err
	}
	if c.hub != nil {
		c.hub.Broadcast("settings_updated", map[string]interface{}{
			"classId":         updated.ClassID,
			"conversionRate":  updated.ConversionRate,
			"tradeFeeRate":    updated.TradeFeeRate,
			"exchangeFeeRate": updated.ExchangeFeeRate,
			"currencyUnit":    updated.CurrencyUnit,
		})
	}
	return &schemas.MarketSettingsResponse{
		ClassID:         updated.ClassID,
		ConversionRate:  updated.ConversionRate,
		TradeFeeRate:    updated.TradeFeeRate,
		ExchangeFeeRate: updated.ExchangeFeeRate,
		CurrencyUnit:    updated.CurrencyUnit,
		UpdatedAt:       updated.UpdatedAt,
	}, nil
}

func (c *SettingsController) GetGlobalSettings(ctx context.Context) (*schemas.GlobalSettingsResponse, error) {
	global, err := c.settings.GetGlobalSettings(ctx)
	if err != nil {
		return nil, err
	}
	return &schemas.GlobalSettingsResponse{
		QuoteProxyURL: global.QuoteProxyURL,
		ChartProxyURL: global.ChartProxyURL,
		UpdatedAt:     global.UpdatedAt,
	}, nil
}

func (c *SettingsController) UpdateGlobalSettings(ctx context.Context, patch schemas.GlobalSettingsPatch) (*schemas.GlobalSettingsResponse, error) {
	if _, err := c.settings.GetGlobalSettings(ctx); err != nil {
		return nil, err
	}
	updated, err := c.settings.UpdateGlobalSettings(ctx, patch)
	if err != nil {
		return nil, err
	}
	return &schemas.GlobalSettingsResponse{
		QuoteProxyURL: updated.QuoteProxyURL,
		ChartProxyURL: updated.ChartProxyURL,
		UpdatedAt:     updated.UpdatedAt,
	}, nil
}
