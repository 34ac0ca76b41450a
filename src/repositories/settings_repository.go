package repositories

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rndosd/finclass/src/models"
	"github.com/rndosd/finclass/src/schemas"
)

type SettingsRepository interface {
	GetClassSettings(ctx context.Context, classID string) (*models.MarketSettings, error)
	UpdateClassSettings(ctx context.Context, classID string, patch schemas.MarketSettingsPatch) (*models.MarketSettings, error)
	GetGlobalSettings(ctx context.Context) (*models.GlobalSettings, error)
	UpdateGlobalSettings(ctx context.Context, patch schemas.GlobalSettingsPatch) (*models.GlobalSettings, error)
}

type settingsRepo struct {
	db *pgxpool.Pool
}

func NewSettingsRepository(db *pgxpool.Pool) SettingsRepository {
	return &settingsRepo{db: db}
}

const classSettingsColumns = `class_id, conversion_rate, trade_fee_rate, exchange_fee_rate, currency_unit, updated_at`

func scanClassSettings(row pgx.Row) (*models.MarketSettings, error) {
	var s models.MarketSettings
	err := row.Scan(&s.ClassID, &s.ConversionRate, &s.TradeFeeRate, &s.ExchangeFeeRate, &s.CurrencyUnit, &s.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// GetClassSettings returns the classroom's market configuration, creating
// the row with defaults the first time a class is read.
func (r *settingsRepo) GetClassSettings(ctx context.Context, classID string) (*models.MarketSettings, error) {
	_, err := r.db.Exec(ctx, `
		INSERT INTO market_settings (class_id, conversion_rate, trade_fee_rate, exchange_fee_rate, currency_unit)
		VALUES ($1, 0.0008, 0.01, 0.01, 'points')
		ON CONFLICT (class_id) DO NOTHING`, classID)
	if err != nil {
		return nil, err
	}
	row := r.db.QueryRow(ctx,
		`SELECT `+classSettingsColumns+` FROM market_settings WHERE class_id = $1`, classID)
	return scanClassSettings(row)
}

// UpdateClassSettings applies a merge-style patch: nil fields keep their
// stored value.
func (r *settingsRepo) UpdateClassSettings(ctx context.Context, classID string, patch schemas.MarketSettingsPatch) (*models.MarketSettings, error) {
	row := r.db.QueryRow(ctx, `
		UPDATE market_settings SET
			conversion_rate = COALESCE($2, conversion_rate),
			trade_fee_rate = COALESCE($3, trade_fee_rate),
			exchange_fee_rate = COALESCE($4, exchange_fee_rate),
			currency_unit = COALESCE($5, currency_unit),
			updated_at = now()
		WHERE class_id = $1
		RETURNING `+classSettingsColumns,
		classID, patch.ConversionRate, patch.TradeFeeRate, patch.ExchangeFeeRate, patch.CurrencyUnit)
	return scanClassSettings(row)
}

func scanGlobalSettings(row pgx.Row) (*models.GlobalSettings, error) {
	var g models.GlobalSettings
	err := row.Scan(&g.ID, &g.QuoteProxyURL, &g.ChartProxyURL, &g.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &g, nil
}

func (r *settingsRepo) GetGlobalSettings(ctx context.Context) (*models.GlobalSettings, error) {
	_, err := r.db.Exec(ctx, `
		INSERT INTO global_settings (id, quote_proxy_url, chart_proxy_url)
		VALUES (1, '', '')
		ON CONFLICT (id) DO NOTHING`)
	if err != nil {
		return nil, err
	}
	row := r.db.QueryRow(ctx,
		`SELECT id, quote_proxy_url, chart_proxy_url, updated_at FROM global_settings WHERE id = 1`)
	return scanGlobalSettings(row)
}

func (r *settingsRepo) UpdateGlobalSettings(ctx context.Context, patch schemas.GlobalSettingsPatch) (*models.GlobalSettings, error) {
	row := r.db.QueryRow(ctx, `
		UPDATE global_settings SET
			quote_proxy_url = COALESCE($1, quote_proxy_url),
			chart_proxy_url = COALESCE($2, chart_proxy_url),
			updated_at = now()
		WHERE id = 1
		RETURNING id, quote_proxy_url, chart_proxy_url, updated_at`,
		patch.QuoteProxyURL, patch.ChartProxyURL)
	return scanGlobalSettings(row)
}
