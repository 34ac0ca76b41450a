package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rndosd/finclass/src/models"
)

type PriceRepository interface {
	UpsertSnapshot(ctx context.Context, snap *models.PriceSnapshot, tx pgx.Tx) error
	GetSnapshot(ctx context.Context, symbol string) (*models.PriceSnapshot, error)
	ListSnapshots(ctx context.Context) ([]models.PriceSnapshot, error)
	AppendHistory(ctx context.Context, p *models.PricePoint, tx pgx.Tx) error
	GetHistory(ctx context.Context, symbol string, from time.Time) ([]models.PricePoint, error)
}

type priceRepo struct {
	db *pgxpool.Pool
}

func NewPriceRepository(db *pgxpool.Pool) PriceRepository {
	return &priceRepo{db: db}
}

func (r *priceRepo) UpsertSnapshot(ctx context.Context, snap *models.PriceSnapshot, tx pgx.Tx) error {
	query := `
		INSERT INTO price_snapshots (symbol, name, current_price, previous_close, source, fetched_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (symbol) DO UPDATE SET
			name = EXCLUDED.name,
			current_price = EXCLUDED.current_price,
			previous_close = EXCLUDED.previous_close,
			source = EXCLUDED.source,
			fetched_at = EXCLUDED.fetched_at`

	args := []interface{}{snap.Symbol, snap.Name, snap.CurrentPrice, snap.PreviousClose, snap.Source, snap.FetchedAt}

	var err error
	if tx == nil {
		_, err = r.db.Exec(ctx, query, args...)
	} else {
		_, err = tx.Exec(ctx, query, args...)
	}
	return err
}

func (r *priceRepo) GetSnapshot(ctx context.Context, symbol string) (*models.PriceSnapshot, error) {
	var s models.PriceSnapshot
	err := r.db.QueryRow(ctx,
		`SELECT symbol, name, current_price, previous_close, source, fetched_at
		FROM price_snapshots WHERE symbol = $1`, symbol).
		Scan(&s.Symbol, &s.Name, &s.CurrentPrice, &s.PreviousClose, &s.Source, &s.FetchedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *priceRepo) ListSnapshots(ctx context.Context) ([]models.PriceSnapshot, error) {
	rows, err := r.db.Query(ctx,
		`SELECT symbol, name, current_price, previous_close, source, fetched_at
		FROM price_snapshots ORDER BY symbol`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var snaps []models.PriceSnapshot
	for rows.Next() {
		var s models.PriceSnapshot
		if err := rows.Scan(&s.Symbol, &s.Name, &s.CurrentPrice, &s.PreviousClose, &s.Source, &s.FetchedAt); err != nil {
			return nil, err
		}
		snaps = append(snaps, s)
	}
	return snaps, rows.Err()
}

func (r *priceRepo) AppendHistory(ctx context.Context, p *models.PricePoint, tx pgx.Tx) error {
	query := `
		INSERT INTO price_history (symbol, ts, close)
		VALUES ($1, $2, $3)
		ON CONFLICT (symbol, ts) DO NOTHING`

	var err error
	if tx == nil {
		_, err = r.db.Exec(ctx, query, p.Symbol, p.Ts, p.Close)
	} else {
		_, err = tx.Exec(ctx, query, p.Symbol, p.Ts, p.Close)
	}
	return err
}

func (r *priceRepo) GetHistory(ctx context.Context, symbol string, from time.Time) ([]models.PricePoint, error) {
	rows, err := r.db.Query(ctx,
		`SELECT symbol, ts, close FROM price_history
		WHERE symbol = $1 AND ts >= $2 ORDER BY ts`, symbol, from)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var points []models.PricePoint
	for rows.Next() {
		var p models.PricePoint
		if err := rows.Scan(&p.Symbol, &p.Ts, &p.Close); err != nil {
			return nil, err
		}
		points = append(points, p)
	}
	return points, rows.Err()
}
