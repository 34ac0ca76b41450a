package repositories

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rndosd/finclass/src/models"
)

type PortfolioRepository interface {
	GetEntry(ctx context.Context, tx pgx.Tx, studentID, symbol string) (*models.PortfolioEntry, error)
	Upsert(ctx context.Context, e *models.PortfolioEntry, tx pgx.Tx) error
	Delete(ctx context.Context, tx pgx.Tx, studentID, symbol string) error
	ListByStudent(ctx context.Context, studentID string) ([]models.PortfolioEntry, error)
	DistinctSymbols(ctx context.Context) ([]string, error)
}

type portfolioRepo struct {
	db *pgxpool.Pool
}

func NewPortfolioRepository(db *pgxpool.Pool) PortfolioRepository {
	return &portfolioRepo{db: db}
}

// GetEntry reads one position. No row lock is taken here: the student row
// lock acquired at the start of every trade transaction already serializes
// all portfolio mutations for that student.
func (r *portfolioRepo) GetEntry(ctx context.Context, tx pgx.Tx, studentID, symbol string) (*models.PortfolioEntry, error) {
	query := `SELECT student_id, symbol, company_name, quantity, avg_price_usd, last_updated
		FROM portfolio_entries WHERE student_id = $1 AND symbol = $2`

	var row pgx.Row
	if tx == nil {
		row = r.db.QueryRow(ctx, query, studentID, symbol)
	} else {
		row = tx.QueryRow(ctx, query, studentID, symbol)
	}

	var e models.PortfolioEntry
	err := row.Scan(&e.StudentID, &e.Symbol, &e.CompanyName, &e.Quantity, &e.AvgPriceUSD, &e.LastUpdated)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *portfolioRepo) Upsert(ctx context.Context, e *models.PortfolioEntry, tx pgx.Tx) error {
	query := `
		INSERT INTO portfolio_entries (student_id, symbol, company_name, quantity, avg_price_usd, last_updated)
		VALUES ($1, $2, $3, $4, $5, now())
		ON CONFLICT (student_id, symbol) DO UPDATE SET
			company_name = EXCLUDED.company_name,
			quantity = EXCLUDED.quantity,
			avg_price_usd = EXCLUDED.avg_price_usd,
			last_updated = now()`

	var err error
	if tx == nil {
		// If no transaction is provided, create a new one
		tx, err = r.db.Begin(ctx)
		if err != nil {
			return err
		}
		defer func() {
			if err != nil {
				_ = tx.Rollback(ctx)
			}
		}()

		_, err = tx.Exec(ctx, query, e.StudentID, e.Symbol, e.CompanyName, e.Quantity, e.AvgPriceUSD)
		if err != nil {
			return err
		}
		return tx.Commit(ctx)
	}

	_, err = tx.Exec(ctx, query, e.StudentID, e.Symbol, e.CompanyName, e.Quantity, e.AvgPriceUSD)
	return err
}

func (r *portfolioRepo) Delete(ctx context.Context, tx pgx.Tx, studentID, symbol string) error {
	query := `DELETE FROM portfolio_entries WHERE student_id = $1 AND symbol = $2`
	var err error
	if tx == nil {
		_, err = r.db.Exec(ctx, query, studentID, symbol)
	} else {
		_, err = tx.Exec(ctx, query, studentID, symbol)
	}
	return err
}

func (r *portfolioRepo) ListByStudent(ctx context.Context, studentID string) ([]models.PortfolioEntry, error) {
	rows, err := r.db.Query(ctx,
		`SELECT student_id, symbol, company_name, quantity, avg_price_usd, last_updated
		FROM portfolio_entries WHERE student_id = $1 ORDER BY symbol`, studentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []models.PortfolioEntry
	for rows.Next() {
		var e models.PortfolioEntry
		if err := rows.Scan(&e.StudentID, &e.Symbol, &e.CompanyName, &e.Quantity, &e.AvgPriceUSD, &e.LastUpdated); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// DistinctSymbols lists every symbol currently held by any student. The
// price feed worker refreshes these on top of the configured watch list.
func (r *portfolioRepo) DistinctSymbols(ctx context.Context) ([]string, error) {
	rows, err := r.db.Query(ctx, `SELECT DISTINCT symbol FROM portfolio_entries ORDER BY symbol`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var symbols []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		symbols = append(symbols, s)
	}
	return symbols, rows.Err()
}
