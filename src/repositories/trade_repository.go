package repositories

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rndosd/finclass/src/models"
)

type TradeRepository interface {
	Append(ctx context.Context, t *models.TradeRecord, tx pgx.Tx) error
	ListByStudent(ctx context.Context, studentID string, limit, offset int) ([]models.TradeRecord, error)
}

type tradeRepo struct {
	db *pgxpool.Pool
}

func NewTradeRepository(db *pgxpool.Pool) TradeRepository {
	return &tradeRepo{db: db}
}

// Append inserts one immutable trade record. There is deliberately no
// update or delete method on this repository.
func (r *tradeRepo) Append(ctx context.Context, t *models.TradeRecord, tx pgx.Tx) error {
	query := `
		INSERT INTO trade_records (id, class_id, student_id, student_name, kind, symbol, company_name,
			quantity, price_usd, fee, fee_local, total, currency, description, version)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING created_at`

	args := []interface{}{t.ID, t.ClassID, t.StudentID, t.StudentName, t.Kind, t.Symbol, t.CompanyName,
		t.Quantity, t.PriceUSD, t.Fee, t.FeeLocal, t.Total, t.Currency, t.Description, t.Version}

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

		err = tx.QueryRow(ctx, query, args...).Scan(&t.CreatedAt)
		if err != nil {
			return err
		}
		return tx.Commit(ctx)
	}

	return tx.QueryRow(ctx, query, args...).Scan(&t.CreatedAt)
}

func (r *tradeRepo) ListByStudent(ctx context.Context, studentID string, limit, offset int) ([]models.TradeRecord, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	rows, err := r.db.Query(ctx,
		`SELECT id, class_id, student_id, student_name, kind, symbol, company_name,
			quantity, price_usd, fee, fee_local, total, currency, description, version, created_at
		FROM trade_records WHERE student_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`, studentID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []models.TradeRecord
	for rows.Next() {
		var t models.TradeRecord
		if err := rows.Scan(&t.ID, &t.ClassID, &t.StudentID, &t.StudentName, &t.Kind, &t.Symbol,
			&t.CompanyName, &t.Quantity, &t.PriceUSD, &t.Fee, &t.FeeLocal, &t.Total, &t.Currency,
			&t.Description, &t.Version, &t.CreatedAt); err != nil {
			return nil, err
		}
		records = append(records, t)
	}
	return records, rows.Err()
}
