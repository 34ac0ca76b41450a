package repositories

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/rndosd/finclass/src/models"
)

type StudentRepository interface {
	GetByID(ctx context.Context, id string) (*models.Student, error)
	GetForUpdate(ctx context.Context, tx pgx.Tx, id string) (*models.Student, error)
	ListByClass(ctx context.Context, classID string) ([]models.Student, error)
	Create(ctx context.Context, s *models.Student, tx pgx.Tx) error
	UpdateBalances(ctx context.Context, tx pgx.Tx, id string, cash, usd decimal.Decimal) error
	UpdateStockValue(ctx context.Context, tx pgx.Tx, id string, stockValue decimal.Decimal) error
	AdjustCredit(ctx context.Context, id string, delta int, tx pgx.Tx) error
}

type studentRepo struct {
	db *pgxpool.Pool
}

func NewStudentRepository(db *pgxpool.Pool) StudentRepository {
	return &studentRepo{db: db}
}

const studentColumns = `id, class_id, name, student_number, role, cash_balance, usd_balance,
	deposit, loan, stock_value, credit_score, active, created_at, updated_at`

func scanStudent(row pgx.Row) (*models.Student, error) {
	var s models.Student
	err := row.Scan(&s.ID, &s.ClassID, &s.Name, &s.StudentNumber, &s.Role,
		&s.CashBalance, &s.USDBalance, &s.Deposit, &s.Loan, &s.StockValue,
		&s.CreditScore, &s.Active, &s.CreatedAt, &s.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *studentRepo) GetByID(ctx context.Context, id string) (*models.Student, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+studentColumns+` FROM students WHERE id = $1 AND active`, id)
	return scanStudent(row)
}

// GetForUpdate locks the student row for the rest of the transaction. This
// is the serialization point for every balance mutation: two concurrent
// trades for the same student queue on this lock.
func (r *studentRepo) GetForUpdate(ctx context.Context, tx pgx.Tx, id string) (*models.Student, error) {
	if tx == nil {
		return r.GetByID(ctx, id)
	}
	row := tx.QueryRow(ctx,
		`SELECT `+studentColumns+` FROM students WHERE id = $1 AND active FOR UPDATE`, id)
	return scanStudent(row)
}

func (r *studentRepo) ListByClass(ctx context.Context, classID string) ([]models.Student, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+studentColumns+` FROM students WHERE class_id = $1 AND active ORDER BY student_number`, classID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var students []models.Student
	for rows.Next() {
		var s models.Student
		if err := rows.Scan(&s.ID, &s.ClassID, &s.Name, &s.StudentNumber, &s.Role,
			&s.CashBalance, &s.USDBalance, &s.Deposit, &s.Loan, &s.StockValue,
			&s.CreditScore, &s.Active, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		students = append(students, s)
	}
	return students, rows.Err()
}

func (r *studentRepo) Create(ctx context.Context, s *models.Student, tx pgx.Tx) error {
	query := `
		INSERT INTO students (id, class_id, name, student_number, role, cash_balance, usd_balance,
			deposit, loan, stock_value, credit_score, active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, true)
		RETURNING created_at, updated_at`

	args := []interface{}{s.ID, s.ClassID, s.Name, s.StudentNumber, s.Role,
		s.CashBalance, s.USDBalance, s.Deposit, s.Loan, s.StockValue, s.CreditScore}

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

		err = tx.QueryRow(ctx, query, args...).Scan(&s.CreatedAt, &s.UpdatedAt)
		if err != nil {
			return err
		}
		return tx.Commit(ctx)
	}

	return tx.QueryRow(ctx, query, args...).Scan(&s.CreatedAt, &s.UpdatedAt)
}

func (r *studentRepo) UpdateBalances(ctx context.Context, tx pgx.Tx, id string, cash, usd decimal.Decimal) error {
	query := `UPDATE students SET cash_balance = $2, usd_balance = $3, updated_at = now() WHERE id = $1`
	var tag interface{ RowsAffected() int64 }
	var err error
	if tx == nil {
		tag, err = r.db.Exec(ctx, query, id, cash, usd)
	} else {
		tag, err = tx.Exec(ctx, query, id, cash, usd)
	}
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *studentRepo) UpdateStockValue(ctx context.Context, tx pgx.Tx, id string, stockValue decimal.Decimal) error {
	query := `UPDATE students SET stock_value = $2, updated_at = now() WHERE id = $1`
	var err error
	if tx == nil {
		_, err = r.db.Exec(ctx, query, id, stockValue)
	} else {
		_, err = tx.Exec(ctx, query, id, stockValue)
	}
	return err
}

func (r *studentRepo) AdjustCredit(ctx context.Context, id string, delta int, tx pgx.Tx) error {
	// Credit scores are clamped to [0, 1000] at the database level so a
	// stack of penalties can never push a student negative.
	query := `UPDATE students
		SET credit_score = LEAST(1000, GREATEST(0, credit_score + $2)), updated_at = now()
		WHERE id = $1`
	var tag interface{ RowsAffected() int64 }
	var err error
	if tx == nil {
		tag, err = r.db.Exec(ctx, query, id, delta)
	} else {
		tag, err = tx.Exec(ctx, query, id, delta)
	}
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
