package controllers

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/rndosd/finclass/src/database"
	"github.com/rndosd/finclass/src/models"
	"github.com/rndosd/finclass/src/repositories"
	"github.com/rndosd/finclass/src/schemas"
	"github.com/rndosd/finclass/src/utils"
)

type StudentsControllerI interface {
	List(ctx context.Context, classID string) ([]schemas.StudentResponse, error)
	Get(ctx context.Context, id string) (*schemas.StudentResponse, error)
	Create(ctx context.Context, classID string, req *schemas.CreateStudentRequest) (*schemas.StudentResponse, error)
	AdjustCredit(ctx context.Context, studentID string, req *schemas.CreditAdjustRequest) error
	PayReward(ctx context.Context, studentID string, req *schemas.RewardRequest) error
}

// StudentsController covers the privileged roster operations: account
// creation, credit adjustments and reward payouts. Handlers gate these
// behind the manage_roster capability.
type StudentsController struct {
	db       database.TxRunner
	students repositories.StudentRepository
	validate *validator.Validate
}

func NewStudentsController(db database.TxRunner, students repositories.StudentRepository) *StudentsController {
	return &StudentsController{
		db:       db,
		students: students,
		validate: validator.New(),
	}
}

func toStudentResponse(s *models.Student) *schemas.StudentResponse {
	return &schemas.StudentResponse{
		ID:            s.ID,
		ClassID:       s.ClassID,
		Name:          s.Name,
		StudentNumber: s.StudentNumber,
		Role:          string(s.Role),
		CashBalance:   s.CashBalance,
		USDBalance:    s.USDBalance,
		Deposit:       s.Deposit,
		Loan:          s.Loan,
		StockValue:    s.StockValue,
		CreditScore:   s.CreditScore,
	}
}

func (c *StudentsController) List(ctx context.Context, classID string) ([]schemas.StudentResponse, error) {
	students, err := c.students.ListByClass(ctx, classID)
	if err != nil {
		return nil, err
	}
	responses := make([]schemas.StudentResponse, 0, len(students))
	for i := range students {
		responses = append(responses, *toStudentResponse(&students[i]))
	}
	return responses, nil
}

func (c *StudentsController) Get(ctx context.Context, id string) (*schemas.StudentResponse, error) {
	student, err := c.students.GetByID(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, utils.NotFound("student not found")
	}
	if err != nil {
		return nil, err
	}
	return toStudentResponse(student), nil
}

func (c *StudentsController) Create(ctx context.Context, classID string, req *schemas.CreateStudentRequest) (*schemas.StudentResponse, error) {
	if err := c.validate.Struct(req); err != nil {
		return nil, utils.UnprocessableEntity(err.Error())
	}
	role := models.Role(req.Role)
	if role == "" {
		role = models.RoleStudent
	}
	student := &models.Student{
		ID:            uuid.NewString(),
		ClassID:       classID,
		Name:          req.Name,
		StudentNumber: req.StudentNumber,
		Role:          role,
		CashBalance:   decimal.Zero,
		USDBalance:    decimal.Zero,
		Deposit:       decimal.Zero,
		Loan:          decimal.Zero,
		StockValue:    decimal.Zero,
		CreditScore:   500,
	}
	if err := c.students.Create(ctx, student, nil); err != nil {
		return nil, err
	}
	return toStudentResponse(student), nil
}

func (c *StudentsController) AdjustCredit(ctx context.Context, studentID string, req *schemas.CreditAdjustRequest) error {
	if err := c.validate.Struct(req); err != nil {
		return utils.UnprocessableEntity(err.Error())
	}
	err := c.students.AdjustCredit(ctx, studentID, req.Delta, nil)
	if errors.Is(err, repositories.ErrNotFound) {
		return utils.NotFound("student not found")
	}
	if err != nil {
		return err
	}
	utils.LoggerFromContext(ctx).
		WithField("studentId", studentID).
		WithField("delta", req.Delta).
		WithField("reason", req.Reason).
		Info("credit score adjusted")
	return nil
}

// PayReward credits local currency to a student inside a transaction so a
// concurrent trade cannot interleave with the balance update.
func (c *StudentsController) PayReward(ctx context.Context, studentID string, req *schemas.RewardRequest) error {
	if err := c.validate.Struct(req); err != nil {
		return utils.UnprocessableEntity(err.Error())
	}
	if !req.Amount.IsPositive() {
		return utils.UnprocessableEntity("reward amount must be positive")
	}

	err := c.db.RunInTx(ctx, func(tx pgx.Tx) error {
		student, err := c.students.GetForUpdate(ctx, tx, studentID)
		if err != nil {
			return err
		}
		newCash := student.CashBalance.Add(req.Amount)
		return c.students.UpdateBalances(ctx, tx, student.ID, newCash, student.USDBalance)
	})
	if errors.Is(err, repositories.ErrNotFound) {
		return utils.NotFound("student not found")
	}
	if err != nil {
		return err
	}
	utils.LoggerFromContext(ctx).
		WithField("studentId", studentID).
		WithField("amount", req.Amount).
		WithField("reason", req.Reason).
		Info("reward paid")
	return nil
}
