package controllers_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rndosd/finclass/src/api/controllers"
	"github.com/rndosd/finclass/src/schemas"
)

func TestStudentsControllerCreate(t *testing.T) {
	ctx := context.Background()
	repo := newFakeStudentRepo()
	controller := controllers.NewStudentsController(&serialTxRunner{}, repo)

	t.Run("new accounts start empty with a median credit score", func(t *testing.T) {
		created, err := controller.Create(ctx, "class-1", &schemas.CreateStudentRequest{
			Name: "Ana", StudentNumber: 7,
		})
		require.NoError(t, err)
		assert.NotEmpty(t, created.ID)
		assert.Equal(t, "class-1", created.ClassID)
		assert.Equal(t, "student", created.Role)
		assert.Equal(t, 500, created.CreditScore)
		assert.True(t, created.CashBalance.IsZero())
		assert.True(t, created.USDBalance.IsZero())
	})

	t.Run("rejects a missing name", func(t *testing.T) {
		_, err := controller.Create(ctx, "class-1", &schemas.CreateStudentRequest{StudentNumber: 8})
		assert.Error(t, err)
	})
}

func TestStudentsControllerAdjustCredit(t *testing.T) {
	ctx := context.Background()
	student := testStudent("0", "0")
	student.CreditScore = 990
	repo := newFakeStudentRepo(student)
	controller := controllers.NewStudentsController(&serialTxRunner{}, repo)

	require.NoError(t, controller.AdjustCredit(ctx, "stu-1", &schemas.CreditAdjustRequest{
		Delta: 50, Reason: "homework streak",
	}))

	// The score is clamped to its upper bound.
	got, err := repo.GetByID(ctx, "stu-1")
	require.NoError(t, err)
	assert.Equal(t, 1000, got.CreditScore)

	err = controller.AdjustCredit(ctx, "missing", &schemas.CreditAdjustRequest{Delta: 1, Reason: "x"})
	assert.Error(t, err)
}

func TestStudentsControllerPayReward(t *testing.T) {
	ctx := context.Background()
	repo := newFakeStudentRepo(testStudent("0", "10"))
	controller := controllers.NewStudentsController(&serialTxRunner{}, repo)

	require.NoError(t, controller.PayReward(ctx, "stu-1", &schemas.RewardRequest{
		Amount: dec("25"), Reason: "class helper",
	}))

	got, err := repo.GetByID(ctx, "stu-1")
	require.NoError(t, err)
	assert.Equal(t, "35", got.CashBalance.String())

	err = controller.PayReward(ctx, "stu-1", &schemas.RewardRequest{Amount: dec("-5"), Reason: "x"})
	assert.Error(t, err)
}
