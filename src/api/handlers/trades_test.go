package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rndosd/finclass/src/api/handlers"
	"github.com/rndosd/finclass/src/auth"
	"github.com/rndosd/finclass/src/models"
	"github.com/rndosd/finclass/src/schemas"
)

type stubTradesController struct {
	result  *schemas.TradeResult
	lastReq *schemas.TradeRequest
}

func (c *stubTradesController) Buy(_ context.Context, _ *auth.Claims, req *schemas.TradeRequest) *schemas.TradeResult {
	c.lastReq = req
	return c.result
}

func (c *stubTradesController) Sell(_ context.Context, _ *auth.Claims, req *schemas.TradeRequest) *schemas.TradeResult {
	c.lastReq = req
	return c.result
}

func (c *stubTradesController) Exchange(_ context.Context, _ *auth.Claims, _ *schemas.ExchangeRequest) *schemas.TradeResult {
	return c.result
}

type stubPortfolioController struct {
	lastStudentID string
	history       []schemas.TradeHistoryItem
}

func (c *stubPortfolioController) GetSummary(_ context.Context, studentID, _ string) (*schemas.PortfolioSummary, error) {
	c.lastStudentID = studentID
	return &schemas.PortfolioSummary{Positions: []schemas.PositionResponse{}}, nil
}

func (c *stubPortfolioController) GetTradeHistory(_ context.Context, studentID string, _, _ int) ([]schemas.TradeHistoryItem, error) {
	c.lastStudentID = studentID
	return c.history, nil
}

func studentClaims() *auth.Claims {
	return &auth.Claims{UserID: "stu-1", Name: "Ana", ClassID: "class-1", Role: models.RoleStudent}
}

func teacherClaims() *auth.Claims {
	return &auth.Claims{UserID: "tea-1", Name: "Mr. K", ClassID: "class-1", Role: models.RoleTeacher}
}

func authedRequest(method, target, body string, claims *auth.Claims) *http.Request {
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("{}")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if claims != nil {
		req = req.WithContext(auth.WithClaims(req.Context(), claims))
	}
	return req
}

func TestBuyHandler(t *testing.T) {
	t.Run("forwards the request and returns the result", func(t *testing.T) {
		trades := &stubTradesController{result: &schemas.TradeResult{Success: true, Message: "purchase completed", TradeID: "t-1"}}
		h := &handlers.Handler{Trades: trades}

		req := authedRequest(http.MethodPost, "/api/trades/buy",
			`{"symbol":"AAPL","companyName":"Apple Inc.","quantity":10,"priceUsd":"9"}`, studentClaims())
		rec := httptest.NewRecorder()
		h.Buy(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		var result schemas.TradeResult
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
		assert.True(t, result.Success)
		assert.Equal(t, "t-1", result.TradeID)

		require.NotNil(t, trades.lastReq)
		assert.Equal(t, "AAPL", trades.lastReq.Symbol)
		assert.Equal(t, int64(10), trades.lastReq.Quantity)
	})

	t.Run("business failures still answer 200", func(t *testing.T) {
		trades := &stubTradesController{result: &schemas.TradeResult{Success: false, Message: "insufficient balance"}}
		h := &handlers.Handler{Trades: trades}

		req := authedRequest(http.MethodPost, "/api/trades/buy",
			`{"symbol":"AAPL","companyName":"Apple Inc.","quantity":10,"priceUsd":"9"}`, studentClaims())
		rec := httptest.NewRecorder()
		h.Buy(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		var result schemas.TradeResult
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
		assert.False(t, result.Success)
		assert.Equal(t, "insufficient balance", result.Message)
	})

	t.Run("rejects callers without the trade capability", func(t *testing.T) {
		h := &handlers.Handler{Trades: &stubTradesController{}}
		claims := &auth.Claims{UserID: "x", ClassID: "class-1", Role: models.Role("observer")}

		rec := httptest.NewRecorder()
		h.Buy(rec, authedRequest(http.MethodPost, "/api/trades/buy", "", claims))
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("rejects unauthenticated requests", func(t *testing.T) {
		h := &handlers.Handler{Trades: &stubTradesController{}}
		rec := httptest.NewRecorder()
		h.Buy(rec, authedRequest(http.MethodPost, "/api/trades/buy", "", nil))
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("rejects a malformed body", func(t *testing.T) {
		h := &handlers.Handler{Trades: &stubTradesController{}}
		rec := httptest.NewRecorder()
		h.Buy(rec, authedRequest(http.MethodPost, "/api/trades/buy", "{not json", studentClaims()))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestExchangeHandler(t *testing.T) {
	trades := &stubTradesController{result: &schemas.TradeResult{Success: true, Message: "exchange completed", TradeID: "t-2"}}
	h := &handlers.Handler{Trades: trades}

	req := authedRequest(http.MethodPost, "/api/trades/exchange",
		`{"direction":"localToUsd","amount":"100","calculatedResult":{"inputAmount":"100"}}`, studentClaims())
	rec := httptest.NewRecorder()
	h.Exchange(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var result schemas.TradeResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.True(t, result.Success)
}

func TestGetTradeHistoryHandler(t *testing.T) {
	t.Run("defaults to the caller's own history", func(t *testing.T) {
		portfolio := &stubPortfolioController{}
		h := &handlers.Handler{Portfolio: portfolio}

		rec := httptest.NewRecorder()
		h.GetTradeHistory(rec, authedRequest(http.MethodGet, "/api/trades/history", "", studentClaims()))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "stu-1", portfolio.lastStudentID)
	})

	t.Run("students cannot read another student's history", func(t *testing.T) {
		h := &handlers.Handler{Portfolio: &stubPortfolioController{}}

		rec := httptest.NewRecorder()
		h.GetTradeHistory(rec, authedRequest(http.MethodGet, "/api/trades/history?studentId=stu-2", "", studentClaims()))
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("teachers can read any student's history", func(t *testing.T) {
		portfolio := &stubPortfolioController{}
		h := &handlers.Handler{Portfolio: portfolio}

		rec := httptest.NewRecorder()
		h.GetTradeHistory(rec, authedRequest(http.MethodGet, "/api/trades/history?studentId=stu-2", "", teacherClaims()))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "stu-2", portfolio.lastStudentID)
	})
}
