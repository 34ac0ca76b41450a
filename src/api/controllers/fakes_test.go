package controllers_test

import (
	"context"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/rndosd/finclass/src/models"
	"github.com/rndosd/finclass/src/repositories"
	"github.com/rndosd/finclass/src/schemas"
)

// serialTxRunner mimics the database's serialization guarantee: only one
// "transaction" runs at a time. Business failures happen before any fake
// write, so no rollback bookkeeping is needed.
type serialTxRunner struct {
	mu sync.Mutex
}

func (r *serialTxRunner) RunInTx(_ context.Context, fn func(tx pgx.Tx) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return fn(nil)
}

type fakeStudentRepo struct {
	mu       sync.Mutex
	students map[string]*models.Student
}

func newFakeStudentRepo(students ...*models.Student) *fakeStudentRepo {
	repo := &fakeStudentRepo{students: make(map[string]*models.Student)}
	for _, s := range students {
		repo.students[s.ID] = s
	}
	return repo
}

func (r *fakeStudentRepo) get(id string) (*models.Student, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.students[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	copied := *s
	return &copied, nil
}

func (r *fakeStudentRepo) GetByID(_ context.Context, id string) (*models.Student, error) {
	return r.get(id)
}

func (r *fakeStudentRepo) GetForUpdate(_ context.Context, _ pgx.Tx, id string) (*models.Student, error) {
	return r.get(id)
}

func (r *fakeStudentRepo) ListByClass(_ context.Context, classID string) ([]models.Student, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Student
	for _, s := range r.students {
		if s.ClassID == classID {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (r *fakeStudentRepo) Create(_ context.Context, s *models.Student, _ pgx.Tx) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *s
	r.students[s.ID] = &copied
	return nil
}

func (r *fakeStudentRepo) UpdateBalances(_ context.Context, _ pgx.Tx, id string, cash, usd decimal.Decimal) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.students[id]
	if !ok {
		return repositories.ErrNotFound
	}
	s.CashBalance = cash
	s.USDBalance = usd
	return nil
}

func (r *fakeStudentRepo) UpdateStockValue(_ context.Context, _ pgx.Tx, id string, stockValue decimal.Decimal) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.students[id]
	if !ok {
		return repositories.ErrNotFound
	}
	s.StockValue = stockValue
	return nil
}

func (r *fakeStudentRepo) AdjustCredit(_ context.Context, id string, delta int, _ pgx.Tx) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.students[id]
	if !ok {
		return repositories.ErrNotFound
	}
	s.CreditScore += delta
	if s.CreditScore < 0 {
		s.CreditScore = 0
	}
	if s.CreditScore > 1000 {
		s.CreditScore = 1000
	}
	return nil
}

type fakePortfolioRepo struct {
	mu      sync.Mutex
	entries map[string]map[string]*models.PortfolioEntry
}

func newFakePortfolioRepo() *fakePortfolioRepo {
	return &fakePortfolioRepo{entries: make(map[string]map[string]*models.PortfolioEntry)}
}

func (r *fakePortfolioRepo) GetEntry(_ context.Context, _ pgx.Tx, studentID, symbol string) (*models.PortfolioEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[studentID][symbol]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	copied := *e
	return &copied, nil
}

func (r *fakePortfolioRepo) Upsert(_ context.Context, e *models.PortfolioEntry, _ pgx.Tx) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.entries[e.StudentID] == nil {
		r.entries[e.StudentID] = make(map[string]*models.PortfolioEntry)
	}
	copied := *e
	copied.LastUpdated = time.Now()
	r.entries[e.StudentID][e.Symbol] = &copied
	return nil
}

func (r *fakePortfolioRepo) Delete(_ context.Context, _ pgx.Tx, studentID, symbol string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries[studentID], symbol)
	return nil
}

func (r *fakePortfolioRepo) ListByStudent(_ context.Context, studentID string) ([]models.PortfolioEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.PortfolioEntry
	for _, e := range r.entries[studentID] {
		out = append(out, *e)
	}
	return out, nil
}

func (r *fakePortfolioRepo) DistinctSymbols(_ context.Context) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	seen := make(map[string]bool)
	var out []string
	for _, bySymbol := range r.entries {
		for symbol := range bySymbol {
			if !seen[symbol] {
				seen[symbol] = true
				out = append(out, symbol)
			}
		}
	}
	return out, nil
}

type fakeTradeRepo struct {
	mu      sync.Mutex
	records []models.TradeRecord
}

func (r *fakeTradeRepo) Append(_ context.Context, t *models.TradeRecord, _ pgx.Tx) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t.CreatedAt = time.Now()
	r.records = append(r.records, *t)
	return nil
}

func (r *fakeTradeRepo) ListByStudent(_ context.Context, studentID string, _, _ int) ([]models.TradeRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.TradeRecord
	for i := len(r.records) - 1; i >= 0; i-- {
		if r.records[i].StudentID == studentID {
			out = append(out, r.records[i])
		}
	}
	return out, nil
}

type fakeSettingsRepo struct {
	mu       sync.Mutex
	settings *models.MarketSettings
	global   *models.GlobalSettings
}

func defaultTestSettings() *models.MarketSettings {
	return &models.MarketSettings{
		ClassID:         "class-1",
		ConversionRate:  decimal.RequireFromString("0.0008"),
		TradeFeeRate:    decimal.RequireFromString("0.01"),
		ExchangeFeeRate: decimal.RequireFromString("0.01"),
		CurrencyUnit:    "points",
		UpdatedAt:       time.Now(),
	}
}

func (r *fakeSettingsRepo) GetClassSettings(_ context.Context, classID string) (*models.MarketSettings, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.settings == nil {
		r.settings = defaultTestSettings()
		r.settings.ClassID = classID
	}
	copied := *r.settings
	return &copied, nil
}

func (r *fakeSettingsRepo) UpdateClassSettings(_ context.Context, classID string, patch schemas.MarketSettingsPatch) (*models.MarketSettings, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.settings == nil {
		r.settings = defaultTestSettings()
		r.settings.ClassID = classID
	}
	if patch.ConversionRate != nil {
		r.settings.ConversionRate = *patch.ConversionRate
	}
	if patch.TradeFeeRate != nil {
		r.settings.TradeFeeRate = *patch.TradeFeeRate
	}
	if patch.ExchangeFeeRate != nil {
		r.settings.ExchangeFeeRate = *patch.ExchangeFeeRate
	}
	if patch.CurrencyUnit != nil {
		r.settings.CurrencyUnit = *patch.CurrencyUnit
	}
	r.settings.UpdatedAt = time.Now()
	copied := *r.settings
	return &copied, nil
}

func (r *fakeSettingsRepo) GetGlobalSettings(_ context.Context) (*models.GlobalSettings, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.global == nil {
		r.global = &models.GlobalSettings{ID: 1}
	}
	copied := *r.global
	return &copied, nil
}

func (r *fakeSettingsRepo) UpdateGlobalSettings(_ context.Context, patch schemas.GlobalSettingsPatch) (*models.GlobalSettings, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.global == nil {
		r.global = &models.GlobalSettings{ID: 1}
	}
	if patch.QuoteProxyURL != nil {
		r.global.QuoteProxyURL = *patch.QuoteProxyURL
	}
	if patch.ChartProxyURL != nil {
		r.global.ChartProxyURL = *patch.ChartProxyURL
	}
	r.global.UpdatedAt = time.Now()
	copied := *r.global
	return &copied, nil
}

type fakePriceRepo struct {
	mu        sync.Mutex
	snapshots map[string]*models.PriceSnapshot
	history   []models.PricePoint
}

func newFakePriceRepo() *fakePriceRepo {
	return &fakePriceRepo{snapshots: make(map[string]*models.PriceSnapshot)}
}

func (r *fakePriceRepo) UpsertSnapshot(_ context.Context, snap *models.PriceSnapshot, _ pgx.Tx) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *snap
	r.snapshots[snap.Symbol] = &copied
	return nil
}

func (r *fakePriceRepo) GetSnapshot(_ context.Context, symbol string) (*models.PriceSnapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.snapshots[symbol]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	copied := *s
	return &copied, nil
}

func (r *fakePriceRepo) ListSnapshots(_ context.Context) ([]models.PriceSnapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.PriceSnapshot
	for _, s := range r.snapshots {
		out = append(out, *s)
	}
	return out, nil
}

func (r *fakePriceRepo) AppendHistory(_ context.Context, p *models.PricePoint, _ pgx.Tx) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.history = append(r.history, *p)
	return nil
}

func (r *fakePriceRepo) GetHistory(_ context.Context, symbol string, from time.Time) ([]models.PricePoint, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.PricePoint
	for _, p := range r.history {
		if p.Symbol == symbol && !p.Ts.Before(from) {
			out = append(out, p)
		}
	}
	return out, nil
}

type fakeHub struct {
	mu     sync.Mutex
	events []string
}

func (h *fakeHub) Broadcast(event string, _ interface{}) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, event)
}

func (h *fakeHub) Events() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string{}, h.events...)
}
