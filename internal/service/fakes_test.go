package service

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sort"
	"sync"
	"time"

	"github.com/spivot-hq/spivot/backend-go/internal/config"
	"github.com/spivot-hq/spivot/backend-go/internal/domain"
	"github.com/spivot-hq/spivot/backend-go/internal/repository"
)

var testNow = time.Date(2025, time.March, 31, 12, 0, 0, 0, time.UTC)

func fixedNow() time.Time { return testNow }

func day(month time.Month, d int) time.Time {
	return time.Date(2025, month, d, 0, 0, 0, 0, time.UTC)
}

func newTestEngine() *Engine {
	return NewEngineWithClock(config.DefaultEngineConfig(), rand.NewPCG(7, 11), fixedNow)
}

type memStore struct {
	mu       sync.Mutex
	nextID   int64
	users    map[int64]domain.User
	txns     []domain.Transaction
	items    []domain.InventoryItem
	payments []domain.VendorPayment
	docs     []domain.Document
	logs     []domain.AgentLog
}

func newMemStore() *memStore {
	return &memStore{users: map[int64]domain.User{}}
}

func (m *memStore) id() int64 {
	m.nextID++
	return m.nextID
}

func (m *memStore) store() repository.Store {
	return repository.Store{
		Users:          userRepo{m},
		Transactions:   txnRepo{m},
		Inventory:      itemRepo{m},
		VendorPayments: paymentRepo{m},
		Documents:      docRepo{m},
		AgentLogs:      logRepo{m},
	}
}

type userRepo struct{ m *memStore }

func (r userRepo) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	u, ok := r.m.users[id]
	if !ok {
		return nil, fmt.Errorf("user %d: %w", id, domain.ErrNotFound)
	}
	return &u, nil
}

func (r userRepo) ListUsers(ctx context.Context) ([]domain.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	out := make([]domain.User, 0, len(r.m.users))
	for _, u := range r.m.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r userRepo) CreateUser(ctx context.Context, user *domain.User) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if user.ID == 0 {
		user.ID = r.m.id()
	}
	r.m.users[user.ID] = *user
	return nil
}

type txnRepo struct{ m *memStore }

func (r txnRepo) ListTransactions(ctx context.Context, userID int64, filter repository.TransactionFilter) ([]domain.Transaction, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	out := make([]domain.Transaction, 0)
	for _, t := range r.m.txns {
		if t.UserID != userID {
			continue
		}
		if filter.Kind != 0 && t.Kind != filter.Kind {
			continue
		}
		out = append(out, t)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (r txnRepo) CreateTransaction(ctx context.Context, txn *domain.Transaction) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	txn.ID = r.m.id()
	r.m.txns = append(r.m.txns, *txn)
	return nil
}

func (r txnRepo) CreateTransactions(ctx context.Context, userID int64, txns []domain.Transaction) (int, error) {
	for i := range txns {
		txns[i].UserID = userID
		if err := r.CreateTransaction(ctx, &txns[i]); err != nil {
			return i, err
		}
	}
	return len(txns), nil
}

func (r txnRepo) ExpenseBreakdown(ctx context.Context, userID int64) ([]domain.ExpenseCategory, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	totals := map[string]float64{}
	for _, t := range r.m.txns {
		if t.UserID == userID && t.Kind == domain.KindDebit {
			totals[t.Category] += t.Amount
		}
	}
	var out []domain.ExpenseCategory
	for c, v := range totals {
		out = append(out, domain.ExpenseCategory{Category: c, Amount: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Category < out[j].Category })
	return out, nil
}

type itemRepo struct{ m *memStore }

func (r itemRepo) ListItems(ctx context.Context, userID int64) ([]domain.InventoryItem, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []domain.InventoryItem
	for _, it := range r.m.items {
		if it.UserID == userID {
			out = append(out, it)
		}
	}
	return out, nil
}

func (r itemRepo) GetItem(ctx context.Context, userID, id int64) (*domain.InventoryItem, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, it := range r.m.items {
		if it.UserID == userID && it.ID == id {
			return &it, nil
		}
	}
	return nil, fmt.Errorf("inventory item %d: %w", id, domain.ErrNotFound)
}

func (r itemRepo) GetItemsBySKU(ctx context.Context, userID int64, skus []string) ([]domain.InventoryItem, error) {
	items, _ := r.ListItems(ctx, userID)
	var out []domain.InventoryItem
	for _, it := range items {
		for _, sku := range skus {
			if it.SKU == sku {
				out = append(out, it)
			}
		}
	}
	return out, nil
}

func (r itemRepo) CreateItem(ctx context.Context, item *domain.InventoryItem) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for i, it := range r.m.items {
		if it.UserID == item.UserID && it.SKU == item.SKU {
			item.ID = it.ID
			r.m.items[i] = *item
			return nil
		}
	}
	item.ID = r.m.id()
	r.m.items = append(r.m.items, *item)
	return nil
}

func (r itemRepo) DeleteItem(ctx context.Context, userID, id int64) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for i, it := range r.m.items {
		if it.UserID == userID && it.ID == id {
			r.m.items = append(r.m.items[:i], r.m.items[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("inventory item %d: %w", id, domain.ErrNotFound)
}

type paymentRepo struct{ m *memStore }

func (r paymentRepo) ListVendorPayments(ctx context.Context, userID int64) ([]domain.VendorPayment, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []domain.VendorPayment
	for _, p := range r.m.payments {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r paymentRepo) CreateVendorPayment(ctx context.Context, payment *domain.VendorPayment) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	payment.ID = r.m.id()
	r.m.payments = append(r.m.payments, *payment)
	return nil
}

type docRepo struct{ m *memStore }

func (r docRepo) CreateDocument(ctx context.Context, doc *domain.Document) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	doc.ID = r.m.id()
	doc.CreatedAt = testNow
	r.m.docs = append(r.m.docs, *doc)
	return nil
}

func (r docRepo) GetDocument(ctx context.Context, userID, id int64) (*domain.Document, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, d := range r.m.docs {
		if d.UserID == userID && d.ID == id {
			return &d, nil
		}
	}
	return nil, fmt.Errorf("document %d: %w", id, domain.ErrNotFound)
}

func (r docRepo) ListDocuments(ctx context.Context, userID int64, limit int) ([]domain.Document, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []domain.Document
	for i := len(r.m.docs) - 1; i >= 0 && len(out) < limit; i-- {
		if r.m.docs[i].UserID == userID {
			out = append(out, r.m.docs[i])
		}
	}
	return out, nil
}

func (r docRepo) UpdateDocument(ctx context.Context, doc *domain.Document) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for i, d := range r.m.docs {
		if d.UserID == doc.UserID && d.ID == doc.ID {
			r.m.docs[i] = *doc
			return nil
		}
	}
	return fmt.Errorf("document %d: %w", doc.ID, domain.ErrNotFound)
}

type logRepo struct{ m *memStore }

func (r logRepo) CreateAgentLog(ctx context.Context, entry *domain.AgentLog) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	entry.ID = r.m.id()
	r.m.logs = append(r.m.logs, *entry)
	return nil
}

func (r logRepo) ListAgentLogs(ctx context.Context, userID *int64, limit int) ([]domain.AgentLog, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []domain.AgentLog
	for i := len(r.m.logs) - 1; i >= 0 && len(out) < limit; i-- {
		l := r.m.logs[i]
		if userID == nil || (l.UserID != nil && *l.UserID == *userID) {
			out = append(out, l)
		}
	}
	return out, nil
}

// spyCache is an in-memory AnalysisCache that counts invalidations.
type spyCache struct {
	mu          sync.Mutex
	cashflow    map[int64]domain.CashflowAnalysis
	scores      map[int64]domain.SpivotScore
	dashboards  map[int64]domain.DashboardMetrics
	invalidated []int64
}

func newSpyCache() *spyCache {
	return &spyCache{
		cashflow:   map[int64]domain.CashflowAnalysis{},
		scores:     map[int64]domain.SpivotScore{},
		dashboards: map[int64]domain.DashboardMetrics{},
	}
}

func (c *spyCache) GetCashflow(ctx context.Context, userID int64) (*domain.CashflowAnalysis, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.cashflow[userID]
	if !ok {
		return nil, false, nil
	}
	return &v, true, nil
}

func (c *spyCache) SetCashflow(ctx context.Context, userID int64, a domain.CashflowAnalysis) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cashflow[userID] = a
	return nil
}

func (c *spyCache) GetScore(ctx context.Context, userID int64) (*domain.SpivotScore, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.scores[userID]
	if !ok {
		return nil, false, nil
	}
	return &v, true, nil
}

func (c *spyCache) SetScore(ctx context.Context, userID int64, s domain.SpivotScore) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.scores[userID] = s
	return nil
}

func (c *spyCache) GetDashboard(ctx context.Context, userID int64) (*domain.DashboardMetrics, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.dashboards[userID]
	if !ok {
		return nil, false, nil
	}
	return &v, true, nil
}

func (c *spyCache) SetDashboard(ctx context.Context, userID int64, m domain.DashboardMetrics) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dashboards[userID] = m
	return nil
}

func (c *spyCache) InvalidateUser(ctx context.Context, userID int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.cashflow, userID)
	delete(c.scores, userID)
	delete(c.dashboards, userID)
	c.invalidated = append(c.invalidated, userID)
	return nil
}

func (c *spyCache) InvalidateAll(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cashflow = map[int64]domain.CashflowAnalysis{}
	c.scores = map[int64]domain.SpivotScore{}
	c.dashboards = map[int64]domain.DashboardMetrics{}
	return nil
}

// services wires every service against one memStore.
type services struct {
	mem       *memStore
	cache     *spyCache
	engine    *Engine
	cashflow  *CashflowService
	forecast  *ForecastService
	inventory *InventoryService
	dashboard *DashboardService
	agentLogs *AgentLogService
	users     *UserService
}

func newServices() *services {
	mem := newMemStore()
	store := mem.store()
	c := newSpyCache()
	engine := newTestEngine()

	agentLogs := NewAgentLogService(store.AgentLogs, nil)
	agentLogs.now = fixedNow
	cashflow := NewCashflowService(store.Transactions, store.VendorPayments, c, engine, nil, nil)
	forecasts := NewForecastService(store.Users, store.Transactions, engine, nil)

	return &services{
		mem:       mem,
		cache:     c,
		engine:    engine,
		cashflow:  cashflow,
		forecast:  forecasts,
		inventory: NewInventoryService(store.Inventory, c, agentLogs, forecasts, engine, nil, nil),
		dashboard: NewDashboardService(store.Users, store.Inventory, cashflow, c, nil),
		agentLogs: agentLogs,
		users:     NewUserService(store.Users),
	}
}

func (s *services) addUser(id int64, bt domain.BusinessType) {
	s.mem.users[id] = domain.User{ID: id, Email: fmt.Sprintf("owner%d@example.com", id), BusinessType: bt}
}

func (s *services) addTxn(userID int64, date time.Time, kind domain.TransactionKind, amount float64, category string) {
	s.mem.txns = append(s.mem.txns, domain.Transaction{
		ID: s.mem.id(), UserID: userID, Date: date, Kind: kind, Amount: amount, Category: category,
	})
}

func (s *services) addItem(item domain.InventoryItem) {
	item.ID = s.mem.id()
	s.mem.items = append(s.mem.items, item)
}
