package fund

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"CryptoPilot/internal/ledger"
	"CryptoPilot/internal/model"
)

// ErrRejected marks an order refused by policy (insufficient cash or asset).
// It is not a failure.
var ErrRejected = errors.New("order rejected")

// Manager owns one mode's portfolio and trade history. Every successful
// mutation is persisted to the ledger before it becomes visible.
type Manager struct {
	mu        sync.Mutex
	store     ledger.Store
	mode      model.Mode
	notional  decimal.Decimal
	portfolio model.Portfolio
	history   []model.Trade
	now       func() time.Time
}

// NewManager creates a Manager trading a fixed notional per order.
func NewManager(store ledger.Store, mode model.Mode, notional decimal.Decimal) *Manager {
	return &Manager{
		store:    store,
		mode:     mode,
		notional: notional,
		now:      time.Now,
	}
}

// Mode returns the trading mode this manager books against.
func (m *Manager) Mode() model.Mode { return m.mode }

// Notional returns the fixed per-trade cash amount.
func (m *Manager) Notional() decimal.Decimal { return m.notional }

// Load fetches the portfolio (fatal on failure) and trade history (logged,
// treated as empty on failure) from the ledger.
func (m *Manager) Load(ctx context.Context) error {
	p, err := ledger.LoadPortfolio(ctx, m.store, m.mode)
	if err != nil {
		return err
	}
	history, err := m.store.ReadHistory(ctx, m.mode)
	if err != nil {
		log.Printf("[WARN] read %s trade history failed, starting empty: %v", m.mode, err)
		history = nil
	}
	if len(history) > model.HistoryCap {
		history = history[:model.HistoryCap]
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.portfolio = p
	m.history = history
	return nil
}

// Portfolio returns a copy of the current balances.
func (m *Manager) Portfolio() model.Portfolio {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.portfolio
}

// History returns a copy of the trade history, newest first.
func (m *Manager) History() []model.Trade {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.Trade, len(m.history))
	copy(out, m.history)
	return out
}

// Execute places a simulated market order for the fixed notional at price.
// Returns ErrRejected (wrapped) when balances don't cover the order; the
// portfolio is then unchanged. On ledger failure the in-memory portfolio is
// left untouched and the error is returned.
func (m *Manager) Execute(ctx context.Context, side model.Side, price decimal.Decimal) (*model.Trade, error) {
	if !price.IsPositive() {
		return nil, fmt.Errorf("invalid price %s", price)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	amount := m.notional.Div(price)
	next := m.portfolio

	switch side {
	case model.SideBuy:
		if m.portfolio.Cash.LessThan(m.notional) {
			return nil, fmt.Errorf("%w: cash %s < notional %s", ErrRejected, m.portfolio.Cash, m.notional)
		}
		next.Cash = next.Cash.Sub(m.notional)
		next.Asset = next.Asset.Add(amount)
	case model.SideSell:
		if m.portfolio.Asset.LessThan(amount) {
			return nil, fmt.Errorf("%w: asset %s < required %s", ErrRejected, m.portfolio.Asset, amount)
		}
		next.Cash = next.Cash.Add(m.notional)
		next.Asset = next.Asset.Sub(amount)
	default:
		return nil, fmt.Errorf("unknown side %q", side)
	}

	if err := m.store.WritePortfolio(ctx, m.mode, next); err != nil {
		return nil, fmt.Errorf("persist portfolio: %w", err)
	}
	m.portfolio = next

	now := m.now()
	trade := model.Trade{
		ID:          newTradeID(),
		Side:        side,
		Price:       price,
		AssetAmount: amount,
		Notional:    m.notional,
		ExecutedAt:  now.UTC(),
		Time:        now.Format("15:04:05"),
	}
	m.history = prepend(m.history, trade, model.HistoryCap)

	if err := m.store.WriteHistory(ctx, m.mode, m.history); err != nil {
		log.Printf("[ERROR] failed to save %s trade history: %v", m.mode, err)
	}
	return &trade, nil
}

// prepend puts t at the front and evicts the oldest entries beyond limit.
func prepend(history []model.Trade, t model.Trade, limit int) []model.Trade {
	out := make([]model.Trade, 0, min(len(history)+1, limit))
	out = append(out, t)
	for _, h := range history {
		if len(out) == limit {
			break
		}
		out = append(out, h)
	}
	return out
}

// newTradeID returns a time-ordered UUID.
func newTradeID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
