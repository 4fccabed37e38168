package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Mode selects an isolated portfolio/history namespace.
type Mode string

const (
	ModeDemo Mode = "demo"
	ModeLive Mode = "live"
)

// Valid reports whether m is a known trading mode.
func (m Mode) Valid() bool {
	return m == ModeDemo || m == ModeLive
}

// HistoryCap is the number of most recent trades retained per mode.
const HistoryCap = 100

// Portfolio tracks cash and asset balances for one mode.
type Portfolio struct {
	Cash  decimal.Decimal `json:"cash"`
	Asset decimal.Decimal `json:"asset"`
}

// Equal compares balances numerically.
func (p Portfolio) Equal(o Portfolio) bool {
	return p.Cash.Equal(o.Cash) && p.Asset.Equal(o.Asset)
}

// Value returns the portfolio value at the given asset price.
func (p Portfolio) Value(price decimal.Decimal) decimal.Decimal {
	return p.Cash.Add(p.Asset.Mul(price))
}

// DefaultPortfolio returns the starting balances for a mode never written before.
func DefaultPortfolio(mode Mode) Portfolio {
	if mode == ModeLive {
		return Portfolio{Cash: decimal.NewFromInt(10000), Asset: decimal.NewFromFloat(0.5)}
	}
	return Portfolio{Cash: decimal.NewFromInt(100000), Asset: decimal.NewFromInt(1)}
}

// Side is the direction of an executed trade.
type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

// SideFor maps an actionable signal to a trade side.
func SideFor(s Signal) (Side, bool) {
	switch s {
	case SignalBuy:
		return SideBuy, true
	case SignalSell:
		return SideSell, true
	}
	return "", false
}

// Trade is an executed simulated order. Never mutated after creation.
type Trade struct {
	ID          string          `json:"id"`
	Side        Side            `json:"side"`
	Price       decimal.Decimal `json:"price"`
	AssetAmount decimal.Decimal `json:"asset_amount"`
	Notional    decimal.Decimal `json:"notional"`
	ExecutedAt  time.Time       `json:"executed_at"`
	Time        string          `json:"time"`
}
