// Package ledger persists portfolio balances and trade history per trading mode.
package ledger

import (
	"context"
	"errors"
	"fmt"

	"CryptoPilot/internal/model"
)

// ErrUnknownDriver is returned by Open for an unsupported driver name.
var ErrUnknownDriver = errors.New("unknown ledger driver")

// Store is a durable key-value store of portfolios and trade records, keyed by mode.
type Store interface {
	// ReadPortfolio returns ok=false when nothing was written for mode yet.
	ReadPortfolio(ctx context.Context, mode model.Mode) (p model.Portfolio, ok bool, err error)
	WritePortfolio(ctx context.Context, mode model.Mode, p model.Portfolio) error
	// ReadHistory returns trades newest first; empty when nothing was written.
	ReadHistory(ctx context.Context, mode model.Mode) ([]model.Trade, error)
	WriteHistory(ctx context.Context, mode model.Mode, trades []model.Trade) error
	Close() error
}

// LoadPortfolio reads the mode's portfolio, initializing and persisting the
// mode default when none exists.
func LoadPortfolio(ctx context.Context, s Store, mode model.Mode) (model.Portfolio, error) {
	p, ok, err := s.ReadPortfolio(ctx, mode)
	if err != nil {
		return model.Portfolio{}, fmt.Errorf("read portfolio %s: %w", mode, err)
	}
	if ok {
		return p, nil
	}
	p = model.DefaultPortfolio(mode)
	if err := s.WritePortfolio(ctx, mode, p); err != nil {
		return model.Portfolio{}, fmt.Errorf("initialize portfolio %s: %w", mode, err)
	}
	return p, nil
}

// Open creates a Store for the named driver: memory, file, sqlite or postgres.
func Open(ctx context.Context, driver, dsn string) (Store, error) {
	switch driver {
	case "memory", "":
		return NewMemoryStore(), nil
	case "file":
		return NewFileStore(dsn)
	case "sqlite":
		return OpenSQLite(ctx, dsn)
	case "postgres":
		return OpenPostgres(ctx, dsn)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, driver)
	}
}
