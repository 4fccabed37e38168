package ledger

import (
	"context"
	"sync"

	"CryptoPilot/internal/model"
)

// MemoryStore keeps ledger state in process memory.
type MemoryStore struct {
	mu         sync.RWMutex
	portfolios map[model.Mode]model.Portfolio
	histories  map[model.Mode][]model.Trade
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		portfolios: make(map[model.Mode]model.Portfolio),
		histories:  make(map[model.Mode][]model.Trade),
	}
}

func (s *MemoryStore) ReadPortfolio(_ context.Context, mode model.Mode) (model.Portfolio, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.portfolios[mode]
	return p, ok, nil
}

func (s *MemoryStore) WritePortfolio(_ context.Context, mode model.Mode, p model.Portfolio) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.portfolios[mode] = p
	return nil
}

func (s *MemoryStore) ReadHistory(_ context.Context, mode model.Mode) ([]model.Trade, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.Trade(nil), s.histories[mode]...), nil
}

func (s *MemoryStore) WriteHistory(_ context.Context, mode model.Mode, trades []model.Trade) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.histories[mode] = append([]model.Trade(nil), trades...)
	return nil
}

func (s *MemoryStore) Close() error { return nil }
