package collector

import (
	"context"
	"math"
	"math/rand/v2"
	"sync"
	"time"

	"CryptoPilot/internal/model"
)

// MockFetcher returns a controllable fixed price for development and testing.
type MockFetcher struct {
	mu    sync.Mutex
	Price float64
	Err   error
	Calls int
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchLatestPrice(_ context.Context) (model.PricePoint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls++
	if m.Err != nil {
		return model.PricePoint{}, m.Err
	}
	return model.NewPricePoint(time.Now(), m.Price), nil
}

// Set changes the returned price and error.
func (m *MockFetcher) Set(price float64, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Price = price
	m.Err = err
}

// RandomWalkFetcher synthesizes a demo feed: each sample moves the last
// price by up to ±volatility in quote currency units.
type RandomWalkFetcher struct {
	mu         sync.Mutex
	last       float64
	volatility float64
}

// NewRandomWalkFetcher starts a walk at initial.
func NewRandomWalkFetcher(initial, volatility float64) *RandomWalkFetcher {
	return &RandomWalkFetcher{last: initial, volatility: volatility}
}

func (r *RandomWalkFetcher) Name() string { return "random_walk" }

func (r *RandomWalkFetcher) FetchLatestPrice(_ context.Context) (model.PricePoint, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.last = walk(r.last, r.volatility, rand.Float64())
	return model.NewPricePoint(time.Now(), r.last), nil
}

// minWalkPrice keeps synthesized points positive after cent rounding.
const minWalkPrice = 0.01

// walk moves price by an absolute (u-0.5)*2*volatility, floored at one cent.
// u is in [0,1).
func walk(price, volatility, u float64) float64 {
	return math.Max(price+(u-0.5)*2*volatility, minWalkPrice)
}
