package collector

import (
	"context"
	"fmt"
	"log"
	"math/rand/v2"
	"sync"
	"time"

	"CryptoPilot/internal/model"
)

// WindowSize is the number of recent points kept for charts and analysis.
const WindowSize = 50

// Collector fetches prices and keeps a rolling window of recent points.
type Collector struct {
	Fetcher    Fetcher
	Fallback   bool    // synthesize a point from the last known price on fetch failure
	Volatility float64 // max absolute move of a synthesized point

	mu     sync.RWMutex
	points []model.PricePoint
	rnd    func() float64
}

// NewCollector creates a new Collector.
func NewCollector(fetcher Fetcher, fallback bool, volatility float64) *Collector {
	return &Collector{
		Fetcher:    fetcher,
		Fallback:   fallback,
		Volatility: volatility,
		rnd:        rand.Float64,
	}
}

// Latest fetches the latest price and appends it to the window.
func (c *Collector) Latest(ctx context.Context) (model.PricePoint, error) {
	p, err := c.Fetcher.FetchLatestPrice(ctx)
	if err != nil {
		last, ok := c.Last()
		if !c.Fallback || !ok {
			return model.PricePoint{}, fmt.Errorf("fetch latest price: %w", err)
		}
		p = model.NewPricePoint(time.Now(), walk(last.Float(), c.Volatility, c.rnd()))
		log.Printf("[WARN] %s price fetch failed: %v, using synthesized price %s", c.Fetcher.Name(), err, p.Price)
	}
	c.append(p)
	return p, nil
}

// Seed preloads the window, e.g. from a previous session.
func (c *Collector) Seed(points []model.PricePoint) {
	for _, p := range points {
		c.append(p)
	}
}

func (c *Collector) append(p model.PricePoint) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.points = append(c.points, p)
	if len(c.points) > WindowSize {
		c.points = c.points[len(c.points)-WindowSize:]
	}
}

// Last returns the most recent point, if any.
func (c *Collector) Last() (model.PricePoint, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if len(c.points) == 0 {
		return model.PricePoint{}, false
	}
	return c.points[len(c.points)-1], true
}

// Points returns a copy of the window, oldest first.
func (c *Collector) Points() []model.PricePoint {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]model.PricePoint, len(c.points))
	copy(out, c.points)
	return out
}

// Recent returns up to n most recent prices, oldest first.
func (c *Collector) Recent(n int) []float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	start := len(c.points) - n
	if start < 0 {
		start = 0
	}
	out := make([]float64, 0, len(c.points)-start)
	for _, p := range c.points[start:] {
		out = append(out, p.Float())
	}
	return out
}
