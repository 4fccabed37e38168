package collector

import (
	"context"
	"fmt"
	"time"

	"github.com/piquette/finance-go/quote"

	"CryptoPilot/internal/model"
)

// YahooFetcher implements Fetcher using Yahoo Finance quotes.
type YahooFetcher struct {
	Symbol    string
	SymbolMap map[string]string // maps internal symbol to Yahoo ticker
}

// NewYahooFetcher creates a new Yahoo Finance fetcher.
func NewYahooFetcher(symbol string) *YahooFetcher {
	return &YahooFetcher{
		Symbol: symbol,
		SymbolMap: map[string]string{
			"BTCEUR": "BTC-EUR",
			"BTCUSD": "BTC-USD",
			"ETHEUR": "ETH-EUR",
			"ETHUSD": "ETH-USD",
		},
	}
}

func (f *YahooFetcher) Name() string { return "yahoo" }

func (f *YahooFetcher) yahooSymbol() string {
	if mapped, ok := f.SymbolMap[f.Symbol]; ok {
		return mapped
	}
	return f.Symbol
}

type yahooResult struct {
	price float64
	err   error
}

// FetchLatestPrice queries the regular market price. The finance-go client
// has no context support, so the call runs in its own goroutine.
func (f *YahooFetcher) FetchLatestPrice(ctx context.Context) (model.PricePoint, error) {
	symbol := f.yahooSymbol()
	ch := make(chan yahooResult, 1)
	go func() {
		q, err := quote.Get(symbol)
		switch {
		case err != nil:
			ch <- yahooResult{err: fmt.Errorf("yahoo quote %s: %w", symbol, err)}
		case q == nil:
			ch <- yahooResult{err: fmt.Errorf("yahoo: no quote for %s", symbol)}
		default:
			ch <- yahooResult{price: q.RegularMarketPrice}
		}
	}()

	select {
	case <-ctx.Done():
		return model.PricePoint{}, ctx.Err()
	case r := <-ch:
		if r.err != nil {
			return model.PricePoint{}, r.err
		}
		if r.price <= 0 {
			return model.PricePoint{}, fmt.Errorf("yahoo: invalid price %.2f for %s", r.price, symbol)
		}
		p := model.NewPricePoint(time.Now(), r.price)
		if !p.Price.IsPositive() {
			return model.PricePoint{}, fmt.Errorf("yahoo: price %g for %s rounds to zero", r.price, symbol)
		}
		return p, nil
	}
}
