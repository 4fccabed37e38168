package collector

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"CryptoPilot/internal/model"
)

const defaultCoinGeckoURL = "https://api.coingecko.com/api/v3"

// CoinGeckoFetcher implements Fetcher using the CoinGecko simple price API.
type CoinGeckoFetcher struct {
	CoinID   string
	Currency string
	client   *resty.Client
}

// NewCoinGeckoFetcher creates a new fetcher with optional proxy support.
func NewCoinGeckoFetcher(baseURL, coinID, currency, proxyURL string) *CoinGeckoFetcher {
	if baseURL == "" {
		baseURL = defaultCoinGeckoURL
	}
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(30*time.Second).
		SetHeader("Accept", "application/json")
	if proxyURL != "" {
		client.SetProxy(proxyURL)
	}
	return &CoinGeckoFetcher{CoinID: coinID, Currency: currency, client: client}
}

func (f *CoinGeckoFetcher) Name() string { return "coingecko" }

func (f *CoinGeckoFetcher) FetchLatestPrice(ctx context.Context) (model.PricePoint, error) {
	var result map[string]map[string]float64
	resp, err := f.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"ids":           f.CoinID,
			"vs_currencies": f.Currency,
		}).
		SetResult(&result).
		Get("/simple/price")
	if err != nil {
		return model.PricePoint{}, fmt.Errorf("coingecko fetch: %w", err)
	}
	if resp.IsError() {
		return model.PricePoint{}, fmt.Errorf("coingecko: status %d, body: %s", resp.StatusCode(), resp.String())
	}
	price, ok := result[f.CoinID][f.Currency]
	if !ok || price <= 0 {
		return model.PricePoint{}, fmt.Errorf("coingecko: no %s/%s price in response", f.CoinID, f.Currency)
	}
	p := model.NewPricePoint(time.Now(), price)
	if !p.Price.IsPositive() {
		return model.PricePoint{}, fmt.Errorf("coingecko: price %g rounds to zero", price)
	}
	return p, nil
}
