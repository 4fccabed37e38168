package collector

import (
	"context"

	"CryptoPilot/internal/model"
)

// Fetcher defines the interface for fetching the latest asset price.
type Fetcher interface {
	FetchLatestPrice(ctx context.Context) (model.PricePoint, error)
	Name() string
}
