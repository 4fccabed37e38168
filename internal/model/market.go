package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// PricePoint is a single timestamped price sample.
type PricePoint struct {
	Timestamp string          `json:"timestamp"` // display time, e.g. 15:04:05
	Price     decimal.Decimal `json:"price"`
	FetchedAt time.Time       `json:"fetched_at"`
}

// NewPricePoint builds a point rounded to cents.
func NewPricePoint(at time.Time, price float64) PricePoint {
	return PricePoint{
		Timestamp: at.Format("15:04:05"),
		Price:     decimal.NewFromFloat(price).Round(2),
		FetchedAt: at,
	}
}

// Float returns the price as float64 for indicator math.
func (p PricePoint) Float() float64 {
	f, _ := p.Price.Float64()
	return f
}
