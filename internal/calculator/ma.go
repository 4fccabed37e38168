package calculator

import "errors"

// CalculateSMA computes the simple moving average of the last period prices.
func CalculateSMA(prices []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, errors.New("period must be positive")
	}
	if len(prices) < period {
		return 0, errors.New("not enough data for SMA calculation")
	}
	sum := 0.0
	for i := len(prices) - period; i < len(prices); i++ {
		sum += prices[i]
	}
	return sum / float64(period), nil
}

// CalculateDeviation returns how far current sits from base, in percent.
func CalculateDeviation(current, base float64) (float64, error) {
	if base == 0 {
		return 0, errors.New("base must be non-zero")
	}
	return (current - base) / base * 100, nil
}

// CalculateMomentum returns the percent change over the last lookback samples.
func CalculateMomentum(prices []float64, lookback int) (float64, error) {
	if lookback <= 0 {
		return 0, errors.New("lookback must be positive")
	}
	if len(prices) < lookback+1 {
		return 0, errors.New("not enough data for momentum calculation")
	}
	last := prices[len(prices)-1]
	prev := prices[len(prices)-1-lookback]
	return CalculateDeviation(last, prev)
}
