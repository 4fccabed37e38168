package strategy

import (
	"fmt"

	"CryptoPilot/internal/calculator"
)

func factor(name string, score, weight float64, commentary string) FactorScore {
	return FactorScore{
		Name:       name,
		RawScore:   score,
		Weight:     weight,
		Weighted:   score * weight,
		Commentary: commentary,
	}
}

// scoreSMADeviation scores how far the last price sits from its short SMA.
// Weight: 0.35
func scoreSMADeviation(prices []float64) FactorScore {
	period := min(len(prices), 10)
	current := prices[len(prices)-1]
	sma, err := calculator.CalculateSMA(prices, period)
	if err != nil {
		return factor("SMA", 0, 0.35, "unavailable")
	}
	dev, err := calculator.CalculateDeviation(current, sma)
	if err != nil {
		return factor("SMA", 0, 0.35, "unavailable")
	}

	var score float64
	switch {
	case dev <= -3:
		score = 2.0
	case dev <= -2:
		score = 1.5
	case dev <= -1:
		score = 1.0
	case dev <= -0.25:
		score = 0.5
	case dev <= 0.25:
		score = 0
	case dev <= 1:
		score = -0.5
	case dev <= 2:
		score = -1.0
	case dev <= 3:
		score = -1.5
	default:
		score = -2.0
	}
	return factor("SMA", score, 0.35, fmt.Sprintf("deviation %+.2f%%", dev))
}

// scoreRSI scores the Wilder RSI of the window.
// Weight: 0.30
func scoreRSI(prices []float64) FactorScore {
	period := min(len(prices)-1, 14)
	rsi, err := calculator.CalculateRSI(prices, period)
	if err != nil {
		return factor("RSI", 0, 0.30, "unavailable")
	}

	var score float64
	switch {
	case rsi <= 25:
		score = 2.0
	case rsi <= 30:
		score = 1.5
	case rsi <= 40:
		score = 1.0
	case rsi <= 45:
		score = 0.5
	case rsi <= 55:
		score = 0
	case rsi <= 60:
		score = -0.5
	case rsi <= 70:
		score = -1.0
	case rsi <= 80:
		score = -1.5
	default:
		score = -2.0
	}
	return factor("RSI", score, 0.30, fmt.Sprintf("%.0f", rsi))
}

// scoreMomentum follows the short-term trend.
// Weight: 0.15
func scoreMomentum(prices []float64) FactorScore {
	lookback := min(len(prices)-1, 5)
	mom, err := calculator.CalculateMomentum(prices, lookback)
	if err != nil {
		return factor("momentum", 0, 0.15, "unavailable")
	}

	var score float64
	switch {
	case mom >= 3:
		score = 1.5
	case mom >= 1:
		score = 1.0
	case mom >= 0.25:
		score = 0.5
	case mom > -0.25:
		score = 0
	case mom > -1:
		score = -0.5
	case mom > -3:
		score = -1.0
	default:
		score = -1.5
	}
	return factor("momentum", score, 0.15, fmt.Sprintf("%+.2f%%", mom))
}

// scoreRangePosition scores where the last price sits in the window's range.
// Weight: 0.20
func scoreRangePosition(prices []float64) FactorScore {
	current := prices[len(prices)-1]
	high, low, err := calculator.CalculateRange(prices)
	if err != nil {
		return factor("range", 0, 0.20, "unavailable")
	}
	pos, err := calculator.CalculatePosition(current, high, low)
	if err != nil {
		return factor("range", 0, 0.20, "unavailable")
	}
	pct := pos * 100

	var score float64
	switch {
	case pct <= 10:
		score = 2.0
	case pct <= 20:
		score = 1.5
	case pct <= 30:
		score = 1.0
	case pct <= 40:
		score = 0.5
	case pct <= 60:
		score = 0
	case pct <= 70:
		score = -0.5
	case pct <= 80:
		score = -1.0
	case pct <= 90:
		score = -1.5
	default:
		score = -2.0
	}
	return factor("range", score, 0.20, fmt.Sprintf("position %.0f%%", pct))
}
