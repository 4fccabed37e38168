package strategy

import (
	"fmt"
	"strings"

	"CryptoPilot/internal/model"
)

// Tier maps a total score range to a signal and confidence.
type Tier struct {
	Signal     model.Signal
	Confidence float64
}

// Tiers defines the 7-level signal mapping, highest score first.
var Tiers = []struct {
	MinScore float64
	Tier     Tier
}{
	{1.2, Tier{model.SignalBuy, 85}},
	{0.8, Tier{model.SignalBuy, 70}},
	{0.4, Tier{model.SignalBuy, 55}},
	{-0.4, Tier{model.SignalHold, 50}},
	{-0.8, Tier{model.SignalSell, 55}},
	{-1.2, Tier{model.SignalSell, 70}},
}

// DefaultTier is the lowest tier for scores < -1.2.
var DefaultTier = Tier{model.SignalSell, 85}

func mapTier(totalScore float64) Tier {
	for _, t := range Tiers {
		if totalScore >= t.MinScore {
			return t.Tier
		}
	}
	return DefaultTier
}

// FactorScore is a single factor's scoring result.
type FactorScore struct {
	Name       string
	RawScore   float64
	Weight     float64
	Weighted   float64
	Commentary string
}

// Evaluation is the full output of the factor engine.
type Evaluation struct {
	Factors    []FactorScore
	TotalScore float64
	Tier       Tier
	Note       string
}

// Insight converts the evaluation into an oracle insight.
func (e *Evaluation) Insight() model.Insight {
	if e.Note != "" {
		return model.Insight{Signal: e.Tier.Signal, Confidence: e.Tier.Confidence, Reasoning: e.Note}
	}
	parts := make([]string, 0, len(e.Factors))
	for _, f := range e.Factors {
		parts = append(parts, fmt.Sprintf("%s %s", f.Name, f.Commentary))
	}
	return model.Insight{
		Signal:     e.Tier.Signal,
		Confidence: e.Tier.Confidence,
		Reasoning:  fmt.Sprintf("%s; score %+.2f", strings.Join(parts, ", "), e.TotalScore),
	}
}

// Evaluate scores a price window (oldest first) into a tiered signal.
func Evaluate(prices []float64) *Evaluation {
	if len(prices) < 2 {
		return &Evaluation{
			Tier: Tier{model.SignalHold, 0},
			Note: "Not enough price history to analyze.",
		}
	}

	factors := []FactorScore{
		scoreSMADeviation(prices),
		scoreRSI(prices),
		scoreMomentum(prices),
		scoreRangePosition(prices),
	}

	total := 0.0
	for _, f := range factors {
		total += f.Weighted
	}

	return &Evaluation{
		Factors:    factors,
		TotalScore: total,
		Tier:       mapTier(total),
	}
}
