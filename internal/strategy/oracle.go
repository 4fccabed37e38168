package strategy

import (
	"context"

	"CryptoPilot/internal/model"
)

// PromptWindow is how many recent prices an oracle is shown.
const PromptWindow = 10

// Oracle turns a window of recent prices into a trading insight.
type Oracle interface {
	Insight(ctx context.Context, prices []float64) (model.Insight, error)
	Name() string
}

// RulesOracle is a deterministic local Oracle backed by the factor engine.
type RulesOracle struct{}

func NewRulesOracle() *RulesOracle { return &RulesOracle{} }

func (RulesOracle) Name() string { return "rules" }

func (RulesOracle) Insight(_ context.Context, prices []float64) (model.Insight, error) {
	return Evaluate(prices).Insight(), nil
}
