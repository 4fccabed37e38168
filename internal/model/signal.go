package model

// Signal is the oracle's trading recommendation.
type Signal string

const (
	SignalBuy  Signal = "BUY"
	SignalSell Signal = "SELL"
	SignalHold Signal = "HOLD"
)

// MinConfidence is the exclusive confidence floor for acting on a signal.
const MinConfidence = 60.0

// FailureReasoning is reported when an analysis cycle could not complete.
const FailureReasoning = "An error occurred during analysis."

// ParseSignal reports whether s names a known signal.
func ParseSignal(s string) (Signal, bool) {
	switch Signal(s) {
	case SignalBuy, SignalSell, SignalHold:
		return Signal(s), true
	}
	return "", false
}

// Insight is one analysis cycle's recommendation.
type Insight struct {
	Signal     Signal  `json:"signal"`
	Confidence float64 `json:"confidence"` // 0 ~ 100
	Reasoning  string  `json:"reasoning"`
}

// Actionable reports whether the insight should lead to an order.
func (i Insight) Actionable() bool {
	return (i.Signal == SignalBuy || i.Signal == SignalSell) && i.Confidence > MinConfidence
}

// FailureInsight is the safe default recorded when a cycle fails.
func FailureInsight() Insight {
	return Insight{Signal: SignalHold, Confidence: 0, Reasoning: FailureReasoning}
}
