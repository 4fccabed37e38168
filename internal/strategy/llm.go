package strategy

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/cloudwego/eino-ext/components/model/deepseek"
	"github.com/cloudwego/eino-ext/components/model/openai"
	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"CryptoPilot/internal/calculator"
	"CryptoPilot/internal/model"
)

// ErrMissingCredential is returned when the oracle has no API key configured.
var ErrMissingCredential = errors.New("oracle API key is not configured")

const (
	defaultConfidence = 50.0
	noReasoning       = "No reasoning provided."
	maxTokens         = 500
)

const systemPrompt = `You are a cryptocurrency trading analyst. Given recent prices, respond ONLY with a JSON object:
{"signal": "BUY" | "SELL" | "HOLD", "reasoning": "<one or two sentences>", "confidence": <number 0-100>}`

// chatModel is the slice of the eino model API the oracle uses.
type chatModel interface {
	Generate(ctx context.Context, input []*schema.Message, opts ...einomodel.Option) (*schema.Message, error)
}

// LLMConfig selects and configures a hosted model.
type LLMConfig struct {
	Provider string // openai | deepseek
	APIKey   string
	BaseURL  string
	Model    string
}

// LLMOracle asks a hosted chat model for a signal.
type LLMOracle struct {
	name  string
	model chatModel
}

// NewLLMOracle builds an oracle for the configured provider. A missing API key
// is not an error here; every Insight call reports ErrMissingCredential instead.
func NewLLMOracle(ctx context.Context, cfg LLMConfig) (*LLMOracle, error) {
	if cfg.APIKey == "" {
		return &LLMOracle{name: cfg.Provider}, nil
	}

	var (
		cm  chatModel
		err error
	)
	switch cfg.Provider {
	case "deepseek":
		cm, err = deepseek.NewChatModel(ctx, &deepseek.ChatModelConfig{
			APIKey:    cfg.APIKey,
			Model:     cfg.Model,
			MaxTokens: maxTokens,
		})
	case "openai":
		tokens := maxTokens
		cm, err = openai.NewChatModel(ctx, &openai.ChatModelConfig{
			BaseURL:   cfg.BaseURL,
			APIKey:    cfg.APIKey,
			Model:     cfg.Model,
			MaxTokens: &tokens,
		})
	default:
		return nil, fmt.Errorf("unknown oracle provider %q", cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("create %s model: %w", cfg.Provider, err)
	}
	return &LLMOracle{name: cfg.Provider, model: cm}, nil
}

func (o *LLMOracle) Name() string { return o.name }

// Insight prompts the model with the most recent prices and parses its reply.
func (o *LLMOracle) Insight(ctx context.Context, prices []float64) (model.Insight, error) {
	if o.model == nil {
		return model.Insight{}, ErrMissingCredential
	}
	if len(prices) == 0 {
		return model.Insight{}, errors.New("no prices to analyze")
	}

	msgs := []*schema.Message{
		schema.SystemMessage(systemPrompt),
		schema.UserMessage(buildPrompt(prices)),
	}
	resp, err := o.model.Generate(ctx, msgs)
	if err != nil {
		return model.Insight{}, fmt.Errorf("%s generate: %w", o.name, err)
	}
	if resp == nil {
		return model.Insight{}, errors.New("empty model response")
	}
	return ParseInsight(resp.Content)
}

func buildPrompt(prices []float64) string {
	if len(prices) > PromptWindow {
		prices = prices[len(prices)-PromptWindow:]
	}

	var b strings.Builder
	b.WriteString("Recent prices (oldest first):\n")
	for i, p := range prices {
		fmt.Fprintf(&b, "%d. %.2f\n", i+1, p)
	}
	if sma, err := calculator.CalculateSMA(prices, len(prices)); err == nil {
		fmt.Fprintf(&b, "SMA(%d): %.2f\n", len(prices), sma)
	}
	if len(prices) > 1 {
		if rsi, err := calculator.CalculateRSI(prices, len(prices)-1); err == nil {
			fmt.Fprintf(&b, "RSI(%d): %.1f\n", len(prices)-1, rsi)
		}
	}
	b.WriteString("Should the bot BUY, SELL or HOLD right now?")
	return b.String()
}

type rawInsight struct {
	Signal     string          `json:"signal"`
	Reasoning  string          `json:"reasoning"`
	Confidence json.RawMessage `json:"confidence"`
}

// ParseInsight decodes a model reply, tolerating markdown fences around the JSON.
// The signal must be valid; reasoning and confidence fall back to defaults.
func ParseInsight(content string) (model.Insight, error) {
	body := extractJSON(content)
	if body == "" {
		return model.Insight{}, fmt.Errorf("no JSON object in response: %q", truncate(content, 80))
	}

	var raw rawInsight
	if err := json.Unmarshal([]byte(body), &raw); err != nil {
		return model.Insight{}, fmt.Errorf("decode insight: %w", err)
	}

	sig, ok := model.ParseSignal(strings.ToUpper(strings.TrimSpace(raw.Signal)))
	if !ok {
		return model.Insight{}, fmt.Errorf("invalid signal %q", raw.Signal)
	}

	reasoning := strings.TrimSpace(raw.Reasoning)
	if reasoning == "" {
		reasoning = noReasoning
	}

	return model.Insight{
		Signal:     sig,
		Confidence: parseConfidence(raw.Confidence),
		Reasoning:  reasoning,
	}, nil
}

func parseConfidence(raw json.RawMessage) float64 {
	if len(raw) == 0 || string(raw) == "null" {
		return defaultConfidence
	}
	var v float64
	if err := json.Unmarshal(raw, &v); err != nil {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return defaultConfidence
		}
		f, err := strconv.ParseFloat(strings.TrimSuffix(strings.TrimSpace(s), "%"), 64)
		if err != nil {
			return defaultConfidence
		}
		v = f
	}
	switch {
	case v < 0:
		return 0
	case v > 100:
		return 100
	}
	return v
}

func extractJSON(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end < start {
		return ""
	}
	return s[start : end+1]
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
