package notifier

import (
	"fmt"
	"html"
	"strings"

	"CryptoPilot/internal/model"
)

// FormatTrade formats an executed trade into a Telegram message.
func FormatTrade(mode model.Mode, t *model.Trade) string {
	icon := "🟢"
	if t.Side == model.SideSell {
		icon = "🔴"
	}
	var b strings.Builder
	b.WriteString(fmt.Sprintf("%s <b>%s executed</b> [%s]\n\n", icon, t.Side, mode))
	b.WriteString(fmt.Sprintf("Price: $%s\n", t.Price.StringFixed(2)))
	b.WriteString(fmt.Sprintf("Amount: %s\n", t.AssetAmount.StringFixed(6)))
	b.WriteString(fmt.Sprintf("Notional: $%s\n", t.Notional.StringFixed(2)))
	b.WriteString(fmt.Sprintf("Time: %s", t.Time))
	return b.String()
}

// FormatInsight formats the latest oracle insight.
func FormatInsight(ins *model.Insight) string {
	if ins == nil {
		return "No analysis yet."
	}
	var b strings.Builder
	b.WriteString("🧠 <b>Latest insight</b>\n\n")
	b.WriteString(fmt.Sprintf("Signal: <b>%s</b> (%.0f%% confidence)\n", ins.Signal, ins.Confidence))
	b.WriteString(html.EscapeString(ins.Reasoning))
	return b.String()
}

// FormatPortfolio formats balances, valued at price when one is known.
func FormatPortfolio(mode model.Mode, p model.Portfolio, price *model.PricePoint) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("📦 <b>Portfolio</b> [%s]\n\n", mode))
	b.WriteString(fmt.Sprintf("Cash: $%s\n", p.Cash.StringFixed(2)))
	b.WriteString(fmt.Sprintf("Asset: %s\n", p.Asset.StringFixed(6)))
	if price != nil {
		b.WriteString(fmt.Sprintf("Value: $%s @ $%s", p.Value(price.Price).StringFixed(2), price.Price.StringFixed(2)))
	}
	return strings.TrimRight(b.String(), "\n")
}

// FormatStatus formats the controller status.
func FormatStatus(st model.BotStatus) string {
	state := "⏹ stopped"
	if st.IsRunning {
		state = "▶️ running"
	}
	if st.IsAnalyzing {
		state += ", analyzing"
	}
	return fmt.Sprintf("🤖 <b>Bot</b>: %s\n%s", state, st.StatusMessage)
}

// FormatHistory formats up to n of the most recent trades.
func FormatHistory(trades []model.Trade, n int) string {
	if len(trades) == 0 {
		return "No trades yet."
	}
	if len(trades) > n {
		trades = trades[:n]
	}
	var b strings.Builder
	b.WriteString("📜 <b>Recent trades</b>\n\n")
	for _, t := range trades {
		b.WriteString(fmt.Sprintf("%s %s %s @ $%s\n", t.Time, t.Side, t.AssetAmount.StringFixed(6), t.Price.StringFixed(2)))
	}
	return strings.TrimRight(b.String(), "\n")
}
