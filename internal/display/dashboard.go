// Package display renders the bot dashboard for the terminal.
package display

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"CryptoPilot/internal/model"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7C3AED")).
			Padding(0, 1)

	panelStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#3B82F6")).
			Padding(0, 1).
			Width(60)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6B7280")).
			Width(12)

	buyStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981")).Bold(true)
	sellStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444")).Bold(true)
	holdStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F59E0B")).Bold(true)
)

func row(label, value string) string {
	return labelStyle.Render(label) + value
}

func signalStyle(s string) lipgloss.Style {
	switch s {
	case string(model.SignalBuy):
		return buyStyle
	case string(model.SignalSell):
		return sellStyle
	}
	return holdStyle
}

// RenderDashboard formats a dashboard snapshot with at most maxTrades trades.
func RenderDashboard(d model.Dashboard, maxTrades int) string {
	var sections []string

	sections = append(sections, titleStyle.Render(fmt.Sprintf("CryptoPilot [%s]", d.Mode)))

	state := "stopped"
	if d.Status.IsRunning {
		state = "running"
	}
	if d.Status.IsAnalyzing {
		state += ", analyzing"
	}
	status := []string{
		row("Bot", state),
		row("Status", d.Status.StatusMessage),
	}
	if d.Price != nil {
		status = append(status, row("Price", fmt.Sprintf("$%s (%s)", d.Price.Price.StringFixed(2), d.Price.Timestamp)))
	}
	sections = append(sections, panelStyle.Render(strings.Join(status, "\n")))

	wallet := []string{
		row("Cash", "$"+d.Portfolio.Cash.StringFixed(2)),
		row("Asset", d.Portfolio.Asset.StringFixed(6)),
	}
	if d.Price != nil {
		wallet = append(wallet, row("Value", "$"+d.Portfolio.Value(d.Price.Price).StringFixed(2)))
	}
	sections = append(sections, panelStyle.Render(strings.Join(wallet, "\n")))

	if d.Insight != nil {
		sig := signalStyle(string(d.Insight.Signal)).Render(string(d.Insight.Signal))
		insight := []string{
			row("Signal", fmt.Sprintf("%s %.0f%%", sig, d.Insight.Confidence)),
			row("Reasoning", d.Insight.Reasoning),
		}
		sections = append(sections, panelStyle.Render(strings.Join(insight, "\n")))
	}

	if len(d.Trades) == 0 {
		sections = append(sections, panelStyle.Render("No trades yet."))
	} else {
		trades := d.Trades
		if len(trades) > maxTrades {
			trades = trades[:maxTrades]
		}
		lines := make([]string, 0, len(trades))
		for _, t := range trades {
			side := signalStyle(string(t.Side)).Render(fmt.Sprintf("%-4s", t.Side))
			lines = append(lines, fmt.Sprintf("%s %s %s @ $%s", t.Time, side, t.AssetAmount.StringFixed(6), t.Price.StringFixed(2)))
		}
		sections = append(sections, panelStyle.Render(strings.Join(lines, "\n")))
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}
