package bot

import (
	"context"
	"strings"

	"CryptoPilot/internal/notifier"
)

const helpText = `Available commands:
/start - enable the bot
/stop - disable the bot
/status - bot status
/portfolio - balances
/history - recent trades
/insight - latest analysis`

// HandleCommand processes a chat command and returns a reply.
func (c *Controller) HandleCommand(ctx context.Context, text string) string {
	cmd := strings.Fields(strings.TrimSpace(text))
	if len(cmd) == 0 {
		return helpText
	}
	// "/status@MyBot" in group chats
	name, _, _ := strings.Cut(strings.ToLower(cmd[0]), "@")

	switch name {
	case "/start":
		if err := c.Start(ctx); err != nil {
			return "❌ Start failed: " + err.Error()
		}
		return notifier.FormatStatus(c.Status())
	case "/stop":
		c.Stop()
		return notifier.FormatStatus(c.Status())
	case "/status":
		return notifier.FormatStatus(c.Status())
	case "/portfolio":
		return notifier.FormatPortfolio(c.Mode(), c.Portfolio(), c.LatestPrice())
	case "/history":
		return notifier.FormatHistory(c.TradeHistory(), 10)
	case "/insight":
		return notifier.FormatInsight(c.LatestInsight())
	default:
		return helpText
	}
}
