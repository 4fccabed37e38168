package main

import (
	"context"
	"log"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "cryptopilot",
		Short: "CryptoPilot - simulated LLM-signal crypto trading bot",
		Long: `CryptoPilot polls a price feed, asks a signal oracle for BUY/SELL/HOLD and
places simulated orders of a fixed notional against a per-mode ledger.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBot(cmd.Context())
		},
	}

	root.AddCommand(&cobra.Command{
		Use:   "run",
		Short: "Run the bot service (default)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBot(cmd.Context())
		},
	})
	root.AddCommand(newStatusCmd())
	root.AddCommand(newControlCmd("start", "Start the trading loop on a running service"))
	root.AddCommand(newControlCmd("stop", "Stop the trading loop on a running service"))
	root.AddCommand(newTokenCmd())

	return root
}
