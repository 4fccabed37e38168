package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"CryptoPilot/internal/api"
	"CryptoPilot/internal/display"
)

const defaultAPIURL = "http://localhost:8080"

func newStatusCmd() *cobra.Command {
	var (
		addr   string
		watch  time.Duration
		trades int
	)
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the dashboard of a running service",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(addr, "")
			ctx := cmd.Context()
			for {
				d, err := client.Dashboard(ctx)
				if err != nil {
					return err
				}
				if watch > 0 {
					fmt.Print("\033[2J\033[H")
				}
				fmt.Println(display.RenderDashboard(d, trades))
				if watch <= 0 {
					return nil
				}
				select {
				case <-ctx.Done():
					return nil
				case <-time.After(watch):
				}
			}
		},
	}
	cmd.Flags().StringVar(&addr, "addr", defaultAPIURL, "API base URL")
	cmd.Flags().DurationVar(&watch, "watch", 0, "refresh interval (0 renders once)")
	cmd.Flags().IntVar(&trades, "trades", 10, "number of trades to show")
	return cmd
}

func newControlCmd(action, short string) *cobra.Command {
	var addr, token string
	cmd := &cobra.Command{
		Use:   action,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(addr, token)
			ctx := cmd.Context()
			call := client.Start
			if action == "stop" {
				call = client.Stop
			}
			st, err := call(ctx)
			if err != nil {
				return err
			}
			fmt.Printf("running=%t analyzing=%t status=%q\n", st.IsRunning, st.IsAnalyzing, st.StatusMessage)
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", defaultAPIURL, "API base URL")
	cmd.Flags().StringVar(&token, "token", "", "operator token (see the token command)")
	return cmd
}

func newTokenCmd() *cobra.Command {
	var (
		operator string
		ttl      time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue an operator token for the control routes",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if cfg.Server.JWTSecret == "" {
				return fmt.Errorf("server.jwt_secret is not configured")
			}
			token, err := api.NewJWTManager(cfg.Server.JWTSecret).GenerateToken(operator, ttl)
			if err != nil {
				return err
			}
			fmt.Println(token)
			return nil
		},
	}
	cmd.Flags().StringVar(&operator, "operator", "cli", "operator name embedded in the token")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")
	return cmd
}
