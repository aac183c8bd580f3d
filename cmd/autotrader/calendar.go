package main

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/zonkia/XTB-autoTrader/market"
	"github.com/zonkia/XTB-autoTrader/signal"
	"github.com/zonkia/XTB-autoTrader/store"
	"github.com/zonkia/XTB-autoTrader/xapi"
)

// newCalendarCmd classifies the current economic calendar without trading,
// useful for checking the title store before letting the bot loose.
func newCalendarCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "calendar",
		Short: "Fetch and classify the economic calendar, then exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = godotenv.Load()

			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			creds, err := credentialsFromEnv()
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			client := xapi.NewClient(cfg.API.Addr())
			if err := client.Connect(ctx); err != nil {
				return err
			}
			defer client.Disconnect()
			if _, err := client.Login(ctx, creds.UserID, creds.Password); err != nil {
				return err
			}

			cal := signal.NewCalendarEngine(client,
				store.NewFiles(cfg.Store.Dir),
				market.Currencies,
				signal.AmbiguityPolicy(cfg.Signal.AmbiguityPolicy),
				zap.NewNop())

			events, err := cal.Snapshot(ctx)
			if err != nil {
				return err
			}
			bb, err := cal.Classify(events)
			if err != nil {
				return err
			}

			fmt.Printf("events: %d\n", len(events))
			for _, ev := range events {
				fmt.Printf("  %s  %-3s  %s (current %q, forecast %q)\n",
					ev.Time.Format("Mon 15:04"), ev.Currency, ev.Title, ev.Current, ev.Forecast)
			}
			fmt.Printf("bulls: %v\nbears: %v\n", bb.Bulls, bb.Bears)
			return nil
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "path to YAML config")
	return cmd
}
