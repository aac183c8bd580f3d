package main

import (
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/zonkia/XTB-autoTrader/config"
	"github.com/zonkia/XTB-autoTrader/engine"
	"github.com/zonkia/XTB-autoTrader/journal"
	"github.com/zonkia/XTB-autoTrader/logger"
	"github.com/zonkia/XTB-autoTrader/rates"
	"github.com/zonkia/XTB-autoTrader/store"
)

func newRunCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the trading loop until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			// Missing .env is fine; credentials may come from the real
			// environment.
			_ = godotenv.Load()

			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}

			creds, err := credentialsFromEnv()
			if err != nil {
				return err
			}

			logger.Init(logger.Options{
				Level:    cfg.Log.Level,
				FilePath: cfg.Log.File,
				Console:  cfg.Log.Console,
			})
			defer logger.Sync()
			log := logger.L()

			jrnl, err := openJournal(cfg.Journal)
			if err != nil {
				return err
			}
			defer jrnl.Close()

			e := engine.New(cfg, creds,
				store.NewFiles(cfg.Store.Dir),
				rates.NewConverter("", cfg.Account.Currency),
				jrnl,
				engine.NewLogNotifier(log),
				log)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			log.Info("starting trading loop")
			err = e.Run(ctx)
			if ctx.Err() != nil {
				log.Info("interrupted, shutting down")
				return nil
			}
			return err
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "path to YAML config (defaults apply when empty)")
	return cmd
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.LoadFromFile(path)
}

func credentialsFromEnv() (engine.Credentials, error) {
	rawID := os.Getenv("XTB_USER_ID")
	password := os.Getenv("XTB_PASSWORD")
	if rawID == "" || password == "" {
		return engine.Credentials{}, fmt.Errorf("XTB_USER_ID and XTB_PASSWORD must be set")
	}
	userID, err := strconv.Atoi(rawID)
	if err != nil {
		return engine.Credentials{}, fmt.Errorf("XTB_USER_ID must be numeric: %w", err)
	}
	return engine.Credentials{UserID: userID, Password: password}, nil
}

func openJournal(cfg config.JournalConfig) (journal.Journal, error) {
	switch cfg.Type {
	case "sqlite":
		return journal.NewSQLite(cfg.DBPath)
	case "csv":
		return journal.NewCSV(cfg.OrdersFile, cfg.EquityFile)
	default:
		return journal.Discard{}, nil
	}
}
