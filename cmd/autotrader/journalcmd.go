package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/zonkia/XTB-autoTrader/journal"
)

func newJournalCmd() *cobra.Command {
	var dbPath string

	cmd := &cobra.Command{
		Use:   "journal",
		Short: "Query the order journal",
	}
	cmd.PersistentFlags().StringVar(&dbPath, "db", "./journal.db", "path to SQLite journal")

	order := &cobra.Command{
		Use:   "order <id>",
		Short: "Show a single order record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			j, err := journal.NewSQLite(dbPath)
			if err != nil {
				return err
			}
			defer j.Close()

			rec, err := j.GetOrder(args[0])
			if err != nil {
				return err
			}
			printOrder(rec)
			return nil
		},
	}

	day := &cobra.Command{
		Use:   "day <YYYY-MM-DD>",
		Short: "List orders recorded on one day",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			start, err := time.ParseInLocation("2006-01-02", args[0], time.Local)
			if err != nil {
				return fmt.Errorf("bad date %q: %w", args[0], err)
			}

			j, err := journal.NewSQLite(dbPath)
			if err != nil {
				return err
			}
			defer j.Close()

			recs, err := j.ListOrdersBetween(start, start.AddDate(0, 0, 1))
			if err != nil {
				return err
			}
			if len(recs) == 0 {
				fmt.Println("no orders")
				return nil
			}
			for _, rec := range recs {
				printOrder(rec)
			}
			return nil
		},
	}

	cmd.AddCommand(order, day)
	return cmd
}

func printOrder(rec journal.OrderRecord) {
	fmt.Printf("%s  %-7s %-6s %-4s vol %.2f sl %.5f tp %.5f order %d (%s)\n",
		rec.Time.Format(time.RFC3339), rec.Pair, rec.Action, rec.Side,
		rec.Volume, rec.StopLoss, rec.Target, rec.Order, rec.ID)
}
