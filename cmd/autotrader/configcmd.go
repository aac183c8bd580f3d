package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zonkia/XTB-autoTrader/config"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Generate or validate configuration files",
	}
	cmd.AddCommand(newConfigInitCmd(), newConfigValidateCmd())
	return cmd
}

func newConfigInitCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default config file",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.Default().SaveToFile(output); err != nil {
				return err
			}
			fmt.Printf("wrote %s\n", output)
			return nil
		},
	}

	cmd.Flags().StringVar(&output, "output", "autotrader.yaml", "where to write the config")
	return cmd
}

func newConfigValidateCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check a config file without running",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := config.LoadFromFile(configPath); err != nil {
				return err
			}
			fmt.Printf("%s is valid\n", configPath)
			return nil
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "autotrader.yaml", "path to YAML config")
	_ = cmd.MarkFlagRequired("config")
	return cmd
}
