package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sundrop/budget-planner/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show current configuration",
	RunE:  runConfig,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default configuration to --config",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := config.Save(flagConfig, config.DefaultConfig()); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "  Wrote %s\n", flagConfig)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfig(cmd *cobra.Command, _ []string) error {
	cfg, err := settings()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "  Config file: %s\n\n", flagConfig)

	fmt.Fprintln(out, "  [Server]")
	fmt.Fprintf(out, "    Port:            %s\n", cfg.Server.Port)
	fmt.Fprintf(out, "    Allowed origins: %s\n", strings.Join(cfg.Server.AllowedOrigins, ", "))
	fmt.Fprintln(out)

	fmt.Fprintln(out, "  [Store]")
	fmt.Fprintf(out, "    Database: %s\n", cfg.Store.DBPath)
	fmt.Fprintf(out, "    Plan:     %s\n", cfg.Store.PlanID)
	fmt.Fprintln(out)

	fmt.Fprintln(out, "  [Autosave]")
	fmt.Fprintf(out, "    Delay: %s\n", cfg.Autosave.Delay)
	fmt.Fprintln(out)

	fmt.Fprintln(out, "  [Redis]")
	if cfg.Redis.Addr != "" {
		fmt.Fprintf(out, "    Address: %s\n", cfg.Redis.Addr)
	} else {
		fmt.Fprintln(out, "    Address: not configured (in-process feed)")
	}
	return nil
}
