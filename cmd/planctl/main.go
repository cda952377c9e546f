// Command planctl inspects and edits budget plans from the terminal.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/sundrop/budget-planner/config"
	"github.com/sundrop/budget-planner/engine"
	"github.com/sundrop/budget-planner/factory"
	"github.com/sundrop/budget-planner/school"
	"github.com/sundrop/budget-planner/store/redisbus"
	"github.com/sundrop/budget-planner/store/sqlite"
)

var (
	flagConfig string
	flagDB     string
	flagPlan   string
	flagFile   string
)

var rootCmd = &cobra.Command{
	Use:           "planctl",
	Short:         "School budget planner CLI",
	Long:          "Calculate, edit and export tuition and budget plans.",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runSummary,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagConfig, "config", "c", "budget.toml", "TOML config path")
	rootCmd.PersistentFlags().StringVar(&flagDB, "db", "", "SQLite database path (overrides config)")
	rootCmd.PersistentFlags().StringVarP(&flagPlan, "plan", "p", "", "Plan id (overrides config)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// settings resolves the config file and flag overrides.
func settings() (config.Config, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return cfg, err
	}
	if flagDB != "" {
		cfg.Store.DBPath = flagDB
	}
	if flagPlan != "" {
		cfg.Store.PlanID = flagPlan
	}
	return cfg, nil
}

// openStore opens the configured database and returns it with the plan id.
func openStore() (*sqlite.Store, string, error) {
	cfg, err := settings()
	if err != nil {
		return nil, "", err
	}
	store, err := sqlite.New(cfg.Store.DBPath)
	if err != nil {
		return nil, "", fmt.Errorf("opening %s: %w", cfg.Store.DBPath, err)
	}
	return store, cfg.Store.PlanID, nil
}

// loadPlan reads the plan from --file when given, otherwise from the
// database, falling back to the default plan.
func loadPlan(cmd *cobra.Command, file string) (engine.Plan, string, error) {
	if file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return engine.Plan{}, "", err
		}
		plan, err := factory.DecodePlan(data)
		return plan, file, err
	}

	store, planID, err := openStore()
	if err != nil {
		return engine.Plan{}, "", err
	}
	defer store.Close()

	stored, err := store.Load(cmd.Context(), planID)
	if err != nil {
		return engine.Plan{}, "", err
	}
	if stored == nil {
		return school.DefaultPlan(), planID, nil
	}
	return *stored, planID, nil
}

// openFeed connects to the configured change feed. A nil feed means none
// is configured.
var openFeed = func(ctx context.Context, cfg config.Config) (engine.Feed, func() error, error) {
	if cfg.Redis.Addr == "" {
		return nil, nil, nil
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	bus, err := redisbus.New(ctx, cfg.Redis.Addr)
	if err != nil {
		return nil, nil, err
	}
	return bus, bus.Close, nil
}

// savePlan writes plan under the configured id and announces it so running
// servers drop their cached copy.
func savePlan(cmd *cobra.Command, plan engine.Plan) (string, error) {
	cfg, err := settings()
	if err != nil {
		return "", err
	}
	store, err := sqlite.New(cfg.Store.DBPath)
	if err != nil {
		return "", fmt.Errorf("opening %s: %w", cfg.Store.DBPath, err)
	}
	defer store.Close()

	planID := cfg.Store.PlanID
	if err := store.Save(cmd.Context(), planID, plan); err != nil {
		return planID, err
	}

	feed, closeFeed, err := openFeed(cmd.Context(), cfg)
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: plan saved but not announced: %v\n", err)
		return planID, nil
	}
	if feed == nil {
		return planID, nil
	}
	if closeFeed != nil {
		defer closeFeed()
	}
	snapshot := engine.Snapshot{Origin: "planctl-" + uuid.NewString(), Plan: plan}
	if err := feed.Publish(cmd.Context(), planID, snapshot); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: plan saved but not announced: %v\n", err)
	}
	return planID, nil
}
