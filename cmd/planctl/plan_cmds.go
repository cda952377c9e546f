package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sundrop/budget-planner/api"
	"github.com/sundrop/budget-planner/engine"
	"github.com/sundrop/budget-planner/factory"
	"github.com/sundrop/budget-planner/report"
	"github.com/sundrop/budget-planner/school"
)

var scenariosCmd = &cobra.Command{
	Use:   "scenarios",
	Short: "List sample plans",
	RunE:  runScenarios,
}

var loadCmd = &cobra.Command{
	Use:   "load SCENARIO",
	Short: "Replace the plan with a sample plan",
	Args:  cobra.ExactArgs(1),
	RunE:  runLoad,
}

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Restore the default plan",
	RunE:  runReset,
}

var editCmd = &cobra.Command{
	Use:   "edit EDITS_JSON_FILE",
	Short: "Apply a JSON array of edits to the plan",
	Long: `Apply a JSON array of edits to the plan. Either every edit lands or none do.

Example file:
  [{"op": "set_tier_qty", "tier": "tuitionFT", "qty": 22},
   {"op": "set_final_value", "section": "budget", "id": "b_rent", "value": 14000}]`,
	Args: cobra.ExactArgs(1),
	RunE: runEdit,
}

func init() {
	rootCmd.AddCommand(scenariosCmd, loadCmd, resetCmd, editCmd)
}

func runScenarios(cmd *cobra.Command, _ []string) error {
	t := report.Table{Title: "SCENARIOS", Headers: []string{"ID", "Name", "Description"}}
	for _, s := range api.Scenarios() {
		t.Rows = append(t.Rows, []string{s.ID, s.Name, s.Description})
	}
	fmt.Fprintln(cmd.OutOrStdout(), report.RenderTable(t))
	return nil
}

func runLoad(cmd *cobra.Command, args []string) error {
	plan, err := api.ScenarioPlan(args[0])
	if err != nil {
		return err
	}
	planID, err := savePlan(cmd, plan)
	if err != nil {
		return err
	}
	return printSaved(cmd, planID, plan)
}

func runReset(cmd *cobra.Command, _ []string) error {
	plan := school.DefaultPlan()
	planID, err := savePlan(cmd, plan)
	if err != nil {
		return err
	}
	return printSaved(cmd, planID, plan)
}

func runEdit(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	edits, err := factory.ParseEdits(data)
	if err != nil {
		return err
	}

	current, _, err := loadPlan(cmd, "")
	if err != nil {
		return err
	}
	next, err := current.Apply(edits...)
	if err != nil {
		return err
	}
	planID, err := savePlan(cmd, next)
	if err != nil {
		return err
	}
	return printSaved(cmd, planID, next)
}

func printSaved(cmd *cobra.Command, planID string, plan engine.Plan) error {
	r := engine.Calculate(plan)
	fmt.Fprintf(cmd.OutOrStdout(), "  Saved %s: revenue %s, expenses %s, margin %s (%s)\n",
		planID,
		report.FormatMoney(r.TotalRevenue),
		report.FormatMoney(r.TotalExpenses),
		report.FormatMoney(r.NetMargin),
		report.FormatPercent(r.MarginPercent))
	return nil
}
