package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sundrop/budget-planner/engine"
	"github.com/sundrop/budget-planner/report"
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Print the computed plan",
	RunE:  runSummary,
}

var exportOut string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the plan as an xlsx workbook",
	RunE:  runExport,
}

func init() {
	summaryCmd.Flags().StringVarP(&flagFile, "file", "f", "", "Plan document to read instead of the database")
	exportCmd.Flags().StringVarP(&flagFile, "file", "f", "", "Plan document to read instead of the database")
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "budget.xlsx", "Output path")
	rootCmd.AddCommand(summaryCmd, exportCmd)
}

func runSummary(cmd *cobra.Command, _ []string) error {
	plan, name, err := loadPlan(cmd, flagFile)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), report.Summary("BUDGET  "+name, engine.Calculate(plan)))
	return nil
}

func runExport(cmd *cobra.Command, _ []string) error {
	plan, _, err := loadPlan(cmd, flagFile)
	if err != nil {
		return err
	}

	f, err := os.Create(exportOut)
	if err != nil {
		return err
	}
	if err := report.WriteWorkbook(f, engine.Calculate(plan)); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "  Wrote %s\n", exportOut)
	return nil
}
