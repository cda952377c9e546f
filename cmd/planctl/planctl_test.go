package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sundrop/budget-planner/config"
	"github.com/sundrop/budget-planner/engine"
	memstore "github.com/sundrop/budget-planner/engine/store"
)

// run executes planctl against a database in dir.
func run(t *testing.T, dir string, args ...string) string {
	t.Helper()
	flagFile, flagDB, flagPlan = "", "", ""
	exportOut = "budget.xlsx"

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(append([]string{
		"--config", filepath.Join(dir, "missing.toml"),
		"--db", filepath.Join(dir, "budget.db"),
	}, args...))
	require.NoError(t, rootCmd.Execute())
	return out.String()
}

func TestPlanctl_LoadSummaryReset(t *testing.T) {
	// GIVEN: An empty database
	// WHEN: Loading the lean enrollment scenario, then resetting
	// THEN: Summary reflects each saved plan

	dir := t.TempDir()

	out := run(t, dir, "load", "lean-enrollment")
	assert.Contains(t, out, "margin -$36,986")

	out = run(t, dir, "summary")
	assert.Contains(t, out, "-$36,986")

	out = run(t, dir, "reset")
	assert.Contains(t, out, "margin $23,174")
}

func TestPlanctl_Edit(t *testing.T) {
	dir := t.TempDir()
	edits := filepath.Join(dir, "edits.json")
	require.NoError(t, os.WriteFile(edits, []byte(`[{"op": "set_tier_qty", "tier": "tuitionFT", "qty": 22}]`), 0o600))

	out := run(t, dir, "edit", edits)
	assert.Contains(t, out, "margin -$36,986")
}

func TestPlanctl_SummaryFromFile(t *testing.T) {
	dir := t.TempDir()
	doc := filepath.Join(dir, "plan.json")
	require.NoError(t, os.WriteFile(doc, []byte(`{}`), 0o600))

	out := run(t, dir, "summary", "--file", doc)
	assert.Contains(t, out, "$272,224")
}

func TestPlanctl_Export(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.xlsx")

	run(t, dir, "export", "--out", path)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}

func TestPlanctl_Scenarios(t *testing.T) {
	out := run(t, t.TempDir(), "scenarios")
	assert.Contains(t, out, "lean-enrollment")
	assert.Contains(t, out, "afterschool")
}

func TestPlanctl_SaveAnnouncesPlan(t *testing.T) {
	// GIVEN: A change feed that a running server listens on
	// WHEN: planctl loads a scenario
	// THEN: The saved plan is published under a planctl origin

	feed := memstore.NewMemory()
	saved := openFeed
	openFeed = func(context.Context, config.Config) (engine.Feed, func() error, error) {
		return feed, nil, nil
	}
	defer func() { openFeed = saved }()

	var got []engine.Snapshot
	defer feed.Subscribe(config.DefaultConfig().Store.PlanID, func(s engine.Snapshot) { got = append(got, s) })()

	run(t, t.TempDir(), "load", "lean-enrollment")

	require.Len(t, got, 1)
	assert.True(t, strings.HasPrefix(got[0].Origin, "planctl-"), got[0].Origin)
	assert.Equal(t, "22", got[0].Plan.Tiers[engine.TierFullTime].Qty.String())
}
