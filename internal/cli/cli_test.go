package cli

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/lazypower/recognition/internal/config"
	"github.com/lazypower/recognition/internal/engine"
	"github.com/lazypower/recognition/internal/interaction"
	"github.com/lazypower/recognition/internal/store"
)

// run executes a fresh command tree against a throwaway database and
// config file.
func run(t *testing.T, dir string, args ...string) (string, string, error) {
	t.Helper()
	color.NoColor = true

	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append([]string{
		"--db", filepath.Join(dir, "recognition.db"),
		"--config", filepath.Join(dir, "config.toml"),
	}, args...))
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestVersion(t *testing.T) {
	out, _, err := run(t, t.TempDir(), "version")
	require.NoError(t, err)
	assert.Contains(t, out, "recognition dev")
}

func TestGraphListsSeed(t *testing.T) {
	out, _, err := run(t, t.TempDir(), "graph")
	require.NoError(t, err)
	assert.Contains(t, out, "5 moments, 6 connections")
	assert.Contains(t, out, "The First Invitation")
	assert.Contains(t, out, "evolution")
}

func TestAddThenShow(t *testing.T) {
	dir := t.TempDir()

	out, _, err := run(t, dir, "add", "--title", "Quiet morning", "--content", "Coffee went cold while we talked.", "--target", "3", "--kind", "tension")
	require.NoError(t, err)
	assert.Contains(t, out, "added #6 Quiet morning")
	assert.Contains(t, out, "#3 (tension)")

	out, _, err = run(t, dir, "show", "6")
	require.NoError(t, err)
	assert.Contains(t, out, "Quiet morning")
	assert.Contains(t, out, "Coffee went cold")
	assert.Contains(t, out, "Connected to 1 other node")

	out, _, err = run(t, dir, "graph")
	require.NoError(t, err)
	assert.Contains(t, out, "6 moments, 7 connections")
}

func TestAddValidation(t *testing.T) {
	dir := t.TempDir()

	_, errOut, err := run(t, dir, "add", "--title", "", "--content", "short", "--target", "1")
	require.Error(t, err)
	assert.Contains(t, errOut, "title:")
	assert.Contains(t, errOut, "content:")

	_, _, err = run(t, dir, "add", "--title", "Orphan", "--content", "Nobody to connect to here.", "--target", "40")
	require.Error(t, err)

	out, _, err := run(t, dir, "graph")
	require.NoError(t, err)
	assert.Contains(t, out, "5 moments", "failed adds must not persist")
}

func TestShowMissing(t *testing.T) {
	_, _, err := run(t, t.TempDir(), "show", "99")
	require.Error(t, err)

	_, _, err = run(t, t.TempDir(), "show", "x")
	require.Error(t, err)
}

func TestResetNeedsConfirmation(t *testing.T) {
	dir := t.TempDir()
	_, _, err := run(t, dir, "add", "--title", "Extra", "--content", "One more than the seed.", "--target", "1")
	require.NoError(t, err)

	_, _, err = run(t, dir, "reset")
	require.Error(t, err)

	out, _, err := run(t, dir, "reset", "--yes")
	require.NoError(t, err)
	assert.Contains(t, out, "reset to 5 seed moments")

	out, _, err = run(t, dir, "history")
	require.NoError(t, err)
	assert.Contains(t, out, "reset")
	assert.Contains(t, out, "add")
}

func TestHistoryEmpty(t *testing.T) {
	out, _, err := run(t, t.TempDir(), "history")
	require.NoError(t, err)
	assert.Contains(t, out, "No changes recorded yet.")
}

func TestSimulateJSON(t *testing.T) {
	out, _, err := run(t, t.TempDir(), "simulate", "--steps", "40", "--json")
	require.NoError(t, err)

	var f engine.Frame
	require.NoError(t, json.Unmarshal([]byte(out), &f))
	assert.Equal(t, 40, f.Step)
	assert.Len(t, f.Nodes, 5)
	assert.Len(t, f.Links, 6)
	assert.Less(t, f.Alpha, 1.0)
}

func TestSimulateTable(t *testing.T) {
	out, _, err := run(t, t.TempDir(), "simulate", "-n", "5")
	require.NoError(t, err)
	assert.Contains(t, out, "5 steps")
	assert.Contains(t, out, "still moving")

	_, _, err = run(t, t.TempDir(), "simulate", "--steps", "0")
	require.Error(t, err)
}

func TestExport(t *testing.T) {
	dir := t.TempDir()

	out, _, err := run(t, dir, "export")
	require.NoError(t, err)
	var g store.Graph
	require.NoError(t, json.Unmarshal([]byte(out), &g))
	assert.Len(t, g.Nodes, 5)

	out, _, err = run(t, dir, "export", "--format", "yaml")
	require.NoError(t, err)
	var y store.Graph
	require.NoError(t, yaml.Unmarshal([]byte(out), &y))
	assert.Equal(t, g.Links, y.Links)
	assert.True(t, strings.Contains(out, "type: evolution"))

	_, _, err = run(t, dir, "export", "--format", "csv")
	require.Error(t, err)
}

func TestReloadAppliesLayoutViewAndRate(t *testing.T) {
	db, err := store.OpenMemory()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	eng := engine.New(db, engine.Options{})
	require.NoError(t, eng.Load())
	t.Cleanup(eng.Stop)

	cfg := config.Default()
	cfg.View.HoverLink = 0.5
	cfg.Layout.FPS = 30
	reload(eng, cfg)

	assert.Equal(t, time.Second/30, eng.Interval())
	_, err = eng.Handle(interaction.Event{Type: interaction.HoverEnter, NodeID: 1})
	require.NoError(t, err)
	assert.Equal(t, 0.5, eng.Frame().Links[0].Opacity)
}
