package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guilherme-santos/gluecal/file"
	"github.com/guilherme-santos/gluecal/internal"
	"github.com/guilherme-santos/gluecal/internal/glue"
	"github.com/guilherme-santos/gluecal/internal/sqlite"
)

func writeConfig(t *testing.T) (string, string) {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	db := filepath.Join(dir, "gluecal.db")
	data := fmt.Sprintf("database: %s\nlock_file: %s\nlock_timeout: 1s\n", db, filepath.Join(dir, "gluecal.lock"))
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))
	return path, db
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	cmd := newRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRules(t *testing.T) {
	r := rules(file.DefaultConfig())

	assert.Equal(t, map[string]internal.Color{"o ": internal.ColorOrange, "r ": internal.ColorRed}, r.Prefixes)
	assert.Equal(t, internal.ColorRed, r.MeetingColor)
	assert.Equal(t, 3, r.ReminderMinutes)
}

func TestSnapshotsList(t *testing.T) {
	path, db := writeConfig(t)

	storage, err := sqlite.Open(db)
	require.NoError(t, err)
	anchor := time.Date(2024, 3, 4, 10, 0, 0, 0, time.UTC)
	err = glue.NewStore(&bytes.Buffer{}, storage).Put(context.Background(), "g1@google.com", &glue.Snapshot{
		Anchor:   anchor,
		Children: []glue.Child{{ID: "c1", Title: "Write report", Offset: 15 * time.Minute, Duration: 30 * time.Minute}},
	})
	require.NoError(t, err)
	require.NoError(t, storage.Close())

	out, err := execute(t, "--config", path, "snapshots", "list")
	require.NoError(t, err)

	assert.Contains(t, out, "g1 at ")
	assert.Contains(t, out, `"Write report" (c1) offset 15m0s, lasts 30m0s`)
}

func TestSnapshotsClear(t *testing.T) {
	path, db := writeConfig(t)

	storage, err := sqlite.Open(db)
	require.NoError(t, err)
	require.NoError(t, storage.SetProperty(context.Background(), "g1", `{"startTime":"2024-03-04T10:00:00.000Z","containedEvents":[]}`))
	require.NoError(t, storage.Close())

	_, err = execute(t, "--config", path, "snapshots", "clear")
	require.ErrorContains(t, err, "--yes")

	out, err := execute(t, "--config", path, "snapshots", "clear", "--yes")
	require.NoError(t, err)
	assert.Contains(t, out, "Snapshots cleared")

	out, err = execute(t, "--config", path, "snapshots", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No snapshots")
}

func TestRun_NoAccount(t *testing.T) {
	path, _ := writeConfig(t)

	_, err := execute(t, "--config", path, "run")
	assert.ErrorContains(t, err, "gluecal configure")
}
