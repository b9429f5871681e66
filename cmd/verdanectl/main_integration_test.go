//go:build sqlite

package main

import (
	"context"
	"path/filepath"
	"testing"

	verdaneapi "verdane/pkg/verdane"
)

// The seed/advance flow spans separate invocations, so it needs a backend
// that outlives each command's client.
func TestSeedAdvanceFlowSQLite(t *testing.T) {
	workdir := chdirTemp(t)
	ctx := context.Background()
	dbPath := filepath.Join(workdir, "verdane.db")

	args := []string{
		"seed",
		"--store", "sqlite",
		"--db-path", dbPath,
		"--run-id", "ctl-trial",
		"--size", "6",
		"--seed", "17",
	}
	if err := run(ctx, args); err != nil {
		t.Fatalf("seed command: %v", err)
	}

	client, err := verdaneapi.New(verdaneapi.Options{StoreKind: "sqlite", DBPath: dbPath})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer func() {
		_ = client.Close()
	}()
	plants, err := client.Plants(ctx, "ctl-trial")
	if err != nil {
		t.Fatalf("Plants: %v", err)
	}
	if len(plants) != 6 {
		t.Fatalf("plant count = %d, want 6", len(plants))
	}

	args = []string{
		"advance",
		"--store", "sqlite",
		"--db-path", dbPath,
		"--run-id", "ctl-trial",
		"--parents", plants[0].ID + "," + plants[1].ID + "," + plants[2].ID,
	}
	if err := run(ctx, args); err != nil {
		t.Fatalf("advance command: %v", err)
	}

	latest, err := client.Stats(ctx, "ctl-trial")
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if latest.Generation != 2 {
		t.Fatalf("latest generation = %d, want 2", latest.Generation)
	}
	history, err := client.History(ctx, "ctl-trial")
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("history length = %d, want 2", len(history))
	}
}
