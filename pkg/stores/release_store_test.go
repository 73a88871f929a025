package stores

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
)

func openTestStore(t *testing.T) *ReleaseStore {
	t.Helper()
	store, err := Open(context.Background(), filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("failed to close store: %v", err)
		}
	})
	return store
}

func TestReleaseStore_RunLifecycle(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	id, err := store.StartRun(ctx, "my-board")
	if err != nil {
		t.Fatalf("failed to start run: %v", err)
	}
	if id == "" {
		t.Fatal("expected a run ID")
	}

	run, err := store.GetRun(ctx, id)
	if err != nil {
		t.Fatalf("failed to get run: %v", err)
	}
	if run.Scope != "my-board" || run.Status != RunStatusRunning {
		t.Errorf("unexpected run: %+v", run)
	}
	if run.CompletedAt != nil {
		t.Error("running run should have no completion time")
	}

	if err := store.FinishRun(ctx, id, nil); err != nil {
		t.Fatalf("failed to finish run: %v", err)
	}

	run, err = store.GetRun(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	if run.Status != RunStatusCompleted || run.CompletedAt == nil {
		t.Errorf("expected completed run, got %+v", run)
	}
	if run.Error != nil {
		t.Errorf("successful run should carry no error, got %q", *run.Error)
	}
}

func TestReleaseStore_FailedRun(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	id, err := store.StartRun(ctx, "all")
	if err != nil {
		t.Fatal(err)
	}
	if err := store.FinishRun(ctx, id, errors.New("build failed")); err != nil {
		t.Fatal(err)
	}

	run, err := store.GetRun(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	if run.Status != RunStatusFailed {
		t.Errorf("expected failed status, got %s", run.Status)
	}
	if run.Error == nil || *run.Error != "build failed" {
		t.Errorf("expected recorded error message, got %v", run.Error)
	}
}

func TestReleaseStore_Artifacts(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	id, err := store.StartRun(ctx, "my-board")
	if err != nil {
		t.Fatal(err)
	}

	if err := store.RecordArtifact(ctx, id, "my-board-a", "1.0.0-verdure", "releases/v1.0.0-verdure_my-board-a.zip"); err != nil {
		t.Fatalf("failed to record artifact: %v", err)
	}
	if err := store.RecordArtifact(ctx, id, "my-board-b", "1.0.0-verdure", "releases/v1.0.0-verdure_my-board-b.zip"); err != nil {
		t.Fatal(err)
	}

	artifacts, err := store.ListArtifacts(ctx, 10, 0)
	if err != nil {
		t.Fatalf("failed to list artifacts: %v", err)
	}
	if len(artifacts) != 2 {
		t.Fatalf("expected 2 artifacts, got %d", len(artifacts))
	}
	for _, a := range artifacts {
		if a.RunID != id {
			t.Errorf("artifact %s not linked to run %s", a.ID, id)
		}
	}
}

func TestReleaseStore_Errors(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if err := store.FinishRun(ctx, "no-such-run", nil); err == nil {
		t.Error("expected error finishing unknown run")
	}
	if _, err := store.GetRun(ctx, "no-such-run"); err == nil {
		t.Error("expected error getting unknown run")
	}
	if _, err := Open(ctx, ""); err == nil {
		t.Error("expected error for empty database path")
	}
}
