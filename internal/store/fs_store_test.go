package store

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestFSStoreSaveLoadRoundtrip(t *testing.T) {
	fs, err := NewFSStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFSStore failed: %v", err)
	}

	original := validCheckpoint()
	if err := fs.SaveCheckpoint(original.JobID, original); err != nil {
		t.Fatalf("SaveCheckpoint failed: %v", err)
	}

	loaded, err := fs.LoadCheckpoint(original.JobID)
	if err != nil {
		t.Fatalf("LoadCheckpoint failed: %v", err)
	}

	if loaded.JobID != original.JobID {
		t.Errorf("JobID = %q, want %q", loaded.JobID, original.JobID)
	}
	if loaded.BestCost != original.BestCost {
		t.Errorf("BestCost = %v, want %v", loaded.BestCost, original.BestCost)
	}
	if loaded.Iteration != original.Iteration {
		t.Errorf("Iteration = %d, want %d", loaded.Iteration, original.Iteration)
	}
	if len(loaded.BestParams) != len(original.BestParams) {
		t.Fatalf("BestParams length = %d, want %d", len(loaded.BestParams), len(original.BestParams))
	}
	for i, p := range original.BestParams {
		if loaded.BestParams[i] != p {
			t.Errorf("BestParams[%d] = %v, want %v", i, loaded.BestParams[i], p)
		}
	}
	if loaded.Config.Problem != original.Config.Problem || loaded.Config.Solver != original.Config.Solver {
		t.Errorf("config not preserved: %+v", loaded.Config)
	}
}

func TestFSStoreSaveOverwrites(t *testing.T) {
	fs, err := NewFSStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFSStore failed: %v", err)
	}

	first := validCheckpoint()
	if err := fs.SaveCheckpoint(first.JobID, first); err != nil {
		t.Fatalf("first save failed: %v", err)
	}

	second := validCheckpoint()
	second.Iteration = 99
	second.BestCost = 0.01
	if err := fs.SaveCheckpoint(second.JobID, second); err != nil {
		t.Fatalf("second save failed: %v", err)
	}

	loaded, err := fs.LoadCheckpoint(first.JobID)
	if err != nil {
		t.Fatalf("LoadCheckpoint failed: %v", err)
	}
	if loaded.Iteration != 99 || loaded.BestCost != 0.01 {
		t.Errorf("overwrite not applied: iteration=%d bestCost=%v", loaded.Iteration, loaded.BestCost)
	}
}

func TestFSStoreLoadMissing(t *testing.T) {
	fs, err := NewFSStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFSStore failed: %v", err)
	}

	_, err = fs.LoadCheckpoint("no-such-job")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestFSStoreList(t *testing.T) {
	fs, err := NewFSStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFSStore failed: %v", err)
	}

	infos, err := fs.ListCheckpoints()
	if err != nil {
		t.Fatalf("ListCheckpoints on empty store failed: %v", err)
	}
	if len(infos) != 0 {
		t.Errorf("expected empty listing, got %d entries", len(infos))
	}

	for _, id := range []string{"job-a", "job-b", "job-c"} {
		c := validCheckpoint()
		c.JobID = id
		if err := fs.SaveCheckpoint(id, c); err != nil {
			t.Fatalf("SaveCheckpoint(%s) failed: %v", id, err)
		}
	}

	infos, err = fs.ListCheckpoints()
	if err != nil {
		t.Fatalf("ListCheckpoints failed: %v", err)
	}
	if len(infos) != 3 {
		t.Errorf("expected 3 checkpoints, got %d", len(infos))
	}

	seen := make(map[string]bool)
	for _, info := range infos {
		seen[info.JobID] = true
	}
	for _, id := range []string{"job-a", "job-b", "job-c"} {
		if !seen[id] {
			t.Errorf("checkpoint %s missing from listing", id)
		}
	}
}

func TestFSStoreListSkipsCorrupt(t *testing.T) {
	dir := t.TempDir()
	fs, err := NewFSStore(dir)
	if err != nil {
		t.Fatalf("NewFSStore failed: %v", err)
	}

	good := validCheckpoint()
	if err := fs.SaveCheckpoint(good.JobID, good); err != nil {
		t.Fatalf("SaveCheckpoint failed: %v", err)
	}

	corruptDir := filepath.Join(dir, "jobs", "corrupt-job")
	if err := os.MkdirAll(corruptDir, 0755); err != nil {
		t.Fatalf("failed to create corrupt job dir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(corruptDir, "checkpoint.json"), []byte("{not json"), 0644); err != nil {
		t.Fatalf("failed to write corrupt checkpoint: %v", err)
	}

	infos, err := fs.ListCheckpoints()
	if err != nil {
		t.Fatalf("ListCheckpoints failed: %v", err)
	}
	if len(infos) != 1 || infos[0].JobID != good.JobID {
		t.Errorf("expected only the valid checkpoint, got %+v", infos)
	}
}

func TestFSStoreDelete(t *testing.T) {
	fs, err := NewFSStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFSStore failed: %v", err)
	}

	c := validCheckpoint()
	if err := fs.SaveCheckpoint(c.JobID, c); err != nil {
		t.Fatalf("SaveCheckpoint failed: %v", err)
	}
	if err := fs.DeleteCheckpoint(c.JobID); err != nil {
		t.Fatalf("DeleteCheckpoint failed: %v", err)
	}

	if _, err := fs.LoadCheckpoint(c.JobID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}

	if err := fs.DeleteCheckpoint(c.JobID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for repeated delete, got %v", err)
	}
}

func TestFSStoreEmptyJobID(t *testing.T) {
	fs, err := NewFSStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFSStore failed: %v", err)
	}

	if err := fs.SaveCheckpoint("", validCheckpoint()); err == nil {
		t.Error("SaveCheckpoint with empty jobID should fail")
	}
	if _, err := fs.LoadCheckpoint(""); err == nil {
		t.Error("LoadCheckpoint with empty jobID should fail")
	}
	if err := fs.DeleteCheckpoint(""); err == nil {
		t.Error("DeleteCheckpoint with empty jobID should fail")
	}
}
