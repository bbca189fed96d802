package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"modelpicker/internal/core"
)

func TestFileStorage_LoadMissingFile(t *testing.T) {
	fs := NewFileStorage(filepath.Join(t.TempDir(), "stats.json"))
	stats, err := fs.LoadStats()
	if err != nil {
		t.Fatalf("LoadStats() error = %v", err)
	}
	if stats.TotalLookups != 0 || stats.LookupHistory == nil || stats.CategoryCounts == nil || stats.SnapshotCounts == nil {
		t.Errorf("expected empty initialised stats, got %+v", stats)
	}
}

func TestFileStorage_SaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stats.json")
	fs := NewFileStorage(path)

	now := time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)
	in := &core.LookupStats{
		TotalLookups:      3,
		SuccessfulLookups: 2,
		FailedLookups:     1,
		TotalResponseTime: 12,
		LastLookupTime:    now,
		CategoryCounts:    map[string]int64{"coding": 2, "research": 1},
		SnapshotCounts:    map[string]int64{"2026-01-15": 2},
		LookupHistory: []core.LookupRecord{
			{Timestamp: now, Success: true, ResponseTime: 4, Snapshot: "2026-01-15", Category: "coding"},
		},
	}
	if err := fs.SaveStats(in); err != nil {
		t.Fatalf("SaveStats() error = %v", err)
	}

	out, err := fs.LoadStats()
	if err != nil {
		t.Fatalf("LoadStats() error = %v", err)
	}
	if out.TotalLookups != 3 || out.FailedLookups != 1 || out.CategoryCounts["coding"] != 2 {
		t.Errorf("unexpected stats %+v", out)
	}
	if len(out.LookupHistory) != 1 || out.LookupHistory[0].Snapshot != "2026-01-15" {
		t.Errorf("unexpected history %+v", out.LookupHistory)
	}
	if !out.LastLookupTime.Equal(now) {
		t.Errorf("LastLookupTime = %v, want %v", out.LastLookupTime, now)
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("temporary files left behind: %v", entries)
	}
}

func TestFileStorage_NormalizesOldPayload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stats.json")
	if err := os.WriteFile(path, []byte(`{"total_lookups":5}`), 0o644); err != nil {
		t.Fatal(err)
	}
	stats, err := NewFileStorage(path).LoadStats()
	if err != nil {
		t.Fatalf("LoadStats() error = %v", err)
	}
	if stats.TotalLookups != 5 || stats.CategoryCounts == nil || stats.LookupHistory == nil {
		t.Errorf("payload not normalised: %+v", stats)
	}
}

func TestFileStorage_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stats.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := NewFileStorage(path).LoadStats(); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestNewFileStorage_DefaultPath(t *testing.T) {
	if fs := NewFileStorage(""); fs.filePath != core.StatsFilePath {
		t.Errorf("filePath = %q, want %q", fs.filePath, core.StatsFilePath)
	}
}

func TestNewRedisStorage_BadURL(t *testing.T) {
	if _, err := NewRedisStorage(context.Background(), RedisStorageConfig{URL: "not-a-url"}); err == nil {
		t.Fatal("expected URL parse error")
	}
}

func TestInitStorage_FileFallback(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.json")
	t.Setenv("REDIS_URL", "")
	t.Setenv("STATS_FILE", path)

	store := InitStorage(context.Background(), nil)
	fs, ok := store.(*FileStorage)
	if !ok {
		t.Fatalf("expected *FileStorage, got %T", store)
	}
	if fs.filePath != path {
		t.Errorf("filePath = %q, want %q", fs.filePath, path)
	}
}

func TestInitStorage_UnreachableRedisFallsBack(t *testing.T) {
	t.Setenv("REDIS_URL", "redis://127.0.0.1:1/0")
	t.Setenv("STATS_FILE", filepath.Join(t.TempDir(), "stats.json"))

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	store := InitStorage(ctx, &core.NopLogger{})
	if _, ok := store.(*FileStorage); !ok {
		t.Fatalf("expected file fallback, got %T", store)
	}
}
