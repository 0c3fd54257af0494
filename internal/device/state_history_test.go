package device

import (
	"context"
	"database/sql"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// setupHistoryDB creates an in-memory SQLite database with the history table.
func setupHistoryDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	schema := `
		CREATE TABLE device_state_history (
			id TEXT PRIMARY KEY,
			device_id INTEGER NOT NULL,
			state TEXT NOT NULL,
			source TEXT NOT NULL DEFAULT 'sync',
			recorded_at TEXT NOT NULL
		) STRICT;
		CREATE INDEX idx_state_history_device ON device_state_history(device_id, recorded_at);
	`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		t.Fatalf("failed to create test schema: %v", err)
	}

	t.Cleanup(func() { db.Close() })
	return db
}

func TestStateHistory_RecordAndGet(t *testing.T) {
	db := setupHistoryDB(t)
	repo := NewSQLiteStateHistoryRepository(db)
	ctx := context.Background()

	if err := repo.RecordStateChange(ctx, 42, "off", StateHistorySourceSync); err != nil {
		t.Fatalf("RecordStateChange() error = %v", err)
	}
	if err := repo.RecordStateChange(ctx, 42, "on", StateHistorySourceCommand); err != nil {
		t.Fatalf("RecordStateChange() error = %v", err)
	}
	if err := repo.RecordStateChange(ctx, 7, "on", StateHistorySourcePush); err != nil {
		t.Fatalf("RecordStateChange() error = %v", err)
	}

	entries, err := repo.GetHistory(ctx, 42, 0)
	if err != nil {
		t.Fatalf("GetHistory() error = %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("GetHistory() returned %d entries, want 2", len(entries))
	}
	for _, e := range entries {
		if e.DeviceID != 42 {
			t.Errorf("entry for device %d leaked into device 42 history", e.DeviceID)
		}
		if e.ID == "" {
			t.Error("entry id should be generated")
		}
	}
}

func TestStateHistory_RejectsInvalidDevice(t *testing.T) {
	db := setupHistoryDB(t)
	repo := NewSQLiteStateHistoryRepository(db)
	ctx := context.Background()

	if err := repo.RecordStateChange(ctx, 0, "on", ""); err == nil {
		t.Error("RecordStateChange with zero id should fail")
	}
	if _, err := repo.GetHistory(ctx, -1, 10); err == nil {
		t.Error("GetHistory with negative id should fail")
	}
}

func TestStateHistory_Prune(t *testing.T) {
	db := setupHistoryDB(t)
	repo := NewSQLiteStateHistoryRepository(db)
	ctx := context.Background()

	// Insert an old entry directly so it falls outside the retention window.
	old := time.Now().UTC().Add(-48 * time.Hour).Format(time.RFC3339)
	if _, err := db.Exec(
		`INSERT INTO device_state_history (id, device_id, state, source, recorded_at)
		 VALUES ('old-entry', 42, 'off', 'sync', ?)`, old); err != nil {
		t.Fatalf("seeding old entry: %v", err)
	}
	if err := repo.RecordStateChange(ctx, 42, "on", StateHistorySourceSync); err != nil {
		t.Fatalf("RecordStateChange() error = %v", err)
	}

	deleted, err := repo.PruneHistory(ctx, 24*time.Hour)
	if err != nil {
		t.Fatalf("PruneHistory() error = %v", err)
	}
	if deleted != 1 {
		t.Errorf("PruneHistory() deleted %d rows, want 1", deleted)
	}

	entries, err := repo.GetHistory(ctx, 42, 10)
	if err != nil {
		t.Fatalf("GetHistory() error = %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("remaining entries = %d, want 1", len(entries))
	}
}
