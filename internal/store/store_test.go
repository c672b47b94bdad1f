package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func countSnapshots(t *testing.T, s *Store) int {
	t.Helper()
	var n int
	if err := s.DB().QueryRow("SELECT COUNT(*) FROM snapshots").Scan(&n); err != nil {
		t.Fatalf("count: %v", err)
	}
	return n
}

func TestPragmasApplied(t *testing.T) {
	s := openTestStore(t)
	db := s.DB()

	tests := []struct {
		pragma string
		want   string
	}{
		{"journal_mode", "wal"},
		{"foreign_keys", "1"},
		{"synchronous", "1"}, // NORMAL = 1
	}

	for _, tt := range tests {
		var got string
		err := db.QueryRow("PRAGMA " + tt.pragma).Scan(&got)
		if err != nil {
			t.Errorf("PRAGMA %s: %v", tt.pragma, err)
			continue
		}
		if got != tt.want {
			t.Errorf("PRAGMA %s = %q, want %q", tt.pragma, got, tt.want)
		}
	}
}

func TestSnapshotSaveAndLatest(t *testing.T) {
	s := openTestStore(t)
	repo := s.SnapshotRepo()
	ctx := context.Background()

	// No snapshot yet.
	snap, err := repo.Latest(ctx)
	if err != nil {
		t.Fatalf("latest (empty): %v", err)
	}
	if snap != nil {
		t.Fatal("expected nil snapshot when none exist")
	}

	now := time.Now().UTC().Truncate(time.Second)
	err = repo.Save(ctx, &Snapshot{
		Sequence:  42,
		Timestamp: now,
		Data:      []byte(`{"study_streak":3}`),
	})
	if err != nil {
		t.Fatalf("save: %v", err)
	}

	snap, err = repo.Latest(ctx)
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if snap == nil {
		t.Fatal("expected non-nil snapshot")
	}
	if snap.Sequence != 42 {
		t.Errorf("sequence = %d, want 42", snap.Sequence)
	}
	if string(snap.Data) != `{"study_streak":3}` {
		t.Errorf("data = %s, want the saved document", snap.Data)
	}
	if !snap.Timestamp.Equal(now) {
		t.Errorf("timestamp = %v, want %v", snap.Timestamp, now)
	}
}

func TestSnapshotSaveAssignsSequence(t *testing.T) {
	s := openTestStore(t)
	repo := s.SnapshotRepo()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		snap := &Snapshot{Data: []byte("{}")}
		if err := repo.Save(ctx, snap); err != nil {
			t.Fatalf("save %d: %v", i, err)
		}
		if snap.Sequence != int64(i+1) {
			t.Errorf("save %d: sequence = %d, want %d", i, snap.Sequence, i+1)
		}
		if snap.ID == 0 {
			t.Errorf("save %d: expected ID to be set", i)
		}
	}
}

func TestSnapshotLatestReturnsNewest(t *testing.T) {
	s := openTestStore(t)
	repo := s.SnapshotRepo()
	ctx := context.Background()

	base := time.Now().UTC().Truncate(time.Second)
	for i := 0; i < 3; i++ {
		err := repo.Save(ctx, &Snapshot{
			Sequence:  int64(i + 1),
			Timestamp: base.Add(time.Duration(i) * time.Minute),
			Data:      []byte{byte('a' + i)},
		})
		if err != nil {
			t.Fatalf("save %d: %v", i, err)
		}
	}

	snap, err := repo.Latest(ctx)
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if snap.Sequence != 3 {
		t.Errorf("sequence = %d, want 3", snap.Sequence)
	}
	if string(snap.Data) != "c" {
		t.Errorf("data = %q, want %q", snap.Data, "c")
	}
}

func TestSnapshotPrune(t *testing.T) {
	s := openTestStore(t)
	repo := s.SnapshotRepo()
	ctx := context.Background()

	for i := 0; i < 7; i++ {
		if err := repo.Save(ctx, &Snapshot{Data: []byte("{}")}); err != nil {
			t.Fatalf("save %d: %v", i, err)
		}
	}

	if err := repo.Prune(ctx, 5); err != nil {
		t.Fatalf("prune: %v", err)
	}
	if got := countSnapshots(t, s); got != 5 {
		t.Errorf("remaining snapshots = %d, want 5", got)
	}

	// Latest should still be sequence 7.
	snap, err := repo.Latest(ctx)
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if snap.Sequence != 7 {
		t.Errorf("latest sequence = %d, want 7", snap.Sequence)
	}
}

func TestSnapshotPruneWithFewerThanKeep(t *testing.T) {
	s := openTestStore(t)
	repo := s.SnapshotRepo()
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if err := repo.Save(ctx, &Snapshot{Data: []byte("{}")}); err != nil {
			t.Fatalf("save %d: %v", i, err)
		}
	}

	// Prune with keep=5 should be a no-op.
	if err := repo.Prune(ctx, 5); err != nil {
		t.Fatalf("prune: %v", err)
	}
	if got := countSnapshots(t, s); got != 2 {
		t.Errorf("remaining snapshots = %d, want 2", got)
	}
}

func TestSequenceCounter(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	sc, err := newSnapshotSequence(s.DB())
	if err != nil {
		t.Fatalf("new snapshot sequence: %v", err)
	}

	for i := 0; i < 5; i++ {
		seq, err := sc.Next(ctx)
		if err != nil {
			t.Fatalf("next %d: %v", i, err)
		}
		if seq != int64(i+1) {
			t.Errorf("seq[%d] = %d, want %d", i, seq, i+1)
		}
	}
}

func TestSnapshotLatestOrdersBySequence(t *testing.T) {
	s := openTestStore(t)
	repo := s.SnapshotRepo()
	ctx := context.Background()

	// Saved newest first: insertion order and sequence order disagree.
	for _, seq := range []int64{10, 5} {
		data := []byte(fmt.Sprintf(`{"seq":%d}`, seq))
		if err := repo.Save(ctx, &Snapshot{Sequence: seq, Data: data}); err != nil {
			t.Fatalf("save %d: %v", seq, err)
		}
	}

	snap, err := repo.Latest(ctx)
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if snap.Sequence != 10 {
		t.Errorf("latest sequence = %d, want 10", snap.Sequence)
	}

	// An unsequenced save ranks after every explicit one.
	next := &Snapshot{Data: []byte("{}")}
	if err := repo.Save(ctx, next); err != nil {
		t.Fatalf("save: %v", err)
	}
	if next.Sequence != 11 {
		t.Errorf("assigned sequence = %d, want 11", next.Sequence)
	}
}

func TestSnapshotPruneKeepsHighestSequences(t *testing.T) {
	s := openTestStore(t)
	repo := s.SnapshotRepo()
	ctx := context.Background()

	for _, seq := range []int64{30, 10, 20} {
		if err := repo.Save(ctx, &Snapshot{Sequence: seq, Data: []byte("{}")}); err != nil {
			t.Fatalf("save %d: %v", seq, err)
		}
	}
	if err := repo.Prune(ctx, 2); err != nil {
		t.Fatalf("prune: %v", err)
	}

	rows, err := s.DB().Query("SELECT sequence FROM snapshots ORDER BY sequence")
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	defer rows.Close()
	var got []int64
	for rows.Next() {
		var seq int64
		if err := rows.Scan(&seq); err != nil {
			t.Fatalf("scan: %v", err)
		}
		got = append(got, seq)
	}
	if len(got) != 2 || got[0] != 20 || got[1] != 30 {
		t.Errorf("remaining sequences = %v, want [20 30]", got)
	}
}

func TestSnapshotSequenceSeededFromExistingRows(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if _, err := s.DB().Exec("DROP TABLE snapshot_sequence"); err != nil {
		t.Fatalf("drop: %v", err)
	}
	if _, err := s.DB().Exec("INSERT INTO snapshots (sequence, timestamp, data) VALUES (7, ?, '{}')", time.Now().UTC()); err != nil {
		t.Fatalf("insert: %v", err)
	}

	sc, err := newSnapshotSequence(s.DB())
	if err != nil {
		t.Fatalf("new snapshot sequence: %v", err)
	}
	seq, err := sc.Next(ctx)
	if err != nil {
		t.Fatalf("next: %v", err)
	}
	if seq != 8 {
		t.Errorf("next = %d, want 8", seq)
	}
}

func TestAutoMigrationCreatesTable(t *testing.T) {
	s := openTestStore(t)

	var name string
	err := s.DB().QueryRow(
		"SELECT name FROM sqlite_master WHERE type='table' AND name='snapshots'",
	).Scan(&name)
	if err != nil {
		t.Fatalf("query sqlite_master: %v", err)
	}
	if name != "snapshots" {
		t.Errorf("table name = %q, want 'snapshots'", name)
	}
}

func TestReopenKeepsSnapshots(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reopen.db")
	ctx := context.Background()

	s, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := s.SnapshotRepo().Save(ctx, &Snapshot{Data: []byte(`{"a":1}`)}); err != nil {
		t.Fatalf("save: %v", err)
	}
	s.Close()

	s, err = Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()

	snap, err := s.SnapshotRepo().Latest(ctx)
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if snap == nil || string(snap.Data) != `{"a":1}` {
		t.Fatalf("latest after reopen = %+v, want saved document", snap)
	}

	// The counter continues from where it left off.
	next := &Snapshot{Data: []byte("{}")}
	if err := s.SnapshotRepo().Save(ctx, next); err != nil {
		t.Fatalf("save after reopen: %v", err)
	}
	if next.Sequence != 2 {
		t.Errorf("sequence after reopen = %d, want 2", next.Sequence)
	}
}

func TestDefaultDataPath(t *testing.T) {
	t.Run("env override", func(t *testing.T) {
		p := filepath.Join(t.TempDir(), "nested", "progress.json")
		t.Setenv(DataPathEnv, p)

		got, err := DefaultDataPath("progress.json")
		if err != nil {
			t.Fatalf("DefaultDataPath: %v", err)
		}
		if got != p {
			t.Errorf("path = %q, want %q", got, p)
		}
		if _, err := os.Stat(filepath.Dir(p)); err != nil {
			t.Errorf("parent dir not created: %v", err)
		}
	})

	t.Run("xdg data home", func(t *testing.T) {
		home := t.TempDir()
		t.Setenv(DataPathEnv, "")
		t.Setenv("XDG_DATA_HOME", home)

		got, err := DefaultDataPath("progress.json")
		if err != nil {
			t.Fatalf("DefaultDataPath: %v", err)
		}
		want := filepath.Join(home, "studytrack", "progress.json")
		if got != want {
			t.Errorf("path = %q, want %q", got, want)
		}
	})
}
