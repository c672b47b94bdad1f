package store

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
)

// snapshotSequence orders snapshots. Latest and Prune rank rows by
// sequence, so a snapshot saved with an explicit sequence (an import of an
// older document, say) lands in its place in history instead of becoming
// the newest row by insertion order.
type snapshotSequence struct {
	mu sync.Mutex
	db *sql.DB
}

// newSnapshotSequence creates the counter row, seeded past any sequence
// already stored in the snapshots table.
func newSnapshotSequence(db *sql.DB) (*snapshotSequence, error) {
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS snapshot_sequence (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		next_val INTEGER NOT NULL
	)`); err != nil {
		return nil, fmt.Errorf("create snapshot sequence: %w", err)
	}
	if _, err := db.Exec(`INSERT OR IGNORE INTO snapshot_sequence (id, next_val)
		SELECT 1, COALESCE(MAX(sequence), 0) + 1 FROM ` + snapshotsTableName); err != nil {
		return nil, fmt.Errorf("seed snapshot sequence: %w", err)
	}
	return &snapshotSequence{db: db}, nil
}

// Next returns the next unused sequence number.
func (s *snapshotSequence) Next(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var seq int64
	err := s.db.QueryRowContext(ctx,
		`UPDATE snapshot_sequence SET next_val = next_val + 1 WHERE id = 1 RETURNING next_val - 1`,
	).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("next snapshot sequence: %w", err)
	}
	return seq, nil
}

// Observe moves the counter past seq, so snapshots saved later without an
// explicit sequence still rank after it.
func (s *snapshotSequence) Observe(ctx context.Context, seq int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.ExecContext(ctx,
		`UPDATE snapshot_sequence SET next_val = MAX(next_val, ?) WHERE id = 1`, seq+1,
	); err != nil {
		return fmt.Errorf("advance snapshot sequence: %w", err)
	}
	return nil
}
