package store

import (
	"context"
	"time"
)

// Snapshot is one persisted copy of the progress document.
// Data holds the document exactly as it was encoded by its owner.
type Snapshot struct {
	ID        int
	Sequence  int64
	Timestamp time.Time
	Data      []byte
}

// SnapshotRepo persists progress document snapshots.
type SnapshotRepo interface {
	// Save stores a new snapshot.
	Save(ctx context.Context, snap *Snapshot) error

	// Latest returns the most recent snapshot, or nil if none exist.
	Latest(ctx context.Context) (*Snapshot, error)

	// Prune deletes all but the N most recent snapshots.
	Prune(ctx context.Context, keep int) error
}
