package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
)

// snapshotRepo implements SnapshotRepo on the snapshots table.
type snapshotRepo struct {
	drv *entsql.Driver
	seq *snapshotSequence
}

func (r *snapshotRepo) Save(ctx context.Context, snap *Snapshot) error {
	if snap.Sequence == 0 {
		seq, err := r.seq.Next(ctx)
		if err != nil {
			return err
		}
		snap.Sequence = seq
	} else if err := r.seq.Observe(ctx, snap.Sequence); err != nil {
		return err
	}
	if snap.Timestamp.IsZero() {
		snap.Timestamp = time.Now().UTC()
	}

	query, args := entsql.Dialect(dialect.SQLite).
		Insert(snapshotsTableName).
		Columns("sequence", "timestamp", "data").
		Values(snap.Sequence, snap.Timestamp, string(snap.Data)).
		Query()

	var res sql.Result
	if err := r.drv.Exec(ctx, query, args, &res); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	if id, err := res.LastInsertId(); err == nil {
		snap.ID = int(id)
	}
	return nil
}

func (r *snapshotRepo) Latest(ctx context.Context) (*Snapshot, error) {
	b := entsql.Dialect(dialect.SQLite)
	t := b.Table(snapshotsTableName)
	query, args := b.Select(t.C("id"), t.C("sequence"), t.C("timestamp"), t.C("data")).
		From(t).
		OrderBy(entsql.Desc(t.C("sequence")), entsql.Desc(t.C("id"))).
		Limit(1).
		Query()

	var rows entsql.Rows
	if err := r.drv.Query(ctx, query, args, &rows); err != nil {
		return nil, fmt.Errorf("query latest snapshot: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("query latest snapshot: %w", err)
		}
		return nil, nil
	}

	var (
		s    Snapshot
		data string
	)
	if err := rows.Scan(&s.ID, &s.Sequence, &s.Timestamp, &data); err != nil {
		return nil, fmt.Errorf("scan snapshot: %w", err)
	}
	s.Data = []byte(data)
	return &s, nil
}

func (r *snapshotRepo) Prune(ctx context.Context, keep int) error {
	if keep < 0 {
		keep = 0
	}

	// The (keep+1)th newest row by (sequence, id) and everything ranked
	// below it are deleted.
	b := entsql.Dialect(dialect.SQLite)
	t := b.Table(snapshotsTableName)
	query, args := b.Select(t.C("sequence"), t.C("id")).
		From(t).
		OrderBy(entsql.Desc(t.C("sequence")), entsql.Desc(t.C("id"))).
		Limit(1).
		Offset(keep).
		Query()

	var rows entsql.Rows
	if err := r.drv.Query(ctx, query, args, &rows); err != nil {
		return fmt.Errorf("query snapshots for prune: %w", err)
	}
	var (
		seq int64
		id  int
	)
	found := rows.Next()
	if found {
		if err := rows.Scan(&seq, &id); err != nil {
			rows.Close()
			return fmt.Errorf("scan prune threshold: %w", err)
		}
	}
	rows.Close()
	if !found {
		return nil // fewer than keep snapshots exist
	}

	query, args = b.Delete(snapshotsTableName).
		Where(entsql.Or(
			entsql.LT("sequence", seq),
			entsql.And(entsql.EQ("sequence", seq), entsql.LTE("id", id)),
		)).
		Query()
	if err := r.drv.Exec(ctx, query, args, nil); err != nil {
		return fmt.Errorf("prune snapshots: %w", err)
	}
	return nil
}
