package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileRepo_LatestMissingFile(t *testing.T) {
	repo := NewFileRepo(filepath.Join(t.TempDir(), "progress.json"))

	snap, err := repo.Latest(context.Background())
	require.NoError(t, err)
	assert.Nil(t, snap)
}

func TestFileRepo_SaveThenLatest(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "progress.json")
	repo := NewFileRepo(path)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, &Snapshot{Data: []byte(`{"sessions":[]}`)}))

	snap, err := repo.Latest(ctx)
	require.NoError(t, err)
	require.NotNil(t, snap)
	assert.Equal(t, `{"sessions":[]}`, string(snap.Data))
	assert.False(t, snap.Timestamp.IsZero())
}

func TestFileRepo_SaveOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "progress.json")
	repo := NewFileRepo(path)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, &Snapshot{Data: []byte("first, longer content")}))
	require.NoError(t, repo.Save(ctx, &Snapshot{Data: []byte("second")}))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "second", string(raw))

	// No temp files are left behind.
	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestFileRepo_SaveFailsWhenPathIsDirectory(t *testing.T) {
	dir := t.TempDir()
	repo := NewFileRepo(dir)

	err := repo.Save(context.Background(), &Snapshot{Data: []byte("{}")})
	assert.Error(t, err)
}

func TestFileRepo_PruneIsNoop(t *testing.T) {
	path := filepath.Join(t.TempDir(), "progress.json")
	repo := NewFileRepo(path)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, &Snapshot{Data: []byte("{}")}))
	require.NoError(t, repo.Prune(ctx, 0))

	snap, err := repo.Latest(ctx)
	require.NoError(t, err)
	assert.NotNil(t, snap)
}
