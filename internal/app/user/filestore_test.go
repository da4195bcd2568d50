package user

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *FileStore {
	t.Helper()

	s := NewFileStore(filepath.Join(t.TempDir(), "users.json"))
	require.NoError(t, s.Load())
	return s
}

func TestFileStoreCreateAndGet(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	u := New("alice", "secret1")
	require.NoError(t, s.Create(ctx, u))

	got, err := s.Get(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Name)
	assert.Equal(t, "secret1", got.Pass)

	_, err = s.Get(ctx, "nobody")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFileStoreCreateDuplicate(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	require.NoError(t, s.Create(ctx, New("alice", "secret1")))

	err := s.Create(ctx, New("alice", "anything"))
	assert.ErrorIs(t, err, ErrAlreadyExists)

	// the original record is untouched
	got, err := s.Get(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "secret1", got.Pass)
}

func TestFileStoreConcurrentCreateSameName(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	const attempts = 16
	results := make(chan error, attempts)

	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- s.Create(ctx, New("alice", "secret1"))
		}()
	}
	wg.Wait()
	close(results)

	var succeeded, rejected int
	for err := range results {
		switch {
		case err == nil:
			succeeded++
		default:
			assert.ErrorIs(t, err, ErrAlreadyExists)
			rejected++
		}
	}

	assert.Equal(t, 1, succeeded)
	assert.Equal(t, attempts-1, rejected)
}

func TestFileStoreUpdatePartial(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	require.NoError(t, s.Create(ctx, New("alice", "secret1")))

	balance := 5.0
	require.NoError(t, s.Update(ctx, "alice", Update{Balance: &balance}))

	nick := "Allie"
	require.NoError(t, s.Update(ctx, "alice", Update{Nick: &nick}))

	got, err := s.Get(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 5.0, got.Balance, "balance write must survive the nick update")
	assert.Equal(t, "Allie", got.Nick)
	assert.Equal(t, "secret1", got.Pass, "untouched fields stay untouched")
}

func TestFileStoreUpdateDisjointFieldsConcurrently(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	require.NoError(t, s.Create(ctx, New("alice", "secret1")))

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		balance := 5.0
		assert.NoError(t, s.Update(ctx, "alice", Update{Balance: &balance}))
	}()
	go func() {
		defer wg.Done()
		avatar := "/avatars/alice.png"
		assert.NoError(t, s.Update(ctx, "alice", Update{Avatar: &avatar}))
	}()

	wg.Wait()

	got, err := s.Get(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 5.0, got.Balance)
	assert.Equal(t, "/avatars/alice.png", got.Avatar)
}

func TestFileStoreUpdateUnknownUser(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	balance := 1.0
	err := s.Update(ctx, "ghost", Update{Balance: &balance})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFileStoreNickTruncatedOnWrite(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	require.NoError(t, s.Create(ctx, New("alice", "secret1")))

	long := make([]byte, 0, 80)
	for i := 0; i < 80; i++ {
		long = append(long, 'n')
	}
	nick := string(long)
	require.NoError(t, s.Update(ctx, "alice", Update{Nick: &nick}))

	got, err := s.Get(ctx, "alice")
	require.NoError(t, err)
	assert.Len(t, got.Nick, MaxNickLen)
}

func TestFileStoreListSnapshotIsolation(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	require.NoError(t, s.Create(ctx, New("alice", "secret1")))

	snapshot, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, snapshot, 1)

	balance := 42.0
	require.NoError(t, s.Update(ctx, "alice", Update{Balance: &balance}))

	assert.Equal(t, float64(0), snapshot[0].Balance, "snapshot must not see later writes")
}

func TestFileStoreListOrdering(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	// identical timestamps fall back to name order
	base := New("mallory", "pw")
	for _, name := range []string{"mallory", "alice", "bob"} {
		u := base
		u.Name = name
		u.Nick = name
		require.NoError(t, s.Create(ctx, u))
	}

	list, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "alice", list[0].Name)
	assert.Equal(t, "bob", list[1].Name)
	assert.Equal(t, "mallory", list[2].Name)
}

func TestFileStorePersistsAcrossReload(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "users.json")

	s := NewFileStore(path)
	require.NoError(t, s.Load())
	require.NoError(t, s.Create(ctx, New("alice", "secret1")))

	balance := 7.5
	require.NoError(t, s.Update(ctx, "alice", Update{Balance: &balance}))

	reloaded := NewFileStore(path)
	require.NoError(t, reloaded.Load())

	got, err := reloaded.Get(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 7.5, got.Balance)
	assert.Equal(t, "secret1", got.Pass)
}

func TestFileStoreCreateRollsBackOnPersistFailure(t *testing.T) {
	ctx := context.Background()

	// pointing the store at a directory makes the rename fail
	dir := t.TempDir()
	s := NewFileStore(dir)

	err := s.Create(ctx, New("alice", "secret1"))
	require.Error(t, err)

	_, err = s.Get(ctx, "alice")
	assert.ErrorIs(t, err, ErrNotFound, "failed persist must not leave the user behind")
}
