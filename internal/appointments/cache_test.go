package appointments

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCachedStore(t *testing.T) (*CachedStore, *MemoryStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	backing := seededStore()
	return NewCachedStore(backing, client, time.Minute, zerolog.Nop()), backing, mr
}

func TestCachedStoreReadThrough(t *testing.T) {
	cached, backing, mr := newCachedStore(t)
	ctx := context.Background()

	first, err := cached.ListByDoctor(ctx, "1")
	require.NoError(t, err)
	assert.True(t, mr.Exists(doctorKeyPrefix+"1"))

	second, err := cached.ListByDoctor(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, backing.Calls(OpListByDoctor), "the second read must be served by the cache")

	mr.FastForward(2 * time.Minute)
	_, err = cached.ListByDoctor(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, 2, backing.Calls(OpListByDoctor), "expired entries must be reloaded")
}

func TestCachedStoreEvictsOnWrites(t *testing.T) {
	cached, _, mr := newCachedStore(t)
	ctx := context.Background()

	_, err := cached.ListByDoctor(ctx, "1")
	require.NoError(t, err)
	_, err = cached.ListByPatient(ctx, "1")
	require.NoError(t, err)

	require.NoError(t, cached.UpdateStatus(ctx, "1", StatusConfirmed))
	assert.False(t, mr.Exists(doctorKeyPrefix+"1"))
	assert.False(t, mr.Exists(patientKeyPrefix+"1"))

	list, err := cached.ListByDoctor(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, StatusConfirmed, list[0].Status)

	got, err := cached.Get(ctx, "1")
	require.NoError(t, err)
	got.Time = "11:00"
	require.NoError(t, cached.Update(ctx, *got))
	assert.False(t, mr.Exists(doctorKeyPrefix+"1"))

	_, err = cached.ListByDoctor(ctx, "1")
	require.NoError(t, err)
	created, err := cached.Create(ctx, Appointment{DoctorID: "1", PatientID: "7", Date: "2099-01-25", Time: "15:00"})
	require.NoError(t, err)
	assert.False(t, mr.Exists(doctorKeyPrefix+"1"))

	_, err = cached.ListByDoctor(ctx, "1")
	require.NoError(t, err)
	require.NoError(t, cached.Delete(ctx, created.ID))
	assert.False(t, mr.Exists(doctorKeyPrefix+"1"))
}

func TestCachedStoreSurvivesRedisOutage(t *testing.T) {
	cached, backing, mr := newCachedStore(t)
	ctx := context.Background()
	mr.Close()

	list, err := cached.ListByDoctor(ctx, "1")
	require.NoError(t, err)
	assert.Len(t, list, 3)
	assert.NoError(t, cached.UpdateStatus(ctx, "1", StatusConfirmed))
	assert.Equal(t, 1, backing.Calls(OpUpdateStatus))
}

func TestCachedStoreDoesNotCacheFailures(t *testing.T) {
	cached, backing, mr := newCachedStore(t)
	backing.SetFailure(OpListByPatient, assert.AnError)

	_, err := cached.ListByPatient(context.Background(), "1")
	assert.ErrorIs(t, err, assert.AnError)
	assert.False(t, mr.Exists(patientKeyPrefix+"1"))
}

// racingStore runs during once, after a list is loaded and before it is returned.
type racingStore struct {
	*MemoryStore
	during func()
}

func (r *racingStore) ListByDoctor(ctx context.Context, doctorID string) ([]Appointment, error) {
	list, err := r.MemoryStore.ListByDoctor(ctx, doctorID)
	if during := r.during; during != nil {
		r.during = nil
		during()
	}
	return list, err
}

func TestCachedStoreSkipsListsLoadedBeforeAWrite(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	racing := &racingStore{MemoryStore: seededStore()}
	cached := NewCachedStore(racing, client, time.Minute, zerolog.Nop())
	ctx := context.Background()

	racing.during = func() {
		require.NoError(t, cached.UpdateStatus(ctx, "1", StatusConfirmed))
	}
	stale, err := cached.ListByDoctor(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, StatusPending, stale[0].Status)
	assert.False(t, mr.Exists(doctorKeyPrefix+"1"), "a list loaded before a write must not be cached")

	fresh, err := cached.ListByDoctor(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, StatusConfirmed, fresh[0].Status)
	assert.True(t, mr.Exists(doctorKeyPrefix+"1"))
}
