package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chosen1st/sqoop/errors"
	"github.com/chosen1st/sqoop/model"
)

func newJob(name string) model.Job {
	return model.NewJob(name,
		model.NewJobConfig(model.DirectionFrom, "fromLinkName", "from_ahoj",
			model.NewConfig("fromJobConfig", model.NewStringInput("fromJobConfig.table", false, nil))),
		model.NewJobConfig(model.DirectionTo, "toLinkName", "to_ahoj",
			model.NewConfig("toJobConfig", model.NewStringInput("toJobConfig.path", false, nil))),
	)
}

func fixedClock(ms int64) func() time.Time {
	return func() time.Time { return time.UnixMilli(ms) }
}

func connectedStore(t *testing.T, options Options) *MemoryStore {
	t.Helper()
	s := NewStore(options)
	require.NoError(t, s.Connect(context.Background()))
	return s
}

func TestNewStore(t *testing.T) {
	options := Options{FirstID: 100}
	s := NewStore(options)

	require.NotNil(t, s)
	assert.Equal(t, int64(100), s.nextID)
	assert.NotNil(t, s.jobs)
	assert.False(t, s.connected)
	assert.NotNil(t, s.options.Clock)
	assert.Equal(t, "memory", s.Type())
}

func TestMemoryStore_Connect(t *testing.T) {
	s := NewStore(DefaultOptions())
	ctx := context.Background()

	assert.ErrorIs(t, s.Health(), errors.ErrNotConnected)

	require.NoError(t, s.Connect(ctx))
	assert.NoError(t, s.Health())

	require.NoError(t, s.Connect(ctx))
	assert.NoError(t, s.Health())

	require.NoError(t, s.Close())
	assert.ErrorIs(t, s.Health(), errors.ErrNotConnected)
}

func TestMemoryStore_NotConnected(t *testing.T) {
	s := NewStore(DefaultOptions())
	ctx := context.Background()

	_, err := s.Save(ctx, newJob("j"))
	assert.ErrorIs(t, err, errors.ErrNotConnected)
	_, err = s.Get(ctx, 1)
	assert.ErrorIs(t, err, errors.ErrNotConnected)
	_, err = s.List(ctx)
	assert.ErrorIs(t, err, errors.ErrNotConnected)
	assert.ErrorIs(t, s.Delete(ctx, 1), errors.ErrNotConnected)
}

func TestMemoryStore_SaveAssignsIDs(t *testing.T) {
	s := connectedStore(t, Options{FirstID: 1, Clock: fixedClock(5000)})
	ctx := context.Background()

	first, err := s.Save(ctx, newJob("first"))
	require.NoError(t, err)
	second, err := s.Save(ctx, newJob("second"))
	require.NoError(t, err)

	assert.Equal(t, int64(1), first.PersistenceID)
	assert.Equal(t, int64(2), second.PersistenceID)
	assert.Equal(t, time.UnixMilli(5000), first.CreationDate)
	assert.Equal(t, time.UnixMilli(5000), first.LastUpdateDate)

	explicit := newJob("explicit")
	explicit.PersistenceID = 22
	saved, err := s.Save(ctx, explicit)
	require.NoError(t, err)
	assert.Equal(t, int64(22), saved.PersistenceID)

	next, err := s.Save(ctx, newJob("after explicit"))
	require.NoError(t, err)
	assert.Equal(t, int64(23), next.PersistenceID)
}

func TestMemoryStore_UpdateKeepsCreationDate(t *testing.T) {
	now := int64(1000)
	s := connectedStore(t, Options{FirstID: 1, Clock: func() time.Time { return time.UnixMilli(now) }})
	ctx := context.Background()

	saved, err := s.Save(ctx, newJob("j"))
	require.NoError(t, err)

	now = 2000
	saved.Enabled = false
	updated, err := s.Save(ctx, saved)
	require.NoError(t, err)

	assert.Equal(t, saved.PersistenceID, updated.PersistenceID)
	assert.Equal(t, time.UnixMilli(1000), updated.CreationDate)
	assert.Equal(t, time.UnixMilli(2000), updated.LastUpdateDate)

	got, err := s.Get(ctx, saved.PersistenceID)
	require.NoError(t, err)
	assert.Equal(t, updated, got)
	assert.False(t, got.Enabled)
}

func TestMemoryStore_SaveRejectsInvalidJobs(t *testing.T) {
	s := connectedStore(t, DefaultOptions())

	_, err := s.Save(context.Background(), newJob(""))
	assert.ErrorIs(t, err, errors.ErrEmptyName)
}

func TestMemoryStore_GetListDelete(t *testing.T) {
	s := connectedStore(t, DefaultOptions())
	ctx := context.Background()

	for _, name := range []string{"a", "b", "c"} {
		_, err := s.Save(ctx, newJob(name))
		require.NoError(t, err)
	}

	jobs, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, jobs, 3)
	assert.Equal(t, "a", jobs[0].Name)
	assert.Equal(t, "c", jobs[2].Name)

	require.NoError(t, s.Delete(ctx, 2))

	_, err = s.Get(ctx, 2)
	assert.ErrorIs(t, err, errors.ErrJobNotFound)
	var storeErr *errors.StoreError
	require.ErrorAs(t, err, &storeErr)
	assert.Equal(t, "job:2", storeErr.Key)

	assert.ErrorIs(t, s.Delete(ctx, 2), errors.ErrJobNotFound)

	jobs, err = s.List(ctx)
	require.NoError(t, err)
	assert.Len(t, jobs, 2)
}

func TestMemoryStore_ReturnsCopies(t *testing.T) {
	s := connectedStore(t, DefaultOptions())
	ctx := context.Background()

	saved, err := s.Save(ctx, newJob("j"))
	require.NoError(t, err)

	saved.From.Configs[0].Inputs[0].Value = "changed"
	got, err := s.Get(ctx, saved.PersistenceID)
	require.NoError(t, err)
	assert.Nil(t, got.From.Configs[0].Inputs[0].Value)
}

func TestMemoryStore_ContextCancelled(t *testing.T) {
	s := connectedStore(t, DefaultOptions())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Save(ctx, newJob("j"))
	assert.ErrorIs(t, err, context.Canceled)
}
