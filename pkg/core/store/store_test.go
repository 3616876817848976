package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"strategic_finance/pkg/core/projection"
	"strategic_finance/pkg/models"
)

func sampleModel(t *testing.T, query string) *models.FinancialModel {
	t.Helper()
	m := models.NewFinancialModel(query)
	m.TimeHorizonMonths = 3
	m.Assumptions = models.Assumptions{projection.KeyInitialSalesPeople: 2}
	m.ResolverSource = models.SourceFallback
	projections, err := projection.ComputeProjections(3, m.Assumptions, nil)
	require.NoError(t, err)
	m.MonthlyProjections = projections
	return m
}

func TestMemoryStore_PutGet(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	m := sampleModel(t, "12 month forecast")

	require.NoError(t, s.Put(ctx, m))

	got, err := s.Get(ctx, m.ModelID)
	require.NoError(t, err)
	assert.Same(t, m, got)

	n, err := s.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestMemoryStore_NotFound(t *testing.T) {
	_, err := NewMemoryStore().Get(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrModelNotFound))
}

func TestMemoryStore_RejectsEmptyID(t *testing.T) {
	err := NewMemoryStore().Put(context.Background(), &models.FinancialModel{})
	require.Error(t, err)
}

func TestMemoryStore_ConcurrentWriters(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	const writers = 64
	ids := make(chan string, writers)
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			m := models.NewFinancialModel(fmt.Sprintf("query %d", i))
			assert.NoError(t, s.Put(ctx, m))
			ids <- m.ModelID
		}(i)
	}
	wg.Wait()
	close(ids)

	n, err := s.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, writers, n)
	for id := range ids {
		_, err := s.Get(ctx, id)
		assert.NoError(t, err)
	}
}

func TestMemoryStore_Close(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	require.NoError(t, s.Put(ctx, sampleModel(t, "q")))
	require.NoError(t, s.Close())

	n, err := s.Len(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func newTestRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	s := NewRedisStore(client)
	t.Cleanup(func() { _ = s.Close() })
	return s, mr
}

func TestRedisStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s, mr := newTestRedisStore(t)
	m := sampleModel(t, "hire 3 salespeople over 6 months")

	require.NoError(t, s.Put(ctx, m))

	got, err := s.Get(ctx, m.ModelID)
	require.NoError(t, err)
	assert.Equal(t, m.ModelID, got.ModelID)
	assert.Equal(t, m.Query, got.Query)
	assert.Equal(t, m.MonthlyProjections, got.MonthlyProjections)
	assert.True(t, m.CreatedAt.Equal(got.CreatedAt))

	assert.True(t, mr.Exists(redisKeyPrefix+m.ModelID))
	assert.Zero(t, mr.TTL(redisKeyPrefix+m.ModelID), "models never expire")

	n, err := s.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestRedisStore_NotFound(t *testing.T) {
	s, _ := newTestRedisStore(t)
	_, err := s.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrModelNotFound)
}

func TestDialRedis_Unreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := DialRedis(context.Background(), addr, "", 0)
	require.Error(t, err)
}

type recordingExec struct {
	sql  []string
	args [][]any
	err  error
}

func (r *recordingExec) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	r.sql = append(r.sql, sql)
	r.args = append(r.args, args)
	return pgconn.NewCommandTag("INSERT 0 1"), r.err
}

func TestRunArchive_Record(t *testing.T) {
	db := &recordingExec{}
	archive := NewRunArchive(db)
	m := sampleModel(t, "forecast")

	require.NoError(t, archive.Record(context.Background(), m))

	require.Len(t, db.args, 1)
	args := db.args[0]
	assert.Contains(t, db.sql[0], "INSERT INTO model_runs")
	assert.Equal(t, m.ModelID, args[0])
	assert.Equal(t, "forecast", args[1])
	assert.Equal(t, 3, args[2])
	assert.Equal(t, "fallback", args[3])
	assert.Equal(t, m.MonthlyProjections[2].TotalRevenue, args[4])
	assert.JSONEq(t, `{"initial_sales_people":2}`, string(args[5].([]byte)))
}

func TestRunArchive_EnsureSchemaAndErrors(t *testing.T) {
	db := &recordingExec{}
	archive := NewRunArchive(db)
	require.NoError(t, archive.EnsureSchema(context.Background()))
	assert.Contains(t, db.sql[0], "CREATE TABLE IF NOT EXISTS model_runs")

	db.err = errors.New("connection reset")
	err := archive.Record(context.Background(), sampleModel(t, "q"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
}
