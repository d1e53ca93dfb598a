package summary

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"attendance-tracker/internal/attendance"
	"attendance-tracker/internal/model"
	"attendance-tracker/internal/queue"
	"attendance-tracker/internal/stats"
)

type fakeHistory struct {
	rows  map[int64][]model.HistoryRow
	calls int
	err   error
}

func (f *fakeHistory) History(_ context.Context, id int64, _ attendance.HistoryFilter) ([]model.HistoryRow, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.rows[id], nil
}

func row(status model.Status) model.HistoryRow {
	return model.HistoryRow{Date: model.NewDate(2024, time.January, 1), PeriodNo: 1, Status: status}
}

type brokenCache struct{}

func (brokenCache) Get(context.Context, string) (stats.Summary, bool, error) {
	return stats.Summary{}, false, errors.New("cache down")
}
func (brokenCache) Set(context.Context, string, stats.Summary, time.Duration) error {
	return errors.New("cache down")
}
func (brokenCache) Delete(context.Context, ...string) error { return errors.New("cache down") }

func TestGetCachesSummary(t *testing.T) {
	ctx := context.Background()
	src := &fakeHistory{rows: map[int64][]model.HistoryRow{
		7: {row(model.StatusPresent), row(model.StatusPresent), row(model.StatusAbsent)},
	}}
	svc := NewService(src, NewMemoryCache(), time.Minute)

	first, err := svc.Get(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, stats.Summary{Present: 2, Absent: 1, Total: 3, Percentage: 67}, first)

	second, err := svc.Get(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, src.calls)
}

func TestInvalidateForcesRecompute(t *testing.T) {
	ctx := context.Background()
	src := &fakeHistory{rows: map[int64][]model.HistoryRow{7: {row(model.StatusAbsent)}}}
	svc := NewService(src, NewMemoryCache(), time.Minute)

	_, err := svc.Get(ctx, 7)
	require.NoError(t, err)

	src.rows[7] = append(src.rows[7], row(model.StatusPresent))
	require.NoError(t, svc.Invalidate(ctx, 7, 8))

	got, err := svc.Get(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, 50, got.Percentage)
	assert.Equal(t, 2, src.calls)
}

func TestMemoryCacheExpires(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)
	cache := NewMemoryCache()
	cache.now = func() time.Time { return now }

	require.NoError(t, cache.Set(ctx, "k", stats.Summary{Total: 1}, time.Minute))
	_, ok, err := cache.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)

	now = now.Add(time.Minute)
	_, ok, err = cache.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestGetSurvivesBrokenCache(t *testing.T) {
	src := &fakeHistory{rows: map[int64][]model.HistoryRow{1: {row(model.StatusPresent)}}}
	svc := NewService(src, brokenCache{}, time.Minute)

	got, err := svc.Get(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 100, got.Percentage)
}

func TestGetPropagatesLedgerError(t *testing.T) {
	src := &fakeHistory{err: model.ErrStorage}
	svc := NewService(src, NewMemoryCache(), time.Minute)

	_, err := svc.Get(context.Background(), 1)
	assert.ErrorIs(t, err, model.ErrStorage)
}

func TestGetUnknownStudentIsNotCached(t *testing.T) {
	ctx := context.Background()
	src := &fakeHistory{err: model.NotFoundf("student 7")}
	cache := NewMemoryCache()
	svc := NewService(src, cache, time.Minute)

	_, err := svc.Get(ctx, 7)
	assert.ErrorIs(t, err, model.ErrNotFound)

	_, ok, err := cache.Get(ctx, Key(7))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHandleMessageRewarms(t *testing.T) {
	ctx := context.Background()
	src := &fakeHistory{rows: map[int64][]model.HistoryRow{
		1: {row(model.StatusPresent)},
		2: {row(model.StatusAbsent)},
	}}
	cache := NewMemoryCache()
	svc := NewService(src, cache, time.Minute)

	msg, err := queue.NewSheetSaved(queue.SheetSaved{ClassID: 1, Students: []int64{1, 2}})
	require.NoError(t, err)
	require.NoError(t, svc.HandleMessage(ctx, msg))

	got, ok, err := cache.Get(ctx, Key(2))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 1, got.Absent)
	assert.Equal(t, 2, src.calls)

	require.NoError(t, svc.HandleMessage(ctx, queue.Message{Type: "other"}))
	assert.Equal(t, 2, src.calls)

	assert.Error(t, svc.HandleMessage(ctx, queue.Message{Type: queue.TypeSheetSaved, Body: []byte("[")}))
}

func TestKey(t *testing.T) {
	assert.Equal(t, "attendance:summary:42", Key(42))
}

func TestRunDrainsQueue(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	src := &fakeHistory{rows: map[int64][]model.HistoryRow{4: {row(model.StatusPresent)}}}
	cache := NewMemoryCache()
	svc := NewService(src, cache, time.Minute)

	q := queue.NewInMemory(4)
	bad := queue.Message{Type: queue.TypeSheetSaved, Body: []byte("[")}
	require.NoError(t, q.Publish(ctx, bad))
	msg, err := queue.NewSheetSaved(queue.SheetSaved{Students: []int64{4}})
	require.NoError(t, err)
	require.NoError(t, q.Publish(ctx, msg))

	done := make(chan error, 1)
	go func() { done <- svc.Run(ctx, q) }()

	require.Eventually(t, func() bool {
		_, ok, _ := cache.Get(ctx, Key(4))
		return ok
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not stop")
	}
}
