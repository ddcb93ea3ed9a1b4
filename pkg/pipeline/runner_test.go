package pipeline

import (
	"context"
	"io"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/stackhealth/pkg/cache"
	errs "github.com/matzehuels/stackhealth/pkg/errors"
	"github.com/matzehuels/stackhealth/pkg/health"
	"github.com/matzehuels/stackhealth/pkg/integrations"
	"github.com/matzehuels/stackhealth/pkg/store"
)

type fakeAnalyzer struct {
	calls   atomic.Int32
	refresh atomic.Bool
}

func (f *fakeAnalyzer) Applicable(id health.Identity) bool { return id.Type == "npm" }

func (f *fakeAnalyzer) Analyze(ctx context.Context, id health.Identity) health.Record {
	f.calls.Add(1)
	f.refresh.Store(integrations.Refresh(ctx))
	rec := health.NewRecord(id)
	if ctx.Err() != nil {
		return rec
	}
	rec.Stars = health.Ptr(int(f.calls.Load()))
	return rec
}

type memStore struct {
	mu      sync.Mutex
	entries map[string]store.Entry
}

func (m *memStore) Save(_ context.Context, e store.Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.entries == nil {
		m.entries = map[string]store.Entry{}
	}
	m.entries[e.Record.Identity().String()] = e
	return nil
}

func (m *memStore) Load(_ context.Context, id health.Identity) (store.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[id.String()]
	if !ok {
		return store.Entry{}, store.ErrNotFound
	}
	return e, nil
}

func (m *memStore) Close(context.Context) error { return nil }

var lodash = health.Identity{Type: "npm", Name: "lodash", Version: "4.17.21"}

func newTestRunner(t *testing.T) (*Runner, *fakeAnalyzer, *memStore) {
	t.Helper()
	c, err := cache.NewFileCache(t.TempDir())
	require.NoError(t, err)
	a := &fakeAnalyzer{}
	st := &memStore{}
	r := NewRunner(a, c, nil, st, log.New(io.Discard))
	t.Cleanup(func() { r.Close(context.Background()) })
	return r, a, st
}

func TestRunnerCachesRecords(t *testing.T) {
	r, a, _ := newTestRunner(t)
	ctx := context.Background()

	first, err := r.Analyze(ctx, lodash, Options{})
	require.NoError(t, err)
	assert.False(t, first.CacheHit)
	assert.Equal(t, 1, *first.Record.Stars)

	second, err := r.Analyze(ctx, lodash, Options{})
	require.NoError(t, err)
	assert.True(t, second.CacheHit)
	assert.Equal(t, 1, *second.Record.Stars)
	assert.Equal(t, lodash, second.Record.Identity())
	assert.True(t, first.AnalyzedAt.Equal(second.AnalyzedAt))
	assert.Equal(t, int32(1), a.calls.Load())
	assert.False(t, a.refresh.Load())
}

func TestRunnerRefresh(t *testing.T) {
	r, a, _ := newTestRunner(t)
	ctx := context.Background()

	_, err := r.Analyze(ctx, lodash, Options{})
	require.NoError(t, err)

	res, err := r.Analyze(ctx, lodash, Options{Refresh: true})
	require.NoError(t, err)
	assert.False(t, res.CacheHit)
	assert.Equal(t, 2, *res.Record.Stars)
	assert.True(t, a.refresh.Load())

	// The refreshed record replaced the cached one.
	res, err = r.Analyze(ctx, lodash, Options{})
	require.NoError(t, err)
	assert.True(t, res.CacheHit)
	assert.Equal(t, 2, *res.Record.Stars)
}

func TestRunnerInterruptedRunNotCached(t *testing.T) {
	r, a, st := newTestRunner(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := r.Analyze(ctx, lodash, Options{})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, st.entries)

	res, err := r.Analyze(context.Background(), lodash, Options{})
	require.NoError(t, err)
	assert.False(t, res.CacheHit)
	require.NotNil(t, res.Record.Stars)
	assert.Equal(t, int32(2), a.calls.Load())
}

func TestRunnerDeadlineIsTimeout(t *testing.T) {
	r, _, st := newTestRunner(t)

	ctx, cancel := context.WithTimeout(context.Background(), -time.Second)
	defer cancel()
	_, err := r.Analyze(ctx, lodash, Options{})
	assert.True(t, errs.Is(err, errs.ErrCodeTimeout))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Empty(t, st.entries)

	res, err := r.Analyze(context.Background(), lodash, Options{})
	require.NoError(t, err)
	assert.False(t, res.CacheHit)
}

func TestRunnerKeyOptsSeparateCacheEntries(t *testing.T) {
	r, a, _ := newTestRunner(t)
	ctx := context.Background()

	_, err := r.Analyze(ctx, lodash, Options{})
	require.NoError(t, err)

	r.KeyOpts = cache.RecordKeyOpts{GitHub: true, Providers: 4}
	res, err := r.Analyze(ctx, lodash, Options{})
	require.NoError(t, err)
	assert.False(t, res.CacheHit)
	assert.Equal(t, int32(2), a.calls.Load())
}

func TestRunnerUnsupportedType(t *testing.T) {
	r, a, _ := newTestRunner(t)

	_, err := r.Analyze(context.Background(), health.Identity{Type: "generic", Name: "x"}, Options{})
	assert.True(t, errs.Is(err, errs.ErrCodeUnsupportedType))
	assert.Zero(t, a.calls.Load())
}

func TestRunnerStoresAndLoadsLast(t *testing.T) {
	r, _, st := newTestRunner(t)
	ctx := context.Background()

	_, err := r.Last(ctx, lodash)
	assert.True(t, errs.Is(err, errs.ErrCodeNotFound))

	res, err := r.Analyze(ctx, lodash, Options{})
	require.NoError(t, err)
	assert.Len(t, st.entries, 1)

	last, err := r.Last(ctx, lodash)
	require.NoError(t, err)
	assert.Equal(t, *res.Record.Stars, *last.Record.Stars)
	assert.True(t, res.AnalyzedAt.Equal(last.AnalyzedAt))
}

func TestRunnerAnalyzeMany(t *testing.T) {
	r, _, _ := newTestRunner(t)
	ids := []health.Identity{
		lodash,
		{Type: "pypi", Name: "requests"},
		{Type: "npm", Name: "react"},
	}

	results, failures := r.AnalyzeMany(context.Background(), ids, Options{})
	require.Len(t, results, 3)

	assert.NoError(t, failures[0])
	assert.Equal(t, lodash, results[0].Record.Identity())
	assert.Nil(t, results[1])
	assert.True(t, errs.Is(failures[1], errs.ErrCodeUnsupportedType))
	assert.Equal(t, "react", results[2].Record.Identity().Name)
}

func TestRunnerAnalyzeManyReportsProgress(t *testing.T) {
	r, _, _ := newTestRunner(t)
	ids := []health.Identity{lodash, {Type: "pypi", Name: "requests"}}

	var mu sync.Mutex
	seen := map[string]error{}
	opts := Options{Progress: func(id health.Identity, err error) {
		mu.Lock()
		defer mu.Unlock()
		seen[id.Name] = err
	}}
	r.AnalyzeMany(context.Background(), ids, opts)

	require.Len(t, seen, 2)
	assert.NoError(t, seen["lodash"])
	assert.True(t, errs.Is(seen["requests"], errs.ErrCodeUnsupportedType))
}

func TestNewRunnerDefaults(t *testing.T) {
	r := NewRunner(&fakeAnalyzer{}, nil, nil, nil, nil)
	assert.Equal(t, cache.NullCache{}, r.Cache)
	assert.Equal(t, store.NullStore{}, r.Store)
	assert.NotNil(t, r.Keyer)
	assert.Equal(t, cache.TTLRecord, r.TTL)
}
