package repositories

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/konman95/mainst.ai/internal/models"
)

type fakeCache struct {
	values  map[string]string
	ttls    map[string]time.Duration
	readErr error
	deleted []string
}

func newFakeCache() *fakeCache {
	return &fakeCache{values: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (f *fakeCache) Get(_ context.Context, key string) *redis.StringCmd {
	if f.readErr != nil {
		return redis.NewStringResult("", f.readErr)
	}
	v, ok := f.values[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (f *fakeCache) Set(_ context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd {
	switch v := value.(type) {
	case []byte:
		f.values[key] = string(v)
	default:
		f.values[key] = fmt.Sprint(v)
	}
	f.ttls[key] = expiration
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeCache) Del(_ context.Context, keys ...string) *redis.IntCmd {
	for _, k := range keys {
		delete(f.values, k)
	}
	f.deleted = append(f.deleted, keys...)
	return redis.NewIntResult(int64(len(keys)), nil)
}

type countingSettings struct {
	stored  map[string]models.OwnerCoverSettings
	gets    int
	saveErr error
}

func (c *countingSettings) Get(_ context.Context, tenantID string) (*models.OwnerCoverSettings, error) {
	c.gets++
	s, ok := c.stored[tenantID]
	if !ok {
		return nil, fmt.Errorf("settings %s: %w", tenantID, ErrNotFound)
	}
	return &s, nil
}

func (c *countingSettings) Save(_ context.Context, tenantID string, s models.OwnerCoverSettings) error {
	if c.saveErr != nil {
		return c.saveErr
	}
	c.stored[tenantID] = s
	return nil
}

func autoMode() models.OwnerCoverSettings {
	s := models.DefaultOwnerCoverSettings()
	s.Mode = models.ModeAuto
	return s
}

func TestCachedSettingsRepo_ReadThrough(t *testing.T) {
	ctx := context.Background()
	cache := newFakeCache()
	next := &countingSettings{stored: map[string]models.OwnerCoverSettings{"tenant-1": autoMode()}}
	repo := NewCachedSettingsRepo(next, cache, time.Minute, zap.NewNop())

	first, err := repo.Get(ctx, "tenant-1")
	require.NoError(t, err)
	assert.Equal(t, models.ModeAuto, first.Mode)
	assert.Contains(t, cache.values, settingsKey("tenant-1"))
	assert.Equal(t, time.Minute, cache.ttls[settingsKey("tenant-1")])

	second, err := repo.Get(ctx, "tenant-1")
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, next.gets, "second read is served from the cache")
}

func TestCachedSettingsRepo_DiscardsCorruptEntry(t *testing.T) {
	ctx := context.Background()
	core, logs := observer.New(zapcore.WarnLevel)
	cache := newFakeCache()
	cache.values[settingsKey("tenant-1")] = "{not json"
	next := &countingSettings{stored: map[string]models.OwnerCoverSettings{"tenant-1": autoMode()}}
	repo := NewCachedSettingsRepo(next, cache, time.Minute, zap.New(core))

	s, err := repo.Get(ctx, "tenant-1")
	require.NoError(t, err)
	assert.Equal(t, models.ModeAuto, s.Mode)
	assert.Equal(t, 1, next.gets)
	assert.Equal(t, 1, logs.FilterMessage("discarding corrupt cached settings").Len())
	assert.NotEqual(t, "{not json", cache.values[settingsKey("tenant-1")], "the entry is rewritten")
}

func TestCachedSettingsRepo_FallsBackOnCacheError(t *testing.T) {
	ctx := context.Background()
	cache := newFakeCache()
	cache.readErr = errors.New("connection refused")
	next := &countingSettings{stored: map[string]models.OwnerCoverSettings{"tenant-1": autoMode()}}
	repo := NewCachedSettingsRepo(next, cache, time.Minute, zap.NewNop())

	s, err := repo.Get(ctx, "tenant-1")
	require.NoError(t, err)
	assert.Equal(t, models.ModeAuto, s.Mode)
}

func TestCachedSettingsRepo_MissingIsNotCached(t *testing.T) {
	ctx := context.Background()
	cache := newFakeCache()
	next := &countingSettings{stored: map[string]models.OwnerCoverSettings{}}
	repo := NewCachedSettingsRepo(next, cache, time.Minute, zap.NewNop())

	_, err := repo.Get(ctx, "tenant-1")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Empty(t, cache.values)
}

func TestCachedSettingsRepo_SaveInvalidates(t *testing.T) {
	ctx := context.Background()
	cache := newFakeCache()
	next := &countingSettings{stored: map[string]models.OwnerCoverSettings{"tenant-1": autoMode()}}
	repo := NewCachedSettingsRepo(next, cache, time.Minute, zap.NewNop())

	_, err := repo.Get(ctx, "tenant-1")
	require.NoError(t, err)

	updated := autoMode()
	updated.ConfidenceThreshold = 0.5
	require.NoError(t, repo.Save(ctx, "tenant-1", updated))
	assert.Equal(t, []string{settingsKey("tenant-1")}, cache.deleted)

	s, err := repo.Get(ctx, "tenant-1")
	require.NoError(t, err)
	assert.Equal(t, 0.5, s.ConfidenceThreshold)
	assert.Equal(t, 2, next.gets)

	next.saveErr = errors.New("db down")
	assert.Error(t, repo.Save(ctx, "tenant-1", autoMode()))
	assert.Len(t, cache.deleted, 1, "a failed save keeps the cached entry")
}
