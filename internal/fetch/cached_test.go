package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryCache struct {
	pages   map[string]string
	getErr  error
	saveErr error
	maxAge  time.Duration
}

func (c *memoryCache) GetJobPage(_ context.Context, url string, maxAge time.Duration) (string, bool, error) {
	c.maxAge = maxAge
	if c.getErr != nil {
		return "", false, c.getErr
	}
	text, ok := c.pages[url]
	return text, ok, nil
}

func (c *memoryCache) SaveJobPage(_ context.Context, url, text string) error {
	if c.saveErr != nil {
		return c.saveErr
	}
	c.pages[url] = text
	return nil
}

func countingServer(t *testing.T, hits *atomic.Int32) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte(`<main>` + longPosting + `</main>`))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestCachedFetcher_StoresAndReuses(t *testing.T) {
	var hits atomic.Int32
	server := countingServer(t, &hits)
	cache := &memoryCache{pages: map[string]string{}}
	f := NewCachedFetcher(cache, nil, 0)

	first, err := f.JobDescription(context.Background(), server.URL)
	require.NoError(t, err)
	second, err := f.JobDescription(context.Background(), server.URL)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), hits.Load())
	assert.Equal(t, DefaultCacheTTL, cache.maxAge)
}

func TestCachedFetcher_CacheErrorsAreNotFatal(t *testing.T) {
	var hits atomic.Int32
	server := countingServer(t, &hits)
	cache := &memoryCache{pages: map[string]string{}, getErr: errors.New("db down"), saveErr: errors.New("db down")}

	text, err := NewCachedFetcher(cache, nil, time.Hour).JobDescription(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Contains(t, text, "Go engineer")
	assert.Equal(t, time.Hour, cache.maxAge)
}

func TestCachedFetcher_NilCache(t *testing.T) {
	var hits atomic.Int32
	server := countingServer(t, &hits)
	f := NewCachedFetcher(nil, nil, 0)

	_, err := f.JobDescription(context.Background(), server.URL)
	require.NoError(t, err)
	_, err = f.JobDescription(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Equal(t, int32(2), hits.Load())
}
