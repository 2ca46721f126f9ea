package ratelimit

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"testing/synctest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testInterval = 1200 * time.Millisecond

func TestLimiter_FirstAcquireDoesNotWait(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		l := New(testInterval)

		start := time.Now()
		require.NoError(t, l.Acquire(context.Background()))
		assert.Zero(t, time.Since(start))
	})
}

func TestLimiter_ConsecutiveAcquiresAreSpaced(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		l := New(testInterval)

		var dispatched []time.Time
		for range 4 {
			require.NoError(t, l.Acquire(context.Background()))
			dispatched = append(dispatched, time.Now())
		}

		for i := 1; i < len(dispatched); i++ {
			assert.GreaterOrEqual(t, dispatched[i].Sub(dispatched[i-1]), testInterval)
		}
	})
}

func TestLimiter_NoWaitAfterIdle(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		l := New(testInterval)
		require.NoError(t, l.Acquire(context.Background()))

		time.Sleep(testInterval + 100*time.Millisecond)

		start := time.Now()
		require.NoError(t, l.Acquire(context.Background()))
		assert.Zero(t, time.Since(start))
	})
}

func TestLimiter_PartialWait(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		l := New(testInterval)
		require.NoError(t, l.Acquire(context.Background()))

		time.Sleep(500 * time.Millisecond)

		start := time.Now()
		require.NoError(t, l.Acquire(context.Background()))
		assert.Equal(t, 700*time.Millisecond, time.Since(start))
	})
}

func TestLimiter_ConcurrentCallers(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		l := New(testInterval)

		var (
			mu         sync.Mutex
			dispatched []time.Time
			wg         sync.WaitGroup
		)
		for range 5 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if err := l.Acquire(context.Background()); err != nil {
					t.Errorf("acquire: %v", err)
					return
				}
				mu.Lock()
				dispatched = append(dispatched, time.Now())
				mu.Unlock()
			}()
		}
		wg.Wait()

		require.Len(t, dispatched, 5)
		sort.Slice(dispatched, func(i, j int) bool { return dispatched[i].Before(dispatched[j]) })
		for i := 1; i < len(dispatched); i++ {
			assert.GreaterOrEqual(t, dispatched[i].Sub(dispatched[i-1]), testInterval)
		}
	})
}

func TestLimiter_ContextCancelled(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		l := New(testInterval)
		require.NoError(t, l.Acquire(context.Background()))

		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
		defer cancel()

		err := l.Acquire(ctx)
		require.Error(t, err)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})
}

func TestNew_ClampsInterval(t *testing.T) {
	assert.Equal(t, MinInterval, New(10*time.Millisecond).Interval())
	assert.Equal(t, testInterval, New(testInterval).Interval())
}

func TestFetcher_SetsUserAgentAndSpacesRequests(t *testing.T) {
	var (
		mu    sync.Mutex
		seen  []time.Time
		agent string
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		seen = append(seen, time.Now())
		agent = r.Header.Get("User-Agent")
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	f := NewFetcher(New(MinInterval), "CareersInMusic/1.0 (test)", 5*time.Second)

	for range 2 {
		resp, err := f.Fetch(context.Background(), server.URL)
		require.NoError(t, err)
		resp.Body.Close()
	}

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, seen, 2)
	assert.Equal(t, "CareersInMusic/1.0 (test)", agent)
	assert.GreaterOrEqual(t, seen[1].Sub(seen[0]), MinInterval-50*time.Millisecond)
}

func TestFetcher_QueuedCallersDoNotTimeOut(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	// The last caller queues for two intervals, longer than the request timeout.
	timeout := MinInterval + MinInterval/2
	f := NewFetcher(New(MinInterval), "CareersInMusic/1.0 (test)", timeout)

	var wg sync.WaitGroup
	errs := make([]error, 3)
	for i := range errs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			resp, err := f.Fetch(context.Background(), server.URL)
			if err == nil {
				resp.Body.Close()
			}
			errs[i] = err
		}()
	}
	wg.Wait()

	for i, err := range errs {
		assert.NoError(t, err, "fetch %d", i)
	}
}
