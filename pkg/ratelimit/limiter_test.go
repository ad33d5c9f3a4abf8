package ratelimit_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/dinesh-git17/debate-lab-sub000/pkg/ratelimit"
	"github.com/dinesh-git17/debate-lab-sub000/pkg/ratelimit/mocks"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func TestLimiter_DebateCreationWindow(t *testing.T) {
	now := time.Unix(1750000000, 0)
	store := ratelimit.NewMemoryStore(func() time.Time { return now })
	defer store.Close()

	limiter := ratelimit.NewLimiter(store, quietLogger(), &ratelimit.Opts{
		TimeProvider: func() time.Time { return now },
	})

	// The first ten creations in the hour pass.
	for i := 0; i < 10; i++ {
		result, err := limiter.Check(context.Background(), "session-1", ratelimit.CategoryDebateCreation)
		require.NoError(t, err)
		assert.True(t, result.Allowed, "request %d", i+1)
		assert.Equal(t, 10, result.Limit)
		assert.Equal(t, 10-(i+1), result.Remaining)
	}

	// The eleventh is denied with a positive retry hint.
	result, err := limiter.Check(context.Background(), "session-1", ratelimit.CategoryDebateCreation)
	require.NoError(t, err)
	assert.False(t, result.Allowed)
	assert.Equal(t, 0, result.Remaining)
	assert.Greater(t, result.RetryAfterMs, int64(0))

	// A different identifier is unaffected.
	other, err := limiter.Check(context.Background(), "session-2", ratelimit.CategoryDebateCreation)
	require.NoError(t, err)
	assert.True(t, other.Allowed)
}

func TestLimiter_WindowResets(t *testing.T) {
	now := time.Unix(1750000000, 0)
	store := ratelimit.NewMemoryStore(func() time.Time { return now })
	defer store.Close()

	limiter := ratelimit.NewLimiter(store, quietLogger(), &ratelimit.Opts{
		TimeProvider: func() time.Time { return now },
		Limits: map[ratelimit.Category]ratelimit.Limit{
			ratelimit.CategoryIP: {MaxRequests: 2, Window: time.Minute},
		},
	})

	for i := 0; i < 2; i++ {
		result, err := limiter.Check(context.Background(), "hash", ratelimit.CategoryIP)
		require.NoError(t, err)
		require.True(t, result.Allowed)
	}
	denied, err := limiter.Check(context.Background(), "hash", ratelimit.CategoryIP)
	require.NoError(t, err)
	require.False(t, denied.Allowed)

	// Past the window boundary the counter starts fresh.
	now = now.Add(time.Minute + time.Second)
	result, err := limiter.Check(context.Background(), "hash", ratelimit.CategoryIP)
	require.NoError(t, err)
	assert.True(t, result.Allowed)
	assert.Equal(t, 1, result.Remaining)
}

func TestLimiter_UnknownCategory(t *testing.T) {
	store := ratelimit.NewMemoryStore(nil)
	defer store.Close()

	limiter := ratelimit.NewLimiter(store, quietLogger(), nil)
	_, err := limiter.Check(context.Background(), "id", ratelimit.Category("bogus"))

	assert.Error(t, err)
}

func TestLimiter_StoreFailureFailsOpen(t *testing.T) {
	store := new(mocks.Store)
	store.On("Increment", mock.Anything, mock.Anything, mock.Anything).
		Return(int64(0), time.Time{}, errors.New("redis down"))

	limiter := ratelimit.NewLimiter(store, quietLogger(), nil)
	result, err := limiter.Check(context.Background(), "id", ratelimit.CategoryIP)

	require.NoError(t, err)
	assert.True(t, result.Allowed)
	assert.Equal(t, 100, result.Remaining)
}

func TestMemoryStore_ConcurrentIncrementsSum(t *testing.T) {
	store := ratelimit.NewMemoryStore(nil)
	defer store.Close()

	const goroutines = 50
	const perGoroutine = 20

	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perGoroutine; j++ {
				_, _, err := store.Increment(context.Background(), "shared", time.Hour)
				if err != nil {
					t.Error(err)
					return
				}
			}
		}()
	}
	wg.Wait()

	count, _, err := store.Increment(context.Background(), "shared", time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(goroutines*perGoroutine+1), count)
}

func TestMemoryStore_KeysAreIndependent(t *testing.T) {
	store := ratelimit.NewMemoryStore(nil)
	defer store.Close()

	for i := 0; i < 5; i++ {
		_, _, err := store.Increment(context.Background(), "a", time.Hour)
		require.NoError(t, err)
	}
	count, _, err := store.Increment(context.Background(), "b", time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestLimiter_ActiveDebateCeiling(t *testing.T) {
	store := ratelimit.NewMemoryStore(nil)
	defer store.Close()

	limiter := ratelimit.NewLimiter(store, quietLogger(), &ratelimit.Opts{MaxActive: 3})

	require.NoError(t, limiter.TrackActiveDebate("session-1", "debate-1"))
	require.NoError(t, limiter.TrackActiveDebate("session-1", "debate-2"))
	require.NoError(t, limiter.TrackActiveDebate("session-1", "debate-3"))
	assert.Equal(t, 3, limiter.ActiveDebates("session-1"))

	// Re-adding a tracked debate is a no-op, not a fourth slot.
	require.NoError(t, limiter.TrackActiveDebate("session-1", "debate-2"))

	err := limiter.TrackActiveDebate("session-1", "debate-4")
	assert.Error(t, err)

	// Releasing frees a slot.
	limiter.ReleaseActiveDebate("session-1", "debate-1")
	assert.Equal(t, 2, limiter.ActiveDebates("session-1"))
	assert.NoError(t, limiter.TrackActiveDebate("session-1", "debate-4"))

	// Other sessions have their own ceiling.
	assert.NoError(t, limiter.TrackActiveDebate("session-2", "debate-1"))
}

func TestLimiter_ReleaseUnknownDebateIsNoOp(t *testing.T) {
	store := ratelimit.NewMemoryStore(nil)
	defer store.Close()

	limiter := ratelimit.NewLimiter(store, quietLogger(), nil)
	limiter.ReleaseActiveDebate("nobody", "nothing")
	assert.Equal(t, 0, limiter.ActiveDebates("nobody"))
}

func TestLimiter_ConcurrentChecksNeverExceedLimit(t *testing.T) {
	store := ratelimit.NewMemoryStore(nil)
	defer store.Close()

	limiter := ratelimit.NewLimiter(store, quietLogger(), &ratelimit.Opts{
		Limits: map[ratelimit.Category]ratelimit.Limit{
			ratelimit.CategoryAPI: {MaxRequests: 25, Window: time.Hour},
		},
	})

	const total = 100
	results := make(chan bool, total)
	var wg sync.WaitGroup
	for i := 0; i < total; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			result, err := limiter.Check(context.Background(), "shared", ratelimit.CategoryAPI)
			if err != nil {
				results <- false
				return
			}
			results <- result.Allowed
		}(i)
	}
	wg.Wait()
	close(results)

	allowed := 0
	for ok := range results {
		if ok {
			allowed++
		}
	}
	assert.Equal(t, 25, allowed, fmt.Sprintf("exactly the limit must pass, got %d", allowed))
}
