package pending

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Memory tracker
// ==========================

func TestMemoryTracker_AcquireRelease(t *testing.T) {
	tracker := NewMemoryTracker()
	ctx := context.Background()
	key := Key("fraud-detection", "form-1")

	release, err := tracker.Acquire(ctx, key)
	require.NoError(t, err)
	assert.True(t, tracker.Pending(key))

	_, err = tracker.Acquire(ctx, key)
	assert.ErrorIs(t, err, ErrAlreadyPending)

	require.NoError(t, release(ctx))
	assert.False(t, tracker.Pending(key))
	require.NoError(t, release(ctx))

	again, err := tracker.Acquire(ctx, key)
	require.NoError(t, err)
	require.NoError(t, again(ctx))
}

func TestMemoryTracker_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewMemoryTracker().Acquire(ctx, "k")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMemoryTracker_FormsAreIndependent(t *testing.T) {
	tracker := NewMemoryTracker()
	ctx := context.Background()

	releaseA, err := tracker.Acquire(ctx, Key("document-verification", "form-a"))
	require.NoError(t, err)
	releaseB, err := tracker.Acquire(ctx, Key("document-verification", "form-b"))
	require.NoError(t, err)

	require.NoError(t, releaseA(ctx))
	assert.False(t, tracker.Pending(Key("document-verification", "form-a")))
	assert.True(t, tracker.Pending(Key("document-verification", "form-b")))
	require.NoError(t, releaseB(ctx))
}

func TestMemoryTracker_ConcurrentSubmissions(t *testing.T) {
	tracker := NewMemoryTracker()
	ctx := context.Background()

	const forms, attempts = 4, 25
	var granted [forms]atomic.Int32
	var wg sync.WaitGroup
	start := make(chan struct{})

	for f := 0; f < forms; f++ {
		for i := 0; i < attempts; i++ {
			wg.Add(1)
			go func(f int) {
				defer wg.Done()
				<-start
				if _, err := tracker.Acquire(ctx, Key("predictive-compliance", string(rune('a'+f)))); err == nil {
					granted[f].Add(1)
				}
			}(f)
		}
	}
	close(start)
	wg.Wait()

	for f := 0; f < forms; f++ {
		assert.Equal(t, int32(1), granted[f].Load(), "form %d", f)
	}
}

// ==========================
// Redis tracker
// ==========================

func newMiniredisTracker(t *testing.T, ttl time.Duration) (*RedisTracker, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	tracker, err := NewRedisTracker(client, "gateway:pending:", ttl)
	require.NoError(t, err)
	return tracker, mr
}

func TestRedisTracker_AcquireRelease(t *testing.T) {
	tracker, mr := newMiniredisTracker(t, 5*time.Second)
	ctx := context.Background()

	release, err := tracker.Acquire(ctx, "fraud-detection:form-1")
	require.NoError(t, err)
	assert.True(t, mr.Exists("gateway:pending:fraud-detection:form-1"))

	_, err = tracker.Acquire(ctx, "fraud-detection:form-1")
	assert.ErrorIs(t, err, ErrAlreadyPending)

	require.NoError(t, release(ctx))
	assert.False(t, mr.Exists("gateway:pending:fraud-detection:form-1"))
}

func TestRedisTracker_ExpiredSlotNotReleasedByStaleHolder(t *testing.T) {
	tracker, mr := newMiniredisTracker(t, time.Second)
	ctx := context.Background()
	key := "document-suggestion:form-9"

	stale, err := tracker.Acquire(ctx, key)
	require.NoError(t, err)

	mr.FastForward(2 * time.Second)

	current, err := tracker.Acquire(ctx, key)
	require.NoError(t, err)

	require.NoError(t, stale(ctx))
	assert.True(t, mr.Exists("gateway:pending:"+key))

	require.NoError(t, current(ctx))
	assert.False(t, mr.Exists("gateway:pending:"+key))
}

func TestRedisTracker_Errors(t *testing.T) {
	ctx := context.Background()

	client, mock := redismock.NewClientMock()
	tracker, err := NewRedisTracker(client, "p:", time.Minute)
	require.NoError(t, err)
	tracker.newToken = func() string { return "token-1" }

	mock.ExpectSetNX("p:k", "token-1", time.Minute).SetErr(errors.New("connection refused"))
	_, err = tracker.Acquire(ctx, "k")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrAlreadyPending)

	mock.ExpectSetNX("p:k", "token-1", time.Minute).SetVal(true)
	mock.ExpectEval(releaseScript, []string{"p:k"}, "token-1").SetErr(errors.New("READONLY"))
	release, err := tracker.Acquire(ctx, "k")
	require.NoError(t, err)
	assert.Error(t, release(ctx))
	assert.NoError(t, release(ctx))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNewRedisTracker_Validation(t *testing.T) {
	_, err := NewRedisTracker(nil, "p:", time.Second)
	assert.Error(t, err)

	client, _ := redismock.NewClientMock()
	_, err = NewRedisTracker(client, "p:", 0)
	assert.Error(t, err)
}
