package lock

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exercise(t *testing.T, l Locker) {
	t.Helper()
	var inside, maxInside int32
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release, err := l.Acquire(context.Background(), "book:1")
			if !assert.NoError(t, err) {
				return
			}
			n := atomic.AddInt32(&inside, 1)
			for {
				m := atomic.LoadInt32(&maxInside)
				if n <= m || atomic.CompareAndSwapInt32(&maxInside, m, n) {
					break
				}
			}
			time.Sleep(2 * time.Millisecond)
			atomic.AddInt32(&inside, -1)
			release()
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), maxInside)
}

func TestMemorySerializesSameKey(t *testing.T) {
	exercise(t, NewMemory())
}

func TestMemoryHonorsContext(t *testing.T) {
	m := NewMemory()
	release, err := m.Acquire(context.Background(), "book:1")
	require.NoError(t, err)
	defer release()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = m.Acquire(ctx, "book:1")
	assert.ErrorIs(t, err, ErrNotAcquired)

	other, err := m.Acquire(context.Background(), "book:2")
	require.NoError(t, err)
	other()
}

func TestMemoryReleaseIsIdempotent(t *testing.T) {
	m := NewMemory()
	release, err := m.Acquire(context.Background(), "k")
	require.NoError(t, err)
	release()
	release()
	assert.Empty(t, m.slots)
}

func newRedisLock(t *testing.T, ttl time.Duration) (*Redis, *miniredis.Miniredis) {
	t.Helper()
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	l, err := NewRedis(client, "test:lock", ttl)
	require.NoError(t, err)
	return l, srv
}

func TestRedisSerializesSameKey(t *testing.T) {
	l, _ := newRedisLock(t, 2*time.Second)
	exercise(t, l)
}

func TestRedisTimesOutWhileHeld(t *testing.T) {
	l, srv := newRedisLock(t, 100*time.Millisecond)
	release, err := l.Acquire(context.Background(), "book:1")
	require.NoError(t, err)
	defer release()
	assert.True(t, srv.Exists("test:lock:book:1"))

	_, err = l.Acquire(context.Background(), "book:1")
	assert.ErrorIs(t, err, ErrNotAcquired)
}

func TestRedisReleaseKeepsForeignLease(t *testing.T) {
	l, srv := newRedisLock(t, time.Second)
	release, err := l.Acquire(context.Background(), "book:1")
	require.NoError(t, err)

	// Simulate the lease expiring and another holder taking over.
	require.NoError(t, srv.Set("test:lock:book:1", "someone-else"))
	release()

	got, err := srv.Get("test:lock:book:1")
	require.NoError(t, err)
	assert.Equal(t, "someone-else", got)
}

func TestNewRedisValidates(t *testing.T) {
	_, err := NewRedis(nil, "", time.Second)
	assert.Error(t, err)
	_, err = NewRedis(redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"}), "", 0)
	assert.Error(t, err)
}
