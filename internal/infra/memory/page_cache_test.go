package memory

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestPageCacheCaches(t *testing.T) {
	cache := NewPageCache(time.Minute)
	loader := &countingLoader{data: []byte(`{"items":[]}`)}

	for i := 0; i < 3; i++ {
		got, err := cache.Fetch(context.Background(), "quizzes", "1|", loader.load)
		if err != nil {
			t.Fatalf("fetch %d: %v", i, err)
		}
		if string(got) != `{"items":[]}` {
			t.Fatalf("unexpected payload %s", got)
		}
	}
	if loader.calls.Load() != 1 {
		t.Fatalf("expected loader once, got %d", loader.calls.Load())
	}
}

func TestPageCacheInvalidateIsPerCollection(t *testing.T) {
	ctx := context.Background()
	cache := NewPageCache(time.Minute)
	quizzes := &countingLoader{data: []byte("q")}
	jokes := &countingLoader{data: []byte("j")}

	_, _ = cache.Fetch(ctx, "quizzes", "1|", quizzes.load)
	_, _ = cache.Fetch(ctx, "jokes", "1", jokes.load)

	if err := cache.Invalidate(ctx, "quizzes"); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	_, _ = cache.Fetch(ctx, "quizzes", "1|", quizzes.load)
	_, _ = cache.Fetch(ctx, "jokes", "1", jokes.load)

	if quizzes.calls.Load() != 2 {
		t.Fatalf("expected quizzes reloaded, got %d calls", quizzes.calls.Load())
	}
	if jokes.calls.Load() != 1 {
		t.Fatalf("expected jokes still cached, got %d calls", jokes.calls.Load())
	}
}

func TestPageCacheExpires(t *testing.T) {
	now := time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)
	cache := NewPageCache(time.Minute).WithClock(func() time.Time { return now })
	loader := &countingLoader{data: []byte("x")}

	_, _ = cache.Fetch(context.Background(), "quizzes", "k", loader.load)
	now = now.Add(2 * time.Minute)
	_, _ = cache.Fetch(context.Background(), "quizzes", "k", loader.load)

	if loader.calls.Load() != 2 {
		t.Fatalf("expected reload after ttl, got %d calls", loader.calls.Load())
	}
}

func TestPageCacheZeroTTLDisablesCaching(t *testing.T) {
	cache := NewPageCache(0)
	loader := &countingLoader{data: []byte("x")}

	_, _ = cache.Fetch(context.Background(), "quizzes", "k", loader.load)
	_, _ = cache.Fetch(context.Background(), "quizzes", "k", loader.load)

	if loader.calls.Load() != 2 {
		t.Fatalf("expected every fetch to load, got %d calls", loader.calls.Load())
	}
}

func TestPageCacheDoesNotStoreErrors(t *testing.T) {
	cache := NewPageCache(time.Minute)
	boom := errors.New("backend down")
	calls := 0
	load := func(context.Context) ([]byte, error) {
		calls++
		return nil, boom
	}

	for i := 0; i < 2; i++ {
		if _, err := cache.Fetch(context.Background(), "quizzes", "k", load); !errors.Is(err, boom) {
			t.Fatalf("expected loader error, got %v", err)
		}
	}
	if calls != 2 {
		t.Fatalf("expected errors not cached, got %d calls", calls)
	}
}

func TestPageCacheCollapsesConcurrentLoads(t *testing.T) {
	cache := NewPageCache(time.Minute)
	release := make(chan struct{})
	var calls atomic.Int32
	load := func(context.Context) ([]byte, error) {
		calls.Add(1)
		<-release
		return []byte("x"), nil
	}

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = cache.Fetch(context.Background(), "quizzes", "k", load)
		}()
	}
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	if calls.Load() != 1 {
		t.Fatalf("expected a single load, got %d", calls.Load())
	}
}

func TestPageCacheLeaderCancelDoesNotFailWaiters(t *testing.T) {
	cache := NewPageCache(time.Minute)
	started := make(chan struct{})
	release := make(chan struct{})
	var loadErr atomic.Value
	load := func(ctx context.Context) ([]byte, error) {
		close(started)
		<-release
		if err := ctx.Err(); err != nil {
			loadErr.Store(err)
		}
		return []byte("page"), nil
	}

	leaderCtx, cancel := context.WithCancel(context.Background())
	leaderDone := make(chan error, 1)
	go func() {
		_, err := cache.Fetch(leaderCtx, "quizzes", "1|", load)
		leaderDone <- err
	}()
	<-started

	waiterDone := make(chan []byte, 1)
	waiterErr := make(chan error, 1)
	go func() {
		data, err := cache.Fetch(context.Background(), "quizzes", "1|", load)
		waiterErr <- err
		waiterDone <- data
	}()
	time.Sleep(50 * time.Millisecond)

	cancel()
	if err := <-leaderDone; !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancelled leader, got %v", err)
	}
	close(release)

	if err := <-waiterErr; err != nil {
		t.Fatalf("expected waiter to get the page, got %v", err)
	}
	if data := <-waiterDone; string(data) != "page" {
		t.Fatalf("unexpected payload %s", data)
	}
	if v := loadErr.Load(); v != nil {
		t.Fatalf("shared load saw a cancelled context: %v", v)
	}
}

func TestPageCacheWaiterRetriesAfterLeaderFailure(t *testing.T) {
	cache := NewPageCache(time.Minute)
	started := make(chan struct{})
	release := make(chan struct{})
	stale := func(context.Context) ([]byte, error) {
		close(started)
		<-release
		return nil, errors.New("unauthorized")
	}
	fresh := &countingLoader{data: []byte("page")}

	leaderDone := make(chan error, 1)
	go func() {
		_, err := cache.Fetch(context.Background(), "quizzes", "1|", stale)
		leaderDone <- err
	}()
	<-started

	waiterDone := make(chan error, 1)
	go func() {
		data, err := cache.Fetch(context.Background(), "quizzes", "1|", fresh.load)
		if err == nil && string(data) != "page" {
			err = errors.New("unexpected payload " + string(data))
		}
		waiterDone <- err
	}()
	time.Sleep(50 * time.Millisecond)
	close(release)

	if err := <-leaderDone; err == nil || err.Error() != "unauthorized" {
		t.Fatalf("expected leader to see its own error, got %v", err)
	}
	if err := <-waiterDone; err != nil {
		t.Fatalf("expected waiter to load with its own loader, got %v", err)
	}
	if fresh.calls.Load() != 1 {
		t.Fatalf("expected one retry, got %d", fresh.calls.Load())
	}
}

func TestPageCacheEvictsExpiredEntriesOnWrite(t *testing.T) {
	now := time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)
	cache := NewPageCache(time.Minute).WithClock(func() time.Time { return now })
	loader := &countingLoader{data: []byte("x")}

	for _, search := range []string{"a", "ab", "abc"} {
		_, _ = cache.Fetch(context.Background(), "quizzes", "1|"+search, loader.load)
	}
	if cache.Len() != 3 {
		t.Fatalf("expected 3 entries, got %d", cache.Len())
	}

	now = now.Add(2 * time.Minute)
	_, _ = cache.Fetch(context.Background(), "quizzes", "1|abcd", loader.load)
	if cache.Len() != 1 {
		t.Fatalf("expected expired searches evicted, got %d entries", cache.Len())
	}
}

type countingLoader struct {
	data  []byte
	calls atomic.Int32
}

func (l *countingLoader) load(context.Context) ([]byte, error) {
	l.calls.Add(1)
	return l.data, nil
}
