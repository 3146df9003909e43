package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"homeinsight-listings/pkg/cache/cachetest"
	"homeinsight-listings/pkg/logger"
)

type item struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newTestReadThrough(p Provider, opts ...Option) *ReadThrough {
	opts = append([]Option{WithLogger(logger.Discard())}, opts...)
	return NewReadThrough(p, opts...)
}

func counting(calls *atomic.Int32, v item) func(context.Context) (any, error) {
	return func(context.Context) (any, error) {
		calls.Add(1)
		return v, nil
	}
}

func TestGetOrCompute_MissThenHit(t *testing.T) {
	p := cachetest.New()
	c := newTestReadThrough(p)
	ctx := context.Background()

	var calls atomic.Int32
	compute := counting(&calls, item{Name: "a", Count: 1})

	var first item
	hit, err := c.GetOrCompute(ctx, "k", time.Minute, compute, &first)
	if err != nil {
		t.Fatalf("GetOrCompute: %v", err)
	}
	if hit {
		t.Error("first call reported a hit")
	}

	var second item
	hit, err = c.GetOrCompute(ctx, "k", time.Minute, compute, &second)
	if err != nil {
		t.Fatalf("GetOrCompute: %v", err)
	}
	if !hit {
		t.Error("second call reported a miss")
	}
	if first != second || second.Name != "a" {
		t.Errorf("got %+v and %+v, want equal values named a", first, second)
	}
	if n := calls.Load(); n != 1 {
		t.Errorf("compute called %d times, want 1", n)
	}
	if got := p.TTL("k"); got != time.Minute {
		t.Errorf("stored ttl = %v, want 1m", got)
	}
}

func TestGetOrCompute_DefaultTTL(t *testing.T) {
	p := cachetest.New()
	c := newTestReadThrough(p, WithDefaultTTL(42*time.Second))

	var dest item
	if _, err := c.GetOrCompute(context.Background(), "k", 0, counting(new(atomic.Int32), item{}), &dest); err != nil {
		t.Fatalf("GetOrCompute: %v", err)
	}
	if got := p.TTL("k"); got != 42*time.Second {
		t.Errorf("stored ttl = %v, want 42s", got)
	}
}

func TestGetOrCompute_ComputeErrorNotCached(t *testing.T) {
	p := cachetest.New()
	c := newTestReadThrough(p)
	boom := errors.New("store down")

	var dest item
	_, err := c.GetOrCompute(context.Background(), "k", time.Minute, func(context.Context) (any, error) {
		return nil, boom
	}, &dest)
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want %v", err, boom)
	}
	if p.Has("k") {
		t.Error("failed compute populated the cache")
	}
}

func TestGetOrCompute_ProviderDownIsMiss(t *testing.T) {
	p := cachetest.New()
	p.Fail()
	c := newTestReadThrough(p)
	ctx := context.Background()

	var calls atomic.Int32
	compute := counting(&calls, item{Name: "live"})
	for i := 0; i < 3; i++ {
		var dest item
		hit, err := c.GetOrCompute(ctx, "k", time.Minute, compute, &dest)
		if err != nil {
			t.Fatalf("GetOrCompute: %v", err)
		}
		if hit || dest.Name != "live" {
			t.Fatalf("hit=%v dest=%+v, want miss with live value", hit, dest)
		}
	}
	if n := calls.Load(); n != 3 {
		t.Errorf("compute called %d times, want 3", n)
	}

	p.Recover()
	var dest item
	if hit, _ := c.GetOrCompute(ctx, "k", time.Minute, compute, &dest); hit {
		t.Error("recovered provider served an entry written while it was down")
	}
}

func TestGetOrCompute_ExpiresByClock(t *testing.T) {
	p := cachetest.New()
	clock := newFakeClock()
	c := newTestReadThrough(p, WithClock(clock.Now))
	ctx := context.Background()

	var calls atomic.Int32
	compute := counting(&calls, item{Name: "a"})
	var dest item

	if _, err := c.GetOrCompute(ctx, "k", time.Hour, compute, &dest); err != nil {
		t.Fatal(err)
	}
	clock.Advance(59 * time.Minute)
	if hit, _ := c.GetOrCompute(ctx, "k", time.Hour, compute, &dest); !hit {
		t.Error("entry expired before its ttl")
	}
	clock.Advance(time.Minute)
	if hit, _ := c.GetOrCompute(ctx, "k", time.Hour, compute, &dest); hit {
		t.Error("entry served at its expiry instant")
	}
	if n := calls.Load(); n != 2 {
		t.Errorf("compute called %d times, want 2", n)
	}
}

func TestGetOrCompute_CorruptEntryIsMiss(t *testing.T) {
	p := cachetest.New()
	p.Put("k", []byte("{not json"))
	c := newTestReadThrough(p)

	var dest item
	hit, err := c.GetOrCompute(context.Background(), "k", time.Minute, counting(new(atomic.Int32), item{Name: "fresh"}), &dest)
	if err != nil {
		t.Fatalf("GetOrCompute: %v", err)
	}
	if hit || dest.Name != "fresh" {
		t.Errorf("hit=%v dest=%+v, want recomputed value", hit, dest)
	}

	hit, _ = c.GetOrCompute(context.Background(), "k", time.Minute, counting(new(atomic.Int32), item{}), &dest)
	if !hit {
		t.Error("corrupt entry was not replaced")
	}
}

func TestGetOrCompute_SingleFlight(t *testing.T) {
	p := cachetest.New()
	c := newTestReadThrough(p, WithSingleFlight(true))
	ctx := context.Background()

	var calls atomic.Int32
	release := make(chan struct{})
	compute := func(context.Context) (any, error) {
		calls.Add(1)
		<-release
		return item{Name: "shared"}, nil
	}

	const n = 8
	var wg sync.WaitGroup
	results := make([]item, n)
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = c.GetOrCompute(ctx, "k", time.Minute, compute, &results[i])
		}(i)
	}

	deadline := time.Now().Add(2 * time.Second)
	for calls.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	if got := calls.Load(); got != 1 {
		t.Errorf("compute called %d times, want 1", got)
	}
	for i := range results {
		if errs[i] != nil || results[i].Name != "shared" {
			t.Errorf("caller %d got %+v, %v", i, results[i], errs[i])
		}
	}
}

func TestGetOrCompute_SharedComputeOutlivesLeader(t *testing.T) {
	c := newTestReadThrough(cachetest.New(), WithSingleFlight(true), WithComputeTimeout(5*time.Second))

	entered := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	compute := func(ctx context.Context) (any, error) {
		once.Do(func() { close(entered) })
		<-release
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return item{Name: "shared"}, nil
	}

	leaderCtx, cancel := context.WithCancel(context.Background())
	leader := make(chan error, 1)
	go func() {
		var dest item
		_, err := c.GetOrCompute(leaderCtx, "k", time.Minute, compute, &dest)
		leader <- err
	}()
	<-entered

	type result struct {
		dest item
		err  error
	}
	follower := make(chan result, 1)
	go func() {
		var dest item
		_, err := c.GetOrCompute(context.Background(), "k", time.Minute, compute, &dest)
		follower <- result{dest, err}
	}()
	cancel()
	time.Sleep(20 * time.Millisecond)
	close(release)

	if err := <-leader; err != nil {
		t.Errorf("leader: %v", err)
	}
	if r := <-follower; r.err != nil || r.dest.Name != "shared" {
		t.Errorf("follower got %+v, %v after the leader was canceled", r.dest, r.err)
	}
}

func TestGetOrCompute_SharedComputeIsBounded(t *testing.T) {
	c := newTestReadThrough(cachetest.New(), WithSingleFlight(true), WithComputeTimeout(20*time.Millisecond))
	var dest item
	_, err := c.GetOrCompute(context.Background(), "k", time.Minute, func(ctx context.Context) (any, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}, &dest)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("err = %v, want DeadlineExceeded", err)
	}
}

func TestInvalidate(t *testing.T) {
	p := cachetest.New()
	c := newTestReadThrough(p)
	ctx := context.Background()

	var calls atomic.Int32
	compute := counting(&calls, item{Name: "a"})
	var dest item
	if _, err := c.GetOrCompute(ctx, "user:u1:favorites", time.Minute, compute, &dest); err != nil {
		t.Fatal(err)
	}
	if err := c.Invalidate(ctx, "user:u1:favorites", "user:absent:favorites"); err != nil {
		t.Fatalf("Invalidate: %v", err)
	}
	if hit, _ := c.GetOrCompute(ctx, "user:u1:favorites", time.Minute, compute, &dest); hit {
		t.Error("invalidated key still served")
	}
	if err := c.Invalidate(ctx); err != nil {
		t.Errorf("Invalidate with no keys: %v", err)
	}

	p.Fail()
	if err := c.Invalidate(ctx, "user:u1:favorites"); err == nil {
		t.Error("Invalidate on a failing provider returned nil")
	}
}

func TestNamespace_RotationDropsEveryKey(t *testing.T) {
	p := cachetest.New()
	c := newTestReadThrough(p)
	ctx := context.Background()

	k1, err := c.NamespaceKey(ctx, ListingQueryNamespace, EncodeFilter(map[string]any{"location": "austin"}))
	if err != nil {
		t.Fatalf("NamespaceKey: %v", err)
	}
	k2, _ := c.NamespaceKey(ctx, ListingQueryNamespace, EncodeFilter(nil))
	again, _ := c.NamespaceKey(ctx, ListingQueryNamespace, EncodeFilter(map[string]any{"location": "austin"}))
	if k1 != again {
		t.Fatalf("NamespaceKey not stable: %q vs %q", k1, again)
	}

	var dest item
	for _, k := range []string{k1, k2} {
		if _, err := c.GetOrCompute(ctx, k, time.Minute, counting(new(atomic.Int32), item{Name: k}), &dest); err != nil {
			t.Fatal(err)
		}
	}

	if err := c.InvalidateNamespace(ctx, ListingQueryNamespace); err != nil {
		t.Fatalf("InvalidateNamespace: %v", err)
	}

	n1, _ := c.NamespaceKey(ctx, ListingQueryNamespace, EncodeFilter(map[string]any{"location": "austin"}))
	n2, _ := c.NamespaceKey(ctx, ListingQueryNamespace, EncodeFilter(nil))
	if n1 == k1 || n2 == k2 {
		t.Fatal("namespace keys unchanged after invalidation")
	}
	for _, k := range []string{n1, n2} {
		if hit, _ := c.GetOrCompute(ctx, k, time.Minute, counting(new(atomic.Int32), item{}), &dest); hit {
			t.Errorf("key %q hit right after namespace invalidation", k)
		}
	}
	if !p.Has(k1) {
		t.Error("old generation swept although sweeping is disabled")
	}
}

func TestNamespace_SweepRemovesOldGeneration(t *testing.T) {
	p := cachetest.New()
	c := newTestReadThrough(p, WithSweep(true))
	ctx := context.Background()

	key, _ := c.NamespaceKey(ctx, ListingQueryNamespace, EncodeFilter(nil))
	var dest item
	if _, err := c.GetOrCompute(ctx, key, time.Minute, counting(new(atomic.Int32), item{}), &dest); err != nil {
		t.Fatal(err)
	}
	if err := c.InvalidateNamespace(ctx, ListingQueryNamespace); err != nil {
		t.Fatalf("InvalidateNamespace: %v", err)
	}
	c.sweeps.Wait()
	if p.Has(key) {
		t.Error("old generation key survived the sweep")
	}
	if !p.Has(NamespaceGenerationKey(ListingQueryNamespace)) {
		t.Error("generation key removed by the sweep")
	}
}

type gatedSweeper struct {
	*cachetest.Provider
	started chan struct{}
	release chan struct{}
	calls   atomic.Int32
}

func (g *gatedSweeper) DeletePattern(ctx context.Context, pattern string) (int64, error) {
	g.calls.Add(1)
	g.started <- struct{}{}
	select {
	case <-g.release:
	case <-ctx.Done():
		return 0, ctx.Err()
	}
	return g.Provider.DeletePattern(ctx, pattern)
}

func TestNamespace_SweepRunsInBackground(t *testing.T) {
	g := &gatedSweeper{Provider: cachetest.New(), started: make(chan struct{}, 2), release: make(chan struct{})}
	c := newTestReadThrough(g, WithSweep(true))
	ctx := context.Background()

	key, _ := c.NamespaceKey(ctx, ListingQueryNamespace, EncodeFilter(nil))
	var dest item
	if _, err := c.GetOrCompute(ctx, key, time.Minute, counting(new(atomic.Int32), item{}), &dest); err != nil {
		t.Fatal(err)
	}

	reqCtx, cancel := context.WithCancel(ctx)
	done := make(chan error, 1)
	go func() { done <- c.InvalidateNamespace(reqCtx, ListingQueryNamespace) }()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("InvalidateNamespace: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("InvalidateNamespace waited for the sweep")
	}
	<-g.started
	cancel()

	// a second rotation while the first sweep runs does not start another
	if err := c.InvalidateNamespace(ctx, ListingQueryNamespace); err != nil {
		t.Fatalf("InvalidateNamespace: %v", err)
	}
	close(g.release)
	c.sweeps.Wait()

	if n := g.calls.Load(); n != 1 {
		t.Errorf("DeletePattern called %d times, want 1", n)
	}
	if g.Has(key) {
		t.Error("sweep stopped when the request context was canceled")
	}
}

func TestClose_WaitsForSweep(t *testing.T) {
	g := &gatedSweeper{Provider: cachetest.New(), started: make(chan struct{}, 1), release: make(chan struct{})}
	c := newTestReadThrough(g, WithSweep(true))
	ctx := context.Background()

	if _, err := c.NamespaceKey(ctx, ListingQueryNamespace, EncodeFilter(nil)); err != nil {
		t.Fatal(err)
	}
	if err := c.InvalidateNamespace(ctx, ListingQueryNamespace); err != nil {
		t.Fatal(err)
	}
	<-g.started

	closed := make(chan struct{})
	go func() {
		_ = c.Close()
		close(closed)
	}()
	select {
	case <-closed:
		t.Fatal("Close returned while a sweep was running")
	case <-time.After(50 * time.Millisecond):
	}
	close(g.release)
	select {
	case <-closed:
	case <-time.After(5 * time.Second):
		t.Fatal("Close did not return after the sweep finished")
	}
}

// A reader that computed from pre-write data and populates after the
// namespace was invalidated must not be visible to later readers.
func TestNamespace_StalePopulateAfterInvalidation(t *testing.T) {
	p := cachetest.New()
	c := newTestReadThrough(p)
	ctx := context.Background()
	filter := EncodeFilter(map[string]any{"location": "austin"})

	key, err := c.NamespaceKey(ctx, ListingQueryNamespace, filter)
	if err != nil {
		t.Fatal(err)
	}
	var dest item
	_, err = c.GetOrCompute(ctx, key, time.Minute, func(ctx context.Context) (any, error) {
		// the write commits and invalidates while this reader is computing
		if err := c.InvalidateNamespace(ctx, ListingQueryNamespace); err != nil {
			return nil, err
		}
		return item{Name: "stale"}, nil
	}, &dest)
	if err != nil {
		t.Fatal(err)
	}

	fresh, _ := c.NamespaceKey(ctx, ListingQueryNamespace, filter)
	hit, err := c.GetOrCompute(ctx, fresh, time.Minute, counting(new(atomic.Int32), item{Name: "fresh"}), &dest)
	if err != nil {
		t.Fatal(err)
	}
	if hit || dest.Name != "fresh" {
		t.Errorf("hit=%v dest=%+v, stale populate leaked past invalidation", hit, dest)
	}
}

func TestNamespace_ProviderDown(t *testing.T) {
	p := cachetest.New()
	p.Fail()
	c := newTestReadThrough(p)
	ctx := context.Background()

	if _, err := c.NamespaceKey(ctx, ListingQueryNamespace, EncodeFilter(nil)); err == nil {
		t.Error("NamespaceKey succeeded on a failing provider")
	}
	if err := c.InvalidateNamespace(ctx, ListingQueryNamespace); err == nil {
		t.Error("InvalidateNamespace succeeded on a failing provider")
	}
}

func TestOpTimeoutBoundsProviderCalls(t *testing.T) {
	c := newTestReadThrough(slowProvider{delay: time.Second}, WithOpTimeout(20*time.Millisecond))

	start := time.Now()
	var dest item
	hit, err := c.GetOrCompute(context.Background(), "k", time.Minute, counting(new(atomic.Int32), item{Name: "x"}), &dest)
	if err != nil {
		t.Fatalf("GetOrCompute: %v", err)
	}
	if hit || dest.Name != "x" {
		t.Errorf("hit=%v dest=%+v", hit, dest)
	}
	if elapsed := time.Since(start); elapsed > 500*time.Millisecond {
		t.Errorf("slow provider held the read for %v", elapsed)
	}
}

type slowProvider struct {
	NoopProvider
	delay time.Duration
}

func (s slowProvider) wait(ctx context.Context) error {
	select {
	case <-time.After(s.delay):
		return nil
	case <-ctx.Done():
		return NewCacheError("wait", ctx.Err(), true)
	}
}

func (s slowProvider) Get(ctx context.Context, _ string) ([]byte, bool, error) {
	return nil, false, s.wait(ctx)
}

func (s slowProvider) Set(ctx context.Context, _ string, _ []byte, _ time.Duration) error {
	return s.wait(ctx)
}
