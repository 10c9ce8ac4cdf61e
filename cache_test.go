package wtcache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"golang.org/x/sync/errgroup"

	st "github.com/unkn0wn-root/wtcache/store"
	"github.com/unkn0wn-root/wtcache/task"
)

// fakeStore counts calls and can fail or stall on demand.
type fakeStore struct {
	mu sync.Mutex
	m  map[string]int

	gets, sets, removes, contains int
	setCalls                      []string

	getErr, setErr, removeErr, containsErr error

	// beforeGetReturn runs after the value was read, outside the store lock.
	beforeGetReturn func(key string)

	closed int
}

var _ st.Store[string, int] = (*fakeStore)(nil)

func newFakeStore() *fakeStore { return &fakeStore{m: make(map[string]int)} }

func (s *fakeStore) GetValue(_ context.Context, key string) (int, error) {
	s.mu.Lock()
	s.gets++
	v, ok := s.m[key]
	err := s.getErr
	hook := s.beforeGetReturn
	s.mu.Unlock()
	if hook != nil {
		hook(key)
	}
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, st.ErrNotFound
	}
	return v, nil
}

func (s *fakeStore) SetValue(_ context.Context, key string, value int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sets++
	s.setCalls = append(s.setCalls, fmt.Sprintf("%s=%d", key, value))
	if s.setErr != nil {
		return s.setErr
	}
	s.m[key] = value
	return nil
}

func (s *fakeStore) RemoveKey(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removes++
	if s.removeErr != nil {
		return s.removeErr
	}
	delete(s.m, key)
	return nil
}

func (s *fakeStore) ContainsKey(_ context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.contains++
	if s.containsErr != nil {
		return false, s.containsErr
	}
	_, ok := s.m[key]
	return ok, nil
}

func (s *fakeStore) Close(context.Context) error {
	s.mu.Lock()
	s.closed++
	s.mu.Unlock()
	return nil
}

func (s *fakeStore) counts() (gets, sets, removes, contains int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gets, s.sets, s.removes, s.contains
}

func (s *fakeStore) value(key string) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.m[key]
	return v, ok
}

type eviction struct {
	key   string
	value int
}

// recorder collects eviction notifications.
type recorder struct {
	mu  sync.Mutex
	got []eviction
}

func (r *recorder) fn(key string, value int) {
	r.mu.Lock()
	r.got = append(r.got, eviction{key, value})
	r.mu.Unlock()
}

func (r *recorder) events() []eviction {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]eviction(nil), r.got...)
}

type countingHooks struct {
	NopHooks

	mu                      sync.Mutex
	hits, misses, discarded int
	storeErrors             []string
	evicted                 map[string]int
	evictMisses             int
}

func (h *countingHooks) Hit()  { h.mu.Lock(); h.hits++; h.mu.Unlock() }
func (h *countingHooks) Miss() { h.mu.Lock(); h.misses++; h.mu.Unlock() }
func (h *countingHooks) FillDiscarded(any) {
	h.mu.Lock()
	h.discarded++
	h.mu.Unlock()
}
func (h *countingHooks) StoreError(op string, _ any, _ error) {
	h.mu.Lock()
	h.storeErrors = append(h.storeErrors, op)
	h.mu.Unlock()
}
func (h *countingHooks) Evicted(reason string) {
	h.mu.Lock()
	if h.evicted == nil {
		h.evicted = make(map[string]int)
	}
	h.evicted[reason]++
	h.mu.Unlock()
}
func (h *countingHooks) EvictMiss(any) { h.mu.Lock(); h.evictMisses++; h.mu.Unlock() }

func newTestCache(t *testing.T, s st.Store[string, int], optsOpt func(*Options[string, int])) Cache[string, int] {
	t.Helper()
	opts := Options[string, int]{
		Store:    s,
		Executor: task.Inline{},
	}
	if optsOpt != nil {
		optsOpt(&opts)
	}
	cc, err := New[string, int](opts)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return cc
}

func mustImpl[K comparable, V any](t *testing.T, c Cache[K, V]) *cache[K, V] {
	t.Helper()
	impl, ok := c.(*cache[K, V])
	if !ok {
		t.Fatalf("unexpected concrete type for Cache")
	}
	return impl
}

func mustCached(t *testing.T, cc Cache[string, int], key string, want bool) {
	t.Helper()
	got, err := cc.ContainsKeyInCacheAsync(context.Background(), key).Result()
	if err != nil {
		t.Fatalf("ContainsKeyInCacheAsync(%q): %v", key, err)
	}
	if got != want {
		t.Fatalf("ContainsKeyInCacheAsync(%q)=%v want %v", key, got, want)
	}
}

// ==============================
// Construction
// ==============================

func TestNewRequiresStoreAndExecutor(t *testing.T) {
	if _, err := New[string, int](Options[string, int]{Executor: task.Inline{}}); err == nil {
		t.Fatal("expected error without store")
	}
	if _, err := New[string, int](Options[string, int]{Store: newFakeStore()}); err == nil {
		t.Fatal("expected error without executor")
	}
}

func TestNewDefaultUsesSharedPool(t *testing.T) {
	cc, err := NewDefault[string, int](st.NewMemory[string, int]())
	if err != nil {
		t.Fatalf("NewDefault: %v", err)
	}
	impl := mustImpl(t, cc)
	if impl.exec != task.DefaultPool() {
		t.Fatal("NewDefault should run on task.DefaultPool()")
	}
	ctx := context.Background()
	if err := cc.SetValue(ctx, "a", 1); err != nil {
		t.Fatalf("SetValue: %v", err)
	}
	if v, err := cc.GetValue(ctx, "a"); err != nil || v != 1 {
		t.Fatalf("GetValue=(%d,%v)", v, err)
	}
}

// ==============================
// Walkthrough: set, read, evict
// ==============================

func TestSetGetEvictScenario(t *testing.T) {
	ctx := context.Background()
	fs := newFakeStore()
	cc := newTestCache(t, fs, nil)
	rec := &recorder{}
	cc.OnEvicted(rec.fn)

	if err := cc.SetValueAsync(ctx, "a", 3).Err(); err != nil {
		t.Fatalf("SetValueAsync: %v", err)
	}
	mustCached(t, cc, "a", true)
	if _, sets, _, _ := fs.counts(); sets != 1 || fs.setCalls[0] != "a=3" {
		t.Fatalf("store SetValue calls=%v want [a=3]", fs.setCalls)
	}

	v, err := cc.GetValueAsync(ctx, "a").Result()
	if err != nil || v != 3 {
		t.Fatalf("GetValueAsync=(%d,%v) want 3", v, err)
	}
	if gets, _, _, _ := fs.counts(); gets != 0 {
		t.Fatalf("cached read consulted the store (%d GetValue calls)", gets)
	}

	if err := cc.EvictKeyAsync(ctx, "a").Err(); err != nil {
		t.Fatalf("EvictKeyAsync: %v", err)
	}
	if got := rec.events(); len(got) != 1 || got[0] != (eviction{"a", 3}) {
		t.Fatalf("notifications=%v want [{a 3}]", got)
	}
	mustCached(t, cc, "a", false)

	ok, err := cc.ContainsKeyAsync(ctx, "a").Result()
	if err != nil || !ok {
		t.Fatalf("ContainsKeyAsync after evict=(%v,%v) want true (store still has it)", ok, err)
	}
}

// ==============================
// Write-through
// ==============================

func TestSetWritesStoreAndMemory(t *testing.T) {
	ctx := context.Background()
	fs := newFakeStore()
	cc := newTestCache(t, fs, nil)

	for i, v := range []int{1, 2, 3} {
		if err := cc.SetValue(ctx, "k", v); err != nil {
			t.Fatalf("SetValue #%d: %v", i, err)
		}
		if sv, ok := fs.value("k"); !ok || sv != v {
			t.Fatalf("store holds (%d,%v) want %d", sv, ok, v)
		}
		if mv, ok := mustImpl(t, cc).lookup("k"); !ok || mv != v {
			t.Fatalf("memory holds (%d,%v) want %d", mv, ok, v)
		}
	}
}

func TestSetStoreFailureLeavesMemoryUntouched(t *testing.T) {
	ctx := context.Background()
	fs := newFakeStore()
	hooks := &countingHooks{}
	cc := newTestCache(t, fs, func(o *Options[string, int]) { o.Hooks = hooks })

	if err := cc.SetValue(ctx, "k", 1); err != nil {
		t.Fatalf("SetValue: %v", err)
	}

	boom := errors.New("disk full")
	fs.mu.Lock()
	fs.setErr = boom
	fs.mu.Unlock()

	err := cc.SetValueAsync(ctx, "k", 2).Err()
	if err != boom {
		t.Fatalf("store error not propagated unchanged: %v", err)
	}
	if v, _ := mustImpl(t, cc).lookup("k"); v != 1 {
		t.Fatalf("memory changed after failed write: %d", v)
	}

	err = cc.SetValueAsync(ctx, "fresh", 5).Err()
	if !errors.Is(err, boom) {
		t.Fatalf("expected store error, got %v", err)
	}
	mustCached(t, cc, "fresh", false)

	if len(hooks.storeErrors) != 2 || hooks.storeErrors[0] != "set" {
		t.Fatalf("StoreError hooks=%v", hooks.storeErrors)
	}
}

// ==============================
// Reads
// ==============================

func TestGetFallsBackToStoreAndCaches(t *testing.T) {
	ctx := context.Background()
	fs := newFakeStore()
	fs.m["k"] = 3
	hooks := &countingHooks{}
	cc := newTestCache(t, fs, func(o *Options[string, int]) { o.Hooks = hooks })

	v, err := cc.GetValueAsync(ctx, "k").Result()
	if err != nil || v != 3 {
		t.Fatalf("GetValueAsync=(%d,%v) want 3", v, err)
	}
	mustCached(t, cc, "k", true)

	// second read is served from memory
	if v, err := cc.GetValue(ctx, "k"); err != nil || v != 3 {
		t.Fatalf("GetValue=(%d,%v) want 3", v, err)
	}
	if gets, _, _, _ := fs.counts(); gets != 1 {
		t.Fatalf("store GetValue calls=%d want 1", gets)
	}
	if hooks.misses != 1 || hooks.hits != 1 {
		t.Fatalf("hits=%d misses=%d want 1/1", hooks.hits, hooks.misses)
	}
}

func TestGetStoreFailureIsNotCached(t *testing.T) {
	ctx := context.Background()
	fs := newFakeStore()
	cc := newTestCache(t, fs, nil)

	_, err := cc.GetValueAsync(ctx, "missing").Result()
	if !errors.Is(err, st.ErrNotFound) {
		t.Fatalf("expected store ErrNotFound, got %v", err)
	}
	mustCached(t, cc, "missing", false)

	boom := errors.New("connection reset")
	fs.m["k"] = 1
	fs.getErr = boom
	if _, err := cc.GetValue(ctx, "k"); err != boom {
		t.Fatalf("expected unchanged store error, got %v", err)
	}
	mustCached(t, cc, "k", false)
}

// TestGetFillLosesToConcurrentSet stalls a miss inside the store while a
// write for the same key completes, then lets the fetch finish.
func TestGetFillLosesToConcurrentSet(t *testing.T) {
	ctx := context.Background()
	fs := newFakeStore()
	fs.m["k"] = 1
	hooks := &countingHooks{}

	pool := task.NewPool("test", 2, 4)
	defer pool.Shutdown()
	cc := newTestCache(t, fs, func(o *Options[string, int]) {
		o.Executor = pool
		o.Hooks = hooks
	})

	fetched := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	fs.beforeGetReturn = func(string) {
		once.Do(func() {
			close(fetched)
			<-release
		})
	}

	get := cc.GetValueAsync(ctx, "k")
	<-fetched // the fetch read 1 and is parked before caching it

	if err := cc.SetValue(ctx, "k", 2); err != nil {
		t.Fatalf("SetValue: %v", err)
	}
	close(release)

	v, err := get.Result()
	if err != nil {
		t.Fatalf("GetValueAsync: %v", err)
	}
	if v != 2 {
		t.Fatalf("GetValueAsync=%d want 2 (first value cached wins)", v)
	}
	if mv, _ := mustImpl(t, cc).lookup("k"); mv != 2 {
		t.Fatalf("memory=%d want 2", mv)
	}
	if hooks.discarded != 1 {
		t.Fatalf("FillDiscarded=%d want 1", hooks.discarded)
	}
}

func TestSetOverwritesFilledValue(t *testing.T) {
	ctx := context.Background()
	fs := newFakeStore()
	fs.m["k"] = 1
	cc := newTestCache(t, fs, nil)

	if v, err := cc.GetValue(ctx, "k"); err != nil || v != 1 {
		t.Fatalf("GetValue=(%d,%v)", v, err)
	}
	if err := cc.SetValue(ctx, "k", 9); err != nil {
		t.Fatalf("SetValue: %v", err)
	}
	if v, err := cc.GetValue(ctx, "k"); err != nil || v != 9 {
		t.Fatalf("GetValue after set=(%d,%v) want 9", v, err)
	}
}

// ==============================
// Containment
// ==============================

func TestContainsKeyWidensToStore(t *testing.T) {
	ctx := context.Background()
	cases := []struct {
		name          string
		cached, store bool
		want          bool
	}{
		{"neither", false, false, false},
		{"store only", false, true, true},
		{"cache only", true, false, true},
		{"both", true, true, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			fs := newFakeStore()
			cc := newTestCache(t, fs, nil)
			if tc.cached {
				mustImpl(t, cc).entries["k"] = 1
			}
			if tc.store {
				fs.m["k"] = 1
			}
			got, err := cc.ContainsKeyAsync(ctx, "k").Result()
			if err != nil || got != tc.want {
				t.Fatalf("ContainsKeyAsync=(%v,%v) want %v", got, err, tc.want)
			}
			_, _, _, contains := fs.counts()
			if tc.cached && contains != 0 {
				t.Fatalf("cached key consulted the store")
			}
		})
	}
}

func TestContainsKeyInCacheNeverAsksStore(t *testing.T) {
	ctx := context.Background()
	fs := newFakeStore()
	fs.m["k"] = 1
	cc := newTestCache(t, fs, nil)

	if ok, err := cc.ContainsKeyInCache(ctx, "k"); err != nil || ok {
		t.Fatalf("ContainsKeyInCache=(%v,%v) want false", ok, err)
	}
	if gets, _, _, contains := fs.counts(); gets+contains != 0 {
		t.Fatalf("store consulted: gets=%d contains=%d", gets, contains)
	}
}

func TestContainsKeyStoreError(t *testing.T) {
	fs := newFakeStore()
	boom := errors.New("timeout")
	fs.containsErr = boom
	cc := newTestCache(t, fs, nil)

	if _, err := cc.ContainsKey(context.Background(), "k"); err != boom {
		t.Fatalf("expected unchanged store error, got %v", err)
	}
}

// ==============================
// Eviction and removal
// ==============================

func TestEvictMissFails(t *testing.T) {
	ctx := context.Background()
	fs := newFakeStore()
	fs.m["k"] = 1 // present in the store, not cached
	hooks := &countingHooks{}
	cc := newTestCache(t, fs, func(o *Options[string, int]) { o.Hooks = hooks })
	rec := &recorder{}
	cc.OnEvicted(rec.fn)

	err := cc.EvictKeyAsync(ctx, "k").Err()
	if !errors.Is(err, ErrKeyNotFound) {
		t.Fatalf("expected ErrKeyNotFound, got %v", err)
	}
	var knf *KeyNotFoundError
	if !errors.As(err, &knf) || knf.Key != "k" {
		t.Fatalf("expected *KeyNotFoundError for k, got %#v", err)
	}
	if len(rec.events()) != 0 {
		t.Fatalf("notification fired for a miss: %v", rec.events())
	}
	if hooks.evictMisses != 1 {
		t.Fatalf("EvictMiss=%d want 1", hooks.evictMisses)
	}
	if _, _, removes, _ := fs.counts(); removes != 0 {
		t.Fatal("evict touched the store")
	}
}

func TestEvictTwiceFailsSecondTime(t *testing.T) {
	ctx := context.Background()
	cc := newTestCache(t, newFakeStore(), nil)
	rec := &recorder{}
	cc.OnEvicted(rec.fn)

	_ = cc.SetValue(ctx, "k", 4)
	if err := cc.EvictKey(ctx, "k"); err != nil {
		t.Fatalf("first EvictKey: %v", err)
	}
	if err := cc.EvictKey(ctx, "k"); !errors.Is(err, ErrKeyNotFound) {
		t.Fatalf("second EvictKey: %v", err)
	}
	if got := rec.events(); len(got) != 1 {
		t.Fatalf("notifications=%v want exactly one", got)
	}
}

func TestRemoveUncachedKey(t *testing.T) {
	ctx := context.Background()
	fs := newFakeStore()
	cc := newTestCache(t, fs, nil)
	rec := &recorder{}
	cc.OnEvicted(rec.fn)

	if err := cc.RemoveKeyAsync(ctx, "k").Err(); err != nil {
		t.Fatalf("RemoveKeyAsync: %v", err)
	}
	if _, _, removes, _ := fs.counts(); removes != 1 {
		t.Fatalf("store RemoveKey calls=%d want 1", removes)
	}
	if len(rec.events()) != 0 {
		t.Fatalf("notification fired for uncached key")
	}
	mustCached(t, cc, "k", false)
	if ok, _ := cc.ContainsKey(ctx, "k"); ok {
		t.Fatal("ContainsKey true after remove")
	}
}

func TestRemoveCachedKey(t *testing.T) {
	ctx := context.Background()
	fs := newFakeStore()
	hooks := &countingHooks{}
	cc := newTestCache(t, fs, func(o *Options[string, int]) { o.Hooks = hooks })
	rec := &recorder{}
	cc.OnEvicted(rec.fn)

	_ = cc.SetValue(ctx, "k", 3)
	if err := cc.RemoveKeyAsync(ctx, "k").Err(); err != nil {
		t.Fatalf("RemoveKeyAsync: %v", err)
	}
	if _, _, removes, _ := fs.counts(); removes != 1 {
		t.Fatalf("store RemoveKey calls=%d want 1", removes)
	}
	if got := rec.events(); len(got) != 1 || got[0] != (eviction{"k", 3}) {
		t.Fatalf("notifications=%v want [{k 3}]", got)
	}
	mustCached(t, cc, "k", false)
	if ok, _ := cc.ContainsKey(ctx, "k"); ok {
		t.Fatal("ContainsKey true after remove")
	}
	if hooks.evicted["remove"] != 1 {
		t.Fatalf("Evicted hooks=%v", hooks.evicted)
	}
}

func TestRemoveStoreFailureKeepsEntry(t *testing.T) {
	ctx := context.Background()
	fs := newFakeStore()
	cc := newTestCache(t, fs, nil)
	rec := &recorder{}
	cc.OnEvicted(rec.fn)

	_ = cc.SetValue(ctx, "k", 3)
	boom := errors.New("read-only replica")
	fs.mu.Lock()
	fs.removeErr = boom
	fs.mu.Unlock()

	if err := cc.RemoveKey(ctx, "k"); err != boom {
		t.Fatalf("expected unchanged store error, got %v", err)
	}
	mustCached(t, cc, "k", true)
	if len(rec.events()) != 0 {
		t.Fatal("notification fired although removal failed")
	}
}

// ==============================
// Notification channel
// ==============================

func TestListenersRunInOrderAndUnsubscribe(t *testing.T) {
	ctx := context.Background()
	cc := newTestCache(t, newFakeStore(), nil)

	var order []string
	unsubA := cc.OnEvicted(func(string, int) { order = append(order, "a") })
	cc.OnEvicted(func(string, int) { order = append(order, "b") })

	_ = cc.SetValue(ctx, "k", 1)
	_ = cc.EvictKey(ctx, "k")
	if fmt.Sprint(order) != "[a b]" {
		t.Fatalf("order=%v want [a b]", order)
	}

	unsubA()
	unsubA() // idempotent
	order = nil
	_ = cc.SetValue(ctx, "k", 1)
	_ = cc.EvictKey(ctx, "k")
	if fmt.Sprint(order) != "[b]" {
		t.Fatalf("after unsubscribe order=%v want [b]", order)
	}
}

func TestListenerSeesKeyAlreadyGone(t *testing.T) {
	ctx := context.Background()
	cc := newTestCache(t, newFakeStore(), nil)
	impl := mustImpl(t, cc)

	var presentDuringNotify bool
	cc.OnEvicted(func(k string, _ int) {
		// map lock is held here; read the map directly
		_, presentDuringNotify = impl.entries[k]
	})
	_ = cc.SetValue(ctx, "k", 1)
	_ = cc.EvictKey(ctx, "k")
	if presentDuringNotify {
		t.Fatal("key still in memory when the notification fired")
	}
}

func TestPanickingListenerReleasesLock(t *testing.T) {
	ctx := context.Background()
	cc := newTestCache(t, newFakeStore(), nil)
	cc.OnEvicted(func(string, int) { panic("listener bug") })

	_ = cc.SetValue(ctx, "k", 1)
	if err := cc.EvictKey(ctx, "k"); !errors.Is(err, task.ErrPanic) {
		t.Fatalf("expected task.ErrPanic, got %v", err)
	}
	// lock must have been released
	done := make(chan struct{})
	go func() {
		_ = cc.Len()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("map lock leaked by panicking listener")
	}
}

// ==============================
// Misc API
// ==============================

func TestLenAndKeys(t *testing.T) {
	ctx := context.Background()
	cc := newTestCache(t, newFakeStore(), nil)
	for i := 0; i < 5; i++ {
		_ = cc.SetValue(ctx, fmt.Sprintf("k%d", i), i)
	}
	if cc.Len() != 5 {
		t.Fatalf("Len=%d want 5", cc.Len())
	}
	if keys := cc.Keys(); len(keys) != 5 {
		t.Fatalf("Keys=%v", keys)
	}
	_ = cc.EvictKey(ctx, "k0")
	if cc.Len() != 4 {
		t.Fatalf("Len after evict=%d want 4", cc.Len())
	}
}

func TestCloseClosesStoreOnce(t *testing.T) {
	fs := newFakeStore()
	cc := newTestCache(t, fs, nil)
	ctx := context.Background()
	if err := cc.Close(ctx); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := cc.Close(ctx); err != nil {
		t.Fatalf("second Close: %v", err)
	}
	if fs.closed != 1 {
		t.Fatalf("store closed %d times want 1", fs.closed)
	}
}

func TestCanceledContextFailsWithoutRunning(t *testing.T) {
	fs := newFakeStore()
	cc := newTestCache(t, fs, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := cc.SetValueAsync(ctx, "k", 1).Err(); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if _, sets, _, _ := fs.counts(); sets != 0 {
		t.Fatal("store written despite canceled context")
	}
}

// ==============================
// Concurrency
// ==============================

// TestConcurrentWritersAndReaders gives each key a single writer and many
// readers; afterwards memory must agree with the store for every cached key.
func TestConcurrentWritersAndReaders(t *testing.T) {
	ctx := context.Background()
	mem := st.NewMemory[string, int]()
	pool := task.NewPool("test", 8, 256)
	defer pool.Shutdown()

	cc, err := New[string, int](Options[string, int]{Store: mem, Executor: pool})
	if err != nil {
		t.Fatal(err)
	}

	const keys, writes, readers = 16, 50, 8
	g, gctx := errgroup.WithContext(ctx)
	for k := 0; k < keys; k++ {
		key := fmt.Sprintf("k%d", k)
		g.Go(func() error {
			for i := 1; i <= writes; i++ {
				if err := cc.SetValue(gctx, key, i); err != nil {
					return err
				}
			}
			return nil
		})
	}
	for r := 0; r < readers; r++ {
		g.Go(func() error {
			for i := 0; i < writes; i++ {
				key := fmt.Sprintf("k%d", i%keys)
				if _, err := cc.GetValue(gctx, key); err != nil && !errors.Is(err, st.ErrNotFound) {
					return err
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatalf("workers: %v", err)
	}

	impl := mustImpl(t, cc)
	for _, key := range cc.Keys() {
		mv, _ := impl.lookup(key)
		sv, err := mem.GetValue(ctx, key)
		if err != nil || mv != sv || mv != writes {
			t.Fatalf("%s: memory=%d store=(%d,%v) want %d", key, mv, sv, err, writes)
		}
	}
	if cc.Len() != keys {
		t.Fatalf("Len=%d want %d", cc.Len(), keys)
	}
}

func TestConcurrentEvictNotifiesOnce(t *testing.T) {
	ctx := context.Background()
	pool := task.NewPool("test", 8, 64)
	defer pool.Shutdown()
	cc, err := New[string, int](Options[string, int]{Store: newFakeStore(), Executor: pool})
	if err != nil {
		t.Fatal(err)
	}
	rec := &recorder{}
	cc.OnEvicted(rec.fn)
	_ = cc.SetValue(ctx, "k", 7)

	futures := make([]*task.Future[struct{}], 32)
	for i := range futures {
		futures[i] = cc.EvictKeyAsync(ctx, "k")
	}
	var ok, missed int
	for _, f := range futures {
		switch err := f.Err(); {
		case err == nil:
			ok++
		case errors.Is(err, ErrKeyNotFound):
			missed++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if ok != 1 || missed != len(futures)-1 {
		t.Fatalf("ok=%d missed=%d", ok, missed)
	}
	if got := rec.events(); len(got) != 1 || got[0] != (eviction{"k", 7}) {
		t.Fatalf("notifications=%v want one {k 7}", got)
	}
}
