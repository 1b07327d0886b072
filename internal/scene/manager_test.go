package scene

import (
	"context"
	"errors"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap/zaptest"

	"github.com/five82/tinsel/internal/generator"
	"github.com/five82/tinsel/internal/localstore"
	"github.com/five82/tinsel/internal/state"
)

var base = time.UnixMilli(1_765_000_000_000)

type providerFunc func(ctx context.Context, hint generator.Category) (generator.Image, error)

func (f providerFunc) Generate(ctx context.Context, hint generator.Category) (generator.Image, error) {
	return f(ctx, hint)
}

func failing() generator.Provider {
	return providerFunc(func(context.Context, generator.Category) (generator.Image, error) {
		return generator.Image{}, errors.New("remote down")
	})
}

type fixedClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fixedClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

func newManager(t *testing.T, store state.Store, provider generator.Provider, clock *fixedClock) *Manager {
	t.Helper()
	m := New(Options{
		Store:    store,
		Provider: provider,
		Stagger:  -1,
		Now:      clock.Now,
		Rand:     rand.New(rand.NewPCG(7, 11)),
		Logger:   zaptest.NewLogger(t),
	})
	m.Restore(context.Background())
	return m
}

func seededScene(n int, last time.Time) state.Scene {
	var scene state.Scene
	rng := rand.New(rand.NewPCG(1, 1))
	for i := 0; i < n; i++ {
		scene.Elements = append(scene.Elements, placeholderElement(rng, last))
	}
	scene.LastAdditionAt = last
	return scene
}

func TestDueCount(t *testing.T) {
	interval := 6 * time.Hour
	tests := []struct {
		name    string
		last    time.Time
		elapsed time.Duration
		want    int
	}{
		{"absent seeds one", time.Time{}, 0, 1},
		{"just added", base, 0, 0},
		{"under interval", base, 5*time.Hour + 59*time.Minute, 0},
		{"exactly one interval", base, 6 * time.Hour, 1},
		{"fourteen hours catches up two", base, 14 * time.Hour, 2},
		{"eighteen hours", base, 18 * time.Hour, 3},
		{"clock moved backwards", base, -3 * time.Hour, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DueCount(tt.last, base.Add(tt.elapsed), interval); got != tt.want {
				t.Fatalf("DueCount = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestNextDue(t *testing.T) {
	if !NextDue(time.Time{}, time.Hour).IsZero() {
		t.Fatalf("NextDue without last addition should be zero")
	}
	if got := NextDue(base, 0); !got.Equal(base.Add(DefaultInterval)) {
		t.Fatalf("NextDue = %v, want %v", got, base.Add(DefaultInterval))
	}
}

func TestCheck_SeedsFirstVisit(t *testing.T) {
	clock := &fixedClock{now: base}
	store := &state.MemoryStore{}
	m := newManager(t, store, nil, clock)

	added, err := m.Check(context.Background())
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if added != 1 {
		t.Fatalf("added = %d, want 1", added)
	}
	snap := m.Snapshot()
	if len(snap.Scene.Elements) != 1 || !snap.Scene.LastAdditionAt.Equal(base) {
		t.Fatalf("scene = %#v, want 1 element stamped %v", snap.Scene, base)
	}
	persisted, _ := store.Load(context.Background())
	if diff := cmp.Diff(snap.Scene, persisted); diff != "" {
		t.Fatalf("persisted scene differs (-memory +store):\n%s", diff)
	}
}

func TestCheck_NoDoubleAddWithinInterval(t *testing.T) {
	clock := &fixedClock{now: base}
	m := newManager(t, &state.MemoryStore{}, nil, clock)

	if _, err := m.Check(context.Background()); err != nil {
		t.Fatalf("Check: %v", err)
	}
	for _, step := range []time.Duration{0, time.Minute, 5 * time.Hour} {
		clock.Set(base.Add(step))
		added, err := m.Check(context.Background())
		if err != nil || added != 0 {
			t.Fatalf("Check after %v = %d, %v; want 0, nil", step, added, err)
		}
	}
	if n := len(m.Snapshot().Scene.Elements); n != 1 {
		t.Fatalf("elements = %d, want 1", n)
	}
}

func TestCheck_CatchesUpMissedIntervals(t *testing.T) {
	store := &state.MemoryStore{}
	_ = store.Save(context.Background(), seededScene(3, base))

	now := base.Add(14 * time.Hour)
	clock := &fixedClock{now: now}
	m := newManager(t, store, nil, clock)

	added, err := m.Check(context.Background())
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if added != 2 {
		t.Fatalf("added = %d, want 2", added)
	}
	snap := m.Snapshot()
	if len(snap.Scene.Elements) != 5 {
		t.Fatalf("elements = %d, want 5", len(snap.Scene.Elements))
	}
	if !snap.Scene.LastAdditionAt.Equal(now) {
		t.Fatalf("LastAdditionAt = %v, want due-check time %v", snap.Scene.LastAdditionAt, now)
	}
}

func TestAddElements_FallsBackToPlaceholders(t *testing.T) {
	clock := &fixedClock{now: base}
	m := newManager(t, &state.MemoryStore{}, failing(), clock)

	added, err := m.AddElements(context.Background(), 4)
	if err != nil {
		t.Fatalf("AddElements: %v", err)
	}
	if added != 4 {
		t.Fatalf("added = %d, want 4", added)
	}

	glyphs := make(map[string]bool)
	for _, g := range Palette() {
		glyphs[g.Symbol] = true
	}
	snap := m.Snapshot()
	for _, el := range snap.Scene.Elements {
		if !glyphs[el.Visual] {
			t.Fatalf("element visual %q is not a placeholder glyph", el.Visual)
		}
	}
	if snap.ConsecutiveFailures != 4 || !snap.IsOffline() {
		t.Fatalf("failures = %d offline=%v, want 4 true", snap.ConsecutiveFailures, snap.IsOffline())
	}
}

func TestAddElements_UsesRemoteImages(t *testing.T) {
	clock := &fixedClock{now: base}
	provider := providerFunc(func(context.Context, generator.Category) (generator.Image, error) {
		return generator.Image{URL: "https://cdn.example/gift.png", Width: 512, Height: 512}, nil
	})
	m := newManager(t, &state.MemoryStore{}, provider, clock)

	if _, err := m.AddElements(context.Background(), 2); err != nil {
		t.Fatalf("AddElements: %v", err)
	}
	for _, el := range m.Snapshot().Scene.Elements {
		if !el.IsImage() || el.Size != (state.Size{Width: 200, Height: 200}) {
			t.Fatalf("element = %#v, want 200x200 image", el)
		}
	}
}

func TestAddElements_NoCredentialsIsNotAFailure(t *testing.T) {
	clock := &fixedClock{now: base}
	m := newManager(t, &state.MemoryStore{}, generator.Unavailable{}, clock)

	if _, err := m.AddElements(context.Background(), 3); err != nil {
		t.Fatalf("AddElements: %v", err)
	}
	snap := m.Snapshot()
	if len(snap.Scene.Elements) != 3 || snap.ConsecutiveFailures != 0 {
		t.Fatalf("elements=%d failures=%d, want 3 and 0", len(snap.Scene.Elements), snap.ConsecutiveFailures)
	}
}

func TestPlacementWithinBounds(t *testing.T) {
	rng := rand.New(rand.NewPCG(42, 42))
	for i := 0; i < 500; i++ {
		el := placeholderElement(rng, base)
		if el.Position.X < 10 || el.Position.X >= 70 || el.Position.Y < 30 || el.Position.Y >= 80 {
			t.Fatalf("position out of bounds: %#v", el.Position)
		}
		if el.StackOrder < 1 || el.StackOrder > 20 {
			t.Fatalf("stack order out of bounds: %d", el.StackOrder)
		}
		if el.ID == "" {
			t.Fatalf("empty id")
		}
	}
}

func TestReset_RequiresConfirmation(t *testing.T) {
	ctx := context.Background()
	kv := &localstore.Memory{}
	clock := &fixedClock{now: base}
	m := newManager(t, state.NewKVStore(kv), nil, clock)
	if _, err := m.AddElements(ctx, 2); err != nil {
		t.Fatalf("AddElements: %v", err)
	}

	for name, confirm := range map[string]Confirmer{
		"nil":      nil,
		"declined": func() bool { return false },
	} {
		done, err := m.Reset(ctx, confirm)
		if err != nil || done {
			t.Fatalf("Reset(%s) = %v, %v; want false, nil", name, done, err)
		}
		if len(m.Snapshot().Scene.Elements) != 2 {
			t.Fatalf("Reset(%s) changed the scene", name)
		}
	}

	done, err := m.Reset(ctx, func() bool { return true })
	if err != nil || !done {
		t.Fatalf("Reset(confirmed) = %v, %v; want true, nil", done, err)
	}
	snap := m.Snapshot()
	if len(snap.Scene.Elements) != 0 || snap.Scene.HasLastAddition() {
		t.Fatalf("scene after reset = %#v, want empty", snap.Scene)
	}
	for _, key := range []string{state.ElementsKey, state.LastUpdateKey} {
		if _, ok, _ := kv.Get(ctx, key); ok {
			t.Fatalf("%s still persisted after reset", key)
		}
	}

	// A reset scene is seeded again on the next check.
	added, err := m.Check(ctx)
	if err != nil || added != 1 {
		t.Fatalf("Check after reset = %d, %v; want 1, nil", added, err)
	}
}

func TestRestore_RoundTripsThroughKV(t *testing.T) {
	ctx := context.Background()
	kv := &localstore.Memory{}
	clock := &fixedClock{now: base}

	first := newManager(t, state.NewKVStore(kv), failing(), clock)
	if _, err := first.AddElements(ctx, 3); err != nil {
		t.Fatalf("AddElements: %v", err)
	}
	want := first.Snapshot().Scene

	second := newManager(t, state.NewKVStore(kv), nil, clock)
	got := second.Snapshot().Scene
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("restored scene differs (-want +got):\n%s", diff)
	}
}

func TestRestore_MalformedStorageIsEmpty(t *testing.T) {
	ctx := context.Background()
	kv := &localstore.Memory{}
	_ = kv.Set(ctx, state.ElementsKey, "definitely not json")
	_ = kv.Set(ctx, state.LastUpdateKey, "Mon Dec 01 2025")

	m := newManager(t, state.NewKVStore(kv), nil, &fixedClock{now: base})
	snap := m.Snapshot()
	if len(snap.Scene.Elements) != 0 || snap.Scene.HasLastAddition() {
		t.Fatalf("scene = %#v, want empty", snap.Scene)
	}
}

type brokenStore struct{ state.MemoryStore }

func (*brokenStore) Load(context.Context) (state.Scene, error) {
	return state.Scene{}, errors.New("disk on fire")
}

func (*brokenStore) Save(context.Context, state.Scene) error {
	return errors.New("disk on fire")
}

func TestStoreFailuresDoNotStopTheScene(t *testing.T) {
	m := newManager(t, &brokenStore{}, nil, &fixedClock{now: base})
	if m.Snapshot().LastError == nil {
		t.Fatalf("LastError = nil after failed restore")
	}
	added, err := m.Check(context.Background())
	if err != nil || added != 1 {
		t.Fatalf("Check = %d, %v; want 1, nil", added, err)
	}
	snap := m.Snapshot()
	if len(snap.Scene.Elements) != 1 || snap.LastError == nil {
		t.Fatalf("snapshot = %#v, want 1 element and recorded error", snap)
	}
}

// blockingProvider parks every call until release is closed.
type blockingProvider struct {
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

func newBlockingProvider() *blockingProvider {
	return &blockingProvider{entered: make(chan struct{}), release: make(chan struct{})}
}

func (b *blockingProvider) Generate(ctx context.Context, _ generator.Category) (generator.Image, error) {
	b.once.Do(func() { close(b.entered) })
	select {
	case <-b.release:
	case <-ctx.Done():
		return generator.Image{}, ctx.Err()
	}
	return generator.Image{}, errors.New("no image")
}

func TestCheck_ReturnsBusyWhileCycleInFlight(t *testing.T) {
	provider := newBlockingProvider()
	m := newManager(t, &state.MemoryStore{}, provider, &fixedClock{now: base})

	type result struct {
		added int
		err   error
	}
	done := make(chan result, 1)
	go func() {
		added, err := m.Check(context.Background())
		done <- result{added, err}
	}()

	<-provider.entered
	if !m.Snapshot().Generating {
		t.Fatalf("Generating = false while provider is running")
	}
	if _, err := m.Check(context.Background()); !errors.Is(err, ErrBusy) {
		t.Fatalf("overlapping Check error = %v, want ErrBusy", err)
	}
	if _, err := m.AddNow(context.Background()); !errors.Is(err, ErrBusy) {
		t.Fatalf("overlapping AddNow error = %v, want ErrBusy", err)
	}

	close(provider.release)
	res := <-done
	if res.err != nil || res.added != 1 {
		t.Fatalf("first Check = %d, %v; want 1, nil", res.added, res.err)
	}
	if n := len(m.Snapshot().Scene.Elements); n != 1 {
		t.Fatalf("elements = %d, want 1", n)
	}
}

func TestReset_DuringCycleDropsPendingAdditions(t *testing.T) {
	provider := newBlockingProvider()
	store := &state.MemoryStore{}
	m := newManager(t, store, provider, &fixedClock{now: base})

	done := make(chan int, 1)
	go func() {
		added, _ := m.AddElements(context.Background(), 3)
		done <- added
	}()

	<-provider.entered
	if ok, err := m.Reset(context.Background(), func() bool { return true }); !ok || err != nil {
		t.Fatalf("Reset = %v, %v", ok, err)
	}
	close(provider.release)

	if added := <-done; added != 0 {
		t.Fatalf("added = %d after reset, want 0", added)
	}
	if n := len(m.Snapshot().Scene.Elements); n != 0 {
		t.Fatalf("elements = %d after reset, want 0", n)
	}
	persisted, _ := store.Load(context.Background())
	if len(persisted.Elements) != 0 {
		t.Fatalf("persisted elements = %d after reset, want 0", len(persisted.Elements))
	}
}

func TestAddElements_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	m := newManager(t, &state.MemoryStore{}, nil, &fixedClock{now: base})
	added, err := m.AddElements(ctx, 3)
	if err != nil {
		t.Fatalf("AddElements: %v", err)
	}
	if added != 0 {
		t.Fatalf("added = %d with cancelled context, want 0", added)
	}
}

func TestAddElements_StaggersAdditions(t *testing.T) {
	const stagger = 20 * time.Millisecond
	m := New(Options{
		Store:   &state.MemoryStore{},
		Stagger: stagger,
		Now:     func() time.Time { return base },
		Logger:  zaptest.NewLogger(t),
	})

	start := time.Now()
	added, err := m.AddElements(context.Background(), 3)
	if err != nil {
		t.Fatalf("AddElements: %v", err)
	}
	if added != 3 {
		t.Fatalf("added = %d, want 3", added)
	}
	if elapsed := time.Since(start); elapsed < 2*stagger {
		t.Fatalf("three additions took %s, want at least %s", elapsed, 2*stagger)
	}
}

func TestAddElements_CancelDuringStagger(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var calls atomic.Int32
	m := New(Options{
		Store:   &state.MemoryStore{},
		Stagger: time.Minute,
		Now:     func() time.Time { return base },
		Logger:  zaptest.NewLogger(t),
		OnChange: func() {
			// progress start, then the first append
			if calls.Add(1) == 2 {
				cancel()
			}
		},
	})

	done := make(chan int, 1)
	go func() {
		added, _ := m.AddElements(ctx, 3)
		done <- added
	}()

	select {
	case added := <-done:
		if added != 1 {
			t.Fatalf("added = %d after cancel during stagger, want 1", added)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("AddElements did not return after cancel")
	}
	if got := len(m.Snapshot().Scene.Elements); got != 1 {
		t.Fatalf("scene has %d elements, want 1", got)
	}
}

func TestNew_ZeroStaggerUsesDefault(t *testing.T) {
	if m := New(Options{}); m.stagger != DefaultStagger {
		t.Fatalf("stagger = %s, want %s", m.stagger, DefaultStagger)
	}
	if m := New(Options{Stagger: -1}); m.stagger > 0 {
		t.Fatalf("negative stagger should disable the delay, got %s", m.stagger)
	}
}

func TestOnChangeFiresPerAppend(t *testing.T) {
	var mu sync.Mutex
	calls := 0
	m := New(Options{
		Store:   &state.MemoryStore{},
		Stagger: -1,
		Now:     func() time.Time { return base },
		Logger:  zaptest.NewLogger(t),
		OnChange: func() {
			mu.Lock()
			calls++
			mu.Unlock()
		},
	})
	if _, err := m.AddElements(context.Background(), 2); err != nil {
		t.Fatalf("AddElements: %v", err)
	}
	mu.Lock()
	defer mu.Unlock()
	// progress start + two appends + progress end
	if calls != 4 {
		t.Fatalf("OnChange calls = %d, want 4", calls)
	}
}
