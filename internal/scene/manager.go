package scene

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/five82/tinsel/internal/generator"
	"github.com/five82/tinsel/internal/leonardo"
	"github.com/five82/tinsel/internal/state"
)

const (
	DefaultStagger         = time.Second
	DefaultGenerateTimeout = 45 * time.Second
)

// ErrBusy is returned when an add cycle is already running.
var ErrBusy = errors.New("scene: update already in progress")

// Confirmer gates destructive actions. It must block until the user has answered.
type Confirmer func() bool

// Options configure a Manager.
type Options struct {
	Store    state.Store
	Provider generator.Provider // nil uses placeholders only
	Interval time.Duration      // zero uses DefaultInterval
	Stagger  time.Duration      // delay between additions in one cycle; negative disables
	// GenerateTimeout bounds a single provider call. Zero uses DefaultGenerateTimeout.
	GenerateTimeout time.Duration
	Now             func() time.Time
	Rand            *rand.Rand
	Logger          *zap.Logger
	// OnChange is called after every append and reset, outside of any lock.
	OnChange func()
}

// Snapshot is a point-in-time copy of the manager's state.
type Snapshot struct {
	Scene      state.Scene
	Interval   time.Duration
	Generating bool
	Pending    int // additions left in the running cycle
	LastCheck  time.Time
	LastError  error
	// ConsecutiveFailures counts remote provider failures since the last success.
	ConsecutiveFailures int
}

// IsOffline reports whether the remote provider has failed repeatedly.
func (s Snapshot) IsOffline() bool {
	return s.ConsecutiveFailures >= 2
}

// NextDue returns when the next addition is due; the zero time means now.
func (s Snapshot) NextDue() time.Time {
	return NextDue(s.Scene.LastAdditionAt, s.Interval)
}

// Manager owns the scene and decides when it grows.
type Manager struct {
	store      state.Store
	provider   generator.Provider
	interval   time.Duration
	stagger    time.Duration
	genTimeout time.Duration
	now        func() time.Time
	logger     *zap.Logger
	onChange   func()

	guard *semaphore.Weighted

	mu         sync.RWMutex
	scene      state.Scene
	epoch      uint64
	generating bool
	pending    int
	lastCheck  time.Time
	lastErr    error
	failures   int

	rngMu sync.Mutex
	rng   *rand.Rand
}

// New builds a Manager. Call Restore before the first Check.
func New(opts Options) *Manager {
	m := &Manager{
		store:      opts.Store,
		provider:   opts.Provider,
		interval:   opts.Interval,
		stagger:    opts.Stagger,
		genTimeout: opts.GenerateTimeout,
		now:        opts.Now,
		logger:     opts.Logger,
		onChange:   opts.OnChange,
		rng:        opts.Rand,
		guard:      semaphore.NewWeighted(1),
	}
	if m.store == nil {
		m.store = &state.MemoryStore{}
	}
	if m.interval <= 0 {
		m.interval = DefaultInterval
	}
	if m.stagger == 0 {
		m.stagger = DefaultStagger
	}
	if m.genTimeout <= 0 {
		m.genTimeout = DefaultGenerateTimeout
	}
	if m.now == nil {
		m.now = time.Now
	}
	if m.logger == nil {
		m.logger = zap.NewNop()
	}
	if m.rng == nil {
		m.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return m
}

// Restore loads the persisted scene. It never fails: a store error leaves an
// empty scene and is recorded in the snapshot.
func (m *Manager) Restore(ctx context.Context) {
	scene, err := m.store.Load(ctx)

	m.mu.Lock()
	if err != nil {
		m.logger.Warn("restore scene failed, starting empty", zap.Error(err))
		m.lastErr = err
		scene = state.Scene{}
	}
	m.scene = scene
	m.mu.Unlock()

	m.logger.Info("scene restored",
		zap.Int("elements", len(scene.Elements)),
		zap.Time("last_addition", scene.LastAdditionAt),
	)
	m.changed()
}

// Check runs one due-check and adds every pending element. It returns the
// number of elements added, or ErrBusy when another cycle holds the guard.
func (m *Manager) Check(ctx context.Context) (int, error) {
	if !m.guard.TryAcquire(1) {
		return 0, ErrBusy
	}
	defer m.guard.Release(1)

	now := m.clock()
	m.mu.Lock()
	last := m.scene.LastAdditionAt
	epoch := m.epoch
	m.lastCheck = now
	m.mu.Unlock()

	due := DueCount(last, now, m.interval)
	if due == 0 {
		m.logger.Debug("scene not due", zap.Time("last_addition", last))
		return 0, nil
	}
	m.logger.Info("scene due", zap.Int("pending", due), zap.Time("last_addition", last))
	return m.addElements(ctx, due, now, epoch), nil
}

// AddElements adds count elements right away, regardless of the schedule, and
// stamps the scene with the current time.
func (m *Manager) AddElements(ctx context.Context, count int) (int, error) {
	if count <= 0 {
		return 0, nil
	}
	if !m.guard.TryAcquire(1) {
		return 0, ErrBusy
	}
	defer m.guard.Release(1)

	now := m.clock()
	m.mu.Lock()
	epoch := m.epoch
	m.lastCheck = now
	m.mu.Unlock()
	return m.addElements(ctx, count, now, epoch), nil
}

// AddNow adds a single element immediately and restarts the interval.
func (m *Manager) AddNow(ctx context.Context) (int, error) {
	return m.AddElements(ctx, 1)
}

// Reset clears the scene and its persisted mirror once confirm approves. A nil
// or declining Confirmer leaves everything untouched and returns false.
func (m *Manager) Reset(ctx context.Context, confirm Confirmer) (bool, error) {
	if confirm == nil || !confirm() {
		m.logger.Info("scene reset declined")
		return false, nil
	}

	m.mu.Lock()
	m.epoch++
	m.scene = state.Scene{}
	m.pending = 0
	err := m.store.Clear(ctx)
	if err != nil {
		m.lastErr = err
	} else {
		m.lastErr = nil
	}
	m.mu.Unlock()

	m.changed()
	if err != nil {
		m.logger.Error("clear persisted scene failed", zap.Error(err))
		return true, fmt.Errorf("clear scene: %w", err)
	}
	m.logger.Info("scene reset")
	return true, nil
}

// Snapshot returns a copy of the current state.
func (m *Manager) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	snap := Snapshot{
		Scene:               m.scene.Clone(),
		Interval:            m.interval,
		Generating:          m.generating,
		Pending:             m.pending,
		LastCheck:           m.lastCheck,
		ConsecutiveFailures: m.failures,
	}
	if m.lastErr != nil {
		snap.LastError = fmt.Errorf("%w", m.lastErr)
	}
	return snap
}

func (m *Manager) addElements(ctx context.Context, count int, stamp time.Time, epoch uint64) int {
	m.setProgress(true, count)
	defer m.setProgress(false, 0)

	added := 0
	for i := 0; i < count; i++ {
		if i > 0 && m.stagger > 0 {
			if err := sleep(ctx, m.stagger); err != nil {
				break
			}
		}
		el := m.nextElement(ctx)
		if ctx.Err() != nil {
			break
		}
		if !m.appendElement(ctx, el, stamp, epoch, count-i-1) {
			m.logger.Info("scene reset during update, dropping remaining additions")
			break
		}
		added++
		m.changed()
	}
	m.logger.Info("scene updated", zap.Int("added", added), zap.Int("requested", count))
	return added
}

// appendElement appends el and persists the scene while holding the lock, so a
// concurrent Reset either happens before (epoch mismatch) or after the write.
func (m *Manager) appendElement(ctx context.Context, el state.Element, stamp time.Time, epoch uint64, remaining int) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.epoch != epoch {
		return false
	}
	m.scene.Elements = append(m.scene.Elements, el)
	m.scene.LastAdditionAt = stamp
	m.pending = remaining

	if err := m.store.Save(ctx, m.scene); err != nil {
		// In-memory state stays authoritative; the next save retries.
		m.lastErr = err
		m.logger.Warn("persist scene failed", zap.Error(err))
	} else {
		m.lastErr = nil
	}
	return true
}

func (m *Manager) nextElement(ctx context.Context) state.Element {
	if m.provider != nil {
		gctx, cancel := context.WithTimeout(ctx, m.genTimeout)
		img, err := m.provider.Generate(gctx, "")
		cancel()
		if err == nil {
			m.recordProvider(nil)
			m.rngMu.Lock()
			defer m.rngMu.Unlock()
			return imageElement(img, m.rng, m.clock())
		}
		m.recordProvider(err)
	}

	m.rngMu.Lock()
	defer m.rngMu.Unlock()
	return placeholderElement(m.rng, m.clock())
}

func (m *Manager) recordProvider(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	switch {
	case err == nil:
		m.failures = 0
	case errors.Is(err, leonardo.ErrNoCredentials), errors.Is(err, generator.ErrUnavailable):
		m.logger.Debug("remote generation unavailable, using placeholder")
	default:
		m.failures++
		m.logger.Warn("remote generation failed, using placeholder",
			zap.Error(err),
			zap.Int("consecutive_failures", m.failures),
		)
	}
}

func (m *Manager) setProgress(generating bool, pending int) {
	m.mu.Lock()
	m.generating = generating
	m.pending = pending
	m.mu.Unlock()
	m.changed()
}

func (m *Manager) changed() {
	if m.onChange != nil {
		m.onChange()
	}
}

// clock returns now at millisecond precision, the resolution of the persisted
// timestamp.
func (m *Manager) clock() time.Time {
	return m.now().Truncate(time.Millisecond)
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
