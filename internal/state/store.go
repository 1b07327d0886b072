package state

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/five82/tinsel/internal/localstore"
)

// Keys used in the key/value store.
const (
	ElementsKey   = "christmasElements"
	LastUpdateKey = "lastElementUpdate"
)

// Store mirrors a Scene to persistent storage.
type Store interface {
	// Load returns the persisted scene. Absent or malformed entries yield an empty
	// scene with a nil error; a non-nil error means the backing store itself failed.
	Load(ctx context.Context) (Scene, error)
	Save(ctx context.Context, scene Scene) error
	Clear(ctx context.Context) error
}

// Ensure implementations satisfy Store at compile time.
var (
	_ Store = (*KVStore)(nil)
	_ Store = (*MemoryStore)(nil)
)

// KVStore persists a Scene as two local-storage style entries.
type KVStore struct {
	kv localstore.KV
}

// NewKVStore wraps kv.
func NewKVStore(kv localstore.KV) *KVStore {
	return &KVStore{kv: kv}
}

// Load implements Store.
func (s *KVStore) Load(ctx context.Context) (Scene, error) {
	var scene Scene

	raw, ok, err := s.kv.Get(ctx, ElementsKey)
	if err != nil {
		return Scene{}, fmt.Errorf("load elements: %w", err)
	}
	if ok {
		scene.Elements = decodeElements(raw)
	}

	raw, ok, err = s.kv.Get(ctx, LastUpdateKey)
	if err != nil {
		return Scene{}, fmt.Errorf("load last update: %w", err)
	}
	if ok {
		scene.LastAdditionAt = ParseTimestamp(raw)
	}
	return scene, nil
}

// Save implements Store. A zero LastAdditionAt removes the timestamp entry.
func (s *KVStore) Save(ctx context.Context, scene Scene) error {
	elements := scene.Elements
	if elements == nil {
		elements = []Element{}
	}
	payload, err := json.Marshal(elements)
	if err != nil {
		return fmt.Errorf("encode elements: %w", err)
	}
	if err := s.kv.Set(ctx, ElementsKey, string(payload)); err != nil {
		return fmt.Errorf("save elements: %w", err)
	}

	if !scene.HasLastAddition() {
		if err := s.kv.Remove(ctx, LastUpdateKey); err != nil {
			return fmt.Errorf("save last update: %w", err)
		}
		return nil
	}
	if err := s.kv.Set(ctx, LastUpdateKey, FormatTimestamp(scene.LastAdditionAt)); err != nil {
		return fmt.Errorf("save last update: %w", err)
	}
	return nil
}

// Clear implements Store.
func (s *KVStore) Clear(ctx context.Context) error {
	if err := s.kv.Remove(ctx, ElementsKey); err != nil {
		return fmt.Errorf("clear elements: %w", err)
	}
	if err := s.kv.Remove(ctx, LastUpdateKey); err != nil {
		return fmt.Errorf("clear last update: %w", err)
	}
	return nil
}

// FormatTimestamp renders t as decimal epoch milliseconds.
func FormatTimestamp(t time.Time) string {
	return strconv.FormatInt(t.UnixMilli(), 10)
}

// ParseTimestamp reads decimal epoch milliseconds. Anything else, including the
// legacy calendar-day strings, yields the zero time.
func ParseTimestamp(raw string) time.Time {
	ms, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || ms <= 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms)
}

func decodeElements(raw string) []Element {
	var items []Element
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil
	}
	// Entries without an id cannot be keyed by the view; drop them rather than the
	// whole list.
	kept := items[:0]
	for _, item := range items {
		if strings.TrimSpace(item.ID) == "" {
			continue
		}
		kept = append(kept, item)
	}
	if len(kept) == 0 {
		return nil
	}
	return kept
}

// MemoryStore keeps the scene in process. The zero value is an empty store.
type MemoryStore struct {
	mu    sync.Mutex
	scene Scene
	saves int
}

// Load implements Store.
func (m *MemoryStore) Load(context.Context) (Scene, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.scene.Clone(), nil
}

// Save implements Store.
func (m *MemoryStore) Save(_ context.Context, scene Scene) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scene = scene.Clone()
	m.saves++
	return nil
}

// Clear implements Store.
func (m *MemoryStore) Clear(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scene = Scene{}
	return nil
}

// Saves reports how many times Save has been called.
func (m *MemoryStore) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}
