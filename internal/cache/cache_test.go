package cache

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/kkahadze/mkhedruli-megruli/internal/translation"
)

type fakeStore struct {
	mu      sync.Mutex
	rows    map[string]Entry
	gets    int
	failGet error
}

func newFakeStore() *fakeStore {
	return &fakeStore{rows: make(map[string]Entry)}
}

func (f *fakeStore) Get(_ context.Context, hash string) (translation.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gets++
	if f.failGet != nil {
		return translation.Result{}, f.failGet
	}
	e, ok := f.rows[hash]
	if !ok {
		return translation.Result{}, ErrNotFound
	}
	return e.Result, nil
}

func (f *fakeStore) Upsert(_ context.Context, e Entry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows[e.Hash] = e
	return nil
}

func (f *fakeStore) List(_ context.Context) ([]Entry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []Entry
	for _, e := range f.rows {
		out = append(out, e)
	}
	return out, nil
}

var req = translation.Request{Prompt: "margali", Model: "gpt-5-2025-08-07", TargetLanguage: "english"}

func TestMemoryOnly(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	c := NewTranslationCache(nil)

	if _, ok := c.Get(ctx, req); ok {
		t.Fatal("empty cache returned a hit")
	}
	if err := c.Set(ctx, req, translation.Result{English: "Mingrelian"}); err != nil {
		t.Fatal(err)
	}
	got, ok := c.Get(ctx, req)
	if !ok || got.English != "Mingrelian" {
		t.Errorf("Get = %+v, %v", got, ok)
	}
	if err := c.Preload(ctx); err != nil {
		t.Errorf("Preload without store: %v", err)
	}
}

func TestKeySeparatesRequests(t *testing.T) {
	t.Parallel()
	other := req
	other.TargetLanguage = "georgian"
	if Key(req) == Key(other) {
		t.Error("different target languages share a key")
	}
}

func TestStoreWriteThroughAndReadBack(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := newFakeStore()

	first := NewTranslationCache(store)
	if err := first.Set(ctx, req, translation.Result{Georgian: "მეგრული"}); err != nil {
		t.Fatal(err)
	}
	row, ok := store.rows[Key(req)]
	if !ok || row.Prompt != "margali" || row.Model != req.Model {
		t.Fatalf("stored row = %+v, %v", row, ok)
	}

	second := NewTranslationCache(store)
	got, ok := second.Get(ctx, req)
	if !ok || got.Georgian != "მეგრული" {
		t.Fatalf("Get = %+v, %v", got, ok)
	}
	// The second lookup is answered from memory.
	second.Get(ctx, req)
	if store.gets != 1 {
		t.Errorf("store gets = %d, want 1", store.gets)
	}
}

func TestPreload(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := newFakeStore()
	store.rows[Key(req)] = Entry{Hash: Key(req), Result: translation.Result{English: "x"}}

	c := NewTranslationCache(store)
	if err := c.Preload(ctx); err != nil {
		t.Fatal(err)
	}
	if c.Len() != 1 {
		t.Errorf("Len = %d", c.Len())
	}
	if _, ok := c.Get(ctx, req); !ok {
		t.Error("preloaded entry missing")
	}
	if store.gets != 0 {
		t.Errorf("store gets = %d, want 0", store.gets)
	}
}

func TestStoreErrorIsMiss(t *testing.T) {
	t.Parallel()
	store := newFakeStore()
	store.failGet = errors.New("connection refused")
	c := NewTranslationCache(store)
	if _, ok := c.Get(context.Background(), req); ok {
		t.Error("failed lookup reported a hit")
	}
}
