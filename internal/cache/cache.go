package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/kkahadze/mkhedruli-megruli/internal/textutil"
	"github.com/kkahadze/mkhedruli-megruli/internal/translation"
)

// ErrNotFound is returned by a Store when no row matches.
var ErrNotFound = errors.New("cache: not found")

// Entry is one persisted translation.
type Entry struct {
	Hash           string
	Prompt         string
	Model          string
	TargetLanguage string
	Result         translation.Result
}

// Store persists cache entries.
type Store interface {
	Get(ctx context.Context, hash string) (translation.Result, error)
	Upsert(ctx context.Context, e Entry) error
	List(ctx context.Context) ([]Entry, error)
}

// TranslationCache provides in-memory caching for translations, optionally
// backed by a persistent Store.
type TranslationCache struct {
	store  Store
	mu     sync.RWMutex
	memory map[string]translation.Result // hash → result
}

// NewTranslationCache creates a cache. store may be nil for memory only.
func NewTranslationCache(store Store) *TranslationCache {
	return &TranslationCache{
		store:  store,
		memory: make(map[string]translation.Result),
	}
}

// Key identifies a request by model, target language and prompt.
func Key(req translation.Request) string {
	return textutil.Hash(req.Model, req.TargetLanguage, req.Prompt)
}

// Get retrieves a cached translation.
func (c *TranslationCache) Get(ctx context.Context, req translation.Request) (translation.Result, bool) {
	hash := Key(req)

	c.mu.RLock()
	if v, ok := c.memory[hash]; ok {
		c.mu.RUnlock()
		return v, true
	}
	c.mu.RUnlock()

	if c.store == nil {
		return translation.Result{}, false
	}

	res, err := c.store.Get(ctx, hash)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			log.Warn().Err(err).Msg("Cache lookup failed")
		}
		return translation.Result{}, false
	}

	c.mu.Lock()
	c.memory[hash] = res
	c.mu.Unlock()

	return res, true
}

// Set stores a translation in memory and in the backing store.
func (c *TranslationCache) Set(ctx context.Context, req translation.Request, res translation.Result) error {
	hash := Key(req)

	c.mu.Lock()
	c.memory[hash] = res
	c.mu.Unlock()

	if c.store == nil {
		return nil
	}

	err := c.store.Upsert(ctx, Entry{
		Hash:           hash,
		Prompt:         req.Prompt,
		Model:          req.Model,
		TargetLanguage: req.TargetLanguage,
		Result:         res,
	})
	if err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}

// Preload loads all stored translations into memory.
func (c *TranslationCache) Preload(ctx context.Context) error {
	if c.store == nil {
		return nil
	}

	rows, err := c.store.List(ctx)
	if err != nil {
		return fmt.Errorf("preload cache: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for _, row := range rows {
		c.memory[row.Hash] = row.Result
	}

	log.Info().Int("count", len(rows)).Msg("Preloaded translation cache")
	return nil
}

// Len reports the number of translations held in memory.
func (c *TranslationCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.memory)
}
