package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/ukydev/office-duty-card/internal/models"
)

const (
	listKey    = "cards:list"
	listGenKey = "cards:list:gen"
)

// ListCache keeps the full, ordered card list for a bounded time. Entries are
// tagged with the generation they were read under; Invalidate starts a new
// generation, so a list read that raced a mutation is never served.
type ListCache struct {
	kv  KVStore
	ttl time.Duration
}

type listEntry struct {
	Gen   string        `json:"gen"`
	Cards []models.Card `json:"cards"`
}

func NewListCache(kv KVStore, ttl time.Duration) *ListCache {
	return &ListCache{kv: kv, ttl: ttl}
}

// Generation returns the current cache generation. Read it before loading
// the list from the store and pass it to Set.
func (c *ListCache) Generation(ctx context.Context) (string, error) {
	gen, err := c.kv.Get(ctx, listGenKey)
	if errors.Is(err, ErrCacheMiss) {
		return "", nil
	}
	return gen, err
}

// Get returns the cached list or ErrCacheMiss.
func (c *ListCache) Get(ctx context.Context) ([]models.Card, error) {
	raw, err := c.kv.Get(ctx, listKey)
	if err != nil {
		return nil, err
	}
	var entry listEntry
	if err := json.Unmarshal([]byte(raw), &entry); err != nil {
		_ = c.kv.Delete(ctx, listKey)
		return nil, ErrCacheMiss
	}
	gen, err := c.Generation(ctx)
	if err != nil {
		return nil, err
	}
	if entry.Gen != gen {
		return nil, ErrCacheMiss
	}
	return entry.Cards, nil
}

// Set caches cards as read under gen.
func (c *ListCache) Set(ctx context.Context, gen string, cards []models.Card) error {
	raw, err := json.Marshal(listEntry{Gen: gen, Cards: cards})
	if err != nil {
		return fmt.Errorf("encode card list: %w", err)
	}
	return c.kv.Set(ctx, listKey, string(raw), c.ttl)
}

// Invalidate starts a new generation and drops the cached list.
func (c *ListCache) Invalidate(ctx context.Context) error {
	if err := c.kv.Set(ctx, listGenKey, uuid.NewString(), 0); err != nil {
		return fmt.Errorf("bump card list generation: %w", err)
	}
	return c.kv.Delete(ctx, listKey)
}
