package index

import (
	"context"
	"fmt"

	"github.com/lolamo/lolamo/config"
)

// IndexedChunk is a chunk promoted into the vector collection.
type IndexedChunk struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	SourceURL string    `json:"source_url"`
	Embedding []float32 `json:"embedding"`
}

// Store persists the single current collection. Implementations need not
// be goroutine-safe; the Index serializes all access.
type Store interface {
	// Append adds items to the collection.
	Append(ctx context.Context, items []IndexedChunk) error
	// Items returns everything currently stored.
	Items(ctx context.Context) ([]IndexedChunk, error)
	// Reset discards the collection's contents. Idempotent.
	Reset(ctx context.Context) error
}

type StoreType string

const (
	FileStore  StoreType = "file"
	RedisStore StoreType = "redis"
)

// NewStore creates a collection store from config.
func NewStore(cfg config.IndexConfig) (Store, error) {
	switch StoreType(cfg.Store) {
	case FileStore:
		return NewFileStore(cfg.Dir, cfg.Collection)
	case RedisStore:
		return NewRedisStore(fmt.Sprintf("%s:%s", cfg.Redis.Host, cfg.Redis.Port), cfg.Redis.Pass, cfg.Redis.DB, cfg.Collection), nil
	default:
		return nil, fmt.Errorf("unsupported store type: %s", cfg.Store)
	}
}
