package index

import (
	"context"
	"fmt"
	"log"
	"math"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// Embedder turns texts into vectors. Implementations are stateless and
// safe for concurrent use.
type Embedder interface {
	CreateEmbedding(ctx context.Context, texts []string) ([][]float32, error)
}

// ContextItem is the read-only projection of an indexed chunk returned
// by a similarity query.
type ContextItem struct {
	Content string
	Source  string
}

// Index owns the single current vector collection. All connections share
// one Index; its mutex is the serialization point for retrieval cycles,
// so a query never observes a half-populated collection and concurrent
// rebuilds cannot interleave.
type Index struct {
	mu        sync.Mutex
	store     Store
	embedder  Embedder
	batchSize int
	logger    *log.Logger
}

// Input is a chunk to be embedded and stored.
type Input struct {
	Text      string
	SourceURL string
}

// New creates an Index over the given store and embedder.
func New(store Store, embedder Embedder, batchSize int) *Index {
	if batchSize <= 0 {
		batchSize = 10
	}
	return &Index{
		store:     store,
		embedder:  embedder,
		batchSize: batchSize,
		logger:    log.New(log.Writer(), "[INDEX] ", log.LstdFlags),
	}
}

// Reset discards all stored vectors and metadata, leaving an empty
// collection under the same identity. Idempotent.
func (ix *Index) Reset(ctx context.Context) error {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	return ix.store.Reset(ctx)
}

// Add embeds the chunks and stores them with fresh ids.
func (ix *Index) Add(ctx context.Context, chunks []Input) error {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	return ix.add(ctx, chunks)
}

// Rebuild atomically replaces the collection's contents: the previous
// contents are discarded and the chunks are embedded and stored, all
// under one hold of the serialization point.
func (ix *Index) Rebuild(ctx context.Context, chunks []Input) error {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	if err := ix.store.Reset(ctx); err != nil {
		return err
	}
	return ix.add(ctx, chunks)
}

// add embeds in bounded batches. A failed batch gets one retry, then the
// error is surfaced; chunks are never silently dropped.
func (ix *Index) add(ctx context.Context, chunks []Input) error {
	for start := 0; start < len(chunks); start += ix.batchSize {
		end := start + ix.batchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		batch := chunks[start:end]
		texts := make([]string, len(batch))
		for i, c := range batch {
			texts[i] = c.Text
		}

		vecs, err := ix.embedder.CreateEmbedding(ctx, texts)
		if err != nil {
			ix.logger.Printf("embedding batch failed, retrying: %v", err)
			vecs, err = ix.embedder.CreateEmbedding(ctx, texts)
			if err != nil {
				return fmt.Errorf("embed batch: %w", err)
			}
		}
		if len(vecs) != len(batch) {
			return fmt.Errorf("embed batch: got %d vectors for %d chunks", len(vecs), len(batch))
		}

		items := make([]IndexedChunk, len(batch))
		for i, c := range batch {
			items[i] = IndexedChunk{
				ID:        uuid.NewString(),
				Text:      c.Text,
				SourceURL: c.SourceURL,
				Embedding: vecs[i],
			}
		}
		if err := ix.store.Append(ctx, items); err != nil {
			return fmt.Errorf("store batch: %w", err)
		}
	}
	return nil
}

// Query embeds text and returns the k stored items closest by cosine
// similarity. An empty collection or a non-positive k yields an empty
// result, not an error.
func (ix *Index) Query(ctx context.Context, text string, k int) ([]ContextItem, error) {
	if k <= 0 {
		return nil, nil
	}
	ix.mu.Lock()
	defer ix.mu.Unlock()

	items, err := ix.store.Items(ctx)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, nil
	}

	vecs, err := ix.embedder.CreateEmbedding(ctx, []string{text})
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	q := vecs[0]

	type scored struct {
		idx   int
		score float64
	}
	scoreds := make([]scored, len(items))
	for i, it := range items {
		scoreds[i] = scored{idx: i, score: cosine(q, it.Embedding)}
	}
	sort.SliceStable(scoreds, func(a, b int) bool { return scoreds[a].score > scoreds[b].score })

	if k > len(scoreds) {
		k = len(scoreds)
	}
	out := make([]ContextItem, 0, k)
	for _, sc := range scoreds[:k] {
		out = append(out, ContextItem{Content: items[sc.idx].Text, Source: items[sc.idx].SourceURL})
	}
	return out, nil
}

func cosine(a, b []float32) float64 {
	var dot, na, nb float64
	n := min(len(a), len(b))
	for i := 0; i < n; i++ {
		ai := float64(a[i])
		bi := float64(b[i])
		dot += ai * bi
		na += ai * ai
		nb += bi * bi
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
