package rag

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/lolamo/lolamo/config"
	"github.com/lolamo/lolamo/internal/index"
	"github.com/lolamo/lolamo/tools/web_fetch"
	"github.com/lolamo/lolamo/tools/web_search"
)

// NoContextFound is what Assemble returns when nothing was retrieved.
const NoContextFound = "No relevant context found."

// webSearchTriggers gate fresh retrieval on an explicit request in the
// question. Kept as a plain substring match on the lowercased text.
var webSearchTriggers = []string{"search the web", "find information about"}

// VectorIndex is the slice of the index the assembler drives.
type VectorIndex interface {
	Rebuild(ctx context.Context, chunks []index.Input) error
	Query(ctx context.Context, text string, k int) ([]index.ContextItem, error)
}

// Assembler decides whether a question needs fresh web retrieval and, if
// so, runs the full cycle: search, fetch each result, chunk, keep the
// lexically most relevant chunks, rebuild the vector collection, then
// query it for the final context set.
type Assembler struct {
	searcher web_search.WebSearcher
	fetcher  web_fetch.WebFetcher
	index    VectorIndex
	cfg      config.RetrievalConfig
	numWeb   int
	logger   *log.Logger
}

// NewAssembler creates a context assembler.
func NewAssembler(searcher web_search.WebSearcher, fetcher web_fetch.WebFetcher, ix VectorIndex, cfg config.RetrievalConfig, numResults int) *Assembler {
	if numResults <= 0 {
		numResults = 10
	}
	return &Assembler{
		searcher: searcher,
		fetcher:  fetcher,
		index:    ix,
		cfg:      cfg,
		numWeb:   numResults,
		logger:   log.New(log.Writer(), "[RAG] ", log.LstdFlags),
	}
}

// Assemble returns the formatted context for a question. Questions
// without a trigger phrase cause no network or embedding calls at all.
func (a *Assembler) Assemble(ctx context.Context, question string) (string, error) {
	if !needsRetrieval(question) {
		return NoContextFound, nil
	}

	items, err := a.retrieve(ctx, question)
	if err != nil {
		return "", err
	}
	return FormatContext(items), nil
}

func needsRetrieval(question string) bool {
	q := strings.ToLower(question)
	for _, t := range webSearchTriggers {
		if strings.Contains(q, t) {
			return true
		}
	}
	return false
}

func (a *Assembler) retrieve(ctx context.Context, question string) ([]index.ContextItem, error) {
	t0 := time.Now()
	chunks, err := a.gatherChunks(ctx, question)
	if err != nil {
		return nil, err
	}
	kept := FilterRelevant(question, chunks, a.cfg.TopN)

	inputs := make([]index.Input, len(kept))
	for i, c := range kept {
		inputs[i] = index.Input{Text: c.Text, SourceURL: c.SourceURL}
	}
	if err := a.index.Rebuild(ctx, inputs); err != nil {
		return nil, fmt.Errorf("rebuild collection: %w", err)
	}
	retrievalCycleDuration.Observe(time.Since(t0).Seconds())
	a.logger.Printf("retrieval cycle: %d chunks, %d kept, %s", len(chunks), len(kept), time.Since(t0).Round(time.Millisecond))

	t1 := time.Now()
	items, err := a.index.Query(ctx, question, a.cfg.ContextK)
	if err != nil {
		return nil, fmt.Errorf("context query: %w", err)
	}
	contextQueryDuration.Observe(time.Since(t1).Seconds())
	return items, nil
}

// gatherChunks searches the web and chunks every page it can fetch.
// Per-URL failures are logged and skipped; only the search call itself
// can fail the cycle.
func (a *Assembler) gatherChunks(ctx context.Context, query string) ([]Chunk, error) {
	results, err := a.searcher.Discover(ctx, query, a.numWeb)
	if err != nil {
		return nil, fmt.Errorf("web search: %w", err)
	}

	var chunks []Chunk
	for _, r := range results {
		page, err := a.fetcher.Exec(ctx, r.URL)
		if err != nil {
			fetchFailures.Inc()
			a.logger.Printf("skipping %s: %v", r.URL, err)
			continue
		}
		if strings.TrimSpace(page.Text) == "" {
			continue
		}
		for _, part := range SplitText(page.Text, a.cfg.ChunkSize, a.cfg.ChunkOverlap) {
			chunks = append(chunks, Chunk{Text: part, SourceURL: page.URL})
		}
	}
	return chunks, nil
}

// FormatContext renders context items with numbered source citations.
func FormatContext(items []index.ContextItem) string {
	if len(items) == 0 {
		return NoContextFound
	}
	parts := make([]string, len(items))
	for i, it := range items {
		parts[i] = fmt.Sprintf("[Source %d: %s]\n%s\n", i+1, it.Source, it.Content)
	}
	return strings.Join(parts, "\n\n")
}
