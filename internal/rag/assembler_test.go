package rag

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/lolamo/lolamo/config"
	"github.com/lolamo/lolamo/internal/index"
	fetchmodels "github.com/lolamo/lolamo/tools/web_fetch/models"
	searchmodels "github.com/lolamo/lolamo/tools/web_search/models"
)

type stubSearcher struct {
	results []searchmodels.Result
	err     error
	calls   int
}

func (s *stubSearcher) Discover(_ context.Context, q string, k int) ([]searchmodels.Result, error) {
	s.calls++
	return s.results, s.err
}

type stubFetcher struct {
	pages map[string]string // url -> text
	calls int
}

func (f *stubFetcher) Exec(_ context.Context, url string) (fetchmodels.Result, error) {
	f.calls++
	text, ok := f.pages[url]
	if !ok {
		return fetchmodels.Result{}, errors.New("unreachable")
	}
	return fetchmodels.Result{URL: url, Text: text, Status: 200}, nil
}

type stubIndex struct {
	rebuilt      []index.Input
	rebuildCalls int
	queryCalls   int
	queryResult  []index.ContextItem
}

func (s *stubIndex) Rebuild(_ context.Context, chunks []index.Input) error {
	s.rebuildCalls++
	s.rebuilt = chunks
	return nil
}

func (s *stubIndex) Query(_ context.Context, text string, k int) ([]index.ContextItem, error) {
	s.queryCalls++
	return s.queryResult, nil
}

func testRetrievalConfig() config.RetrievalConfig {
	return config.RetrievalConfig{ChunkSize: 1000, ChunkOverlap: 200, TopN: 20, ContextK: 5, BatchSize: 10}
}

func TestAssemble_NoTriggerMakesNoCalls(t *testing.T) {
	searcher := &stubSearcher{}
	fetcher := &stubFetcher{}
	ix := &stubIndex{}
	a := NewAssembler(searcher, fetcher, ix, testRetrievalConfig(), 10)

	got, err := a.Assemble(context.Background(), "What is the capital of France?")
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if got != NoContextFound {
		t.Errorf("context = %q, want %q", got, NoContextFound)
	}
	if searcher.calls != 0 || fetcher.calls != 0 || ix.rebuildCalls != 0 || ix.queryCalls != 0 {
		t.Errorf("no collaborator may be called without a trigger phrase: search=%d fetch=%d rebuild=%d query=%d",
			searcher.calls, fetcher.calls, ix.rebuildCalls, ix.queryCalls)
	}
}

func TestAssemble_TriggerRunsFullCycle(t *testing.T) {
	searcher := &stubSearcher{results: []searchmodels.Result{
		{URL: "https://a.example.com"},
		{URL: "https://b.example.com"},
	}}
	fetcher := &stubFetcher{pages: map[string]string{
		"https://a.example.com": "The weather in Paris is sunny today.",
		"https://b.example.com": "Paris temperatures reach 25 degrees.",
	}}
	ix := &stubIndex{queryResult: []index.ContextItem{
		{Content: "The weather in Paris is sunny today.", Source: "https://a.example.com"},
	}}
	a := NewAssembler(searcher, fetcher, ix, testRetrievalConfig(), 10)

	got, err := a.Assemble(context.Background(), "search the web for current weather in Paris")
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if searcher.calls != 1 {
		t.Errorf("search calls = %d, want 1", searcher.calls)
	}
	if fetcher.calls != 2 {
		t.Errorf("fetch calls = %d, want 2", fetcher.calls)
	}
	if ix.rebuildCalls != 1 || ix.queryCalls != 1 {
		t.Errorf("rebuild=%d query=%d, want 1 and 1", ix.rebuildCalls, ix.queryCalls)
	}
	if len(ix.rebuilt) != 2 {
		t.Errorf("indexed %d chunks, want 2", len(ix.rebuilt))
	}
	if !strings.Contains(got, "[Source 1: https://a.example.com]") {
		t.Errorf("formatted context missing citation: %q", got)
	}
}

func TestAssemble_FetchFailureSkipsURL(t *testing.T) {
	searcher := &stubSearcher{results: []searchmodels.Result{
		{URL: "https://dead.example.com"},
		{URL: "https://live.example.com"},
	}}
	fetcher := &stubFetcher{pages: map[string]string{
		"https://live.example.com": "Paris weather stays sunny all week.",
	}}
	ix := &stubIndex{}
	a := NewAssembler(searcher, fetcher, ix, testRetrievalConfig(), 10)

	if _, err := a.Assemble(context.Background(), "search the web for paris weather"); err != nil {
		t.Fatalf("per-URL failures must not abort the cycle: %v", err)
	}
	if len(ix.rebuilt) != 1 {
		t.Errorf("indexed %d chunks, want 1 from the reachable page", len(ix.rebuilt))
	}
	if ix.rebuilt[0].SourceURL != "https://live.example.com" {
		t.Errorf("wrong source survived: %q", ix.rebuilt[0].SourceURL)
	}
}

func TestAssemble_SearchErrorSurfaces(t *testing.T) {
	searcher := &stubSearcher{err: errors.New("quota exceeded")}
	a := NewAssembler(searcher, &stubFetcher{}, &stubIndex{}, testRetrievalConfig(), 10)

	if _, err := a.Assemble(context.Background(), "search the web for anything"); err == nil {
		t.Fatal("search provider failure must surface to the caller")
	}
}

func TestAssemble_ZeroResultsYieldsNoContext(t *testing.T) {
	searcher := &stubSearcher{} // empty result set, no error
	ix := &stubIndex{}
	a := NewAssembler(searcher, &stubFetcher{}, ix, testRetrievalConfig(), 10)

	got, err := a.Assemble(context.Background(), "search the web for something obscure")
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if got != NoContextFound {
		t.Errorf("context = %q, want %q", got, NoContextFound)
	}
}

func TestAssemble_TriggerIsCaseInsensitive(t *testing.T) {
	searcher := &stubSearcher{}
	a := NewAssembler(searcher, &stubFetcher{}, &stubIndex{}, testRetrievalConfig(), 10)

	if _, err := a.Assemble(context.Background(), "Search The Web for news"); err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if searcher.calls != 1 {
		t.Errorf("uppercased trigger phrase not detected")
	}
}

func TestFormatContext(t *testing.T) {
	items := []index.ContextItem{
		{Content: "Paris is sunny.", Source: "https://a.example.com"},
		{Content: "25 degrees expected.", Source: "https://b.example.com"},
	}
	got := FormatContext(items)
	want := fmt.Sprintf("[Source 1: %s]\n%s\n\n\n[Source 2: %s]\n%s\n",
		items[0].Source, items[0].Content, items[1].Source, items[1].Content)
	if got != want {
		t.Errorf("FormatContext = %q, want %q", got, want)
	}
}

func TestFormatContext_Empty(t *testing.T) {
	if got := FormatContext(nil); got != NoContextFound {
		t.Errorf("FormatContext(nil) = %q, want %q", got, NoContextFound)
	}
}
