package rag

import (
	"math"
	"sort"
	"strings"
)

// Okapi BM25 parameters, the usual defaults.
const (
	bm25K1 = 1.5
	bm25B  = 0.75
)

// FilterRelevant scores every chunk against the query with BM25 over the
// chunk corpus itself and returns the topN highest-scoring chunks.
// Tokenization is plain whitespace splitting; no stemming or stopwords.
// Ties keep the original chunk order, so the result is deterministic for
// a fixed corpus and query.
func FilterRelevant(query string, chunks []Chunk, topN int) []Chunk {
	if len(chunks) == 0 || topN <= 0 {
		return nil
	}

	docs := make([][]string, len(chunks))
	df := map[string]int{}
	totalLen := 0
	for i, c := range chunks {
		toks := strings.Fields(c.Text)
		docs[i] = toks
		totalLen += len(toks)
		seen := map[string]bool{}
		for _, t := range toks {
			if !seen[t] {
				seen[t] = true
				df[t]++
			}
		}
	}
	avgLen := float64(totalLen) / float64(len(chunks))
	if avgLen == 0 {
		avgLen = 1
	}
	n := float64(len(chunks))

	idf := func(term string) float64 {
		d := float64(df[term])
		return math.Log((n-d+0.5)/(d+0.5) + 1)
	}

	scores := make([]float64, len(chunks))
	queryTerms := strings.Fields(query)
	for i, toks := range docs {
		tf := map[string]int{}
		for _, t := range toks {
			tf[t]++
		}
		dl := float64(len(toks))
		var score float64
		for _, q := range queryTerms {
			f := float64(tf[q])
			if f == 0 {
				continue
			}
			norm := bm25K1 * (1 - bm25B + bm25B*dl/avgLen)
			score += idf(q) * f * (bm25K1 + 1) / (f + norm)
		}
		scores[i] = score
	}

	order := make([]int, len(chunks))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return scores[order[a]] > scores[order[b]] })

	if topN > len(chunks) {
		topN = len(chunks)
	}
	out := make([]Chunk, 0, topN)
	for _, i := range order[:topN] {
		out = append(out, chunks[i])
	}
	return out
}
