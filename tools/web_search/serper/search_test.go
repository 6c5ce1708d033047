package serper

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestDiscover_ParsesOrganic(t *testing.T) {
	var gotKey string
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("X-API-KEY")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode request body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"organic": [
				{"title": "Paris weather", "link": "https://a.example/paris", "snippet": "Sunny, 24C"},
				{"title": "Forecast", "link": "https://b.example/fc", "snippet": "Cloudy later"}
			]
		}`))
	}))
	defer srv.Close()

	s := Search{ApiKey: "k", Endpoint: srv.URL}
	results, err := s.Discover(context.Background(), "weather in Paris", 5)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if gotKey != "k" {
		t.Errorf("X-API-KEY = %q, want k", gotKey)
	}
	if gotBody["q"] != "weather in Paris" || gotBody["num"] != float64(5) {
		t.Errorf("request body = %v", gotBody)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	if results[0].Title != "Paris weather" || results[0].URL != "https://a.example/paris" || results[0].Snippet != "Sunny, 24C" {
		t.Errorf("unexpected first result: %+v", results[0])
	}
}

func TestDiscover_TruncatesToK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"organic": [
			{"title": "a", "link": "https://a"}, {"title": "b", "link": "https://b"}, {"title": "c", "link": "https://c"}
		]}`))
	}))
	defer srv.Close()

	results, err := Search{Endpoint: srv.URL}.Discover(context.Background(), "q", 2)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if len(results) != 2 {
		t.Errorf("got %d results, want 2", len(results))
	}
}

func TestDiscover_NoOrganicMeansZeroResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"searchParameters": {"q": "gibberish"}}`))
	}))
	defer srv.Close()

	results, err := Search{Endpoint: srv.URL}.Discover(context.Background(), "gibberish", 5)
	if err != nil {
		t.Fatalf("zero results must not be an error: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("got %d results, want 0", len(results))
	}
}
