package web_search

import (
	"context"

	"github.com/lolamo/lolamo/tools/web_search/google"
	"github.com/lolamo/lolamo/tools/web_search/models"
	"github.com/lolamo/lolamo/tools/web_search/serper"
)

type WebSearcher interface {
	Discover(ctx context.Context, q string, k int) ([]models.Result, error)
}

type Provider string

const (
	GoogleProvider Provider = "google"
	SerperProvider Provider = "serper"
)

type Error struct{ Msg string }

func (e *Error) Error() string { return e.Msg }

var ErrUnsupportedProvider = &Error{"unsupported provider"}

func NewWebSearcher(provider Provider, apiKey, engineID string) (WebSearcher, error) {
	switch provider {
	case GoogleProvider:
		return google.Search{ApiKey: apiKey, EngineID: engineID}, nil
	case SerperProvider:
		return serper.Search{ApiKey: apiKey}, nil
	default:
		return nil, ErrUnsupportedProvider
	}
}
