package server

import (
	"fmt"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	appconfig "github.com/lolamo/lolamo/config"
	"github.com/lolamo/lolamo/internal/chat"
	"github.com/lolamo/lolamo/internal/index"
	"github.com/lolamo/lolamo/internal/rag"
	"github.com/lolamo/lolamo/provider"
	"github.com/lolamo/lolamo/tools/web_fetch"
	"github.com/lolamo/lolamo/tools/web_search"
)

// Run wires the service together and serves until the listener fails.
func Run(cfg *appconfig.Config) error {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())

	baseLogger := log.New(log.Writer(), "[HTTP] ", log.LstdFlags)
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		code := http.StatusInternalServerError
		msg := err.Error()
		if he, ok := err.(*echo.HTTPError); ok {
			code = he.Code
			if he.Message != nil {
				msg = fmt.Sprint(he.Message)
			}
		}
		req := c.Request()
		baseLogger.Printf("%d %s %s from %s: %v", code, req.Method, req.URL.Path, c.RealIP(), err)
		if !c.Response().Committed {
			_ = c.JSON(code, map[string]interface{}{"error": msg})
		}
	}
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "Authorization", "Cookie"},
		AllowCredentials: true,
	}))

	e.GET("/", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"message": "Welcome to the LoLaMo"})
	})
	e.GET("/healthz", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	secret := cfg.Server.JWTSecret
	if secret == "" {
		return fmt.Errorf("jwt secret not configured (server.jwt_secret)")
	}

	llmProvider, err := provider.NewProvider(cfg.LLM)
	if err != nil {
		return err
	}
	searcher, err := web_search.NewWebSearcher(web_search.Provider(cfg.Search.Provider), cfg.Search.APIKey, cfg.Search.EngineID)
	if err != nil {
		return err
	}
	fetcher, err := web_fetch.NewWebFetcher(web_fetch.FetcherType(cfg.Fetch.Type), cfg.Fetch.TimeoutMS, cfg.Fetch.MaxChars)
	if err != nil {
		return err
	}
	store, err := index.NewStore(cfg.Index)
	if err != nil {
		return err
	}
	ix := index.New(store, llmProvider, cfg.Retrieval.BatchSize)
	assembler := rag.NewAssembler(searcher, fetcher, ix, cfg.Retrieval, cfg.Search.NumResults)
	orch := chat.NewOrchestrator(llmProvider)

	tokens := &TokenHandler{Secret: []byte(secret), TTL: cfg.Server.TokenTTL}
	e.GET("/generatetoken", tokens.GenerateToken)

	ws := NewChatHandler([]byte(secret), cfg.LLM.ChatModel, assembler, orch)
	e.GET("/ws", ws.Serve)

	proxy := NewProxyHandler(cfg.LLM.BaseURL)
	protected := e.Group("", EchoAuthMiddleware([]byte(secret)))
	protected.POST("/chatproxyrequest", proxy.Chat)
	protected.POST("/generateproxyrequest", proxy.Generate)

	return e.Start(cfg.Server.Address)
}
