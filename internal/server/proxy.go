package server

import (
	"io"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"
)

// ProxyHandler forwards raw JSON bodies to the local model server and
// streams the raw byte response back. It never touches the RAG pipeline.
type ProxyHandler struct {
	BaseURL string
	client  *http.Client
	logger  *log.Logger
}

// NewProxyHandler creates a pass-through proxy for the model server.
func NewProxyHandler(baseURL string) *ProxyHandler {
	return &ProxyHandler{
		BaseURL: baseURL,
		client:  &http.Client{},
		logger:  log.New(log.Writer(), "[PROXY] ", log.LstdFlags),
	}
}

// Chat proxies to the model server's chat endpoint.
func (p *ProxyHandler) Chat(c echo.Context) error { return p.forward(c, "/api/chat") }

// Generate proxies to the model server's generate endpoint.
func (p *ProxyHandler) Generate(c echo.Context) error { return p.forward(c, "/api/generate") }

func (p *ProxyHandler) forward(c echo.Context, path string) error {
	req, err := http.NewRequestWithContext(c.Request().Context(), "POST", p.BaseURL+path, c.Request().Body)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadGateway, err.Error())
	}
	defer resp.Body.Close()

	w := c.Response()
	w.Header().Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	w.WriteHeader(resp.StatusCode)

	flusher, _ := w.Writer.(http.Flusher)
	buf := make([]byte, 4096)
	for {
		n, err := resp.Body.Read(buf)
		if n > 0 {
			if _, werr := w.Write(buf[:n]); werr != nil {
				return nil
			}
			if flusher != nil {
				flusher.Flush()
			}
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			p.logger.Printf("proxy stream ended: %v", err)
			return nil
		}
	}
}
