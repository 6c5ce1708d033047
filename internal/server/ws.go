package server

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/lolamo/lolamo/internal/chat"
)

// ContextAssembler produces the formatted context for a question.
type ContextAssembler interface {
	Assemble(ctx context.Context, question string) (string, error)
}

// Responder streams the answer for a question and maintains history.
type Responder interface {
	Respond(ctx context.Context, question, contextStr string, history *chat.History, emit func(delta string) error) error
}

// wsFrame is one streamed unit sent to the client. Concatenating the
// message contents of all frames for a turn reconstructs the answer.
type wsFrame struct {
	Model   string    `json:"model"`
	Message wsMessage `json:"message"`
	Done    bool      `json:"done"`
	Error   string    `json:"error,omitempty"`
}

type wsMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// session is the per-connection state: a strictly ordered inbound queue
// and the conversation history. It is owned by the connection's handler
// and dies with it.
type session struct {
	id      string
	conn    *websocket.Conn
	queue   chan string
	history *chat.History
}

// ChatHandler runs the websocket chat sessions.
type ChatHandler struct {
	Secret    []byte
	Model     string
	Assembler ContextAssembler
	Orch      Responder

	upgrader websocket.Upgrader
	logger   *log.Logger
}

// NewChatHandler creates the websocket chat handler.
func NewChatHandler(secret []byte, model string, assembler ContextAssembler, orch Responder) *ChatHandler {
	return &ChatHandler{
		Secret:    secret,
		Model:     model,
		Assembler: assembler,
		Orch:      orch,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
		logger: log.New(log.Writer(), "[WS] ", log.LstdFlags),
	}
}

// Serve handles GET /ws?token=... for the lifetime of one connection.
// The credential is checked before the upgrade; a bad token never gets a
// session. Messages are processed strictly one at a time, so answers
// stream back in the order the questions arrived.
func (h *ChatHandler) Serve(c echo.Context) error {
	if _, err := VerifyJWT(c.QueryParam("token"), h.Secret); err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
	}

	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	sess := &session{
		id:      uuid.NewString(),
		conn:    conn,
		queue:   make(chan string, 16),
		history: &chat.History{},
	}
	ctx, cancel := context.WithCancel(c.Request().Context())
	defer cancel()

	h.logger.Printf("session %s connected", sess.id)
	go h.readLoop(ctx, cancel, sess)
	h.drainLoop(ctx, sess)
	h.logger.Printf("session %s closed", sess.id)
	return nil
}

// readLoop enqueues inbound messages until the client disconnects, then
// signals the worker to stop once it finishes the in-flight message.
func (h *ChatHandler) readLoop(ctx context.Context, cancel context.CancelFunc, sess *session) {
	defer cancel()
	for {
		_, data, err := sess.conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.logger.Printf("session %s read: %v", sess.id, err)
			}
			return
		}
		select {
		case sess.queue <- string(data):
		case <-ctx.Done():
			return
		}
	}
}

// drainLoop processes queued messages strictly FIFO, one at a time.
func (h *ChatHandler) drainLoop(ctx context.Context, sess *session) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-sess.queue:
			h.handleMessage(ctx, sess, msg)
		}
	}
}

func (h *ChatHandler) handleMessage(ctx context.Context, sess *session, question string) {
	contextStr, err := h.Assembler.Assemble(ctx, question)
	if err != nil {
		h.logger.Printf("session %s retrieval failed: %v", sess.id, err)
		h.writeError(sess, "retrieval failed")
		return
	}

	emit := func(delta string) error {
		// Cooperative cancellation between increments: nothing is
		// delivered once disconnect has been observed.
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		return sess.conn.WriteJSON(wsFrame{
			Model:   h.Model,
			Message: wsMessage{Role: chat.RoleAssistant, Content: delta},
		})
	}

	if err := h.Orch.Respond(ctx, question, contextStr, sess.history, emit); err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		h.logger.Printf("session %s generation failed: %v", sess.id, err)
		h.writeError(sess, "generation failed")
		return
	}

	_ = sess.conn.WriteJSON(wsFrame{
		Model:   h.Model,
		Message: wsMessage{Role: chat.RoleAssistant},
		Done:    true,
	})
}

// writeError reports a failed turn; the session stays usable.
func (h *ChatHandler) writeError(sess *session, msg string) {
	_ = sess.conn.WriteJSON(wsFrame{
		Model:   h.Model,
		Message: wsMessage{Role: chat.RoleAssistant},
		Done:    true,
		Error:   msg,
	})
}
