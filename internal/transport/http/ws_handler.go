package http

import (
	"context"

	"github.com/coder/websocket"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/pkarpov/linechat/internal/transport/lineio"
)

// WSHandler upgrades HTTP connections and bridges them to the line
// protocol runner: one text frame equals one line.
type WSHandler struct {
	runner *lineio.Runner
	log    *zerolog.Logger
}

// NewWSHandler builds a new WebSocket handler.
func NewWSHandler(runner *lineio.Runner, logger *zerolog.Logger) *WSHandler {
	return &WSHandler{runner: runner, log: logger}
}

// Handle serves one WebSocket session.
// GET /ws
func (h *WSHandler) Handle(c *gin.Context) {
	conn, err := websocket.Accept(c.Writer, c.Request, &websocket.AcceptOptions{
		InsecureSkipVerify: true,
	})
	if err != nil {
		h.log.Error().Err(err).Msg("ws accept error")
		return
	}

	ctx := c.Request.Context()
	h.runner.Handle(ctx, &wsLineConn{ctx: ctx, conn: conn})
}

// wsLineConn adapts a WebSocket connection to lineio.LineConn.
type wsLineConn struct {
	ctx  context.Context
	conn *websocket.Conn
}

func (w *wsLineConn) ReadLine() (string, error) {
	_, data, err := w.conn.Read(w.ctx)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func (w *wsLineConn) WriteLine(line string) error {
	return w.conn.Write(w.ctx, websocket.MessageText, []byte(line))
}

func (w *wsLineConn) Close() error {
	return w.conn.Close(websocket.StatusNormalClosure, "closing")
}
