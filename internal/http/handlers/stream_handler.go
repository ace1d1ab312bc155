// README: Websocket stream pushing every session snapshot to the UI.
package handlers

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"goride/internal/modules/ride"
)

const writeWait = 5 * time.Second

type StreamHandler struct {
	machine  *ride.Machine
	log      *slog.Logger
	upgrader websocket.Upgrader
}

func NewStreamHandler(machine *ride.Machine, log *slog.Logger) *StreamHandler {
	return &StreamHandler{machine: machine, log: log}
}

// Stream handles GET /api/session/stream. The first message is the current
// snapshot; later messages follow every change, skipping any the client was
// too slow to read.
func (h *StreamHandler) Stream(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	updates, cancel := h.machine.Subscribe()
	defer cancel()

	// Client messages are ignored; reading detects the close.
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case snap, ok := <-updates:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "session closed"))
				return
			}
			if err := conn.WriteJSON(snap); err != nil {
				h.log.Debug("stream write failed", "error", err)
				return
			}
		case <-gone:
			return
		}
	}
}
