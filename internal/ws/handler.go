package ws

import (
	"net/http"

	"github.com/coder/websocket"
	"go.uber.org/zap"

	"trivia-lobby-backend/internal/config"
	"trivia-lobby-backend/internal/hub"
)

// Handler terminates websocket connections and hands them to the hub. The
// read loop runs on the request goroutine; the write pump gets its own.
func Handler(h *hub.Hub, cfg config.Config, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			log.Warn("websocket accept failed", zap.Error(err))
			return
		}

		c := newClient(r.Context(), conn, h.Inbox(), r.RemoteAddr,
			cfg.WriteTimeout, cfg.HeartbeatInterval, log)
		defer c.Close("bye")

		h.Inbox() <- hub.Register{C: c}
		go c.writePump()
		c.readLoop()
	}
}
