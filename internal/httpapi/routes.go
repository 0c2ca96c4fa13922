package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"trivia-lobby-backend/internal/config"
	"trivia-lobby-backend/internal/hub"
	"trivia-lobby-backend/internal/ws"
)

func SetupRoutes(h *hub.Hub, cfg config.Config, log *zap.Logger) http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", Healthz)
	r.Get("/ws", ws.Handler(h, cfg, log.Named("ws")))
	return r
}
