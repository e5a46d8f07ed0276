package handler

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/efreitasn/limitbook/internal/domain"
	"github.com/efreitasn/limitbook/internal/feed"
	"github.com/efreitasn/limitbook/internal/service"
)

// StreamHandler pushes executions to websocket clients as they happen.
type StreamHandler struct {
	hub      *feed.Hub
	ticks    service.TickConverter
	logger   *slog.Logger
	upgrader websocket.Upgrader
}

// NewStreamHandler creates a new StreamHandler.
func NewStreamHandler(hub *feed.Hub, ticks service.TickConverter, logger *slog.Logger) *StreamHandler {
	return &StreamHandler{
		hub:      hub,
		ticks:    ticks,
		logger:   logger,
		upgrader: websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }},
	}
}

// streamMessage is one websocket frame on the trade stream.
type streamMessage struct {
	Type string            `json:"type"`
	Data executionResponse `json:"data"`
}

// Trades handles GET /ws/trades. Each execution is written as a JSON frame;
// the subscription's buffer drops frames for consumers that fall behind.
func (h *StreamHandler) Trades(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", slog.String("error", err.Error()))
		return
	}
	defer conn.Close()

	sub := h.hub.Subscribe(32)
	defer h.hub.Unsubscribe(sub)

	// Drain (and discard) client frames so closes are noticed.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case e, ok := <-sub.C:
			if !ok {
				return
			}
			resp := buildExecutionResponses([]domain.Execution{e}, h.ticks)[0]
			if err := conn.WriteJSON(streamMessage{Type: "trade", Data: resp}); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}
