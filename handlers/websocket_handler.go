package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/opendraw/draw-engine/brackets"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Draw pages are public read surfaces; origin checks stay with the
	// CORS layer on the REST side.
	CheckOrigin: func(r *http.Request) bool { return true },
}

type WebSocketHandler struct {
	hub    *brackets.Hub
	logger *slog.Logger
}

func NewWebSocketHandler(hub *brackets.Hub, logger *slog.Logger) *WebSocketHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &WebSocketHandler{hub: hub, logger: logger}
}

// Serve upgrades the connection and subscribes it to the category room.
func (h *WebSocketHandler) Serve(w http.ResponseWriter, r *http.Request) {
	eventID, categoryID := scopeParams(r)
	if eventID == "" || categoryID == "" {
		http.Error(w, "event and category are required", http.StatusBadRequest)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("ws upgrade failed", slog.Any("error", err))
		return
	}

	client := brackets.NewClient(h.hub, conn, brackets.RoomKey(eventID, categoryID))
	h.hub.Register <- client

	go client.WritePump()
	go client.ReadPump()
}
