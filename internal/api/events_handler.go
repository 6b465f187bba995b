package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/taskchime/taskchime/internal/notify"
)

const (
	// writeWait bounds a single websocket write.
	writeWait = 10 * time.Second

	// pongWait is how long a connection may stay silent before it is
	// considered dead; pings go out at pingPeriod to keep it alive.
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

// EventsHandler upgrades HTTP connections to websockets and streams
// notification events to them. Connections only ever receive; inbound
// messages are drained and discarded to keep control frames flowing.
type EventsHandler struct {
	hub      *notify.Hub
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

// NewEventsHandler creates an EventsHandler for the given hub.
// checkOrigin decides which Origin headers may subscribe; nil allows all,
// matching the reference frontend's permissive websocket policy.
func NewEventsHandler(hub *notify.Hub, checkOrigin func(*http.Request) bool, logger *slog.Logger) *EventsHandler {
	if checkOrigin == nil {
		checkOrigin = func(*http.Request) bool { return true }
	}

	return &EventsHandler{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin,
		},
		logger: logger.With("component", "events_handler"),
	}
}

// Subscribe handles GET /ws requests.
func (h *EventsHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error response.
		h.logger.Debug("websocket upgrade failed", "error", err, "remote_addr", r.RemoteAddr)
		return
	}

	h.logger.Info("websocket subscriber connected", "remote_addr", r.RemoteAddr)

	sub := h.hub.Subscribe()
	go h.readPump(conn, sub)
	h.writePump(conn, sub)
}

// readPump discards inbound messages and unsubscribes when the peer goes
// away, which in turn ends the write pump by closing the event channel.
func (h *EventsHandler) readPump(conn *websocket.Conn, sub *notify.Subscriber) {
	defer h.hub.Unsubscribe(sub)

	conn.SetReadLimit(512)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// writePump forwards hub events to the connection and pings on an interval.
func (h *EventsHandler) writePump(conn *websocket.Conn, sub *notify.Subscriber) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = conn.Close()
	}()

	for {
		select {
		case event, ok := <-sub.Events():
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Hub stopped or subscriber was removed.
				_ = conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := conn.WriteJSON(event); err != nil {
				h.logger.Debug("websocket write failed, dropping subscriber", "error", err)
				h.hub.Unsubscribe(sub)
				return
			}

		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				h.hub.Unsubscribe(sub)
				return
			}
		}
	}
}
