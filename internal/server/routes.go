package server

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/Shreyanshu20/HireSafe-sub000/internal/meeting"
	"github.com/Shreyanshu20/HireSafe-sub000/internal/signaling"
)

// Configure the websocket upgrader
var upgrader = websocket.Upgrader{
	ReadBufferSize:  64 * 1024, // 64 KB
	WriteBufferSize: 64 * 1024, // 64 KB

	// The REST bridge gates entry before signaling; origin checking belongs
	// to the deployment's reverse proxy.
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// NewMux assembles the full HTTP surface: the websocket signaling endpoint,
// the meeting/interview REST bridge and a health probe.
func NewMux(hub *signaling.Hub, meetings *meeting.Handler) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", healthHandler)
	mux.HandleFunc("/ws", ServeWs(hub))
	meetings.Register(mux)
	return mux
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("Signaling server is healthy."))
}

// ServeWs returns an http.HandlerFunc that upgrades the connection, assigns
// the connection id and hands the client to the hub.
func ServeWs(hub *signaling.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			slog.Warn("websocket upgrade failed", "err", err)
			return
		}

		// The id lives exactly as long as the connection; a reconnect
		// gets a new one and must join afresh.
		client := signaling.NewClient(hub, conn, uuid.NewString())
		client.Hub.Register <- client

		go client.WritePump()
		go client.ReadPump()
	}
}
