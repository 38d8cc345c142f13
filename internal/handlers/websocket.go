// handlers/websocket.go
package handlers

import (
	"log"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/evn/timesheet_backend/internal/middleware"
	"github.com/evn/timesheet_backend/internal/pkg/response"
	"github.com/evn/timesheet_backend/internal/services"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// ImportProgressHandler upgrades the connection and subscribes the
// client to import progress events.
func ImportProgressHandler(hub *services.ImportHub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := middleware.GetUserIDFromContext(r.Context())
		if !ok {
			response.RespondWithError(w, http.StatusUnauthorized, "User not authenticated")
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Printf("WebSocket upgrade failed for user %d: %v", userID, err)
			return
		}

		client := &services.Client{
			Conn:   conn,
			Send:   make(chan []byte, 256),
			UserID: userID,
		}
		hub.Register(client)

		go hub.WritePump(client)
		go hub.ReadPump(client)
	}
}
