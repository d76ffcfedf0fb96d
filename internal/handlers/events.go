package handlers

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"homewatch/internal/logger"
	ws "homewatch/internal/services/websocket"
)

var Upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// EventsHandler upgrades the connection and streams stored detection
// facts to the viewer until it disconnects.
func EventsHandler(hub *ws.HubService, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		connection, err := Upgrader.Upgrade(w, r, nil)
		if err != nil {
			logger.Error("WebSocket upgrade error: %v", err)
			return
		}
		connection.SetReadLimit(512)
		connection.SetReadDeadline(time.Now().Add(60 * time.Second))
		connection.SetPongHandler(func(appData string) error {
			connection.SetReadDeadline(time.Now().Add(60 * time.Second))
			return nil
		})
		defer connection.Close()

		hub.Register(connection)
		defer hub.Unregister(connection)

		logger.Info("Event viewer connected")

		for {
			_, _, err := connection.ReadMessage()
			if err != nil {
				logger.Info("Event viewer disconnected: %v", err)
				break
			}
		}
	}
}
