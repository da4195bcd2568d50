/*
Package handler provides the HTTP handler function for WebSocket connection
upgrading and initialization.
*/
package handler

import (
	"net/http"

	"github.com/gorilla/websocket"

	"beacon/internal/app/chat"
	"beacon/internal/app/user"
	"beacon/internal/pkg/logx"
)

// HandleWebSocket creates an HTTP HandlerFunc to process WebSocket connection
// requests. Every accepted connection is registered with the Hub in the
// unauthenticated state and immediately seeded with the full user snapshot.
func HandleWebSocket(upgrader websocket.Upgrader, deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		users, err := deps.Store.List(r.Context())
		if err != nil {
			logx.Error(err, "Failed to read user snapshot for new connection")
			http.Error(w, "service unavailable", http.StatusServiceUnavailable)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logx.Error(err, "Failed to upgrade connection to WebSocket")
			return
		}

		logx.Info("WebSocket connection established", "remote_addr", conn.RemoteAddr().String())

		client := chat.NewClient(deps.Hub, deps.Store, deps.Config.JWTSecret, conn)

		deps.Hub.Add(client)
		client.SendInit(user.Profiles(users))

		go client.WritePump()

		client.ReadPump()
	}
}
