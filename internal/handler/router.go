/*
Package handler provides the HTTP handlers and routing setup for the Beacon server.

This file defines the main Router, applying middleware (logging, CORS, panic
recovery) before delegating requests to the WebSocket endpoint, the avatar
upload API, and static avatar serving.
*/
package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/rs/cors"

	"beacon/internal/configs"
	"beacon/internal/pkg/auth/jwt"
	"beacon/internal/pkg/logx"
	"beacon/internal/pkg/resp"
)

// Router sets up the main HTTP routing table (chi.Router) for the application.
// It configures CORS, applies global middleware, and wires the health check,
// the avatar API, static avatar files, and the WebSocket endpoint.
func Router(deps *AppDeps) http.Handler {
	r := chi.NewRouter()

	allowedOrigins := make(map[string]struct{})
	for _, origin := range deps.Config.AllowedOrigins {
		allowedOrigins[origin] = struct{}{}
	}

	wsUpgrader := websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin: func(r *http.Request) bool {
			if deps.Config.Environment == "development" {
				return true
			}

			origin := r.Header.Get("Origin")
			if _, ok := allowedOrigins[origin]; ok {
				return true
			}

			logx.Warn("WebSocket connection rejected: Origin not allowed.", "origin", origin)
			return false
		},
	}

	corsAllowedOrigins := []string{}
	if deps.Config.Environment == "development" {
		corsAllowedOrigins = []string{"*"}
	} else if len(deps.Config.AllowedOrigins) > 0 {
		corsAllowedOrigins = deps.Config.AllowedOrigins
	}

	c := cors.New(cors.Options{
		AllowedOrigins:   corsAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{},
		AllowCredentials: true,
		MaxAge:           300,
	})
	r.Use(c.Handler)

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logx.RequestLogger())
	r.Use(middleware.Recoverer)

	r.Get("/health", HandleHealth(deps))

	r.Route("/api", func(api chi.Router) {
		api.Use(jwt.IdentityExtractorMiddleware(deps.Config.JWTSecret))

		api.Post("/avatar", HandleUploadAvatar(deps))
	})

	if deps.Config.AvatarBackend == configs.AvatarBackendLocal {
		fileServer := http.StripPrefix(deps.Config.AvatarBaseURL+"/", http.FileServer(http.Dir(deps.Config.AvatarDir)))
		r.Get(deps.Config.AvatarBaseURL+"/*", fileServer.ServeHTTP)
	}

	r.Get("/ws", HandleWebSocket(wsUpgrader, deps))

	return r
}

// HandleHealth reports service liveness and the current account count.
func HandleHealth(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		users, err := deps.Store.List(context.Background())
		userCount := len(users)
		if err != nil {
			logx.Error(err, "Health check failed to read user store")
			userCount = -1
		}

		data := map[string]any{
			"status":  "ok",
			"service": "Beacon Server",
			"users":   userCount,
		}
		resp.RespondSuccess(w, r, data)
	}
}
