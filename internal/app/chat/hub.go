/*
Package chat contains the core logic for live connections, the presence
registry, and message broadcasting.

This file defines the Hub, the single source of truth for which connections
are live and which usernames they are authenticated as. It also owns fan-out:
an event is serialized once and delivered best-effort to every connection.
*/
package chat

import (
	"encoding/json"
	"sort"
	"sync"

	"github.com/rs/zerolog"

	"beacon/internal/pkg/errs"
	"beacon/internal/pkg/logx"
)

// Hub tracks every live connection and the username each authenticated
// connection is bound to. A username is bound to at most one connection.
type Hub struct {
	// mu protects clients and names. It is never held across connection I/O;
	// fan-out snapshots the client set first and sends outside the lock.
	mu sync.RWMutex

	// clients holds every live connection, authenticated or not.
	clients map[*Client]struct{}

	// names maps a bound username to its connection.
	names map[string]*Client

	// structured logger with Hub context.
	logger zerolog.Logger
}

// NewHub constructs an empty Hub.
func NewHub() *Hub {
	hubLogger := logx.Logger().With().Str("component", "Hub").Logger()

	return &Hub{
		clients: make(map[*Client]struct{}),
		names:   make(map[string]*Client),
		logger:  hubLogger,
	}
}

// Add registers a freshly accepted connection in the unauthenticated state.
func (h *Hub) Add(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.clients[c] = struct{}{}

	h.logger.Info().Int("total_connections", len(h.clients)).Msg("Connection added.")
}

// Remove drops a connection and any username binding it held. It is
// idempotent; removing an unknown connection is a no-op. It returns the
// username that was bound, if any.
func (h *Hub) Remove(c *Client) (string, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[c]; !ok {
		return "", false
	}
	delete(h.clients, c)

	for name, bound := range h.names {
		if bound == c {
			delete(h.names, name)
			h.logger.Info().
				Str("username", name).
				Int("total_connections", len(h.clients)).
				Msg("Authenticated connection removed.")
			return name, true
		}
	}

	h.logger.Info().Int("total_connections", len(h.clients)).Msg("Unauthenticated connection removed.")
	return "", false
}

// Bind associates name with connection c. It fails with ErrAlreadyLoggedIn if
// the name is already bound to a different live connection.
func (h *Hub) Bind(c *Client, name string) *errs.CustomError {
	h.mu.Lock()
	defer h.mu.Unlock()

	if existing, ok := h.names[name]; ok && existing != c {
		h.logger.Warn().Str("username", name).Msg("Bind rejected: username already bound to another connection.")
		return errs.NewError(errs.ErrAlreadyLoggedIn)
	}

	h.names[name] = c
	return nil
}

// Online returns a sorted snapshot of all bound usernames.
func (h *Hub) Online() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	online := make([]string, 0, len(h.names))
	for name := range h.names {
		online = append(online, name)
	}
	sort.Strings(online)

	return online
}

// Broadcast serializes event once and delivers it to every connection known
// at the moment of the call. Each delivery is independent: a full or closed
// send queue on one connection is logged and skipped, never aborting the
// remaining deliveries or surfacing an error to the caller.
func (h *Hub) Broadcast(event any) {
	data, err := json.Marshal(event)
	if err != nil {
		h.logger.Error().Err(err).Msg("Error marshaling event for broadcast.")
		return
	}

	h.mu.RLock()
	targets := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		targets = append(targets, c)
	}
	h.mu.RUnlock()

	for _, c := range targets {
		if !c.enqueue(data) {
			h.logger.Warn().Msg("Client send queue full or closed, dropping broadcast for that connection.")
		}
	}
}
