/*
Package chat contains the core logic for live connections, the presence
registry, and message broadcasting.

This file defines the Client struct, representing an active WebSocket
connection. It manages the connection lifecycle, the read/write pumps, and the
per-connection protocol state machine: a connection starts unauthenticated and
is promoted to authenticated by a successful login.
*/
package chat

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"beacon/internal/app/user"
	"beacon/internal/pkg/auth/jwt"
	"beacon/internal/pkg/errs"
	"beacon/internal/pkg/logx"
)

const (
	// timeout duration for writing to the WebSocket connection.
	writeWait = 10 * time.Second

	// maximum time allowed for the server to wait for a Pong message from the client.
	pongWait = 60 * time.Second

	// frequency at which the server sends a Ping message.
	pingPeriod = (pongWait * 9) / 10

	// maximum allowed size (in bytes) of a message sent by the client.
	maxMessageSize = 8192

	// sendQueueSize is the per-connection outbound buffer length.
	sendQueueSize = 256
)

// Client struct represents an active WebSocket connection and its session state.
type Client struct {
	// hub is the presence registry and broadcaster this connection belongs to.
	hub *Hub

	// store is the durable user store shared by all connections.
	store user.Store

	// jwtSecret signs the avatar upload token issued on login.
	jwtSecret string

	// underlying WebSocket connection object.
	conn *websocket.Conn

	// a buffered channel used to queue messages waiting to be sent to the client.
	send chan []byte

	// username is the bound account name; empty while unauthenticated.
	// Only the read pump goroutine touches it.
	username string

	// sendMu guards sendClosed so enqueue never races a channel close.
	sendMu     sync.Mutex
	sendClosed bool

	// structured logger with connection context.
	logger zerolog.Logger
}

// NewClient constructs and returns a new Client instance in the
// unauthenticated state.
func NewClient(hub *Hub, store user.Store, jwtSecret string, wsConn *websocket.Conn) *Client {
	clientLogger := logx.Logger().With().
		Str("remote_addr", wsConn.RemoteAddr().String()).
		Logger()

	return &Client{
		hub:       hub,
		store:     store,
		jwtSecret: jwtSecret,
		conn:      wsConn,
		send:      make(chan []byte, sendQueueSize),
		logger:    clientLogger,
	}
}

// ReadPump handles reading messages from the WebSocket connection.
// It handles heartbeats (Pong), envelope dispatch, and performs cleanup upon
// connection closure.
func (c *Client) ReadPump() {
	defer c.cleanupOnDisconnect()

	c.conn.SetReadLimit(maxMessageSize)

	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set read deadline")
		return
	}

	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, messageBytes, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Info().Err(err).Msg("Error reading message (client close/going away)")
			}
			break
		}

		c.dispatch(messageBytes)
	}
}

// cleanupOnDisconnect removes the connection from the Hub and, if the session
// was authenticated, broadcasts the updated online list to the remaining
// connections.
func (c *Client) cleanupOnDisconnect() {
	name, wasBound := c.hub.Remove(c)

	c.closeSend()

	if err := c.conn.Close(); err != nil {
		c.logger.Debug().Err(err).Msg("Client connection close error")
	}

	if wasBound {
		c.logger.Info().Str("username", name).Msg("Authenticated session closed.")
		c.hub.Broadcast(NewOnlineEvent(c.hub.Online()))
	}
}

// dispatch interprets one inbound envelope. Unparseable payloads and unknown
// message kinds get an error reply on this connection only; the connection is
// never terminated for a bad envelope.
func (c *Client) dispatch(messageBytes []byte) {
	var env Envelope
	if err := json.Unmarshal(messageBytes, &env); err != nil {
		c.logger.Warn().Err(err).Msg("Client sent invalid JSON")
		c.SendError(errs.NewError(errs.ErrMalformedEnvelope))
		return
	}

	switch env.Type {
	case TypeRegister:
		c.handleRegister(env)

	case TypeLogin:
		c.handleLogin(env)

	case TypeUpdateUser:
		c.handleUpdateUser(env)

	case TypeMessage:
		c.handleMessage(env)

	default:
		c.logger.Warn().Str("msg_type", string(env.Type)).Msg("Client sent unsupported message type")
		c.SendError(errs.NewError(errs.ErrMalformedEnvelope))
	}
}

// handleRegister creates a new account. The caller gets register_ok; everyone
// gets a userRegistered event with the new profile (credential stripped).
func (c *Client) handleRegister(env Envelope) {
	if !user.ValidName(env.Name) {
		c.SendError(errs.NewError(errs.ErrInvalidUsername))
		return
	}

	newUser := user.New(env.Name, env.Pass)

	if err := c.store.Create(context.Background(), newUser); err != nil {
		if errors.Is(err, user.ErrAlreadyExists) {
			c.SendError(errs.NewError(errs.ErrUserAlreadyExists))
			return
		}

		c.logger.Error().Err(err).Str("username", env.Name).Msg("Failed to persist new user")
		c.SendError(errs.NewError(errs.ErrStorageFailed))
		return
	}

	c.logger.Info().Str("username", env.Name).Msg("User registered.")

	c.sendEvent(NewRegisterOKEvent())
	c.hub.Broadcast(NewUserRegisteredEvent(newUser.Profile()))
}

// handleLogin authenticates the connection. Credentials are compared for
// equality against the stored secret; a username already bound to another
// live connection is rejected rather than silently rebound.
func (c *Client) handleLogin(env Envelope) {
	u, err := c.store.Get(context.Background(), env.Name)
	if err != nil || u.Pass != env.Pass {
		if err != nil && !errors.Is(err, user.ErrNotFound) {
			c.logger.Error().Err(err).Str("username", env.Name).Msg("User lookup failed during login")
		}
		c.SendError(errs.NewError(errs.ErrInvalidCredentials))
		return
	}

	if c.username != "" {
		c.SendError(errs.NewError(errs.ErrAlreadyLoggedIn))
		return
	}

	if customErr := c.hub.Bind(c, u.Name); customErr != nil {
		c.SendError(customErr)
		return
	}

	c.username = u.Name

	uploadToken, err := jwt.GenerateToken(&jwt.Payload{Username: u.Name}, c.jwtSecret, jwt.UploadTokenExpiration)
	if err != nil {
		c.logger.Error().Err(err).Msg("Failed to generate upload token, login proceeds without one")
		uploadToken = ""
	}

	online := c.hub.Online()

	c.logger.Info().Str("username", u.Name).Msg("User logged in.")

	c.sendEvent(NewLoginOKEvent(u.Profile(), online, uploadToken))
	c.hub.Broadcast(NewOnlineEvent(online))
}

// handleUpdateUser applies a partial profile mutation. An unknown username is
// a silent no-op; either way the full snapshot is broadcast afterwards.
func (c *Client) handleUpdateUser(env Envelope) {
	if !user.ValidName(env.Name) {
		c.SendError(errs.NewError(errs.ErrInvalidUsername))
		return
	}

	upd := user.Update{
		Nick:    env.Nick,
		Balance: env.Balance,
	}

	if err := c.store.Update(context.Background(), env.Name, upd); err != nil {
		if !errors.Is(err, user.ErrNotFound) {
			c.logger.Error().Err(err).Str("username", env.Name).Msg("Failed to persist user update")
			c.SendError(errs.NewError(errs.ErrStorageFailed))
			return
		}
		// unknown user: permissive no-op, snapshot broadcast still goes out
	}

	users, err := c.store.List(context.Background())
	if err != nil {
		c.logger.Error().Err(err).Msg("Failed to read user snapshot after update")
		c.SendError(errs.NewError(errs.ErrStorageFailed))
		return
	}

	c.hub.Broadcast(NewUpdateUsersEvent(user.Profiles(users), env.Name))
}

// handleMessage fans out a chat message. Requires an authenticated session.
func (c *Client) handleMessage(env Envelope) {
	if c.username == "" {
		c.SendError(errs.NewError(errs.ErrUnauthorized))
		return
	}

	c.hub.Broadcast(NewMsgEvent(uuid.New().String(), c.username, env.Text))
}

// WritePump handles writing messages from the Client.send channel to the
// WebSocket connection, plus the periodic Ping heartbeat.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()

		if err := c.conn.Close(); err != nil {
			c.logger.Debug().Err(err).Msg("Client connection close error in WritePump")
		}
	}()

	for {
		select {
		case message, ok := <-c.send:
			if !c.writeQueuedMessage(message, ok) {
				return
			}

		case <-ticker.C:
			if !c.writePingMessage() {
				return
			}
		}
	}
}

// writeQueuedMessage writes one queued message to the WebSocket.
// Returns true if the WritePump loop should continue.
func (c *Client) writeQueuedMessage(message []byte, ok bool) bool {
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set write deadline")
		return false
	}

	if !ok {
		if err := c.conn.WriteMessage(websocket.CloseMessage, []byte{}); err != nil {
			c.logger.Debug().Err(err).Msg("Error writing close message")
		}
		return false
	}

	if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
		c.logger.Error().Err(err).Msg("Error writing message")
		return false
	}

	return true
}

// writePingMessage sends a periodic WebSocket Ping to keep the connection alive.
// Returns false if the WritePump loop should terminate due to write failure.
func (c *Client) writePingMessage() bool {
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set write deadline on ping")
		return false
	}

	if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
		c.logger.Error().Err(err).Msg("Error writing ping")
		return false
	}

	return true
}

// enqueue queues a pre-serialized frame for delivery. It never blocks: a full
// or already-closed queue reports false and the frame is dropped for this
// connection only.
func (c *Client) enqueue(data []byte) bool {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()

	if c.sendClosed {
		return false
	}

	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

// closeSend closes the outbound queue exactly once, which lets WritePump
// drain remaining frames and terminate.
func (c *Client) closeSend() {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()

	if !c.sendClosed {
		c.sendClosed = true
		close(c.send)
	}
}

// sendEvent marshals an event and queues it for this connection.
func (c *Client) sendEvent(event any) {
	data, err := json.Marshal(event)
	if err != nil {
		c.logger.Error().Err(err).Msg("Error marshaling event for client")
		return
	}

	if !c.enqueue(data) {
		c.logger.Warn().Int("queue_len", len(c.send)).Msg("Client send channel full, dropping event")
	}
}

// SendInit queues the init event seeding this connection with the current
// user snapshot. Called once, right after the connection is accepted.
func (c *Client) SendInit(users []user.Profile) {
	c.sendEvent(NewInitEvent(users))
}

// SendError reports a failed operation to this connection only.
func (c *Client) SendError(customErr *errs.CustomError) {
	if customErr == nil {
		customErr = errs.NewError(errs.ErrUnknown)
	}

	c.sendEvent(NewErrorEvent(customErr.Code, customErr.Message))
}

// Username returns the bound account name, or "" while unauthenticated.
func (c *Client) Username() string {
	return c.username
}
