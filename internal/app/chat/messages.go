/*
Package chat contains the core logic for live connections, the presence
registry, and message broadcasting.

This file defines the wire format: the inbound envelope with its tagged
message kinds, and one struct per outbound event.
*/
package chat

import (
	"time"

	"beacon/internal/app/user"
)

// MessageType is the discriminator carried in every envelope and event.
type MessageType string

// Inbound message kinds.
const (
	TypeRegister   MessageType = "register"
	TypeLogin      MessageType = "login"
	TypeUpdateUser MessageType = "updateUser"
	TypeMessage    MessageType = "message"
)

// Outbound event kinds.
const (
	TypeInit           MessageType = "init"
	TypeRegisterOK     MessageType = "register_ok"
	TypeLoginOK        MessageType = "login_ok"
	TypeOnline         MessageType = "online"
	TypeUserRegistered MessageType = "userRegistered"
	TypeUpdateUsers    MessageType = "updateUsers"
	TypeMsg            MessageType = "msg"
	TypeError          MessageType = "error"
)

// Envelope is the inbound message shape. Only the fields matching the
// declared Type are read; pointer fields distinguish "absent" from zero for
// partial updates.
type Envelope struct {
	Type    MessageType `json:"type"`
	Name    string      `json:"name,omitempty"`
	Pass    string      `json:"pass,omitempty"`
	Nick    *string     `json:"nick,omitempty"`
	Balance *float64    `json:"balance,omitempty"`
	Text    string      `json:"text,omitempty"`
}

// InitEvent seeds a newly connected client with the full user snapshot. Sent
// once per connection, before authentication.
type InitEvent struct {
	Type      MessageType    `json:"type"`
	Users     []user.Profile `json:"users"`
	Timestamp time.Time      `json:"timestamp"`
}

func NewInitEvent(users []user.Profile) InitEvent {
	return InitEvent{Type: TypeInit, Users: users, Timestamp: time.Now().UTC()}
}

// RegisterOKEvent acknowledges a successful registration to the caller only.
type RegisterOKEvent struct {
	Type MessageType `json:"type"`
}

func NewRegisterOKEvent() RegisterOKEvent {
	return RegisterOKEvent{Type: TypeRegisterOK}
}

// LoginOKEvent acknowledges a successful login. UploadToken authorizes the
// HTTP avatar upload side-channel for the logged-in username.
type LoginOKEvent struct {
	Type        MessageType  `json:"type"`
	User        user.Profile `json:"user"`
	Online      []string     `json:"online"`
	UploadToken string       `json:"uploadToken,omitempty"`
}

func NewLoginOKEvent(profile user.Profile, online []string, uploadToken string) LoginOKEvent {
	return LoginOKEvent{Type: TypeLoginOK, User: profile, Online: online, UploadToken: uploadToken}
}

// OnlineEvent carries the current online username list after a presence change.
type OnlineEvent struct {
	Type   MessageType `json:"type"`
	Online []string    `json:"online"`
}

func NewOnlineEvent(online []string) OnlineEvent {
	return OnlineEvent{Type: TypeOnline, Online: online}
}

// UserRegisteredEvent announces a new account to all connections.
type UserRegisteredEvent struct {
	Type MessageType  `json:"type"`
	User user.Profile `json:"user"`
}

func NewUserRegisteredEvent(profile user.Profile) UserRegisteredEvent {
	return UserRegisteredEvent{Type: TypeUserRegistered, User: profile}
}

// UpdateUsersEvent carries the full user snapshot after a profile mutation.
type UpdateUsersEvent struct {
	Type      MessageType    `json:"type"`
	Users     []user.Profile `json:"users"`
	UpdatedBy string         `json:"updatedBy"`
}

func NewUpdateUsersEvent(users []user.Profile, updatedBy string) UpdateUsersEvent {
	return UpdateUsersEvent{Type: TypeUpdateUsers, Users: users, UpdatedBy: updatedBy}
}

// MsgEvent is a chat message fanned out to all connections, the sender included.
type MsgEvent struct {
	Type      MessageType `json:"type"`
	ID        string      `json:"id"`
	From      string      `json:"from"`
	Text      string      `json:"text"`
	Timestamp time.Time   `json:"timestamp"`
}

func NewMsgEvent(id, from, text string) MsgEvent {
	return MsgEvent{Type: TypeMsg, ID: id, From: from, Text: text, Timestamp: time.Now().UTC()}
}

// ErrorEvent reports a failed operation to the originating connection only.
type ErrorEvent struct {
	Type    MessageType `json:"type"`
	Code    int         `json:"code"`
	Message string      `json:"message"`
}

func NewErrorEvent(code int, message string) ErrorEvent {
	return ErrorEvent{Type: TypeError, Code: code, Message: message}
}
