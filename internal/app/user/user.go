/*
Package user contains the account model and the durable user store.

It defines the User record persisted by the store, the public Profile view
sent to clients (credentials stripped), and username validation shared by the
WebSocket and HTTP layers.
*/
package user

import (
	"regexp"
	"time"
)

// MaxNickLen is the maximum nickname length; longer values are truncated on write.
const MaxNickLen = 50

// usernameRegex accepts 1-20 characters of letters, digits and underscore.
var usernameRegex = regexp.MustCompile(`^[A-Za-z0-9_]{1,20}$`)

// ValidName reports whether name is an acceptable username.
func ValidName(name string) bool {
	return usernameRegex.MatchString(name)
}

// ClampNick truncates nick to MaxNickLen characters.
func ClampNick(nick string) string {
	runes := []rune(nick)
	if len(runes) > MaxNickLen {
		return string(runes[:MaxNickLen])
	}
	return nick
}

// User is the account record held by the store. JSON tags match the on-disk
// users file layout; Pass never leaves the store in client-facing payloads
// (see Profile).
type User struct {
	Name       string    `json:"name"`
	Pass       string    `json:"pass"`
	Nick       string    `json:"nick"`
	Avatar     string    `json:"avatar"`
	Balance    float64   `json:"balance"`
	Registered time.Time `json:"registered"`
}

// Profile is the client-facing view of a User, with the credential stripped.
type Profile struct {
	Name       string    `json:"name"`
	Nick       string    `json:"nick"`
	Avatar     string    `json:"avatar"`
	Balance    float64   `json:"balance"`
	Registered time.Time `json:"registered"`
}

// Profile returns the client-facing view of the user.
func (u User) Profile() Profile {
	return Profile{
		Name:       u.Name,
		Nick:       u.Nick,
		Avatar:     u.Avatar,
		Balance:    u.Balance,
		Registered: u.Registered,
	}
}

// New constructs a fresh account with the defaults used at registration:
// the nickname starts as the username, balance at zero.
func New(name, pass string) User {
	return User{
		Name:       name,
		Pass:       pass,
		Nick:       name,
		Avatar:     "",
		Balance:    0,
		Registered: time.Now().UTC(),
	}
}

// Profiles maps a user slice to its client-facing views.
func Profiles(users []User) []Profile {
	profiles := make([]Profile, 0, len(users))
	for _, u := range users {
		profiles = append(profiles, u.Profile())
	}
	return profiles
}
