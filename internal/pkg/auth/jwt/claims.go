package jwt

import "github.com/golang-jwt/jwt"

// Payload defines the structure of the JWT claims issued by the server.
// A token is handed out on successful WebSocket login and authorizes
// HTTP side-channel operations (avatar upload) for that username only.
type Payload struct {
	// StandardClaims embeds the standard JWT fields such as Exp (Expiration),
	// Iat (Issued At), and Iss (Issuer).
	jwt.StandardClaims `json:"standard_claims"`

	// Username is the account name the token holder authenticated as.
	Username string `json:"username"`
}
