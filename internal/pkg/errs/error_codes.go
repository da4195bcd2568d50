/*
Package errs provides custom error types and application-level error code constants.

These error codes identify specific business or system errors both internally
within the server and in communication with clients.
*/
package errs

// 1xxx: General Request Handling Errors
const (
	// ErrInvalidParams indicates that request parameter validation failed.
	ErrInvalidParams = 1001

	// ErrUnsupportedMediaType indicates that the request header Content-Type is not supported.
	ErrUnsupportedMediaType = 1002

	// ErrInvalidJSONFormat indicates that the request body JSON format is incorrect (e.g., syntax error).
	ErrInvalidJSONFormat = 1003

	// ErrExtraContentInBody indicates that the request body contained extra content after valid JSON data.
	ErrExtraContentInBody = 1004

	// ErrRequestEntityTooLarge indicates that the request body size exceeded the server limit.
	ErrRequestEntityTooLarge = 1006
)

// 2xxx: Avatar and Content Errors
const (
	// ErrAvatarTooLarge indicates that the decoded avatar image exceeded the size limit.
	ErrAvatarTooLarge = 2101

	// ErrAvatarInvalid indicates that the avatar payload is not a supported image format.
	ErrAvatarInvalid = 2102
)

// 3xxx: User and Session Errors
const (
	// ErrInvalidUsername indicates that the username does not match the required format.
	ErrInvalidUsername = 3001

	// ErrUserAlreadyExists indicates that the requested username is already registered.
	ErrUserAlreadyExists = 3002

	// ErrInvalidCredentials indicates an unknown username or a password mismatch.
	ErrInvalidCredentials = 3003

	// ErrAlreadyLoggedIn indicates that the username is already bound to a live connection.
	ErrAlreadyLoggedIn = 3004

	// ErrUnauthorized indicates that the operation requires an authenticated session.
	ErrUnauthorized = 3005

	// ErrUserNotFound indicates that the referenced user does not exist.
	ErrUserNotFound = 3006

	// ErrMalformedEnvelope indicates an unparseable payload or an unknown message type.
	ErrMalformedEnvelope = 3007
)

// 5xxx: Internal System Errors
const (
	// ErrUnknown represents an unclassified, general server internal error.
	ErrUnknown = 5000

	// ErrStorageFailed indicates that a durable write (user store or avatar storage) failed.
	ErrStorageFailed = 5001
)
