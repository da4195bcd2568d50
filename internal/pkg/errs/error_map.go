/*
Package errs provides custom error types and application-level error code constants.

This file defines the map from error codes to the CustomError struct, used to
standardize HTTP responses and WebSocket error events.
*/
package errs

import "net/http"

// errorMap stores the detailed CustomError struct corresponding to every application
// error code. The key is the error code (int), and the value contains the user
// message and HTTP status code.
var errorMap = map[int]CustomError{
	// 1xxx: General Request Handling Errors
	ErrInvalidParams:         {Code: ErrInvalidParams, Message: "Invalid request parameters.", Status: http.StatusBadRequest},
	ErrUnsupportedMediaType:  {Code: ErrUnsupportedMediaType, Message: "Unsupported request format.", Status: http.StatusBadRequest},
	ErrInvalidJSONFormat:     {Code: ErrInvalidJSONFormat, Message: "Unsupported request format.", Status: http.StatusBadRequest},
	ErrExtraContentInBody:    {Code: ErrExtraContentInBody, Message: "Request contains unexpected data.", Status: http.StatusBadRequest},
	ErrRequestEntityTooLarge: {Code: ErrRequestEntityTooLarge, Message: "Request size is too large.", Status: http.StatusBadRequest},

	// 2xxx: Avatar and Content Errors
	ErrAvatarTooLarge: {Code: ErrAvatarTooLarge, Message: "Image too large.", Status: http.StatusBadRequest},
	ErrAvatarInvalid:  {Code: ErrAvatarInvalid, Message: "Unsupported image format.", Status: http.StatusBadRequest},

	// 3xxx: User and Session Errors
	ErrInvalidUsername:    {Code: ErrInvalidUsername, Message: "Invalid username format. Use only letters, numbers and underscore.", Status: http.StatusBadRequest},
	ErrUserAlreadyExists:  {Code: ErrUserAlreadyExists, Message: "User already exists."},
	ErrInvalidCredentials: {Code: ErrInvalidCredentials, Message: "Wrong username or password."},
	ErrAlreadyLoggedIn:    {Code: ErrAlreadyLoggedIn, Message: "User is already logged in from another connection."},
	ErrUnauthorized:       {Code: ErrUnauthorized, Message: "Please sign in to continue.", Status: http.StatusUnauthorized},
	ErrUserNotFound:       {Code: ErrUserNotFound, Message: "Account not found.", Status: http.StatusNotFound},
	ErrMalformedEnvelope:  {Code: ErrMalformedEnvelope, Message: "Invalid message format."},

	// 5xxx: Internal System Errors
	ErrUnknown:       {Code: ErrUnknown, Message: "Something went wrong. Please try again.", Status: http.StatusInternalServerError},
	ErrStorageFailed: {Code: ErrStorageFailed, Message: "Failed to save changes. Please try again.", Status: http.StatusInternalServerError},
}
