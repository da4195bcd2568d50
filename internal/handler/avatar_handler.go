/*
Package handler provides the HTTP handler for avatar ingestion.

Avatars arrive over HTTP as base64-encoded bytes, are validated and handed to
the avatar storage backend, and the returned resource path is recorded on the
user's profile. The updated snapshot is then fanned out over the Hub.
*/
package handler

import (
	"encoding/base64"
	"errors"
	"net/http"
	"strings"

	"beacon/internal/app/chat"
	"beacon/internal/app/storage"
	"beacon/internal/app/user"
	"beacon/internal/pkg/auth/jwt"
	"beacon/internal/pkg/errs"
	"beacon/internal/pkg/logx"
	"beacon/internal/pkg/req"
	"beacon/internal/pkg/resp"
)

// UploadAvatarInput defines the JSON input structure for the avatar upload.
// Image carries the raw bytes base64-encoded, optionally as a data URL.
type UploadAvatarInput struct {
	Username string `json:"username"`
	Image    string `json:"image"`
}

// HandleUploadAvatar creates an HTTP HandlerFunc that ingests an avatar image
// for the authenticated user. The upload token issued at login must match the
// target username.
func HandleUploadAvatar(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := jwt.GetPayloadFromContext(r)
		if identity == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		var input UploadAvatarInput
		if customErr := req.BindJSON(w, r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		if input.Username == "" || input.Image == "" {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		if !user.ValidName(input.Username) {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidUsername))
			return
		}

		if identity.Username != input.Username {
			logx.Warn("Avatar upload rejected: token/username mismatch",
				"token_username", identity.Username, "target_username", input.Username)
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		imageBytes, err := decodeImage(input.Image)
		if err != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrAvatarInvalid))
			return
		}

		mimeType, customErr := storage.ValidateAvatar(imageBytes)
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		avatarPath, err := deps.Avatars.Save(r.Context(), input.Username, imageBytes, mimeType)
		if err != nil {
			logx.Error(err, "Avatar storage failed", "username", input.Username)
			resp.RespondError(w, r, errs.NewError(errs.ErrStorageFailed))
			return
		}

		upd := user.Update{Avatar: &avatarPath}
		if err := deps.Store.Update(r.Context(), input.Username, upd); err != nil {
			if errors.Is(err, user.ErrNotFound) {
				resp.RespondError(w, r, errs.NewError(errs.ErrUserNotFound))
				return
			}

			logx.Error(err, "Failed to record avatar path", "username", input.Username)
			resp.RespondError(w, r, errs.NewError(errs.ErrStorageFailed))
			return
		}

		users, err := deps.Store.List(r.Context())
		if err != nil {
			logx.Error(err, "Failed to read user snapshot after avatar update")
		} else {
			deps.Hub.Broadcast(chat.NewUpdateUsersEvent(user.Profiles(users), input.Username))
		}

		resp.RespondSuccess(w, r, map[string]any{
			"avatar": avatarPath,
		})
	}
}

// decodeImage decodes a base64 payload, tolerating a data URL prefix
// ("data:image/png;base64,....") the way browser clients send it.
func decodeImage(encoded string) ([]byte, error) {
	if idx := strings.Index(encoded, ","); idx != -1 && strings.HasPrefix(encoded, "data:") {
		encoded = encoded[idx+1:]
	}

	return base64.StdEncoding.DecodeString(encoded)
}
