package handler

import (
	"beacon/internal/app/chat"
	"beacon/internal/app/storage"
	"beacon/internal/app/user"
	"beacon/internal/configs"
)

// AppDeps bundles the shared collaborators handed to every handler.
type AppDeps struct {
	Hub     *chat.Hub
	Store   user.Store
	Avatars storage.AvatarStore
	Config  *configs.AppConfig
}
