package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// localStore implements AvatarStore on the local filesystem. Files land in a
// single directory served statically by the HTTP layer.
type localStore struct {
	dir     string
	baseURL string
}

func newLocalStore(dir, baseURL string) (*localStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create avatar directory: %w", err)
	}

	return &localStore{
		dir:     dir,
		baseURL: baseURL,
	}, nil
}

// Save writes the avatar as <username><ext> inside the store directory. The
// write goes to a temp file first so a crash mid-write never leaves a corrupt
// avatar at the public path.
func (s *localStore) Save(ctx context.Context, username string, data []byte, mimeType string) (string, error) {
	ext, ok := MIMEToExt[mimeType]
	if !ok {
		return "", fmt.Errorf("unsupported avatar MIME type %q", mimeType)
	}

	fileName := username + ext
	target := filepath.Join(s.dir, fileName)

	tmp := target + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return "", fmt.Errorf("write avatar file: %w", err)
	}

	if err := os.Rename(tmp, target); err != nil {
		return "", fmt.Errorf("replace avatar file: %w", err)
	}

	return s.baseURL + "/" + fileName, nil
}
