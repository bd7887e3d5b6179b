// Package files stores uploaded avatars on the local filesystem.
package files

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/MrEthical07/campusauth/internal/ids"
	"github.com/MrEthical07/campusauth/store"
)

// DefaultMaxBytes caps avatar size when LocalStore.MaxBytes is zero.
const DefaultMaxBytes = 5 << 20

var (
	ErrTooLarge    = errors.New("files: avatar too large")
	ErrInvalidUser = errors.New("files: invalid user id")
)

var _ store.AvatarStore = (*LocalStore)(nil)

// LocalStore writes avatars below Root as avatars/<userID>/<ulid><ext>. The
// returned reference is that slash-separated path relative to Root.
type LocalStore struct {
	Root     string
	MaxBytes int64
}

// NewLocalStore returns a store rooted at root.
func NewLocalStore(root string) *LocalStore {
	return &LocalStore{Root: root, MaxBytes: DefaultMaxBytes}
}

func (s *LocalStore) StoreAvatar(ctx context.Context, userID string, avatar store.Avatar) (string, error) {
	if userID == "" || userID != filepath.Base(userID) || strings.HasPrefix(userID, ".") {
		return "", ErrInvalidUser
	}
	if avatar.Content == nil {
		return "", errors.New("files: avatar has no content")
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	limit := s.MaxBytes
	if limit <= 0 {
		limit = DefaultMaxBytes
	}

	ref := path.Join("avatars", userID, ids.New()+extension(avatar))
	full := filepath.Join(s.Root, filepath.FromSlash(ref))
	if err := os.MkdirAll(filepath.Dir(full), 0o750); err != nil {
		return "", fmt.Errorf("files: create avatar dir: %w", err)
	}

	f, err := os.OpenFile(full, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o640)
	if err != nil {
		return "", fmt.Errorf("files: create avatar: %w", err)
	}
	n, copyErr := io.Copy(f, io.LimitReader(avatar.Content, limit+1))
	closeErr := f.Close()
	switch {
	case copyErr != nil:
		_ = os.Remove(full)
		return "", fmt.Errorf("files: write avatar: %w", copyErr)
	case n > limit:
		_ = os.Remove(full)
		return "", ErrTooLarge
	case closeErr != nil:
		_ = os.Remove(full)
		return "", fmt.Errorf("files: close avatar: %w", closeErr)
	}
	return ref, nil
}

// Open returns a reader for a reference produced by StoreAvatar.
func (s *LocalStore) Open(ref string) (*os.File, error) {
	clean := path.Clean(ref)
	if !strings.HasPrefix(clean, "avatars/") || strings.Contains(clean, "..") {
		return nil, os.ErrNotExist
	}
	return os.Open(filepath.Join(s.Root, filepath.FromSlash(clean)))
}

func extension(a store.Avatar) string {
	ext := strings.ToLower(filepath.Ext(a.Filename))
	if ext != "" && len(ext) <= 6 && !strings.ContainsAny(ext, `/\`) {
		return ext
	}
	if a.ContentType != "" {
		if exts, err := mime.ExtensionsByType(a.ContentType); err == nil && len(exts) > 0 {
			return exts[0]
		}
	}
	return ".bin"
}
