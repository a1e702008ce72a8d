package storage

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"loan-marketplace/internal/config"
	"loan-marketplace/internal/pkg/apperrors"
)

// LocalStore keeps uploaded evidence on disk under a root directory and
// exposes it under a base URL.
type LocalStore struct {
	root    string
	baseURL string
	logger  *slog.Logger
}

func NewLocalStore(cfg config.StorageConfig, logger *slog.Logger) (*LocalStore, error) {
	if cfg.Directory == "" {
		return nil, fmt.Errorf("%w: storage directory is required", apperrors.ErrInvalidArgument)
	}
	if err := os.MkdirAll(cfg.Directory, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	return &LocalStore{
		root:    cfg.Directory,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		logger:  logger.With("component", "LocalStore"),
	}, nil
}

// Put copies the file at localPath to key and returns its public URL.
func (s *LocalStore) Put(ctx context.Context, localPath, key string) (string, error) {
	clean, err := cleanKey(key)
	if err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	src, err := os.Open(localPath)
	if err != nil {
		return "", fmt.Errorf("failed to open upload: %w", err)
	}
	defer src.Close()

	dest := filepath.Join(s.root, filepath.FromSlash(clean))
	if err := os.MkdirAll(filepath.Dir(dest), 0o750); err != nil {
		return "", fmt.Errorf("failed to prepare artifact directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dest), ".upload-*")
	if err != nil {
		return "", fmt.Errorf("failed to create artifact: %w", err)
	}
	if _, err := io.Copy(tmp, src); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to write artifact: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to write artifact: %w", err)
	}
	if err := os.Rename(tmp.Name(), dest); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to store artifact: %w", err)
	}

	s.logger.DebugContext(ctx, "Artifact stored", "key", clean)
	return s.urlFor(clean), nil
}

func (s *LocalStore) urlFor(key string) string {
	segments := strings.Split(key, "/")
	for i, seg := range segments {
		segments[i] = url.PathEscape(seg)
	}
	return s.baseURL + "/" + strings.Join(segments, "/")
}

func cleanKey(key string) (string, error) {
	clean := path.Clean("/" + strings.ReplaceAll(key, "\\", "/"))
	clean = strings.TrimPrefix(clean, "/")
	if clean == "" || clean == "." {
		return "", apperrors.NewValidationError("key", "artifact key is required")
	}
	return clean, nil
}
