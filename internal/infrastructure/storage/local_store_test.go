package storage

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loan-marketplace/internal/config"
	"loan-marketplace/internal/pkg/apperrors"
)

func newStore(t *testing.T) (*LocalStore, string) {
	t.Helper()
	root := t.TempDir()
	store, err := NewLocalStore(config.StorageConfig{
		Directory: root,
		BaseURL:   "http://files.local/artifacts/",
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	return store, root
}

func writeUpload(t *testing.T, content string) string {
	t.Helper()
	f, err := os.CreateTemp(t.TempDir(), "upload-*")
	require.NoError(t, err)
	_, err = f.WriteString(content)
	require.NoError(t, err)
	require.NoError(t, f.Close())
	return f.Name()
}

func TestLocalStore_Put(t *testing.T) {
	store, root := newStore(t)
	src := writeUpload(t, "statement")

	u, err := store.Put(context.Background(), src, "co-borrowers/7/bank_statement/march 2024.pdf")

	require.NoError(t, err)
	assert.Equal(t, "http://files.local/artifacts/co-borrowers/7/bank_statement/march%202024.pdf", u)

	data, err := os.ReadFile(filepath.Join(root, "co-borrowers", "7", "bank_statement", "march 2024.pdf"))
	require.NoError(t, err)
	assert.Equal(t, "statement", string(data))
}

func TestLocalStore_Put_KeyCannotEscapeRoot(t *testing.T) {
	store, root := newStore(t)
	src := writeUpload(t, "x")

	u, err := store.Put(context.Background(), src, "../../etc/passwd")

	require.NoError(t, err)
	assert.Equal(t, "http://files.local/artifacts/etc/passwd", u)
	_, err = os.Stat(filepath.Join(root, "etc", "passwd"))
	assert.NoError(t, err)
}

func TestLocalStore_Put_Errors(t *testing.T) {
	store, _ := newStore(t)

	_, err := store.Put(context.Background(), writeUpload(t, "x"), "")
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = store.Put(context.Background(), filepath.Join(t.TempDir(), "missing"), "a/b")
	assert.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = store.Put(ctx, writeUpload(t, "x"), "a/b")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewLocalStore_RequiresDirectory(t *testing.T) {
	_, err := NewLocalStore(config.StorageConfig{}, slog.Default())
	assert.ErrorIs(t, err, apperrors.ErrInvalidArgument)
}
