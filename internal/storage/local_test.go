package storage

import (
	"context"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"courseplatform/internal/domain"
)

func newLocal(t *testing.T) *LocalStorage {
	t.Helper()
	s, err := NewLocalStorage(t.TempDir(), "http://localhost:8080/files", "test-secret", time.Hour)
	require.NoError(t, err)
	return s
}

func TestLocalStorage(t *testing.T) {
	exerciseBackend(t, newLocal(t))
}

func TestLocalStorage_RejectsEscapingKeys(t *testing.T) {
	s := newLocal(t)
	ctx := context.Background()

	for _, key := range []string{"", "../outside", "a/../../b"} {
		err := s.Upload(ctx, key, strings.NewReader("x"), 1)
		assert.ErrorIs(t, err, domain.ErrStorage, "key %q", key)
	}
}

func TestLocalStorage_NoTempFilesLeft(t *testing.T) {
	dir := t.TempDir()
	s, err := NewLocalStorage(dir, "/files", "secret", time.Minute)
	require.NoError(t, err)

	require.NoError(t, s.Upload(context.Background(), "docs/a.pdf", strings.NewReader("%PDF"), 4))

	entries, err := os.ReadDir(filepath.Join(dir, "docs"))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "a.pdf", entries[0].Name())
}

func TestLocalStorage_PresignedTokenRoundTrip(t *testing.T) {
	s := newLocal(t)
	ctx := context.Background()
	require.NoError(t, s.Upload(ctx, "videos/lesson 1.mp4", strings.NewReader("data"), 4))

	raw, err := s.PresignedURL(ctx, "videos/lesson 1.mp4")
	require.NoError(t, err)

	u, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "/files/videos/lesson 1.mp4", u.Path)

	token := u.Query().Get("token")
	require.NotEmpty(t, token)
	assert.NoError(t, s.VerifyToken("videos/lesson 1.mp4", token))
	assert.ErrorIs(t, s.VerifyToken("videos/other.mp4", token), ErrInvalidToken)
	assert.ErrorIs(t, s.VerifyToken("videos/lesson 1.mp4", "garbage"), ErrInvalidToken)
}

func TestURLSigner_Expiry(t *testing.T) {
	signer := NewURLSigner("secret")
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	signer.now = func() time.Time { return now }

	token, err := signer.Sign("k", time.Minute)
	require.NoError(t, err)
	require.NoError(t, signer.Verify("k", token))

	now = now.Add(2 * time.Minute)
	assert.ErrorIs(t, signer.Verify("k", token), ErrInvalidToken)

	other := NewURLSigner("different")
	other.now = signer.now
	now = now.Add(-2 * time.Minute)
	assert.ErrorIs(t, other.Verify("k", token), ErrInvalidToken)
}
