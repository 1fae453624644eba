package google

import (
	"context"
	"net/url"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/klokku/multical/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func TestAuthURL(t *testing.T) {
	cfg := config.Google{ClientId: "client-123", ClientSecret: "secret"}

	u, err := url.Parse(AuthURL(cfg, "state-token"))
	require.NoError(t, err)

	q := u.Query()
	assert.Equal(t, "client-123", q.Get("client_id"))
	assert.Equal(t, "state-token", q.Get("state"))
	assert.Equal(t, "offline", q.Get("access_type"))
	assert.Equal(t, redirectURL, q.Get("redirect_uri"))
}

func TestToken_MissingFileMeansUnauthenticated(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.json")

	_, err := readToken(path)
	assert.ErrorIs(t, err, ErrUnauthenticated)

	_, err = NewService(context.Background(), config.Google{TokenFile: path})
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestToken_WriteAndRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.json")
	expiry := time.Date(2030, time.January, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, writeToken(path, &oauth2.Token{AccessToken: "access", RefreshToken: "refresh", Expiry: expiry}))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	token, err := readToken(path)
	require.NoError(t, err)
	assert.Equal(t, "access", token.AccessToken)
	assert.Equal(t, "refresh", token.RefreshToken)
	assert.True(t, expiry.Equal(token.Expiry))
}

func TestToken_Corrupted(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	_, err := readToken(path)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrUnauthenticated)
}
