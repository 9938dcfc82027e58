package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const testToken = "test-session-token"

// fakeBackend mimics the relevant server endpoints: verify issues a token
// for the right passkey, privileged writes demand it back.
func fakeBackend(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/admin/verify", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		body := struct {
			Passkey string `json:"passkey"`
		}{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		if body.Passkey != "right-one" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"authenticated": false, "error": "invalid passkey"}`))
			return
		}
		_, _ = w.Write([]byte(`{"authenticated": true, "token": "` + testToken + `"}`))
	})
	checkAuth := func(w http.ResponseWriter, r *http.Request) bool {
		if r.Header.Get("Authorization") != "Bearer "+testToken {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error": "token validation failed"}`))
			return false
		}
		return true
	}
	mux.HandleFunc("/admin/upload", func(w http.ResponseWriter, r *http.Request) {
		if !checkAuth(w, r) {
			return
		}
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"success": true, "id": 42}`))
	})
	mux.HandleFunc("/complaints/7/resolve", func(w http.ResponseWriter, r *http.Request) {
		if !checkAuth(w, r) {
			return
		}
		_, _ = w.Write([]byte("resolved:7"))
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func TestClient_verify_thenUpload(t *testing.T) {
	server := fakeBackend(t)
	c := NewClient(server.URL, NewMemoryTokenStore())
	ctx := context.Background()

	assert.False(t, c.IsAuthenticated())

	ok, err := c.Verify(ctx, "right-one")
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, c.IsAuthenticated())

	id, err := c.Upload(ctx, "link", "user manual", "https://example.org/manual", "")
	require.NoError(t, err)
	assert.Equal(t, 42, id)

	require.NoError(t, c.ResolveComplaint(ctx, 7))
}

func TestClient_verify_wrongPasskey(t *testing.T) {
	server := fakeBackend(t)
	c := NewClient(server.URL, NewMemoryTokenStore())

	ok, err := c.Verify(context.Background(), "wrong-one")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.False(t, c.IsAuthenticated())
}

func TestClient_upload_withoutVerify(t *testing.T) {
	server := fakeBackend(t)
	c := NewClient(server.URL, NewMemoryTokenStore())

	// goes out without an Authorization header, server rejects it
	_, err := c.Upload(context.Background(), "link", "t", "https://example.org", "")
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.False(t, c.IsAuthenticated())
}

func TestClient_staleToken_clearedOnUnauthorized(t *testing.T) {
	server := fakeBackend(t)
	store := NewMemoryTokenStore()
	// a token the backend no longer accepts, e.g. after expiry
	store.Set("stale-token")
	c := NewClient(server.URL, store)

	require.True(t, c.IsAuthenticated())

	_, err := c.Upload(context.Background(), "link", "t", "https://example.org", "")
	require.ErrorIs(t, err, ErrUnauthorized)

	// the held token is gone, the client must verify again
	assert.False(t, c.IsAuthenticated())
	assert.Empty(t, store.Get())
}

func TestClient_reverify_afterCleared(t *testing.T) {
	server := fakeBackend(t)
	store := NewMemoryTokenStore()
	store.Set("stale-token")
	c := NewClient(server.URL, store)
	ctx := context.Background()

	_, err := c.Upload(ctx, "link", "t", "https://example.org", "")
	require.ErrorIs(t, err, ErrUnauthorized)

	ok, err := c.Verify(ctx, "right-one")
	require.NoError(t, err)
	require.True(t, ok)

	id, err := c.Upload(ctx, "link", "t", "https://example.org", "")
	require.NoError(t, err)
	assert.Equal(t, 42, id)
}
