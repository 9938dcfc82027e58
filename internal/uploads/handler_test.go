package uploads

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/horlapookie/supportsite/internal/auth"
	"github.com/horlapookie/supportsite/internal/middleware"
	"github.com/horlapookie/supportsite/internal/telemetry/metrics"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const testPasskey = "test-admin-passkey"

// setupGuardedUploadsRouter wires the uploads handler behind the auth
// middleware, the way the server does it.
func setupGuardedUploadsRouter(t *testing.T, repo uploadsRepo) *mux.Router {
	t.Helper()

	r := mux.NewRouter()
	handler := NewHandler(repo, metrics.NewTestManager())
	handler.SetupRoutes(r)

	authMiddleware := middleware.NewAuthMiddlewareHandler(auth.NewTokenChecker(testPasskey))
	r.Use(authMiddleware.AuthCheck())
	return r
}

func adminTokenForTests(t *testing.T) string {
	t.Helper()

	token, ok, err := auth.NewVerifier(testPasskey).Verify(testPasskey)
	require.NoError(t, err)
	require.True(t, ok)
	return token
}

func newUploadJson() string {
	return fmt.Sprintf(
		`{"type": "link", "title": %q, "url": %q, "description": %q}`,
		gofakeit.Sentence(3), gofakeit.URL(), gofakeit.Sentence(5),
	)
}

func TestHandler_upload_withValidToken(t *testing.T) {
	router := setupGuardedUploadsRouter(t, NewMockUploadsRepo())

	req, err := http.NewRequest("POST", "/admin/upload", strings.NewReader(newUploadJson()))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+adminTokenForTests(t))

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	require.Equal(t, http.StatusCreated, rr.Code)
	assert.Contains(t, rr.Body.String(), `"success": true`)
}

func TestHandler_upload_noToken(t *testing.T) {
	router := setupGuardedUploadsRouter(t, NewMockUploadsRepo())

	req, err := http.NewRequest("POST", "/admin/upload", strings.NewReader(newUploadJson()))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	require.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, `{"error": "no token provided"}`, rr.Body.String())
}

func TestHandler_upload_invalidToken(t *testing.T) {
	router := setupGuardedUploadsRouter(t, NewMockUploadsRepo())

	testCases := []struct {
		name  string
		token string
	}{
		{name: "garbage", token: "not-a-jwt-at-all"},
		{name: "signed with a different secret", token: func() string {
			token, ok, err := auth.NewVerifier("other-secret").Verify("other-secret")
			require.NoError(t, err)
			require.True(t, ok)
			return token
		}()},
		{name: "expired", token: func() string {
			verifier := auth.NewVerifier(testPasskey)
			verifier.Now = func() time.Time { return time.Now().Add(-auth.TokenTTL - time.Minute) }
			token, ok, err := verifier.Verify(testPasskey)
			require.NoError(t, err)
			require.True(t, ok)
			return token
		}()},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req, err := http.NewRequest("POST", "/admin/upload", strings.NewReader(newUploadJson()))
			require.NoError(t, err)
			req.Header.Set("Content-Type", "application/json")
			req.Header.Set("Authorization", "Bearer "+tc.token)

			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, req)
			require.Equal(t, http.StatusUnauthorized, rr.Code)
			// forged and expired tokens must be indistinguishable
			assert.Equal(t, `{"error": "token validation failed"}`, rr.Body.String())
		})
	}
}

func TestHandler_upload_invalidPayload(t *testing.T) {
	router := setupGuardedUploadsRouter(t, NewMockUploadsRepo())

	testCases := []struct {
		name string
		body string
	}{
		{name: "no title", body: `{"type": "link", "url": "https://example.org"}`},
		{name: "no url", body: `{"type": "file", "title": "user manual"}`},
		{name: "bad type", body: `{"type": "hologram", "title": "t", "url": "https://example.org"}`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req, err := http.NewRequest("POST", "/admin/upload", strings.NewReader(tc.body))
			require.NoError(t, err)
			req.Header.Set("Content-Type", "application/json")
			req.Header.Set("Authorization", "Bearer "+adminTokenForTests(t))

			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, req)
			require.Equal(t, http.StatusBadRequest, rr.Code)
		})
	}
}

func TestHandler_list_isPublic(t *testing.T) {
	repo := NewMockUploadsRepo()
	router := setupGuardedUploadsRouter(t, repo)

	// seed through the guarded endpoint first
	req, err := http.NewRequest("POST", "/admin/upload", strings.NewReader(newUploadJson()))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+adminTokenForTests(t))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	require.Equal(t, http.StatusCreated, rr.Code)

	// no token on the read
	req, err = http.NewRequest("GET", "/admin/upload", nil)
	require.NoError(t, err)
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"link"`)
}
