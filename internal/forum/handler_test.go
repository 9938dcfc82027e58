package forum

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

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

func setupForumRouterForTests(t *testing.T, repo forumRepo) *mux.Router {
	t.Helper()

	r := mux.NewRouter()
	handler := NewHandler(repo, metrics.NewTestManager())
	handler.SetupRoutes(r)
	return r
}

func TestHandler_newPost_and_list(t *testing.T) {
	router := setupForumRouterForTests(t, NewMockForumRepo())

	newPostJson := fmt.Sprintf(
		`{"title": %q, "content": %q, "category": "general", "author": %q}`,
		gofakeit.Sentence(3), gofakeit.Paragraph(1, 2, 12, " "), gofakeit.Username(),
	)
	req, err := http.NewRequest("POST", "/forum/posts", strings.NewReader(newPostJson))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	require.Equal(t, http.StatusCreated, rr.Code)
	assert.Contains(t, rr.Body.String(), `"success": true`)

	req, err = http.NewRequest("GET", "/forum/posts", nil)
	require.NoError(t, err)
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	var posts []Post
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &posts))
	require.Len(t, posts, 1)
	assert.Equal(t, "general", posts[0].Category)
	assert.Empty(t, posts[0].Replies)
}

func TestHandler_newPost_form_anonymousAuthor(t *testing.T) {
	router := setupForumRouterForTests(t, NewMockForumRepo())

	form := url.Values{}
	form.Add("title", "printer on fire")
	form.Add("content", "how do I put it out?")
	req, err := http.NewRequest("POST", "/forum/posts", strings.NewReader(form.Encode()))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	require.Equal(t, http.StatusCreated, rr.Code)

	req, err = http.NewRequest("GET", "/forum/posts", nil)
	require.NoError(t, err)
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	var posts []Post
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &posts))
	require.Len(t, posts, 1)
	assert.Equal(t, "anonymous", posts[0].Author)
}

func TestHandler_replies(t *testing.T) {
	repo := NewMockForumRepo()
	ctx := context.Background()

	post := &Post{Title: "t", Content: "c", Author: "a", CreatedAt: time.Now()}
	require.NoError(t, repo.AddPost(ctx, post))

	router := setupForumRouterForTests(t, repo)

	replyJson := `{"author": "helper", "content": "try turning it off and on"}`
	req, err := http.NewRequest("POST", fmt.Sprintf("/forum/posts/%d/replies", post.ID), strings.NewReader(replyJson))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	require.Equal(t, http.StatusCreated, rr.Code)

	req, err = http.NewRequest("GET", "/forum/posts", nil)
	require.NoError(t, err)
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	var posts []Post
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &posts))
	require.Len(t, posts, 1)
	require.Len(t, posts[0].Replies, 1)
	assert.Equal(t, "helper", posts[0].Replies[0].Author)
	assert.Equal(t, post.ID, posts[0].Replies[0].PostID)
}

func TestHandler_reply_unknownPost(t *testing.T) {
	router := setupForumRouterForTests(t, NewMockForumRepo())

	req, err := http.NewRequest("POST", "/forum/posts/99/replies", strings.NewReader(`{"content": "hello?"}`))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	require.Equal(t, http.StatusNotFound, rr.Code)
}

func TestHandler_newPost_missingFields(t *testing.T) {
	router := setupForumRouterForTests(t, NewMockForumRepo())

	req, err := http.NewRequest("POST", "/forum/posts", strings.NewReader(`{"title": "no content"}`))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	require.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestHandler_list_newestFirst(t *testing.T) {
	repo := NewMockForumRepo()
	ctx := context.Background()
	now := time.Now()

	older := &Post{Title: "older", Content: "c", Author: "a", CreatedAt: now.Add(-time.Hour)}
	require.NoError(t, repo.AddPost(ctx, older))
	newer := &Post{Title: "newer", Content: "c", Author: "a", CreatedAt: now}
	require.NoError(t, repo.AddPost(ctx, newer))

	router := setupForumRouterForTests(t, repo)
	req, err := http.NewRequest("GET", "/forum/posts", nil)
	require.NoError(t, err)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	var posts []Post
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &posts))
	require.Len(t, posts, 2)
	assert.Equal(t, "newer", posts[0].Title)
	assert.Equal(t, "older", posts[1].Title)
}
