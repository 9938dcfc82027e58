package forum

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/horlapookie/supportsite/internal/telemetry/metrics"
	"github.com/horlapookie/supportsite/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

type newPostRequest struct {
	Title    string `json:"title"`
	Content  string `json:"content"`
	Category string `json:"category"`
	Author   string `json:"author"`
}

type newReplyRequest struct {
	Author  string `json:"author"`
	Content string `json:"content"`
}

type forumRepo interface {
	AddPost(ctx context.Context, post *Post) error
	AddReply(ctx context.Context, reply *Reply) error
	All(ctx context.Context) ([]Post, error)
}

type Handler struct {
	repo    forumRepo
	metrics *metrics.Manager
}

func NewHandler(repo forumRepo, metricsManager *metrics.Manager) *Handler {
	return &Handler{
		repo:    repo,
		metrics: metricsManager,
	}
}

func (handler *Handler) SetupRoutes(router *mux.Router) {
	router.HandleFunc("/forum/posts", handler.handleAll).Methods("GET").Name("all-posts")
	router.HandleFunc("/forum/posts", handler.handleNewPost).Methods("POST", "OPTIONS").Name("new-post")
	router.HandleFunc("/forum/posts/{id}/replies", handler.handleNewReply).Methods("POST", "OPTIONS").Name("new-reply")
}

func (handler *Handler) handleAll(w http.ResponseWriter, r *http.Request) {
	posts, err := handler.repo.All(r.Context())
	if err != nil {
		log.Errorf("get forum posts error: %s", err)
		http.Error(w, "failed to get forum posts", http.StatusInternalServerError)
		return
	}

	if len(posts) == 0 {
		pkg.WriteJSONResponseOK(w, "[]")
		return
	}

	postsJson, err := json.Marshal(posts)
	if err != nil {
		log.Errorf("marshal forum posts error: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, postsJson)
}

func (handler *Handler) handleNewPost(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodOptions {
		w.Header().Add("Allow", "POST, OPTIONS")
		w.WriteHeader(http.StatusOK)
		return
	}

	var newPostReq newPostRequest
	if r.Header.Get("Content-Type") == "application/json" {
		if err := json.NewDecoder(r.Body).Decode(&newPostReq); err != nil {
			log.Errorf("new forum post, unmarshal json params: %s", err)
			pkg.WriteJSONError(w, "add post failed", http.StatusBadRequest)
			return
		}
	} else {
		if err := r.ParseForm(); err != nil {
			log.Errorf("add new forum post failed, parse form error: %s", err)
			pkg.WriteJSONError(w, "parse form error", http.StatusInternalServerError)
			return
		}
		newPostReq = newPostRequest{
			Title:    r.Form.Get("title"),
			Content:  r.Form.Get("content"),
			Category: r.Form.Get("category"),
			Author:   r.Form.Get("author"),
		}
	}

	if newPostReq.Title == "" {
		pkg.WriteJSONError(w, "error, title empty", http.StatusBadRequest)
		return
	}
	if newPostReq.Content == "" {
		pkg.WriteJSONError(w, "error, content empty", http.StatusBadRequest)
		return
	}
	if newPostReq.Author == "" {
		newPostReq.Author = "anonymous"
	}

	newPost := &Post{
		Title:     newPostReq.Title,
		Content:   newPostReq.Content,
		Category:  newPostReq.Category,
		Author:    newPostReq.Author,
		CreatedAt: time.Now(),
	}

	if err := handler.repo.AddPost(r.Context(), newPost); err != nil {
		log.Errorf("add new forum post failed: %s", err)
		pkg.WriteJSONError(w, "add new post failed", http.StatusInternalServerError)
		return
	}

	handler.metrics.CounterForumPosts.Inc()

	log.Tracef("new forum post %d: [%s] added by [%s]", newPost.ID, newPost.Title, newPost.Author)

	pkg.WriteResponse(
		w,
		pkg.ContentType.JSON,
		fmt.Sprintf(`{"success": true, "id": %d}`, newPost.ID),
		http.StatusCreated,
	)
}

func (handler *Handler) handleNewReply(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodOptions {
		w.Header().Add("Allow", "POST, OPTIONS")
		w.WriteHeader(http.StatusOK)
		return
	}

	vars := mux.Vars(r)

	postID, err := strconv.Atoi(vars["id"])
	if err != nil {
		pkg.WriteJSONError(w, "error, post id NaN", http.StatusBadRequest)
		return
	}

	var newReplyReq newReplyRequest
	if r.Header.Get("Content-Type") == "application/json" {
		if err := json.NewDecoder(r.Body).Decode(&newReplyReq); err != nil {
			log.Errorf("new forum reply, unmarshal json params: %s", err)
			pkg.WriteJSONError(w, "add reply failed", http.StatusBadRequest)
			return
		}
	} else {
		if err := r.ParseForm(); err != nil {
			log.Errorf("add new forum reply failed, parse form error: %s", err)
			pkg.WriteJSONError(w, "parse form error", http.StatusInternalServerError)
			return
		}
		newReplyReq = newReplyRequest{
			Author:  r.Form.Get("author"),
			Content: r.Form.Get("content"),
		}
	}

	if newReplyReq.Content == "" {
		pkg.WriteJSONError(w, "error, content empty", http.StatusBadRequest)
		return
	}
	if newReplyReq.Author == "" {
		newReplyReq.Author = "anonymous"
	}

	newReply := &Reply{
		PostID:    postID,
		Author:    newReplyReq.Author,
		Content:   newReplyReq.Content,
		CreatedAt: time.Now(),
	}

	if err := handler.repo.AddReply(r.Context(), newReply); err != nil {
		if errors.Is(err, ErrPostNotFound) {
			pkg.WriteJSONError(w, "post not found", http.StatusNotFound)
			return
		}
		log.Errorf("add new forum reply failed: %s", err)
		pkg.WriteJSONError(w, "add new reply failed", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponse(
		w,
		pkg.ContentType.JSON,
		fmt.Sprintf(`{"success": true, "id": %d}`, newReply.ID),
		http.StatusCreated,
	)
}
