package articles

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/horlapookie/supportsite/internal/telemetry/metrics"
	"github.com/horlapookie/supportsite/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

type newArticleRequest struct {
	Title    string   `json:"title"`
	Content  string   `json:"content"`
	Category string   `json:"category"`
	Tags     []string `json:"tags"`
}

type articlesRepo interface {
	Add(ctx context.Context, article *Article) error
	All(ctx context.Context) ([]Article, error)
	MarkViewed(ctx context.Context, id int) error
}

type Handler struct {
	repo    articlesRepo
	metrics *metrics.Manager
}

func NewHandler(repo articlesRepo, metricsManager *metrics.Manager) *Handler {
	return &Handler{
		repo:    repo,
		metrics: metricsManager,
	}
}

func (handler *Handler) SetupRoutes(router *mux.Router) {
	router.HandleFunc("/articles", handler.handleAll).Methods("GET").Name("all-articles")
	router.HandleFunc("/articles", handler.handleAdd).Methods("POST", "OPTIONS").Name("new-article")
	router.HandleFunc("/articles/{id}/viewed", handler.handleViewed).Methods("PATCH", "OPTIONS").Name("article-viewed")
}

func (handler *Handler) handleAll(w http.ResponseWriter, r *http.Request) {
	allArticles, err := handler.repo.All(r.Context())
	if err != nil {
		log.Errorf("get all articles error: %s", err)
		http.Error(w, "get all articles error", http.StatusInternalServerError)
		return
	}

	if len(allArticles) == 0 {
		pkg.WriteJSONResponseOK(w, "[]")
		return
	}

	articlesJson, err := json.Marshal(allArticles)
	if err != nil {
		log.Errorf("marshal all articles error: %s", err)
		http.Error(w, "marshal all articles error", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, articlesJson)
}

func (handler *Handler) handleAdd(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodOptions {
		w.Header().Add("Allow", "POST, OPTIONS")
		w.WriteHeader(http.StatusOK)
		return
	}

	var newArticleReq newArticleRequest
	if r.Header.Get("Content-Type") == "application/json" {
		if err := json.NewDecoder(r.Body).Decode(&newArticleReq); err != nil {
			log.Errorf("new article, unmarshal json params: %s", err)
			pkg.WriteJSONError(w, "add article failed", http.StatusBadRequest)
			return
		}
	} else {
		if err := r.ParseForm(); err != nil {
			log.Errorf("add new article failed, parse form error: %s", err)
			pkg.WriteJSONError(w, "parse form error", http.StatusInternalServerError)
			return
		}
		newArticleReq = newArticleRequest{
			Title:    r.Form.Get("title"),
			Content:  r.Form.Get("content"),
			Category: r.Form.Get("category"),
		}
		if tags := r.Form.Get("tags"); tags != "" {
			newArticleReq.Tags = strings.Split(tags, ",")
		}
	}

	if newArticleReq.Title == "" {
		pkg.WriteJSONError(w, "error, title empty", http.StatusBadRequest)
		return
	}
	if newArticleReq.Content == "" {
		pkg.WriteJSONError(w, "error, content empty", http.StatusBadRequest)
		return
	}

	newArticle := &Article{
		Title:     newArticleReq.Title,
		Content:   newArticleReq.Content,
		Category:  newArticleReq.Category,
		Tags:      newArticleReq.Tags,
		Views:     0,
		CreatedAt: time.Now(),
	}

	if err := handler.repo.Add(r.Context(), newArticle); err != nil {
		log.Errorf("add new article failed: %s", err)
		pkg.WriteJSONError(w, "add new article failed", http.StatusInternalServerError)
		return
	}

	handler.metrics.CounterArticles.Inc()

	log.Tracef("new article %d: [%s] added", newArticle.ID, newArticle.Title)

	pkg.WriteResponse(
		w,
		pkg.ContentType.JSON,
		fmt.Sprintf(`{"success": true, "id": %d}`, newArticle.ID),
		http.StatusCreated,
	)
}

func (handler *Handler) handleViewed(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodOptions {
		w.Header().Add("Allow", "PATCH, OPTIONS")
		w.WriteHeader(http.StatusOK)
		return
	}

	vars := mux.Vars(r)

	idStr := vars["id"]
	id, err := strconv.Atoi(idStr)
	if err != nil {
		pkg.WriteJSONError(w, "error, id NaN", http.StatusBadRequest)
		return
	}

	if err := handler.repo.MarkViewed(r.Context(), id); err != nil {
		if errors.Is(err, ErrArticleNotFound) {
			pkg.WriteJSONError(w, "article not found", http.StatusNotFound)
			return
		}
		log.Errorf("mark article %d viewed: %s", id, err)
		pkg.WriteJSONError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	pkg.WriteTextResponseOK(w, fmt.Sprintf("updated:%d", id))
}
