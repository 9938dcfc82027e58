package uploads

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/horlapookie/supportsite/internal/telemetry/metrics"
	"github.com/horlapookie/supportsite/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

type newUploadRequest struct {
	Type        string `json:"type"`
	Title       string `json:"title"`
	URL         string `json:"url"`
	Description string `json:"description"`
	Category    string `json:"category"`
}

type uploadsRepo interface {
	Add(ctx context.Context, upload *Upload) error
	All(ctx context.Context) ([]Upload, error)
}

type Handler struct {
	repo    uploadsRepo
	metrics *metrics.Manager
}

func NewHandler(repo uploadsRepo, metricsManager *metrics.Manager) *Handler {
	return &Handler{
		repo:    repo,
		metrics: metricsManager,
	}
}

// SetupRoutes must run against the main router, before any /admin
// subrouter gets registered, or mux will never reach these paths.
func (handler *Handler) SetupRoutes(router *mux.Router) {
	router.HandleFunc("/admin/upload", handler.handleAll).Methods("GET").Name("all-uploads")
	// the auth middleware guards this one
	router.HandleFunc("/admin/upload", handler.handleAdd).Methods("POST", "OPTIONS").Name("new-upload")
}

func (handler *Handler) handleAll(w http.ResponseWriter, r *http.Request) {
	uploads, err := handler.repo.All(r.Context())
	if err != nil {
		log.Errorf("get all uploads error: %s", err)
		http.Error(w, "failed to get uploads", http.StatusInternalServerError)
		return
	}

	if len(uploads) == 0 {
		pkg.WriteJSONResponseOK(w, "[]")
		return
	}

	uploadsJson, err := json.Marshal(uploads)
	if err != nil {
		log.Errorf("marshal uploads error: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, uploadsJson)
}

func (handler *Handler) handleAdd(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodOptions {
		w.Header().Add("Allow", "POST, OPTIONS")
		w.WriteHeader(http.StatusOK)
		return
	}

	var newUploadReq newUploadRequest
	if r.Header.Get("Content-Type") == "application/json" {
		if err := json.NewDecoder(r.Body).Decode(&newUploadReq); err != nil {
			log.Errorf("new upload, unmarshal json params: %s", err)
			pkg.WriteJSONError(w, "add upload failed", http.StatusBadRequest)
			return
		}
	} else {
		if err := r.ParseForm(); err != nil {
			log.Errorf("add new upload failed, parse form error: %s", err)
			pkg.WriteJSONError(w, "parse form error", http.StatusInternalServerError)
			return
		}
		newUploadReq = newUploadRequest{
			Type:        r.Form.Get("type"),
			Title:       r.Form.Get("title"),
			URL:         r.Form.Get("url"),
			Description: r.Form.Get("description"),
			Category:    r.Form.Get("category"),
		}
	}

	newUpload := &Upload{
		Type:        newUploadReq.Type,
		Title:       newUploadReq.Title,
		URL:         newUploadReq.URL,
		Description: newUploadReq.Description,
		Category:    newUploadReq.Category,
		CreatedAt:   time.Now(),
	}

	if err := newUpload.Validate(); err != nil {
		pkg.WriteJSONError(w, fmt.Sprintf("error, %s", err), http.StatusBadRequest)
		return
	}

	if err := handler.repo.Add(r.Context(), newUpload); err != nil {
		log.Errorf("add new upload failed: %s", err)
		pkg.WriteJSONError(w, "add new upload failed", http.StatusInternalServerError)
		return
	}

	handler.metrics.CounterAdminUploads.Inc()

	log.Tracef("new %s upload %d added: %s", newUpload.Type, newUpload.ID, newUpload.Title)

	pkg.WriteResponse(
		w,
		pkg.ContentType.JSON,
		fmt.Sprintf(`{"success": true, "id": %d}`, newUpload.ID),
		http.StatusCreated,
	)
}
