package complaints

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

type newComplaintRequest struct {
	SupportType string `json:"support_type"`
	Query       string `json:"query"`
	Email       string `json:"email"`
}

type complaintsRepo interface {
	Add(ctx context.Context, complaint *Complaint) error
	All(ctx context.Context) ([]Complaint, error)
	Resolve(ctx context.Context, id int) error
}

type Handler struct {
	repo    complaintsRepo
	metrics *metrics.Manager
}

func NewHandler(repo complaintsRepo, metricsManager *metrics.Manager) *Handler {
	return &Handler{
		repo:    repo,
		metrics: metricsManager,
	}
}

func (handler *Handler) SetupRoutes(router *mux.Router) {
	router.HandleFunc("/complaints", handler.handleAll).Methods("GET").Name("all-complaints")
	router.HandleFunc("/complaints", handler.handleAdd).Methods("POST", "OPTIONS").Name("new-complaint")
	// admin only, behind the access guard
	router.HandleFunc("/complaints/{id}/resolve", handler.handleResolve).Methods("PATCH", "OPTIONS").Name("resolve-complaint")
}

func (handler *Handler) handleAll(w http.ResponseWriter, r *http.Request) {
	complaints, err := handler.repo.All(r.Context())
	if err != nil {
		log.Errorf("get all complaints error: %s", err)
		http.Error(w, "failed to get complaints", http.StatusInternalServerError)
		return
	}

	if len(complaints) == 0 {
		pkg.WriteJSONResponseOK(w, "[]")
		return
	}

	complaintsJson, err := json.Marshal(complaints)
	if err != nil {
		log.Errorf("marshal complaints error: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, complaintsJson)
}

func (handler *Handler) handleAdd(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodOptions {
		w.Header().Add("Allow", "POST, OPTIONS")
		w.WriteHeader(http.StatusOK)
		return
	}

	var newComplaintReq newComplaintRequest
	if r.Header.Get("Content-Type") == "application/json" {
		if err := json.NewDecoder(r.Body).Decode(&newComplaintReq); err != nil {
			log.Errorf("new complaint, unmarshal json params: %s", err)
			pkg.WriteJSONError(w, "file complaint failed", http.StatusBadRequest)
			return
		}
	} else {
		if err := r.ParseForm(); err != nil {
			log.Errorf("file new complaint failed, parse form error: %s", err)
			pkg.WriteJSONError(w, "parse form error", http.StatusInternalServerError)
			return
		}
		newComplaintReq = newComplaintRequest{
			SupportType: r.Form.Get("support_type"),
			Query:       r.Form.Get("query"),
			Email:       r.Form.Get("email"),
		}
	}

	if newComplaintReq.Query == "" {
		pkg.WriteJSONError(w, "error, query empty", http.StatusBadRequest)
		return
	}
	if newComplaintReq.Email == "" {
		pkg.WriteJSONError(w, "error, email empty", http.StatusBadRequest)
		return
	}

	newComplaint := &Complaint{
		SupportType: newComplaintReq.SupportType,
		Query:       newComplaintReq.Query,
		Email:       newComplaintReq.Email,
		Status:      StatusPending,
		CreatedAt:   time.Now(),
	}

	if err := handler.repo.Add(r.Context(), newComplaint); err != nil {
		log.Errorf("file new complaint failed: %s", err)
		pkg.WriteJSONError(w, "file new complaint failed", http.StatusInternalServerError)
		return
	}

	handler.metrics.CounterComplaints.Inc()

	log.Tracef("new complaint %d filed [%s]", newComplaint.ID, newComplaint.SupportType)

	pkg.WriteResponse(
		w,
		pkg.ContentType.JSON,
		fmt.Sprintf(`{"success": true, "id": %d}`, newComplaint.ID),
		http.StatusCreated,
	)
}

func (handler *Handler) handleResolve(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodOptions {
		w.Header().Add("Allow", "PATCH, OPTIONS")
		w.WriteHeader(http.StatusOK)
		return
	}

	vars := mux.Vars(r)

	id, err := strconv.Atoi(vars["id"])
	if err != nil {
		pkg.WriteJSONError(w, "error, id NaN", http.StatusBadRequest)
		return
	}

	if err := handler.repo.Resolve(r.Context(), id); err != nil {
		if errors.Is(err, ErrComplaintNotFound) {
			pkg.WriteJSONError(w, "complaint not found", http.StatusNotFound)
			return
		}
		log.Errorf("resolve complaint %d: %s", id, err)
		pkg.WriteJSONError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	log.Tracef("complaint %d resolved", id)
	pkg.WriteTextResponseOK(w, fmt.Sprintf("resolved:%d", id))
}
