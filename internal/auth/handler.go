package auth

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/horlapookie/supportsite/internal/telemetry/metrics"
	"github.com/horlapookie/supportsite/internal/telemetry/tracing"
	"github.com/horlapookie/supportsite/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/codes"
)

type VerifyResponse struct {
	Authenticated bool   `json:"authenticated"`
	Token         string `json:"token,omitempty"`
	Error         string `json:"error,omitempty"`
}

type Handler struct {
	verifier *Verifier
	metrics  *metrics.Manager
}

func NewHandler(verifier *Verifier, metricsManager *metrics.Manager) *Handler {
	return &Handler{
		verifier: verifier,
		metrics:  metricsManager,
	}
}

// SetupRoutes claims the /admin prefix, the caller is expected to rate
// limit the subrouter - passkey attempts have no lockout otherwise.
func (handler *Handler) SetupRoutes(mainRouter *mux.Router, rateLimit mux.MiddlewareFunc) {
	verifySubrouter := mainRouter.PathPrefix("/admin").Subrouter()
	verifySubrouter.
		HandleFunc("/verify", handler.HandleVerify).
		Methods("POST", "OPTIONS").Name("admin-verify")
	verifySubrouter.Use(rateLimit)
}

func (handler *Handler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	_, span := tracing.GlobalTracer.Start(r.Context(), "authHandler.verify")
	defer span.End()

	if r.Method == http.MethodOptions {
		w.Header().Add("Allow", "POST, OPTIONS")
		w.WriteHeader(http.StatusOK)
		return
	}

	type verifyRequest struct {
		Passkey string `json:"passkey"`
	}

	var verifyReq verifyRequest
	if r.Header.Get("Content-Type") == "application/json" {
		if err := json.NewDecoder(r.Body).Decode(&verifyReq); err != nil {
			log.Errorf("verify, unmarshal json params: %s", err)
			pkg.WriteJSONError(w, "verify failed", http.StatusBadRequest)
			return
		}
	} else {
		if err := r.ParseForm(); err != nil {
			log.Errorf("verify failed, parse form error: %s", err)
			pkg.WriteJSONError(w, "parse form error", http.StatusInternalServerError)
			return
		}
		verifyReq = verifyRequest{
			Passkey: r.Form.Get("passkey"),
		}
	}

	if verifyReq.Passkey == "" {
		pkg.WriteJSONError(w, "passkey empty", http.StatusBadRequest)
		return
	}

	token, ok, err := handler.verifier.Verify(verifyReq.Passkey)
	if err != nil {
		if errors.Is(err, ErrSecretNotConfigured) {
			log.Errorf("verify failed: %s", err)
			handler.metrics.CounterVerifyAttempts.WithLabelValues("server_error").Inc()
			pkg.WriteJSONError(w, "server configuration error", http.StatusInternalServerError)
			span.SetStatus(codes.Error, "secret-not-configured")
			return
		}
		log.Errorf("verify failed, issue token error: %s", err)
		pkg.WriteJSONError(w, "internal server error", http.StatusInternalServerError)
		span.SetStatus(codes.Error, "issue-token-err")
		span.RecordError(err)
		return
	}

	if !ok {
		userIP, ipErr := pkg.ReadUserIP(r)
		if ipErr != nil {
			userIP = r.RemoteAddr
		}
		// expected outcome, not a system fault
		log.Tracef("failed passkey verification attempt from [%s]", userIP)
		handler.metrics.CounterVerifyAttempts.WithLabelValues("rejected").Inc()
		writeVerifyResponse(w, VerifyResponse{
			Authenticated: false,
			Error:         "invalid passkey",
		}, http.StatusUnauthorized)
		span.SetStatus(codes.Error, "wrong-passkey")
		return
	}

	log.Trace("new admin verification success")
	handler.metrics.CounterVerifyAttempts.WithLabelValues("ok").Inc()
	writeVerifyResponse(w, VerifyResponse{
		Authenticated: true,
		Token:         token,
	}, http.StatusOK)
	span.SetStatus(codes.Ok, "ok")
}

func writeVerifyResponse(w http.ResponseWriter, resp VerifyResponse, statusCode int) {
	respJson, err := json.Marshal(resp)
	if err != nil {
		log.Errorf("marshal verify response: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, respJson, statusCode)
}
