package complaints

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

func setupComplaintsRouterForTests(t *testing.T, repo complaintsRepo) *mux.Router {
	t.Helper()

	r := mux.NewRouter()
	handler := NewHandler(repo, metrics.NewTestManager())
	handler.SetupRoutes(r)
	return r
}

func TestHandler_fileComplaint_and_list(t *testing.T) {
	router := setupComplaintsRouterForTests(t, NewMockComplaintsRepo())

	newComplaintJson := fmt.Sprintf(
		`{"support_type": "billing", "query": %q, "email": %q}`,
		gofakeit.Sentence(6), gofakeit.Email(),
	)
	req, err := http.NewRequest("POST", "/complaints", strings.NewReader(newComplaintJson))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	require.Equal(t, http.StatusCreated, rr.Code)
	assert.Contains(t, rr.Body.String(), `"success": true`)

	req, err = http.NewRequest("GET", "/complaints", nil)
	require.NoError(t, err)
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	var complaints []Complaint
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &complaints))
	require.Len(t, complaints, 1)
	assert.Equal(t, "billing", complaints[0].SupportType)
	assert.Equal(t, StatusPending, complaints[0].Status)
}

func TestHandler_fileComplaint_form(t *testing.T) {
	router := setupComplaintsRouterForTests(t, NewMockComplaintsRepo())

	form := url.Values{}
	form.Add("support_type", "technical")
	form.Add("query", "my account is locked")
	form.Add("email", "locked@out.com")
	req, err := http.NewRequest("POST", "/complaints", strings.NewReader(form.Encode()))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	require.Equal(t, http.StatusCreated, rr.Code)
}

func TestHandler_fileComplaint_missingFields(t *testing.T) {
	router := setupComplaintsRouterForTests(t, NewMockComplaintsRepo())

	testCases := []struct {
		name string
		body string
	}{
		{name: "no query", body: `{"support_type": "billing", "email": "a@b.com"}`},
		{name: "no email", body: `{"support_type": "billing", "query": "halp"}`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req, err := http.NewRequest("POST", "/complaints", strings.NewReader(tc.body))
			require.NoError(t, err)
			req.Header.Set("Content-Type", "application/json")
			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, req)
			require.Equal(t, http.StatusBadRequest, rr.Code)
		})
	}
}

func TestHandler_resolve(t *testing.T) {
	repo := NewMockComplaintsRepo()
	ctx := context.Background()

	complaint := &Complaint{
		SupportType: "billing",
		Query:       "charged twice",
		Email:       "twice@charged.com",
		Status:      StatusPending,
		CreatedAt:   time.Now(),
	}
	require.NoError(t, repo.Add(ctx, complaint))

	router := setupComplaintsRouterForTests(t, repo)

	req, err := http.NewRequest("PATCH", fmt.Sprintf("/complaints/%d/resolve", complaint.ID), nil)
	require.NoError(t, err)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, fmt.Sprintf("resolved:%d", complaint.ID), rr.Body.String())

	req, err = http.NewRequest("GET", "/complaints", nil)
	require.NoError(t, err)
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	var complaints []Complaint
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &complaints))
	require.Len(t, complaints, 1)
	assert.Equal(t, StatusResolved, complaints[0].Status)
}

func TestHandler_resolve_unknownComplaint(t *testing.T) {
	router := setupComplaintsRouterForTests(t, NewMockComplaintsRepo())

	req, err := http.NewRequest("PATCH", "/complaints/404/resolve", nil)
	require.NoError(t, err)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	require.Equal(t, http.StatusNotFound, rr.Code)
}

func TestHandler_list_empty(t *testing.T) {
	router := setupComplaintsRouterForTests(t, NewMockComplaintsRepo())

	req, err := http.NewRequest("GET", "/complaints", nil)
	require.NoError(t, err)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "[]", rr.Body.String())
}
